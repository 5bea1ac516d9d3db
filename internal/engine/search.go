package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// infScore bounds the alpha-beta window. Strictly above every reachable
	// score, including ply-adjusted wins.
	infScore = WinScore + 1

	// mateThreshold separates decided scores from heuristic ones. Terminal
	// scores are WinScore minus the ply they were found at, so anything at or
	// above the threshold is a forced win.
	mateThreshold = WinScore - 100000

	timePollInterval = 256
)

type Options struct {
	MaxDepth      int
	MaxCandidates int
	TTSize        uint64
	TTBuckets     int
	KillerMoves   bool
	Clock         func() time.Time
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:      6,
		MaxCandidates: 12,
		TTSize:        1 << 16,
		TTBuckets:     2,
		KillerMoves:   true,
	}
}

type Stats struct {
	Nodes           int64
	TTProbes        int64
	TTHits          int64
	TTStores        int64
	Cutoffs         int64
	CompletedDepths int
	DepthDurations  []time.Duration
	Elapsed         time.Duration
}

// SearchResult is what DecideMove hands back: the chosen move, its score from
// the mover's perspective, and the deepest fully completed depth.
type SearchResult struct {
	Move  Move
	Score int
	Depth int
	Stats Stats
}

// Engine runs iterative-deepening negamax with alpha-beta pruning over a
// private copy of the caller's board. One Engine owns one transposition
// table; it must not run two decisions concurrently. Weights may be swapped
// from another goroutine while a decision runs; each decision works from a
// snapshot taken at its start.
type Engine struct {
	tt *TranspositionTable

	weightsMu sync.RWMutex
	weights   Weights

	opts Options
	log  *zap.SugaredLogger
	now  func() time.Time
}

func NewEngine(weights Weights, opts Options, log *zap.SugaredLogger) *Engine {
	defaults := DefaultOptions()
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaults.MaxDepth
	}
	if opts.MaxCandidates < 0 {
		opts.MaxCandidates = 0
	}
	if opts.TTSize == 0 {
		opts.TTSize = defaults.TTSize
	}
	if opts.TTBuckets <= 0 {
		opts.TTBuckets = defaults.TTBuckets
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		tt:      NewTranspositionTable(opts.TTSize, opts.TTBuckets),
		weights: weights,
		opts:    opts,
		log:     log,
		now:     opts.Clock,
	}
}

func (e *Engine) TT() *TranspositionTable {
	return e.tt
}

func (e *Engine) Weights() Weights {
	e.weightsMu.RLock()
	defer e.weightsMu.RUnlock()
	return e.weights
}

// SetWeights swaps the evaluation weights and clears the table, since cached
// scores were computed under the old ones. A decision already in flight keeps
// its snapshot of the old weights.
func (e *Engine) SetWeights(w Weights) {
	e.weightsMu.Lock()
	e.weights = w
	e.weightsMu.Unlock()
	if e.tt != nil {
		e.tt.Clear()
	}
}

type searchContext struct {
	weights       Weights
	deadline      time.Time
	hasDeadline   bool
	timedOut      bool
	pollCountdown int
	killers       [][]Move
	stats         Stats
}

func (sc *searchContext) expired(now func() time.Time) bool {
	if sc.timedOut {
		return true
	}
	if !sc.hasDeadline {
		return false
	}
	sc.pollCountdown--
	if sc.pollCountdown > 0 {
		return false
	}
	sc.pollCountdown = timePollInterval
	if !now().Before(sc.deadline) {
		sc.timedOut = true
	}
	return sc.timedOut
}

func (sc *searchContext) recordKiller(ply int, move Move) {
	if ply < 0 || ply >= len(sc.killers) {
		return
	}
	killers := sc.killers[ply]
	if len(killers) > 0 && killers[0].Equals(move) {
		return
	}
	if len(killers) == 0 {
		sc.killers[ply] = append(killers, move)
		return
	}
	if len(killers) == 1 {
		sc.killers[ply] = append(killers, killers[0])
	}
	sc.killers[ply][1] = sc.killers[ply][0]
	sc.killers[ply][0] = move
}

// DecideMove picks the best move for side on the given board within budget.
// The caller's board is never mutated; the search works on a clone with
// mutate-and-undo. A non-positive budget means unlimited. The returned move
// is always legal on the input board: depth 1 is cheap enough to complete
// under any realistic budget, and even an aborted depth 1 falls back to the
// first ordered candidate.
func (e *Engine) DecideMove(b Board, side Cell, budget time.Duration) (SearchResult, error) {
	work := b.Clone()
	work.SetToMove(side)
	if work.Status() != StatusOngoing {
		return SearchResult{}, ErrNoLegalMoves
	}
	candidates := candidateMoves(work)
	if len(candidates) == 0 {
		return SearchResult{}, ErrNoLegalMoves
	}

	if e.tt != nil {
		e.tt.NextGeneration()
	}
	start := e.now()
	sc := &searchContext{
		weights:       e.Weights(),
		pollCountdown: 1, // poll on the first node, then every interval
		killers:       make([][]Move, e.opts.MaxDepth+1),
	}
	if budget > 0 {
		sc.deadline = start.Add(budget)
		sc.hasDeadline = true
	}

	ordered := orderMoves(work, candidates, sc.weights, 0, nil, nil)
	best := ordered[0]
	bestScore := 0
	depthCompleted := 0

	for depth := 1; depth <= e.opts.MaxDepth; depth++ {
		depthStart := e.now()
		score, move, completed := e.searchRoot(sc, &work, depth)
		if !completed {
			break
		}
		best = move
		bestScore = score
		depthCompleted = depth
		sc.stats.CompletedDepths++
		sc.stats.DepthDurations = append(sc.stats.DepthDurations, e.now().Sub(depthStart))
		e.log.Debugw("depth completed",
			"depth", depth,
			"score", score,
			"move", move,
			"nodes", sc.stats.Nodes,
		)
		if score >= mateThreshold || score <= -mateThreshold {
			break
		}
	}

	sc.stats.Elapsed = e.now().Sub(start)
	e.log.Debugw("search finished",
		"side", side,
		"move", best,
		"score", bestScore,
		"depth", depthCompleted,
		"nodes", sc.stats.Nodes,
		"ttHits", sc.stats.TTHits,
		"cutoffs", sc.stats.Cutoffs,
		"elapsed", sc.stats.Elapsed,
	)
	return SearchResult{Move: best, Score: bestScore, Depth: depthCompleted, Stats: sc.stats}, nil
}

func (e *Engine) searchRoot(sc *searchContext, b *Board, depth int) (int, Move, bool) {
	var ttMove *Move
	if e.tt != nil {
		if entry, ok := e.tt.Probe(b.Hash()); ok {
			m := entry.BestMove
			ttMove = &m
		}
	}
	var killers []Move
	if e.opts.KillerMoves && len(sc.killers) > 0 {
		killers = sc.killers[0]
	}
	ordered := orderMoves(*b, candidateMoves(*b), sc.weights, e.opts.MaxCandidates, ttMove, killers)

	alpha := -infScore
	bestScore := -infScore
	bestMove := ordered[0]
	for _, move := range ordered {
		if err := b.Place(move); err != nil {
			continue
		}
		score, ok := e.negamax(sc, b, depth-1, 1, -infScore, -alpha)
		if err := b.Undo(); err != nil {
			return 0, Move{}, false
		}
		if !ok {
			return 0, Move{}, false
		}
		score = -score
		if score > bestScore {
			bestScore = score
			bestMove = move
		}
		if bestScore > alpha {
			alpha = bestScore
		}
	}
	if e.tt != nil && e.tt.Store(b.Hash(), depth, scoreToTT(bestScore, 0), TTExact, bestMove) {
		sc.stats.TTStores++
	}
	return bestScore, bestMove, true
}

// negamax returns the score of the position from the side to move's view,
// and false when the time budget expired mid-subtree. Every recursion places
// exactly one stone and undoes it on every exit path, so an abort can never
// leave the board out of sync with its history.
func (e *Engine) negamax(sc *searchContext, b *Board, depth, ply, alpha, beta int) (int, bool) {
	if sc.expired(e.now) {
		return 0, false
	}
	sc.stats.Nodes++

	status := b.Status()
	if status == StatusDraw {
		return 0, true
	}
	if _, won := status.Winner(); won {
		// The previous mover just won; shallower wins score higher.
		return -(WinScore - ply), true
	}
	if depth <= 0 {
		return Evaluate(*b, b.ToMove(), sc.weights), true
	}

	key := b.Hash()
	alphaOrig := alpha
	var ttMove *Move
	if e.tt != nil {
		sc.stats.TTProbes++
		if entry, ok := e.tt.Probe(key); ok {
			sc.stats.TTHits++
			m := entry.BestMove
			ttMove = &m
			if entry.Depth >= depth {
				score := scoreFromTT(int(entry.Score), ply)
				switch entry.Flag {
				case TTExact:
					return score, true
				case TTLower:
					if score > alpha {
						alpha = score
					}
				case TTUpper:
					if score < beta {
						beta = score
					}
				}
				if alpha >= beta {
					return score, true
				}
			}
		}
	}

	var killers []Move
	if e.opts.KillerMoves && ply < len(sc.killers) {
		killers = sc.killers[ply]
	}
	ordered := orderMoves(*b, candidateMoves(*b), sc.weights, e.opts.MaxCandidates, ttMove, killers)
	if len(ordered) == 0 {
		return Evaluate(*b, b.ToMove(), sc.weights), true
	}

	bestScore := -infScore
	bestMove := ordered[0]
	for _, move := range ordered {
		if err := b.Place(move); err != nil {
			continue
		}
		score, ok := e.negamax(sc, b, depth-1, ply+1, -beta, -alpha)
		if err := b.Undo(); err != nil {
			return 0, false
		}
		if !ok {
			return 0, false
		}
		score = -score
		if score > bestScore {
			bestScore = score
			bestMove = move
		}
		if bestScore > alpha {
			alpha = bestScore
		}
		if alpha >= beta {
			sc.stats.Cutoffs++
			sc.recordKiller(ply, move)
			break
		}
	}

	flag := TTExact
	if bestScore <= alphaOrig {
		flag = TTUpper
	} else if bestScore >= beta {
		flag = TTLower
	}
	if e.tt != nil && e.tt.Store(key, depth, scoreToTT(bestScore, ply), flag, bestMove) {
		sc.stats.TTStores++
	}
	return bestScore, true
}

// Mate scores are stored relative to the node they were proven at, not the
// root, so a cached win stays "N plies from here" wherever it is reused.
func scoreToTT(score, ply int) int {
	if score >= mateThreshold {
		return score + ply
	}
	if score <= -mateThreshold {
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	if score >= mateThreshold {
		return score - ply
	}
	if score <= -mateThreshold {
		return score + ply
	}
	return score
}
