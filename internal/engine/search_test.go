package engine

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestEngine(maxDepth, maxCandidates int) *Engine {
	return NewEngine(DefaultWeights(), Options{
		MaxDepth:      maxDepth,
		MaxCandidates: maxCandidates,
		TTSize:        1 << 12,
		TTBuckets:     2,
		KillerMoves:   true,
	}, nil)
}

// stepClock advances a fixed amount at every reading, so time-budget paths
// can be exercised deterministically.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestDecideMoveOpeningTakesCenter(t *testing.T) {
	b := NewBoard(10)
	e := newTestEngine(2, 12)
	result, err := e.DecideMove(b, CellBlack, 0)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if !result.Move.Equals(Move{X: 5, Y: 5}) {
		t.Fatalf("expected the opening move at the center, got %v", result.Move)
	}
}

func TestDecideMoveTakesImmediateWin(t *testing.T) {
	b := NewBoard(10)
	for i := 2; i <= 5; i++ {
		placeAs(t, &b, CellBlack, Move{X: i, Y: 3})
	}
	e := newTestEngine(4, 12)
	result, err := e.DecideMove(b, CellBlack, 0)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if !result.Move.Equals(Move{X: 1, Y: 3}) && !result.Move.Equals(Move{X: 6, Y: 3}) {
		t.Fatalf("expected the five-completing move, got %v", result.Move)
	}
	if result.Score < mateThreshold {
		t.Fatalf("an immediate win must score as a forced win, got %d", result.Score)
	}
}

func TestDecideMoveBlocksOpenFour(t *testing.T) {
	b := NewBoard(10)
	for i := 2; i <= 5; i++ {
		placeAs(t, &b, CellWhite, Move{X: i, Y: 6})
	}
	placeAs(t, &b, CellBlack, Move{X: 0, Y: 0})

	e := newTestEngine(3, 12)
	result, err := e.DecideMove(b, CellBlack, 0)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if !result.Move.Equals(Move{X: 1, Y: 6}) && !result.Move.Equals(Move{X: 6, Y: 6}) {
		t.Fatalf("expected a move blocking the open four, got %v", result.Move)
	}
}

func TestDecideMoveForcedSide(t *testing.T) {
	// The board says black to move, but the decision is requested for white.
	b := NewBoard(10)
	for i := 2; i <= 5; i++ {
		placeAs(t, &b, CellWhite, Move{X: i, Y: 4})
	}
	b.SetToMove(CellBlack)

	e := newTestEngine(2, 12)
	result, err := e.DecideMove(b, CellWhite, 0)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if !result.Move.Equals(Move{X: 1, Y: 4}) && !result.Move.Equals(Move{X: 6, Y: 4}) {
		t.Fatalf("white should complete its own five, got %v", result.Move)
	}
}

func TestDecideMoveDoesNotMutateCallerBoard(t *testing.T) {
	b := NewBoard(10)
	placeAs(t, &b, CellBlack, Move{X: 4, Y: 4})
	placeAs(t, &b, CellWhite, Move{X: 5, Y: 5})
	b.SetToMove(CellBlack)
	beforeHash := b.Hash()
	beforeStones := b.StoneCount()

	e := newTestEngine(3, 10)
	if _, err := e.DecideMove(b, CellBlack, 0); err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if b.Hash() != beforeHash || b.StoneCount() != beforeStones {
		t.Fatalf("caller-visible board changed during search")
	}
}

func TestDecideMoveNoLegalMoves(t *testing.T) {
	full := NewBoard(4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if err := full.Place(Move{X: x, Y: y}); err != nil {
				t.Fatalf("place: %v", err)
			}
		}
	}
	e := newTestEngine(2, 12)
	if _, err := e.DecideMove(full, CellBlack, 0); !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("expected ErrNoLegalMoves on a full board, got %v", err)
	}

	won := NewBoard(10)
	for i := 0; i < 5; i++ {
		placeAs(t, &won, CellBlack, Move{X: i, Y: 0})
	}
	if _, err := e.DecideMove(won, CellWhite, 0); !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("expected ErrNoLegalMoves on a decided board, got %v", err)
	}
}

func TestDecideMoveExpiredBudgetFallsBackToOrderedMove(t *testing.T) {
	b := NewBoard(10)
	for i := 2; i <= 5; i++ {
		placeAs(t, &b, CellWhite, Move{X: i, Y: 6})
	}
	placeAs(t, &b, CellBlack, Move{X: 0, Y: 0})

	// Every clock reading jumps past the deadline, so not even depth 1
	// completes.
	clock := &stepClock{now: time.Unix(0, 0), step: 10 * time.Millisecond}
	e := NewEngine(DefaultWeights(), Options{
		MaxDepth: 6,
		Clock:    clock.Now,
	}, nil)
	result, err := e.DecideMove(b, CellBlack, time.Millisecond)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if result.Depth != 0 {
		t.Fatalf("no depth should have completed, got %d", result.Depth)
	}
	if !result.Move.Equals(Move{X: 1, Y: 6}) {
		t.Fatalf("fallback must be the top ordered candidate (the block), got %v", result.Move)
	}
	work := b.Clone()
	work.SetToMove(CellBlack)
	if err := work.Place(result.Move); err != nil {
		t.Fatalf("fallback move must be legal: %v", err)
	}
}

func TestDecideMoveRespectsWallClockBudget(t *testing.T) {
	b := NewBoard(10)
	placeAs(t, &b, CellBlack, Move{X: 4, Y: 4}, Move{X: 5, Y: 5})
	placeAs(t, &b, CellWhite, Move{X: 4, Y: 5}, Move{X: 3, Y: 3})
	b.SetToMove(CellBlack)

	budget := 50 * time.Millisecond
	e := newTestEngine(10, 0)
	start := time.Now()
	result, err := e.DecideMove(b, CellBlack, budget)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if elapsed > budget+time.Second {
		t.Fatalf("search ran far past its budget: %v", elapsed)
	}
	work := b.Clone()
	work.SetToMove(CellBlack)
	if err := work.Place(result.Move); err != nil {
		t.Fatalf("returned move must be legal: %v", err)
	}
}

// plainNegamax is full-width minimax with no pruning, no table and no
// killers, using the same move ordering as the engine.
func plainNegamax(t *testing.T, b *Board, w Weights, depth, ply int) int {
	t.Helper()
	status := b.Status()
	if status == StatusDraw {
		return 0
	}
	if _, won := status.Winner(); won {
		return -(WinScore - ply)
	}
	if depth <= 0 {
		return Evaluate(*b, b.ToMove(), w)
	}
	ordered := orderMoves(*b, candidateMoves(*b), w, 0, nil, nil)
	best := -infScore
	for _, move := range ordered {
		if err := b.Place(move); err != nil {
			t.Fatalf("place %v: %v", move, err)
		}
		score := -plainNegamax(t, b, w, depth-1, ply+1)
		if err := b.Undo(); err != nil {
			t.Fatalf("undo: %v", err)
		}
		if score > best {
			best = score
		}
	}
	return best
}

func plainBestMove(t *testing.T, b Board, w Weights, depth int) (Move, int) {
	t.Helper()
	work := b.Clone()
	ordered := orderMoves(work, candidateMoves(work), w, 0, nil, nil)
	best := -infScore
	bestMove := ordered[0]
	for _, move := range ordered {
		if err := work.Place(move); err != nil {
			t.Fatalf("place %v: %v", move, err)
		}
		score := -plainNegamax(t, &work, w, depth-1, 1)
		if err := work.Undo(); err != nil {
			t.Fatalf("undo: %v", err)
		}
		if score > best {
			best = score
			bestMove = move
		}
	}
	return bestMove, best
}

func TestAlphaBetaParityWithPlainMinimax(t *testing.T) {
	b := NewBoard(10)
	placeAs(t, &b, CellBlack, Move{X: 4, Y: 4}, Move{X: 5, Y: 4})
	placeAs(t, &b, CellWhite, Move{X: 4, Y: 5}, Move{X: 6, Y: 6}, Move{X: 3, Y: 5})
	b.SetToMove(CellBlack)

	const depth = 2
	w := DefaultWeights()
	wantMove, wantScore := plainBestMove(t, b, w, depth)

	pruned := NewEngine(w, Options{MaxDepth: depth, MaxCandidates: 0, KillerMoves: false}, nil)
	pruned.tt = nil // pruning only, to isolate it from caching effects
	result, err := pruned.DecideMove(b, CellBlack, 0)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if result.Score != wantScore {
		t.Fatalf("pruned score %d differs from plain minimax %d", result.Score, wantScore)
	}
	if !result.Move.Equals(wantMove) {
		t.Fatalf("pruned move %v differs from plain minimax %v", result.Move, wantMove)
	}
}

func TestWarmCacheSameDecision(t *testing.T) {
	b := NewBoard(10)
	for i := 2; i <= 4; i++ {
		placeAs(t, &b, CellWhite, Move{X: i, Y: 6})
	}
	placeAs(t, &b, CellBlack, Move{X: 4, Y: 4}, Move{X: 5, Y: 5})
	b.SetToMove(CellBlack)

	e := newTestEngine(3, 12)
	cold, err := e.DecideMove(b, CellBlack, 0)
	if err != nil {
		t.Fatalf("cold DecideMove: %v", err)
	}
	warm, err := e.DecideMove(b, CellBlack, 0)
	if err != nil {
		t.Fatalf("warm DecideMove: %v", err)
	}
	if !warm.Move.Equals(cold.Move) || warm.Score != cold.Score {
		t.Fatalf("warmed cache changed the decision: cold=(%v,%d) warm=(%v,%d)",
			cold.Move, cold.Score, warm.Move, warm.Score)
	}
	if warm.Stats.TTHits == 0 {
		t.Fatalf("second identical decision should hit the table")
	}
}

// Weights can be swapped while a decision is running; the search must keep
// working from the snapshot it took at the start. Run with -race.
func TestSetWeightsDuringSearch(t *testing.T) {
	b := NewBoard(10)
	placeAs(t, &b, CellBlack, Move{X: 4, Y: 4}, Move{X: 5, Y: 4})
	placeAs(t, &b, CellWhite, Move{X: 4, Y: 5}, Move{X: 5, Y: 5})
	b.SetToMove(CellBlack)

	e := newTestEngine(3, 12)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		alt := DefaultWeights()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			alt.Open3 = 2000 + i
			e.SetWeights(alt)
			_ = e.Weights()
		}
	}()

	for i := 0; i < 5; i++ {
		result, err := e.DecideMove(b, CellBlack, 0)
		if err != nil {
			t.Fatalf("DecideMove under weight swaps: %v", err)
		}
		if !b.InBounds(result.Move.X, result.Move.Y) || !b.IsEmpty(result.Move.X, result.Move.Y) {
			t.Fatalf("decision %d returned illegal move %v", i, result.Move)
		}
	}
	close(done)
	wg.Wait()
}
