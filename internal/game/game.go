// Package game holds a single local Gomoku session: the authoritative board,
// the move history, and the turn plumbing between a human and the engine.
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/knah1d/gomokuAI/internal/engine"
)

type PlayerKind int

const (
	PlayerHuman PlayerKind = iota
	PlayerAI
)

func (k PlayerKind) String() string {
	if k == PlayerAI {
		return "ai"
	}
	return "human"
}

type Settings struct {
	BoardSize    int
	BlackType    PlayerKind
	WhiteType    PlayerKind
	AITimeBudget time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		BoardSize:    10,
		BlackType:    PlayerHuman,
		WhiteType:    PlayerAI,
		AITimeBudget: 2 * time.Second,
	}
}

type HistoryEntry struct {
	Move      engine.Move `json:"move"`
	Player    string      `json:"player"`
	IsAI      bool        `json:"is_ai"`
	ElapsedMs float64     `json:"elapsed_ms"`
	Depth     int         `json:"depth"`
	Score     int         `json:"score"`
}

// Game is one match. It is not safe for concurrent use; Session adds the
// locking.
type Game struct {
	id       uuid.UUID
	settings Settings
	board    engine.Board
	history  []HistoryEntry
	eng      *engine.Engine
	log      *zap.SugaredLogger
}

func NewGame(settings Settings, eng *engine.Engine, log *zap.SugaredLogger) *Game {
	if settings.BoardSize <= 0 {
		settings.BoardSize = DefaultSettings().BoardSize
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Game{
		id:       uuid.New(),
		settings: settings,
		board:    engine.NewBoard(settings.BoardSize),
		eng:      eng,
		log:      log,
	}
}

func (g *Game) ID() uuid.UUID {
	return g.id
}

func (g *Game) Settings() Settings {
	return g.settings
}

func (g *Game) Board() engine.Board {
	return g.board.Clone()
}

func (g *Game) Status() engine.Status {
	return g.board.Status()
}

func (g *Game) ToMove() engine.Cell {
	return g.board.ToMove()
}

func (g *Game) History() []HistoryEntry {
	return append([]HistoryEntry(nil), g.history...)
}

func (g *Game) kindFor(side engine.Cell) PlayerKind {
	if side == engine.CellBlack {
		return g.settings.BlackType
	}
	return g.settings.WhiteType
}

func (g *Game) CurrentPlayerIsHuman() bool {
	return g.board.Status() == engine.StatusOngoing && g.kindFor(g.board.ToMove()) == PlayerHuman
}

func (g *Game) CurrentPlayerIsAI() bool {
	return g.board.Status() == engine.StatusOngoing && g.kindFor(g.board.ToMove()) == PlayerAI
}

// ApplyHumanMove plays a move for the human side to move. Illegal placements
// surface engine.ErrInvalidMove and leave the game untouched.
func (g *Game) ApplyHumanMove(move engine.Move) error {
	if g.board.Status() != engine.StatusOngoing {
		return fmt.Errorf("game %s is finished: %w", g.id, engine.ErrInvalidMove)
	}
	if g.kindFor(g.board.ToMove()) != PlayerHuman {
		return fmt.Errorf("not the human's turn: %w", engine.ErrInvalidMove)
	}
	mover := g.board.ToMove()
	if err := g.board.Place(move); err != nil {
		return err
	}
	g.history = append(g.history, HistoryEntry{
		Move:   move,
		Player: mover.String(),
	})
	g.log.Debugw("human move applied", "game", g.id, "move", move, "player", mover)
	return nil
}

// PlayAITurn asks the engine for a move for the side to move and applies it.
func (g *Game) PlayAITurn() (HistoryEntry, error) {
	if g.board.Status() != engine.StatusOngoing {
		return HistoryEntry{}, engine.ErrNoLegalMoves
	}
	side := g.board.ToMove()
	result, err := g.eng.DecideMove(g.board, side, g.settings.AITimeBudget)
	if err != nil {
		return HistoryEntry{}, err
	}
	if err := g.board.Place(result.Move); err != nil {
		// The engine guarantees a legal move; a failure here means the
		// board changed underneath it.
		return HistoryEntry{}, fmt.Errorf("engine returned unplayable move %v: %w", result.Move, err)
	}
	entry := HistoryEntry{
		Move:      result.Move,
		Player:    side.String(),
		IsAI:      true,
		ElapsedMs: float64(result.Stats.Elapsed.Microseconds()) / 1000.0,
		Depth:     result.Depth,
		Score:     result.Score,
	}
	g.history = append(g.history, entry)
	g.log.Infow("engine move applied",
		"game", g.id,
		"move", result.Move,
		"player", side,
		"depth", result.Depth,
		"score", result.Score,
		"nodes", result.Stats.Nodes,
		"elapsed", result.Stats.Elapsed,
	)
	return entry, nil
}

// UpdateTimeBudget changes how long the engine may think, mid-game.
func (g *Game) UpdateTimeBudget(budget time.Duration) {
	if budget > 0 {
		g.settings.AITimeBudget = budget
	}
}

// Reset starts a fresh match under new settings, keeping the engine (and its
// transposition table) for the next game.
func (g *Game) Reset(settings Settings) {
	if settings.BoardSize <= 0 {
		settings.BoardSize = g.settings.BoardSize
	}
	g.id = uuid.New()
	g.settings = settings
	g.board = engine.NewBoard(settings.BoardSize)
	g.history = nil
	g.log.Infow("game reset", "game", g.id, "boardSize", settings.BoardSize)
}
