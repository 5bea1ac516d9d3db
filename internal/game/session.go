package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/knah1d/gomokuAI/internal/engine"
)

// Snapshot is a read-only view of the session for transports to serialize.
type Snapshot struct {
	ID      uuid.UUID
	Board   engine.Board
	ToMove  engine.Cell
	Status  engine.Status
	History []HistoryEntry
}

// Session wraps one Game behind a mutex so HTTP handlers, the websocket hub
// and the AI turn loop can share it. The engine runs inside the lock; only
// one decision is in flight at a time, which is what the engine requires.
type Session struct {
	mu   sync.Mutex
	game *Game
}

func NewSession(g *Game) *Session {
	return &Session{game: g}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:      s.game.ID(),
		Board:   s.game.Board(),
		ToMove:  s.game.ToMove(),
		Status:  s.game.Status(),
		History: s.game.History(),
	}
}

func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Settings()
}

func (s *Session) ApplyHumanMove(move engine.Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.ApplyHumanMove(move)
}

func (s *Session) PlayAITurn() (HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.PlayAITurn()
}

func (s *Session) CurrentPlayerIsAI() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.CurrentPlayerIsAI()
}

func (s *Session) CurrentPlayerIsHuman() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.CurrentPlayerIsHuman()
}

func (s *Session) UpdateTimeBudget(budget time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.UpdateTimeBudget(budget)
}

func (s *Session) Reset(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.Reset(settings)
}
