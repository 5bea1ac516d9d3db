package engine

import "errors"

var (
	// ErrInvalidMove is returned when a placement targets an occupied or
	// out-of-bounds cell. The board is left unchanged.
	ErrInvalidMove = errors.New("engine: invalid move")

	// ErrEmptyHistory is returned when Undo is called with no moves to revert.
	ErrEmptyHistory = errors.New("engine: empty history")

	// ErrNoLegalMoves is returned when a search is started on a board that is
	// already terminal or has no empty cells.
	ErrNoLegalMoves = errors.New("engine: no legal moves")
)
