package engine

import "iter"

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

func (c Cell) Other() Cell {
	switch c {
	case CellBlack:
		return CellWhite
	case CellWhite:
		return CellBlack
	default:
		return CellEmpty
	}
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

type Status int

const (
	StatusOngoing Status = iota
	StatusBlackWon
	StatusWhiteWon
	StatusDraw
)

func (s Status) String() string {
	switch s {
	case StatusBlackWon:
		return "BlackWon"
	case StatusWhiteWon:
		return "WhiteWon"
	case StatusDraw:
		return "Draw"
	default:
		return "Ongoing"
	}
}

// Winner returns the winning side for a won status.
func (s Status) Winner() (Cell, bool) {
	switch s {
	case StatusBlackWon:
		return CellBlack, true
	case StatusWhiteWon:
		return CellWhite, true
	default:
		return CellEmpty, false
	}
}

func winStatus(c Cell) Status {
	if c == CellBlack {
		return StatusBlackWon
	}
	return StatusWhiteWon
}

type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (m Move) Equals(other Move) bool {
	return m.X == other.X && m.Y == other.Y
}

const winLength = 5

type historyEntry struct {
	move       Move
	prevStatus Status
}

// Board is a square Gomoku grid with an undo stack. The search mutates one
// board in place via Place/Undo instead of copying it at every node.
type Board struct {
	size    int
	cells   []Cell
	toMove  Cell
	status  Status
	hash    uint64
	stones  int
	history []historyEntry
}

func NewBoard(boardSize int) Board {
	b := Board{}
	b.Reset(boardSize)
	return b
}

func (b *Board) Reset(boardSize int) {
	b.size = boardSize
	b.cells = make([]Cell, boardSize*boardSize)
	b.toMove = CellBlack
	b.status = StatusOngoing
	b.hash = 0
	b.stones = 0
	b.history = b.history[:0]
}

func (b Board) Size() int {
	return b.size
}

func (b Board) At(x, y int) Cell {
	return b.cells[b.index(x, y)]
}

func (b Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.size && y < b.size
}

func (b Board) IsEmpty(x, y int) bool {
	return b.InBounds(x, y) && b.At(x, y) == CellEmpty
}

func (b Board) ToMove() Cell {
	return b.toMove
}

func (b Board) Status() Status {
	return b.status
}

func (b Board) Hash() uint64 {
	return b.hash
}

func (b Board) StoneCount() int {
	return b.stones
}

func (b Board) CountEmpty() int {
	return b.size*b.size - b.stones
}

// LastMove reports the most recent placement still on the undo stack.
func (b Board) LastMove() (Move, bool) {
	if len(b.history) == 0 {
		return Move{}, false
	}
	return b.history[len(b.history)-1].move, true
}

// Place puts the side-to-move's stone on the given cell, flips the side to
// move, and updates status and hash. Win detection only scans the four axes
// through the new stone.
func (b *Board) Place(move Move) error {
	if b.status != StatusOngoing {
		return ErrInvalidMove
	}
	if !b.InBounds(move.X, move.Y) || b.At(move.X, move.Y) != CellEmpty {
		return ErrInvalidMove
	}
	mover := b.toMove
	b.cells[b.index(move.X, move.Y)] = mover
	b.stones++
	b.history = append(b.history, historyEntry{move: move, prevStatus: b.status})

	z := zobristFor(b.size)
	b.hash ^= z.stone(move.X, move.Y, mover)
	b.hash ^= z.side

	if b.winsAt(move, mover) {
		b.status = winStatus(mover)
	} else if b.stones == b.size*b.size {
		b.status = StatusDraw
	}
	b.toMove = mover.Other()
	return nil
}

// Undo reverts the last placement, restoring side to move, status and hash.
func (b *Board) Undo() error {
	if len(b.history) == 0 {
		return ErrEmptyHistory
	}
	entry := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	mover := b.toMove.Other()

	z := zobristFor(b.size)
	b.hash ^= z.stone(entry.move.X, entry.move.Y, mover)
	b.hash ^= z.side

	b.cells[b.index(entry.move.X, entry.move.Y)] = CellEmpty
	b.stones--
	b.status = entry.prevStatus
	b.toMove = mover
	return nil
}

// SetToMove forces the side to move, keeping the hash consistent.
func (b *Board) SetToMove(side Cell) {
	if side == b.toMove || (side != CellBlack && side != CellWhite) {
		return
	}
	b.hash ^= zobristFor(b.size).side
	b.toMove = side
}

// LegalMoves yields every empty cell in row-major order. The sequence is
// restartable and finite.
func (b Board) LegalMoves() iter.Seq[Move] {
	return func(yield func(Move) bool) {
		for y := 0; y < b.size; y++ {
			for x := 0; x < b.size; x++ {
				if b.cells[y*b.size+x] != CellEmpty {
					continue
				}
				if !yield(Move{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

func (b Board) Clone() Board {
	clone := Board{
		size:   b.size,
		toMove: b.toMove,
		status: b.status,
		hash:   b.hash,
		stones: b.stones,
	}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	clone.history = make([]historyEntry, len(b.history))
	copy(clone.history, b.history)
	return clone
}

func (b Board) index(x, y int) int {
	return y*b.size + x
}

func (b Board) winsAt(move Move, target Cell) bool {
	directions := [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
	for _, dir := range directions {
		left := b.countContiguous(move.X, move.Y, -dir[0], -dir[1], target)
		right := b.countContiguous(move.X, move.Y, dir[0], dir[1], target)
		if left+right+1 >= winLength {
			return true
		}
	}
	return false
}

func (b Board) countContiguous(x, y, dx, dy int, target Cell) int {
	count := 0
	nx := x + dx
	ny := y + dy
	for b.InBounds(nx, ny) && b.At(nx, ny) == target {
		count++
		nx += dx
		ny += dy
	}
	return count
}
