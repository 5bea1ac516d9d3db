package engine

import "sync"

type zobristTable struct {
	size  int
	cells []uint64
	side  uint64
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[int]*zobristTable
}

var zobristTables = &zobristStore{tables: make(map[int]*zobristTable)}

// zobristFor returns the shared key table for a board size, building it on
// first use. Keys are deterministic per size so hashes are stable across runs.
func zobristFor(size int) *zobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	if table, ok := zobristTables.tables[size]; ok {
		return table
	}
	rng := splitmix64{state: uint64(0x9e3779b97f4a7c15) ^ uint64(size)}
	table := &zobristTable{size: size, cells: make([]uint64, size*size*2)}
	for i := range table.cells {
		table.cells[i] = rng.next()
	}
	table.side = rng.next()
	zobristTables.tables[size] = table
	return table
}

func (z *zobristTable) stone(x, y int, side Cell) uint64 {
	idx := (y*z.size + x) * 2
	if side == CellWhite {
		idx++
	}
	return z.cells[idx]
}

// ComputeHash rebuilds a board's hash from scratch. Place/Undo maintain the
// hash incrementally; this exists for cross-checking and tests.
func ComputeHash(b Board) uint64 {
	z := zobristFor(b.Size())
	var hash uint64
	for y := 0; y < b.Size(); y++ {
		for x := 0; x < b.Size(); x++ {
			cell := b.At(x, y)
			if cell == CellEmpty {
				continue
			}
			hash ^= z.stone(x, y, cell)
		}
	}
	if b.ToMove() == CellWhite {
		hash ^= z.side
	}
	return hash
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
