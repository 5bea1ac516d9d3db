package engine

import (
	"sync"
	"sync/atomic"
)

type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLower
	TTUpper
)

func (f TTFlag) String() string {
	switch f {
	case TTLower:
		return "Lower"
	case TTUpper:
		return "Upper"
	default:
		return "Exact"
	}
}

type TTEntry struct {
	Key      uint64
	Depth    int
	Score    int32
	Flag     TTFlag
	BestMove Move
	Gen      uint32
	Valid    bool
}

// TranspositionTable is a fixed-size, set-associative cache of search results
// keyed by board hash. Replacement is depth preferred: an entry is only
// overwritten by a result searched at least as deep.
type TranspositionTable struct {
	mask        uint64
	buckets     int
	entries     []TTEntry
	stripeLocks []sync.RWMutex
	stripeMask  uint64
	gen         atomic.Uint32
}

func NewTranspositionTable(size uint64, buckets int) *TranspositionTable {
	if buckets <= 0 {
		buckets = 2
	}
	if size < 1 {
		size = 1
	}
	if (size & (size - 1)) != 0 {
		size = nextPowerOfTwo(size)
	}
	maxStripes := 64
	if int(size) < maxStripes {
		maxStripes = int(size)
	}
	stripes := 1
	for stripes*2 <= maxStripes {
		stripes *= 2
	}
	tt := &TranspositionTable{
		mask:        size - 1,
		buckets:     buckets,
		entries:     make([]TTEntry, int(size)*buckets),
		stripeLocks: make([]sync.RWMutex, stripes),
		stripeMask:  uint64(stripes - 1),
	}
	tt.gen.Store(1)
	return tt
}

// NextGeneration marks the start of a new decision so stale entries can lose
// replacement ties against fresh ones.
func (tt *TranspositionTable) NextGeneration() {
	gen := tt.gen.Add(1)
	if gen == 0 {
		tt.gen.CompareAndSwap(0, 1)
	}
}

func (tt *TranspositionTable) Generation() uint32 {
	return tt.gen.Load()
}

func (tt *TranspositionTable) Clear() {
	tt.lockAllStripes()
	defer tt.unlockAllStripes()
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.gen.Store(1)
}

func (tt *TranspositionTable) bucketIndex(key uint64) int {
	return int(key&tt.mask) * tt.buckets
}

func (tt *TranspositionTable) stripeIndexForKey(key uint64) int {
	return int((key & tt.mask) & tt.stripeMask)
}

func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	stripe := tt.stripeIndexForKey(key)
	tt.stripeLocks[stripe].RLock()
	defer tt.stripeLocks[stripe].RUnlock()
	start := tt.bucketIndex(key)
	for i := 0; i < tt.buckets; i++ {
		entry := tt.entries[start+i]
		if entry.Valid && entry.Key == key {
			return entry, true
		}
	}
	return TTEntry{}, false
}

// Store writes a search result. Returns whether the entry was written; a
// write is refused when every slot in the bucket holds a deeper result.
func (tt *TranspositionTable) Store(key uint64, depth int, score int, flag TTFlag, best Move) bool {
	stripe := tt.stripeIndexForKey(key)
	tt.stripeLocks[stripe].Lock()
	defer tt.stripeLocks[stripe].Unlock()
	gen := tt.gen.Load()
	entry := TTEntry{
		Key:      key,
		Depth:    depth,
		Score:    clampScore(score),
		Flag:     flag,
		BestMove: best,
		Gen:      gen,
		Valid:    true,
	}
	start := tt.bucketIndex(key)

	for i := 0; i < tt.buckets; i++ {
		idx := start + i
		existing := tt.entries[idx]
		if !existing.Valid || existing.Key != key {
			continue
		}
		if depth < existing.Depth {
			return false
		}
		tt.entries[idx] = entry
		return true
	}

	for i := 0; i < tt.buckets; i++ {
		idx := start + i
		if !tt.entries[idx].Valid {
			tt.entries[idx] = entry
			return true
		}
	}

	victim := -1
	victimDepth := 0
	victimGen := gen
	for i := 0; i < tt.buckets; i++ {
		idx := start + i
		existing := tt.entries[idx]
		if existing.Depth > depth {
			continue
		}
		if victim == -1 || existing.Depth < victimDepth ||
			(existing.Depth == victimDepth && existing.Gen < victimGen) {
			victim = idx
			victimDepth = existing.Depth
			victimGen = existing.Gen
		}
	}
	if victim == -1 {
		return false
	}
	tt.entries[victim] = entry
	return true
}

func (tt *TranspositionTable) Count() int {
	tt.lockAllStripesRead()
	defer tt.unlockAllStripesRead()
	count := 0
	for i := range tt.entries {
		if tt.entries[i].Valid {
			count++
		}
	}
	return count
}

func (tt *TranspositionTable) Capacity() int {
	if tt == nil {
		return 0
	}
	return len(tt.entries)
}

func (tt *TranspositionTable) lockAllStripes() {
	for i := range tt.stripeLocks {
		tt.stripeLocks[i].Lock()
	}
}

func (tt *TranspositionTable) unlockAllStripes() {
	for i := len(tt.stripeLocks) - 1; i >= 0; i-- {
		tt.stripeLocks[i].Unlock()
	}
}

func (tt *TranspositionTable) lockAllStripesRead() {
	for i := range tt.stripeLocks {
		tt.stripeLocks[i].RLock()
	}
}

func (tt *TranspositionTable) unlockAllStripesRead() {
	for i := len(tt.stripeLocks) - 1; i >= 0; i-- {
		tt.stripeLocks[i].RUnlock()
	}
}

func clampScore(score int) int32 {
	if score > 1<<31-1 {
		return 1<<31 - 1
	}
	if score < -(1 << 31) {
		return -(1 << 31)
	}
	return int32(score)
}

func nextPowerOfTwo(v uint64) uint64 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}
