package engine

import "sync"

// PawnEntry stores a cached pawn structure score for one color.
type PawnEntry struct {
	Key   uint64
	Score int32
	valid bool
}

// PawnTable is a hash table for caching pawn structure evaluations,
// keyed by a color's pawn key. It is safe for concurrent use.
type PawnTable struct {
	mu      sync.Mutex
	entries []PawnEntry
	mask    uint64
	hits    uint64
	probes  uint64
}

// NewPawnTable creates a new pawn hash table with the given size in MB.
func NewPawnTable(sizeMB int) *PawnTable {
	// Each entry is 16 bytes after padding, round to power of 2
	entrySize := 16
	numEntries := (max(sizeMB, 1) * 1024 * 1024) / entrySize

	// Round down to power of 2
	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a pawn structure score in the hash table.
func (pt *PawnTable) Probe(key uint64) (int, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.probes++
	entry := &pt.entries[key&pt.mask]
	if entry.valid && entry.Key == key {
		pt.hits++
		return int(entry.Score), true
	}
	return 0, false
}

// Store saves a pawn structure score in the hash table, replacing whatever
// occupied the slot.
func (pt *PawnTable) Store(key uint64, score int) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.entries[key&pt.mask] = PawnEntry{Key: key, Score: int32(score), valid: true}
}

// HitRate returns the fraction of probes that hit, in permille.
func (pt *PawnTable) HitRate() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.probes == 0 {
		return 0
	}
	return int(pt.hits * 1000 / pt.probes)
}

// Clear clears the pawn hash table.
func (pt *PawnTable) Clear() {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
	pt.hits, pt.probes = 0, 0
}
