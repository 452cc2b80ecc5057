package tt

import (
	"math/bits"
	"sync/atomic"

	"github.com/corvid-chess/corvid/pkg/board"
)

// slot is one lockless entry: data holds the packed Entry, lock holds key XOR data. A reader
// recomputes the key from the two words and discards the slot if it doesn't match, which is safe
// against a write torn by a concurrent writer: the classic two-word XOR trick, since Go has no
// single atomic 128-bit write.
type slot struct {
	lock atomic.Uint64
	data atomic.Uint64
}

func (s *slot) load(key board.ZobristKey) (Entry, bool) {
	lock := s.lock.Load()
	data := s.data.Load()
	if lock^data != uint64(key) {
		return Entry{}, false
	}
	return unpack(data), true
}

func (s *slot) store(key board.ZobristKey, e Entry) {
	data := e.pack()
	s.data.Store(data)
	s.lock.Store(uint64(key) ^ data)
}

// empty reports whether the slot has never been written (both words zero). A zero data word
// decodes to depth 0, age 0, ExactBound, null move -- indistinguishable from a genuine such
// entry, but that ambiguity only costs one replacement decision and never a correctness bug.
func (s *slot) empty() bool {
	return s.lock.Load() == 0 && s.data.Load() == 0
}

// Table is a fixed-size transposition table of key-indexed clusters.
type Table struct {
	clusters [][clusterSize]slot
	mask     uint64
	age      uint8
}

// New builds a table sized to at most sizeMiB megabytes (rounded down to a power of two number
// of clusters, with at least one cluster), per the `set_size(mib)` contract.
func New(sizeMiB int) *Table {
	t := &Table{}
	t.Resize(sizeMiB)
	return t
}

// Resize implements `set_size(mib)`: reallocates the table, discarding all entries.
func (t *Table) Resize(sizeMiB int) {
	bytesPerCluster := uint64(clusterSize) * 16 // two uint64 words per slot
	n := uint64(sizeMiB) << 20 / bytesPerCluster
	if n == 0 {
		n = 1
	}
	numClusters := uint64(1) << (63 - bits.LeadingZeros64(n))

	t.clusters = make([][clusterSize]slot, numClusters)
	t.mask = numClusters - 1
	t.age = 0
}

// Clear implements `clear`: wipes every entry without reallocating.
func (t *Table) Clear() {
	for i := range t.clusters {
		for j := range t.clusters[i] {
			t.clusters[i][j].lock.Store(0)
			t.clusters[i][j].data.Store(0)
		}
	}
	t.age = 0
}

// NewSearch bumps the generation counter so stale entries from prior searches lose replacement
// priority against fresh ones, without needing to touch every slot.
func (t *Table) NewSearch() {
	t.age = (t.age + 1) & ageMask
}

// Prefetch implements `prefetch(key)`: touches the cluster's backing memory so it is resident in
// cache by the time Get or Store is called, overlapping move generation with the next node's TT
// lookup. Go has no explicit prefetch instruction, so this performs the cheapest possible real
// read.
func (t *Table) Prefetch(key board.ZobristKey) {
	c := &t.clusters[uint64(key)&t.mask]
	for i := range c {
		_ = c[i].lock.Load()
	}
}

// Get implements `get(key) -> Option<Entry>`.
func (t *Table) Get(key board.ZobristKey) (Entry, bool) {
	c := &t.clusters[uint64(key)&t.mask]
	for i := range c {
		if e, ok := c[i].load(key); ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Store implements `store(key, move, bound, score, depth, ply_distance)`. score must already be
// in distance-from-root form; ply is the distance-from-root of the node being stored, used to
// rebase mate scores to distance-from-node via ScoreToTT.
func (t *Table) Store(key board.ZobristKey, move board.Move, bound Bound, score int32, depth, ply int) {
	c := &t.clusters[uint64(key)&t.mask]

	fresh := Entry{
		Move:  move,
		Score: ScoreToTT(score, ply),
		Depth: depth,
		Bound: bound,
		Age:   t.age,
	}

	var victim *slot
	var emptySlot *slot
	victimPriority := int(^uint(0) >> 1) // max int

	for i := range c {
		s := &c[i]
		if s.empty() {
			if emptySlot == nil {
				emptySlot = s
			}
			continue
		}
		lock := s.lock.Load()
		data := s.data.Load()
		if lock^data == uint64(key) {
			existing := unpack(data)
			if fresh.Depth < existing.Depth && fresh.Move == 0 && existing.Move != 0 {
				// Preserve the hint move when overwriting a same-key entry with a
				// shallower search.
				fresh.Move = existing.Move
			}
			s.store(key, fresh)
			return
		}
		if p := replacementPriority(unpack(data), t.age); p < victimPriority {
			victimPriority = p
			victim = s
		}
	}

	if emptySlot != nil {
		victim = emptySlot
	} else if victim == nil {
		victim = &c[0]
	}
	victim.store(key, fresh)
}

// replacementPriority ranks a cluster occupant for eviction: deeper and more recent entries are
// worth keeping, so lower priority values are evicted first.
func replacementPriority(e Entry, currentAge uint8) int {
	ageDiff := int(currentAge) - int(e.Age)
	if ageDiff < 0 {
		ageDiff += int(ageMask) + 1
	}
	return e.Depth - 2*ageDiff
}

// Size returns the table size in bytes.
func (t *Table) Size() uint64 {
	return uint64(len(t.clusters)) * clusterSize * 16
}

// Used estimates utilization as a fraction in [0;1] by sampling the first 1000 clusters, the
// cheap approximation UCI's `hashfull` reporting calls for.
func (t *Table) Used() float64 {
	n := len(t.clusters)
	if n == 0 {
		return 0
	}
	sample := n
	if sample > 1000 {
		sample = 1000
	}
	var used int
	for i := 0; i < sample; i++ {
		for j := range t.clusters[i] {
			if !t.clusters[i][j].empty() {
				used++
			}
		}
	}
	return float64(used) / float64(sample*clusterSize)
}
