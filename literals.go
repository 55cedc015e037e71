package lisp9

import "fmt"

// literals.go implements §4.2's literal pool: a dense (vector,
// byte-map, hash-map) triple. Immutable scalars dedupe through
// obhash; mutable compounds always get a fresh slot. The byte-map
// states mirror the GC's USED/ALLOCATED/FREE cycle exactly as §4.1
// describes for sweep: USED→ALLOCATED confirms a slot survived this
// GC, ALLOCATED→FREE reclaims one that didn't get re-marked.
type litState byte

const (
	litFree litState = iota
	litAllocated
	litUsed
)

type LiteralPool struct {
	h      *Heap
	cfg    *Config
	slots  []Cell
	states []litState
	obhash map[string]int
	cursor int
}

func newLiteralPool(h *Heap, cfg *Config) *LiteralPool {
	n := cfg.GetInt("literals.chunksize")
	return &LiteralPool{
		h:      h,
		cfg:    cfg,
		slots:  make([]Cell, n),
		states: make([]litState, n),
		obhash: make(map[string]int),
	}
}

// dedupKey returns the hash key used to deduplicate immutable
// scalars, and false for mutable compounds (pairs, general vectors,
// closures) which always receive a fresh slot (§4.2).
func (lp *LiteralPool) dedupKey(c Cell) (string, bool) {
	h := lp.h
	switch {
	case c == NIL || c == True || c == EOF || c == Undef:
		return fmt.Sprintf("k%d", c), true
	case h.IsFixnum(c):
		return fmt.Sprintf("n%d", h.Fixnum(c)), true
	case h.IsChar(c):
		return fmt.Sprintf("c%d", h.CharVal(c)), true
	case h.IsString(c):
		return "s" + h.StringVal(c), true
	case h.IsSymbolVector(c):
		return "y" + h.SymbolName(c), true
	default:
		return "", false
	}
}

// Emit interns value, returning its slot index for a `QUOTE idx`
// instruction (§4.7).
func (lp *LiteralPool) Emit(value Cell) int {
	if key, ok := lp.dedupKey(value); ok {
		if idx, found := lp.obhash[key]; found {
			return idx
		}
		idx := lp.obslot()
		lp.slots[idx] = value
		lp.states[idx] = litAllocated
		lp.obhash[key] = idx
		return idx
	}
	idx := lp.obslot()
	lp.slots[idx] = value
	lp.states[idx] = litAllocated
	return idx
}

// Get returns the value stored at slot idx.
func (lp *LiteralPool) Get(idx int) Cell { return lp.slots[idx] }

func (lp *LiteralPool) Len() int { return len(lp.slots) }

// obslot rotates a cursor looking for a FREE slot; on exhaustion it
// runs a GC cycle, and if the pool is still full, grows both tables
// by CHUNKSIZE up to the configured cap before failing fatally
// (§4.2).
func (lp *LiteralPool) obslot() int {
	if idx, ok := lp.scanFree(); ok {
		return idx
	}
	lp.h.GC()
	if idx, ok := lp.scanFree(); ok {
		return idx
	}
	maxSlots := lp.cfg.GetInt("literals.maxslots")
	n := len(lp.slots)
	if n >= maxSlots {
		panic(gcFatal{"out of literal slots"})
	}
	chunk := lp.cfg.GetInt("literals.chunksize")
	newN := n + chunk
	if newN > maxSlots {
		newN = maxSlots
	}
	lp.slots = append(lp.slots, make([]Cell, newN-n)...)
	lp.states = append(lp.states, make([]litState, newN-n)...)
	idx := n
	lp.cursor = idx + 1
	return idx
}

func (lp *LiteralPool) scanFree() (int, bool) {
	n := len(lp.slots)
	for i := 0; i < n; i++ {
		idx := (lp.cursor + i) % n
		if lp.states[idx] == litFree {
			lp.cursor = (idx + 1) % n
			return idx, true
		}
	}
	return 0, false
}

// MarkUsed is called by marklit (gc.go) for every literal slot a
// live BYTECODE atom references via QUOTE.
func (lp *LiteralPool) MarkUsed(idx int) {
	if idx >= 0 && idx < len(lp.states) && lp.states[idx] != litFree {
		lp.states[idx] = litUsed
	}
}

// Sweep advances every slot's state one step of the USED→ALLOCATED
// →FREE cycle (§4.1 "Sweep (cells)").
func (lp *LiteralPool) Sweep() {
	for i := range lp.states {
		switch lp.states[i] {
		case litUsed:
			lp.states[i] = litAllocated
		case litAllocated:
			lp.states[i] = litFree
			lp.slots[i] = NIL
		}
	}
}

// Slot liveness is established only through marklit (gc.go), which
// walks reachable BYTECODE atoms for QUOTE operands and calls
// MarkUsed; a literal pool slot is therefore never a GC root on its
// own, matching §4.1's design (unreferenced literals must be
// collectible even while still ALLOCATED).
