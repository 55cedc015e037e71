package lisp9

// env.go implements §3's global environment: an association list of
// (symbol, box) pairs, grown in insertion order as new free variables
// and top-level `def`s are discovered (§4.6). A box is a one-cell
// pair whose Car is the current value, shared by every closure that
// captured it.

// Env is the growing global environment: a Lisp list of (symbol . box)
// pairs, newest entry first, mirrored by an index for O(1) lookup by
// name during closure conversion.
type Env struct {
	h     *Heap
	list  Cell // NIL-terminated list of (symbol . box) pairs
	index map[string]int // symbol name -> position from the tail (0 = oldest)
	order []Cell         // symbol cells in insertion order, parallel to index
}

func newEnv(h *Heap) *Env {
	e := &Env{h: h, list: NIL, index: make(map[string]int)}
	h.AddRoot(&e.list)
	return e
}

// Lookup returns the environment index of name and its box cell, or
// ok=false if name has never been bound.
func (e *Env) Lookup(name string) (idx int, box Cell, ok bool) {
	i, found := e.index[name]
	if !found {
		return 0, 0, false
	}
	return i, e.valueBox(i), true
}

// Define appends a fresh (symbol . box) binding for sym with initial
// value val, growing Env in insertion order, and returns its index
// (§4.6 "def at top level appends the new symbol to the global
// environment"). A sym that is already bound keeps its box and its
// current value; its existing index is returned.
func (e *Env) Define(sym Cell, val Cell) int {
	name := e.h.SymbolName(sym)
	if idx, _, ok := e.Lookup(name); ok {
		return idx
	}
	box := e.h.Cons(val, NIL)
	pair := e.h.Cons(sym, box)
	e.list = e.h.Cons(pair, e.list)
	idx := len(e.order)
	e.order = append(e.order, sym)
	e.index[name] = idx
	return idx
}

// Value returns the current value stored in the box at index i.
func (e *Env) Value(i int) Cell { return e.h.car[e.valueBox(i)] }

// SetValue mutates the box at index i, visible to every closure
// sharing it.
func (e *Env) SetValue(i int, v Cell) { e.h.car[e.valueBox(i)] = v }

func (e *Env) valueBox(i int) Cell {
	target := len(e.order) - 1 - i
	n := e.list
	for k := 0; k < target; k++ {
		n = e.h.cdr[n]
	}
	return e.h.cdr[e.h.car[n]]
}

func (e *Env) Len() int { return len(e.order) }
