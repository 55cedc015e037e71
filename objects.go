package lisp9

// Cell is an index into the heap's parallel car/cdr/tag arrays.
// Negative values are the special constants of §3: NIL, True, EOF,
// Undef, plus two reader-internal markers that never escape into
// Lisp data (rparen, dot).
type Cell int

const (
	NIL    Cell = -1
	True   Cell = -2
	EOF    Cell = -3
	Undef  Cell = -4
	rparen Cell = -5 // reader: saw a closing paren
	dotMark Cell = -6 // reader: saw a `.` introducing a dotted tail
)

// Special reports whether c is one of the negative special
// constants rather than an index into the cell arrays.
func (c Cell) Special() bool { return c < 0 }

// Tag bits, one byte per cell (§3).
const (
	tagAtom   byte = 0x01 // Atom, Car = type, Cdr = payload/vector pointer
	tagMark   byte = 0x02 // GC mark, transient
	tagTrav   byte = 0x04 // GC traversal state, transient
	tagVector byte = 0x08 // Vector, Car = vector kind, Cdr = arena offset
	tagPort   byte = 0x10 // Atom is an I/O port
	tagUsed   byte = 0x20 // Port: referenced since last sweep
	tagLock   byte = 0x40 // Port: locked, never auto-closed
	tagConst  byte = 0x80 // Node is immutable
)

// AtomType is the closed set of type tags an ATOM cell's Car can
// hold (§3 "Atoms").
type AtomType Cell

const (
	TBytecode AtomType = iota
	TCatchTag
	TChar
	TClosure
	TFixnum
	TInPort
	TOutPort
)

func (t AtomType) String() string {
	names := [...]string{"bytecode", "catch-tag", "char", "closure", "fixnum", "in-port", "out-port"}
	if int(t) < 0 || int(t) >= len(names) {
		return "atom"
	}
	return names[t]
}

// VecKind is the closed set of payload kinds a VECTOR cell's Car can
// hold (§3 "Vectors").
type VecKind Cell

const (
	VString VecKind = iota
	VSymbol
	VVector
)

// There is no separate Go type per object kind: pairs, vectors,
// atoms, closures, catch-tags and ports are all plain Cell values,
// told apart by their tag bits and Car type.

// IsAtom, IsVector, IsPair classify a non-special cell per §3:
// exactly one of these is true for any live, non-special cell.
func (h *Heap) IsAtom(c Cell) bool   { return !c.Special() && h.tag[c]&tagAtom != 0 }
func (h *Heap) IsVector(c Cell) bool { return !c.Special() && h.tag[c]&tagVector != 0 }
func (h *Heap) IsPair(c Cell) bool {
	return !c.Special() && h.tag[c]&(tagAtom|tagVector) == 0
}

// IsConst reports whether mutation of c's contents is forbidden.
func (h *Heap) IsConst(c Cell) bool {
	return !c.Special() && h.tag[c]&tagConst != 0
}

func (h *Heap) Car(c Cell) Cell { return h.car[c] }
func (h *Heap) Cdr(c Cell) Cell { return h.cdr[c] }

// SetCar/SetCdr mutate a cell's fields. Per §3 invariants, CONST
// cells must never reach these except during construction, before
// the CONST bit is set; callers (SETARG/SETREF/setcar/setcdr) are
// responsible for checking IsConst first and raising a type error.
func (h *Heap) SetCar(c Cell, v Cell) { h.car[c] = v }
func (h *Heap) SetCdr(c Cell, v Cell) { h.cdr[c] = v }

func (h *Heap) AtomType(c Cell) AtomType { return AtomType(h.car[c]) }
func (h *Heap) VecKind(c Cell) VecKind   { return VecKind(h.car[c]) }

// Fixnum / Char helpers. Fixnums and chars are ATOM cells whose Cdr
// holds the payload directly (no vector indirection needed for a
// machine-word sized value).

func (h *Heap) NewFixnum(n int) Cell {
	return h.Alloc(Cell(TFixnum), Cell(n), tagAtom|tagConst)
}

func (h *Heap) Fixnum(c Cell) int {
	return int(h.cdr[c])
}

func (h *Heap) IsFixnum(c Cell) bool {
	return h.IsAtom(c) && h.AtomType(c) == TFixnum
}

func (h *Heap) NewChar(r rune) Cell {
	return h.Alloc(Cell(TChar), Cell(r), tagAtom|tagConst)
}

func (h *Heap) CharVal(c Cell) rune {
	return rune(h.cdr[c])
}

func (h *Heap) IsChar(c Cell) bool {
	return h.IsAtom(c) && h.AtomType(c) == TChar
}

// Pairs.

func (h *Heap) Cons(a, d Cell) Cell {
	return h.Alloc(a, d, 0)
}

func (h *Heap) Caar(c Cell) Cell { return h.car[h.car[c]] }
func (h *Heap) Cadr(c Cell) Cell { return h.car[h.cdr[c]] }
func (h *Heap) Cdar(c Cell) Cell { return h.cdr[h.car[c]] }
func (h *Heap) Cddr(c Cell) Cell { return h.cdr[h.cdr[c]] }

// ListLen returns the length of a proper list, or -1 if it is
// improper or circular (bounded walk guards against cycles, which
// macro expansion can legitimately create per §9).
func (h *Heap) ListLen(c Cell) int {
	n := 0
	slow, fast := c, c
	for fast != NIL {
		if !h.IsPair(fast) {
			return -1
		}
		fast = h.cdr[fast]
		n++
		if fast == NIL {
			break
		}
		if !h.IsPair(fast) {
			return -1
		}
		fast = h.cdr[fast]
		n++
		slow = h.cdr[slow]
		if fast == slow {
			return -1 // cycle
		}
	}
	return n
}
