package lisp9

// heap.go implements the two fixed-capacity pools from §4.1: the
// cell pool (car/cdr/tag parallel arrays) and the vector arena. Both
// are sized once at startup from Config and never grow — exhaustion
// triggers GC (gc.go) and, failing that, a fatal gcFatal panic,
// exactly as §4.1/§7 describe.

const arenaHeaderSize = 8 // backlink word (4 bytes) + size-in-bytes word (4 bytes)

// Heap owns the cell pool, the vector arena, and the tables layered
// on top of them (symbols, literals, ports). It is the "managed
// heap" of §1: every other component only ever holds Cell indices
// into it.
type Heap struct {
	car []Cell
	cdr []Cell
	tag []byte

	free  Cell // head of the free list, threaded through cdr
	nfree int

	arena    []byte
	arenaTop int

	cfg *Config

	Syms  *SymbolTable
	Lits  *LiteralPool
	Ports *PortTable

	// protected is the explicit protected-list root (§4.1): a stack
	// of cells that call sites push while building structures that
	// aren't reachable from any other root yet.
	protected []Cell

	// tmpCar/tmpCdr are the two temporary roots required while a
	// single Alloc call is in flight (§4.1).
	tmpCar, tmpCdr Cell
	allocating     bool

	// roots are additional external root pointers (VM registers,
	// compile-time structures, globals, macros, …) registered by
	// higher-level components via AddRoot.
	roots []*Cell

	// stackVec/stackLen narrow marking of the VM's value-stack vector
	// to its logical length (SetStackRoot, gc.go).
	stackVec *Cell
	stackLen func() int

	gcCycles int
}

// NewHeap allocates both pools at their configured fixed capacity and
// threads the initial free list through Cdr.
func NewHeap(cfg *Config) *Heap {
	n := cfg.GetInt("heap.cells")
	h := &Heap{
		car:   make([]Cell, n),
		cdr:   make([]Cell, n),
		tag:   make([]byte, n),
		arena: make([]byte, cfg.GetInt("heap.vcells")),
		cfg:   cfg,
	}
	h.free = NIL
	for i := n - 1; i >= 0; i-- {
		h.cdr[Cell(i)] = h.free
		h.free = Cell(i)
	}
	h.nfree = n
	h.Syms = newSymbolTable(h)
	h.Lits = newLiteralPool(h, cfg)
	h.Ports = newPortTable(h, cfg.GetInt("heap.ports"))
	return h
}

// AddRoot registers a pointer to a Cell-valued field that the GC must
// trace on every cycle (§4.1's root set: current bytecode, compile
// environment, globals, the runtime stack, the accumulator, …).
func (h *Heap) AddRoot(p *Cell) { h.roots = append(h.roots, p) }

// Protect pushes c onto the protected-list root and returns a token
// to hand to Unprotect; used by the reader/closure-converter/codegen
// while assembling structures that aren't yet reachable from any
// other root.
func (h *Heap) Protect(c Cell) int {
	h.protected = append(h.protected, c)
	return len(h.protected) - 1
}

// Unprotect pops the protected list back down to (and including) the
// entry returned by Protect.
func (h *Heap) Unprotect(mark int) {
	h.protected = h.protected[:mark]
}

// Alloc pops a cell off the free list, installing car/cdr/tag. If the
// free list is empty it runs a GC cycle; if that doesn't free any
// cells either, it panics with gcFatal (§7, unrecoverable).
//
// Per §4.1, the fields that hold cell pointers are kept visible to the
// GC as temporary roots for the duration of the call, since either may
// itself be a freshly-built, not-yet-reachable object: car and cdr of
// a pair, and the Cdr of a closure or bytecode atom. The raw payloads
// of other atoms and of vector cells are not roots.
func (h *Heap) Alloc(car, cdr Cell, tag byte) Cell {
	prevCar, prevCdr, prevAllocating := h.tmpCar, h.tmpCdr, h.allocating
	h.tmpCar, h.tmpCdr, h.allocating = NIL, NIL, true
	switch {
	case tag&(tagAtom|tagVector) == 0:
		h.tmpCar, h.tmpCdr = car, cdr
	case tag&tagAtom != 0 && (AtomType(car) == TClosure || AtomType(car) == TBytecode):
		h.tmpCdr = cdr
	}
	defer func() { h.tmpCar, h.tmpCdr, h.allocating = prevCar, prevCdr, prevAllocating }()

	if h.free == NIL {
		h.GC()
		if h.free == NIL {
			panic(gcFatal{"out of nodes"})
		}
	}
	c := h.free
	h.free = h.cdr[c]
	h.nfree--
	h.car[c] = car
	h.cdr[c] = cdr
	h.tag[c] = tag
	return c
}

// FreeCells reports the number of cells currently on the free list,
// used by tests asserting the invariant "free-list length + live
// count = N_CELLS" (§8).
func (h *Heap) FreeCells() int { return h.nfree }

func (h *Heap) TotalCells() int { return len(h.car) }

// allocVectorBytes bump-allocates nbytes (plus header) in the arena,
// running the compactor on overflow (§4.1). It returns the payload
// offset (just past the header) and the offset of the backlink word.
func (h *Heap) allocVectorBytes(nbytes int) (payload, backlink int, ok bool) {
	need := arenaHeaderSize + nbytes
	if h.arenaTop+need > len(h.arena) {
		h.Compact()
		if h.arenaTop+need > len(h.arena) {
			return 0, 0, false
		}
	}
	backlink = h.arenaTop
	payload = backlink + arenaHeaderSize
	putU32(h.arena[backlink:], 0) // backlink fixed up by caller once the owner cell exists
	putU32(h.arena[backlink+4:], uint32(nbytes))
	h.arenaTop += need
	return payload, backlink, true
}

// AllocVector creates a VECTOR-tagged cell of the given kind with
// nbytes of arena payload, zero-initialised.
//
// The arena region is carved out (allocVectorBytes, which may run the
// compactor on overflow) before the owner cell exists, and only then
// is the owner cell allocated with its real, final Cdr — the payload
// offset Compact/restoreBacklink expect a VECTOR-tagged cell to always
// hold. A vector-tagged cell with a not-yet-valid Cdr must never be
// reachable from Mark: if the owner existed first and Compact ran
// while its Cdr was still a placeholder, restoreBacklink would index
// the arena at a bogus, possibly negative offset.
func (h *Heap) AllocVector(kind VecKind, nbytes int) Cell {
	payload, backlink, ok := h.allocVectorBytes(nbytes)
	if !ok {
		panic(gcFatal{"out of vector space"})
	}
	owner := h.Alloc(Cell(kind), Cell(payload), tagVector)
	putU32(h.arena[backlink:], uint32(owner))
	return owner
}

func (h *Heap) vecOffset(c Cell) int   { return int(h.cdr[c]) }
func (h *Heap) vecBacklink(c Cell) int { return h.vecOffset(c) - arenaHeaderSize }
func (h *Heap) VecSize(c Cell) int {
	return int(getU32(h.arena[h.vecBacklink(c)+4:]))
}

func (h *Heap) vecBytes(c Cell) []byte {
	off := h.vecOffset(c)
	return h.arena[off : off+h.VecSize(c)]
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
