package lisp9

// vectors.go layers the three arena payload kinds from §3 ("Vectors")
// on top of Heap.AllocVector: strings (raw bytes + trailing NUL),
// symbols (raw bytes, no NUL needed since length is tracked in the
// arena header), and general vectors (arrays of Cell).

// NewString allocates a STRING vector holding s plus a trailing NUL,
// as the reader does for every string literal (§4.3).
func (h *Heap) NewString(s string) Cell {
	c := h.AllocVector(VString, len(s)+1)
	copy(h.vecBytes(c), s)
	return c
}

func (h *Heap) IsString(c Cell) bool {
	return h.IsVector(c) && h.VecKind(c) == VString
}

// StringVal returns the Go string content of a STRING vector,
// trimming the trailing NUL.
func (h *Heap) StringVal(c Cell) string {
	b := h.vecBytes(c)
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}

// StringLen returns the string's length in bytes, not counting the
// trailing NUL (the `ssize` primitive, §6).
func (h *Heap) StringLen(c Cell) int {
	return h.VecSize(c) - 1
}

// NewVector allocates a general VECTOR of n cells, all initialised to
// fill (the `mkvec` primitive's 1-or-2-arity form, §6).
func (h *Heap) NewVector(n int, fill Cell) Cell {
	c := h.AllocVector(VVector, n*cellSize)
	for i := 0; i < n; i++ {
		h.VectorSet(c, i, fill)
	}
	return c
}

func (h *Heap) IsGenVector(c Cell) bool {
	return h.IsVector(c) && h.VecKind(c) == VVector
}

func (h *Heap) VectorLen(c Cell) int { return h.VecSize(c) / cellSize }

func (h *Heap) VectorRef(c Cell, i int) Cell {
	b := h.vecBytes(c)
	return Cell(getU32(b[i*cellSize:]))
}

func (h *Heap) VectorSet(c Cell, i int, v Cell) {
	b := h.vecBytes(c)
	putU32(b[i*cellSize:], uint32(v))
}

const cellSize = 4 // bytes used to store one Cell index in the arena

// newSymbolVector allocates a SYMBOL vector holding name's bytes
// (§4.2); it is unexported because symbol creation always goes
// through SymbolTable.Intern so identity is preserved.
func (h *Heap) newSymbolVector(name string) Cell {
	c := h.AllocVector(VSymbol, len(name))
	copy(h.vecBytes(c), name)
	return c
}

func (h *Heap) IsSymbolVector(c Cell) bool {
	return h.IsVector(c) && h.VecKind(c) == VSymbol
}

func (h *Heap) SymbolName(c Cell) string {
	return string(h.vecBytes(c))
}
