package lisp9

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ports.go implements §3/§4.1's port table: an array of NPORTS slots
// owned by each Heap, each either empty or backed by a Go reader/writer.
// The "low-level byte I/O over file handles" the spec defers is the
// hand-rolled buffering the original C does itself; using bufio/os
// here is the idiomatic substitute (SPEC_FULL.md §3).

type portEntry struct {
	in     *bufio.Reader
	out    *bufio.Writer
	closer io.Closer
	name   string
	used   bool
	lock   bool
	open   bool
}

// PortTable owns every open port. Ports are reclaimed by GC: a port
// whose USED bit wasn't set during mark, and which isn't LOCKed, is
// closed on sweep (§4.1).
type PortTable struct {
	h      *Heap
	slots  []portEntry
	atoms  []Cell // atom cell for each slot, 0 == unallocated
}

func newPortTable(h *Heap, n int) *PortTable {
	return &PortTable{h: h, slots: make([]portEntry, n), atoms: make([]Cell, n)}
}

func (pt *PortTable) alloc(atomType AtomType, tagBits byte) (int, Cell, error) {
	for i := range pt.slots {
		if !pt.slots[i].open {
			return i, 0, nil
		}
	}
	return -1, 0, &LispError{Kind: ErrResource, Message: "too many open ports"}
}

// OpenInFile opens path for reading and returns an in-port atom
// (`open-infile`, §6).
func (pt *PortTable) OpenInFile(path string) (Cell, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	return pt.register(TInPort, &portEntry{in: bufio.NewReader(f), closer: f, name: path, open: true})
}

// OpenOutFile opens path for writing, truncating it (`open-outfile`,
// §6).
func (pt *PortTable) OpenOutFile(path string) (Cell, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	return pt.register(TOutPort, &portEntry{out: bufio.NewWriter(f), closer: f, name: path, open: true})
}

// OpenInString wraps an in-memory string as an in-port, the same way
// the reader accepts "either a port or an in-memory string" (§4.3).
func (pt *PortTable) OpenInString(s string) (Cell, error) {
	return pt.register(TInPort, &portEntry{in: bufio.NewReader(strings.NewReader(s)), name: "(string)", open: true})
}

// RegisterStdio wires slot 0/1 to stdin/stdout, LOCKed so GC never
// closes them (§5 Resource ownership).
func (pt *PortTable) RegisterStdio() (stdin, stdout Cell) {
	in, _ := pt.register(TInPort, &portEntry{in: bufio.NewReader(os.Stdin), name: "(stdin)", open: true, lock: true})
	out, _ := pt.register(TOutPort, &portEntry{out: bufio.NewWriter(os.Stdout), name: "(stdout)", open: true, lock: true})
	return in, out
}

func (pt *PortTable) register(t AtomType, e *portEntry) (Cell, error) {
	idx, _, err := pt.alloc(t, 0)
	if err != nil {
		return 0, err
	}
	tagBits := byte(tagAtom | tagPort)
	if e.lock {
		tagBits |= tagLock
	}
	atom := pt.h.Alloc(Cell(t), Cell(idx), tagBits)
	pt.slots[idx] = *e
	pt.atoms[idx] = atom
	return atom, nil
}

func (pt *PortTable) entry(atom Cell) *portEntry {
	idx := int(pt.h.cdr[atom])
	return &pt.slots[idx]
}

func (pt *PortTable) Lock(atom Cell)   { pt.h.tag[atom] |= tagLock }
func (pt *PortTable) Unlock(atom Cell) { pt.h.tag[atom] &^= tagLock }

func (pt *PortTable) ReadByte(atom Cell) (byte, error) {
	e := pt.entry(atom)
	if e.in == nil {
		return 0, io.EOF
	}
	return e.in.ReadByte()
}

func (pt *PortTable) PeekByte(atom Cell) (byte, error) {
	e := pt.entry(atom)
	if e.in == nil {
		return 0, io.EOF
	}
	b, err := e.in.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// PeekN looks ahead n bytes without consuming them, for the reader's
// one case of genuine two-character lookahead (a bare `.` deciding
// between a dotted-pair tail and a symbol like `.5`). A short read
// (fewer than n bytes available) returns what it has with no error.
func (pt *PortTable) PeekN(atom Cell, n int) []byte {
	e := pt.entry(atom)
	if e.in == nil {
		return nil
	}
	b, _ := e.in.Peek(n)
	return b
}

func (pt *PortTable) WriteByte(atom Cell, b byte) error {
	e := pt.entry(atom)
	if e.out == nil {
		return io.ErrClosedPipe
	}
	return e.out.WriteByte(b)
}

func (pt *PortTable) WriteString(atom Cell, s string) error {
	e := pt.entry(atom)
	if e.out == nil {
		return io.ErrClosedPipe
	}
	_, err := e.out.WriteString(s)
	return err
}

func (pt *PortTable) Flush(atom Cell) error {
	e := pt.entry(atom)
	if e.out == nil {
		return nil
	}
	return e.out.Flush()
}

// close releases slot idx: flushes output, closes the underlying
// handle (if any), and marks the slot free.
func (pt *PortTable) close(idx int) {
	e := &pt.slots[idx]
	if !e.open {
		return
	}
	if e.out != nil {
		e.out.Flush()
	}
	if e.closer != nil {
		e.closer.Close()
	}
	*e = portEntry{}
	pt.atoms[idx] = 0
}

// sweep is invoked once per GC cycle (gc.go), after marking has
// tagged every port reached from a live root with tagUsed: any open,
// unlocked, not-used port is closed and its slot freed (§4.1).
func (pt *PortTable) sweep(h *Heap) {
	for i := range pt.slots {
		if !pt.slots[i].open {
			continue
		}
		atom := pt.atoms[i]
		if atom == 0 {
			continue
		}
		if h.tag[atom]&tagLock != 0 {
			continue
		}
		if h.tag[atom]&tagUsed != 0 {
			h.tag[atom] &^= tagUsed
			continue
		}
		pt.close(i)
	}
}
