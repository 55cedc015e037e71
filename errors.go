package lisp9

import "fmt"

// ErrorKind classifies a LispError the way §7 groups recoverable
// conditions: reader, type, range, resource, and arity errors all go
// through the same `error(msg, obj)` path and differ only in how
// they're produced.
type ErrorKind int

const (
	ErrOther ErrorKind = iota
	ErrReader
	ErrType
	ErrRange
	ErrResource
	ErrArity
)

func (k ErrorKind) String() string {
	switch k {
	case ErrReader:
		return "reader"
	case ErrType:
		return "type"
	case ErrRange:
		return "range"
	case ErrResource:
		return "resource"
	case ErrArity:
		return "arity"
	default:
		return "error"
	}
}

// SymbolRef is one entry of the REF trace ring buffer (§4.8, §7):
// the symbol id a REF instruction dereferenced, kept so an error
// report can show the last NTRACE global references.
type SymbolRef struct {
	Sym  Cell
	Name string
}

// LispError is the condition produced by the in-language `error`
// primitive (§7). It propagates out of Machine.Eval as an ordinary Go
// error and is formatted and reported at the driver boundary; no
// `*errtag*` handler turns it into a throw.
type LispError struct {
	Kind     ErrorKind
	Message  string
	Irritant Cell
	Have     string // printed form of Irritant; no raise site in this package sets it, so Error() prints the message alone
	Trace    []SymbolRef
}

func (e *LispError) Error() string {
	if e.Have != "" {
		return fmt.Sprintf("*** error: %s: %s", e.Message, e.Have)
	}
	return fmt.Sprintf("*** error: %s", e.Message)
}

// gcFatal is panicked by the heap allocator when there is no room
// left after a full GC cycle (§7, "Unrecoverable: allocator
// exhaustion at bootstrap"). It must only ever be recovered at the
// process boundary (cmd/lisp9c), never inside the VM loop.
type gcFatal struct{ reason string }

func (e gcFatal) Error() string { return "*** fatal: " + e.reason }

// errLongjmp is the Go stand-in for the original's longjmp unwinding
// (§4.8 and §7), used here for catch*/throw*: panicking with this type
// and recovering it at the catch point is the idiomatic replacement for
// hand-rolled setjmp/longjmp register unwinding. doThrow is its only
// producer and always sets tag to the catch* frame being unwound to.
type errLongjmp struct {
	tag *catchTag
	val Cell
	err *LispError // not set by doThrow; Error() reports it when present
}

func (e errLongjmp) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return "*** uncaught throw*"
}
