package lisp9

import (
	"io"
	"strconv"
	"strings"
)

// reader.go implements §4.3: a recursive-descent S-expression reader
// reading from a port (so a string source, §4.3's "in-memory string",
// is just OpenInString wrapped the same way as any other port). The
// shape — byte-at-a-time peek/consume over an input source, tracked
// by a small cursor struct — follows the teacher's BaseParser, adapted
// from a rune-array buffer to a pull-based port since Lisp source can
// come from an interactive stdin stream.

const symbolChars = "!$%^&*-/_+=~.?<>:"

// Reader parses one S-expression at a time from a port.
type Reader struct {
	h    *Heap
	port Cell
	intr *bool // checked by skipSpace before each character it looks at, §5 "Suspension points"
}

func NewReader(h *Heap, port Cell, intr *bool) *Reader {
	return &Reader{h: h, port: port, intr: intr}
}

func (r *Reader) errf(kind ErrorKind, msg string) error {
	return &LispError{Kind: kind, Message: msg}
}

func (r *Reader) peek() (byte, bool) {
	b, err := r.h.Ports.PeekByte(r.port)
	if err != nil {
		return 0, false
	}
	return b, true
}

func (r *Reader) next() (byte, bool) {
	b, err := r.h.Ports.ReadByte(r.port)
	if err != nil {
		return 0, false
	}
	return b, true
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' }

func isSymbolByte(b byte) bool {
	if b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9' {
		return true
	}
	return strings.IndexByte(symbolChars, b) >= 0
}

// skipSpace discards whitespace and `;`-to-end-of-line comments.
func (r *Reader) skipSpace() {
	for {
		if r.intr != nil && *r.intr {
			return
		}
		b, ok := r.peek()
		if !ok {
			return
		}
		switch {
		case isSpace(b):
			r.next()
		case b == ';':
			for {
				b, ok := r.next()
				if !ok || b == '\n' {
					break
				}
			}
		default:
			return
		}
	}
}

// Read parses and returns the next top-level form, or EOF at end of
// input. Every reader-produced compound carries CONST (§4.3). Unlike
// nested reads, a top-level form may start with a `,c`/`,h`/`,l`
// meta-command, rewritten to `(syscmd ARG)`/`(help)`/`(load ARG)`.
func (r *Reader) Read() (Cell, error) {
	r.skipSpace()
	if b, ok := r.peek(); ok && b == ',' {
		if form, matched, err := r.readMetaCommand(); matched || err != nil {
			return form, err
		}
	}
	v, err := r.read()
	if err != nil {
		return 0, err
	}
	return v, nil
}

// readMetaCommand recognizes the three top-level-only `,c`/`,h`/`,l`
// forms. It reports matched=false (consuming nothing) whenever the
// input doesn't unambiguously spell one of the three, e.g. `,(foo)`,
// `,@x` (not one of the three command letters) or `,call`/`,help`
// (the command letter isn't followed by a delimiter, so it's an
// ordinary unquoted symbol instead) — in every matched=false case the
// port is left untouched so the caller's ordinary read() sees `,`
// exactly as it would have without this check.
func (r *Reader) readMetaCommand() (Cell, bool, error) {
	b := r.h.Ports.PeekN(r.port, 3)
	if len(b) < 2 {
		return 0, false, nil
	}
	var name string
	switch b[1] {
	case 'c':
		name = "syscmd"
	case 'h':
		name = "help"
	case 'l':
		name = "load"
	default:
		return 0, false, nil
	}
	if len(b) == 3 && !isSpace(b[2]) {
		return 0, false, nil
	}
	r.next() // ','
	r.next() // command letter
	r.skipSpace()
	if name == "help" {
		return r.h.Cons(r.h.Syms.Intern(name), NIL), true, nil
	}
	arg, err := r.read()
	if err != nil {
		return 0, true, err
	}
	if arg == EOF {
		return 0, true, r.errf(ErrReader, ","+string(b[1])+" requires an argument")
	}
	return r.h.Cons(r.h.Syms.Intern(name), r.h.Cons(arg, NIL)), true, nil
}

func (r *Reader) read() (Cell, error) {
	r.skipSpace()
	b, ok := r.peek()
	if !ok {
		return EOF, nil
	}
	switch {
	case b == '(':
		r.next()
		return r.readList()
	case b == ')':
		r.next()
		return rparen, nil
	case b == '\'':
		r.next()
		return r.readQuoted("quote")
	case b == '`':
		r.next()
		return r.readQuoted("quasiquote")
	case b == '@':
		r.next()
		return r.readQuoted("quasiquote")
	case b == ',':
		r.next()
		if b2, ok := r.peek(); ok && b2 == '@' {
			r.next()
			return r.readQuoted("unquote-splice")
		}
		return r.readQuoted("unquote")
	case b == '"':
		r.next()
		return r.readString()
	case b == '#':
		r.next()
		return r.readHash()
	default:
		return r.readAtom()
	}
}

// readQuoted reads the next form and wraps it as (sym form).
func (r *Reader) readQuoted(sym string) (Cell, error) {
	v, err := r.read()
	if err != nil {
		return 0, err
	}
	if v == EOF {
		return 0, r.errf(ErrReader, "unexpected eof after "+sym)
	}
	c := r.h.Cons(v, NIL)
	c = r.h.Cons(r.h.Syms.Intern(sym), c)
	r.h.tag[c] |= tagConst
	return c, nil
}

// readList reads list elements up to a matching `)`, handling a
// single dotted tail (§4.3: "exactly one element after `.`, and the
// closing `)` required").
func (r *Reader) readList() (Cell, error) {
	r.skipSpace()
	if b, ok := r.peek(); ok && b == ')' {
		r.next()
		return NIL, nil
	}
	if b, ok := r.peek(); ok && b == '.' && r.dotIntroducer() {
		r.next()
		tail, err := r.read()
		if err != nil {
			return 0, err
		}
		r.skipSpace()
		b, ok := r.next()
		if !ok || b != ')' {
			return 0, r.errf(ErrReader, "expected ) after dotted tail")
		}
		return tail, nil
	}
	head, err := r.read()
	if err != nil {
		return 0, err
	}
	if head == EOF {
		return 0, r.errf(ErrReader, "unexpected eof in list")
	}
	mark := r.h.Protect(head)
	rest, err := r.readList()
	r.h.Unprotect(mark)
	if err != nil {
		return 0, err
	}
	c := r.h.Cons(head, rest)
	r.h.tag[c] |= tagConst
	return c, nil
}

// dotIntroducer reports whether the `.` at the input cursor
// introduces a dotted tail, i.e. is followed by whitespace or `)`,
// rather than being the first character of a symbol like `.5` or
// `...`.
func (r *Reader) dotIntroducer() bool {
	b := r.h.Ports.PeekN(r.port, 2)
	if len(b) < 2 {
		return true // `.` at eof: treat as tail, readList reports the real error
	}
	return isSpace(b[1]) || b[1] == ')'
}

func (r *Reader) readString() (Cell, error) {
	var sb strings.Builder
	for {
		b, ok := r.next()
		if !ok {
			return 0, r.errf(ErrReader, "unterminated string")
		}
		if b == '"' {
			break
		}
		if b != '\\' {
			sb.WriteByte(b)
			continue
		}
		e, ok := r.next()
		if !ok {
			return 0, r.errf(ErrReader, "unterminated string escape")
		}
		switch e {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		default:
			if e >= '0' && e <= '7' {
				n := int(e - '0')
				for k := 0; k < 2; k++ {
					b2, ok := r.peek()
					if !ok || b2 < '0' || b2 > '7' {
						break
					}
					r.next()
					n = n*8 + int(b2-'0')
				}
				sb.WriteByte(byte(n))
			} else {
				sb.WriteByte(e)
			}
		}
	}
	c := r.h.NewString(sb.String())
	r.h.tag[c] |= tagConst
	return c, nil
}

// readHash handles every `#...` syntax: vectors, chars, radix
// fixnums.
func (r *Reader) readHash() (Cell, error) {
	b, ok := r.peek()
	if !ok {
		return 0, r.errf(ErrReader, "unexpected eof after #")
	}
	switch {
	case b == '(':
		r.next()
		return r.readVector()
	case b == '\\':
		r.next()
		return r.readChar()
	case b >= '0' && b <= '9':
		return r.readRadix()
	default:
		return 0, r.errf(ErrReader, "unsupported # syntax")
	}
}

func (r *Reader) readVector() (Cell, error) {
	var elems []Cell
	for {
		r.skipSpace()
		b, ok := r.peek()
		if !ok {
			return 0, r.errf(ErrReader, "unterminated vector")
		}
		if b == ')' {
			r.next()
			break
		}
		v, err := r.read()
		if err != nil {
			return 0, err
		}
		elems = append(elems, v)
	}
	c := r.h.NewVector(len(elems), NIL)
	for i, e := range elems {
		r.h.VectorSet(c, i, e)
	}
	r.h.tag[c] |= tagConst
	return c, nil
}

func (r *Reader) readChar() (Cell, error) {
	b, ok := r.next()
	if !ok {
		return 0, r.errf(ErrReader, "unexpected eof in char literal")
	}
	if b >= '0' && b <= '7' {
		n := int(b - '0')
		for k := 0; k < 2; k++ {
			b2, ok := r.peek()
			if !ok || b2 < '0' || b2 > '7' {
				break
			}
			r.next()
			n = n*8 + int(b2-'0')
		}
		if n > 255 {
			return 0, r.errf(ErrRange, "char literal out of range")
		}
		return r.h.NewChar(rune(n)), nil
	}
	var name strings.Builder
	name.WriteByte(b)
	for {
		b2, ok := r.peek()
		if !ok || !isSymbolByte(b2) {
			break
		}
		r.next()
		name.WriteByte(b2)
	}
	switch strings.ToLower(name.String()) {
	case "ht":
		return r.h.NewChar('\t'), nil
	case "nl":
		return r.h.NewChar('\n'), nil
	case "sp":
		return r.h.NewChar(' '), nil
	default:
		s := name.String()
		if len(s) != 1 {
			return 0, r.errf(ErrReader, "unknown char name #\\"+s)
		}
		return r.h.NewChar(rune(s[0])), nil
	}
}

// readRadix parses `#NNNrDDD...` (2 <= NNN <= 36).
func (r *Reader) readRadix() (Cell, error) {
	var digits strings.Builder
	for {
		b, ok := r.peek()
		if !ok || b < '0' || b > '9' {
			break
		}
		r.next()
		digits.WriteByte(b)
	}
	b, ok := r.next()
	if !ok || (b != 'r' && b != 'R') {
		return 0, r.errf(ErrReader, "malformed radix literal")
	}
	radix, err := strconv.Atoi(digits.String())
	if err != nil || radix < 2 || radix > 36 {
		return 0, r.errf(ErrRange, "radix out of range")
	}
	var body strings.Builder
	for {
		b2, ok := r.peek()
		if !ok || !isSymbolByte(b2) {
			break
		}
		r.next()
		body.WriteByte(b2)
	}
	n, err := strconv.ParseInt(body.String(), radix, 64)
	if err != nil {
		return 0, r.errf(ErrReader, "malformed digits in radix literal")
	}
	return r.h.NewFixnum(int(n)), nil
}

// readAtom reads a bare token and classifies it as a fixnum (decimal,
// optionally signed) or a symbol, case-folded to lower case (§4.3).
func (r *Reader) readAtom() (Cell, error) {
	var sb strings.Builder
	for {
		b, ok := r.peek()
		if !ok || isSpace(b) || b == '(' || b == ')' || b == '"' || b == ';' {
			break
		}
		r.next()
		sb.WriteByte(b)
	}
	tok := sb.String()
	if tok == "" {
		return 0, r.errf(ErrReader, "empty token")
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return r.h.NewFixnum(int(n)), nil
	}
	return r.h.Syms.Intern(strings.ToLower(tok)), nil
}

// ReadAll drains every top-level form from the port into a Go slice,
// used by tests exercising read-print round trips.
func (r *Reader) ReadAll() ([]Cell, error) {
	var out []Cell
	for {
		v, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return out, err
		}
		if v == EOF {
			break
		}
		out = append(out, v)
	}
	return out, nil
}
