package lisp9

import "strings"

// printer.go implements §4.3's print side of the read/print round
// trip: PRIN (readable, with string/char escapes) and PRINC (raw,
// human-facing) forms of the same recursive walk, guarded by a depth
// counter against the circular/self-referential structures macro
// expansion can legitimately build (§9, PRDEPTH).

type printer struct {
	h      *Heap
	depth  int
	maxD   int
}

func newPrinter(h *Heap, maxDepth int) *printer {
	return &printer{h: h, maxD: maxDepth}
}

func (m *Machine) printValue(c Cell, readable bool) string {
	p := newPrinter(m.h, m.h.cfg.GetInt("printer.depth"))
	var sb strings.Builder
	p.write(&sb, c, readable)
	return sb.String()
}

func (p *printer) write(sb *strings.Builder, c Cell, readable bool) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxD {
		sb.WriteString("...")
		return
	}
	h := p.h
	switch {
	case c == NIL:
		sb.WriteString("()")
	case c == True:
		sb.WriteString("t")
	case c == EOF:
		sb.WriteString("#[eof]")
	case c == Undef:
		sb.WriteString("#[undef]")
	case h.IsPair(c):
		p.writeList(sb, c, readable)
	case h.IsSymbolVector(c):
		sb.WriteString(h.SymbolName(c))
	case h.IsString(c):
		if readable {
			p.writeQuotedString(sb, h.StringVal(c))
		} else {
			sb.WriteString(h.StringVal(c))
		}
	case h.IsGenVector(c):
		p.writeVector(sb, c, readable)
	case h.IsFixnum(c):
		sb.WriteString(itoa(h.Fixnum(c)))
	case h.IsChar(c):
		if readable {
			p.writeChar(sb, h.CharVal(c))
		} else {
			sb.WriteRune(h.CharVal(c))
		}
	case h.IsAtom(c):
		switch h.AtomType(c) {
		case TClosure:
			sb.WriteString("#[closure]")
		case TCatchTag:
			sb.WriteString("#[catch-tag]")
		case TInPort:
			sb.WriteString("#[in-port]")
		case TOutPort:
			sb.WriteString("#[out-port]")
		case TBytecode:
			sb.WriteString("#[bytecode]")
		default:
			sb.WriteString("#[atom]")
		}
	default:
		sb.WriteString("#[?]")
	}
}

func (p *printer) writeList(sb *strings.Builder, c Cell, readable bool) {
	h := p.h
	sb.WriteByte('(')
	first := true
	for h.IsPair(c) {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		p.write(sb, h.car[c], readable)
		c = h.cdr[c]
	}
	if c != NIL {
		sb.WriteString(" . ")
		p.write(sb, c, readable)
	}
	sb.WriteByte(')')
}

func (p *printer) writeVector(sb *strings.Builder, c Cell, readable bool) {
	h := p.h
	sb.WriteString("#(")
	n := h.VectorLen(c)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		p.write(sb, h.VectorRef(c, i), readable)
	}
	sb.WriteByte(')')
}

func (p *printer) writeQuotedString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch b := s[i]; b {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\t':
			sb.WriteString(`\t`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteByte(b)
		}
	}
	sb.WriteByte('"')
}

func (p *printer) writeChar(sb *strings.Builder, r rune) {
	switch r {
	case '\t':
		sb.WriteString(`#\ht`)
	case '\n':
		sb.WriteString(`#\nl`)
	case ' ':
		sb.WriteString(`#\sp`)
	default:
		sb.WriteString(`#\`)
		sb.WriteRune(r)
	}
}
