package lisp9

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_Values(t *testing.T) {
	h := NewHeap(NewConfig())
	m := NewMachine(h, newEnv(h))

	tests := []struct {
		name     string
		v        Cell
		readable bool
		want     string
	}{
		{"nil", NIL, true, "()"},
		{"true", True, true, "t"},
		{"fixnum", h.NewFixnum(7), true, "7"},
		{"negative fixnum", h.NewFixnum(-3), true, "-3"},
		{"string readable", h.NewString("a\tb"), true, "\"a\\tb\""},
		{"string princ", h.NewString("a\tb"), false, "a\tb"},
		{"char readable", h.NewChar(' '), true, `#\sp`},
		{"char princ", h.NewChar('x'), false, "x"},
		{"symbol", h.Syms.Intern("foo"), true, "foo"},
		{"cons", h.Cons(h.NewFixnum(1), h.Cons(h.NewFixnum(2), NIL)), true, "(1 2)"},
		{"undef", Undef, true, "#[undef]"},
		{"eof", EOF, true, "#[eof]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.printValue(tt.v, tt.readable))
		})
	}
}

func TestPrinter_DepthGuardOnDeeplyNestedList(t *testing.T) {
	cfg := NewConfig()
	cfg.SetInt("printer.depth", 8)
	h := NewHeap(cfg)
	m := NewMachine(h, newEnv(h))

	// Nest ((((...(1)...)))) well past the configured depth budget via
	// genuine structural nesting (each level is a fresh pair, not a
	// cycle), which write()'s recursive descent into writeList->write
	// does count against printer.depth.
	c := h.NewFixnum(1)
	for i := 0; i < 20; i++ {
		c = h.Cons(c, NIL)
	}

	out := m.printValue(c, true)
	assert.Contains(t, out, "...")
}
