package lisp9

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readOne(t *testing.T, h *Heap, src string) Cell {
	t.Helper()
	port, err := h.Ports.OpenInString(src)
	require.NoError(t, err)
	r := NewReader(h, port, nil)
	form, err := r.Read()
	require.NoError(t, err)
	return form
}

func printRead(t *testing.T, src string) string {
	t.Helper()
	h := NewHeap(NewConfig())
	m := NewMachine(h, newEnv(h))
	port, err := h.Ports.OpenInString(src)
	require.NoError(t, err)
	r := NewReader(h, port, nil)
	form, err := r.Read()
	require.NoError(t, err)
	return m.printValue(form, true)
}

func TestReader_Forms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"list", "(1 2 3)", "(1 2 3)"},
		{"dotted pair", "(1 . 2)", "(1 . 2)"},
		{"nested list", "(a (b c) d)", "(a (b c) d)"},
		{"quote reader macro", "'foo", "(quote foo)"},
		{"quasiquote reader macro", "`foo", "(quasiquote foo)"},
		{"unquote reader macro", ",foo", "(unquote foo)"},
		{"unquote-splice reader macro", ",@foo", "(unquote-splice foo)"},
		{"string with escapes", `"a\tb\n"`, "\"a\\tb\\n\""},
		{"char ht", `#\ht`, "#\\ht"},
		{"char literal", `#\a`, "#\\a"},
		{"vector", "#(1 2 3)", "#(1 2 3)"},
		{"radix fixnum", "#16rFF", "255"},
		{"symbol case folding", "FooBar", "foobar"},
		{"comment skipped", "; a comment\n42", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, printRead(t, tt.src))
		})
	}
}

func TestReader_MetaCommands(t *testing.T) {
	h := NewHeap(NewConfig())
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syscmd", ",c ls", "(syscmd ls)"},
		{"help", ",h", "(help)"},
		{"load", ",l foo.ls", "(load foo.ls)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, err := h.Ports.OpenInString(tt.src)
			require.NoError(t, err)
			r := NewReader(h, port, nil)
			form, err := r.Read()
			require.NoError(t, err)
			m := NewMachine(h, newEnv(h))
			assert.Equal(t, tt.want, m.printValue(form, true))
		})
	}
}

func TestReader_UnquoteNotConfusedWithMetaCommand(t *testing.T) {
	// A top-level `,@x` or `,(foo)` is ordinary unquote, not a meta
	// command, since `@` and `(` don't match any of c/h/l.
	h := NewHeap(NewConfig())
	m := NewMachine(h, newEnv(h))
	port, err := h.Ports.OpenInString(",@x")
	require.NoError(t, err)
	r := NewReader(h, port, nil)
	form, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "(unquote-splice x)", m.printValue(form, true))
}

func TestReader_DottedListRequiresOneElement(t *testing.T) {
	h := NewHeap(NewConfig())
	port, err := h.Ports.OpenInString("(1 . 2 3)")
	require.NoError(t, err)
	r := NewReader(h, port, nil)
	_, err = r.Read()
	assert.Error(t, err)
}

func TestReader_ReadAll(t *testing.T) {
	h := NewHeap(NewConfig())
	port, err := h.Ports.OpenInString("1 2 3")
	require.NoError(t, err)
	r := NewReader(h, port, nil)
	forms, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, forms, 3)
	for i, want := range []int{1, 2, 3} {
		assert.Equal(t, want, h.Fixnum(forms[i]))
	}
}

func TestReader_EveryProducedCompoundCarriesConst(t *testing.T) {
	h := NewHeap(NewConfig())
	form := readOne(t, h, "(1 2 3)")
	assert.True(t, h.IsConst(form))
}
