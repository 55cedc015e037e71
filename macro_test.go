package lisp9

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expandSrc(t *testing.T, src string) []string {
	t.Helper()
	h := NewHeap(NewConfig())
	env := newEnv(h)
	m := NewMachine(h, env)
	mx := NewMacroExpander(h, env, m)

	port, err := h.Ports.OpenInString(src)
	require.NoError(t, err)
	r := NewReader(h, port, nil)
	form, err := r.Read()
	require.NoError(t, err)

	forms, err := mx.Expand(form)
	require.NoError(t, err)

	out := make([]string, len(forms))
	for i, f := range forms {
		out[i] = m.printValue(f, true)
	}
	return out
}

func TestMacroExpander_DefunRewritesToDefLambda(t *testing.T) {
	got := expandSrc(t, "(defun square (x) (* x x))")
	require.Len(t, got, 1)
	assert.Equal(t, "(def square (lambda (x) (* x x)))", got[0])
}

func TestMacroExpander_DefmacRewritesToMacroLambda(t *testing.T) {
	got := expandSrc(t, "(defmac twice (x) (list x x))")
	require.Len(t, got, 1)
	assert.Equal(t, "(macro twice (lambda (x) (list x x)))", got[0])
}

func TestMacroExpander_HoistsLeadingInternalDefines(t *testing.T) {
	got := expandSrc(t, `(defun start (n)
		(def evenp (lambda (n) (oddp n)))
		(def oddp (lambda (n) (evenp n)))
		(evenp n))`)
	require.Len(t, got, 3)
	assert.Equal(t, "(def evenp (lambda (n) (oddp n)))", got[0])
	assert.Equal(t, "(def oddp (lambda (n) (evenp n)))", got[1])
	assert.Equal(t, "(def start (lambda (n) (evenp n)))", got[2])
}

func TestMacroExpander_OnlyLeadingRunIsHoisted(t *testing.T) {
	// A define that is not part of the *leading* run (i.e. comes after
	// a non-define body form) stays right where it is.
	got := expandSrc(t, `(defun f (n)
		(def a 1)
		(+ n 1)
		(def b 2)
		b)`)
	require.Len(t, got, 2)
	assert.Equal(t, "(def a 1)", got[0])
	assert.Equal(t, "(def f (lambda (n) (+ n 1) (def b 2) b))", got[1])
}

func TestMacroExpander_NestedDefunNotHoisted(t *testing.T) {
	// A defun appearing in argument position (not itself top-level) is
	// rewritten to def-of-a-lambda in place; it has no sibling
	// top-level slot to hoist an internal define into, so the define
	// stays nested right where it was.
	got := expandSrc(t, "(list (defun f (n) (def x 1) x))")
	require.Len(t, got, 1)
	assert.Equal(t, "(list (def f (lambda (n) (def x 1) x)))", got[0])
}

func TestMacroExpander_QuoteIsNotExpanded(t *testing.T) {
	got := expandSrc(t, "'(defun f (n) n)")
	require.Len(t, got, 1)
	assert.Equal(t, "(quote (defun f (n) n))", got[0])
}
