package lisp9

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalString(t *testing.T, src string) string {
	t.Helper()
	it := NewInterpreter(NewConfig())
	v, err := it.EvalString(src)
	require.NoError(t, err)
	return it.Print(v)
}

func TestInterpreter_EvalString(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"fixnum self-eval", "42", "42"},
		{"arithmetic", "(+ 1 2 3)", "6"},
		{"quote", "'(a b c)", "(a b c)"},
		{"if true branch", "(if (< 1 2) 'yes 'no)", "yes"},
		{"if false branch", "(if (< 2 1) 'yes 'no)", "no"},
		{"def and lookup", "(def x 10) x", "10"},
		{"lambda application", "((lambda (x y) (+ x y)) 3 4)", "7"},
		{"setq mutates", "(def y 1) (setq y 2) y", "2"},
		{"recursive defun", `
			(defun fact (n) (if (< n 2) 1 (* n (fact (- n 1)))))
			(fact 5)`, "120"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalString(t, tt.src))
		})
	}
}

func TestInterpreter_CatchThrow(t *testing.T) {
	got := evalString(t, `(catch* (lambda (tag) (prog (throw* tag 99) 1)))`)
	assert.Equal(t, "99", got)
}

func TestInterpreter_MutualRecursionViaHoistedDefs(t *testing.T) {
	// A top-level defun's leading internal defines are hoisted to
	// sibling top-level position (macro.go), so two internal defuns
	// can call each other despite the syntax checker rejecting a
	// nested def outright.
	src := `
		(defun start (n)
			(def evenp (lambda (n) (if (= n 0) 1 (oddp (- n 1)))))
			(def oddp (lambda (n) (if (= n 0) 0 (evenp (- n 1)))))
			(evenp n))
		(start 10)`
	assert.Equal(t, "1", evalString(t, src))
}

func TestInterpreter_NestedDefIsSyntaxError(t *testing.T) {
	// A def that is not at genuine top level, and not the leading run
	// of a top-level defun/defmac's body, still fails the syntax
	// checker (§4.4) rather than being silently accepted.
	it := NewInterpreter(NewConfig())
	_, err := it.EvalString(`(if t (def x 1) 2)`)
	require.Error(t, err)
}

func TestInterpreter_Compile(t *testing.T) {
	it := NewInterpreter(NewConfig())

	port, err := it.H.Ports.OpenInString("(+ 1 2)")
	require.NoError(t, err)
	r := NewReader(it.H, port, nil)
	f, err := r.Read()
	require.NoError(t, err)

	chunks, err := it.Compile(f)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, it.M.Disassemble(chunks[0]), "halt")
}
