package lisp9

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkSrc(src string) error {
	h := NewHeap(NewConfig())
	port, err := h.Ports.OpenInString(src)
	if err != nil {
		return err
	}
	r := NewReader(h, port, nil)
	form, err := r.Read()
	if err != nil {
		return err
	}
	return newSyntaxChecker(h).Check(form)
}

func TestSyntaxChecker_Valid(t *testing.T) {
	tests := []string{
		"(quote foo)",
		"(def x 1)",
		"(macro m (lambda (x) x))",
		"(if (quote t) 1 2)",
		"(if* (quote t) 1)",
		"(lambda (x y) (+ x y))",
		"(lambda (x . rest) x)",
		"(prog 1 2 3)",
		"(apply f 1 2 (quote ()))",
		"(setq x 1)",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assert.NoError(t, checkSrc(src))
		})
	}
}

func TestSyntaxChecker_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"nested def inside if", "(if (quote t) (def x 1) 2)"},
		{"nested macro inside lambda", "(lambda (x) (macro m (lambda (y) y)))"},
		{"def wrong arity", "(def x)"},
		{"def name not symbol", "(def 1 2)"},
		{"quote wrong arity", "(quote)"},
		{"if wrong arity", "(if 1)"},
		{"lambda missing body", "(lambda (x))"},
		{"lambda duplicate formal", "(lambda (x x) x)"},
		{"lambda formal not symbol", "(lambda (1) x)"},
		{"setq target not symbol", "(setq 1 2)"},
		{"apply too few args", "(apply f)"},
		{"dotted program position", "(prog 1 . 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSrc(tt.src)
			require.Error(t, err)
		})
	}
}
