package lisp9

// api.go ties §4.3 through §4.8's stages into the one operation a
// driver (cmd/lisp9c) or an embedding caller actually wants: read one
// form, macro-expand it, syntax-check, closure-convert, generate
// bytecode, and run it — threading the single growing global Env and
// Machine across every call the way a REPL or `load` does.
//
// Deviation, documented further in DESIGN.md: §7's `*errtag*`/
// `*errval*` global-handler protocol (the VM itself consulting a Lisp
// global to decide whether to throw to an installed handler or report
// at the REPL boundary) is not implemented as a Lisp-visible
// mechanism. `error` always produces a Go error, which simply
// propagates out of EvalForm/EvalPort to the caller; `catch*`/
// `throw*` remain fully available as an explicit, Lisp-level
// mechanism (vm.go's callWithCatchTag/doThrow) for any program that
// wants to intercept it itself.
type Interpreter struct {
	H   *Heap
	Env *Env
	M   *Machine

	mx   *MacroExpander
	conv *Converter
	gen  *codegen
	sx   *syntaxChecker
}

// NewInterpreter builds one freshly wired pipeline: a heap/env/VM
// triple plus the four compile stages, all sharing that heap and
// environment.
func NewInterpreter(cfg *Config) *Interpreter {
	h := NewHeap(cfg)
	env := newEnv(h)
	m := NewMachine(h, env)
	return &Interpreter{
		H: h, Env: env, M: m,
		mx:   NewMacroExpander(h, env, m),
		conv: NewConverter(h, env),
		gen:  newCodegen(h, env),
		sx:   newSyntaxChecker(h),
	}
}

// EvalForm runs one already-read top-level form through the full
// pipeline and returns its value. Macro expansion can split one input
// form into several sibling top-level forms (§4.5, hoisted internal
// defines); each is checked/converted/compiled/run in turn, and the
// value of the last one is returned, matching what a human typing the
// equivalent sequence of top-level forms at a REPL would see.
func (it *Interpreter) EvalForm(form Cell) (Cell, error) {
	forms, err := it.mx.Expand(form)
	if err != nil {
		return 0, err
	}
	result := Cell(NIL)
	for _, f := range forms {
		if err := it.sx.Check(f); err != nil {
			return result, err
		}
		converted, err := it.conv.Convert(f)
		if err != nil {
			return result, err
		}
		bc, err := it.gen.Generate(converted)
		if err != nil {
			return result, err
		}
		result, err = it.M.Eval(bc)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// Compile runs form through expand/check/convert/codegen without
// executing it, returning the bytecode atom(s) produced — ordinarily
// one, or more when macro expansion hoists sibling top-level forms
// out of it (§4.5). Used by `cmd/lisp9c -asm` to print a listing
// instead of running the file.
func (it *Interpreter) Compile(form Cell) ([]Cell, error) {
	forms, err := it.mx.Expand(form)
	if err != nil {
		return nil, err
	}
	var out []Cell
	for _, f := range forms {
		if err := it.sx.Check(f); err != nil {
			return out, err
		}
		converted, err := it.conv.Convert(f)
		if err != nil {
			return out, err
		}
		bc, err := it.gen.Generate(converted)
		if err != nil {
			return out, err
		}
		out = append(out, bc)
	}
	return out, nil
}

// EvalPort reads and evaluates every top-level form available from
// port in sequence, the engine behind both `load` (§6) and a REPL's
// per-line read loop, stopping at the first error encountered either
// reading or evaluating.
func (it *Interpreter) EvalPort(port Cell, interrupt *bool) (Cell, error) {
	r := NewReader(it.H, port, interrupt)
	result := Cell(NIL)
	for {
		form, err := r.Read()
		if err != nil {
			return result, err
		}
		if form == EOF {
			return result, nil
		}
		result, err = it.EvalForm(form)
		if err != nil {
			return result, err
		}
	}
}

// EvalString is a convenience wrapper around EvalPort for in-memory
// source text (tooling and tests that don't want to open a real
// port).
func (it *Interpreter) EvalString(src string) (Cell, error) {
	port, err := it.H.Ports.OpenInString(src)
	if err != nil {
		return 0, err
	}
	return it.EvalPort(port, nil)
}

// Print renders v the way the REPL echoes a result: readable form
// (PRIN), so strings/chars show their escapes.
func (it *Interpreter) Print(v Cell) string {
	return it.M.printValue(v, true)
}
