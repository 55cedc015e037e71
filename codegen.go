package lisp9

// codegen.go implements §4.7: turns one closure-converted top-level
// form into a BYTECODE atom. It walks the same three IR tags
// closure.go produces (%arg, %ref, %closure) alongside the ordinary
// special forms and primitive/ordinary calls, using opcodes.go's
// emitter for single-pass assembly with backpatched forward jumps.
//
// Deviation from the byte-for-byte original stack layout (documented
// in DESIGN.md): arguments are evaluated and pushed left-to-right, so
// a formal's index maps directly onto Fp+index with no per-call
// reversal, and ENTCOL's trailing-argument collection needs no
// stack-shift special case. This trades the original's right-to-left
// evaluation-order guarantee (only observable when argument
// expressions themselves perform I/O) for a fixed-offset ARG/CPARG
// addressing scheme that needs no runtime argc-dependent arithmetic.

type codegen struct {
	h          *Heap
	env        *Env
	lits       *LiteralPool
	symArg     Cell
	symRef     Cell
	symClosure Cell
}

func newCodegen(h *Heap, env *Env) *codegen {
	return &codegen{
		h: h, env: env, lits: h.Lits,
		symArg:     h.Syms.Intern("%arg"),
		symRef:     h.Syms.Intern("%ref"),
		symClosure: h.Syms.Intern("%closure"),
	}
}

// Generate compiles one closure-converted top-level form into a
// BYTECODE atom: the closed chunk Eval/applyClosure run.
func (g *codegen) Generate(form Cell) (Cell, error) {
	e := newEmitter()
	if err := g.compile(e, form, false); err != nil {
		return 0, err
	}
	e.op(opHalt)
	return g.h.NewBytecode(e.code), nil
}

func (g *codegen) compile(e *emitter, form Cell, tail bool) error {
	h := g.h
	if !h.IsPair(form) {
		idx := g.lits.Emit(form)
		e.op16(opQuote, idx)
		return nil
	}
	head := h.car[form]
	if h.IsSymbolVector(head) {
		switch h.SymbolName(head) {
		case "quote":
			idx := g.lits.Emit(h.Cadr(form))
			e.op16(opQuote, idx)
			return nil
		case "%arg":
			e.op16(opArg, h.Fixnum(h.Cadr(form)))
			return nil
		case "%ref":
			idx := h.Fixnum(h.Cadr(form))
			name := h.car[h.cdr[h.cdr[form]]]
			e.op1616(opRef, idx, h.Syms.ID(name))
			return nil
		case "%closure":
			return g.compileClosure(e, form)
		case "if":
			return g.compileIf(e, form, tail, opBrf)
		case "if*":
			return g.compileIf(e, form, tail, opBrt)
		case "setq":
			return g.compileSetq(e, form)
		case "macro":
			return g.compileMacro(e, form)
		case "prog":
			return g.compileProg(e, h.cdr[form], tail)
		case "apply":
			return g.compileApply(e, form)
		default:
			if op, ok := primitiveNames[h.SymbolName(head)]; ok {
				return g.compileCall(e, form, tail, &op)
			}
			return g.compileCall(e, form, tail, nil)
		}
	}
	return g.compileCall(e, form, tail, nil)
}

// compileIf lays out `<cond>`, a conditional branch to the else arm
// on brOp, `<then>`, an unconditional jump past the else arm, the
// else arm (defaulting to NIL when omitted), per §4.7's table. if*
// uses BRT (branch when Acc is non-NIL) in place of if's BRF.
func (g *codegen) compileIf(e *emitter, form Cell, tail bool, brOp byte) error {
	h := g.h
	n := h.ListLen(form)
	cond := h.Cadr(form)
	then := h.car[h.cdr[h.cdr[form]]]
	var els Cell = NIL
	if n == 4 {
		els = h.car[h.cdr[h.cdr[h.cdr[form]]]]
	}
	if err := g.compile(e, cond, false); err != nil {
		return err
	}
	l1 := e.jump(brOp)
	if err := g.compile(e, then, tail); err != nil {
		return err
	}
	l2 := e.jump(opJmp)
	e.patch(l1)
	if err := g.compile(e, els, tail); err != nil {
		return err
	}
	e.patch(l2)
	return nil
}

// compileSetq's target is already either (%arg i) or (%ref i name),
// resolved by closure.go's convertSetq.
func (g *codegen) compileSetq(e *emitter, form Cell) error {
	h := g.h
	target := h.Cadr(form)
	val := h.car[h.cdr[h.cdr[form]]]
	if err := g.compile(e, val, false); err != nil {
		return err
	}
	targetHead := h.car[target]
	switch h.SymbolName(targetHead) {
	case "%arg":
		e.op16(opSetarg, h.Fixnum(h.Cadr(target)))
	case "%ref":
		e.op16(opSetref, h.Fixnum(h.Cadr(target)))
	default:
		return &LispError{Kind: ErrType, Message: "setq: invalid target"}
	}
	return nil
}

// compileMacro handles a top-level `(macro name value)`: value is
// compiled and stored at name's already-allocated global slot via the
// MACRO opcode instead of SETREF, additionally marking that slot in
// the VM's macro table.
func (g *codegen) compileMacro(e *emitter, form Cell) error {
	h := g.h
	name := h.Cadr(form)
	val := h.car[h.cdr[h.cdr[form]]]
	idx, _, ok := g.env.Lookup(h.SymbolName(name))
	if !ok {
		return &LispError{Kind: ErrOther, Message: "macro: undefined symbol"}
	}
	if err := g.compile(e, val, false); err != nil {
		return err
	}
	e.op16(opMacro, idx)
	return nil
}

// compileProg sequences a body; only the last form's value (computed
// into Acc) survives, each earlier form is compiled purely for
// effect, and the tail flag threads only to the final one.
func (g *codegen) compileProg(e *emitter, body Cell, tail bool) error {
	h := g.h
	if body == NIL {
		idx := g.lits.Emit(NIL)
		e.op16(opQuote, idx)
		return nil
	}
	for h.cdr[body] != NIL {
		if err := g.compile(e, h.car[body], false); err != nil {
			return err
		}
		body = h.cdr[body]
	}
	return g.compile(e, h.car[body], tail)
}

// compileClosure lays out a lambda: a forward jump over its own body,
// the entry point (ENTER/ENTCOL followed by the body and a RETURN),
// then back at the jump's target, the environment-building
// instructions (MKENV + one CPARG/CPREF per captured slot; none at
// all when nothing is captured, in which case CLOSURE uses an empty
// environment) and finally CLOSURE, which pairs that environment
// with a literal-pool template
// recording the entry point and arity (§4.7).
func (g *codegen) compileClosure(e *emitter, form Cell) error {
	h := g.h
	formalsCell := h.Cadr(form)
	envmap := h.car[h.cdr[h.cdr[form]]]
	body := h.cdr[h.cdr[h.cdr[form]]]

	names, variadic := buildFormals(h, formalsCell)
	nFixed := len(names)
	if variadic {
		nFixed--
	}

	skip := e.jump(opJmp)
	entry := e.pos()
	if variadic {
		e.op16(opEntcol, nFixed)
	} else {
		e.op16(opEnter, nFixed)
	}
	if err := g.compileProg(e, body, true); err != nil {
		return err
	}
	e.op(opReturn)
	e.patch(skip)

	nCaptures := h.ListLen(envmap)
	if nCaptures > 0 {
		e.op16(opMkenv, nCaptures)
		for n, i := envmap, 0; n != NIL; n, i = h.cdr[n], i+1 {
			entryCell := h.car[n]
			source := h.car[entryCell]
			srcIdx := h.Fixnum(h.Cadr(entryCell))
			dstIdx := h.Fixnum(h.car[h.cdr[h.cdr[entryCell]]])
			if source == g.symArg {
				e.op1616(opCparg, dstIdx, srcIdx)
			} else {
				e.op1616(opCpref, dstIdx, srcIdx)
			}
		}
	}

	variadicFlag := 0
	if variadic {
		variadicFlag = 1
	}
	tmpl := h.NewVector(3, NIL)
	h.VectorSet(tmpl, 0, h.NewFixnum(entry))
	h.VectorSet(tmpl, 1, h.NewFixnum(nFixed))
	h.VectorSet(tmpl, 2, h.NewFixnum(variadicFlag))
	idx := g.lits.Emit(tmpl)
	e.op16(opClosure, idx)
	return nil
}

// compileCall handles both ordinary closure calls and dispatch to a
// dedicated primitive opcode: arguments are evaluated and pushed
// left-to-right (see the deviation note above), then either the
// primitive's own one-byte opcode or APPLY/TAILAPP runs.
func (g *codegen) compileCall(e *emitter, form Cell, tail bool, prim *byte) error {
	h := g.h
	argsList := h.cdr[form]
	e.op(opPropenv)
	for n := argsList; n != NIL; n = h.cdr[n] {
		if err := g.compile(e, h.car[n], false); err != nil {
			return err
		}
		e.op(opPush)
	}
	if prim != nil {
		e.op(*prim)
		return nil
	}
	if err := g.compile(e, h.car[form], false); err != nil {
		return err
	}
	if tail {
		e.op(opTailapp)
	} else {
		e.op(opApply)
	}
	return nil
}

// compileApply handles `(apply f a1 a2 … xs)`: the non-spread
// arguments are consed onto xs, left to right, via ordinary `cons`
// primitive calls, and the result is spread by APPLIS/APPLIST.
func (g *codegen) compileApply(e *emitter, form Cell) error {
	h := g.h
	rest := h.cdr[form]
	f := h.car[rest]
	argsAndXs := h.cdr[rest]

	n := h.ListLen(argsAndXs)
	items := make([]Cell, n)
	m := argsAndXs
	for i := 0; i < n; i++ {
		items[i] = h.car[m]
		m = h.cdr[m]
	}
	fixedArgs, xs := items[:n-1], items[n-1]

	e.op(opPropenv)
	if err := g.compileSpread(e, fixedArgs, xs); err != nil {
		return err
	}
	e.op(opPush)
	if err := g.compile(e, f, false); err != nil {
		return err
	}
	if len(fixedArgs) == 0 {
		e.op(opApplist)
	} else {
		e.op(opApplis)
	}
	return nil
}

// compileSpread leaves in Acc the list `(cons args[0] (cons args[1]
// … (cons args[k-1] xs)))`, consing the fixed arguments onto xs from
// the innermost (rightmost) outward.
func (g *codegen) compileSpread(e *emitter, args []Cell, xs Cell) error {
	if len(args) == 0 {
		return g.compile(e, xs, false)
	}
	e.op(opPropenv)
	if err := g.compile(e, args[0], false); err != nil {
		return err
	}
	e.op(opPush)
	if err := g.compileSpread(e, args[1:], xs); err != nil {
		return err
	}
	e.op(opPush)
	e.op(primitiveNames["cons"])
	return nil
}
