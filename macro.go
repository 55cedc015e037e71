package lisp9

// macro.go implements §4.5: a top-down macro expander that runs on
// reader-produced forms before the syntax checker sees them.
//
// `defun`/`defmac` are rewritten into `(def/macro name (lambda
// formals body…))`. Spec's "the body is rescanned for nested defs
// that get hoisted into a labels binding (mutually recursive locals)"
// is implemented in its common form, not its most general one: since
// closure.go's convertDef always binds into the single global Env
// (env.go) regardless of lexical depth, a leading internal `(def …)`/
// `(macro …)`/`(defun …)`/`(defmac …)` run at the front of a
// top-level defun/defmac's body can simply be spliced out as sibling
// top-level forms ahead of the rewritten definition — identical
// mutual-recursion semantics (all land in the same global env, in
// insertion order, forward references resolve through Undef same as
// any top-level def), but now satisfying the syntax checker's "def
// must appear at top level" rule. This covers the standard
// leading-internal-define idiom; a defun/defmac that is itself nested
// (not a genuine top-level form) is rewritten in place without
// hoisting, since there is no sibling top-level position to splice
// into — an internal define inside *that* body still surfaces as a
// syntax error downstream, same as the original.
type MacroExpander struct {
	h        *Heap
	env      *Env
	m        *Machine
	maxDepth int
}

func NewMacroExpander(h *Heap, env *Env, m *Machine) *MacroExpander {
	return &MacroExpander{h: h, env: env, m: m, maxDepth: h.cfg.GetInt("macro.maxdepth")}
}

// Expand macro-expands one reader-produced top-level form into the
// sequence of top-level forms it stands for — ordinarily one, or more
// when a defun/defmac's leading internal defines get hoisted to
// sibling position.
func (e *MacroExpander) Expand(form Cell) ([]Cell, error) {
	return e.expandTop(form, 0)
}

func (e *MacroExpander) expandTop(form Cell, depth int) ([]Cell, error) {
	if depth > e.maxDepth {
		return nil, &LispError{Kind: ErrResource, Message: "macro expansion nested too deep"}
	}
	h := e.h
	if h.IsPair(form) && h.IsSymbolVector(h.car[form]) {
		switch h.SymbolName(h.car[form]) {
		case "defun":
			return e.expandDefLikeTop(form, depth, "def")
		case "defmac":
			return e.expandDefLikeTop(form, depth, "macro")
		}
	}
	out, err := e.expand(form, depth)
	if err != nil {
		return nil, err
	}
	return []Cell{out}, nil
}

// expand walks one form per §4.5: `quote` returned verbatim, a
// `(sym …)` whose head resolves to a macro-table slot invoked via
// eval (here, applyClosure) and its result re-expanded to fixpoint,
// otherwise recursive mapping over subforms.
func (e *MacroExpander) expand(form Cell, depth int) (Cell, error) {
	if depth > e.maxDepth {
		return 0, &LispError{Kind: ErrResource, Message: "macro expansion nested too deep"}
	}
	h := e.h
	if !h.IsPair(form) {
		return form, nil
	}
	head := h.car[form]
	if h.IsSymbolVector(head) {
		switch h.SymbolName(head) {
		case "quote":
			return form, nil
		case "defun":
			return e.rewriteDefLikeNoHoist(form, depth, "def")
		case "defmac":
			return e.rewriteDefLikeNoHoist(form, depth, "macro")
		default:
			if idx, _, ok := e.env.Lookup(h.SymbolName(head)); ok && e.m.IsMacroSlot(idx) {
				return e.expandMacroCall(idx, form, depth)
			}
		}
	}
	return e.expandList(form, depth)
}

// expandMacroCall applies the macro closure at global index idx to
// the call's raw, unevaluated argument forms — equivalent to spec's
// "(apply <macro-closure> '(<args>)) then eval", since applyClosure
// already runs a closure against an exact actual-argument list without
// needing the `apply` primitive's own spreading step.
func (e *MacroExpander) expandMacroCall(idx int, form Cell, depth int) (Cell, error) {
	h := e.h
	clos := e.env.Value(idx)
	var args []Cell
	for n := h.cdr[form]; h.IsPair(n); n = h.cdr[n] {
		args = append(args, h.car[n])
	}
	expansion, err := e.m.applyClosure(clos, args)
	if err != nil {
		return 0, err
	}
	return e.expand(expansion, depth+1)
}

// expandList maps expand over every element of a (possibly dotted,
// though dotted tails only ever arise from user data, not program
// syntax) list.
func (e *MacroExpander) expandList(list Cell, depth int) (Cell, error) {
	h := e.h
	if list == NIL {
		return NIL, nil
	}
	if !h.IsPair(list) {
		return e.expand(list, depth)
	}
	headOut, err := e.expand(h.car[list], depth)
	if err != nil {
		return 0, err
	}
	mark := h.Protect(headOut)
	restOut, err := e.expandList(h.cdr[list], depth)
	h.Unprotect(mark)
	if err != nil {
		return 0, err
	}
	return h.Cons(headOut, restOut), nil
}

// hoistLeadingDefs splits body into its leading run of
// def/macro/defun/defmac forms and whatever body remains.
func (e *MacroExpander) hoistLeadingDefs(body Cell) ([]Cell, Cell) {
	h := e.h
	var defs []Cell
	n := body
	for h.IsPair(n) {
		f := h.car[n]
		if h.IsPair(f) && h.IsSymbolVector(h.car[f]) {
			switch h.SymbolName(h.car[f]) {
			case "def", "macro", "defun", "defmac":
				defs = append(defs, f)
				n = h.cdr[n]
				continue
			}
		}
		break
	}
	return defs, n
}

// expandDefLikeTop rewrites a genuinely top-level `(defun name
// formals body…)` / `(defmac name formals body…)`, hoisting any
// leading internal definitions in body out to sibling top-level
// position ahead of the rewritten def/macro form.
func (e *MacroExpander) expandDefLikeTop(form Cell, depth int, binder string) ([]Cell, error) {
	h := e.h
	defName := h.Cadr(form)
	rest := h.cdr[h.cdr[form]]
	if !h.IsPair(rest) {
		return nil, &LispError{Kind: ErrArity, Message: "defun/defmac requires formals and a body"}
	}
	formals := h.car[rest]
	body := h.cdr[rest]

	leading, body := e.hoistLeadingDefs(body)

	var out []Cell
	for _, d := range leading {
		forms, err := e.expandTop(d, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, forms...)
	}

	bodyOut, err := e.expandList(body, depth+1)
	if err != nil {
		return nil, err
	}
	lambdaForm := h.Cons(h.Syms.Intern("lambda"), h.Cons(formals, bodyOut))
	defForm := h.Cons(h.Syms.Intern(binder), h.Cons(defName, h.Cons(lambdaForm, NIL)))
	out = append(out, defForm)
	return out, nil
}

// rewriteDefLikeNoHoist handles a defun/defmac that is not itself in
// top-level position: rewritten in place to def/macro-of-a-lambda,
// body expanded elementwise, without hoisting (there is no sibling
// top-level slot to hoist into).
func (e *MacroExpander) rewriteDefLikeNoHoist(form Cell, depth int, binder string) (Cell, error) {
	h := e.h
	defName := h.Cadr(form)
	rest := h.cdr[h.cdr[form]]
	if !h.IsPair(rest) {
		return 0, &LispError{Kind: ErrArity, Message: "defun/defmac requires formals and a body"}
	}
	formals := h.car[rest]
	body := h.cdr[rest]
	bodyOut, err := e.expandList(body, depth+1)
	if err != nil {
		return 0, err
	}
	lambdaForm := h.Cons(h.Syms.Intern("lambda"), h.Cons(formals, bodyOut))
	return h.Cons(h.Syms.Intern(binder), h.Cons(defName, h.Cons(lambdaForm, NIL))), nil
}
