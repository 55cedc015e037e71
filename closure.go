package lisp9

// closure.go implements §4.6: free-variable analysis and classification
// of every variable occurrence into an argument index (%arg) or an
// environment index (%ref), plus call-site lifting for immediately-
// invoked lambdas.
//
// The three "internal tag symbols" are real interned symbols, so the
// intermediate form stays an ordinary Lisp list that codegen.go walks
// the same way it walks user-level special forms:
//   (%arg i)
//   (%ref i name)
//   (%closure formals envmap body...)
// envmap is a list of (source src-index dst-index name) entries,
// source itself being the %arg or %ref symbol.

// frame tracks one lambda's own formals plus the captures it has
// accumulated so far while its body is being converted. parent==nil
// means "the enclosing scope is the top-level global environment",
// i.e. this is the outermost lambda in the current nesting.
type frame struct {
	parent    *frame
	formals   []Cell // symbol cells, rest formal (if variadic) last
	variadic  bool
	formalIdx map[Cell]int

	envNames    []Cell
	envSource   []Cell // symArg or symRef
	envSrcIndex []int
	envIdx      map[Cell]int
}

func newFrame(parent *frame, formals []Cell, variadic bool) *frame {
	f := &frame{parent: parent, formals: formals, variadic: variadic,
		formalIdx: make(map[Cell]int), envIdx: make(map[Cell]int)}
	for i, s := range formals {
		f.formalIdx[s] = i
	}
	return f
}

func (f *frame) argIndex(sym Cell) (int, bool) {
	i, ok := f.formalIdx[sym]
	return i, ok
}

// captureIndex returns the env-vector index at which sym will be
// available inside this frame's body, adding a new capture (and, if
// needed, recursively requesting the parent frame to capture it too)
// the first time sym is seen.
func (f *frame) captureIndex(c *Converter, sym Cell) (int, error) {
	if idx, ok := f.envIdx[sym]; ok {
		return idx, nil
	}
	source, srcIdx, err := c.resolveInParent(f.parent, sym)
	if err != nil {
		return 0, err
	}
	idx := len(f.envNames)
	f.envNames = append(f.envNames, sym)
	f.envSource = append(f.envSource, source)
	f.envSrcIndex = append(f.envSrcIndex, srcIdx)
	f.envIdx[sym] = idx
	return idx, nil
}

// Converter closure-converts one top-level form at a time, growing
// the shared global environment as new free top-level references and
// `def`s are discovered.
type Converter struct {
	h          *Heap
	env        *Env
	symArg     Cell
	symRef     Cell
	symClosure Cell
}

func NewConverter(h *Heap, env *Env) *Converter {
	return &Converter{
		h: h, env: env,
		symArg:     h.Syms.Intern("%arg"),
		symRef:     h.Syms.Intern("%ref"),
		symClosure: h.Syms.Intern("%closure"),
	}
}

// Convert closure-converts a syntax-checked top-level form.
func (c *Converter) Convert(form Cell) (Cell, error) {
	return c.convert(form, nil)
}

func (c *Converter) convert(form Cell, f *frame) (Cell, error) {
	h := c.h
	if !h.IsPair(form) {
		if h.IsSymbolVector(form) {
			return c.resolveVar(form, f)
		}
		return form, nil // self-evaluating literal
	}
	head := h.car[form]
	if h.IsSymbolVector(head) {
		switch h.SymbolName(head) {
		case "quote":
			return form, nil
		case "if", "if*":
			return c.convertRest(form, f)
		case "setq":
			return c.convertSetq(form, f)
		case "def":
			return c.convertDef(form, f)
		case "macro":
			return c.convertMacroDef(form, f)
		case "lambda":
			return c.convertLambda(form, f)
		case "prog", "apply":
			return c.convertRest(form, f)
		default:
			if _, isBuiltin := primitiveNames[h.SymbolName(head)]; isBuiltin {
				return c.convertRest(form, f)
			}
			return c.convertAll(form, f)
		}
	}
	if h.IsPair(head) && h.IsSymbolVector(h.car[head]) && h.SymbolName(h.car[head]) == "lambda" {
		return c.convertLiftedCall(form, f)
	}
	return c.convertAll(form, f)
}

// convertRest keeps head as-is (a special-form or built-in name) and
// converts every remaining element.
func (c *Converter) convertRest(form Cell, f *frame) (Cell, error) {
	h := c.h
	rest, err := c.convertList(h.cdr[form], f)
	if err != nil {
		return 0, err
	}
	return h.Cons(h.car[form], rest), nil
}

// convertAll converts every element, including the head (the head is
// itself an expression: a symbol naming a user function, a nested
// lambda, or an arbitrary call-producing form).
func (c *Converter) convertAll(form Cell, f *frame) (Cell, error) {
	return c.convertList(form, f)
}

func (c *Converter) convertList(list Cell, f *frame) (Cell, error) {
	h := c.h
	if list == NIL {
		return NIL, nil
	}
	headOut, err := c.convert(h.car[list], f)
	if err != nil {
		return 0, err
	}
	mark := h.Protect(headOut)
	restOut, err := c.convertList(h.cdr[list], f)
	h.Unprotect(mark)
	if err != nil {
		return 0, err
	}
	return h.Cons(headOut, restOut), nil
}

func (c *Converter) convertSetq(form Cell, f *frame) (Cell, error) {
	h := c.h
	target := h.Cadr(form)
	resolved, err := c.resolveVar(target, f)
	if err != nil {
		return 0, err
	}
	val, err := c.convert(h.car[h.cdr[h.cdr[form]]], f)
	if err != nil {
		return 0, err
	}
	return h.Cons(h.car[form], h.Cons(resolved, h.Cons(val, NIL))), nil
}

// convertDef handles a top-level `def`, growing the global
// environment and rewriting to `(setq (%ref i name) value)` (§4.6).
func (c *Converter) convertDef(form Cell, f *frame) (Cell, error) {
	h := c.h
	name := h.Cadr(form)
	idx := c.env.Define(name, Undef)
	val, err := c.convert(h.car[h.cdr[h.cdr[form]]], f)
	if err != nil {
		return 0, err
	}
	ref := c.makeRef(idx, name)
	setq := h.Syms.Intern("setq")
	return h.Cons(setq, h.Cons(ref, h.Cons(val, NIL))), nil
}

// convertMacroDef handles top-level `macro`: the name is registered
// in the global environment the same way (so it can be referenced
// before the MACRO opcode runs, for mutual recursion), and the value
// expression is converted in place; codegen.go emits MACRO instead of
// SETREF when it sees a `macro` head.
func (c *Converter) convertMacroDef(form Cell, f *frame) (Cell, error) {
	h := c.h
	name := h.Cadr(form)
	c.env.Define(name, Undef)
	val, err := c.convert(h.car[h.cdr[h.cdr[form]]], f)
	if err != nil {
		return 0, err
	}
	return h.Cons(h.car[form], h.Cons(name, h.Cons(val, NIL))), nil
}

func (c *Converter) convertLambda(form Cell, f *frame) (Cell, error) {
	h := c.h
	formalsCell := h.Cadr(form)
	names, variadic := buildFormals(h, formalsCell)
	child := newFrame(f, names, variadic)

	bodyOut, err := c.convertList(h.cdr[h.cdr[form]], child)
	if err != nil {
		return 0, err
	}

	envmap := NIL
	for i := len(child.envNames) - 1; i >= 0; i-- {
		entry := h.Cons(child.envSource[i],
			h.Cons(h.NewFixnum(child.envSrcIndex[i]),
				h.Cons(h.NewFixnum(i),
					h.Cons(child.envNames[i], NIL))))
		envmap = h.Cons(entry, envmap)
	}

	closureForm := h.Cons(c.symClosure,
		h.Cons(formalsCell, h.Cons(envmap, bodyOut)))
	return closureForm, nil
}

// convertLiftedCall implements §4.6's call-site lifting: for an
// application `((lambda F B…) A…)` whose body never assigns to a
// captured variable (containsSetq), every free variable B… would
// otherwise capture is instead promoted to an extra leading formal,
// and the matching argument expression — evaluated in f, the calling
// frame, exactly where the capture would have been resolved from — is
// prepended to the call's own arguments. The closure this produces
// captures nothing, so codegen emits no MKENV/CPARG/CPREF for it:
// the common let-like pattern pays for ordinary argument
// passing instead of an allocated environment.
//
// Ineligible forms (a setq anywhere in the body, or nothing actually
// captured) fall back to an ordinary call, compiled exactly as before.
func (c *Converter) convertLiftedCall(form Cell, f *frame) (Cell, error) {
	h := c.h
	lambdaForm := h.car[form]
	argsList := h.cdr[form]
	formalsCell := h.Cadr(lambdaForm)
	body := h.cdr[h.cdr[lambdaForm]]

	if containsSetq(h, body) {
		return c.convertAll(form, f)
	}

	names, variadic := buildFormals(h, formalsCell)

	// Speculative pass: convert the body against an ordinary frame
	// purely to discover what it would capture from f. Its own result
	// is discarded; only probe.envNames/envSource/envSrcIndex matter.
	probe := newFrame(f, names, variadic)
	if _, err := c.convertList(body, probe); err != nil {
		return 0, err
	}
	if len(probe.envNames) == 0 {
		return c.convertAll(form, f)
	}

	liftedNames := make([]Cell, 0, len(probe.envNames)+len(names))
	liftedNames = append(liftedNames, probe.envNames...)
	liftedNames = append(liftedNames, names...)

	child := newFrame(f, liftedNames, variadic)
	bodyOut, err := c.convertList(body, child)
	if err != nil {
		return 0, err
	}

	closureForm := h.Cons(c.symClosure,
		h.Cons(buildFormalsCell(h, liftedNames, variadic), h.Cons(NIL, bodyOut)))

	extraArgs := make([]Cell, len(probe.envNames))
	for i := range probe.envNames {
		if probe.envSource[i] == c.symArg {
			extraArgs[i] = c.makeArg(probe.envSrcIndex[i])
		} else {
			extraArgs[i] = c.makeRef(probe.envSrcIndex[i], probe.envNames[i])
		}
	}

	argsOut, err := c.convertList(argsList, f)
	if err != nil {
		return 0, err
	}
	newArgs := argsOut
	for i := len(extraArgs) - 1; i >= 0; i-- {
		newArgs = h.Cons(extraArgs[i], newArgs)
	}
	return h.Cons(closureForm, newArgs), nil
}

// containsSetq reports whether form (a single expression or a list of
// body forms — structurally indistinguishable) contains a setq
// anywhere outside of quoted data.
func containsSetq(h *Heap, form Cell) bool {
	if !h.IsPair(form) {
		return false
	}
	head := h.car[form]
	if h.IsSymbolVector(head) {
		switch h.SymbolName(head) {
		case "setq":
			return true
		case "quote":
			return false
		}
	}
	for n := form; h.IsPair(n); n = h.cdr[n] {
		if containsSetq(h, h.car[n]) {
			return true
		}
	}
	return false
}

// buildFormalsCell is buildFormals's inverse: it reconstructs a
// (possibly dotted) formals list from a flattened name slice.
func buildFormalsCell(h *Heap, names []Cell, variadic bool) Cell {
	if variadic {
		tail := names[len(names)-1]
		for i := len(names) - 2; i >= 0; i-- {
			tail = h.Cons(names[i], tail)
		}
		return tail
	}
	list := Cell(NIL)
	for i := len(names) - 1; i >= 0; i-- {
		list = h.Cons(names[i], list)
	}
	return list
}

func (c *Converter) resolveVar(sym Cell, f *frame) (Cell, error) {
	if f != nil {
		if idx, ok := f.argIndex(sym); ok {
			return c.makeArg(idx), nil
		}
		idx, err := f.captureIndex(c, sym)
		if err != nil {
			return 0, err
		}
		return c.makeRef(idx, sym), nil
	}
	idx := c.env.Define(sym, Undef)
	return c.makeRef(idx, sym), nil
}

// resolveInParent decides how parent (the frame lexically enclosing
// the frame doing the capturing) provides sym: as one of its own
// formals (%arg), as one of its own existing/transitively-required
// captures (%ref), or, when parent is nil, as a (possibly freshly
// created) global binding.
func (c *Converter) resolveInParent(parent *frame, sym Cell) (source Cell, idx int, err error) {
	if parent == nil {
		return c.symRef, c.env.Define(sym, Undef), nil
	}
	if i, ok := parent.argIndex(sym); ok {
		return c.symArg, i, nil
	}
	i, err := parent.captureIndex(c, sym)
	if err != nil {
		return 0, 0, err
	}
	return c.symRef, i, nil
}

func (c *Converter) makeArg(idx int) Cell {
	h := c.h
	return h.Cons(c.symArg, h.Cons(h.NewFixnum(idx), NIL))
}

func (c *Converter) makeRef(idx int, name Cell) Cell {
	h := c.h
	return h.Cons(c.symRef, h.Cons(h.NewFixnum(idx), h.Cons(name, NIL)))
}

// buildFormals flattens a (possibly dotted) formals list into a slice
// of symbol cells, with the rest-formal (if any) last, and reports
// whether the lambda is variadic (§4.4/§4.6).
func buildFormals(h *Heap, formals Cell) ([]Cell, bool) {
	var names []Cell
	n := formals
	for h.IsPair(n) {
		names = append(names, h.car[n])
		n = h.cdr[n]
	}
	if n != NIL {
		names = append(names, n)
		return names, true
	}
	return names, false
}
