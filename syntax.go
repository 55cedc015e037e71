package lisp9

// syntax.go implements §4.4: a walk over a reader-produced form that
// rejects malformed special forms before compilation ever sees them.

var specialForms = map[string]bool{
	"apply": true, "def": true, "if": true, "if*": true,
	"lambda": true, "macro": true, "prog": true, "quote": true, "setq": true,
}

// syntaxChecker walks one top-level form.
type syntaxChecker struct {
	h *Heap
}

func newSyntaxChecker(h *Heap) *syntaxChecker {
	return &syntaxChecker{h: h}
}

// Check validates form as a top-level form (§4.4).
func (s *syntaxChecker) Check(form Cell) error {
	return s.check(form, true)
}

func (s *syntaxChecker) check(form Cell, top bool) error {
	h := s.h
	if !h.IsPair(form) {
		return nil
	}
	head := h.car[form]
	if h.IsSymbolVector(head) {
		switch h.SymbolName(head) {
		case "quote":
			return s.checkQuote(form)
		case "def":
			return s.checkDef(form, top, false)
		case "macro":
			return s.checkDef(form, top, true)
		case "if":
			return s.checkIf(form, 3)
		case "if*":
			return s.checkIf(form, 3)
		case "lambda":
			return s.checkLambda(form)
		case "prog":
			return s.checkBody(h.cdr[form])
		case "apply":
			return s.checkApply(form)
		case "setq":
			return s.checkSetq(form)
		}
	}
	return s.checkBody(form)
}

func (s *syntaxChecker) checkQuote(form Cell) error {
	h := s.h
	if h.ListLen(form) != 2 {
		return &LispError{Kind: ErrArity, Message: "quote takes exactly one argument"}
	}
	return nil
}

func (s *syntaxChecker) checkDef(form Cell, top bool, isMacro bool) error {
	h := s.h
	who := "def"
	if isMacro {
		who = "macro"
	}
	if !top {
		return &LispError{Kind: ErrOther, Message: who + " must appear at top level"}
	}
	if h.ListLen(form) != 3 {
		return &LispError{Kind: ErrArity, Message: who + " takes a name and a value"}
	}
	name := h.Cadr(form)
	if !h.IsSymbolVector(name) {
		return &LispError{Kind: ErrType, Message: who + " name must be a symbol"}
	}
	val := h.car[h.cdr[h.cdr[form]]]
	return s.check(val, false)
}

func (s *syntaxChecker) checkIf(form Cell, maxLen int) error {
	h := s.h
	n := h.ListLen(form)
	if n != 3 && n != 4 {
		return &LispError{Kind: ErrArity, Message: "if takes a condition, a then branch, and an optional else branch"}
	}
	return s.checkBody(h.cdr[form])
}

func (s *syntaxChecker) checkLambda(form Cell) error {
	h := s.h
	rest := h.cdr[form]
	if !h.IsPair(rest) || !h.IsPair(h.cdr[rest]) {
		return &LispError{Kind: ErrArity, Message: "lambda requires formals and a body"}
	}
	formals := h.car[rest]
	if err := checkFormals(h, formals); err != nil {
		return err
	}
	return s.checkBody(h.cdr[rest])
}

// checkFormals requires a (possibly dotted) list of distinct symbols.
// Lambda formals are the one place a dotted list is legal in program
// position (§4.4).
func checkFormals(h *Heap, formals Cell) error {
	seen := map[Cell]bool{}
	n := formals
	for h.IsPair(n) {
		sym := h.car[n]
		if !h.IsSymbolVector(sym) {
			return &LispError{Kind: ErrType, Message: "lambda formal must be a symbol"}
		}
		if seen[sym] {
			return &LispError{Kind: ErrOther, Message: "duplicate formal: " + h.SymbolName(sym)}
		}
		seen[sym] = true
		n = h.cdr[n]
	}
	if n != NIL {
		if !h.IsSymbolVector(n) {
			return &LispError{Kind: ErrType, Message: "lambda rest formal must be a symbol"}
		}
		if seen[n] {
			return &LispError{Kind: ErrOther, Message: "duplicate formal: " + h.SymbolName(n)}
		}
	}
	return nil
}

func (s *syntaxChecker) checkApply(form Cell) error {
	h := s.h
	n := h.ListLen(form)
	if n < 0 || n < 3 {
		return &LispError{Kind: ErrArity, Message: "apply takes at least two arguments"}
	}
	return s.checkBody(h.cdr[form])
}

func (s *syntaxChecker) checkSetq(form Cell) error {
	h := s.h
	if h.ListLen(form) != 3 {
		return &LispError{Kind: ErrArity, Message: "setq takes a target and a value"}
	}
	target := h.Cadr(form)
	if !h.IsSymbolVector(target) {
		return &LispError{Kind: ErrType, Message: "setq target must be a symbol"}
	}
	return s.check(h.car[h.cdr[h.cdr[form]]], false)
}

// checkBody recursively checks every element of a list of subforms,
// none of which are top-level.
func (s *syntaxChecker) checkBody(list Cell) error {
	h := s.h
	n := list
	for h.IsPair(n) {
		if err := s.check(h.car[n], false); err != nil {
			return err
		}
		n = h.cdr[n]
	}
	if n != NIL {
		return &LispError{Kind: ErrOther, Message: "dotted list in program position"}
	}
	return nil
}
