package lisp9

import (
	"fmt"
	"strings"

	"lisp9/ascii"
)

// disasm.go is a debugging/tooling aid over §4.7's bytecode format: a
// linear decode of one BYTECODE atom's instruction stream into
// human-readable text, annotating QUOTE/CLOSURE operands with their
// literal-pool value and REF's symbol-id operand with its name.
// Disassemble/DisassembleColor mirror the teacher's plain-vs-colorized
// diagnostic-printer pair; ascii.Theme here is pared down to exactly
// the five parts one instruction ever has (offset, mnemonic, operand,
// literal/jump annotation, symbol annotation) instead of the teacher's
// general-purpose diagnostic palette.

func opcodeName(op byte) string {
	switch op {
	case opHalt:
		return "halt"
	case opReturn:
		return "return"
	case opPop:
		return "pop"
	case opPush:
		return "push"
	case opPropenv:
		return "propenv"
	case opApply:
		return "apply"
	case opTailapp:
		return "tailapp"
	case opApplis:
		return "applis"
	case opApplist:
		return "applist"
	case opNot:
		return "not"
	case opArg:
		return "arg"
	case opPushval:
		return "pushval"
	case opJmp:
		return "jmp"
	case opBrf:
		return "brf"
	case opBrt:
		return "brt"
	case opClosure:
		return "closure"
	case opMkenv:
		return "mkenv"
	case opEnter:
		return "enter"
	case opEntcol:
		return "entcol"
	case opSetarg:
		return "setarg"
	case opSetref:
		return "setref"
	case opMacro:
		return "macro"
	case opQuote:
		return "quote"
	case opRef:
		return "ref"
	case opCpref:
		return "cpref"
	case opCparg:
		return "cparg"
	default:
		if op >= opPrimBase && op < opPrimEnd {
			if d, ok := primitiveByOp[op]; ok {
				return d.name
			}
		}
		return fmt.Sprintf("?0x%02x", op)
	}
}

// Disassemble renders bc's instruction stream as plain text, one
// instruction per line.
func (m *Machine) Disassemble(bc Cell) string {
	return m.disassemble(bc, false)
}

// DisassembleColor is Disassemble with ascii.DefaultTheme syntax
// highlighting.
func (m *Machine) DisassembleColor(bc Cell) string {
	return m.disassemble(bc, true)
}

func (m *Machine) disassemble(bc Cell, color bool) string {
	h := m.h
	code := h.vecBytes(h.cdr[bc])
	var sb strings.Builder
	ip := 0
	for ip < len(code) {
		op := code[ip]
		size := instrSize(op)
		if size == 0 {
			sb.WriteString(fmt.Sprintf("%04x: <bad opcode 0x%02x>\n", ip, op))
			break
		}
		name := opcodeName(op)
		label := fmt.Sprintf("%04x:", ip)
		if color {
			label = ascii.Color(ascii.DefaultTheme.Label, "%04x:", ip)
			name = ascii.Color(ascii.DefaultTheme.Operator, "%s", name)
		}
		sb.WriteString(label)
		sb.WriteByte(' ')
		sb.WriteString(name)
		switch size {
		case 3:
			operand := int(beUint16(code[ip+1:]))
			sb.WriteByte(' ')
			sb.WriteString(m.formatOperand(op, operand, color))
		case 5:
			a := int(beUint16(code[ip+1:]))
			b := int(beUint16(code[ip+3:]))
			base := fmt.Sprintf("%d %d", a, b)
			if color {
				base = ascii.Color(ascii.DefaultTheme.Operand, "%s", base)
			}
			sb.WriteByte(' ')
			sb.WriteString(base)
			if op == opRef && b >= 0 && b < h.Syms.Len() {
				name := h.SymbolName(h.Syms.ByID(b))
				if color {
					name = ascii.Color(ascii.DefaultTheme.Symbol, "%s", name)
				}
				sb.WriteString("  ; ")
				sb.WriteString(name)
			}
		}
		sb.WriteByte('\n')
		ip += size
	}
	return sb.String()
}

// formatOperand renders a 3-byte instruction's single operand. QUOTE/
// CLOSURE operands additionally print the literal-pool value they
// index (ascii.Theme.Literal), and jump operands print their target
// offset in the same color rather than as a plain number.
func (m *Machine) formatOperand(op byte, operand int, color bool) string {
	base := fmt.Sprintf("%d", operand)
	if color {
		base = ascii.Color(ascii.DefaultTheme.Operand, "%s", base)
	}
	switch op {
	case opQuote, opClosure:
		val := m.printValue(m.h.Lits.Get(operand), true)
		if color {
			val = ascii.Color(ascii.DefaultTheme.Literal, "%s", val)
		}
		return fmt.Sprintf("%s  ; %s", base, val)
	case opJmp, opBrf, opBrt:
		target := fmt.Sprintf("-> %04x", operand)
		if color {
			return ascii.Color(ascii.DefaultTheme.Literal, "%s", target)
		}
		return target
	}
	return base
}
