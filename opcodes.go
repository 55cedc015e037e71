package lisp9

import "encoding/binary"

// opcodes.go defines the closed bytecode instruction set of §4.7/§4.8:
// three instruction widths, operands always big-endian, the same
// split the teacher's vm_encoder.go makes between "what's emitted"
// and "how it's packed" (there it uses binary.LittleEndian; the
// wire format here is fixed by the spec to big-endian, so we use
// binary.BigEndian instead, keeping the same encoding/binary
// dependency and code shape).

// Opcodes are laid out in three fixed ranges so instrSize can
// classify any byte without a lookup table: 0x00-0x0f control
// (1 byte), 0x10-0x8f primitives (1 byte, see primitives.go, 128
// slots to comfortably cover the ~123-name closed set of §6),
// 0x90-0x9c operand-taking forms (3 bytes), 0xd0-0xd2 two-operand
// forms (5 bytes).
const (
	opHalt     byte = 0x00
	opReturn   byte = 0x01
	opPop      byte = 0x02
	opPush     byte = 0x03
	opPropenv  byte = 0x04
	opApply    byte = 0x05
	opTailapp  byte = 0x06
	opApplis   byte = 0x07
	opApplist  byte = 0x08
	opNot      byte = 0x09
	opPrimBase byte = 0x10
	opPrimEnd  byte = 0x90

	opArg     byte = 0x90
	opPushval byte = 0x91
	opJmp     byte = 0x92
	opBrf     byte = 0x93
	opBrt     byte = 0x94
	opClosure byte = 0x95
	opMkenv   byte = 0x96
	opEnter   byte = 0x97
	opEntcol  byte = 0x98
	opSetarg  byte = 0x99
	opSetref  byte = 0x9a
	opMacro   byte = 0x9b
	opQuote   byte = 0x9c

	opRef   byte = 0xd0
	opCpref byte = 0xd1
	opCparg byte = 0xd2
)

// instrSize returns the total encoded size (opcode + operands) of the
// instruction whose opcode byte is op, or 0 for an opcode it doesn't
// recognise (used by marklit, gc.go, to stop decoding rather than
// walk off the end of a corrupt stream).
func instrSize(op byte) int {
	switch op {
	case opRef, opCpref, opCparg:
		return 5
	case opArg, opPushval, opJmp, opBrf, opBrt, opClosure, opMkenv,
		opEnter, opEntcol, opSetarg, opSetref, opMacro, opQuote:
		return 3
	case opHalt, opReturn, opPop, opPush, opPropenv, opApply, opTailapp,
		opApplis, opApplist, opNot:
		return 1
	default:
		if op >= opPrimBase && op < opPrimEnd {
			return 1
		}
		return 0
	}
}

func beUint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

func putBeUint16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }

// emitter assembles bytecode for a single top-level form into a
// growing byte slice, with a compile-time patch stack for forward
// jumps (§4.7 "Control-flow patching").
type emitter struct {
	code []byte
}

func newEmitter() *emitter { return &emitter{} }

func (e *emitter) pos() int { return len(e.code) }

func (e *emitter) op(b byte) { e.code = append(e.code, b) }

// op16 emits a 3-byte instruction: opcode followed by a big-endian
// uint16 operand.
func (e *emitter) op16(b byte, operand int) {
	e.code = append(e.code, b, 0, 0)
	putBeUint16(e.code[len(e.code)-2:], uint16(operand))
}

// op1616 emits a 5-byte instruction: opcode followed by two
// big-endian uint16 operands.
func (e *emitter) op1616(b byte, a, c int) {
	e.code = append(e.code, b, 0, 0, 0, 0)
	putBeUint16(e.code[len(e.code)-4:], uint16(a))
	putBeUint16(e.code[len(e.code)-2:], uint16(c))
}

// jump emits a forward-jump opcode with a 0 placeholder and returns
// the byte offset of the operand, to be fed to patch once the target
// label is known.
func (e *emitter) jump(b byte) int {
	e.op16(b, 0)
	return e.pos() - 2
}

// patch backfills a previously emitted forward-jump operand at
// offset (as returned by jump) with the current position.
func (e *emitter) patch(offset int) {
	putBeUint16(e.code[offset:], uint16(e.pos()))
}

// patchTo backfills offset with an explicit target, for backward
// references (e.g. a loop already past its own header).
func (e *emitter) patchTo(offset, target int) {
	putBeUint16(e.code[offset:], uint16(target))
}
