package bytecode

import "fmt"

// Opcode represents a bytecode instruction tag.
type Opcode byte

const (
	// ========================================================================
	// Arithmetic and literals (0x00-0x05)
	// ========================================================================

	OpAdd  Opcode = 0x00 // Pop two, push sum
	OpSub  Opcode = 0x01 // Pop two, push difference (a - b where b is TOS)
	OpMul  Opcode = 0x02 // Pop two, push product
	OpDiv  Opcode = 0x03 // Pop two, push quotient (truncated toward zero)
	OpPush Opcode = 0x04 // Push literal: OpPush <value:i64>
	OpHalt Opcode = 0x05 // Stop execution

	// ========================================================================
	// Global variables (0x06-0x07)
	// ========================================================================

	OpStoreVar Opcode = 0x06 // Pop and store to global: OpStoreVar <name:ident>
	OpLoadVar  Opcode = 0x07 // Push global: OpLoadVar <name:ident>

	// ========================================================================
	// Comparison (0x08-0x0D)
	// ========================================================================

	OpGt  Opcode = 0x08 // Pop two, push a > b
	OpLt  Opcode = 0x09 // Pop two, push a < b
	OpGte Opcode = 0x0A // Pop two, push a >= b
	OpLte Opcode = 0x0B // Pop two, push a <= b
	OpEq  Opcode = 0x0C // Pop two, push a == b
	OpNeq Opcode = 0x0D // Pop two, push a != b

	// ========================================================================
	// Control flow (0x0E-0x0F)
	// ========================================================================

	OpJump        Opcode = 0x0E // Unconditional jump: OpJump <addr:u64>
	OpJumpIfFalse Opcode = 0x0F // Pop, jump if falsy: OpJumpIfFalse <addr:u64>

	// ========================================================================
	// Frame-local variables (0x10-0x11)
	// ========================================================================

	OpStoreLocal Opcode = 0x10 // Pop and store to current frame: OpStoreLocal <name:ident>
	OpLoadLocal  Opcode = 0x11 // Push from current frame: OpLoadLocal <name:ident>

	// ========================================================================
	// Subroutines (0x12-0x13)
	// ========================================================================

	OpCall   Opcode = 0x12 // Push frame and jump: OpCall <addr:u64>
	OpReturn Opcode = 0x13 // Pop frame, resume at its return address

	// ========================================================================
	// Output (0x14-0x16)
	// ========================================================================

	OpPrint    Opcode = 0x14 // Write text: OpPrint <text:ident>
	OpPrintVal Opcode = 0x15 // Pop and write value
	OpPrintLn  Opcode = 0x16 // Write newline
)

// OperandKind describes the encoded shape of an opcode's operand.
type OperandKind uint8

const (
	// OperandNone means the opcode is a single byte.
	OperandNone OperandKind = iota

	// OperandLiteral is an 8-byte little-endian signed integer.
	OperandLiteral

	// OperandAddress is an 8-byte little-endian unsigned byte offset.
	OperandAddress

	// OperandIdent is a 1-byte length followed by that many UTF-8 bytes.
	OperandIdent
)

// String returns a human-readable name for OperandKind.
func (k OperandKind) String() string {
	switch k {
	case OperandNone:
		return "none"
	case OperandLiteral:
		return "i64"
	case OperandAddress:
		return "addr"
	case OperandIdent:
		return "ident"
	default:
		return fmt.Sprintf("OperandKind(%d)", k)
	}
}

// OpcodeInfo provides metadata about each opcode for decoding and display.
type OpcodeInfo struct {
	Name      string      // Mnemonic
	Operand   OperandKind // Operand shape following the tag
	StackPop  int         // Values popped from the operand stack
	StackPush int         // Values pushed to the operand stack
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Arithmetic and literals
	OpAdd:  {"ADD", OperandNone, 2, 1},
	OpSub:  {"SUB", OperandNone, 2, 1},
	OpMul:  {"MUL", OperandNone, 2, 1},
	OpDiv:  {"DIV", OperandNone, 2, 1},
	OpPush: {"PUSH", OperandLiteral, 0, 1},
	OpHalt: {"HALT", OperandNone, 0, 0},

	// Globals
	OpStoreVar: {"STORE_VAR", OperandIdent, 1, 0},
	OpLoadVar:  {"LOAD_VAR", OperandIdent, 0, 1},

	// Comparison
	OpGt:  {"GT", OperandNone, 2, 1},
	OpLt:  {"LT", OperandNone, 2, 1},
	OpGte: {"GTE", OperandNone, 2, 1},
	OpLte: {"LTE", OperandNone, 2, 1},
	OpEq:  {"EQ", OperandNone, 2, 1},
	OpNeq: {"NEQ", OperandNone, 2, 1},

	// Control flow
	OpJump:        {"JUMP", OperandAddress, 0, 0},
	OpJumpIfFalse: {"JUMP_IF_FALSE", OperandAddress, 1, 0},

	// Locals
	OpStoreLocal: {"STORE_LOCAL", OperandIdent, 1, 0},
	OpLoadLocal:  {"LOAD_LOCAL", OperandIdent, 0, 1},

	// Subroutines
	OpCall:   {"CALL", OperandAddress, 0, 0},
	OpReturn: {"RETURN", OperandNone, 0, 0},

	// Output
	OpPrint:    {"PRINT", OperandIdent, 0, 0},
	OpPrintVal: {"PRINT_VAL", OperandNone, 1, 0},
	OpPrintLn:  {"PRINTLN", OperandNone, 0, 0},
}

// Lookup decodes a raw byte into an opcode.
// Returns false if the byte is not a known tag.
func Lookup(b byte) (Opcode, bool) {
	op := Opcode(b)
	if _, ok := opcodeInfoTable[op]; !ok {
		return 0, false
	}
	return op, true
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// Byte returns the encoded tag for op.
func (op Opcode) Byte() byte {
	return byte(op)
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Operand returns the operand shape for this opcode.
func (op Opcode) Operand() OperandKind {
	return GetOpcodeInfo(op).Operand
}

// IsJump returns true if this opcode transfers control to an address operand.
func (op Opcode) IsJump() bool {
	return op == OpJump || op == OpJumpIfFalse || op == OpCall
}

// AllOpcodes returns every defined opcode in tag order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for b := 0; b <= 0xFF; b++ {
		if op, ok := Lookup(byte(b)); ok {
			opcodes = append(opcodes, op)
		}
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
