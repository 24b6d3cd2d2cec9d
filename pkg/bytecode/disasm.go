package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformed is returned by Decode when the bytes stop forming valid
// instructions: an unknown tag, a truncated operand or a non-UTF-8 identifier.
var ErrMalformed = errors.New("malformed bytecode")

// Instruction is one decoded instruction.
type Instruction struct {
	Offset  int    // Start offset of the opcode byte
	Op      Opcode // Decoded opcode
	Literal int64  // PUSH operand
	Address uint64 // JUMP, JUMP_IF_FALSE and CALL operand
	Ident   string // STORE_VAR, LOAD_VAR, STORE_LOCAL, LOAD_LOCAL and PRINT operand
	Size    int    // Encoded length including the opcode byte
}

// String renders the instruction as a listing line without the offset.
func (in Instruction) String() string {
	switch in.Op.Operand() {
	case OperandLiteral:
		return fmt.Sprintf("%s %d", in.Op, in.Literal)
	case OperandAddress:
		return fmt.Sprintf("%s %d", in.Op, in.Address)
	case OperandIdent:
		return fmt.Sprintf("%s \"%s\"", in.Op, in.Ident)
	default:
		return in.Op.String()
	}
}

// reader walks bytecode with its own cursor. It never panics; every read
// reports whether enough bytes remained.
type reader struct {
	code []byte
	pos  int
}

func (r *reader) more() bool {
	return r.pos < len(r.code)
}

func (r *reader) readByte() (byte, bool) {
	if r.pos >= len(r.code) {
		return 0, false
	}
	b := r.code[r.pos]
	r.pos++
	return b, true
}

func (r *reader) readUint64() (uint64, bool) {
	if r.pos+8 > len(r.code) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.code[r.pos:])
	r.pos += 8
	return v, true
}

func (r *reader) readIdent() (string, bool) {
	n, ok := r.readByte()
	if !ok || r.pos+int(n) > len(r.code) {
		return "", false
	}
	raw := r.code[r.pos : r.pos+int(n)]
	if !utf8.Valid(raw) {
		return "", false
	}
	r.pos += int(n)
	return string(raw), true
}

// next decodes the instruction at the cursor.
func (r *reader) next() (Instruction, bool) {
	in := Instruction{Offset: r.pos}

	b, ok := r.readByte()
	if !ok {
		return in, false
	}
	op, ok := Lookup(b)
	if !ok {
		return in, false
	}
	in.Op = op

	switch op.Operand() {
	case OperandLiteral:
		v, ok := r.readUint64()
		if !ok {
			return in, false
		}
		in.Literal = int64(v)
	case OperandAddress:
		v, ok := r.readUint64()
		if !ok {
			return in, false
		}
		in.Address = v
	case OperandIdent:
		s, ok := r.readIdent()
		if !ok {
			return in, false
		}
		in.Ident = s
	}

	in.Size = r.pos - in.Offset
	return in, true
}

// Decode decodes every instruction in code. On malformed input it returns
// the instructions decoded so far together with an error naming the offset.
func Decode(code []byte) ([]Instruction, error) {
	r := &reader{code: code}
	var out []Instruction
	for r.more() {
		start := r.pos
		in, ok := r.next()
		if !ok {
			return out, fmt.Errorf("%w at %04d", ErrMalformed, start)
		}
		out = append(out, in)
	}
	return out, nil
}

// Disassemble returns a human-readable listing of code. Decoding stops at
// the first byte that does not start a valid instruction; that offset is
// printed with an <invalid> marker.
func Disassemble(code []byte) string {
	var sb strings.Builder

	// Header
	sb.WriteString("Bytecode Disassembly:\n")
	sb.WriteString("ADDR INSTRUCTION\n")
	sb.WriteString("---- -----------\n")

	r := &reader{code: code}
	for r.more() {
		start := r.pos
		in, ok := r.next()
		if !ok {
			sb.WriteString(fmt.Sprintf("%04d <invalid>\n", start))
			break
		}
		sb.WriteString(fmt.Sprintf("%04d %s\n", in.Offset, in))
	}

	return sb.String()
}

// DisassembleToLines returns the instruction lines of the listing without
// the header.
func DisassembleToLines(code []byte) []string {
	listing := Disassemble(code)
	lines := strings.Split(strings.TrimSuffix(listing, "\n"), "\n")
	return lines[3:]
}

// InstructionCount returns the number of valid instructions before the end
// of code or the first malformed byte.
func InstructionCount(code []byte) int {
	ins, _ := Decode(code)
	return len(ins)
}
