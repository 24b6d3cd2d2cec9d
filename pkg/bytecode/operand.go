package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Encoded operand widths in bytes.
const (
	LiteralWidth  = 8   // i64 little-endian
	AddressWidth  = 8   // u64 little-endian
	MaxIdentBytes = 255 // identifier payload cap (1-byte length prefix)
)

// ErrIdentTooLong is returned when an identifier does not fit its length prefix.
var ErrIdentTooLong = errors.New("identifier longer than 255 bytes")

// AppendInt64 appends v as an 8-byte little-endian literal.
func AppendInt64(buf []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(buf, uint64(v))
}

// AppendAddress appends addr as an 8-byte little-endian address.
func AppendAddress(buf []byte, addr uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, addr)
}

// AppendIdent appends a length-prefixed identifier.
func AppendIdent(buf []byte, s string) ([]byte, error) {
	if len(s) > MaxIdentBytes {
		return buf, fmt.Errorf("%w: %d bytes", ErrIdentTooLong, len(s))
	}
	buf = append(buf, byte(len(s)))
	return append(buf, s...), nil
}

// Size returns the encoded length of an instruction with this opcode, given
// the identifier length for OperandIdent opcodes (ignored otherwise).
func (op Opcode) Size(identLen int) int {
	switch op.Operand() {
	case OperandLiteral:
		return 1 + LiteralWidth
	case OperandAddress:
		return 1 + AddressWidth
	case OperandIdent:
		return 2 + identLen
	default:
		return 1
	}
}
