package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Builder errors reported by Build.
var (
	ErrLabelUnresolved = errors.New("label referenced but never marked")
	ErrLabelRemarked   = errors.New("label already marked")
)

// Label is a jump or call target that may be referenced before it is marked.
type Label struct {
	name     string
	resolved bool
	position int   // target offset once resolved
	refs     []int // offsets of address operands waiting for the target
}

// Name returns the label's debug name.
func (l *Label) Name() string {
	return l.name
}

// Position returns the resolved offset, or -1 if the label is unmarked.
func (l *Label) Position() int {
	if !l.resolved {
		return -1
	}
	return l.position
}

// Builder assembles bytecode with a fluent API. The first error encountered
// is kept and returned by Build; later calls become no-ops.
type Builder struct {
	code   []byte
	labels []*Label
	err    error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{code: make([]byte, 0, 64)}
}

// Len returns the number of bytes emitted so far, which is also the offset
// of the next instruction.
func (b *Builder) Len() int {
	return len(b.code)
}

// Err returns the first error recorded by the builder.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Emit appends an opcode with no operand.
func (b *Builder) Emit(op Opcode) *Builder {
	if b.err != nil {
		return b
	}
	if op.Operand() != OperandNone {
		return b.fail(fmt.Errorf("%s requires a %s operand", op, op.Operand()))
	}
	b.code = append(b.code, byte(op))
	return b
}

// Raw appends bytes verbatim. It bypasses all encoding checks.
func (b *Builder) Raw(data ...byte) *Builder {
	if b.err != nil {
		return b
	}
	b.code = append(b.code, data...)
	return b
}

// Push appends PUSH with a literal operand.
func (b *Builder) Push(v int64) *Builder {
	if b.err != nil {
		return b
	}
	b.code = append(b.code, byte(OpPush))
	b.code = AppendInt64(b.code, v)
	return b
}

// EmitIdent appends an opcode carrying an identifier operand.
func (b *Builder) EmitIdent(op Opcode, name string) *Builder {
	if b.err != nil {
		return b
	}
	if op.Operand() != OperandIdent {
		return b.fail(fmt.Errorf("%s does not take an identifier operand", op))
	}
	code, err := AppendIdent(append(b.code, byte(op)), name)
	if err != nil {
		return b.fail(fmt.Errorf("%s: %w", op, err))
	}
	b.code = code
	return b
}

// EmitAddress appends an opcode with an absolute address operand.
func (b *Builder) EmitAddress(op Opcode, addr uint64) *Builder {
	if b.err != nil {
		return b
	}
	if op.Operand() != OperandAddress {
		return b.fail(fmt.Errorf("%s does not take an address operand", op))
	}
	b.code = append(b.code, byte(op))
	b.code = AppendAddress(b.code, addr)
	return b
}

// EmitJump appends an address opcode targeting label. Forward references are
// patched when the label is marked.
func (b *Builder) EmitJump(op Opcode, label *Label) *Builder {
	if b.err != nil {
		return b
	}
	if label.resolved {
		return b.EmitAddress(op, uint64(label.position))
	}
	if op.Operand() != OperandAddress {
		return b.fail(fmt.Errorf("%s does not take an address operand", op))
	}
	b.code = append(b.code, byte(op))
	label.refs = append(label.refs, len(b.code))
	b.code = AppendAddress(b.code, 0) // placeholder
	return b
}

// NewLabel creates an unresolved label owned by this builder.
func (b *Builder) NewLabel(name string) *Label {
	l := &Label{name: name, refs: make([]int, 0, 2)}
	b.labels = append(b.labels, l)
	return l
}

// Mark resolves label to the current offset and patches pending references.
func (b *Builder) Mark(label *Label) *Builder {
	if b.err != nil {
		return b
	}
	if label.resolved {
		return b.fail(fmt.Errorf("%w: %q", ErrLabelRemarked, label.name))
	}
	label.resolved = true
	label.position = len(b.code)

	for _, ref := range label.refs {
		binary.LittleEndian.PutUint64(b.code[ref:], uint64(label.position))
	}
	label.refs = nil
	return b
}

// Arithmetic

func (b *Builder) Add() *Builder { return b.Emit(OpAdd) }
func (b *Builder) Sub() *Builder { return b.Emit(OpSub) }
func (b *Builder) Mul() *Builder { return b.Emit(OpMul) }
func (b *Builder) Div() *Builder { return b.Emit(OpDiv) }

// Comparison

func (b *Builder) Gt() *Builder  { return b.Emit(OpGt) }
func (b *Builder) Lt() *Builder  { return b.Emit(OpLt) }
func (b *Builder) Gte() *Builder { return b.Emit(OpGte) }
func (b *Builder) Lte() *Builder { return b.Emit(OpLte) }
func (b *Builder) Eq() *Builder  { return b.Emit(OpEq) }
func (b *Builder) Neq() *Builder { return b.Emit(OpNeq) }

// Variables

func (b *Builder) StoreVar(name string) *Builder   { return b.EmitIdent(OpStoreVar, name) }
func (b *Builder) LoadVar(name string) *Builder    { return b.EmitIdent(OpLoadVar, name) }
func (b *Builder) StoreLocal(name string) *Builder { return b.EmitIdent(OpStoreLocal, name) }
func (b *Builder) LoadLocal(name string) *Builder  { return b.EmitIdent(OpLoadLocal, name) }

// Control flow

func (b *Builder) Jump(l *Label) *Builder        { return b.EmitJump(OpJump, l) }
func (b *Builder) JumpIfFalse(l *Label) *Builder { return b.EmitJump(OpJumpIfFalse, l) }
func (b *Builder) Call(l *Label) *Builder        { return b.EmitJump(OpCall, l) }
func (b *Builder) Return() *Builder              { return b.Emit(OpReturn) }
func (b *Builder) Halt() *Builder                { return b.Emit(OpHalt) }

// Output

func (b *Builder) Print(text string) *Builder { return b.EmitIdent(OpPrint, text) }
func (b *Builder) PrintVal() *Builder         { return b.Emit(OpPrintVal) }
func (b *Builder) PrintLn() *Builder          { return b.Emit(OpPrintLn) }

// Build returns the assembled bytes. It fails if any emit failed or a
// referenced label was never marked.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, l := range b.labels {
		if !l.resolved && len(l.refs) > 0 {
			return nil, fmt.Errorf("%w: %q", ErrLabelUnresolved, l.name)
		}
	}
	out := make([]byte, len(b.code))
	copy(out, b.code)
	return out, nil
}

// MustBuild is like Build but panics on error. Intended for programs whose
// shape is fixed at compile time.
func (b *Builder) MustBuild() []byte {
	code, err := b.Build()
	if err != nil {
		panic("bytecode: " + err.Error())
	}
	return code
}
