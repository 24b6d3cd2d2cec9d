package vm

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a runtime failure.
type ErrorKind uint8

const (
	StackUnderflow       ErrorKind = iota + 1 // pop on an empty operand stack
	DivisionByZero                            // integer divide with zero divisor
	InvalidOpcode                             // unrecognized opcode byte
	InvalidOperand                            // operator applied to incompatible kinds
	OutOfBounds                               // ip or jump/call target outside the program
	UndefinedVariable                         // load of an absent name
	InvalidString                             // identifier operand is not valid UTF-8
	InfiniteLoopDetected                      // step ceiling exceeded
)

var errorKindNames = map[ErrorKind]string{
	StackUnderflow:       "stack underflow",
	DivisionByZero:       "division by zero",
	InvalidOpcode:        "invalid opcode",
	InvalidOperand:       "invalid operand",
	OutOfBounds:          "out of bounds",
	UndefinedVariable:    "undefined variable",
	InvalidString:        "invalid string",
	InfiniteLoopDetected: "infinite loop detected",
}

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error is the single error type produced by the interpreter. The Kind
// decides which of the detail fields are meaningful.
type Error struct {
	Kind   ErrorKind
	Opcode byte   // InvalidOpcode: the raw byte
	Name   string // UndefinedVariable: the missing name
	Detail string // InvalidOperand: operator and operand kinds
	Limit  int    // InfiniteLoopDetected: the step ceiling

	// IP and Trace are filled in by Run when the error aborts execution.
	IP    int // start offset of the failing instruction
	Trace *Trace
}

// Sentinel errors for errors.Is. Matching compares Kind only, so
// errors.Is(err, ErrInvalidOpcode) holds whatever byte err carries.
var (
	ErrStackUnderflow       = &Error{Kind: StackUnderflow}
	ErrDivisionByZero       = &Error{Kind: DivisionByZero}
	ErrInvalidOpcode        = &Error{Kind: InvalidOpcode}
	ErrInvalidOperand       = &Error{Kind: InvalidOperand}
	ErrOutOfBounds          = &Error{Kind: OutOfBounds}
	ErrUndefinedVariable    = &Error{Kind: UndefinedVariable}
	ErrInvalidString        = &Error{Kind: InvalidString}
	ErrInfiniteLoopDetected = &Error{Kind: InfiniteLoopDetected}
)

func (e *Error) Error() string {
	switch e.Kind {
	case StackUnderflow:
		return "stack underflow: tried to pop from empty stack"
	case InvalidOpcode:
		return fmt.Sprintf("invalid opcode: 0x%02X (%d)", e.Opcode, e.Opcode)
	case InvalidOperand:
		if e.Detail != "" {
			return "invalid operand type for operation: " + e.Detail
		}
		return "invalid operand type for operation"
	case OutOfBounds:
		return "instruction pointer out of bounds"
	case UndefinedVariable:
		return fmt.Sprintf("undefined variable: %q", e.Name)
	case InvalidString:
		return "invalid string: operand is not valid UTF-8"
	case InfiniteLoopDetected:
		if e.Limit > 0 {
			return fmt.Sprintf("infinite loop detected: exceeded %d steps", e.Limit)
		}
		return "infinite loop detected"
	default:
		return e.Kind.String()
	}
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func errInvalidOpcode(b byte) *Error {
	return &Error{Kind: InvalidOpcode, Opcode: b}
}

func errUndefined(name string) *Error {
	return &Error{Kind: UndefinedVariable, Name: name}
}

func errInvalidOperand(op string, a, b Value) *Error {
	return &Error{Kind: InvalidOperand, Detail: fmt.Sprintf("%s %s, %s", op, a.Kind(), b.Kind())}
}

// ---------------------------------------------------------------------------
// Diagnostic trace
// ---------------------------------------------------------------------------

// FrameInfo describes one call frame in a trace.
type FrameInfo struct {
	Index      int // Position in the call stack, 0 is the base frame
	ReturnAddr int // Stored return address
}

// Trace is the diagnostic snapshot taken when an instruction fails.
type Trace struct {
	Offset int         // Start offset of the failing instruction
	IP     int         // Instruction pointer when the failure was raised
	Frames []FrameInfo // Innermost first
}

// String renders the trace one frame per line.
func (t *Trace) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("fault at %04d (ip=%04d)\n", t.Offset, t.IP))
	for _, f := range t.Frames {
		if f.Index == 0 {
			sb.WriteString(fmt.Sprintf("  frame %d: return address %04d (base)\n", f.Index, f.ReturnAddr))
		} else {
			sb.WriteString(fmt.Sprintf("  frame %d: return address %04d\n", f.Index, f.ReturnAddr))
		}
	}
	return sb.String()
}
