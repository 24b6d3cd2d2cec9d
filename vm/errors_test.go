package vm

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("running demo: %w", errInvalidOpcode(0x42))

	if !errors.Is(err, ErrInvalidOpcode) {
		t.Error("wrapped invalid opcode should match ErrInvalidOpcode")
	}
	if errors.Is(err, ErrOutOfBounds) {
		t.Error("invalid opcode should not match ErrOutOfBounds")
	}

	var e *Error
	if !errors.As(err, &e) || e.Opcode != 0x42 {
		t.Errorf("errors.As = %+v, want Opcode 0x42", e)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: StackUnderflow}, "stack underflow: tried to pop from empty stack"},
		{&Error{Kind: DivisionByZero}, "division by zero"},
		{errInvalidOpcode(0xFF), "invalid opcode: 0xFF (255)"},
		{&Error{Kind: OutOfBounds}, "instruction pointer out of bounds"},
		{errUndefined("n"), `undefined variable: "n"`},
		{&Error{Kind: InfiniteLoopDetected, Limit: 10}, "infinite loop detected: exceeded 10 steps"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorKindString(t *testing.T) {
	if got := InvalidString.String(); got != "invalid string" {
		t.Errorf("String() = %q", got)
	}
	if got := ErrorKind(200).String(); got != "ErrorKind(200)" {
		t.Errorf("String() = %q", got)
	}
}
