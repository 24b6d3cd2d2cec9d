package bytecode

import (
	"errors"
	"strings"
	"testing"
)

func TestDisassembleEmpty(t *testing.T) {
	output := Disassemble(nil)

	if !strings.HasPrefix(output, "Bytecode Disassembly:\nADDR INSTRUCTION\n---- -----------\n") {
		t.Errorf("Disassembly missing header:\n%s", output)
	}
	if lines := DisassembleToLines(nil); len(lines) != 0 {
		t.Errorf("DisassembleToLines(nil) = %v, want empty", lines)
	}
}

func TestDisassembleListing(t *testing.T) {
	code := NewBuilder().
		Push(42).
		StoreVar("x").
		LoadVar("x").
		PrintVal().
		Halt().
		MustBuild()

	want := []string{
		"0000 PUSH 42",
		"0009 STORE_VAR \"x\"",
		"0012 LOAD_VAR \"x\"",
		"0015 PRINT_VAL",
		"0016 HALT",
	}

	got := DisassembleToLines(code)
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), Disassemble(code))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDisassembleAddresses(t *testing.T) {
	b := NewBuilder()
	fn := b.NewLabel("fn")
	b.Call(fn).Halt()
	b.Mark(fn).Print("hi").Return()

	got := DisassembleToLines(b.MustBuild())
	want := []string{
		"0000 CALL 10",
		"0009 HALT",
		"0010 PRINT \"hi\"",
		"0014 RETURN",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDisassembleNegativeLiteral(t *testing.T) {
	lines := DisassembleToLines(NewBuilder().Push(-7).MustBuild())
	if lines[0] != "0000 PUSH -7" {
		t.Errorf("line = %q, want %q", lines[0], "0000 PUSH -7")
	}
}

func TestDisassembleInvalidOpcode(t *testing.T) {
	code := NewBuilder().Push(1).Raw(0xEE, byte(OpHalt)).MustBuild()

	lines := DisassembleToLines(code)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (stops after invalid):\n%s", len(lines), Disassemble(code))
	}
	if lines[1] != "0009 <invalid>" {
		t.Errorf("line = %q, want %q", lines[1], "0009 <invalid>")
	}
}

func TestDisassembleTruncatedOperand(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"push", []byte{byte(OpPush), 1, 2, 3}},
		{"jump", []byte{byte(OpJump), 0}},
		{"ident length", []byte{byte(OpStoreVar)}},
		{"ident body", []byte{byte(OpPrint), 5, 'a', 'b'}},
		{"bad utf8", []byte{byte(OpPrint), 2, 0xC3, 0x28}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := DisassembleToLines(tt.code)
			if len(lines) != 1 || lines[0] != "0000 <invalid>" {
				t.Errorf("lines = %q, want [0000 <invalid>]", lines)
			}
			if _, err := Decode(tt.code); !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode error = %v, want ErrMalformed", err)
			}
		})
	}
}

// Every instruction emitted by the builder decodes back to the same opcode
// and operand.
func TestDecodeRoundTrip(t *testing.T) {
	type emitted struct {
		op      Opcode
		literal int64
		address uint64
		ident   string
	}

	script := []emitted{
		{op: OpPush, literal: -9223372036854775808},
		{op: OpPush, literal: 9223372036854775807},
		{op: OpAdd}, {op: OpSub}, {op: OpMul}, {op: OpDiv},
		{op: OpGt}, {op: OpLt}, {op: OpGte}, {op: OpLte}, {op: OpEq}, {op: OpNeq},
		{op: OpStoreVar, ident: "counter"},
		{op: OpLoadVar, ident: "counter"},
		{op: OpStoreLocal, ident: "ünïcode"},
		{op: OpLoadLocal, ident: ""},
		{op: OpPrint, ident: "Hello, World!"},
		{op: OpJump, address: 0},
		{op: OpJumpIfFalse, address: 1 << 40},
		{op: OpCall, address: 17},
		{op: OpReturn}, {op: OpPrintVal}, {op: OpPrintLn}, {op: OpHalt},
	}

	b := NewBuilder()
	for _, e := range script {
		switch e.op.Operand() {
		case OperandLiteral:
			b.Push(e.literal)
		case OperandAddress:
			b.EmitAddress(e.op, e.address)
		case OperandIdent:
			b.EmitIdent(e.op, e.ident)
		default:
			b.Emit(e.op)
		}
	}
	code, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ins, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(ins) != len(script) {
		t.Fatalf("decoded %d instructions, want %d", len(ins), len(script))
	}

	offset := 0
	for i, e := range script {
		got := ins[i]
		if got.Op != e.op || got.Literal != e.literal || got.Address != e.address || got.Ident != e.ident {
			t.Errorf("ins[%d] = %+v, want %+v", i, got, e)
		}
		if got.Offset != offset {
			t.Errorf("ins[%d].Offset = %d, want %d", i, got.Offset, offset)
		}
		offset += got.Size
	}
	if offset != len(code) {
		t.Errorf("sizes sum to %d, want %d", offset, len(code))
	}
	if n := InstructionCount(code); n != len(script) {
		t.Errorf("InstructionCount = %d, want %d", n, len(script))
	}
}
