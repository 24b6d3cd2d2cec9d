// Interpreter benchmarks
//
// Run: go test -bench=. ./vm/...
// Run with memory stats: go test -bench=. -benchmem ./vm/...
package vm

import (
	"io"
	"testing"

	"github.com/chazu/stackvm/pkg/bytecode"
)

// ============================================================
// Execution Benchmarks
// ============================================================

// BenchmarkArithmetic measures a straight-line expression
func BenchmarkArithmetic(b *testing.B) {
	code := bytecode.NewBuilder().
		Push(20).Push(4).Div().
		Push(3).Mul().
		Push(2).Sub().
		Halt().MustBuild()

	m := New(Options{Output: io.Discard})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Load(code)
		_ = m.Run()
	}
}

// BenchmarkLoop measures a counting loop over globals
func BenchmarkLoop(b *testing.B) {
	bb := bytecode.NewBuilder()
	top := bb.NewLabel("top")
	end := bb.NewLabel("end")
	bb.Push(0).StoreVar("i")
	bb.Mark(top).LoadVar("i").Push(1000).Lt().JumpIfFalse(end).
		LoadVar("i").Push(1).Add().StoreVar("i").
		Jump(top)
	bb.Mark(end).Halt()
	code := bb.MustBuild()

	m := New(Options{Output: io.Discard, MaxSteps: 1 << 20})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Load(code)
		_ = m.Run()
	}
}

// BenchmarkCall measures CALL/RETURN with locals
func BenchmarkCall(b *testing.B) {
	bb := bytecode.NewBuilder()
	sq := bb.NewLabel("square")
	bb.Push(3).Call(sq).Push(4).Call(sq).Add().Halt()
	bb.Mark(sq).StoreLocal("n").LoadLocal("n").LoadLocal("n").Mul().Return()
	code := bb.MustBuild()

	m := New(Options{Output: io.Discard})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Load(code)
		_ = m.Run()
	}
}

// ============================================================
// Disassembly Benchmarks
// ============================================================

// BenchmarkDisassemble measures listing generation
func BenchmarkDisassemble(b *testing.B) {
	bb := bytecode.NewBuilder()
	for i := 0; i < 100; i++ {
		bb.Push(int64(i)).StoreVar("x").LoadVar("x").PrintVal()
	}
	code := bb.Halt().MustBuild()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bytecode.Disassemble(code)
	}
}
