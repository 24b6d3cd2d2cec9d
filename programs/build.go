package programs

import "github.com/chazu/stackvm/pkg/bytecode"

func buildAddition(b *bytecode.Builder) {
	b.Push(10).Push(5).Add().Halt()
}

func buildComplex(b *bytecode.Builder) {
	b.Push(20).Push(4).Div() // [5]
	b.Push(3).Mul()          // [15]
	b.Push(2).Sub()          // [13]
	b.Halt()
}

func buildVariable(b *bytecode.Builder) {
	b.Push(42).StoreVar("x").LoadVar("x").Halt()
}

func buildVariableArithmetic(b *bytecode.Builder) {
	b.Push(10).StoreVar("a").
		Push(2).StoreVar("b").
		Push(3).StoreVar("c").
		LoadVar("a").LoadVar("b").Div().
		LoadVar("c").Mul().
		StoreVar("result").
		Halt()
}

func buildComparison(b *bytecode.Builder) {
	b.Push(10).StoreVar("x").
		Push(5).StoreVar("y").
		LoadVar("x").LoadVar("y").Gt().
		StoreVar("is_greater").
		Halt()
}

func buildIfElse(b *bytecode.Builder) {
	elseL := b.NewLabel("else")
	end := b.NewLabel("end")

	b.Push(20).StoreVar("age")
	b.LoadVar("age").Push(18).Gte().JumpIfFalse(elseL)
	b.Push(1).StoreVar("can_vote").Jump(end)
	b.Mark(elseL).Push(0).StoreVar("can_vote")
	b.Mark(end).Halt()
}

func buildWhileLoop(b *bytecode.Builder) {
	top := b.NewLabel("loop")
	end := b.NewLabel("end")

	b.Push(0).StoreVar("counter")
	b.Mark(top).LoadVar("counter").Push(5).Lt().JumpIfFalse(end)
	b.LoadVar("counter").Push(1).Add().StoreVar("counter")
	b.Jump(top)
	b.Mark(end).Halt()
}

func buildCountdown(b *bytecode.Builder) {
	top := b.NewLabel("loop")
	end := b.NewLabel("end")

	b.Push(10).StoreVar("n")
	b.Mark(top).LoadVar("n").Push(0).Gt().JumpIfFalse(end)
	b.LoadVar("n").Push(1).Sub().StoreVar("n")
	b.Jump(top)
	b.Mark(end).Halt()
}

func buildHelloWorld(b *bytecode.Builder) {
	b.Print("Hello, ").Print("World!").PrintLn().Halt()
}

func buildPrintVariable(b *bytecode.Builder) {
	b.Push(42).StoreVar("x").LoadVar("x").PrintVal().Halt()
}

func buildFactorial(b *bytecode.Builder) {
	top := b.NewLabel("loop")
	end := b.NewLabel("end")

	b.Push(1).StoreVar("result")
	b.Push(5).StoreVar("n")
	b.Mark(top).LoadVar("n").Push(0).Gt().JumpIfFalse(end)
	b.LoadVar("result").LoadVar("n").Mul().StoreVar("result")
	b.LoadVar("n").Push(1).Sub().StoreVar("n")
	b.Jump(top)
	b.Mark(end).Print("5! = ").LoadVar("result").PrintVal().PrintLn().Halt()
}

func buildFibonacci(b *bytecode.Builder) {
	top := b.NewLabel("loop")
	end := b.NewLabel("end")

	b.Push(0).StoreVar("a")
	b.Push(1).StoreVar("b")
	b.Push(0).StoreVar("i")
	b.Mark(top).LoadVar("i").Push(10).Lt().JumpIfFalse(end)
	b.LoadVar("a").PrintVal().Print(" ")
	b.LoadVar("a").LoadVar("b").Add().StoreVar("t")
	b.LoadVar("b").StoreVar("a")
	b.LoadVar("t").StoreVar("b")
	b.LoadVar("i").Push(1).Add().StoreVar("i")
	b.Jump(top)
	b.Mark(end).PrintLn().Halt()
}

func buildSubroutine(b *bytecode.Builder) {
	square := b.NewLabel("square")

	b.Push(3).Call(square).
		Push(4).Call(square).
		Add().StoreVar("result")
	b.Print("3^2 + 4^2 = ").LoadVar("result").PrintVal().PrintLn()
	b.Halt()

	// square(n) -> n*n
	b.Mark(square).
		StoreLocal("n").
		LoadLocal("n").LoadLocal("n").Mul().
		Return()
}

func buildStackUnderflow(b *bytecode.Builder) {
	b.Add().Halt()
}

func buildDivisionByZero(b *bytecode.Builder) {
	b.Push(10).Push(0).Div().Halt()
}

func buildUndefinedVariable(b *bytecode.Builder) {
	b.LoadVar("missing").Halt()
}

func buildRunawayLoop(b *bytecode.Builder) {
	top := b.NewLabel("loop")
	b.Mark(top).Jump(top)
}
