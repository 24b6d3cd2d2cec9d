// Package vm implements the stackvm interpreter.
//
// A VM decodes and executes one instruction at a time from a byte program
// laid out as described in package bytecode. State consists of a single
// operand stack of Values shared by all frames, a global variable store,
// and a call stack whose base frame is never removed. Each frame owns its
// locals; arguments and results cross calls through the operand stack.
//
// Execution stops on HALT, on RETURN from the base frame, when the
// instruction pointer reaches the end of the program, or on the first
// error. Every error is an *Error whose Kind can be matched with errors.Is
// against the Err* sentinels. When Run fails the error carries a Trace of
// the faulting offset and every live frame.
//
// A step ceiling (DefaultMaxSteps unless Options.MaxSteps says otherwise)
// bounds execution; exceeding it fails with InfiniteLoopDetected.
//
// Basic use:
//
//	code := bytecode.NewBuilder().Push(10).Push(5).Add().Halt().MustBuild()
//	m := vm.New(vm.Options{})
//	m.Load(code)
//	if err := m.Run(); err != nil {
//		return err
//	}
//	top, _ := m.Peek() // 15
package vm
