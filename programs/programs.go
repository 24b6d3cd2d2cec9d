// Package programs is a catalog of sample stackvm programs. Each program
// carries the outcome it is expected to produce, so the catalog doubles as an
// end-to-end check of the interpreter.
package programs

import (
	"bytes"
	"fmt"

	"github.com/chazu/stackvm/pkg/bytecode"
	"github.com/chazu/stackvm/vm"
)

// Expect describes the result of running a program to completion.
type Expect struct {
	// Err is the failure kind, or 0 when the program must halt cleanly.
	Err vm.ErrorKind

	// The remaining fields are checked only for clean halts.
	Output  string
	Stack   []vm.Value
	Globals map[string]vm.Value
}

// Program is a named sample.
type Program struct {
	Name        string
	Description string
	Code        []byte
	Expect      Expect
}

type entry struct {
	name   string
	desc   string
	build  func(*bytecode.Builder)
	expect Expect
}

var catalog = []entry{
	// --- Arithmetic ---
	{"addition", "10 + 5", buildAddition, Expect{
		Stack: []vm.Value{vm.Int(15)},
	}},
	{"complex", "((20 / 4) * 3) - 2", buildComplex, Expect{
		Stack: []vm.Value{vm.Int(13)},
	}},
	{"variable", "x = 42, then load x", buildVariable, Expect{
		Stack:   []vm.Value{vm.Int(42)},
		Globals: map[string]vm.Value{"x": vm.Int(42)},
	}},
	{"variable-arithmetic", "(a / b) * c with a=10 b=2 c=3", buildVariableArithmetic, Expect{
		Globals: map[string]vm.Value{
			"a": vm.Int(10), "b": vm.Int(2), "c": vm.Int(3), "result": vm.Int(15),
		},
	}},

	// --- Control flow ---
	{"comparison", "is_greater = 10 > 5", buildComparison, Expect{
		Globals: map[string]vm.Value{"x": vm.Int(10), "y": vm.Int(5), "is_greater": vm.True},
	}},
	{"if-else", "can_vote = age >= 18 ? 1 : 0 with age 20", buildIfElse, Expect{
		Globals: map[string]vm.Value{"age": vm.Int(20), "can_vote": vm.Int(1)},
	}},
	{"while-loop", "count up to 5", buildWhileLoop, Expect{
		Globals: map[string]vm.Value{"counter": vm.Int(5)},
	}},
	{"countdown", "count down from 10", buildCountdown, Expect{
		Globals: map[string]vm.Value{"n": vm.Int(0)},
	}},

	// --- Output ---
	{"hello-world", "print a greeting", buildHelloWorld, Expect{
		Output: "Hello, World!\n",
	}},
	{"print-variable", "store 42 and print it", buildPrintVariable, Expect{
		Output:  "42",
		Globals: map[string]vm.Value{"x": vm.Int(42)},
	}},
	{"factorial", "5! printed", buildFactorial, Expect{
		Output:  "5! = 120\n",
		Globals: map[string]vm.Value{"result": vm.Int(120), "n": vm.Int(0)},
	}},
	{"fibonacci", "first ten Fibonacci numbers", buildFibonacci, Expect{
		Output: "0 1 1 2 3 5 8 13 21 34 \n",
		Globals: map[string]vm.Value{
			"a": vm.Int(55), "b": vm.Int(89), "t": vm.Int(89), "i": vm.Int(10),
		},
	}},

	// --- Subroutines ---
	{"subroutine", "3^2 + 4^2 with a square routine using locals", buildSubroutine, Expect{
		Output:  "3^2 + 4^2 = 25\n",
		Globals: map[string]vm.Value{"result": vm.Int(25)},
	}},

	// --- Failures ---
	{"stack-underflow", "ADD on an empty stack", buildStackUnderflow, Expect{Err: vm.StackUnderflow}},
	{"division-by-zero", "10 / 0", buildDivisionByZero, Expect{Err: vm.DivisionByZero}},
	{"undefined-variable", "load a name never stored", buildUndefinedVariable, Expect{Err: vm.UndefinedVariable}},
	{"runaway-loop", "jump to itself forever", buildRunawayLoop, Expect{Err: vm.InfiniteLoopDetected}},
}

// All returns every program in catalog order.
func All() []Program {
	out := make([]Program, len(catalog))
	for i, e := range catalog {
		out[i] = e.program()
	}
	return out
}

// Get returns the program with the given name.
func Get(name string) (Program, bool) {
	for _, e := range catalog {
		if e.name == name {
			return e.program(), true
		}
	}
	return Program{}, false
}

// Names lists program names in catalog order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.name
	}
	return names
}

func (e entry) program() Program {
	b := bytecode.NewBuilder()
	e.build(b)
	return Program{
		Name:        e.name,
		Description: e.desc,
		Code:        b.MustBuild(),
		Expect:      e.expect,
	}
}

// ---------------------------------------------------------------------------
// Checking
// ---------------------------------------------------------------------------

// Run executes p on a fresh VM configured by opts. Program output is
// captured and returned; opts.Output is ignored.
func Run(p Program, opts vm.Options) (*vm.VM, string, error) {
	var out bytes.Buffer
	opts.Output = &out
	m := vm.New(opts)
	m.Load(p.Code)
	err := m.Run()
	return m, out.String(), err
}

// Check compares a finished run against p.Expect and describes the first
// mismatch.
func (p Program) Check(m *vm.VM, output string, runErr error) error {
	want := p.Expect
	if want.Err != 0 {
		e, ok := runErr.(*vm.Error)
		if !ok {
			return fmt.Errorf("%s: got %v, want %s", p.Name, runErr, want.Err)
		}
		if e.Kind != want.Err {
			return fmt.Errorf("%s: got %s, want %s", p.Name, e.Kind, want.Err)
		}
		return nil
	}
	if runErr != nil {
		return fmt.Errorf("%s: unexpected error: %w", p.Name, runErr)
	}

	if output != want.Output {
		return fmt.Errorf("%s: output %q, want %q", p.Name, output, want.Output)
	}

	stack := m.Stack()
	if len(stack) != len(want.Stack) {
		return fmt.Errorf("%s: stack %v, want %v", p.Name, stack, want.Stack)
	}
	for i := range stack {
		if stack[i] != want.Stack[i] {
			return fmt.Errorf("%s: stack %v, want %v", p.Name, stack, want.Stack)
		}
	}

	globals := m.Globals()
	if len(globals) != len(want.Globals) {
		return fmt.Errorf("%s: %d globals, want %d", p.Name, len(globals), len(want.Globals))
	}
	for name, v := range want.Globals {
		got, ok := globals[name]
		if !ok {
			return fmt.Errorf("%s: global %s missing", p.Name, name)
		}
		if got != v {
			return fmt.Errorf("%s: global %s = %v, want %v", p.Name, name, got, v)
		}
	}
	return nil
}

// Verify runs p and checks the outcome.
func (p Program) Verify(opts vm.Options) error {
	m, output, err := Run(p, opts)
	return p.Check(m, output, err)
}
