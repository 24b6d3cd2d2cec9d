package vm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/stackvm/pkg/bytecode"
)

// DefaultMaxSteps is the step ceiling used when Options.MaxSteps is not set.
const DefaultMaxSteps = 10000

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// State is the lifecycle position of a VM.
type State uint8

const (
	StateIdle    State = iota // no program loaded
	StateReady                // loaded, not yet run
	StateRunning              // inside Run
	StateHalted               // stopped cleanly
	StateFaulted              // stopped on an error
)

var stateNames = [...]string{"idle", "ready", "running", "halted", "faulted"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// ---------------------------------------------------------------------------
// VM
// ---------------------------------------------------------------------------

// Options configures a VM. The zero value writes to stdout, uses
// DefaultMaxSteps and the "stackvm.vm" logger.
type Options struct {
	Output   io.Writer        // destination of PRINT, PRINT_VAL and PRINTLN
	MaxSteps int              // step ceiling; <= 0 means DefaultMaxSteps
	Trace    bool             // log every executed instruction at debug level
	Logger   commonlog.Logger // nil means commonlog.GetLogger("stackvm.vm")
}

// VM executes one program at a time. It is not safe for concurrent use;
// separate VMs share nothing.
type VM struct {
	id string

	program []byte
	ip      int
	stack   []Value
	globals *Globals
	calls   *CallStack

	steps    int
	maxSteps int
	state    State
	err      *Error

	out   io.Writer
	trace bool
	log   commonlog.Logger
}

// New creates an idle VM.
func New(opts Options) *VM {
	v := &VM{
		id:       uuid.New().String(),
		stack:    make([]Value, 0, 64),
		globals:  NewGlobals(),
		calls:    NewCallStack(),
		maxSteps: opts.MaxSteps,
		out:      opts.Output,
		trace:    opts.Trace,
		log:      opts.Logger,
	}
	if v.maxSteps <= 0 {
		v.maxSteps = DefaultMaxSteps
	}
	if v.out == nil {
		v.out = os.Stdout
	}
	if v.log == nil {
		v.log = commonlog.GetLogger("stackvm.vm")
	}
	return v
}

// ID returns the instance id used to tag this VM's log messages.
func (v *VM) ID() string { return v.id }

// MaxSteps returns the step ceiling.
func (v *VM) MaxSteps() int { return v.maxSteps }

// Load installs program and resets all execution state: operand stack,
// call stack, globals, ip and step counter. The slice is not copied and
// must not be modified while the VM holds it.
func (v *VM) Load(program []byte) {
	v.program = program
	v.ip = 0
	clear(v.stack)
	v.stack = v.stack[:0]
	v.globals.Reset()
	v.calls.Reset()
	v.steps = 0
	v.err = nil
	v.state = StateReady
	v.log.Debugf("vm %s: loaded %d bytes", v.id, len(program))
}

// Run executes the loaded program until HALT, a RETURN from the base frame,
// the end of the program, or the first error. An error is always a *Error
// carrying a Trace.
//
// Running an idle VM behaves like running an empty program. Running a VM
// that already stopped returns its previous outcome without executing.
func (v *VM) Run() error {
	switch v.state {
	case StateIdle:
		v.Load(nil)
	case StateHalted:
		return nil
	case StateFaulted:
		return v.err
	}

	v.state = StateRunning
	for v.state == StateRunning {
		if v.ip == len(v.program) {
			v.halt()
			break
		}
		start := v.ip
		if v.steps >= v.maxSteps {
			return v.fault(start, &Error{Kind: InfiniteLoopDetected, Limit: v.maxSteps})
		}
		v.steps++
		if err := v.step(); err != nil {
			return v.fault(start, err)
		}
	}
	return nil
}

func (v *VM) halt() {
	v.state = StateHalted
	v.log.Infof("vm %s: halted at %04d after %d steps", v.id, v.ip, v.steps)
}

func (v *VM) fault(start int, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: InvalidOperand, Detail: err.Error()}
	}
	e.IP = start
	e.Trace = &Trace{Offset: start, IP: v.ip, Frames: v.calls.Frames()}
	v.err = e
	v.state = StateFaulted
	v.log.Errorf("vm %s: %s\n%s", v.id, e, strings.TrimSuffix(e.Trace.String(), "\n"))
	return e
}

// ---------------------------------------------------------------------------
// Fetch
// ---------------------------------------------------------------------------

func (v *VM) readByte() (byte, error) {
	if v.ip >= len(v.program) {
		return 0, &Error{Kind: OutOfBounds}
	}
	b := v.program[v.ip]
	v.ip++
	return b, nil
}

func (v *VM) readUint64() (uint64, error) {
	if v.ip+bytecode.AddressWidth > len(v.program) {
		return 0, &Error{Kind: OutOfBounds}
	}
	n := binary.LittleEndian.Uint64(v.program[v.ip:])
	v.ip += bytecode.AddressWidth
	return n, nil
}

func (v *VM) readIdent() (string, error) {
	n, err := v.readByte()
	if err != nil {
		return "", err
	}
	end := v.ip + int(n)
	if end > len(v.program) {
		return "", &Error{Kind: OutOfBounds}
	}
	raw := v.program[v.ip:end]
	if !utf8.Valid(raw) {
		return "", &Error{Kind: InvalidString}
	}
	v.ip = end
	return string(raw), nil
}

func (v *VM) jump(target uint64) error {
	if target >= uint64(len(v.program)) {
		return &Error{Kind: OutOfBounds}
	}
	v.ip = int(target)
	return nil
}

// ---------------------------------------------------------------------------
// Operand stack
// ---------------------------------------------------------------------------

func (v *VM) push(x Value) {
	v.stack = append(v.stack, x)
}

func (v *VM) pop() (Value, error) {
	n := len(v.stack)
	if n == 0 {
		return Value{}, &Error{Kind: StackUnderflow}
	}
	x := v.stack[n-1]
	v.stack = v.stack[:n-1]
	return x, nil
}

// binary pops the right operand, then the left, and pushes fn(left, right).
func (v *VM) binary(fn func(Value, Value) (Value, error)) error {
	right, err := v.pop()
	if err != nil {
		return err
	}
	left, err := v.pop()
	if err != nil {
		return err
	}
	res, err := fn(left, right)
	if err != nil {
		return err
	}
	v.push(res)
	return nil
}

// ---------------------------------------------------------------------------
// Execute
// ---------------------------------------------------------------------------

func (v *VM) step() error {
	start := v.ip
	b, err := v.readByte()
	if err != nil {
		return err
	}
	op, ok := bytecode.Lookup(b)
	if !ok {
		return errInvalidOpcode(b)
	}
	if v.trace {
		v.log.Debugf("vm %s: %04d %s stack=%d depth=%d", v.id, start, op, len(v.stack), v.calls.Depth())
	}

	switch op {
	// --- Stack and arithmetic ---
	case bytecode.OpPush:
		n, err := v.readUint64()
		if err != nil {
			return err
		}
		v.push(Int(int64(n)))

	case bytecode.OpAdd:
		return v.binary(Value.Add)
	case bytecode.OpSub:
		return v.binary(Value.Sub)
	case bytecode.OpMul:
		return v.binary(Value.Mul)
	case bytecode.OpDiv:
		return v.binary(Value.Div)

	// --- Comparison ---
	case bytecode.OpGt:
		return v.binary(Value.Gt)
	case bytecode.OpLt:
		return v.binary(Value.Lt)
	case bytecode.OpGte:
		return v.binary(Value.Gte)
	case bytecode.OpLte:
		return v.binary(Value.Lte)
	case bytecode.OpEq:
		return v.binary(Value.Eq)
	case bytecode.OpNeq:
		return v.binary(Value.Neq)

	// --- Variables ---
	case bytecode.OpStoreVar:
		name, err := v.readIdent()
		if err != nil {
			return err
		}
		x, err := v.pop()
		if err != nil {
			return err
		}
		v.globals.Store(name, x)

	case bytecode.OpLoadVar:
		name, err := v.readIdent()
		if err != nil {
			return err
		}
		x, err := v.globals.Load(name)
		if err != nil {
			return err
		}
		v.push(x)

	case bytecode.OpStoreLocal:
		name, err := v.readIdent()
		if err != nil {
			return err
		}
		x, err := v.pop()
		if err != nil {
			return err
		}
		v.calls.Top().StoreLocal(name, x)

	case bytecode.OpLoadLocal:
		name, err := v.readIdent()
		if err != nil {
			return err
		}
		x, err := v.calls.Top().LoadLocal(name)
		if err != nil {
			return err
		}
		v.push(x)

	// --- Control flow ---
	case bytecode.OpJump:
		target, err := v.readUint64()
		if err != nil {
			return err
		}
		return v.jump(target)

	case bytecode.OpJumpIfFalse:
		target, err := v.readUint64()
		if err != nil {
			return err
		}
		cond, err := v.pop()
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			return v.jump(target)
		}

	case bytecode.OpCall:
		target, err := v.readUint64()
		if err != nil {
			return err
		}
		if target >= uint64(len(v.program)) {
			return &Error{Kind: OutOfBounds}
		}
		v.calls.Push(v.ip)
		v.ip = int(target)

	case bytecode.OpReturn:
		frame, ok := v.calls.Pop()
		if !ok {
			// Returning from the base frame ends the program.
			v.halt()
			return nil
		}
		v.ip = frame.ReturnAddr

	case bytecode.OpHalt:
		v.halt()

	// --- Output ---
	case bytecode.OpPrint:
		text, err := v.readIdent()
		if err != nil {
			return err
		}
		io.WriteString(v.out, text)

	case bytecode.OpPrintVal:
		x, err := v.pop()
		if err != nil {
			return err
		}
		io.WriteString(v.out, x.String())

	case bytecode.OpPrintLn:
		io.WriteString(v.out, "\n")

	default:
		return errInvalidOpcode(b)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// Stack returns a copy of the operand stack, bottom first.
func (v *VM) Stack() []Value {
	out := make([]Value, len(v.stack))
	copy(out, v.stack)
	return out
}

// Peek returns the top of the operand stack.
func (v *VM) Peek() (Value, bool) {
	if len(v.stack) == 0 {
		return Value{}, false
	}
	return v.stack[len(v.stack)-1], true
}

// Global returns the value bound to a global name.
func (v *VM) Global(name string) (Value, bool) {
	return v.globals.Lookup(name)
}

// Globals returns a copy of every global binding.
func (v *VM) Globals() map[string]Value {
	return v.globals.Copy()
}

// Depth returns the call stack depth, counting the base frame.
func (v *VM) Depth() int { return v.calls.Depth() }

// IP returns the offset of the next fetch.
func (v *VM) IP() int { return v.ip }

// Steps returns the number of instructions executed since Load.
func (v *VM) Steps() int { return v.steps }

// State returns the lifecycle state.
func (v *VM) State() State { return v.state }

// Err returns the error that faulted the VM, or nil.
func (v *VM) Err() error {
	if v.err == nil {
		return nil
	}
	return v.err
}

// Snapshot is a point-in-time copy of the observable VM state.
type Snapshot struct {
	State   State
	IP      int
	Steps   int
	Depth   int
	Stack   []Value
	Globals map[string]Value
	Names   []string // sorted keys of Globals
}

// Snapshot captures the current state.
func (v *VM) Snapshot() Snapshot {
	return Snapshot{
		State:   v.state,
		IP:      v.ip,
		Steps:   v.steps,
		Depth:   v.calls.Depth(),
		Stack:   v.Stack(),
		Globals: v.globals.Copy(),
		Names:   v.globals.Names(),
	}
}

// StackString renders the operand stack bottom first, e.g. "[1, true]".
func (s Snapshot) StackString() string {
	parts := make([]string, len(s.Stack))
	for i, x := range s.Stack {
		parts[i] = x.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// GlobalsString renders one "name = value" line per global in name order.
func (s Snapshot) GlobalsString() string {
	var sb strings.Builder
	for _, name := range s.Names {
		sb.WriteString(fmt.Sprintf("%s = %s\n", name, s.Globals[name]))
	}
	return sb.String()
}
