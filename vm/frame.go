package vm

// ---------------------------------------------------------------------------
// CallFrame: state of one subroutine activation
// ---------------------------------------------------------------------------

// CallFrame holds the return address and locals of one activation.
type CallFrame struct {
	ReturnAddr int              // offset to resume at after RETURN
	locals     map[string]Value // created on first STORE_LOCAL
}

// StoreLocal binds name in this frame.
func (f *CallFrame) StoreLocal(name string, v Value) {
	if f.locals == nil {
		f.locals = make(map[string]Value)
	}
	f.locals[name] = v
}

// LoadLocal returns the local bound to name, or an UndefinedVariable error.
func (f *CallFrame) LoadLocal(name string) (Value, error) {
	v, ok := f.locals[name]
	if !ok {
		return Value{}, errUndefined(name)
	}
	return v, nil
}

// NumLocals returns the number of locals bound in this frame.
func (f *CallFrame) NumLocals() int {
	return len(f.locals)
}

// ---------------------------------------------------------------------------
// CallStack
// ---------------------------------------------------------------------------

// CallStack is a stack of frames that always holds the base frame.
type CallStack struct {
	frames []*CallFrame
}

// NewCallStack returns a stack holding only the base frame.
func NewCallStack() *CallStack {
	cs := &CallStack{frames: make([]*CallFrame, 0, 16)}
	cs.Reset()
	return cs
}

// Push enters a new frame that will resume at returnAddr.
func (cs *CallStack) Push(returnAddr int) {
	cs.frames = append(cs.frames, &CallFrame{ReturnAddr: returnAddr})
}

// Pop removes the top frame and returns it. It returns nil, false when only
// the base frame is left.
func (cs *CallStack) Pop() (*CallFrame, bool) {
	if len(cs.frames) <= 1 {
		return nil, false
	}
	top := cs.frames[len(cs.frames)-1]
	cs.frames[len(cs.frames)-1] = nil
	cs.frames = cs.frames[:len(cs.frames)-1]
	return top, true
}

// Top returns the current frame.
func (cs *CallStack) Top() *CallFrame {
	return cs.frames[len(cs.frames)-1]
}

// Depth counts frames, including the base frame.
func (cs *CallStack) Depth() int {
	return len(cs.frames)
}

// Reset drops every frame and installs a fresh base frame.
func (cs *CallStack) Reset() {
	clear(cs.frames)
	cs.frames = append(cs.frames[:0], &CallFrame{})
}

// Frames describes the frames innermost first.
func (cs *CallStack) Frames() []FrameInfo {
	out := make([]FrameInfo, 0, len(cs.frames))
	for i := len(cs.frames) - 1; i >= 0; i-- {
		out = append(out, FrameInfo{Index: i, ReturnAddr: cs.frames[i].ReturnAddr})
	}
	return out
}
