package vm

import (
	"errors"
	"testing"
)

func TestCallStackBaseFrame(t *testing.T) {
	cs := NewCallStack()
	if cs.Depth() != 1 {
		t.Fatalf("Depth = %d, want 1", cs.Depth())
	}
	if _, ok := cs.Pop(); ok {
		t.Error("Pop should refuse to remove the base frame")
	}
	if cs.Depth() != 1 {
		t.Errorf("Depth after refused Pop = %d, want 1", cs.Depth())
	}
	if cs.Top().ReturnAddr != 0 {
		t.Errorf("base ReturnAddr = %d, want 0", cs.Top().ReturnAddr)
	}
}

func TestCallStackPushPop(t *testing.T) {
	cs := NewCallStack()
	cs.Push(10)
	cs.Push(20)
	if cs.Depth() != 3 {
		t.Fatalf("Depth = %d, want 3", cs.Depth())
	}

	f, ok := cs.Pop()
	if !ok || f.ReturnAddr != 20 {
		t.Errorf("Pop = %+v, %v; want ReturnAddr 20", f, ok)
	}
	if cs.Top().ReturnAddr != 10 {
		t.Errorf("Top ReturnAddr = %d, want 10", cs.Top().ReturnAddr)
	}
}

func TestCallStackLocalsArePrivate(t *testing.T) {
	cs := NewCallStack()
	cs.Top().StoreLocal("x", Int(1))
	cs.Push(5)

	if _, err := cs.Top().LoadLocal("x"); !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("callee sees caller local: err = %v", err)
	}
	cs.Top().StoreLocal("x", Int(2))
	cs.Pop()

	v, err := cs.Top().LoadLocal("x")
	if err != nil || v != Int(1) {
		t.Errorf("caller local = %v, %v; want 1", v, err)
	}
}

func TestCallStackFramesInnermostFirst(t *testing.T) {
	cs := NewCallStack()
	cs.Push(9)
	cs.Push(31)

	frames := cs.Frames()
	want := []FrameInfo{{2, 31}, {1, 9}, {0, 0}}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d", len(frames), len(want))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frames[%d] = %+v, want %+v", i, frames[i], want[i])
		}
	}
}

func TestCallStackReset(t *testing.T) {
	cs := NewCallStack()
	cs.Top().StoreLocal("x", Int(1))
	cs.Push(3)
	cs.Reset()

	if cs.Depth() != 1 {
		t.Errorf("Depth after Reset = %d", cs.Depth())
	}
	if cs.Top().NumLocals() != 0 {
		t.Error("Reset should install a fresh base frame")
	}
}
