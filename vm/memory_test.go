package vm

import (
	"errors"
	"reflect"
	"testing"
)

func TestGlobalsStoreLoad(t *testing.T) {
	g := NewGlobals()
	g.Store("x", Int(1))
	g.Store("x", Int(2))

	v, err := g.Load("x")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v != Int(2) {
		t.Errorf("x = %v, want 2 (overwrite)", v)
	}
	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1", g.Len())
	}
}

func TestGlobalsUndefined(t *testing.T) {
	g := NewGlobals()
	_, err := g.Load("missing")

	var e *Error
	if !errors.As(err, &e) || e.Kind != UndefinedVariable {
		t.Fatalf("error = %v, want UndefinedVariable", err)
	}
	if e.Name != "missing" {
		t.Errorf("Name = %q, want %q", e.Name, "missing")
	}
}

func TestGlobalsResetAndNames(t *testing.T) {
	g := NewGlobals()
	g.Store("b", True)
	g.Store("a", Int(1))
	g.Store("c", Int(3))

	if got, want := g.Names(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}

	snap := g.Copy()
	g.Reset()
	if g.Len() != 0 {
		t.Errorf("Len after Reset = %d", g.Len())
	}
	if len(snap) != 3 {
		t.Errorf("Copy should survive Reset, has %d entries", len(snap))
	}
}
