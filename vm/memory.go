package vm

import "sort"

// Globals is the VM-wide variable store used by STORE_VAR and LOAD_VAR.
type Globals struct {
	vars map[string]Value
}

// NewGlobals returns an empty store.
func NewGlobals() *Globals {
	return &Globals{vars: make(map[string]Value)}
}

// Store binds name to v, replacing any previous binding.
func (g *Globals) Store(name string, v Value) {
	g.vars[name] = v
}

// Load returns the value bound to name, or an UndefinedVariable error.
func (g *Globals) Load(name string) (Value, error) {
	v, ok := g.vars[name]
	if !ok {
		return Value{}, errUndefined(name)
	}
	return v, nil
}

// Lookup is Load without the error.
func (g *Globals) Lookup(name string) (Value, bool) {
	v, ok := g.vars[name]
	return v, ok
}

// Reset removes every binding.
func (g *Globals) Reset() {
	clear(g.vars)
}

// Len returns the number of bindings.
func (g *Globals) Len() int {
	return len(g.vars)
}

// Names returns the bound names in sorted order.
func (g *Globals) Names() []string {
	names := make([]string, 0, len(g.vars))
	for name := range g.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Copy returns a snapshot of every binding.
func (g *Globals) Copy() map[string]Value {
	out := make(map[string]Value, len(g.vars))
	for k, v := range g.vars {
		out[k] = v
	}
	return out
}
