// Package scope implements lexical environments.
//
// An Env is a stack of frames. Each frame holds a persistent map from names to
// bindings, so taking a snapshot only copies one map header per frame, and
// restoring a snapshot undoes every bind and assignment made since, including
// those made through closures that share the frames.
package scope

import (
	"sort"

	"github.com/xiaq/persistent/hashmap"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// Binding is a named slot.
type Binding struct {
	Value   any
	Mutable bool
	Const   bool
}

// Frame is one level of the scope stack.
type Frame struct {
	vars hashmap.Map
}

func newFrame() *Frame {
	return &Frame{hashmap.New(vals.Equal, vals.Hash)}
}

// Len returns the number of names bound in the frame.
func (f *Frame) Len() int { return f.vars.Len() }

func (f *Frame) get(name string) (Binding, bool) {
	v, ok := f.vars.Index(name)
	if !ok {
		return Binding{}, false
	}
	return v.(Binding), true
}

// Env is an environment. The zero value is not usable; use New.
type Env struct {
	frames []*Frame
}

// New returns an environment with a single, global frame.
func New() *Env {
	return &Env{[]*Frame{newFrame()}}
}

// Depth returns the number of frames.
func (e *Env) Depth() int { return len(e.frames) }

// Push pushes a new, empty frame.
func (e *Env) Push() {
	e.frames = append(e.frames, newFrame())
}

// Pop pops the innermost frame. The global frame is never popped.
func (e *Env) Pop() {
	if len(e.frames) > 1 {
		e.frames[len(e.frames)-1] = nil
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// Capture returns an environment sharing all frames with e. Bindings made
// later in a shared frame are visible through both environments; frames
// pushed onto either are private to it.
func (e *Env) Capture() *Env {
	return &Env{append([]*Frame(nil), e.frames...)}
}

// Bind binds a name in the innermost frame, shadowing any outer binding with
// the same name.
func (e *Env) Bind(name string, v any, mutable bool) {
	e.BindBinding(name, Binding{Value: v, Mutable: mutable})
}

// BindConst binds a constant in the innermost frame.
func (e *Env) BindConst(name string, v any) {
	e.BindBinding(name, Binding{Value: v, Const: true})
}

// BindBinding binds a name to a binding in the innermost frame.
func (e *Env) BindBinding(name string, b Binding) {
	f := e.frames[len(e.frames)-1]
	f.vars = f.vars.Assoc(name, b)
}

// Lookup finds the value of a name, searching from the innermost frame
// outward.
func (e *Env) Lookup(name string) (any, bool) {
	b, ok := e.LookupBinding(name)
	return b.Value, ok
}

// LookupBinding is like Lookup, but returns the whole binding.
func (e *Env) LookupBinding(name string) (Binding, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if b, ok := e.frames[i].get(name); ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Assign changes the value of an existing binding. It fails with
// UndefinedVariable if the name is not bound, ConstReassignment if it is a
// constant and ImmutableBinding if it is not mutable.
func (e *Env) Assign(name string, v any) error {
	for i := len(e.frames) - 1; i >= 0; i-- {
		f := e.frames[i]
		b, ok := f.get(name)
		if !ok {
			continue
		}
		switch {
		case b.Const:
			return errs.Newf(errs.ConstReassignment, "cannot reassign constant %s", name)
		case !b.Mutable:
			return errs.Newf(errs.ImmutableBinding, "cannot assign twice to immutable variable %s", name)
		}
		b.Value = v
		f.vars = f.vars.Assoc(name, b)
		return nil
	}
	return errs.Newf(errs.UndefinedVariable, "undefined variable: %s", name)
}

// Names returns all visible names in sorted order.
func (e *Env) Names() []string {
	seen := map[string]bool{}
	for _, f := range e.frames {
		for it := f.vars.Iterator(); it.HasElem(); it.Next() {
			k, _ := it.Elem()
			seen[k.(string)] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Visible returns the visible bindings, keyed by name.
func (e *Env) Visible() map[string]Binding {
	m := map[string]Binding{}
	for _, f := range e.frames {
		for it := f.vars.Iterator(); it.HasElem(); it.Next() {
			k, v := it.Elem()
			m[k.(string)] = v.(Binding)
		}
	}
	return m
}

// Globals returns the bindings of the outermost frame.
func (e *Env) Globals() map[string]Binding {
	m := map[string]Binding{}
	for it := e.frames[0].vars.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		m[k.(string)] = v.(Binding)
	}
	return m
}

// EachValue calls f on every bound value in every frame, including shadowed
// ones.
func (e *Env) EachValue(f func(any)) {
	for _, fr := range e.frames {
		for it := fr.vars.Iterator(); it.HasElem(); it.Next() {
			_, v := it.Elem()
			f(v.(Binding).Value)
		}
	}
}

// Snapshot records the state of an environment.
type Snapshot struct {
	frames []*Frame
	vars   []hashmap.Map
}

// Snapshot takes a snapshot of the current frames and their contents.
func (e *Env) Snapshot() Snapshot {
	s := Snapshot{make([]*Frame, len(e.frames)), make([]hashmap.Map, len(e.frames))}
	for i, f := range e.frames {
		s.frames[i] = f
		s.vars[i] = f.vars
	}
	return s
}

// Restore restores an environment to a snapshot: the frame stack is reset
// and every frame gets back the bindings it had when the snapshot was taken.
func (e *Env) Restore(s Snapshot) {
	e.frames = append(e.frames[:0:0], s.frames...)
	for i, f := range s.frames {
		f.vars = s.vars[i]
	}
}

// Reset removes all bindings, leaving a single empty global frame.
func (e *Env) Reset() {
	e.frames = []*Frame{newFrame()}
}
