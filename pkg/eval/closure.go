package eval

import (
	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/scope"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/parse"
)

// Callable is implemented by values that can be called.
type Callable interface {
	Call(fm *Frame, args []any) (any, error)
}

// Closure is a function defined in code: a named function, a lambda or a
// method. It closes over the environment it was defined in; names bound
// later in the same scopes are visible to it.
type Closure struct {
	// Name is empty for lambdas.
	Name       string
	Params     []*ast.Param
	Body       ast.Expr
	Env        *scope.Env
	Src        parse.Source
	Async      bool
	ReturnType *ast.Type
}

var _ Callable = (*Closure)(nil)

func (fm *Frame) newClosure(f *ast.Function) *Closure {
	return &Closure{Name: f.Name, Params: f.Params, Body: f.Body,
		Env: fm.env.Capture(), Src: fm.src, Async: f.Async, ReturnType: f.ReturnType}
}

func (fm *Frame) newLambda(l *ast.Lambda) *Closure {
	return &Closure{Params: l.Params, Body: l.Body, Env: fm.env.Capture(), Src: fm.src}
}

// Kind returns "function".
func (*Closure) Kind() string { return "function" }

// TypeName returns "Function".
func (*Closure) TypeName() string { return "Function" }

// Repr returns "<function name>", or "<function>" for a lambda.
func (c *Closure) Repr() string {
	if c.Name == "" {
		return "<function>"
	}
	return "<function " + c.Name + ">"
}

// Equal is false for all closures but the same one.
func (c *Closure) Equal(other any) bool { return c == other }

// Size returns an estimate of the memory the closure itself holds.
func (c *Closure) Size() int { return 64 + 16*len(c.Params) }

// Trace visits the values captured by the closure.
func (c *Closure) Trace(visit func(any)) { c.Env.EachValue(visit) }

func (c *Closure) displayName() string {
	if c.Name == "" {
		return "closure"
	}
	return c.Name
}

// Call calls the closure.
func (c *Closure) Call(fm *Frame, args []any) (any, error) {
	v, _, err := c.invoke(fm, args)
	return v, err
}

// invoke calls the closure and also returns the environment of the call, so
// that callers can read back parameters the body assigned to.
func (c *Closure) invoke(fm *Frame, args []any) (any, *scope.Env, error) {
	if len(args) != len(c.Params) {
		return nil, nil, errs.ArityMismatch{What: "arguments of " + c.displayName(),
			ValidLow: len(c.Params), ValidHigh: len(c.Params), Actual: len(args)}
	}
	ev := fm.ev
	depth := fm.depth + 1
	if depth > ev.maxDepthLimit() {
		return nil, nil, errs.Newf(errs.StackOverflow,
			"maximum recursion depth %d exceeded in %s", ev.maxDepthLimit(), c.displayName())
	}
	if depth > ev.maxDepth {
		ev.maxDepth = depth
	}
	if err := ev.checkLimits(); err != nil {
		return nil, nil, err
	}
	ev.stats.Calls++

	env := c.Env.Capture()
	env.Push()
	for i, p := range c.Params {
		env.Bind(p.Name, args[i], p.Mutable || p.Name == "self")
	}
	callee := &Frame{ev: ev, env: env, src: c.Src, depth: depth, fn: c}
	v, err := callee.eval(c.Body)
	if err != nil {
		if f, ok := err.(*Flow); ok && f.Kind == Return {
			return f.Value, env, nil
		}
		return nil, nil, callee.escape(err)
	}
	return v, env, nil
}

// sameValue reports whether a value is unchanged. Objects are compared by
// identity of their field maps, so that objects holding closures compare
// equal to themselves.
func sameValue(a, b any) bool {
	oa, ok1 := a.(vals.Object)
	ob, ok2 := b.(vals.Object)
	if ok1 && ok2 {
		return oa.TypeName == ob.TypeName && oa.Fields == ob.Fields
	}
	return vals.Equal(a, b)
}
