package eval

import (
	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

func (fm *Frame) call(e *ast.Call) (any, error) {
	var fn any
	name := ""
	if id, ok := e.Callee.(*ast.Ident); ok {
		name = id.Name
		v, ok := fm.resolve(id.Name)
		if !ok {
			return nil, fm.annotate(fm.undefined(errs.UndefinedFunction, "undefined function: ", id.Name), id)
		}
		fn = v
	} else {
		var err error
		fn, err = fm.eval(e.Callee)
		if err != nil {
			return nil, err
		}
	}
	args, err := fm.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	if name != "" {
		fm.ev.Feedback.ObserveCall(e, name, args)
	} else {
		fm.ev.Feedback.Observe(e, args...)
	}
	return fm.callValue(fn, args)
}

// callValue calls a callable value.
func (fm *Frame) callValue(fn any, args []any) (any, error) {
	c, ok := fn.(Callable)
	if !ok {
		return nil, errs.Newf(errs.TypeError, "%s is not callable", vals.Kind(fn))
	}
	return c.Call(fm, args)
}

// Call calls a callable value from Go code, such as a builtin that takes a
// callback.
func (fm *Frame) Call(fn any, args ...any) (any, error) {
	return fm.callValue(fn, args)
}

// implTypeName returns the name under which methods of a value are
// registered by impl blocks.
func implTypeName(v any) string {
	switch v := v.(type) {
	case vals.Object:
		return v.TypeName
	case vals.Variant:
		return v.Enum
	}
	return ""
}

func (fm *Frame) methodCall(e *ast.MethodCall) (any, error) {
	recv, err := fm.eval(e.Receiver)
	if err != nil {
		return nil, err
	}
	args, err := fm.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	fm.ev.Feedback.Observe(e, append([]any{recv}, args...)...)

	if typeName := implTypeName(recv); typeName != "" {
		if m, ok := fm.ev.types.method(typeName, e.Method); ok {
			return fm.callImplMethod(e, m, recv, args)
		}
	}
	if obj, ok := recv.(vals.Object); ok {
		if f, ok := obj.Field(e.Method); ok {
			if _, ok := f.(Callable); ok {
				return fm.callValue(f, args)
			}
		}
	}
	if mut, ok := lookupMutator(recv, e.Method); ok {
		ret, updated, err := mut(fm, recv, args)
		if err != nil {
			return nil, err
		}
		if !isPlace(e.Receiver) {
			return updated, nil
		}
		if err := fm.assignPlace(e.Receiver, updated); err != nil {
			return nil, err
		}
		return ret, nil
	}
	if m, ok := lookupMethod(recv, e.Method); ok {
		return m(fm, recv, args)
	}
	return nil, errs.Newf(errs.RuntimeError, "unknown method %s for %s", e.Method, vals.Kind(recv))
}

// callImplMethod calls a method defined in an impl block. When the method
// changes self and the receiver is a place, the new self is stored back.
func (fm *Frame) callImplMethod(e *ast.MethodCall, m *Closure, recv any, args []any) (any, error) {
	if len(m.Params) == 0 || m.Params[0].Name != "self" {
		return m.Call(fm, args)
	}
	v, env, err := m.invoke(fm, append([]any{recv}, args...))
	if err != nil {
		return nil, err
	}
	if self, ok := env.Lookup("self"); ok && !sameValue(self, recv) && isPlace(e.Receiver) {
		if err := fm.assignPlace(e.Receiver, self); err != nil {
			return nil, err
		}
	}
	return v, nil
}
