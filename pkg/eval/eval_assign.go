package eval

import (
	"strconv"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

func (fm *Frame) assign(e *ast.Assign) (any, error) {
	v, err := fm.eval(e.Value)
	if err != nil {
		return nil, err
	}
	if e.Op != ast.NoOp {
		old, err := fm.eval(e.Target)
		if err != nil {
			return nil, err
		}
		fm.ev.Feedback.Observe(e, old, v)
		v, err = vals.BinaryOp(e.Op, old, v)
		if err != nil {
			return nil, err
		}
	}
	if err := fm.assignPlace(e.Target, v); err != nil {
		return nil, err
	}
	return v, nil
}

// assignPlace stores v into a place: a variable, or an element or field of
// a place. Containers are persistent, so updating an element builds a new
// container and stores it into the enclosing place.
func (fm *Frame) assignPlace(target ast.Expr, v any) error {
	switch t := target.(type) {
	case *ast.Ident:
		if err := fm.env.Assign(t.Name, v); err != nil {
			if errs.Is(err, errs.UndefinedVariable) {
				return fm.annotate(fm.undefined(errs.UndefinedVariable, "undefined variable: ", t.Name), t)
			}
			return fm.annotate(err, t)
		}
		return nil
	case *ast.Index:
		container, err := fm.eval(t.Object)
		if err != nil {
			return err
		}
		idx, err := fm.eval(t.Index)
		if err != nil {
			return err
		}
		updated, err := vals.Assoc(container, idx, v)
		if err != nil {
			return fm.annotate(err, t)
		}
		return fm.assignPlace(t.Object, updated)
	case *ast.FieldAccess:
		container, err := fm.eval(t.Object)
		if err != nil {
			return err
		}
		updated, err := fm.withField(container, t.Field, v)
		if err != nil {
			return fm.annotate(err, t)
		}
		return fm.assignPlace(t.Object, updated)
	case *ast.Unary:
		if t.Op == ast.Deref {
			return fm.assignPlace(t.Operand, v)
		}
	}
	return fm.annotate(errs.Newf(errs.TypeError, "cannot assign to %s", ast.Format(target)), target)
}

func (fm *Frame) withField(container any, field string, v any) (any, error) {
	switch c := container.(type) {
	case vals.Object:
		if info, ok := fm.ev.types.structs[c.TypeName]; ok && !hasField(info, field) {
			return nil, errs.Newf(errs.TypeError, "struct %s has no field named %s", c.TypeName, field)
		}
		return c.With(field, v), nil
	case vals.Tuple:
		i, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, errs.Newf(errs.TypeError, "tuple field must be a number, got %s", field)
		}
		return vals.Assoc(c, i, v)
	}
	return nil, errs.Newf(errs.TypeError, "cannot assign to field %s of %s", field, vals.Kind(container))
}

func hasField(info *structInfo, name string) bool {
	for _, f := range info.fields {
		if f == name {
			return true
		}
	}
	return false
}

// isPlace reports whether an expression denotes a place that can be
// assigned to: a variable, or a field or element of a place.
func isPlace(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Ident:
		return true
	case *ast.FieldAccess:
		return isPlace(e.Object)
	case *ast.Index:
		return isPlace(e.Object)
	}
	return false
}
