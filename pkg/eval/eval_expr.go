package eval

import (
	"math"
	"strconv"
	"strings"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

func (fm *Frame) binary(e *ast.Binary) (any, error) {
	l, err := fm.eval(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.IsLogical() {
		lt := vals.Truthy(l)
		if e.Op == ast.And && !lt {
			return false, nil
		}
		if e.Op == ast.Or && lt {
			return true, nil
		}
		r, err := fm.eval(e.Right)
		if err != nil {
			return nil, err
		}
		return vals.Truthy(r), nil
	}
	r, err := fm.eval(e.Right)
	if err != nil {
		return nil, err
	}
	fm.ev.Feedback.Observe(e, l, r)
	v, err := vals.BinaryOp(e.Op, l, r)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case string:
		err = fm.ev.alloc(len(v))
	case vals.Array:
		err = fm.ev.alloc(16 * v.Len())
	}
	return v, err
}

func (fm *Frame) rangeExpr(e *ast.Range) (any, error) {
	bound := func(b ast.Expr, dflt int64) (int64, error) {
		if b == nil {
			return dflt, nil
		}
		v, err := fm.eval(b)
		if err != nil {
			return 0, err
		}
		i, ok := v.(int64)
		if !ok {
			return 0, fm.annotate(errs.Newf(errs.TypeError,
				"range bounds must be integers, got %s", vals.Kind(v)), b)
		}
		return i, nil
	}
	start, err := bound(e.Start, 0)
	if err != nil {
		return nil, err
	}
	end, err := bound(e.End, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	return vals.Range{Start: start, End: end, Inclusive: e.Inclusive && e.End != nil}, nil
}

func (fm *Frame) object(e *ast.Object) (any, error) {
	obj := vals.Object{Fields: vals.EmptyFields}
	for _, f := range e.Fields {
		v, err := fm.eval(f.Value)
		if err != nil {
			return nil, err
		}
		obj = obj.With(f.Key, v)
	}
	return obj, fm.ev.alloc(16 * (obj.Len() + 1))
}

func (fm *Frame) interpolate(e *ast.StringInterp) (any, error) {
	var sb strings.Builder
	for _, part := range e.Parts {
		if part.Expr == nil {
			sb.WriteString(part.Text)
			continue
		}
		v, err := fm.eval(part.Expr)
		if err != nil {
			return nil, err
		}
		s, err := formatValue(v, part.Spec)
		if err != nil {
			return nil, fm.annotate(err, part.Expr)
		}
		sb.WriteString(s)
	}
	return sb.String(), fm.ev.alloc(sb.Len())
}

func (fm *Frame) try(e *ast.Try) (any, error) {
	v, err := fm.eval(e.Expr)
	if err != nil {
		return nil, err
	}
	variant, ok := v.(vals.Variant)
	if ok && (variant.Enum == vals.OptionEnum || variant.Enum == vals.ResultEnum) {
		switch variant.Name {
		case "Some", "Ok":
			if len(variant.Data) == 1 {
				return variant.Data[0], nil
			}
		case "None", "Err":
			return nil, &Flow{Kind: Return, Value: variant, node: e}
		}
	}
	return nil, errs.Newf(errs.TypeError, "the ? operator needs an Option or a Result, got %s", vals.Repr(v))
}

func (fm *Frame) cast(e *ast.Cast) (any, error) {
	v, err := fm.eval(e.Expr)
	if err != nil {
		return nil, err
	}
	name := e.Type.String()
	switch name {
	case "i8", "i16", "i32", "i64", "i128", "isize", "u8", "u16", "u32", "u64", "u128", "usize":
		return vals.ToInt(v)
	case "f32", "f64":
		return vals.ToFloat(v)
	case "char":
		switch v := v.(type) {
		case vals.Char:
			return v, nil
		case int64:
			if v < 0 || v > math.MaxInt32 {
				return nil, errs.Newf(errs.TypeError, "%d is not a valid character", v)
			}
			return vals.Char(rune(v)), nil
		}
	case "bool":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case "String", "&str", "str":
		return vals.ToString(v), nil
	}
	return nil, errs.Newf(errs.TypeError, "cannot cast %s as %s", vals.Kind(v), name)
}

func (fm *Frame) fieldAccess(e *ast.FieldAccess) (any, error) {
	v, err := fm.eval(e.Object)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case vals.Object:
		if f, ok := v.Field(e.Field); ok {
			return f, nil
		}
		if v.TypeName != "" {
			return nil, errs.Newf(errs.RuntimeError, "no field %s on struct %s", e.Field, v.TypeName)
		}
		return nil, errs.Newf(errs.RuntimeError, "no field %s on object", e.Field)
	case vals.Tuple:
		i, err := strconv.ParseInt(e.Field, 10, 64)
		if err != nil {
			return nil, errs.Newf(errs.TypeError, "tuple field must be a number, got %s", e.Field)
		}
		return vals.Index(v, i)
	case vals.Variant:
		if i, err := strconv.Atoi(e.Field); err == nil && i < len(v.Data) {
			return v.Data[i], nil
		}
	}
	return nil, errs.Newf(errs.TypeError, "cannot access field %s of %s", e.Field, vals.Kind(v))
}

func (fm *Frame) index(e *ast.Index) (any, error) {
	v, err := fm.eval(e.Object)
	if err != nil {
		return nil, err
	}
	idx, err := fm.eval(e.Index)
	if err != nil {
		return nil, err
	}
	fm.ev.Feedback.Observe(e, v, idx)
	if r, ok := idx.(vals.Range); ok {
		return slice(v, r)
	}
	return vals.Index(v, idx)
}

// slice returns the part of an array or string selected by a range. An open
// range extends to the end.
func slice(v any, r vals.Range) (any, error) {
	n, err := vals.Len(v)
	if err != nil {
		return nil, err
	}
	from, to := r.Start, r.End
	if r.Inclusive {
		to++
	}
	if to == math.MaxInt64 {
		to = int64(n)
	}
	if from < 0 || from > to || to > int64(n) {
		return nil, errs.OutOfRange{What: "slice range", ValidLow: "0",
			ValidHigh: strconv.Itoa(n), Actual: vals.Repr(r)}
	}
	switch v := v.(type) {
	case vals.Array:
		return v.SubVector(int(from), int(to)), nil
	case string:
		return string([]rune(v)[from:to]), nil
	case vals.Tuple:
		return append(vals.Tuple(nil), v[from:to]...), nil
	}
	return nil, errs.Newf(errs.TypeError, "cannot slice %s", vals.Kind(v))
}
