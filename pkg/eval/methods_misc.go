package eval

import (
	"math"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

func objectMethod(name string, lo, hi int, f func(o vals.Object, args []any) (any, error)) methodFn {
	return func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity(name, args, lo, hi); err != nil {
			return nil, err
		}
		return f(recv.(vals.Object), args)
	}
}

func objectMutator(name string, n int, f func(o vals.Object, key string, args []any) (any, any)) mutatorFn {
	return func(fm *Frame, recv any, args []any) (any, any, error) {
		if err := checkArity(name, args, n, n); err != nil {
			return nil, nil, err
		}
		key, err := strArg(name, args, 0)
		if err != nil {
			return nil, nil, err
		}
		ret, updated := f(recv.(vals.Object), key, args)
		return ret, updated, nil
	}
}

func numMethod(name string, fi func(int64) any, ff func(float64) any) methodFn {
	return func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity(name, args, 0, 0); err != nil {
			return nil, err
		}
		switch v := recv.(type) {
		case int64:
			if fi == nil {
				return ff(float64(v)), nil
			}
			return fi(v), nil
		default:
			return ff(v.(float64)), nil
		}
	}
}

func identity(i int64) any { return i }

var numMethods = map[string]methodFn{
	"abs": numMethod("abs", func(i int64) any {
		if i < 0 {
			return -i
		}
		return i
	}, func(f float64) any { return math.Abs(f) }),
	"sqrt":  numMethod("sqrt", nil, func(f float64) any { return math.Sqrt(f) }),
	"floor": numMethod("floor", identity, func(f float64) any { return math.Floor(f) }),
	"ceil":  numMethod("ceil", identity, func(f float64) any { return math.Ceil(f) }),
	"round": numMethod("round", identity, func(f float64) any { return math.Round(f) }),
	"is_nan": numMethod("is_nan", func(int64) any { return false },
		func(f float64) any { return math.IsNaN(f) }),
	"signum": numMethod("signum", func(i int64) any {
		switch {
		case i > 0:
			return int64(1)
		case i < 0:
			return int64(-1)
		}
		return int64(0)
	}, func(f float64) any {
		if math.IsNaN(f) {
			return f
		}
		return math.Copysign(1, f)
	}),
	"pow": func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity("pow", args, 1, 1); err != nil {
			return nil, err
		}
		return vals.Pow(recv, args[0])
	},
	"min": func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity("min", args, 1, 1); err != nil {
			return nil, err
		}
		return extremum([]any{recv, args[0]}, vals.Less)
	},
	"max": func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity("max", args, 1, 1); err != nil {
			return nil, err
		}
		return extremum([]any{recv, args[0]}, vals.Greater)
	},
}

// unwrapVariant returns the payload of Some or Ok, and whether the variant
// is one of them.
func unwrapVariant(v vals.Variant) (any, bool) {
	if (v.Name == "Some" || v.Name == "Ok") && len(v.Data) == 1 {
		return v.Data[0], true
	}
	return nil, false
}

func variantMethod(name string, lo, hi int, f func(fm *Frame, v vals.Variant, args []any) (any, error)) methodFn {
	return func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity(name, args, lo, hi); err != nil {
			return nil, err
		}
		return f(fm, recv.(vals.Variant), args)
	}
}

func variantIs(name string) methodFn {
	return nullary("is_"+toLowerASCII(name), func(v vals.Variant) any { return v.Name == name })
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

var variantMethods = map[string]methodFn{
	"is_some": variantIs("Some"),
	"is_none": variantIs("None"),
	"is_ok":   variantIs("Ok"),
	"is_err":  variantIs("Err"),
	"unwrap": variantMethod("unwrap", 0, 0, func(fm *Frame, v vals.Variant, args []any) (any, error) {
		if x, ok := unwrapVariant(v); ok {
			return x, nil
		}
		return nil, errs.Newf(errs.RuntimeError, "called unwrap on %s", vals.Repr(v))
	}),
	"expect": variantMethod("expect", 1, 1, func(fm *Frame, v vals.Variant, args []any) (any, error) {
		if x, ok := unwrapVariant(v); ok {
			return x, nil
		}
		return nil, errs.New(errs.RuntimeError, vals.ToString(args[0]))
	}),
	"unwrap_or": variantMethod("unwrap_or", 1, 1, func(fm *Frame, v vals.Variant, args []any) (any, error) {
		if x, ok := unwrapVariant(v); ok {
			return x, nil
		}
		return args[0], nil
	}),
	"unwrap_or_else": variantMethod("unwrap_or_else", 1, 1, func(fm *Frame, v vals.Variant, args []any) (any, error) {
		if x, ok := unwrapVariant(v); ok {
			return x, nil
		}
		fn, err := fnArg("unwrap_or_else", args, 0)
		if err != nil {
			return nil, err
		}
		if v.Name == "Err" {
			return fn.Call(fm, v.Data)
		}
		return fn.Call(fm, nil)
	}),
	"map": variantMethod("map", 1, 1, func(fm *Frame, v vals.Variant, args []any) (any, error) {
		fn, err := fnArg("map", args, 0)
		if err != nil {
			return nil, err
		}
		x, ok := unwrapVariant(v)
		if !ok {
			return v, nil
		}
		y, err := fn.Call(fm, []any{x})
		if err != nil {
			return nil, err
		}
		return vals.Variant{Enum: v.Enum, Name: v.Name, Data: []any{y}}, nil
	}),
	"and_then": variantMethod("and_then", 1, 1, func(fm *Frame, v vals.Variant, args []any) (any, error) {
		fn, err := fnArg("and_then", args, 0)
		if err != nil {
			return nil, err
		}
		x, ok := unwrapVariant(v)
		if !ok {
			return v, nil
		}
		return fn.Call(fm, []any{x})
	}),
	"ok": variantMethod("ok", 0, 0, func(fm *Frame, v vals.Variant, args []any) (any, error) {
		x, ok := unwrapVariant(v)
		return optional(x, ok), nil
	}),
}

func init() {
	addMethods("integer", numMethods)
	addMethods("float", numMethods)
	addMethods("enum", variantMethods)

	addMethods("object", map[string]methodFn{
		"len": objectMethod("len", 0, 0, func(o vals.Object, args []any) (any, error) {
			return int64(o.Len()), nil
		}),
		"is_empty": objectMethod("is_empty", 0, 0, func(o vals.Object, args []any) (any, error) {
			return o.Len() == 0, nil
		}),
		"keys": objectMethod("keys", 0, 0, func(o vals.Object, args []any) (any, error) {
			return vals.MakeArraySlice(vals.FieldNames(o)), nil
		}),
		"values": objectMethod("values", 0, 0, func(o vals.Object, args []any) (any, error) {
			var vs []any
			for _, k := range vals.FieldNames(o) {
				v, _ := o.Field(k)
				vs = append(vs, v)
			}
			return vals.MakeArraySlice(vs), nil
		}),
		"items": objectMethod("items", 0, 0, func(o vals.Object, args []any) (any, error) {
			items, err := vals.Collect(o)
			return vals.MakeArraySlice(items), err
		}),
		"get": objectMethod("get", 1, 1, func(o vals.Object, args []any) (any, error) {
			k, err := strArg("get", args, 0)
			if err != nil {
				return nil, err
			}
			return optional(o.Field(k)), nil
		}),
		"contains_key": objectMethod("contains_key", 1, 1, func(o vals.Object, args []any) (any, error) {
			k, err := strArg("contains_key", args, 0)
			if err != nil {
				return nil, err
			}
			_, ok := o.Field(k)
			return ok, nil
		}),
	})

	addMutators("object", map[string]mutatorFn{
		"insert": objectMutator("insert", 2, func(o vals.Object, key string, args []any) (any, any) {
			return optional(o.Field(key)), o.With(key, args[1])
		}),
		"remove": objectMutator("remove", 1, func(o vals.Object, key string, args []any) (any, any) {
			old, ok := o.Field(key)
			if !ok {
				return vals.None, o
			}
			return vals.Some(old), vals.Object{TypeName: o.TypeName, Fields: o.Fields.Dissoc(key)}
		}),
	})
}
