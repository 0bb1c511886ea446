package eval

import (
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// Type inspection, conversion and construction builtins.

func init() {
	addBuiltinFns(map[string]any{
		"type":    vals.Kind,
		"type_of": vals.Kind,
		"str":     vals.ToString,
		"repr":    vals.Repr,
		"int":     vals.ToInt,
		"float":   vals.ToFloat,
		"bool":    vals.Truthy,
		"len":     length,
		"range":   rangeArray,

		"Some": vals.Some,
		"Ok":   vals.Ok,
		"Err":  vals.Err,

		"Vec::new":     func() vals.Array { return vals.EmptyArray },
		"Vec::from":    collectArray,
		"String::new":  func() string { return "" },
		"String::from": vals.ToString,
		"HashMap::new": func() vals.Object { return vals.MakeObject() },
		"Option::Some": vals.Some,
		"Result::Ok":   vals.Ok,
		"Result::Err":  vals.Err,
	})
	addBuiltinValues(map[string]any{
		"None":         vals.None,
		"Option::None": vals.None,
	})
}

func length(v any) (int, error) { return vals.Len(v) }

func collectArray(v any) (vals.Array, error) {
	elems, err := vals.Collect(v)
	if err != nil {
		return nil, err
	}
	return vals.MakeArraySlice(elems), nil
}

// rangeArray returns the integers from start up to, but not including, end
// as an array. A negative step counts down.
func rangeArray(fm *Frame, start, end int64, step ...int64) (vals.Array, error) {
	var by int64 = 1
	switch len(step) {
	case 0:
	case 1:
		by = step[0]
	default:
		return nil, errs.ArityMismatch{What: "arguments of range",
			ValidLow: 2, ValidHigh: 3, Actual: 2 + len(step)}
	}
	if by == 0 {
		return nil, errs.New(errs.RuntimeError, "range step cannot be zero")
	}
	a := vals.EmptyArray
	for i := start; (by > 0 && i < end) || (by < 0 && i > end); i += by {
		a = a.Cons(i)
		if a.Len()%checkInterval == 0 {
			if err := fm.ev.alloc(16 * checkInterval); err != nil {
				return nil, err
			}
		}
	}
	return a, nil
}
