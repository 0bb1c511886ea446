package eval

import (
	"math"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// Numerical builtins.

func init() {
	addBuiltinFns(map[string]any{
		"abs":   abs,
		"min":   minOf,
		"max":   maxOf,
		"floor": roundingFn(math.Floor),
		"ceil":  roundingFn(math.Ceil),
		"round": roundingFn(math.Round),
		"sqrt":  math.Sqrt,
		"pow":   vals.Pow,
	})
}

func abs(v any) (any, error) {
	switch v := v.(type) {
	case int64:
		if v == math.MinInt64 {
			return nil, errs.New(errs.RuntimeError, "integer overflow in abs")
		}
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case float64:
		return math.Abs(v), nil
	}
	return nil, errs.Newf(errs.TypeError, "abs expects a number, got %s", vals.Kind(v))
}

// minOf and maxOf accept either several numbers or a single array.
func minOf(args ...any) (any, error) { return extremumOf("min", vals.Less, args) }

func maxOf(args ...any) (any, error) { return extremumOf("max", vals.Greater, args) }

func extremumOf(name string, want vals.Ordering, args []any) (any, error) {
	if len(args) == 1 && vals.CanIterate(args[0]) {
		elems, err := vals.Collect(args[0])
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return nil, errs.Newf(errs.RuntimeError, "%s of an empty collection", name)
		}
		args = elems
	}
	if len(args) == 0 {
		return nil, errs.ArityMismatch{What: "arguments of " + name, ValidLow: 1, ValidHigh: -1}
	}
	for i, a := range args {
		if _, ok := a.(int64); !ok {
			if _, ok := a.(float64); !ok {
				return nil, argError(name, i, "number", a)
			}
		}
	}
	return extremum(args, want)
}

// roundingFn returns a builtin that rounds floats with f and returns
// integers as they are.
func roundingFn(f func(float64) float64) func(any) (any, error) {
	return func(v any) (any, error) {
		switch v := v.(type) {
		case int64:
			return v, nil
		case float64:
			return f(v), nil
		}
		return nil, errs.Newf(errs.TypeError, "expected a number, got %s", vals.Kind(v))
	}
}
