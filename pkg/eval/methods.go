package eval

import (
	"sort"
	"strconv"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// methodFn implements a builtin method.
type methodFn func(fm *Frame, recv any, args []any) (any, error)

// mutatorFn implements a builtin method that updates its receiver. It
// returns the result of the call and the updated receiver. When the
// receiver is a place the updated value is stored back and the call
// evaluates to ret; otherwise the call evaluates to the updated value.
type mutatorFn func(fm *Frame, recv any, args []any) (ret, updated any, err error)

// Method tables, keyed by the kind of the receiver. Methods under anyKind
// apply to every value.
var (
	methods  = map[string]map[string]methodFn{}
	mutators = map[string]map[string]mutatorFn{}
)

const anyKind = "any"

func addMethods(kind string, ms map[string]methodFn) {
	if methods[kind] == nil {
		methods[kind] = map[string]methodFn{}
	}
	for name, m := range ms {
		methods[kind][name] = m
	}
}

func addMutators(kind string, ms map[string]mutatorFn) {
	if mutators[kind] == nil {
		mutators[kind] = map[string]mutatorFn{}
	}
	for name, m := range ms {
		mutators[kind][name] = m
	}
}

func lookupMethod(recv any, name string) (methodFn, bool) {
	if m, ok := methods[vals.Kind(recv)][name]; ok {
		return m, true
	}
	m, ok := methods[anyKind][name]
	return m, ok
}

func lookupMutator(recv any, name string) (mutatorFn, bool) {
	m, ok := mutators[vals.Kind(recv)][name]
	return m, ok
}

// MethodNames returns the names of the builtin methods of a value, sorted.
func MethodNames(v any) []string {
	seen := map[string]bool{}
	for _, kind := range []string{vals.Kind(v), anyKind} {
		for name := range methods[kind] {
			seen[name] = true
		}
		for name := range mutators[kind] {
			seen[name] = true
		}
	}
	return sortedKeys(seen)
}

// MethodNames returns the names of the methods of a value, including those
// defined by impl blocks, sorted.
func (ev *Evaler) MethodNames(v any) []string {
	names := MethodNames(v)
	if typeName := implTypeName(v); typeName != "" {
		for name := range ev.types.impls[typeName] {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Helpers for validating the arguments of methods and builtins.

func checkArity(name string, args []any, lo, hi int) error {
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		return errs.ArityMismatch{What: "arguments of " + name,
			ValidLow: lo, ValidHigh: hi, Actual: len(args)}
	}
	return nil
}

func argError(name string, i int, want string, got any) error {
	return errs.Newf(errs.TypeError, "argument %d of %s must be %s, got %s",
		i+1, name, want, vals.Kind(got))
}

func intArg(name string, args []any, i int) (int64, error) {
	n, ok := args[i].(int64)
	if !ok {
		return 0, argError(name, i, "integer", args[i])
	}
	return n, nil
}

func floatArg(name string, args []any, i int) (float64, error) {
	switch v := args[i].(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, argError(name, i, "number", args[i])
}

func strArg(name string, args []any, i int) (string, error) {
	switch v := args[i].(type) {
	case string:
		return v, nil
	case vals.Char:
		return string(v), nil
	}
	return "", argError(name, i, "string", args[i])
}

func fnArg(name string, args []any, i int) (Callable, error) {
	f, ok := args[i].(Callable)
	if !ok {
		return nil, argError(name, i, "function", args[i])
	}
	return f, nil
}

// nullary adapts a function of the receiver alone into a method.
func nullary[T any](name string, f func(T) any) methodFn {
	return func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity(name, args, 0, 0); err != nil {
			return nil, err
		}
		return f(recv.(T)), nil
	}
}

func itoa(i int64) string { return strconv.FormatInt(i, 10) }

// optional wraps a Go value into an Option.
func optional(v any, ok bool) any {
	if ok {
		return vals.Some(v)
	}
	return vals.None
}

func init() {
	addMethods(anyKind, map[string]methodFn{
		"to_string": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("to_string", args, 0, 0); err != nil {
				return nil, err
			}
			return vals.ToString(recv), nil
		},
		"clone": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("clone", args, 0, 0); err != nil {
				return nil, err
			}
			return recv, nil
		},
		"type_name": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("type_name", args, 0, 0); err != nil {
				return nil, err
			}
			return vals.TypeName(recv), nil
		},
		"eq": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("eq", args, 1, 1); err != nil {
				return nil, err
			}
			return vals.Equal(recv, args[0]), nil
		},
		"cmp": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("cmp", args, 1, 1); err != nil {
				return nil, err
			}
			o := vals.Compare(recv, args[0])
			if o == vals.Incomparable {
				return nil, errs.Newf(errs.TypeError, "cannot compare %s with %s",
					vals.Kind(recv), vals.Kind(args[0]))
			}
			return int64(o), nil
		},
	})
}
