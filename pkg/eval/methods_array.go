package eval

import (
	"sort"
	"strings"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// arrayMethod adapts a method on the elements of an array. Ranges and
// tuples share the array methods through it.
func arrayMethod(name string, lo, hi int, f func(fm *Frame, elems []any, args []any) (any, error)) methodFn {
	return func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity(name, args, lo, hi); err != nil {
			return nil, err
		}
		elems, err := vals.Collect(recv)
		if err != nil {
			return nil, err
		}
		return f(fm, elems, args)
	}
}

// mapElems calls fn on each element and collects the results.
func mapElems(fm *Frame, fn Callable, elems []any) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		v, err := fn.Call(fm, []any{e})
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// firstWhere returns the index of the first element for which fn is truthy,
// or -1.
func firstWhere(fm *Frame, fn Callable, elems []any) (int, error) {
	for i, e := range elems {
		v, err := fn.Call(fm, []any{e})
		if err != nil {
			return -1, err
		}
		if vals.Truthy(v) {
			return i, nil
		}
	}
	return -1, nil
}

func sortElems(elems []any) error {
	var err error
	sort.SliceStable(elems, func(i, j int) bool {
		o := vals.Compare(elems[i], elems[j])
		if o == vals.Incomparable && err == nil {
			err = errs.Newf(errs.TypeError, "cannot compare %s with %s",
				vals.Kind(elems[i]), vals.Kind(elems[j]))
		}
		return o == vals.Less
	})
	return err
}

func extremum(elems []any, want vals.Ordering) (any, error) {
	if len(elems) == 0 {
		return nil, nil
	}
	best := elems[0]
	for _, e := range elems[1:] {
		switch vals.Compare(e, best) {
		case want:
			best = e
		case vals.Incomparable:
			return nil, errs.Newf(errs.TypeError, "cannot compare %s with %s",
				vals.Kind(e), vals.Kind(best))
		}
	}
	return best, nil
}

func fold(fm *Frame, elems []any, acc any, fn Callable) (any, error) {
	for _, e := range elems {
		v, err := fn.Call(fm, []any{acc, e})
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

var arrayMethods = map[string]methodFn{
	"len": arrayMethod("len", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		return int64(len(elems)), nil
	}),
	"is_empty": arrayMethod("is_empty", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		return len(elems) == 0, nil
	}),
	"first": arrayMethod("first", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		if len(elems) == 0 {
			return nil, nil
		}
		return elems[0], nil
	}),
	"last": arrayMethod("last", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		if len(elems) == 0 {
			return nil, nil
		}
		return elems[len(elems)-1], nil
	}),
	"get": arrayMethod("get", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		i, err := intArg("get", args, 0)
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= int64(len(elems)) {
			return nil, nil
		}
		return elems[i], nil
	}),
	"contains": arrayMethod("contains", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		for _, e := range elems {
			if vals.Equal(e, args[0]) {
				return true, nil
			}
		}
		return false, nil
	}),
	"join": arrayMethod("join", 0, 1, func(fm *Frame, elems, args []any) (any, error) {
		sep := ""
		if len(args) == 1 {
			var err error
			if sep, err = strArg("join", args, 0); err != nil {
				return nil, err
			}
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = vals.ToString(e)
		}
		return strings.Join(parts, sep), nil
	}),
	"concat": arrayMethod("concat", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		other, err := vals.Collect(args[0])
		if err != nil {
			return nil, err
		}
		return vals.MakeArraySlice(append(elems, other...)), nil
	}),
	"reverse": arrayMethod("reverse", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		return vals.MakeArraySlice(elems), nil
	}),
	"sort": arrayMethod("sort", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		if err := sortElems(elems); err != nil {
			return nil, err
		}
		return vals.MakeArraySlice(elems), nil
	}),
	"sort_by": arrayMethod("sort_by", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("sort_by", args, 0)
		if err != nil {
			return nil, err
		}
		keys, err := mapElems(fm, fn, elems)
		if err != nil {
			return nil, err
		}
		idx := make([]int, len(elems))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(i, j int) bool {
			return vals.Compare(keys[idx[i]], keys[idx[j]]) == vals.Less
		})
		sorted := make([]any, len(elems))
		for i, k := range idx {
			sorted[i] = elems[k]
		}
		return vals.MakeArraySlice(sorted), nil
	}),
	"sum": arrayMethod("sum", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		var acc any = int64(0)
		for _, e := range elems {
			v, err := vals.Add(acc, e)
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	}),
	"product": arrayMethod("product", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		var acc any = int64(1)
		for _, e := range elems {
			v, err := vals.BinaryOp(ast.Mul, acc, e)
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	}),
	"min": arrayMethod("min", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		return extremum(elems, vals.Less)
	}),
	"max": arrayMethod("max", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		return extremum(elems, vals.Greater)
	}),
	"unique": arrayMethod("unique", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		var out []any
	outer:
		for _, e := range elems {
			for _, seen := range out {
				if vals.Equal(e, seen) {
					continue outer
				}
			}
			out = append(out, e)
		}
		return vals.MakeArraySlice(out), nil
	}),
	"enumerate": arrayMethod("enumerate", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = vals.Tuple{int64(i), e}
		}
		return vals.MakeArraySlice(out), nil
	}),
	"flatten": arrayMethod("flatten", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		var out []any
		for _, e := range elems {
			if a, ok := e.(vals.Array); ok {
				out = append(out, vals.ArrayElems(a)...)
			} else {
				out = append(out, e)
			}
		}
		return vals.MakeArraySlice(out), nil
	}),
	"take": arrayMethod("take", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		n, err := intArg("take", args, 0)
		if err != nil {
			return nil, err
		}
		n = clamp(n, int64(len(elems)))
		return vals.MakeArraySlice(elems[:n]), nil
	}),
	"skip": arrayMethod("skip", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		n, err := intArg("skip", args, 0)
		if err != nil {
			return nil, err
		}
		n = clamp(n, int64(len(elems)))
		return vals.MakeArraySlice(elems[n:]), nil
	}),
	"zip": arrayMethod("zip", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		other, err := vals.Collect(args[0])
		if err != nil {
			return nil, err
		}
		n := min(len(elems), len(other))
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = vals.Tuple{elems[i], other[i]}
		}
		return vals.MakeArraySlice(out), nil
	}),
	"slice": arrayMethod("slice", 2, 2, func(fm *Frame, elems, args []any) (any, error) {
		from, err := intArg("slice", args, 0)
		if err != nil {
			return nil, err
		}
		to, err := intArg("slice", args, 1)
		if err != nil {
			return nil, err
		}
		n := int64(len(elems))
		if from < 0 || from > n || to < from || to > n {
			return nil, errs.OutOfRange{What: "slice bounds",
				ValidLow: "0", ValidHigh: itoa(n), Actual: itoa(from) + ".." + itoa(to)}
		}
		return vals.MakeArraySlice(elems[from:to]), nil
	}),
	"map": arrayMethod("map", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("map", args, 0)
		if err != nil {
			return nil, err
		}
		out, err := mapElems(fm, fn, elems)
		if err != nil {
			return nil, err
		}
		return vals.MakeArraySlice(out), nil
	}),
	"filter": arrayMethod("filter", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("filter", args, 0)
		if err != nil {
			return nil, err
		}
		var out []any
		for _, e := range elems {
			v, err := fn.Call(fm, []any{e})
			if err != nil {
				return nil, err
			}
			if vals.Truthy(v) {
				out = append(out, e)
			}
		}
		return vals.MakeArraySlice(out), nil
	}),
	// reduce accepts its initial value and function in either order.
	"reduce": arrayMethod("reduce", 2, 2, func(fm *Frame, elems, args []any) (any, error) {
		init, fnv := args[0], args[1]
		if _, ok := fnv.(Callable); !ok {
			init, fnv = fnv, init
		}
		fn, ok := fnv.(Callable)
		if !ok {
			return nil, errs.New(errs.TypeError, "reduce expects an initial value and a function")
		}
		return fold(fm, elems, init, fn)
	}),
	"fold": arrayMethod("fold", 2, 2, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("fold", args, 1)
		if err != nil {
			return nil, err
		}
		return fold(fm, elems, args[0], fn)
	}),
	"any": arrayMethod("any", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("any", args, 0)
		if err != nil {
			return nil, err
		}
		i, err := firstWhere(fm, fn, elems)
		return i >= 0, err
	}),
	"all": arrayMethod("all", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("all", args, 0)
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			v, err := fn.Call(fm, []any{e})
			if err != nil {
				return nil, err
			}
			if !vals.Truthy(v) {
				return false, nil
			}
		}
		return true, nil
	}),
	"find": arrayMethod("find", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("find", args, 0)
		if err != nil {
			return nil, err
		}
		i, err := firstWhere(fm, fn, elems)
		if err != nil || i < 0 {
			return vals.None, err
		}
		return vals.Some(elems[i]), nil
	}),
	"position": arrayMethod("position", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("position", args, 0)
		if err != nil {
			return nil, err
		}
		i, err := firstWhere(fm, fn, elems)
		if err != nil || i < 0 {
			return vals.None, err
		}
		return vals.Some(int64(i)), nil
	}),
	"count": arrayMethod("count", 0, 1, func(fm *Frame, elems, args []any) (any, error) {
		if len(args) == 0 {
			return int64(len(elems)), nil
		}
		fn, err := fnArg("count", args, 0)
		if err != nil {
			return nil, err
		}
		n := int64(0)
		for _, e := range elems {
			v, err := fn.Call(fm, []any{e})
			if err != nil {
				return nil, err
			}
			if vals.Truthy(v) {
				n++
			}
		}
		return n, nil
	}),
	"each": arrayMethod("each", 1, 1, func(fm *Frame, elems, args []any) (any, error) {
		fn, err := fnArg("each", args, 0)
		if err != nil {
			return nil, err
		}
		_, err = mapElems(fm, fn, elems)
		return unit, err
	}),
	"iter": arrayMethod("iter", 0, 0, func(fm *Frame, elems, args []any) (any, error) {
		return vals.MakeArraySlice(elems), nil
	}),
}

func clamp(n, hi int64) int64 {
	if n < 0 {
		return 0
	}
	if n > hi {
		return hi
	}
	return n
}

func init() {
	arrayMethods["for_each"] = arrayMethods["each"]
	arrayMethods["collect"] = arrayMethods["iter"]
	arrayMethods["length"] = arrayMethods["len"]
	addMethods("array", arrayMethods)
	addMethods("range", arrayMethods)
	addMethods("range", map[string]methodFn{
		"rev": arrayMethods["reverse"],
	})
	addMethods("tuple", map[string]methodFn{
		"len":      arrayMethods["len"],
		"is_empty": arrayMethods["is_empty"],
		"contains": arrayMethods["contains"],
		"iter":     arrayMethods["iter"],
	})

	addMutators("array", map[string]mutatorFn{
		"push": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("push", args, 1, 1); err != nil {
				return nil, nil, err
			}
			if err := fm.ev.alloc(sizeOfElems(args)); err != nil {
				return nil, nil, err
			}
			return unit, recv.(vals.Array).Cons(args[0]), nil
		},
		"pop": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("pop", args, 0, 0); err != nil {
				return nil, nil, err
			}
			a := recv.(vals.Array)
			if a.Len() == 0 {
				return nil, a, nil
			}
			last, _ := a.Index(a.Len() - 1)
			return last, a.Pop(), nil
		},
		"insert": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("insert", args, 2, 2); err != nil {
				return nil, nil, err
			}
			i, err := intArg("insert", args, 0)
			if err != nil {
				return nil, nil, err
			}
			elems := vals.ArrayElems(recv.(vals.Array))
			if i < 0 || i > int64(len(elems)) {
				return nil, nil, errs.Index("insert index", i, len(elems)+1)
			}
			elems = append(elems[:i], append([]any{args[1]}, elems[i:]...)...)
			return unit, vals.MakeArraySlice(elems), nil
		},
		"remove": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("remove", args, 1, 1); err != nil {
				return nil, nil, err
			}
			i, err := intArg("remove", args, 0)
			if err != nil {
				return nil, nil, err
			}
			elems := vals.ArrayElems(recv.(vals.Array))
			if i < 0 || i >= int64(len(elems)) {
				return nil, nil, errs.Index("remove index", i, len(elems))
			}
			removed := elems[i]
			elems = append(elems[:i], elems[i+1:]...)
			return removed, vals.MakeArraySlice(elems), nil
		},
		"clear": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("clear", args, 0, 0); err != nil {
				return nil, nil, err
			}
			return unit, vals.EmptyArray, nil
		},
		"extend": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("extend", args, 1, 1); err != nil {
				return nil, nil, err
			}
			a := recv.(vals.Array)
			err := vals.Iterate(args[0], func(e any) bool {
				a = a.Cons(e)
				return true
			})
			if err != nil {
				return nil, nil, err
			}
			return unit, a, nil
		},
	})
}
