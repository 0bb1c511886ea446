package vals

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
)

func typeError(format string, args ...any) error {
	return errs.Newf(errs.TypeError, format, args...)
}

// ToInt converts a value to an integer, as the int builtin does. Floats are
// truncated toward zero.
func ToInt(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, typeError("cannot convert %s to integer", FormatFloat(v))
		}
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case Char:
		return int64(v), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, typeError("cannot parse %q as integer", v)
		}
		return i, nil
	}
	return 0, typeError("cannot convert %s to integer", Kind(v))
}

// ToFloat converts a value to a float, as the float builtin does.
func ToFloat(v any) (float64, error) {
	switch v := v.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, typeError("cannot parse %q as float", v)
		}
		return f, nil
	}
	return 0, typeError("cannot convert %s to float", Kind(v))
}

// Len returns the length of a string (in characters), array, tuple, object or
// range.
func Len(v any) (int, error) {
	switch v := v.(type) {
	case string:
		return utf8.RuneCountInString(v), nil
	case Array:
		return v.Len(), nil
	case Tuple:
		return len(v), nil
	case Object:
		return v.Len(), nil
	case Range:
		return int(v.Len()), nil
	}
	return 0, typeError("%s has no length", Kind(v))
}

// CanIterate reports whether Iterate accepts the value.
func CanIterate(v any) bool {
	switch v.(type) {
	case Array, Tuple, Range, Object, string:
		return true
	}
	return false
}

// Iterate calls f on each element of an iterable value until f returns false.
// Arrays and tuples yield their elements, ranges yield integers, strings
// yield characters and objects yield (name, value) tuples in name order.
func Iterate(v any, f func(any) bool) error {
	switch v := v.(type) {
	case Array:
		for it := v.Iterator(); it.HasElem(); it.Next() {
			if !f(it.Elem()) {
				break
			}
		}
	case Tuple:
		for _, e := range v {
			if !f(e) {
				break
			}
		}
	case Range:
		end := v.End
		if v.Inclusive {
			if end == math.MaxInt64 {
				for i := v.Start; ; i++ {
					if !f(i) || i == end {
						break
					}
				}
				return nil
			}
			end++
		}
		for i := v.Start; i < end; i++ {
			if !f(i) {
				break
			}
		}
	case string:
		for _, r := range v {
			if !f(Char(r)) {
				break
			}
		}
	case Object:
		for _, k := range FieldNames(v) {
			fv, _ := v.Field(k)
			if !f(Tuple{k, fv}) {
				break
			}
		}
	default:
		return typeError("%s is not iterable", Kind(v))
	}
	return nil
}

// Collect returns the elements produced by Iterate as a slice.
func Collect(v any) ([]any, error) {
	var elems []any
	err := Iterate(v, func(e any) bool {
		elems = append(elems, e)
		return true
	})
	return elems, err
}

// Index indexes into an array, tuple or string with an integer, or into an
// object with a string. Negative indices are out of bounds.
func Index(v, idx any) (any, error) {
	switch v := v.(type) {
	case Array:
		i, ok := idx.(int64)
		if !ok {
			return nil, typeError("array index must be integer, got %s", Kind(idx))
		}
		if i < 0 || i >= int64(v.Len()) {
			return nil, errs.Index("array index", i, v.Len())
		}
		e, _ := v.Index(int(i))
		return e, nil
	case Tuple:
		i, ok := idx.(int64)
		if !ok {
			return nil, typeError("tuple index must be integer, got %s", Kind(idx))
		}
		if i < 0 || i >= int64(len(v)) {
			return nil, errs.Index("tuple index", i, len(v))
		}
		return v[i], nil
	case string:
		i, ok := idx.(int64)
		if !ok {
			return nil, typeError("string index must be integer, got %s", Kind(idx))
		}
		runes := []rune(v)
		if i < 0 || i >= int64(len(runes)) {
			return nil, errs.Index("string index", i, len(runes))
		}
		return Char(runes[i]), nil
	case Object:
		k, ok := idx.(string)
		if !ok {
			return nil, typeError("object key must be string, got %s", Kind(idx))
		}
		f, ok := v.Field(k)
		if !ok {
			return nil, errs.Newf(errs.RuntimeError, "no such key: %s", strconv.Quote(k))
		}
		return f, nil
	}
	return nil, typeError("cannot index %s", Kind(v))
}

// Assoc returns a copy of a container with the element at idx replaced.
func Assoc(v, idx, elem any) (any, error) {
	switch v := v.(type) {
	case Array:
		i, ok := idx.(int64)
		if !ok {
			return nil, typeError("array index must be integer, got %s", Kind(idx))
		}
		if i < 0 || i >= int64(v.Len()) {
			return nil, errs.Index("array index", i, v.Len())
		}
		return v.Assoc(int(i), elem), nil
	case Tuple:
		i, ok := idx.(int64)
		if !ok {
			return nil, typeError("tuple index must be integer, got %s", Kind(idx))
		}
		if i < 0 || i >= int64(len(v)) {
			return nil, errs.Index("tuple index", i, len(v))
		}
		t := append(Tuple(nil), v...)
		t[i] = elem
		return t, nil
	case Object:
		k, ok := idx.(string)
		if !ok {
			return nil, typeError("object key must be string, got %s", Kind(idx))
		}
		return v.With(k, elem), nil
	}
	return nil, typeError("cannot assign to an element of %s", Kind(v))
}

// FromLiteral returns the value of a literal.
func FromLiteral(lit *ast.Literal) any {
	switch lit.Kind {
	case ast.IntLit:
		return lit.Int
	case ast.FloatLit:
		return lit.Float
	case ast.StringLit:
		return lit.Str
	case ast.CharLit:
		return Char(lit.Char)
	case ast.BoolLit:
		return lit.Bool
	case ast.UnitLit:
		return Unit{}
	}
	return nil
}
