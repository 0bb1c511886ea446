package vals

import "strings"

// Ordering is the result of Compare.
type Ordering int8

// Possible orderings.
const (
	Less Ordering = iota - 1
	Same
	Greater
	Incomparable
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Same:
		return "Equal"
	case Greater:
		return "Greater"
	default:
		return "Incomparable"
	}
}

// Compare orders two values. Integers and floats compare numerically with each
// other. Strings, booleans and characters compare within their own type, and
// arrays and tuples compare lexicographically. Any other pair is
// Incomparable.
func Compare(a, b any) Ordering {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			return compareInt(a, b)
		case float64:
			return compareFloat(float64(a), b)
		}
	case float64:
		switch b := b.(type) {
		case int64:
			return compareFloat(a, float64(b))
		case float64:
			return compareFloat(a, b)
		}
	case string:
		if b, ok := b.(string); ok {
			return Ordering(strings.Compare(a, b))
		}
	case bool:
		if b, ok := b.(bool); ok {
			switch {
			case a == b:
				return Same
			case !a:
				return Less
			default:
				return Greater
			}
		}
	case Char:
		if b, ok := b.(Char); ok {
			return compareInt(int64(a), int64(b))
		}
	case Tuple:
		if b, ok := b.(Tuple); ok {
			return compareSlices(a, b)
		}
	case Array:
		if b, ok := b.(Array); ok {
			return compareSlices(ArrayElems(a), ArrayElems(b))
		}
	}
	return Incomparable
}

func compareInt(a, b int64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Same
	}
}

func compareFloat(a, b float64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	case a == b:
		return Same
	default:
		// NaN
		return Incomparable
	}
}

func compareSlices(a, b []any) Ordering {
	for i := 0; i < len(a) && i < len(b); i++ {
		if o := Compare(a[i], b[i]); o != Same {
			return o
		}
	}
	return compareInt(int64(len(a)), int64(len(b)))
}
