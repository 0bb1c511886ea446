package vals

// Equaler wraps the Equal method.
type Equaler interface {
	// Equal compares the receiver to another value. Two equal values must have
	// the same hash code.
	Equal(other any) bool
}

// Equal returns whether two values are structurally equal. Integers and
// floats are never equal to each other; use Compare for numeric comparison
// across the two types.
func Equal(x, y any) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case Unit:
		_, ok := y.(Unit)
		return ok
	case bool:
		y, ok := y.(bool)
		return ok && x == y
	case int64:
		y, ok := y.(int64)
		return ok && x == y
	case float64:
		y, ok := y.(float64)
		return ok && x == y
	case Char:
		y, ok := y.(Char)
		return ok && x == y
	case string:
		y, ok := y.(string)
		return ok && x == y
	case Range:
		y, ok := y.(Range)
		return ok && x == y
	case Tuple:
		y, ok := y.(Tuple)
		return ok && equalSlice(x, y)
	case Variant:
		y, ok := y.(Variant)
		return ok && x.Enum == y.Enum && x.Name == y.Name &&
			(x.Data == nil) == (y.Data == nil) && equalSlice(x.Data, y.Data)
	case Object:
		y, ok := y.(Object)
		return ok && x.TypeName == y.TypeName && equalFields(x, y)
	case Equaler:
		return x.Equal(y)
	case Array:
		if y, ok := y.(Array); ok {
			return equalArray(x, y)
		}
		return false
	default:
		return false
	}
}

func equalSlice(x, y []any) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !Equal(x[i], y[i]) {
			return false
		}
	}
	return true
}

func equalArray(x, y Array) bool {
	if x.Len() != y.Len() {
		return false
	}
	ix := x.Iterator()
	iy := y.Iterator()
	for ix.HasElem() && iy.HasElem() {
		if !Equal(ix.Elem(), iy.Elem()) {
			return false
		}
		ix.Next()
		iy.Next()
	}
	return true
}

func equalFields(x, y Object) bool {
	if x.Len() != y.Len() {
		return false
	}
	if x.Len() == 0 {
		return true
	}
	for it := x.Fields.Iterator(); it.HasElem(); it.Next() {
		k, vx := it.Elem()
		vy, ok := y.Fields.Index(k)
		if !ok || !Equal(vx, vy) {
			return false
		}
	}
	return true
}
