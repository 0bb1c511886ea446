package vals

// Sizer is implemented by values that know their approximate heap size.
type Sizer interface {
	Size() int
}

const (
	wordSize   = 8
	headerSize = 2 * wordSize
)

// Size estimates the number of heap bytes held by a value, including its
// elements. Scalars count as one interface header.
func Size(v any) int {
	switch v := v.(type) {
	case nil, Unit, bool, int64, float64, Char:
		return headerSize
	case string:
		return headerSize + len(v)
	case Range:
		return headerSize + 3*wordSize
	case Tuple:
		return headerSize + sizeSlice(v)
	case Variant:
		return headerSize + len(v.Enum) + len(v.Name) + sizeSlice(v.Data)
	case Object:
		n := headerSize + len(v.TypeName)
		if v.Len() > 0 {
			for it := v.Fields.Iterator(); it.HasElem(); it.Next() {
				k, f := it.Elem()
				n += Size(k) + Size(f)
			}
		}
		return n
	case Sizer:
		return v.Size()
	case Array:
		n := headerSize
		for it := v.Iterator(); it.HasElem(); it.Next() {
			n += Size(it.Elem())
		}
		return n
	}
	return headerSize
}

func sizeSlice(vs []any) int {
	n := 0
	for _, v := range vs {
		n += Size(v)
	}
	return n
}
