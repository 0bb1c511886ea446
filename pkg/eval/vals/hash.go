package vals

import (
	"math"

	"github.com/xiaq/persistent/hash"
)

// Hasher wraps the Hash method.
type Hasher interface {
	// Hash computes the hash code of the receiver.
	Hash() uint32
}

// Hash returns the 32-bit hash of a value. It is consistent with Equal: equal
// values have the same hash. Values without structural equality hash to 0.
func Hash(v any) uint32 {
	switch v := v.(type) {
	case nil:
		return 0
	case Unit:
		return 1
	case bool:
		if v {
			return 3
		}
		return 2
	case int64:
		return hash.UInt64(uint64(v))
	case float64:
		return hash.UInt64(math.Float64bits(v))
	case Char:
		return hash.UInt32(uint32(v))
	case string:
		return hash.String(v)
	case Range:
		h := hash.DJBInit
		h = hash.DJBCombine(h, hash.UInt64(uint64(v.Start)))
		h = hash.DJBCombine(h, hash.UInt64(uint64(v.End)))
		if v.Inclusive {
			h = hash.DJBCombine(h, 1)
		}
		return h
	case Tuple:
		return hashSlice(hash.DJBInit, v)
	case Variant:
		h := hash.DJBCombine(hash.String(v.Enum), hash.String(v.Name))
		return hashSlice(h, v.Data)
	case Object:
		h := hash.String(v.TypeName)
		if v.Len() > 0 {
			for it := v.Fields.Iterator(); it.HasElem(); it.Next() {
				k, f := it.Elem()
				h += hash.DJB(Hash(k), Hash(f))
			}
		}
		return h
	case Hasher:
		return v.Hash()
	case Array:
		h := hash.DJBInit
		for it := v.Iterator(); it.HasElem(); it.Next() {
			h = hash.DJBCombine(h, Hash(it.Elem()))
		}
		return h
	}
	return 0
}

func hashSlice(h uint32, vs []any) uint32 {
	for _, v := range vs {
		h = hash.DJBCombine(h, Hash(v))
	}
	return h
}
