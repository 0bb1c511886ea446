package vals

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Reprer wraps the Repr method.
type Reprer interface {
	// Repr returns a string that represents a value.
	Repr() string
}

// ToString converts a value to its display form. Strings and characters are
// shown as is; all other values use Repr.
func ToString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case Char:
		return string(rune(v))
	default:
		return Repr(v)
	}
}

// Repr returns the representation of a value. Strings inside containers are
// quoted, so Repr of a string also quotes it.
func Repr(v any) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

func writeRepr(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		sb.WriteString("nil")
	case Unit:
		sb.WriteString("()")
	case bool:
		sb.WriteString(strconv.FormatBool(v))
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	case float64:
		sb.WriteString(FormatFloat(v))
	case Char:
		sb.WriteString(strconv.QuoteRune(rune(v)))
	case string:
		sb.WriteString(strconv.Quote(v))
	case Range:
		sb.WriteString(strconv.FormatInt(v.Start, 10))
		if v.Inclusive {
			sb.WriteString("..=")
		} else {
			sb.WriteString("..")
		}
		sb.WriteString(strconv.FormatInt(v.End, 10))
	case Tuple:
		sb.WriteByte('(')
		writeElems(sb, v)
		if len(v) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case Variant:
		sb.WriteString(v.Name)
		if v.Data != nil {
			sb.WriteByte('(')
			writeElems(sb, v.Data)
			sb.WriteByte(')')
		}
	case Object:
		if v.TypeName != "" {
			sb.WriteString(v.TypeName + " ")
		}
		sb.WriteByte('{')
		for i, k := range FieldNames(v) {
			if i > 0 {
				sb.WriteString(", ")
			}
			f, _ := v.Field(k)
			sb.WriteString(k + ": ")
			writeRepr(sb, f)
		}
		sb.WriteByte('}')
	case Reprer:
		sb.WriteString(v.Repr())
	case Array:
		sb.WriteByte('[')
		first := true
		for it := v.Iterator(); it.HasElem(); it.Next() {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			writeRepr(sb, it.Elem())
		}
		sb.WriteByte(']')
	default:
		sb.WriteString("<unknown>")
	}
}

func writeElems(sb *strings.Builder, vs []any) {
	for i, v := range vs {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeRepr(sb, v)
	}
}

// FieldNames returns the field names of an object in sorted order.
func FieldNames(o Object) []string {
	if o.Len() == 0 {
		return nil
	}
	names := make([]string, 0, o.Len())
	for it := o.Fields.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		names = append(names, k.(string))
	}
	sort.Strings(names)
	return names
}

// FormatFloat formats a float. Floats with no fractional part keep a trailing
// ".0" so that they are distinguishable from integers.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == math.Trunc(f) && !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
