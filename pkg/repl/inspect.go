package repl

import (
	"fmt"
	"sort"
	"strings"

	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/eval/vals"
)

// maxInspectElems is the number of elements Inspect lists.
const maxInspectElems = 10

// Inspect describes a value in detail: its type, its estimated size and,
// depending on its kind, its length, elements or fields.
func Inspect(v any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Type: %s\n", vals.TypeName(v))
	fmt.Fprintf(&sb, "Memory: ~%d bytes\n", vals.Size(v))
	switch v := v.(type) {
	case string:
		fmt.Fprintf(&sb, "Value: %s\n", vals.Repr(v))
		fmt.Fprintf(&sb, "Length: %d\n", len(v))
	case vals.Array:
		fmt.Fprintf(&sb, "Length: %d\n", v.Len())
		sb.WriteString("Elements:\n")
		elems(&sb, vals.ArrayElems(v))
	case vals.Tuple:
		fmt.Fprintf(&sb, "Length: %d\n", len(v))
		sb.WriteString("Items:\n")
		elems(&sb, v)
	case vals.Object:
		if v.TypeName != "" {
			fmt.Fprintf(&sb, "Struct: %s\n", v.TypeName)
		}
		fmt.Fprintf(&sb, "Fields: %d\n", v.Len())
		if v.Len() > 0 {
			var lines []string
			for it := v.Fields.Iterator(); it.HasElem(); it.Next() {
				k, f := it.Elem()
				lines = append(lines, fmt.Sprintf("  %s: %s\n", vals.ToString(k), vals.Repr(f)))
			}
			sort.Strings(lines)
			for _, l := range lines {
				sb.WriteString(l)
			}
		}
	case vals.Range:
		fmt.Fprintf(&sb, "Start: %d\nEnd: %d\nInclusive: %t\nLength: %d\n", v.Start, v.End, v.Inclusive, v.Len())
	case vals.Variant:
		fmt.Fprintf(&sb, "Enum: %s\nVariant: %s\n", v.Enum, v.Name)
		if len(v.Data) > 0 {
			sb.WriteString("Data:\n")
			elems(&sb, v.Data)
		}
	case *eval.Closure:
		name := v.Name
		if name == "" {
			name = "<lambda>"
		}
		params := make([]string, len(v.Params))
		for i, p := range v.Params {
			params[i] = p.Name
		}
		fmt.Fprintf(&sb, "Function: %s\nParameters: (%s)\n", name, strings.Join(params, ", "))
		if v.ReturnType != nil {
			fmt.Fprintf(&sb, "Returns: %s\n", v.ReturnType)
		}
	default:
		fmt.Fprintf(&sb, "Value: %s\n", vals.Repr(v))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func elems(sb *strings.Builder, vs []any) {
	for i, e := range vs {
		if i == maxInspectElems {
			fmt.Fprintf(sb, "  ... and %d more\n", len(vs)-maxInspectElems)
			break
		}
		fmt.Fprintf(sb, "  [%d]: %s\n", i, vals.Repr(e))
	}
}
