package ast

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

const indentInc = 2

// Dump writes an indented tree of n to w. Zero-valued properties and source
// ranges are omitted. It backs the :ast command.
func Dump(w io.Writer, n Node) {
	dumpRec(w, reflect.ValueOf(n), 0, "")
}

// DumpString is like Dump, but returns a string.
func DumpString(n Node) string {
	var sb strings.Builder
	Dump(&sb, n)
	return sb.String()
}

var (
	nodeType    = reflect.TypeOf((*Node)(nil)).Elem()
	typePtrType = reflect.TypeOf((*Type)(nil))
)

func dumpRec(w io.Writer, v reflect.Value, indent int, leading string) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return
	}
	if v.Type() == typePtrType {
		fmt.Fprintf(w, "%*s%sType %s\n", indent, "", leading, v.Interface().(*Type))
		return
	}
	if lit, ok := v.Interface().(*Literal); ok {
		fmt.Fprintf(w, "%*s%sLiteral %s\n", indent, "", leading, FormatLiteral(lit))
		return
	}
	st := v.Elem()
	t := st.Type()

	type child struct {
		name string
		v    reflect.Value
	}
	var props []string
	var children []child
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			continue
		}
		fv := st.Field(i)
		switch {
		case f.Type.Kind() == reflect.Slice && isNodeLike(f.Type.Elem()):
			for j := 0; j < fv.Len(); j++ {
				children = append(children, child{fmt.Sprintf("%s[%d]", f.Name, j), fv.Index(j)})
			}
		case f.Type == reflect.TypeOf([]StringPart(nil)):
			for j := 0; j < fv.Len(); j++ {
				part := fv.Index(j).Interface().(StringPart)
				if part.Expr == nil {
					props = append(props, fmt.Sprintf("%s[%d]=%q", f.Name, j, part.Text))
				} else {
					children = append(children, child{fmt.Sprintf("%s[%d]", f.Name, j), reflect.ValueOf(part.Expr)})
				}
			}
		case isNodeLike(f.Type):
			if !fv.IsNil() {
				children = append(children, child{f.Name, fv})
			}
		default:
			if !fv.IsZero() {
				props = append(props, fmt.Sprintf("%s=%v", f.Name, fv.Interface()))
			}
		}
	}

	fmt.Fprintf(w, "%*s%s%s", indent, "", leading, t.Name())
	for _, p := range props {
		fmt.Fprintf(w, " %s", p)
	}
	fmt.Fprintln(w)
	for _, c := range children {
		dumpRec(w, c.v, indent+indentInc, c.name+": ")
	}
}

func isNodeLike(t reflect.Type) bool {
	return t.Implements(nodeType) || t == typePtrType
}
