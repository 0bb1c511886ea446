package ast

import (
	"strings"

	"src.rook.sh/pkg/diag"
)

// TypeKind is the kind of a type annotation.
type TypeKind int

// Kinds of type annotations.
const (
	// NamedType is Name or Name<Args...>.
	NamedType TypeKind = iota
	// RefType is &'lifetime mut Args[0].
	RefType
	// TupleType is (Args...).
	TupleType
	// SliceType is [Args[0]].
	SliceType
	// FuncType is fn(Args...) -> Ret.
	FuncType
)

// Type is a type annotation. The interpreter ignores it; the transpiler
// renders it.
type Type struct {
	diag.Ranging
	Kind     TypeKind
	Name     string
	Args     []*Type
	Ret      *Type
	Mutable  bool
	Lifetime string
}

// String renders the type in target syntax.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *Type) write(sb *strings.Builder) {
	writeList := func(ts []*Type) {
		for i, a := range ts {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.write(sb)
		}
	}
	switch t.Kind {
	case NamedType:
		sb.WriteString(t.Name)
		if len(t.Args) > 0 {
			sb.WriteByte('<')
			writeList(t.Args)
			sb.WriteByte('>')
		}
	case RefType:
		sb.WriteByte('&')
		if t.Lifetime != "" {
			sb.WriteString("'" + t.Lifetime + " ")
		}
		if t.Mutable {
			sb.WriteString("mut ")
		}
		t.Args[0].write(sb)
	case TupleType:
		sb.WriteByte('(')
		writeList(t.Args)
		if len(t.Args) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case SliceType:
		sb.WriteByte('[')
		t.Args[0].write(sb)
		sb.WriteByte(']')
	case FuncType:
		sb.WriteString("fn(")
		writeList(t.Args)
		sb.WriteByte(')')
		if t.Ret != nil {
			sb.WriteString(" -> ")
			t.Ret.write(sb)
		}
	}
}

// Named returns a NamedType with the given name and arguments.
func Named(name string, args ...*Type) *Type {
	return &Type{Kind: NamedType, Name: name, Args: args}
}
