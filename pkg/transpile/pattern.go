package transpile

import "src.rook.sh/pkg/ast"

func (t *Transpiler) patterns(ps []ast.Pattern) {
	for i, p := range ps {
		if i > 0 {
			t.w(", ")
		}
		t.pattern(p)
	}
}

func (t *Transpiler) pattern(p ast.Pattern) {
	switch p := p.(type) {
	case *ast.WildcardPat:
		t.w("_")
	case *ast.IdentPat:
		if p.Mutable {
			t.w("mut ")
		}
		t.w(Ident(p.Name))
	case *ast.LiteralPat:
		t.w(literal(p.Lit))
	case *ast.TuplePat:
		t.w("(")
		t.patterns(p.Elems)
		if len(p.Elems) == 1 {
			t.w(",")
		}
		t.w(")")
	case *ast.ListPat:
		t.w("[")
		t.patterns(p.Elems)
		t.w("]")
	case *ast.StructPat:
		t.w(Ident(p.Name) + " { ")
		for i, f := range p.Fields {
			if i > 0 {
				t.w(", ")
			}
			t.w(Ident(f.Name))
			if f.Pattern != nil {
				t.w(": ")
				t.pattern(f.Pattern)
			}
		}
		if p.HasRest {
			if len(p.Fields) > 0 {
				t.w(", ")
			}
			t.w("..")
		}
		t.w(" }")
	case *ast.RangePat:
		t.pattern(p.Start)
		if p.Inclusive {
			t.w("..=")
		} else {
			t.w("..")
		}
		t.pattern(p.End)
	case *ast.OrPat:
		for i, a := range p.Alts {
			if i > 0 {
				t.w(" | ")
			}
			t.pattern(a)
		}
	case *ast.EnumPat:
		if p.Enum != "" {
			t.w(Ident(p.Enum) + "::")
		}
		t.w(Ident(p.Variant))
		if p.Elems != nil {
			t.w("(")
			t.patterns(p.Elems)
			t.w(")")
		}
	case *ast.RestPat:
		if p.Name != "" {
			t.w(Ident(p.Name) + " @ ")
		}
		t.w("..")
	default:
		t.fail("pattern", p)
	}
}
