package parse

import (
	"src.rook.sh/pkg/ast"
)

// typ parses a type annotation.
func (ps *parser) typ() *ast.Type {
	from := ps.peek().from
	t := ps.typ1()
	t.Ranging = ps.span(from)
	return t
}

func (ps *parser) typ1() *ast.Type {
	switch {
	case ps.isPunct("&"), ps.isPunct("&&"):
		double := ps.next().text == "&&"
		t := &ast.Type{Kind: ast.RefType}
		if ps.peek().kind == tLifetime {
			t.Lifetime = ps.next().text
		}
		t.Mutable = ps.acceptKeyword("mut")
		t.Args = []*ast.Type{ps.typ()}
		if double {
			return &ast.Type{Kind: ast.RefType, Args: []*ast.Type{t}}
		}
		return t
	case ps.acceptPunct("("):
		t := &ast.Type{Kind: ast.TupleType}
		for !ps.isPunct(")") {
			t.Args = append(t.Args, ps.typ())
			if !ps.acceptPunct(",") {
				break
			}
		}
		ps.expectPunct(")")
		return t
	case ps.acceptPunct("["):
		t := &ast.Type{Kind: ast.SliceType, Args: []*ast.Type{ps.typ()}}
		if ps.acceptPunct(";") {
			ps.expr()
		}
		ps.expectPunct("]")
		return t
	case ps.isKeyword("fn"):
		ps.next()
		t := &ast.Type{Kind: ast.FuncType}
		ps.expectPunct("(")
		for !ps.isPunct(")") {
			t.Args = append(t.Args, ps.typ())
			if !ps.acceptPunct(",") {
				break
			}
		}
		ps.expectPunct(")")
		if ps.acceptPunct("->") {
			t.Ret = ps.typ()
		}
		return t
	case ps.isKeyword("impl"), ps.isKeyword("dyn"):
		kw := ps.next().text
		inner := ps.typ()
		for ps.acceptPunct("+") {
			ps.typ()
		}
		return &ast.Type{Kind: ast.NamedType, Name: kw + " " + inner.String()}
	}
	t := &ast.Type{Kind: ast.NamedType, Name: ps.path()}
	if ps.acceptPunct("<") {
		for !ps.isCloseAngle() {
			if ps.peek().kind == tLifetime {
				t.Args = append(t.Args, &ast.Type{Kind: ast.NamedType, Name: "'" + ps.next().text})
			} else {
				t.Args = append(t.Args, ps.typ())
			}
			if !ps.acceptPunct(",") {
				break
			}
		}
		ps.closeAngle()
	}
	// Fn(A) -> B sugar in bounds.
	if (t.Name == "Fn" || t.Name == "FnMut" || t.Name == "FnOnce") && ps.acceptPunct("(") {
		ft := &ast.Type{Kind: ast.FuncType}
		for !ps.isPunct(")") {
			ft.Args = append(ft.Args, ps.typ())
			if !ps.acceptPunct(",") {
				break
			}
		}
		ps.expectPunct(")")
		if ps.acceptPunct("->") {
			ft.Ret = ps.typ()
		}
		return ft
	}
	return t
}

func (ps *parser) isCloseAngle() bool {
	return ps.isPunct(">") || ps.isPunct(">>")
}

// closeAngle consumes one '>', splitting a '>>' token when closing nested
// generic arguments.
func (ps *parser) closeAngle() {
	if ps.isPunct(">>") {
		t := &ps.toks[ps.i]
		t.text = ">"
		t.from++
		return
	}
	ps.expectPunct(">")
}

// path parses a name with optional :: separators, such as std::env::var.
// Self and self are accepted as path segments.
func (ps *parser) path() string {
	name := ps.pathSegment()
	for ps.isPunct("::") && ps.peekN(1).kind == tIdent {
		ps.next()
		name += "::" + ps.pathSegment()
	}
	return name
}

func (ps *parser) pathSegment() string {
	t := ps.peek()
	if t.kind == tIdent && (t.raw || !keywords[t.text]) {
		ps.next()
		return t.text
	}
	ps.errorHere(ps.unexpected("identifier"))
	return ""
}
