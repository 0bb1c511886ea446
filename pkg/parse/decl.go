package parse

import (
	"strconv"
	"strings"

	"src.rook.sh/pkg/ast"
)

// decl parses an optionally attributed and modified declaration.
func (ps *parser) decl() ast.Expr {
	from := ps.peek().from
	attrs := ps.attributes()
	pub := false
	async := false
	for {
		switch {
		case ps.acceptKeyword("pub"):
			pub = true
			// pub(crate) and friends.
			if ps.isPunct("(") && ps.peekN(2).text == ")" {
				ps.next()
				ps.next()
				ps.next()
			}
			continue
		case ps.acceptKeyword("async"):
			async = true
			continue
		case ps.isKeyword("unsafe"), ps.isKeyword("const"):
			attrs = append(attrs, &ast.Attribute{Ranging: ps.peek().Range(), Name: ps.next().text})
			continue
		}
		break
	}
	switch {
	case ps.isKeyword("fn"), ps.isKeyword("fun"):
		f := ps.function(from)
		f.Pub, f.Async, f.Attributes = pub, async, attrs
		return f
	case ps.isKeyword("struct"):
		return ps.structDecl(from, pub, attrs)
	case ps.isKeyword("enum"):
		return ps.enumDecl(from, pub, attrs)
	case ps.isKeyword("trait"):
		return ps.traitDecl(from, pub)
	case ps.isKeyword("impl"):
		return ps.implDecl(from)
	}
	ps.errorHere(ps.unexpected("'fn'", "'struct'", "'enum'", "'trait'", "'impl'"))
	return nil
}

// attributes parses zero or more #[name(args)] forms.
func (ps *parser) attributes() []*ast.Attribute {
	var attrs []*ast.Attribute
	for ps.isPunct("#") {
		from := ps.next().from
		ps.expectPunct("[")
		attr := &ast.Attribute{Name: ps.path()}
		if ps.acceptPunct("(") {
			depth := 0
			var cur []string
			for {
				t := ps.peek()
				if t.kind == tEOF {
					ps.errorHere(ps.unexpected("')'"))
				}
				if t.kind == tPunct && depth == 0 && (t.text == ")" || t.text == ",") {
					if len(cur) > 0 {
						attr.Args = append(attr.Args, strings.Join(cur, " "))
						cur = nil
					}
					ps.next()
					if t.text == ")" {
						break
					}
					continue
				}
				if t.kind == tPunct {
					switch t.text {
					case "(", "[", "{":
						depth++
					case ")", "]", "}":
						depth--
					}
				}
				cur = append(cur, ps.src[t.from:t.to])
				ps.next()
			}
		}
		ps.expectPunct("]")
		attr.Ranging = ps.span(from)
		attrs = append(attrs, attr)
	}
	return attrs
}

func (ps *parser) typeParams() []string {
	var names []string
	if !ps.acceptPunct("<") {
		return nil
	}
	for !ps.isCloseAngle() {
		if ps.peek().kind == tLifetime {
			names = append(names, "'"+ps.next().text)
		} else {
			names = append(names, ps.ident())
		}
		// Bounds are accepted and dropped.
		if ps.acceptPunct(":") {
			ps.typ()
			for ps.acceptPunct("+") {
				ps.typ()
			}
		}
		if !ps.acceptPunct(",") {
			break
		}
	}
	ps.closeAngle()
	return names
}

func (ps *parser) function(from int) *ast.Function {
	ps.next() // fn or fun
	f := &ast.Function{Name: ps.ident()}
	f.TypeParams = ps.typeParams()
	ps.expectPunct("(")
	f.Params = ps.params(")")
	ps.expectPunct(")")
	if ps.acceptPunct("->") {
		f.ReturnType = ps.typ()
	}
	ps.whereClause()
	if ps.isPunct("{") {
		f.Body = ps.block()
	} else if ps.acceptPunct("=") {
		f.Body = ps.expr()
	} else if !ps.isPunct(";") {
		ps.errorHere(ps.unexpected("'{'", "';'"))
	}
	f.Ranging = ps.span(from)
	return f
}

func (ps *parser) whereClause() {
	if !ps.acceptKeyword("where") {
		return
	}
	for !ps.isPunct("{") && !ps.isPunct(";") && ps.peek().kind != tEOF {
		ps.next()
	}
}

// params parses a parameter list up to, but not including, the closing token.
func (ps *parser) params(close string) []*ast.Param {
	var params []*ast.Param
	for !ps.isPunct(close) {
		from := ps.peek().from
		p := &ast.Param{}
		switch {
		case ps.isPunct("&"):
			// &self, &mut self
			ps.next()
			ps.acceptKeyword("mut")
			p.Name = ps.ident()
		default:
			p.Mutable = ps.acceptKeyword("mut")
			p.Name = ps.ident()
			if ps.acceptPunct(":") {
				p.Type = ps.typ()
			}
		}
		p.Ranging = ps.span(from)
		params = append(params, p)
		if !ps.acceptPunct(",") {
			break
		}
	}
	return params
}

func (ps *parser) structDecl(from int, pub bool, attrs []*ast.Attribute) ast.Expr {
	ps.next()
	d := &ast.StructDecl{Name: ps.ident(), Pub: pub, Attributes: attrs}
	d.TypeParams = ps.typeParams()
	ps.whereClause()
	switch {
	case ps.acceptPunct(";"):
	case ps.acceptPunct("("):
		// Tuple struct: fields are named 0, 1, ...
		for i := 0; !ps.isPunct(")"); i++ {
			ffrom := ps.peek().from
			fpub := ps.acceptKeyword("pub")
			t := ps.typ()
			d.Fields = append(d.Fields, &ast.StructField{Ranging: ps.span(ffrom),
				Name: strconv.Itoa(i), Type: t, Pub: fpub})
			if !ps.acceptPunct(",") {
				break
			}
		}
		ps.expectPunct(")")
	default:
		ps.expectPunct("{")
		ps.nest++
		for !ps.isPunct("}") {
			ps.attributes()
			ffrom := ps.peek().from
			fpub := ps.acceptKeyword("pub")
			name := ps.ident()
			ps.expectPunct(":")
			t := ps.typ()
			d.Fields = append(d.Fields, &ast.StructField{Ranging: ps.span(ffrom),
				Name: name, Type: t, Pub: fpub})
			if !ps.acceptPunct(",") {
				break
			}
		}
		ps.nest--
		ps.expectPunct("}")
	}
	d.Ranging = ps.span(from)
	return d
}

func (ps *parser) enumDecl(from int, pub bool, attrs []*ast.Attribute) ast.Expr {
	ps.next()
	d := &ast.EnumDecl{Name: ps.ident(), Pub: pub, Attributes: attrs}
	d.TypeParams = ps.typeParams()
	ps.expectPunct("{")
	for !ps.isPunct("}") {
		ps.attributes()
		vfrom := ps.peek().from
		v := &ast.Variant{Name: ps.ident()}
		if ps.acceptPunct("(") {
			for !ps.isPunct(")") {
				v.Fields = append(v.Fields, ps.typ())
				if !ps.acceptPunct(",") {
					break
				}
			}
			ps.expectPunct(")")
		} else if ps.acceptPunct("{") {
			// Struct-like variants keep only the field types.
			for !ps.isPunct("}") {
				ps.ident()
				ps.expectPunct(":")
				v.Fields = append(v.Fields, ps.typ())
				if !ps.acceptPunct(",") {
					break
				}
			}
			ps.expectPunct("}")
		}
		if ps.acceptPunct("=") {
			ps.expr()
		}
		v.Ranging = ps.span(vfrom)
		d.Variants = append(d.Variants, v)
		if !ps.acceptPunct(",") {
			break
		}
	}
	ps.expectPunct("}")
	d.Ranging = ps.span(from)
	return d
}

func (ps *parser) traitDecl(from int, pub bool) ast.Expr {
	ps.next()
	d := &ast.TraitDecl{Name: ps.ident(), Pub: pub}
	ps.typeParams()
	ps.expectPunct("{")
	d.Methods = ps.methods()
	ps.expectPunct("}")
	d.Ranging = ps.span(from)
	return d
}

func (ps *parser) implDecl(from int) ast.Expr {
	ps.next()
	ps.typeParams()
	d := &ast.ImplDecl{}
	first := ps.typ().String()
	if ps.acceptKeyword("for") {
		d.Trait = first
		d.For = ps.typ().String()
	} else {
		d.For = first
	}
	ps.whereClause()
	ps.expectPunct("{")
	d.Methods = ps.methods()
	ps.expectPunct("}")
	d.Ranging = ps.span(from)
	return d
}

func (ps *parser) methods() []*ast.Function {
	var methods []*ast.Function
	for {
		for ps.acceptPunct(";") {
		}
		if ps.isPunct("}") || ps.peek().kind == tEOF {
			return methods
		}
		e := ps.decl()
		f, ok := e.(*ast.Function)
		if !ok {
			ps.fail(e, newError("", "method"))
		}
		methods = append(methods, f)
	}
}
