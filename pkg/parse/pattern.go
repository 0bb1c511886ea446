package parse

import (
	"strings"

	"src.rook.sh/pkg/ast"
)

// pattern parses a pattern, including or-patterns.
func (ps *parser) pattern() ast.Pattern {
	from := ps.peek().from
	ps.acceptPunct("|")
	p := ps.pattern1()
	if !ps.isPunct("|") {
		return p
	}
	alts := []ast.Pattern{p}
	for ps.acceptPunct("|") {
		alts = append(alts, ps.pattern1())
	}
	return &ast.OrPat{Ranging: ps.span(from), Alts: alts}
}

func (ps *parser) pattern1() ast.Pattern {
	from := ps.peek().from
	p := ps.primaryPattern()
	if lp, ok := p.(*ast.LiteralPat); ok && (ps.isPunct("..=") || ps.isPunct("..") || ps.isPunct("...")) {
		inclusive := ps.next().text != ".."
		end := ps.primaryPattern()
		return &ast.RangePat{Ranging: ps.span(from), Start: lp, End: end, Inclusive: inclusive}
	}
	return p
}

func (ps *parser) patterns(close string) []ast.Pattern {
	elems := []ast.Pattern{}
	for !ps.isPunct(close) {
		elems = append(elems, ps.pattern())
		if !ps.acceptPunct(",") {
			break
		}
	}
	ps.expectPunct(close)
	return elems
}

func (ps *parser) primaryPattern() ast.Pattern {
	t := ps.peek()
	from := t.from
	switch t.kind {
	case tInt, tFloat, tString, tChar:
		return &ast.LiteralPat{Ranging: t.Range(), Lit: ps.literal()}
	case tPunct:
		switch t.text {
		case "-":
			ps.next()
			n := ps.peek()
			if n.kind != tInt && n.kind != tFloat {
				ps.errorHere(ps.unexpected("number"))
			}
			lit := ps.literal()
			lit.Int, lit.Float = -lit.Int, -lit.Float
			lit.Ranging = ps.span(from)
			return &ast.LiteralPat{Ranging: lit.Ranging, Lit: lit}
		case "(":
			ps.next()
			if ps.acceptPunct(")") {
				lit := &ast.Literal{Ranging: ps.span(from), Kind: ast.UnitLit}
				return &ast.LiteralPat{Ranging: lit.Ranging, Lit: lit}
			}
			first := ps.pattern()
			if ps.acceptPunct(")") {
				return first
			}
			ps.expectPunct(",")
			elems := append([]ast.Pattern{first}, ps.patterns(")")...)
			return &ast.TuplePat{Ranging: ps.span(from), Elems: elems}
		case "[":
			ps.next()
			return &ast.ListPat{Ranging: ps.span(from), Elems: ps.patterns("]")}
		case "..":
			ps.next()
			rest := &ast.RestPat{}
			if ps.isIdent() && !ps.peek().nl {
				rest.Name = ps.ident()
			}
			rest.Ranging = ps.span(from)
			return rest
		case "{":
			return ps.structPattern(from, "")
		case "&":
			ps.next()
			return ps.primaryPattern()
		}
	case tIdent:
		switch {
		case t.text == "_" && !t.raw:
			ps.next()
			return &ast.WildcardPat{Ranging: t.Range()}
		case isKeywordTok(t, "true"), isKeywordTok(t, "false"), isKeywordTok(t, "nil"):
			return &ast.LiteralPat{Ranging: t.Range(), Lit: ps.literal()}
		case isKeywordTok(t, "mut"):
			ps.next()
			name := ps.ident()
			return &ast.IdentPat{Ranging: ps.span(from), Name: name, Mutable: true}
		}
		name := ps.path()
		switch {
		case ps.isPunct("@"):
			ps.next()
			if ps.acceptPunct("..") {
				return &ast.RestPat{Ranging: ps.span(from), Name: name}
			}
			// name @ subpattern binds the whole value; only the rest form is
			// supported.
			ps.errorHere(ps.unexpected("'..'"))
		case ps.isPunct("("):
			ps.next()
			enum, variant := splitPath(name)
			return &ast.EnumPat{Ranging: ps.span(from), Enum: enum, Variant: variant,
				Elems: ps.patterns(")")}
		case ps.isPunct("{"):
			return ps.structPattern(from, name)
		case strings.Contains(name, "::") || name == "None":
			enum, variant := splitPath(name)
			return &ast.EnumPat{Ranging: ps.span(from), Enum: enum, Variant: variant}
		}
		return &ast.IdentPat{Ranging: ps.span(from), Name: name}
	}
	ps.errorHere(ps.unexpected("pattern"))
	return nil
}

func (ps *parser) structPattern(from int, name string) ast.Pattern {
	ps.expectPunct("{")
	p := &ast.StructPat{Name: name}
	for !ps.isPunct("}") {
		if ps.acceptPunct("..") {
			p.HasRest = true
			break
		}
		ffrom := ps.peek().from
		ps.acceptKeyword("mut")
		fp := &ast.FieldPat{Name: ps.ident()}
		if ps.acceptPunct(":") {
			fp.Pattern = ps.pattern()
		}
		fp.Ranging = ps.span(ffrom)
		p.Fields = append(p.Fields, fp)
		if !ps.acceptPunct(",") {
			break
		}
	}
	ps.expectPunct("}")
	p.Ranging = ps.span(from)
	return p
}

// splitPath splits Enum::Variant. For a bare name, enum is empty.
func splitPath(name string) (enum, variant string) {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[:i], name[i+2:]
	}
	return "", name
}
