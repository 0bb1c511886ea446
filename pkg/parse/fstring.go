package parse

import (
	"strings"
	"unicode/utf8"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/diag"
)

var (
	errFStringBrace = newError("unmatched '}' in f-string", "'}}'")
	errFStringOpen  = newError("'{' not closed in f-string")
	errFStringEmpty = newError("empty expression in f-string")
)

// fstring splits the body of an f-string token into text and expression
// parts. Expressions are parsed in place, so their ranges point into the
// original source.
func (ps *parser) fstring(t token) ast.Expr {
	bodyFrom := t.from + 2
	bodyTo := t.to - 1
	var parts []ast.StringPart
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, ast.StringPart{Text: text.String()})
			text.Reset()
		}
	}
	i := bodyFrom
	for i < bodyTo {
		c := ps.src[i]
		switch {
		case c == '{' && i+1 < bodyTo && ps.src[i+1] == '{':
			text.WriteByte('{')
			i += 2
		case c == '}' && i+1 < bodyTo && ps.src[i+1] == '}':
			text.WriteByte('}')
			i += 2
		case c == '}':
			ps.fail(diag.Ranging{From: i, To: i + 1}, errFStringBrace)
		case c == '{':
			end := matchBrace(ps.src, i, bodyTo)
			if end < 0 {
				ps.fail(diag.Ranging{From: i, To: bodyTo}, errFStringOpen)
			}
			flush()
			exprEnd, spec := splitSpec(ps.src, i+1, end)
			if strings.TrimSpace(ps.src[i+1:exprEnd]) == "" {
				ps.fail(diag.Ranging{From: i, To: end + 1}, errFStringEmpty)
			}
			parts = append(parts, ast.StringPart{Expr: ps.subExpr(i+1, exprEnd), Spec: spec})
			i = end + 1
		case c == '\\':
			lx := &lexer{ps: ps, src: ps.src, pos: i, end: bodyTo}
			text.WriteRune(lx.escape(t.from))
			i = lx.pos
		default:
			r, size := utf8.DecodeRuneInString(ps.src[i:bodyTo])
			text.WriteRune(r)
			i += size
		}
	}
	flush()
	return &ast.StringInterp{Ranging: t.Range(), Parts: parts}
}

// matchBrace returns the index of the '}' matching the '{' at i, skipping
// nested braces and string literals, or -1.
func matchBrace(src string, i, end int) int {
	depth := 0
	for j := i; j < end; j++ {
		switch src[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		case '\'':
			if j+2 < end && src[j+2] == '\'' {
				j += 2
			}
		}
	}
	return -1
}

// splitSpec splits "expr:spec" inside an interpolation. A colon is a format
// spec separator only at bracket depth zero and not as part of "::".
func splitSpec(src string, from, to int) (exprEnd int, spec string) {
	depth := 0
	for j := from; j < to; j++ {
		switch src[j] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth > 0 {
				continue
			}
			if j+1 < to && src[j+1] == ':' {
				j++
				continue
			}
			return j, src[j+1 : to]
		}
	}
	return to, ""
}

// subExpr parses the source range [from, to) as a single expression.
func (ps *parser) subExpr(from, to int) ast.Expr {
	sub := &parser{srcName: ps.srcName, src: ps.src, nest: 1}
	sub.toks = lex(sub, from, to)
	e := sub.expr()
	if t := sub.peek(); t.kind != tEOF {
		sub.fail(t, sub.unexpected("'}'"))
	}
	return e
}
