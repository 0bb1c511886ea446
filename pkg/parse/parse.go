// Package parse implements the Rook parser.
//
// The parser is a hand-written recursive-descent parser over a token slice.
// It stops at the first error. Errors found at the end of the source are
// marked as partial, which tells interactive front ends to ask for more input.
package parse

import (
	"bytes"
	"errors"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/diag"
)

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// Error is a parse error.
type Error = diag.Error

// ErrorType is the Type of all parse errors.
const ErrorType = "SyntaxError"

// Parse parses the given source as a program. The returned error always has
// type *Error if it is not nil.
func Parse(src Source) (prog *ast.Program, err error) {
	ps := &parser{srcName: src.Name, src: src.Code}
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(failure)
			if !ok {
				panic(r)
			}
			prog, err = nil, f.err
		}
	}()
	ps.toks = lex(ps, 0, len(src.Code))
	stmts := ps.stmts(tEOF, "")
	return &ast.Program{Ranging: diag.Ranging{From: 0, To: len(src.Code)}, Stmts: stmts}, nil
}

// ParseExpr parses a single expression, such as the argument of :type.
func ParseExpr(src Source) (ast.Expr, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	switch len(prog.Stmts) {
	case 0:
		return &ast.Literal{Kind: ast.UnitLit}, nil
	case 1:
		return prog.Stmts[0], nil
	default:
		return &ast.Block{Ranging: prog.Ranging, Exprs: prog.Stmts}, nil
	}
}

// IsPartial reports whether err is a parse error caused by the source ending
// early.
func IsPartial(err error) bool {
	for _, e := range diag.UnpackErrors(err) {
		if e.Type == ErrorType && e.Partial {
			return true
		}
	}
	return false
}

// GetError returns the parse error in err, or nil if err does not contain
// one.
func GetError(err error) *Error {
	var e *Error
	if errors.As(err, &e) && e.Type == ErrorType {
		return e
	}
	return nil
}

type failure struct{ err *Error }

// parser maintains the mutable state of parsing.
type parser struct {
	srcName string
	src     string
	toks    []token
	i       int
	// nest is the depth of enclosing parentheses and brackets, inside which
	// newlines do not end expressions.
	nest int
	// noStruct disables struct literals, in the heads of if, while, match
	// and for.
	noStruct bool
}

func (ps *parser) fail(r diag.Ranger, e error) {
	ps.failPartial(r, e, r.Range().From >= len(ps.src))
}

func (ps *parser) failPartial(r diag.Ranger, e error, partial bool) {
	panic(failure{&Error{
		Type:    ErrorType,
		Message: e.Error(),
		Context: diag.NewContext(ps.srcName, ps.src, r),
		Partial: partial,
	}})
}

func newError(text string, shouldbe ...string) error {
	if len(shouldbe) == 0 {
		return errors.New(text)
	}
	var buf bytes.Buffer
	if len(text) > 0 {
		buf.WriteString(text + ", ")
	}
	buf.WriteString("should be " + shouldbe[0])
	for i, opt := range shouldbe[1:] {
		if i == len(shouldbe)-2 {
			buf.WriteString(" or ")
		} else {
			buf.WriteString(", ")
		}
		buf.WriteString(opt)
	}
	return errors.New(buf.String())
}

func (ps *parser) peek() token     { return ps.toks[ps.i] }
func (ps *parser) peekN(n int) token {
	if ps.i+n < len(ps.toks) {
		return ps.toks[ps.i+n]
	}
	return ps.toks[len(ps.toks)-1]
}

func (ps *parser) next() token {
	t := ps.toks[ps.i]
	if t.kind != tEOF {
		ps.i++
	}
	return t
}

// prevEnd returns the end position of the last consumed token.
func (ps *parser) prevEnd() int {
	if ps.i == 0 {
		return 0
	}
	return ps.toks[ps.i-1].to
}

func (ps *parser) span(from int) diag.Ranging {
	return diag.Ranging{From: from, To: ps.prevEnd()}
}

func (ps *parser) isPunct(p string) bool {
	t := ps.peek()
	return t.kind == tPunct && t.text == p
}

func (ps *parser) isKeyword(kw string) bool {
	t := ps.peek()
	return t.kind == tIdent && !t.raw && t.text == kw
}

func isKeywordTok(t token, kw string) bool {
	return t.kind == tIdent && !t.raw && t.text == kw
}

func (ps *parser) acceptPunct(p string) bool {
	if ps.isPunct(p) {
		ps.next()
		return true
	}
	return false
}

func (ps *parser) acceptKeyword(kw string) bool {
	if ps.isKeyword(kw) {
		ps.next()
		return true
	}
	return false
}

func (ps *parser) errorHere(e error) {
	ps.fail(ps.peek(), e)
}

func (ps *parser) expectPunct(p string) token {
	if !ps.isPunct(p) {
		ps.errorHere(ps.unexpected("'" + p + "'"))
	}
	return ps.next()
}

func (ps *parser) expectKeyword(kw string) {
	if !ps.acceptKeyword(kw) {
		ps.errorHere(ps.unexpected("'" + kw + "'"))
	}
}

func (ps *parser) unexpected(shouldbe ...string) error {
	t := ps.peek()
	what := "unexpected " + describe(t)
	return newError(what, shouldbe...)
}

func describe(t token) string {
	switch t.kind {
	case tEOF:
		return "end of input"
	case tString, tFString:
		return "string"
	case tChar:
		return "character"
	case tInt, tFloat:
		return "number " + t.text
	}
	return "'" + t.text + "'"
}

// ident expects a non-keyword identifier and returns its name.
func (ps *parser) ident() string {
	t := ps.peek()
	if t.kind != tIdent || (!t.raw && keywords[t.text]) {
		ps.errorHere(ps.unexpected("identifier"))
	}
	ps.next()
	return t.text
}

func (ps *parser) isIdent() bool {
	t := ps.peek()
	return t.kind == tIdent && (t.raw || !keywords[t.text])
}

// stmts parses statements until the closing token: tEOF, or the punctuation
// close.
func (ps *parser) stmts(closeKind tokenKind, close string) []ast.Expr {
	var stmts []ast.Expr
	atClose := func() bool {
		t := ps.peek()
		if closeKind == tEOF {
			return t.kind == tEOF
		}
		return t.kind == tPunct && t.text == close || t.kind == tEOF
	}
	for {
		for ps.acceptPunct(";") {
		}
		if atClose() {
			return stmts
		}
		e := ps.stmt()
		stmts = append(stmts, e)
		if ps.acceptPunct(";") || atClose() || ps.peek().nl || endsWithBrace(e) {
			continue
		}
		ps.errorHere(ps.unexpected("';'", "newline"))
	}
}

// endsWithBrace reports whether e is a block-like construct that needs no
// separator after it.
func endsWithBrace(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Block, *ast.If, *ast.IfLet, *ast.Match, *ast.For, *ast.While, *ast.Loop,
		*ast.StructDecl, *ast.EnumDecl, *ast.TraitDecl, *ast.ImplDecl:
		return true
	case *ast.Function:
		return e.Body != nil
	}
	return false
}

func (ps *parser) stmt() ast.Expr {
	saveNest := ps.nest
	ps.nest = 0
	defer func() { ps.nest = saveNest }()

	switch {
	case ps.isKeyword("let"):
		return ps.let()
	case ps.isKeyword("const") && !ps.isFnAhead(1):
		return ps.constDecl()
	case ps.isPunct("#"), ps.isKeyword("pub"), ps.isKeyword("fn"), ps.isKeyword("fun"),
		ps.isKeyword("struct"), ps.isKeyword("enum"), ps.isKeyword("trait"), ps.isKeyword("impl"),
		ps.isKeyword("async") && ps.isFnAhead(1),
		ps.isKeyword("unsafe") && ps.isFnAhead(1),
		ps.isKeyword("const") && ps.isFnAhead(1):
		return ps.decl()
	}
	return ps.expr()
}

func (ps *parser) isFnAhead(n int) bool {
	for ; ; n++ {
		t := ps.peekN(n)
		switch {
		case isKeywordTok(t, "fn"), isKeywordTok(t, "fun"):
			return true
		case isKeywordTok(t, "async"), isKeywordTok(t, "unsafe"), isKeywordTok(t, "const"), isKeywordTok(t, "pub"):
			continue
		default:
			return false
		}
	}
}

func (ps *parser) let() ast.Expr {
	from := ps.next().from
	mutable := ps.acceptKeyword("mut")
	pat := ps.pattern()
	var typ *ast.Type
	if ps.acceptPunct(":") {
		typ = ps.typ()
	}
	ps.expectPunct("=")
	value := ps.expr()
	var body ast.Expr
	if ps.acceptKeyword("in") {
		body = ps.expr()
	}
	return &ast.Let{Ranging: ps.span(from), Pattern: pat, Type: typ, Value: value,
		Mutable: mutable, Body: body}
}

func (ps *parser) constDecl() ast.Expr {
	from := ps.next().from
	nameTok := ps.peek()
	name := ps.ident()
	var typ *ast.Type
	if ps.acceptPunct(":") {
		typ = ps.typ()
	}
	ps.expectPunct("=")
	value := ps.expr()
	return &ast.Let{Ranging: ps.span(from),
		Pattern: &ast.IdentPat{Ranging: nameTok.Range(), Name: name},
		Type:    typ, Value: value, Const: true}
}
