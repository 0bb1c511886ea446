package parse

import (
	"unicode"
	"unicode/utf8"

	"src.rook.sh/pkg/ast"
)

var assignOps = map[string]ast.BinaryOp{
	"=": ast.NoOp, "+=": ast.Add, "-=": ast.Sub, "*=": ast.Mul, "/=": ast.Div, "%=": ast.Rem,
}

// Binary operator precedence levels, lowest first. Range and assignment are
// handled separately.
var binaryLevels = []map[string]ast.BinaryOp{
	{"||": ast.Or},
	{"&&": ast.And},
	{"==": ast.Eq, "!=": ast.Ne, "<": ast.Lt, "<=": ast.Le, ">": ast.Gt, ">=": ast.Ge},
	{"|": ast.BitOr},
	{"^": ast.BitXor},
	{"&": ast.BitAnd},
	{"<<": ast.Shl, ">>": ast.Shr},
	{"+": ast.Add, "-": ast.Sub},
	{"*": ast.Mul, "/": ast.Div, "%": ast.Rem},
}

// expr parses an expression, including assignment.
func (ps *parser) expr() ast.Expr {
	from := ps.peek().from
	lhs := ps.rangeExpr()
	t := ps.peek()
	if op, ok := assignOps[t.text]; ok && t.kind == tPunct && ps.continues() {
		switch lhs.(type) {
		case *ast.Ident, *ast.Index, *ast.FieldAccess:
		default:
			ps.fail(lhs, newError("invalid assignment target"))
		}
		ps.next()
		rhs := ps.expr()
		return &ast.Assign{Ranging: ps.span(from), Op: op, Target: lhs, Value: rhs}
	}
	return lhs
}

// continues reports whether the next token may continue the current
// expression. Outside brackets, an operator at the start of a line starts a
// new statement instead.
func (ps *parser) continues() bool {
	return ps.nest > 0 || !ps.peek().nl
}

func (ps *parser) rangeExpr() ast.Expr {
	from := ps.peek().from
	start := ps.binary(0)
	if (ps.isPunct("..") || ps.isPunct("..=")) && ps.continues() {
		inclusive := ps.next().text == "..="
		end := ps.binary(0)
		return &ast.Range{Ranging: ps.span(from), Start: start, End: end, Inclusive: inclusive}
	}
	return start
}

func (ps *parser) binary(level int) ast.Expr {
	if level == len(binaryLevels) {
		return ps.cast()
	}
	from := ps.peek().from
	lhs := ps.binary(level + 1)
	for {
		t := ps.peek()
		op, ok := binaryLevels[level][t.text]
		if !ok || t.kind != tPunct || !ps.continues() {
			return lhs
		}
		ps.next()
		rhs := ps.binary(level + 1)
		lhs = &ast.Binary{Ranging: ps.span(from), Op: op, Left: lhs, Right: rhs}
	}
}

func (ps *parser) cast() ast.Expr {
	from := ps.peek().from
	e := ps.unary()
	for ps.isKeyword("as") && ps.continues() {
		ps.next()
		e = &ast.Cast{Ranging: ps.span(from), Expr: e, Type: ps.typ()}
	}
	return e
}

func (ps *parser) unary() ast.Expr {
	t := ps.peek()
	from := t.from
	var op ast.UnaryOp
	switch {
	case t.kind == tPunct && t.text == "-":
		op = ast.Neg
	case t.kind == tPunct && t.text == "!":
		op = ast.Not
	case t.kind == tPunct && t.text == "~":
		op = ast.BitNot
	case t.kind == tPunct && t.text == "&":
		op = ast.Ref
	case t.kind == tPunct && t.text == "*":
		op = ast.Deref
	case isKeywordTok(t, "await"):
		ps.next()
		e := ps.unary()
		return &ast.Await{Ranging: ps.span(from), Expr: e}
	default:
		return ps.power()
	}
	ps.next()
	if op == ast.Ref {
		ps.acceptKeyword("mut")
	}
	operand := ps.unary()
	// Fold negative numeric literals.
	if lit, ok := operand.(*ast.Literal); ok && op == ast.Neg {
		switch lit.Kind {
		case ast.IntLit:
			return &ast.Literal{Ranging: ps.span(from), Kind: ast.IntLit, Int: -lit.Int}
		case ast.FloatLit:
			return &ast.Literal{Ranging: ps.span(from), Kind: ast.FloatLit, Float: -lit.Float}
		}
	}
	return &ast.Unary{Ranging: ps.span(from), Op: op, Operand: operand}
}

// power parses a ** b, which is right-associative and binds tighter than
// unary operators on its left.
func (ps *parser) power() ast.Expr {
	from := ps.peek().from
	base := ps.postfix()
	if ps.isPunct("**") && ps.continues() {
		ps.next()
		exp := ps.unary()
		return &ast.Binary{Ranging: ps.span(from), Op: ast.Pow, Left: base, Right: exp}
	}
	return base
}

func (ps *parser) postfix() ast.Expr {
	from := ps.peek().from
	e := ps.primary()
	for {
		t := ps.peek()
		switch {
		case t.kind == tPunct && t.text == "(" && !t.nl:
			ps.next()
			args := ps.args(")")
			e = &ast.Call{Ranging: ps.span(from), Callee: e, Args: args}
		case t.kind == tPunct && t.text == "[" && !t.nl:
			ps.next()
			ps.nest++
			idx := ps.expr()
			ps.nest--
			ps.expectPunct("]")
			e = &ast.Index{Ranging: ps.span(from), Object: e, Index: idx}
		case t.kind == tPunct && t.text == "?" && ps.continues():
			ps.next()
			e = &ast.Try{Ranging: ps.span(from), Expr: e}
		case t.kind == tPunct && t.text == ".":
			// Method chains may continue on the next line.
			ps.next()
			n := ps.peek()
			switch {
			case isKeywordTok(n, "await"):
				ps.next()
				e = &ast.Await{Ranging: ps.span(from), Expr: e}
			case n.kind == tInt:
				ps.next()
				e = &ast.FieldAccess{Ranging: ps.span(from), Object: e, Field: n.text}
			default:
				name := ps.ident()
				if ps.isPunct("::") && ps.peekN(1).text == "<" {
					ps.next()
					ps.next()
					for !ps.isCloseAngle() {
						ps.typ()
						if !ps.acceptPunct(",") {
							break
						}
					}
					ps.closeAngle()
				}
				if ps.isPunct("(") {
					ps.next()
					args := ps.args(")")
					e = &ast.MethodCall{Ranging: ps.span(from), Receiver: e, Method: name, Args: args}
				} else {
					e = &ast.FieldAccess{Ranging: ps.span(from), Object: e, Field: name}
				}
			}
		default:
			return e
		}
	}
}

// args parses comma-separated expressions and the closing token.
func (ps *parser) args(close string) []ast.Expr {
	ps.nest++
	saveNoStruct := ps.noStruct
	ps.noStruct = false
	var args []ast.Expr
	for !ps.isPunct(close) {
		args = append(args, ps.expr())
		if !ps.acceptPunct(",") {
			break
		}
	}
	ps.nest--
	ps.noStruct = saveNoStruct
	ps.expectPunct(close)
	return args
}

func (ps *parser) literal() *ast.Literal {
	t := ps.next()
	lit := &ast.Literal{Ranging: t.Range()}
	switch {
	case t.kind == tInt:
		lit.Kind, lit.Int = ast.IntLit, t.intVal
	case t.kind == tFloat:
		lit.Kind, lit.Float = ast.FloatLit, t.floatVal
	case t.kind == tString:
		lit.Kind, lit.Str = ast.StringLit, t.text
	case t.kind == tChar:
		lit.Kind, lit.Char = ast.CharLit, t.char
	case isKeywordTok(t, "true"), isKeywordTok(t, "false"):
		lit.Kind, lit.Bool = ast.BoolLit, t.text == "true"
	case isKeywordTok(t, "nil"):
		lit.Kind = ast.NilLit
	default:
		ps.fail(t, newError("", "literal"))
	}
	return lit
}

func (ps *parser) primary() ast.Expr {
	t := ps.peek()
	from := t.from
	switch t.kind {
	case tEOF:
		ps.errorHere(ps.unexpected("expression"))
	case tInt, tFloat, tString, tChar:
		return ps.literal()
	case tFString:
		ps.next()
		return ps.fstring(t)
	case tLifetime:
		// Loop labels are accepted and ignored.
		ps.next()
		ps.expectPunct(":")
		return ps.primary()
	case tPunct:
		switch t.text {
		case "(":
			return ps.paren()
		case "[":
			ps.next()
			elems := ps.args("]")
			return &ast.List{Ranging: ps.span(from), Elems: elems}
		case "{":
			if ps.isObjectAhead() {
				return ps.object()
			}
			return ps.block()
		case "|", "||":
			return ps.lambda()
		case "#":
			return ps.decl()
		}
	case tIdent:
		if t.raw || !keywords[t.text] {
			return ps.identLike()
		}
		switch t.text {
		case "true", "false", "nil":
			return ps.literal()
		case "if":
			return ps.ifExpr()
		case "match":
			return ps.match()
		case "for":
			return ps.forExpr()
		case "while":
			return ps.while()
		case "loop":
			ps.next()
			body := ps.block()
			return &ast.Loop{Ranging: ps.span(from), Body: body}
		case "let":
			return ps.let()
		case "const":
			if ps.isFnAhead(1) {
				return ps.decl()
			}
			return ps.constDecl()
		case "fn", "fun", "pub", "struct", "enum", "trait", "impl":
			return ps.decl()
		case "async", "unsafe":
			if ps.isFnAhead(1) {
				return ps.decl()
			}
			ps.next()
			return ps.block()
		case "move":
			ps.next()
			return ps.lambda()
		case "return":
			ps.next()
			var v ast.Expr
			if ps.startsExpr() {
				v = ps.expr()
			}
			return &ast.Return{Ranging: ps.span(from), Value: v}
		case "break":
			ps.next()
			if ps.peek().kind == tLifetime {
				ps.next()
			}
			var v ast.Expr
			if ps.startsExpr() {
				v = ps.expr()
			}
			return &ast.Break{Ranging: ps.span(from), Value: v}
		case "continue":
			ps.next()
			if ps.peek().kind == tLifetime {
				ps.next()
			}
			return &ast.Continue{Ranging: ps.span(from)}
		}
	}
	ps.errorHere(ps.unexpected("expression"))
	return nil
}

// startsExpr reports whether the next token can start an operand of return
// or break on the same line.
func (ps *parser) startsExpr() bool {
	t := ps.peek()
	if t.nl && ps.nest == 0 {
		return false
	}
	switch t.kind {
	case tEOF:
		return false
	case tPunct:
		switch t.text {
		case ";", "}", ")", "]", ",", "=>":
			return false
		}
	case tIdent:
		if !t.raw && (t.text == "else" || t.text == "in") {
			return false
		}
	}
	return true
}

func (ps *parser) identLike() ast.Expr {
	from := ps.peek().from
	name := ps.path()
	// Turbofish: f::<T>(x).
	if ps.isPunct("::") && ps.peekN(1).text == "<" {
		ps.next()
		ps.next()
		for !ps.isCloseAngle() {
			ps.typ()
			if !ps.acceptPunct(",") {
				break
			}
		}
		ps.closeAngle()
	}
	if ps.isPunct("!") && !ps.peek().nl {
		if n := ps.peekN(1); n.kind == tPunct && (n.text == "(" || n.text == "[" || n.text == "{") {
			ps.next()
			open := ps.next().text
			args := ps.args(map[string]string{"(": ")", "[": "]", "{": "}"}[open])
			return &ast.Macro{Ranging: ps.span(from), Name: name, Args: args}
		}
	}
	if ps.isPunct("{") && !ps.noStruct && isTypeName(name) && ps.isStructLitAhead() {
		fields := ps.objectFields()
		return &ast.StructLit{Ranging: ps.span(from), Name: name, Fields: fields}
	}
	return &ast.Ident{Ranging: ps.span(from), Name: name}
}

// isTypeName reports whether the last segment of name starts with an upper
// case letter.
func isTypeName(name string) bool {
	_, last := splitPath(name)
	r, _ := utf8.DecodeRuneInString(last)
	return unicode.IsUpper(r)
}

// isStructLitAhead reports whether the '{' at the current position opens a
// struct literal body: "{}", "{ name:", "{ name,", "{ name }" or "{ ..".
func (ps *parser) isStructLitAhead() bool {
	n1, n2 := ps.peekN(1), ps.peekN(2)
	if n1.kind == tPunct && (n1.text == "}" || n1.text == "..") {
		return true
	}
	return n1.kind == tIdent && n2.kind == tPunct && (n2.text == ":" || n2.text == "," || n2.text == "}")
}

// isObjectAhead reports whether the '{' at the current position opens an
// object literal: "{ name:" or "{ "string":". An empty {} is a block.
func (ps *parser) isObjectAhead() bool {
	n1, n2 := ps.peekN(1), ps.peekN(2)
	return (n1.kind == tIdent || n1.kind == tString) && n2.kind == tPunct && n2.text == ":"
}

func (ps *parser) object() ast.Expr {
	from := ps.peek().from
	fields := ps.objectFields()
	return &ast.Object{Ranging: ps.span(from), Fields: fields}
}

func (ps *parser) objectFields() []*ast.ObjectField {
	ps.expectPunct("{")
	ps.nest++
	saveNoStruct := ps.noStruct
	ps.noStruct = false
	var fields []*ast.ObjectField
	for !ps.isPunct("}") {
		from := ps.peek().from
		if ps.acceptPunct("..") {
			// Struct update syntax is not supported; skip the base.
			ps.expr()
			break
		}
		var key string
		if ps.peek().kind == tString {
			key = ps.next().text
		} else {
			key = ps.ident()
		}
		var value ast.Expr
		if ps.acceptPunct(":") {
			value = ps.expr()
		} else {
			value = &ast.Ident{Ranging: ps.span(from), Name: key}
		}
		fields = append(fields, &ast.ObjectField{Ranging: ps.span(from), Key: key, Value: value})
		if !ps.acceptPunct(",") {
			break
		}
	}
	ps.nest--
	ps.noStruct = saveNoStruct
	ps.expectPunct("}")
	return fields
}

func (ps *parser) paren() ast.Expr {
	from := ps.next().from
	if ps.acceptPunct(")") {
		return &ast.Literal{Ranging: ps.span(from), Kind: ast.UnitLit}
	}
	ps.nest++
	saveNoStruct := ps.noStruct
	ps.noStruct = false
	first := ps.expr()
	if ps.acceptPunct(")") {
		ps.nest--
		ps.noStruct = saveNoStruct
		return first
	}
	ps.expectPunct(",")
	ps.nest--
	ps.noStruct = saveNoStruct
	rest := ps.args(")")
	return &ast.Tuple{Ranging: ps.span(from), Elems: append([]ast.Expr{first}, rest...)}
}

// block parses { stmts }.
func (ps *parser) block() *ast.Block {
	from := ps.expectPunct("{").from
	saveNest, saveNoStruct := ps.nest, ps.noStruct
	ps.nest, ps.noStruct = 0, false
	exprs := ps.stmts(tPunct, "}")
	ps.nest, ps.noStruct = saveNest, saveNoStruct
	ps.expectPunct("}")
	return &ast.Block{Ranging: ps.span(from), Exprs: exprs}
}

func (ps *parser) lambda() ast.Expr {
	from := ps.peek().from
	var params []*ast.Param
	if !ps.acceptPunct("||") {
		ps.expectPunct("|")
		params = ps.params("|")
		ps.expectPunct("|")
	}
	if ps.acceptPunct("->") {
		ps.typ()
	}
	body := ps.expr()
	return &ast.Lambda{Ranging: ps.span(from), Params: params, Body: body}
}

// cond parses the head of if, while or match, where struct literals are not
// allowed.
func (ps *parser) cond() ast.Expr {
	save := ps.noStruct
	ps.noStruct = true
	e := ps.expr()
	ps.noStruct = save
	return e
}

func (ps *parser) ifExpr() ast.Expr {
	from := ps.next().from
	var e ast.Expr
	if ps.acceptKeyword("let") {
		pat := ps.pattern()
		ps.expectPunct("=")
		value := ps.cond()
		then := ps.block()
		n := &ast.IfLet{Pattern: pat, Value: value, Then: then, Else: ps.elseBranch()}
		n.Ranging = ps.span(from)
		e = n
	} else {
		c := ps.cond()
		then := ps.block()
		n := &ast.If{Cond: c, Then: then, Else: ps.elseBranch()}
		n.Ranging = ps.span(from)
		e = n
	}
	return e
}

func (ps *parser) elseBranch() ast.Expr {
	if !ps.acceptKeyword("else") {
		return nil
	}
	if ps.isKeyword("if") {
		return ps.ifExpr()
	}
	return ps.block()
}

func (ps *parser) match() ast.Expr {
	from := ps.next().from
	scrutinee := ps.cond()
	ps.expectPunct("{")
	saveNest := ps.nest
	ps.nest = 0
	var arms []*ast.MatchArm
	for !ps.isPunct("}") {
		afrom := ps.peek().from
		arm := &ast.MatchArm{Pattern: ps.pattern()}
		if ps.acceptKeyword("if") {
			arm.Guard = ps.expr()
		}
		ps.expectPunct("=>")
		arm.Body = ps.expr()
		arm.Ranging = ps.span(afrom)
		arms = append(arms, arm)
		if ps.acceptPunct(",") {
			continue
		}
		if _, isBlock := arm.Body.(*ast.Block); !isBlock && !ps.isPunct("}") && !ps.peek().nl {
			ps.errorHere(ps.unexpected("','", "'}'"))
		}
	}
	ps.nest = saveNest
	ps.expectPunct("}")
	return &ast.Match{Ranging: ps.span(from), Scrutinee: scrutinee, Arms: arms}
}

func (ps *parser) forExpr() ast.Expr {
	from := ps.next().from
	pat := ps.pattern()
	ps.expectKeyword("in")
	iter := ps.cond()
	body := ps.block()
	return &ast.For{Ranging: ps.span(from), Pattern: pat, Iter: iter, Body: body}
}

func (ps *parser) while() ast.Expr {
	from := ps.next().from
	if ps.acceptKeyword("let") {
		// while let p = e { body } is sugar for loop { if let ... else break }.
		pat := ps.pattern()
		ps.expectPunct("=")
		value := ps.cond()
		body := ps.block()
		r := ps.span(from)
		ifLet := &ast.IfLet{Ranging: r, Pattern: pat, Value: value, Then: body,
			Else: &ast.Block{Ranging: r, Exprs: []ast.Expr{&ast.Break{Ranging: r}}}}
		return &ast.Loop{Ranging: r, Body: &ast.Block{Ranging: r, Exprs: []ast.Expr{ifLet}}}
	}
	c := ps.cond()
	body := ps.block()
	return &ast.While{Ranging: ps.span(from), Cond: c, Body: body}
}
