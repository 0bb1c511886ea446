package transpile

import (
	"math"
	"strconv"
	"strings"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/diag"
)

// stmts writes each statement on its own line. When terminateLast is false
// the last statement is left without a semicolon so that it becomes the value
// of the enclosing block.
func (t *Transpiler) stmts(es []ast.Expr, terminateLast bool) {
	for i, e := range es {
		t.newline()
		t.expr(e)
		last := i == len(es)-1
		if needsSemicolon(e) && (!last || terminateLast || isLet(e)) {
			t.w(";")
		}
	}
}

func needsSemicolon(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Function, *ast.StructDecl, *ast.EnumDecl, *ast.TraitDecl, *ast.ImplDecl,
		*ast.For, *ast.While:
		return false
	case *ast.Let:
		return e.Body == nil
	}
	return true
}

func isLet(e ast.Expr) bool {
	l, ok := e.(*ast.Let)
	return ok && l.Body == nil
}

// body writes e as a braced block.
func (t *Transpiler) body(e ast.Expr) {
	b, ok := e.(*ast.Block)
	if !ok {
		t.w("{ ")
		t.expr(e)
		t.w(" }")
		return
	}
	if len(b.Exprs) == 0 {
		t.w("{}")
		return
	}
	t.w("{")
	t.indent++
	t.stmts(b.Exprs, false)
	t.indent--
	t.newline()
	t.w("}")
}

func (t *Transpiler) list(es []ast.Expr) {
	for i, e := range es {
		if i > 0 {
			t.w(", ")
		}
		t.expr(e)
	}
}

func (t *Transpiler) expr(e ast.Expr) {
	if t.err != nil {
		return
	}
	switch e := e.(type) {
	case *ast.Literal:
		t.w(literal(e))
	case *ast.Ident:
		t.w(Ident(e.Name))
	case *ast.Binary:
		t.binary(e)
	case *ast.Unary:
		t.unary(e)
	case *ast.Assign:
		t.expr(e.Target)
		if e.Op == ast.Pow {
			t.w(" = ")
			t.pow(&ast.Binary{Ranging: e.Ranging, Op: ast.Pow, Left: e.Target, Right: e.Value})
			return
		}
		t.w(" " + e.Op.Symbol() + "= ")
		t.expr(e.Value)
	case *ast.Block:
		if len(e.Exprs) == 0 {
			t.w("()")
			return
		}
		t.body(e)
	case *ast.If:
		t.w("if ")
		t.expr(e.Cond)
		t.w(" ")
		t.body(e.Then)
		t.elseBranch(e.Else)
	case *ast.IfLet:
		t.w("if let ")
		t.pattern(e.Pattern)
		t.w(" = ")
		t.expr(e.Value)
		t.w(" ")
		t.body(e.Then)
		t.elseBranch(e.Else)
	case *ast.Match:
		t.match(e)
	case *ast.For:
		t.w("for ")
		t.pattern(e.Pattern)
		t.w(" in ")
		t.expr(e.Iter)
		t.w(" ")
		t.body(e.Body)
	case *ast.While:
		t.w("while ")
		t.expr(e.Cond)
		t.w(" ")
		t.body(e.Body)
	case *ast.Loop:
		t.w("loop ")
		t.body(e.Body)
	case *ast.Let:
		t.let(e)
	case *ast.Lambda:
		t.w("|")
		for i, p := range e.Params {
			if i > 0 {
				t.w(", ")
			}
			t.param(p, "")
		}
		t.w("| ")
		t.expr(e.Body)
	case *ast.Call:
		t.call(e)
	case *ast.MethodCall:
		t.expr(e.Receiver)
		t.w("." + Ident(e.Method) + "(")
		t.list(e.Args)
		t.w(")")
	case *ast.FieldAccess:
		t.expr(e.Object)
		if _, err := strconv.Atoi(e.Field); err == nil {
			t.w("." + e.Field)
		} else {
			t.w("." + Ident(e.Field))
		}
	case *ast.Index:
		t.index(e)
	case *ast.Range:
		t.w("(")
		t.rangeBounds(e)
		t.w(")")
	case *ast.List:
		t.w("vec![")
		t.list(e.Elems)
		t.w("]")
	case *ast.Tuple:
		t.w("(")
		t.list(e.Elems)
		if len(e.Elems) == 1 {
			t.w(",")
		}
		t.w(")")
	case *ast.Object:
		if len(e.Fields) == 0 {
			t.w("std::collections::HashMap::new()")
			return
		}
		t.w("std::collections::HashMap::from([")
		for i, f := range e.Fields {
			if i > 0 {
				t.w(", ")
			}
			t.w("(" + quote(f.Key) + ".to_string(), ")
			t.expr(f.Value)
			t.w(")")
		}
		t.w("])")
	case *ast.StructLit:
		t.w(Ident(e.Name) + " { ")
		for i, f := range e.Fields {
			if i > 0 {
				t.w(", ")
			}
			t.w(Ident(f.Key) + ": ")
			t.expr(f.Value)
		}
		t.w(" }")
	case *ast.StringInterp:
		t.interp(e)
	case *ast.Try:
		t.expr(e.Expr)
		t.w("?")
	case *ast.Await:
		t.expr(e.Expr)
		t.w(".await")
	case *ast.Cast:
		t.w("(")
		t.expr(e.Expr)
		t.w(" as " + e.Type.String() + ")")
	case *ast.Macro:
		t.macro(e)
	case *ast.Return:
		t.w("return")
		if e.Value != nil {
			t.w(" ")
			t.expr(e.Value)
		}
	case *ast.Break:
		t.w("break")
		if e.Value != nil {
			t.w(" ")
			t.expr(e.Value)
		}
	case *ast.Continue:
		t.w("continue")
	case *ast.Function:
		t.function(e, false)
	case *ast.StructDecl:
		t.structDecl(e)
	case *ast.EnumDecl:
		t.enumDecl(e)
	case *ast.TraitDecl:
		t.traitDecl(e)
	case *ast.ImplDecl:
		t.implDecl(e)
	default:
		t.fail("expression", e)
	}
}

func (t *Transpiler) elseBranch(e ast.Expr) {
	if e == nil {
		return
	}
	t.w(" else ")
	switch e.(type) {
	case *ast.If, *ast.IfLet:
		t.expr(e)
	default:
		t.body(e)
	}
}

func (t *Transpiler) match(m *ast.Match) {
	t.w("match ")
	t.expr(m.Scrutinee)
	t.w(" {")
	t.indent++
	for _, arm := range m.Arms {
		t.newline()
		t.pattern(arm.Pattern)
		if arm.Guard != nil {
			t.w(" if ")
			t.expr(arm.Guard)
		}
		t.w(" => ")
		t.expr(arm.Body)
		t.w(",")
	}
	t.indent--
	t.newline()
	t.w("}")
}

func (t *Transpiler) let(l *ast.Let) {
	if l.Const {
		name := strings.Join(ast.PatternNames(l.Pattern), "_")
		typ := l.Type.String()
		if typ == "" {
			typ = constType(l.Value)
		}
		t.w("const " + Ident(name) + ": " + typ + " = ")
		t.expr(l.Value)
		return
	}
	if l.Body != nil {
		t.w("{")
		t.indent++
		t.newline()
	}
	t.w("let ")
	if l.Mutable {
		t.w("mut ")
	}
	t.pattern(l.Pattern)
	if l.Type != nil {
		t.w(": " + l.Type.String())
	}
	if l.Value != nil {
		t.w(" = ")
		t.expr(l.Value)
	}
	if l.Body != nil {
		t.w(";")
		t.newline()
		t.expr(l.Body)
		t.indent--
		t.newline()
		t.w("}")
	}
}

// constType guesses the type of a const from its initializer.
func constType(e ast.Expr) string {
	if u, ok := e.(*ast.Unary); ok && u.Op == ast.Neg {
		e = u.Operand
	}
	if l, ok := e.(*ast.Literal); ok {
		switch l.Kind {
		case ast.FloatLit:
			return "f64"
		case ast.StringLit:
			return "&str"
		case ast.BoolLit:
			return "bool"
		case ast.CharLit:
			return "char"
		}
	}
	return "i64"
}

func (t *Transpiler) binary(b *ast.Binary) {
	if b.Op == ast.Pow {
		t.pow(b)
		return
	}
	t.w("(")
	t.expr(b.Left)
	t.w(" " + b.Op.Symbol() + " ")
	t.expr(b.Right)
	t.w(")")
}

func (t *Transpiler) pow(b *ast.Binary) {
	if isFloatLit(b.Left) || isFloatLit(b.Right) {
		t.w("(")
		t.expr(b.Left)
		t.w(" as f64).powf(")
		t.expr(b.Right)
		t.w(" as f64)")
		return
	}
	if l, ok := b.Left.(*ast.Literal); ok && l.Kind == ast.IntLit {
		t.w(strconv.FormatInt(l.Int, 10) + "i64")
	} else {
		t.w("(")
		t.expr(b.Left)
		t.w(")")
	}
	t.w(".pow(")
	t.expr(b.Right)
	t.w(" as u32)")
}

func isFloatLit(e ast.Expr) bool {
	l, ok := e.(*ast.Literal)
	return ok && l.Kind == ast.FloatLit
}

func (t *Transpiler) unary(u *ast.Unary) {
	switch u.Op {
	case ast.Ref:
		t.w("&")
		t.expr(u.Operand)
	case ast.Deref:
		t.w("*")
		t.expr(u.Operand)
	default:
		op := u.Op.Symbol()
		if u.Op == ast.BitNot {
			op = "!"
		}
		t.w("(" + op)
		t.expr(u.Operand)
		t.w(")")
	}
}

// Calls of these functions become the corresponding Rust macros.
var printMacros = map[string]string{"println": "println!", "print": "print!"}

func (t *Transpiler) call(c *ast.Call) {
	if id, ok := c.Callee.(*ast.Ident); ok {
		if m, ok := printMacros[id.Name]; ok {
			t.printCall(m, c.Args)
			return
		}
		t.w(Ident(id.Name))
	} else {
		t.w("(")
		t.expr(c.Callee)
		t.w(")")
	}
	t.w("(")
	t.list(c.Args)
	t.w(")")
}

// printCall writes a print builtin as a macro. A leading string literal with
// placeholders is the format; otherwise each argument gets one placeholder.
func (t *Transpiler) printCall(macro string, args []ast.Expr) {
	t.w(macro + "(")
	if len(args) == 0 {
		t.w(")")
		return
	}
	if l, ok := args[0].(*ast.Literal); ok && l.Kind == ast.StringLit {
		if strings.Contains(l.Str, "{") || len(args) == 1 {
			t.w(quote(l.Str))
			for _, a := range args[1:] {
				t.w(", ")
				t.expr(a)
			}
			t.w(")")
			return
		}
	}
	if in, ok := args[0].(*ast.StringInterp); ok && len(args) == 1 {
		t.interpArgs(in)
		t.w(")")
		return
	}
	t.w(quote(strings.TrimSuffix(strings.Repeat("{} ", len(args)), " ")))
	for _, a := range args {
		t.w(", ")
		t.expr(a)
	}
	t.w(")")
}

func (t *Transpiler) index(ix *ast.Index) {
	t.expr(ix.Object)
	t.w("[")
	switch i := ix.Index.(type) {
	case *ast.Literal:
		if i.Kind == ast.IntLit && i.Int >= 0 {
			t.w(strconv.FormatInt(i.Int, 10))
		} else {
			t.expr(i)
		}
	case *ast.Range:
		t.rangeBounds(i)
	default:
		t.w("(")
		t.expr(i)
		t.w(") as usize")
	}
	t.w("]")
}

func (t *Transpiler) rangeBounds(r *ast.Range) {
	if r.Start != nil {
		t.expr(r.Start)
	}
	if r.Inclusive {
		t.w("..=")
	} else {
		t.w("..")
	}
	if r.End != nil {
		t.expr(r.End)
	}
}

func (t *Transpiler) interp(s *ast.StringInterp) {
	t.w("format!(")
	t.interpArgs(s)
	t.w(")")
}

// interpArgs writes the format string and the arguments of an f-string.
func (t *Transpiler) interpArgs(s *ast.StringInterp) {
	var f strings.Builder
	var args []ast.Expr
	for _, p := range s.Parts {
		if p.Expr == nil {
			f.WriteString(escapeBraces(p.Text))
			continue
		}
		f.WriteString("{")
		if p.Spec != "" {
			f.WriteString(":" + p.Spec)
		}
		f.WriteString("}")
		args = append(args, p.Expr)
	}
	t.w(quote(f.String()))
	for _, a := range args {
		t.w(", ")
		t.expr(a)
	}
}

func escapeBraces(s string) string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(s)
}

func (t *Transpiler) macro(m *ast.Macro) {
	switch m.Name {
	case "stringify":
		parts := make([]string, len(m.Args))
		for i, a := range m.Args {
			parts[i] = ast.Format(a)
		}
		t.w(quote(strings.Join(parts, ", ")))
	case "line":
		line, _ := diag.Position(t.src.Code, m.From)
		t.w(strconv.Itoa(line))
	case "file":
		t.w(quote(t.src.Name))
	case "vec":
		t.w("vec![")
		t.list(m.Args)
		t.w("]")
	default:
		t.w(Ident(m.Name) + "!(")
		t.list(m.Args)
		t.w(")")
	}
}

func literal(l *ast.Literal) string {
	switch l.Kind {
	case ast.IntLit:
		return strconv.FormatInt(l.Int, 10)
	case ast.FloatLit:
		return floatLiteral(l.Float)
	case ast.StringLit:
		return quote(l.Str)
	case ast.CharLit:
		if l.Char == '\'' {
			return `'\''`
		}
		if l.Char == '"' {
			return `'"'`
		}
		q := quote(string(l.Char))
		return "'" + q[1:len(q)-1] + "'"
	case ast.BoolLit:
		return strconv.FormatBool(l.Bool)
	case ast.NilLit:
		return "None"
	}
	return "()"
}

func floatLiteral(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "f64::INFINITY"
	case math.IsInf(f, -1):
		return "f64::NEG_INFINITY"
	case math.IsNaN(f):
		return "f64::NAN"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// quote writes s as a Rust string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\u{` + strconv.FormatInt(int64(r), 16) + `}`)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
