package ast

import (
	"strconv"
	"strings"
)

// Format renders an expression back into source form. The output parses to
// an equivalent tree; it is used by stringify! and in error messages.
func Format(e Expr) string {
	var f formatter
	f.expr(e)
	return f.sb.String()
}

// FormatPattern renders a pattern in source form.
func FormatPattern(p Pattern) string {
	var f formatter
	f.pattern(p)
	return f.sb.String()
}

type formatter struct {
	sb strings.Builder
}

func (f *formatter) s(s string) { f.sb.WriteString(s) }

func (f *formatter) exprs(es []Expr, sep string) {
	for i, e := range es {
		if i > 0 {
			f.s(sep)
		}
		f.expr(e)
	}
}

func (f *formatter) params(ps []*Param) {
	for i, p := range ps {
		if i > 0 {
			f.s(", ")
		}
		if p.Mutable {
			f.s("mut ")
		}
		f.s(p.Name)
		if p.Type != nil {
			f.s(": " + p.Type.String())
		}
	}
}

func (f *formatter) fields(fs []*ObjectField) {
	f.s("{ ")
	for i, fd := range fs {
		if i > 0 {
			f.s(", ")
		}
		f.s(fd.Key + ": ")
		f.expr(fd.Value)
	}
	f.s(" }")
}

// FormatLiteral renders a literal in source form.
func FormatLiteral(l *Literal) string {
	switch l.Kind {
	case IntLit:
		return strconv.FormatInt(l.Int, 10)
	case FloatLit:
		s := strconv.FormatFloat(l.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case StringLit:
		return strconv.Quote(l.Str)
	case CharLit:
		return strconv.QuoteRune(l.Char)
	case BoolLit:
		return strconv.FormatBool(l.Bool)
	case UnitLit:
		return "()"
	case NilLit:
		return "nil"
	}
	return "?"
}

func (f *formatter) expr(e Expr) {
	switch e := e.(type) {
	case nil:
	case *Literal:
		f.s(FormatLiteral(e))
	case *Ident:
		f.s(e.Name)
	case *Binary:
		f.s("(")
		f.expr(e.Left)
		f.s(" " + e.Op.Symbol() + " ")
		f.expr(e.Right)
		f.s(")")
	case *Unary:
		f.s(e.Op.Symbol())
		f.expr(e.Operand)
	case *Assign:
		f.expr(e.Target)
		f.s(" " + e.Op.Symbol() + "= ")
		f.expr(e.Value)
	case *If:
		f.s("if ")
		f.expr(e.Cond)
		f.s(" ")
		f.expr(e.Then)
		if e.Else != nil {
			f.s(" else ")
			f.expr(e.Else)
		}
	case *IfLet:
		f.s("if let ")
		f.pattern(e.Pattern)
		f.s(" = ")
		f.expr(e.Value)
		f.s(" ")
		f.expr(e.Then)
		if e.Else != nil {
			f.s(" else ")
			f.expr(e.Else)
		}
	case *Match:
		f.s("match ")
		f.expr(e.Scrutinee)
		f.s(" { ")
		for i, arm := range e.Arms {
			if i > 0 {
				f.s(", ")
			}
			f.pattern(arm.Pattern)
			if arm.Guard != nil {
				f.s(" if ")
				f.expr(arm.Guard)
			}
			f.s(" => ")
			f.expr(arm.Body)
		}
		f.s(" }")
	case *For:
		f.s("for ")
		f.pattern(e.Pattern)
		f.s(" in ")
		f.expr(e.Iter)
		f.s(" ")
		f.expr(e.Body)
	case *While:
		f.s("while ")
		f.expr(e.Cond)
		f.s(" ")
		f.expr(e.Body)
	case *Loop:
		f.s("loop ")
		f.expr(e.Body)
	case *Block:
		if len(e.Exprs) == 0 {
			f.s("{}")
			return
		}
		f.s("{ ")
		f.exprs(e.Exprs, "; ")
		f.s(" }")
	case *Let:
		if e.Const {
			f.s("const ")
		} else {
			f.s("let ")
			if e.Mutable {
				f.s("mut ")
			}
		}
		f.pattern(e.Pattern)
		if e.Type != nil {
			f.s(": " + e.Type.String())
		}
		f.s(" = ")
		f.expr(e.Value)
		if e.Body != nil {
			f.s(" in ")
			f.expr(e.Body)
		}
	case *Function:
		if e.Pub {
			f.s("pub ")
		}
		if e.Async {
			f.s("async ")
		}
		f.s("fn " + e.Name + "(")
		f.params(e.Params)
		f.s(")")
		if e.ReturnType != nil {
			f.s(" -> " + e.ReturnType.String())
		}
		if e.Body != nil {
			f.s(" ")
			f.expr(e.Body)
		}
	case *Lambda:
		f.s("|")
		f.params(e.Params)
		f.s("| ")
		f.expr(e.Body)
	case *Call:
		f.expr(e.Callee)
		f.s("(")
		f.exprs(e.Args, ", ")
		f.s(")")
	case *MethodCall:
		f.expr(e.Receiver)
		f.s("." + e.Method + "(")
		f.exprs(e.Args, ", ")
		f.s(")")
	case *FieldAccess:
		f.expr(e.Object)
		f.s("." + e.Field)
	case *Index:
		f.expr(e.Object)
		f.s("[")
		f.expr(e.Index)
		f.s("]")
	case *Range:
		f.expr(e.Start)
		if e.Inclusive {
			f.s("..=")
		} else {
			f.s("..")
		}
		f.expr(e.End)
	case *List:
		f.s("[")
		f.exprs(e.Elems, ", ")
		f.s("]")
	case *Tuple:
		f.s("(")
		f.exprs(e.Elems, ", ")
		if len(e.Elems) == 1 {
			f.s(",")
		}
		f.s(")")
	case *Object:
		if len(e.Fields) == 0 {
			f.s("{ }")
			return
		}
		f.fields(e.Fields)
	case *StructLit:
		f.s(e.Name + " ")
		f.fields(e.Fields)
	case *StringInterp:
		f.s(`f"`)
		for _, p := range e.Parts {
			if p.Expr == nil {
				q := strconv.Quote(p.Text)
				q = strings.NewReplacer("{", "{{", "}", "}}").Replace(q[1 : len(q)-1])
				f.s(q)
			} else {
				f.s("{")
				f.expr(p.Expr)
				if p.Spec != "" {
					f.s(":" + p.Spec)
				}
				f.s("}")
			}
		}
		f.s(`"`)
	case *Try:
		f.expr(e.Expr)
		f.s("?")
	case *Await:
		f.expr(e.Expr)
		f.s(".await")
	case *Cast:
		f.expr(e.Expr)
		f.s(" as " + e.Type.String())
	case *Macro:
		f.s(e.Name + "!(")
		f.exprs(e.Args, ", ")
		f.s(")")
	case *Return:
		f.s("return")
		if e.Value != nil {
			f.s(" ")
			f.expr(e.Value)
		}
	case *Break:
		f.s("break")
		if e.Value != nil {
			f.s(" ")
			f.expr(e.Value)
		}
	case *Continue:
		f.s("continue")
	case *StructDecl:
		f.s("struct " + e.Name + " { ")
		for i, fd := range e.Fields {
			if i > 0 {
				f.s(", ")
			}
			f.s(fd.Name + ": " + fd.Type.String())
		}
		f.s(" }")
	case *EnumDecl:
		f.s("enum " + e.Name + " { ")
		for i, v := range e.Variants {
			if i > 0 {
				f.s(", ")
			}
			f.s(v.Name)
			if len(v.Fields) > 0 {
				f.s("(")
				for j, t := range v.Fields {
					if j > 0 {
						f.s(", ")
					}
					f.s(t.String())
				}
				f.s(")")
			}
		}
		f.s(" }")
	case *TraitDecl:
		f.s("trait " + e.Name + " { ")
		for _, m := range e.Methods {
			f.expr(m)
			f.s("; ")
		}
		f.s("}")
	case *ImplDecl:
		f.s("impl ")
		if e.Trait != "" {
			f.s(e.Trait + " for ")
		}
		f.s(e.For + " { ")
		for _, m := range e.Methods {
			f.expr(m)
			f.s(" ")
		}
		f.s("}")
	default:
		f.s("?")
	}
}

func (f *formatter) patterns(ps []Pattern) {
	for i, p := range ps {
		if i > 0 {
			f.s(", ")
		}
		f.pattern(p)
	}
}

func (f *formatter) pattern(p Pattern) {
	switch p := p.(type) {
	case *WildcardPat:
		f.s("_")
	case *IdentPat:
		if p.Mutable {
			f.s("mut ")
		}
		f.s(p.Name)
	case *LiteralPat:
		f.s(FormatLiteral(p.Lit))
	case *TuplePat:
		f.s("(")
		f.patterns(p.Elems)
		if len(p.Elems) == 1 {
			f.s(",")
		}
		f.s(")")
	case *ListPat:
		f.s("[")
		f.patterns(p.Elems)
		f.s("]")
	case *StructPat:
		if p.Name != "" {
			f.s(p.Name + " ")
		}
		f.s("{ ")
		for i, fp := range p.Fields {
			if i > 0 {
				f.s(", ")
			}
			f.s(fp.Name)
			if fp.Pattern != nil {
				f.s(": ")
				f.pattern(fp.Pattern)
			}
		}
		if p.HasRest {
			if len(p.Fields) > 0 {
				f.s(", ")
			}
			f.s("..")
		}
		f.s(" }")
	case *RangePat:
		f.pattern(p.Start)
		if p.Inclusive {
			f.s("..=")
		} else {
			f.s("..")
		}
		f.pattern(p.End)
	case *OrPat:
		for i, a := range p.Alts {
			if i > 0 {
				f.s(" | ")
			}
			f.pattern(a)
		}
	case *EnumPat:
		if p.Enum != "" {
			f.s(p.Enum + "::")
		}
		f.s(p.Variant)
		if p.Elems != nil {
			f.s("(")
			f.patterns(p.Elems)
			f.s(")")
		}
	case *RestPat:
		if p.Name != "" {
			f.s(p.Name + " @ ")
		}
		f.s("..")
	}
}
