package ast

// Inspect traverses an expression tree in depth-first order. It calls f on
// each expression; when f returns false the children of that expression are
// skipped. Patterns and types are not visited.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, f)
	}
}

// Children returns the direct subexpressions of e in source order.
func Children(e Expr) []Expr {
	var cs []Expr
	add := func(es ...Expr) {
		for _, e := range es {
			if e != nil {
				cs = append(cs, e)
			}
		}
	}
	switch e := e.(type) {
	case *Binary:
		add(e.Left, e.Right)
	case *Unary:
		add(e.Operand)
	case *Assign:
		add(e.Target, e.Value)
	case *If:
		add(e.Cond, e.Then, e.Else)
	case *IfLet:
		add(e.Value, e.Then, e.Else)
	case *Match:
		add(e.Scrutinee)
		for _, arm := range e.Arms {
			add(arm.Guard, arm.Body)
		}
	case *For:
		add(e.Iter, e.Body)
	case *While:
		add(e.Cond, e.Body)
	case *Loop:
		add(e.Body)
	case *Block:
		add(e.Exprs...)
	case *Let:
		add(e.Value, e.Body)
	case *Function:
		add(e.Body)
	case *Lambda:
		add(e.Body)
	case *Call:
		add(e.Callee)
		add(e.Args...)
	case *MethodCall:
		add(e.Receiver)
		add(e.Args...)
	case *FieldAccess:
		add(e.Object)
	case *Index:
		add(e.Object, e.Index)
	case *Range:
		add(e.Start, e.End)
	case *List:
		add(e.Elems...)
	case *Tuple:
		add(e.Elems...)
	case *Object:
		for _, f := range e.Fields {
			add(f.Value)
		}
	case *StructLit:
		for _, f := range e.Fields {
			add(f.Value)
		}
	case *StringInterp:
		for _, p := range e.Parts {
			add(p.Expr)
		}
	case *Try:
		add(e.Expr)
	case *Await:
		add(e.Expr)
	case *Cast:
		add(e.Expr)
	case *Macro:
		add(e.Args...)
	case *Return:
		add(e.Value)
	case *Break:
		add(e.Value)
	case *TraitDecl:
		for _, m := range e.Methods {
			add(m)
		}
	case *ImplDecl:
		for _, m := range e.Methods {
			add(m)
		}
	}
	return cs
}
