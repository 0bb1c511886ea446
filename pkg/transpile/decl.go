package transpile

import (
	"strings"

	"src.rook.sh/pkg/ast"
)

// Attributes that Rust spells as qualifiers of the declaration head rather
// than as #[...] lines.
var headModifiers = map[string]bool{"unsafe": true, "const": true}

func (t *Transpiler) attributes(attrs []*ast.Attribute) {
	for _, a := range attrs {
		if headModifiers[a.Name] {
			continue
		}
		t.w("#[" + a.Name)
		if len(a.Args) > 0 {
			t.w("(" + strings.Join(a.Args, ", ") + ")")
		}
		t.w("]")
		t.newline()
	}
}

func hasAttribute(attrs []*ast.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

func typeParams(ps []string) string {
	if len(ps) == 0 {
		return ""
	}
	return "<" + strings.Join(ps, ", ") + ">"
}

// function writes a function declaration. Methods of trait impls take their
// visibility from the trait and never get pub.
func (t *Transpiler) function(f *ast.Function, traitImpl bool) {
	t.attributes(f.Attributes)
	if f.Pub && !traitImpl {
		t.w("pub ")
	}
	if hasAttribute(f.Attributes, "const") {
		t.w("const ")
	}
	if f.Async {
		t.w("async ")
	}
	if hasAttribute(f.Attributes, "unsafe") {
		t.w("unsafe ")
	}
	t.w("fn " + Ident(f.Name) + typeParams(f.TypeParams) + "(")
	for i, p := range f.Params {
		if i > 0 {
			t.w(", ")
		}
		if p.Name == "self" && p.Type == nil {
			if f.Body != nil && mutatesSelf(f.Body) {
				t.w("&mut self")
			} else {
				t.w("&self")
			}
			continue
		}
		t.param(p, t.paramType(f, i))
	}
	t.w(")")
	if ret := ReturnType(f, t.Feedback); ret != "" {
		t.w(" -> " + ret)
	}
	if f.Body == nil {
		t.w(";")
		return
	}
	t.w(" ")
	t.body(f.Body)
}

// param writes a parameter. The declared type wins over the inferred one; a
// parameter with neither is written bare, which Rust accepts for closures.
func (t *Transpiler) param(p *ast.Param, inferred string) {
	if p.Mutable {
		t.w("mut ")
	}
	t.w(Ident(p.Name))
	switch {
	case p.Type != nil:
		t.w(": " + p.Type.String())
	case inferred != "":
		t.w(": " + inferred)
	}
}

// paramType returns the Rust type of an untyped function parameter: the type
// observed at call sites when the interpreter saw one, i32 otherwise.
func (t *Transpiler) paramType(f *ast.Function, i int) string {
	if typ := observedParamType(t.Feedback, f.Name, f.Params, i); typ != "" {
		return typ
	}
	return "i32"
}

func (t *Transpiler) structDecl(s *ast.StructDecl) {
	t.derive(s.Attributes)
	t.attributes(s.Attributes)
	if s.Pub {
		t.w("pub ")
	}
	t.w("struct " + Ident(s.Name) + typeParams(s.TypeParams))
	if len(s.Fields) == 0 {
		t.w(";")
		return
	}
	if isTupleStruct(s) {
		t.w("(")
		for i, f := range s.Fields {
			if i > 0 {
				t.w(", ")
			}
			if f.Pub {
				t.w("pub ")
			}
			t.w(f.Type.String())
		}
		t.w(");")
		return
	}
	t.w(" {")
	t.indent++
	for _, f := range s.Fields {
		t.newline()
		if f.Pub {
			t.w("pub ")
		}
		t.w(Ident(f.Name) + ": " + f.Type.String() + ",")
	}
	t.indent--
	t.newline()
	t.w("}")
}

// Tuple structs have their fields named by position.
func isTupleStruct(s *ast.StructDecl) bool {
	return len(s.Fields) > 0 && s.Fields[0].Name == "0"
}

func (t *Transpiler) derive(attrs []*ast.Attribute) {
	if !hasAttribute(attrs, "derive") {
		t.w("#[derive(Debug, Clone)]")
		t.newline()
	}
}

func (t *Transpiler) enumDecl(e *ast.EnumDecl) {
	t.derive(e.Attributes)
	t.attributes(e.Attributes)
	if e.Pub {
		t.w("pub ")
	}
	t.w("enum " + Ident(e.Name) + typeParams(e.TypeParams) + " {")
	t.indent++
	for _, v := range e.Variants {
		t.newline()
		t.w(Ident(v.Name))
		if len(v.Fields) > 0 {
			types := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				types[i] = f.String()
			}
			t.w("(" + strings.Join(types, ", ") + ")")
		}
		t.w(",")
	}
	t.indent--
	t.newline()
	t.w("}")
}

func (t *Transpiler) traitDecl(d *ast.TraitDecl) {
	if d.Pub {
		t.w("pub ")
	}
	t.w("trait " + Ident(d.Name) + " {")
	t.indent++
	for _, m := range d.Methods {
		t.newline()
		t.function(m, true)
	}
	t.indent--
	t.newline()
	t.w("}")
}

func (t *Transpiler) implDecl(d *ast.ImplDecl) {
	t.w("impl ")
	if d.Trait != "" {
		t.w(Ident(d.Trait) + " for ")
	}
	t.w(Ident(d.For) + " {")
	t.indent++
	for i, m := range d.Methods {
		if i > 0 {
			t.sb.WriteByte('\n')
		}
		t.newline()
		t.function(m, d.Trait != "")
	}
	t.indent--
	t.newline()
	t.w("}")
}

// Methods that modify their receiver in place.
var selfMutators = map[string]bool{
	"push": true, "pop": true, "insert": true, "remove": true, "clear": true,
	"push_str": true, "extend": true, "sort": true, "truncate": true, "reverse": true,
}

// mutatesSelf reports whether a method body assigns through self or calls a
// mutating method on something reached from self.
func mutatesSelf(body ast.Expr) bool {
	found := false
	ast.Inspect(body, func(e ast.Expr) bool {
		if found {
			return false
		}
		switch e := e.(type) {
		case *ast.Assign:
			found = rootedAtSelf(e.Target)
		case *ast.MethodCall:
			found = selfMutators[e.Method] && rootedAtSelf(e.Receiver)
		case *ast.Lambda:
			return false
		}
		return !found
	})
	return found
}

func rootedAtSelf(e ast.Expr) bool {
	for {
		switch x := e.(type) {
		case *ast.Ident:
			return x.Name == "self"
		case *ast.FieldAccess:
			e = x.Object
		case *ast.Index:
			e = x.Object
		default:
			return false
		}
	}
}
