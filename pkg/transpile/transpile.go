// Package transpile lowers Rook syntax trees to Rust source code.
//
// The lowering is a single dispatch over the node kinds (see expr.go). Types
// that the source leaves out are filled in by a conservative inference of
// return types (see infer.go), helped by the argument types the interpreter
// observed at call sites when a feedback table is available.
package transpile

import (
	"fmt"
	"strings"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/eval/feedback"
	"src.rook.sh/pkg/logutil"
	"src.rook.sh/pkg/parse"
)

var logger = logutil.GetLogger("[transpile] ")

// UnsupportedError is returned for a node that has no Rust counterpart.
type UnsupportedError struct {
	What    string
	Context *diag.Context
}

func (e *UnsupportedError) Error() string {
	if e.Context == nil {
		return "cannot transpile " + e.What
	}
	return "cannot transpile " + e.What + " " + e.Context.Location()
}

// Transpiler holds the state of lowering one source.
type Transpiler struct {
	// Feedback supplies the argument types observed by the interpreter. It
	// may be nil.
	Feedback *feedback.Table

	src    parse.Source
	sb     strings.Builder
	indent int
	err    error
}

// New creates a Transpiler for code parsed from src.
func New(src parse.Source, fb *feedback.Table) *Transpiler {
	return &Transpiler{Feedback: fb, src: src}
}

// Source parses and transpiles a whole program.
func Source(src parse.Source, fb *feedback.Table) (string, error) {
	prog, err := parse.Parse(src)
	if err != nil {
		return "", err
	}
	return New(src, fb).Program(prog)
}

// Snippet parses a source and transpiles its statements one after another,
// without wrapping them in a main function. It is used by the REPL.
func Snippet(src parse.Source, fb *feedback.Table) (string, error) {
	prog, err := parse.Parse(src)
	if err != nil {
		return "", err
	}
	t := New(src, fb)
	t.stmts(prog.Stmts, false)
	return t.finish()
}

// Expr transpiles a single expression.
func (t *Transpiler) Expr(e ast.Expr) (string, error) {
	t.expr(e)
	return t.finish()
}

// Program transpiles a whole program. Declarations come first; the other
// top-level statements become the body of fn main. A program that defines
// its own main may not have other top-level statements.
func (t *Transpiler) Program(p *ast.Program) (string, error) {
	var decls, stmts []ast.Expr
	hasMain := false
	for _, s := range p.Stmts {
		if isItem(s) {
			decls = append(decls, s)
			if f, ok := s.(*ast.Function); ok && f.Name == "main" {
				hasMain = true
			}
		} else {
			stmts = append(stmts, s)
		}
	}
	if hasMain && len(stmts) > 0 {
		t.fail("top-level statements alongside fn main", stmts[0])
		return t.finish()
	}
	for i, d := range decls {
		if i > 0 {
			t.newline()
		}
		t.expr(d)
		if needsSemicolon(d) {
			t.w(";")
		}
		t.newline()
	}
	if !hasMain {
		if len(decls) > 0 {
			t.newline()
		}
		if len(stmts) == 0 {
			t.w("fn main() {}")
		} else {
			t.w("fn main() {")
			t.indent++
			t.stmts(stmts, true)
			t.indent--
			t.newline()
			t.w("}")
		}
		t.newline()
	}
	return t.finish()
}

func (t *Transpiler) finish() (string, error) {
	if t.err != nil {
		logger.Println("transpile failed:", t.err)
		return "", t.err
	}
	s := strings.TrimLeft(t.sb.String(), "\n")
	t.sb.Reset()
	return s, nil
}

// fail records the first error.
func (t *Transpiler) fail(what string, n ast.Node) {
	if t.err != nil {
		return
	}
	var ctx *diag.Context
	if n != nil {
		ctx = diag.NewContext(t.src.Name, t.src.Code, n)
	}
	t.err = &UnsupportedError{What: what, Context: ctx}
}

func (t *Transpiler) w(s string) { t.sb.WriteString(s) }

func (t *Transpiler) wf(format string, args ...any) { fmt.Fprintf(&t.sb, format, args...) }

func (t *Transpiler) newline() {
	t.sb.WriteByte('\n')
	t.sb.WriteString(strings.Repeat("    ", t.indent))
}

// isItem reports whether a statement is a declaration that Rust accepts at
// the top level of a module.
func isItem(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Function, *ast.StructDecl, *ast.EnumDecl, *ast.TraitDecl, *ast.ImplDecl:
		return true
	case *ast.Let:
		return e.Const
	}
	return false
}

// Reserved words of Rust, strict and reserved for future use. Identifiers
// that collide with them are written as raw identifiers.
var rustKeywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "crate": true,
	"else": true, "enum": true, "extern": true, "false": true, "fn": true,
	"for": true, "if": true, "impl": true, "in": true, "let": true,
	"loop": true, "match": true, "mod": true, "move": true, "mut": true,
	"pub": true, "ref": true, "return": true, "self": true, "Self": true,
	"static": true, "struct": true, "super": true, "trait": true, "true": true,
	"type": true, "unsafe": true, "use": true, "where": true, "while": true,
	"async": true, "await": true, "dyn": true, "final": true, "try": true,
	"abstract": true, "become": true, "box": true, "do": true, "override": true,
	"priv": true, "typeof": true, "unsized": true, "virtual": true, "yield": true,
	"macro": true, "gen": true,
}

// Path keywords cannot be raw identifiers and always keep their meaning.
var pathKeywords = map[string]bool{"self": true, "Self": true, "super": true, "crate": true}

// Ident returns the Rust form of a possibly qualified name.
func Ident(name string) string {
	segs := strings.Split(name, "::")
	for i, s := range segs {
		if rustKeywords[s] && !pathKeywords[s] {
			segs[i] = "r#" + s
		}
	}
	return strings.Join(segs, "::")
}
