package lsp

import (
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/transpile"
)

// symbol is a name declared in a document.
type symbol struct {
	name      string
	kind      lsp.SymbolKind
	detail    string
	container string
	diag.Ranging
}

// topLevelSymbols returns the declarations at the top level of a program,
// and the methods of its impl blocks.
func topLevelSymbols(prog *ast.Program) []symbol {
	var syms []symbol
	for _, stmt := range prog.Stmts {
		switch e := stmt.(type) {
		case *ast.Let:
			syms = append(syms, letSymbols(e)...)
		case *ast.Function:
			syms = append(syms, symbol{e.Name, lsp.SKFunction, signature(e), "", e.Range()})
		case *ast.StructDecl:
			syms = append(syms, symbol{e.Name, lsp.SKStruct, "struct " + e.Name, "", e.Range()})
		case *ast.EnumDecl:
			syms = append(syms, symbol{e.Name, lsp.SKEnum, "enum " + e.Name, "", e.Range()})
			for _, v := range e.Variants {
				syms = append(syms, symbol{v.Name, lsp.SKEnumMember, e.Name + "::" + v.Name, e.Name, v.Range()})
			}
		case *ast.TraitDecl:
			syms = append(syms, symbol{e.Name, lsp.SKInterface, "trait " + e.Name, "", e.Range()})
		case *ast.ImplDecl:
			for _, m := range e.Methods {
				syms = append(syms, symbol{m.Name, lsp.SKMethod, signature(m), e.For, m.Range()})
			}
		}
	}
	return syms
}

func letSymbols(e *ast.Let) []symbol {
	kind, kw := lsp.SKVariable, "let "
	switch {
	case e.Const:
		kind, kw = lsp.SKConstant, "const "
	case e.Mutable:
		kw = "let mut "
	}
	var syms []symbol
	for _, name := range ast.PatternNames(e.Pattern) {
		syms = append(syms, symbol{name, kind, kw + name, "", e.Range()})
	}
	return syms
}

// allNames returns every name bound anywhere in a program, including local
// variables and parameters, with its completion kind.
func allNames(prog *ast.Program) map[string]lsp.CompletionItemKind {
	names := map[string]lsp.CompletionItemKind{}
	for _, stmt := range prog.Stmts {
		ast.Inspect(stmt, func(e ast.Expr) bool {
			switch e := e.(type) {
			case *ast.Let:
				for _, name := range ast.PatternNames(e.Pattern) {
					names[name] = lsp.CIKVariable
				}
			case *ast.For:
				for _, name := range ast.PatternNames(e.Pattern) {
					names[name] = lsp.CIKVariable
				}
			case *ast.Function:
				names[e.Name] = lsp.CIKFunction
				for _, p := range e.Params {
					names[p.Name] = lsp.CIKVariable
				}
			case *ast.Lambda:
				for _, p := range e.Params {
					names[p.Name] = lsp.CIKVariable
				}
			case *ast.StructDecl:
				names[e.Name] = lsp.CIKStruct
			case *ast.EnumDecl:
				names[e.Name] = lsp.CIKEnum
			case *ast.TraitDecl:
				names[e.Name] = lsp.CIKInterface
			}
			return true
		})
	}
	return names
}

// signature renders the head of a function, with its return type inferred
// when it is not declared.
func signature(f *ast.Function) string {
	var sb strings.Builder
	sb.WriteString("fn " + f.Name + "(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Mutable {
			sb.WriteString("mut ")
		}
		sb.WriteString(p.Name)
		if p.Type != nil {
			sb.WriteString(": " + p.Type.String())
		}
	}
	sb.WriteString(")")
	if rt := transpile.ReturnType(f, nil); rt != "" {
		sb.WriteString(" -> " + rt)
	}
	return sb.String()
}
