// Package ast defines the syntax tree produced by the parser and consumed by
// the evaluator and the transpiler.
//
// Every node carries the byte range of the source text it was parsed from.
// Nodes are never mutated after parsing.
package ast

import "src.rook.sh/pkg/diag"

// Node is implemented by all syntax tree nodes.
type Node interface {
	diag.Ranger
}

// Expr is an expression. Statements and declarations are expressions too;
// declarations evaluate to Unit.
type Expr interface {
	Node
	isExpr()
}

// Program is the result of parsing a whole source text.
type Program struct {
	diag.Ranging
	Stmts []Expr
}

// LitKind is the kind of a literal.
type LitKind int

// Literal kinds.
const (
	IntLit LitKind = iota
	FloatLit
	StringLit
	CharLit
	BoolLit
	UnitLit
	NilLit
)

// Literal is a literal value. Only the field corresponding to Kind is
// meaningful.
type Literal struct {
	diag.Ranging
	Kind  LitKind
	Int   int64
	Float float64
	Str   string
	Char  rune
	Bool  bool
}

// Ident is a variable reference. Qualified names like a::b::c are kept as a
// single name containing the separators.
type Ident struct {
	diag.Ranging
	Name string
}

// Binary is a binary operation.
type Binary struct {
	diag.Ranging
	Op          BinaryOp
	Left, Right Expr
}

// Unary is a unary operation.
type Unary struct {
	diag.Ranging
	Op      UnaryOp
	Operand Expr
}

// Assign is a plain or compound assignment. Op is NoOp for plain assignment.
// Target is an *Ident, *Index or *FieldAccess.
type Assign struct {
	diag.Ranging
	Op     BinaryOp
	Target Expr
	Value  Expr
}

// If is a conditional. Else may be nil.
type If struct {
	diag.Ranging
	Cond Expr
	Then Expr
	Else Expr
}

// IfLet is "if let pattern = value { ... } else { ... }". Else may be nil.
type IfLet struct {
	diag.Ranging
	Pattern Pattern
	Value   Expr
	Then    Expr
	Else    Expr
}

// Match is a match expression.
type Match struct {
	diag.Ranging
	Scrutinee Expr
	Arms      []*MatchArm
}

// MatchArm is one arm of a match expression. Guard may be nil.
type MatchArm struct {
	diag.Ranging
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

// For is a for loop.
type For struct {
	diag.Ranging
	Pattern Pattern
	Iter    Expr
	Body    Expr
}

// While is a while loop.
type While struct {
	diag.Ranging
	Cond Expr
	Body Expr
}

// Loop is an infinite loop, left with break.
type Loop struct {
	diag.Ranging
	Body Expr
}

// Block is a braced sequence of expressions.
type Block struct {
	diag.Ranging
	Exprs []Expr
}

// Let is a binding. When Body is nil the binding stays in the current scope.
type Let struct {
	diag.Ranging
	Pattern Pattern
	Type    *Type
	Value   Expr
	Mutable bool
	Const   bool
	Body    Expr
}

// Param is a function or lambda parameter.
type Param struct {
	diag.Ranging
	Name    string
	Type    *Type
	Mutable bool
}

// Attribute is a #[name(args)] annotation.
type Attribute struct {
	diag.Ranging
	Name string
	Args []string
}

// Function is a named function declaration.
type Function struct {
	diag.Ranging
	Name       string
	TypeParams []string
	Params     []*Param
	ReturnType *Type
	// Body is nil for trait method signatures.
	Body       Expr
	Pub        bool
	Async      bool
	Attributes []*Attribute
}

// Lambda is an anonymous closure.
type Lambda struct {
	diag.Ranging
	Params []*Param
	Body   Expr
}

// Call is a function call.
type Call struct {
	diag.Ranging
	Callee Expr
	Args   []Expr
}

// MethodCall is receiver.method(args).
type MethodCall struct {
	diag.Ranging
	Receiver Expr
	Method   string
	Args     []Expr
}

// FieldAccess is object.field; Field is a decimal number for tuple access.
type FieldAccess struct {
	diag.Ranging
	Object Expr
	Field  string
}

// Index is object[index].
type Index struct {
	diag.Ranging
	Object Expr
	Index  Expr
}

// Range is start..end or start..=end.
type Range struct {
	diag.Ranging
	Start     Expr
	End       Expr
	Inclusive bool
}

// List is an array literal.
type List struct {
	diag.Ranging
	Elems []Expr
}

// Tuple is a tuple literal. The unit literal () is a Literal, not a Tuple.
type Tuple struct {
	diag.Ranging
	Elems []Expr
}

// ObjectField is one key: value pair of an object or struct literal.
type ObjectField struct {
	diag.Ranging
	Key   string
	Value Expr
}

// Object is an object literal.
type Object struct {
	diag.Ranging
	Fields []*ObjectField
}

// StructLit is Name { field: value, ... }.
type StructLit struct {
	diag.Ranging
	Name   string
	Fields []*ObjectField
}

// StringPart is one segment of an interpolated string: either literal Text
// (Expr == nil) or an expression with an optional format Spec such as ".2".
type StringPart struct {
	Text string
	Expr Expr
	Spec string
}

// StringInterp is an f-string.
type StringInterp struct {
	diag.Ranging
	Parts []StringPart
}

// Try is the postfix ? operator.
type Try struct {
	diag.Ranging
	Expr Expr
}

// Await is e.await or await e.
type Await struct {
	diag.Ranging
	Expr Expr
}

// Cast is "e as T".
type Cast struct {
	diag.Ranging
	Expr Expr
	Type *Type
}

// Macro is name!(args).
type Macro struct {
	diag.Ranging
	Name string
	Args []Expr
}

// Return is a return expression. Value may be nil.
type Return struct {
	diag.Ranging
	Value Expr
}

// Break is a break expression. Value may be nil.
type Break struct {
	diag.Ranging
	Value Expr
}

// Continue is a continue expression.
type Continue struct {
	diag.Ranging
}

// StructField is a field of a struct declaration.
type StructField struct {
	diag.Ranging
	Name string
	Type *Type
	Pub  bool
}

// StructDecl is a struct declaration.
type StructDecl struct {
	diag.Ranging
	Name       string
	TypeParams []string
	Fields     []*StructField
	Pub        bool
	Attributes []*Attribute
}

// Variant is an enum variant. Fields is empty for unit variants.
type Variant struct {
	diag.Ranging
	Name   string
	Fields []*Type
}

// EnumDecl is an enum declaration.
type EnumDecl struct {
	diag.Ranging
	Name       string
	TypeParams []string
	Variants   []*Variant
	Pub        bool
	Attributes []*Attribute
}

// TraitDecl is a trait declaration.
type TraitDecl struct {
	diag.Ranging
	Name    string
	Methods []*Function
	Pub     bool
}

// ImplDecl is "impl [Trait for] Type { methods }".
type ImplDecl struct {
	diag.Ranging
	Trait   string
	For     string
	Methods []*Function
}

func (*Literal) isExpr()      {}
func (*Ident) isExpr()        {}
func (*Binary) isExpr()       {}
func (*Unary) isExpr()        {}
func (*Assign) isExpr()       {}
func (*If) isExpr()           {}
func (*IfLet) isExpr()        {}
func (*Match) isExpr()        {}
func (*For) isExpr()          {}
func (*While) isExpr()        {}
func (*Loop) isExpr()         {}
func (*Block) isExpr()        {}
func (*Let) isExpr()          {}
func (*Function) isExpr()     {}
func (*Lambda) isExpr()       {}
func (*Call) isExpr()         {}
func (*MethodCall) isExpr()   {}
func (*FieldAccess) isExpr()  {}
func (*Index) isExpr()        {}
func (*Range) isExpr()        {}
func (*List) isExpr()         {}
func (*Tuple) isExpr()        {}
func (*Object) isExpr()       {}
func (*StructLit) isExpr()    {}
func (*StringInterp) isExpr() {}
func (*Try) isExpr()          {}
func (*Await) isExpr()        {}
func (*Cast) isExpr()         {}
func (*Macro) isExpr()        {}
func (*Return) isExpr()       {}
func (*Break) isExpr()        {}
func (*Continue) isExpr()     {}
func (*StructDecl) isExpr()   {}
func (*EnumDecl) isExpr()     {}
func (*TraitDecl) isExpr()    {}
func (*ImplDecl) isExpr()     {}

// IsDecl reports whether e is a declaration that the transpiler hoists out of
// main.
func IsDecl(e Expr) bool {
	switch e.(type) {
	case *Function, *StructDecl, *EnumDecl, *TraitDecl, *ImplDecl:
		return true
	}
	return false
}
