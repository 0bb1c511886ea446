package ast

import (
	"strings"
	"testing"

	. "src.rook.sh/pkg/tt"
)

func intLit(i int64) *Literal { return &Literal{Kind: IntLit, Int: i} }

func TestFormat(t *testing.T) {
	Test(t, Fn("Format", Format), Table{
		Args(intLit(42)).Rets("42"),
		Args(&Literal{Kind: FloatLit, Float: 2}).Rets("2.0"),
		Args(&Literal{Kind: StringLit, Str: "a\"b"}).Rets(`"a\"b"`),
		Args(&Literal{Kind: CharLit, Char: 'x'}).Rets(`'x'`),
		Args(&Literal{Kind: UnitLit}).Rets("()"),
		Args(&Binary{Op: Add, Left: &Ident{Name: "x"}, Right: intLit(2)}).Rets("(x + 2)"),
		Args(&Assign{Op: Add, Target: &Ident{Name: "x"}, Value: intLit(1)}).Rets("x += 1"),
		Args(&Assign{Target: &Ident{Name: "x"}, Value: intLit(1)}).Rets("x = 1"),
		Args(&Tuple{Elems: []Expr{intLit(42)}}).Rets("(42,)"),
		Args(&Block{}).Rets("{}"),
		Args(&Let{Pattern: &IdentPat{Name: "x"}, Mutable: true, Value: intLit(1)}).Rets("let mut x = 1"),
		Args(&Lambda{Params: []*Param{{Name: "a"}}, Body: &Ident{Name: "a"}}).Rets("|a| a"),
		Args(&StringInterp{Parts: []StringPart{{Text: "hi "}, {Expr: &Ident{Name: "s"}}, {Text: "!"}}}).
			Rets(`f"hi {s}!"`),
		Args(&Macro{Name: "println", Args: []Expr{intLit(1)}}).Rets("println!(1)"),
		Args(&Match{Scrutinee: &Ident{Name: "v"}, Arms: []*MatchArm{
			{Pattern: &ListPat{Elems: []Pattern{&IdentPat{Name: "a"}, &RestPat{}}}, Body: &Ident{Name: "a"}},
			{Pattern: &WildcardPat{}, Body: intLit(0)},
		}}).Rets("match v { [a, ..] => a, _ => 0 }"),
	})
}

func TestFormatPattern(t *testing.T) {
	Test(t, Fn("FormatPattern", FormatPattern), Table{
		Args(&EnumPat{Variant: "Some", Elems: []Pattern{&IdentPat{Name: "x"}}}).Rets("Some(x)"),
		Args(&EnumPat{Variant: "None"}).Rets("None"),
		Args(&EnumPat{Enum: "Color", Variant: "Red"}).Rets("Color::Red"),
		Args(&RangePat{Start: &LiteralPat{Lit: intLit(1)}, End: &LiteralPat{Lit: intLit(5)}, Inclusive: true}).
			Rets("1..=5"),
		Args(&StructPat{Name: "P", Fields: []*FieldPat{{Name: "x"}}, HasRest: true}).Rets("P { x, .. }"),
		Args(&OrPat{Alts: []Pattern{&LiteralPat{Lit: intLit(1)}, &LiteralPat{Lit: intLit(2)}}}).Rets("1 | 2"),
	})
}

func TestTypeString(t *testing.T) {
	ref := &Type{Kind: RefType, Lifetime: "static", Args: []*Type{Named("str")}}
	Test(t, Fn("String", (*Type).String), Table{
		Args(Named("i32")).Rets("i32"),
		Args(Named("Vec", Named("i32"))).Rets("Vec<i32>"),
		Args(ref).Rets("&'static str"),
		Args(&Type{Kind: TupleType, Args: []*Type{Named("i32")}}).Rets("(i32,)"),
		Args(&Type{Kind: FuncType, Args: []*Type{Named("i32")}, Ret: Named("i32")}).Rets("fn(i32) -> i32"),
	})
}

func TestPatternNames(t *testing.T) {
	p := &TuplePat{Elems: []Pattern{
		&IdentPat{Name: "a"},
		&StructPat{Fields: []*FieldPat{{Name: "x"}, {Name: "y", Pattern: &IdentPat{Name: "b"}}}},
		&ListPat{Elems: []Pattern{&WildcardPat{}, &RestPat{Name: "rest"}}},
	}}
	got := strings.Join(PatternNames(p), ",")
	if got != "a,x,b,rest" {
		t.Errorf("PatternNames -> %q", got)
	}
}

func TestDump(t *testing.T) {
	e := &Binary{Op: Add, Left: intLit(1), Right: &Call{Callee: &Ident{Name: "f"}}}
	want := "Binary Op=Add\n" +
		"  Left: Literal 1\n" +
		"  Right: Call\n" +
		"    Callee: Ident Name=f\n"
	if got := DumpString(e); got != want {
		t.Errorf("DumpString -> %q, want %q", got, want)
	}
}

func TestIsDecl(t *testing.T) {
	Test(t, Fn("IsDecl", IsDecl), Table{
		Args(&Function{Name: "f"}).Rets(true),
		Args(&StructDecl{Name: "S"}).Rets(true),
		Args(intLit(1)).Rets(false),
	})
}
