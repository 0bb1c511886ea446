package pattern

import (
	"strings"
	"testing"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/parse"
	. "src.rook.sh/pkg/tt"
)

func mustPattern(t *testing.T, code string) ast.Pattern {
	t.Helper()
	prog, err := parse.Parse(parse.Source{Code: "let " + code + " = 0"})
	if err != nil {
		t.Fatalf("parse %q: %v", code, err)
	}
	return prog.Stmts[0].(*ast.Let).Pattern
}

// matchString renders the result of Match as "name=repr ..." or "no match".
func matchString(t *testing.T) func(string, any) (string, error) {
	return func(code string, v any) (string, error) {
		bs, ok, err := Match(mustPattern(t, code), v)
		if err != nil {
			return "", err
		}
		if !ok {
			return "no match", nil
		}
		parts := make([]string, len(bs))
		for i, b := range bs {
			parts[i] = b.Name + "=" + vals.Repr(b.Value)
		}
		return strings.Join(parts, " "), nil
	}
}

var (
	one   = int64(1)
	two   = int64(2)
	three = int64(3)
)

func TestMatch(t *testing.T) {
	point := vals.Object{TypeName: "Point",
		Fields: vals.MakeObject("x", one, "y", int64(0), "z", two).Fields}
	red := vals.Variant{Enum: "Color", Name: "Red"}

	Test(t, Fn("match", matchString(t)), Table{
		Args("_", one).Rets("", nil),
		Args("x", "s").Rets(`x="s"`, nil),
		Args("1", one).Rets("", nil),
		Args("1", 1.0).Rets("no match", nil),
		Args(`"a"`, "a").Rets("", nil),
		Args("nil", nil).Rets("", nil),
		Args("true", false).Rets("no match", nil),

		Args("[a, _, c]", vals.MakeArray(one, two, three)).Rets("a=1 c=3", nil),
		Args("[a, _, c]", vals.MakeArray(one, two)).Rets("no match", nil),
		Args("[a]", vals.Tuple{one}).Rets("no match", nil),
		Args("[first, rest @ ..]", vals.MakeArray(one, two, three)).Rets("first=1 rest=[2, 3]", nil),
		Args("[.., last]", vals.MakeArray(one, two)).Rets("last=2", nil),
		Args("[a, .., b]", vals.MakeArray(one)).Rets("no match", nil),
		Args("[..]", vals.MakeArray()).Rets("", nil),

		Args("(a, b)", vals.Tuple{one, "x"}).Rets(`a=1 b="x"`, nil),
		Args("(a, b)", vals.Tuple{one}).Rets("no match", nil),
		Args("(a, (b, c))", vals.Tuple{one, vals.Tuple{two, three}}).Rets("a=1 b=2 c=3", nil),

		Args("Point { x, y: 0 }", point).Rets("x=1", nil),
		Args("Point { x, y: 1 }", point).Rets("no match", nil),
		Args("Other { x }", point).Rets("no match", nil),
		Args("{ z }", point).Rets("z=2", nil),
		Args("{ w }", point).Rets("no match", nil),
		Args("{ a, .. }", vals.MakeObject("a", one, "b", two)).Rets("a=1", nil),

		Args("1..=5", int64(5)).Rets("", nil),
		Args("1..5", int64(5)).Rets("no match", nil),
		Args("-3..0", int64(-3)).Rets("", nil),
		Args("'a'..='z'", vals.Char('q')).Rets("", nil),
		Args("1..5", "x").Rets("no match", nil),

		Args("1 | 2", two).Rets("", nil),
		Args("1 | 2", three).Rets("no match", nil),
		Args("(1, x) | (x, 1)", vals.Tuple{two, one}).Rets("x=2", nil),

		Args("Some(x)", vals.Some(int64(5))).Rets("x=5", nil),
		Args("Some(x)", vals.None).Rets("no match", nil),
		Args("None", vals.None).Rets("", nil),
		Args("Ok(v)", vals.Err("e")).Rets("no match", nil),
		Args("Err(e)", vals.Err("boom")).Rets(`e="boom"`, nil),
		Args("Color::Red", red).Rets("", nil),
		Args("Shade::Red", red).Rets("no match", nil),

		Args("(a, a)", vals.Tuple{one, two}).Rets("", ErrorWithMessage("bound more than once")),
	})
}

func TestMatch_IdentifierAlwaysBinds(t *testing.T) {
	values := []any{nil, vals.Unit{}, true, one, 2.5, vals.Char('c'), "s",
		vals.MakeArray(one), vals.Tuple{one}, vals.MakeObject("a", one),
		vals.Range{Start: 0, End: 3}, vals.Some(one)}
	p := &ast.IdentPat{Name: "x"}
	for _, v := range values {
		bs, ok, err := Match(p, v)
		if err != nil || !ok || len(bs) != 1 || bs[0].Name != "x" || !vals.Equal(bs[0].Value, v) {
			t.Errorf("x against %s -> %v, %v, %v", vals.Repr(v), bs, ok, err)
		}
	}
}

func TestMatch_NonIntegerRangeBounds(t *testing.T) {
	lit := func(f float64) ast.Pattern {
		return &ast.LiteralPat{Lit: &ast.Literal{Kind: ast.FloatLit, Float: f}}
	}
	p := &ast.RangePat{Start: lit(1.5), End: lit(2.5)}
	_, _, err := Match(p, int64(2))
	if !errs.Is(err, errs.PatternError) {
		t.Errorf("got %v, want PatternError", err)
	}
}

func TestMatch_EmptyOrNeverMatches(t *testing.T) {
	_, ok, err := Match(&ast.OrPat{}, one)
	if ok || err != nil {
		t.Errorf("empty or -> %v, %v", ok, err)
	}
}
