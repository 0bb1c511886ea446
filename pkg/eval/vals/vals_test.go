package vals

import (
	"math"
	"testing"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	. "src.rook.sh/pkg/tt"
)

func TestTruthy(t *testing.T) {
	Test(t, Fn("Truthy", Truthy), Table{
		Args(nil).Rets(false),
		Args(false).Rets(false),
		Args(true).Rets(true),
		Args(int64(0)).Rets(true),
		Args(0.0).Rets(true),
		Args("").Rets(true),
		Args(EmptyArray).Rets(true),
		Args(Unit{}).Rets(true),
		Args(None).Rets(true),
	})
}

func TestEqual(t *testing.T) {
	Test(t, Fn("Equal", Equal), Table{
		Args(nil, nil).Rets(true),
		Args(nil, false).Rets(false),
		Args(Unit{}, Unit{}).Rets(true),
		Args(int64(1), int64(1)).Rets(true),
		Args(int64(1), 1.0).Rets(false),
		Args("a", "a").Rets(true),
		Args(Char('a'), "a").Rets(false),
		Args(MakeArray(int64(1), "x"), MakeArray(int64(1), "x")).Rets(true),
		Args(MakeArray(int64(1)), MakeArray(int64(1), int64(2))).Rets(false),
		Args(Tuple{int64(1), "a"}, Tuple{int64(1), "a"}).Rets(true),
		Args(Tuple{int64(1)}, MakeArray(int64(1))).Rets(false),
		Args(MakeObject("a", int64(1), "b", int64(2)), MakeObject("b", int64(2), "a", int64(1))).Rets(true),
		Args(MakeObject("a", int64(1)), MakeObject("a", int64(2))).Rets(false),
		Args(Object{TypeName: "P", Fields: EmptyFields}, MakeObject()).Rets(false),
		Args(Some(int64(1)), Some(int64(1))).Rets(true),
		Args(Some(int64(1)), Ok(int64(1))).Rets(false),
		Args(None, Variant{Enum: OptionEnum, Name: "None", Data: []any{}}).Rets(false),
		Args(Range{1, 5, false}, Range{1, 5, false}).Rets(true),
		Args(Range{1, 5, false}, Range{1, 5, true}).Rets(false),
	})
}

func TestHash(t *testing.T) {
	pairs := [][2]any{
		{MakeObject("a", int64(1), "b", "x"), MakeObject("b", "x", "a", int64(1))},
		{MakeArray(int64(1), Tuple{"a"}), MakeArray(int64(1), Tuple{"a"})},
		{Some(2.5), Some(2.5)},
		{Range{0, 3, true}, Range{0, 3, true}},
	}
	for _, p := range pairs {
		if !Equal(p[0], p[1]) {
			t.Errorf("%s and %s should be equal", Repr(p[0]), Repr(p[1]))
		}
		if Hash(p[0]) != Hash(p[1]) {
			t.Errorf("equal values %s have different hashes", Repr(p[0]))
		}
	}
	if Hash(1.5) == Hash(2.5) {
		t.Errorf("float hash should depend on the bits")
	}
}

func TestCompare(t *testing.T) {
	Test(t, Fn("Compare", Compare), Table{
		Args(int64(1), int64(2)).Rets(Less),
		Args(int64(2), 1.5).Rets(Greater),
		Args(2.0, int64(2)).Rets(Same),
		Args("a", "b").Rets(Less),
		Args(false, true).Rets(Less),
		Args(Char('b'), Char('a')).Rets(Greater),
		Args(Tuple{int64(1), int64(2)}, Tuple{int64(1), int64(3)}).Rets(Less),
		Args(MakeArray(int64(1)), MakeArray(int64(1), int64(0))).Rets(Less),
		Args("a", int64(1)).Rets(Incomparable),
		Args(math.NaN(), 1.0).Rets(Incomparable),
		Args(nil, nil).Rets(Incomparable),
	})
}

// Sums computed at run time; a constant expression like 0.1 + 0.2 would be
// folded exactly by the compiler.
var tenth, fifth = 0.1, 0.2

func TestRepr(t *testing.T) {
	Test(t, Fn("Repr", Repr), Table{
		Args(nil).Rets("nil"),
		Args(Unit{}).Rets("()"),
		Args(int64(-3)).Rets("-3"),
		Args(3.0).Rets("3.0"),
		Args(2.5).Rets("2.5"),
		Args(tenth + fifth).Rets("0.30000000000000004"),
		Args(1e21).Rets("1000000000000000000000.0"),
		Args(math.Inf(-1)).Rets("-inf"),
		Args("hello").Rets(`"hello"`),
		Args(Char('a')).Rets(`'a'`),
		Args(MakeArray(int64(1), int64(2), int64(3))).Rets("[1, 2, 3]"),
		Args(MakeArray("a", MakeArray())).Rets(`["a", []]`),
		Args(Tuple{int64(42)}).Rets("(42,)"),
		Args(Tuple{int64(1), "b"}).Rets(`(1, "b")`),
		Args(Tuple{}).Rets("()"),
		Args(MakeObject("b", int64(2), "a", int64(1))).Rets("{a: 1, b: 2}"),
		Args(Object{TypeName: "Point", Fields: MakeObject("y", int64(2), "x", int64(1)).Fields}).
			Rets("Point {x: 1, y: 2}"),
		Args(MakeObject()).Rets("{}"),
		Args(Some("x")).Rets(`Some("x")`),
		Args(None).Rets("None"),
		Args(Variant{Enum: "Shape", Name: "Circle", Data: []any{1.5}}).Rets("Circle(1.5)"),
		Args(Range{1, 5, false}).Rets("1..5"),
		Args(Range{1, 5, true}).Rets("1..=5"),
	})
}

func TestToString(t *testing.T) {
	Test(t, Fn("ToString", ToString), Table{
		Args("hello").Rets("hello"),
		Args(Char('x')).Rets("x"),
		Args(int64(42)).Rets("42"),
		Args(MakeArray("hello")).Rets(`["hello"]`),
	})
}

func TestKindAndTypeName(t *testing.T) {
	Test(t, Fn("Kind", Kind), Table{
		Args(nil).Rets("nil"),
		Args(true).Rets("boolean"),
		Args(int64(1)).Rets("integer"),
		Args(1.0).Rets("float"),
		Args("").Rets("string"),
		Args(EmptyArray).Rets("array"),
		Args(Tuple{}).Rets("tuple"),
		Args(MakeObject()).Rets("object"),
		Args(None).Rets("enum"),
	})
	Test(t, Fn("TypeName", TypeName), Table{
		Args(int64(1)).Rets("Integer"),
		Args(true).Rets("Bool"),
		Args(MakeObject()).Rets("Object"),
		Args(Object{TypeName: "P"}).Rets("Struct"),
		Args(EmptyArray).Rets("Array"),
	})
}

func TestBinaryOp(t *testing.T) {
	Test(t, Fn("BinaryOp", BinaryOp), Table{
		Args(ast.Add, int64(40), int64(2)).Rets(int64(42), nil),
		Args(ast.Add, int64(math.MaxInt64), int64(1)).Rets(int64(math.MinInt64), nil),
		Args(ast.Add, int64(1), 0.5).Rets(1.5, nil),
		Args(ast.Add, "foo", "bar").Rets("foobar", nil),
		Args(ast.Add, "a", int64(1)).Rets(nil, ErrorWithMessage("TypeError: cannot apply + to string and integer")),
		Args(ast.Sub, 1.5, int64(1)).Rets(0.5, nil),
		Args(ast.Mul, int64(6), int64(7)).Rets(int64(42), nil),
		Args(ast.Div, int64(7), int64(2)).Rets(int64(3), nil),
		Args(ast.Div, int64(-7), int64(2)).Rets(int64(-3), nil),
		Args(ast.Rem, int64(-7), int64(2)).Rets(int64(-1), nil),
		Args(ast.Div, int64(1), int64(0)).Rets(nil, ErrorWithMessage("DivisionByZero")),
		Args(ast.Rem, int64(1), int64(0)).Rets(nil, ErrorWithMessage("DivisionByZero")),
		Args(ast.Div, 1.0, 0.0).Rets(nil, ErrorWithMessage("DivisionByZero")),
		Args(ast.Div, 1.0, 1e-20).Rets(nil, ErrorWithMessage("DivisionByZero")),
		Args(ast.Div, 1.0, 4.0).Rets(0.25, nil),
		Args(ast.Pow, int64(2), int64(10)).Rets(int64(1024), nil),
		Args(ast.Pow, int64(2), int64(-1)).Rets(0.5, nil),
		Args(ast.Pow, 2.0, 0.5).Rets(math.Sqrt2, nil),
		Args(ast.Eq, int64(1), 1.0).Rets(true, nil),
		Args(ast.Eq, "a", int64(1)).Rets(false, nil),
		Args(ast.Ne, MakeArray(int64(1)), MakeArray(int64(2))).Rets(true, nil),
		Args(ast.Lt, int64(1), 2.5).Rets(true, nil),
		Args(ast.Ge, "b", "a").Rets(true, nil),
		Args(ast.Lt, "a", int64(1)).Rets(nil, ErrorWithMessage("cannot compare string and integer")),
		Args(ast.Lt, math.NaN(), 1.0).Rets(false, nil),
		Args(ast.BitAnd, int64(6), int64(3)).Rets(int64(2), nil),
		Args(ast.BitXor, true, false).Rets(true, nil),
		Args(ast.Shl, int64(1), int64(4)).Rets(int64(16), nil),
		Args(ast.Shl, int64(1), int64(64)).Rets(nil, ErrorWithMessage("out of range")),
	})
}

func TestUnaryOp(t *testing.T) {
	Test(t, Fn("UnaryOp", UnaryOp), Table{
		Args(ast.Neg, int64(5)).Rets(int64(-5), nil),
		Args(ast.Neg, 2.5).Rets(-2.5, nil),
		Args(ast.Not, int64(0)).Rets(false, nil),
		Args(ast.Not, nil).Rets(true, nil),
		Args(ast.BitNot, int64(0)).Rets(int64(-1), nil),
		Args(ast.Neg, "x").Rets(nil, ErrorWithMessage("cannot apply unary -")),
	})
}

func TestDivisionIdentity(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 7, -7, 13, 100, -100,
		math.MaxInt64, math.MinInt64, math.MaxInt64 - 1, math.MinInt64 + 1}
	for _, a := range values {
		for _, b := range values {
			if b == 0 {
				continue
			}
			q, err := BinaryOp(ast.Div, a, b)
			if err != nil {
				t.Fatal(err)
			}
			r, _ := BinaryOp(ast.Rem, a, b)
			prod, _ := BinaryOp(ast.Mul, q, b)
			sum, _ := BinaryOp(ast.Add, prod, r)
			if sum != a {
				t.Errorf("%d/%d*%d + %d%%%d = %v, want %d", a, b, b, a, b, sum, a)
			}
		}
	}
}

func TestIndex(t *testing.T) {
	arr := MakeArray(int64(10), int64(20))
	Test(t, Fn("Index", Index), Table{
		Args(arr, int64(1)).Rets(int64(20), nil),
		Args(arr, int64(2)).Rets(nil, ErrorWithMessage("must be from 0 to 1, but is 2")),
		Args(arr, int64(-1)).Rets(nil, ErrorWithMessage("but is -1")),
		Args(arr, "a").Rets(nil, ErrorWithMessage("array index must be integer")),
		Args("héllo", int64(1)).Rets(Char('é'), nil),
		Args(Tuple{"a", "b"}, int64(0)).Rets("a", nil),
		Args(MakeObject("k", int64(1)), "k").Rets(int64(1), nil),
		Args(MakeObject(), "k").Rets(nil, ErrorWithMessage("no such key")),
		Args(int64(1), int64(0)).Rets(nil, ErrorWithMessage("cannot index integer")),
	})
	_, err := Index(arr, int64(-1))
	if errs.KindOf(err) != errs.IndexOutOfBounds {
		t.Errorf("negative index -> %v, want IndexOutOfBounds", err)
	}
}

func TestAssoc(t *testing.T) {
	arr := MakeArray(int64(1), int64(2))
	got, err := Assoc(arr, int64(0), "x")
	if err != nil || Repr(got) != `["x", 2]` {
		t.Errorf("Assoc -> %v, %v", got, err)
	}
	if Repr(arr) != "[1, 2]" {
		t.Errorf("Assoc modified the original: %s", Repr(arr))
	}
	obj, _ := Assoc(MakeObject("a", int64(1)), "b", int64(2))
	if Repr(obj) != "{a: 1, b: 2}" {
		t.Errorf("Assoc on object -> %s", Repr(obj))
	}
}

func TestIterate(t *testing.T) {
	Test(t, Fn("collectRepr", func(v any) (string, error) {
		elems, err := Collect(v)
		if err != nil {
			return "", err
		}
		return Repr(Tuple(elems)), nil
	}), Table{
		Args(Range{1, 4, false}).Rets("(1, 2, 3)", nil),
		Args(Range{1, 3, true}).Rets("(1, 2, 3)", nil),
		Args(Range{3, 1, false}).Rets("()", nil),
		Args("ab").Rets("('a', 'b')", nil),
		Args(MakeObject("b", int64(2), "a", int64(1))).Rets(`(("a", 1), ("b", 2))`, nil),
		Args(int64(1)).Rets("", ErrorWithMessage("integer is not iterable")),
	})
}

func TestConversions(t *testing.T) {
	Test(t, Fn("ToInt", ToInt), Table{
		Args(3.9).Rets(int64(3), nil),
		Args(-3.9).Rets(int64(-3), nil),
		Args(" 42 ").Rets(int64(42), nil),
		Args(true).Rets(int64(1), nil),
		Args("x").Rets(int64(0), ErrorWithMessage("cannot parse")),
	})
	Test(t, Fn("ToFloat", ToFloat), Table{
		Args(int64(2)).Rets(2.0, nil),
		Args("2.5").Rets(2.5, nil),
		Args(nil).Rets(0.0, ErrorWithMessage("cannot convert nil to float")),
	})
	Test(t, Fn("Len", Len), Table{
		Args("héllo").Rets(5, nil),
		Args(MakeArray(int64(1))).Rets(1, nil),
		Args(Range{0, 10, true}).Rets(11, nil),
		Args(int64(1)).Rets(0, ErrorWithMessage("has no length")),
	})
}

func TestSize(t *testing.T) {
	small := Size(int64(1))
	if s := Size("hello"); s != small+5 {
		t.Errorf("Size of string -> %d", s)
	}
	if Size(MakeArray(int64(1), int64(2))) <= Size(MakeArray(int64(1))) {
		t.Errorf("Size should grow with elements")
	}
}

func TestIDOf(t *testing.T) {
	Test(t, Fn("IDOf", IDOf), Table{
		Args(int64(1)).Rets(IntType),
		Args(1.0).Rets(FloatType),
		Args("s").Rets(StringType),
		Args(nil).Rets(NilType),
		Args(MakeArray()).Rets(ArrayType),
	})
}
