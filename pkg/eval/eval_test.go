package eval_test

import (
	"testing"
	"time"

	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/eval/errs"
	. "src.rook.sh/pkg/eval/evaltest"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/parse"
)

var unit = vals.Unit{}

func TestLiteralsAndOperators(t *testing.T) {
	Test(t,
		That("42").Puts(int64(42)),
		That("1 + 2 * 3").Puts(int64(7)),
		That("7 / 2").Puts(int64(3)),
		That("7 % 3").Puts(int64(1)),
		That("7.0 / 2").Puts(3.5),
		That("2 ** 10").Puts(int64(1024)),
		That(`"foo" + "bar"`).Puts("foobar"),
		That("1 == 1.0").Puts(true),
		That("1 < 2 && 2 < 3").Puts(true),
		That("-(3)").Puts(int64(-3)),
		That("!true").Puts(false),
		That("()").Puts(unit),
		That("nil").Puts(nil),
		That("1 / 0").Throws(ErrorWithKind(errs.DivisionByZero)),
		That("1.0 / 0.0").Throws(ErrorWithKind(errs.DivisionByZero)),
		That(`1 + "a"`).Throws(ErrorWithKind(errs.TypeError)),
	)
}

func TestShortCircuit(t *testing.T) {
	Test(t,
		That("false && missing()").Puts(false),
		That("true || missing()").Puts(true),
		That("nil || 5").Puts(true),
		That("true && missing()").Throws(ErrorWithKind(errs.UndefinedFunction)),
	)
}

func TestTruthiness(t *testing.T) {
	Test(t,
		That("if 0 { 1 } else { 2 }").Puts(int64(1)),
		That(`if "" { 1 } else { 2 }`).Puts(int64(1)),
		That("if [] { 1 } else { 2 }").Puts(int64(1)),
		That("if nil { 1 } else { 2 }").Puts(int64(2)),
		That("if false { 1 } else { 2 }").Puts(int64(2)),
		That("if false { 1 }").Puts(unit),
	)
}

func TestBindings(t *testing.T) {
	Test(t,
		That("let x = 40; x + 2").Puts(int64(42)),
		That("let x = 40; x + 2").Then("x").Puts(int64(40)),
		That("let x = 5").Puts(int64(5)),
		That("let x = 1 in x * 2").Puts(int64(2)),
		That("let x = 1 in x * 2", "x").Throws(ErrorWithKind(errs.UndefinedVariable)),
		That("{ let y = 1; y }", "y").Throws(ErrorWithKind(errs.UndefinedVariable)),
		That("let (a, b) = (1, 2); a + b").Puts(int64(3)),
		That("let x = 1; x = 2").Throws(ErrorWithKind(errs.ImmutableBinding)),
		That("let mut x = 1; x += 2; x").Puts(int64(3)),
		That("let mut x = 1; x = 5").Puts(int64(5)),
		That("const N = 3; N = 4").Throws(ErrorWithKind(errs.ConstReassignment)),
		That("let x: f64 = 1; x").Puts(1.0),
		That("undefined_name").Throws(ErrorWithKind(errs.UndefinedVariable)),
		That("y = 1").Throws(ErrorWithKind(errs.UndefinedVariable)),
	)
}

func TestUndefinedSuggestion(t *testing.T) {
	ev := eval.NewEvaler()
	mustEval(t, ev, "let counter = 1")
	_, err := ev.Eval(src("countr"))
	e, ok := err.(*errs.Error)
	if !ok {
		t.Fatalf("got error %T, want *errs.Error", err)
	}
	if e.Kind != errs.UndefinedVariable {
		t.Errorf("got kind %v, want UndefinedVariable", e.Kind)
	}
	if want := "did you mean `counter`?"; e.Suggestion != want {
		t.Errorf("got suggestion %q, want %q", e.Suggestion, want)
	}
}

func TestFunctions(t *testing.T) {
	Test(t,
		That("fun fib(n) { if n <= 1 { n } else { fib(n-1) + fib(n-2) } }; fib(10)").
			Puts(int64(55)),
		That("fn add(a, b) { a + b }").Puts(unit),
		That("fn add(a, b) { a + b }; add(1, 2)").Puts(int64(3)),
		That("fn f(x) { if x > 0 { return 1 }; 0 }; f(5)").Puts(int64(1)),
		That("fn f(x) { if x > 0 { return 1 }; 0 }; f(-5)").Puts(int64(0)),
		That("fn f() { return }; f()").Puts(unit),
		That("fn f(a) { a }; f(1, 2)").Throws(ErrorWithKind(errs.ArityMismatchKind)),
		That("let f = |x| x * 2; f(21)").Puts(int64(42)),
		That("let f = || 7; f()").Puts(int64(7)),
		That("let mut n = 1; let f = || n; n = 5; f()").Puts(int64(5)),
		That("fn adder(n) { |x| x + n }; let add2 = adder(2); add2(40)").Puts(int64(42)),
		That("fn apply(f, x) { f(x) }; apply(|x| x + 1, 1)").Puts(int64(2)),
		That("let x = 1; x(2)").Throws(ErrorWithKind(errs.TypeError)),
		That("fn f(n) { f(n + 1) }; f(0)").Throws(ErrorWithKind(errs.StackOverflow)),
		That("missing(1)").Throws(ErrorWithKind(errs.UndefinedFunction)),
	)
}

func TestAsync(t *testing.T) {
	Test(t,
		That("async fn f() { 1 }; f().await").Puts(int64(1)),
		That("let x = 2; x.await").Puts(int64(2)),
		That("fn g(x) { x.await }; g(1)").Throws(ErrorWithKind(errs.AwaitOutsideAsync)),
	)
}

func TestControlFlow(t *testing.T) {
	Test(t,
		That("loop { break 5 }").Puts(int64(5)),
		That("let mut i = 0; while i < 5 { i += 1 }; i").Puts(int64(5)),
		That("let mut s = 0; for x in [1, 2, 3] { s += x }; s").Puts(int64(6)),
		That("let mut s = 0; for x in 1..=4 { s += x }; s").Puts(int64(10)),
		That("for i in 0..10 { if i == 3 { break } }").Puts(unit),
		That("let mut s = 0; for i in 0..5 { if i % 2 == 0 { continue }; s += i }; s").
			Puts(int64(4)),
		That("let mut s = 0; for (k, v) in { a: 1, b: 2 } { s += v }; s").Puts(int64(3)),
		That(`let mut n = 0; for c in "abc" { n += 1 }; n`).Puts(int64(3)),
		That("for x in 5 { x }").Throws(ErrorWithKind(errs.TypeError)),
		That("break").Throws(ErrorWithKind(errs.BreakOutsideLoop)),
		That("continue").Throws(ErrorWithKind(errs.ContinueOutsideLoop)),
		That("return 1").Throws(ErrorWithKind(errs.ReturnOutsideFunction)),
	)
}

func TestMatch(t *testing.T) {
	Test(t,
		That("match [1,2,3] { [a,_,c] => a + c, _ => 0 }").Puts(int64(4)),
		That("match [1,2,3] { [a,_,c] => a + c, _ => 0 }", "a").
			Throws(ErrorWithKind(errs.UndefinedVariable)),
		That("match 7 { 1 | 2 => 0, n if n > 5 => n * 2, _ => 1 }").Puts(int64(14)),
		That("match 3 { 1..=5 => true, _ => false }").Puts(true),
		That("match (1, 2) { (x, y) => x + y }").Puts(int64(3)),
		That("match 9 { 1 => 1 }").Throws(ErrorWithKind(errs.NoMatchingArm)),
		That("if let Some(x) = Some(3) { x } else { 0 }").Puts(int64(3)),
		That("if let Some(x) = None { x } else { 0 }").Puts(int64(0)),
		That("let [a, b] = [1]").Throws(ErrorWithKind(errs.PatternError)),
	)
}

func TestContainers(t *testing.T) {
	Test(t,
		That("[1, 2, 3]").Puts(vals.MakeArray(int64(1), int64(2), int64(3))),
		That("[1, 2, 3][1]").Puts(int64(2)),
		That("[1, 2, 3][3]").Throws(ErrorWithKind(errs.IndexOutOfBounds)),
		That("[1, 2, 3][-1]").Throws(ErrorWithKind(errs.IndexOutOfBounds)),
		That("[1, 2, 3, 4][1..3]").Puts(vals.MakeArray(int64(2), int64(3))),
		That(`"hello"[1]`).Puts(vals.Char('e')),
		That(`"hello"[1..3]`).Puts("el"),
		That("(1, 2).1").Puts(int64(2)),
		That("{ a: 1, b: 2 }.b").Puts(int64(2)),
		That(`{ a: 1 }["a"]`).Puts(int64(1)),
		That("{ a: 1 }.c").Throws(ErrorWithKind(errs.RuntimeError)),
		That("let mut a = [1, 2]; a[0] = 9; a").Puts(vals.MakeArray(int64(9), int64(2))),
		That("let mut o = { x: { y: 1 } }; o.x.y = 2; o.x.y").Puts(int64(2)),
		That("let a = [1]; let mut b = a; b[0] = 2; a[0]").Puts(int64(1)),
		That("1..3").Puts(vals.Range{Start: 1, End: 3}),
		That(`1.5 as i64`).Puts(int64(1)),
		That(`65 as char`).Puts(vals.Char('A')),
		That(`3 as f64`).Puts(3.0),
	)
}

func TestStringInterpolation(t *testing.T) {
	Test(t,
		That(`let s = "foo"; f"hi {s}!"`).Puts("hi foo!"),
		That(`f"{1 + 2}"`).Puts("3"),
		That(`f"{1.5:.2}"`).Puts("1.50"),
		That(`f"{{x}}"`).Puts("{x}"),
		That(`f"{[1, 2]}"`).Puts("[1, 2]"),
	)
}

func TestStructsAndImpls(t *testing.T) {
	Test(t,
		That(
			"struct Point { x: i32, y: i32 }",
			"impl Point {",
			"  fn new(x, y) { Point { x: x, y: y } }",
			"  fn sum(&self) { self.x + self.y }",
			"  fn shift(&mut self, d) { self.x += d }",
			"}",
			"let mut p = Point::new(1, 2)",
			"p.shift(10)",
			"p.sum()").Puts(int64(13)),
		That("struct P { x: i32 }; P { x: 1 }.x").Puts(int64(1)),
		That("struct P { x: i32 }; P { x: 1, y: 2 }").Throws(ErrorWithKind(errs.TypeError)),
		That("struct P { x: i32, y: i32 }; P { x: 1 }").Throws(ErrorWithKind(errs.TypeError)),
		That("Q { x: 1 }").Throws(ErrorWithKind(errs.TypeError)),
		That(
			"trait Greet { fn hi(&self) { \"hi \" + self.name } }",
			"struct A { name: String }",
			"impl Greet for A { }",
			"let a = A { name: \"bob\" }",
			"a.hi()").Puts("hi bob"),
		That(
			"trait Area { fn area(&self) -> f64; }",
			"struct S { w: f64 }",
			"impl Area for S { }").Throws(ErrorWithKind(errs.TypeError)),
	)
}

func TestEnums(t *testing.T) {
	Test(t,
		That(
			"enum Shape { Circle(f64), Unit }",
			"fn area(s) { match s { Shape::Circle(r) => r * r, Shape::Unit => 0.0 } }",
			"area(Shape::Circle(2.0)) + area(Shape::Unit)").Puts(4.0),
		That("enum Color { Red, Green }; Color::Green").
			Puts(vals.Variant{Enum: "Color", Name: "Green"}),
		That("enum Color { Red, Green }; Color::Red == Color::Red").Puts(true),
		That("enum E { A(i32) }; E::A(1, 2)").Throws(ErrorWithKind(errs.ArityMismatchKind)),
		That("Some(5)").Puts(vals.Some(int64(5))),
		That("Ok(1)").Puts(vals.Ok(int64(1))),
		That("None").Puts(vals.None),
	)
}

func TestTry(t *testing.T) {
	Test(t,
		That("fn f(o) { let x = o?; x + 1 }; f(Some(1))").Puts(int64(2)),
		That("fn f(o) { let x = o?; x + 1 }; f(None)").Puts(vals.None),
		That(`fn f(r) { r? * 2 }; f(Err("bad"))`).Puts(vals.Err("bad")),
		That("fn f(r) { r? }; f(1)").Throws(ErrorWithKind(errs.TypeError)),
	)
}

func TestMacros(t *testing.T) {
	Test(t,
		That(`println!("x = {}", 5)`).Prints("x = 5\n").Puts(unit),
		That(`println!()`).Prints("\n"),
		That(`println!(42)`).Prints("42\n"),
		That(`let x = 3; println!("{x}")`).Prints("3\n"),
		That(`print!("a"); print!("b")`).Prints("ab"),
		That(`format!("{} and {}", 1, "two")`).Puts("1 and two"),
		That(`format!("{:>5}|{:<3}|{:.2}", 1, "a", 3.14159)`).Puts("    1|a  |3.14"),
		That(`format!("{:05}", 42)`).Puts("00042"),
		That(`format!("{:x} {:b} {:o}", 255, 5, 8)`).Puts("ff 101 10"),
		That(`format!("{:?}", "a")`).Puts(`"a"`),
		That(`format!("{1} {0}", "a", "b")`).Puts("b a"),
		That(`format!("{{}}")`).Puts("{}"),
		That(`format!("{} {}", 1)`).Puts("1 {}"),
		That(`format!("{:^5}", "ab")`).Puts(" ab  "),
		That(`vec![1, 2]`).Puts(vals.MakeArray(int64(1), int64(2))),
		That(`assert!(1 == 1)`).Puts(unit),
		That(`assert!(1 == 2)`).Throws(ErrorWithKindAndMessage(errs.RuntimeError, "assertion failed")),
		That(`assert_eq!(1, 2)`).Throws(ErrorWithKindAndMessage(errs.RuntimeError, "left: 1, right: 2")),
		That(`panic!("boom")`).Throws(ErrorWithKindAndMessage(errs.RuntimeError, "panic: boom")),
		That(`stringify!(1 + 2)`).Puts("(1 + 2)"),
		That(`frobnicate!()`).Throws(ErrorWithKindAndMessage(errs.RuntimeError, "unknown macro")),
	)
}

func TestMutatingMethods(t *testing.T) {
	Test(t,
		That("let mut v = [1, 2]; v.push(3); v").
			Puts(vals.MakeArray(int64(1), int64(2), int64(3))),
		That("let mut v = [1, 2]; v.push(3)").Puts(unit),
		That("let v = [1]; v.push(2)").Throws(ErrorWithKind(errs.ImmutableBinding)),
		That("[1, 2].push(3)").Puts(vals.MakeArray(int64(1), int64(2), int64(3))),
		That("let mut v = [1, 2, 3]; v.pop()").Puts(int64(3)),
		That("let mut v = [1, 2, 3]; v.pop(); v").Puts(vals.MakeArray(int64(1), int64(2))),
		That("let mut v = [1, 3]; v.insert(1, 2); v").
			Puts(vals.MakeArray(int64(1), int64(2), int64(3))),
		That("let mut v = [1, 2, 3]; v.remove(0)").Puts(int64(1)),
		That("let mut v = [1]; v.extend([2, 3]); v.len()").Puts(int64(3)),
		That(`let mut s = "a"; s.push_str("b"); s`).Puts("ab"),
		That(`let mut m = { a: 1 }; m.insert("b", 2); m.len()`).Puts(int64(2)),
		That(`let mut m = { a: 1 }; m.remove("a")`).Puts(vals.Some(int64(1))),
		That("let mut o = { xs: [] }; o.xs.push(1); o.xs.len()").Puts(int64(1)),
	)
}

func TestMethods(t *testing.T) {
	Test(t,
		That("[3, 1, 2].sort()").Puts(vals.MakeArray(int64(1), int64(2), int64(3))),
		That("[1, 2, 3].map(|x| x * 2)").Puts(vals.MakeArray(int64(2), int64(4), int64(6))),
		That("[1, 2, 3, 4].filter(|x| x % 2 == 0)").Puts(vals.MakeArray(int64(2), int64(4))),
		That("[1, 2, 3].reduce(0, |acc, x| acc + x)").Puts(int64(6)),
		That("[1, 2, 3].reduce(|acc, x| acc + x, 10)").Puts(int64(16)),
		That("[1, 2, 3].sum()").Puts(int64(6)),
		That("[1, 5, 3].max()").Puts(int64(5)),
		That("[1, 2, 3].find(|x| x > 1)").Puts(vals.Some(int64(2))),
		That("[1, 2, 3].any(|x| x > 2)").Puts(true),
		That("[].first()").Puts(nil),
		That(`["a", "b"].join("-")`).Puts("a-b"),
		That("(1..4).map(|x| x * x)").Puts(vals.MakeArray(int64(1), int64(4), int64(9))),
		That(`"a,b".split(",")`).Puts(vals.MakeArray("a", "b")),
		That(`"Hello".to_upper()`).Puts("HELLO"),
		That(`"  x ".trim()`).Puts("x"),
		That(`"abc".contains("b")`).Puts(true),
		That(`"abc".starts_with("ab")`).Puts(true),
		That(`"abc".replace("b", "x")`).Puts("axc"),
		That(`"héllo".len()`).Puts(int64(5)),
		That(`"ab".chars()`).Puts(vals.MakeArray(vals.Char('a'), vals.Char('b'))),
		That("let n = -5; n.abs()").Puts(int64(5)),
		That("Some(5).unwrap_or(0)").Puts(int64(5)),
		That("None.unwrap_or(0)").Puts(int64(0)),
		That("Some(2).map(|x| x * 3)").Puts(vals.Some(int64(6))),
		That("Some(5).is_some()").Puts(true),
		That("None.unwrap()").Throws(ErrorWithKind(errs.RuntimeError)),
		That(`{ a: 1, b: 2 }.keys()`).Puts(vals.MakeArray("a", "b")),
		That(`[1].to_string()`).Puts("[1]"),
		That(`"x".frobnicate()`).Throws(ErrorWithKindAndMessage(errs.RuntimeError, "unknown method frobnicate")),
		That(`[1].map(1)`).Throws(ErrorWithKind(errs.TypeError)),
		That(`[1].push()`).Throws(ErrorWithKind(errs.ArityMismatchKind)),
	)
}

func TestLimits(t *testing.T) {
	Test(t,
		That("loop { }").
			WithSetup(func(ev *eval.Evaler) { ev.Limits.Timeout = 20 * time.Millisecond }).
			Throws(ErrorWithKind(errs.Timeout)),
		That("let mut v = []; loop { v.push(1) }").
			WithSetup(func(ev *eval.Evaler) { ev.Limits.MemoryCap = 4096 }).
			Throws(ErrorWithKind(errs.MemoryExceeded)),
		That("fn f(n) { if n == 0 { 0 } else { f(n - 1) } }; f(50)").
			WithSetup(func(ev *eval.Evaler) { ev.Limits.MaxDepth = 10 }).
			Throws(ErrorWithKind(errs.StackOverflow)),
		That("fn f(n) { if n == 0 { 0 } else { f(n - 1) } }; f(5)").
			WithSetup(func(ev *eval.Evaler) { ev.Limits.MaxDepth = 10 }).
			Puts(int64(0)),
	)
}

func TestStats(t *testing.T) {
	ev := eval.NewEvaler()
	mustEval(t, ev, "fn f(n) { if n == 0 { 0 } else { f(n - 1) } }; f(3)")
	st := ev.Stats()
	if st.Calls != 4 {
		t.Errorf("got %d calls, want 4", st.Calls)
	}
	if st.MaxDepth != 4 {
		t.Errorf("got max depth %d, want 4", st.MaxDepth)
	}
	if st.Evaluations != 1 {
		t.Errorf("got %d evaluations, want 1", st.Evaluations)
	}
}

func TestSnapshotRestore(t *testing.T) {
	ev := eval.NewEvaler()
	mustEval(t, ev, "let mut x = 1; struct A { n: i32 }")
	snap := ev.Snapshot()
	mustEval(t, ev, "x = 2; let y = 3; struct B { n: i32 }")
	ev.Restore(snap)

	if v := mustEval(t, ev, "x"); v != int64(1) {
		t.Errorf("x = %v after restore, want 1", v)
	}
	if _, err := ev.Eval(src("y")); !errs.Is(err, errs.UndefinedVariable) {
		t.Errorf("y is still bound after restore: %v", err)
	}
	if _, err := ev.Eval(src("B { n: 1 }")); !errs.Is(err, errs.TypeError) {
		t.Errorf("struct B is still declared after restore: %v", err)
	}
	mustEval(t, ev, "A { n: 1 }")
}

func TestReset(t *testing.T) {
	ev := eval.NewEvaler()
	mustEval(t, ev, "let x = 1; struct A { n: i32 }; x + 1")
	if ev.Feedback.Len() == 0 {
		t.Errorf("no feedback recorded")
	}
	ev.Reset()
	if n := ev.Feedback.Len(); n != 0 {
		t.Errorf("%d feedback sites left after reset", n)
	}
	if _, err := ev.Eval(src("x")); !errs.Is(err, errs.UndefinedVariable) {
		t.Errorf("x is still bound after reset: %v", err)
	}
	if names := ev.TypeNames(); len(names) != 0 {
		t.Errorf("types declared after reset: %v", names)
	}
}

func TestExit(t *testing.T) {
	ev := eval.NewEvaler()
	_, err := ev.Eval(src("exit(3)"))
	if err != (eval.ExitError{Code: 3}) {
		t.Errorf("got %v, want exit 3", err)
	}
}

func src(code string) parse.Source { return parse.Source{Name: "[test]", Code: code} }

func mustEval(t *testing.T, ev *eval.Evaler, code string) any {
	t.Helper()
	v, err := ev.Eval(src(code))
	if err != nil {
		t.Fatalf("eval %q: %v", code, err)
	}
	return v
}

func TestInterrupt(t *testing.T) {
	ev := eval.NewEvaler()
	ev.Limits.Timeout = 5 * time.Second
	go func() {
		time.Sleep(20 * time.Millisecond)
		ev.Interrupt()
	}()
	_, err := ev.Eval(src("loop { }"))
	if !errs.Is(err, errs.RuntimeError) {
		t.Errorf("got %v, want an interrupted evaluation", err)
	}
	if v := mustEval(t, ev, "1"); v != int64(1) {
		t.Errorf("evaluation after an interrupt got %v", v)
	}
}
