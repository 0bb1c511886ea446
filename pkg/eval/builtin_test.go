package eval_test

import (
	"fmt"
	"testing"
	"time"

	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/eval/errs"
	. "src.rook.sh/pkg/eval/evaltest"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/must"
	"src.rook.sh/pkg/testutil"
)

func TestBuiltin_TypeAndConversion(t *testing.T) {
	Test(t,
		That("type(1)").Puts("integer"),
		That("type_of([1])").Puts("array"),
		That(`type("")`).Puts("string"),
		That("str(1.0)").Puts("1.0"),
		That(`repr("a")`).Puts(`"a"`),
		That(`int("42")`).Puts(int64(42)),
		That(`int("x")`).Throws(ErrorWithKind(errs.TypeError)),
		That("float(2)").Puts(2.0),
		That("bool(0)").Puts(true),
		That("bool(nil)").Puts(false),
		That(`len("héllo")`).Puts(int64(5)),
		That("len([1, 2])").Puts(int64(2)),
		That("len(1)").Throws(ErrorWithKind(errs.TypeError)),
		That("range(0, 3)").Puts(vals.MakeArray(int64(0), int64(1), int64(2))),
		That("range(3, 0, -1)").Puts(vals.MakeArray(int64(3), int64(2), int64(1))),
		That("range(0, 3, 0)").Throws(ErrorWithKindAndMessage(errs.RuntimeError, "step cannot be zero")),
		That("Vec::new()").Puts(vals.EmptyArray),
		That("Vec::from(1..3)").Puts(vals.MakeArray(int64(1), int64(2))),
		That(`String::from("a")`).Puts("a"),
		That("HashMap::new().len()").Puts(int64(0)),
		That("Option::Some(1)").Puts(vals.Some(int64(1))),
		That("Option::None").Puts(vals.None),
	)
}

func TestBuiltin_Numbers(t *testing.T) {
	Test(t,
		That("abs(-3)").Puts(int64(3)),
		That("abs(-2.5)").Puts(2.5),
		That(`abs("x")`).Throws(ErrorWithKind(errs.TypeError)),
		That("min(3, 1, 2)").Puts(int64(1)),
		That("max([3, 1, 2])").Puts(int64(3)),
		That("max([])").Throws(ErrorWithKindAndMessage(errs.RuntimeError, "empty collection")),
		That("floor(2.7)").Puts(2.0),
		That("ceil(2.1)").Puts(3.0),
		That("round(2.5)").Puts(3.0),
		That("floor(2)").Puts(int64(2)),
		That("sqrt(16)").Puts(4.0),
		That("pow(2, 3)").Puts(int64(8)),
	)
}

func TestBuiltin_Print(t *testing.T) {
	Test(t,
		That(`println("a", 1, [2])`).Prints("a 1 [2]\n").Puts(unit),
		That(`println("x = {}", 5)`).Prints("x = 5\n"),
		That(`println("{}")`).Prints("{}\n"),
		That(`print("a")`).Prints("a"),
	)
}

func TestBuiltin_Files(t *testing.T) {
	path := testutil.TempFile(t, "out.txt")
	q := fmt.Sprintf("%q", path)
	Test(t,
		That("write_file("+q+", 42)", "read_file("+q+")").Puts("42"),
		That("append_file("+q+`, "b")`, "fs::read_to_string("+q+")").Puts("42b"),
		That("file_exists("+q+")").Puts(true),
		That(`read_file("/nonexistent/file")`).Throws(ErrorWithKind(errs.IoError)),
		That(`file_exists("/nonexistent/file")`).Puts(false),
	)
	if got := must.ReadFileString(path); got != "42b" {
		t.Errorf("file has %q, want %q", got, "42b")
	}
}

func TestBuiltin_Env(t *testing.T) {
	testutil.Setenv(t, "ROOK_TEST_VAR", "hello")
	testutil.Unsetenv(t, "ROOK_TEST_UNSET")
	Test(t,
		That(`env::get("ROOK_TEST_VAR")`).Puts(vals.Some("hello")),
		That(`env::get("ROOK_TEST_UNSET")`).Puts(vals.None),
		That(`env::vars()["ROOK_TEST_VAR"]`).Puts("hello"),
		That(`env::set("ROOK_TEST_UNSET", 1)`, `env::get("ROOK_TEST_UNSET")`).Puts(vals.Some("1")),
		That(`env::remove("ROOK_TEST_UNSET")`, `env::get("ROOK_TEST_UNSET")`).Puts(vals.None),
		That("os_name()").Puts(KindOf("string")),
		That("pid()").Puts(KindOf("integer")),
		That("exit(1, 2)").Throws(ErrorWithKind(errs.ArityMismatchKind)),
	)
}

type constRNG uint64

func (r constRNG) Uint64() uint64 { return uint64(r) }

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

func TestBuiltin_RandAndTime(t *testing.T) {
	clock := &fakeClock{time.Unix(100, 0)}
	setup := func(ev *eval.Evaler) {
		ev.RNG = constRNG(1 << 63)
		ev.Clock = clock
	}
	TestWithSetup(t, setup,
		That("rand()").Puts(0.5),
		That("rand_int(10, 20)").Puts(int64(18)),
		That("rand_int(5, 5)").Throws(ErrorWithKindAndMessage(errs.RuntimeError, "empty range")),
		That("sleep(1500)", "now()").Puts(101.5),
		That("sleep(-1)").Throws(ErrorWithKindAndMessage(errs.RuntimeError, "negative")),
	)
}

const page = `<html><body><ul>` +
	`<li class='a' id='first'>one</li><li>two <b>bold</b></li>` +
	`</ul></body></html>`

func TestBuiltin_HTML(t *testing.T) {
	parse := "let d = html::parse(\"" + page + "\")"
	Test(t,
		That(parse, "d.select(\"li\").len()").Puts(int64(2)),
		That(parse, "d.query_selector_all(\"li\").map(|e| e.text())").
			Puts(vals.MakeArray("one", "two bold")),
		That(parse, "d.query_selector(\"li.a\").unwrap().attr(\"id\")").Puts(vals.Some("first")),
		That(parse, "d.query_selector(\"li.a\").unwrap().attr(\"title\")").Puts(vals.None),
		That(parse, "d.query_selector(\"li.a\").unwrap().tag()").Puts("li"),
		That(parse, "d.query_selector(\"p\")").Puts(vals.None),
		That(parse, "let ul = d.query_selector(\"ul\").unwrap(); ul.select(\"b\")[0].html()").
			Puts("bold"),
		That(parse, "repr(d.select(\"b\")[0])").Puts("<HtmlElement b>"),
		That(parse, "type(d)").Puts("html_document"),
		That(parse, "d.select(\"[\")").Throws(ErrorWithKindAndMessage(errs.RuntimeError, "invalid CSS selector")),
		That(parse, "d.select(1)").Throws(ErrorWithKind(errs.RuntimeError)),
		That(parse, "d.text()").Throws(ErrorWithKindAndMessage(errs.RuntimeError, "unknown method")),
	)
}
