package repl_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/eval/errs"
	. "src.rook.sh/pkg/repl"
	"src.rook.sh/pkg/replay"
	"src.rook.sh/pkg/store"
	. "src.rook.sh/pkg/tt"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	st := env.Default()
	st.Deterministic = true
	st.Seed = 1
	return NewSession(Config{Settings: st})
}

func feed(s *Session, lines ...string) Output {
	var out Output
	for _, line := range lines {
		out = s.Process(line)
	}
	return out
}

var processTests = []struct {
	name     string
	lines    []string
	kind     OutputKind
	want     string
	contains bool
}{
	{"S1 binding persists", []string{"let x = 40; x + 2", "x"}, Value, "40", false},
	{"S1 value", []string{"let x = 40; x + 2"}, Value, "42", false},
	{"S2 recursion",
		[]string{"fun fib(n) { if n <= 1 { n } else { fib(n-1) + fib(n-2) } }; fib(10)"},
		Value, "55", false},
	{"S3 match", []string{"match [1,2,3] { [a,_,c] => a + c, _ => 0 }"}, Value, "4", false},
	{"S3 no leak", []string{"match [1,2,3] { [a,_,c] => a + c, _ => 0 }", "a"},
		Error, "UndefinedVariable: undefined variable: a", true},
	{"S4 error", []string{"1 / 0"}, Error, "DivisionByZero: division by zero at line 1, col 1", false},
	{"S4 recovery", []string{"1 / 0", "let y = 7; y"}, Value, "7", false},
	{"S5 format string", []string{`let s = "foo"; f"hi {s}!"`}, Value, `"hi foo!"`, false},
	{"let is silent", []string{"let x = 1"}, Silent, "", false},
	{"printing", []string{`println("hi")`}, Message, "hi", false},
	{"printing then value", []string{`println("a"); 5`}, Value, "a\n5", false},
	{"suggestion", []string{"let apple = 1", "appel"}, Error, "did you mean `apple`?", true},

	{"open brace", []string{"fn f(x) {"}, NeedMore, "", false},
	{"continued function", []string{"fn f(x) {", "x * 2", "}", "f(4)"}, Value, "8", false},
	{"trailing operator", []string{"1 +", "2"}, Value, "3", false},
	{"open bracket", []string{"let v = [1, 2,", "3]", "len(v)"}, Value, "3", false},

	{"result history", []string{"1 + 1", "_1 * 10"}, Value, "20", false},
	{"last result", []string{"1 + 1", "_1 * 10", "_ + _1"}, Value, "22", false},

	{"help", []string{":help"}, Message, ":quit, :exit, :q", true},
	{"help alias", []string{":h"}, Message, ":transpile <code>", true},
	{"quit", []string{":q"}, Exit, "", false},
	{"exit builtin", []string{"exit(0)"}, Exit, "", false},
	{"unknown command", []string{":nope"}, Message, "Unknown command: :nope (type :help for a list)", false},
	{"mode", []string{":mode"}, Message, "Current mode: normal", false},
	{"set mode", []string{":mode debug", ":mode"}, Message, "Current mode: debug", false},
	{"bad mode", []string{":mode bogus"}, Message, "Unknown mode: bogus", false},
	{"ast mode", []string{":mode ast", "1 + 2"}, Message, "Binary Op=Add", true},
	{"transpile mode", []string{":mode transpile", "1 + 2"}, Message, "(1 + 2)", false},
	{"debug mode", []string{":debug on", "1"}, Value, "1\n  : Integer (", true},
	{"debug off", []string{":debug on", ":debug off", ":debug"}, Message, "Debug: off", false},
	{"type", []string{":type 1.5"}, Message, "Type: Float", false},
	{"type usage", []string{":type"}, Message, "Usage: :type <expr>", false},
	{"type does not commit", []string{":type let z = 1", "z"},
		Error, "UndefinedVariable", true},
	{"ast command", []string{":ast x + 1"}, Message, "Binary Op=Add", true},
	{"transpile command", []string{":transpile 1 + 2 * 3"}, Message, "(1 + (2 * 3))", false},
	{"inspect", []string{":inspect [1, 2]"}, Message, "Length: 2\nElements:\n  [0]: 1\n  [1]: 2", true},
	{"history", []string{"let x = 1", "x", ":history"}, Message, "1: let x = 1\n2: x", false},
	{"empty history", []string{":history"}, Message, "No history", false},
	{"env", []string{"let mut n = 2", ":vars"}, Message, "let mut n: Integer = 2\n", true},
	{"stats", []string{"1", "1 / 0", ":stats"}, Message, "Success rate: 50.0%", true},
	{"S7 reset", []string{"let x = 1", ":reset", ":env"}, Message, "No variables defined", true},
	{"S7 reset removes binding", []string{"let x = 1", ":reset", "x"}, Error, "UndefinedVariable", true},
	{"clear", []string{":clear"}, Clear, "\033[H\033[2J", false},
	{"shell", []string{"!echo hi"}, Message, "hi", false},
	{"shell failure", []string{"!exit 3"}, Error, "shell: exit status 3", false},
	{"checkpoint", []string{"let mut x = 1", ":save a", "x = 2", ":load a", "x"}, Value, "1", false},
	{"no checkpoints", []string{":load"}, Message, "No checkpoints", false},
	{"missing checkpoint", []string{":load b"}, Message, "No checkpoint named b", false},
	{"gc", []string{":gc"}, Message, "Collected ", true},
}

func TestProcess(t *testing.T) {
	for _, test := range processTests {
		t.Run(test.name, func(t *testing.T) {
			out := feed(newSession(t), test.lines...)
			if out.Kind != test.kind {
				t.Errorf("kind = %v, want %v (text %q)", out.Kind, test.kind, out.Text)
			}
			if test.contains {
				if !strings.Contains(out.Text, test.want) {
					t.Errorf("text = %q, want it to contain %q", out.Text, test.want)
				}
			} else if out.Text != test.want {
				t.Errorf("text = %q, want %q", out.Text, test.want)
			}
		})
	}
}

func TestProcess_ExitCode(t *testing.T) {
	out := feed(newSession(t), `print("bye"); exit(3)`)
	if out.Kind != Exit || out.Code != 3 || out.Text != "bye" {
		t.Errorf("got %+v, want exit 3 after printing bye", out)
	}
}

func TestProcess_Transactional(t *testing.T) {
	s := newSession(t)
	feed(s, "let mut x = 1")
	before := replay.StateHash(s.Evaler())
	out := feed(s, "let y = 2; x = 5; undefined_fn()")
	if !errs.Is(out.Err, errs.UndefinedFunction) {
		t.Fatalf("got %v, want UndefinedFunction", out.Err)
	}
	if after := replay.StateHash(s.Evaler()); after != before {
		t.Errorf("state hash changed by a failed input")
	}
	if !cmp.Equal(s.Bindings(), []string{"x"}) {
		t.Errorf("Bindings() = %v, want [x]", s.Bindings())
	}
}

func TestSession_Pending(t *testing.T) {
	s := newSession(t)
	feed(s, "if true {")
	if !s.Pending() {
		t.Fatalf("want pending input")
	}
	s.Cancel()
	if s.Pending() {
		t.Errorf("Cancel left input pending")
	}
	if out := feed(s, ":mode"); out.Kind != Message {
		t.Errorf("command after Cancel got %+v", out)
	}
}

type brokenClock struct{}

func (brokenClock) Now() time.Time      { panic("clock is broken") }
func (brokenClock) Sleep(time.Duration) { panic("clock is broken") }

func TestSession_CommandsRecoverPanics(t *testing.T) {
	s := newSession(t)
	s.Evaler().Clock = brokenClock{}
	for _, cmd := range []string{":type now()", ":inspect now()"} {
		out := feed(s, cmd)
		if out.Kind != Error || !strings.Contains(out.Text, "internal error") {
			t.Errorf("%s: got %+v, want an internal error", cmd, out)
		}
	}
}

func TestSession_Results(t *testing.T) {
	s := newSession(t)
	feed(s, "1", "let a = 2", `"x"`)
	if diff := cmp.Diff([]any{int64(1), "x"}, s.Results()); diff != "" {
		t.Errorf("Results() (-want +got):\n%s", diff)
	}
	if !cmp.Equal(s.Bindings(), []string{"a"}) {
		t.Errorf("Bindings() = %v, want [a]", s.Bindings())
	}
}

func TestSession_Store(t *testing.T) {
	st := store.MustTempStore(t)
	settings := env.Default()
	s := NewSession(Config{Settings: settings, Store: st})
	feed(s, "let x = 42", ":save keep", "1 +", "2")

	cmds, err := st.CmdsWithSeq(1, 10)
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, c := range cmds {
		texts = append(texts, c.Text)
	}
	if diff := cmp.Diff([]string{"let x = 42", "1 +\n2"}, texts); diff != "" {
		t.Errorf("stored history (-want +got):\n%s", diff)
	}

	other := NewSession(Config{Settings: settings, Store: st})
	if out := feed(other, ":load"); out.Text != "Checkpoints: keep" {
		t.Errorf(":load lists %q", out.Text)
	}
	feed(other, ":load keep")
	if out := feed(other, "x"); out.Text != "42" {
		t.Errorf("x in another session = %q, want 42", out.Text)
	}
}

func TestSession_Recording(t *testing.T) {
	s := newSession(t)
	rec := replay.NewRecorder("test", replay.Environment{Seed: 1, MaxDepth: env.DefaultMaxDepth})
	s.Record(rec)
	feed(s, "let r = rand_int(0, 100)", "r", "_1 + 1", "nope")
	report := replay.Validate(rec.Recording())
	if !report.Passed || report.Total != 4 {
		t.Errorf("replaying the session: %+v", report)
	}
}

func TestNeedsMore(t *testing.T) {
	Test(t, Fn("NeedsMore", NeedsMore), Table{
		Args("1 + 2").Rets(false),
		Args("fn f() {").Rets(true),
		Args("f(1,").Rets(true),
		Args("[1, [2]").Rets(true),
		Args(`"abc`).Rets(true),
		Args(`"a\"b`).Rets(true),
		Args(`"{"`).Rets(false),
		Args("'{'").Rets(false),
		Args("/* comment").Rets(true),
		Args("1 // {").Rets(false),
		Args("1 /* c */").Rets(false),
		Args(`println("a") // done.`).Rets(false),
		Args("1 + /* c */").Rets(true),
		Args("1 +\n// more to come").Rets(true),
		Args(`"a +"`).Rets(false),
		Args("x &&").Rets(true),
		Args("let y =").Rets(true),
		Args("v.").Rets(true),
		Args("}").Rets(false),
		Args("(1))").Rets(false),
		Args("if x { 1 } else").Rets(true),
		Args("let").Rets(true),
	})
}

func TestComplete(t *testing.T) {
	s := newSession(t)
	feed(s, "let zebra = 1", "let zenith = 2", `let word = "w"`, "fn zebu_count() { 0 }")

	Test(t, Fn("Complete", s.Complete), Table{
		Args("ze", 2).Rets([]string{"bra", "bu_count", "nith"}),
		Args("1 + zeb", 7).Rets([]string{"ra", "u_count"}),
		Args("zeb + 1", 3).Rets([]string{"ra", "u_count"}),
		Args("printl", 6).Rets([]string{"n"}),
		Args("word.to_upper", 13).Rets([]string{"case"}),
		Args(`"x".to_low`, 10).Rets([]string{"er", "ercase"}),
		Args("missing.le", 10).Rets([]string(nil)),
		Args(":hi", 3).Rets([]string{"story"}),
		Args("", 0).Rets([]string(nil)),
	})
}

func TestInspect(t *testing.T) {
	s := newSession(t)
	// The estimated size on the second line is left out.
	inspect := func(code string) string {
		lines := strings.Split(feed(s, ":inspect "+code).Text, "\n")
		return strings.Join(append(lines[:1:1], lines[2:]...), "\n")
	}
	Test(t, Fn("inspect", inspect), Table{
		Args(`"hey"`).Rets("Type: String\nValue: \"hey\"\nLength: 3"),
		Args("1..=3").Rets("Type: Range\nStart: 1\nEnd: 3\nInclusive: true\nLength: 3"),
		Args("Some(1)").Rets("Type: Enum\nEnum: Option\nVariant: Some\nData:\n  [0]: 1"),
		Args("|a, b| a").Rets("Type: Function\nFunction: <lambda>\nParameters: (a, b)"),
		Args("(1, 'x')").Rets("Type: Tuple\nLength: 2\nItems:\n  [0]: 1\n  [1]: 'x'"),
	})
}

func TestMode(t *testing.T) {
	for _, m := range []Mode{Normal, Debug, AST, Transpile} {
		got, ok := ParseMode(m.String())
		if !ok || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseMode("fast"); ok {
		t.Errorf("ParseMode(fast) succeeded")
	}
}

func TestExecuteCell(t *testing.T) {
	s := newSession(t)
	first := s.ExecuteCell("let x = 20; x")
	if !first.Success || first.Output != "20" {
		t.Errorf("first cell: %+v", first)
	}
	failed := s.ExecuteCell(`println("partial"); x / 0`)
	if failed.Success || failed.Output != "partial\nDivisionByZero: division by zero at line 1, col 21" {
		t.Errorf("failing cell: %+v", failed)
	}
	if failed.StateHash != first.StateHash {
		t.Errorf("failing cell changed the state hash")
	}
	if r := s.ExecuteCell("x * 2"); r.Output != "40" {
		t.Errorf("x * 2 = %q", r.Output)
	}
}

func TestSnapshotJSON(t *testing.T) {
	s := newSession(t)
	feed(s, "let n = 3", `let greeting = "hi"`, "let v = [1]")
	data, err := s.SnapshotJSON()
	if err != nil {
		t.Fatal(err)
	}

	other := newSession(t)
	feed(other, "let stale = 1")
	skipped, err := other.RestoreJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"v"}, skipped); diff != "" {
		t.Errorf("skipped (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"greeting", "n"}, other.Bindings()); diff != "" {
		t.Errorf("bindings (-want +got):\n%s", diff)
	}
	if out := feed(other, "greeting + str(n)"); out.Text != `"hi3"` {
		t.Errorf("got %q", out.Text)
	}

	if _, err := other.RestoreJSON([]byte("{")); err == nil {
		t.Errorf("RestoreJSON accepted malformed input")
	}
}
