package transcript_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	. "src.rook.sh/pkg/transcript"
	"src.rook.sh/pkg/tt"
)

func lines(s string) []string {
	return strings.Split(strings.TrimPrefix(s, "\n"), "\n")
}

func TestParseFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"a/one.rookts": {Data: []byte("rook> 1 + 1\n2\n")},
		"a/skip.txt":   {Data: []byte("rook> 1\n")},
		"two.rookts":   {Data: []byte("rook> let x = 1\nrook> x\n1\n")},
	}
	nodes, err := ParseFromFS(fsys)
	if err != nil {
		t.Fatal(err)
	}
	want := []*Node{
		{Name: "a/one.rookts", Interactions: []Interaction{{"1 + 1", "2\n"}}},
		{Name: "two.rookts", Interactions: []Interaction{{"let x = 1", ""}, {"x", "1\n"}}},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("nodes (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	tt.Test(t, tt.Fn("Parse", Parse), tt.Table{
		tt.Args("a.rookts", lines(`
rook> fn f(n) {
...       n * 2
...   }
rook> f(2)
4
rook> println("a"); println("b")
a
b
`)).Rets(&Node{Name: "a.rookts", Interactions: []Interaction{
			{"fn f(n) {\n    n * 2\n}", ""},
			{"f(2)", "4\n"},
			{`println("a"); println("b")`, "a\nb\n"},
		}}, error(nil)),

		tt.Args("a.rookts", lines(`
//top
rook> 1
1

# h1 #
//h1
// a comment
rook> 2
2

## h2 ##
rook> 3
3
///
`)).Rets(&Node{
			Name: "a.rookts", Directives: []string{"top"},
			Interactions: []Interaction{{"1", "1\n"}},
			Children: []*Node{{
				Name: "h1", Directives: []string{"h1"},
				Interactions: []Interaction{{"2", "2\n"}},
				Children: []*Node{{
					Name: "h2", Interactions: []Interaction{{"3", "3\n"}},
				}},
			}},
		}, error(nil)),

		tt.Args("a.rookts", lines(`
1
`)).Rets((*Node)(nil), tt.ErrorWithMessage("a.rookts:1: first non-comment line")),
		tt.Args("a.rookts", lines(`
rook> 1
//dir
`)).Rets((*Node)(nil), tt.ErrorWithMessage("a.rookts:2: directive only allowed")),
		tt.Args("a.rookts", lines(`
## h2 ##
`)).Rets((*Node)(nil), tt.ErrorWithMessage("a.rookts:1: h2 before h1")),
	})
}

func TestPromptAndCode(t *testing.T) {
	i := Interaction{Code: "fn f() {\n    1\n}"}
	want := "rook> fn f() {\n...       1\n...   }"
	if got := i.PromptAndCode(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
