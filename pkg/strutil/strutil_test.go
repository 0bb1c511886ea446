package strutil

import (
	"testing"

	. "src.rook.sh/pkg/tt"
)

func TestChopLineEnding(t *testing.T) {
	Test(t, Fn("ChopLineEnding", ChopLineEnding), Table{
		Args("").Rets(""),
		Args("text").Rets("text"),
		Args("text\n").Rets("text"),
		Args("text\r\n").Rets("text"),
		Args("text\n\n").Rets("text\n"),
	})
}

func TestEditDistance(t *testing.T) {
	Test(t, Fn("EditDistance", EditDistance), Table{
		Args("", "").Rets(0),
		Args("abc", "").Rets(3),
		Args("kitten", "sitting").Rets(3),
		Args("counter", "countr").Rets(1),
		Args("héllo", "hello").Rets(1),
	})
}

func TestNearest(t *testing.T) {
	candidates := []string{"counter", "count", "println"}
	Test(t, Fn("Nearest", Nearest), Table{
		Args("countr", candidates, 2).Rets("counter", true),
		Args("printn", candidates, 2).Rets("println", true),
		Args("xyzzy", candidates, 2).Rets("", false),
		Args("count", candidates, 2).Rets("", false),
	})
}
