package ui

import (
	"testing"

	"src.rook.sh/pkg/testutil"
)

type textVTStringTest struct {
	text Text
	want string
}

func testTextVTString(t *testing.T, tests []textVTStringTest) {
	t.Helper()
	for _, test := range tests {
		if got := test.text.VTString(); got != test.want {
			t.Errorf("VTString of %q -> %q, want %q", test.text.String(), got, test.want)
		}
	}
}

func TestStyleSGR(t *testing.T) {
	testTextVTString(t, []textVTStringTest{
		{T("foo"), "foo"},
		{T("foo", Bold), "\033[1mfoo\033[m"},
		{T("foo", Dim), "\033[2mfoo\033[m"},
		{T("foo", Italic), "\033[3mfoo\033[m"},
		{T("foo", Underlined), "\033[4mfoo\033[m"},
		{T("foo", Inverse), "\033[7mfoo\033[m"},
		{T("foo", FgRed), "\033[31mfoo\033[m"},
		{T("foo", BgRed), "\033[41mfoo\033[m"},
		{T("foo", Bold, FgRed, Bg(Blue)), "\033[1;31;44mfoo\033[m"},
		{T("foo", Fg(BrightRed)), "\033[91mfoo\033[m"},
		{T("foo", Fg(XTerm256Color(30))), "\033[38;5;30mfoo\033[m"},
	})
}

func TestStyleSGR_NoColor(t *testing.T) {
	testutil.Set(t, &NoColor, true)
	testTextVTString(t, []textVTStringTest{
		{T("foo", FgRed), "foo"},
		{T("foo", Bold, FgRed), "\033[1mfoo\033[m"},
	})
}

func TestText_Concat(t *testing.T) {
	text := T("a", FgRed).Concat(T("b"))
	if text.String() != "ab" {
		t.Errorf("String() -> %q", text.String())
	}
	if got := text.VTString(); got != "\033[31ma\033[mb" {
		t.Errorf("VTString() -> %q", got)
	}
}

var colorStringTests = []struct {
	color Color
	str   string
}{
	{Red, "red"},
	{BrightCyan, "bright-cyan"},
	{XTerm256Color(30), "color30"},
}

func TestColorString(t *testing.T) {
	for _, test := range colorStringTests {
		if s := test.color.String(); s != test.str {
			t.Errorf("%v.String() -> %q, want %q", test.color, s, test.str)
		}
		if c := ParseColor(test.str); c != test.color {
			t.Errorf("ParseColor(%q) -> %v, want %v", test.str, c, test.color)
		}
	}
	if c := ParseColor("mauve"); c != nil {
		t.Errorf("ParseColor(mauve) -> %v", c)
	}
}
