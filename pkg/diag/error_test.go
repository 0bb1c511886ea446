package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"src.rook.sh/pkg/testutil"
	"src.rook.sh/pkg/tt"
)

func TestPosition(t *testing.T) {
	//     0123 456789
	src := "let\n  x = é1"
	tt.Test(t, tt.Fn("Position", Position), tt.Table{
		tt.Args(src, 0).Rets(1, 1),
		tt.Args(src, 3).Rets(1, 4),
		tt.Args(src, 4).Rets(2, 1),
		tt.Args(src, 6).Rets(2, 3),
		// é is two bytes but one column.
		tt.Args(src, 12).Rets(2, 8),
		tt.Args(src, -5).Rets(1, 1),
		tt.Args(src, 100).Rets(2, 9),
	})
}

var errorTests = []struct {
	name      string
	err       *Error
	wantError string
	wantShow  string
}{
	{
		name:      "no context",
		err:       &Error{Type: "DivisionByZero", Message: "division by zero"},
		wantError: "DivisionByZero: division by zero",
		wantShow:  "DivisionByZero: division by zero",
	},
	{
		name: "with context",
		err: &Error{Type: "UndefinedVariable", Message: "undefined variable: y",
			Context: NewContext("", "x +\n y", Ranging{5, 6})},
		wantError: "UndefinedVariable: undefined variable: y at line 2, col 2",
		wantShow:  "UndefinedVariable: undefined variable: y at line 2, col 2\n   y",
	},
	{
		name: "with file name",
		err: &Error{Type: "TypeError", Message: "bad",
			Context: NewContext("a.rook", "1 + true", Ranging{4, 8})},
		wantError: "TypeError: bad at line 1, col 5 in file a.rook",
		wantShow:  "TypeError: bad at line 1, col 5 in file a.rook\n  1 + true",
	},
}

func TestError(t *testing.T) {
	testutil.Set(t, &colored, false)
	for _, test := range errorTests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.Error(); got != test.wantError {
				t.Errorf("Error() -> %q, want %q", got, test.wantError)
			}
			if got := test.err.Show(""); got != test.wantShow {
				t.Errorf("Show() -> %q, want %q", got, test.wantShow)
			}
		})
	}
}

func TestPackAndUnpackErrors(t *testing.T) {
	e1 := &Error{Type: "parse error", Message: "a"}
	e2 := &Error{Type: "parse error", Message: "b"}

	if PackErrors(nil) != nil {
		t.Errorf("PackErrors(nil) should be nil")
	}
	if PackErrors([]*Error{e1}) != e1 {
		t.Errorf("PackErrors of one error should return it")
	}
	packed := PackErrors([]*Error{e1, e2})
	if got := UnpackErrors(packed); len(got) != 2 || got[0] != e1 || got[1] != e2 {
		t.Errorf("UnpackErrors -> %v", got)
	}
	wrapped := fmt.Errorf("wrapped: %w", e1)
	if got := UnpackErrors(wrapped); len(got) != 1 || got[0] != e1 {
		t.Errorf("UnpackErrors(wrapped) -> %v", got)
	}
	if UnpackErrors(errors.New("x")) != nil {
		t.Errorf("UnpackErrors of a plain error should be nil")
	}
}

func TestShowError(t *testing.T) {
	testutil.Set(t, &colored, false)
	var sb strings.Builder
	ShowError(&sb, &Error{Type: "Timeout", Message: "deadline exceeded"})
	ShowError(&sb, errors.New("plain"))
	want := "Timeout: deadline exceeded\nplain\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}
