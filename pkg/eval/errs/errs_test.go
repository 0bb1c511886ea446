package errs

import (
	"errors"
	"fmt"
	"testing"

	"src.rook.sh/pkg/diag"
)

var errorMessageTests = []struct {
	err     error
	wantMsg string
}{
	{
		OutOfRange{What: "index", ValidLow: "0", ValidHigh: "2", Actual: "3"},
		"out of range: index must be from 0 to 2, but is 3",
	},
	{
		OutOfRange{What: "index", ValidLow: "0", ValidHigh: "-1", Actual: "0"},
		"out of range: index has no valid value, but is 0",
	},
	{
		Index("array index", 5, 3),
		"out of range: array index must be from 0 to 2, but is 5",
	},
	{
		ArityMismatch{What: "arguments", ValidLow: 2, ValidHigh: 2, Actual: 3},
		"arity mismatch: arguments must be 2 values, but is 3 values",
	},
	{
		ArityMismatch{What: "arguments", ValidLow: 2, ValidHigh: -1, Actual: 1},
		"arity mismatch: arguments must be 2 or more values, but is 1 value",
	},
	{
		ArityMismatch{What: "arguments", ValidLow: 2, ValidHigh: 3, Actual: 1},
		"arity mismatch: arguments must be 2 to 3 values, but is 1 value",
	},
	{
		New(DivisionByZero, "division by zero"),
		"DivisionByZero: division by zero",
	},
	{
		&Error{Kind: UndefinedVariable, Message: "undefined variable: y",
			Context: diag.NewContext("a.rook", "x\n  y", diag.Ranging{From: 4, To: 5})},
		"UndefinedVariable: undefined variable: y at line 2, col 3 in file a.rook",
	},
}

func TestErrorMessages(t *testing.T) {
	for _, test := range errorMessageTests {
		if gotMsg := test.err.Error(); gotMsg != test.wantMsg {
			t.Errorf("got message %v, want %v", gotMsg, test.wantMsg)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{New(Timeout, "x"), Timeout},
		{ArityMismatch{}, ArityMismatchKind},
		{OutOfRange{}, IndexOutOfBounds},
		{fmt.Errorf("wrapped: %w", New(IoError, "x")), IoError},
		{errors.New("plain"), RuntimeError},
	}
	for _, test := range tests {
		if got := KindOf(test.err); got != test.want {
			t.Errorf("KindOf(%v) -> %v, want %v", test.err, got, test.want)
		}
	}
}

func TestFrom(t *testing.T) {
	ctx := diag.NewContext("", "f(1)", diag.Ranging{From: 0, To: 4})
	e := From(ArityMismatch{What: "arguments", ValidLow: 0, ValidHigh: 0, Actual: 1}, ctx)
	if e.Kind != ArityMismatchKind {
		t.Errorf("kind -> %v", e.Kind)
	}
	if want := "ArityMismatch: arguments must be 0 values, but is 1 value at line 1, col 1"; e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}
	var am ArityMismatch
	if !errors.As(e, &am) || am.Actual != 1 {
		t.Errorf("cause not preserved")
	}

	orig := New(TypeError, "bad")
	if got := From(orig, ctx); got == orig || got.Context != ctx || orig.Context != nil {
		t.Errorf("From should attach the context to a copy")
	}
}

func TestKindString(t *testing.T) {
	if s := ReturnOutsideFunction.String(); s != "ReturnOutsideFunction" {
		t.Errorf("got %q", s)
	}
	if s := Kind(200).String(); s != "Kind(200)" {
		t.Errorf("got %q", s)
	}
}
