package tt

import (
	"errors"
	"fmt"
	"testing"
)

// testT implements the T interface and is used to verify the Test function's
// interaction with T.
type testT []string

func (t *testT) Helper() {}

func (t *testT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

func add(x, y int) int { return x + y }

func divide(x, y int) (int, error) {
	if y == 0 {
		return 0, errors.New("divide by zero")
	}
	return x / y, nil
}

func TestTest_PassingCases(t *testing.T) {
	var ts testT
	Test(&ts, Fn("add", add), Table{
		Args(1, 2).Rets(3),
		Args(-1, 1).Rets(0),
	})
	if len(ts) != 0 {
		t.Errorf("unexpected failures: %v", ts)
	}
}

func TestTest_FailingCase(t *testing.T) {
	var ts testT
	Test(&ts, Fn("add", add), Table{Args(1, 2).Rets(4)})
	want := "add(1, 2) -> 3, want 4"
	if len(ts) != 1 || ts[0] != want {
		t.Errorf("got %v, want [%q]", ts, want)
	}
}

func TestTest_Matchers(t *testing.T) {
	var ts testT
	Test(&ts, Fn("divide", divide), Table{
		Args(6, 3).Rets(2, nil),
		Args(1, 0).Rets(Any, ErrorWithMessage("zero")),
	})
	if len(ts) != 0 {
		t.Errorf("unexpected failures: %v", ts)
	}
}
