// Package evaltest provides a framework for testing Rook code.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, followed by method calls
// that add additional information to it.
//
// Example:
//
//	Test(t,
//	    That("1 + 2").Puts(int64(3)),
//	    That(`println!("x")`).Prints("x\n"))
//
// If some setup is needed, use the TestWithSetup function instead.
package evaltest

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/parse"
)

// Case is a test case that can be used in Test.
type Case struct {
	codes  []string
	setup  func(ev *eval.Evaler)
	verify func(t *testing.T, ev *eval.Evaler)
	want   result
}

type result struct {
	value    any
	hasValue bool
	output   *string
	err      error
}

// That returns a new Case with the specified source code. Multiple arguments
// are joined with newlines. To specify multiple pieces of code that are
// evaluated separately, use the Then method to append code pieces.
func That(lines ...string) Case {
	return Case{codes: []string{strings.Join(lines, "\n")}}
}

// Then returns a new Case that evaluates the given code in addition, in the
// same Evaler. Multiple arguments are joined with newlines.
func (c Case) Then(lines ...string) Case {
	c.codes = append(c.codes, strings.Join(lines, "\n"))
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is evaluated.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// Passes returns an altered Case that runs an additional verification
// function after evaluation.
func (c Case) Passes(f func(t *testing.T, ev *eval.Evaler)) Case {
	c.verify = f
	return c
}

// Puts returns an altered Case that requires the last code piece to evaluate
// to the given value. The value may be a ValueMatcher.
func (c Case) Puts(v any) Case {
	c.want.value = v
	c.want.hasValue = true
	return c
}

// Prints returns an altered Case that requires the code to print the given
// text.
func (c Case) Prints(s string) Case {
	c.want.output = &s
	return c
}

// Throws returns an altered Case that requires the code to fail with an error
// matching the argument, which is usually built with ErrorWithKind or
// ErrorWithMessage.
func (c Case) Throws(err error) Case {
	c.want.err = err
	return c
}

// Test runs test cases. For each test case, a new Evaler is created with
// NewEvaler.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case, a new Evaler is created
// with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		t.Run(strings.Join(tc.codes, "\n"), func(t *testing.T) {
			t.Helper()
			ev := eval.NewEvaler()
			var out bytes.Buffer
			ev.Stdout = &out
			setup(ev)
			if tc.setup != nil {
				tc.setup(ev)
			}

			var value any
			var err error
			for _, code := range tc.codes {
				value, err = ev.Eval(parse.Source{Name: "[test]", Code: code})
				if err != nil {
					break
				}
			}
			if tc.verify != nil {
				tc.verify(t, ev)
			}

			if err != nil && parse.GetError(err) != nil && tc.want.err != AnyParseError {
				t.Fatalf("parse error: %v", err)
			}
			if !matchErr(tc.want.err, err) {
				t.Errorf("got error %v, want %v", err, tc.want.err)
			}
			if tc.want.hasValue && err == nil && !match(value, tc.want.value) {
				t.Errorf("got value %s, want %s\n%s", vals.Repr(value), reprWant(tc.want.value),
					cmp.Diff(tc.want.value, value, cmp.Comparer(vals.Equal)))
			}
			if tc.want.output != nil && out.String() != *tc.want.output {
				t.Errorf("got output %q, want %q", out.String(), *tc.want.output)
			}
		})
	}
}

func reprWant(v any) string {
	if m, ok := v.(ValueMatcher); ok {
		return fmt.Sprint(m)
	}
	return vals.Repr(v)
}

func match(got, want any) bool {
	if m, ok := want.(ValueMatcher); ok {
		return m.matchValue(got)
	}
	if got, ok := got.(float64); ok {
		if want, ok := want.(float64); ok {
			return matchFloat64(got, want, 0)
		}
	}
	return vals.Equal(got, want)
}

func matchErr(want, got error) bool {
	if want == nil {
		return got == nil
	}
	if m, ok := want.(errorMatcher); ok {
		return m.matchError(got)
	}
	return errors.Is(got, want)
}

type errorMatcher interface{ matchError(error) bool }

// AnyParseError matches any parse error.
var AnyParseError error = anyParseError{}

type anyParseError struct{}

func (anyParseError) Error() string           { return "any parse error" }
func (anyParseError) matchError(e error) bool { return parse.GetError(e) != nil }

// AnyError matches any error.
var AnyError error = anyError{}

type anyError struct{}

func (anyError) Error() string           { return "any error" }
func (anyError) matchError(e error) bool { return e != nil }

// ErrorWithKind returns an error matcher for runtime errors of a kind.
func ErrorWithKind(k errs.Kind) error { return errWithKind{k, ""} }

// ErrorWithKindAndMessage returns an error matcher for runtime errors of a
// kind whose message contains the given text.
func ErrorWithKindAndMessage(k errs.Kind, msg string) error { return errWithKind{k, msg} }

type errWithKind struct {
	kind errs.Kind
	msg  string
}

func (e errWithKind) Error() string {
	if e.msg == "" {
		return "error of kind " + e.kind.String()
	}
	return fmt.Sprintf("error of kind %v with message containing %q", e.kind, e.msg)
}

func (e errWithKind) matchError(got error) bool {
	if got == nil || errs.KindOf(got) != e.kind {
		return false
	}
	var re *errs.Error
	if errors.As(got, &re) {
		return strings.Contains(re.Message, e.msg)
	}
	return strings.Contains(got.Error(), e.msg)
}

// ErrorWithMessage returns an error matcher for errors whose text contains
// the given message.
func ErrorWithMessage(msg string) error { return errWithMessage{msg} }

type errWithMessage struct{ msg string }

func (e errWithMessage) Error() string { return "error with message containing " + e.msg }

func (e errWithMessage) matchError(got error) bool {
	return got != nil && strings.Contains(got.Error(), e.msg)
}

// ValueMatcher is a value that can be passed to Case.Puts and has its own
// matching semantics.
type ValueMatcher interface{ matchValue(any) bool }

// Anything matches anything.
var Anything ValueMatcher = anything{}

type anything struct{}

func (anything) matchValue(any) bool { return true }
func (anything) String() string      { return "<anything>" }

// ApproximatelyThreshold is the threshold for matching floats with
// Approximately.
const ApproximatelyThreshold = 1e-9

// Approximately matches a float within ApproximatelyThreshold.
func Approximately(f float64) ValueMatcher { return approximately{f} }

type approximately struct{ value float64 }

func (a approximately) matchValue(v any) bool {
	f, ok := v.(float64)
	return ok && matchFloat64(a.value, f, ApproximatelyThreshold)
}

func (a approximately) String() string { return fmt.Sprintf("<approximately %v>", a.value) }

func matchFloat64(a, b, threshold float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if math.IsInf(a, 0) && math.IsInf(b, 0) && math.Signbit(a) == math.Signbit(b) {
		return true
	}
	return math.Abs(a-b) <= threshold
}

// StringMatching matches any string matching a regular expression. It
// panics if the pattern is invalid.
func StringMatching(p string) ValueMatcher { return stringMatching{regexp.MustCompile(p)} }

type stringMatching struct{ pattern *regexp.Regexp }

func (s stringMatching) matchValue(v any) bool {
	str, ok := v.(string)
	return ok && s.pattern.MatchString(str)
}

func (s stringMatching) String() string { return "<string matching " + s.pattern.String() + ">" }

// KindOf matches any value of a kind, as reported by the type builtin.
func KindOf(kind string) ValueMatcher { return kindOf(kind) }

type kindOf string

func (k kindOf) matchValue(v any) bool { return vals.Kind(v) == string(k) }
func (k kindOf) String() string        { return "<any " + string(k) + ">" }
