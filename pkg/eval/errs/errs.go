// Package errs declares the runtime errors of Rook.
//
// Every runtime error has a Kind. Most errors are *Error values; errors that
// carry structured data, such as ArityMismatch and OutOfRange, have their own
// types and are converted to *Error when they reach the evaluator boundary.
package errs

import (
	"errors"
	"fmt"
	"strconv"

	"src.rook.sh/pkg/diag"
)

// Kind classifies runtime errors.
type Kind uint8

// Error kinds.
const (
	RuntimeError Kind = iota
	SyntaxError
	UndefinedVariable
	UndefinedFunction
	TypeError
	TypeMismatch
	ArityMismatchKind
	DivisionByZero
	IndexOutOfBounds
	NoMatchingArm
	PatternError
	ImmutableBinding
	ConstReassignment
	StackOverflow
	Timeout
	MemoryExceeded
	BreakOutsideLoop
	ContinueOutsideLoop
	ReturnOutsideFunction
	AwaitOutsideAsync
	IoError
)

var kindNames = [...]string{
	RuntimeError:          "RuntimeError",
	SyntaxError:           "SyntaxError",
	UndefinedVariable:     "UndefinedVariable",
	UndefinedFunction:     "UndefinedFunction",
	TypeError:             "TypeError",
	TypeMismatch:          "TypeMismatch",
	ArityMismatchKind:     "ArityMismatch",
	DivisionByZero:        "DivisionByZero",
	IndexOutOfBounds:      "IndexOutOfBounds",
	NoMatchingArm:         "NoMatchingArm",
	PatternError:          "PatternError",
	ImmutableBinding:      "ImmutableBinding",
	ConstReassignment:     "ConstReassignment",
	StackOverflow:         "StackOverflow",
	Timeout:               "Timeout",
	MemoryExceeded:        "MemoryExceeded",
	BreakOutsideLoop:      "BreakOutsideLoop",
	ContinueOutsideLoop:   "ContinueOutsideLoop",
	ReturnOutsideFunction: "ReturnOutsideFunction",
	AwaitOutsideAsync:     "AwaitOutsideAsync",
	IoError:               "IoError",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Error is a runtime error.
type Error struct {
	Kind    Kind
	Message string
	// Context is the source position, if known.
	Context *diag.Context
	// Suggestion is an optional hint shown after the message.
	Suggestion string
	// Cause is the structured error this error was converted from, if any.
	Cause error
}

// New creates a new *Error.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Newf creates a new *Error with a formatted message.
func Newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Error renders the error as "<Kind>: <message> [at line L, col C [in file F]]".
func (e *Error) Error() string {
	s := e.Kind.String() + ": " + e.Message
	if e.Context != nil {
		s += " " + e.Context.Location()
	}
	return s
}

// Show renders the error along with the offending source line and the
// suggestion, if any.
func (e *Error) Show(indent string) string {
	d := &diag.Error{Type: e.Kind.String(), Message: e.Message, Context: e.Context}
	s := d.Show(indent)
	if e.Suggestion != "" {
		s += "\n" + indent + e.Suggestion
	}
	return s
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Cause }

// Kinder is implemented by errors that know their kind.
type Kinder interface {
	ErrKind() Kind
}

// ErrKind returns e.Kind.
func (e *Error) ErrKind() Kind { return e.Kind }

// KindOf returns the kind of an error. Errors that do not have a kind are
// RuntimeError.
func KindOf(err error) Kind {
	var k Kinder
	if errors.As(err, &k) {
		return k.ErrKind()
	}
	return RuntimeError
}

// Is reports whether err is a runtime error of the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Detailer is implemented by structured errors whose Error method includes a
// prefix that repeats the kind.
type Detailer interface {
	Detail() string
}

// From converts any error to an *Error, attaching the context if the error
// does not have one yet.
func From(err error, ctx *diag.Context) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.Context == nil && ctx != nil {
			e2 := *e
			e2.Context = ctx
			return &e2
		}
		return e
	}
	msg := err.Error()
	if d, ok := err.(Detailer); ok {
		msg = d.Detail()
	}
	return &Error{Kind: KindOf(err), Message: msg, Context: ctx, Cause: err}
}

// OutOfRange encodes an error where a value is out of its valid range.
type OutOfRange struct {
	What      string
	ValidLow  string
	ValidHigh string
	Actual    string
}

// Error implements the error interface.
func (e OutOfRange) Error() string {
	return "out of range: " + e.Detail()
}

// Detail returns the message without the leading "out of range".
func (e OutOfRange) Detail() string {
	lo, errLow := strconv.ParseInt(e.ValidLow, 10, 64)
	hi, errHigh := strconv.ParseInt(e.ValidHigh, 10, 64)
	if errLow == nil && errHigh == nil && hi < lo {
		return fmt.Sprintf("%v has no valid value, but is %v", e.What, e.Actual)
	}
	return fmt.Sprintf("%s must be from %s to %s, but is %s",
		e.What, e.ValidLow, e.ValidHigh, e.Actual)
}

// ErrKind returns IndexOutOfBounds.
func (e OutOfRange) ErrKind() Kind { return IndexOutOfBounds }

// Index returns an OutOfRange error for an index into a sequence of length n.
func Index(what string, i int64, n int) OutOfRange {
	return OutOfRange{What: what, ValidLow: "0",
		ValidHigh: strconv.Itoa(n - 1), Actual: strconv.FormatInt(i, 10)}
}

// ArityMismatch encodes an error where the expected number of values is out
// of the valid range. A negative ValidHigh means there is no upper bound.
type ArityMismatch struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    int
}

// Error implements the error interface.
func (e ArityMismatch) Error() string {
	return "arity mismatch: " + e.Detail()
}

// Detail returns the message without the leading "arity mismatch".
func (e ArityMismatch) Detail() string {
	switch {
	case e.ValidHigh == e.ValidLow:
		return fmt.Sprintf("%s must be %s, but is %s",
			e.What, nValues(e.ValidLow), nValues(e.Actual))
	case e.ValidHigh == -1:
		return fmt.Sprintf("%s must be %d or more values, but is %s",
			e.What, e.ValidLow, nValues(e.Actual))
	default:
		return fmt.Sprintf("%s must be %d to %d values, but is %s",
			e.What, e.ValidLow, e.ValidHigh, nValues(e.Actual))
	}
}

// ErrKind returns ArityMismatchKind.
func (e ArityMismatch) ErrKind() Kind { return ArityMismatchKind }

func nValues(n int) string {
	if n == 1 {
		return "1 value"
	}
	return strconv.Itoa(n) + " values"
}
