package diag

import (
	"errors"
	"strings"
)

// Error represents an error with an optional source context. It is used for
// parse errors as well as runtime errors that carry a position.
type Error struct {
	Type    string
	Message string
	// Context is nil when the error has no position information.
	Context *Context
	// Partial is true when the error was caused by the source ending early.
	// Interactive front ends use it to ask for more input.
	Partial bool
}

// Error returns the plain text representation of the error, in the form
// "<Type>: <message> [at line L, col C [in file F]]".
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Type)
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Context != nil {
		sb.WriteString(" ")
		sb.WriteString(e.Context.Location())
	}
	return sb.String()
}

// Range returns the range of the error, or the zero Ranging if it has no
// context.
func (e *Error) Range() Ranging {
	if e.Context == nil {
		return Ranging{}
	}
	return e.Context.Ranging
}

// Show shows the error along with the offending source line.
func (e *Error) Show(indent string) string {
	header := e.Type + ": " + messageStart() + e.Message + messageEnd()
	if e.Context == nil {
		return header
	}
	s := header + " " + e.Context.Location()
	if culprit := e.Context.Culprit(); culprit != "" {
		s += "\n" + indent + "  " + culprit
	}
	return s
}

// PackErrors packs multiple errors into one. It returns nil for an empty
// slice and the error itself for a single-element slice.
func PackErrors(errs []*Error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return multiError(errs)
	}
}

// UnpackErrors returns the constituent *Error values of an error built by
// PackErrors, or nil if err does not contain any.
func UnpackErrors(err error) []*Error {
	switch err := err.(type) {
	case multiError:
		return append([]*Error(nil), err...)
	case *Error:
		return []*Error{err}
	}
	var e *Error
	if errors.As(err, &e) {
		return []*Error{e}
	}
	return nil
}

type multiError []*Error

func (me multiError) Error() string {
	var sb strings.Builder
	sb.WriteString("multiple errors: ")
	for i, e := range me {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

func (me multiError) Show(indent string) string {
	var sb strings.Builder
	sb.WriteString("Multiple errors:")
	for _, e := range me {
		sb.WriteString("\n" + indent + "  ")
		sb.WriteString(e.Show(indent + "  "))
	}
	return sb.String()
}
