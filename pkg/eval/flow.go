package eval

import (
	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
)

// FlowKind is the kind of a control flow signal.
type FlowKind uint8

// Control flows.
const (
	Return FlowKind = iota
	Break
	Continue
)

var flowNames = [...]string{Return: "return", Break: "break", Continue: "continue"}

// Flow is a special type of error used for control flows. It unwinds the
// evaluation until a function (for Return) or a loop (for Break and
// Continue) consumes it.
type Flow struct {
	Kind  FlowKind
	Value any
	node  ast.Node
}

func (f *Flow) Error() string { return flowNames[f.Kind] }

// escape turns a flow that reached a boundary it cannot cross into an error.
func (fm *Frame) escape(err error) error {
	f, ok := err.(*Flow)
	if !ok {
		return err
	}
	var e *errs.Error
	switch f.Kind {
	case Return:
		e = errs.New(errs.ReturnOutsideFunction, "return outside of function")
	case Break:
		e = errs.New(errs.BreakOutsideLoop, "break outside of loop")
	default:
		e = errs.New(errs.ContinueOutsideLoop, "continue outside of loop")
	}
	if f.node != nil {
		e.Context = fm.context(f.node)
	}
	return e
}
