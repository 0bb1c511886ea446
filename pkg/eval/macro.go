package eval

import (
	"fmt"
	"io"
	"strings"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/strutil"
)

func (fm *Frame) macro(e *ast.Macro) (any, error) {
	switch e.Name {
	case "println", "print":
		s, err := fm.macroFormat(e)
		if err != nil {
			return nil, err
		}
		if e.Name == "println" {
			s += "\n"
		}
		io.WriteString(fm.ev.Stdout, s)
		return unit, nil
	case "format":
		return fm.macroFormat(e)
	case "vec":
		args, err := fm.evalArgs(e.Args)
		if err != nil {
			return nil, err
		}
		if err := fm.ev.alloc(sizeOfElems(args)); err != nil {
			return nil, err
		}
		return vals.MakeArraySlice(args), nil
	case "assert":
		if len(e.Args) == 0 {
			return nil, errs.New(errs.RuntimeError, "assert! takes at least one argument")
		}
		cond, err := fm.eval(e.Args[0])
		if err != nil {
			return nil, err
		}
		if vals.Truthy(cond) {
			return unit, nil
		}
		msg, err := fm.macroMessage(e.Args[1:])
		if err != nil {
			return nil, err
		}
		if msg == "" {
			msg = ast.Format(e.Args[0])
		}
		return nil, errs.New(errs.RuntimeError, "assertion failed: "+msg)
	case "assert_eq", "assert_ne":
		if len(e.Args) < 2 {
			return nil, errs.Newf(errs.RuntimeError, "%s! takes at least two arguments", e.Name)
		}
		l, err := fm.eval(e.Args[0])
		if err != nil {
			return nil, err
		}
		r, err := fm.eval(e.Args[1])
		if err != nil {
			return nil, err
		}
		want, op := true, "=="
		if e.Name == "assert_ne" {
			want, op = false, "!="
		}
		if vals.Equal(l, r) == want {
			return unit, nil
		}
		msg := fmt.Sprintf("assertion failed: left %s right (left: %s, right: %s)",
			op, vals.Repr(l), vals.Repr(r))
		extra, err := fm.macroMessage(e.Args[2:])
		if err != nil {
			return nil, err
		}
		if extra != "" {
			msg += ": " + extra
		}
		return nil, errs.New(errs.RuntimeError, msg)
	case "panic":
		msg, err := fm.macroMessage(e.Args)
		if err != nil {
			return nil, err
		}
		if msg == "" {
			msg = "explicit panic"
		}
		return nil, errs.New(errs.RuntimeError, "panic: "+msg)
	case "stringify":
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = ast.Format(a)
		}
		return strings.Join(parts, ", "), nil
	case "line":
		line, _ := diag.Position(fm.src.Code, e.From)
		return int64(line), nil
	case "file":
		return fm.src.Name, nil
	}
	err := errs.New(errs.RuntimeError, "unknown macro: "+e.Name+"!")
	if near, ok := strutil.Nearest(e.Name, MacroNames, 2); ok {
		err.Suggestion = "did you mean `" + near + "!`?"
	}
	return nil, err
}

// MacroNames lists the macros known to the evaluator.
var MacroNames = []string{
	"assert", "assert_eq", "assert_ne", "file", "format", "line",
	"panic", "print", "println", "stringify", "vec",
}

// macroFormat produces the text of println!, print! and format!. With no
// arguments the text is empty. A single argument that is not a string
// literal is shown in its display form. Otherwise the first argument is the
// format string and the rest fill its placeholders.
func (fm *Frame) macroFormat(e *ast.Macro) (string, error) {
	if len(e.Args) == 0 {
		return "", nil
	}
	args, err := fm.evalArgs(e.Args)
	if err != nil {
		return "", err
	}
	format, ok := args[0].(string)
	if !ok || (len(args) == 1 && !isStringLiteral(e.Args[0])) {
		if len(args) == 1 {
			return vals.ToString(args[0]), nil
		}
		return "", errs.Newf(errs.TypeError, "%s! format must be a string, got %s", e.Name, vals.Kind(args[0]))
	}
	return formatString(format, args[1:], fm.resolve)
}

// macroMessage formats the optional message arguments of assert! and panic!.
func (fm *Frame) macroMessage(es []ast.Expr) (string, error) {
	if len(es) == 0 {
		return "", nil
	}
	return fm.macroFormat(&ast.Macro{Name: "format", Args: es})
}

func isStringLiteral(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.StringLit
}
