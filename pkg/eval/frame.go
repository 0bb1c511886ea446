package eval

import (
	"sort"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/scope"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/parse"
	"src.rook.sh/pkg/strutil"
)

var unit any = vals.Unit{}

// checkInterval is the number of reductions between two checks of the
// deadline and the memory cap.
const checkInterval = 1024

// Frame is the context of evaluating code in one function body or at the top
// level.
type Frame struct {
	ev    *Evaler
	env   *scope.Env
	src   parse.Source
	depth int
	// fn is the function being called, or nil at the top level.
	fn *Closure
}

// Evaler returns the Evaler the frame belongs to.
func (fm *Frame) Evaler() *Evaler { return fm.ev }

// Env returns the environment of the frame.
func (fm *Frame) Env() *scope.Env { return fm.env }

func (fm *Frame) context(r diag.Ranger) *diag.Context {
	return diag.NewContext(fm.src.Name, fm.src.Code, r)
}

// annotate attaches the position of r to an error that does not have one
// yet. Control flows and exits pass through unchanged.
func (fm *Frame) annotate(err error, r diag.Ranger) error {
	switch err.(type) {
	case *Flow, ExitError:
		return err
	}
	return errs.From(err, fm.context(r))
}

// eval evaluates an expression. Errors get the position of the innermost
// expression that caused them.
func (fm *Frame) eval(e ast.Expr) (any, error) {
	fm.ev.steps++
	if fm.ev.steps%checkInterval == 0 {
		if err := fm.ev.checkLimits(); err != nil {
			return nil, fm.annotate(err, e)
		}
	}
	v, err := fm.evalNode(e)
	if err != nil {
		return nil, fm.annotate(err, e)
	}
	return v, nil
}

func (fm *Frame) evalNode(e ast.Expr) (any, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return vals.FromLiteral(e), nil
	case *ast.Ident:
		return fm.lookup(e)
	case *ast.Binary:
		return fm.binary(e)
	case *ast.Unary:
		v, err := fm.eval(e.Operand)
		if err != nil {
			return nil, err
		}
		return vals.UnaryOp(e.Op, v)
	case *ast.Assign:
		return fm.assign(e)
	case *ast.If:
		return fm.ifExpr(e)
	case *ast.IfLet:
		return fm.ifLet(e)
	case *ast.Match:
		return fm.match(e)
	case *ast.For:
		return fm.forLoop(e)
	case *ast.While:
		return fm.whileLoop(e)
	case *ast.Loop:
		return fm.loop(e)
	case *ast.Block:
		return fm.block(e)
	case *ast.Let:
		return fm.let(e)
	case *ast.Function:
		if e.Body == nil {
			return nil, errs.Newf(errs.RuntimeError, "function %s has no body", e.Name)
		}
		fm.env.Bind(e.Name, fm.newClosure(e), false)
		return unit, nil
	case *ast.Lambda:
		return fm.newLambda(e), nil
	case *ast.Call:
		return fm.call(e)
	case *ast.MethodCall:
		return fm.methodCall(e)
	case *ast.FieldAccess:
		return fm.fieldAccess(e)
	case *ast.Index:
		return fm.index(e)
	case *ast.Range:
		return fm.rangeExpr(e)
	case *ast.List:
		elems, err := fm.evalArgs(e.Elems)
		if err != nil {
			return nil, err
		}
		if err := fm.ev.alloc(sizeOfElems(elems)); err != nil {
			return nil, err
		}
		return vals.MakeArraySlice(elems), nil
	case *ast.Tuple:
		elems, err := fm.evalArgs(e.Elems)
		if err != nil {
			return nil, err
		}
		if err := fm.ev.alloc(sizeOfElems(elems)); err != nil {
			return nil, err
		}
		return vals.Tuple(elems), nil
	case *ast.Object:
		return fm.object(e)
	case *ast.StructLit:
		return fm.structLit(e)
	case *ast.StringInterp:
		return fm.interpolate(e)
	case *ast.Try:
		return fm.try(e)
	case *ast.Await:
		if fm.fn != nil && fm.fn.Name != "" && !fm.fn.Async {
			return nil, errs.Newf(errs.AwaitOutsideAsync,
				"await is only allowed inside async functions, but %s is not async", fm.fn.Name)
		}
		return fm.eval(e.Expr)
	case *ast.Cast:
		return fm.cast(e)
	case *ast.Macro:
		return fm.macro(e)
	case *ast.Return:
		v, err := fm.evalOptional(e.Value)
		if err != nil {
			return nil, err
		}
		return nil, &Flow{Kind: Return, Value: v, node: e}
	case *ast.Break:
		v, err := fm.evalOptional(e.Value)
		if err != nil {
			return nil, err
		}
		return nil, &Flow{Kind: Break, Value: v, node: e}
	case *ast.Continue:
		return nil, &Flow{Kind: Continue, Value: unit, node: e}
	case *ast.StructDecl:
		fm.declareStruct(e)
		return unit, nil
	case *ast.EnumDecl:
		fm.declareEnum(e)
		return unit, nil
	case *ast.TraitDecl:
		fm.ev.types.traits[e.Name] = e
		return unit, nil
	case *ast.ImplDecl:
		if err := fm.declareImpl(e); err != nil {
			return nil, err
		}
		return unit, nil
	}
	return nil, errs.Newf(errs.RuntimeError, "cannot evaluate %T", e)
}

// evalOptional evaluates e, or returns Unit if e is nil.
func (fm *Frame) evalOptional(e ast.Expr) (any, error) {
	if e == nil {
		return unit, nil
	}
	return fm.eval(e)
}

func (fm *Frame) evalArgs(es []ast.Expr) ([]any, error) {
	vs := make([]any, len(es))
	for i, e := range es {
		v, err := fm.eval(e)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

// resolve finds the value of a name: a binding, then a builtin, then a
// member of a declared type.
func (fm *Frame) resolve(name string) (any, bool) {
	if v, ok := fm.env.Lookup(name); ok {
		return v, true
	}
	if v, ok := builtinNs[name]; ok {
		return v, true
	}
	return fm.ev.types.lookupPath(name)
}

func (fm *Frame) lookup(e *ast.Ident) (any, error) {
	if v, ok := fm.resolve(e.Name); ok {
		return v, nil
	}
	return nil, fm.undefined(errs.UndefinedVariable, "undefined variable: ", e.Name)
}

// undefined builds an error for an undefined name, suggesting the nearest
// visible name.
func (fm *Frame) undefined(k errs.Kind, prefix, name string) error {
	e := errs.New(k, prefix+name)
	if near, ok := strutil.Nearest(name, fm.candidates(), 2); ok {
		e.Suggestion = "did you mean `" + near + "`?"
	}
	return e
}

func (fm *Frame) candidates() []string {
	names := fm.env.Names()
	names = append(names, BuiltinNames()...)
	sort.Strings(names)
	return names
}

// scoped runs f in a new scope.
func (fm *Frame) scoped(f func() (any, error)) (any, error) {
	fm.env.Push()
	defer fm.env.Pop()
	return f()
}

func sizeOfElems(vs []any) int {
	n := 16 * (len(vs) + 1)
	for _, v := range vs {
		if s, ok := v.(string); ok {
			n += len(s)
		}
	}
	return n
}
