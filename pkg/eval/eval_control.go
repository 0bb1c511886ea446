package eval

import (
	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/pattern"
	"src.rook.sh/pkg/eval/vals"
)

func (fm *Frame) block(e *ast.Block) (any, error) {
	return fm.scoped(func() (any, error) {
		var v any = unit
		for _, x := range e.Exprs {
			var err error
			v, err = fm.eval(x)
			if err != nil {
				return nil, err
			}
		}
		return v, nil
	})
}

func (fm *Frame) let(e *ast.Let) (any, error) {
	v, err := fm.eval(e.Value)
	if err != nil {
		return nil, err
	}
	v = coerce(v, e.Type)
	if e.Const {
		id, ok := e.Pattern.(*ast.IdentPat)
		if !ok {
			return nil, errs.New(errs.PatternError, "constant must be bound to a name")
		}
		fm.env.BindConst(id.Name, v)
		return v, nil
	}
	if e.Body != nil {
		return fm.scoped(func() (any, error) {
			if err := fm.bindPattern(e.Pattern, v, e.Mutable); err != nil {
				return nil, err
			}
			return fm.eval(e.Body)
		})
	}
	if err := fm.bindPattern(e.Pattern, v, e.Mutable); err != nil {
		return nil, err
	}
	return v, nil
}

// coerce converts an integer to a float when the annotation asks for one.
func coerce(v any, t *ast.Type) any {
	if t == nil || t.Kind != ast.NamedType {
		return v
	}
	if i, ok := v.(int64); ok && (t.Name == "f64" || t.Name == "f32") {
		return float64(i)
	}
	return v
}

// bindPattern matches an irrefutable pattern and binds the names in the
// innermost scope.
func (fm *Frame) bindPattern(p ast.Pattern, v any, mutable bool) error {
	bs, ok, err := pattern.Match(p, v)
	if err != nil {
		return fm.annotate(err, p)
	}
	if !ok {
		return fm.annotate(errs.Newf(errs.PatternError, "pattern %s does not match %s",
			ast.FormatPattern(p), vals.Repr(v)), p)
	}
	fm.bindAll(p, bs, mutable)
	return nil
}

func (fm *Frame) bindAll(p ast.Pattern, bs []pattern.Binding, mutable bool) {
	var muts map[string]bool
	if !mutable {
		muts = mutableNames(p)
	}
	for _, b := range bs {
		fm.env.Bind(b.Name, b.Value, mutable || muts[b.Name])
	}
}

// mutableNames returns the names bound with "mut" inside a pattern.
func mutableNames(p ast.Pattern) map[string]bool {
	var m map[string]bool
	var walk func(ast.Pattern)
	walk = func(p ast.Pattern) {
		switch p := p.(type) {
		case *ast.IdentPat:
			if p.Mutable {
				if m == nil {
					m = map[string]bool{}
				}
				m[p.Name] = true
			}
		case *ast.TuplePat:
			for _, e := range p.Elems {
				walk(e)
			}
		case *ast.ListPat:
			for _, e := range p.Elems {
				walk(e)
			}
		case *ast.StructPat:
			for _, f := range p.Fields {
				if f.Pattern != nil {
					walk(f.Pattern)
				}
			}
		case *ast.EnumPat:
			for _, e := range p.Elems {
				walk(e)
			}
		case *ast.OrPat:
			for _, a := range p.Alts {
				walk(a)
			}
		}
	}
	walk(p)
	return m
}

func (fm *Frame) ifExpr(e *ast.If) (any, error) {
	cond, err := fm.eval(e.Cond)
	if err != nil {
		return nil, err
	}
	if vals.Truthy(cond) {
		return fm.eval(e.Then)
	}
	return fm.evalOptional(e.Else)
}

func (fm *Frame) ifLet(e *ast.IfLet) (any, error) {
	v, err := fm.eval(e.Value)
	if err != nil {
		return nil, err
	}
	bs, ok, err := pattern.Match(e.Pattern, v)
	if err != nil {
		return nil, fm.annotate(err, e.Pattern)
	}
	if !ok {
		return fm.evalOptional(e.Else)
	}
	return fm.scoped(func() (any, error) {
		fm.bindAll(e.Pattern, bs, false)
		return fm.eval(e.Then)
	})
}

func (fm *Frame) match(e *ast.Match) (any, error) {
	v, err := fm.eval(e.Scrutinee)
	if err != nil {
		return nil, err
	}
	for _, arm := range e.Arms {
		bs, ok, err := pattern.Match(arm.Pattern, v)
		if err != nil {
			return nil, fm.annotate(err, arm.Pattern)
		}
		if !ok {
			continue
		}
		result, taken, err := fm.matchArm(arm, bs)
		if err != nil || taken {
			return result, err
		}
	}
	return nil, errs.Newf(errs.NoMatchingArm, "no match arm matched %s", vals.Repr(v))
}

// matchArm evaluates the guard and the body of an arm whose pattern matched.
// It reports whether the arm was taken.
func (fm *Frame) matchArm(arm *ast.MatchArm, bs []pattern.Binding) (any, bool, error) {
	fm.env.Push()
	defer fm.env.Pop()
	fm.bindAll(arm.Pattern, bs, false)
	if arm.Guard != nil {
		g, err := fm.eval(arm.Guard)
		if err != nil {
			return nil, false, err
		}
		if !vals.Truthy(g) {
			return nil, false, nil
		}
	}
	v, err := fm.eval(arm.Body)
	return v, true, err
}

// loopBody classifies the outcome of one iteration. It returns done = true
// when the loop should stop, along with the value of the loop.
func loopBody(err error) (done bool, result any, _ error) {
	if err == nil {
		return false, nil, nil
	}
	if f, ok := err.(*Flow); ok {
		switch f.Kind {
		case Break:
			return true, f.Value, nil
		case Continue:
			return false, nil, nil
		}
	}
	return true, nil, err
}

func (fm *Frame) forLoop(e *ast.For) (any, error) {
	iterable, err := fm.eval(e.Iter)
	if err != nil {
		return nil, err
	}
	if !vals.CanIterate(iterable) {
		return nil, fm.annotate(errs.Newf(errs.TypeError, "%s is not iterable", vals.Kind(iterable)), e.Iter)
	}
	var result any = unit
	var loopErr error
	err = vals.Iterate(iterable, func(elem any) bool {
		_, err := fm.scoped(func() (any, error) {
			if err := fm.bindPattern(e.Pattern, elem, false); err != nil {
				return nil, err
			}
			return fm.eval(e.Body)
		})
		done, v, err := loopBody(err)
		if err != nil {
			loopErr = err
		} else if done {
			result = v
		}
		return !done
	})
	if err != nil {
		return nil, err
	}
	if loopErr != nil {
		return nil, loopErr
	}
	return result, nil
}

func (fm *Frame) whileLoop(e *ast.While) (any, error) {
	for {
		cond, err := fm.eval(e.Cond)
		if err != nil {
			return nil, err
		}
		if !vals.Truthy(cond) {
			return unit, nil
		}
		_, err = fm.eval(e.Body)
		if done, v, err := loopBody(err); err != nil {
			return nil, err
		} else if done {
			return v, nil
		}
	}
}

func (fm *Frame) loop(e *ast.Loop) (any, error) {
	for {
		_, err := fm.eval(e.Body)
		if done, v, err := loopBody(err); err != nil {
			return nil, err
		} else if done {
			return v, nil
		}
	}
}
