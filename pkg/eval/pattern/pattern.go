// Package pattern matches patterns against values.
package pattern

import (
	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// Binding is a name bound by a successful match.
type Binding struct {
	Name  string
	Value any
}

// Match matches a pattern against a value. It returns the bindings in
// left-to-right order and whether the match succeeded. The error is non-nil
// only for malformed patterns, such as a range pattern with non-integer
// bounds or a name bound twice.
func Match(p ast.Pattern, v any) ([]Binding, bool, error) {
	m := &matcher{}
	ok, err := m.match(p, v)
	if err != nil || !ok {
		return nil, false, err
	}
	seen := make(map[string]bool, len(m.bindings))
	for _, b := range m.bindings {
		if seen[b.Name] {
			return nil, false, patternError("identifier %s is bound more than once in the same pattern", b.Name)
		}
		seen[b.Name] = true
	}
	return m.bindings, true, nil
}

func patternError(format string, args ...any) error {
	return errs.Newf(errs.PatternError, format, args...)
}

type matcher struct {
	bindings []Binding
}

func (m *matcher) bind(name string, v any) {
	m.bindings = append(m.bindings, Binding{name, v})
}

func (m *matcher) match(p ast.Pattern, v any) (bool, error) {
	switch p := p.(type) {
	case *ast.WildcardPat:
		return true, nil
	case *ast.IdentPat:
		m.bind(p.Name, v)
		return true, nil
	case *ast.RestPat:
		if p.Name != "" {
			m.bind(p.Name, v)
		}
		return true, nil
	case *ast.LiteralPat:
		return vals.Equal(vals.FromLiteral(p.Lit), v), nil
	case *ast.TuplePat:
		t, ok := v.(vals.Tuple)
		if !ok {
			return false, nil
		}
		return m.matchSeq(p.Elems, t, func(elems []any) any { return vals.Tuple(elems) })
	case *ast.ListPat:
		a, ok := v.(vals.Array)
		if !ok {
			return false, nil
		}
		return m.matchSeq(p.Elems, vals.ArrayElems(a), func(elems []any) any { return vals.MakeArraySlice(elems) })
	case *ast.StructPat:
		return m.matchStruct(p, v)
	case *ast.RangePat:
		return matchRange(p, v)
	case *ast.OrPat:
		for _, alt := range p.Alts {
			saved := len(m.bindings)
			ok, err := m.match(alt, v)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			m.bindings = m.bindings[:saved]
		}
		return false, nil
	case *ast.EnumPat:
		return m.matchEnum(p, v)
	}
	return false, patternError("unsupported pattern %T", p)
}

// matchSeq matches a sequence of patterns, which may contain one rest
// pattern, against the elements of a tuple or array. A named rest pattern is
// bound to a value of the same kind built by wrap.
func (m *matcher) matchSeq(pats []ast.Pattern, elems []any, wrap func([]any) any) (bool, error) {
	rest := -1
	for i, p := range pats {
		if _, ok := p.(*ast.RestPat); ok {
			if rest >= 0 {
				return false, patternError("more than one rest pattern")
			}
			rest = i
		}
	}
	if rest < 0 {
		if len(pats) != len(elems) {
			return false, nil
		}
		return m.matchEach(pats, elems)
	}
	before, after := pats[:rest], pats[rest+1:]
	if len(elems) < len(before)+len(after) {
		return false, nil
	}
	if ok, err := m.matchEach(before, elems[:len(before)]); !ok || err != nil {
		return ok, err
	}
	if name := pats[rest].(*ast.RestPat).Name; name != "" {
		middle := append([]any(nil), elems[len(before):len(elems)-len(after)]...)
		m.bind(name, wrap(middle))
	}
	return m.matchEach(after, elems[len(elems)-len(after):])
}

func (m *matcher) matchEach(pats []ast.Pattern, elems []any) (bool, error) {
	for i, p := range pats {
		ok, err := m.match(p, elems[i])
		if !ok || err != nil {
			return ok, err
		}
	}
	return true, nil
}

// Extra fields are always allowed, whether or not the pattern ends with "..".
func (m *matcher) matchStruct(p *ast.StructPat, v any) (bool, error) {
	obj, ok := v.(vals.Object)
	if !ok {
		return false, nil
	}
	if p.Name != "" && obj.TypeName != "" && p.Name != obj.TypeName {
		return false, nil
	}
	for _, f := range p.Fields {
		fv, ok := obj.Field(f.Name)
		if !ok {
			return false, nil
		}
		if f.Pattern == nil {
			m.bind(f.Name, fv)
			continue
		}
		ok, err := m.match(f.Pattern, fv)
		if !ok || err != nil {
			return ok, err
		}
	}
	return true, nil
}

func (m *matcher) matchEnum(p *ast.EnumPat, v any) (bool, error) {
	variant, ok := v.(vals.Variant)
	if !ok || variant.Name != p.Variant {
		return false, nil
	}
	if p.Enum != "" && p.Enum != variant.Enum {
		return false, nil
	}
	if p.Elems == nil {
		return len(variant.Data) == 0, nil
	}
	return m.matchSeq(p.Elems, variant.Data, func(elems []any) any { return vals.Tuple(elems) })
}

func matchRange(p *ast.RangePat, v any) (bool, error) {
	lo, err := rangeBound(p.Start)
	if err != nil {
		return false, err
	}
	hi, err := rangeBound(p.End)
	if err != nil {
		return false, err
	}
	var x int64
	switch v := v.(type) {
	case int64:
		x = v
	case vals.Char:
		x = int64(v)
	default:
		return false, nil
	}
	if x < lo {
		return false, nil
	}
	if p.Inclusive {
		return x <= hi, nil
	}
	return x < hi, nil
}

func rangeBound(b ast.Pattern) (int64, error) {
	if lit, ok := b.(*ast.LiteralPat); ok {
		switch v := vals.FromLiteral(lit.Lit).(type) {
		case int64:
			return v, nil
		case vals.Char:
			return int64(v), nil
		}
	}
	return 0, patternError("range pattern bounds must be integers, got %s", ast.FormatPattern(b))
}
