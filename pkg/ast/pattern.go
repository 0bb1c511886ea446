package ast

import "src.rook.sh/pkg/diag"

// Pattern is a pattern in let, for, match and if let.
type Pattern interface {
	Node
	isPattern()
}

// WildcardPat is _.
type WildcardPat struct {
	diag.Ranging
}

// IdentPat binds the matched value to Name.
type IdentPat struct {
	diag.Ranging
	Name    string
	Mutable bool
}

// LiteralPat matches a value equal to Lit. Negative numbers are folded into
// the literal.
type LiteralPat struct {
	diag.Ranging
	Lit *Literal
}

// TuplePat is (p1, p2, ...).
type TuplePat struct {
	diag.Ranging
	Elems []Pattern
}

// ListPat is [p1, p2, ...]; it may contain one RestPat.
type ListPat struct {
	diag.Ranging
	Elems []Pattern
}

// FieldPat is one field of a StructPat. Pattern is nil for the shorthand form
// that binds the field to its own name.
type FieldPat struct {
	diag.Ranging
	Name    string
	Pattern Pattern
}

// StructPat is Name { f1, f2: p, .. }. Name may be empty.
type StructPat struct {
	diag.Ranging
	Name    string
	Fields  []*FieldPat
	HasRest bool
}

// RangePat is lo..hi or lo..=hi. Bounds are literal patterns.
type RangePat struct {
	diag.Ranging
	Start, End Pattern
	Inclusive  bool
}

// OrPat is p1 | p2 | ....
type OrPat struct {
	diag.Ranging
	Alts []Pattern
}

// EnumPat matches an enum variant. Enum is empty when the pattern names a
// bare variant such as Some(x), Ok(x) or None. Elems is nil for unit
// variants.
type EnumPat struct {
	diag.Ranging
	Enum    string
	Variant string
	Elems   []Pattern
}

// RestPat is .. in a list pattern, optionally bound as ..name or name @ ...
type RestPat struct {
	diag.Ranging
	Name string
}

func (*WildcardPat) isPattern() {}
func (*IdentPat) isPattern()    {}
func (*LiteralPat) isPattern()  {}
func (*TuplePat) isPattern()    {}
func (*ListPat) isPattern()     {}
func (*StructPat) isPattern()   {}
func (*RangePat) isPattern()    {}
func (*OrPat) isPattern()       {}
func (*EnumPat) isPattern()     {}
func (*RestPat) isPattern()     {}

// PatternNames returns the names bound by p, in left-to-right order.
func PatternNames(p Pattern) []string {
	var names []string
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch p := p.(type) {
		case *IdentPat:
			names = append(names, p.Name)
		case *TuplePat:
			for _, e := range p.Elems {
				walk(e)
			}
		case *ListPat:
			for _, e := range p.Elems {
				walk(e)
			}
		case *StructPat:
			for _, f := range p.Fields {
				if f.Pattern == nil {
					names = append(names, f.Name)
				} else {
					walk(f.Pattern)
				}
			}
		case *OrPat:
			if len(p.Alts) > 0 {
				walk(p.Alts[0])
			}
		case *EnumPat:
			for _, e := range p.Elems {
				walk(e)
			}
		case *RestPat:
			if p.Name != "" {
				names = append(names, p.Name)
			}
		}
	}
	walk(p)
	return names
}
