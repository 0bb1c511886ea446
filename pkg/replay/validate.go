package replay

import "fmt"

// DivergenceKind classifies a Divergence.
type DivergenceKind string

// Kinds of divergence.
const (
	OutputDivergence DivergenceKind = "output"
	StateDivergence  DivergenceKind = "state"
)

// Divergence is one difference between two runs that should have been
// identical.
type Divergence struct {
	Kind DivergenceKind `yaml:"kind"`
	// Index is the position of the input in the run, or -1 for the final
	// state.
	Index    int    `yaml:"index"`
	Expected string `yaml:"expected"`
	Actual   string `yaml:"actual"`
}

func (d Divergence) String() string {
	if d.Index < 0 {
		return fmt.Sprintf("%s diverged: expected %q, got %q", d.Kind, d.Expected, d.Actual)
	}
	return fmt.Sprintf("%s of input %d diverged: expected %q, got %q", d.Kind, d.Index, d.Expected, d.Actual)
}

// Validation is the result of comparing two sessions.
type Validation struct {
	IsDeterministic bool
	Divergences     []Divergence
}

// ValidateDeterminism compares the outputs two sessions produced, input by
// input, and their final state hashes.
func ValidateDeterminism(a, b *Session) Validation {
	var v Validation
	outA, outB := a.Outputs(), b.Outputs()
	for i := 0; i < len(outA) || i < len(outB); i++ {
		var x, y string
		if i < len(outA) {
			x = outA[i]
		}
		if i < len(outB) {
			y = outB[i]
		}
		if x != y || i >= len(outA) || i >= len(outB) {
			v.Divergences = append(v.Divergences, Divergence{OutputDivergence, i, x, y})
		}
	}
	if ha, hb := StateHash(a.Evaler), StateHash(b.Evaler); ha != hb {
		v.Divergences = append(v.Divergences, Divergence{StateDivergence, -1, ha, hb})
	}
	v.IsDeterministic = len(v.Divergences) == 0
	return v
}
