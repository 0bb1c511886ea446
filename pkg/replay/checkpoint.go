package replay

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/eval/scope"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/parse"
)

// Checkpoint is the state of a session at one point. Its exported fields are
// the serialized form; a checkpoint taken in-process also keeps the full
// environment, while a deserialized one can only bring back scalar bindings.
type Checkpoint struct {
	Bindings        map[string]string `json:"bindings" yaml:"bindings"`
	TypeEnvironment map[string]string `json:"type_environment" yaml:"type_environment"`
	StateHash       string            `json:"state_hash" yaml:"state_hash"`
	ResourceUsage   ResourceUsage     `json:"resource_usage" yaml:"resource_usage"`
	// Declarations maps each binding to the keyword that declared it: "let",
	// "let mut" or "const". Bindings missing from it are restored as "let".
	Declarations map[string]string `json:"declarations,omitempty" yaml:"declarations,omitempty"`

	snapshot *eval.Snapshot
	results  []any
	rng      uint64
	clock    time.Duration
}

// Checkpoint records the current state of the session.
func (s *Session) Checkpoint() Checkpoint {
	ev := s.Evaler
	snap := ev.Snapshot()
	c := Checkpoint{
		Bindings:        map[string]string{},
		TypeEnvironment: map[string]string{},
		Declarations:    map[string]string{},
		StateHash:       StateHash(ev),
		ResourceUsage: ResourceUsage{
			HeapBytes:  ev.MemoryUsage(),
			StackDepth: ev.Stats().MaxDepth,
		},
		snapshot: &snap,
		results:  s.results[:len(s.results):len(s.results)],
	}
	for name, b := range ev.Global.Globals() {
		c.Bindings[name] = vals.Repr(b.Value)
		c.TypeEnvironment[name] = vals.TypeName(b.Value)
		c.Declarations[name] = Declaration(b)
	}
	if s.Deterministic() {
		c.rng = s.RNG.state
		c.clock = s.Clock.elapsed
	}
	return c
}

// Restore brings the session back to a checkpoint. A checkpoint that went
// through serialization restores the bindings whose values are scalars and
// returns the names of the others.
func (s *Session) Restore(c Checkpoint) (skipped []string) {
	ev := s.Evaler
	if c.snapshot != nil {
		ev.Restore(*c.snapshot)
		s.results = c.results
		if s.Deterministic() {
			s.RNG.state = c.rng
			s.Clock.elapsed = c.clock
		}
		return nil
	}
	s.Reset()
	names := make([]string, 0, len(c.Bindings))
	for name := range c.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	var results []any
	for _, name := range names {
		n, isResult := resultIndex(name)
		if isResult && n > len(results) {
			results = append(results, make([]any, n-len(results))...)
		}
		v, ok := Scalar(c.Bindings[name])
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		if isResult {
			results[n-1] = v
		}
		switch c.Declarations[name] {
		case "const":
			ev.Global.BindConst(name, v)
		case "let mut":
			ev.Global.Bind(name, v, true)
		default:
			ev.Global.Bind(name, v, false)
		}
	}
	s.results = results
	if len(skipped) > 0 {
		logger.Printf("checkpoint restore skipped non-scalar bindings: %v", skipped)
	}
	return skipped
}

// Declaration returns the keyword that declares a binding like b.
func Declaration(b scope.Binding) string {
	switch {
	case b.Const:
		return "const"
	case b.Mutable:
		return "let mut"
	}
	return "let"
}

// resultIndex returns N for the name _N of the result history.
func resultIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "_") {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 || strconv.Itoa(n) != name[1:] {
		return 0, false
	}
	return n, true
}

// Scalar parses the display form of a scalar value: a number, a bool, a
// quoted string or char, nil or unit.
func Scalar(display string) (any, bool) {
	e, err := parse.ParseExpr(parse.Source{Name: "[checkpoint]", Code: display})
	if err != nil {
		return nil, false
	}
	neg := false
	if u, ok := e.(*ast.Unary); ok && u.Op == ast.Neg {
		neg, e = true, u.Operand
	}
	lit, ok := e.(*ast.Literal)
	if !ok {
		return nil, false
	}
	v := vals.FromLiteral(lit)
	if neg {
		switch x := v.(type) {
		case int64:
			return -x, true
		case float64:
			return -x, true
		default:
			return nil, false
		}
	}
	return v, true
}
