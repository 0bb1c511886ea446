// Package replay makes interpreter sessions reproducible.
//
// A deterministic Session replaces the wall clock and the random number
// generator of its Evaler with a MockTime and an LCG seeded by the caller, so
// that running the same inputs with the same seed produces the same output
// and the same state hash. Sessions can also be checkpointed, compared and
// recorded for later replay.
package replay

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/logutil"
	"src.rook.sh/pkg/parse"
	"src.rook.sh/pkg/sys"
)

var logger = logutil.GetLogger("[replay] ")

// ResourceUsage is the resources consumed by an evaluation.
type ResourceUsage struct {
	HeapBytes  int   `json:"heap_bytes" yaml:"heap_bytes"`
	StackDepth int   `json:"stack_depth" yaml:"stack_depth"`
	CPUNs      int64 `json:"cpu_ns" yaml:"cpu_ns"`
}

// Result is the outcome of executing one input.
type Result struct {
	Value any
	Err   error
	// Stdout is what the input printed.
	Stdout    string
	StateHash string
	Usage     ResourceUsage
	Elapsed   time.Duration
	// Index is N when the value was bound to _N, and 0 otherwise.
	Index int
}

// OK reports whether the input succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Output is the canonical rendering of the result used to compare runs: the
// printed text followed by the value or the error.
func (r Result) Output() string {
	if r.Err != nil {
		return r.Stdout + "error: " + r.Err.Error()
	}
	if _, ok := r.Value.(vals.Unit); ok {
		return r.Stdout
	}
	return r.Stdout + vals.Repr(r.Value)
}

// Session executes inputs transactionally: an input that fails leaves the
// bindings as they were before it. The value of each input that succeeds with
// something other than unit is appended to the result history and bound to
// _N, where N counts from 1, and to _.
type Session struct {
	Evaler *eval.Evaler
	// Name is the source name reported in error locations.
	Name string
	// Echo, when not nil, also receives what inputs print.
	Echo io.Writer

	// RNG and Clock are nil unless the session is deterministic.
	RNG   *LCG
	Clock *MockTime

	stdout  bytes.Buffer
	outputs []string
	results []any
}

// New creates a deterministic session on a fresh Evaler, seeded with seed.
func New(seed uint64) *Session {
	ev := eval.NewEvaler()
	s := &Session{Evaler: ev, RNG: NewLCG(seed), Clock: NewMockTime()}
	ev.RNG = s.RNG
	ev.Clock = s.Clock
	return s
}

// Wrap creates a session around an existing Evaler, keeping its clock and
// random number generator.
func Wrap(ev *eval.Evaler) *Session {
	return &Session{Evaler: ev}
}

// Deterministic reports whether the session runs on a mock clock and a
// seeded generator.
func (s *Session) Deterministic() bool { return s.RNG != nil }

// Outputs returns the outputs of the inputs executed so far.
func (s *Session) Outputs() []string { return s.outputs }

// Results returns the result history; _N is Results()[N-1].
func (s *Session) Results() []any { return s.results }

// Reset removes all bindings, declared types and results.
func (s *Session) Reset() {
	s.Evaler.Reset()
	s.results = nil
}

func (s *Session) pushResult(v any) int {
	s.results = append(s.results, v)
	n := len(s.results)
	s.Evaler.Global.Bind(fmt.Sprintf("_%d", n), v, false)
	s.Evaler.Global.Bind("_", v, false)
	return n
}

// Execute evaluates an input. On failure the environment is restored to
// what it was before the input.
func (s *Session) Execute(code string) Result {
	ev := s.Evaler
	before := ev.Snapshot()
	s.stdout.Reset()
	if s.Echo != nil {
		ev.Stdout = io.MultiWriter(&s.stdout, s.Echo)
	} else {
		ev.Stdout = &s.stdout
	}

	cpu := sys.ProcessUsage().CPU
	start := time.Now()
	v, err := s.eval(code)
	r := Result{Value: v, Err: err, Elapsed: time.Since(start)}
	if err != nil {
		ev.Restore(before)
		logger.Printf("input failed, bindings restored: %v", err)
	} else if _, unit := v.(vals.Unit); !unit {
		r.Index = s.pushResult(v)
	}
	r.Stdout = s.stdout.String()
	r.StateHash = StateHash(ev)
	r.Usage = ResourceUsage{
		HeapBytes:  ev.MemoryUsage(),
		StackDepth: ev.Stats().MaxDepth,
		CPUNs:      int64(sys.ProcessUsage().CPU - cpu),
	}
	s.outputs = append(s.outputs, r.Output())
	return r
}

func (s *Session) eval(code string) (any, error) {
	return s.guard(func() (any, error) {
		src := parse.Source{Name: s.Name, Code: code}
		prog, err := parse.Parse(src)
		if err != nil {
			return nil, err
		}
		v, err := s.Evaler.EvalProgram(prog, src)
		if err == nil && endsWithDeclaration(prog) {
			v = vals.Unit{}
		}
		return v, err
	})
}

// Peek evaluates code and returns its value, then undoes its effects on the
// bindings. What the code prints is discarded.
func (s *Session) Peek(code string) (any, error) {
	ev := s.Evaler
	snap := ev.Snapshot()
	defer ev.Restore(snap)
	stdout := ev.Stdout
	defer func() { ev.Stdout = stdout }()
	ev.Stdout = io.Discard
	return s.guard(func() (any, error) {
		return ev.Eval(parse.Source{Name: s.Name, Code: code})
	})
}

// guard turns a panic in f into a RuntimeError.
func (s *Session) guard(f func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("panic during evaluation: %v\n%s", r, sys.DumpStack())
			v, err = nil, errs.Newf(errs.RuntimeError, "internal error: %v", r)
		}
	}()
	return f()
}

// endsWithDeclaration reports whether the last statement of prog only
// declares something. The value of such an input is not shown and does not
// enter the result history.
func endsWithDeclaration(prog *ast.Program) bool {
	if len(prog.Stmts) == 0 {
		return false
	}
	switch e := prog.Stmts[len(prog.Stmts)-1].(type) {
	case *ast.Let:
		return e.Body == nil
	case *ast.Function, *ast.StructDecl, *ast.EnumDecl, *ast.TraitDecl, *ast.ImplDecl:
		return true
	}
	return false
}

// ExecuteWithSeed executes code on a fresh deterministic session.
func ExecuteWithSeed(code string, seed uint64) Result {
	return New(seed).Execute(code)
}

// StateHash returns a digest of the global bindings and the declared types
// of an Evaler. Two sessions with the same bindings have the same hash.
func StateHash(ev *eval.Evaler) string {
	globals := ev.Global.Globals()
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	h := sha256.New()
	for _, name := range names {
		b := globals[name]
		fmt.Fprintf(h, "%s\x00%t\x00%s\n", name, b.Mutable, vals.Repr(b.Value))
	}
	for _, name := range ev.TypeNames() {
		fmt.Fprintf(h, "type\x00%s\n", name)
	}
	return hex.EncodeToString(h.Sum(nil))
}
