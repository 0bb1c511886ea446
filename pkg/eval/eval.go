// Package eval implements the Rook interpreter.
//
// An Evaler holds the state of one session: the global environment, the
// registry of declared types, the heap side-table and the inline caches.
// Evaluation is a recursive walk over the syntax tree; each evaluation runs
// under a deadline, a memory cap and a recursion limit.
package eval

import (
	"io"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/feedback"
	"src.rook.sh/pkg/eval/gc"
	"src.rook.sh/pkg/eval/scope"
	"src.rook.sh/pkg/logutil"
	"src.rook.sh/pkg/parse"
)

var logger = logutil.GetLogger("[eval] ")

// DefaultMaxDepth is the default limit of nested function calls.
const DefaultMaxDepth = 1000

// Limits are the resource limits of one evaluation. Zero values mean no
// limit, except for MaxDepth, where zero means DefaultMaxDepth.
type Limits struct {
	Timeout   time.Duration
	MemoryCap int
	MaxDepth  int
}

// RNG is a source of random numbers.
type RNG interface {
	Uint64() uint64
}

// Clock is a source of time.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// Evaler is the state of an interpreter session. It is not safe for
// concurrent use.
type Evaler struct {
	Global   *scope.Env
	Heap     *gc.Heap
	Feedback *feedback.Table
	Limits   Limits

	// Stdout receives the output of print builtins and macros.
	Stdout io.Writer
	RNG    RNG
	Clock  Clock

	types *typeRegistry

	deadline    time.Time
	interrupted atomic.Bool
	steps       uint64
	allocated   int
	peakMem     int
	maxDepth    int
	stats       Stats
}

// Stats counts the work an Evaler has done.
type Stats struct {
	Evaluations int
	Steps       uint64
	Calls       uint64
	// MaxDepth is the deepest call nesting reached.
	MaxDepth int
}

// NewEvaler creates a new Evaler with an empty global environment, writing
// to os.Stdout and using the wall clock and a time-seeded RNG.
func NewEvaler() *Evaler {
	return &Evaler{
		Global:   scope.New(),
		Heap:     gc.New(),
		Feedback: feedback.NewTable(),
		Limits:   Limits{MaxDepth: DefaultMaxDepth},
		Stdout:   os.Stdout,
		RNG:      rand.New(rand.NewSource(time.Now().UnixNano())),
		Clock:    RealClock,
		types:    newTypeRegistry(),
	}
}

// Eval parses and evaluates a source. It returns the value of the last
// statement.
func (ev *Evaler) Eval(src parse.Source) (any, error) {
	prog, err := parse.Parse(src)
	if err != nil {
		return nil, err
	}
	return ev.EvalProgram(prog, src)
}

// EvalProgram evaluates a parsed program in the global environment. It
// returns the value of the last statement, or Unit for an empty program.
// EvalProgram is not transactional: bindings made before an error stay in
// place. Use Snapshot and Restore to undo them.
func (ev *Evaler) EvalProgram(prog *ast.Program, src parse.Source) (any, error) {
	ev.begin()
	fm := &Frame{ev: ev, env: ev.Global, src: src}
	var v any = unit
	for _, stmt := range prog.Stmts {
		var err error
		v, err = fm.eval(stmt)
		if err != nil {
			return nil, fm.escape(err)
		}
	}
	return v, nil
}

// EvalExpr evaluates a single expression in the global environment.
func (ev *Evaler) EvalExpr(e ast.Expr, src parse.Source) (any, error) {
	ev.begin()
	fm := &Frame{ev: ev, env: ev.Global, src: src}
	v, err := fm.eval(e)
	if err != nil {
		return nil, fm.escape(err)
	}
	return v, nil
}

func (ev *Evaler) begin() {
	ev.stats.Evaluations++
	ev.allocated = 0
	ev.interrupted.Store(false)
	if ev.Limits.Timeout > 0 {
		ev.deadline = time.Now().Add(ev.Limits.Timeout)
	} else {
		ev.deadline = time.Time{}
	}
}

func (ev *Evaler) maxDepthLimit() int {
	if ev.Limits.MaxDepth > 0 {
		return ev.Limits.MaxDepth
	}
	return DefaultMaxDepth
}

// Interrupt makes the running evaluation fail at its next limit check. It
// may be called from another goroutine, such as a signal handler.
func (ev *Evaler) Interrupt() { ev.interrupted.Store(true) }

// checkLimits checks for interrupts, the deadline and the memory cap.
func (ev *Evaler) checkLimits() error {
	if ev.interrupted.Load() {
		return errs.Newf(errs.RuntimeError, "interrupted")
	}
	if !ev.deadline.IsZero() && time.Now().After(ev.deadline) {
		logger.Printf("evaluation timed out after %v", ev.Limits.Timeout)
		return errs.Newf(errs.Timeout, "evaluation timed out after %v", ev.Limits.Timeout)
	}
	if mem := ev.MemoryUsage(); ev.Limits.MemoryCap > 0 && mem > ev.Limits.MemoryCap {
		logger.Printf("memory cap exceeded: %d > %d", mem, ev.Limits.MemoryCap)
		return errs.Newf(errs.MemoryExceeded, "memory limit of %d bytes exceeded", ev.Limits.MemoryCap)
	}
	return nil
}

// alloc records an estimated allocation of n bytes by the current
// evaluation, failing with MemoryExceeded when it goes over the cap.
func (ev *Evaler) alloc(n int) error {
	ev.allocated += n
	mem := ev.MemoryUsage()
	if mem > ev.peakMem {
		ev.peakMem = mem
	}
	if ev.Limits.MemoryCap > 0 && mem > ev.Limits.MemoryCap {
		logger.Printf("memory cap exceeded: %d > %d", mem, ev.Limits.MemoryCap)
		return errs.Newf(errs.MemoryExceeded, "memory limit of %d bytes exceeded", ev.Limits.MemoryCap)
	}
	return nil
}

// MemoryUsage returns the estimated memory in use: the size of the values
// tracked by the heap plus the allocations of the current evaluation.
func (ev *Evaler) MemoryUsage() int {
	return ev.Heap.Bytes() + ev.allocated
}

// PeakMemory returns the highest value MemoryUsage has had.
func (ev *Evaler) PeakMemory() int { return ev.peakMem }

// Stats returns the statistics of the Evaler.
func (ev *Evaler) Stats() Stats {
	s := ev.stats
	s.Steps = ev.steps
	s.MaxDepth = ev.maxDepth
	return s
}

// CollectGarbage tracks the large values bound in the global environment and
// frees the bookkeeping of tracked values no longer reachable from it. It
// returns the number of values freed.
func (ev *Evaler) CollectGarbage() int {
	var roots []any
	ev.Global.EachValue(func(v any) {
		ev.Heap.Track(v)
		roots = append(roots, v)
	})
	for _, methods := range ev.types.impls {
		for _, m := range methods {
			roots = append(roots, m)
		}
	}
	freed := ev.Heap.Collect(roots...)
	if mem := ev.MemoryUsage(); mem > ev.peakMem {
		ev.peakMem = mem
	}
	return freed
}

// Snapshot records the state of the session that evaluation can change.
type Snapshot struct {
	env   scope.Snapshot
	types *typeRegistry
}

// Snapshot takes a snapshot of the global environment and the declared
// types.
func (ev *Evaler) Snapshot() Snapshot {
	return Snapshot{ev.Global.Snapshot(), ev.types.clone()}
}

// Restore restores the session to a snapshot.
func (ev *Evaler) Restore(s Snapshot) {
	ev.Global.Restore(s.env)
	ev.types = s.types.clone()
}

// Reset removes all bindings and declared types and clears the caches.
func (ev *Evaler) Reset() {
	ev.Global.Reset()
	ev.types = newTypeRegistry()
	ev.Heap.Reset()
	ev.Feedback.Reset()
}

// TypeNames returns the names of the declared structs, enums and traits.
func (ev *Evaler) TypeNames() []string {
	return ev.types.names()
}
