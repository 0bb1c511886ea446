package eval

import (
	"time"

	"src.rook.sh/pkg/eval/errs"
)

// Builtins that depend on randomness and time. They go through the RNG and
// the Clock of the Evaler, so that a deterministic session can replace both.

func init() {
	addBuiltinFns(map[string]any{
		"rand":     randFloat,
		"rand_int": randInt,
		"now":      now,
		"sleep":    sleep,
	})
}

// randFloat returns a float uniformly distributed in [0, 1).
func randFloat(fm *Frame) float64 {
	return float64(fm.ev.RNG.Uint64()>>11) / (1 << 53)
}

// randInt returns an integer uniformly distributed in [lo, hi).
func randInt(fm *Frame, lo, hi int64) (int64, error) {
	if hi <= lo {
		return 0, errs.Newf(errs.RuntimeError, "rand_int: empty range %d..%d", lo, hi)
	}
	n := uint64(hi - lo)
	return lo + int64(fm.ev.RNG.Uint64()%n), nil
}

// now returns the current time in seconds since the Unix epoch.
func now(fm *Frame) float64 {
	t := fm.ev.Clock.Now()
	return float64(t.UnixNano()) / 1e9
}

func sleep(fm *Frame, ms int64) error {
	if ms < 0 {
		return errs.Newf(errs.RuntimeError, "sleep: negative duration %d", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if !fm.ev.deadline.IsZero() && fm.ev.Clock == RealClock && time.Now().Add(d).After(fm.ev.deadline) {
		fm.ev.Clock.Sleep(time.Until(fm.ev.deadline))
		return fm.ev.checkLimits()
	}
	fm.ev.Clock.Sleep(d)
	return nil
}
