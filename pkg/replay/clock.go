package replay

import "time"

// MockTime is a clock that only moves when told to. It starts at the Unix
// epoch; sleeping advances it instantly. It implements eval.Clock.
type MockTime struct {
	elapsed time.Duration
}

// NewMockTime returns a MockTime at time zero.
func NewMockTime() *MockTime { return &MockTime{} }

// Now returns the epoch plus the time advanced so far.
func (c *MockTime) Now() time.Time { return time.Unix(0, 0).Add(c.elapsed) }

// Elapsed returns the time advanced so far.
func (c *MockTime) Elapsed() time.Duration { return c.elapsed }

// Advance moves the clock forward. Negative durations are ignored so that
// the clock stays monotonic.
func (c *MockTime) Advance(d time.Duration) {
	if d > 0 {
		c.elapsed += d
	}
}

// Sleep advances the clock without blocking.
func (c *MockTime) Sleep(d time.Duration) { c.Advance(d) }
