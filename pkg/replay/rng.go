package replay

// Parameters of the linear congruential generator (Knuth's MMIX).
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

// LCG is a reproducible stream of pseudo-random numbers seeded by a single
// integer. It implements eval.RNG.
type LCG struct {
	seed  uint64
	state uint64
}

// NewLCG returns a generator seeded with seed.
func NewLCG(seed uint64) *LCG {
	return &LCG{seed, seed}
}

// Seed returns the seed the generator was created with.
func (r *LCG) Seed() uint64 { return r.seed }

// Uint64 advances the generator and returns the next number. The high bits
// of an LCG state are the most random, so the output mixes them downwards.
func (r *LCG) Uint64() uint64 {
	r.state = r.state*lcgMultiplier + lcgIncrement
	x := r.state
	x ^= x >> 33
	return x
}

// Reset rewinds the generator to its seed.
func (r *LCG) Reset() { r.state = r.seed }
