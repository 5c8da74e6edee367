package neat

import "math/rand"

// RandomSource is the uniform random number capability used by the
// evolutionary operators. *rand.Rand satisfies it.
type RandomSource interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// NewRandomSource returns a seeded source. It is not safe for concurrent use;
// give every goroutine its own.
func NewRandomSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
