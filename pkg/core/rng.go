package core

import "math/rand/v2"

// RNG wraps a PCG-backed math/rand/v2 generator so scenarios and soups are
// reproducible from a single seed.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Chance reports true with probability p.
func (r *RNG) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return r.r.Float64() < p
}

// Soup fills buf with live cells at the given density and dead cells
// elsewhere.
func (r *RNG) Soup(buf []uint8, density float64) {
	for i := range buf {
		buf[i] = 0
		if r.Chance(density) {
			buf[i] = 1
		}
	}
}

// IntN returns a value in [0, n).
func (r *RNG) IntN(n int) int { return r.r.IntN(n) }
