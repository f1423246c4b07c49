package simulation

import "math/rand/v2"

// Source is the randomness the simulation draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	NormFloat64() float64
	IntN(n int) int
}

// NewSource returns a deterministic PCG-backed source for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
