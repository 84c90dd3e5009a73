package randutil

import (
	rand "math/rand/v2"
	"slices"
)

// Linear congruential generator constants (Numerical Recipes). The
// generator only has to be cheap and stable, not statistically strong:
// its whole job is making shuffles replayable from a seed string.
const (
	lcgMul = 1664525
	lcgInc = 1013904223
)

// SeedHash derives a 32-bit state from an arbitrary seed string using a
// polynomial rolling hash (h*31 + c). The hash is order-dependent, so
// "ab" and "ba" seed different shuffles.
func SeedHash(seed string) uint32 {
	var h uint32
	for _, r := range seed {
		h = (h << 5) - h + uint32(r)
	}
	return h
}

// ShuffleSeeded returns a new slice holding a permutation of items that
// is a pure function of (input order, seed). Fisher-Yates walking from
// the back, swapping index i only with j in [0, i], so every index is
// visited exactly once and the permutation is unbiased for the
// generator driving it.
func ShuffleSeeded[T any](items []T, seed string) []T {
	out := slices.Clone(items)
	state := SeedHash(seed)
	for i := len(out) - 1; i > 0; i-- {
		state = state*lcgMul + lcgInc
		j := int(state % uint32(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Shuffle returns a new slice holding a non-deterministic permutation
// of items, for games that do not pin a seed.
func Shuffle[T any](items []T) []T {
	out := slices.Clone(items)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
