// Package random provides a seeded pseudo-random stream that is passed explicitly
// to every simulation step. Nothing in this module draws from a global source.
package random

import (
	"math/rand"
)

// Stream is a deterministic random source. It is not safe for concurrent use;
// every simulation run owns its own Stream.
type Stream struct {
	rng *rand.Rand
}

// New returns a Stream seeded with seed.
func New(seed int64) *Stream {
	return &Stream{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // simulation stream, not crypto
}

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// Chance reports whether a draw falls under p.
func (s *Stream) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// IntRange returns a uniform integer in [lo, hi]. If hi < lo, lo is returned.
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Intn returns a uniform integer in [0, n).
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.Intn(n)
}

// Shuffle permutes vals in place.
func Shuffle[T any](s *Stream, vals []T) {
	s.rng.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
}

// Choice returns one element of vals uniformly. vals must be non-empty.
func Choice[T any](s *Stream, vals []T) T {
	return vals[s.rng.Intn(len(vals))]
}

// Sample draws k distinct elements of vals without replacement, in draw
// order. k is capped at len(vals). The input slice is not modified.
func Sample[T any](s *Stream, vals []T, k int) []T {
	k = min(k, len(vals))
	if k <= 0 {
		return nil
	}
	pool := append([]T(nil), vals...)
	out := make([]T, 0, k)
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		out = append(out, pool[i])
	}
	return out
}

// Weighted returns one element of ids drawn with probability proportional to
// its weight. Non-positive total weight falls back to a uniform draw.
func (s *Stream) Weighted(ids []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return Choice(s, ids)
	}
	r := s.rng.Float64() * total
	acc := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if r < acc {
			return ids[i]
		}
	}
	return ids[last]
}

// WeightedChoices draws k elements with replacement, each proportional to its weight.
func (s *Stream) WeightedChoices(ids []string, weights []float64, k int) []string {
	out := make([]string, k)
	for i := range out {
		out[i] = s.Weighted(ids, weights)
	}
	return out
}
