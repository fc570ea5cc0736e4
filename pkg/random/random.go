// Package random provides the injectable randomness used by the solver.
package random

import (
	"math/rand"
	"sync"
)

// Source yields uniformly distributed floats in [0, 1).
type Source interface {
	Float64() float64
}

// Seeded is a reproducible Source backed by math/rand.
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded returns a Source that replays the same sequence for the same seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Float64 implements Source.
func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func Intn(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	v := int(src.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Shuffle permutes items in place (Fisher-Yates).
func Shuffle[T any](src Source, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := Intn(src, i+1)
		items[i], items[j] = items[j], items[i]
	}
}

// Sample returns k distinct items chosen uniformly, leaving the input untouched.
func Sample[T any](src Source, items []T, k int) []T {
	cp := make([]T, len(items))
	copy(cp, items)
	Shuffle(src, cp)
	if k > len(cp) {
		k = len(cp)
	}
	if k < 0 {
		k = 0
	}
	return cp[:k]
}
