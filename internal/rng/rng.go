// Package rng holds the single random source every engine draws from.
package rng

import (
	mathrand "math/rand"
	"sync"
	"time"
)

// Source yields uniform floats in [0,1).
type Source interface {
	Float64() float64
}

type locked struct {
	mu   sync.Mutex
	rand *mathrand.Rand
}

// New returns a time-seeded source that is safe for concurrent use.
func New() Source {
	return NewSeeded(time.Now().UnixNano())
}

func NewSeeded(seed int64) Source {
	return &locked{rand: mathrand.New(mathrand.NewSource(seed))}
}

func (l *locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rand.Float64()
}

// Sequence replays fixed values in order and wraps around. Values are
// clamped into [0,1).
type Sequence struct {
	values []float64
	next   int
}

func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	switch {
	case v < 0:
		return 0
	case v >= 1:
		return 0.9999999999
	}
	return v
}

// Between draws uniformly in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntBetween draws uniformly in [lo, hi] inclusive.
func IntBetween(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(src.Float64()*float64(hi-lo+1))
}
