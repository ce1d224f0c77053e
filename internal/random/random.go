// Package random is the single seeded stream every generator draws from.
// Output is reproducible as long as the seed and the order of draws are fixed.
package random

import (
	"math"

	"github.com/brianvoe/gofakeit/v6"
)

// Source wraps a seeded gofakeit Faker.
type Source struct {
	faker *gofakeit.Faker
}

// New creates a Source. A zero seed lets gofakeit pick a random one.
func New(seed int64) *Source {
	return &Source{faker: gofakeit.New(seed)}
}

// Faker exposes the underlying generator for fake-value helpers.
func (s *Source) Faker() *gofakeit.Faker {
	return s.faker
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return s.faker.Rand.Float64()
}

// IntRange returns a uniform integer in [min, max].
func (s *Source) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.faker.Rand.Intn(max-min+1)
}

// Pick returns a uniform index in [0, n).
func (s *Source) Pick(n int) int {
	return s.faker.Rand.Intn(n)
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}

// UUID returns a version 4 UUID drawn from the seeded stream.
func (s *Source) UUID() string {
	return s.faker.UUID()
}

// Poisson draws from a Poisson distribution using Knuth's method.
// Suitable for the small means used here.
func (s *Source) Poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= s.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
