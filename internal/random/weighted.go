package random

import (
	"errors"
	"fmt"
)

// ErrEmptyTable is returned when a weight table has nothing to draw from.
var ErrEmptyTable = errors.New("weight table is empty")

// Weighted is a discrete distribution over a declared weight table.
type Weighted[T any] struct {
	values     []T
	cumulative []float64
	total      float64
}

// NewWeighted builds a distribution. Weights need not sum to one.
func NewWeighted[T any](values []T, weights []float64) (*Weighted[T], error) {
	if len(values) == 0 {
		return nil, ErrEmptyTable
	}
	if len(values) != len(weights) {
		return nil, fmt.Errorf("weight table mismatch: %d values, %d weights", len(values), len(weights))
	}

	w := &Weighted[T]{
		values:     append([]T(nil), values...),
		cumulative: make([]float64, len(weights)),
	}
	for i, weight := range weights {
		if weight < 0 {
			return nil, fmt.Errorf("weight %d is negative: %v", i, weight)
		}
		w.total += weight
		w.cumulative[i] = w.total
	}
	if w.total == 0 {
		return nil, ErrEmptyTable
	}
	return w, nil
}

// Uniform builds a distribution giving every value the same weight.
func Uniform[T any](values ...T) *Weighted[T] {
	weights := make([]float64, len(values))
	for i := range weights {
		weights[i] = 1
	}
	w, err := NewWeighted(values, weights)
	if err != nil {
		panic(err)
	}
	return w
}

// MustWeighted is NewWeighted for package-level tables.
func MustWeighted[T any](values []T, weights []float64) *Weighted[T] {
	w, err := NewWeighted(values, weights)
	if err != nil {
		panic(err)
	}
	return w
}

// Draw returns one value.
func (w *Weighted[T]) Draw(src *Source) T {
	target := src.Float64() * w.total
	for i, c := range w.cumulative {
		if target < c {
			return w.values[i]
		}
	}
	return w.values[len(w.values)-1]
}

// Values returns a copy of the table's values.
func (w *Weighted[T]) Values() []T {
	return append([]T(nil), w.values...)
}

// Probability returns the normalized weight of index i.
func (w *Weighted[T]) Probability(i int) float64 {
	prev := 0.0
	if i > 0 {
		prev = w.cumulative[i-1]
	}
	return (w.cumulative[i] - prev) / w.total
}
