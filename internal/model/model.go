// Package model loads the baseline and residual regressors and exposes them
// behind a small interface the valuation pipeline depends on.
package model

import (
	"fmt"

	"irea.valuation/internal/features"
)

// Model is a trained regressor. Implementations must be safe for concurrent
// Predict calls once constructed.
type Model interface {
	// Spec is the model's ordered feature schema.
	Spec() features.Spec
	// Predict evaluates one vector built against Spec.
	Predict(v features.Vector) (float64, error)
}

func checkVector(spec features.Spec, v features.Vector) error {
	if v.Len() != spec.Len() {
		return fmt.Errorf("model %s: vector has %d cells, want %d", spec.Name(), v.Len(), spec.Len())
	}
	return nil
}

// Func adapts a plain function to Model.
type Func struct {
	spec features.Spec
	fn   func(features.Vector) float64
}

// NewFunc returns a Model that evaluates fn.
func NewFunc(spec features.Spec, fn func(features.Vector) float64) *Func {
	return &Func{spec: spec, fn: fn}
}

func (f *Func) Spec() features.Spec { return f.spec }

func (f *Func) Predict(v features.Vector) (float64, error) {
	if err := checkVector(f.spec, v); err != nil {
		return 0, err
	}
	return f.fn(v), nil
}

// NewStatic returns a Model that always predicts value.
func NewStatic(spec features.Spec, value float64) *Func {
	return NewFunc(spec, func(features.Vector) float64 { return value })
}
