// Package vector provides the feature vector type shared by the context key,
// the coherence field, and the min-cut boundary.
// See design doc Section 3 (Feature vector F) and Section 9 (generic over N).
package vector

import "golang.org/x/exp/constraints"

// FeatureVec is an ordered tuple of scalars, each clamped to [0,1]. Each
// vector's dimension N is fixed when it is built. Nothing in the engine checks
// that the vectors fed to one field or boundary share the same N;
// ctxkey.Cosine compares only their common leading components.
type FeatureVec struct {
	values []float64
}

// New builds a FeatureVec from raw components, clamping each to [0,1] and
// treating NaN as 0 (domain violations are clamped, never rejected).
func New(components ...float64) FeatureVec {
	values := make([]float64, len(components))
	for i, c := range components {
		values[i] = Clamp01(c)
	}
	return FeatureVec{values: values}
}

// Zero returns the N-dimensional zero vector.
func Zero(n int) FeatureVec {
	return FeatureVec{values: make([]float64, n)}
}

// N returns the vector's dimension.
func (f FeatureVec) N() int {
	return len(f.values)
}

// At returns the i'th component, or 0 if i is out of range.
func (f FeatureVec) At(i int) float64 {
	if i < 0 || i >= len(f.values) {
		return 0
	}
	return f.values[i]
}

// Components returns the underlying components. The caller must not mutate
// the returned slice — it aliases the vector's storage.
func (f FeatureVec) Components() []float64 {
	return f.values
}

// Clamp01 clamps x to [0,1] and maps NaN to 0. +Inf clamps to 1 and -Inf
// to 0, like any other out-of-range value.
func Clamp01[T constraints.Float](x T) T {
	if x != x { // NaN
		return 0
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Lerp linearly interpolates between a and b by t (not clamped — callers
// clamp t themselves where the spec requires it).
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}
