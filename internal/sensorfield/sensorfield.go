// Package sensorfield provides a synthetic sensor vocabulary for demos and
// tests — NOT part of the engine's public contract. The engine (internal/trust,
// internal/boundary, ...) only ever consumes a vector.FeatureVec supplied by
// the caller; this package exists because the demo harness has no physical
// robot to read from.
//
// Adapted from the teacher's terrain-noise generator (internal/world/generation.go):
// the same layered opensimplex noise that there drove elevation/rainfall/
// temperature here drives N independently-seeded "sensor channels" walking
// smoothly over simulated time, so a demo tick has something non-trivial to
// feed the coherence field.
package sensorfield

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/trustfield/internal/vector"
)

// Walker produces a smoothly-varying N-dimensional feature vector over
// simulated time, standing in for a real sensor array.
type Walker struct {
	channels []opensimplex.Noise
	speed    float64
}

// NewWalker creates an N-channel synthetic sensor, deterministic from seed.
// speed controls how quickly the vector drifts per tick (0.01-0.1 is a
// reasonable walking pace; larger values are noisier).
func NewWalker(n int, seed int64, speed float64) *Walker {
	channels := make([]opensimplex.Noise, n)
	for i := range channels {
		channels[i] = opensimplex.NewNormalized(seed + int64(i)*7919)
	}
	return &Walker{channels: channels, speed: speed}
}

// At returns the feature vector for simulated tick t.
func (w *Walker) At(t uint64) vector.FeatureVec {
	components := make([]float64, len(w.channels))
	for i, ch := range w.channels {
		components[i] = ch.Eval2(float64(t)*w.speed, float64(i))
	}
	return vector.New(components...)
}

// Nudge perturbs the vector at tick t toward a target bias in [0,1]
// (e.g. to simulate a deliberately hostile or deliberately friendly sensor
// reading for a scripted demo scenario), blending the walker's natural
// drift with the bias.
func (w *Walker) Nudge(t uint64, bias float64, weight float64) vector.FeatureVec {
	base := w.At(t)
	components := make([]float64, base.N())
	for i := 0; i < base.N(); i++ {
		components[i] = vector.Lerp(base.At(i), bias, weight)
	}
	return vector.New(components...)
}
