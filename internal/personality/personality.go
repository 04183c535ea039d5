// Package personality provides the three bounded scalar modulators applied
// to coherence deltas across the trust engine.
// See design doc Section 4.4.
package personality

import "github.com/talgya/trustfield/internal/vector"

// Personality holds the three modulators. Every field is always in [0,1];
// setters clamp, they never reject.
type Personality struct {
	Curiosity float64 `json:"curiosity"`
	Startle   float64 `json:"startle"`
	Recovery  float64 `json:"recovery"`
}

// New returns the default personality: all three modulators at 0.5.
func New() Personality {
	return Personality{Curiosity: 0.5, Startle: 0.5, Recovery: 0.5}
}

// WithCuriosity returns a copy with curiosity_drive clamped to [0,1].
func (p Personality) WithCuriosity(v float64) Personality {
	p.Curiosity = vector.Clamp01(v)
	return p
}

// WithStartle returns a copy with startle_sensitivity clamped to [0,1].
func (p Personality) WithStartle(v float64) Personality {
	p.Startle = vector.Clamp01(v)
	return p
}

// WithRecovery returns a copy with recovery_speed clamped to [0,1].
func (p Personality) WithRecovery(v float64) Personality {
	p.Recovery = vector.Clamp01(v)
	return p
}

// Clamped returns p with every field re-clamped to [0,1], defending against a
// Personality assembled by hand (e.g. via struct literal) outside New().
func (p Personality) Clamped() Personality {
	return Personality{
		Curiosity: vector.Clamp01(p.Curiosity),
		Startle:   vector.Clamp01(p.Startle),
		Recovery:  vector.Clamp01(p.Recovery),
	}
}
