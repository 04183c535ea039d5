// Package trust implements the coherence accumulator and coherence field —
// the context-keyed trust state at the center of the engine.
// See design doc Section 4.2 (accumulator) and Section 4.3 (field).
package trust

import (
	"github.com/talgya/trustfield/internal/personality"
	"github.com/talgya/trustfield/internal/vector"
)

// familiarThreshold is the fixed boundary between the unfamiliar (min-gate)
// and familiar (weighted blend) arms of EffectiveCoherence. Part of the contract.
const familiarThreshold = 0.3

// Accumulator is the per-context trust record.
type Accumulator struct {
	Coherence      float64 `json:"coherence"`
	Floor          float64 `json:"floor"`
	PositiveCount  uint32  `json:"positive_count"`
	LastTick       uint64  `json:"last_tick"`
}

// newAccumulator seeds a fresh accumulator the way a cold context is born:
// coherence = 0.1*curiosity_drive, floor = 0.
func newAccumulator(curiosity float64) Accumulator {
	return Accumulator{Coherence: 0.1 * curiosity}
}

// decayed returns a the lazily-decayed coherence for tick t, without
// mutating the accumulator. κ = 0.001*(1-recovery_speed); decay never
// pushes coherence below the earned floor.
func (a Accumulator) decayed(t uint64, recovery float64) float64 {
	if t <= a.LastTick {
		return a.Coherence
	}
	kappa := 0.001 * (1 - recovery)
	elapsed := float64(t - a.LastTick)
	c := a.Coherence - kappa*elapsed
	if c < a.Floor {
		c = a.Floor
	}
	return c
}

// applyDecay materialises the lazy decay into the accumulator's stored
// coherence, bringing LastTick forward to t.
func (a *Accumulator) applyDecay(t uint64, recovery float64) {
	a.Coherence = a.decayed(t, recovery)
	if t > a.LastTick {
		a.LastTick = t
	}
}

// positiveInteraction applies one positive update at tick t.
func (a *Accumulator) positiveInteraction(p personality.Personality, t uint64, alone bool) {
	a.applyDecay(t, p.Recovery)

	delta := 0.02 + 0.08*p.Curiosity
	if alone {
		delta *= 0.5
	}

	a.Coherence += delta * (1 - a.Coherence)

	if a.Coherence >= 0.6 {
		raised := a.Coherence - 0.1
		if raised > a.Floor {
			a.Floor = raised
		}
	} else {
		raised := a.Coherence * 0.5
		if raised > a.Floor {
			a.Floor = raised
		}
	}

	a.PositiveCount++
	a.LastTick = t
}

// negativeInteraction applies one negative update at tick t. Decay is
// asymmetric: bounded below by the earned floor, and the floor itself never moves.
func (a *Accumulator) negativeInteraction(p personality.Personality, t uint64) {
	a.applyDecay(t, p.Recovery)

	delta := 0.10 + 0.20*p.Startle
	a.Coherence -= delta
	if a.Coherence < a.Floor {
		a.Coherence = a.Floor
	}

	a.LastTick = t
}

// EffectiveCoherence blends an instantaneous sensor reading with a context's
// accumulated trust coherenceCtx (already lazily decayed by the caller).
// instant is clamped to [0,1] first.
func EffectiveCoherence(instant float64, coherenceCtx float64) float64 {
	instant = vector.Clamp01(instant)
	if coherenceCtx < familiarThreshold {
		return min64(instant, coherenceCtx)
	}
	return 0.3*instant + 0.7*coherenceCtx
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
