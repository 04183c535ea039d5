// Package snapshot captures a vocabulary-erased trust state for warm-start:
// all per-context scalars, but no feature vectors (those are re-learned as
// contexts are re-observed).
// See design doc Section 4.8 and the Snapshot schema in Section 6.
package snapshot

import (
	"github.com/talgya/trustfield/internal/personality"
	"github.com/talgya/trustfield/internal/trust"
)

// CurrentVersion is the snapshot format's version tag.
const CurrentVersion = 1

// Context is one persisted context's scalar state — no feature vector.
type Context struct {
	Hash          uint64  `json:"hash"`
	Coherence     float32 `json:"coherence"`
	Floor         float32 `json:"floor"`
	PositiveCount uint32  `json:"positive_count"`
	LastTick      uint64  `json:"last_tick"`
}

// Snapshot is the full persisted trust state for one field instance.
type Snapshot struct {
	Version           int                     `json:"version"`
	CreatedAt         uint64                  `json:"created_at"`
	LastActive        uint64                  `json:"last_active"`
	TotalInteractions uint64                  `json:"total_interactions"`
	Personality       personality.Personality `json:"personality"`
	Contexts          []Context               `json:"contexts"`
}

// FromField captures field's current state into a Snapshot.
func FromField(field *trust.Field, p personality.Personality, createdAt, lastActive, totalInteractions uint64) Snapshot {
	entries := field.AllEntries()
	contexts := make([]Context, len(entries))
	for i, e := range entries {
		contexts[i] = Context{
			Hash:          e.Key.Hash(),
			Coherence:     float32(e.Accumulator.Coherence),
			Floor:         float32(e.Accumulator.Floor),
			PositiveCount: e.Accumulator.PositiveCount,
			LastTick:      e.Accumulator.LastTick,
		}
	}

	return Snapshot{
		Version:           CurrentVersion,
		CreatedAt:         createdAt,
		LastActive:        lastActive,
		TotalInteractions: totalInteractions,
		Personality:       p.Clamped(),
		Contexts:          contexts,
	}
}

// Restore rebuilds a field from a snapshot using hashes only — feature
// vectors are unknown until their contexts are re-observed by the caller.
// capacity bounds the restored field exactly as a fresh field would be.
func Restore(snap Snapshot, capacity int) *trust.Field {
	field := trust.New(capacity)
	for _, c := range snap.Contexts {
		field.RestoreAccumulator(c.Hash, trust.Accumulator{
			Coherence:     float64(c.Coherence),
			Floor:         float64(c.Floor),
			PositiveCount: c.PositiveCount,
			LastTick:      c.LastTick,
		})
	}
	return field
}
