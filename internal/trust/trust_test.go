package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/trustfield/internal/ctxkey"
	"github.com/talgya/trustfield/internal/personality"
	"github.com/talgya/trustfield/internal/vector"
)

// TestEarnedTrustBuffersStartle is scenario S1.
func TestEarnedTrustBuffersStartle(t *testing.T) {
	f := New(32)
	p := personality.New()
	ka := ctxkey.New(vector.New(1.0, 1.0))

	for tick := uint64(0); tick < 30; tick++ {
		f.PositiveInteraction(ka, p, tick, false)
	}

	entry := lookup(t, f, ka)
	assert.Greater(t, entry.Coherence, 0.55)
	assert.Greater(t, entry.Floor, 0.45)

	f.NegativeInteraction(ka, p, 30)
	entry = lookup(t, f, ka)
	assert.GreaterOrEqual(t, entry.Coherence, entry.Floor)
	assert.Greater(t, entry.Coherence, 0.30)
}

// TestContextsDoNotCrossContaminate is scenario S2.
func TestContextsDoNotCrossContaminate(t *testing.T) {
	f := New(32)
	p := personality.New()
	kb := ctxkey.New(vector.New(1, 0))
	kd := ctxkey.New(vector.New(0, 1))

	for tick := uint64(0); tick < 20; tick++ {
		f.PositiveInteraction(kb, p, tick, false)
	}

	assert.LessOrEqual(t, f.EffectiveCoherence(0.9, kd), 0.09)
}

// TestMinGateOnUnfamiliarContext is scenario S3.
func TestMinGateOnUnfamiliarContext(t *testing.T) {
	f := New(32)
	k := ctxkey.New(vector.New(0.5, 0.5, 0.5))
	assert.LessOrEqual(t, f.EffectiveCoherence(0.95, k), 0.10)
}

func TestEffectiveCoherenceNeverInsertsOnMiss(t *testing.T) {
	f := New(32)
	k := ctxkey.New(vector.New(0.2, 0.8))

	f.EffectiveCoherence(0.5, k)
	assert.Equal(t, 0, f.Len())
}

func TestFloorMonotoneAcrossPositives(t *testing.T) {
	f := New(32)
	p := personality.New()
	k := ctxkey.New(vector.New(0.4, 0.6))

	prevFloor := 0.0
	for tick := uint64(0); tick < 50; tick++ {
		f.PositiveInteraction(k, p, tick, tick%3 == 0)
		e := lookup(t, f, k)
		assert.GreaterOrEqual(t, e.Floor, prevFloor)
		assert.GreaterOrEqual(t, e.Coherence, e.Floor)
		assert.LessOrEqual(t, e.Coherence, 1.0)
		prevFloor = e.Floor
	}
}

func TestPositiveCountIsMonotone(t *testing.T) {
	f := New(32)
	p := personality.New()
	k := ctxkey.New(vector.New(0.1, 0.9))

	var prev uint32
	for tick := uint64(0); tick < 15; tick++ {
		f.PositiveInteraction(k, p, tick, false)
		e := lookup(t, f, k)
		assert.GreaterOrEqual(t, e.PositiveCount, prev)
		prev = e.PositiveCount
	}
}

func TestSustainedPositivesSurviveOneNegative(t *testing.T) {
	f := New(32)
	p := personality.New().WithCuriosity(0.5)
	k := ctxkey.New(vector.New(0.7, 0.2))

	for tick := uint64(0); tick < 10; tick++ {
		f.PositiveInteraction(k, p, tick, false)
	}
	f.NegativeInteraction(k, p, 10)

	e := lookup(t, f, k)
	assert.Greater(t, e.Coherence, 0.0)
}

func TestCapacityEvictsLeastRecentlyUpdated(t *testing.T) {
	f := New(2)
	p := personality.New()
	k1 := ctxkey.New(vector.New(1, 0))
	k2 := ctxkey.New(vector.New(0, 1))
	k3 := ctxkey.New(vector.New(1, 1))

	f.PositiveInteraction(k1, p, 0, false)
	f.PositiveInteraction(k2, p, 1, false)
	f.PositiveInteraction(k3, p, 2, false) // should evict k1 (oldest last_tick)

	assert.Equal(t, 2, f.Len())
	entries := f.AllEntries()
	for _, e := range entries {
		assert.NotEqual(t, k1.Hash(), e.Key.Hash())
	}
}

func TestAllEntriesInsertionOrder(t *testing.T) {
	f := New(8)
	p := personality.New()
	k1 := ctxkey.New(vector.New(1, 0, 0))
	k2 := ctxkey.New(vector.New(0, 1, 0))
	k3 := ctxkey.New(vector.New(0, 0, 1))

	f.PositiveInteraction(k1, p, 0, false)
	f.PositiveInteraction(k2, p, 1, false)
	f.PositiveInteraction(k3, p, 2, false)

	entries := f.AllEntries()
	assert.Len(t, entries, 3)
	assert.Equal(t, k1.Hash(), entries[0].Key.Hash())
	assert.Equal(t, k2.Hash(), entries[1].Key.Hash())
	assert.Equal(t, k3.Hash(), entries[2].Key.Hash())
}

func TestPassiveDecayNeverCrossesFloor(t *testing.T) {
	f := New(8)
	p := personality.New().WithRecovery(0.0) // slowest recovery, fastest decay
	k := ctxkey.New(vector.New(0.9, 0.9))
	other := ctxkey.New(vector.New(0.1, 0.1))

	for tick := uint64(0); tick < 20; tick++ {
		f.PositiveInteraction(k, p, tick, false)
	}
	floorBefore := lookup(t, f, k).Floor

	// Advance the field's notion of "now" via an unrelated context, then
	// read k's lazily-decayed effective coherence without touching k itself.
	f.PositiveInteraction(other, p, 100000, true)
	eff := f.EffectiveCoherence(0, k)
	assert.InDelta(t, floorBefore*0.7, eff, 1e-9) // familiar-arm blend on a fully-decayed (floored) context
}

func lookup(t *testing.T, f *Field, k ctxkey.Key) Accumulator {
	t.Helper()
	for _, e := range f.AllEntries() {
		if e.Key.Hash() == k.Hash() {
			return e.Accumulator
		}
	}
	t.Fatalf("key %d not found in field", k.Hash())
	return Accumulator{}
}
