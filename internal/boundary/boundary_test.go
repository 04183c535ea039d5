package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/trustfield/internal/ctxkey"
	"github.com/talgya/trustfield/internal/vector"
)

func TestPartitionDegenerateGraph(t *testing.T) {
	b := New(8)
	p := b.Partition()
	assert.Empty(t, p.SBar)
	assert.Equal(t, 0.0, p.Cut)

	b.ReportContextWithKey(ctxkey.New(vector.New(1, 0)), 0.5)
	p = b.Partition()
	assert.Len(t, p.S, 1)
	assert.Empty(t, p.SBar)
	assert.Equal(t, 0.0, p.Cut)
}

func TestPartitionUnionIsAllReportedHashes(t *testing.T) {
	b := New(8)
	keys := []ctxkey.Key{
		ctxkey.New(vector.New(1, 0, 0)),
		ctxkey.New(vector.New(0, 1, 0)),
		ctxkey.New(vector.New(0, 0, 1)),
		ctxkey.New(vector.New(1, 1, 0)),
	}
	for i, k := range keys {
		b.ReportContextWithKey(k, 0.1*float64(i+1))
	}

	p := b.Partition()
	assert.GreaterOrEqual(t, p.Cut, 0.0)

	all := make(map[uint64]bool)
	for _, h := range p.S {
		assert.False(t, all[h], "hash %d appears in both sides", h)
		all[h] = true
	}
	for _, h := range p.SBar {
		assert.False(t, all[h], "hash %d appears in both sides", h)
		all[h] = true
	}
	assert.Len(t, all, len(keys))
}

// TestSeparatesClusters is scenario S6: two well-separated trust clusters
// should split along the low-trust pair, which is also the smaller side.
func TestSeparatesClusters(t *testing.T) {
	b := New(8)

	highTrust := []vector.FeatureVec{
		vector.New(1, 0, 0),
		vector.New(0.9, 0.1, 0),
		vector.New(0.95, 0.05, 0),
	}
	lowTrust := []vector.FeatureVec{
		vector.New(0, 0, 1),
		vector.New(0, 0.05, 0.95),
	}

	lowHashes := make(map[uint64]bool)
	for _, v := range highTrust {
		b.ReportContextWithKey(ctxkey.New(v), 0.8)
	}
	for _, v := range lowTrust {
		k := ctxkey.New(v)
		lowHashes[k.Hash()] = true
		b.ReportContextWithKey(k, 0.1)
	}

	p := b.Partition()
	assert.Len(t, p.S, 2)
	for _, h := range p.S {
		assert.True(t, lowHashes[h], "expected low-trust hash %d in S", h)
	}
	assert.Less(t, p.Cut, 0.05)
}

func TestReportContextOverflowEvictsOldest(t *testing.T) {
	b := New(2)
	k1 := ctxkey.New(vector.New(1, 0))
	k2 := ctxkey.New(vector.New(0, 1))
	k3 := ctxkey.New(vector.New(1, 1))

	b.ReportContextWithKey(k1, 0.5)
	b.ReportContextWithKey(k2, 0.5)
	b.ReportContextWithKey(k3, 0.5)

	assert.Equal(t, 2, b.Len())
	p := b.Partition()
	assert.NotContains(t, append(p.S, p.SBar...), k1.Hash())
}
