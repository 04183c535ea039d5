// Package boundary implements the Stoer–Wagner global minimum cut over a
// cosine-weighted, trust-weighted context graph, discovering a comfort-zone
// boundary: the smallest group of contexts separable from the rest.
// See design doc Section 4.6.
package boundary

import (
	"sort"

	"github.com/talgya/trustfield/internal/ctxkey"
	"github.com/talgya/trustfield/internal/vector"
)

// Boundary tracks reported contexts (hash, coherence, feature vector) up to
// a fixed capacity and computes their global min-cut on demand.
type Boundary struct {
	capacity int
	order    []uint64
	nodes    map[uint64]node
}

type node struct {
	key       ctxkey.Key
	coherence float64
}

// New creates an empty boundary tracker bounded to capacity contexts.
func New(capacity int) *Boundary {
	if capacity < 1 {
		capacity = 1
	}
	return &Boundary{capacity: capacity, nodes: make(map[uint64]node, capacity)}
}

// ReportContextWithKey records (or updates) a context's current coherence.
// On overflow, the least-recently-reported context is evicted (matching the
// coherence field's bounded-capacity discipline).
func (b *Boundary) ReportContextWithKey(k ctxkey.Key, coherence float64) {
	coherence = vector.Clamp01(coherence)
	hash := k.Hash()

	if _, ok := b.nodes[hash]; ok {
		b.nodes[hash] = node{key: k, coherence: coherence}
		for i, h := range b.order {
			if h == hash {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
		b.order = append(b.order, hash)
		return
	}

	if len(b.nodes) >= b.capacity && len(b.order) > 0 {
		oldest := b.order[0]
		b.order = b.order[1:]
		delete(b.nodes, oldest)
	}

	b.nodes[hash] = node{key: k, coherence: coherence}
	b.order = append(b.order, hash)
}

// Len returns the number of tracked contexts.
func (b *Boundary) Len() int {
	return len(b.nodes)
}

// Partition is the result of a global min-cut: S is the smaller side, SBar
// the rest, and Cut the cut weight.
type Partition struct {
	S, SBar []uint64
	Cut     float64
}

// edgeWeight computes w_ij = cos(F_i, F_j) * min(c_i, c_j), clamped to [0,1]
// in each factor; w_ii is always 0 (never called for i==j).
func edgeWeight(a, b node) float64 {
	cos := ctxkey.Cosine(a.key.Vector(), b.key.Vector())
	c := a.coherence
	if b.coherence < c {
		c = b.coherence
	}
	return vector.Clamp01(cos) * vector.Clamp01(c)
}

// Partition runs Stoer–Wagner on the current graph and returns the global
// min cut. Fewer than two vertices yields (all, none, 0).
func (b *Boundary) Partition() Partition {
	hashes := make([]uint64, 0, len(b.nodes))
	for h := range b.nodes {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	if len(hashes) < 2 {
		return Partition{S: hashes, SBar: nil, Cut: 0}
	}

	n := len(hashes)
	idx := make(map[uint64]int, n)
	for i, h := range hashes {
		idx[h] = i
	}

	// Dense adjacency matrix, indexed by position in `hashes`.
	weight := make([][]float64, n)
	for i := range weight {
		weight[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := edgeWeight(b.nodes[hashes[i]], b.nodes[hashes[j]])
			weight[i][j] = w
			weight[j][i] = w
		}
	}

	// merged[i] holds the set of original vertex indices folded into active
	// vertex i (vertices get merged away as the algorithm proceeds).
	merged := make([][]int, n)
	for i := range merged {
		merged[i] = []int{i}
	}

	active := make([]int, n)
	for i := range active {
		active[i] = i
	}

	type phaseCut struct {
		side []int // original indices on the {t} side of this phase's cut
		cut  float64
	}
	var best *phaseCut

	for len(active) > 1 {
		s, t, cut := minimumCutPhase(active, weight)

		candidate := phaseCut{side: append([]int(nil), merged[t]...), cut: cut}
		if best == nil || candidate.cut < best.cut {
			best = &candidate
		}

		// Merge t into s: sum edge weights to every other active vertex.
		for _, v := range active {
			if v == s || v == t {
				continue
			}
			weight[s][v] += weight[t][v]
			weight[v][s] = weight[s][v]
		}
		merged[s] = append(merged[s], merged[t]...)

		// Remove t from the active set.
		for i, v := range active {
			if v == t {
				active = append(active[:i], active[i+1:]...)
				break
			}
		}
	}

	if best == nil {
		return Partition{S: hashes, SBar: nil, Cut: 0}
	}

	sideHashes := make([]uint64, len(best.side))
	for i, v := range best.side {
		sideHashes[i] = hashes[v]
	}
	sort.Slice(sideHashes, func(i, j int) bool { return sideHashes[i] < sideHashes[j] })

	sideSet := make(map[uint64]bool, len(sideHashes))
	for _, h := range sideHashes {
		sideSet[h] = true
	}
	var rest []uint64
	for _, h := range hashes {
		if !sideSet[h] {
			rest = append(rest, h)
		}
	}

	s, sBar := sideHashes, rest
	if len(s) > len(sBar) {
		s, sBar = sBar, s
	}

	return Partition{S: s, SBar: sBar, Cut: best.cut}
}

// MinCutValue returns the global min-cut weight without exposing the full partition.
func (b *Boundary) MinCutValue() float64 {
	return b.Partition().Cut
}

// minimumCutPhase performs one maximum-adjacency-ordering phase of Stoer–
// Wagner: starting from the lowest-indexed active vertex (for determinism),
// repeatedly add the most tightly connected remaining vertex. Returns the
// penultimate vertex s, the last vertex t, and t's cut-of-the-phase weight.
func minimumCutPhase(active []int, weight [][]float64) (s, t int, cut float64) {
	inA := make(map[int]bool, len(active))
	start := active[0]
	for _, v := range active[1:] {
		if v < start {
			start = v
		}
	}
	order := []int{start}
	inA[start] = true

	gain := make(map[int]float64, len(active))
	for _, v := range active {
		if v != start {
			gain[v] = weight[start][v]
		}
	}

	var last int
	for len(order) < len(active) {
		// Pick the remaining vertex with max adjacency weight to A; tie-break
		// on lowest index for determinism.
		best := -1
		bestGain := -1.0
		for _, v := range active {
			if inA[v] {
				continue
			}
			g := gain[v]
			if g > bestGain || (g == bestGain && (best == -1 || v < best)) {
				bestGain = g
				best = v
			}
		}

		order = append(order, best)
		inA[best] = true
		last = best

		for _, v := range active {
			if !inA[v] {
				gain[v] += weight[best][v]
			}
		}
	}

	t = last
	s = order[len(order)-2]

	// t's cut-of-the-phase weight is its total adjacency to every other
	// active vertex (all of them are in A by the time t joins last).
	for _, v := range active {
		if v != t {
			cut += weight[t][v]
		}
	}
	return s, t, cut
}
