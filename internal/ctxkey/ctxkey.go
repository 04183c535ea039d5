// Package ctxkey provides the deterministic context fingerprint used to key
// the coherence field and the min-cut boundary.
// See design doc Section 4.1 and the Determinism design note (Section 9).
package ctxkey

import (
	"math"

	"github.com/talgya/trustfield/internal/vector"
)

// quantGrid is the fixed integer grid each feature component is mapped onto
// before hashing. Part of the cross-platform determinism contract.
const quantGrid = 255

// FNV-1a-64 seed constants — canonical values, part of the determinism contract.
const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

// Key is an immutable context fingerprint: a 64-bit hash plus the feature
// vector it was built from (kept only for similarity comparisons).
type Key struct {
	hash uint64
	vec  vector.FeatureVec
}

// New quantises each component of vec onto the integer grid 0..255 and FNV-1a-64
// hashes the resulting octet stream in index order.
func New(vec vector.FeatureVec) Key {
	h := offset64
	for i := 0; i < vec.N(); i++ {
		x := vector.Clamp01(vec.At(i))
		octet := byte(x*quantGrid + 0.5) // round(clamp(x,0,1)*Q)
		h ^= uint64(octet)
		h *= prime64
	}
	return Key{hash: h, vec: vec}
}

// FromHash reconstructs a Key from a bare hash with no known feature vector
// — used when restoring a snapshot, where vectors are deliberately erased.
// Similarity against a FromHash key is always 0 (zero-norm vector) until the
// context is re-observed and re-keyed via New.
func FromHash(hash uint64) Key {
	return Key{hash: hash}
}

// Hash returns the 64-bit fingerprint. Two keys are equal iff their hashes match.
func (k Key) Hash() uint64 {
	return k.hash
}

// Vector returns the feature vector the key was built from, used only for
// similarity — never for equality.
func (k Key) Vector() vector.FeatureVec {
	return k.vec
}

// Similarity returns the cosine similarity of the two keys' stored vectors,
// clamped to [0,1]. Zero when either vector has zero norm.
func (k Key) Similarity(other Key) float64 {
	return Cosine(k.vec, other.vec)
}

// Cosine returns the cosine similarity of a and b, clamped to [0,1].
// Negative cosines are impossible for non-negative feature vectors but are
// clamped anyway for robustness against upstream domain violations.
func Cosine(a, b vector.FeatureVec) float64 {
	n := a.N()
	if b.N() < n {
		n = b.N()
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		av, bv := a.At(i), b.At(i)
		dot += av * bv
		na += av * av
		nb += bv * bv
	}

	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return vector.Clamp01(sim)
}
