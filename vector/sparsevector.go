// Package vector holds the data types shared by the VSM builder and index:
// the sparse-vector primitive, the dictionary term type, and the document
// wrapper. None of these types know about dictionaries, storage or
// postings — that capability contract lives in the backend package.
package vector

import (
	"math"
	"sort"
)

// TermId identifies a dictionary term. Ids are assigned densely from 0 in
// insertion order and are stable for the life of a builder and its index.
type TermId = uint32

// DocId identifies a stored document. Ids are assigned densely from 0 in
// storage insertion order and are stable across build.
type DocId = uint32

// Pair is a single (dimension, weight) entry of a sparse vector.
type Pair struct {
	Dim    TermId
	Weight float32
}

// Overlap describes one dimension two vectors have in common, with the
// weight each vector assigns to it.
type Overlap struct {
	Dim TermId
	A   float32
	B   float32
}

// SparseVector is a sorted-by-dimension (dim, weight) list with a cached
// L2 length. Callers must call Update after mutating Pairs directly so the
// sort order and length invariants hold again.
type SparseVector struct {
	pairs  []Pair
	length float32
}

// Empty returns a zero-length vector with no dimensions.
func Empty() SparseVector {
	return SparseVector{}
}

// FromRawUnsorted builds a vector from pairs in any order, possibly with
// duplicate dimensions, and normalizes it via Update.
func FromRawUnsorted(pairs []Pair) SparseVector {
	v := SparseVector{pairs: append([]Pair(nil), pairs...)}
	v.Update()
	return v
}

// FromRawSorted builds a vector from pairs already sorted ascending by Dim
// with no duplicates, and a precomputed length. No validation is performed;
// this is a fast path for deserialization and internal use.
func FromRawSorted(pairs []Pair, length float32) SparseVector {
	return SparseVector{pairs: pairs, length: length}
}

// Update stable-sorts the pairs by ascending dimension, deduplicates adjacent
// entries keeping the last write for each dimension, and recomputes length.
func (v *SparseVector) Update() {
	sort.SliceStable(v.pairs, func(i, j int) bool {
		return v.pairs[i].Dim < v.pairs[j].Dim
	})
	v.pairs = dedupKeepLast(v.pairs)
	v.length = v.calcLength()
}

func dedupKeepLast(pairs []Pair) []Pair {
	if len(pairs) == 0 {
		return pairs
	}
	out := pairs[:0:0]
	i := 0
	for i < len(pairs) {
		j := i
		for j+1 < len(pairs) && pairs[j+1].Dim == pairs[i].Dim {
			j++
		}
		out = append(out, pairs[j])
		i = j + 1
	}
	return out
}

func (v *SparseVector) calcLength() float32 {
	var sum float64
	for _, p := range v.pairs {
		sum += float64(p.Weight) * float64(p.Weight)
	}
	return float32(math.Sqrt(sum))
}

// Length returns the cached L2 length as of the last Update call.
func (v *SparseVector) Length() float32 {
	return v.length
}

// RefreshLength recomputes the cached length from the current pairs without
// re-sorting or deduplicating. Use this after mutating weights in place
// (e.g. Builder's reweighting phase) where dimension order is untouched;
// Update is the right call whenever dimensions themselves may have changed.
func (v *SparseVector) RefreshLength() {
	v.length = v.calcLength()
}

// IsEmpty reports whether the vector has zero dimensions.
func (v *SparseVector) IsEmpty() bool {
	return len(v.pairs) == 0
}

// DimenCount returns the number of dimensions the vector uses.
func (v *SparseVector) DimenCount() int {
	return len(v.pairs)
}

// Pairs returns the underlying (dim, weight) entries in ascending dim order.
func (v *SparseVector) Pairs() []Pair {
	return v.pairs
}

// Dimensions returns the dimensions of the vector in ascending order.
func (v *SparseVector) Dimensions() []TermId {
	dims := make([]TermId, len(v.pairs))
	for i, p := range v.pairs {
		dims[i] = p.Dim
	}
	return dims
}

// Weights returns the weights of the vector in dimension order.
func (v *SparseVector) Weights() []float32 {
	ws := make([]float32, len(v.pairs))
	for i, p := range v.pairs {
		ws[i] = p.Weight
	}
	return ws
}

// HasDim reports whether the vector has a value at the given dimension.
func (v *SparseVector) HasDim(dim TermId) bool {
	_, ok := v.search(dim)
	return ok
}

// GetDim returns the weight at the given dimension, if present.
func (v *SparseVector) GetDim(dim TermId) (float32, bool) {
	i, ok := v.search(dim)
	if !ok {
		return 0, false
	}
	return v.pairs[i].Weight, true
}

// SetDim overwrites the weight at dim if present, returning false otherwise.
// It does not resort or recompute length since dim placement is unchanged.
func (v *SparseVector) SetDim(dim TermId, weight float32) bool {
	i, ok := v.search(dim)
	if !ok {
		return false
	}
	v.pairs[i].Weight = weight
	return true
}

// DeleteDim removes a dimension if present. It does not recompute length;
// callers must call Update afterwards if they rely on a fresh length.
func (v *SparseVector) DeleteDim(dim TermId) {
	i, ok := v.search(dim)
	if !ok {
		return
	}
	v.pairs = append(v.pairs[:i], v.pairs[i+1:]...)
}

func (v *SparseVector) search(dim TermId) (int, bool) {
	i := sort.Search(len(v.pairs), func(i int) bool { return v.pairs[i].Dim >= dim })
	if i < len(v.pairs) && v.pairs[i].Dim == dim {
		return i, true
	}
	return 0, false
}

// FirstIndice returns the lowest dimension of the vector. It panics on an
// empty vector; callers must check IsEmpty first.
func (v *SparseVector) FirstIndice() TermId {
	return v.pairs[0].Dim
}

// LastIndice returns the highest dimension of the vector. It panics on an
// empty vector; callers must check IsEmpty first.
func (v *SparseVector) LastIndice() TermId {
	return v.pairs[len(v.pairs)-1].Dim
}

// CouldOverlap is a cheap range test: it returns false when the two vectors
// cannot possibly share a dimension (either is empty, or their dimension
// ranges are disjoint). It may return true even when no overlap exists —
// callers that need an exact answer should use OverlapsWith or Overlapping.
func (v *SparseVector) CouldOverlap(other *SparseVector) bool {
	if v.IsEmpty() || other.IsEmpty() {
		return false
	}
	if v.FirstIndice() > other.LastIndice() || v.LastIndice() < other.FirstIndice() {
		return false
	}
	return true
}

// Overlapping returns every dimension present in both vectors, along with
// the weight each vector assigns to it.
func (v *SparseVector) Overlapping(other *SparseVector) []Overlap {
	if !v.CouldOverlap(other) {
		return nil
	}
	var out []Overlap
	i, j := 0, 0
	for i < len(v.pairs) && j < len(other.pairs) {
		a, b := v.pairs[i], other.pairs[j]
		switch {
		case a.Dim < b.Dim:
			i++
		case a.Dim > b.Dim:
			j++
		default:
			out = append(out, Overlap{Dim: a.Dim, A: a.Weight, B: b.Weight})
			i++
			j++
		}
	}
	return out
}

// OverlapsWith reports whether both vectors share at least one dimension.
func (v *SparseVector) OverlapsWith(other *SparseVector) bool {
	if !v.CouldOverlap(other) {
		return false
	}
	i, j := 0, 0
	for i < len(v.pairs) && j < len(other.pairs) {
		a, b := v.pairs[i], other.pairs[j]
		switch {
		case a.Dim < b.Dim:
			i++
		case a.Dim > b.Dim:
			j++
		default:
			return true
		}
	}
	return false
}

// Scalar returns the dot product of self and other over matching dimensions.
func (v *SparseVector) Scalar(other *SparseVector) float32 {
	if !v.CouldOverlap(other) {
		return 0
	}
	var sum float32
	i, j := 0, 0
	for i < len(v.pairs) && j < len(other.pairs) {
		a, b := v.pairs[i], other.pairs[j]
		switch {
		case a.Dim < b.Dim:
			i++
		case a.Dim > b.Dim:
			j++
		default:
			sum += a.Weight * b.Weight
			i++
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity between self and other, short-
// circuiting to 0 when the scalar product is 0 so that disjoint or empty
// vectors never divide by zero.
func (v *SparseVector) Cosine(other *SparseVector) float32 {
	sc := v.Scalar(other)
	if sc == 0 {
		return 0
	}
	return sc / (v.length * other.length)
}

// Dice returns the Dice coefficient between self and other: twice the count
// of shared dimensions divided by the sum of dimension counts. This is a
// set-overlap measure, not a weighted one.
func (v *SparseVector) Dice(other *SparseVector) float32 {
	if !v.CouldOverlap(other) {
		return 0
	}
	var both int
	i, j := 0, 0
	for i < len(v.pairs) && j < len(other.pairs) {
		a, b := v.pairs[i], other.pairs[j]
		switch {
		case a.Dim < b.Dim:
			i++
		case a.Dim > b.Dim:
			j++
		default:
			both++
			i++
			j++
		}
	}
	return (2 * float32(both)) / float32(len(v.pairs)+len(other.pairs))
}

// Clone returns a deep copy of the vector.
func (v *SparseVector) Clone() SparseVector {
	return SparseVector{
		pairs:  append([]Pair(nil), v.pairs...),
		length: v.length,
	}
}
