package vector

// DocVector wraps a caller-supplied document payload together with the
// sparse vector built from its terms. D is an opaque payload type — it
// must be safe to copy and to serialize for callers that persist an index.
type DocVector[D any] struct {
	Document D
	Vec      SparseVector
}

// NewDocVector wraps a document and its vector.
func NewDocVector[D any](document D, vec SparseVector) DocVector[D] {
	return DocVector[D]{Document: document, Vec: vec}
}

// HasDim reports whether the wrapped vector has a value at dim. DocVector
// exposes the most commonly used SparseVector accessors directly so callers
// rarely need to reach into .Vec themselves.
func (dv *DocVector[D]) HasDim(dim TermId) bool {
	return dv.Vec.HasDim(dim)
}

// GetDim returns the weight at dim from the wrapped vector, if present.
func (dv *DocVector[D]) GetDim(dim TermId) (float32, bool) {
	return dv.Vec.GetDim(dim)
}

// Length returns the cached L2 length of the wrapped vector.
func (dv *DocVector[D]) Length() float32 {
	return dv.Vec.Length()
}
