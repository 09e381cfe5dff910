package memindex

import "github.com/liliang-cn/vsmgo/vector"

// Storage is an append-only, densely-indexed slice of DocVector records.
type Storage[D any] struct {
	docs []vector.DocVector[D]
}

// NewStorage creates an empty document store.
func NewStorage[D any]() *Storage[D] {
	return &Storage[D]{}
}

// Insert appends doc and returns its assigned DocId.
func (s *Storage[D]) Insert(doc vector.DocVector[D]) vector.DocId {
	id := vector.DocId(len(s.docs))
	s.docs = append(s.docs, doc)
	return id
}

// Get returns the DocVector stored at id.
func (s *Storage[D]) Get(id vector.DocId) vector.DocVector[D] {
	return s.docs[id]
}

// SetItem overwrites the DocVector stored at id.
func (s *Storage[D]) SetItem(id vector.DocId, doc vector.DocVector[D]) {
	s.docs[id] = doc
}

// Len returns the number of stored documents.
func (s *Storage[D]) Len() int {
	return len(s.docs)
}
