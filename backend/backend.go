// Package backend defines the capability contracts a dictionary, a document
// store and a postings layer must satisfy to back a Builder/Index pair.
// These are the "external collaborators" of the VSM core: the core never
// assumes a concrete implementation, only these interfaces. The
// internal/memindex package ships the default in-memory implementation.
package backend

import "github.com/liliang-cn/vsmgo/vector"

// Dictionary interns term strings into dense, stable TermIds and stores
// their auxiliary DictTerm record.
type Dictionary interface {
	// Intern assigns (or returns the existing) TermId for term. Idempotent.
	Intern(term string) vector.TermId
	// Get returns the DictTerm stored at id.
	Get(id vector.TermId) vector.DictTerm
	// SetItem overwrites the DictTerm stored at id without changing its
	// term-string keying.
	SetItem(id vector.TermId, t vector.DictTerm)
	// GetID looks up the TermId for a term, if it has been interned.
	GetID(term string) (vector.TermId, bool)
	// Len returns the number of distinct terms interned so far.
	Len() int
}

// Storage holds DocVector records, indexed densely by DocId in insertion
// order.
type Storage[D any] interface {
	// Insert appends a DocVector and returns its assigned DocId.
	Insert(doc vector.DocVector[D]) vector.DocId
	// Get returns a copy of the DocVector stored at id.
	Get(id vector.DocId) vector.DocVector[D]
	// SetItem overwrites the DocVector stored at id.
	SetItem(id vector.DocId, doc vector.DocVector[D])
	// Len returns the number of stored documents.
	Len() int
}

// Postings holds, per bucket, the mapping from TermId to an ordered list of
// DocIds. A corpus can use more than one bucket (postsLen >= 1) so a
// document may be indexed under several categorical partitions at once.
type Postings interface {
	// Map records that every id in termIDs occurs in docID, under bucket
	// postID.
	Map(postID uint32, docID vector.DocId, termIDs []vector.TermId)
	// Get returns the posting list for termID within bucket postID.
	Get(postID uint32, termID vector.TermId) []vector.DocId
	// Buckets returns the number of postings buckets.
	Buckets() int
	// Finalize applies fn to every (postID, termID, list) triple and
	// replaces the stored list with fn's return value. Used by the builder
	// to sort and truncate posting lists after weighting.
	Finalize(fn func(postID uint32, termID vector.TermId, list []vector.DocId) []vector.DocId)
}
