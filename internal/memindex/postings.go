package memindex

import (
	"sort"

	"github.com/liliang-cn/vsmgo/vector"
)

// Postings holds one map[TermId][]DocId per bucket.
type Postings struct {
	buckets []map[vector.TermId][]vector.DocId
	sorted  bool
}

// NewPostings creates a Postings with the given number of parallel buckets.
// postsLen must be at least 1.
func NewPostings(postsLen int) *Postings {
	if postsLen < 1 {
		postsLen = 1
	}
	buckets := make([]map[vector.TermId][]vector.DocId, postsLen)
	for i := range buckets {
		buckets[i] = make(map[vector.TermId][]vector.DocId)
	}
	return &Postings{buckets: buckets}
}

// NewSortedPostings creates a Postings that keeps every list ascending by
// DocId at insertion time. Useful when no finalize hook will reorder the
// lists later; the Builder installs one, so it uses NewPostings instead.
func NewSortedPostings(postsLen int) *Postings {
	p := NewPostings(postsLen)
	p.sorted = true
	return p
}

// Map records docID under every term in termIDs, within bucket postID.
func (p *Postings) Map(postID uint32, docID vector.DocId, termIDs []vector.TermId) {
	bucket := p.buckets[postID]
	for _, t := range termIDs {
		list := append(bucket[t], docID)
		if p.sorted {
			i := sort.Search(len(list)-1, func(i int) bool { return list[i] >= docID })
			copy(list[i+1:], list[i:])
			list[i] = docID
		}
		bucket[t] = list
	}
}

// Get returns the posting list for termID within bucket postID, or nil.
func (p *Postings) Get(postID uint32, termID vector.TermId) []vector.DocId {
	return p.buckets[postID][termID]
}

// Buckets returns the number of postings buckets.
func (p *Postings) Buckets() int {
	return len(p.buckets)
}

// Finalize applies fn to every (postID, termID, list) triple across every
// bucket, replacing the stored list with fn's result.
func (p *Postings) Finalize(fn func(postID uint32, termID vector.TermId, list []vector.DocId) []vector.DocId) {
	for bi, bucket := range p.buckets {
		for termID, list := range bucket {
			bucket[termID] = fn(uint32(bi), termID, list)
		}
	}
}
