// Package memindex is the default in-memory implementation of the
// backend.Dictionary, backend.Storage and backend.Postings contracts: a
// hash-map dictionary, a slice-backed document store, and a per-bucket
// posting-list map. A single owner builds it, then it is read freely by
// any number of concurrent query goroutines.
package memindex

import "github.com/liliang-cn/vsmgo/vector"

// Dictionary interns terms into dense TermIds backed by a Go map and a
// parallel slice of DictTerm records.
type Dictionary struct {
	ids   map[string]vector.TermId
	terms []vector.DictTerm
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{ids: make(map[string]vector.TermId)}
}

// Intern assigns a new TermId to term on first sight, or returns the
// existing one.
func (d *Dictionary) Intern(term string) vector.TermId {
	if id, ok := d.ids[term]; ok {
		return id
	}
	id := vector.TermId(len(d.terms))
	d.terms = append(d.terms, vector.NewDictTerm(term))
	d.ids[term] = id
	return id
}

// Get returns the DictTerm stored at id.
func (d *Dictionary) Get(id vector.TermId) vector.DictTerm {
	return d.terms[id]
}

// SetItem overwrites the DictTerm at id. The term string in t is ignored —
// only Frequency is meant to change, and changing the string here would
// desynchronize the ids map from the slot it no longer points at.
func (d *Dictionary) SetItem(id vector.TermId, t vector.DictTerm) {
	existing := d.terms[id]
	existing.Frequency = t.Frequency
	d.terms[id] = existing
}

// GetID looks up the TermId for term, if interned.
func (d *Dictionary) GetID(term string) (vector.TermId, bool) {
	id, ok := d.ids[term]
	return id, ok
}

// Len returns the number of distinct interned terms.
func (d *Dictionary) Len() int {
	return len(d.terms)
}
