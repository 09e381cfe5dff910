package vector

// DictTerm is a dictionary entry: a term string plus its auxiliary
// document-frequency counter. Identity, ordering and hashing are defined
// solely by Term — Frequency is bookkeeping the builder writes back at
// finalize and must never affect where a term sits in the dictionary.
type DictTerm struct {
	Term      string
	Frequency float32
}

// NewDictTerm creates a DictTerm with a zero frequency.
func NewDictTerm(term string) DictTerm {
	return DictTerm{Term: term}
}

// Less orders DictTerms by their term string, ignoring Frequency.
func (d DictTerm) Less(other DictTerm) bool {
	return d.Term < other.Term
}

// Equal compares DictTerms by their term string alone.
func (d DictTerm) Equal(other DictTerm) bool {
	return d.Term == other.Term
}
