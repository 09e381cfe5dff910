package vsmgo

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"github.com/liliang-cn/vsmgo/backend"
	"github.com/liliang-cn/vsmgo/internal/memindex"
	"github.com/liliang-cn/vsmgo/vector"
	"github.com/liliang-cn/vsmgo/weight"
)

// Builder ingests (document, terms) pairs into a term dictionary, document
// storage and one or more posting buckets, then finalizes them into an
// Index. A Builder is single-owner and single-threaded: all of its state is
// exclusively mutable until Build (or BuildWithMetadata) consumes it.
type Builder[D any] struct {
	dict     backend.Dictionary
	storage  backend.Storage[D]
	postings backend.Postings

	// termFreqsTotal counts how many times a term occurs across every
	// ingested document (occurrences, not documents). It is scratch state
	// for ingestion bookkeeping only — DictTerm.Frequency is populated from
	// posting-list lengths at Phase 1 of Build, not from this map, so the
	// stored frequency always matches the df the weighting formulas use.
	termFreqsTotal map[vector.TermId]uint32
	// tf[d][t] counts occurrences of term t in document d, before dedup.
	tf map[vector.DocId]map[vector.TermId]uint32

	postingsLen    int
	maxPostingsLen int
	weightFn       weight.TermWeight
	logger         Logger

	built bool
}

// Option configures a Builder at construction time.
type Option[D any] func(*Builder[D])

// WithPostingsLen sets the number of parallel posting buckets. Default 1.
func WithPostingsLen[D any](n int) Option[D] {
	return func(b *Builder[D]) { b.postingsLen = n }
}

// WithMaxPostingsLen sets the per-term posting-list truncation cap applied
// at finalize. 0 means unlimited. Default 1000.
func WithMaxPostingsLen[D any](n int) Option[D] {
	return func(b *Builder[D]) { b.maxPostingsLen = n }
}

// WithWeight sets the TermWeight applied to every document vector at
// finalize. If unset, Build skips re-weighting and every dimension keeps
// its ingestion-time weight of 1.0.
func WithWeight[D any](w weight.TermWeight) Option[D] {
	return func(b *Builder[D]) { b.weightFn = w }
}

// WithLogger sets the Logger used for ingestion and finalize diagnostics.
// Default NopLogger.
func WithLogger[D any](l Logger) Option[D] {
	return func(b *Builder[D]) { b.logger = l }
}

// WithDictionary overrides the default in-memory dictionary backend.
func WithDictionary[D any](d backend.Dictionary) Option[D] {
	return func(b *Builder[D]) { b.dict = d }
}

// WithStorage overrides the default in-memory storage backend.
func WithStorage[D any](s backend.Storage[D]) Option[D] {
	return func(b *Builder[D]) { b.storage = s }
}

// WithPostings overrides the default in-memory postings backend.
func WithPostings[D any](p backend.Postings) Option[D] {
	return func(b *Builder[D]) { b.postings = p }
}

// NewBuilder creates a Builder wired to the default in-memory backend
// (internal/memindex) unless overridden via WithDictionary/WithStorage/
// WithPostings.
func NewBuilder[D any](opts ...Option[D]) *Builder[D] {
	b := &Builder[D]{
		termFreqsTotal: make(map[vector.TermId]uint32),
		tf:             make(map[vector.DocId]map[vector.TermId]uint32),
		postingsLen:    1,
		maxPostingsLen: 1000,
		logger:         NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.dict == nil {
		b.dict = memindex.NewDictionary()
	}
	if b.storage == nil {
		b.storage = memindex.NewStorage[D]()
	}
	if b.postings == nil {
		b.postings = memindex.NewPostings(b.postingsLen)
	}
	return b
}

// InsertVec inserts doc under bucket 0. Equivalent to Insert(doc, terms, []uint32{0}).
func (b *Builder[D]) InsertVec(doc D, terms []string) (vector.DocId, bool) {
	return b.Insert(doc, terms, []uint32{0})
}

// InsertVecInPost inserts doc under a single bucket postID.
func (b *Builder[D]) InsertVecInPost(postID uint32, doc D, terms []string) (vector.DocId, bool) {
	return b.Insert(doc, terms, []uint32{postID})
}

// InsertVecInPosts inserts doc under every bucket in postIDs.
func (b *Builder[D]) InsertVecInPosts(postIDs []uint32, doc D, terms []string) (vector.DocId, bool) {
	return b.Insert(doc, terms, postIDs)
}

// Insert interns terms, records per-document and corpus-wide term
// frequencies, builds a uniform-weight-1.0 DocVector over the distinct
// terms, stores it, and records it into every bucket in postIDs. It
// returns (0, false) if terms is empty — no state changes in that case.
func (b *Builder[D]) Insert(doc D, terms []string, postIDs []uint32) (vector.DocId, bool) {
	if b.built {
		panic("vsmgo: Insert called after Build")
	}

	ids := make([]vector.TermId, 0, len(terms))
	for _, t := range terms {
		ids = append(ids, b.dict.Intern(t))
	}
	if len(ids) == 0 {
		return 0, false
	}

	termFreq := make(map[vector.TermId]uint32, len(ids))
	for _, id := range ids {
		b.termFreqsTotal[id]++
		termFreq[id]++
	}

	distinct := slices.Clone(ids)
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })
	distinct = slices.Compact(distinct)

	pairs := make([]vector.Pair, len(distinct))
	for i, id := range distinct {
		pairs[i] = vector.Pair{Dim: id, Weight: 1.0}
	}
	vec := vector.FromRawUnsorted(pairs)

	docVec := vector.NewDocVector(doc, vec)
	docID := b.storage.Insert(docVec)
	b.tf[docID] = termFreq

	for _, postID := range postIDs {
		b.postings.Map(postID, docID, distinct)
	}

	b.logger.Debug("inserted document", "doc_id", docID, "distinct_terms", len(distinct))
	return docID, true
}

// Build finalizes the index with no re-weighting function attached beyond
// what was configured via WithWeight, and no caller metadata.
func (b *Builder[D]) Build() *Index[D, NoMetadata] {
	return buildRaw[D, NoMetadata](b, nil)
}

// NoMetadata is the metadata type used by Builder.Build, which attaches no
// caller-supplied metadata to the resulting Index.
type NoMetadata struct{}

// BuildWithMetadata finalizes the index, attaching metadata to it.
func BuildWithMetadata[D, M any](b *Builder[D], metadata M) *Index[D, M] {
	return buildRaw[D, M](b, &metadata)
}

func buildRaw[D, M any](b *Builder[D], metadata *M) *Index[D, M] {
	if b.built {
		panic("vsmgo: Build called twice on the same Builder")
	}
	b.built = true

	b.processTerms()
	b.processVectors()
	b.processPostings()

	info := BuildInfo{
		BuildID:   newBuildID(),
		BuiltAt:   nowFunc(),
		DocCount:  b.storage.Len(),
		TermCount: b.dict.Len(),
	}
	if b.weightFn != nil {
		info.WeightName = fmt.Sprintf("%T", b.weightFn)
	}

	b.logger.Info("build finished", "docs", info.DocCount, "terms", info.TermCount)

	return &Index[D, M]{
		dict:      b.dict,
		storage:   b.storage,
		postings:  b.postings,
		Metadata:  metadata,
		BuildInfo: info,
	}
}

// processTerms is Phase 1: write document frequency (documentFrequency: the
// term's posting-list lengths summed over every bucket, which with a single
// bucket is the count of distinct documents containing it) back into every
// interned DictTerm. The raw occurrence count termFreqsTotal
// accumulates during ingestion is deliberately not stored: downstream
// consumers read Frequency as df, the same value the weighting uses.
func (b *Builder[D]) processTerms() {
	for id := 0; id < b.dict.Len(); id++ {
		tid := vector.TermId(id)
		term := b.dict.Get(tid)
		term.Frequency = float32(b.documentFrequency(tid))
		b.dict.SetItem(tid, term)
	}
}

// processVectors is Phase 2: re-weight every document vector in place using
// weightFn, then refresh its cached length (without re-sorting — dimension
// order is unaffected by in-place reweighting).
func (b *Builder[D]) processVectors() {
	if b.weightFn == nil {
		return
	}

	total := b.storage.Len()
	for d := 0; d < total; d++ {
		docID := vector.DocId(d)
		docVec := b.storage.Get(docID)

		tfMap, ok := b.tf[docID]
		if !ok {
			panic(fmt.Sprintf("vsmgo: missing term-frequency table for doc %d", docID))
		}

		pairs := docVec.Vec.Pairs()
		for i, p := range pairs {
			tf, ok := tfMap[p.Dim]
			if !ok {
				panic(fmt.Sprintf("vsmgo: missing tf[%d][%d]: ingestion invariant violated", docID, p.Dim))
			}
			df := b.documentFrequency(p.Dim)
			w := b.weightFn.Weight(p.Weight, int(tf), df, total)
			if w == 0.0 {
				panic(fmt.Sprintf("vsmgo: weight for term %d in doc %d reached zero", p.Dim, docID))
			}
			pairs[i].Weight = w
		}
		docVec.Vec.RefreshLength()

		b.storage.SetItem(docID, docVec)
	}
}

// processPostings is Phase 3: sort each posting list by descending vector
// weight of its term dimension, then truncate to maxPostingsLen.
func (b *Builder[D]) processPostings() {
	maxLen := b.maxPostingsLen
	storage := b.storage

	b.postings.Finalize(func(_ uint32, termID vector.TermId, list []vector.DocId) []vector.DocId {
		weightOf := func(docID vector.DocId) float32 {
			dv := storage.Get(docID)
			w, _ := dv.Vec.GetDim(termID)
			return w
		}

		sort.SliceStable(list, func(i, j int) bool {
			return cmp.Compare(weightOf(list[j]), weightOf(list[i])) < 0
		})

		if maxLen > 0 && len(list) > maxLen {
			list = list[:maxLen]
		}
		return list
	})
}

// documentFrequency sums posting-list lengths for termID across every
// bucket — the number of (bucket, document) placements, which for a
// corpus using a single bucket is exactly the number of documents
// containing the term.
func (b *Builder[D]) documentFrequency(termID vector.TermId) int {
	sum := 0
	for bi := 0; bi < b.postings.Buckets(); bi++ {
		sum += len(b.postings.Get(uint32(bi), termID))
	}
	return sum
}
