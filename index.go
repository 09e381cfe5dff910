package vsmgo

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/liliang-cn/vsmgo/backend"
	"github.com/liliang-cn/vsmgo/vector"
)

// nowFunc is indirected so tests can pin a deterministic build time.
var nowFunc = time.Now

// newBuildID generates a fresh build identifier.
func newBuildID() string {
	return uuid.New().String()
}

// BuildInfo describes a finished build: when it happened, the Go type of the
// configured TermWeight (WeightName, "%T" formatted, empty if none), and the
// resulting corpus size. WeightName does not tell the built-in weights
// apart: all four are weight.Func values and report "weight.Func". It has no
// effect on search behavior — it exists for observability and persistence
// metadata.
type BuildInfo struct {
	BuildID    string
	BuiltAt    time.Time
	WeightName string
	DocCount   int
	TermCount  int
}

// Index is an immutable, queryable VSM built by Builder.Build or
// BuildWithMetadata. D is the document payload type; M is an optional
// caller-supplied metadata type (vsmgo.NoMetadata when built via Build).
type Index[D, M any] struct {
	dict     backend.Dictionary
	storage  backend.Storage[D]
	postings backend.Postings

	// Metadata is caller-supplied data attached at build time via
	// BuildWithMetadata. It is nil when the index was built via Build.
	Metadata *M

	BuildInfo BuildInfo
}

// QueryTerm is one term of a weighted query, for use with NewQueryWithWeights.
type QueryTerm struct {
	Term   string
	Weight float32
}

// NewQuery builds a uniform-weight-1.0 query vector over terms, dropping any
// term absent from the dictionary. It returns (vector.Empty(), false) if no
// term survives.
func (ix *Index[D, M]) NewQuery(terms []string) (vector.SparseVector, bool) {
	weighted := make([]QueryTerm, len(terms))
	for i, t := range terms {
		weighted[i] = QueryTerm{Term: t, Weight: 1.0}
	}
	return ix.NewQueryWithWeights(weighted)
}

// NewQueryWithWeights builds a query vector assigning each term its given
// weight, dropping any term absent from the dictionary. It returns
// (vector.Empty(), false) if no term survives.
func (ix *Index[D, M]) NewQueryWithWeights(terms []QueryTerm) (vector.SparseVector, bool) {
	pairs := make([]vector.Pair, 0, len(terms))
	for _, qt := range terms {
		id, ok := ix.dict.GetID(qt.Term)
		if !ok {
			continue
		}
		pairs = append(pairs, vector.Pair{Dim: id, Weight: qt.Weight})
	}
	if len(pairs) == 0 {
		return vector.Empty(), false
	}
	return vector.FromRawUnsorted(pairs), true
}

// RetrieveFor returns the deduplicated union, across every posting bucket,
// of documents indexed under any dimension of query. Order is unspecified;
// callers wanting ranked results should use Search.
func (ix *Index[D, M]) RetrieveFor(query *vector.SparseVector) []vector.DocId {
	seen := make(map[vector.DocId]struct{})
	var out []vector.DocId

	for _, dim := range query.Dimensions() {
		for bi := 0; bi < ix.postings.Buckets(); bi++ {
			for _, docID := range ix.postings.Get(uint32(bi), dim) {
				if _, ok := seen[docID]; ok {
					continue
				}
				seen[docID] = struct{}{}
				out = append(out, docID)
			}
		}
	}
	return out
}

// RankMode selects the similarity measure Search ranks candidates by.
type RankMode int

const (
	// CosineRank ranks by weighted cosine similarity.
	CosineRank RankMode = iota
	// DiceRank ranks by the (unweighted) Dice coefficient.
	DiceRank
)

// Result is one ranked hit returned by Search.
type Result[D any] struct {
	DocID    vector.DocId
	Document D
	Score    float32
}

// Search ranks the candidates RetrieveFor returns (the documents left in the
// posting lists of query's dimensions after maxPostingsLen truncation) by
// mode, and returns the topK highest-scoring results
// in descending score order. topK <= 0 means unlimited.
func (ix *Index[D, M]) Search(query *vector.SparseVector, mode RankMode, topK int) []Result[D] {
	candidates := ix.RetrieveFor(query)
	results := make([]Result[D], 0, len(candidates))

	for _, docID := range candidates {
		docVec := ix.storage.Get(docID)
		var score float32
		switch mode {
		case DiceRank:
			score = query.Dice(&docVec.Vec)
		default:
			score = query.Cosine(&docVec.Vec)
		}
		results = append(results, Result[D]{DocID: docID, Document: docVec.Document, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// DocCount returns the number of documents stored in the index.
func (ix *Index[D, M]) DocCount() int {
	return ix.storage.Len()
}

// TermCount returns the number of distinct terms interned in the index.
func (ix *Index[D, M]) TermCount() int {
	return ix.dict.Len()
}

// Term looks up the dictionary entry for a term, if interned.
func (ix *Index[D, M]) Term(term string) (vector.DictTerm, bool) {
	id, ok := ix.dict.GetID(term)
	if !ok {
		return vector.DictTerm{}, false
	}
	return ix.dict.Get(id), true
}

// Document returns the document stored at docID.
func (ix *Index[D, M]) Document(docID vector.DocId) D {
	return ix.storage.Get(docID).Document
}

// Dictionary exposes the backing Dictionary, for callers (such as the
// persist package) that need to walk every interned term.
func (ix *Index[D, M]) Dictionary() backend.Dictionary {
	return ix.dict
}

// Storage exposes the backing Storage, for callers that need to walk every
// stored document and its vector.
func (ix *Index[D, M]) Storage() backend.Storage[D] {
	return ix.storage
}

// Postings exposes the backing Postings, for callers that need to walk
// every posting list across every bucket.
func (ix *Index[D, M]) Postings() backend.Postings {
	return ix.postings
}

// FromBackends reconstructs an Index directly from its three backend
// components, caller-supplied metadata and build info. This is the
// counterpart to Dictionary/Storage/Postings: it lets a persistence layer
// rehydrate an Index without going through a Builder.
func FromBackends[D, M any](dict backend.Dictionary, storage backend.Storage[D], postings backend.Postings, metadata *M, info BuildInfo) *Index[D, M] {
	return &Index[D, M]{dict: dict, storage: storage, postings: postings, Metadata: metadata, BuildInfo: info}
}
