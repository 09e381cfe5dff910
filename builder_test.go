package vsmgo

import (
	"testing"

	"github.com/liliang-cn/vsmgo/weight"
)

func TestInsertEmptyTermsReturnsFalse(t *testing.T) {
	b := NewBuilder[string]()
	id, ok := b.InsertVec("empty", nil)
	if ok {
		t.Fatalf("InsertVec with no terms = (%d, true), want (_, false)", id)
	}
}

func TestBuildWithoutWeightKeepsUniformWeights(t *testing.T) {
	b := NewBuilder[string]()
	b.InsertVec("doc-a", []string{"cat", "dog"})
	b.InsertVec("doc-b", []string{"cat", "fish"})

	ix := b.Build()

	if ix.DocCount() != 2 {
		t.Fatalf("DocCount() = %d, want 2", ix.DocCount())
	}
	if ix.TermCount() != 3 {
		t.Fatalf("TermCount() = %d, want 3", ix.TermCount())
	}

	term, ok := ix.Term("cat")
	if !ok {
		t.Fatal("Term(\"cat\") not found")
	}
	if term.Frequency != 2 {
		t.Fatalf("Term(\"cat\").Frequency = %v, want 2 (appears in both docs)", term.Frequency)
	}

	for d := 0; d < ix.DocCount(); d++ {
		dv := ix.Storage().Get(uint32(d))
		for _, w := range dv.Vec.Weights() {
			if w != 1.0 {
				t.Fatalf("doc %d weight = %v, want 1.0 (no WithWeight)", d, w)
			}
		}
	}
}

func TestBuildWithWeightReweightsVectors(t *testing.T) {
	b := NewBuilder[string](WithWeight[string](weight.TFIDF))
	b.InsertVec("doc-a", []string{"cat", "cat", "dog"})
	b.InsertVec("doc-b", []string{"cat", "fish"})
	// doc-c keeps "cat" out of one document: a term in every document has
	// TFIDF weight 0, which Build rejects (see TestBuildPanicsOnZeroWeight).
	b.InsertVec("doc-c", []string{"fish"})

	ix := b.Build()

	query, ok := ix.NewQuery([]string{"dog"})
	if !ok {
		t.Fatal("NewQuery([\"dog\"]) = false, want true")
	}

	results := ix.Search(&query, CosineRank, 10)
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].Document != "doc-a" {
		t.Fatalf("Search() top result = %q, want doc-a", results[0].Document)
	}
}

func TestSearchRanksByScoreDescending(t *testing.T) {
	b := NewBuilder[string](WithWeight[string](weight.TFIDF))
	b.InsertVec("doc-a", []string{"cat", "cat", "cat", "dog"})
	b.InsertVec("doc-b", []string{"cat", "fish", "bird"})
	b.InsertVec("doc-c", []string{"fish"})

	ix := b.Build()
	query, _ := ix.NewQuery([]string{"cat", "dog"})

	results := ix.Search(&query, CosineRank, 10)
	if len(results) < 2 {
		t.Fatalf("Search() returned %d results, want at least 2", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("Search() results not sorted descending: %v then %v", results[i-1].Score, results[i].Score)
		}
	}
}

func TestSearchTopKTruncates(t *testing.T) {
	b := NewBuilder[string]()
	for _, doc := range []string{"a", "b", "c", "d"} {
		b.InsertVec(doc, []string{"shared"})
	}
	ix := b.Build()
	query, _ := ix.NewQuery([]string{"shared"})

	results := ix.Search(&query, CosineRank, 2)
	if len(results) != 2 {
		t.Fatalf("Search() with topK=2 returned %d results, want 2", len(results))
	}
}

func TestNewQueryDropsUnknownTerms(t *testing.T) {
	b := NewBuilder[string]()
	b.InsertVec("doc-a", []string{"cat"})
	ix := b.Build()

	if _, ok := ix.NewQuery([]string{"unicorn"}); ok {
		t.Fatal("NewQuery with only unknown terms = true, want false")
	}

	query, ok := ix.NewQuery([]string{"cat", "unicorn"})
	if !ok {
		t.Fatal("NewQuery with one known term = false, want true")
	}
	if query.DimenCount() != 1 {
		t.Fatalf("query.DimenCount() = %d, want 1", query.DimenCount())
	}
}

func TestMaxPostingsLenTruncatesPostingList(t *testing.T) {
	b := NewBuilder[string](WithMaxPostingsLen[string](1))
	b.InsertVec("doc-a", []string{"shared"})
	b.InsertVec("doc-b", []string{"shared"})
	b.InsertVec("doc-c", []string{"shared"})

	ix := b.Build()
	query, _ := ix.NewQuery([]string{"shared"})

	candidates := ix.RetrieveFor(&query)
	if len(candidates) != 1 {
		t.Fatalf("RetrieveFor() returned %d candidates, want 1 (maxPostingsLen=1)", len(candidates))
	}
}

func TestInsertAfterBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Insert after Build did not panic")
		}
	}()
	b := NewBuilder[string]()
	b.InsertVec("doc-a", []string{"cat"})
	b.Build()
	b.InsertVec("doc-b", []string{"dog"})
}

func TestBuildWithMetadataAttachesMetadata(t *testing.T) {
	b := NewBuilder[string]()
	b.InsertVec("doc-a", []string{"cat"})

	ix := BuildWithMetadata[string](b, "corpus-v1")
	if ix.Metadata == nil || *ix.Metadata != "corpus-v1" {
		t.Fatalf("Metadata = %v, want corpus-v1", ix.Metadata)
	}
}

func TestBuildPanicsOnZeroWeight(t *testing.T) {
	// Every document contains "a", so TFIDF's idf term is log10(3/3) = 0:
	// a regression pin for the zero-weight sharp edge. Callers with a term
	// present in every document should use SmoothTFIDF instead.
	defer func() {
		if recover() == nil {
			t.Fatal("Build with an all-corpus term under TFIDF did not panic")
		}
	}()
	b := NewBuilder[string](WithWeight[string](weight.TFIDF))
	b.InsertVec("doc-a", []string{"a", "b"})
	b.InsertVec("doc-b", []string{"a", "c"})
	b.InsertVec("doc-c", []string{"a"})
	b.Build()
}

// TestBasicBuildScenario: insert (1, ["lol","rise"]) then
// (2, ["some","test","document"]); dictionary size 5, storage size 2,
// posting lists split along those two documents.
func TestBasicBuildScenario(t *testing.T) {
	b := NewBuilder[int]()
	b.InsertVec(1, []string{"lol", "rise"})
	b.InsertVec(2, []string{"some", "test", "document"})

	ix := b.Build()
	if ix.TermCount() != 5 {
		t.Fatalf("TermCount() = %d, want 5", ix.TermCount())
	}
	if ix.DocCount() != 2 {
		t.Fatalf("DocCount() = %d, want 2", ix.DocCount())
	}

	for _, term := range []string{"lol", "rise"} {
		query, _ := ix.NewQuery([]string{term})
		got := ix.RetrieveFor(&query)
		if len(got) != 1 || got[0] != 0 {
			t.Fatalf("posting for %q = %v, want [0]", term, got)
		}
	}
	for _, term := range []string{"some", "test", "document"} {
		query, _ := ix.NewQuery([]string{term})
		got := ix.RetrieveFor(&query)
		if len(got) != 1 || got[0] != 1 {
			t.Fatalf("posting for %q = %v, want [1]", term, got)
		}
	}
}

func TestEmptyInsertLeavesStateUnchanged(t *testing.T) {
	b := NewBuilder[int]()
	b.InsertVec(1, []string{"lol", "rise"})
	if _, ok := b.InsertVec(7, nil); ok {
		t.Fatal("InsertVec with no terms = true, want false")
	}

	ix := b.Build()
	if ix.TermCount() != 2 {
		t.Fatalf("TermCount() = %d, want 2 (empty insert must not intern anything)", ix.TermCount())
	}
	if ix.DocCount() != 1 {
		t.Fatalf("DocCount() = %d, want 1 (empty insert must not create a document)", ix.DocCount())
	}
}

// TestDuplicateTermDedupsDimsButCountsEveryOccurrence: inserting
// ["a","a","b"] yields a 2-dimension vector at
// weight 1.0 pre-reweight, while the per-occurrence tf table (exercised
// indirectly here via NormalizedTF, which is log10(tf)+1 and therefore
// distinguishes tf=2 from tf=1) counts "a" twice and "b" once.
func TestDuplicateTermDedupsDimsButCountsEveryOccurrence(t *testing.T) {
	b := NewBuilder[int](WithWeight[int](weight.NormalizedTF))
	b.InsertVec(1, []string{"a", "a", "b"})
	ix := b.Build()

	if ix.TermCount() != 2 {
		t.Fatalf("TermCount() = %d, want 2 (a, b)", ix.TermCount())
	}

	aTerm, _ := ix.Term("a")
	bTerm, _ := ix.Term("b")
	aID, _ := ix.Dictionary().GetID("a")
	bID, _ := ix.Dictionary().GetID("b")

	docVec := ix.Storage().Get(0)
	if docVec.Vec.DimenCount() != 2 {
		t.Fatalf("doc vector has %d dims, want 2 (a, b deduped)", docVec.Vec.DimenCount())
	}

	aWeight, _ := docVec.Vec.GetDim(aID)
	bWeight, _ := docVec.Vec.GetDim(bID)
	if aWeight == bWeight {
		t.Fatalf("NormalizedTF weight for tf=2 term (%v) == weight for tf=1 term (%v), want different", aWeight, bWeight)
	}
	if aTerm.Frequency != 1 || bTerm.Frequency != 1 {
		t.Fatalf("Frequency(a)=%v Frequency(b)=%v, want 1,1 (both appear in exactly one document)", aTerm.Frequency, bTerm.Frequency)
	}
}

// TestMaxPostingsLenKeepsHighestWeightDocs: with maxPostingsLen=2 and
// 5 docs all containing "x" at varying tf, the
// surviving postings are the two documents with the highest weight at
// that dimension.
func TestMaxPostingsLenKeepsHighestWeightDocs(t *testing.T) {
	b := NewBuilder[int](WithMaxPostingsLen[int](2), WithWeight[int](weight.NormalizedTF))
	tfs := []int{1, 2, 3, 4, 5}
	for i, tf := range tfs {
		terms := make([]string, tf)
		for j := range terms {
			terms[j] = "x"
		}
		b.InsertVec(i, terms)
	}

	ix := b.Build()
	query, _ := ix.NewQuery([]string{"x"})
	candidates := ix.RetrieveFor(&query)
	if len(candidates) != 2 {
		t.Fatalf("RetrieveFor() returned %d candidates, want 2", len(candidates))
	}

	want := map[uint32]bool{3: true, 4: true} // docs with tf=4 and tf=5: highest weight
	for _, id := range candidates {
		if !want[id] {
			t.Fatalf("unexpected surviving doc id %d, want one of {3,4} (highest tf -> highest weight)", id)
		}
	}
}

func TestBuildInfoPopulated(t *testing.T) {
	// NormalizedTF, not TFIDF: in a one-document corpus every term has
	// df == N, so TFIDF would make Build panic.
	b := NewBuilder[string](WithWeight[string](weight.NormalizedTF))
	b.InsertVec("doc-a", []string{"cat", "dog"})
	ix := b.Build()

	if ix.BuildInfo.BuildID == "" {
		t.Fatal("BuildInfo.BuildID is empty")
	}
	if ix.BuildInfo.DocCount != 1 {
		t.Fatalf("BuildInfo.DocCount = %d, want 1", ix.BuildInfo.DocCount)
	}
	if ix.BuildInfo.TermCount != 2 {
		t.Fatalf("BuildInfo.TermCount = %d, want 2", ix.BuildInfo.TermCount)
	}
	if ix.BuildInfo.WeightName == "" {
		t.Fatal("BuildInfo.WeightName is empty despite WithWeight being set")
	}
}
