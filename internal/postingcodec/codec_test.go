package postingcodec

import (
	"testing"

	"github.com/liliang-cn/vsmgo/vector"
)

func TestPostingListRoundTrip(t *testing.T) {
	ids := []vector.DocId{0, 1, 5, 6, 1000, 1001}
	encoded := EncodePostingList(ids)

	decoded, err := DecodePostingList(encoded)
	if err != nil {
		t.Fatalf("DecodePostingList() error = %v", err)
	}
	if len(decoded) != len(ids) {
		t.Fatalf("DecodePostingList() returned %d ids, want %d", len(decoded), len(ids))
	}
	for i, id := range ids {
		if decoded[i] != id {
			t.Fatalf("decoded[%d] = %d, want %d", i, decoded[i], id)
		}
	}
}

func TestPostingListRoundTripUnordered(t *testing.T) {
	// Builder output is weight-sorted, not id-sorted; the modular delta
	// encoding must round-trip that order untouched.
	ids := []vector.DocId{42, 7, 7, 0, 100}
	decoded, err := DecodePostingList(EncodePostingList(ids))
	if err != nil {
		t.Fatalf("DecodePostingList() error = %v", err)
	}
	for i, id := range ids {
		if decoded[i] != id {
			t.Fatalf("decoded[%d] = %d, want %d", i, decoded[i], id)
		}
	}
}

func TestPostingListEmpty(t *testing.T) {
	encoded := EncodePostingList(nil)
	decoded, err := DecodePostingList(encoded)
	if err != nil {
		t.Fatalf("DecodePostingList() error = %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("DecodePostingList() = %v, want empty", decoded)
	}
}

func TestDecodePostingListTruncated(t *testing.T) {
	if _, err := DecodePostingList(nil); err != ErrTruncated {
		t.Fatalf("DecodePostingList(nil) error = %v, want ErrTruncated", err)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	v := vector.FromRawUnsorted([]vector.Pair{
		{Dim: 0, Weight: 1.5},
		{Dim: 3, Weight: -2.25},
		{Dim: 100, Weight: 0.001},
	})

	encoded := EncodeVector(&v)
	decoded, err := DecodeVector(encoded)
	if err != nil {
		t.Fatalf("DecodeVector() error = %v", err)
	}

	if decoded.DimenCount() != v.DimenCount() {
		t.Fatalf("DimenCount() = %d, want %d", decoded.DimenCount(), v.DimenCount())
	}
	for _, p := range v.Pairs() {
		got, ok := decoded.GetDim(p.Dim)
		if !ok {
			t.Fatalf("decoded vector missing dim %d", p.Dim)
		}
		if got != p.Weight {
			t.Fatalf("decoded weight at dim %d = %v, want %v", p.Dim, got, p.Weight)
		}
	}
}

func TestVectorRoundTripEmpty(t *testing.T) {
	v := vector.Empty()
	encoded := EncodeVector(&v)
	decoded, err := DecodeVector(encoded)
	if err != nil {
		t.Fatalf("DecodeVector() error = %v", err)
	}
	if !decoded.IsEmpty() {
		t.Fatal("decoded empty vector should be empty")
	}
}
