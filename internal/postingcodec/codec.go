// Package postingcodec encodes posting lists and sparse-vector pairs to
// and from a compact byte form for persistence: varint deltas for the
// integer streams, fixed-width little-endian float32 for weights.
package postingcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/liliang-cn/vsmgo/vector"
)

// ErrTruncated is returned when a decode call runs out of input bytes
// before the encoded value is complete.
var ErrTruncated = errors.New("postingcodec: truncated input")

// EncodePostingList encodes a list of document ids as a varint-delta
// stream: the count, followed by each id's delta from the previous one
// (the first id's delta is from 0). Deltas are computed modulo 2^64, so
// any input order round-trips exactly; ascending input (id-sorted lists)
// yields the smallest encoding, while the weight-sorted order the builder
// produces simply compresses less well.
func EncodePostingList(ids []vector.DocId) []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64*(len(ids)+1))
	var tmp [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(tmp[:], uint64(len(ids)))
	buf = append(buf, tmp[:n]...)

	var prev uint64
	for _, id := range ids {
		cur := uint64(id)
		delta := cur - prev
		n := binary.PutUvarint(tmp[:], delta)
		buf = append(buf, tmp[:n]...)
		prev = cur
	}
	return buf
}

// DecodePostingList reverses EncodePostingList.
func DecodePostingList(data []byte) ([]vector.DocId, error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, ErrTruncated
	}
	data = data[n:]

	ids := make([]vector.DocId, 0, count)
	var prev uint64
	for i := uint64(0); i < count; i++ {
		delta, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, ErrTruncated
		}
		data = data[n:]
		prev += delta
		ids = append(ids, vector.DocId(prev))
	}
	return ids, nil
}

// EncodeVector encodes a SparseVector's pairs as a length prefix, a
// varint-delta dimension stream, then fixed-width little-endian float32
// weights, storing only the dimensions actually present.
func EncodeVector(v *vector.SparseVector) []byte {
	pairs := v.Pairs()
	buf := make([]byte, 0, binary.MaxVarintLen64*(len(pairs)+1)+4*len(pairs))
	var tmp [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(tmp[:], uint64(len(pairs)))
	buf = append(buf, tmp[:n]...)

	var prev uint64
	for _, p := range pairs {
		cur := uint64(p.Dim)
		n := binary.PutUvarint(tmp[:], cur-prev)
		buf = append(buf, tmp[:n]...)
		prev = cur
	}
	for _, p := range pairs {
		var wbuf [4]byte
		binary.LittleEndian.PutUint32(wbuf[:], math.Float32bits(p.Weight))
		buf = append(buf, wbuf[:]...)
	}
	return buf
}

// DecodeVector reverses EncodeVector, rebuilding the vector via
// FromRawSorted since the encoded dimensions are already sorted and
// deduplicated by construction; length is recomputed rather than persisted,
// so the result is independent of any encoding skew in a stored length.
func DecodeVector(data []byte) (vector.SparseVector, error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return vector.SparseVector{}, ErrTruncated
	}
	data = data[n:]

	dims := make([]vector.TermId, 0, count)
	var prev uint64
	for i := uint64(0); i < count; i++ {
		delta, n := binary.Uvarint(data)
		if n <= 0 {
			return vector.SparseVector{}, ErrTruncated
		}
		data = data[n:]
		prev += delta
		dims = append(dims, vector.TermId(prev))
	}

	if uint64(len(data)) < count*4 {
		return vector.SparseVector{}, fmt.Errorf("postingcodec: %w: need %d weight bytes, have %d", ErrTruncated, count*4, len(data))
	}

	pairs := make([]vector.Pair, count)
	for i := uint64(0); i < count; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		pairs[i] = vector.Pair{Dim: dims[i], Weight: math.Float32frombits(bits)}
	}

	v := vector.FromRawSorted(pairs, 0)
	v.RefreshLength()
	return v, nil
}
