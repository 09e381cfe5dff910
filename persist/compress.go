package persist

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// compressor wraps a reusable zstd encoder/decoder pair. One compressor is
// built per Store and reused across every blob it writes or reads, since
// constructing a zstd encoder per call is wasteful.
type compressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCompressor(level int) (*compressor, error) {
	encLevel := zstd.EncoderLevelFromZstd(level)
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel))
	if err != nil {
		return nil, fmt.Errorf("persist: create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("persist: create zstd decoder: %w", err)
	}
	return &compressor{enc: enc, dec: dec}, nil
}

func (c *compressor) compress(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	return c.enc.EncodeAll(data, nil)
}

func (c *compressor) decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("persist: zstd decode: %w", err)
	}
	return out, nil
}

func (c *compressor) Close() {
	c.enc.Close()
	c.dec.Close()
}
