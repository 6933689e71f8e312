package compression

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4 is the fast LZ4 block engine.
type LZ4 struct {
	c lz4.Compressor
}

func (e *LZ4) CompressBound(n int) int {
	return lz4.CompressBlockBound(n)
}

func (e *LZ4) Compress(dst, src []byte) (int, error) {
	n, err := e.c.CompressBlock(src, dst)
	if err != nil {
		// CompressBlock only errors when dst is too small.
		return 0, fmt.Errorf("%w: %v", ErrBufferTooSmall, err)
	}
	// Incompressible input comes back expanded, not truncated; the
	// caller compares n against len(src) and stores the block raw.
	return n, nil
}

func (e *LZ4) Decompress(dst, src []byte) (int, error) {
	return decompress(dst, src)
}

// LZ4HC is the high-compression LZ4 block engine. Slower to compress,
// decompresses with the same algorithm as LZ4.
type LZ4HC struct {
	c lz4.CompressorHC
}

// NewLZ4HC returns a high-compression engine. Levels 3-9 trade speed for
// ratio; lz4.Level9 is a good "best" setting.
func NewLZ4HC(level lz4.CompressionLevel) *LZ4HC {
	return &LZ4HC{c: lz4.CompressorHC{Level: level}}
}

func (e *LZ4HC) CompressBound(n int) int {
	return lz4.CompressBlockBound(n)
}

func (e *LZ4HC) Compress(dst, src []byte) (int, error) {
	n, err := e.c.CompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBufferTooSmall, err)
	}
	return n, nil
}

func (e *LZ4HC) Decompress(dst, src []byte) (int, error) {
	return decompress(dst, src)
}

func decompress(dst, src []byte) (int, error) {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return n, nil
}
