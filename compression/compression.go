// Package compression provides the pluggable block-compression backends
// used by the lz4jb framing layer.
//
// A backend compresses and decompresses one block at a time into
// caller-provided buffers; no state is carried across blocks.
package compression

import (
	"errors"
)

// ErrBufferTooSmall is returned when the provided destination buffer is
// insufficient to hold the output. Callers size buffers from CompressBound,
// so hitting this indicates a programming error, not bad input.
var ErrBufferTooSmall = errors.New("compression: destination buffer too small")

// ErrMalformed is returned when compressed input is rejected by the engine.
var ErrMalformed = errors.New("compression: malformed compressed data")

// Compressor is a single-block compression engine.
//
// Implementations may keep internal scratch state between calls and are not
// safe for concurrent use; each stream owns its own Compressor.
type Compressor interface {
	// CompressBound returns an upper bound on the compressed size of n
	// input bytes. Used to size the staging buffer once per stream.
	CompressBound(n int) int

	// Compress compresses src into the prefix of dst and returns the
	// compressed length. Incompressible input yields an output at least
	// as long as src, or 0, depending on the engine; callers compare the
	// result against len(src) and store such blocks raw.
	Compress(dst, src []byte) (int, error)

	// Decompress inflates src into dst and returns the decompressed
	// length. Returns ErrMalformed if src is not valid compressed data,
	// ErrBufferTooSmall if dst cannot hold the output.
	Decompress(dst, src []byte) (int, error)
}

// Default returns the default engine: pure-Go LZ4, fast compression.
func Default() Compressor {
	return &LZ4{}
}
