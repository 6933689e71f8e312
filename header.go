package lz4jb

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Wire layout of one block, compatible with lz4-java's LZ4BlockOutputStream:
//
//	magic "LZ4Block" (8) | token (1) | payloadLen (4 LE) | originalLen (4 LE) | checksum (4 LE) | payload
//
// The token packs the compression method in the high nibble and the size
// class in the low nibble. The size class encodes the stream's block size
// bound so a decoder can size its buffers before touching payload bytes.

const (
	magic      = "LZ4Block"
	headerSize = len(magic) + 1 + 4 + 4 + 4 // 21

	methodRaw = 0x10
	methodLZ4 = 0x20

	// sizeClassBase: maxBlockSize(class) = 1 << (class + sizeClassBase),
	// class in 0..15.
	sizeClassBase = 10
	maxSizeClass  = 0x0F

	// MinBlockSize and MaxBlockSize bound the configurable block size.
	MinBlockSize = 64
	MaxBlockSize = 1 << (sizeClassBase + maxSizeClass) // 33_554_432

	// DefaultBlockSize is used when no WithBlockSize option is given.
	DefaultBlockSize = 1 << 16
)

type blockHeader struct {
	method      byte
	sizeClass   int
	payloadLen  uint32
	originalLen uint32
	checksum    uint32
}

// blockSizeClass returns the smallest size class whose bound covers n.
// Fails with ErrBlockSize outside [MinBlockSize, MaxBlockSize].
func blockSizeClass(n int) (int, error) {
	if n < MinBlockSize || n > MaxBlockSize {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrBlockSize, n, MinBlockSize, MaxBlockSize)
	}
	class := 32 - bits.LeadingZeros32(uint32(n-1)) - sizeClassBase
	if class < 0 {
		class = 0
	}
	return class, nil
}

// maxBlockSize is the inverse of blockSizeClass: the largest block size a
// stream with this size class may carry.
func maxBlockSize(class int) int {
	return 1 << (class + sizeClassBase)
}

// appendTo encodes the header into buf, which must be headerSize bytes.
func (h *blockHeader) appendTo(buf []byte) {
	n := copy(buf, magic)
	buf[n] = h.method | byte(h.sizeClass)
	binary.LittleEndian.PutUint32(buf[n+1:], h.payloadLen)
	binary.LittleEndian.PutUint32(buf[n+5:], h.originalLen)
	binary.LittleEndian.PutUint32(buf[n+9:], h.checksum)
}

// parseHeader decodes and validates a block header from buf (headerSize
// bytes). All failures wrap ErrFormat.
func parseHeader(buf []byte) (blockHeader, error) {
	var h blockHeader
	if string(buf[:len(magic)]) != magic {
		return h, fmt.Errorf("%w: bad magic %q", ErrFormat, buf[:len(magic)])
	}
	token := buf[len(magic)]
	h.method = token & 0xF0
	h.sizeClass = int(token & maxSizeClass)
	h.payloadLen = binary.LittleEndian.Uint32(buf[len(magic)+1:])
	h.originalLen = binary.LittleEndian.Uint32(buf[len(magic)+5:])
	h.checksum = binary.LittleEndian.Uint32(buf[len(magic)+9:])

	switch h.method {
	case methodRaw, methodLZ4:
	default:
		return h, fmt.Errorf("%w: unknown compression method 0x%02x", ErrFormat, h.method)
	}

	// Bound declared lengths by the size class before any allocation, so a
	// corrupt header cannot demand an arbitrarily large buffer.
	bound := maxBlockSize(h.sizeClass)
	if h.originalLen > uint32(bound) {
		return h, fmt.Errorf("%w: original length %d exceeds block size %d", ErrFormat, h.originalLen, bound)
	}
	switch h.method {
	case methodRaw:
		if h.payloadLen != h.originalLen {
			return h, fmt.Errorf("%w: raw block with payload length %d != original length %d",
				ErrFormat, h.payloadLen, h.originalLen)
		}
	case methodLZ4:
		if (h.payloadLen == 0) != (h.originalLen == 0) {
			return h, fmt.Errorf("%w: inconsistent lengths %d/%d", ErrFormat, h.payloadLen, h.originalLen)
		}
		// A compressed payload never beats storing the block verbatim, or
		// the encoder would have chosen raw.
		if h.payloadLen > h.originalLen {
			return h, fmt.Errorf("%w: compressed payload length %d exceeds original length %d",
				ErrFormat, h.payloadLen, h.originalLen)
		}
	}
	return h, nil
}
