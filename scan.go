package lz4jb

import (
	"fmt"
	"io"
)

// BlockInfo describes one framed block without its contents.
type BlockInfo struct {
	Offset      int64 // stream offset of the block header
	Compressed  bool  // false for raw (stored) blocks
	BlockSize   int   // block size bound implied by the size class
	PayloadLen  uint32
	OriginalLen uint32
	Checksum    uint32
}

// List walks the framing of a stream and returns one BlockInfo per block,
// terminator blocks included. Payload bytes are skipped, not decompressed,
// so checksums are not verified; use Verify for that.
func List(r io.Reader) ([]BlockInfo, error) {
	var (
		blocks []BlockInfo
		hdr    [headerSize]byte
		offset int64
	)
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF {
				return blocks, nil
			}
			return blocks, fmt.Errorf("%w: truncated block header at offset %d: %v", ErrFormat, offset, err)
		}
		h, err := parseHeader(hdr[:])
		if err != nil {
			return blocks, fmt.Errorf("%w (offset %d)", err, offset)
		}
		blocks = append(blocks, BlockInfo{
			Offset:      offset,
			Compressed:  h.method == methodLZ4,
			BlockSize:   maxBlockSize(h.sizeClass),
			PayloadLen:  h.payloadLen,
			OriginalLen: h.originalLen,
			Checksum:    h.checksum,
		})
		if n, err := io.CopyN(io.Discard, r, int64(h.payloadLen)); err != nil {
			offset += int64(headerSize) + n
			return blocks, fmt.Errorf("%w: truncated block payload at offset %d: %v", ErrFormat, offset, err)
		}
		offset += int64(headerSize) + int64(h.payloadLen)
	}
}

// Verify decodes the whole stream, discarding the output, and returns the
// number of decoded bytes. The first malformed block, checksum mismatch or
// source failure ends the walk with its error.
func Verify(r io.Reader, opts ...Option) (int64, error) {
	return NewReader(r, opts...).WriteTo(io.Discard)
}
