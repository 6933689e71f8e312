package lz4jb

import (
	"fmt"
	"io"

	"github.com/trazfr/lz4jb/compression"
)

// Reader decodes a stream of framed blocks back into the original bytes,
// verifying each block's checksum before releasing its contents.
//
// End of stream is detected by source exhaustion at a block boundary; a
// source that ends mid-header or mid-payload yields ErrFormat. Zero-length
// blocks, which lz4-java emits as stream terminators, are skipped, so
// concatenated streams read as one.
//
// Not safe for concurrent use.
type Reader struct {
	src      io.Reader
	comp     compression.Compressor
	checksum Checksum

	hdr     [headerSize]byte
	payload []byte // raw block payload, grown to the stream's bound once
	dbuf    []byte // decompression target, grown to the stream's bound once
	cur     []byte // decoded bytes not yet returned from Read
	offset  int64  // stream offset of the next header

	err error // sticky; io.EOF once the source is cleanly exhausted
}

// NewReader returns a Reader decoding from r. The WithChecksum and
// WithCompressor options must match the ones the stream was written with;
// WithBlockSize is ignored because each block header carries its own size
// class.
func NewReader(r io.Reader, opts ...Option) *Reader {
	cfg := newConfig(opts)
	return &Reader{
		src:      r,
		comp:     cfg.compressor,
		checksum: cfg.checksum,
	}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.cur) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.err = r.nextBlock()
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

// WriteTo implements io.WriterTo, decoding the rest of the stream into w
// without an intermediate copy loop.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		for len(r.cur) > 0 {
			n, err := w.Write(r.cur)
			total += int64(n)
			r.cur = r.cur[n:]
			if err != nil {
				return total, err
			}
		}
		if r.err != nil {
			if r.err == io.EOF {
				return total, nil
			}
			return total, r.err
		}
		r.err = r.nextBlock()
	}
}

// Close releases the reader. It does not close the underlying source.
func (r *Reader) Close() error {
	r.cur = nil
	if r.err == nil || r.err == io.EOF {
		r.err = fmt.Errorf("lz4jb: read on closed reader")
	}
	return nil
}

// nextBlock reads, verifies and decodes the next non-empty block into
// r.cur. Returns io.EOF at a clean end of stream.
func (r *Reader) nextBlock() error {
	for {
		h, err := r.readHeader()
		if err != nil {
			return err
		}
		if h.originalLen == 0 {
			// lz4-java terminator block. Skip it rather than stopping, so
			// back-to-back streams decode as their concatenation.
			if h.checksum != 0 {
				return fmt.Errorf("%w: empty block with nonzero checksum 0x%08x", ErrFormat, h.checksum)
			}
			continue
		}

		bound := maxBlockSize(h.sizeClass)
		if cap(r.payload) < bound {
			r.payload = make([]byte, bound)
			r.dbuf = make([]byte, bound)
		}

		payload := r.payload[:h.payloadLen]
		if _, err := io.ReadFull(r.src, payload); err != nil {
			return fmt.Errorf("%w: truncated block payload at offset %d: %v", ErrFormat, r.offset, err)
		}
		r.offset += int64(h.payloadLen)

		var block []byte
		switch h.method {
		case methodRaw:
			block = payload
		case methodLZ4:
			n, err := r.comp.Decompress(r.dbuf[:h.originalLen], payload)
			if err != nil {
				return fmt.Errorf("lz4jb: block at offset %d: %w", r.offset-int64(h.payloadLen), err)
			}
			if n != int(h.originalLen) {
				return fmt.Errorf("%w: block decompressed to %d bytes, header says %d", ErrFormat, n, h.originalLen)
			}
			block = r.dbuf[:n]
		}

		if got := r.checksum(block); got != h.checksum {
			return fmt.Errorf("%w: got 0x%08x, header says 0x%08x", ErrChecksum, got, h.checksum)
		}
		r.cur = block
		return nil
	}
}

// readHeader reads and parses the next block header. A source exhausted
// exactly at the boundary is a clean io.EOF; a partial header is ErrFormat.
func (r *Reader) readHeader() (blockHeader, error) {
	if _, err := io.ReadFull(r.src, r.hdr[:]); err != nil {
		if err == io.EOF {
			return blockHeader{}, io.EOF
		}
		return blockHeader{}, fmt.Errorf("%w: truncated block header at offset %d: %v", ErrFormat, r.offset, err)
	}
	h, err := parseHeader(r.hdr[:])
	if err != nil {
		return blockHeader{}, fmt.Errorf("%w (offset %d)", err, r.offset)
	}
	r.offset += int64(headerSize)
	return h, nil
}
