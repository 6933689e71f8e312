package lz4jb

import (
	"fmt"
	"io"

	"github.com/trazfr/lz4jb/compression"
)

// Writer frames everything written to it into compressed blocks and writes
// them to the underlying sink.
//
// Bytes accumulate in a fixed buffer of the configured block size; a block
// is emitted when the buffer fills or on Flush. Close flushes any buffered
// bytes, so it must be called or the tail of the stream is lost.
//
// Not safe for concurrent use.
type Writer struct {
	dst       io.Writer
	comp      compression.Compressor
	checksum  Checksum
	sizeClass int

	buf  []byte // input accumulation, len == block size
	n    int    // fill pointer, 0 <= n <= len(buf)
	cbuf []byte // compression staging, len == CompressBound(block size)
	hdr  [headerSize]byte

	err    error // sticky
	closed bool
}

// flusher is implemented by sinks with buffered state of their own,
// e.g. *bufio.Writer.
type flusher interface {
	Flush() error
}

// NewWriter returns a Writer framing into w. Returns ErrBlockSize if a
// WithBlockSize option is out of range.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	cfg := newConfig(opts)
	class, err := blockSizeClass(cfg.blockSize)
	if err != nil {
		return nil, err
	}
	return &Writer{
		dst:       w,
		comp:      cfg.compressor,
		checksum:  cfg.checksum,
		sizeClass: class,
		buf:       make([]byte, cfg.blockSize),
		cbuf:      make([]byte, cfg.compressor.CompressBound(cfg.blockSize)),
	}, nil
}

// Write implements io.Writer. It consumes all of p, emitting as many full
// blocks as the data spans.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, fmt.Errorf("lz4jb: write on closed writer")
	}
	written := 0
	for len(p) > 0 {
		if w.n == len(w.buf) {
			if err := w.flushBlock(); err != nil {
				return written, err
			}
		}
		c := copy(w.buf[w.n:], p)
		w.n += c
		p = p[c:]
		written += c
	}
	return written, nil
}

// Flush emits any buffered bytes as a block and forwards the flush to the
// sink if it has one. Flushing an empty buffer writes no block, so calling
// Flush twice in a row produces the same stream as calling it once.
//
// Note that flushing mid-stream ends the current block early; the stream
// stays valid but compresses slightly worse.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return fmt.Errorf("lz4jb: flush on closed writer")
	}
	if err := w.flushBlock(); err != nil {
		return err
	}
	if f, ok := w.dst.(flusher); ok {
		if err := f.Flush(); err != nil {
			w.err = fmt.Errorf("lz4jb: sink flush: %w", err)
			return w.err
		}
	}
	return nil
}

// flushBlock frames and writes the buffered bytes, if any.
func (w *Writer) flushBlock() error {
	if w.n == 0 {
		return nil
	}
	original := w.buf[:w.n]

	compressedLen, err := w.comp.Compress(w.cbuf, original)
	if err != nil {
		w.err = fmt.Errorf("lz4jb: compress block: %w", err)
		return w.err
	}

	// Store raw whenever compression does not strictly shrink the block.
	method := byte(methodLZ4)
	payload := w.cbuf[:compressedLen]
	if compressedLen == 0 || compressedLen >= len(original) {
		method = methodRaw
		payload = original
	}

	h := blockHeader{
		method:      method,
		sizeClass:   w.sizeClass,
		payloadLen:  uint32(len(payload)),
		originalLen: uint32(len(original)),
		checksum:    w.checksum(original),
	}
	h.appendTo(w.hdr[:])

	if _, err := w.dst.Write(w.hdr[:]); err != nil {
		w.err = fmt.Errorf("lz4jb: write block header: %w", err)
		return w.err
	}
	if _, err := w.dst.Write(payload); err != nil {
		w.err = fmt.Errorf("lz4jb: write block payload: %w", err)
		return w.err
	}
	w.n = 0
	return nil
}

// Close flushes buffered bytes and marks the writer finished. It does not
// close the underlying sink. Closing twice is a no-op; closing after an
// earlier failure returns that failure without writing anything further.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	if w.err != nil {
		// Stream already failed; a best-effort flush here could only emit
		// a torn block. Keep the original error.
		log.Debug("lz4jb: skipping final flush of failed stream", "err", w.err)
		w.closed = true
		return w.err
	}
	err := w.Flush()
	w.closed = true
	return err
}
