// Package lz4jb implements a streaming codec for the LZ4 block-stream
// container format produced by lz4-java's LZ4BlockOutputStream and
// LZ4BlockInputStream.
//
// A Writer chunks its input into fixed-size blocks, compresses each block
// (falling back to storing it verbatim when compression does not help) and
// frames it with a small header carrying a checksum of the original bytes.
// A Reader parses that framing back, verifying checksums as it goes.
// Streams written with the default options are byte-identical to those of
// the Java implementation, including its checksum quirk (see DefaultChecksum).
package lz4jb

import "errors"

var (
	// ErrBlockSize is returned when a configured block size is outside
	// [MinBlockSize, MaxBlockSize].
	ErrBlockSize = errors.New("lz4jb: block size out of range")

	// ErrFormat is returned when a stream's framing is malformed: bad
	// magic, unknown method, inconsistent lengths, or truncation.
	// Decoding cannot continue past it.
	ErrFormat = errors.New("lz4jb: invalid stream format")

	// ErrChecksum is returned when a block's framing is well-formed but
	// the digest of its decompressed bytes does not match the header.
	ErrChecksum = errors.New("lz4jb: checksum mismatch")
)
