package lz4jb

import "github.com/pierrec/xxHash/xxHash32"

// Checksum digests a block's original (decompressed) bytes into the 32-bit
// value stored in its header. Substituting a non-default implementation on
// both ends of a stream is supported; interoperating with lz4-java requires
// DefaultChecksum.
type Checksum func([]byte) uint32

// xxh32JavaSeed is lz4-java's XXHash32 default seed.
const xxh32JavaSeed = 0x9747b28c

// DefaultChecksum computes the digest used by lz4-java's default stream
// checksum: xxHash32 with seed 0x9747b28c, masked to the low 28 bits.
//
// The mask reproduces a defect of the Java implementation, which discards
// the top 4 bits of the digest. It is kept on purpose: without it the
// checksum fields differ and neither side can read the other's streams.
func DefaultChecksum(b []byte) uint32 {
	return xxHash32.Checksum(b, xxh32JavaSeed) & 0x0FFFFFFF
}
