package lz4jb

import "github.com/trazfr/lz4jb/compression"

// config holds internal configuration shared by Writer and Reader
type config struct {
	blockSize  int
	checksum   Checksum
	compressor compression.Compressor
}

// Option configures a Writer or Reader
type Option interface {
	apply(*config)
}

// funcOpt wraps a function as an Option
type funcOpt func(*config)

func (f funcOpt) apply(c *config) {
	f(c)
}

// WithBlockSize sets the block size in bytes (default: 65536).
// Must be within [MinBlockSize, MaxBlockSize]; the Writer constructor
// rejects anything else. Readers ignore it, the size class in each block
// header drives their buffer sizing.
func WithBlockSize(n int) Option {
	return funcOpt(func(c *config) {
		c.blockSize = n
	})
}

// WithChecksum substitutes the block checksum function (default:
// DefaultChecksum). Both ends of a stream must agree on it.
func WithChecksum(fn Checksum) Option {
	return funcOpt(func(c *config) {
		c.checksum = fn
	})
}

// WithCompressor selects the compression backend (default:
// compression.Default, the fast pure-Go LZ4 engine). Any backend must
// produce LZ4 block payloads; high-compression encoders such as
// compression.LZ4HC remain readable by every conformant decoder.
func WithCompressor(comp compression.Compressor) Option {
	return funcOpt(func(c *config) {
		c.compressor = comp
	})
}

func defaultConfig() config {
	return config{
		blockSize:  DefaultBlockSize,
		checksum:   DefaultChecksum,
		compressor: compression.Default(),
	}
}

func newConfig(opts []Option) config {
	c := defaultConfig()
	for _, o := range opts {
		o.apply(&c)
	}
	return c
}
