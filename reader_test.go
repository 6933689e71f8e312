package lz4jb

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/trazfr/lz4jb/compression"
)

func TestReader_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	random := make([]byte, 10_000)
	rng.Read(random)

	payloads := map[string][]byte{
		"empty":        {},
		"single byte":  {'x'},
		"text":         bytes.Repeat([]byte("the quick brown fox "), 500),
		"zeros":        make([]byte, 5000),
		"random":       random,
		"exact block":  bytes.Repeat([]byte{1}, 1024),
		"block plus 1": bytes.Repeat([]byte{2}, 1025),
	}
	for name, data := range payloads {
		for _, blockSize := range []int{64, 100, 1024, DefaultBlockSize} {
			out := encode(t, data, WithBlockSize(blockSize))
			require.Equal(t, data, decode(t, out), "%s, block size %d", name, blockSize)
		}
	}
}

func TestReader_OneByteReads(t *testing.T) {
	data := bytes.Repeat([]byte("abcd"), 300)
	stream := encode(t, data, WithBlockSize(256))

	r := NewReader(iotest.OneByteReader(bytes.NewReader(stream)))
	got, err := io.ReadAll(iotest.OneByteReader(r))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestReader_EmptySource(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	n, err := r.Read(make([]byte, 10))
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
}

func TestReader_TruncatedHeader(t *testing.T) {
	for _, cut := range []int{1, 5, headerSize - 1} {
		r := NewReader(bytes.NewReader(validData[:cut]))
		_, err := io.ReadAll(r)
		require.ErrorIs(t, err, ErrFormat, "cut at %d", cut)
	}
}

func TestReader_TruncatedPayload(t *testing.T) {
	r := NewReader(bytes.NewReader(validData[:len(validData)-1]))
	_, err := io.ReadAll(r)
	require.ErrorIs(t, err, ErrFormat)
}

func TestReader_TruncatedSecondBlock(t *testing.T) {
	// A complete block followed by a partial header is corruption, not EOF.
	stream := append(append([]byte{}, validData...), validData[:7]...)
	r := NewReader(bytes.NewReader(stream))
	_, err := io.ReadAll(r)
	require.ErrorIs(t, err, ErrFormat)
}

func TestReader_BadMagic(t *testing.T) {
	stream := append([]byte{}, validData...)
	stream[0] ^= 0xFF
	_, err := io.ReadAll(NewReader(bytes.NewReader(stream)))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReader_CorruptRawPayload(t *testing.T) {
	data := make([]byte, 512)
	rand.New(rand.NewSource(3)).Read(data)
	stream := encode(t, data, WithBlockSize(512)) // random data stays raw

	// Any single flipped payload bit must surface as a checksum mismatch,
	// never as silently wrong output.
	for i := headerSize; i < len(stream); i += 37 {
		for bit := 0; bit < 8; bit++ {
			corrupt := append([]byte{}, stream...)
			corrupt[i] ^= 1 << bit
			_, err := io.ReadAll(NewReader(bytes.NewReader(corrupt)))
			require.ErrorIs(t, err, ErrChecksum, "byte %d bit %d", i, bit)
		}
	}
}

func TestReader_CorruptCompressedPayload(t *testing.T) {
	data := bytes.Repeat([]byte("compressible! "), 200)
	stream := encode(t, data, WithBlockSize(2048))

	blocks, err := List(bytes.NewReader(stream))
	require.NoError(t, err)
	require.True(t, blocks[0].Compressed)

	// Corrupt compressed bytes break the LZ4 structure, decompress to the
	// wrong length, or survive and trip the checksum; all must fail, and
	// decoded output must never be wrong. Stay within the first block's
	// payload, bytes past it belong to the next header.
	end := headerSize + int(blocks[0].PayloadLen)
	for i := headerSize; i < end; i += 11 {
		corrupt := append([]byte{}, stream...)
		corrupt[i] ^= 0x01
		got, err := io.ReadAll(NewReader(bytes.NewReader(corrupt)))
		if err == nil {
			require.Equal(t, data, got, "byte %d", i)
			continue
		}
		if !errors.Is(err, ErrChecksum) && !errors.Is(err, compression.ErrMalformed) && !errors.Is(err, ErrFormat) {
			t.Fatalf("byte %d: unexpected error %v", i, err)
		}
	}
}

func TestReader_StickyError(t *testing.T) {
	stream := append([]byte{}, validData...)
	stream[len(stream)-1] ^= 0x01

	r := NewReader(bytes.NewReader(stream))
	_, err := io.ReadAll(r)
	require.ErrorIs(t, err, ErrChecksum)

	_, err2 := r.Read(make([]byte, 1))
	require.ErrorIs(t, err2, ErrChecksum)
}

func TestReader_SkipsTerminatorBlock(t *testing.T) {
	// lz4-java's finish() appends an empty raw block with checksum 0.
	terminator := rawBlock(t, nil, 0, 0)
	stream := append(append([]byte{}, validData...), terminator...)

	got, err := io.ReadAll(NewReader(bytes.NewReader(stream)))
	require.NoError(t, err)
	require.Equal(t, []byte("..."), got)
}

func TestReader_ConcatenatedStreams(t *testing.T) {
	a := encode(t, []byte("first stream"), WithBlockSize(64))
	term := rawBlock(t, nil, 0, 0)
	b := encode(t, []byte(" and second"), WithBlockSize(128))

	stream := append(append(append([]byte{}, a...), term...), b...)
	got, err := io.ReadAll(NewReader(bytes.NewReader(stream)))
	require.NoError(t, err)
	require.Equal(t, []byte("first stream and second"), got)
}

func TestReader_TerminatorWithChecksum(t *testing.T) {
	bad := rawBlock(t, nil, 0, 0x0677E452)
	_, err := io.ReadAll(NewReader(bytes.NewReader(bad)))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReader_OversizedDeclaredLength(t *testing.T) {
	// Size class 0 bounds blocks to 1024 bytes; a header declaring more
	// must be rejected before any payload is read.
	block := rawBlock(t, make([]byte, 2000), 0, 0)
	_, err := io.ReadAll(NewReader(bytes.NewReader(block)))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReader_ReadAfterClose(t *testing.T) {
	r := NewReader(bytes.NewReader(validData))
	require.NoError(t, r.Close())
	_, err := r.Read(make([]byte, 1))
	require.Error(t, err)
}

// rawBlock frames payload as a single raw block with the given size class
// and checksum, bypassing Writer validation.
func rawBlock(t *testing.T, payload []byte, sizeClass int, checksum uint32) []byte {
	t.Helper()
	h := blockHeader{
		method:      methodRaw,
		sizeClass:   sizeClass,
		payloadLen:  uint32(len(payload)),
		originalLen: uint32(len(payload)),
		checksum:    checksum,
	}
	buf := make([]byte, headerSize+len(payload))
	h.appendTo(buf)
	copy(buf[headerSize:], payload)
	return buf
}
