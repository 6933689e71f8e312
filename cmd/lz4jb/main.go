// Command lz4jb compresses and decompresses files in the LZ4 Java
// block-stream format, gzip-style: lz4jb [options] [file ...]
//
// With no files it reads stdin and writes stdout. Compressing FILE writes
// FILE.lz4 and removes FILE unless -k is given; decompressing FILE.lz4
// writes FILE. -l lists the framing of compressed files, -t checks their
// integrity.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/trazfr/lz4jb"
	"github.com/trazfr/lz4jb/compression"
)

type mode int

const (
	modeCompress mode = iota
	modeDecompress
	modeList
	modeTest
)

type options struct {
	mode      mode
	stdout    bool
	keep      bool
	force     bool
	extension string
	blockSize int
	comp      compression.Compressor
	files     []string
}

func main() {
	opts, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lz4jb: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	failed := false
	for _, file := range opts.files {
		if err := processFile(opts, file); err != nil {
			failed = true
			if errors.Is(err, errReported) {
				continue
			}
			name := file
			if name == "" {
				name = "stdin"
			}
			fmt.Fprintf(os.Stderr, "lz4jb: %s: %v\n", name, err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func parseArgs() (*options, error) {
	var (
		compress   = flag.Bool("z", false, "Compress. This is the default operation mode.")
		decompress = flag.Bool("d", false, "Decompress.")
		list       = flag.Bool("l", false, "List compressed file contents.")
		test       = flag.Bool("t", false, "Test the integrity of compressed files.")
		stdout     = flag.Bool("c", false, "Write output on standard output; keep original files unchanged.")
		keep       = flag.Bool("k", false, "Keep (don't delete) input files during compression or decompression.")
		force      = flag.Bool("f", false, "Force the compression or decompression.")
		extension  = flag.String("E", "lz4", "Append this extension for compression.")
		blockSize  = flag.Int("b", lz4jb.DefaultBlockSize, "Block size for compression in bytes (between 64 and 33554432).")
		library    = flag.String("L", "lz4", "Compression engine: lz4 (fast) or lz4hc (high compression).")
	)
	flag.Parse()

	opts := &options{
		stdout:    *stdout,
		keep:      *keep,
		force:     *force,
		extension: *extension,
		blockSize: *blockSize,
		files:     flag.Args(),
	}

	nmodes := 0
	for _, set := range []bool{*compress, *decompress, *list, *test} {
		if set {
			nmodes++
		}
	}
	if nmodes > 1 {
		return nil, errors.New("at most one of -z, -d, -l, -t may be given")
	}
	switch {
	case *decompress:
		opts.mode = modeDecompress
	case *list:
		opts.mode = modeList
	case *test:
		opts.mode = modeTest
	default:
		opts.mode = modeCompress
	}

	switch *library {
	case "lz4":
		opts.comp = &compression.LZ4{}
	case "lz4hc":
		opts.comp = compression.NewLZ4HC(lz4.Level9)
	default:
		return nil, fmt.Errorf("unknown library %q (available: lz4, lz4hc)", *library)
	}

	if len(opts.files) == 0 {
		// Empty name stands for stdin/stdout.
		opts.files = []string{""}
		opts.stdout = true
	}
	return opts, nil
}

func processFile(opts *options, file string) error {
	switch opts.mode {
	case modeCompress:
		return compressFile(opts, file)
	case modeDecompress:
		return decompressFile(opts, file)
	case modeList:
		return listFile(opts, file)
	case modeTest:
		return testFile(opts, file)
	}
	return nil
}

// outputName derives the output filename, or "" for stdout.
func outputName(opts *options, file string) (string, error) {
	if opts.stdout || file == "" {
		return "", nil
	}
	suffix := "." + opts.extension
	if opts.mode == modeDecompress {
		out, ok := strings.CutSuffix(file, suffix)
		if !ok {
			return "", fmt.Errorf("unknown suffix, expected %q", suffix)
		}
		return out, nil
	}
	return file + suffix, nil
}

func openInput(file string) (io.ReadCloser, error) {
	if file == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(file)
}

func createOutput(opts *options, name string) (io.WriteCloser, error) {
	if name == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	if !opts.force {
		if _, err := os.Stat(name); err == nil {
			return nil, fmt.Errorf("%s already exists (use -f to overwrite)", name)
		}
	}
	return os.Create(name)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// transform pipes in through the codec into out, cleaning up the output
// file on failure and the input file on success.
func transform(opts *options, file string, run func(in io.Reader, out io.Writer) error) error {
	outName, err := outputName(opts, file)
	if err != nil {
		return err
	}
	in, err := openInput(file)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(opts, outName)
	if err != nil {
		return err
	}
	if err := run(in, out); err != nil {
		out.Close()
		if outName != "" {
			os.Remove(outName)
		}
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if outName != "" && !opts.keep && file != "" {
		in.Close()
		return os.Remove(file)
	}
	return nil
}

func compressFile(opts *options, file string) error {
	return transform(opts, file, func(in io.Reader, out io.Writer) error {
		w, err := lz4jb.NewWriter(out,
			lz4jb.WithBlockSize(opts.blockSize),
			lz4jb.WithCompressor(opts.comp))
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, in); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	})
}

func decompressFile(opts *options, file string) error {
	return transform(opts, file, func(in io.Reader, out io.Writer) error {
		r := lz4jb.NewReader(in)
		defer r.Close()
		_, err := io.Copy(out, r)
		return err
	})
}

func listFile(opts *options, file string) error {
	in, err := openInput(file)
	if err != nil {
		return err
	}
	defer in.Close()

	blocks, err := lz4jb.List(in)
	name := file
	if name == "" {
		name = "stdin"
	}
	var payload, original uint64
	compressed := 0
	for _, b := range blocks {
		payload += uint64(b.PayloadLen)
		original += uint64(b.OriginalLen)
		if b.Compressed {
			compressed++
		}
	}
	ratio := 100.0
	if original > 0 {
		ratio = float64(payload) / float64(original) * 100
	}
	fmt.Printf("%s: %d blocks (%d compressed), %d -> %d bytes (%.1f%%)\n",
		name, len(blocks), compressed, payload, original, ratio)
	return err
}

func testFile(opts *options, file string) error {
	in, err := openInput(file)
	if err != nil {
		return err
	}
	defer in.Close()

	name := file
	if name == "" {
		name = "stdin"
	}
	n, err := lz4jb.Verify(in)
	if err != nil {
		fmt.Printf("%s: FAILED: %v\n", name, err)
		return errReported
	}
	fmt.Printf("%s: OK (%d bytes)\n", name, n)
	return nil
}

// errReported marks a failure already printed by its mode handler.
var errReported = errors.New("reported")
