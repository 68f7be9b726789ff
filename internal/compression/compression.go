// Package compression opens and creates data files, transparently applying
// gzip or zstd based on the file extension.
package compression

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec identifies a compression format.
type Codec string

// Supported codecs.
const (
	None Codec = "none"
	Gzip Codec = "gzip"
	Zstd Codec = "zstd"
)

// Detect returns the codec implied by the extension of path.
func Detect(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	default:
		return None
	}
}

// Open opens path for reading and decompresses it according to its extension.
// Errors from os.Open are returned unwrapped so callers can test for fs.ErrNotExist.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, Detect(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s stream: %w", Detect(path), err)
	}
	return &stackedCloser{Reader: r, closers: []io.Closer{r, f}}, nil
}

// NewReader wraps r with a decompressor for codec.
func NewReader(r io.Reader, codec Codec) (io.ReadCloser, error) {
	switch codec {
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// Create creates (or truncates) path for writing and compresses according to
// its extension. Closing the returned writer flushes the compressor and closes
// the file.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	w, err := NewWriter(buf, Detect(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s stream: %w", Detect(path), err)
	}
	return &writeStack{WriteCloser: w, buf: buf, file: f}, nil
}

// NewWriter wraps w with a compressor for codec.
func NewWriter(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	default:
		return nopWriteCloser{w}, nil
	}
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type writeStack struct {
	io.WriteCloser
	buf  *bufio.Writer
	file *os.File
}

func (s *writeStack) Close() error {
	err := s.WriteCloser.Close()
	if ferr := s.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
