// Package fileio opens and creates files whose content is compressed
// according to the file extension: ".gz" files are gzip streams and
// ".zst" files are zstd streams.  Any other file is read and written
// as-is.  Corpus, model and gamma files all go through this package.
package fileio

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	ExtGzip = ".gz"
	ExtZstd = ".zst"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if e := c.Close(); e != nil && first == nil {
			first = e
		}
	}
	return first
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

// Close closes the compressor before the file so that trailing frames
// are flushed.
func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if e := c.Close(); e != nil && first == nil {
			first = e
		}
	}
	return first
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// Open opens filename for reading and wraps it with a decompressor
// chosen by its extension.
func Open(filename string) (io.ReadCloser, error) {
	f, e := os.Open(filename)
	if e != nil {
		return nil, e
	}

	switch path.Ext(filename) {
	case ExtGzip:
		z, e := gzip.NewReader(f)
		if e != nil {
			f.Close()
			return nil, fmt.Errorf("gzip header of %s: %w", filename, e)
		}
		return &readCloser{z, []io.Closer{z, f}}, nil
	case ExtZstd:
		z, e := zstd.NewReader(f)
		if e != nil {
			f.Close()
			return nil, fmt.Errorf("zstd stream of %s: %w", filename, e)
		}
		return &readCloser{z, []io.Closer{closerFunc(z.Close), f}}, nil
	}
	return f, nil
}

// Create creates or truncates filename and wraps it with a compressor
// chosen by its extension.
func Create(filename string) (io.WriteCloser, error) {
	f, e := os.Create(filename)
	if e != nil {
		return nil, e
	}

	switch path.Ext(filename) {
	case ExtGzip:
		z := gzip.NewWriter(f)
		return &writeCloser{z, []io.Closer{z, f}}, nil
	case ExtZstd:
		z, e := zstd.NewWriter(f)
		if e != nil {
			f.Close()
			return nil, fmt.Errorf("zstd writer for %s: %w", filename, e)
		}
		return &writeCloser{z, []io.Closer{z, f}}, nil
	}
	return f, nil
}
