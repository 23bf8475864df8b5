/*
Package ffio opens and creates farbfeld files with transparent compression.

The format itself is deliberately uncompressed, so files on disk are
commonly piped through a general-purpose compressor. This package
recognises the usual suffixes (.zst, .bz2, .gz) and hides the extra layer
from the codec, which only ever sees the raw byte stream.
*/
package ffio

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type reader struct {
	io.Reader
	closers []func() error
}

func (r *reader) Close() error {
	var err error
	for _, c := range r.closers {
		if cerr := c(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

type writer struct {
	io.Writer
	closers []func() error
}

func (w *writer) Close() error {
	var err error
	for _, c := range w.closers {
		if cerr := c(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Base returns path with one recognised compression suffix removed, so the
// underlying format extension can be inspected.
func Base(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".bz2", ".gz":
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}

// Open opens the named file for reading, transparently decompressing it
// based on its extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &reader{
			Reader: zr,
			closers: []func() error{
				func() error { zr.Close(); return nil },
				f.Close,
			},
		}, nil
	case ".bz2":
		return &reader{
			Reader:  bzip2.NewReader(f),
			closers: []func() error{f.Close},
		}, nil
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &reader{
			Reader:  zr,
			closers: []func() error{zr.Close, f.Close},
		}, nil
	default:
		return f, nil
	}
}

// Create creates or truncates the named file for writing, compressing it
// based on its extension. There is no bzip2 writer in the standard
// library, so .bz2 is read-only.
func Create(path string) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &writer{
			Writer:  zw,
			closers: []func() error{zw.Close, f.Close},
		}, nil
	case ".gz":
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		zw := gzip.NewWriter(f)
		return &writer{
			Writer:  zw,
			closers: []func() error{zw.Close, f.Close},
		}, nil
	case ".bz2":
		return nil, fmt.Errorf("ffio: cannot write %q: bzip2 compression is not supported", path)
	default:
		return os.Create(path)
	}
}
