// Package filesystem reads IMDb TSV datasets from a local directory.
package filesystem

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DatasetSource = (*Source)(nil)

// GzipSuffix is appended to a dataset file name for the compressed variant.
const GzipSuffix = ".gz"

// Source opens <dir>/<kind>.tsv, falling back to <dir>/<kind>.tsv.gz.
type Source struct {
	dir string
}

// New creates a dataset source rooted at dir.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Location returns the data directory.
func (s *Source) Location() string {
	return s.dir
}

// Path returns the plain TSV path of a dataset.
func (s *Source) Path(kind domain.DatasetKind) string {
	return filepath.Join(s.dir, kind.FileName())
}

// Open returns a reader over the decompressed rows of one dataset.
func (s *Source) Open(ctx context.Context, kind domain.DatasetKind) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown dataset kind %q", domain.ErrInvalidInput, kind)
	}

	plain := s.Path(kind)
	f, err := os.Open(plain)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", plain, err)
	}

	compressed := plain + GzipSuffix
	gf, err := os.Open(compressed)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found in %s", domain.ErrMissingDataset, kind.FileName(), s.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", compressed, err)
	}

	zr, err := gzip.NewReader(gf)
	if err != nil {
		_ = gf.Close()
		return nil, fmt.Errorf("read %s: %w", compressed, err)
	}
	return &gzipFile{Reader: zr, file: gf}, nil
}

// gzipFile closes both the decompressor and the underlying file.
type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	return errors.Join(g.Reader.Close(), g.file.Close())
}

// IsDatasetFile reports whether a base file name is one of the dataset files,
// compressed or not.
func IsDatasetFile(name string) bool {
	for _, kind := range domain.AllDatasetKinds {
		if name == kind.FileName() || name == kind.FileName()+GzipSuffix {
			return true
		}
	}
	return false
}
