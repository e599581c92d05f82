// Package memory serves datasets from in-memory strings.
package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DatasetSource = (*Source)(nil)

// Source is an in-memory dataset source for tests and fixtures.
type Source struct {
	mu    sync.RWMutex
	files map[domain.DatasetKind]string
}

// New creates a source holding the given dataset contents.
func New(files map[domain.DatasetKind]string) *Source {
	s := &Source{files: make(map[domain.DatasetKind]string, len(files))}
	for kind, content := range files {
		s.files[kind] = content
	}
	return s
}

// Put replaces the contents of one dataset.
func (s *Source) Put(kind domain.DatasetKind, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[kind] = content
}

// Delete removes one dataset.
func (s *Source) Delete(kind domain.DatasetKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, kind)
}

// Open returns a reader over one dataset.
func (s *Source) Open(ctx context.Context, kind domain.DatasetKind) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	content, ok := s.files[kind]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingDataset, kind)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

// Location returns ":memory:".
func (s *Source) Location() string {
	return ":memory:"
}
