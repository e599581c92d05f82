package bleveindex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/oklog/ulid/v2"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexBuilder = (*Store)(nil)

// Index directory names inside a generation.
const (
	titlesDir = "titles.bleve"
	namesDir  = "names.bleve"
)

const progressInterval = 2 * time.Second

// Store builds and opens index generations under a root directory.
type Store struct {
	root      string
	batchSize int
}

// New creates a store rooted at root. A batch size below 1 uses the default.
func New(root string, batchSize int) *Store {
	if batchSize < 1 {
		batchSize = domain.DefaultBatchSize
	}
	return &Store{root: root, batchSize: batchSize}
}

// Root returns the index root directory.
func (s *Store) Root() string {
	return s.root
}

// Build writes both indexes of a generation and reopens them read-only.
// Any failure, including cancellation, removes the partial directory.
func (s *Store) Build(ctx context.Context, generation string,
	titles iter.Seq[domain.TitleDocument], names iter.Seq[domain.NameDocument]) (driven.IndexReader, error) {
	if err := validGeneration(generation); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, generation)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: generation %s already exists", domain.ErrInvalidInput, generation)
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("create index root: %w", err)
	}

	if err := s.write(ctx, dir, titles, names); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			logger.Warn("Failed to remove partial generation %s: %v", generation, rmErr)
		}
		return nil, err
	}

	reader, err := s.Open(ctx, generation)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return reader, nil
}

func (s *Store) write(ctx context.Context, dir string,
	titles iter.Seq[domain.TitleDocument], names iter.Seq[domain.NameDocument]) error {
	titleMapping, err := buildIndexMapping(domain.TitleSchema)
	if err != nil {
		return err
	}
	n, err := populate(ctx, filepath.Join(dir, titlesDir), titleMapping, titles, titleFields, s.batchSize)
	if err != nil {
		return fmt.Errorf("index titles: %w", err)
	}
	logger.Info("Indexed %d titles", n)

	nameMapping, err := buildIndexMapping(domain.NameSchema)
	if err != nil {
		return err
	}
	n, err = populate(ctx, filepath.Join(dir, namesDir), nameMapping, names, nameFields, s.batchSize)
	if err != nil {
		return fmt.Errorf("index names: %w", err)
	}
	logger.Info("Indexed %d names", n)
	return nil
}

// populate creates an index at path and writes docs in batches, checking
// ctx before every batch is submitted.
func populate[D any](ctx context.Context, path string, im mapping.IndexMapping,
	docs iter.Seq[D], fields func(D) (map[string]any, error), batchSize int) (n int, err error) {
	idx, err := bleve.New(path, im)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if closeErr := idx.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if docs == nil {
		return 0, nil
	}

	progress := logger.NewProgress(progressInterval)
	batch := idx.NewBatch()
	flush := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := idx.Batch(batch); err != nil {
			return fmt.Errorf("submit batch: %w", err)
		}
		batch.Reset()
		progress.Info("%s: %d documents written", filepath.Base(path), n)
		return nil
	}

	for doc := range docs {
		data, err := fields(doc)
		if err != nil {
			return n, err
		}
		id, _ := data[domain.FieldID].(string)
		if err := batch.Index(id, data); err != nil {
			return n, fmt.Errorf("queue %s: %w", id, err)
		}
		n++
		if batch.Size() >= batchSize {
			if err := flush(); err != nil {
				return n, err
			}
		}
	}
	if batch.Size() > 0 {
		if err := flush(); err != nil {
			return n, err
		}
	}
	return n, ctx.Err()
}

// Open reopens a generation read-only.
func (s *Store) Open(_ context.Context, generation string) (driven.IndexReader, error) {
	if err := validGeneration(generation); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, generation)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: generation %s: %w", domain.ErrIndexUnavailable, generation, err)
	}

	titles, err := openReadOnly(filepath.Join(dir, titlesDir))
	if err != nil {
		return nil, err
	}
	names, err := openReadOnly(filepath.Join(dir, namesDir))
	if err != nil {
		_ = titles.Close()
		return nil, err
	}
	return &Reader{generation: generation, titles: titles, names: names}, nil
}

func openReadOnly(path string) (bleve.Index, error) {
	idx, err := bleve.OpenUsing(path, map[string]any{"read_only": true})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrIndexUnavailable, path, err)
	}
	return idx, nil
}

// Remove deletes a generation directory.
func (s *Store) Remove(generation string) error {
	if err := validGeneration(generation); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.root, generation)); err != nil {
		return fmt.Errorf("remove generation %s: %w", generation, err)
	}
	return nil
}

// List returns the generation directories under the root, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list index root: %w", err)
	}

	var generations []string
	for _, e := range entries {
		if e.IsDir() && validGeneration(e.Name()) == nil {
			generations = append(generations, e.Name())
		}
	}
	slices.Sort(generations)
	return generations, nil
}

// validGeneration accepts ULID names only, which also keeps Remove inside
// the root.
func validGeneration(generation string) error {
	if _, err := ulid.ParseStrict(generation); err != nil {
		return fmt.Errorf("%w: generation %q is not a ULID", domain.ErrInvalidInput, generation)
	}
	return nil
}
