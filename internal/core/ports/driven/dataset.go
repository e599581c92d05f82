package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// DatasetSource opens the raw dataset files consumed by a build.
type DatasetSource interface {
	// Open returns a reader over the decompressed rows of one dataset.
	// A missing dataset returns an error wrapping domain.ErrMissingDataset.
	Open(ctx context.Context, kind domain.DatasetKind) (io.ReadCloser, error)

	// Location describes where datasets are read from, for logs.
	Location() string
}
