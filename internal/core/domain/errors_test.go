package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var allErrors = []error{
	ErrNotFound,
	ErrInvalidInput,
	ErrInvalidQuery,
	ErrIndexUnavailable,
	ErrMissingDataset,
	ErrSchemaViolation,
	ErrBuildCancelled,
}

func TestErrors_Distinct(t *testing.T) {
	seen := make(map[string]bool, len(allErrors))
	for i, err := range allErrors {
		assert.NotEmpty(t, err.Error())
		assert.False(t, seen[err.Error()], "duplicate message %q", err)
		seen[err.Error()] = true
		for j, other := range allErrors {
			if i != j {
				assert.NotErrorIs(t, err, other)
			}
		}
	}
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("open %s: %w", DatasetTitles.FileName(), ErrMissingDataset)

	assert.ErrorIs(t, wrapped, ErrMissingDataset)
	assert.NotErrorIs(t, wrapped, ErrIndexUnavailable)
	assert.Contains(t, wrapped.Error(), "title.basics.tsv")
}

func TestErrors_Messages(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.Equal(t, "invalid query", ErrInvalidQuery.Error())
	assert.Equal(t, "index unavailable", ErrIndexUnavailable.Error())
	assert.Equal(t, "schema violation", ErrSchemaViolation.Error())
}
