package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatasetKind_IsValid(t *testing.T) {
	for _, kind := range AllDatasetKinds {
		assert.True(t, kind.IsValid(), kind.String())
	}
	assert.False(t, DatasetKind("title.episode").IsValid())
}

func TestDatasetKind_FileName(t *testing.T) {
	assert.Equal(t, "title.basics.tsv", DatasetTitles.FileName())
	assert.Equal(t, "name.basics.tsv", DatasetNames.FileName())
}

func TestDatasetKind_Columns(t *testing.T) {
	assert.Len(t, DatasetTitles.Columns(), 9)
	assert.Len(t, DatasetRatings.Columns(), 3)
	assert.Len(t, DatasetAkas.Columns(), 8)
	assert.Len(t, DatasetPrincipals.Columns(), 6)
	assert.Len(t, DatasetNames.Columns(), 6)
	assert.Equal(t, "titleId", DatasetAkas.Columns()[0])
	assert.Nil(t, DatasetKind("bogus").Columns())
}
