package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

func lines(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}

// sampleDatasets is a small but complete corpus.
func sampleDatasets() map[domain.DatasetKind]string {
	return map[domain.DatasetKind]string{
		domain.DatasetTitles: lines(
			"tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres",
			"tt0133093\tmovie\tThe Matrix\tThe Matrix\t0\t1999\t\\N\t136\tAction,Sci-Fi",
			"tt0234215\tmovie\tThe Matrix Reloaded\t\\N\t0\t2003\t\\N\t138\tAction,Sci-Fi",
			"\\N\tmovie\tOrphan\tOrphan\t0\t2000\t\\N\t90\tDrama",
		),
		domain.DatasetRatings: lines(
			"tconst\taverageRating\tnumVotes",
			"tt0133093\t8.7\t1900000",
			"tt9999999\t6.0\t12",
		),
		domain.DatasetAkas: lines(
			"titleId\tordering\ttitle\tregion\tlanguage\ttypes\tattributes\tisOriginalTitle",
			"tt0133093\t2\tMatrix\tDE\tde\t\\N\t\\N\t0",
			"tt0133093\t1\tThe Matrix\t\\N\t\\N\toriginal\t\\N\t1",
			"tt0133093\t2\tMatrix\tDE\tde\t\\N\t\\N\t0",
			"tt0234215\t1\tMatrix Reloaded\t\\N\t\\N\toriginal\t\\N\t1",
			"tt7777777\t1\tSolo Aka\tFR\tfr\t\\N\t\\N\t0",
		),
		domain.DatasetPrincipals: lines(
			"tconst\tordering\tnconst\tcategory\tjob\tcharacters",
			"tt0133093\t2\tnm0000401\tactor\t\\N\t\\N",
			"tt0133093\t1\tnm0000206\tactor\t\\N\t\\N",
			"tt0133093\t1\tnm0000206\tactor\t\\N\t\\N",
			"tt0133093\t3\tnm9999999\tactor\t\\N\t\\N",
		),
		domain.DatasetNames: lines(
			"nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles",
			"nm0000206\tKeanu Reeves\t1964\t\\N\tactor,producer\ttt0133093,tt0234215,tt0111257,tt10838180",
			"nm0000401\tLaurence Fishburne\t1961\t\\N\tactor,producer\ttt0133093",
		),
	}
}

func composeSample(t *testing.T, workers int) *Composition {
	t.Helper()
	c := NewComposer(newMockDatasetSource(sampleDatasets()), domain.IngestSettings{Workers: workers})
	comp, err := c.Compose(context.Background())
	require.NoError(t, err)
	return comp
}

func titleByID(comp *Composition, id string) (domain.TitleDocument, bool) {
	for doc := range comp.Titles() {
		if doc.ID == id {
			return doc, true
		}
	}
	return domain.TitleDocument{}, false
}

func TestComposer_OneDocumentPerTitleID(t *testing.T) {
	comp := composeSample(t, 4)

	var ids []string
	for doc := range comp.Titles() {
		require.NotEmpty(t, doc.ID)
		ids = append(ids, doc.ID)
	}
	// Ratings-only and akas-only identifiers still produce a document.
	assert.Equal(t, []string{"tt0133093", "tt0234215", "tt7777777", "tt9999999"}, ids)
	assert.Equal(t, 4, comp.TitleCount())
}

func TestComposer_MergesAllDatasets(t *testing.T) {
	comp := composeSample(t, 3)

	matrix, ok := titleByID(comp, "tt0133093")
	require.True(t, ok)
	assert.Equal(t, "The Matrix", matrix.PrimaryTitle)
	assert.Equal(t, "The Matrix", matrix.OriginalTitle)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, matrix.Genres)
	require.NotNil(t, matrix.AverageRating)
	assert.InDelta(t, 8.7, *matrix.AverageRating, 1e-9)
	assert.Equal(t, int64(1900000), *matrix.NumVotes)
	assert.Equal(t, 1999, *matrix.StartYear)

	// Duplicated aka collapses; ordering follows the dataset ordering column.
	assert.Equal(t, []domain.AlternateTitle{
		{Title: "The Matrix"},
		{Title: "Matrix", Region: "DE", Language: "de"},
	}, matrix.AlternateTitles)

	// Billing order, duplicate principal once, unknown person skipped.
	assert.Equal(t, "Keanu Reeves, Laurence Fishburne", matrix.Crew)
}

func TestComposer_OriginalTitleFallbacks(t *testing.T) {
	comp := composeSample(t, 2)

	reloaded, ok := titleByID(comp, "tt0234215")
	require.True(t, ok)
	assert.Equal(t, "Matrix Reloaded", reloaded.OriginalTitle)
	assert.Equal(t, "The Matrix Reloaded", reloaded.PrimaryTitle)
	assert.False(t, reloaded.HasRating())

	akaOnly, ok := titleByID(comp, "tt7777777")
	require.True(t, ok)
	assert.Equal(t, "Solo Aka", akaOnly.PrimaryTitle)

	ratingOnly, ok := titleByID(comp, "tt9999999")
	require.True(t, ok)
	assert.Empty(t, ratingOnly.PrimaryTitle)
	assert.True(t, ratingOnly.HasRating())
}

func TestComposer_NamesPreserveKnownForOrder(t *testing.T) {
	comp := composeSample(t, 4)

	names := slices.Collect(comp.Names())
	require.Len(t, names, 2)
	keanu := names[0]
	assert.Equal(t, "nm0000206", keanu.ID)
	assert.Equal(t, []string{"actor", "producer"}, keanu.Professions)
	assert.Equal(t, []string{"tt0133093", "tt0234215", "tt0111257", "tt10838180"}, keanu.KnownForTitles)
	assert.Equal(t, 2, comp.NameCount())
}

func TestComposer_IdempotentUnderDuplication(t *testing.T) {
	once := composeSample(t, 2)

	doubled := sampleDatasets()
	for kind, content := range doubled {
		body := strings.SplitN(content, "\n", 2)[1]
		doubled[kind] = content + body
	}
	c := NewComposer(newMockDatasetSource(doubled), domain.IngestSettings{Workers: 2})
	twice, err := c.Compose(context.Background())
	require.NoError(t, err)

	assert.Equal(t, slices.Collect(once.Titles()), slices.Collect(twice.Titles()))
	assert.Equal(t, slices.Collect(once.Names()), slices.Collect(twice.Names()))
}

func TestComposer_DeterministicAcrossPartitionCounts(t *testing.T) {
	one := composeSample(t, 1)
	many := composeSample(t, 8)

	assert.Equal(t, slices.Collect(one.Titles()), slices.Collect(many.Titles()))
	assert.Equal(t, slices.Collect(one.Names()), slices.Collect(many.Names()))
}

func TestComposer_RecordsDecodeStats(t *testing.T) {
	comp := composeSample(t, 2)

	require.Len(t, comp.Stats, len(domain.AllDatasetKinds))
	assert.Equal(t, domain.DatasetTitles, comp.Stats[0].Kind)
	assert.Equal(t, 1, comp.Stats[0].Malformed)
	assert.Equal(t, 2, comp.Stats[0].Rows)
}

func TestComposer_MissingRequiredDataset(t *testing.T) {
	files := sampleDatasets()
	delete(files, domain.DatasetPrincipals)

	c := NewComposer(newMockDatasetSource(files), domain.IngestSettings{Workers: 2})
	_, err := c.Compose(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingDataset)
}

func TestComposer_OptionalDatasetMayBeMissing(t *testing.T) {
	files := sampleDatasets()
	delete(files, domain.DatasetAkas)

	c := NewComposer(newMockDatasetSource(files), domain.IngestSettings{
		Workers:          2,
		OptionalDatasets: []domain.DatasetKind{domain.DatasetAkas},
	})
	comp, err := c.Compose(context.Background())
	require.NoError(t, err)

	matrix, ok := titleByID(comp, "tt0133093")
	require.True(t, ok)
	assert.Empty(t, matrix.AlternateTitles)
	_, ok = titleByID(comp, "tt7777777")
	assert.False(t, ok)
}

func TestComposer_UnreadableSourceIsMissingDataset(t *testing.T) {
	src := newMockDatasetSource(sampleDatasets())
	src.openErr = errors.New("permission denied")

	c := NewComposer(src, domain.IngestSettings{Workers: 1})
	_, err := c.Compose(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingDataset)
}

func TestComposer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewComposer(newMockDatasetSource(sampleDatasets()), domain.IngestSettings{Workers: 2})
	_, err := c.Compose(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartitionOf_Stable(t *testing.T) {
	for _, id := range []string{"tt0133093", "nm0000206", "x"} {
		p := partitionOf(id, 7)
		assert.GreaterOrEqual(t, p, 0)
		assert.Less(t, p, 7)
		assert.Equal(t, p, partitionOf(id, 7))
	}
}
