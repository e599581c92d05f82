package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name      string
		requested *int
		want      int
	}{
		{"default", nil, DefaultLimit},
		{"zero clamps to one", Ptr(0), 1},
		{"negative clamps to one", Ptr(-5), 1},
		{"within range", Ptr(25), 25},
		{"upper bound", Ptr(50), 50},
		{"above range clamps", Ptr(1000), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampLimit(tt.requested))
		})
	}
}

func TestParseSortMode(t *testing.T) {
	mode, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, mode)

	mode, err = ParseSortMode("Rating_Desc")
	require.NoError(t, err)
	assert.Equal(t, SortRatingDesc, mode)
	assert.True(t, mode.Descending())

	_, err = ParseSortMode("popularity")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSortMode_Descending(t *testing.T) {
	assert.True(t, SortVotesDesc.Descending())
	assert.False(t, SortVotesAsc.Descending())
	assert.False(t, SortRatingAsc.Descending())
	assert.False(t, SortRelevance.Descending())
}

func TestRange_Contains(t *testing.T) {
	r := Range[int]{Min: Ptr(1990), Max: Ptr(2000)}
	assert.True(t, r.IsSet())
	assert.True(t, r.Contains(1990))
	assert.True(t, r.Contains(2000))
	assert.False(t, r.Contains(1989))
	assert.False(t, r.Contains(2001))

	halfOpen := Range[float64]{Min: Ptr(8.0)}
	assert.True(t, halfOpen.Contains(9.9))
	assert.False(t, halfOpen.Contains(7.9))

	var unset Range[int64]
	assert.False(t, unset.IsSet())
	assert.True(t, unset.Contains(0))
}

func TestTitleQuery_Normalize(t *testing.T) {
	q, err := TitleQuery{
		Text:   "  matrix ",
		Genres: []string{"Action", " ", "action", "Sci-Fi"},
	}.Normalize()
	require.NoError(t, err)

	assert.Equal(t, "matrix", q.Text)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, q.Genres)
	assert.Equal(t, SortRelevance, q.Sort)
	require.NotNil(t, q.Limit)
	assert.Equal(t, DefaultLimit, *q.Limit)
}

func TestTitleQuery_NormalizeClampsLimit(t *testing.T) {
	q, err := TitleQuery{Limit: Ptr(1000)}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, *q.Limit)

	q, err = TitleQuery{Limit: Ptr(0)}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MinLimit, *q.Limit)
}

func TestTitleQuery_NormalizeRejects(t *testing.T) {
	tests := []struct {
		name  string
		query TitleQuery
	}{
		{"unknown sort", TitleQuery{Sort: "loudness"}},
		{"inverted start year", TitleQuery{StartYear: Range[int]{Min: Ptr(2001), Max: Ptr(1999)}}},
		{"inverted rating", TitleQuery{Rating: Range[float64]{Min: Ptr(9.0), Max: Ptr(1.0)}}},
		{"nan rating", TitleQuery{Rating: Range[float64]{Min: Ptr(math.NaN())}}},
		{"inverted votes", TitleQuery{Votes: Range[int64]{Min: Ptr(int64(10)), Max: Ptr(int64(1))}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.Normalize()
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestTitleQuery_HasFilters(t *testing.T) {
	q := TitleQuery{Text: "x"}
	assert.True(t, q.HasText())
	assert.False(t, q.HasFilters())

	q = TitleQuery{Votes: Range[int64]{Min: Ptr(int64(100))}}
	assert.False(t, q.HasText())
	assert.True(t, q.HasFilters())
}

func TestNameQuery_Normalize(t *testing.T) {
	_, err := NameQuery{Text: "   "}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidQuery)

	q, err := NameQuery{Professions: []string{"actor", "Actor"}}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, []string{"actor"}, q.Professions)
	assert.Equal(t, DefaultLimit, *q.Limit)

	q, err = NameQuery{BirthYear: Range[int]{Min: Ptr(1960)}}.Normalize()
	require.NoError(t, err)
	assert.Empty(t, q.Text)

	_, err = NameQuery{Text: "keanu", BirthYear: Range[int]{Min: Ptr(1970), Max: Ptr(1960)}}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
