package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cinedex/internal/adapters/driven/dataset/memory"
	"github.com/custodia-labs/cinedex/internal/adapters/driven/index/bleveindex"
	storage "github.com/custodia-labs/cinedex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cinedex/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/cinedex/internal/core/domain"
)

func lines(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}

func sampleDatasets() map[string]string {
	return map[string]string{
		"title.basics.tsv": lines(
			"tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres",
			"tt0133093\tmovie\tThe Matrix\tThe Matrix\t0\t1999\t\\N\t136\tAction,Sci-Fi",
			"tt0234215\tmovie\tThe Matrix Reloaded\tThe Matrix Reloaded\t0\t2003\t\\N\t138\tAction,Sci-Fi",
			"tt0113277\tmovie\tHeat\tHeat\t0\t1995\t\\N\t170\tAction,Crime,Drama",
		),
		"title.ratings.tsv": lines(
			"tconst\taverageRating\tnumVotes",
			"tt0133093\t8.7\t1900000",
			"tt0234215\t7.2\t600000",
			"tt0113277\t8.3\t700000",
		),
		"title.akas.tsv": lines(
			"titleId\tordering\ttitle\tregion\tlanguage\ttypes\tattributes\tisOriginalTitle",
			"tt0133093\t1\tThe Matrix\t\\N\t\\N\toriginal\t\\N\t1",
			"tt0113277\t2\tHeat - Wie ein Fieber\tDE\tde\t\\N\t\\N\t0",
		),
		"title.principals.tsv": lines(
			"tconst\tordering\tnconst\tcategory\tjob\tcharacters",
			"tt0133093\t1\tnm0000206\tactor\t\\N\t\\N",
			"tt0113277\t1\tnm0000199\tactor\t\\N\t\\N",
		),
		"name.basics.tsv": lines(
			"nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles",
			"nm0000206\tKeanu Reeves\t1964\t\\N\tactor,producer\ttt0133093,tt0234215",
			"nm0000199\tAl Pacino\t1940\t\\N\tactor,producer\ttt0113277",
		),
	}
}

func writeDatasets(t *testing.T, dir string) {
	t.Helper()
	for name, content := range sampleDatasets() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func noEnv(string) string { return "" }

func newTestApp(t *testing.T, dataDir, configDir string) *App {
	t.Helper()
	a, err := New(context.Background(), Options{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Getenv:    noEnv,
	})
	require.NoError(t, err)
	return a
}

func TestApp_BuildAndQuery(t *testing.T) {
	dataDir, configDir := t.TempDir(), t.TempDir()
	writeDatasets(t, dataDir)
	ctx := context.Background()

	a := newTestApp(t, dataDir, configDir)
	defer func() { assert.NoError(t, a.Close()) }()

	_, err := a.Search.SearchTitles(ctx, domain.TitleQuery{Text: "matrix"})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	rec, err := a.Index.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.BuildCommitted, rec.State)
	assert.Equal(t, 3, rec.TitleCount)
	assert.Equal(t, 2, rec.NameCount)

	res, err := a.Search.SearchTitles(ctx, domain.TitleQuery{Text: "matrix"})
	require.NoError(t, err)
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.Document.ID)
	}
	assert.ElementsMatch(t, []string{"tt0133093", "tt0234215"}, ids)

	res, err = a.Search.SearchTitles(ctx, domain.TitleQuery{Text: "fieber"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "tt0113277", res.Hits[0].Document.ID)

	doc, err := a.Search.GetTitle(ctx, "tt0133093")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", doc.PrimaryTitle)
	require.NotNil(t, doc.AverageRating)
	assert.InDelta(t, 8.7, *doc.AverageRating, 0.001)

	person, err := a.Search.GetName(ctx, "nm0000199")
	require.NoError(t, err)
	assert.Equal(t, "Al Pacino", person.PrimaryName)

	status, err := a.Index.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Ready)
	assert.Equal(t, rec.Generation, status.Generation)
}

func TestApp_ReopenServesCommittedGeneration(t *testing.T) {
	dataDir, configDir := t.TempDir(), t.TempDir()
	writeDatasets(t, dataDir)
	ctx := context.Background()

	first := newTestApp(t, dataDir, configDir)
	rec, err := first.Index.Rebuild(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newTestApp(t, dataDir, configDir)
	defer func() { assert.NoError(t, second.Close()) }()

	status, err := second.Index.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Ready)
	assert.Equal(t, rec.Generation, status.Generation)

	history, err := second.Index.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec.RunID, history[0].RunID)
}

func TestApp_MissingDatasetFailsBuild(t *testing.T) {
	dataDir, configDir := t.TempDir(), t.TempDir()
	writeDatasets(t, dataDir)
	require.NoError(t, os.Remove(filepath.Join(dataDir, "name.basics.tsv")))
	ctx := context.Background()

	a := newTestApp(t, dataDir, configDir)
	defer func() { assert.NoError(t, a.Close()) }()

	_, err := a.Index.Rebuild(ctx)
	assert.ErrorIs(t, err, domain.ErrMissingDataset)

	status, err := a.Index.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Ready)
}

func TestApp_IndexDirDefaultsUnderDataDir(t *testing.T) {
	dataDir := t.TempDir()
	a := newTestApp(t, dataDir, t.TempDir())
	defer func() { assert.NoError(t, a.Close()) }()

	assert.Equal(t, filepath.Join(dataDir, domain.DefaultIndexDirName), a.Config.Paths.ResolvedIndexDir())
	assert.FileExists(t, filepath.Join(dataDir, domain.DefaultIndexDirName, "catalog.db"))
}

func TestApp_OverridesWinOverEnvironment(t *testing.T) {
	dataDir, indexDir := t.TempDir(), t.TempDir()
	env := map[string]string{
		"IMDB_DATA_DIR":  "/from/env",
		"IMDB_BIND_ADDR": "0.0.0.0:9000",
	}

	a, err := New(context.Background(), Options{
		ConfigDir: t.TempDir(),
		DataDir:   dataDir,
		IndexDir:  indexDir,
		Getenv:    func(k string) string { return env[k] },
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	assert.Equal(t, dataDir, a.Config.Paths.DataDir)
	assert.Equal(t, indexDir, a.Config.Paths.IndexDir)
	assert.Equal(t, "0.0.0.0:9000", a.Config.Server.BindAddr)
}

func TestApplyOverrides_EmptyKeepsSettings(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Paths.DataDir = "/keep"

	applyOverrides(&settings, Options{})

	assert.Equal(t, "/keep", settings.Paths.DataDir)
	assert.False(t, settings.Verbose)

	applyOverrides(&settings, Options{Verbose: true})
	assert.True(t, settings.Verbose)
}

func memorySource() *memory.Source {
	files := make(map[domain.DatasetKind]string)
	for name, content := range sampleDatasets() {
		files[domain.DatasetKind(strings.TrimSuffix(name, ".tsv"))] = content
	}
	return memory.New(files)
}

func TestAssemble_InMemoryAdapters(t *testing.T) {
	ctx := context.Background()
	source := memorySource()
	catalog := storage.NewBuildCatalog()

	a, err := Assemble(ctx, domain.DefaultAppSettings(), Deps{
		Source:         source,
		Builder:        bleveindex.New(t.TempDir(), 2),
		Catalog:        catalog,
		SchedulerStore: storage.NewSchedulerStore(),
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()
	assert.Nil(t, a.Settings)

	first, err := a.Index.Rebuild(ctx)
	require.NoError(t, err)

	source.Put(domain.DatasetTitles, lines(
		"tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres",
		"tt0113277\tmovie\tHeat\tHeat\t0\t1995\t\\N\t170\tAction,Crime,Drama",
	))
	second, err := a.Index.Rebuild(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Generation, second.Generation)
	assert.Equal(t, 1, second.TitleCount)

	_, err = a.Search.GetTitle(ctx, "tt0133093")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	latest, err := catalog.LatestCommitted(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Generation, latest.Generation)

	source.Delete(domain.DatasetNames)
	_, err = a.Index.Rebuild(ctx)
	assert.ErrorIs(t, err, domain.ErrMissingDataset)

	status, err := a.Index.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Generation, status.Generation)
}

func TestApp_HTTPFilterScenario(t *testing.T) {
	dataDir, configDir := t.TempDir(), t.TempDir()
	writeDatasets(t, dataDir)
	ctx := context.Background()

	a := newTestApp(t, dataDir, configDir)
	defer func() { assert.NoError(t, a.Close()) }()
	_, err := a.Index.Rebuild(ctx)
	require.NoError(t, err)

	srv, err := httpapi.NewServer(a.Search, a.Index)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	search := func(rawQuery string) httpapi.TitleSearchResponse {
		t.Helper()
		resp, err := http.Get(ts.URL + "/search?" + rawQuery)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body httpapi.TitleSearchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	t.Run("every genre with a rating bound sorted by rating", func(t *testing.T) {
		body := search("genres=Action&genres=Sci-Fi&min_rating=8&sort=rating_desc")

		require.Len(t, body.Results, 1)
		matrix := body.Results[0]
		assert.Equal(t, "tt0133093", matrix.ID)
		assert.Equal(t, "The Matrix", matrix.PrimaryTitle)
		assert.Equal(t, []string{"Action", "Sci-Fi"}, matrix.Genres)
		require.NotNil(t, matrix.StartYear)
		assert.Equal(t, 1999, *matrix.StartYear)
		require.NotNil(t, matrix.NumVotes)
		assert.Equal(t, int64(1900000), *matrix.NumVotes)
		require.NotNil(t, matrix.SortValue)
		assert.InDelta(t, 8.7, *matrix.SortValue, 0.001)
	})

	t.Run("hyphenated genre is case folded", func(t *testing.T) {
		body := search("genres=sci-fi&sort=rating_desc")

		ids := make([]string, 0, len(body.Results))
		for _, r := range body.Results {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"tt0133093", "tt0234215"}, ids)
	})

	t.Run("a genre the title lacks excludes it", func(t *testing.T) {
		body := search("genres=Drama")

		require.Len(t, body.Results, 1)
		assert.Equal(t, "tt0113277", body.Results[0].ID)
	})
}
