package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
	"github.com/custodia-labs/cinedex/internal/decoder"
	"github.com/custodia-labs/cinedex/internal/logger"
)

const (
	// partitionBuffer is the inbound channel capacity of each partition.
	partitionBuffer = 1024

	// crewSeparator joins resolved principal names in the crew text.
	crewSeparator = ", "
)

// Composer reconciles the decoded dataset streams into title and name documents.
//
// Rows are routed by identifier hash to a fixed set of partitions. Each
// partition is owned by one goroutine, so every identifier has exactly one
// mutation path and no accumulator is shared.
type Composer struct {
	source   driven.DatasetSource
	settings domain.IngestSettings
}

// NewComposer creates a composer reading from source.
func NewComposer(source driven.DatasetSource, settings domain.IngestSettings) *Composer {
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	return &Composer{source: source, settings: settings}
}

// Composition is the finalised output of one compose run, ordered by identifier.
type Composition struct {
	titles []domain.TitleDocument
	names  []domain.NameDocument

	// Stats holds the decode counters of every dataset that was read.
	Stats []domain.DecodeStats
}

// Titles yields the title documents in ascending identifier order.
func (c *Composition) Titles() iter.Seq[domain.TitleDocument] {
	return func(yield func(domain.TitleDocument) bool) {
		for _, doc := range c.titles {
			if !yield(doc) {
				return
			}
		}
	}
}

// Names yields the name documents in ascending identifier order.
func (c *Composition) Names() iter.Seq[domain.NameDocument] {
	return func(yield func(domain.NameDocument) bool) {
		for _, doc := range c.names {
			if !yield(doc) {
				return
			}
		}
	}
}

// TitleCount returns the number of title documents.
func (c *Composition) TitleCount() int { return len(c.titles) }

// NameCount returns the number of name documents.
func (c *Composition) NameCount() int { return len(c.names) }

// Compose decodes every dataset and builds the documents.
// A missing required dataset fails with domain.ErrMissingDataset before any row is read.
func (c *Composer) Compose(ctx context.Context) (*Composition, error) {
	logger.Section("Compose")

	readers, err := c.openDatasets(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, r := range readers {
			_ = r.Close()
		}
	}()

	parts := make([]*partition, c.settings.Workers)
	var owners sync.WaitGroup
	for i := range parts {
		parts[i] = newPartition()
		owners.Add(1)
		go func(p *partition) {
			defer owners.Done()
			p.run()
		}(parts[i])
	}

	router := &router{parts: parts, progress: logger.NewProgress(5 * time.Second)}
	stats := make([]domain.DecodeStats, 0, len(readers))
	var statsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for kind, r := range readers {
		g.Go(func() error {
			s, err := decodeDataset(gctx, kind, r, router)
			statsMu.Lock()
			stats = append(stats, s)
			statsMu.Unlock()
			if err != nil {
				return fmt.Errorf("decode %s: %w", kind, err)
			}
			logger.Info("Decoded %s: %d rows, %d malformed, %d degraded",
				kind, s.Rows, s.Malformed, s.Degraded)
			if s.Malformed > 0 {
				logger.Warn("%s malformed sample lines: %v", kind, s.SampleLines)
			}
			return nil
		})
	}
	decodeErr := g.Wait()

	for _, p := range parts {
		close(p.in)
	}
	owners.Wait()

	if decodeErr != nil {
		return nil, decodeErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comp := finalise(parts)
	slices.SortFunc(stats, func(a, b domain.DecodeStats) int {
		return slices.Index(domain.AllDatasetKinds, a.Kind) - slices.Index(domain.AllDatasetKinds, b.Kind)
	})
	comp.Stats = stats

	logger.Info("Composed %d titles and %d names", len(comp.titles), len(comp.names))
	return comp, nil
}

// openDatasets opens every dataset kind, tolerating absence only for optional kinds.
func (c *Composer) openDatasets(ctx context.Context) (map[domain.DatasetKind]io.ReadCloser, error) {
	readers := make(map[domain.DatasetKind]io.ReadCloser, len(domain.AllDatasetKinds))
	closeAll := func() {
		for _, r := range readers {
			_ = r.Close()
		}
	}

	for _, kind := range domain.AllDatasetKinds {
		r, err := c.source.Open(ctx, kind)
		if err != nil {
			if errors.Is(err, domain.ErrMissingDataset) && c.settings.IsOptional(kind) {
				logger.Warn("Optional dataset %s not found in %s, skipping", kind, c.source.Location())
				continue
			}
			closeAll()
			if !errors.Is(err, domain.ErrMissingDataset) {
				err = fmt.Errorf("%w: %s: %w", domain.ErrMissingDataset, kind, err)
			}
			return nil, err
		}
		readers[kind] = r
	}
	return readers, nil
}

// decodeDataset streams one dataset into the partitions.
func decodeDataset(ctx context.Context, kind domain.DatasetKind, r io.Reader, rt *router) (domain.DecodeStats, error) {
	switch kind {
	case domain.DatasetTitles:
		return drain(ctx, decoder.NewTitles(r), func(row domain.TitleRow) string { return row.ID }, rt)
	case domain.DatasetRatings:
		return drain(ctx, decoder.NewRatings(r), func(row domain.RatingRow) string { return row.TitleID }, rt)
	case domain.DatasetAkas:
		return drain(ctx, decoder.NewAkas(r), func(row domain.AkaRow) string { return row.TitleID }, rt)
	case domain.DatasetPrincipals:
		return drain(ctx, decoder.NewPrincipals(r), func(row domain.PrincipalRow) string { return row.TitleID }, rt)
	case domain.DatasetNames:
		return drain(ctx, decoder.NewNames(r), func(row domain.NameRow) string { return row.ID }, rt)
	default:
		return domain.DecodeStats{Kind: kind}, fmt.Errorf("%w: unknown dataset kind %q", domain.ErrInvalidInput, kind)
	}
}

func drain[T any](ctx context.Context, dec *decoder.Decoder[T], key func(T) string, rt *router) (domain.DecodeStats, error) {
	for row := range dec.Rows() {
		id := key(row)
		if id == "" {
			continue
		}
		if err := rt.route(ctx, id, row); err != nil {
			return dec.Stats(), err
		}
	}
	return dec.Stats(), dec.Err()
}

// router delivers rows to the partition that owns their identifier.
type router struct {
	parts    []*partition
	progress *logger.Progress
	routed   atomic.Int64
}

func (rt *router) route(ctx context.Context, id string, row any) error {
	p := rt.parts[partitionOf(id, len(rt.parts))]
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.in <- row:
	}

	n := rt.routed.Add(1)
	rt.progress.Info("Routed %d rows", n)
	return nil
}

func partitionOf(id string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(n))
}

// partition owns the accumulators for a subset of identifiers.
type partition struct {
	in     chan any
	titles map[string]*titleAccumulator
	names  map[string]*domain.NameDocument
}

func newPartition() *partition {
	return &partition{
		in:     make(chan any, partitionBuffer),
		titles: make(map[string]*titleAccumulator),
		names:  make(map[string]*domain.NameDocument),
	}
}

func (p *partition) run() {
	for row := range p.in {
		switch r := row.(type) {
		case domain.TitleRow:
			p.title(r.ID).applyTitle(r)
		case domain.RatingRow:
			p.title(r.TitleID).applyRating(r)
		case domain.AkaRow:
			p.title(r.TitleID).applyAka(r)
		case domain.PrincipalRow:
			p.title(r.TitleID).applyPrincipal(r)
		case domain.NameRow:
			p.names[r.ID] = &domain.NameDocument{
				ID:             r.ID,
				PrimaryName:    r.PrimaryName,
				BirthYear:      r.BirthYear,
				DeathYear:      r.DeathYear,
				Professions:    r.PrimaryProfessions,
				KnownForTitles: r.KnownForTitles,
			}
		}
	}
}

func (p *partition) title(id string) *titleAccumulator {
	acc, ok := p.titles[id]
	if !ok {
		acc = &titleAccumulator{doc: domain.TitleDocument{ID: id}}
		p.titles[id] = acc
	}
	return acc
}

type principal struct {
	personID string
	ordering int
}

type alternate struct {
	domain.AlternateTitle
	ordering int
}

// titleAccumulator collects everything known about one title.
type titleAccumulator struct {
	doc domain.TitleDocument

	// akaOriginal is the original title announced by the akas dataset.
	akaOriginal string

	alternates []alternate
	altSeen    map[domain.AlternateTitle]struct{}

	principals   []principal
	principalIdx map[string]int
}

func (a *titleAccumulator) applyTitle(r domain.TitleRow) {
	a.doc.PrimaryTitle = r.PrimaryTitle
	a.doc.OriginalTitle = r.OriginalTitle
	a.doc.TitleType = r.TitleType
	a.doc.StartYear = r.StartYear
	a.doc.EndYear = r.EndYear
	a.doc.RuntimeMinutes = r.RuntimeMinutes
	a.doc.Genres = r.Genres
}

func (a *titleAccumulator) applyRating(r domain.RatingRow) {
	a.doc.AverageRating = domain.Ptr(r.AverageRating)
	a.doc.NumVotes = domain.Ptr(r.NumVotes)
}

func (a *titleAccumulator) applyAka(r domain.AkaRow) {
	if r.IsOriginal && a.akaOriginal == "" {
		a.akaOriginal = r.Title
	}
	alt := domain.AlternateTitle{Title: r.Title, Region: r.Region, Language: r.Language}
	if a.altSeen == nil {
		a.altSeen = make(map[domain.AlternateTitle]struct{})
	}
	if _, dup := a.altSeen[alt]; dup {
		return
	}
	a.altSeen[alt] = struct{}{}
	a.alternates = append(a.alternates, alternate{AlternateTitle: alt, ordering: r.Ordering})
}

func (a *titleAccumulator) applyPrincipal(r domain.PrincipalRow) {
	if a.principalIdx == nil {
		a.principalIdx = make(map[string]int)
	}
	if i, dup := a.principalIdx[r.PersonID]; dup {
		a.principals[i].ordering = min(a.principals[i].ordering, r.Ordering)
		return
	}
	a.principalIdx[r.PersonID] = len(a.principals)
	a.principals = append(a.principals, principal{personID: r.PersonID, ordering: r.Ordering})
}

// finish resolves derived fields once every stream has drained.
func (a *titleAccumulator) finish(persons map[string]string) domain.TitleDocument {
	doc := a.doc

	if doc.OriginalTitle == "" {
		doc.OriginalTitle = a.akaOriginal
	}

	slices.SortStableFunc(a.alternates, func(x, y alternate) int {
		return cmp.Compare(x.ordering, y.ordering)
	})
	if len(a.alternates) > 0 {
		doc.AlternateTitles = make([]domain.AlternateTitle, len(a.alternates))
		for i, alt := range a.alternates {
			doc.AlternateTitles[i] = alt.AlternateTitle
		}
	}

	if doc.PrimaryTitle == "" {
		doc.PrimaryTitle = doc.OriginalTitle
	}
	if doc.PrimaryTitle == "" && len(doc.AlternateTitles) > 0 {
		doc.PrimaryTitle = doc.AlternateTitles[0].Title
	}

	slices.SortFunc(a.principals, func(x, y principal) int {
		return cmp.Or(cmp.Compare(x.ordering, y.ordering), strings.Compare(x.personID, y.personID))
	})
	crew := make([]string, 0, len(a.principals))
	for _, p := range a.principals {
		if name := persons[p.personID]; name != "" {
			crew = append(crew, name)
		}
	}
	doc.Crew = strings.Join(crew, crewSeparator)

	return doc
}

// finalise runs the second pass: person names are resolved into crew text
// and every accumulator becomes one document.
func finalise(parts []*partition) *Composition {
	persons := make(map[string]string)
	var nameCount, titleCount int
	for _, p := range parts {
		for id, doc := range p.names {
			if doc.PrimaryName != "" {
				persons[id] = doc.PrimaryName
			}
		}
		nameCount += len(p.names)
		titleCount += len(p.titles)
	}

	comp := &Composition{
		titles: make([]domain.TitleDocument, 0, titleCount),
		names:  make([]domain.NameDocument, 0, nameCount),
	}

	results := make([][]domain.TitleDocument, len(parts))
	var wg sync.WaitGroup
	for i, p := range parts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := make([]domain.TitleDocument, 0, len(p.titles))
			for _, acc := range p.titles {
				out = append(out, acc.finish(persons))
			}
			results[i] = out
		}()
	}
	wg.Wait()

	for _, out := range results {
		comp.titles = append(comp.titles, out...)
	}
	for _, p := range parts {
		for _, doc := range p.names {
			comp.names = append(comp.names, *doc)
		}
	}

	slices.SortFunc(comp.titles, func(a, b domain.TitleDocument) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(comp.names, func(a, b domain.NameDocument) int { return strings.Compare(a.ID, b.ID) })
	return comp
}
