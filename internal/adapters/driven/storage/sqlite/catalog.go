package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
)

// buildCatalog implements driven.BuildCatalog.
type buildCatalog struct {
	store *Store
}

var _ driven.BuildCatalog = (*buildCatalog)(nil)

const buildColumns = `run_id, generation, state, started_at, finished_at,
	title_count, name_count, stats, error`

// SaveBuild creates or updates a record keyed by RunID.
func (c *buildCatalog) SaveBuild(ctx context.Context, record *domain.BuildRecord) error {
	if record == nil || record.RunID == "" {
		return domain.ErrInvalidInput
	}

	var stats any
	if len(record.Stats) > 0 {
		raw, err := json.Marshal(record.Stats)
		if err != nil {
			return fmt.Errorf("marshalling build stats: %w", err)
		}
		stats = string(raw)
	}

	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO builds (`+buildColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			generation = excluded.generation,
			state = excluded.state,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			title_count = excluded.title_count,
			name_count = excluded.name_count,
			stats = excluded.stats,
			error = excluded.error
	`, record.RunID, record.Generation, record.State.String(),
		formatTime(record.StartedAt), formatNullableTime(record.FinishedAt),
		record.TitleCount, record.NameCount, stats, nullString(record.Error))
	if err != nil {
		return fmt.Errorf("saving build %s: %w", record.RunID, err)
	}
	return nil
}

// GetBuild returns the record for a run.
func (c *buildCatalog) GetBuild(ctx context.Context, runID string) (*domain.BuildRecord, error) {
	row := c.store.db.QueryRowContext(ctx,
		`SELECT `+buildColumns+` FROM builds WHERE run_id = ?`, runID)
	return scanBuild(row)
}

// LatestCommitted returns the most recently committed build, or nil.
func (c *buildCatalog) LatestCommitted(ctx context.Context) (*domain.BuildRecord, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT `+buildColumns+` FROM builds
		WHERE state = ?
		ORDER BY finished_at DESC, started_at DESC
		LIMIT 1
	`, domain.BuildCommitted.String())

	rec, err := scanBuild(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// ListBuilds returns records ordered by start time descending.
func (c *buildCatalog) ListBuilds(ctx context.Context, limit int) ([]domain.BuildRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT `+buildColumns+` FROM builds
		ORDER BY started_at DESC, run_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying builds: %w", err)
	}
	defer rows.Close()

	var records []domain.BuildRecord
	for rows.Next() {
		rec, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating builds: %w", err)
	}
	return records, nil
}

func scanBuild(row rowScanner) (*domain.BuildRecord, error) {
	var rec domain.BuildRecord
	var state, startedAt string
	var finishedAt, stats, errMsg sql.NullString

	if err := row.Scan(&rec.RunID, &rec.Generation, &state, &startedAt, &finishedAt,
		&rec.TitleCount, &rec.NameCount, &stats, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning build: %w", err)
	}

	rec.State = domain.BuildState(state)
	rec.StartedAt = parseNullableTime(sql.NullString{String: startedAt, Valid: true})
	rec.FinishedAt = parseNullableTime(finishedAt)
	rec.Error = errMsg.String
	if stats.Valid && stats.String != "" {
		if err := json.Unmarshal([]byte(stats.String), &rec.Stats); err != nil {
			return nil, fmt.Errorf("unmarshalling build stats: %w", err)
		}
	}
	return &rec, nil
}
