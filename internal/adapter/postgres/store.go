// Package postgres persists fused updates keyed by update_id.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS holiday_updates (
	id           BIGSERIAL PRIMARY KEY,
	update_id    TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL,
	region       TEXT NOT NULL,
	state        TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL,
	holiday_type TEXT NOT NULL,
	summary      TEXT NOT NULL,
	sources      JSONB NOT NULL DEFAULT '[]',
	source_count INTEGER NOT NULL DEFAULT 0,
	confidence   INTEGER NOT NULL DEFAULT 0,
	news_date    TEXT NOT NULL DEFAULT '',
	is_active    BOOLEAN NOT NULL DEFAULT FALSE,
	processed_at TIMESTAMPTZ NOT NULL
)`

// Store reads and writes update rows. One row per update_id; repeat
// runs for the same place and day merge into the existing row.
type Store struct {
	db *sql.DB
}

// Open connects to the database named by connStr and verifies the
// connection before returning.
func Open(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection, typically for tests.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the updates table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// FindByID returns the row id for an update_id, or found=false when no
// row exists.
func (s *Store) FindByID(ctx context.Context, updateID string) (int64, bool, error) {
	var rowID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM holiday_updates WHERE update_id = $1`, updateID).Scan(&rowID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("finding update %s: %w", updateID, err)
	}
	return rowID, true, nil
}

// Insert writes a new update row.
func (s *Store) Insert(ctx context.Context, u domain.Update) error {
	sources, err := encodeSources(u.Sources)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO holiday_updates
			(update_id, title, content, region, state, reason, category,
			 holiday_type, summary, sources, source_count, confidence,
			 news_date, is_active, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		u.UpdateID, u.Title, u.Content, u.Region, u.State, u.Reason, u.Category,
		u.HolidayType, u.Summary, sources, u.SourceCount, u.Confidence,
		u.NewsDate, u.IsActive, u.ProcessedAt)
	if err != nil {
		return fmt.Errorf("inserting update %s: %w", u.UpdateID, err)
	}
	return nil
}

// Update overwrites the row identified by rowID with the fresh fusion
// result for the same update_id.
func (s *Store) Update(ctx context.Context, rowID int64, u domain.Update) error {
	sources, err := encodeSources(u.Sources)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE holiday_updates SET
			title = $1, content = $2, region = $3, state = $4, reason = $5,
			category = $6, holiday_type = $7, summary = $8, sources = $9,
			source_count = $10, confidence = $11, news_date = $12,
			is_active = $13, processed_at = $14
		WHERE id = $15`,
		u.Title, u.Content, u.Region, u.State, u.Reason,
		u.Category, u.HolidayType, u.Summary, sources,
		u.SourceCount, u.Confidence, u.NewsDate,
		u.IsActive, u.ProcessedAt, rowID)
	if err != nil {
		return fmt.Errorf("updating row %d: %w", rowID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating row %d: no row matched", rowID)
	}
	return nil
}

// DeleteOlderThan removes rows whose processed_at is older than maxAge
// and returns how many were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM holiday_updates WHERE processed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting stale updates: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted updates: %w", err)
	}
	return n, nil
}

// Filter narrows ActiveUpdates results. Zero values match everything.
type Filter struct {
	Region        string
	State         string
	MinConfidence int
}

// ActiveUpdates returns active rows matching the filter, newest first.
func (s *Store) ActiveUpdates(ctx context.Context, f Filter) ([]domain.Update, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT update_id, title, content, region, state, reason, category,
		       holiday_type, summary, sources, source_count, confidence,
		       news_date, is_active, processed_at
		FROM holiday_updates
		WHERE is_active
		  AND ($1 = '' OR LOWER(region) = LOWER($1))
		  AND ($2 = '' OR LOWER(state) = LOWER($2))
		  AND confidence >= $3
		ORDER BY processed_at DESC`,
		f.Region, f.State, f.MinConfidence)
	if err != nil {
		return nil, fmt.Errorf("querying active updates: %w", err)
	}
	defer rows.Close()

	var updates []domain.Update
	for rows.Next() {
		var u domain.Update
		var sources []byte
		err := rows.Scan(&u.UpdateID, &u.Title, &u.Content, &u.Region, &u.State,
			&u.Reason, &u.Category, &u.HolidayType, &u.Summary, &sources,
			&u.SourceCount, &u.Confidence, &u.NewsDate, &u.IsActive, &u.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning update row: %w", err)
		}
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &u.Sources); err != nil {
				return nil, fmt.Errorf("decoding sources for %s: %w", u.UpdateID, err)
			}
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading update rows: %w", err)
	}
	return updates, nil
}

func encodeSources(sources []domain.Source) ([]byte, error) {
	if sources == nil {
		sources = []domain.Source{}
	}
	b, err := json.Marshal(sources)
	if err != nil {
		return nil, fmt.Errorf("encoding sources: %w", err)
	}
	return b, nil
}
