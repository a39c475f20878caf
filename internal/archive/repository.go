// Package archive persists fetched update records to SQLite so the
// history API can serve past fetch cycles. The live pipeline never
// reads from here; archival is write-behind.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"azure-watch/updates/internal/database"
	"azure-watch/updates/internal/feed"
)

// Repository defines operations for storing and reading archived
// updates.
type Repository interface {
	SaveUpdates(ctx context.Context, sourceName string, updates []feed.Update) (inserted, duplicates int64, err error)
	FetchUpdates(ctx context.Context, limit int, since *time.Time, cursorTimestamp *time.Time, cursorID *int64) ([]Row, error)
	PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

// sqlxRepository implements Repository using sqlx.
type sqlxRepository struct {
	db *database.DB
}

// NewRepository creates a new repository instance.
func NewRepository(db *database.DB) Repository {
	return &sqlxRepository{db: db}
}

// SaveUpdates inserts a batch of records inside one transaction,
// skipping rows whose link already exists.
func (r *sqlxRepository) SaveUpdates(ctx context.Context, sourceName string, updates []feed.Update) (int64, int64, error) {
	if len(updates) == 0 {
		return 0, 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO updates (source, link, title, status, tags, description, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO NOTHING;`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	var inserted, duplicates int64
	for _, u := range updates {
		if u.Link == "" {
			continue
		}

		row, err := newRow(sourceName, u)
		if err != nil {
			log.Warn().Err(err).Str("link", u.Link).Msg("Skipping record that failed to encode")
			continue
		}

		res, err := stmt.ExecContext(ctx,
			row.Source, row.Link, row.Title, row.Status,
			row.Tags, row.Description, row.PublishedAt.UTC(),
		)
		if err != nil {
			return inserted, duplicates, fmt.Errorf("failed to insert update %s: %w", u.Link, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return inserted, duplicates, fmt.Errorf("failed to get rows affected for %s: %w", u.Link, err)
		}
		if affected > 0 {
			inserted++
		} else {
			duplicates++
			log.Debug().Str("link", u.Link).Msg("Duplicate link, already archived")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, duplicates, nil
}

// FetchUpdates retrieves archived updates newest-first. A cursor
// continues below the last item of the previous page; since bounds the
// publication date from below.
func (r *sqlxRepository) FetchUpdates(ctx context.Context, limit int, since *time.Time, cursorTimestamp *time.Time, cursorID *int64) ([]Row, error) {
	var rows []Row
	var args []any

	// Order must be total for cursor pagination to work, hence the id
	// tiebreaker.
	query := `SELECT * FROM updates `
	switch {
	case cursorTimestamp != nil && cursorID != nil:
		query += `WHERE (published_at < ?) OR (published_at = ? AND id < ?) `
		args = append(args, cursorTimestamp.UTC(), cursorTimestamp.UTC(), *cursorID)
	case since != nil:
		query += `WHERE published_at >= ? `
		args = append(args, since.UTC())
	}
	query += `ORDER BY published_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Row{}, nil
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return rows, nil
}

// PurgeOlderThan removes rows archived before the retention window.
func (r *sqlxRepository) PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retentionDays must be positive")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	result, err := r.db.ExecContext(ctx,
		"DELETE FROM updates WHERE created_at < ?", cutoff.Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("failed to purge archived updates: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Warn().Err(err).Msg("Could not get rows affected after purge")
		return 0, nil
	}

	log.Info().Int64("rows_affected", affected).Int("retention_days", retentionDays).Msg("Purged old archived updates")
	return affected, nil
}
