// Package views persists per-content view counters in PostgreSQL. It replaces
// the placeholder counters the site previously rendered with a real store.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS content_views (
//	    content_id TEXT PRIMARY KEY,
//	    view_count BIGINT NOT NULL DEFAULT 0,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package views

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/thenewsfeed/content-platform/pkg/postgres"
)

// Store reads and increments view counters.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a Store backed by the given PostgreSQL client.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "views-store"),
	}
}

// IncrementAndGet records one view for the content ID and returns the new
// counter value in a single round trip.
func (s *Store) IncrementAndGet(ctx context.Context, contentID string) (int64, error) {
	var count int64
	err := s.db.DB.QueryRowContext(ctx,
		`INSERT INTO content_views (content_id, view_count, updated_at)
		 VALUES ($1, 1, now())
		 ON CONFLICT (content_id)
		 DO UPDATE SET view_count = content_views.view_count + 1, updated_at = now()
		 RETURNING view_count`, contentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("incrementing view count for %s: %w", contentID, err)
	}
	return count, nil
}

// Get returns the current counter for the content ID, 0 when it has never
// been viewed.
func (s *Store) Get(ctx context.Context, contentID string) (int64, error) {
	var count int64
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT view_count FROM content_views WHERE content_id = $1`, contentID,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading view count for %s: %w", contentID, err)
	}
	return count, nil
}
