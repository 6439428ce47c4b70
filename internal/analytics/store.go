package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/talenthub/search-platform/pkg/postgres"
	"github.com/talenthub/search-platform/pkg/resilience"
)

// HistoryEntry is one row of a user's search history.
type HistoryEntry struct {
	UserID      string    `json:"userId"`
	Query       string    `json:"query"`
	ResultCount int       `json:"resultCount"`
	SearchedAt  time.Time `json:"searchedAt"`
}

// Store persists per-user search history and aggregator snapshots in
// PostgreSQL.
//
// Required tables:
//
//	CREATE TABLE search_history (
//	    id           BIGSERIAL PRIMARY KEY,
//	    user_id      TEXT NOT NULL,
//	    query        TEXT NOT NULL,
//	    result_count INT NOT NULL,
//	    searched_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE INDEX search_history_user_idx ON search_history (user_id, searched_at DESC);
//
//	CREATE TABLE analytics_snapshots (
//	    id          BIGSERIAL PRIMARY KEY,
//	    stats       JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db    *postgres.Client
	retry resilience.RetryConfig
}

// NewStore creates a Store over the given Postgres client.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db: db,
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     500 * time.Millisecond,
		},
	}
}

// RecordSearch appends one history row. Transient write failures are
// retried with backoff.
func (s *Store) RecordSearch(ctx context.Context, userID, query string, resultCount int) error {
	return resilience.Retry(ctx, "search-history-write", s.retry, func() error {
		_, err := s.db.DB.ExecContext(ctx,
			`INSERT INTO search_history (user_id, query, result_count) VALUES ($1, $2, $3)`,
			userID, query, resultCount,
		)
		if err != nil {
			return fmt.Errorf("inserting search history: %w", err)
		}
		return nil
	})
}

// RecentSearches returns the user's most recent history rows, newest first.
func (s *Store) RecentSearches(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT user_id, query, result_count, searched_at
		 FROM search_history WHERE user_id = $1
		 ORDER BY searched_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.UserID, &e.Query, &e.ResultCount, &e.SearchedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneHistory removes history rows older than maxAge and reports how many
// were deleted.
func (s *Store) PruneHistory(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM search_history WHERE searched_at < $1`,
		time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning search history: %w", err)
	}
	return res.RowsAffected()
}

// SaveSnapshot persists an aggregator summary.
func (s *Store) SaveSnapshot(ctx context.Context, stats AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats snapshot: %w", err)
	}
	return resilience.Retry(ctx, "analytics-snapshot-write", s.retry, func() error {
		if _, err := s.db.DB.ExecContext(ctx,
			`INSERT INTO analytics_snapshots (stats) VALUES ($1)`, data,
		); err != nil {
			return fmt.Errorf("inserting analytics snapshot: %w", err)
		}
		return nil
	})
}

// LatestSnapshot returns the most recent persisted summary, or false when
// none has been captured yet.
func (s *Store) LatestSnapshot(ctx context.Context) (AggregatedStats, time.Time, bool, error) {
	var (
		data       []byte
		capturedAt time.Time
		stats      AggregatedStats
	)
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT stats, captured_at FROM analytics_snapshots ORDER BY captured_at DESC LIMIT 1`,
	).Scan(&data, &capturedAt)
	if err == sql.ErrNoRows {
		return stats, time.Time{}, false, nil
	}
	if err != nil {
		return stats, time.Time{}, false, fmt.Errorf("querying latest snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, time.Time{}, false, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return stats, capturedAt, true, nil
}
