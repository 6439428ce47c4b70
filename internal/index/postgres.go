package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/talenthub/search-platform/internal/document"
	apperrors "github.com/talenthub/search-platform/pkg/errors"
	"github.com/talenthub/search-platform/pkg/postgres"
)

// PostgresStore persists documents in PostgreSQL.
//
// It requires a `search_documents` table:
//
//	CREATE TABLE search_documents (
//	    id         TEXT PRIMARY KEY,
//	    doc        JSONB NOT NULL,
//	    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	db *postgres.Client
}

// NewPostgresStore creates a store backed by the given Postgres client.
func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*document.IndexedDocument, error) {
	var data []byte
	var isActive bool
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT doc, is_active FROM search_documents WHERE id = $1`,
		id,
	).Scan(&data, &isActive)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", id, err)
	}
	var doc document.IndexedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document %s: %w", id, err)
	}
	doc.IsActive = isActive
	return &doc, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, doc *document.IndexedDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document %s: %w", doc.ID, err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO search_documents (id, doc, is_active, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET doc = EXCLUDED.doc, is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at`,
		doc.ID, data, doc.IsActive, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.DB.ExecContext(ctx,
		`UPDATE search_documents SET is_active = FALSE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("deactivating document %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deactivation of %s: %w", id, err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) Snapshot(ctx context.Context) ([]document.IndexedDocument, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT doc, is_active FROM search_documents ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying document snapshot: %w", err)
	}
	defer rows.Close()

	var snapshot []document.IndexedDocument
	for rows.Next() {
		var data []byte
		var isActive bool
		if err := rows.Scan(&data, &isActive); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		var doc document.IndexedDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshaling document row: %w", err)
		}
		doc.IsActive = isActive
		snapshot = append(snapshot, doc)
	}
	return snapshot, rows.Err()
}

func (s *PostgresStore) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM search_documents WHERE is_active`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active documents: %w", err)
	}
	return count, nil
}
