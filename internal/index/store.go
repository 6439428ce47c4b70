// Package index owns document state: it validates and parses incoming
// content, upserts it into a pluggable document store, and soft-deletes on
// removal. It is the only writer of IndexedDocument state.
package index

import (
	"context"
	"sort"
	"sync"

	"github.com/talenthub/search-platform/internal/document"
	apperrors "github.com/talenthub/search-platform/pkg/errors"
)

// Store is an id-keyed document store. Implementations must be safe for
// concurrent use; writers to the same id resolve last-write-wins.
type Store interface {
	Get(ctx context.Context, id string) (*document.IndexedDocument, error)
	Upsert(ctx context.Context, doc *document.IndexedDocument) error
	SoftDelete(ctx context.Context, id string) (bool, error)
	// Snapshot returns a point-in-time copy of every document, sorted by id.
	// Concurrent writes never mutate a returned snapshot.
	Snapshot(ctx context.Context) ([]document.IndexedDocument, error)
	CountActive(ctx context.Context) (int, error)
}

// MemoryStore is an in-memory Store used in development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]document.IndexedDocument
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]document.IndexedDocument),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*document.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, apperrors.ErrDocumentNotFound
	}
	return &doc, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, doc *document.IndexedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) SoftDelete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return false, nil
	}
	doc.IsActive = false
	s.docs[id] = doc
	return true, nil
}

func (s *MemoryStore) Snapshot(ctx context.Context) ([]document.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]document.IndexedDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		snapshot = append(snapshot, doc)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].ID < snapshot[j].ID
	})
	return snapshot, nil
}

func (s *MemoryStore) CountActive(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, doc := range s.docs {
		if doc.IsActive {
			count++
		}
	}
	return count, nil
}
