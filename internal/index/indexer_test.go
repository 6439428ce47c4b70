package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talenthub/search-platform/internal/document"
	apperrors "github.com/talenthub/search-platform/pkg/errors"
)

func TestIndexContentValidation(t *testing.T) {
	store := NewMemoryStore()
	ix := New(store)
	ctx := context.Background()

	cases := []struct {
		name    string
		docType document.Type
		id      string
		content any
	}{
		{"missing type", "", "doc-1", "text"},
		{"unknown type", "podcast", "doc-1", "text"},
		{"missing id", document.TypeJob, "", "text"},
		{"nil content", document.TypeJob, "doc-1", nil},
		{"empty string content", document.TypeJob, "doc-1", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ix.IndexContent(ctx, tc.docType, tc.id, tc.content, document.Metadata{})
			if !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	if n, _ := store.CountActive(ctx); n != 0 {
		t.Errorf("rejected inputs must not write, store has %d docs", n)
	}
}

func TestIndexContentUpsertReplacesInPlace(t *testing.T) {
	store := NewMemoryStore()
	ix := New(store)
	ctx := context.Background()

	if _, err := ix.IndexContent(ctx, document.TypeJob, "j1", "original engineer posting", document.Metadata{}); err != nil {
		t.Fatalf("first index: %v", err)
	}
	if _, err := ix.IndexContent(ctx, document.TypeJob, "j1", "updated engineer posting", document.Metadata{}); err != nil {
		t.Fatalf("second index: %v", err)
	}

	if n, _ := store.CountActive(ctx); n != 1 {
		t.Fatalf("re-indexing the same id must not grow the store, got %d docs", n)
	}
	doc, err := store.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Parsed.Text != "updated engineer posting" {
		t.Errorf("upsert kept stale content: %q", doc.Parsed.Text)
	}
}

func TestIndexContentPreservesIndexedAt(t *testing.T) {
	store := NewMemoryStore()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	current := first
	ix := New(store, WithClock(func() time.Time { return current }))
	ctx := context.Background()

	if _, err := ix.IndexContent(ctx, document.TypeJob, "j1", "posting", document.Metadata{}); err != nil {
		t.Fatalf("first index: %v", err)
	}
	current = first.Add(48 * time.Hour)
	doc, err := ix.IndexContent(ctx, document.TypeJob, "j1", "posting v2", document.Metadata{})
	if err != nil {
		t.Fatalf("second index: %v", err)
	}
	if !doc.IndexedAt.Equal(first) {
		t.Errorf("IndexedAt changed on upsert: %v", doc.IndexedAt)
	}
	if !doc.UpdatedAt.Equal(current) {
		t.Errorf("UpdatedAt not advanced: %v", doc.UpdatedAt)
	}
}

func TestDeleteContent(t *testing.T) {
	store := NewMemoryStore()
	ix := New(store)
	ctx := context.Background()

	if _, err := ix.IndexContent(ctx, document.TypeCourse, "c1", "go course", document.Metadata{}); err != nil {
		t.Fatalf("index: %v", err)
	}

	deleted, err := ix.DeleteContent(ctx, "c1")
	if err != nil || !deleted {
		t.Fatalf("expected delete to report true, got (%v, %v)", deleted, err)
	}
	doc, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if doc.IsActive {
		t.Error("deleted document still active")
	}

	// Repeating the delete is a no-op, not an error.
	deleted, err = ix.DeleteContent(ctx, "c1")
	if err != nil || deleted {
		t.Fatalf("repeat delete should report false, got (%v, %v)", deleted, err)
	}
}

func TestDeleteContentUnknownID(t *testing.T) {
	ix := New(NewMemoryStore())
	deleted, err := ix.DeleteContent(context.Background(), "never-indexed")
	if err != nil {
		t.Fatalf("unknown id must not error: %v", err)
	}
	if deleted {
		t.Error("unknown id reported as deleted")
	}
}

func TestIndexContentReactivates(t *testing.T) {
	store := NewMemoryStore()
	ix := New(store)
	ctx := context.Background()

	if _, err := ix.IndexContent(ctx, document.TypeCompany, "co1", "acme corp profile", document.Metadata{}); err != nil {
		t.Fatalf("index: %v", err)
	}
	if _, err := ix.DeleteContent(ctx, "co1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	doc, err := ix.IndexContent(ctx, document.TypeCompany, "co1", "acme corp profile v2", document.Metadata{})
	if err != nil {
		t.Fatalf("re-index: %v", err)
	}
	if !doc.IsActive {
		t.Error("re-indexed document must be active again")
	}
}

func TestIndexContentDefaultSearchWeight(t *testing.T) {
	ix := New(NewMemoryStore())
	doc, err := ix.IndexContent(context.Background(), document.TypeJob, "j1", "posting", document.Metadata{})
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if doc.SearchWeight != 1.0 {
		t.Errorf("SearchWeight = %v, want default 1.0", doc.SearchWeight)
	}

	doc, err = ix.IndexContent(context.Background(), document.TypeJob, "j2", "posting", document.Metadata{SearchWeight: 2.5})
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if doc.SearchWeight != 2.5 {
		t.Errorf("SearchWeight = %v, want 2.5", doc.SearchWeight)
	}
}

func TestIndexContentWriteHook(t *testing.T) {
	store := NewMemoryStore()
	calls := 0
	ix := New(store, WithWriteHook(func(context.Context) { calls++ }))
	ctx := context.Background()

	if _, err := ix.IndexContent(ctx, document.TypeJob, "j1", "posting", document.Metadata{}); err != nil {
		t.Fatalf("index: %v", err)
	}
	if _, err := ix.DeleteContent(ctx, "j1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// A delete of an unknown id writes nothing and must not invalidate.
	if _, err := ix.DeleteContent(ctx, "ghost"); err != nil {
		t.Fatalf("delete ghost: %v", err)
	}
	if calls != 2 {
		t.Errorf("write hook called %d times, want 2", calls)
	}
}

type recordingIndexTracker struct {
	indexed []string
	deleted []string
	tokens  []int
}

func (r *recordingIndexTracker) TrackIndexed(_ context.Context, docID string, _ document.Type, tokenCount int) {
	r.indexed = append(r.indexed, docID)
	r.tokens = append(r.tokens, tokenCount)
}

func (r *recordingIndexTracker) TrackDeleted(_ context.Context, docID string) {
	r.deleted = append(r.deleted, docID)
}

func TestIndexContentNotifiesTracker(t *testing.T) {
	store := NewMemoryStore()
	tracker := &recordingIndexTracker{}
	ix := New(store, WithTracker(tracker))
	ctx := context.Background()

	if _, err := ix.IndexContent(ctx, document.TypeJob, "j1", "backend engineer posting", document.Metadata{}); err != nil {
		t.Fatalf("index: %v", err)
	}
	if _, err := ix.DeleteContent(ctx, "j1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// An unknown id writes nothing and must not emit an event.
	if _, err := ix.DeleteContent(ctx, "ghost"); err != nil {
		t.Fatalf("delete ghost: %v", err)
	}

	if len(tracker.indexed) != 1 || tracker.indexed[0] != "j1" {
		t.Fatalf("tracked indexed docs = %v, want [j1]", tracker.indexed)
	}
	if tracker.tokens[0] != 3 {
		t.Errorf("tracked token count = %d, want 3", tracker.tokens[0])
	}
	if len(tracker.deleted) != 1 || tracker.deleted[0] != "j1" {
		t.Errorf("tracked deleted docs = %v, want [j1]", tracker.deleted)
	}
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ix := New(store)
	for _, id := range []string{"b2", "a1", "c3"} {
		if _, err := ix.IndexContent(ctx, document.TypeJob, id, "posting "+id, document.Metadata{}); err != nil {
			t.Fatalf("index %s: %v", id, err)
		}
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for i := 1; i < len(snap); i++ {
		if snap[i-1].ID >= snap[i].ID {
			t.Fatalf("snapshot not sorted by id: %s before %s", snap[i-1].ID, snap[i].ID)
		}
	}

	// Mutating the store after the snapshot must not alter it.
	if _, err := ix.DeleteContent(ctx, "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !snap[0].IsActive {
		t.Error("snapshot mutated by later write")
	}
}
