package index

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/talenthub/search-platform/internal/document"
	apperrors "github.com/talenthub/search-platform/pkg/errors"
	"github.com/talenthub/search-platform/pkg/metrics"
)

const defaultSearchWeight = 1.0

// Tracker receives best-effort index telemetry. Implementations must not
// block the caller.
type Tracker interface {
	TrackIndexed(ctx context.Context, docID string, docType document.Type, tokenCount int)
	TrackDeleted(ctx context.Context, docID string)
}

// Indexer normalizes raw entity payloads into IndexedDocuments and writes
// them to the Store. A repeated id is an upsert: the previous document is
// fully replaced (never merged) and reactivated if it had been deleted.
type Indexer struct {
	store   Store
	metrics *metrics.Metrics
	tracker Tracker
	onWrite func(ctx context.Context)
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithMetrics attaches Prometheus collectors to the Indexer.
func WithMetrics(m *metrics.Metrics) Option {
	return func(ix *Indexer) { ix.metrics = m }
}

// WithTracker attaches an analytics tracker notified of every successful
// write and delete.
func WithTracker(t Tracker) Option {
	return func(ix *Indexer) { ix.tracker = t }
}

// WithWriteHook registers a callback invoked after every successful write,
// used to invalidate downstream search caches.
func WithWriteHook(fn func(ctx context.Context)) Option {
	return func(ix *Indexer) { ix.onWrite = fn }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(ix *Indexer) { ix.now = now }
}

// New creates an Indexer writing to the given store.
func New(store Store, opts ...Option) *Indexer {
	ix := &Indexer{
		store:  store,
		now:    time.Now,
		logger: slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexContent validates, parses, and upserts a document. Missing type, id,
// or content rejects the call before any write occurs. Unparseable content
// shapes are not an error: they index with empty parsed text.
func (ix *Indexer) IndexContent(ctx context.Context, docType document.Type, id string, content any, meta document.Metadata) (*document.IndexedDocument, error) {
	if err := validateInput(docType, id, content); err != nil {
		return nil, err
	}

	start := ix.now()
	parsed := document.ParseContent(content)

	weight := meta.SearchWeight
	if weight <= 0 {
		weight = defaultSearchWeight
	}
	doc := &document.IndexedDocument{
		ID:           id,
		Type:         docType,
		Title:        documentTitle(parsed, content),
		RawContent:   content,
		Parsed:       parsed,
		Meta:         meta,
		SearchWeight: weight,
		IsActive:     true,
		IndexedAt:    start,
		UpdatedAt:    start,
	}
	if prev, err := ix.store.Get(ctx, id); err == nil {
		doc.IndexedAt = prev.IndexedAt
	}

	if err := ix.store.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("upserting document %s: %w", id, err)
	}

	if ix.metrics != nil {
		ix.metrics.DocsIndexedTotal.WithLabelValues(string(docType)).Inc()
		ix.updateActiveGauge(ctx)
	}
	if ix.tracker != nil {
		ix.tracker.TrackIndexed(ctx, id, docType, len(parsed.Tokens))
	}
	if ix.onWrite != nil {
		ix.onWrite(ctx)
	}
	ix.logger.Debug("document indexed",
		"doc_id", id,
		"type", docType,
		"token_count", len(parsed.Tokens),
	)
	return doc, nil
}

// DeleteContent marks a document inactive. Deleting an unknown id is not an
// error; it returns false. The operation is idempotent.
func (ix *Indexer) DeleteContent(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, apperrors.New(apperrors.ErrInvalidArgument, http.StatusBadRequest, "document id is required")
	}
	deleted, err := ix.store.SoftDelete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("soft-deleting document %s: %w", id, err)
	}
	if deleted {
		if ix.metrics != nil {
			ix.metrics.DocsDeletedTotal.Inc()
			ix.updateActiveGauge(ctx)
		}
		if ix.tracker != nil {
			ix.tracker.TrackDeleted(ctx, id)
		}
		if ix.onWrite != nil {
			ix.onWrite(ctx)
		}
		ix.logger.Debug("document deactivated", "doc_id", id)
	}
	return deleted, nil
}

func (ix *Indexer) updateActiveGauge(ctx context.Context) {
	if n, err := ix.store.CountActive(ctx); err == nil {
		ix.metrics.ActiveDocuments.Set(float64(n))
	}
}

func validateInput(docType document.Type, id string, content any) error {
	if strings.TrimSpace(string(docType)) == "" {
		return apperrors.New(apperrors.ErrInvalidArgument, http.StatusBadRequest, "content type is required")
	}
	if !document.ValidType(docType) {
		return apperrors.Newf(apperrors.ErrInvalidArgument, http.StatusBadRequest, "unknown content type %q", docType)
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.New(apperrors.ErrInvalidArgument, http.StatusBadRequest, "document id is required")
	}
	if content == nil {
		return apperrors.New(apperrors.ErrInvalidArgument, http.StatusBadRequest, "content is required")
	}
	if s, ok := content.(string); ok && strings.TrimSpace(s) == "" {
		return apperrors.New(apperrors.ErrInvalidArgument, http.StatusBadRequest, "content is required")
	}
	return nil
}

// documentTitle prefers the parsed title, then a title field on structured
// payloads.
func documentTitle(parsed document.ParsedContent, content any) string {
	if parsed.Title != "" {
		return parsed.Title
	}
	if m, ok := content.(map[string]any); ok {
		if s, ok := m["title"].(string); ok {
			return s
		}
	}
	return ""
}
