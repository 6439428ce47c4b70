package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/talenthub/search-platform/internal/document"
	"github.com/talenthub/search-platform/pkg/kafka"
	"github.com/talenthub/search-platform/pkg/middleware"
)

// Publisher publishes a single event. *kafka.Producer satisfies it; tests
// substitute an in-memory implementation.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Recorder buffers analytics events and publishes them asynchronously.
// Track never blocks: when the buffer is full the event is dropped with a
// warning, so analytics can never slow a search or recommendation response.
type Recorder struct {
	publisher Publisher
	eventCh   chan any
	logger    *slog.Logger
	done      chan struct{}
	now       func() time.Time
}

// NewRecorder creates a Recorder with the given buffer size.
func NewRecorder(publisher Publisher, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Recorder{
		publisher: publisher,
		eventCh:   make(chan any, bufferSize),
		logger:    slog.Default().With("component", "analytics-recorder"),
		done:      make(chan struct{}),
		now:       time.Now,
	}
}

// Start launches the publishing loop. Cancelling ctx drains buffered events
// before the loop exits.
func (r *Recorder) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		for {
			select {
			case event, ok := <-r.eventCh:
				if !ok {
					return
				}
				r.publish(ctx, event)
			case <-ctx.Done():
				r.drainRemaining()
				return
			}
		}
	}()
	r.logger.Info("analytics recorder started", "buffer_size", cap(r.eventCh))
}

// Track enqueues an event without blocking.
func (r *Recorder) Track(event any) {
	select {
	case r.eventCh <- event:
	default:
		r.logger.Warn("analytics event dropped (buffer full)")
	}
}

// TrackSearch records one search response.
func (r *Recorder) TrackSearch(ctx context.Context, userID, query string, resultCount int, took time.Duration, cacheHit bool) {
	r.Track(SearchEvent{
		Type:      EventSearch,
		UserID:    userID,
		Query:     query,
		TotalHits: resultCount,
		LatencyMs: took.Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: r.now(),
		RequestID: middleware.GetRequestID(ctx),
	})
}

// TrackRecommendation records one recommendation response.
func (r *Recorder) TrackRecommendation(ctx context.Context, userID string, jobCount, companyCount, returned int) {
	r.Track(RecommendationEvent{
		Type:           EventRecommendation,
		UserID:         userID,
		JobMatches:     jobCount,
		CompanyMatches: companyCount,
		Returned:       returned,
		Timestamp:      r.now(),
	})
}

// TrackIndexed records a successful document write.
func (r *Recorder) TrackIndexed(ctx context.Context, docID string, docType document.Type, tokenCount int) {
	r.Track(IndexEvent{
		Type:        EventIndexDoc,
		DocumentID:  docID,
		ContentType: string(docType),
		TokenCount:  tokenCount,
		Timestamp:   r.now(),
	})
}

// TrackDeleted records a document soft delete.
func (r *Recorder) TrackDeleted(ctx context.Context, docID string) {
	r.Track(IndexEvent{
		Type:       EventDeleteDoc,
		DocumentID: docID,
		Timestamp:  r.now(),
	})
}

// Close stops accepting events and waits for the loop to finish.
func (r *Recorder) Close() {
	close(r.eventCh)
	<-r.done
}

func (r *Recorder) publish(ctx context.Context, event any) {
	if err := r.publisher.Publish(ctx, kafka.Event{Key: "analytics", Value: event}); err != nil {
		r.logger.Error("failed to publish analytics event", "error", err)
	}
}

func (r *Recorder) drainRemaining() {
	for {
		select {
		case event, ok := <-r.eventCh:
			if !ok {
				return
			}
			r.publish(context.Background(), event)
		default:
			return
		}
	}
}
