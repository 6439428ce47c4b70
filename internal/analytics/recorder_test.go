package analytics

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/talenthub/search-platform/internal/document"
	"github.com/talenthub/search-platform/pkg/kafka"
)

type memoryPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
}

func (p *memoryPublisher) Publish(ctx context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *memoryPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestRecorderPublishesTrackedEvents(t *testing.T) {
	pub := &memoryPublisher{}
	rec := NewRecorder(pub, 16)
	rec.Start(context.Background())

	rec.TrackSearch(context.Background(), "u1", "backend", 3, 12*time.Millisecond, false)
	rec.TrackRecommendation(context.Background(), "u1", 4, 2, 6)
	rec.TrackIndexed(context.Background(), "j1", document.TypeJob, 10)
	rec.TrackDeleted(context.Background(), "j2")
	rec.Close()

	if got := pub.count(); got != 4 {
		t.Fatalf("published %d events, want 4", got)
	}
	ev, ok := pub.events[0].Value.(SearchEvent)
	if !ok {
		t.Fatalf("first event is %T, want SearchEvent", pub.events[0].Value)
	}
	if ev.Type != EventSearch || ev.Query != "backend" || ev.TotalHits != 3 {
		t.Errorf("unexpected search event: %+v", ev)
	}
	ixEv, ok := pub.events[2].Value.(IndexEvent)
	if !ok {
		t.Fatalf("third event is %T, want IndexEvent", pub.events[2].Value)
	}
	if ixEv.Type != EventIndexDoc || ixEv.DocumentID != "j1" || ixEv.ContentType != "job" || ixEv.TokenCount != 10 {
		t.Errorf("unexpected index event: %+v", ixEv)
	}
	delEv, ok := pub.events[3].Value.(IndexEvent)
	if !ok {
		t.Fatalf("fourth event is %T, want IndexEvent", pub.events[3].Value)
	}
	if delEv.Type != EventDeleteDoc || delEv.DocumentID != "j2" {
		t.Errorf("unexpected delete event: %+v", delEv)
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	pub := &memoryPublisher{}
	rec := NewRecorder(pub, 2)
	// Not started: nothing drains the buffer, so the third Track must drop
	// instead of blocking.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			rec.Track(SearchEvent{Type: EventSearch, Query: "q"})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Track blocked on a full buffer")
	}
}

func TestRecorderDrainsOnCancel(t *testing.T) {
	pub := &memoryPublisher{}
	rec := NewRecorder(pub, 16)
	ctx, cancel := context.WithCancel(context.Background())

	rec.Track(SearchEvent{Type: EventSearch, Query: "one"})
	rec.Track(SearchEvent{Type: EventSearch, Query: "two"})
	rec.Start(ctx)
	cancel()
	<-rec.done

	if got := pub.count(); got != 2 {
		t.Errorf("drained %d events, want 2", got)
	}
}

func TestAggregatorHandlesEventStream(t *testing.T) {
	agg := NewAggregator(nil)
	handler := HandleEvent(agg)
	ctx := context.Background()

	emit := func(v any) {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := handler(ctx, []byte("analytics"), data); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	emit(SearchEvent{Type: EventSearch, Query: "backend", TotalHits: 5, LatencyMs: 10, CacheHit: true})
	emit(SearchEvent{Type: EventSearch, Query: "backend", TotalHits: 0, LatencyMs: 30})
	emit(SearchEvent{Type: EventSearch, Query: "golang", TotalHits: 2, LatencyMs: 20})
	emit(RecommendationEvent{Type: EventRecommendation, UserID: "u1", Returned: 5})
	emit(IndexEvent{Type: EventIndexDoc, DocumentID: "j1"})
	emit(IndexEvent{Type: EventDeleteDoc, DocumentID: "j1"})

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.TotalRecommendations != 1 {
		t.Errorf("TotalRecommendations = %d, want 1", stats.TotalRecommendations)
	}
	if stats.TotalDocsIndexed != 1 || stats.TotalDocsDeleted != 1 {
		t.Errorf("doc counters = %d/%d, want 1/1", stats.TotalDocsIndexed, stats.TotalDocsDeleted)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache counters = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "backend" {
		t.Errorf("TopQueries = %v, want backend first", stats.TopQueries)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "backend" {
		t.Errorf("ZeroResultQueries = %v", stats.ZeroResultQueries)
	}
}

func TestAggregatorIgnoresMalformedEvents(t *testing.T) {
	agg := NewAggregator(nil)
	handler := HandleEvent(agg)
	if err := handler(context.Background(), nil, []byte("not json")); err != nil {
		t.Fatalf("malformed events must be skipped, not retried: %v", err)
	}
	if stats := agg.Stats(); stats.TotalSearches != 0 {
		t.Errorf("malformed event counted: %+v", stats)
	}
}
