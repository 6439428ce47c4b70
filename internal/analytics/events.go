// Package analytics implements best-effort telemetry for the search and
// recommendation paths: a non-blocking recorder publishing events to Kafka,
// a consumer-side aggregator, and Postgres-backed search history with
// periodic retention.
package analytics

import "time"

// EventType discriminates the analytics event kinds on the wire.
type EventType string

const (
	EventSearch         EventType = "search"
	EventRecommendation EventType = "recommendation"
	EventIndexDoc       EventType = "index_document"
	EventDeleteDoc      EventType = "delete_document"
)

// SearchEvent is emitted after each search response.
type SearchEvent struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Query     string    `json:"query"`
	TotalHits int       `json:"total_hits"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// RecommendationEvent is emitted after each recommendation response.
type RecommendationEvent struct {
	Type           EventType `json:"type"`
	UserID         string    `json:"user_id"`
	JobMatches     int       `json:"job_matches"`
	CompanyMatches int       `json:"company_matches"`
	Returned       int       `json:"returned"`
	Timestamp      time.Time `json:"timestamp"`
}

// IndexEvent is emitted on document index and delete operations.
type IndexEvent struct {
	Type        EventType `json:"type"`
	DocumentID  string    `json:"document_id"`
	ContentType string    `json:"content_type,omitempty"`
	TokenCount  int       `json:"token_count,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
