package search

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talenthub/search-platform/internal/document"
	"github.com/talenthub/search-platform/internal/index"
	"github.com/talenthub/search-platform/pkg/config"
	"github.com/talenthub/search-platform/pkg/logger"
	"github.com/talenthub/search-platform/pkg/metrics"
)

// Tracker receives best-effort search telemetry. Implementations must not
// block the caller.
type Tracker interface {
	TrackSearch(ctx context.Context, userID, query string, resultCount int, took time.Duration, cacheHit bool)
}

// HistoryRecorder appends to a per-user search history log.
type HistoryRecorder interface {
	RecordSearch(ctx context.Context, userID, query string, resultCount int) error
}

// Service runs the full query path over a point-in-time snapshot of the
// document store.
type Service struct {
	store   index.Store
	scorer  *Scorer
	cfg     config.SearchConfig
	cache   *ResultCache
	tracker Tracker
	history HistoryRecorder
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache fronts the service with a Redis result cache.
func WithCache(cache *ResultCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithTracker attaches an analytics tracker.
func WithTracker(t Tracker) ServiceOption {
	return func(s *Service) { s.tracker = t }
}

// WithHistory attaches a per-user search history log.
func WithHistory(h HistoryRecorder) ServiceOption {
	return func(s *Service) { s.history = h }
}

// WithServiceMetrics attaches Prometheus collectors.
func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithScorer overrides the default wall-clock scorer, for tests.
func WithScorer(sc *Scorer) ServiceOption {
	return func(s *Service) { s.scorer = sc }
}

// NewService creates a search service reading from the given store.
func NewService(store index.Store, cfg config.SearchConfig, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		scorer: NewScorer(),
		cfg:    cfg,
		logger: slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search executes a query: plan, score, rank, paginate, suggest. Zero
// matches is a valid result, not an error.
func (s *Service) Search(ctx context.Context, q *Query) (*Result, error) {
	start := time.Now()
	s.normalize(q)

	var (
		result   *Result
		cacheHit bool
		err      error
	)
	if s.cache != nil {
		result, cacheHit, err = s.cache.GetOrCompute(ctx, q, func() (*Result, error) {
			return s.execute(ctx, q)
		})
	} else {
		result, err = s.execute(ctx, q)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	took := time.Since(start)
	s.observe(result, took, cacheHit)
	logger.FromContext(ctx).Debug("search executed",
		"free_text", q.FreeText,
		"total", result.Total,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"took_ms", took.Milliseconds(),
	)

	if s.tracker != nil {
		s.tracker.TrackSearch(ctx, q.Preferences.UserID, q.FreeText, result.Total, took, cacheHit)
	}
	if s.history != nil && q.Preferences.UserID != "" {
		// History writes ride on a detached context so a canceled request
		// cannot lose the entry.
		go func(userID, text string, total int) {
			hctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.history.RecordSearch(hctx, userID, text, total); err != nil {
				s.logger.Warn("search history write failed", "user_id", userID, "error", err)
			}
		}(q.Preferences.UserID, q.FreeText, result.Total)
	}
	return result, nil
}

// execute runs the uncached query path against a fresh snapshot.
func (s *Service) execute(ctx context.Context, q *Query) (*Result, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	plan := Compile(q, s.scorer.now())
	candidates := plan.Candidates(snapshot)

	hits, err := s.scoreAll(ctx, candidates, q)
	if err != nil {
		return nil, err
	}
	Sort(hits, q.Page.SortBy)
	page, pagination := Paginate(hits, q.Page.Limit, q.Page.Offset)

	return &Result{
		Results:     page,
		Total:       len(hits),
		Pagination:  pagination,
		Suggestions: Suggestions(snapshot, q.FreeText, s.cfg.SuggestionCount),
	}, nil
}

// scoreAll scores candidates across a bounded worker pool. Each score is a
// pure function of its document, so completion order never affects results.
func (s *Service) scoreAll(ctx context.Context, candidates []document.IndexedDocument, q *Query) ([]ScoredHit, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	hits := make([]ScoredHit, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hits[i] = s.scorer.Score(&candidates[i], q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hits, nil
}

func (s *Service) workers() int {
	if s.cfg.ScoringWorkers > 0 {
		return s.cfg.ScoringWorkers
	}
	return 8
}

func (s *Service) normalize(q *Query) {
	if q.Page.Limit <= 0 {
		q.Page.Limit = s.cfg.DefaultLimit
	}
	if q.Page.Limit <= 0 {
		q.Page.Limit = 20
	}
	if s.cfg.MaxLimit > 0 && q.Page.Limit > s.cfg.MaxLimit {
		q.Page.Limit = s.cfg.MaxLimit
	}
	if q.Filters.Location != nil && q.Filters.Location.Coordinates != nil &&
		q.Filters.Location.MaxDistanceKm <= 0 && s.cfg.DefaultMaxDistance > 0 {
		q.Filters.Location.MaxDistanceKm = s.cfg.DefaultMaxDistance
	}
}

func (s *Service) observe(result *Result, took time.Duration, cacheHit bool) {
	if s.metrics == nil {
		return
	}
	outcome := "hit"
	if result.Total == 0 {
		outcome = "zero_result"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	status := "miss"
	if cacheHit {
		status = "hit"
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
	}
	s.metrics.SearchLatency.WithLabelValues(status).Observe(took.Seconds())
	s.metrics.SearchResultsCount.Observe(float64(result.Total))
}
