package recommend

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/talenthub/search-platform/pkg/metrics"
)

// Scoring rules applied on top of the matcher base scores.
const (
	companyBaseScore      = 70.0
	industryMatchBonus    = 10.0
	remoteJobBonus        = 5.0
	recentPostBonus       = 3.0
	recentPostWindow      = 7 * time.Hour
	defaultRecommendLimit = 10
)

// Tracker receives best-effort recommendation telemetry.
type Tracker interface {
	TrackRecommendation(ctx context.Context, userID string, jobCount, companyCount, returned int)
}

// Engine fans out to the job and company matchers, merges their results,
// and re-ranks them. Each source fails independently: a matcher error or
// timeout shrinks the result, it never fails the request.
type Engine struct {
	profiles  ProfileService
	jobs      JobMatcher
	companies CompanyMatcher
	tracker   Tracker
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTracker attaches an analytics tracker.
func WithTracker(t Tracker) EngineOption {
	return func(e *Engine) { e.tracker = t }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a recommendation engine over the given collaborators.
func NewEngine(profiles ProfileService, jobs JobMatcher, companies CompanyMatcher, opts ...EngineOption) *Engine {
	e := &Engine{
		profiles:  profiles,
		jobs:      jobs,
		companies: companies,
		now:       time.Now,
		logger:    slog.Default().With("component", "recommend"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetRecommendations returns a ranked, truncated list of job and company
// recommendations for the user.
func (e *Engine) GetRecommendations(ctx context.Context, userID string, opts Options) (*Result, error) {
	profile := e.lookupProfile(ctx, userID)

	var (
		wg          sync.WaitGroup
		jobMatches  []JobMatch
		compMatches []CompanyMatch
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		jobMatches = e.fetchJobs(ctx, profile)
	}()
	go func() {
		defer wg.Done()
		compMatches = e.fetchCompanies(ctx, profile)
	}()
	wg.Wait()

	// Jobs first, then companies; the stable sort preserves that order among
	// equal scores.
	items := make([]Item, 0, len(jobMatches)+len(compMatches))
	for _, m := range jobMatches {
		items = append(items, e.jobItem(m))
	}
	for _, m := range compMatches {
		items = append(items, e.companyItem(m, profile))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultRecommendLimit
	}
	total := len(items)
	if len(items) > limit {
		items = items[:limit]
	}

	if e.metrics != nil {
		outcome := "ok"
		if total == 0 {
			outcome = "empty"
		}
		e.metrics.RecommendationsTotal.WithLabelValues(outcome).Inc()
	}
	if e.tracker != nil {
		e.tracker.TrackRecommendation(ctx, userID, len(jobMatches), len(compMatches), len(items))
	}
	return &Result{Recommendations: items, Total: total}, nil
}

// lookupProfile degrades a failed profile fetch to an empty profile so the
// matchers can still run unpersonalized.
func (e *Engine) lookupProfile(ctx context.Context, userID string) *Profile {
	profile, err := e.profiles.GetProfile(ctx, userID)
	if err != nil {
		e.logger.Warn("profile lookup failed, recommending without personalization",
			"user_id", userID, "error", err)
		return &Profile{UserID: userID}
	}
	return profile
}

func (e *Engine) fetchJobs(ctx context.Context, profile *Profile) []JobMatch {
	start := e.now()
	matches, err := e.jobs.MatchJobs(ctx, profile)
	e.observeMatcher("job", start, err)
	if err != nil {
		e.logger.Warn("job matcher unavailable", "user_id", profile.UserID, "error", err)
		return nil
	}
	return matches
}

func (e *Engine) fetchCompanies(ctx context.Context, profile *Profile) []CompanyMatch {
	start := e.now()
	matches, err := e.companies.MatchCompanies(ctx, profile)
	e.observeMatcher("company", start, err)
	if err != nil {
		e.logger.Warn("company matcher unavailable", "user_id", profile.UserID, "error", err)
		return nil
	}
	return matches
}

func (e *Engine) observeMatcher(name string, start time.Time, err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.MatcherLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.MatcherFailuresTotal.WithLabelValues(name).Inc()
	}
}

func (e *Engine) jobItem(m JobMatch) Item {
	score := m.Score
	if m.Remote {
		score += remoteJobBonus
	}
	score += e.recencyBonus(m.PostedAt)
	return Item{
		ID:    m.ID,
		Type:  ItemJob,
		Title: m.Title,
		Score: score,
		Metadata: map[string]any{
			"company":  m.Company,
			"remote":   m.Remote,
			"location": m.Location,
		},
	}
}

func (e *Engine) companyItem(m CompanyMatch, profile *Profile) Item {
	score := companyBaseScore
	if containsFold(profile.PreferredIndustries, m.Industry) {
		score += industryMatchBonus
	}
	score += e.recencyBonus(m.PostedAt)
	return Item{
		ID:    m.ID,
		Type:  ItemCompany,
		Title: m.Name,
		Score: score,
		Metadata: map[string]any{
			"industry": m.Industry,
			"size":     m.Size,
			"location": m.Location,
		},
	}
}

func (e *Engine) recencyBonus(postedAt time.Time) float64 {
	if postedAt.IsZero() {
		return 0
	}
	if age := e.now().Sub(postedAt); age >= 0 && age <= recentPostWindow {
		return recentPostBonus
	}
	return 0
}

func containsFold(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
