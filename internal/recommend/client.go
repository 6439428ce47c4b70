package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/talenthub/search-platform/pkg/config"
	"github.com/talenthub/search-platform/pkg/metrics"
	"github.com/talenthub/search-platform/pkg/resilience"
)

// httpCollaborator is the shared plumbing of the matcher and profile
// clients: a JSON GET guarded by a circuit breaker and a per-call timeout.
type httpCollaborator struct {
	name    string
	baseURL string
	client  *http.Client
	breaker *resilience.CircuitBreaker
	timeout time.Duration
}

// ClientOption configures an httpCollaborator.
type ClientOption func(*httpCollaborator)

// WithBreakerMetrics exports the client's circuit breaker state to the
// circuit_breaker_state gauge, keyed by client name.
func WithBreakerMetrics(m *metrics.Metrics) ClientOption {
	return func(h *httpCollaborator) {
		gauge := m.CircuitBreakerState.WithLabelValues(h.name)
		gauge.Set(float64(resilience.StateClosed))
		h.breaker.OnStateChange(func(_, to resilience.State) {
			gauge.Set(float64(to))
		})
	}
}

func newHTTPCollaborator(name, baseURL string, timeout time.Duration, opts ...ClientOption) httpCollaborator {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	h := httpCollaborator{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: resilience.NewCircuitBreaker(name, resilience.CircuitBreakerConfig{}),
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// getJSON fetches path with the given query params and decodes the response
// into out.
func (h *httpCollaborator) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	return h.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.WithTimeout(ctx, h.timeout, h.name, func(ctx context.Context) error {
			u := h.baseURL + path
			if len(params) > 0 {
				u += "?" + params.Encode()
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return fmt.Errorf("building %s request: %w", h.name, err)
			}
			resp, err := h.client.Do(req)
			if err != nil {
				return fmt.Errorf("calling %s: %w", h.name, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("%s returned status %d", h.name, resp.StatusCode)
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decoding %s response: %w", h.name, err)
			}
			return nil
		})
	})
}

func profileParams(p *Profile) url.Values {
	params := url.Values{}
	for _, s := range p.Skills {
		params.Add("skill", s)
	}
	if p.ExperienceLevel != "" {
		params.Set("experienceLevel", p.ExperienceLevel)
	}
	if p.Location != "" {
		params.Set("location", p.Location)
	}
	return params
}

// HTTPJobMatcher calls the job matching service over REST.
type HTTPJobMatcher struct {
	httpCollaborator
}

// NewHTTPJobMatcher creates a job matcher client from config.
func NewHTTPJobMatcher(cfg config.RecommendConfig, opts ...ClientOption) *HTTPJobMatcher {
	return &HTTPJobMatcher{newHTTPCollaborator("job-matcher", cfg.JobMatcherURL, cfg.MatcherTimeout, opts...)}
}

func (m *HTTPJobMatcher) MatchJobs(ctx context.Context, profile *Profile) ([]JobMatch, error) {
	var payload struct {
		Matches []JobMatch `json:"matches"`
	}
	if err := m.getJSON(ctx, "/api/v1/matches/jobs", profileParams(profile), &payload); err != nil {
		return nil, err
	}
	return payload.Matches, nil
}

// HTTPCompanyMatcher calls the company matching service over REST.
type HTTPCompanyMatcher struct {
	httpCollaborator
}

// NewHTTPCompanyMatcher creates a company matcher client from config.
func NewHTTPCompanyMatcher(cfg config.RecommendConfig, opts ...ClientOption) *HTTPCompanyMatcher {
	return &HTTPCompanyMatcher{newHTTPCollaborator("company-matcher", cfg.CompMatcherURL, cfg.MatcherTimeout, opts...)}
}

func (m *HTTPCompanyMatcher) MatchCompanies(ctx context.Context, profile *Profile) ([]CompanyMatch, error) {
	var payload struct {
		Matches []CompanyMatch `json:"matches"`
	}
	if err := m.getJSON(ctx, "/api/v1/matches/companies", profileParams(profile), &payload); err != nil {
		return nil, err
	}
	return payload.Matches, nil
}

// HTTPProfileService fetches user profiles over REST.
type HTTPProfileService struct {
	httpCollaborator
}

// NewHTTPProfileService creates a profile client from config.
func NewHTTPProfileService(cfg config.RecommendConfig, opts ...ClientOption) *HTTPProfileService {
	return &HTTPProfileService{newHTTPCollaborator("profile-service", cfg.ProfileURL, cfg.MatcherTimeout, opts...)}
}

func (s *HTTPProfileService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	if err := s.getJSON(ctx, "/api/v1/profiles/"+url.PathEscape(userID), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
