// Package api exposes the thin HTTP surface over the indexer, search
// service, recommendation engine, and analytics rollups.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/talenthub/search-platform/internal/analytics"
	"github.com/talenthub/search-platform/internal/document"
	"github.com/talenthub/search-platform/internal/index"
	"github.com/talenthub/search-platform/internal/recommend"
	"github.com/talenthub/search-platform/internal/search"
	apperrors "github.com/talenthub/search-platform/pkg/errors"
	"github.com/talenthub/search-platform/pkg/logger"
)

// Handler routes the public API. All collaborators except the indexer and
// search service are optional and their endpoints degrade when absent.
type Handler struct {
	indexer  *index.Indexer
	searcher *search.Service
	engine   *recommend.Engine
	cache    *search.ResultCache
	history  *analytics.Store
	stats    func() analytics.AggregatedStats
	logger   *slog.Logger
}

// New creates the API handler.
func New(indexer *index.Indexer, searcher *search.Service) *Handler {
	return &Handler{
		indexer:  indexer,
		searcher: searcher,
		logger:   slog.Default().With("component", "api"),
	}
}

// WithRecommendations enables the recommendations endpoint.
func (h *Handler) WithRecommendations(e *recommend.Engine) *Handler {
	h.engine = e
	return h
}

// WithCache enables the cache stats and invalidation endpoints.
func (h *Handler) WithCache(c *search.ResultCache) *Handler {
	h.cache = c
	return h
}

// WithHistory enables the per-user search history endpoint.
func (h *Handler) WithHistory(s *analytics.Store) *Handler {
	h.history = s
	return h
}

// WithStats enables the analytics stats endpoint.
func (h *Handler) WithStats(fn func() analytics.AggregatedStats) *Handler {
	h.stats = fn
	return h
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents", h.IndexDocument)
	mux.HandleFunc("PUT /api/v1/documents/{id}", h.IndexDocument)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.DeleteDocument)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/recommendations", h.Recommendations)
	mux.HandleFunc("GET /api/v1/history", h.History)
	mux.HandleFunc("GET /api/v1/analytics/stats", h.AnalyticsStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	return mux
}

type indexRequest struct {
	Type     string            `json:"type"`
	ID       string            `json:"id"`
	Content  any               `json:"content"`
	Metadata document.Metadata `json:"metadata"`
}

// IndexDocument handles create and update. A PUT to /documents/{id} takes
// the id from the path; POST takes it from the body.
func (h *Handler) IndexDocument(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if pathID := r.PathValue("id"); pathID != "" {
		req.ID = pathID
	}

	doc, err := h.indexer.IndexContent(r.Context(), document.Type(req.Type), req.ID, req.Content, req.Metadata)
	if err != nil {
		logger.FromContext(r.Context()).Warn("index request rejected", "doc_id", req.ID, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument soft-deletes. An unknown id reports success=false with
// status 200, never an error.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := h.indexer.DeleteContent(r.Context(), id)
	if err != nil {
		logger.FromContext(r.Context()).Error("delete failed", "doc_id", id, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "delete failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": deleted})
}

// Search runs a query assembled from URL parameters.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		logger.FromContext(r.Context()).Error("search failed", "free_text", q.FreeText, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Recommendations returns personalized items for the userId parameter.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		h.writeError(w, http.StatusServiceUnavailable, "recommendations are disabled")
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'userId' is required")
		return
	}
	opts := recommend.Options{}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = limit
	}
	result, err := h.engine.GetRecommendations(r.Context(), userID, opts)
	if err != nil {
		logger.FromContext(r.Context()).Error("recommendations failed", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "recommendations failed")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// History returns the user's recent searches, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, http.StatusServiceUnavailable, "search history is disabled")
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'userId' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.history.RecentSearches(r.Context(), userID, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("history lookup failed", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}
	if entries == nil {
		entries = []analytics.HistoryEntry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// AnalyticsStats returns the live aggregator rollup.
func (h *Handler) AnalyticsStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		h.writeError(w, http.StatusServiceUnavailable, "analytics aggregation is disabled")
		return
	}
	h.writeJSON(w, http.StatusOK, h.stats())
}

// CacheStats reports cumulative hit/miss counts of the result cache.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": hitRate,
	})
}

// CacheInvalidate drops every cached search result.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func parseSearchQuery(r *http.Request) (*search.Query, error) {
	params := r.URL.Query()
	q := &search.Query{
		FreeText: params.Get("q"),
		Filters: search.Filters{
			Type:            params.Get("type"),
			ExperienceLevel: params.Get("experienceLevel"),
			PostedWithin:    params.Get("postedWithin"),
			CompanySize:     params.Get("companySize"),
		},
		Page: search.Page{
			SortBy: params.Get("sortBy"),
		},
		Preferences: search.Preferences{
			UserID: params.Get("userId"),
		},
		IncludeInactive: params.Get("includeInactive") == "true",
	}

	if v := params.Get("skills"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				q.Filters.Skills = append(q.Filters.Skills, s)
			}
		}
	}
	var err error
	if q.Filters.SalaryMin, err = floatParam(params.Get("salaryMin"), "salaryMin"); err != nil {
		return nil, err
	}
	if q.Filters.SalaryMax, err = floatParam(params.Get("salaryMax"), "salaryMax"); err != nil {
		return nil, err
	}
	if q.Page.Limit, err = intParam(params.Get("limit"), "limit"); err != nil {
		return nil, err
	}
	if q.Page.Offset, err = intParam(params.Get("offset"), "offset"); err != nil {
		return nil, err
	}

	loc := search.LocationFilter{
		City:    params.Get("city"),
		State:   params.Get("state"),
		Country: params.Get("country"),
	}
	latStr, lonStr := params.Get("lat"), params.Get("lon")
	if latStr != "" && lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrInvalidArgument, http.StatusBadRequest, "lat must be a number")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrInvalidArgument, http.StatusBadRequest, "lon must be a number")
		}
		loc.Coordinates = &document.Coordinates{Lat: lat, Lon: lon}
		if v := params.Get("maxDistance"); v != "" {
			d, err := strconv.ParseFloat(v, 64)
			if err != nil || d <= 0 {
				return nil, apperrors.New(apperrors.ErrInvalidArgument, http.StatusBadRequest, "maxDistance must be a positive number")
			}
			loc.MaxDistanceKm = d
		}
	}
	if loc.City != "" || loc.State != "" || loc.Country != "" || loc.Coordinates != nil {
		q.Filters.Location = &loc
	}
	return q, nil
}

func floatParam(v, name string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidArgument, http.StatusBadRequest, "%s must be a number", name)
	}
	return &f, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrInvalidArgument, http.StatusBadRequest, "%s must be an integer", name)
	}
	return n, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
