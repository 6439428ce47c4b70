// Package search implements the query path: planning a candidate set from
// structured facets, scoring it, ranking, pagination, and prefix
// suggestions, fronted by a Redis result cache.
package search

import (
	"github.com/talenthub/search-platform/internal/document"
)

// Sort keys accepted by a query. Anything else falls back to relevance.
const (
	SortRelevance = "relevance"
	SortPosted    = "posted"
	SortSalary    = "salary"
	SortTitle     = "title"
	SortCompany   = "company"
)

// Recency windows accepted by the postedWithin facet.
const (
	WithinHour    = "1h"
	WithinDay     = "24h"
	WithinWeek    = "7d"
	WithinMonth   = "30d"
	WithinQuarter = "90d"
)

// LocationFilter narrows by place. Provided name fields match by equality;
// alternatively a document within MaxDistanceKm of Coordinates passes.
type LocationFilter struct {
	City          string                `json:"city,omitempty"`
	State         string                `json:"state,omitempty"`
	Country       string                `json:"country,omitempty"`
	Coordinates   *document.Coordinates `json:"coordinates,omitempty"`
	MaxDistanceKm float64               `json:"maxDistanceKm,omitempty"`
}

// Filters are the structured facets of a query. Every present facet must
// hold for a document to become a candidate.
type Filters struct {
	Type            string          `json:"type,omitempty"`
	Location        *LocationFilter `json:"location,omitempty"`
	ExperienceLevel string          `json:"experienceLevel,omitempty"`
	SalaryMin       *float64        `json:"salaryMin,omitempty"`
	SalaryMax       *float64        `json:"salaryMax,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	PostedWithin    string          `json:"postedWithin,omitempty"`
	CompanySize     string          `json:"companySize,omitempty"`
}

// Page controls result slicing and ordering.
type Page struct {
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	SortBy string `json:"sortBy,omitempty"`
}

// Preferences personalize scoring. They never filter.
type Preferences struct {
	UserID          string             `json:"userId,omitempty"`
	Location        *document.Location `json:"location,omitempty"`
	ExperienceLevel string             `json:"experienceLevel,omitempty"`
	RemoteWork      bool               `json:"remoteWork,omitempty"`
}

// Query is a full search request.
type Query struct {
	FreeText        string      `json:"freeText,omitempty"`
	Filters         Filters     `json:"filters,omitempty"`
	Page            Page        `json:"pagination,omitempty"`
	Preferences     Preferences `json:"preferences,omitempty"`
	IncludeInactive bool        `json:"includeInactive,omitempty"`
}

// ScoredHit pairs a document with its two score components. The components
// stay separate in the response; ranking uses their sum.
type ScoredHit struct {
	Document       document.IndexedDocument `json:"document"`
	RelevanceScore float64                  `json:"relevanceScore"`
	LocationScore  float64                  `json:"locationScore"`
}

// Total is the final ranking value.
func (h ScoredHit) Total() float64 {
	return h.RelevanceScore + h.LocationScore
}

// Pagination reports the slice the response covers.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// Result is a full search response.
type Result struct {
	Results     []ScoredHit `json:"results"`
	Total       int         `json:"total"`
	Pagination  Pagination  `json:"pagination"`
	Suggestions []string    `json:"suggestions"`
}
