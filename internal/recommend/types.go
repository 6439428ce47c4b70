// Package recommend builds personalized job and company recommendations by
// fanning out to external matcher services, merging their results, and
// applying business-rule score adjustments.
package recommend

import (
	"context"
	"time"
)

// Item types in a recommendation response.
const (
	ItemJob     = "job"
	ItemCompany = "company"
)

// Item is one ranked recommendation.
type Item struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Options tune a recommendation request.
type Options struct {
	Limit int `json:"limit,omitempty"`
}

// Result is a full recommendation response.
type Result struct {
	Recommendations []Item `json:"recommendations"`
	Total           int    `json:"total"`
}

// Profile is the slice of a user profile the engine personalizes on.
type Profile struct {
	UserID              string   `json:"userId"`
	Skills              []string `json:"skills,omitempty"`
	ExperienceLevel     string   `json:"experienceLevel,omitempty"`
	Location            string   `json:"location,omitempty"`
	PreferredIndustries []string `json:"preferredIndustries,omitempty"`
}

// JobMatch is one job returned by the job matcher.
type JobMatch struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Company  string    `json:"company,omitempty"`
	Score    float64   `json:"score"`
	Remote   bool      `json:"remote,omitempty"`
	Location string    `json:"location,omitempty"`
	PostedAt time.Time `json:"postedAt,omitempty"`
}

// CompanyMatch is one company returned by the company matcher.
type CompanyMatch struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Industry string    `json:"industry,omitempty"`
	Size     string    `json:"size,omitempty"`
	Location string    `json:"location,omitempty"`
	PostedAt time.Time `json:"postedAt,omitempty"`
}

// ProfileService looks up the profile slice for a user.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}

// JobMatcher returns jobs matching a profile.
type JobMatcher interface {
	MatchJobs(ctx context.Context, profile *Profile) ([]JobMatch, error)
}

// CompanyMatcher returns companies matching a profile.
type CompanyMatcher interface {
	MatchCompanies(ctx context.Context, profile *Profile) ([]CompanyMatch, error)
}
