// Package document defines the normalized document model shared by the
// indexer, the filter engine, and the scorer, plus the content parsing that
// turns raw entity payloads into searchable text.
package document

import "time"

// Type identifies the platform entity a document was indexed from.
type Type string

const (
	TypeJob     Type = "job"
	TypeCompany Type = "company"
	TypeCourse  Type = "course"
	TypeUser    Type = "user"
)

// ValidType reports whether t is one of the indexable entity types.
func ValidType(t Type) bool {
	switch t {
	case TypeJob, TypeCompany, TypeCourse, TypeUser:
		return true
	}
	return false
}

// Experience levels form an ordered ladder; filters use floor semantics
// (document level must be at or above the requested level).
const (
	LevelEntry     = "entry"
	LevelMid       = "mid"
	LevelSenior    = "senior"
	LevelExecutive = "executive"
)

// LevelOrdinal maps an experience level to its position on the ladder,
// or -1 for unknown values.
func LevelOrdinal(level string) int {
	switch level {
	case LevelEntry:
		return 0
	case LevelMid:
		return 1
	case LevelSenior:
		return 2
	case LevelExecutive:
		return 3
	}
	return -1
}

// Coordinates is a WGS84 lat/lon pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location describes where an entity is based. Coordinates are optional.
type Location struct {
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Country     string       `json:"country,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// SalaryRange is an inclusive compensation band.
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency,omitempty"`
}

// Metadata carries the structured facets a document can be filtered and
// sorted on. All fields are optional.
type Metadata struct {
	Location        *Location    `json:"location,omitempty"`
	Skills          []string     `json:"skills,omitempty"`
	Salary          *SalaryRange `json:"salary,omitempty"`
	PostedAt        time.Time    `json:"postedAt,omitempty"`
	CompanySize     string       `json:"companySize,omitempty"`
	ExperienceLevel string       `json:"experienceLevel,omitempty"`
	Company         string       `json:"company,omitempty"`
	SearchWeight    float64      `json:"searchWeight,omitempty"`
}

// ParsedContent is the normalized text representation produced by
// ParseContent.
type ParsedContent struct {
	Text        string         `json:"text"`
	Tokens      []string       `json:"tokens"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Entities    map[string]any `json:"entities,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// IndexedDocument is the unit of the search index. It is owned exclusively
// by the indexer; every other component treats it as read-only.
type IndexedDocument struct {
	ID           string        `json:"id"`
	Type         Type          `json:"type"`
	Title        string        `json:"title"`
	RawContent   any           `json:"rawContent,omitempty"`
	Parsed       ParsedContent `json:"parsedContent"`
	Meta         Metadata      `json:"metadata"`
	SearchWeight float64       `json:"searchWeight"`
	IsActive     bool          `json:"isActive"`
	IndexedAt    time.Time     `json:"indexedAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Description returns the best available description text for scoring.
func (d *IndexedDocument) Description() string {
	if d.Parsed.Description != "" {
		return d.Parsed.Description
	}
	return d.Parsed.Text
}

// HasCoordinates reports whether the document carries a usable lat/lon pair.
func (d *IndexedDocument) HasCoordinates() bool {
	return d.Meta.Location != nil && d.Meta.Location.Coordinates != nil
}
