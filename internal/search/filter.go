package search

import (
	"regexp"
	"strings"
	"time"

	"github.com/talenthub/search-platform/internal/document"
)

// DefaultMaxDistanceKm bounds a coordinate-based location filter when the
// caller does not supply one.
const DefaultMaxDistanceKm = 50.0

// Op identifies a predicate operator.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpNe
	OpGte
	OpLte
	OpBetween
	OpRegex
)

// Condition is one typed facet predicate. Every condition in a Plan must
// hold for a document to become a candidate.
type Condition struct {
	Field string
	Op    Op

	Str  string
	Strs []string
	Num  float64
	Num2 float64
	Re   *regexp.Regexp
}

// Plan is a compiled query: the uniform predicate list plus the location
// rule, which needs its own equality-or-proximity evaluation.
type Plan struct {
	Conditions      []Condition
	Location        *LocationFilter
	IncludeInactive bool
}

// Compile turns a query's facets into a Plan. now anchors the postedWithin
// cutoff so that one plan evaluates consistently across a snapshot.
func Compile(q *Query, now time.Time) *Plan {
	p := &Plan{IncludeInactive: q.IncludeInactive}
	f := q.Filters

	if f.Type != "" && f.Type != "all" {
		p.Conditions = append(p.Conditions, Condition{Field: "type", Op: OpEq, Str: f.Type})
	}
	if ord := document.LevelOrdinal(f.ExperienceLevel); ord >= 0 {
		p.Conditions = append(p.Conditions, Condition{Field: "experienceLevel", Op: OpGte, Num: float64(ord)})
	}
	switch {
	case f.SalaryMin != nil && f.SalaryMax != nil:
		p.Conditions = append(p.Conditions, Condition{Field: "salary.min", Op: OpBetween, Num: *f.SalaryMin, Num2: *f.SalaryMax})
	case f.SalaryMin != nil:
		p.Conditions = append(p.Conditions, Condition{Field: "salary.min", Op: OpGte, Num: *f.SalaryMin})
	case f.SalaryMax != nil:
		p.Conditions = append(p.Conditions, Condition{Field: "salary.min", Op: OpLte, Num: *f.SalaryMax})
	}
	if len(f.Skills) > 0 {
		p.Conditions = append(p.Conditions, Condition{Field: "skills", Op: OpIn, Strs: f.Skills})
	}
	if cutoff, ok := postedCutoff(f.PostedWithin, now); ok {
		p.Conditions = append(p.Conditions, Condition{Field: "postedAt", Op: OpGte, Num: float64(cutoff.Unix())})
	}
	if f.CompanySize != "" {
		p.Conditions = append(p.Conditions, Condition{Field: "companySize", Op: OpEq, Str: f.CompanySize})
	}
	if f.Location != nil {
		loc := *f.Location
		if loc.Coordinates != nil && loc.MaxDistanceKm <= 0 {
			loc.MaxDistanceKm = DefaultMaxDistanceKm
		}
		p.Location = &loc
	}
	return p
}

// postedCutoff maps a recency window to its cutoff instant. Unknown values
// report false and the facet is skipped.
func postedCutoff(within string, now time.Time) (time.Time, bool) {
	var d time.Duration
	switch within {
	case WithinHour:
		d = time.Hour
	case WithinDay:
		d = 24 * time.Hour
	case WithinWeek:
		d = 7 * 24 * time.Hour
	case WithinMonth:
		d = 30 * 24 * time.Hour
	case WithinQuarter:
		d = 90 * 24 * time.Hour
	default:
		return time.Time{}, false
	}
	return now.Add(-d), true
}

// Candidates filters a document snapshot down to those satisfying every
// condition of the plan.
func (p *Plan) Candidates(docs []document.IndexedDocument) []document.IndexedDocument {
	var out []document.IndexedDocument
	for i := range docs {
		if p.Matches(&docs[i]) {
			out = append(out, docs[i])
		}
	}
	return out
}

// Matches reports whether a single document satisfies the plan.
func (p *Plan) Matches(doc *document.IndexedDocument) bool {
	if !doc.IsActive && !p.IncludeInactive {
		return false
	}
	for _, c := range p.Conditions {
		if !evaluate(doc, c) {
			return false
		}
	}
	if p.Location != nil && !matchesLocation(doc, p.Location) {
		return false
	}
	return true
}

func evaluate(doc *document.IndexedDocument, c Condition) bool {
	switch c.Op {
	case OpEq:
		v, ok := stringField(doc, c.Field)
		return ok && strings.EqualFold(v, c.Str)
	case OpNe:
		v, ok := stringField(doc, c.Field)
		return !ok || !strings.EqualFold(v, c.Str)
	case OpIn:
		vals, ok := stringsField(doc, c.Field)
		if !ok {
			return false
		}
		return anyOverlap(c.Strs, vals)
	case OpGte:
		v, ok := numericField(doc, c.Field)
		return ok && v >= c.Num
	case OpLte:
		v, ok := numericField(doc, c.Field)
		return ok && v <= c.Num
	case OpBetween:
		v, ok := numericField(doc, c.Field)
		return ok && v >= c.Num && v <= c.Num2
	case OpRegex:
		v, ok := stringField(doc, c.Field)
		return ok && c.Re != nil && c.Re.MatchString(v)
	}
	return false
}

// anyOverlap reports whether any wanted value overlaps any document value,
// case-insensitively, by equality or substring in either direction.
func anyOverlap(wanted, have []string) bool {
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		for _, h := range have {
			h = strings.ToLower(strings.TrimSpace(h))
			if h == "" {
				continue
			}
			if h == w || strings.Contains(h, w) || strings.Contains(w, h) {
				return true
			}
		}
	}
	return false
}

func stringField(doc *document.IndexedDocument, field string) (string, bool) {
	switch field {
	case "type":
		return string(doc.Type), true
	case "title":
		return doc.Title, true
	case "company":
		if doc.Meta.Company == "" {
			return "", false
		}
		return doc.Meta.Company, true
	case "companySize":
		if doc.Meta.CompanySize == "" {
			return "", false
		}
		return doc.Meta.CompanySize, true
	}
	return "", false
}

func stringsField(doc *document.IndexedDocument, field string) ([]string, bool) {
	switch field {
	case "skills":
		if len(doc.Meta.Skills) == 0 {
			return nil, false
		}
		return doc.Meta.Skills, true
	case "tokens":
		return doc.Parsed.Tokens, true
	}
	return nil, false
}

func numericField(doc *document.IndexedDocument, field string) (float64, bool) {
	switch field {
	case "salary.min":
		if doc.Meta.Salary == nil {
			return 0, false
		}
		return doc.Meta.Salary.Min, true
	case "salary.max":
		if doc.Meta.Salary == nil {
			return 0, false
		}
		return doc.Meta.Salary.Max, true
	case "experienceLevel":
		ord := document.LevelOrdinal(doc.Meta.ExperienceLevel)
		if ord < 0 {
			return 0, false
		}
		return float64(ord), true
	case "postedAt":
		if doc.Meta.PostedAt.IsZero() {
			return 0, false
		}
		return float64(doc.Meta.PostedAt.Unix()), true
	}
	return 0, false
}

// matchesLocation applies the location facet: all provided place names must
// match, or the document must lie within the distance bound of the filter's
// coordinates. A distance-only filter excludes documents without
// coordinates.
func matchesLocation(doc *document.IndexedDocument, f *LocationFilter) bool {
	loc := doc.Meta.Location
	if loc == nil {
		return false
	}

	if namesProvided(f) && namesMatch(loc, f) {
		return true
	}
	if f.Coordinates != nil && loc.Coordinates != nil {
		return HaversineKm(*f.Coordinates, *loc.Coordinates) <= f.MaxDistanceKm
	}
	return false
}

func namesProvided(f *LocationFilter) bool {
	return f.City != "" || f.State != "" || f.Country != ""
}

func namesMatch(loc *document.Location, f *LocationFilter) bool {
	if f.City != "" && !strings.EqualFold(loc.City, f.City) {
		return false
	}
	if f.State != "" && !strings.EqualFold(loc.State, f.State) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(loc.Country, f.Country) {
		return false
	}
	return true
}
