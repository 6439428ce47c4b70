package search

import (
	"strings"
	"time"

	"github.com/talenthub/search-platform/internal/document"
)

// Score weights. Relevance is purely additive over these.
const (
	titleMatchBonus    = 30.0
	descMatchBonus     = 20.0
	perSkillBonus      = 10.0
	locationSetBonus   = 15.0
	freshnessBonus     = 10.0
	freshnessWindow    = 7 * 24 * time.Hour
	nearDistanceKm     = 10.0
	midDistanceKm      = 25.0
	farDistanceKm      = 50.0
	nearDistanceBonus  = 20.0
	midDistanceBonus   = 10.0
	farDistanceBonus   = 5.0
)

// Scorer computes per-document scores. Scores are pure functions of
// (document, query, preferences) and the scorer's clock, so scoring is safe
// to run concurrently across candidates.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a Scorer on the wall clock.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerAt creates a Scorer on a fixed clock, for tests.
func NewScorerAt(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes both score components for one candidate.
func (s *Scorer) Score(doc *document.IndexedDocument, q *Query) ScoredHit {
	return ScoredHit{
		Document:       *doc,
		RelevanceScore: s.relevance(doc, q),
		LocationScore:  s.location(doc, q),
	}
}

func (s *Scorer) relevance(doc *document.IndexedDocument, q *Query) float64 {
	score := doc.SearchWeight

	if text := strings.ToLower(strings.TrimSpace(q.FreeText)); text != "" {
		if strings.Contains(strings.ToLower(doc.Title), text) {
			score += titleMatchBonus
		}
		if strings.Contains(strings.ToLower(doc.Description()), text) {
			score += descMatchBonus
		}
	}

	score += perSkillBonus * float64(matchingSkills(q.Filters.Skills, doc.Meta.Skills))

	if q.Preferences.Location != nil && doc.Meta.Location != nil {
		score += locationSetBonus
	}

	if doc.IsActive && !doc.Meta.PostedAt.IsZero() {
		if age := s.now().Sub(doc.Meta.PostedAt); age >= 0 && age <= freshnessWindow {
			score += freshnessBonus
		}
	}
	return score
}

// location awards a proximity bonus only when both the preferences and the
// document carry coordinates. A document without coordinates is neither
// excluded nor penalized here.
func (s *Scorer) location(doc *document.IndexedDocument, q *Query) float64 {
	pref := q.Preferences.Location
	if pref == nil || pref.Coordinates == nil || !doc.HasCoordinates() {
		return 0
	}
	d := HaversineKm(*pref.Coordinates, *doc.Meta.Location.Coordinates)
	switch {
	case d <= nearDistanceKm:
		return nearDistanceBonus
	case d <= midDistanceKm:
		return midDistanceBonus
	case d <= farDistanceKm:
		return farDistanceBonus
	}
	return 0
}

func matchingSkills(wanted, have []string) int {
	if len(wanted) == 0 || len(have) == 0 {
		return 0
	}
	haveSet := make(map[string]struct{}, len(have))
	for _, h := range have {
		haveSet[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	n := 0
	for _, w := range wanted {
		if _, ok := haveSet[strings.ToLower(strings.TrimSpace(w))]; ok {
			n++
		}
	}
	return n
}
