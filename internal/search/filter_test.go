package search

import (
	"regexp"
	"testing"
	"time"

	"github.com/talenthub/search-platform/internal/document"
)

var filterNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func jobDoc(id string, mutate func(*document.IndexedDocument)) document.IndexedDocument {
	doc := document.IndexedDocument{
		ID:           id,
		Type:         document.TypeJob,
		Title:        "Backend Engineer",
		SearchWeight: 1.0,
		IsActive:     true,
		Meta: document.Metadata{
			Skills:          []string{"Go", "SQL"},
			ExperienceLevel: document.LevelMid,
			PostedAt:        filterNow.Add(-48 * time.Hour),
		},
	}
	if mutate != nil {
		mutate(&doc)
	}
	return doc
}

func candidateIDs(q *Query, docs []document.IndexedDocument) []string {
	plan := Compile(q, filterNow)
	var ids []string
	for _, d := range plan.Candidates(docs) {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestCandidatesExcludeInactive(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("a", nil),
		jobDoc("b", func(d *document.IndexedDocument) { d.IsActive = false }),
	}
	got := candidateIDs(&Query{}, docs)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("expected only active doc, got %v", got)
	}

	got = candidateIDs(&Query{IncludeInactive: true}, docs)
	if len(got) != 2 {
		t.Errorf("IncludeInactive should return both, got %v", got)
	}
}

func TestTypeFacet(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("j", nil),
		jobDoc("c", func(d *document.IndexedDocument) { d.Type = document.TypeCourse }),
	}
	got := candidateIDs(&Query{Filters: Filters{Type: "course"}}, docs)
	if len(got) != 1 || got[0] != "c" {
		t.Errorf("type filter: got %v", got)
	}
	// "all" and empty mean no type restriction.
	for _, v := range []string{"all", ""} {
		if got := candidateIDs(&Query{Filters: Filters{Type: v}}, docs); len(got) != 2 {
			t.Errorf("type=%q should not restrict, got %v", v, got)
		}
	}
}

func TestExperienceLevelFloor(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("entry", func(d *document.IndexedDocument) { d.Meta.ExperienceLevel = document.LevelEntry }),
		jobDoc("mid", nil),
		jobDoc("senior", func(d *document.IndexedDocument) { d.Meta.ExperienceLevel = document.LevelSenior }),
		jobDoc("exec", func(d *document.IndexedDocument) { d.Meta.ExperienceLevel = document.LevelExecutive }),
	}
	got := candidateIDs(&Query{Filters: Filters{ExperienceLevel: document.LevelSenior}}, docs)
	want := map[string]bool{"senior": true, "exec": true}
	if len(got) != 2 || !want[got[0]] || !want[got[1]] {
		t.Errorf("senior floor should keep senior and exec, got %v", got)
	}

	// Unknown level on the document fails any floor.
	docs = append(docs, jobDoc("mystery", func(d *document.IndexedDocument) { d.Meta.ExperienceLevel = "wizard" }))
	got = candidateIDs(&Query{Filters: Filters{ExperienceLevel: document.LevelEntry}}, docs)
	for _, id := range got {
		if id == "mystery" {
			t.Error("unknown experience level passed the floor")
		}
	}
}

func TestSalaryFacet(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("low", func(d *document.IndexedDocument) {
			d.Meta.Salary = &document.SalaryRange{Min: 50000, Max: 70000}
		}),
		jobDoc("high", func(d *document.IndexedDocument) {
			d.Meta.Salary = &document.SalaryRange{Min: 120000, Max: 160000}
		}),
		jobDoc("none", nil),
	}
	min, max := 80000.0, 150000.0

	got := candidateIDs(&Query{Filters: Filters{SalaryMin: &min, SalaryMax: &max}}, docs)
	if len(got) != 1 || got[0] != "high" {
		t.Errorf("between: got %v", got)
	}
	got = candidateIDs(&Query{Filters: Filters{SalaryMin: &min}}, docs)
	if len(got) != 1 || got[0] != "high" {
		t.Errorf("min only: got %v", got)
	}
	got = candidateIDs(&Query{Filters: Filters{SalaryMax: &max}}, docs)
	if len(got) != 2 {
		t.Errorf("max only should keep low and high, got %v", got)
	}
}

func TestSkillsFacetOverlap(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("go", nil),
		jobDoc("js", func(d *document.IndexedDocument) { d.Meta.Skills = []string{"JavaScript", "React"} }),
		jobDoc("bare", func(d *document.IndexedDocument) { d.Meta.Skills = nil }),
	}

	got := candidateIDs(&Query{Filters: Filters{Skills: []string{"go"}}}, docs)
	if len(got) != 1 || got[0] != "go" {
		t.Errorf("case-insensitive exact: got %v", got)
	}
	// Substring overlap counts in either direction.
	got = candidateIDs(&Query{Filters: Filters{Skills: []string{"java"}}}, docs)
	if len(got) != 1 || got[0] != "js" {
		t.Errorf("substring: got %v", got)
	}
	if got := candidateIDs(&Query{Filters: Filters{Skills: []string{"rust"}}}, docs); got != nil {
		t.Errorf("no overlap should match nothing, got %v", got)
	}
}

func TestPostedWithinFacet(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("fresh", func(d *document.IndexedDocument) { d.Meta.PostedAt = filterNow.Add(-30 * time.Minute) }),
		jobDoc("daily", func(d *document.IndexedDocument) { d.Meta.PostedAt = filterNow.Add(-20 * time.Hour) }),
		jobDoc("stale", func(d *document.IndexedDocument) { d.Meta.PostedAt = filterNow.Add(-40 * 24 * time.Hour) }),
		jobDoc("undated", func(d *document.IndexedDocument) { d.Meta.PostedAt = time.Time{} }),
	}

	got := candidateIDs(&Query{Filters: Filters{PostedWithin: WithinHour}}, docs)
	if len(got) != 1 || got[0] != "fresh" {
		t.Errorf("1h window: got %v", got)
	}
	got = candidateIDs(&Query{Filters: Filters{PostedWithin: WithinDay}}, docs)
	if len(got) != 2 {
		t.Errorf("24h window: got %v", got)
	}
	got = candidateIDs(&Query{Filters: Filters{PostedWithin: WithinQuarter}}, docs)
	if len(got) != 3 {
		t.Errorf("90d window should exclude only undated, got %v", got)
	}
	// Unknown windows are skipped rather than failing the query.
	got = candidateIDs(&Query{Filters: Filters{PostedWithin: "fortnight"}}, docs)
	if len(got) != 4 {
		t.Errorf("unknown window should not filter, got %v", got)
	}
}

func TestLocationFacetNameMatch(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("austin", func(d *document.IndexedDocument) {
			d.Meta.Location = &document.Location{City: "Austin", State: "TX", Country: "US"}
		}),
		jobDoc("dallas", func(d *document.IndexedDocument) {
			d.Meta.Location = &document.Location{City: "Dallas", State: "TX", Country: "US"}
		}),
		jobDoc("nowhere", nil),
	}

	got := candidateIDs(&Query{Filters: Filters{Location: &LocationFilter{City: "austin"}}}, docs)
	if len(got) != 1 || got[0] != "austin" {
		t.Errorf("city equality (case-insensitive): got %v", got)
	}
	got = candidateIDs(&Query{Filters: Filters{Location: &LocationFilter{State: "TX"}}}, docs)
	if len(got) != 2 {
		t.Errorf("state equality: got %v", got)
	}
	got = candidateIDs(&Query{Filters: Filters{Location: &LocationFilter{City: "Austin", State: "OK"}}}, docs)
	if got != nil {
		t.Errorf("all provided names must match, got %v", got)
	}
}

func TestLocationFacetDistance(t *testing.T) {
	austin := document.Coordinates{Lat: 30.2672, Lon: -97.7431}
	docs := []document.IndexedDocument{
		jobDoc("near", func(d *document.IndexedDocument) {
			d.Meta.Location = &document.Location{City: "Round Rock", Coordinates: &document.Coordinates{Lat: 30.5083, Lon: -97.6789}}
		}),
		jobDoc("far", func(d *document.IndexedDocument) {
			d.Meta.Location = &document.Location{City: "Dallas", Coordinates: &document.Coordinates{Lat: 32.7767, Lon: -96.7970}}
		}),
		jobDoc("nocoords", func(d *document.IndexedDocument) {
			d.Meta.Location = &document.Location{City: "Houston"}
		}),
	}

	// Distance-only filter: default 50 km bound, docs without coordinates drop.
	got := candidateIDs(&Query{Filters: Filters{Location: &LocationFilter{Coordinates: &austin}}}, docs)
	if len(got) != 1 || got[0] != "near" {
		t.Errorf("default bound: got %v", got)
	}
	// Wider explicit bound reaches Dallas.
	got = candidateIDs(&Query{Filters: Filters{Location: &LocationFilter{Coordinates: &austin, MaxDistanceKm: 400}}}, docs)
	if len(got) != 2 {
		t.Errorf("wide bound: got %v", got)
	}
	// Name match still rescues a coordinate-less doc when names are given.
	got = candidateIDs(&Query{Filters: Filters{Location: &LocationFilter{City: "Houston", Coordinates: &austin}}}, docs)
	if len(got) != 1 || got[0] != "nocoords" {
		t.Errorf("name-or-distance: got %v", got)
	}
}

func TestCompanySizeFacet(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("startup", func(d *document.IndexedDocument) { d.Meta.CompanySize = "1-50" }),
		jobDoc("big", func(d *document.IndexedDocument) { d.Meta.CompanySize = "1000+" }),
	}
	got := candidateIDs(&Query{Filters: Filters{CompanySize: "1-50"}}, docs)
	if len(got) != 1 || got[0] != "startup" {
		t.Errorf("companySize: got %v", got)
	}
}

func TestFacetsAndCombined(t *testing.T) {
	docs := []document.IndexedDocument{
		jobDoc("match", func(d *document.IndexedDocument) { d.Meta.CompanySize = "1-50" }),
		jobDoc("wrongsize", func(d *document.IndexedDocument) { d.Meta.CompanySize = "1000+" }),
		jobDoc("wrongskill", func(d *document.IndexedDocument) {
			d.Meta.CompanySize = "1-50"
			d.Meta.Skills = []string{"Rust"}
		}),
	}
	q := &Query{Filters: Filters{
		Type:        "job",
		Skills:      []string{"go"},
		CompanySize: "1-50",
	}}
	got := candidateIDs(q, docs)
	if len(got) != 1 || got[0] != "match" {
		t.Errorf("AND combination: got %v", got)
	}
}

func TestEvaluateNeAndRegex(t *testing.T) {
	doc := jobDoc("a", func(d *document.IndexedDocument) { d.Meta.Company = "Acme Robotics" })

	if evaluate(&doc, Condition{Field: "type", Op: OpNe, Str: "job"}) {
		t.Error("Ne on matching value should fail")
	}
	if !evaluate(&doc, Condition{Field: "type", Op: OpNe, Str: "course"}) {
		t.Error("Ne on different value should pass")
	}
	re := regexp.MustCompile(`(?i)^acme`)
	if !evaluate(&doc, Condition{Field: "company", Op: OpRegex, Re: re}) {
		t.Error("Regex should match company prefix")
	}
	if evaluate(&doc, Condition{Field: "company", Op: OpRegex, Re: regexp.MustCompile(`^Globex`)}) {
		t.Error("Regex should not match")
	}
}
