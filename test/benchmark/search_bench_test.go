// Package benchmark contains Go benchmarks for the content parser, the
// filter/score/rank pipeline, and the full search service.
package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/talenthub/search-platform/internal/document"
	"github.com/talenthub/search-platform/internal/index"
	"github.com/talenthub/search-platform/internal/search"
	"github.com/talenthub/search-platform/pkg/config"
)

func seedDocuments(n int) []document.IndexedDocument {
	docs := make([]document.IndexedDocument, n)
	levels := []string{document.LevelEntry, document.LevelMid, document.LevelSenior}
	for i := range docs {
		docs[i] = document.IndexedDocument{
			ID:    fmt.Sprintf("job-%06d", i),
			Type:  document.TypeJob,
			Title: fmt.Sprintf("Backend Engineer %d", i),
			Parsed: document.ParsedContent{
				Text:   "backend engineer building distributed services",
				Tokens: []string{"backend", "engineer", "building", "distributed", "services"},
			},
			Meta: document.Metadata{
				Skills:          []string{"Go", "SQL", "Kubernetes"},
				ExperienceLevel: levels[i%len(levels)],
				PostedAt:        time.Now().Add(-time.Duration(i%200) * time.Hour),
				Salary:          &document.SalaryRange{Min: 80000 + float64(i%50)*1000, Max: 120000 + float64(i%50)*1000},
				Location: &document.Location{
					City:        "Austin",
					Coordinates: &document.Coordinates{Lat: 30.2672 + float64(i%100)*0.01, Lon: -97.7431},
				},
			},
			SearchWeight: 1.0,
			IsActive:     true,
		}
	}
	return docs
}

func BenchmarkParseContent(b *testing.B) {
	payloads := map[string]any{
		"plain": "senior backend engineer building search infrastructure in go",
		"html": map[string]any{
			"type":    "text/html",
			"content": "<html><head><title>Backend Engineer</title></head><body><p>Build search systems.</p><script>track()</script></body></html>",
		},
		"structured": map[string]any{
			"title":       "Backend Engineer",
			"text":        "build search systems in go",
			"description": "a role on the platform team",
		},
	}
	for name, payload := range payloads {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				parsed := document.ParseContent(payload)
				_ = parsed
			}
		})
	}
}

func BenchmarkCandidateFiltering(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			docs := seedDocuments(n)
			min := 90000.0
			plan := search.Compile(&search.Query{Filters: search.Filters{
				Type:            "job",
				ExperienceLevel: document.LevelMid,
				SalaryMin:       &min,
				Skills:          []string{"go"},
			}}, time.Now())
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				candidates := plan.Candidates(docs)
				_ = candidates
			}
		})
	}
}

func BenchmarkScoring(b *testing.B) {
	docs := seedDocuments(1000)
	scorer := search.NewScorer()
	q := &search.Query{
		FreeText: "backend",
		Filters:  search.Filters{Skills: []string{"go", "sql"}},
		Preferences: search.Preferences{Location: &document.Location{
			Coordinates: &document.Coordinates{Lat: 30.2672, Lon: -97.7431},
		}},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		hit := scorer.Score(&docs[i%len(docs)], q)
		_ = hit
	}
}

func BenchmarkHaversine(b *testing.B) {
	a := document.Coordinates{Lat: 30.2672, Lon: -97.7431}
	c := document.Coordinates{Lat: 32.7767, Lon: -96.7970}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d := search.HaversineKm(a, c)
		_ = d
	}
}

func BenchmarkSearchService(b *testing.B) {
	store := index.NewMemoryStore()
	ctx := context.Background()
	for _, doc := range seedDocuments(5000) {
		d := doc
		if err := store.Upsert(ctx, &d); err != nil {
			b.Fatalf("seeding store: %v", err)
		}
	}
	svc := search.NewService(store, config.SearchConfig{
		DefaultLimit:    20,
		MaxLimit:        100,
		SuggestionCount: 5,
		ScoringWorkers:  8,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := svc.Search(ctx, &search.Query{
			FreeText: "backend",
			Filters:  search.Filters{Type: "job", Skills: []string{"go"}},
			Page:     search.Page{Limit: 20},
		})
		if err != nil {
			b.Fatalf("search: %v", err)
		}
		_ = result
	}
}
