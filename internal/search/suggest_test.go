package search

import (
	"reflect"
	"testing"

	"github.com/talenthub/search-platform/internal/document"
)

func suggestDocs() []document.IndexedDocument {
	return []document.IndexedDocument{
		jobDoc("1", func(d *document.IndexedDocument) {
			d.Title = "Backend Engineer"
			d.Parsed.Tokens = []string{"backend", "engineer", "golang"}
		}),
		jobDoc("2", func(d *document.IndexedDocument) {
			d.Title = "Backend Engineer" // duplicate title across docs
			d.Parsed.Tokens = []string{"backend", "engineer", "sql"}
		}),
		jobDoc("3", func(d *document.IndexedDocument) {
			d.Title = "Banking Analyst"
			d.Parsed.Tokens = []string{"banking", "analyst"}
		}),
		jobDoc("4", func(d *document.IndexedDocument) {
			d.Title = "Barista"
			d.Parsed.Tokens = []string{"barista"}
			d.IsActive = false
		}),
	}
}

func TestSuggestionsDistinctSorted(t *testing.T) {
	got := Suggestions(suggestDocs(), "ba", 10)
	want := []string{"backend", "backend engineer", "banking", "banking analyst"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggestions = %v, want %v", got, want)
	}
}

func TestSuggestionsTopN(t *testing.T) {
	got := Suggestions(suggestDocs(), "ba", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", got)
	}
}

func TestSuggestionsSkipInactiveAndEmptyPrefix(t *testing.T) {
	for _, s := range Suggestions(suggestDocs(), "ba", 10) {
		if s == "barista" {
			t.Error("inactive document leaked into suggestions")
		}
	}
	if got := Suggestions(suggestDocs(), "   ", 10); got != nil {
		t.Errorf("blank prefix should suggest nothing, got %v", got)
	}
	if got := Suggestions(suggestDocs(), "zz", 10); got != nil {
		t.Errorf("no matches should return nil, got %v", got)
	}
}

func TestSuggestionsExcludeExactMatches(t *testing.T) {
	for _, s := range Suggestions(suggestDocs(), "backend", 10) {
		if s == "backend" {
			t.Error("a token equal to the prefix is not a completion")
		}
	}
	if got := Suggestions(suggestDocs(), "banking analyst", 10); got != nil {
		t.Errorf("a title equal to the prefix is not a completion, got %v", got)
	}
}
