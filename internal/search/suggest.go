package search

import (
	"sort"
	"strings"

	"github.com/talenthub/search-platform/internal/document"
)

// Suggestions returns up to max distinct completions of prefix, gathered
// from document titles and tokens. A candidate equal to the prefix itself
// is not a completion and is skipped, whichever source it came from.
// Matches are sorted lexicographically, not by relevance.
func Suggestions(docs []document.IndexedDocument, prefix string, max int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || max <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for i := range docs {
		doc := &docs[i]
		if !doc.IsActive {
			continue
		}
		if title := strings.ToLower(doc.Title); title != prefix && strings.HasPrefix(title, prefix) {
			seen[title] = struct{}{}
		}
		for _, tok := range doc.Parsed.Tokens {
			if tok != prefix && strings.HasPrefix(tok, prefix) {
				seen[tok] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	if len(out) > max {
		out = out[:max]
	}
	return out
}
