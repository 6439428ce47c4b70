package search

import (
	"sort"
	"strings"
)

const (
	minLimit = 1
	maxLimit = 100
)

// Sort orders hits by the requested key. Every comparator breaks ties by
// ascending document id, so identical queries against an unchanged index
// always produce identical ordering.
func Sort(hits []ScoredHit, sortBy string) {
	less := comparator(sortBy)
	sort.Slice(hits, func(i, j int) bool {
		if c := less(&hits[i], &hits[j]); c != 0 {
			return c < 0
		}
		return hits[i].Document.ID < hits[j].Document.ID
	})
}

// comparator returns a three-way compare for the sort key; 0 means tied.
func comparator(sortBy string) func(a, b *ScoredHit) int {
	switch sortBy {
	case SortPosted:
		return func(a, b *ScoredHit) int {
			at, bt := a.Document.Meta.PostedAt, b.Document.Meta.PostedAt
			switch {
			case at.After(bt):
				return -1
			case bt.After(at):
				return 1
			}
			return 0
		}
	case SortSalary:
		return func(a, b *ScoredHit) int {
			return descending(maxSalary(a), maxSalary(b))
		}
	case SortTitle:
		return func(a, b *ScoredHit) int {
			return strings.Compare(strings.ToLower(a.Document.Title), strings.ToLower(b.Document.Title))
		}
	case SortCompany:
		return func(a, b *ScoredHit) int {
			return strings.Compare(strings.ToLower(a.Document.Meta.Company), strings.ToLower(b.Document.Meta.Company))
		}
	default:
		return func(a, b *ScoredHit) int {
			return descending(a.Total(), b.Total())
		}
	}
}

func descending(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

func maxSalary(h *ScoredHit) float64 {
	if h.Document.Meta.Salary == nil {
		return 0
	}
	return h.Document.Meta.Salary.Max
}

// Paginate slices a sorted hit list. Limit is clamped to [1,100] and offset
// to >= 0; out-of-range offsets yield an empty page, never an error.
func Paginate(hits []ScoredHit, limit, offset int) ([]ScoredHit, Pagination) {
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	total := len(hits)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	page := hits[start:end]
	return page, Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(page) < total,
	}
}
