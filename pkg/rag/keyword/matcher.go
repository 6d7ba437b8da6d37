package keyword

import (
	"sort"
	"strings"

	"support-assistant-be/pkg/store"
)

// scanLimit bounds how many documents (in store order) are scored per
// search. The keyword path is a cheap fallback, not a real index.
const scanLimit = 20

// Matcher scores documents by query-token overlap. Used whenever the
// vector index is absent or failed, so it must never itself fail.
type Matcher struct{}

func NewMatcher() *Matcher { return &Matcher{} }

// Search counts how many query tokens (longer than 2 chars, case-folded)
// appear as substrings of each document. Column summaries are skipped.
// Results are ordered by descending score; ties keep store order.
func (m *Matcher) Search(query string, documents []store.Document, limit int) []store.SearchResult {
	tokens := tokenize(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil
	}

	candidates := documents
	if len(candidates) > scanLimit {
		candidates = candidates[:scanLimit]
	}

	var results []store.SearchResult
	for _, doc := range candidates {
		if doc.IsColumnSummary() {
			continue
		}
		content := strings.ToLower(doc.Content)
		score := 0
		for _, token := range tokens {
			if strings.Contains(content, token) {
				score++
			}
		}
		if score > 0 {
			results = append(results, store.SearchResult{
				Document: doc,
				Score:    float32(score),
				Reason:   "Keyword match",
			})
		}
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
