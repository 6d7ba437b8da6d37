package search

import (
	"context"

	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/pkg/rag/keyword"
	"support-assistant-be/pkg/store"
	"support-assistant-be/pkg/vectorstore"
)

// DefaultTopK is how many documents retrieval returns per query.
const DefaultTopK = 5

// Orchestrator picks the retrieval strategy per query: semantic search when
// a vector index exists, keyword matching otherwise. Index failures degrade
// to keyword matching instead of failing the request.
type Orchestrator struct {
	matcher *keyword.Matcher
	logger  logger.ILogger
}

func NewOrchestrator(log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		matcher: keyword.NewMatcher(),
		logger:  log,
	}
}

// Retrieve returns up to k documents relevant to the query. Column summary
// documents are filtered out of semantic results; they describe the data
// shape, not ticket content. index may be nil.
func (o *Orchestrator) Retrieve(ctx context.Context, index *vectorstore.Index, documents []store.Document, query string, k int) []store.SearchResult {
	if k <= 0 {
		k = DefaultTopK
	}

	if index != nil {
		results, err := index.Search(ctx, query, k)
		if err == nil {
			return filterSummaries(results)
		}
		o.logger.Warn("search", "Vector search failed, falling back to keyword matching", map[string]interface{}{"error": err.Error()})
	}

	return o.matcher.Search(query, documents, k)
}

func filterSummaries(results []store.SearchResult) []store.SearchResult {
	filtered := results[:0]
	for _, r := range results {
		if r.Document.IsColumnSummary() {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
