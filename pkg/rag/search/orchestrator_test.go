package search

import (
	"context"
	"errors"
	"testing"

	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/store"
	"support-assistant-be/pkg/vectorstore"
)

// queryFailEmbedder embeds documents fine but fails on queries, simulating
// a provider outage after the index was built.
type queryFailEmbedder struct{}

func (queryFailEmbedder) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if taskType == "RETRIEVAL_QUERY" {
		return nil, errors.New("provider unavailable")
	}
	return []float32{1, 0}, nil
}

func (queryFailEmbedder) Model() string { return "query-fail" }

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if text == "payment gateway timeout" || text == "payment" {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (fixedEmbedder) Model() string { return "fixed" }

func ticketDocs() []store.Document {
	return []store.Document{
		{Content: "payment gateway timeout", Metadata: map[string]any{}},
		{Content: "shipping label misprint", Metadata: map[string]any{}},
		{Content: "Column: Error Code\nData type: string", Metadata: map[string]any{
			store.MetaSourceType: store.SourceColumnSummary,
		}},
	}
}

func TestRetrieveSemantic(t *testing.T) {
	docs := ticketDocs()
	ix, err := vectorstore.Build(context.Background(), docs, fixedEmbedder{}, chunker.NewSplitter(0, 0))
	if err != nil {
		t.Fatal(err)
	}

	o := NewOrchestrator(logger.Nop())
	results := o.Retrieve(context.Background(), ix, docs, "payment", 2)
	if len(results) == 0 {
		t.Fatal("no results from semantic search")
	}
	if results[0].Document.Content != "payment gateway timeout" {
		t.Errorf("top result = %q", results[0].Document.Content)
	}
	if results[0].Reason != "Semantic similarity" {
		t.Errorf("reason = %q", results[0].Reason)
	}
}

func TestRetrieveFiltersColumnSummaries(t *testing.T) {
	docs := ticketDocs()
	ix, err := vectorstore.Build(context.Background(), docs, fixedEmbedder{}, chunker.NewSplitter(0, 0))
	if err != nil {
		t.Fatal(err)
	}

	o := NewOrchestrator(logger.Nop())
	results := o.Retrieve(context.Background(), ix, docs, "payment", 5)
	for _, r := range results {
		if r.Document.IsColumnSummary() {
			t.Errorf("column summary in results: %q", r.Document.Content)
		}
	}
}

func TestRetrieveKeywordFallbackWithoutIndex(t *testing.T) {
	o := NewOrchestrator(logger.Nop())
	results := o.Retrieve(context.Background(), nil, ticketDocs(), "payment timeout", 5)
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Reason != "Keyword match" {
		t.Errorf("reason = %q, want keyword fallback", results[0].Reason)
	}
}

func TestRetrieveKeywordFallbackOnSearchError(t *testing.T) {
	docs := ticketDocs()
	ix, err := vectorstore.Build(context.Background(), docs, queryFailEmbedder{}, chunker.NewSplitter(0, 0))
	if err != nil {
		t.Fatal(err)
	}

	o := NewOrchestrator(logger.Nop())
	results := o.Retrieve(context.Background(), ix, docs, "payment timeout", 5)
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1 from keyword fallback", len(results))
	}
	if results[0].Reason != "Keyword match" {
		t.Errorf("reason = %q, want keyword fallback after index failure", results[0].Reason)
	}
}
