package session

import (
	"context"
	"errors"
	"testing"

	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/rag/resolution"
	"support-assistant-be/pkg/store"
	"support-assistant-be/pkg/vectorstore"
)

// memRepo records persistence calls without touching disk.
type memRepo struct {
	indexSaves    map[string]int
	indexDeletes  map[string]int
	sharedDocs    []store.Document
	sharedSaves   int
	failNextWrite bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		indexSaves:   map[string]int{},
		indexDeletes: map[string]int{},
	}
}

func (r *memRepo) SaveIndex(sessionID string, ix *vectorstore.Index) error {
	if r.failNextWrite {
		return errors.New("disk full")
	}
	r.indexSaves[sessionID]++
	return nil
}

func (r *memRepo) LoadIndex(sessionID string, embedder embedding.Provider, splitter *chunker.Splitter) (*vectorstore.Index, error) {
	return nil, nil
}

func (r *memRepo) DeleteIndex(sessionID string) error {
	r.indexDeletes[sessionID]++
	return nil
}

func (r *memRepo) SaveSharedDocuments(documents []store.Document) error {
	if r.failNextWrite {
		return errors.New("disk full")
	}
	r.sharedDocs = documents
	r.sharedSaves++
	return nil
}

func (r *memRepo) LoadSharedDocuments() ([]store.Document, error) { return nil, nil }

func (r *memRepo) SaveSharedSession(meta *contract.SharedSessionMeta) error { return nil }

func (r *memRepo) LoadSharedSession() (*contract.SharedSessionMeta, error) { return nil, nil }

// flatEmbedder embeds everything into the same space so index maintenance
// always succeeds.
type flatEmbedder struct{}

func (flatEmbedder) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (flatEmbedder) Model() string { return "flat" }

// brokenEmbedder fails every call, forcing the degraded no-index path.
type brokenEmbedder struct{}

func (brokenEmbedder) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	return nil, errors.New("embedding service down")
}

func (brokenEmbedder) Model() string { return "broken" }

func docs(contents ...string) []store.Document {
	out := make([]store.Document, 0, len(contents))
	for _, c := range contents {
		out = append(out, store.Document{Content: c, Metadata: map[string]any{}})
	}
	return out
}

func TestIngestAndSnapshot(t *testing.T) {
	repo := newMemRepo()
	r := NewRegistry(repo, flatEmbedder{}, nil, logger.Nop())

	if r.Exists("s1") {
		t.Fatal("session exists before ingest")
	}
	if err := r.Ingest(context.Background(), "s1", docs("a", "b"), nil); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	documents, ix, err := r.Snapshot("s1")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(documents) != 2 {
		t.Errorf("documents = %d, want 2", len(documents))
	}
	if ix == nil {
		t.Error("index not built on ingest")
	}
	if repo.indexSaves["s1"] != 1 {
		t.Errorf("index saves = %d, want 1", repo.indexSaves["s1"])
	}
}

func TestSnapshotUnknownSession(t *testing.T) {
	r := NewRegistry(newMemRepo(), flatEmbedder{}, nil, logger.Nop())
	if _, _, err := r.Snapshot("nope"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestAppendUnknownSession(t *testing.T) {
	r := NewRegistry(newMemRepo(), flatEmbedder{}, nil, logger.Nop())
	if err := r.Append(context.Background(), "nope", docs("x")); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestAppendPersistsSharedSessionOnly(t *testing.T) {
	repo := newMemRepo()
	r := NewRegistry(repo, flatEmbedder{}, nil, logger.Nop())

	if err := r.Ingest(context.Background(), store.DefaultSessionID, docs("a"), nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Ingest(context.Background(), "user-1", docs("b"), nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Append(context.Background(), store.DefaultSessionID, docs("c")); err != nil {
		t.Fatal(err)
	}

	if repo.sharedSaves != 2 {
		t.Errorf("shared saves = %d, want 2 (default session writes only)", repo.sharedSaves)
	}
	if len(repo.sharedDocs) != 2 {
		t.Errorf("shared snapshot = %d documents, want 2", len(repo.sharedDocs))
	}
	if repo.indexSaves["user-1"] != 1 {
		t.Errorf("user-1 index saves = %d, want 1", repo.indexSaves["user-1"])
	}
}

func TestAppendWithoutEmbedderStillStoresDocuments(t *testing.T) {
	repo := newMemRepo()
	r := NewRegistry(repo, brokenEmbedder{}, nil, logger.Nop())

	if err := r.Ingest(context.Background(), "s1", docs("a", "b"), nil); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	documents, ix, err := r.Snapshot("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(documents) != 2 {
		t.Errorf("documents = %d, want 2 despite embedding failure", len(documents))
	}
	if ix != nil {
		t.Error("index exists despite embedding failure")
	}
}

func TestPersistFailureDoesNotRollBack(t *testing.T) {
	repo := newMemRepo()
	r := NewRegistry(repo, flatEmbedder{}, nil, logger.Nop())
	if err := r.Ingest(context.Background(), store.DefaultSessionID, docs("a"), nil); err != nil {
		t.Fatal(err)
	}

	repo.failNextWrite = true
	if err := r.Append(context.Background(), store.DefaultSessionID, docs("b")); err != nil {
		t.Fatalf("Append() error = %v, write failures must not surface", err)
	}

	documents, _, _ := r.Snapshot(store.DefaultSessionID)
	if len(documents) != 2 {
		t.Errorf("documents = %d, want 2 (no rollback)", len(documents))
	}
}

func TestAddResolutionTargetsDefaultSession(t *testing.T) {
	repo := newMemRepo()
	r := NewRegistry(repo, flatEmbedder{}, nil, logger.Nop())
	if err := r.Ingest(context.Background(), store.DefaultSessionID, docs("a", "b"), nil); err != nil {
		t.Fatal(err)
	}

	record, err := resolution.NewRecord("", "Payment", "L2", "Checkout hangs", "Restart gateway")
	if err != nil {
		t.Fatal(err)
	}

	doc, count, err := r.AddResolution(context.Background(), record)
	if err != nil {
		t.Fatalf("AddResolution() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if doc.Metadata[store.MetaRowIndex] != 2 {
		t.Errorf("row_index = %v, want 2 (next free index)", doc.Metadata[store.MetaRowIndex])
	}
	if doc.SourceType() != store.SourceUserResolution {
		t.Errorf("source_type = %q", doc.SourceType())
	}
	if len(repo.sharedDocs) != 3 {
		t.Errorf("shared snapshot = %d documents, want 3", len(repo.sharedDocs))
	}
}

func TestAddResolutionWithoutDefaultSession(t *testing.T) {
	r := NewRegistry(newMemRepo(), flatEmbedder{}, nil, logger.Nop())
	record, _ := resolution.NewRecord("", "", "", "desc", "res")
	if _, _, err := r.AddResolution(context.Background(), record); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestCleanup(t *testing.T) {
	repo := newMemRepo()
	r := NewRegistry(repo, flatEmbedder{}, nil, logger.Nop())
	if err := r.Ingest(context.Background(), store.DefaultSessionID, docs("a"), nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Ingest(context.Background(), "user-1", docs("b"), nil); err != nil {
		t.Fatal(err)
	}

	r.Cleanup("user-1")
	if r.Exists("user-1") {
		t.Error("session survived cleanup")
	}
	if repo.indexDeletes["user-1"] != 1 {
		t.Errorf("index deletes = %d, want 1", repo.indexDeletes["user-1"])
	}

	// The shared default session is never cleaned up.
	r.Cleanup(store.DefaultSessionID)
	if !r.Exists(store.DefaultSessionID) {
		t.Error("default session removed by cleanup")
	}
}

func TestRestore(t *testing.T) {
	r := NewRegistry(newMemRepo(), flatEmbedder{}, nil, logger.Nop())
	r.Restore(&store.Session{ID: store.DefaultSessionID, Documents: docs("a", "b", "c")}, nil)

	if got := r.DocumentCount(store.DefaultSessionID); got != 3 {
		t.Errorf("DocumentCount() = %d, want 3", got)
	}
}
