package session

import (
	"context"
	"sync"
	"time"

	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/rag/resolution"
	"support-assistant-be/pkg/store"
	"support-assistant-be/pkg/vectorstore"
)

// entry pairs a session with its vector index. The entry mutex serializes
// mutations per session; concurrent writers to the same session queue up
// instead of clobbering each other.
type entry struct {
	mu      sync.Mutex
	session *store.Session
	index   *vectorstore.Index
}

// Registry owns every live knowledge base: the document lists, their vector
// indexes and their persistence. The index is a cache over the document
// list; when index maintenance fails the documents stay authoritative and
// retrieval degrades to keyword matching.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	repo     contract.KnowledgeRepository
	embedder embedding.Provider
	splitter *chunker.Splitter
	logger   logger.ILogger
}

func NewRegistry(repo contract.KnowledgeRepository, embedder embedding.Provider, splitter *chunker.Splitter, log logger.ILogger) *Registry {
	if splitter == nil {
		splitter = chunker.NewSplitter(0, 0)
	}
	return &Registry{
		entries:  make(map[string]*entry),
		repo:     repo,
		embedder: embedder,
		splitter: splitter,
		logger:   log,
	}
}

// Exists reports whether the session has a registered knowledge base.
func (r *Registry) Exists(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[sessionID]
	return ok
}

// Snapshot returns a copy of the session's document list plus its current
// index. The index may be nil when embedding is unavailable.
func (r *Registry) Snapshot(sessionID string) ([]store.Document, *vectorstore.Index, error) {
	e := r.lookup(sessionID)
	if e == nil {
		return nil, nil, store.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	documents := make([]store.Document, len(e.session.Documents))
	copy(documents, e.session.Documents)
	return documents, e.index, nil
}

// DocumentCount returns the session's document count, 0 if absent.
func (r *Registry) DocumentCount(sessionID string) int {
	e := r.lookup(sessionID)
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.session.Documents)
}

// Restore installs a session rebuilt from persistent storage. Used only at
// startup, before the server accepts traffic.
func (r *Registry) Restore(session *store.Session, ix *vectorstore.Index) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[session.ID] = &entry{session: session, index: ix}
}

// Ingest creates the session if needed and appends the documents to it.
func (r *Registry) Ingest(ctx context.Context, sessionID string, documents []store.Document, filePaths []string) error {
	e := r.ensure(sessionID, filePaths)
	e.mu.Lock()
	defer e.mu.Unlock()
	r.append(ctx, e, documents)
	return nil
}

// Append adds documents to an existing session, updates its index and
// persists the result. A missing session is the caller's error; index and
// persistence failures are absorbed (the document list is already updated
// and keyword search still works over it).
func (r *Registry) Append(ctx context.Context, sessionID string, documents []store.Document) error {
	e := r.lookup(sessionID)
	if e == nil {
		return store.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	r.append(ctx, e, documents)
	return nil
}

// AddResolution commits a completed resolution to the shared default
// session, whichever chat session collected it. It returns the stored
// document and the new document count.
func (r *Registry) AddResolution(ctx context.Context, record *resolution.Record) (store.Document, int, error) {
	e := r.lookup(store.DefaultSessionID)
	if e == nil {
		return store.Document{}, 0, store.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	doc := record.Document(len(e.session.Documents), time.Now())
	r.append(ctx, e, []store.Document{doc})
	return doc, len(e.session.Documents), nil
}

// Cleanup removes a session's knowledge base and its saved index. The
// shared default session is never cleaned up.
func (r *Registry) Cleanup(sessionID string) {
	if sessionID == store.DefaultSessionID {
		return
	}

	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()

	if err := r.repo.DeleteIndex(sessionID); err != nil {
		r.logger.Warn("session", "Failed to delete saved index", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (r *Registry) lookup(sessionID string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[sessionID]
}

func (r *Registry) ensure(sessionID string, filePaths []string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[sessionID]; ok {
		return e
	}
	now := time.Now()
	e := &entry{
		session: &store.Session{
			ID: sessionID,
			Provenance: store.Provenance{
				FilePaths:   filePaths,
				UploadedAt:  now,
				LastUpdated: now,
			},
		},
	}
	r.entries[sessionID] = e
	return e
}

// append mutates an already-locked entry: document list first, then index,
// then persistence. The document list is never rolled back; a later index
// or write failure only degrades retrieval quality.
func (r *Registry) append(ctx context.Context, e *entry, documents []store.Document) {
	if len(documents) == 0 {
		return
	}

	e.session.Documents = append(e.session.Documents, documents...)
	e.session.Provenance.LastUpdated = time.Now()

	r.updateIndex(ctx, e, documents)
	r.persist(e)
}

func (r *Registry) updateIndex(ctx context.Context, e *entry, added []store.Document) {
	if r.embedder == nil {
		return
	}

	if e.index == nil {
		ix, err := vectorstore.Build(ctx, e.session.Documents, r.embedder, r.splitter)
		if err != nil {
			r.logger.Warn("session", "Index build failed, keyword search only", map[string]interface{}{
				"session_id": e.session.ID,
				"error":      err.Error(),
			})
			return
		}
		e.index = ix
		return
	}

	if err := e.index.Add(ctx, added); err == nil {
		return
	} else {
		r.logger.Warn("session", "Incremental index update failed, rebuilding", map[string]interface{}{
			"session_id": e.session.ID,
			"error":      err.Error(),
		})
	}

	// Incremental add failed; rebuild from the full document list so the
	// index either matches the documents or does not exist at all.
	ix, err := vectorstore.Build(ctx, e.session.Documents, r.embedder, r.splitter)
	if err != nil {
		r.logger.Error("session", "Index rebuild failed, dropping index", map[string]interface{}{
			"session_id": e.session.ID,
			"error":      err.Error(),
		})
		e.index = nil
		return
	}
	e.index = ix
}

func (r *Registry) persist(e *entry) {
	if err := r.repo.SaveIndex(e.session.ID, e.index); err != nil {
		r.logger.Error("session", "Failed to persist index", map[string]interface{}{
			"session_id": e.session.ID,
			"error":      err.Error(),
		})
	}

	if e.session.ID != store.DefaultSessionID {
		return
	}
	if err := r.repo.SaveSharedDocuments(e.session.Documents); err != nil {
		r.logger.Error("session", "Failed to persist shared documents", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
