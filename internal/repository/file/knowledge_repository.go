package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/store"
	"support-assistant-be/pkg/vectorstore"
)

const (
	vectorstoresDir     = "vectorstores"
	sharedDocumentsFile = "shared_documents.json"
	sharedSessionFile   = "shared_session.json"
)

// knowledgeRepository keeps knowledge-base state as JSON files under one
// base directory:
//
//	<base>/vectorstores/<session>/   per-session index
//	<base>/shared_documents.json     shared session document snapshot
//	<base>/shared_session.json       shared session metadata
type knowledgeRepository struct {
	baseDir string
}

func NewKnowledgeRepository(baseDir string) (contract.KnowledgeRepository, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &knowledgeRepository{baseDir: baseDir}, nil
}

func (r *knowledgeRepository) indexDir(sessionID string) string {
	return filepath.Join(r.baseDir, vectorstoresDir, sessionID)
}

func (r *knowledgeRepository) SaveIndex(sessionID string, ix *vectorstore.Index) error {
	if ix == nil {
		return r.DeleteIndex(sessionID)
	}
	return ix.Save(r.indexDir(sessionID))
}

func (r *knowledgeRepository) LoadIndex(sessionID string, embedder embedding.Provider, splitter *chunker.Splitter) (*vectorstore.Index, error) {
	return vectorstore.Load(r.indexDir(sessionID), embedder, splitter)
}

// DeleteIndex removes the saved index so a later restart cannot restore a
// stale one. A missing directory is not an error.
func (r *knowledgeRepository) DeleteIndex(sessionID string) error {
	return os.RemoveAll(r.indexDir(sessionID))
}

func (r *knowledgeRepository) SaveSharedDocuments(documents []store.Document) error {
	return writeJSON(filepath.Join(r.baseDir, sharedDocumentsFile), documents)
}

// LoadSharedDocuments returns (nil, nil) when no snapshot exists yet.
func (r *knowledgeRepository) LoadSharedDocuments() ([]store.Document, error) {
	var documents []store.Document
	found, err := readJSON(filepath.Join(r.baseDir, sharedDocumentsFile), &documents)
	if err != nil || !found {
		return nil, err
	}
	return documents, nil
}

func (r *knowledgeRepository) SaveSharedSession(meta *contract.SharedSessionMeta) error {
	return writeJSON(filepath.Join(r.baseDir, sharedSessionFile), meta)
}

// LoadSharedSession returns (nil, nil) when no snapshot exists yet.
func (r *knowledgeRepository) LoadSharedSession() (*contract.SharedSessionMeta, error) {
	var meta contract.SharedSessionMeta
	found, err := readJSON(filepath.Join(r.baseDir, sharedSessionFile), &meta)
	if err != nil || !found {
		return nil, err
	}
	return &meta, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
