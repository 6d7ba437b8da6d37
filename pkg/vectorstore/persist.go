package vectorstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/store"
)

const (
	indexFile     = "index.json"
	documentsFile = "documents.json"
)

type indexSnapshot struct {
	Dimension int         `json:"dimension"`
	Vectors   [][]float32 `json:"vectors"`
}

// Save writes the index and its backing chunk list under dir.
func (ix *Index) Save(dir string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	snap := indexSnapshot{Dimension: ix.dimension, Vectors: ix.vectors}
	if err := writeJSON(filepath.Join(dir, indexFile), snap); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, documentsFile), ix.documents); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}

// Load restores an index previously written by Save. A missing directory
// or missing files yield (nil, nil): "no saved index" is not an error.
func Load(dir string, embedder embedding.Provider, splitter *chunker.Splitter) (*Index, error) {
	indexPath := filepath.Join(dir, indexFile)
	docsPath := filepath.Join(dir, documentsFile)
	if !fileExists(indexPath) || !fileExists(docsPath) {
		return nil, nil
	}
	if embedder == nil {
		// Without an embedder the index cannot serve queries anyway.
		return nil, nil
	}
	if splitter == nil {
		splitter = chunker.NewSplitter(0, 0)
	}

	var snap indexSnapshot
	if err := readJSON(indexPath, &snap); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var documents []store.Document
	if err := readJSON(docsPath, &documents); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	if len(snap.Vectors) != len(documents) {
		return nil, fmt.Errorf("index corrupt: %d vectors for %d documents", len(snap.Vectors), len(documents))
	}

	return &Index{
		dimension: snap.Dimension,
		vectors:   snap.Vectors,
		documents: documents,
		embedder:  embedder,
		splitter:  splitter,
	}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
