package contract

import (
	"time"

	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/store"
	"support-assistant-be/pkg/vectorstore"
)

// SharedSessionMeta is the persisted descriptor of the shared knowledge
// base: what files it was built from and when it was last updated.
type SharedSessionMeta struct {
	FileInfo   store.FileInfo `json:"file_info"`
	UploadTime time.Time      `json:"upload_time"`
}

// KnowledgeRepository persists knowledge-base state between restarts.
// Index persistence is per session; the document snapshot and session meta
// exist only for the shared default session.
type KnowledgeRepository interface {
	SaveIndex(sessionID string, ix *vectorstore.Index) error
	LoadIndex(sessionID string, embedder embedding.Provider, splitter *chunker.Splitter) (*vectorstore.Index, error)
	DeleteIndex(sessionID string) error

	SaveSharedDocuments(documents []store.Document) error
	LoadSharedDocuments() ([]store.Document, error)

	SaveSharedSession(meta *SharedSessionMeta) error
	LoadSharedSession() (*SharedSessionMeta, error)
}
