package store

import "time"

// DefaultSessionID is the privileged shared knowledge base. It is loaded at
// startup and receives every knowledge-base write regardless of which chat
// session initiated it. Per-user sessions are chat-history partitions only.
const DefaultSessionID = "default_support_tickets"

// Provenance records where a session's documents came from.
type Provenance struct {
	FilePaths   []string  `json:"file_paths"`
	UploadedAt  time.Time `json:"uploaded_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Session is an identified knowledge base: an ordered document list plus
// provenance. The vector index over the documents is owned by the session
// registry, not serialized with the session itself.
type Session struct {
	ID         string     `json:"session_id"`
	Documents  []Document `json:"documents"`
	Provenance Provenance `json:"provenance"`
}

// FileInfo summarizes the tabular source(s) behind a session, reported on
// upload and on the default-session info endpoint.
type FileInfo struct {
	Filename    string   `json:"filename"`
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
}
