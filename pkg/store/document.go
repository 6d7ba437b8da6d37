package store

import "errors"

// ErrSessionNotFound is returned when a session id has no registered knowledge base.
var ErrSessionNotFound = errors.New("session not found")

// Source type values stored under MetaSourceType.
const (
	SourceUploadedFile   = "uploaded_file"
	SourceDefaultFile    = "default_file"
	SourceUserResolution = "user_resolution"
	SourceColumnSummary  = "column_summary"
)

// Well-known metadata keys.
const (
	MetaRowIndex    = "row_index"
	MetaFilename    = "filename"
	MetaSourceType  = "source_type"
	MetaColumn      = "column"
	MetaChunkIndex  = "chunk_index"
	MetaTicketLevel = "ticket_level"
	MetaModule      = "module"
	MetaErrorCode   = "error_code"
	MetaAddedAt     = "added_at"
)

// Document is one retrievable unit of text derived from a spreadsheet row,
// a column summary, or a manually submitted resolution. Documents are
// immutable after creation; an update is always a new appended Document.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// SourceType returns the document's source_type metadata, or "" if unset.
func (d Document) SourceType() string {
	if v, ok := d.Metadata[MetaSourceType].(string); ok {
		return v
	}
	return ""
}

// IsColumnSummary reports whether the document is an analytical column
// summary. Summaries are indexed but excluded from similarity answers.
func (d Document) IsColumnSummary() bool {
	return d.SourceType() == SourceColumnSummary
}

// SearchResult pairs a retrieved document with its relevance score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float32  `json:"score"`
	Reason   string   `json:"reason"` // "Semantic similarity" | "Keyword match"
}
