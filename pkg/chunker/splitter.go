package chunker

import (
	"strings"
	"unicode/utf8"

	"support-assistant-be/pkg/store"
)

// Splitter cuts long documents into length-bounded, overlapping chunks.
// Break points prefer sentence/line boundaries in the back half of the
// window so chunks don't cut words mid-sentence.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a splitter. Non-positive arguments fall back to the
// defaults (500 char chunks, 50 char overlap). The overlap is clamped below
// half the chunk size: every break point lands past the window midpoint, so
// an overlap under half of it keeps each step moving forward.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 {
		chunkOverlap = 50
	}
	if chunkOverlap*2 >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// SplitDocuments splits each document's content, carrying the parent
// metadata forward and tagging each chunk with its chunk_index. Blank
// chunks are dropped.
func (s *Splitter) SplitDocuments(documents []store.Document) []store.Document {
	split := make([]store.Document, 0, len(documents))
	for _, doc := range documents {
		for i, chunk := range s.splitText(doc.Content) {
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			meta := make(map[string]any, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta[store.MetaChunkIndex] = i
			split = append(split, store.Document{Content: chunk, Metadata: meta})
		}
	}
	return split
}

func (s *Splitter) splitText(text string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		if len(text)-start <= s.chunkSize {
			chunks = append(chunks, text[start:])
			break
		}

		// The window end may land inside a multibyte rune; never slice there.
		end := runeFloor(text, start+s.chunkSize)
		if end <= start {
			_, size := utf8.DecodeRuneInString(text[start:])
			end = start + size
		}

		// Prefer a sentence or line boundary in the back half of the window.
		// The delimiters are ASCII, so i+1 is always a rune boundary.
		breakPoint := end
		for i := end - 1; i > start+s.chunkSize/2; i-- {
			if c := text[i]; c == '.' || c == '\n' || c == '!' || c == '?' {
				breakPoint = i + 1
				break
			}
		}

		chunks = append(chunks, text[start:breakPoint])

		next := runeFloor(text, breakPoint-s.chunkOverlap)
		if next <= start {
			next = breakPoint
		}
		start = next
	}
	return chunks
}

// runeFloor walks i back to the nearest rune start so slices never cut a
// character in half.
func runeFloor(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	if i < 0 {
		return 0
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
