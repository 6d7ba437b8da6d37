package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"support-assistant-be/internal/repository/contract"
)

const feedbackFile = "feedback.jsonl"

// feedbackRepository appends negative feedback as JSON lines. A mutex keeps
// concurrent appends from interleaving.
type feedbackRepository struct {
	mu   sync.Mutex
	path string
}

func NewFeedbackRepository(baseDir string) (contract.FeedbackRepository, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &feedbackRepository{path: filepath.Join(baseDir, feedbackFile)}, nil
}

func (r *feedbackRepository) AppendNegative(entry contract.FeedbackEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}
