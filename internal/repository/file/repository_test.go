package file

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/pkg/store"
)

func TestSharedDocumentsRoundTrip(t *testing.T) {
	repo, err := NewKnowledgeRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Nothing persisted yet: not an error.
	docs, err := repo.LoadSharedDocuments()
	if err != nil || docs != nil {
		t.Fatalf("LoadSharedDocuments() = %v, %v, want nil, nil", docs, err)
	}

	saved := []store.Document{
		{Content: "Error Code: PAY502", Metadata: map[string]any{store.MetaRowIndex: float64(0)}},
		{Content: "Error Code: SHP101", Metadata: map[string]any{store.MetaRowIndex: float64(1)}},
	}
	if err := repo.SaveSharedDocuments(saved); err != nil {
		t.Fatalf("SaveSharedDocuments() error = %v", err)
	}

	docs, err = repo.LoadSharedDocuments()
	if err != nil {
		t.Fatalf("LoadSharedDocuments() error = %v", err)
	}
	if len(docs) != 2 || docs[0].Content != "Error Code: PAY502" {
		t.Errorf("loaded = %+v", docs)
	}
}

func TestSharedSessionRoundTrip(t *testing.T) {
	repo, err := NewKnowledgeRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := repo.LoadSharedSession()
	if err != nil || meta != nil {
		t.Fatalf("LoadSharedSession() = %v, %v, want nil, nil", meta, err)
	}

	saved := &contract.SharedSessionMeta{
		FileInfo: store.FileInfo{
			Filename:    "tickets.xlsx",
			Rows:        120,
			Columns:     5,
			ColumnNames: []string{"Error Code", "Description"},
		},
		UploadTime: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveSharedSession(saved); err != nil {
		t.Fatalf("SaveSharedSession() error = %v", err)
	}

	meta, err = repo.LoadSharedSession()
	if err != nil {
		t.Fatalf("LoadSharedSession() error = %v", err)
	}
	if meta.FileInfo.Filename != "tickets.xlsx" || meta.FileInfo.Rows != 120 {
		t.Errorf("loaded = %+v", meta)
	}
	if !meta.UploadTime.Equal(saved.UploadTime) {
		t.Errorf("upload time = %v, want %v", meta.UploadTime, saved.UploadTime)
	}
}

func TestDeleteIndexMissingDir(t *testing.T) {
	repo, err := NewKnowledgeRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteIndex("never-existed"); err != nil {
		t.Errorf("DeleteIndex() error = %v, want nil for missing dir", err)
	}
}

func TestFeedbackAppend(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFeedbackRepository(dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, suggestions := range []string{"answer was wrong", "missed the error code"} {
		err := repo.AppendNegative(contract.FeedbackEntry{
			Timestamp:   time.Now(),
			MessageID:   "msg-42",
			Suggestions: suggestions,
		})
		if err != nil {
			t.Fatalf("AppendNegative() error = %v", err)
		}
	}

	f, err := os.Open(filepath.Join(dir, feedbackFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []contract.FeedbackEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry contract.FeedbackEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		entries = append(entries, entry)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[1].MessageID != "msg-42" || entries[1].Suggestions != "missed the error code" {
		t.Errorf("second entry = %+v", entries[1])
	}
}
