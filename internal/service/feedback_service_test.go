package service

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-assistant-be/internal/dto"
	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/pkg/serverutils"
	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/internal/repository/file"
)

func TestFeedbackRequestShape(t *testing.T) {
	// Clients send {type, messageId, suggestions?}; suggestions is optional.
	require.NoError(t, serverutils.ValidateRequest(dto.FeedbackRequest{
		Type:      "negative",
		MessageId: "msg-7",
	}))

	err := serverutils.ValidateRequest(dto.FeedbackRequest{Type: "negative"})
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr, "messageId is required")
}

func TestSubmitPositiveFeedbackIsNotStored(t *testing.T) {
	dataDir := t.TempDir()
	repo, err := file.NewFeedbackRepository(dataDir)
	require.NoError(t, err)
	svc := NewFeedbackService(repo, logger.Nop())

	res, err := svc.Submit(&dto.FeedbackRequest{Type: "positive", MessageId: "msg-1"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = os.Stat(filepath.Join(dataDir, "feedback.jsonl"))
	assert.True(t, os.IsNotExist(err), "positive feedback must not reach disk")
}

func TestSubmitNegativeFeedbackAppendsEntry(t *testing.T) {
	dataDir := t.TempDir()
	repo, err := file.NewFeedbackRepository(dataDir)
	require.NoError(t, err)
	svc := NewFeedbackService(repo, logger.Nop())

	res, err := svc.Submit(&dto.FeedbackRequest{
		Type:        "negative",
		MessageId:   "msg-9",
		Suggestions: "cite the resolution steps",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	f, err := os.Open(filepath.Join(dataDir, "feedback.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan(), "expected one JSONL entry")

	var entry contract.FeedbackEntry
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, "msg-9", entry.MessageID)
	assert.Equal(t, "cite the resolution steps", entry.Suggestions)
	assert.False(t, entry.Timestamp.IsZero())
}
