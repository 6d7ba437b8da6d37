package service

import (
	"time"

	"support-assistant-be/internal/dto"
	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/repository/contract"
)

type IFeedbackService interface {
	Submit(request *dto.FeedbackRequest) (*dto.FeedbackResponse, error)
}

// feedbackService acknowledges positive feedback and files negative
// feedback for review.
type feedbackService struct {
	repo   contract.FeedbackRepository
	logger logger.ILogger
}

func NewFeedbackService(repo contract.FeedbackRepository, log logger.ILogger) IFeedbackService {
	return &feedbackService{repo: repo, logger: log}
}

func (s *feedbackService) Submit(request *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	if request.Type == "positive" {
		return &dto.FeedbackResponse{Success: true, Message: "Thanks for the feedback!"}, nil
	}

	entry := contract.FeedbackEntry{
		Timestamp:   time.Now(),
		MessageID:   request.MessageId,
		Suggestions: request.Suggestions,
	}
	if err := s.repo.AppendNegative(entry); err != nil {
		return nil, err
	}

	s.logger.Info("feedback", "Negative feedback recorded", map[string]interface{}{
		"message_id": request.MessageId,
	})
	return &dto.FeedbackResponse{Success: true, Message: "Feedback recorded, thank you for helping us improve."}, nil
}
