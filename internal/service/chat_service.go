package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"

	"support-assistant-be/internal/constant"
	"support-assistant-be/internal/dto"
	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/pkg/serverutils"
	"support-assistant-be/pkg/rag/history"
	"support-assistant-be/pkg/rag/prompt"
	"support-assistant-be/pkg/rag/resolution"
	"support-assistant-be/pkg/rag/response"
	"support-assistant-be/pkg/rag/search"
	"support-assistant-be/pkg/rag/session"
	"support-assistant-be/pkg/store"
)

const (
	// historyWindow is how many prior messages reach the prompt.
	historyWindow = 10

	// sweepEvery triggers an idle-session sweep once per N chat calls.
	sweepEvery = 100

	// formTTL bounds how long an abandoned resolution form survives.
	formTTL = 30 * time.Minute
)

type IChatService interface {
	SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	ClearChat(request *dto.ClearChatRequest) error
}

// chatService drives the conversation loop: session resolution, the guided
// resolution form, retrieval, generation and conversation memory.
type chatService struct {
	registry     *session.Registry
	orchestrator *search.Orchestrator
	generator    *response.Generator
	memory       *history.Memory
	knowledge    IKnowledgeService
	logger       logger.ILogger

	// Pending resolution forms keyed by session id. Abandoned forms expire
	// instead of trapping the session in collection mode forever.
	forms *cache.Cache

	chatCount atomic.Uint64
}

func NewChatService(
	registry *session.Registry,
	orchestrator *search.Orchestrator,
	generator *response.Generator,
	memory *history.Memory,
	knowledge IKnowledgeService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		registry:     registry,
		orchestrator: orchestrator,
		generator:    generator,
		memory:       memory,
		knowledge:    knowledge,
		logger:       log,
		forms:        cache.New(formTTL, 10*time.Minute),
	}
}

func (s *chatService) SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionId, err := s.resolveSession(request.SessionId)
	if err != nil {
		return nil, err
	}

	// Periodic sweep instead of a background janitor.
	if s.chatCount.Add(1)%sweepEvery == 0 {
		s.memory.Sweep()
	}

	lower := strings.ToLower(request.Message)
	if request.Mode == "add_resolution" || strings.Contains(lower, "add resolution") || strings.Contains(lower, "add data") {
		return s.startResolutionForm(sessionId), nil
	}

	if form, found := s.forms.Get(sessionId); found {
		return s.continueResolutionForm(ctx, sessionId, form.(*resolution.Form), request.Message), nil
	}

	return s.query(ctx, sessionId, request.Message)
}

// resolveSession prefers the caller's session when it has a knowledge base,
// otherwise falls back to the shared default session.
func (s *chatService) resolveSession(sessionId string) (string, error) {
	if sessionId != "" && s.registry.Exists(sessionId) {
		return sessionId, nil
	}
	if s.registry.Exists(store.DefaultSessionID) {
		return store.DefaultSessionID, nil
	}
	return "", serverutils.NewAppError(fiber.StatusNotFound, "No active sessions available. Please wait for the system to initialize.", nil)
}

func (s *chatService) startResolutionForm(sessionId string) *dto.ChatResponse {
	s.forms.Set(sessionId, resolution.NewForm(), cache.DefaultExpiration)
	return &dto.ChatResponse{
		Success:   true,
		Response:  resolution.StartPrompt(),
		Sources:   []dto.SourceDTO{},
		SessionId: sessionId,
		Actions:   []dto.ActionDTO{},
	}
}

func (s *chatService) continueResolutionForm(ctx context.Context, sessionId string, form *resolution.Form, message string) *dto.ChatResponse {
	reply, record := form.Advance(message)
	if record == nil {
		s.forms.Set(sessionId, form, cache.DefaultExpiration)
		return &dto.ChatResponse{
			Success:   true,
			Response:  reply,
			Sources:   []dto.SourceDTO{},
			SessionId: sessionId,
			Actions:   []dto.ActionDTO{},
		}
	}

	s.forms.Delete(sessionId)

	if err := s.knowledge.CommitRecord(ctx, record); err != nil {
		s.logger.Error("chat", "Failed to commit collected resolution", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		reply = fmt.Sprintf("Sorry, there was an error adding the resolution: %s. Please try again.", err)
	} else {
		reply = record.Confirmation()
	}

	return &dto.ChatResponse{
		Success:   true,
		Response:  reply,
		Sources:   []dto.SourceDTO{},
		SessionId: sessionId,
		Actions:   []dto.ActionDTO{},
	}
}

func (s *chatService) query(ctx context.Context, sessionId, message string) (*dto.ChatResponse, error) {
	documents, index, err := s.registry.Snapshot(sessionId)
	if err != nil {
		return nil, err
	}

	results := s.orchestrator.Retrieve(ctx, index, documents, message, search.DefaultTopK)
	sources := toSources(results)

	// History is read before this turn is recorded, so it never contains
	// the message being answered.
	window := windowed(s.memory.Get(sessionId), historyWindow)

	answer, err := s.answer(ctx, message, results, window, sources)
	if err != nil {
		return nil, err
	}

	s.memory.Append(sessionId, store.RoleUser, message)
	s.memory.Append(sessionId, store.RoleAssistant, answer)

	return &dto.ChatResponse{
		Success:   true,
		Response:  answer,
		Sources:   sources,
		SessionId: sessionId,
		Actions: []dto.ActionDTO{
			{Type: "button", Label: "Add Resolution", Action: "add_resolution"},
		},
	}, nil
}

func (s *chatService) answer(ctx context.Context, message string, results []store.SearchResult, window []store.ConversationMessage, sources []dto.SourceDTO) (string, error) {
	if !s.generator.Available() {
		return fallbackAnswer(sources), nil
	}

	promptText := prompt.NewBuilder(constant.SupportSystemPrompt, message, results, window).Build()
	generated, err := s.generator.Generate(ctx, promptText)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("**Confidence: %s**\n\n%s", confidence(len(results)), generated), nil
}

// ClearChat drops conversation state only. Knowledge bases are owned by
// the registry and survive history resets.
func (s *chatService) ClearChat(request *dto.ClearChatRequest) error {
	s.memory.Clear(request.SessionId)
	s.forms.Delete(request.SessionId)
	return nil
}

func confidence(matches int) string {
	switch {
	case matches >= 3:
		return "High"
	case matches >= 1:
		return "Medium"
	default:
		return "Low"
	}
}

// fallbackAnswer serves queries without any generation model configured.
func fallbackAnswer(sources []dto.SourceDTO) string {
	if len(sources) == 0 {
		return "I couldn't find specific tickets matching your query. Could you provide more details about the issue you're experiencing?"
	}

	var b strings.Builder
	b.WriteString("Based on similar past tickets, here are some relevant resolutions:\n\n")
	for i, src := range sources {
		if i >= 2 {
			break
		}
		fmt.Fprintf(&b, "**Ticket %d:**\n%s\n\n", i+1, src.Content)
	}
	b.WriteString("Please review these similar cases for potential solutions.")
	return b.String()
}

func toSources(results []store.SearchResult) []dto.SourceDTO {
	sources := make([]dto.SourceDTO, 0, len(results))
	for _, r := range results {
		sources = append(sources, dto.SourceDTO{
			Content:        prompt.Preview(r.Document.Content),
			Metadata:       r.Document.Metadata,
			RelevanceScore: r.Score,
			MatchReasons:   []string{r.Reason},
		})
	}
	return sources
}

func windowed(messages []store.ConversationMessage, limit int) []store.ConversationMessage {
	if len(messages) > limit {
		return messages[len(messages)-limit:]
	}
	return messages
}
