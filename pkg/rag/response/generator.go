package response

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/pkg/llm"
)

// DefaultTimeout bounds one generation attempt. A timeout is classified as
// retryable-once, same as a quota failure.
const DefaultTimeout = 30 * time.Second

// quotaMarkers are the error-text fragments that identify a quota or
// rate-limit failure worth retrying on the fallback credential.
var quotaMarkers = []string{"quota", "rate limit", "429", "resource exhausted"}

// GenerationError is the user-visible generation failure. It carries the
// underlying error text so the client sees why the call failed.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string { return e.Message }

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator invokes the generation model through an ordered credential
// list: the primary provider first, then at most one retry on the fallback
// when the failure is quota-classified. Providers are immutable; rotation
// never mutates shared key state.
type Generator struct {
	providers []llm.LLMProvider
	timeout   time.Duration
	logger    logger.ILogger
}

func NewGenerator(providers []llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{providers: providers, timeout: timeout, logger: log}
}

// Available reports whether any generation provider is configured.
func (g *Generator) Available() bool { return len(g.providers) > 0 }

// Generate runs the prompt against the primary provider, retrying exactly
// once on the fallback credential for quota-classified failures.
func (g *Generator) Generate(ctx context.Context, promptText string) (string, error) {
	if !g.Available() {
		return "", &GenerationError{Message: "no generation model configured"}
	}

	answer, err := g.attempt(ctx, g.providers[0], promptText)
	if err == nil {
		return answer, nil
	}

	if !IsQuotaError(err) {
		g.logger.Error("generation", "Non-quota API error", map[string]interface{}{"error": err.Error()})
		return "", &GenerationError{
			Message: fmt.Sprintf("Error generating response: %s", err),
			Err:     err,
		}
	}

	if len(g.providers) < 2 {
		g.logger.Error("generation", "No fallback key available and primary key has quota issues", map[string]interface{}{"error": err.Error()})
		return "", &GenerationError{
			Message: fmt.Sprintf("Error: Primary API key quota exceeded and no fallback key available: %s", err),
			Err:     err,
		}
	}

	g.logger.Warn("generation", "Detected quota/rate limit error - retrying with fallback credential", map[string]interface{}{"error": err.Error()})

	answer, retryErr := g.attempt(ctx, g.providers[1], promptText)
	if retryErr != nil {
		g.logger.Error("generation", "Response generation failed with fallback credential", map[string]interface{}{"error": retryErr.Error()})
		return "", &GenerationError{
			Message: fmt.Sprintf("Error generating response with fallback key: %s", retryErr),
			Err:     retryErr,
		}
	}

	g.logger.Info("generation", "Response generated successfully with fallback credential", nil)
	return answer, nil
}

func (g *Generator) attempt(ctx context.Context, provider llm.LLMProvider, promptText string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return provider.Generate(attemptCtx, promptText)
}

// IsQuotaError classifies an error as quota/rate-limit by matching known
// error-text fragments; generation timeouts are treated the same way.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	text := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
