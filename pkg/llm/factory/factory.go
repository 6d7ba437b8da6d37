package factory

import (
	"fmt"

	"support-assistant-be/pkg/llm"
	"support-assistant-be/pkg/llm/gemini"
	"support-assistant-be/pkg/llm/ollama"
	"support-assistant-be/pkg/llm/openai"
)

// NewLLMProvider builds a provider for one credential. The orchestration
// layer stacks one provider per configured API key to get rotation.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		return gemini.NewGeminiProvider(apiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
