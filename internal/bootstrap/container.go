package bootstrap

import (
	"log"

	"support-assistant-be/internal/config"
	"support-assistant-be/internal/controller"
	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/repository/file"
	"support-assistant-be/internal/service"
	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/llm"
	"support-assistant-be/pkg/llm/factory"
	"support-assistant-be/pkg/rag/history"
	"support-assistant-be/pkg/rag/response"
	"support-assistant-be/pkg/rag/search"
	"support-assistant-be/pkg/rag/session"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	KnowledgeController controller.IKnowledgeController

	// Exposed for main.go: startup data load and shutdown flushing.
	KnowledgeService service.IKnowledgeService
	Memory           *history.Memory
	Logger           logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Embedding provider
	var embeddingProvider embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", embeddingProvider.Model())
	case "jina":
		embeddingProvider = embedding.NewJinaProvider(cfg.Keys.Jina, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	case "openai":
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI")
	default:
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// 3. Generation providers, ordered primary then fallback credential
	providers := buildLLMProviders(cfg)

	// 4. Persistence
	knowledgeRepo, err := file.NewKnowledgeRepository(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize knowledge repository: %v", err)
	}
	feedbackRepo, err := file.NewFeedbackRepository(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize feedback repository: %v", err)
	}

	// 5. Domain components
	splitter := chunker.NewSplitter(0, 0)
	registry := session.NewRegistry(knowledgeRepo, embeddingProvider, splitter, sysLogger)
	orchestrator := search.NewOrchestrator(sysLogger)
	generator := response.NewGenerator(providers, response.DefaultTimeout, sysLogger)
	memory := history.NewMemory(history.DefaultMaxMessages, history.DefaultMaxIdle)

	// 6. Services
	knowledgeService := service.NewKnowledgeService(registry, knowledgeRepo, embeddingProvider, splitter, cfg.Storage.DefaultDataFile, sysLogger)
	chatService := service.NewChatService(registry, orchestrator, generator, memory, knowledgeService, sysLogger)
	feedbackService := service.NewFeedbackService(feedbackRepo, sysLogger)

	// 7. Controllers
	return &Container{
		ChatController:      controller.NewChatController(chatService, feedbackService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		KnowledgeService:    knowledgeService,
		Memory:              memory,
		Logger:              sysLogger,
	}
}

// buildLLMProviders returns the generation credential rotation: one
// provider per API key, primary first. Rotation swaps providers, never
// mutates key state inside one.
func buildLLMProviders(cfg *config.Config) []llm.LLMProvider {
	apiKeys := []string{primaryKey(cfg)}
	if cfg.Ai.LLMProvider == "gemini" && cfg.Keys.GoogleGeminiFallback != "" {
		apiKeys = append(apiKeys, cfg.Keys.GoogleGeminiFallback)
	}

	var providers []llm.LLMProvider
	for _, key := range apiKeys {
		provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, providerBaseURL(cfg), key)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
		}
		providers = append(providers, provider)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s), %d credential(s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel, len(providers))
	return providers
}

func primaryKey(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "openai":
		return cfg.Keys.OpenAI
	case "ollama":
		return ""
	default:
		return cfg.Keys.GoogleGemini
	}
}

func providerBaseURL(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "openai":
		return cfg.Ai.OpenAIBaseURL
	case "ollama":
		return cfg.Ai.OllamaBaseURL
	default:
		return ""
	}
}
