package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Keys    APIKeys
	Ai      AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	BodyLimitMB        int
}

type StorageConfig struct {
	DataDir         string
	DefaultDataFile string
}

type APIKeys struct {
	GoogleGemini         string
	GoogleGeminiFallback string
	OpenAI               string
	Jina                 string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama", "jina" or "openai"
	EmbeddingModel    string
	OllamaBaseURL     string
	LLMProvider       string // "gemini", "ollama", "openai"
	LLMModel          string
	OpenAIBaseURL     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			BodyLimitMB:        getEnvAsInt("BODY_LIMIT_MB", 10),
		},
		Storage: StorageConfig{
			DataDir:         getEnv("DATA_DIR", "data"),
			DefaultDataFile: getEnv("DEFAULT_DATA_FILE", "data/support_tickets.xlsx"),
		},
		Keys: APIKeys{
			GoogleGemini:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GoogleGeminiFallback: getEnv("GOOGLE_GEMINI_API_KEY_FALLBACK", ""),
			OpenAI:               getEnv("OPENAI_API_KEY", ""),
			Jina:                 getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		},
	}
}

// Validate checks whether the configured providers can actually run. A
// missing primary credential is fatal; a missing fallback credential only
// costs the quota-retry path, so it just warns.
func (c *Config) Validate() error {
	switch c.Ai.LLMProvider {
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			return fmt.Errorf("GOOGLE_GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
		if c.Keys.GoogleGeminiFallback == "" {
			log.Println("Warning: GOOGLE_GEMINI_API_KEY_FALLBACK not set, quota errors will not be retried")
		}
	case "openai":
		if c.Keys.OpenAI == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "ollama":
		// Local provider, no credential needed.
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Ai.LLMProvider)
	}

	switch c.Ai.EmbeddingProvider {
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			return fmt.Errorf("GOOGLE_GEMINI_API_KEY is required when EMBEDDING_PROVIDER=gemini")
		}
	case "jina":
		if c.Keys.Jina == "" {
			return fmt.Errorf("JINA_API_KEY is required when EMBEDDING_PROVIDER=jina")
		}
	case "openai":
		if c.Keys.OpenAI == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
	case "ollama":
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.Ai.EmbeddingProvider)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
