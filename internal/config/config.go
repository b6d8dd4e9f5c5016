package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Ai        AIConfig
	Engraving EngravingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type AIConfig struct {
	Provider        string // "anthropic" or "ollama"
	Model           string
	AnthropicAPIKey string
	OllamaBaseURL   string
	MaxTokens       int
}

type EngravingConfig struct {
	Enabled bool
	Model   string // fast model for the polishing pass
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8765"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8765"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Ai: AIConfig{
			Provider:        getEnv("LLM_PROVIDER", "anthropic"),
			Model:           getEnv("LLM_MODEL", "claude-sonnet-4-20250514"),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 8192),
		},
		Engraving: EngravingConfig{
			Enabled: getEnv("ENGRAVING_ENABLED", "true") == "true",
			Model:   getEnv("ENGRAVING_MODEL", "claude-3-5-haiku-20241022"),
		},
	}
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
