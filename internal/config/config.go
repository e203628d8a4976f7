package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	NatsURL         string
	NatsToken       string
	DatabaseURL     string
	LogLevel        string
	APIToken        string
	LLMProvider     string
	LLMTimeout      time.Duration
	LLMMaxRetries   int
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	DefaultLanguage string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            envInt("SCRIBE_PORT", 8760),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		APIToken:        envStr("SCRIBE_API_TOKEN", ""),
		LLMProvider:     envStr("LLM_PROVIDER", "gemini"),
		LLMTimeout:      envDuration("LLM_TIMEOUT", 5*time.Minute),
		LLMMaxRetries:   envInt("LLM_MAX_RETRIES", 2),
		GeminiAPIKey:    envStr("GEMINI_API_KEY", ""),
		GeminiModel:     envStr("GEMINI_MODEL", "gemini-1.5-pro"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   envStr("OPENAI_BASE_URL", ""),
		DefaultLanguage: envStr("SCRIBE_DEFAULT_LANGUAGE", "english"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
