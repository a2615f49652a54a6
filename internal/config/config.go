package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string

	LLMProvider     string
	ModelName       string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// GenerationTimeout bounds a single generation call.
	GenerationTimeout time.Duration

	// ContentRating gates the family-friendly word filter (G/PG/PG13).
	ContentRating string
}

func Load() (*Config, error) {
	timeoutSecs, err := strconv.Atoi(getEnv("GENERATION_TIMEOUT", "60"))
	if err != nil || timeoutSecs <= 0 {
		return nil, fmt.Errorf("invalid GENERATION_TIMEOUT: %q", os.Getenv("GENERATION_TIMEOUT"))
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:          getEnv("REDIS_URL", "localhost:6379"),
		LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
		ModelName:         getEnv("MODEL_NAME", "gpt-4o"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GenerationTimeout: time.Duration(timeoutSecs) * time.Second,
		ContentRating:     os.Getenv("CONTENT_RATING"),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
