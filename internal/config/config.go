package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          int
	DatabaseURL   string
	NatsURL       string
	NatsToken     string
	LogLevel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ChatModel     string
	JWTSecret     string
}

func Load() Config {
	return Config{
		Port:          envInt("INTAKE_PORT", 8080),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:  envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL: envStr("OPENAI_BASE_URL", ""),
		ChatModel:     envStr("INTAKE_MODEL", "gpt-4o-mini"),
		JWTSecret:     envStr("JWT_SECRET", ""),
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
