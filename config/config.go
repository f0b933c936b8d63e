// Package config reads ChefBot's process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/models"
)

// Config holds all configuration for the chefbot process.
type Config struct {
	Groq          GroqConfig
	Model         string
	ToolModel     string
	CompareModels []string
	MaxIterations int
	LogLevel      string
	Port          int
	Langfuse      LangfuseConfig
	Telemetry     TelemetryConfig
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
}

type LangfuseConfig struct {
	BaseURL   string
	PublicKey string
	SecretKey string
}

// Enabled reports whether both Langfuse keys are set.
func (c LangfuseConfig) Enabled() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Groq: GroqConfig{
			APIKey:  envStr("GROQ_API_KEY", ""),
			BaseURL: envStr("GROQ_BASE_URL", models.GroqBaseURL),
		},
		Model:     envStr("CHEFBOT_MODEL", chefbot.DefaultModel),
		ToolModel: envStr("CHEFBOT_TOOL_MODEL", chefbot.DefaultToolModel),
		CompareModels: envList("CHEFBOT_COMPARE_MODELS", []string{
			chefbot.ModelLlama33Large,
			chefbot.ModelLlama4Scout,
		}),
		MaxIterations: envInt("CHEFBOT_MAX_ITERATIONS", 5),
		LogLevel:      envStr("CHEFBOT_LOG_LEVEL", "info"),
		Port:          envInt("CHEFBOT_PORT", 8080),
		Langfuse: LangfuseConfig{
			BaseURL:   envStr("LANGFUSE_BASE_URL", "https://cloud.langfuse.com"),
			PublicKey: envStr("LANGFUSE_PUBLIC_KEY", ""),
			SecretKey: envStr("LANGFUSE_SECRET_KEY", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "chefbot"),
		},
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
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
