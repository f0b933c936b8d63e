package config

import (
	"testing"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/models"
	"github.com/stretchr/testify/assert"
)

var allKeys = []string{
	"GROQ_API_KEY", "GROQ_BASE_URL", "CHEFBOT_MODEL", "CHEFBOT_TOOL_MODEL", "CHEFBOT_COMPARE_MODELS",
	"CHEFBOT_MAX_ITERATIONS", "CHEFBOT_LOG_LEVEL", "CHEFBOT_PORT", "LANGFUSE_BASE_URL",
	"LANGFUSE_PUBLIC_KEY", "LANGFUSE_SECRET_KEY", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_SERVICE_NAME",
}

func clearEnv(t *testing.T) {
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "", cfg.Groq.APIKey)
	assert.Equal(t, models.GroqBaseURL, cfg.Groq.BaseURL)
	assert.Equal(t, chefbot.DefaultModel, cfg.Model)
	assert.Equal(t, chefbot.DefaultToolModel, cfg.ToolModel)
	assert.Equal(t, []string{chefbot.ModelLlama33Large, chefbot.ModelLlama4Scout}, cfg.CompareModels)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.Langfuse.Enabled())
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, "chefbot", cfg.Telemetry.ServiceName)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CHEFBOT_MODEL", chefbot.ModelQwen3)
	t.Setenv("CHEFBOT_COMPARE_MODELS", " a/b , ,c ")
	t.Setenv("CHEFBOT_MAX_ITERATIONS", "8")
	t.Setenv("CHEFBOT_PORT", "not-a-number")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk-lf")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()
	assert.Equal(t, "gsk_test", cfg.Groq.APIKey)
	assert.Equal(t, chefbot.ModelQwen3, cfg.Model)
	assert.Equal(t, []string{"a/b", "c"}, cfg.CompareModels)
	assert.Equal(t, 8, cfg.MaxIterations)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Langfuse.Enabled())
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestEnvList_OnlySeparators(t *testing.T) {
	t.Setenv("CHEFBOT_COMPARE_MODELS", " , ")
	assert.Equal(t, []string{"x"}, envList("CHEFBOT_COMPARE_MODELS", []string{"x"}))
}
