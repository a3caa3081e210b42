package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "gpt-5-mini", cfg.Model)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 3, cfg.MaxToolLoops)
	assert.Equal(t, "checkpoints.db", cfg.CheckpointDB)
	assert.Equal(t, ":8000", cfg.Addr)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("RESEARCHFLOW_MODEL", "gpt-5")
	t.Setenv("RESEARCHFLOW_DEBUG", "false")
	t.Setenv("RESEARCHFLOW_MAX_TOOL_LOOPS", "5")
	t.Setenv("RESEARCHFLOW_CHECKPOINT_DB", "/tmp/cp.db")
	t.Setenv("RESEARCHFLOW_ADDR", ":9000")
	t.Setenv("TAVILY_API_KEY", "tv-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("OPENAI_BASE_URL", "https://gw.example/v1")

	cfg := LoadConfig()

	assert.Equal(t, "gpt-5", cfg.Model)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 5, cfg.MaxToolLoops)
	assert.Equal(t, "/tmp/cp.db", cfg.CheckpointDB)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "tv-key", cfg.TavilyAPIKey)
	assert.Equal(t, "oa-key", cfg.OpenAIAPIKey)
	assert.Equal(t, "https://gw.example/v1", cfg.OpenAIBaseURL)
}
