package config_test

import (
	"testing"

	"github.com/randalmurphal/researchflow/pkg/workflow/config"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("RFTEST_MODEL", "gpt-5-mini")
	t.Setenv("RFTEST_DEBUG", "true")
	t.Setenv("RFTEST_MAX_TOOL_LOOPS", "3")
	t.Setenv("RFTEST_TEMPERATURE", "0.5")
	t.Setenv("OTHER_VALUE", "ignored")

	cfg := config.FromEnv("RFTEST")

	assert.Equal(t, "gpt-5-mini", cfg.String("model", ""))
	assert.True(t, cfg.Bool("debug", false))
	assert.Equal(t, 3, cfg.Int("max_tool_loops", 0))
	assert.Equal(t, 0.5, cfg.Float("temperature", 0))
	assert.False(t, cfg.Has("value"), "foreign prefix must not leak in")
}

func TestFromEnv_CoercionEdgeCases(t *testing.T) {
	t.Setenv("RFTEST2_FALSE_FLAG", "FALSE")
	t.Setenv("RFTEST2_NOT_A_NUMBER", "3fast")
	t.Setenv("RFTEST2_EMPTY", "")

	cfg := config.FromEnv("RFTEST2")

	assert.False(t, cfg.Bool("false_flag", true))
	assert.Equal(t, "3fast", cfg.String("not_a_number", ""))
	assert.True(t, cfg.Has("empty"))
	assert.Equal(t, "", cfg.String("empty", "default"))
}

func TestFromEnv_MissingPrefix(t *testing.T) {
	cfg := config.FromEnv("RFTEST_NO_SUCH_PREFIX")
	assert.Empty(t, cfg.Raw())
}
