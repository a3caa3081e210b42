package agent

import (
	"os"

	"github.com/randalmurphal/researchflow/pkg/workflow/config"
)

// Config carries the runtime settings for the research agent and its
// surrounding services.
type Config struct {
	// Model is the chat model identifier.
	Model string

	// Debug enables debug-level logging, including tool output previews.
	Debug bool

	// MaxToolLoops bounds tool round-trips per research phase.
	MaxToolLoops int

	// TavilyAPIKey enables live web search when set.
	TavilyAPIKey string

	// OpenAIAPIKey authenticates model calls.
	OpenAIAPIKey string

	// OpenAIBaseURL overrides the model endpoint, for gateways and
	// compatible providers.
	OpenAIBaseURL string

	// CheckpointDB is the SQLite path for durable suspensions.
	CheckpointDB string

	// Addr is the HTTP listen address.
	Addr string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Model:        "gpt-5-mini",
		Debug:        true,
		MaxToolLoops: 3,
		CheckpointDB: "checkpoints.db",
		Addr:         ":8000",
	}
}

// LoadConfig reads configuration from the environment. RESEARCHFLOW_*
// variables carry the agent settings; provider credentials keep their
// conventional unprefixed names.
func LoadConfig() Config {
	cfg := DefaultConfig()
	env := config.FromEnv("RESEARCHFLOW")

	cfg.Model = env.String("model", cfg.Model)
	cfg.Debug = env.Bool("debug", cfg.Debug)
	cfg.MaxToolLoops = env.Int("max_tool_loops", cfg.MaxToolLoops)
	cfg.CheckpointDB = env.String("checkpoint_db", cfg.CheckpointDB)
	cfg.Addr = env.String("addr", cfg.Addr)

	cfg.TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")

	return cfg
}
