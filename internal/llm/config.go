package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskRecommend TaskType = "recommend"
)

// Provider selects the model backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled  bool
	Provider Provider
	LogCalls bool
	Endpoint string // empty uses the provider's public endpoint
	Model    string
	APIKey   string
	// TimeoutMs of 0 adds no deadline beyond the transport's own.
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns the Gemini setup the dashboard uses out of the box.
// No retries and no extra deadline: a failed call degrades immediately.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		Provider:   ProviderGemini,
		Model:      "gemini-2.5-flash",
		TimeoutMs:  0,
		MaxRetries: 0,
		Tasks: map[TaskType]TaskConfig{
			TaskRecommend: {Temperature: 0.2, MaxTokens: 4096},
		},
	}
}

// DefaultModel is the model used when none is configured for p.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOllama:
		return "llama3.2"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "gemini-2.5-flash"
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overlays STAFFPLAN_LLM_* variables onto cfg. The API key falls
// back to the provider's conventional variable when not set explicitly.
func ApplyEnv(cfg *LLMConfig) {
	if v := os.Getenv("STAFFPLAN_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("STAFFPLAN_LLM_PROVIDER"); v != "" {
		prev := cfg.Provider
		cfg.Provider = Provider(strings.ToLower(v))
		if cfg.Model == "" || cfg.Model == DefaultModel(prev) {
			cfg.Model = DefaultModel(cfg.Provider)
		}
	}
	if v := os.Getenv("STAFFPLAN_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("STAFFPLAN_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("STAFFPLAN_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("STAFFPLAN_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("STAFFPLAN_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	applyTaskTimeoutEnv(cfg, TaskRecommend, "STAFFPLAN_LLM_RECOMMEND_TIMEOUT_MS")

	if v := os.Getenv("STAFFPLAN_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if cfg.APIKey == "" {
		for _, name := range apiKeyEnv(cfg.Provider) {
			if v := os.Getenv(name); v != "" {
				cfg.APIKey = v
				break
			}
		}
	}
}

func apiKeyEnv(p Provider) []string {
	switch p {
	case ProviderOpenAI:
		return []string{"OPENAI_API_KEY"}
	case ProviderGemini:
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}
	}
	return nil
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// ModelName returns the configured model or the provider default.
func (c LLMConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = map[TaskType]TaskConfig{}
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
