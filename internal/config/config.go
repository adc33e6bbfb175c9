// Package config loads staffplan settings from a TOML file and the
// environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/alexanderramin/staffplan/internal/llm"
)

//go:embed sample_config.toml
var sampleConfig string

// LLM configures the recommendation model.
type LLM struct {
	Enabled    bool   `toml:"enabled"`
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	Endpoint   string `toml:"endpoint"`
	TimeoutMs  int    `toml:"timeout_ms"`
	MaxRetries int    `toml:"max_retries"`
	LogCalls   bool   `toml:"log_calls"`
}

// Store configures the scenario database.
type Store struct {
	Path string `toml:"path"`
}

// Server configures the HTTP API.
type Server struct {
	Addr               string  `toml:"addr"`
	RecommendPerMinute float64 `toml:"recommend_per_minute"`
	RecommendBurst     int     `toml:"recommend_burst"`
	LockFile           string  `toml:"lock_file"`
}

// Log configures zap output.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for staffplan.
type Config struct {
	LLM    LLM    `toml:"llm"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := llm.DefaultConfig()
	return Config{
		LLM: LLM{
			Enabled:    d.Enabled,
			Provider:   string(d.Provider),
			Model:      d.Model,
			TimeoutMs:  d.TimeoutMs,
			MaxRetries: d.MaxRetries,
		},
		Store: Store{Path: "~/.local/share/staffplan/staffplan.db"},
		Server: Server{
			Addr:               "127.0.0.1:8080",
			RecommendPerMinute: 6,
			RecommendBurst:     2,
			LockFile:           "~/.local/share/staffplan/serve.lock",
		},
		Log: Log{
			Level:  "info",
			Format: "json",
			Output: "stderr",
			File:   "~/.local/state/staffplan/staffplan.log",
		},
	}
}

// Sample returns the commented sample configuration file.
func Sample() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/staffplan/config.toml")
}

// Load resolves the config file (explicit path, $STAFFPLAN_CONFIG, then the
// default location), decodes it over the defaults and applies environment
// overrides. It reports the resolved path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("STAFFPLAN_CONFIG")
	}
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		dec := toml.NewDecoder(file)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setString(&c.Store.Path, "STAFFPLAN_STORE_PATH")
	setString(&c.Server.Addr, "STAFFPLAN_SERVER_ADDR")
	setString(&c.Server.LockFile, "STAFFPLAN_SERVER_LOCK_FILE")
	setString(&c.Log.Level, "STAFFPLAN_LOG_LEVEL")
	setString(&c.Log.Format, "STAFFPLAN_LOG_FORMAT")
	setString(&c.Log.Output, "STAFFPLAN_LOG_OUTPUT")
	setString(&c.Log.File, "STAFFPLAN_LOG_FILE")
	if v := os.Getenv("STAFFPLAN_SERVER_RECOMMEND_PER_MINUTE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Server.RecommendPerMinute = f
		}
	}
}

func (c *Config) normalize() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	for _, p := range []*string{&c.Store.Path, &c.Server.LockFile, &c.Log.File} {
		if *p == "" || *p == ":memory:" {
			continue
		}
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	if c.Log.Output != "" && c.Log.Output != "stderr" && c.Log.Output != "stdout" {
		expanded, err := ExpandPath(c.Log.Output)
		if err != nil {
			return err
		}
		c.Log.Output = expanded
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderGemini, llm.ProviderOllama, llm.ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q must be gemini, ollama or openai", c.LLM.Provider))
	}
	if c.LLM.TimeoutMs < 0 {
		errs = append(errs, errors.New("llm.timeout_ms must be >= 0"))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("llm.max_retries must be >= 0"))
	}
	if c.Server.RecommendPerMinute < 0 {
		errs = append(errs, errors.New("server.recommend_per_minute must be >= 0"))
	}
	if c.Server.RecommendBurst < 1 {
		errs = append(errs, errors.New("server.recommend_burst must be >= 1"))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	return errors.Join(errs...)
}

// LLMConfig converts the [llm] section, then lets STAFFPLAN_LLM_* variables
// override it.
func (c *Config) LLMConfig() llm.LLMConfig {
	out := llm.DefaultConfig()
	out.Enabled = c.LLM.Enabled
	out.Provider = llm.Provider(c.LLM.Provider)
	out.Model = c.LLM.Model
	if out.Model == "" {
		out.Model = llm.DefaultModel(out.Provider)
	}
	out.APIKey = c.LLM.APIKey
	out.Endpoint = c.LLM.Endpoint
	out.TimeoutMs = c.LLM.TimeoutMs
	out.MaxRetries = c.LLM.MaxRetries
	out.LogCalls = c.LLM.LogCalls
	llm.ApplyEnv(&out)
	return out
}

// ExpandPath expands a leading ~ and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// WriteSample writes the sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(expanded, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}
