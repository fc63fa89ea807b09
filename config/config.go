// Package config handles loading and validating prdigest configuration
// from a YAML file, .env files, and environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported model providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Supported storage backends.
const (
	BackendPostgres = "postgres"
	BackendJSONFile = "jsonfile"
)

// ConfigurationError indicates an invalid or inconsistent configuration.
// Construction fails loudly instead of deferring to a runtime error.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// GitHubConfig selects repository owner and authentication. Token auth
// and GitHub App auth are mutually exclusive.
type GitHubConfig struct {
	Owner          string `yaml:"owner" env:"PRDIGEST_GITHUB_OWNER"`
	Token          string `yaml:"-" env:"GITHUB_TOKEN"`
	AppID          int64  `yaml:"app_id" env:"GITHUB_APP_ID"`
	InstallationID int64  `yaml:"installation_id" env:"GITHUB_INSTALLATION_ID"`
	PrivateKeyPath string `yaml:"private_key_path" env:"GITHUB_PRIVATE_KEY_PATH"`
}

// LLMConfig selects the model client.
type LLMConfig struct {
	Provider        string  `yaml:"provider" env:"PRDIGEST_LLM_PROVIDER"`
	Model           string  `yaml:"model" env:"PRDIGEST_LLM_MODEL"`
	Temperature     float64 `yaml:"temperature" env:"PRDIGEST_LLM_TEMPERATURE"`
	TokenBuffer     float64 `yaml:"token_buffer" env:"PRDIGEST_LLM_TOKEN_BUFFER"`
	AnthropicAPIKey string  `yaml:"-" env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string  `yaml:"-" env:"GEMINI_API_KEY"`
}

// StorageConfig selects the summary store. Exactly one of Append and
// Overwrite must be set.
type StorageConfig struct {
	Backend   string `yaml:"backend" env:"PRDIGEST_STORAGE_BACKEND"`
	DSN       string `yaml:"dsn" env:"DATABASE_URL"`
	Path      string `yaml:"path" env:"PRDIGEST_STORAGE_PATH"`
	Append    bool   `yaml:"append"`
	Overwrite bool   `yaml:"overwrite"`
}

// PromptPair is a system/user template pair. Empty fields fall back to
// the compiled-in defaults.
type PromptPair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// PromptsConfig carries optional template overrides per workflow.
type PromptsConfig struct {
	PRSummary     PromptPair `yaml:"pr_summary"`
	WeeklySummary PromptPair `yaml:"weekly_summary"`
}

// Config is the whole prdigest configuration.
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Prompts PromptsConfig `yaml:"prompts"`
	// StrictModelMatch restricts cache reuse to summaries produced by the
	// same provider and model as the current client.
	StrictModelMatch bool   `yaml:"strict_model_match" env:"PRDIGEST_STRICT_MODEL_MATCH"`
	LogLevel         string `yaml:"log_level" env:"PRDIGEST_LOG_LEVEL"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderAnthropic,
			Temperature: 0,
			TokenBuffer: 1.1,
		},
		Storage: StorageConfig{
			Backend: BackendJSONFile,
			Path:    "_data/pr_summaries.jsonl",
			Append:  true,
		},
		LogLevel: "info",
	}
}

// Load reads configuration in layers: .env files via godotenv, then the
// YAML file at path (optional), then environment variable overrides.
func Load(path string) (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(content, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse parses a config from YAML content, applying defaults and
// validation. Used by tests and callers that manage files themselves.
func Parse(content []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unknown llm provider %q (must be %q or %q)", c.LLM.Provider, ProviderAnthropic, ProviderGemini)}
	}

	switch c.Storage.Backend {
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return &ConfigurationError{Reason: "storage backend postgres requires a dsn"}
		}
	case BackendJSONFile:
		if c.Storage.Path == "" {
			return &ConfigurationError{Reason: "storage backend jsonfile requires a path"}
		}
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unknown storage backend %q (must be %q or %q)", c.Storage.Backend, BackendPostgres, BackendJSONFile)}
	}

	if c.Storage.Append == c.Storage.Overwrite {
		if c.Storage.Append {
			return &ConfigurationError{Reason: "storage append and overwrite are mutually exclusive"}
		}
		return &ConfigurationError{Reason: "storage requires either append or overwrite mode"}
	}

	if c.GitHub.Token != "" && c.GitHub.AppID != 0 {
		return &ConfigurationError{Reason: "github token auth and app auth are mutually exclusive"}
	}
	if c.GitHub.AppID != 0 && (c.GitHub.InstallationID == 0 || c.GitHub.PrivateKeyPath == "") {
		return &ConfigurationError{Reason: "github app auth requires installation_id and private_key_path"}
	}

	return nil
}
