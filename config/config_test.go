package config

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	content := []byte(`
github:
  owner: acme
llm:
  provider: gemini
  model: gemini-1.5-pro
  temperature: 0.2
storage:
  backend: postgres
  dsn: postgres://localhost/prdigest
strict_model_match: true
log_level: debug
`)

	cfg, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.GitHub.Owner != "acme" {
		t.Errorf("GitHub.Owner = %q", cfg.GitHub.Owner)
	}
	if cfg.LLM.Provider != ProviderGemini {
		t.Errorf("LLM.Provider = %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("LLM.Temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.Storage.Backend != BackendPostgres {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if !cfg.StrictModelMatch {
		t.Error("StrictModelMatch should be true")
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.LLM.Provider != ProviderAnthropic {
		t.Errorf("default provider = %q, want %q", cfg.LLM.Provider, ProviderAnthropic)
	}
	if cfg.Storage.Backend != BackendJSONFile {
		t.Errorf("default backend = %q, want %q", cfg.Storage.Backend, BackendJSONFile)
	}
	if !cfg.Storage.Append {
		t.Error("default storage mode should be append")
	}
	if cfg.LLM.TokenBuffer != 1.1 {
		t.Errorf("default token buffer = %v, want 1.1", cfg.LLM.TokenBuffer)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "openai" },
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Storage.Backend = "sqlite" },
			wantErr: true,
		},
		{
			name: "postgres without dsn",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendPostgres
				c.Storage.DSN = ""
			},
			wantErr: true,
		},
		{
			name:    "jsonfile without path",
			mutate:  func(c *Config) { c.Storage.Path = "" },
			wantErr: true,
		},
		{
			name:    "append and overwrite conflict",
			mutate:  func(c *Config) { c.Storage.Overwrite = true },
			wantErr: true,
		},
		{
			name:    "neither append nor overwrite",
			mutate:  func(c *Config) { c.Storage.Append = false },
			wantErr: true,
		},
		{
			name: "overwrite alone",
			mutate: func(c *Config) {
				c.Storage.Append = false
				c.Storage.Overwrite = true
			},
		},
		{
			name: "token and app auth conflict",
			mutate: func(c *Config) {
				c.GitHub.Token = "ghp_x"
				c.GitHub.AppID = 1
				c.GitHub.InstallationID = 2
				c.GitHub.PrivateKeyPath = "key.pem"
			},
			wantErr: true,
		},
		{
			name: "app auth without installation",
			mutate: func(c *Config) {
				c.GitHub.AppID = 1
				c.GitHub.PrivateKeyPath = "key.pem"
			},
			wantErr: true,
		},
		{
			name: "complete app auth",
			mutate: func(c *Config) {
				c.GitHub.AppID = 1
				c.GitHub.InstallationID = 2
				c.GitHub.PrivateKeyPath = "key.pem"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error")
				}
				var confErr *ConfigurationError
				if !errors.As(err, &confErr) {
					t.Errorf("error = %T, want *ConfigurationError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}
