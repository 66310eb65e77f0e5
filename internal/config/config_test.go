package config

import (
	"testing"
)

func TestGetDefaultsIsValid(t *testing.T) {
	cfg := GetDefaults()
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("default configuration failed validation: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Embeddings.Type != "hash" {
		t.Errorf("default embedding type = %q, want hash", cfg.Embeddings.Type)
	}
	if cfg.Store.Enabled || cfg.Cache.Enabled {
		t.Error("store and cache default to disabled")
	}
}

func TestValidateConfigRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad embedding type", func(c *Config) { c.Embeddings.Type = "quantum" }},
		{"bad ner score", func(c *Config) { c.Redact.MinNERScore = 1.5 }},
		{"bad ngram sizes", func(c *Config) { c.Template.MaxNgramSize = 1; c.Template.MinNgramSize = 3 }},
		{"bad similarity threshold", func(c *Config) { c.Dedup.SimilarityThreshold = 0 }},
		{"store enabled without url", func(c *Config) { c.Store.Enabled = true; c.Store.DatabaseURL = "" }},
		{"cache enabled without url", func(c *Config) { c.Cache.Enabled = true; c.Cache.RedisURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
