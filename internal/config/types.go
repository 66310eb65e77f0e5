package config

import (
	"time"

	"github.com/chartscrub/chartscrub/internal/cache"
	"github.com/chartscrub/chartscrub/internal/dedup"
	"github.com/chartscrub/chartscrub/internal/embeddings"
	"github.com/chartscrub/chartscrub/internal/events"
	"github.com/chartscrub/chartscrub/internal/ner"
	"github.com/chartscrub/chartscrub/internal/pipeline"
	"github.com/chartscrub/chartscrub/internal/redact"
	"github.com/chartscrub/chartscrub/internal/server"
	"github.com/chartscrub/chartscrub/internal/store"
	"github.com/chartscrub/chartscrub/internal/template"
)

// Config represents the main configuration structure
type Config struct {
	Server     server.Config             `yaml:"server" mapstructure:"server"`
	Logging    LoggingConfig             `yaml:"logging" mapstructure:"logging"`
	Redact     redact.Config             `yaml:"redact" mapstructure:"redact"`
	NER        ner.Config                `yaml:"ner" mapstructure:"ner"`
	Template   template.Config           `yaml:"template" mapstructure:"template"`
	Dedup      dedup.Config              `yaml:"dedup" mapstructure:"dedup"`
	Embeddings embeddings.ServiceConfig  `yaml:"embeddings" mapstructure:"embeddings"`
	Cache      CacheConfig               `yaml:"cache" mapstructure:"cache"`
	Store      StoreConfig               `yaml:"store" mapstructure:"store"`
	Pipeline   pipeline.Config           `yaml:"pipeline" mapstructure:"pipeline"`
	Events     events.HubConfig          `yaml:"events" mapstructure:"events"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
		Path     string `yaml:"path" mapstructure:"path"`
		MaxSize  int    `yaml:"max_size" mapstructure:"max_size"`
		MaxAge   int    `yaml:"max_age" mapstructure:"max_age"`
		Compress bool   `yaml:"compress" mapstructure:"compress"`
	} `yaml:"file" mapstructure:"file"`
}

// CacheConfig gates the redis embedding cache
type CacheConfig struct {
	Enabled      bool `yaml:"enabled" mapstructure:"enabled"`
	cache.Config `yaml:",inline" mapstructure:",squash"`
}

// StoreConfig gates the Postgres document store
type StoreConfig struct {
	Enabled      bool `yaml:"enabled" mapstructure:"enabled"`
	store.Config `yaml:",inline" mapstructure:",squash"`
}

// GetDefaults returns the default configuration
func GetDefaults() *Config {
	return &Config{
		Server: *server.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Redact: redact.DefaultConfig(),
		NER: ner.Config{
			Endpoint:       "http://localhost:8000/ner",
			ModelName:      "clinical-ner",
			RequestTimeout: 30 * time.Second,
			RequestsPerSec: 10,
			Burst:          20,
		},
		Template:   template.DefaultConfig(),
		Dedup:      dedup.DefaultConfig(),
		Embeddings: embeddings.CreateDefaultConfig(embeddings.HashEmbedding),
		Cache: CacheConfig{
			Enabled: false,
			Config:  cache.DefaultConfig(),
		},
		Store: StoreConfig{
			Enabled: false,
			Config:  *store.DefaultConfig(),
		},
		Pipeline: *pipeline.DefaultConfig(),
		Events:   *events.DefaultHubConfig(),
	}
}
