package cache

import (
	"time"
)

// CachedEmbedding is one cached document embedding.
type CachedEmbedding struct {
	ContentHash string    `json:"content_hash"`
	Embedding   []float32 `json:"embedding"`
	Dimensions  int       `json:"dimensions"`
	CachedAt    time.Time `json:"cached_at"`
}

// Stats represents cache performance statistics
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	TotalKeys int64   `json:"total_keys"`
}

// Config contains cache configuration
type Config struct {
	RedisURL       string        `yaml:"redis_url" mapstructure:"redis_url"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DefaultTTL     time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	KeyPrefix      string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// DefaultConfig returns the reference cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisURL:       "redis://localhost:6379/0",
		MaxConnections: 10,
		MinIdleConns:   2,
		DefaultTTL:     6 * time.Hour,
		KeyPrefix:      "chartscrub:embedding:",
	}
}
