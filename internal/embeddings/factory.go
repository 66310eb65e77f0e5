package embeddings

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ServiceType represents the type of embedding service
type ServiceType string

const (
	// HashEmbedding uses deterministic hash-based embeddings with clinical
	// feature boosting. Fast, no model download, fully reproducible.
	HashEmbedding ServiceType = "hash"

	// MLEmbedding uses a transformer backend with Redis caching for
	// semantic understanding, falling back to hybrid features.
	MLEmbedding ServiceType = "ml"
)

// ServiceConfig contains configuration for embedding service selection
type ServiceConfig struct {
	Type         ServiceType `yaml:"type" mapstructure:"type"`
	ModelConfig  ModelConfig `yaml:"model" mapstructure:"model"`
	RedisEnabled bool        `yaml:"redis_enabled" mapstructure:"redis_enabled"`
	RedisURL     string      `yaml:"redis_url" mapstructure:"redis_url"`
}

// Factory creates embedding services based on configuration
type Factory struct {
	logger *zap.Logger
}

// NewFactory creates a new embedding service factory
func NewFactory(logger *zap.Logger) *Factory {
	return &Factory{logger: logger}
}

// CreateService creates an embedding service based on the configuration
func (f *Factory) CreateService(config ServiceConfig) (EmbeddingService, error) {
	if err := ValidateServiceConfig(config); err != nil {
		return nil, err
	}
	switch config.Type {
	case HashEmbedding:
		service, err := NewHashEmbeddingService(&config.ModelConfig, f.logger)
		if err != nil {
			return nil, err
		}
		f.logger.Info("Created hash embedding service")
		return service, nil
	case MLEmbedding:
		var redisClient *redis.Client
		if config.RedisEnabled {
			redisClient = redis.NewClient(&redis.Options{Addr: config.RedisURL})
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				f.logger.Warn("Redis connection failed, disabling cache", zap.Error(err))
				redisClient = nil
			}
		}
		service, err := NewMLEmbeddingService(config.ModelConfig, f.logger, redisClient)
		if err != nil {
			return nil, err
		}
		f.logger.Info("Created ML embedding service")
		return service, nil
	default:
		return nil, fmt.Errorf("unknown embedding service type: %s", config.Type)
	}
}

// ValidateServiceConfig validates the embedding service configuration
func ValidateServiceConfig(config ServiceConfig) error {
	switch config.Type {
	case HashEmbedding, MLEmbedding:
	default:
		return fmt.Errorf("invalid service type: %s (must be one of: hash, ml)", config.Type)
	}

	if config.ModelConfig.ModelName == "" {
		return fmt.Errorf("model name is required")
	}
	if config.ModelConfig.MaxLength <= 0 {
		return fmt.Errorf("max_length must be positive")
	}
	if config.ModelConfig.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if config.Type == MLEmbedding && config.RedisEnabled && config.RedisURL == "" {
		return fmt.Errorf("redis_url is required when redis_enabled is true for ML service")
	}
	return nil
}

// CreateDefaultConfig creates a default configuration for a service type
func CreateDefaultConfig(serviceType ServiceType) ServiceConfig {
	base := ServiceConfig{
		Type: serviceType,
		ModelConfig: ModelConfig{
			ModelName:    "default",
			MaxLength:    512,
			BatchSize:    32,
			ModelTimeout: 30000000000, // 30 seconds in nanoseconds
		},
	}

	if serviceType == MLEmbedding {
		base.ModelConfig.ModelName = "sentence-transformers/all-MiniLM-L6-v2"
		base.ModelConfig.ModelPath = "./models/minilm-l6-v2.onnx"
		base.RedisEnabled = true
		base.RedisURL = "localhost:6379"
	}
	return base
}
