package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	config := GetDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/chartscrub/")
	viper.AddConfigPath("$HOME/.chartscrub/")

	// Environment variable overrides
	viper.SetEnvPrefix("CHARTSCRUB")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	if config.Embeddings.Type != "hash" && config.Embeddings.Type != "ml" {
		return fmt.Errorf("invalid embedding service type: %s (must be hash or ml)", config.Embeddings.Type)
	}

	if config.Redact.MinNERScore < 0 || config.Redact.MinNERScore > 1 {
		return fmt.Errorf("invalid min NER score: %f", config.Redact.MinNERScore)
	}

	if config.Template.MinNgramSize < 1 || config.Template.MaxNgramSize < config.Template.MinNgramSize {
		return fmt.Errorf("invalid template n-gram sizes: min=%d max=%d",
			config.Template.MinNgramSize, config.Template.MaxNgramSize)
	}

	if config.Dedup.SimilarityThreshold <= 0 || config.Dedup.SimilarityThreshold > 1 {
		return fmt.Errorf("invalid similarity threshold: %f", config.Dedup.SimilarityThreshold)
	}

	if config.Store.Enabled && config.Store.DatabaseURL == "" {
		return fmt.Errorf("store enabled but database_url is empty")
	}

	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("cache enabled but redis_url is empty")
	}

	return nil
}

// Watch starts watching the configuration file for changes
func Watch(config *Config, callback func(*Config)) error {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig := GetDefaults()
		if err := viper.Unmarshal(newConfig); err != nil {
			// Keep running on the previous configuration
			return
		}

		if err := validateConfig(newConfig); err != nil {
			return
		}

		callback(newConfig)
	})

	return nil
}
