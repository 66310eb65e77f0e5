package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EmbeddingCache handles Redis-based caching of document embeddings keyed by
// content hash. Embeddings are expensive to compute and fully deterministic
// per scrubbed document, so corpus re-runs hit the cache almost entirely.
type EmbeddingCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger
	hits   int64
	misses int64
}

// NewEmbeddingCache creates a new Redis-based embedding cache
func NewEmbeddingCache(config *Config, logger *zap.Logger) (*EmbeddingCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	c := &EmbeddingCache{
		client: client,
		config: config,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Embedding cache initialized",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Int("max_connections", config.MaxConnections),
		zap.Duration("default_ttl", config.DefaultTTL))

	return c, nil
}

// Get looks up the embedding for a content hash. A miss returns nil without
// error.
func (c *EmbeddingCache) Get(ctx context.Context, contentHash string) (*CachedEmbedding, error) {
	data, err := c.client.Get(ctx, c.key(contentHash)).Result()
	if err == redis.Nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	if err != nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	var cached CachedEmbedding
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		c.logger.Error("Failed to unmarshal cached embedding", zap.Error(err))
		c.client.Del(ctx, c.key(contentHash))
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}

	atomic.AddInt64(&c.hits, 1)
	return &cached, nil
}

// Set stores one embedding under its content hash.
func (c *EmbeddingCache) Set(ctx context.Context, contentHash string, embedding []float32) error {
	cached := CachedEmbedding{
		ContentHash: contentHash,
		Embedding:   embedding,
		Dimensions:  len(embedding),
		CachedAt:    time.Now(),
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return c.client.Set(ctx, c.key(contentHash), data, c.config.DefaultTTL).Err()
}

// SetBatch stores multiple embeddings in one pipeline round trip.
func (c *EmbeddingCache) SetBatch(ctx context.Context, embeddings map[string][]float32) error {
	pipe := c.client.Pipeline()
	now := time.Now()
	for hash, embedding := range embeddings {
		cached := CachedEmbedding{
			ContentHash: hash,
			Embedding:   embedding,
			Dimensions:  len(embedding),
			CachedAt:    now,
		}
		data, err := json.Marshal(cached)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding for %s: %w", hash, err)
		}
		pipe.Set(ctx, c.key(hash), data, c.config.DefaultTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Stats returns cache performance counters.
func (c *EmbeddingCache) Stats(ctx context.Context) (*Stats, error) {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	stats := &Stats{
		Hits:   hits,
		Misses: misses,
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}

	keys, err := c.client.Keys(ctx, c.config.KeyPrefix+"*").Result()
	if err == nil {
		stats.TotalKeys = int64(len(keys))
	}
	return stats, nil
}

// Clear removes every cached embedding under this cache's prefix.
func (c *EmbeddingCache) Clear(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, c.config.KeyPrefix+"*").Result()
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Close releases the Redis connection pool.
func (c *EmbeddingCache) Close() error {
	return c.client.Close()
}

func (c *EmbeddingCache) key(contentHash string) string {
	return c.config.KeyPrefix + contentHash
}

// maskRedisURL hides credentials in a Redis URL for logging.
func maskRedisURL(url string) string {
	if at := strings.Index(url, "@"); at != -1 {
		if scheme := strings.Index(url, "://"); scheme != -1 {
			return url[:scheme+3] + "***" + url[at:]
		}
	}
	return url
}
