package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client calls a remote span-labeling inference endpoint. Each call carries a
// hard deadline; a timeout is a failure for that chunk, never a silent drop.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a rate-limited NER client.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("ner: endpoint is required")
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.RequestsPerSec <= 0 {
		config.RequestsPerSec = 10
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSec), config.Burst),
		logger:  logger,
	}

	logger.Info("NER client initialized",
		zap.String("endpoint", config.Endpoint),
		zap.String("model", config.ModelName),
		zap.Duration("request_timeout", config.RequestTimeout),
		zap.Float64("requests_per_sec", config.RequestsPerSec))

	return client, nil
}

// Recognize submits one chunk and returns its entity spans ordered by start
// offset.
func (c *Client) Recognize(ctx context.Context, text string) ([]Span, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ner: rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	body := request{Text: text}
	body.Options.AggregationStrategy = "simple"
	body.Options.IgnoredLabels = []string{"O"}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ner: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ner: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner: inference call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ner: inference returned HTTP %d: %s", resp.StatusCode, string(data))
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("ner: decode response: %w", err)
	}

	spans := parsed.Spans
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	c.logger.Debug("NER chunk processed",
		zap.Int("chunk_chars", len(text)),
		zap.Int("spans", len(spans)),
		zap.Duration("duration", time.Since(start)))

	return spans, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
