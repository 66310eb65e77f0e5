package ner

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Provider holds a process-wide Recognizer handle, loaded at most once.
// Concurrent first callers join the same in-flight load instead of
// triggering duplicate loads; after initialization the handle is read-only.
type Provider struct {
	loadFn func(ctx context.Context) (Recognizer, error)
	logger *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	rec   Recognizer
}

// NewProvider creates a provider around a load function. The load function
// runs at most once across all callers.
func NewProvider(loadFn func(ctx context.Context) (Recognizer, error), logger *zap.Logger) *Provider {
	return &Provider{loadFn: loadFn, logger: logger}
}

// Get returns the shared Recognizer, loading it on first use.
func (p *Provider) Get(ctx context.Context) (Recognizer, error) {
	p.mu.RLock()
	if p.rec != nil {
		rec := p.rec
		p.mu.RUnlock()
		return rec, nil
	}
	p.mu.RUnlock()

	v, err, shared := p.group.Do("ner-model", func() (interface{}, error) {
		rec, err := p.loadFn(ctx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.rec = rec
		p.mu.Unlock()
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Debug("NER model load shared with concurrent caller")
	}
	return v.(Recognizer), nil
}

// Close releases the loaded recognizer, if any.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rec == nil {
		return nil
	}
	err := p.rec.Close()
	p.rec = nil
	return err
}
