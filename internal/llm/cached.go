package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/cache"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// CachedAdapter serves repeated prompts from a cache. Cache failures never fail a call.
type CachedAdapter struct {
	inner  ChatAdapter
	model  string
	cache  cache.Client
	ttl    time.Duration
	logger *observability.Logger
}

// NewCachedAdapter wraps inner; model scopes the cache keys.
func NewCachedAdapter(inner ChatAdapter, model string, c cache.Client, ttl time.Duration, logger *observability.Logger) *CachedAdapter {
	if logger == nil {
		logger = observability.Nop()
	}
	return &CachedAdapter{
		inner:  inner,
		model:  model,
		cache:  c,
		ttl:    ttl,
		logger: logger.WithComponent("llm.cache"),
	}
}

func (a *CachedAdapter) Name() string  { return a.inner.Name() }
func (a *CachedAdapter) Enabled() bool { return a.inner.Enabled() }

func (a *CachedAdapter) Complete(ctx context.Context, prompt string, mode domain.Mode, maxTokens int) (*Completion, error) {
	key := cache.CompletionKey(a.inner.Name(), a.model, string(mode), prompt, maxTokens)

	data, err := a.cache.Get(ctx, key)
	switch {
	case err == nil:
		var c Completion
		if jsonErr := json.Unmarshal(data, &c); jsonErr == nil {
			c.Cached = true
			return &c, nil
		}
		a.logger.Warn().Str("key", key).Msg("discarding undecodable cached completion")
		if err := a.cache.Delete(ctx, key); err != nil {
			a.logger.Warn().Err(err).Msg("completion cache delete failed")
		}
	case !errors.Is(err, cache.ErrCacheMiss):
		a.logger.Warn().Err(err).Msg("completion cache read failed")
	}

	c, err := a.inner.Complete(ctx, prompt, mode, maxTokens)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(c); err == nil {
		if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
			a.logger.Warn().Err(err).Msg("completion cache write failed")
		}
	}
	return c, nil
}
