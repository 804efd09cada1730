package llm

import (
	"context"
	"time"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/cache"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// Factory builds chat adapters from configuration and resolved credentials.
type Factory struct {
	models   config.ModelsConfig
	resolver *Resolver
	cache    cache.Client
	cacheTTL time.Duration
	logger   *observability.Logger
}

// NewFactory creates a factory. c may be nil to disable completion caching.
func NewFactory(models config.ModelsConfig, resolver *Resolver, c cache.Client, cacheTTL time.Duration, logger *observability.Logger) *Factory {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Factory{
		models:   models,
		resolver: resolver,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger.WithComponent("llm"),
	}
}

// Adapter returns the adapter for provider. Without a credential, or for an unknown
// provider, the adapter is disabled.
func (f *Factory) Adapter(ctx context.Context, provider string, callTimeout time.Duration) ChatAdapter {
	var cfg config.ModelConfig
	switch provider {
	case ProviderGeneral:
		cfg = f.models.General
	case ProviderConstitutional:
		cfg = f.models.Constitutional
	default:
		return NewDisabledAdapter(provider, "unknown provider")
	}

	key, source := f.resolver.Resolve(ctx, provider)
	if key == "" {
		f.logger.Debug().Str("provider", provider).Msg("no credential found, adapter disabled")
		return NewDisabledAdapter(provider, "no credential")
	}
	f.logger.Debug().Str("provider", provider).Str("credential_source", source).Msg("adapter enabled")

	retry := RetryPolicyFrom(f.models.Retry, callTimeout)
	var adapter ChatAdapter
	if provider == ProviderGeneral {
		adapter = NewGeneralChat(key, cfg, retry, f.logger)
	} else {
		adapter = NewConstitutionalChat(key, cfg, retry, f.logger)
	}

	if f.cache != nil {
		adapter = NewCachedAdapter(adapter, cfg.Model, f.cache, f.cacheTTL, f.logger)
	}
	return adapter
}
