package llm

import (
	"context"
	"os"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
)

// CredentialStore is an embedder-supplied secret store.
type CredentialStore interface {
	Lookup(ctx context.Context, provider string) (key string, ok bool, err error)
}

// envVars names the environment variable holding each provider's key.
var envVars = map[string]string{
	ProviderGeneral:        "OPENAI_API_KEY",
	ProviderConstitutional: "ANTHROPIC_API_KEY",
}

// Resolver finds provider API keys. The default order is explicit configuration,
// then the credential store, then the environment; the configured credential
// source is tried first.
type Resolver struct {
	explicit map[string]string
	store    CredentialStore
	getenv   func(string) string
	order    []string
}

// NewResolver builds a resolver preferring source.
func NewResolver(source string, explicit map[string]string, store CredentialStore) *Resolver {
	order := []string{source}
	for _, s := range []string{config.CredentialManual, config.CredentialEmbeddedStore, config.CredentialEnv} {
		if s != source {
			order = append(order, s)
		}
	}
	return &Resolver{
		explicit: explicit,
		store:    store,
		getenv:   os.Getenv,
		order:    order,
	}
}

// Resolve returns the key for provider and the source it came from; an empty key
// means no source holds one. Store errors are treated as a miss.
func (r *Resolver) Resolve(ctx context.Context, provider string) (key, source string) {
	for _, src := range r.order {
		switch src {
		case config.CredentialManual:
			key = r.explicit[provider]
		case config.CredentialEmbeddedStore:
			if r.store != nil {
				if k, ok, err := r.store.Lookup(ctx, provider); err == nil && ok {
					key = k
				}
			}
		case config.CredentialEnv:
			if name, ok := envVars[provider]; ok {
				key = r.getenv(name)
			}
		}
		if key != "" {
			return key, src
		}
	}
	return "", ""
}

// StaticStore is a map-backed CredentialStore.
type StaticStore map[string]string

func (s StaticStore) Lookup(_ context.Context, provider string) (string, bool, error) {
	k, ok := s[provider]
	return k, ok && k != "", nil
}
