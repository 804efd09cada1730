// Package llm adapts hosted chat models and the local NLP toolkit to the analyzer.
package llm

import (
	"context"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Provider names.
const (
	ProviderGeneral        = config.ModelGeneralChat
	ProviderConstitutional = config.ModelConstitutionalChat
)

// Completion is one model response.
type Completion struct {
	Text       string `json:"text"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
	Cached     bool   `json:"-"`
}

// ChatAdapter is a hosted chat model. Complete fails with AUTH_ERROR, RATE_LIMITED,
// UNAVAILABLE, INVALID_RESPONSE or CANCELLED.
type ChatAdapter interface {
	Name() string
	Enabled() bool
	Complete(ctx context.Context, prompt string, mode domain.Mode, maxTokens int) (*Completion, error)
}

// DisabledAdapter stands in for a provider without credentials.
type DisabledAdapter struct {
	name   string
	reason string
}

// NewDisabledAdapter returns an adapter that always fails with UNAVAILABLE.
func NewDisabledAdapter(name, reason string) *DisabledAdapter {
	return &DisabledAdapter{name: name, reason: reason}
}

func (d *DisabledAdapter) Name() string  { return d.name }
func (d *DisabledAdapter) Enabled() bool { return false }

func (d *DisabledAdapter) Complete(ctx context.Context, _ string, _ domain.Mode, _ int) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Cancelled(err)
	}
	return nil, domain.Unavailable(d.name+" disabled: "+d.reason, nil)
}
