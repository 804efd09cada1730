package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// GeneralChat talks to an OpenAI-compatible chat completions endpoint.
type GeneralChat struct {
	client      *openai.Client
	model       string
	temperature float32
	retry       RetryPolicy
	logger      *observability.Logger
}

// NewGeneralChat creates the general chat adapter.
func NewGeneralChat(apiKey string, cfg config.ModelConfig, retry RetryPolicy, logger *observability.Logger) *GeneralChat {
	if logger == nil {
		logger = observability.Nop()
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{}

	return &GeneralChat{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retry:       retry,
		logger:      logger.WithComponent("llm.general_chat"),
	}
}

func (c *GeneralChat) Name() string  { return ProviderGeneral }
func (c *GeneralChat) Enabled() bool { return true }

// Complete sends prompt as a single user turn under the analyst system prompt.
func (c *GeneralChat) Complete(ctx context.Context, prompt string, mode domain.Mode, maxTokens int) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(mode)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// reasoning models reject max_tokens
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	var resp openai.ChatCompletionResponse
	err := retryWithBackoff(ctx, c.retry, ProviderGeneral, c.logger, func(ctx context.Context) error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, req)
		return openAIStatus(err)
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, domain.InvalidResponse("general_chat returned no content", nil)
	}

	return &Completion{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Provider:   ProviderGeneral,
		Model:      c.model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// openAIStatus lifts the HTTP status out of go-openai errors so retry can classify it.
func openAIStatus(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &statusError{status: apiErr.HTTPStatusCode, body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &statusError{status: reqErr.HTTPStatusCode, body: reqErr.Error()}
	}
	return err
}
