package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com"
	anthropicVersion    = "2023-06-01"
	// maxErrorBody caps how much of an error response is kept for logging.
	maxErrorBody = 2048
)

// ConstitutionalChat talks to the Anthropic Messages API.
type ConstitutionalChat struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	httpClient  *http.Client
	retry       RetryPolicy
	logger      *observability.Logger
}

// messagesRequest represents the API request structure
type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse represents the API response structure
type messagesResponse struct {
	ID      string         `json:"id"`
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewConstitutionalChat creates the constitutional chat adapter.
func NewConstitutionalChat(apiKey string, cfg config.ModelConfig, retry RetryPolicy, logger *observability.Logger) *ConstitutionalChat {
	if logger == nil {
		logger = observability.Nop()
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}
	return &ConstitutionalChat{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{},
		retry:       retry,
		logger:      logger.WithComponent("llm.constitutional_chat"),
	}
}

func (c *ConstitutionalChat) Name() string  { return ProviderConstitutional }
func (c *ConstitutionalChat) Enabled() bool { return true }

// Complete sends prompt as a single user message.
func (c *ConstitutionalChat) Complete(ctx context.Context, prompt string, mode domain.Mode, maxTokens int) (*Completion, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
		System:      SystemPrompt(mode),
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, domain.InvalidResponse("failed to marshal request", err)
	}

	var out messagesResponse
	err = retryWithBackoff(ctx, c.retry, ProviderConstitutional, c.logger, func(ctx context.Context) error {
		return c.send(ctx, body, &out)
	})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, domain.InvalidResponse("constitutional_chat returned no text content", nil)
	}

	return &Completion{
		Text:       strings.TrimSpace(text.String()),
		Provider:   ProviderConstitutional,
		Model:      c.model,
		TokensUsed: out.Usage.InputTokens + out.Usage.OutputTokens,
	}, nil
}

func (c *ConstitutionalChat) send(ctx context.Context, body []byte, out *messagesResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return domain.InvalidResponse("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &statusError{status: resp.StatusCode, body: string(bodyBytes)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.InvalidResponse(fmt.Sprintf("failed to decode %s response", ProviderConstitutional), err)
	}
	return nil
}
