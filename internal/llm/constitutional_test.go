package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

func newConstitutionalChat(t *testing.T, handler http.HandlerFunc) *ConstitutionalChat {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewConstitutionalChat("ak-test", config.ModelConfig{Model: "claude-3-5-haiku-latest", BaseURL: srv.URL}, fastPolicy(), nil)
}

func TestConstitutionalChat_Complete(t *testing.T) {
	var got messagesRequest
	chat := newConstitutionalChat(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"مناقصة لإنشاء مدرسة"},{"type":"text","text":" ابتدائية."}],"usage":{"input_tokens":90,"output_tokens":12}}`))
	})

	c, err := chat.Complete(context.Background(), "لخص المناقصة", domain.ModeFinancial, 256)
	require.NoError(t, err)
	assert.Equal(t, "مناقصة لإنشاء مدرسة ابتدائية.", c.Text)
	assert.Equal(t, ProviderConstitutional, c.Provider)
	assert.Equal(t, 102, c.TokensUsed)

	assert.Equal(t, 256, got.MaxTokens)
	assert.Equal(t, SystemPrompt(domain.ModeFinancial), got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "لخص المناقصة", got.Messages[0].Content)
}

func TestConstitutionalChat_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  domain.ErrorCode
		wantCalls int32
	}{
		{"forbidden", http.StatusForbidden, `{"type":"error"}`, domain.CodeAuth, 1},
		{"overloaded", 529, `{"type":"error"}`, domain.CodeUnavailable, 3},
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.CodeRateLimited, 3},
		{"malformed body", http.StatusOK, `not json`, domain.CodeInvalidResponse, 1},
		{"no text", http.StatusOK, `{"content":[]}`, domain.CodeInvalidResponse, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			chat := newConstitutionalChat(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := chat.Complete(context.Background(), "نص", domain.ModeQuick, 64)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestConstitutionalChat_CancelledContext(t *testing.T) {
	chat := newConstitutionalChat(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chat.Complete(ctx, "نص", domain.ModeQuick, 64)
	assert.ErrorIs(t, err, domain.ErrCancelled)
}
