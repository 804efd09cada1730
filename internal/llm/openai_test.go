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

const chatResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": " عقد إنشاء مبنى إداري بقيمة 25 مليون ريال. "}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
}`

func newGeneralChat(t *testing.T, handler http.HandlerFunc) *GeneralChat {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeneralChat("sk-test", config.ModelConfig{Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"}, fastPolicy(), nil)
}

func TestGeneralChat_Complete(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	chat := newGeneralChat(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse))
	})

	c, err := chat.Complete(context.Background(), "لخص العقد", domain.ModeComprehensive, 512)
	require.NoError(t, err)
	assert.Equal(t, "عقد إنشاء مبنى إداري بقيمة 25 مليون ريال.", c.Text)
	assert.Equal(t, ProviderGeneral, c.Provider)
	assert.Equal(t, 150, c.TokensUsed)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "لخص العقد", got.Messages[1].Content)
}

func TestGeneralChat_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  domain.ErrorCode
		wantCalls int32
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`, domain.CodeAuth, 1},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, domain.CodeRateLimited, 3},
		{"server error", http.StatusBadGateway, `upstream failed`, domain.CodeUnavailable, 3},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad model","type":"invalid_request_error"}}`, domain.CodeInvalidResponse, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			chat := newGeneralChat(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
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

func TestGeneralChat_RecoversAfterServerError(t *testing.T) {
	var calls atomic.Int32
	chat := newGeneralChat(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(chatResponse))
	})

	c, err := chat.Complete(context.Background(), "نص", domain.ModeQuick, 64)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeneralChat_EmptyChoices(t *testing.T) {
	chat := newGeneralChat(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := chat.Complete(context.Background(), "نص", domain.ModeQuick, 64)
	assert.ErrorIs(t, err, domain.ErrInvalidResponse)
}
