package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.UnsupportedFormat("dwg", nil), http.StatusUnsupportedMediaType},
		{domain.CorruptInput("empty", nil), http.StatusUnprocessableEntity},
		{domain.IOError("gone", nil), http.StatusInternalServerError},
		{domain.InvalidMode("legal on tender"), http.StatusBadRequest},
		{domain.FactsIncomplete([]string{"parties"}), http.StatusUnprocessableEntity},
		{domain.Cancelled(nil), StatusClientClosedRequest},
		{domain.Timeout(nil), http.StatusGatewayTimeout},
		{domain.AuthError("bad key", nil), http.StatusBadGateway},
		{domain.RateLimited("429", nil), http.StatusTooManyRequests},
		{domain.Unavailable("down", nil), http.StatusServiceUnavailable},
		{domain.InvalidResponse("garbled", nil), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
