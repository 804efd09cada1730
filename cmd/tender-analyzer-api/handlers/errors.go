package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// StatusClientClosedRequest is the non-standard status for caller cancellation.
const StatusClientClosedRequest = 499

// statusByCode maps error codes to HTTP statuses.
var statusByCode = map[domain.ErrorCode]int{
	domain.CodeUnsupportedFormat: http.StatusUnsupportedMediaType,
	domain.CodeCorruptInput:      http.StatusUnprocessableEntity,
	domain.CodeIO:                http.StatusInternalServerError,
	domain.CodeInvalidMode:       http.StatusBadRequest,
	domain.CodeFactsIncomplete:   http.StatusUnprocessableEntity,
	domain.CodeCancelled:         StatusClientClosedRequest,
	domain.CodeTimeout:           http.StatusGatewayTimeout,
	domain.CodeAuth:              http.StatusBadGateway,
	domain.CodeRateLimited:       http.StatusTooManyRequests,
	domain.CodeUnavailable:       http.StatusServiceUnavailable,
	domain.CodeInvalidResponse:   http.StatusBadGateway,
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Detail  string   `json:"detail,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	if status, ok := statusByCode[domain.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (h *AnalysisHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: "INTERNAL", Message: "internal error", Detail: err.Error()}

	var derr *domain.Error
	if errors.As(err, &derr) {
		resp.Error = string(derr.Code)
		resp.Message = derr.Localized()
		resp.Missing = derr.Details
	}

	event := h.logger.WithContext(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = h.logger.WithContext(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Request failed")

	writeJSON(w, status, resp)
}

// writeUploadError reports malformed or oversized uploads.
func (h *AnalysisHandler) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	h.logger.WithContext(r.Context()).Warn().Err(err).Int("status", status).Msg("Invalid upload")
	writeJSON(w, status, ErrorResponse{Error: "BAD_REQUEST", Message: "invalid upload", Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
