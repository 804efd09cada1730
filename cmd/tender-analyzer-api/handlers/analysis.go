// Package handlers provides HTTP handlers for the tender analyzer API.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/pkg/dac"
)

// Analyzer is the engine surface the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, src dac.Source, mode dac.Mode) (*dac.AnalysisReport, error)
	AnalyzeDrawing(ctx context.Context, src dac.Source) (*dac.DrawingReport, error)
	ExtractFacts(ctx context.Context, src dac.Source) (*dac.DocumentFacts, error)
	Compare(ctx context.Context, left, right dac.Source, mode dac.Mode) (*dac.ComparisonReport, error)
}

// AnalysisHandler handles document uploads.
type AnalysisHandler struct {
	logger    *observability.Logger
	engine    Analyzer
	maxUpload int64
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(logger *observability.Logger, engine Analyzer, maxUpload int64) *AnalysisHandler {
	return &AnalysisHandler{
		logger:    logger.WithComponent("api"),
		engine:    engine,
		maxUpload: maxUpload,
	}
}

// Analyze handles POST /analyze?mode=. The document is the multipart field "file".
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	mode := dac.ModeComprehensive
	if q := r.URL.Query().Get("mode"); q != "" {
		m, err := dac.ParseMode(q)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		mode = m
	}

	src, ok := h.readUpload(w, r, "file")
	if !ok {
		return
	}

	report, err := h.engine.Analyze(r.Context(), src, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info().
		Str("file", src.Name).
		Str("mode", string(mode)).
		Bool("degraded", report.Degraded).
		Msg("Analysis served")

	h.writeReport(w, r, report.JSON)
}

// Drawing handles POST /drawings.
func (h *AnalysisHandler) Drawing(w http.ResponseWriter, r *http.Request) {
	src, ok := h.readUpload(w, r, "file")
	if !ok {
		return
	}

	report, err := h.engine.AnalyzeDrawing(r.Context(), src)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeReport(w, r, report.JSON)
}

// Facts handles POST /facts.
func (h *AnalysisHandler) Facts(w http.ResponseWriter, r *http.Request) {
	src, ok := h.readUpload(w, r, "file")
	if !ok {
		return
	}

	facts, err := h.engine.ExtractFacts(r.Context(), src)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeReport(w, r, func() ([]byte, error) { return domain.MarshalCanonical(facts) })
}

// Compare handles POST /compare?mode= with multipart fields "left" and "right".
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	mode := dac.ModeComprehensive
	if q := r.URL.Query().Get("mode"); q != "" {
		m, err := dac.ParseMode(q)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		mode = m
	}

	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUpload)
	if err := r.ParseMultipartForm(2 * h.maxUpload); err != nil {
		h.writeUploadError(w, r, err)
		return
	}
	left, err := formFile(r, "left")
	if err != nil {
		h.writeUploadError(w, r, err)
		return
	}
	right, err := formFile(r, "right")
	if err != nil {
		h.writeUploadError(w, r, err)
		return
	}

	report, err := h.engine.Compare(r.Context(), left, right, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeReport(w, r, report.JSON)
}

// readUpload reads one multipart file bounded by the upload limit.
func (h *AnalysisHandler) readUpload(w http.ResponseWriter, r *http.Request, field string) (dac.Source, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.writeUploadError(w, r, err)
		return dac.Source{}, false
	}
	src, err := formFile(r, field)
	if err != nil {
		h.writeUploadError(w, r, err)
		return dac.Source{}, false
	}
	return src, true
}

var errMissingFile = errors.New("multipart file field is missing")

func formFile(r *http.Request, field string) (dac.Source, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return dac.Source{}, errMissingFile
		}
		return dac.Source{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return dac.Source{}, err
	}
	return dac.FromBytes(hdr.Filename, data), nil
}

func (h *AnalysisHandler) writeReport(w http.ResponseWriter, r *http.Request, render func() ([]byte, error)) {
	data, err := render()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
