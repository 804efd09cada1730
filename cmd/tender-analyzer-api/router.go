// Package main provides the API router setup.
package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/cmd/tender-analyzer-api/handlers"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/cmd/tender-analyzer-api/middleware"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// AppConfig holds router configuration.
type AppConfig struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
	AllowedOrigins []string
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, engine handlers.Analyzer, cfg AppConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"tender-analyzer"}`))
	})

	analysisHandler := handlers.NewAnalysisHandler(logger, engine, cfg.MaxUploadBytes)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}
		r.Post("/analyze", analysisHandler.Analyze)
		r.Post("/drawings", analysisHandler.Drawing)
		r.Post("/compare", analysisHandler.Compare)
		r.Post("/facts", analysisHandler.Facts)
	})

	return r
}
