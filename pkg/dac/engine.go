// Package dac is the embeddable entry point of the tender analyzer. It analyses Arabic
// construction contracts, tender booklets and DXF drawings into canonical reports.
package dac

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/analysis"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/artifact"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/cache"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/comparison"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/llm"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// Re-export the report model for the public API
type (
	Mode             = domain.Mode
	DocumentKind     = domain.DocumentKind
	DocumentFacts    = domain.DocumentFacts
	AnalysisReport   = domain.AnalysisReport
	DrawingReport    = domain.DrawingReport
	ComparisonReport = domain.ComparisonReport
	Error            = domain.Error
	ErrorCode        = domain.ErrorCode
	Clock            = domain.Clock
)

// Re-export configuration and extension points
type (
	Config          = config.Config
	Source          = artifact.Source
	Logger          = observability.Logger
	ChatAdapter     = llm.ChatAdapter
	CredentialStore = llm.CredentialStore
	Cache           = cache.Client
)

// Analysis modes
const (
	ModeComprehensive = domain.ModeComprehensive
	ModeQuick         = domain.ModeQuick
	ModeLegal         = domain.ModeLegal
	ModeFinancial     = domain.ModeFinancial
	ModeTechnical     = domain.ModeTechnical
)

var (
	// FromPath refers to a local file or an s3://bucket/key URI.
	FromPath = artifact.FromPath
	// FromBytes wraps an in-memory document named for its format hint.
	FromBytes = artifact.FromBytes
	// ParseMode validates a mode name.
	ParseMode = domain.ParseMode
	// ParseReport decodes a report rendered by AnalysisReport.JSON.
	ParseReport = domain.ParseReport
	// DefaultConfig returns the configuration used when New receives nil.
	DefaultConfig = config.DefaultConfig
	// LoadConfig reads a YAML file and applies environment overrides.
	LoadConfig = config.Load
)

// Engine runs analyses. It is safe for concurrent use.
type Engine struct {
	analyzer   *analysis.Orchestrator
	comparator *comparison.Comparator
	cache      cache.Client
	provider   string
	logger     *observability.Logger
}

type engineOptions struct {
	logger *observability.Logger
	clock  domain.Clock
	store  llm.CredentialStore
	chat   llm.ChatAdapter
	cache  cache.Client
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithClock pins report timestamps, mainly for reproducible output.
func WithClock(c Clock) Option {
	return func(o *engineOptions) { o.clock = c }
}

// WithCredentialStore supplies the embedded credential store.
func WithCredentialStore(s CredentialStore) Option {
	return func(o *engineOptions) { o.store = s }
}

// WithChatAdapter bypasses provider selection and uses a as the summary model.
func WithChatAdapter(a ChatAdapter) Option {
	return func(o *engineOptions) { o.chat = a }
}

// WithCache replaces the configured completion cache.
func WithCache(c Cache) Option {
	return func(o *engineOptions) { o.cache = c }
}

// New creates an engine. A nil cfg uses DefaultConfig.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := engineOptions{logger: observability.Nop(), clock: domain.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	loaderOpts := []artifact.Option{artifact.WithMaxBytes(cfg.Analysis.MaxInputBytes)}
	if cfg.Storage.MinIO.Endpoint != "" {
		store, err := artifact.NewMinIOStore(cfg.Storage.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init object store: %w", err)
		}
		loaderOpts = append(loaderOpts, artifact.WithObjectStore(store))
	}

	c := o.cache
	if c == nil && cfg.Cache.Enabled {
		var err error
		if c, err = cache.New(cfg.Cache); err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
	}

	chat := o.chat
	if chat == nil && cfg.Analysis.ModelPrimary != config.ModelNone {
		explicit := map[string]string{
			llm.ProviderGeneral:        cfg.Models.General.APIKey,
			llm.ProviderConstitutional: cfg.Models.Constitutional.APIKey,
		}
		resolver := llm.NewResolver(cfg.Analysis.CredentialSource, explicit, o.store)
		factory := llm.NewFactory(cfg.Models, resolver, c, cfg.Cache.TTL, logger)
		chat = factory.Adapter(context.Background(), cfg.Analysis.ModelPrimary, cfg.Analysis.AdapterTimeout)
	}

	var nlp llm.NLPAdapter = llm.LocalNLP{}
	if !cfg.NLP.Enabled {
		nlp = llm.DisabledNLP{}
	}

	analysisOpts := []analysis.Option{
		analysis.WithLoader(artifact.NewLoader(logger, loaderOpts...)),
		analysis.WithClock(o.clock),
		analysis.WithNLP(nlp, cfg.NLP.SummarySentences),
	}
	provider := config.ModelNone
	if chat != nil {
		analysisOpts = append(analysisOpts, analysis.WithChat(chat))
		provider = chat.Name()
		if !chat.Enabled() {
			logger.Warn().Str("provider", provider).Msg("model adapter disabled, summaries fall back to template")
		}
	}

	return &Engine{
		analyzer:   analysis.New(cfg.Analysis, logger, analysisOpts...),
		comparator: comparison.NewComparator(logger),
		cache:      c,
		provider:   provider,
		logger:     logger.WithComponent("engine"),
	}, nil
}

// Provider names the summary model in use, or "none".
func (e *Engine) Provider() string {
	return e.provider
}

// Analyze analyses one document in the given mode.
func (e *Engine) Analyze(ctx context.Context, src Source, mode Mode) (*AnalysisReport, error) {
	return e.analyzer.Analyze(ctx, src, mode)
}

// AnalyzeDrawing analyses a DXF drawing.
func (e *Engine) AnalyzeDrawing(ctx context.Context, src Source) (*DrawingReport, error) {
	return e.analyzer.AnalyzeDrawing(ctx, src)
}

// ExtractFacts returns the parsed facts of a document without running the engines.
func (e *Engine) ExtractFacts(ctx context.Context, src Source) (*DocumentFacts, error) {
	return e.analyzer.ExtractFacts(ctx, src)
}

// Compare analyses both documents concurrently in mode and diffs the reports.
// The first failure cancels the other analysis.
func (e *Engine) Compare(ctx context.Context, left, right Source, mode Mode) (*ComparisonReport, error) {
	var a, b *AnalysisReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = e.analyzer.Analyze(gctx, left, mode)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = e.analyzer.Analyze(gctx, right, mode)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return e.comparator.Compare(a, b), nil
}

// CompareReports diffs two reports produced earlier.
func (e *Engine) CompareReports(a, b *AnalysisReport) *ComparisonReport {
	return e.comparator.Compare(a, b)
}

// PurgeCompletions drops cached model completions of provider, or of every provider
// when provider is empty. It is a no-op when caching is disabled.
func (e *Engine) PurgeCompletions(ctx context.Context, provider string) error {
	switch provider {
	case "", config.ModelGeneralChat, config.ModelConstitutionalChat:
	default:
		return fmt.Errorf("unknown model provider %q", provider)
	}
	if e.cache == nil {
		return nil
	}
	if err := e.cache.DeleteByPrefix(ctx, cache.CompletionPrefix(provider)); err != nil {
		return fmt.Errorf("purge completions: %w", err)
	}
	e.logger.WithContext(ctx).Info().Str("provider", provider).Msg("completion cache purged")
	return nil
}

// Close releases the completion cache.
func (e *Engine) Close() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Close()
}
