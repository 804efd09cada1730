// Package analysis runs a document through extraction, fact parsing, heuristics and
// optional model enrichment, and renders the report.
package analysis

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/artifact"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/engines"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/fields"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/llm"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/textextract"
)

// Degraded component names.
const (
	ComponentModelPrefix = "model:"
	ComponentNLP         = "nlp"
	ComponentDeadline    = "deadline"
)

const defaultSummarySentences = 3

// Orchestrator runs analyses. It holds no per-analysis state and is safe for concurrent use.
type Orchestrator struct {
	loader    *artifact.Loader
	extractor *textextract.Extractor
	fields    *fields.Extractor
	// chat is nil when model_primary is none
	chat      llm.ChatAdapter
	nlp       llm.NLPAdapter
	sentences int
	opts      config.AnalysisOptions
	clock     domain.Clock
	logger    *observability.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock pins report timestamps.
func WithClock(c domain.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithChat sets the summary model adapter.
func WithChat(a llm.ChatAdapter) Option {
	return func(o *Orchestrator) { o.chat = a }
}

// WithNLP replaces the local NLP toolkit.
func WithNLP(n llm.NLPAdapter, sentences int) Option {
	return func(o *Orchestrator) {
		o.nlp = n
		if sentences > 0 {
			o.sentences = sentences
		}
	}
}

// WithLoader replaces the artifact loader.
func WithLoader(l *artifact.Loader) Option {
	return func(o *Orchestrator) { o.loader = l }
}

// New creates an orchestrator for the given options record.
func New(opts config.AnalysisOptions, logger *observability.Logger, options ...Option) *Orchestrator {
	if logger == nil {
		logger = observability.Nop()
	}
	o := &Orchestrator{
		extractor: textextract.NewExtractor(logger),
		fields:    fields.NewExtractor(logger, fields.WithDefaultCurrency(opts.CurrencyDefault)),
		nlp:       llm.LocalNLP{},
		sentences: defaultSummarySentences,
		opts:      opts,
		clock:     domain.SystemClock{},
		logger:    logger.WithComponent("analysis"),
	}
	for _, opt := range options {
		opt(o)
	}
	if o.loader == nil {
		o.loader = artifact.NewLoader(logger, artifact.WithMaxBytes(opts.MaxInputBytes))
	}
	return o
}

// Analyze runs one analysis. It fails with the extraction codes, INVALID_MODE,
// FACTS_INCOMPLETE, CANCELLED, TIMEOUT, or a model error when strict_model is set.
func (o *Orchestrator) Analyze(ctx context.Context, src artifact.Source, mode domain.Mode) (*domain.AnalysisReport, error) {
	if err := validMode(mode); err != nil {
		return nil, err
	}
	start := time.Now()
	logger := o.logger.WithContext(ctx).WithAnalysis(src.String(), string(mode))
	m := newMachine(logger)

	runCtx, cancel := context.WithTimeout(ctx, o.opts.AnalysisTimeout)
	defer cancel()

	doc, err := o.extract(runCtx, src)
	if err != nil {
		return nil, m.fail(StateFailedExtraction, interrupted(ctx, runCtx, err))
	}
	_ = m.to(StateExtracted)

	if err := checkMode(mode, doc.Kind); err != nil {
		return nil, m.fail(StateFailedExtraction, err)
	}

	if doc.Kind == domain.KindDrawing {
		report := o.drawingOverview(doc, src)
		_ = m.to(StateRendered)
		return report, nil
	}

	ex := o.fields.Extract(doc.Text, doc.Kind)
	facts := ex.Facts
	if mode != domain.ModeQuick {
		if missing := facts.Missing(requiredSlots(mode, doc.Kind)); len(missing) > 0 {
			names := make([]string, len(missing))
			for i, s := range missing {
				names[i] = string(s)
			}
			return nil, m.fail(StateFailedFacts, domain.FactsIncomplete(names))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.Cancelled(err)
	}
	_ = m.to(StateFactsParsed)

	var (
		h          heuristics
		completion *llm.Completion
		modelErr   error
		entities   llm.EntitiesResult
	)
	useModel := o.chat != nil && mode == domain.ModeComprehensive
	useNER := mode == domain.ModeComprehensive

	var g errgroup.Group
	g.Go(func() (err error) {
		h, err = runHeuristics(ctx, facts, mode)
		return err
	})
	if useModel {
		g.Go(func() error {
			prompt := llm.SummaryPrompt(doc.Kind, engines.KeyPoints(facts, mode), ex.Text)
			completion, modelErr = o.chat.Complete(runCtx, prompt, mode, o.opts.SummaryMaxTokens)
			return nil
		})
	}
	if useNER {
		g.Go(func() error {
			entities = o.nlp.ExtractEntities(runCtx, ex.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.Cancelled(err)
	}
	_ = m.to(StateEnriched)
	timedOut := runCtx.Err() != nil

	degraded := []string{}
	var summary string
	var usage *domain.ModelUsage
	if useModel {
		if modelErr == nil {
			summary = completion.Text
			usage = &domain.ModelUsage{Provider: completion.Provider, TokensUsed: completion.TokensUsed}
		} else {
			if o.opts.StrictModel && !timedOut {
				logger.Error().Err(modelErr).Msg("model call failed under strict policy")
				return nil, m.fail(StateFailedModel, modelErr)
			}
			logger.Warn().Err(modelErr).Str("provider", o.chat.Name()).Msg("model summary unavailable, using template")
			degraded = append(degraded, ComponentModelPrefix+o.chat.Name())
		}
	}
	if useNER && entities.Degraded {
		degraded = append(degraded, ComponentNLP)
	}

	slots := engines.ModeSlots(mode)
	projected := facts.Project(slots)
	missing := projected.Missing(applicable(slots, o.fields.Slots(doc.Kind)))

	if summary == "" {
		summary = TemplateSummary(projected, mode, h.risks, missing)
		if len(h.keyPoints) == 0 {
			extract := o.nlp.Summarize(runCtx, ex.Text, o.sentences)
			if extract.Degraded {
				degraded = appendOnce(degraded, ComponentNLP)
			} else if extract.Text != "" {
				summary += " " + extract.Text
			}
		}
	}
	if timedOut {
		degraded = appendOnce(degraded, ComponentDeadline)
	}

	report := &domain.AnalysisReport{
		Title:              Title(projected, mode, doc.Kind, doc.Filename),
		GeneratedAt:        o.clock.Now().UTC().Format(time.RFC3339),
		Mode:               mode,
		Summary:            summary,
		KeyPoints:          h.keyPoints,
		Entities:           Entities(projected, slots),
		Risks:              h.risks,
		Opportunities:      h.opportunities,
		Recommendations:    h.recommendations,
		Degraded:           len(degraded) > 0,
		DegradedComponents: degraded,
		MissingFields:      missing,
		Kind:               doc.Kind,
		Source:             src.String(),
		Facts:              projected,
		Attachments: domain.Attachments{
			CostEstimate: h.cost,
			CashFlow:     h.cashFlow,
			Competitors:  h.competitors,
			Technical:    h.technical,
			Model:        usage,
		},
	}
	if len(entities.Entities) > 0 {
		report.Attachments.NamedEntities = entities.Entities
	}
	_ = m.to(StateRendered)

	logger.Info().
		Str("kind", string(doc.Kind)).
		Int("risks", len(report.Risks)).
		Bool("degraded", report.Degraded).
		Strs("degraded_components", degraded).
		Dur("duration", time.Since(start)).
		Msg("analysis completed")

	return report, nil
}

// AnalyzeDrawing renders the structural and cost view of a drawing.
func (o *Orchestrator) AnalyzeDrawing(ctx context.Context, src artifact.Source) (*domain.DrawingReport, error) {
	runCtx, cancel := context.WithTimeout(ctx, o.opts.AnalysisTimeout)
	defer cancel()

	doc, err := o.extract(runCtx, src)
	if err != nil {
		return nil, interrupted(ctx, runCtx, err)
	}
	if doc.Kind != domain.KindDrawing {
		return nil, domain.UnsupportedFormat("drawing analysis requires a DXF drawing, got "+string(doc.Format), nil)
	}

	cost := engines.EstimateDrawingCost(doc.Drawing)
	return &domain.DrawingReport{
		Title:           "تحليل مخطط: " + doc.Filename,
		GeneratedAt:     o.clock.Now().UTC().Format(time.RFC3339),
		Source:          src.String(),
		Summary:         drawingSummary(doc.Drawing, &cost),
		Elements:        doc.Drawing.Elements,
		Materials:       doc.Drawing.Materials,
		CostEstimate:    cost,
		Recommendations: engines.DrawingRecommendations(doc.Drawing),
	}, nil
}

// ExtractFacts runs extraction and fact parsing only. Drawings yield empty facts.
func (o *Orchestrator) ExtractFacts(ctx context.Context, src artifact.Source) (*domain.DocumentFacts, error) {
	runCtx, cancel := context.WithTimeout(ctx, o.opts.AnalysisTimeout)
	defer cancel()

	doc, err := o.extract(runCtx, src)
	if err != nil {
		return nil, interrupted(ctx, runCtx, err)
	}
	if doc.Kind == domain.KindDrawing {
		return &domain.DocumentFacts{Kind: domain.KindDrawing}, nil
	}
	return o.fields.Extract(doc.Text, doc.Kind).Facts, nil
}

func (o *Orchestrator) extract(ctx context.Context, src artifact.Source) (*textextract.Extracted, error) {
	a, err := o.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return o.extractor.Extract(ctx, a)
}

// drawingOverview is the quick-mode report for a drawing.
func (o *Orchestrator) drawingOverview(doc *textextract.Extracted, src artifact.Source) *domain.AnalysisReport {
	p := doc.Drawing
	cost := engines.EstimateDrawingCost(p)

	points := []string{
		"عدد العناصر: " + strconv.Itoa(p.Elements.Total),
		"الطبقات: " + strings.Join(p.Elements.Layers, "، "),
	}
	if cost.Total > 0 {
		points = append(points, "التكلفة التقديرية: "+domain.FormatMoney(domain.Money{Amount: cost.Total, Currency: cost.Currency}))
	}

	return &domain.AnalysisReport{
		Title:              Title(nil, domain.ModeQuick, domain.KindDrawing, doc.Filename),
		GeneratedAt:        o.clock.Now().UTC().Format(time.RFC3339),
		Mode:               domain.ModeQuick,
		Summary:            drawingSummary(p, &cost),
		KeyPoints:          points,
		Entities:           map[string]string{},
		Risks:              []domain.RiskEntry{},
		Opportunities:      []domain.OpportunityEntry{},
		Recommendations:    engines.DrawingRecommendations(p),
		DegradedComponents: []string{},
		MissingFields:      []domain.Slot{},
		Kind:               domain.KindDrawing,
		Source:             src.String(),
		Facts:              &domain.DocumentFacts{Kind: domain.KindDrawing},
		Attachments:        domain.Attachments{Drawing: p},
	}
}

type heuristics struct {
	keyPoints       []string
	risks           []domain.RiskEntry
	opportunities   []domain.OpportunityEntry
	recommendations []string
	cost            *domain.CostEstimate
	cashFlow        []domain.CashFlowRow
	competitors     []domain.CompetitorEntry
	technical       *domain.TechnicalAnalysis
}

// runHeuristics selects the engines for mode. Outputs are merged in a fixed order.
// ctx is checked before each engine; the analysis ceiling is not, so a late deadline
// still leaves a complete template report.
func runHeuristics(ctx context.Context, f *domain.DocumentFacts, mode domain.Mode) (heuristics, error) {
	h := heuristics{opportunities: []domain.OpportunityEntry{}}
	steps := []func(){
		func() { h.keyPoints = engines.KeyPoints(f, mode) },
		func() { h.risks = engines.Risks(f, mode) },
	}
	switch mode {
	case domain.ModeComprehensive:
		steps = append(steps,
			func() { h.opportunities = engines.Opportunities(f) },
			func() { h.competitors = engines.Competitors(f) },
			func() { h.technical = engines.Technical(f) },
			func() { h.cost = engines.EstimateCost(f) },
			func() { h.cashFlow = engines.PlanCashFlow(f) },
		)
	case domain.ModeFinancial:
		steps = append(steps,
			func() { h.opportunities = engines.Opportunities(f) },
			func() { h.cost = engines.EstimateCost(f) },
			func() { h.cashFlow = engines.PlanCashFlow(f) },
		)
	case domain.ModeTechnical:
		steps = append(steps, func() { h.technical = engines.Technical(f) })
	}
	steps = append(steps, func() { h.recommendations = engines.Recommendations(f, h.risks, mode) })

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return heuristics{}, domain.Cancelled(err)
		}
		step()
	}
	return h, nil
}

// interrupted distinguishes caller cancellation from the analysis ceiling.
func interrupted(parent, run context.Context, err error) error {
	if parent.Err() != nil {
		return domain.Cancelled(parent.Err())
	}
	if run.Err() != nil {
		return domain.Timeout(run.Err())
	}
	return err
}

// applicable keeps the slots of want that the extractor can fill.
func applicable(want, supported []domain.Slot) []domain.Slot {
	ok := make(map[domain.Slot]bool, len(supported))
	for _, s := range supported {
		ok[s] = true
	}
	out := make([]domain.Slot, 0, len(want))
	for _, s := range want {
		if ok[s] {
			out = append(out, s)
		}
	}
	return out
}

func appendOnce(list []string, item string) []string {
	for _, s := range list {
		if s == item {
			return list
		}
	}
	return append(list, item)
}
