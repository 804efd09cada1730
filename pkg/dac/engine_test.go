package dac

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/cache"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/llm"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/testfixtures"
)

type stubChat struct{}

func (stubChat) Name() string  { return llm.ProviderConstitutional }
func (stubChat) Enabled() bool { return true }

func (stubChat) Complete(context.Context, string, Mode, int) (*llm.Completion, error) {
	return &llm.Completion{Text: "ملخص", Provider: llm.ProviderConstitutional, TokensUsed: 7}, nil
}

func newEngine(t *testing.T, cfg *Config, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(domain.FixedClock{T: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})}, opts...)
	e, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestNew_Defaults(t *testing.T) {
	e := newEngine(t, nil)
	assert.Equal(t, "none", e.Provider())

	report, err := e.Analyze(context.Background(), FromBytes("contract.txt", []byte(testfixtures.Contract)), ModeComprehensive)
	require.NoError(t, err)
	assert.False(t, report.Degraded)
	assert.Equal(t, "25,000,000 ريال", report.Entities["قيمة العقد"])
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.ModelPrimary = "gpt"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_ProviderWithoutCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := DefaultConfig()
	cfg.Analysis.ModelPrimary = "general_chat"

	e := newEngine(t, cfg)
	assert.Equal(t, "general_chat", e.Provider())

	report, err := e.Analyze(context.Background(), FromBytes("contract.txt", []byte(testfixtures.Contract)), ModeComprehensive)
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.Equal(t, []string{"model:general_chat"}, report.DegradedComponents)

	cfg.Analysis.StrictModel = true
	strict := newEngine(t, cfg)
	_, err = strict.Analyze(context.Background(), FromBytes("contract.txt", []byte(testfixtures.Contract)), ModeComprehensive)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestEngine_ChatAdapterOverride(t *testing.T) {
	e := newEngine(t, nil, WithChatAdapter(stubChat{}))
	assert.Equal(t, llm.ProviderConstitutional, e.Provider())

	report, err := e.Analyze(context.Background(), FromBytes("contract.txt", []byte(testfixtures.Contract)), ModeComprehensive)
	require.NoError(t, err)
	assert.Equal(t, "ملخص", report.Summary)
	require.NotNil(t, report.Attachments.Model)
	assert.Equal(t, 7, report.Attachments.Model.TokensUsed)
}

func TestEngine_DisabledNLP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NLP.Enabled = false
	e := newEngine(t, cfg)

	report, err := e.Analyze(context.Background(), FromBytes("contract.txt", []byte(testfixtures.Contract)), ModeComprehensive)
	require.NoError(t, err)
	assert.Equal(t, []string{"nlp"}, report.DegradedComponents)
}

func TestEngine_Compare(t *testing.T) {
	e := newEngine(t, nil)

	report, err := e.Compare(context.Background(),
		FromBytes("contract.txt", []byte(testfixtures.Contract)),
		FromBytes("tender.txt", []byte(testfixtures.FinancialTender)),
		ModeFinancial)
	require.NoError(t, err)
	assert.Equal(t, "contract.txt", report.LeftMeta.Source)
	assert.Equal(t, "tender.txt", report.RightMeta.Source)

	var slots []string
	for _, d := range report.Differences {
		slots = append(slots, d.Slot)
	}
	assert.Contains(t, slots, "final_guarantee_pct")
	assert.Contains(t, slots, "duration")
}

func TestEngine_CompareFailsFast(t *testing.T) {
	e := newEngine(t, nil)

	_, err := e.Compare(context.Background(),
		FromBytes("contract.txt", []byte(testfixtures.Contract)),
		FromBytes("plan.dxf", []byte(testfixtures.Drawing)),
		ModeFinancial)
	require.Error(t, err)
	code := domain.CodeOf(err)
	assert.Contains(t, []ErrorCode{domain.CodeInvalidMode, domain.CodeCancelled}, code)
}

func TestEngine_DrawingAndFacts(t *testing.T) {
	e := newEngine(t, nil)

	drawing, err := e.AnalyzeDrawing(context.Background(), FromBytes("plan.dxf", []byte(testfixtures.Drawing)))
	require.NoError(t, err)
	assert.Equal(t, "SAR", drawing.CostEstimate.Currency)

	facts, err := e.ExtractFacts(context.Background(), FromBytes("tender.txt", []byte(testfixtures.FinancialTender)))
	require.NoError(t, err)
	require.NotNil(t, facts.TenderNumber)
	assert.Equal(t, "T-2024-015", facts.TenderNumber.Value)
}

func TestEngine_PurgeCompletions(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryClient(10)
	e := newEngine(t, nil, WithCache(store))

	general := cache.CompletionKey(llm.ProviderGeneral, "gpt-4o-mini", "comprehensive", "نص", 512)
	constitutional := cache.CompletionKey(llm.ProviderConstitutional, "claude", "comprehensive", "نص", 512)
	require.NoError(t, store.Set(ctx, general, []byte("{}"), 0))
	require.NoError(t, store.Set(ctx, constitutional, []byte("{}"), 0))

	require.NoError(t, e.PurgeCompletions(ctx, llm.ProviderGeneral))
	_, err := store.Get(ctx, general)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	_, err = store.Get(ctx, constitutional)
	assert.NoError(t, err)

	require.NoError(t, e.PurgeCompletions(ctx, ""))
	_, err = store.Get(ctx, constitutional)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	assert.Error(t, e.PurgeCompletions(ctx, "gpt"))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Financial ")
	require.NoError(t, err)
	assert.Equal(t, ModeFinancial, m)

	_, err = ParseMode("deep")
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}
