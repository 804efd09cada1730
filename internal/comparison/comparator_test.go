package comparison

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/analysis"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/artifact"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/testfixtures"
)

func analyze(t *testing.T, name, text string, mode domain.Mode) *domain.AnalysisReport {
	t.Helper()
	o := analysis.New(config.DefaultAnalysisOptions(), nil,
		analysis.WithClock(domain.FixedClock{T: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}))
	report, err := o.Analyze(context.Background(), artifact.FromBytes(name, []byte(text)), mode)
	require.NoError(t, err)
	return report
}

func slotsOf[T any](rows []T, slot func(T) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = slot(r)
	}
	return out
}

func simSlot(s domain.Similarity) string  { return s.Slot }
func diffSlot(d domain.Difference) string { return d.Slot }

func TestCompare_ContractAgainstTender(t *testing.T) {
	contract := analyze(t, "contract.txt", testfixtures.Contract, domain.ModeComprehensive)
	tender := analyze(t, "tender.txt", testfixtures.FinancialTender, domain.ModeFinancial)

	report := NewComparator(nil).Compare(contract, tender)

	diffs := slotsOf(report.Differences, diffSlot)
	assert.Contains(t, diffs, string(domain.SlotFinalGuarantee))
	assert.Contains(t, diffs, string(domain.SlotDuration))

	sims := slotsOf(report.Similarities, simSlot)
	assert.Contains(t, sims, "topic:guarantees")
	assert.Contains(t, sims, "topic:penalties")
	assert.Contains(t, sims, string(domain.SlotInitialGuarantee))

	for _, d := range report.Differences {
		if d.Slot == string(domain.SlotFinalGuarantee) {
			assert.Equal(t, "5%", d.Left)
			assert.Equal(t, "6%", d.Right)
			assert.Equal(t, "الضمان النهائي", d.Label)
		}
	}

	assert.Equal(t, contract.Meta(), report.LeftMeta)
	assert.Equal(t, tender.Meta(), report.RightMeta)
	assert.NotEmpty(t, report.Recommendations)
}

func TestCompare_Symmetric(t *testing.T) {
	contract := analyze(t, "contract.txt", testfixtures.Contract, domain.ModeComprehensive)
	tender := analyze(t, "tender.txt", testfixtures.FinancialTender, domain.ModeFinancial)
	c := NewComparator(nil)

	ab := c.Compare(contract, tender)
	ba := c.Compare(tender, contract)

	assert.ElementsMatch(t, ab.Similarities, ba.Similarities)
	require.Len(t, ba.Differences, len(ab.Differences))
	swapped := make([]domain.Difference, len(ba.Differences))
	for i, d := range ba.Differences {
		swapped[i] = domain.Difference{Slot: d.Slot, Label: d.Label, Left: d.Right, Right: d.Left}
	}
	assert.ElementsMatch(t, ab.Differences, swapped)
}

func TestCompare_SameReport(t *testing.T) {
	contract := analyze(t, "contract.txt", testfixtures.Contract, domain.ModeComprehensive)

	report := NewComparator(nil).Compare(contract, contract)
	assert.Empty(t, report.Differences)
	assert.NotEmpty(t, report.Similarities)
	assert.Equal(t, len(contract.Recommendations), len(report.Recommendations))
}

func TestCompare_Tolerance(t *testing.T) {
	mk := func(amount, pct float64) *domain.AnalysisReport {
		return &domain.AnalysisReport{Facts: &domain.DocumentFacts{
			ContractValue:     domain.NewField(domain.Money{Amount: amount, Currency: "SAR"}, domain.Span{}, 1),
			FinalGuaranteePct: domain.NewField(pct, domain.Span{}, 1),
		}}
	}

	report := NewComparator(nil).Compare(mk(1000.004, 5), mk(1000, 5.02))
	assert.Equal(t, []string{string(domain.SlotContractValue), "topic:guarantees"}, slotsOf(report.Similarities, simSlot))
	assert.Equal(t, []string{string(domain.SlotFinalGuarantee)}, slotsOf(report.Differences, diffSlot))
}

func TestCompare_NormalisedValues(t *testing.T) {
	left := &domain.AnalysisReport{Facts: &domain.DocumentFacts{}}
	left.Facts.Owner = domain.NewField("وزارة   التعليم", domain.Span{}, 1)
	left.Facts.ClosingDate = domain.NewField("2024-04-15", domain.Span{}, 1)
	left.Facts.QualificationConditions = domain.NewField([]string{"سجل تجاري", "تصنيف ٢"}, domain.Span{}, 1)

	right := &domain.AnalysisReport{Facts: &domain.DocumentFacts{}}
	right.Facts.Owner = domain.NewField("وزارة التعليم", domain.Span{}, 1)
	right.Facts.ClosingDate = domain.NewField(" 2024-04-15", domain.Span{}, 1)
	right.Facts.QualificationConditions = domain.NewField([]string{"تصنيف 2", "سجل تجاري"}, domain.Span{}, 1)

	report := NewComparator(nil).Compare(left, right)
	assert.Empty(t, report.Differences)
	assert.Equal(t, []string{"owner", "closing_date", "qualification_conditions"}, slotsOf(report.Similarities, simSlot))
}

func TestCompare_TopicPresence(t *testing.T) {
	left := &domain.AnalysisReport{Facts: &domain.DocumentFacts{
		WarrantyMonths: domain.NewField(12, domain.Span{}, 1),
	}}
	right := &domain.AnalysisReport{Facts: &domain.DocumentFacts{}}

	report := NewComparator(nil).Compare(left, right)
	assert.Empty(t, report.Similarities)
	require.Len(t, report.Differences, 1)
	assert.Equal(t, domain.Difference{Slot: "topic:warranty", Label: "الصيانة والضمان", Left: "مذكور", Right: "غير مذكور"}, report.Differences[0])
}

func TestMergeRecommendations(t *testing.T) {
	got := mergeRecommendations(
		[]string{"مراجعة الضمانات", "تثبيت  الأسعار"},
		[]string{"تثبيت الأسعار", "", "طلب جدول زمني"},
	)
	assert.Equal(t, []string{"مراجعة الضمانات", "تثبيت  الأسعار", "طلب جدول زمني"}, got)
}
