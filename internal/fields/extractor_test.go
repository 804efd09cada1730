package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/testfixtures"
)

func TestExtract_Contract(t *testing.T) {
	ex := NewExtractor(nil).Extract(testfixtures.Contract, domain.KindContract)
	f := ex.Facts

	require.NotNil(t, f.Parties)
	assert.Equal(t, "وزارة الشؤون البلدية والقروية", f.Parties[domain.PartyFirst].Value)
	assert.Equal(t, "شركة البناء المتقدم للمقاولات", f.Parties[domain.PartySecond].Value)

	require.NotNil(t, f.ContractValue)
	assert.Equal(t, domain.Money{Amount: 25000000, Currency: "SAR"}, f.ContractValue.Value)
	assert.Equal(t, domain.ConfidenceAnchor, f.ContractValue.Confidence)

	require.NotNil(t, f.Duration)
	assert.Equal(t, 18, f.Duration.Value.Months)
	assert.Equal(t, "month", f.Duration.Value.Unit)
	assert.Equal(t, "18 شهراً", f.Duration.Value.Literal)

	require.NotNil(t, f.InitialGuaranteePct)
	assert.Equal(t, 2.0, f.InitialGuaranteePct.Value)
	require.NotNil(t, f.FinalGuaranteePct)
	assert.Equal(t, 5.0, f.FinalGuaranteePct.Value)

	require.NotNil(t, f.DelayPenalty)
	assert.Equal(t, 1.0, f.DelayPenalty.Value.PerPeriodPct)
	assert.Equal(t, "week", f.DelayPenalty.Value.PeriodUnit)
	require.NotNil(t, f.DelayPenalty.Value.CapPct)
	assert.Equal(t, 10.0, *f.DelayPenalty.Value.CapPct)
	assert.Equal(t, domain.ConfidenceAnchor, f.DelayPenalty.Confidence)

	require.NotNil(t, f.PaymentTerms)
	assert.Equal(t, "monthly", f.PaymentTerms.Value.Cadence)
	assert.Equal(t, 1, f.PaymentTerms.Value.LagMonths)
	require.NotNil(t, f.PaymentTerms.Value.RetentionPct)
	assert.Equal(t, 10.0, *f.PaymentTerms.Value.RetentionPct)
	assert.Nil(t, f.PaymentTerms.Value.AdvancePct)

	require.NotNil(t, f.WarrantyMonths)
	assert.Equal(t, 12, f.WarrantyMonths.Value)

	require.NotNil(t, f.ProjectAreaM2)
	assert.Equal(t, 5000.0, f.ProjectAreaM2.Value)

	require.NotNil(t, f.ProjectName)
	assert.Equal(t, "إنشاء مبنى إداري بمدينة الرياض", f.ProjectName.Value)
	require.NotNil(t, f.Location)
	assert.Equal(t, "الرياض - حي الملقا", f.Location.Value)

	require.NotNil(t, f.TerminationClause)
	assert.Contains(t, f.TerminationClause.Value, "فسخ العقد")
	require.NotNil(t, f.DisputeResolution)
	assert.Contains(t, f.DisputeResolution.Value, "ديوان المظالم")

	// tender-only slots never run on contracts
	assert.Nil(t, f.TenderNumber)
	assert.Nil(t, f.QualificationConditions)
	assert.Empty(t, ex.Rejected)
}

func TestExtract_SpansPointIntoNormalizedText(t *testing.T) {
	ex := NewExtractor(nil).Extract(testfixtures.Contract, domain.KindContract)
	f := ex.Facts

	fields := []struct {
		name string
		span domain.Span
		want string
	}{
		{"contract value", f.ContractValue.Span, "25,000,000 ريال"},
		{"duration", f.Duration.Span, "18 شهراً"},
		{"final guarantee", f.FinalGuaranteePct.Span, "5%"},
	}
	for _, tc := range fields {
		t.Run(tc.name, func(t *testing.T) {
			require.LessOrEqual(t, tc.span.End, len(ex.Text))
			assert.Equal(t, tc.want, ex.Text[tc.span.Start:tc.span.End])
		})
	}
}

func TestExtract_EasternDigitsMatchWesternDigits(t *testing.T) {
	f := NewExtractor(nil).Extract(testfixtures.ContractEasternDigits, domain.KindContract).Facts

	require.NotNil(t, f.ContractValue)
	assert.Equal(t, 25000000.0, f.ContractValue.Value.Amount)
	assert.Equal(t, "SAR", f.ContractValue.Value.Currency)
	require.NotNil(t, f.Duration)
	assert.Equal(t, 18, f.Duration.Value.Months)
	require.NotNil(t, f.FinalGuaranteePct)
	assert.Equal(t, 5.0, f.FinalGuaranteePct.Value)
	assert.Equal(t, "أمانة منطقة الرياض", f.Parties[domain.PartyFirst].Value)
}

func TestExtract_FinancialTender(t *testing.T) {
	f := NewExtractor(nil).Extract(testfixtures.FinancialTender, domain.KindTender).Facts

	require.NotNil(t, f.TenderNumber)
	assert.Equal(t, "T-2024-015", f.TenderNumber.Value)
	require.NotNil(t, f.Owner)
	assert.Equal(t, "وزارة التعليم", f.Owner.Value)
	require.NotNil(t, f.Location)
	assert.Equal(t, "جدة", f.Location.Value)

	require.NotNil(t, f.IssueDate)
	assert.Equal(t, "2024-03-01", f.IssueDate.Value)
	require.NotNil(t, f.ClosingDate)
	assert.Equal(t, "2024-04-15", f.ClosingDate.Value)

	require.NotNil(t, f.ContractValue)
	assert.Equal(t, 12000000.0, f.ContractValue.Value.Amount)

	require.NotNil(t, f.Duration)
	assert.Equal(t, 18, f.Duration.Value.Months)
	assert.Equal(t, "year", f.Duration.Value.Unit)
	assert.Equal(t, "سنة ونصف", f.Duration.Value.Literal)

	require.NotNil(t, f.FinalGuaranteePct)
	assert.Equal(t, 6.0, f.FinalGuaranteePct.Value)

	require.NotNil(t, f.PaymentTerms)
	assert.Equal(t, 2, f.PaymentTerms.Value.LagMonths)
	require.NotNil(t, f.PaymentTerms.Value.RetentionPct)
	assert.Equal(t, 10.0, *f.PaymentTerms.Value.RetentionPct)

	require.NotNil(t, f.QualificationConditions)
	assert.Len(t, f.QualificationConditions.Value, 3)
	require.NotNil(t, f.RequiredGuarantees)
	assert.Equal(t, []string{"ضمان ابتدائي بنسبة 2%", "ضمان نهائي بنسبة 6%"}, f.RequiredGuarantees.Value)

	require.NotNil(t, f.EvaluationCriteria)
	assert.Equal(t, map[string]float64{"العرض الفني": 40, "العرض المالي": 60}, f.EvaluationCriteria.Value)

	assert.Nil(t, f.Parties)
}

func TestExtract_TechnicalSpecifications(t *testing.T) {
	f := NewExtractor(nil).Extract(testfixtures.TechnicalTender, domain.KindTender).Facts

	require.NotNil(t, f.TechnicalSpecifications)
	specs := f.TechnicalSpecifications.Value
	assert.Equal(t, []string{
		"الأعمال الإنشائية",
		"الأعمال الكهربائية",
		"الأعمال المعمارية",
		"الأعمال الميكانيكية",
	}, domain.SortedKeys(specs))
	assert.Contains(t, specs["الأعمال الميكانيكية"], "نظام تكييف مركزي")
	assert.Len(t, specs["الأعمال الإنشائية"], 2)

	require.NotNil(t, f.Duration)
	assert.Equal(t, 24, f.Duration.Value.Months)
	require.NotNil(t, f.ContractValue)
	assert.Equal(t, 30000000.0, f.ContractValue.Value.Amount)
}

func TestExtract_UnknownKindSkipsKindRestrictedSlots(t *testing.T) {
	f := NewExtractor(nil).Extract(testfixtures.FinancialTender, domain.KindUnknown).Facts

	assert.Nil(t, f.TenderNumber)
	assert.Nil(t, f.IssueDate)
	assert.Nil(t, f.EvaluationCriteria)
	require.NotNil(t, f.ContractValue)
}

func TestExtract_DefaultCurrency(t *testing.T) {
	text := "قيمة العقد: 750,000\nمدة التنفيذ: 6 أشهر"
	f := NewExtractor(nil, WithDefaultCurrency("AED")).Extract(text, domain.KindContract).Facts

	require.NotNil(t, f.ContractValue)
	assert.Equal(t, domain.Money{Amount: 750000, Currency: "AED"}, f.ContractValue.Value)
	assert.Equal(t, 6, f.Duration.Value.Months)
}

func TestExtract_PatternFallbacks(t *testing.T) {
	text := "يلتزم المقاول بتسليم الأعمال خلال 8 أشهر مقابل مبلغ 3,200,000 ريال وفي حال الخلاف يحال الأمر إلى المحكمة الإدارية"
	f := NewExtractor(nil).Extract(text, domain.KindContract).Facts

	require.NotNil(t, f.ContractValue)
	assert.Equal(t, 3200000.0, f.ContractValue.Value.Amount)
	assert.Equal(t, domain.ConfidencePattern, f.ContractValue.Confidence)

	require.NotNil(t, f.Duration)
	assert.Equal(t, 8, f.Duration.Value.Months)
	assert.Equal(t, domain.ConfidencePattern, f.Duration.Confidence)

	require.NotNil(t, f.DisputeResolution)
	assert.Equal(t, domain.ConfidencePattern, f.DisputeResolution.Confidence)
}

func TestExtract_DelayPenaltyCapInNextSentence(t *testing.T) {
	text := "غرامة التأخير: 0.5% عن كل يوم تأخير. وتكون الغرامة بحد أقصى 10% من قيمة العقد."
	f := NewExtractor(nil).Extract(text, domain.KindContract).Facts

	require.NotNil(t, f.DelayPenalty)
	assert.Equal(t, 0.5, f.DelayPenalty.Value.PerPeriodPct)
	assert.Equal(t, "day", f.DelayPenalty.Value.PeriodUnit)
	require.NotNil(t, f.DelayPenalty.Value.CapPct)
	assert.Equal(t, 10.0, *f.DelayPenalty.Value.CapPct)
	assert.Equal(t, domain.ConfidenceInferred, f.DelayPenalty.Confidence)
}

func TestExtract_PercentagesRoundedToTwoDecimals(t *testing.T) {
	text := "الضمان الابتدائي: 2.125% من قيمة العطاء\n" +
		"غرامة التأخير: 0.333% عن كل يوم تأخير بحد أقصى 9.999% من قيمة العقد\n" +
		"شروط الدفع: مستخلصات شهرية ويتم حجز 7.456% من كل مستخلص"
	f := NewExtractor(nil).Extract(text, domain.KindContract).Facts

	require.NotNil(t, f.InitialGuaranteePct)
	assert.Equal(t, 2.13, f.InitialGuaranteePct.Value)

	require.NotNil(t, f.DelayPenalty)
	assert.Equal(t, 0.33, f.DelayPenalty.Value.PerPeriodPct)
	require.NotNil(t, f.DelayPenalty.Value.CapPct)
	assert.Equal(t, 10.0, *f.DelayPenalty.Value.CapPct)

	require.NotNil(t, f.PaymentTerms)
	require.NotNil(t, f.PaymentTerms.Value.RetentionPct)
	assert.Equal(t, 7.46, *f.PaymentTerms.Value.RetentionPct)
}

func TestExtract_Invariants(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		kind     domain.DocumentKind
		rejected domain.Slot
		check    func(t *testing.T, f *domain.DocumentFacts)
	}{
		{
			name:     "cap below rate drops cap",
			text:     "غرامة التأخير: 5% عن كل أسبوع بحد أقصى 2% من قيمة العقد.",
			kind:     domain.KindContract,
			rejected: domain.SlotDelayPenalty,
			check: func(t *testing.T, f *domain.DocumentFacts) {
				require.NotNil(t, f.DelayPenalty)
				assert.Nil(t, f.DelayPenalty.Value.CapPct)
			},
		},
		{
			name:     "guarantees above 100 drop final",
			text:     "الضمان الابتدائي: 60%\nالضمان النهائي: 50%",
			kind:     domain.KindContract,
			rejected: domain.SlotFinalGuarantee,
			check: func(t *testing.T, f *domain.DocumentFacts) {
				assert.NotNil(t, f.InitialGuaranteePct)
				assert.Nil(t, f.FinalGuaranteePct)
			},
		},
		{
			name:     "closing before issue drops closing",
			text:     "تاريخ الطرح: 15/04/2024م\nتاريخ الإقفال: 01/03/2024م",
			kind:     domain.KindTender,
			rejected: domain.SlotClosingDate,
			check: func(t *testing.T, f *domain.DocumentFacts) {
				assert.NotNil(t, f.IssueDate)
				assert.Nil(t, f.ClosingDate)
			},
		},
		{
			name:     "criteria not summing to 100 dropped",
			text:     "معايير التقييم:\n- العرض الفني: 40%\n- العرض المالي: 50%",
			kind:     domain.KindTender,
			rejected: domain.SlotEvaluationCriteria,
			check: func(t *testing.T, f *domain.DocumentFacts) {
				assert.Nil(t, f.EvaluationCriteria)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ex := NewExtractor(nil).Extract(tc.text, tc.kind)
			require.Len(t, ex.Rejected, 1)
			assert.Equal(t, tc.rejected, ex.Rejected[0].Slot)
			tc.check(t, ex.Facts)
		})
	}
}

func TestRegistry_PriorityOrder(t *testing.T) {
	calls := []string{}
	mk := func(name string, priority int, value float64) Recognizer {
		return Recognizer{
			Slot:     domain.SlotInitialGuarantee,
			Name:     name,
			Priority: priority,
			Recognize: func(string) (Result, bool) {
				calls = append(calls, name)
				return Result{Value: value, Confidence: 0.9}, true
			},
		}
	}

	reg := NewRegistry(mk("pattern", PriorityPattern, 3), mk("anchor", PriorityAnchor, 2))
	f := NewExtractor(nil, WithRegistry(reg)).Extract("نص", domain.KindContract).Facts

	require.NotNil(t, f.InitialGuaranteePct)
	assert.Equal(t, 2.0, f.InitialGuaranteePct.Value)
	assert.Equal(t, []string{"anchor"}, calls)
}

func TestRecognizer_Applies(t *testing.T) {
	unrestricted := Recognizer{}
	tender := Recognizer{Kinds: []domain.DocumentKind{domain.KindTender}}

	assert.True(t, unrestricted.Applies(domain.KindUnknown))
	assert.True(t, tender.Applies(domain.KindTender))
	assert.False(t, tender.Applies(domain.KindContract))
	assert.False(t, tender.Applies(domain.KindUnknown))
}

func TestExtractor_Slots(t *testing.T) {
	ex := NewExtractor(nil)

	assert.Equal(t, domain.AllSlots, ex.Slots(domain.KindTender))

	contract := ex.Slots(domain.KindContract)
	assert.Contains(t, contract, domain.SlotParties)
	assert.Contains(t, contract, domain.SlotOwner)
	assert.NotContains(t, contract, domain.SlotTenderNumber)
	assert.NotContains(t, contract, domain.SlotTechnicalSpecifications)
	assert.Equal(t, contract, ex.Slots(domain.KindUnknown))
}
