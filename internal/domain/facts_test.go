package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFacts() *DocumentFacts {
	capPct := 10.0
	return &DocumentFacts{
		Kind: KindContract,
		Parties: map[PartyRole]*Field[string]{
			PartyFirst:  NewField("وزارة المالية", Span{}, 1),
			PartySecond: NewField("شركة المقاولات", Span{}, 0.8),
		},
		ContractValue:  NewField(Money{Amount: 25000000, Currency: "SAR"}, Span{Start: 3, End: 18}, 1),
		Duration:       NewField(Duration{Months: 18, Unit: "month", Literal: "18 شهراً"}, Span{}, 1),
		DelayPenalty:   NewField(DelayPenalty{PerPeriodPct: 1, PeriodUnit: "week", CapPct: &capPct}, Span{}, 1),
		WarrantyMonths: NewField(12, Span{}, 1),
		ProjectAreaM2:  NewField(5000.0, Span{}, 0.8),
	}
}

func TestNewField_ClampsConfidence(t *testing.T) {
	assert.Equal(t, 1.0, NewField("x", Span{}, 1.7).Confidence)
	assert.Equal(t, 0.0, NewField("x", Span{}, -0.2).Confidence)
}

func TestDocumentFacts_Confidence(t *testing.T) {
	f := sampleFacts()

	assert.Equal(t, 0.8, f.Confidence(SlotParties))
	assert.Equal(t, 1.0, f.Confidence(SlotContractValue))
	assert.Equal(t, 0.0, f.Confidence(SlotTenderNumber))
	assert.True(t, f.Has(SlotDuration))
	assert.False(t, f.Has(SlotOwner))

	var nilFacts *DocumentFacts
	assert.False(t, nilFacts.Has(SlotParties))
}

func TestDocumentFacts_Missing(t *testing.T) {
	f := sampleFacts()

	assert.Equal(t, []Slot{SlotTenderNumber, SlotOwner},
		f.Missing([]Slot{SlotParties, SlotTenderNumber, SlotContractValue, SlotOwner}))
	assert.NotNil(t, f.Missing(nil))
	assert.Empty(t, f.Missing(nil))
}

func TestDocumentFacts_Project(t *testing.T) {
	f := sampleFacts()
	p := f.Project([]Slot{SlotContractValue, SlotDuration})

	assert.True(t, p.Has(SlotContractValue))
	assert.True(t, p.Has(SlotDuration))
	assert.False(t, p.Has(SlotParties))
	assert.False(t, p.Has(SlotWarranty))
	assert.Equal(t, KindContract, p.Kind)
	// the original is untouched
	assert.True(t, f.Has(SlotParties))
}

func TestDocumentFacts_Display(t *testing.T) {
	f := sampleFacts()

	tests := []struct {
		slot     Slot
		expected string
	}{
		{SlotParties, "الطرف الأول: وزارة المالية؛ الطرف الثاني: شركة المقاولات"},
		{SlotContractValue, "25,000,000 ريال"},
		{SlotDuration, "18 شهراً"},
		{SlotDelayPenalty, "1% عن كل أسبوع بحد أقصى 10%"},
		{SlotWarranty, "12 شهراً"},
		{SlotProjectArea, "5,000 م²"},
	}
	for _, tc := range tests {
		t.Run(string(tc.slot), func(t *testing.T) {
			got, ok := f.Display(tc.slot)
			require.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, ok := f.Display(SlotOwner)
	assert.False(t, ok)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{25000000, "25,000,000"},
		{1234.5, "1,234.50"},
		{-4500000, "-4,500,000"},
		{99.999, "100"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, FormatNumber(tc.in))
	}
}

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "2%", FormatPct(2))
	assert.Equal(t, "2.5%", FormatPct(2.5))
}

func TestFormatMoney_UnknownCurrency(t *testing.T) {
	assert.Equal(t, "1,500 GBP", FormatMoney(Money{Amount: 1500, Currency: "GBP"}))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Financial ")
	require.NoError(t, err)
	assert.Equal(t, ModeFinancial, m)

	_, err = ParseMode("deep")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
