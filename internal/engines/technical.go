package engines

import (
	"sort"
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Canonical trade names.
const (
	TradeStructural    = "structural"
	TradeArchitectural = "architectural"
	TradeElectrical    = "electrical"
	TradeMechanical    = "mechanical"
	TradeSiteWorks     = "site_works"
	TradeGeneral       = "general"
)

var tradeKeywords = []struct {
	trade    string
	keywords []string
}{
	{TradeStructural, []string{"إنشائ", "انشائ", "خرسان", "هيكل"}},
	{TradeArchitectural, []string{"معماري", "تشطيب", "تشطيبات"}},
	{TradeElectrical, []string{"كهرب", "إنارة", "انارة"}},
	{TradeMechanical, []string{"ميكانيك", "تكييف", "سباكة", "صحي"}},
	{TradeSiteWorks, []string{"الموقع", "طرق", "تنسيق", "خارجية"}},
	{TradeGeneral, []string{"عام"}},
}

// FlagKeywords mark specialised systems that raise technical complexity.
var FlagKeywords = []string{"مركزي", "آلي", "مزخرف"}

// CanonicalTrade maps a trade header to its canonical name; unknown headers are kept.
func CanonicalTrade(header string) string {
	for _, tk := range tradeKeywords {
		if containsAny(header, tk.keywords) {
			return tk.trade
		}
	}
	return strings.TrimSpace(header)
}

func tradeNames(f *domain.DocumentFacts) []string {
	if f == nil || f.TechnicalSpecifications == nil {
		return nil
	}
	seen := map[string]bool{}
	var trades []string
	for _, header := range domain.SortedKeys(f.TechnicalSpecifications.Value) {
		t := CanonicalTrade(header)
		if !seen[t] {
			seen[t] = true
			trades = append(trades, t)
		}
	}
	sort.Strings(trades)
	return trades
}

// flaggedKeywords returns the flag keywords present in any requirement, in FlagKeywords order.
func flaggedKeywords(f *domain.DocumentFacts) []string {
	if f == nil || f.TechnicalSpecifications == nil {
		return nil
	}
	var text strings.Builder
	for _, header := range domain.SortedKeys(f.TechnicalSpecifications.Value) {
		text.WriteString(header)
		text.WriteByte('\n')
		for _, item := range f.TechnicalSpecifications.Value[header] {
			text.WriteString(item)
			text.WriteByte('\n')
		}
	}
	var found []string
	for _, kw := range FlagKeywords {
		if strings.Contains(text.String(), kw) {
			found = append(found, kw)
		}
	}
	return found
}

// Technical classifies the technical specifications. It returns nil when the
// document states none.
func Technical(f *domain.DocumentFacts) *domain.TechnicalAnalysis {
	if f == nil || f.TechnicalSpecifications == nil {
		return nil
	}

	trades := tradeNames(f)
	flags := flaggedKeywords(f)
	requirements := 0
	for _, items := range f.TechnicalSpecifications.Value {
		requirements += len(items)
	}
	if flags == nil {
		flags = []string{}
	}

	return &domain.TechnicalAnalysis{
		Trades:           trades,
		TradeCount:       len(trades),
		RequirementCount: requirements,
		FlaggedKeywords:  flags,
		Complexity:       complexity(len(trades), len(flags)),
	}
}

func complexity(trades, flags int) domain.Level {
	switch {
	case trades >= 6 || flags >= 2:
		return domain.LevelHigh
	case trades <= 2 && flags == 0:
		return domain.LevelLow
	}
	return domain.LevelMedium
}
