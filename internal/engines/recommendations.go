package engines

import (
	"strconv"
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

var modeSlots = map[domain.Mode][]domain.Slot{
	domain.ModeQuick: {
		domain.SlotParties, domain.SlotProjectName, domain.SlotContractValue, domain.SlotDuration,
		domain.SlotInitialGuarantee, domain.SlotFinalGuarantee, domain.SlotTenderNumber, domain.SlotOwner,
	},
	domain.ModeLegal: {
		domain.SlotParties, domain.SlotProjectName, domain.SlotInitialGuarantee, domain.SlotFinalGuarantee,
		domain.SlotDelayPenalty, domain.SlotWarranty, domain.SlotTermination, domain.SlotDisputeResolution,
	},
	domain.ModeFinancial: {
		domain.SlotProjectName, domain.SlotContractValue, domain.SlotDuration, domain.SlotInitialGuarantee,
		domain.SlotFinalGuarantee, domain.SlotDelayPenalty, domain.SlotPaymentTerms, domain.SlotProjectArea,
		domain.SlotTenderNumber, domain.SlotEvaluationCriteria,
	},
	domain.ModeTechnical: {
		domain.SlotProjectName, domain.SlotDuration, domain.SlotProjectArea, domain.SlotTenderNumber,
		domain.SlotOwner, domain.SlotLocation, domain.SlotTechnicalSpecifications,
	},
}

// ModeSlots returns the facts a mode reports, in presentation order.
func ModeSlots(mode domain.Mode) []domain.Slot {
	if slots, ok := modeSlots[mode]; ok {
		return slots
	}
	return domain.AllSlots
}

var modeAdvice = map[domain.Mode][]string{
	domain.ModeComprehensive: {
		"مراجعة جميع البنود التعاقدية مع مستشار قانوني قبل التوقيع",
		"إعداد دراسة تكاليف تفصيلية وجدول زمني قبل تقديم العرض",
	},
	domain.ModeQuick: {
		"إجراء تحليل شامل للمستند قبل اتخاذ القرار",
	},
	domain.ModeLegal: {
		"مراجعة البنود القانونية مع مستشار قانوني مختص",
	},
	domain.ModeFinancial: {
		"إعداد خطة تمويل تغطي الفجوة النقدية في الأشهر الأولى",
		"مراجعة التكاليف غير المباشرة وهامش الربح قبل التسعير",
	},
	domain.ModeTechnical: {
		"التحقق من توفر الكوادر الفنية والمعدات المطلوبة لكل تخصص",
	},
}

// Recommendations merges risk mitigations with the mode's standing advice.
// Entries are unique and keep their first position.
func Recommendations(f *domain.DocumentFacts, risks []domain.RiskEntry, mode domain.Mode) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		key := strings.Join(strings.Fields(s), " ")
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	for _, r := range risks {
		add(r.Mitigation)
	}
	if f != nil && mode != domain.ModeQuick {
		if missing := f.Missing(ModeSlots(mode)); len(missing) > 0 {
			labels := make([]string, 0, len(missing))
			for _, s := range missing {
				labels = append(labels, domain.SlotLabels[s])
			}
			add("استيضاح البيانات غير المذكورة: " + strings.Join(labels, "، "))
		}
	}
	for _, s := range modeAdvice[mode] {
		add(s)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// KeyPoints renders the facts the mode reports as "label: value" lines.
func KeyPoints(f *domain.DocumentFacts, mode domain.Mode) []string {
	points := []string{}
	if f == nil {
		return points
	}
	for _, s := range ModeSlots(mode) {
		if s == domain.SlotTechnicalSpecifications {
			continue
		}
		if v, ok := f.Display(s); ok {
			points = append(points, domain.SlotLabels[s]+": "+v)
		}
	}
	if tech := Technical(f); tech != nil && (mode == domain.ModeTechnical || mode == domain.ModeComprehensive) {
		points = append(points, "عدد التخصصات الفنية: "+strconv.Itoa(tech.TradeCount)+"، عدد المتطلبات: "+strconv.Itoa(tech.RequirementCount))
	}
	return points
}
