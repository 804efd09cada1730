// Package engines holds the deterministic heuristics that derive risk, opportunity,
// competitor, technical, cost and cash-flow views from document facts.
package engines

import (
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

type riskRule struct {
	category domain.RiskCategory
	// kinds restricts the rule; nil applies to every kind
	kinds []domain.DocumentKind
	when  func(f *domain.DocumentFacts) bool
	build func(f *domain.DocumentFacts) domain.RiskEntry
}

func fixed(risk string, p, i domain.Level, mitigation string) func(*domain.DocumentFacts) domain.RiskEntry {
	return func(*domain.DocumentFacts) domain.RiskEntry {
		return domain.RiskEntry{Risk: risk, Probability: p, Impact: i, Mitigation: mitigation}
	}
}

var (
	contractOnly = []domain.DocumentKind{domain.KindContract}
	tenderOnly   = []domain.DocumentKind{domain.KindTender}
)

var courtForums = []string{"ديوان المظالم", "المحكمة", "المحاكم", "القضاء"}

var ownerMentions = []string{"طرف الأول", "المالك"}

// riskCatalogue is evaluated in order; the output order follows it.
var riskCatalogue = []riskRule{
	// legal
	{
		category: domain.RiskLegal,
		when:     func(f *domain.DocumentFacts) bool { return !f.Has(domain.SlotDisputeResolution) },
		build: fixed("عدم وضوح آلية تسوية النزاعات", domain.LevelMedium, domain.LevelHigh,
			"إضافة بند صريح لتسوية النزاعات يحدد التسوية الودية ثم جهة الاختصاص"),
	},
	{
		category: domain.RiskLegal,
		kinds:    contractOnly,
		when:     func(f *domain.DocumentFacts) bool { return !f.Has(domain.SlotParties) },
		build: fixed("عدم تحديد أطراف العقد بدقة", domain.LevelLow, domain.LevelHigh,
			"التحقق من الصفة النظامية للأطراف ومن يمثلهم قبل التوقيع"),
	},
	{
		category: domain.RiskLegal,
		kinds:    contractOnly,
		when:     func(f *domain.DocumentFacts) bool { return !f.Has(domain.SlotTermination) },
		build: fixed("غياب شروط واضحة لفسخ العقد", domain.LevelMedium, domain.LevelHigh,
			"التفاوض على بند فسخ متوازن يحدد حالات الفسخ والتعويض"),
	},
	{
		category: domain.RiskLegal,
		when: func(f *domain.DocumentFacts) bool {
			return f.TerminationClause != nil && containsAny(f.TerminationClause.Value, ownerMentions)
		},
		build: fixed("صلاحية المالك في فسخ العقد بإرادة منفردة", domain.LevelMedium, domain.LevelHigh,
			"التفاوض على مهلة إنذار كافية وتعويض عن الأعمال المنفذة والمواد الموردة"),
	},
	{
		category: domain.RiskLegal,
		when:     func(f *domain.DocumentFacts) bool { return f.DelayPenalty != nil },
		build: func(f *domain.DocumentFacts) domain.RiskEntry {
			impact := domain.LevelMedium
			if c := f.DelayPenalty.Value.CapPct; c == nil || *c >= 10 {
				impact = domain.LevelHigh
			}
			return domain.RiskEntry{
				Risk:        "التعرض لغرامات التأخير (" + domain.FormatDelayPenalty(f.DelayPenalty.Value) + ")",
				Probability: domain.LevelMedium,
				Impact:      impact,
				Mitigation:  "إعداد جدول زمني واقعي ومتابعة المسار الحرج أسبوعياً",
			}
		},
	},
	{
		category: domain.RiskLegal,
		when: func(f *domain.DocumentFacts) bool {
			return f.DelayPenalty != nil && f.DelayPenalty.Value.CapPct == nil
		},
		build: fixed("غرامة التأخير غير محددة بسقف أعلى", domain.LevelHigh, domain.LevelHigh,
			"المطالبة بتحديد حد أقصى لغرامات التأخير لا يتجاوز 10% من قيمة العقد"),
	},
	{
		category: domain.RiskLegal,
		when: func(f *domain.DocumentFacts) bool {
			return f.DisputeResolution != nil && containsAny(f.DisputeResolution.Value, courtForums)
		},
		build: fixed("طول إجراءات التقاضي أمام الجهات القضائية", domain.LevelMedium, domain.LevelMedium,
			"اقتراح التحكيم أو لجنة فض المنازعات كمرحلة تسبق التقاضي"),
	},

	// financial
	{
		category: domain.RiskFinancial,
		when: func(f *domain.DocumentFacts) bool {
			return f.InitialGuaranteePct != nil && f.InitialGuaranteePct.Value >= 2 &&
				f.DelayPenalty != nil && f.DelayPenalty.Value.CapPct != nil && *f.DelayPenalty.Value.CapPct == 10
		},
		build: fixed("ارتفاع أسعار المواد", domain.LevelMedium, domain.LevelHigh,
			"تثبيت أسعار المواد الرئيسية مع الموردين"),
	},
	{
		category: domain.RiskFinancial,
		when:     func(f *domain.DocumentFacts) bool { return !f.Has(domain.SlotPaymentTerms) },
		build: fixed("عدم وضوح شروط الدفع وآلية صرف المستخلصات", domain.LevelHigh, domain.LevelHigh,
			"طلب جدول دفعات مكتوب يحدد مواعيد اعتماد المستخلصات وصرفها"),
	},
	{
		category: domain.RiskFinancial,
		when: func(f *domain.DocumentFacts) bool {
			return f.PaymentTerms != nil && f.PaymentTerms.Value.RetentionPct != nil && *f.PaymentTerms.Value.RetentionPct >= 10
		},
		build: fixed("احتجاز نسبة مرتفعة من المستخلصات يضغط على السيولة", domain.LevelHigh, domain.LevelMedium,
			"التفاوض على الإفراج عن المحتجزات مقابل ضمان بنكي"),
	},
	{
		category: domain.RiskFinancial,
		when: func(f *domain.DocumentFacts) bool {
			return f.PaymentTerms != nil && f.PaymentTerms.Value.LagMonths >= 1
		},
		build: func(f *domain.DocumentFacts) domain.RiskEntry {
			p := domain.LevelMedium
			if f.PaymentTerms.Value.LagMonths >= 2 {
				p = domain.LevelHigh
			}
			return domain.RiskEntry{
				Risk:        "تأخر صرف المستخلصات وأثره على التدفق النقدي",
				Probability: p,
				Impact:      domain.LevelHigh,
				Mitigation:  "تأمين تسهيلات ائتمانية تغطي فترة تأخر الصرف",
			}
		},
	},
	{
		category: domain.RiskFinancial,
		when: func(f *domain.DocumentFacts) bool {
			return f.FinalGuaranteePct != nil && f.FinalGuaranteePct.Value >= 5
		},
		build: fixed("تجميد جزء من رأس المال في الضمانات البنكية", domain.LevelMedium, domain.LevelMedium,
			"التفاوض مع البنك على عمولات الضمانات وتخفيض الغطاء النقدي"),
	},
	{
		category: domain.RiskFinancial,
		when: func(f *domain.DocumentFacts) bool {
			return f.ContractValue != nil && (f.PaymentTerms == nil || f.PaymentTerms.Value.AdvancePct == nil)
		},
		build: fixed("غياب الدفعة المقدمة يزيد الحاجة إلى التمويل الذاتي", domain.LevelMedium, domain.LevelMedium,
			"طلب دفعة مقدمة مقابل ضمان بنكي أو ترتيب تمويل مرحلي"),
	},
	{
		category: domain.RiskFinancial,
		when: func(f *domain.DocumentFacts) bool {
			return f.ContractValue != nil && f.ContractValue.Value.Amount >= largeProject
		},
		build: fixed("ضخامة الالتزام المالي مقارنة بالملاءة المالية للمقاول", domain.LevelLow, domain.LevelHigh,
			"دراسة الدخول في تحالف أو توزيع الأعمال على مقاولي باطن مؤهلين"),
	},

	// technical
	{
		category: domain.RiskTechnical,
		kinds:    tenderOnly,
		when:     func(f *domain.DocumentFacts) bool { return !f.Has(domain.SlotTechnicalSpecifications) },
		build: fixed("نقص المواصفات الفنية التفصيلية", domain.LevelHigh, domain.LevelHigh,
			"تقديم استفسارات رسمية قبل موعد الإقفال وتسعير البنود غير الواضحة بتحفظ"),
	},
	{
		category: domain.RiskTechnical,
		when:     func(f *domain.DocumentFacts) bool { return len(tradeNames(f)) >= 3 },
		build: fixed("تعدد التخصصات يتطلب تنسيقاً دقيقاً بين مقاولي الباطن", domain.LevelMedium, domain.LevelHigh,
			"إعداد خطة تنسيق ومخططات ورشة موحدة بين التخصصات"),
	},
	{
		category: domain.RiskTechnical,
		when:     func(f *domain.DocumentFacts) bool { return len(flaggedKeywords(f)) > 0 },
		build: func(f *domain.DocumentFacts) domain.RiskEntry {
			return domain.RiskEntry{
				Risk:        "أنظمة متخصصة (" + strings.Join(flaggedKeywords(f), "، ") + ") تتطلب خبرات وموردين معتمدين",
				Probability: domain.LevelMedium,
				Impact:      domain.LevelHigh,
				Mitigation:  "التعاقد المبكر مع موردين ومقاولين متخصصين معتمدين",
			}
		},
	},
	{
		category: domain.RiskTechnical,
		when:     func(f *domain.DocumentFacts) bool { return f.TechnicalSpecifications != nil },
		build: fixed("احتمال تعارض المواصفات الفنية مع المخططات وجداول الكميات", domain.LevelMedium, domain.LevelMedium,
			"مراجعة المواصفات مقابل المخططات وجداول الكميات قبل التسعير"),
	},
	{
		category: domain.RiskTechnical,
		when:     func(f *domain.DocumentFacts) bool { return f.TechnicalSpecifications != nil },
		build: fixed("متطلبات اختبارات الجودة واعتماد المواد", domain.LevelLow, domain.LevelMedium,
			"إعداد خطة ضبط جودة واعتماد عينات المواد مسبقاً"),
	},
	{
		category: domain.RiskTechnical,
		when:     func(f *domain.DocumentFacts) bool { return f.Duration != nil },
		build: func(f *domain.DocumentFacts) domain.RiskEntry {
			p := domain.LevelMedium
			if f.Duration.Value.Months < 12 {
				p = domain.LevelHigh
			}
			return domain.RiskEntry{
				Risk:        "تأخر الجدول الزمني خلال مدة التنفيذ (" + f.Duration.Value.Literal + ")",
				Probability: p,
				Impact:      domain.LevelHigh,
				Mitigation:  "إعداد جدول زمني تفصيلي وتحديثه شهرياً مع إنذار مبكر للانحرافات",
			}
		},
	},
	{
		category: domain.RiskTechnical,
		when:     func(f *domain.DocumentFacts) bool { return f.WarrantyMonths != nil && f.WarrantyMonths.Value >= 12 },
		build: fixed("التزامات الصيانة خلال فترة الضمان", domain.LevelLow, domain.LevelMedium,
			"تخصيص فريق صيانة وميزانية احتياطية لفترة الضمان"),
	},
	{
		category: domain.RiskTechnical,
		kinds:    []domain.DocumentKind{domain.KindContract, domain.KindTender},
		when:     func(*domain.DocumentFacts) bool { return true },
		build: fixed("مخاطر السلامة المهنية في موقع العمل", domain.LevelMedium, domain.LevelHigh,
			"تطبيق خطة سلامة معتمدة وتعيين مشرف سلامة متفرغ"),
	},

	// general
	{
		category: domain.RiskGeneral,
		kinds:    tenderOnly,
		when: func(f *domain.DocumentFacts) bool {
			days, ok := daysBetween(f)
			return ok && days < 30
		},
		build: fixed("ضيق الوقت المتاح لإعداد العرض", domain.LevelHigh, domain.LevelMedium,
			"تشكيل فريق تسعير مبكراً وطلب تمديد موعد الإقفال عند الحاجة"),
	},
	{
		category: domain.RiskGeneral,
		when: func(f *domain.DocumentFacts) bool {
			return len(f.Missing(coreSlots(f.Kind))) >= 2
		},
		build: fixed("نقص البيانات الأساسية في المستند", domain.LevelMedium, domain.LevelMedium,
			"طلب استكمال البيانات الناقصة من الجهة المالكة قبل الالتزام"),
	},
}

// Risks returns the catalogue entries that apply to the facts, filtered by mode.
// Quick mode never runs the risk engine.
func Risks(f *domain.DocumentFacts, mode domain.Mode) []domain.RiskEntry {
	out := []domain.RiskEntry{}
	if f == nil || mode == domain.ModeQuick {
		return out
	}
	for _, rule := range riskCatalogue {
		if !modeAllows(mode, rule.category) || !kindAllows(rule.kinds, f.Kind) || !rule.when(f) {
			continue
		}
		entry := rule.build(f)
		entry.Category = rule.category
		out = append(out, entry)
	}
	return out
}

func modeAllows(mode domain.Mode, c domain.RiskCategory) bool {
	switch mode {
	case domain.ModeComprehensive:
		return true
	case domain.ModeLegal:
		return c == domain.RiskLegal
	case domain.ModeFinancial:
		return c == domain.RiskFinancial
	case domain.ModeTechnical:
		return c == domain.RiskTechnical
	}
	return false
}

func kindAllows(kinds []domain.DocumentKind, k domain.DocumentKind) bool {
	if kinds == nil {
		return true
	}
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// coreSlots are the facts every document of the kind is expected to state.
func coreSlots(k domain.DocumentKind) []domain.Slot {
	switch k {
	case domain.KindContract:
		return []domain.Slot{domain.SlotParties, domain.SlotContractValue, domain.SlotDuration, domain.SlotPaymentTerms}
	case domain.KindTender:
		return []domain.Slot{domain.SlotTenderNumber, domain.SlotOwner, domain.SlotClosingDate, domain.SlotDuration}
	}
	return []domain.Slot{domain.SlotContractValue, domain.SlotDuration}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
