package engines

import (
	"strings"
	"time"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Value bands in the document currency.
const (
	largeProject  = 10_000_000
	mediumProject = 1_000_000
	majorProject  = 50_000_000
)

var governmentMarkers = []string{"وزارة", "أمانة", "امانة", "هيئة", "بلدية", "جامعة", "حكوم", "الديوان", "مؤسسة العامة", "المؤسسة العامة"}

// OwnerName returns the owning entity: the owner slot, else the owner party, else the first party.
func OwnerName(f *domain.DocumentFacts) string {
	if f == nil {
		return ""
	}
	if f.Owner != nil {
		return f.Owner.Value
	}
	for _, role := range []domain.PartyRole{domain.PartyOwner, domain.PartyFirst} {
		if p, ok := f.Parties[role]; ok {
			return p.Value
		}
	}
	return ""
}

// IsGovernmentOwner reports whether the owner reads as a public entity.
func IsGovernmentOwner(f *domain.DocumentFacts) bool {
	return containsAny(OwnerName(f), governmentMarkers)
}

func contractAmount(f *domain.DocumentFacts) float64 {
	if f == nil || f.ContractValue == nil {
		return 0
	}
	return f.ContractValue.Value.Amount
}

// Opportunities lists the commercial upsides implied by the facts.
func Opportunities(f *domain.DocumentFacts) []domain.OpportunityEntry {
	out := []domain.OpportunityEntry{}
	if f == nil {
		return out
	}

	if IsGovernmentOwner(f) {
		out = append(out, domain.OpportunityEntry{
			Title:       "عميل حكومي موثوق",
			Description: "التعامل مع " + OwnerName(f) + " يوفر انتظاماً نسبياً في الصرف وفرصاً لمشاريع مستقبلية",
			Potential:   domain.LevelHigh,
		})
	}

	switch amount := contractAmount(f); {
	case amount >= largeProject:
		out = append(out, domain.OpportunityEntry{
			Title:       "مشروع كبير الحجم",
			Description: "قيمة المشروع " + domain.FormatMoney(f.ContractValue.Value) + " تعزز حجم الأعمال وتصنيف المقاول",
			Potential:   domain.LevelHigh,
		})
	case amount >= mediumProject:
		out = append(out, domain.OpportunityEntry{
			Title:       "مشروع متوسط الحجم",
			Description: "قيمة المشروع مناسبة لبناء سجل أعمال مع مخاطر تمويلية محدودة",
			Potential:   domain.LevelMedium,
		})
	}

	if f.Duration != nil && f.Duration.Value.Months >= 18 {
		out = append(out, domain.OpportunityEntry{
			Title:       "استمرارية العمل لفترة طويلة",
			Description: "مدة التنفيذ " + f.Duration.Value.Literal + " تضمن تشغيلاً مستقراً للفرق والمعدات",
			Potential:   domain.LevelMedium,
		})
	}

	if f.PaymentTerms != nil && f.PaymentTerms.Value.AdvancePct != nil {
		out = append(out, domain.OpportunityEntry{
			Title:       "تحسين السيولة عبر الدفعة المقدمة",
			Description: "دفعة مقدمة بنسبة " + domain.FormatPct(*f.PaymentTerms.Value.AdvancePct) + " تخفف الحاجة للتمويل في بداية المشروع",
			Potential:   domain.LevelMedium,
		})
	}

	if f.ProjectAreaM2 != nil {
		out = append(out, domain.OpportunityEntry{
			Title:       "إضافة مشروع مباني إلى سجل الخبرات",
			Description: "مساحة " + domain.FormatNumber(f.ProjectAreaM2.Value) + " م² تدعم التأهيل لمشاريع مماثلة",
			Potential:   domain.LevelMedium,
		})
	}

	if w, ok := technicalWeight(f); ok && w >= 40 {
		out = append(out, domain.OpportunityEntry{
			Title:       "التميز الفني يرفع فرص الترسية",
			Description: "وزن العرض الفني " + domain.FormatPct(w) + " يتيح المنافسة بالجودة لا بالسعر وحده",
			Potential:   domain.LevelMedium,
		})
	}

	if len(tradeNames(f)) >= 3 {
		out = append(out, domain.OpportunityEntry{
			Title:       "شراكات مع مقاولي باطن متخصصين",
			Description: "تعدد التخصصات يتيح توزيع الأعمال وبناء شراكات طويلة الأمد",
			Potential:   domain.LevelLow,
		})
	}

	return out
}

func technicalWeight(f *domain.DocumentFacts) (float64, bool) {
	if f.EvaluationCriteria == nil {
		return 0, false
	}
	for _, name := range domain.SortedKeys(f.EvaluationCriteria.Value) {
		if strings.Contains(name, "فني") {
			return f.EvaluationCriteria.Value[name], true
		}
	}
	return 0, false
}

// daysBetween returns the bid window between issue and closing dates.
func daysBetween(f *domain.DocumentFacts) (int, bool) {
	if f.IssueDate == nil || f.ClosingDate == nil {
		return 0, false
	}
	issue, err1 := time.Parse(time.DateOnly, f.IssueDate.Value)
	closing, err2 := time.Parse(time.DateOnly, f.ClosingDate.Value)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return int(closing.Sub(issue).Hours() / 24), true
}
