package engines

import "github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"

// Competitors sketches the likely competitor field from the project size, owner and scope.
func Competitors(f *domain.DocumentFacts) []domain.CompetitorEntry {
	out := []domain.CompetitorEntry{}
	if f == nil {
		return out
	}
	amount := contractAmount(f)

	switch {
	case amount >= majorProject:
		out = append(out, domain.CompetitorEntry{
			Name:        "شركات مقاولات من الدرجة الأولى",
			Category:    "مقاولات عامة",
			Strengths:   []string{"ملاءة مالية عالية", "سجل مشاريع كبرى", "علاقات قوية مع الموردين"},
			Weaknesses:  []string{"تكاليف إدارية مرتفعة", "انشغال بعدة مشاريع متزامنة"},
			ThreatLevel: domain.LevelHigh,
		})
	case amount >= largeProject:
		out = append(out, domain.CompetitorEntry{
			Name:        "شركات مقاولات من الدرجة الثانية",
			Category:    "مقاولات عامة",
			Strengths:   []string{"أسعار تنافسية", "مرونة في التنفيذ"},
			Weaknesses:  []string{"قدرة تمويلية محدودة للمشاريع الكبيرة"},
			ThreatLevel: domain.LevelHigh,
		})
	default:
		out = append(out, domain.CompetitorEntry{
			Name:        "مؤسسات مقاولات صغيرة ومتوسطة",
			Category:    "مقاولات عامة",
			Strengths:   []string{"تكاليف تشغيل منخفضة", "سرعة اتخاذ القرار"},
			Weaknesses:  []string{"خبرة محدودة", "ضعف القدرة على تقديم الضمانات"},
			ThreatLevel: domain.LevelMedium,
		})
	}

	if IsGovernmentOwner(f) {
		out = append(out, domain.CompetitorEntry{
			Name:        "مقاولون مؤهلون لدى الجهات الحكومية",
			Category:    "مقاولات حكومية",
			Strengths:   []string{"خبرة في إجراءات المنافسات الحكومية", "تصنيف معتمد"},
			Weaknesses:  []string{"الاعتماد على التسعير المنخفض للفوز"},
			ThreatLevel: domain.LevelMedium,
		})
	}

	if len(tradeNames(f)) >= 3 || len(flaggedKeywords(f)) > 0 {
		out = append(out, domain.CompetitorEntry{
			Name:        "مقاولون متخصصون في الأعمال الكهروميكانيكية",
			Category:    "مقاولات تخصصية",
			Strengths:   []string{"خبرة فنية متخصصة", "وكالات موردين معتمدين"},
			Weaknesses:  []string{"محدودية الأعمال المدنية"},
			ThreatLevel: domain.LevelLow,
		})
	}

	return out
}
