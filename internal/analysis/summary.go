package analysis

import (
	"fmt"
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Title names the report after the project, falling back to the tender number or file name.
func Title(f *domain.DocumentFacts, mode domain.Mode, kind domain.DocumentKind, filename string) string {
	subject := filename
	switch {
	case f != nil && f.ProjectName != nil:
		subject = f.ProjectName.Value
	case f != nil && f.TenderNumber != nil:
		subject = "رقم " + f.TenderNumber.Value
	}
	title := mode.ArabicLabel() + " - " + kind.ArabicLabel()
	if subject != "" {
		title += ": " + subject
	}
	return title
}

// Entities flattens the facts into Arabic label to display value pairs.
func Entities(f *domain.DocumentFacts, slots []domain.Slot) map[string]string {
	out := map[string]string{}
	if f == nil {
		return out
	}
	for _, s := range slots {
		if v, ok := f.Display(s); ok {
			out[domain.SlotLabels[s]] = v
		}
	}
	return out
}

// TemplateSummary is the deterministic summary used when no model runs or a model fails.
func TemplateSummary(f *domain.DocumentFacts, mode domain.Mode, risks []domain.RiskEntry, missing []domain.Slot) string {
	var parts []string

	var lead []string
	lead = append(lead, f.Kind.ArabicLabel())
	if f.ProjectName != nil {
		lead = append(lead, "لمشروع "+f.ProjectName.Value)
	}
	if f.TenderNumber != nil {
		lead = append(lead, "رقم "+f.TenderNumber.Value)
	}
	if parties := partyNames(f); parties != "" {
		lead = append(lead, parties)
	} else if f.Owner != nil {
		lead = append(lead, "للجهة المالكة "+f.Owner.Value)
	}
	parts = append(parts, strings.Join(lead, " ")+".")

	var terms []string
	if f.ContractValue != nil {
		terms = append(terms, "بقيمة "+domain.FormatMoney(f.ContractValue.Value))
	}
	if f.Duration != nil {
		terms = append(terms, "ومدة تنفيذ "+f.Duration.Value.Literal)
	}
	if f.Location != nil {
		terms = append(terms, "في "+f.Location.Value)
	}
	if len(terms) > 0 {
		parts = append(parts, "المشروع "+strings.Join(terms, " ")+".")
	}

	var obligations []string
	if f.InitialGuaranteePct != nil {
		obligations = append(obligations, "ضمان ابتدائي "+domain.FormatPct(f.InitialGuaranteePct.Value))
	}
	if f.FinalGuaranteePct != nil {
		obligations = append(obligations, "ضمان نهائي "+domain.FormatPct(f.FinalGuaranteePct.Value))
	}
	if f.DelayPenalty != nil && mode != domain.ModeQuick {
		obligations = append(obligations, "غرامة تأخير "+domain.FormatDelayPenalty(f.DelayPenalty.Value))
	}
	if len(obligations) > 0 {
		parts = append(parts, "يتضمن "+strings.Join(obligations, "، ")+".")
	}

	if len(risks) > 0 {
		high := 0
		for _, r := range risks {
			if r.Impact == domain.LevelHigh {
				high++
			}
		}
		parts = append(parts, fmt.Sprintf("تم رصد %d من المخاطر منها %d عالية الأثر.", len(risks), high))
	}

	if len(missing) > 0 {
		labels := make([]string, 0, len(missing))
		for _, s := range missing {
			labels = append(labels, domain.SlotLabels[s])
		}
		parts = append(parts, "لم يتضمن المستند: "+strings.Join(labels, "، ")+".")
	}

	return strings.Join(parts, " ")
}

func partyNames(f *domain.DocumentFacts) string {
	first, okFirst := f.Parties[domain.PartyFirst]
	second, okSecond := f.Parties[domain.PartySecond]
	switch {
	case okFirst && okSecond:
		return "بين " + first.Value + " و" + second.Value
	case okFirst:
		return "مع " + first.Value
	case okSecond:
		return "مع " + second.Value
	}
	return ""
}

// drawingSummary describes a parsed drawing.
func drawingSummary(p *domain.DrawingPayload, cost *domain.DrawingCost) string {
	parts := []string{fmt.Sprintf("مخطط يحتوي على %d عنصراً في %d طبقات.", p.Elements.Total, len(p.Elements.Layers))}
	if b := p.Elements.BoundingBox; b != nil {
		parts = append(parts, fmt.Sprintf("أبعاد المخطط %s × %s %s.",
			domain.FormatNumber(b.Width()), domain.FormatNumber(b.Height()), p.Elements.Units))
	}
	if len(p.Materials) > 0 {
		items := make([]string, 0, len(p.Materials))
		for _, m := range p.Materials {
			items = append(items, fmt.Sprintf("%s %s %s", m.Material, domain.FormatNumber(m.Quantity), m.Unit))
		}
		parts = append(parts, "الكميات المحصورة: "+strings.Join(items, "، ")+".")
	}
	if cost != nil && cost.Total > 0 {
		parts = append(parts, "التكلفة التقديرية "+domain.FormatMoney(domain.Money{Amount: cost.Total, Currency: cost.Currency})+".")
	}
	return strings.Join(parts, " ")
}
