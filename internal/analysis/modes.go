package analysis

import (
	"fmt"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// requiredSlots are the facts a non-quick analysis cannot run without.
func requiredSlots(mode domain.Mode, kind domain.DocumentKind) []domain.Slot {
	switch mode {
	case domain.ModeComprehensive:
		if kind == domain.KindTender {
			return []domain.Slot{domain.SlotTenderNumber}
		}
		return []domain.Slot{domain.SlotParties, domain.SlotContractValue, domain.SlotDuration}
	case domain.ModeLegal:
		return []domain.Slot{domain.SlotParties}
	case domain.ModeFinancial:
		return []domain.Slot{domain.SlotContractValue}
	case domain.ModeTechnical:
		return []domain.Slot{domain.SlotTechnicalSpecifications}
	}
	return nil
}

// checkMode rejects modes that do not apply to the document kind.
func checkMode(mode domain.Mode, kind domain.DocumentKind) error {
	switch {
	case kind == domain.KindDrawing && mode != domain.ModeQuick:
		return domain.InvalidMode(fmt.Sprintf("mode %s does not apply to drawings, use quick or the drawing analysis", mode))
	case kind == domain.KindUnknown && mode != domain.ModeQuick:
		return domain.InvalidMode(fmt.Sprintf("document kind is unknown, mode %s requires a contract or tender", mode))
	case mode == domain.ModeTechnical && kind != domain.KindTender:
		return domain.InvalidMode("technical mode applies to tenders only")
	case mode == domain.ModeLegal && kind != domain.KindContract:
		return domain.InvalidMode("legal mode applies to contracts only")
	}
	return nil
}

func validMode(mode domain.Mode) error {
	for _, m := range domain.Modes {
		if m == mode {
			return nil
		}
	}
	return domain.InvalidMode(fmt.Sprintf("unknown analysis mode %q", mode))
}
