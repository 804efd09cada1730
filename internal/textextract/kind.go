package textextract

import (
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Textual signal weights. A tender booklet usually mentions the contract it will
// lead to, so tender phrases weigh more than a bare "عقد".
const (
	weightContract    = 1
	weightTender      = 2
	weightTenderTerms = 3
)

var nameHints = []struct {
	kind     domain.DocumentKind
	keywords []string
}{
	{domain.KindTender, []string{"tender", "rfp", "rfq", "مناقصة", "منافسة", "كراسة"}},
	{domain.KindContract, []string{"contract", "agreement", "عقد"}},
}

// kindFromName guesses the kind from the file name alone.
func kindFromName(name string) domain.DocumentKind {
	lower := strings.ToLower(name)
	for _, h := range nameHints {
		for _, kw := range h.keywords {
			if strings.Contains(lower, kw) {
				return h.kind
			}
		}
	}
	return domain.KindUnknown
}

// headingLines is how many non-empty leading lines count as the document heading.
const headingLines = 5

// tenderMarkers identify a tender booklet when they appear in the heading.
var tenderMarkers = []string{"كراسة الشروط", "كراسة المواصفات", "مناقصة رقم", "منافسة"}

// kindFromHeading reads the title region. A first line opening with "عقد" names a
// contract; otherwise a booklet marker in any heading line names a tender.
func kindFromHeading(text string) domain.DocumentKind {
	var heading []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			heading = append(heading, line)
			if len(heading) == headingLines {
				break
			}
		}
	}
	if len(heading) == 0 {
		return domain.KindUnknown
	}

	hasMarker := func(line string) bool {
		for _, m := range tenderMarkers {
			if strings.Contains(line, m) {
				return true
			}
		}
		return false
	}

	if strings.HasPrefix(heading[0], "عقد") && !hasMarker(heading[0]) {
		return domain.KindContract
	}
	for _, line := range heading {
		if hasMarker(line) {
			return domain.KindTender
		}
	}
	return domain.KindUnknown
}

// InferKind classifies a textual document. The heading decides when it carries a
// title marker, since tender booklets quote "العقد" throughout their general
// conditions. Otherwise body signals override the file name; equal non-zero scores
// fall back to the name hint, then to tender.
func InferKind(name, text string) domain.DocumentKind {
	if kind := kindFromHeading(text); kind != domain.KindUnknown {
		return kind
	}

	contract := weightContract * strings.Count(text, "عقد")
	tender := weightTender*strings.Count(text, "مناقصة") +
		weightTenderTerms*strings.Count(text, "كراسة الشروط")

	hint := kindFromName(name)
	switch {
	case contract > tender:
		return domain.KindContract
	case tender > contract:
		return domain.KindTender
	case contract == 0:
		return hint
	case hint != domain.KindUnknown:
		return hint
	}
	return domain.KindTender
}
