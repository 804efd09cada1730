package llm

import (
	"strings"
	"unicode/utf8"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// maxPromptRunes caps the document excerpt sent to a model.
const maxPromptRunes = 6000

var modeFocus = map[domain.Mode]string{
	domain.ModeComprehensive: "قدم ملخصاً شاملاً يغطي الجوانب القانونية والمالية والفنية وأبرز المخاطر.",
	domain.ModeQuick:         "قدم ملخصاً موجزاً في ثلاث جمل.",
	domain.ModeLegal:         "ركز على الالتزامات القانونية والضمانات والغرامات وفسخ العقد وتسوية النزاعات.",
	domain.ModeFinancial:     "ركز على القيمة وشروط الدفع والضمانات والغرامات وأثرها على التدفق النقدي.",
	domain.ModeTechnical:     "ركز على المواصفات الفنية والتخصصات ومدة التنفيذ.",
}

// SystemPrompt frames the model as a construction contracts analyst.
func SystemPrompt(mode domain.Mode) string {
	return "أنت محلل متخصص في عقود ومناقصات المقاولات في المملكة العربية السعودية. " +
		"اكتب باللغة العربية الفصحى ولا تذكر معلومات غير موجودة في المستند. " + modeFocus[mode]
}

// SummaryPrompt asks for a summary of a document given its extracted key points.
func SummaryPrompt(kind domain.DocumentKind, keyPoints []string, text string) string {
	var b strings.Builder
	b.WriteString("نوع المستند: ")
	b.WriteString(kind.ArabicLabel())
	b.WriteString("\n\n")
	if len(keyPoints) > 0 {
		b.WriteString("البيانات المستخرجة:\n")
		for _, p := range keyPoints {
			b.WriteString("- ")
			b.WriteString(p)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString("نص المستند:\n")
	b.WriteString(excerpt(text, maxPromptRunes))
	b.WriteString("\n\nاكتب ملخصاً للمستند.")
	return b.String()
}

func excerpt(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "…"
}
