package llm

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Entity labels produced by the local recognizer.
const (
	EntityOrganization = "ORG"
	EntityLocation     = "LOC"
	EntityMoney        = "MONEY"
	EntityDate         = "DATE"
	EntityPercent      = "PERCENT"
)

// SummaryResult is an extractive summary; Degraded marks a skipped or disabled run.
type SummaryResult struct {
	Text     string
	Degraded bool
}

// EntitiesResult holds recognised entities in text order.
type EntitiesResult struct {
	Entities []domain.NamedEntity
	Degraded bool
}

// NLPAdapter never fails; problems surface as Degraded results.
type NLPAdapter interface {
	Summarize(ctx context.Context, text string, sentences int) SummaryResult
	ExtractEntities(ctx context.Context, text string) EntitiesResult
}

// DisabledNLP returns empty degraded results.
type DisabledNLP struct{}

func (DisabledNLP) Summarize(context.Context, string, int) SummaryResult {
	return SummaryResult{Degraded: true}
}

func (DisabledNLP) ExtractEntities(context.Context, string) EntitiesResult {
	return EntitiesResult{Entities: []domain.NamedEntity{}, Degraded: true}
}

// LocalNLP is a dependency-free Arabic toolkit: frequency-scored extractive
// summaries and gazetteer/pattern entity recognition.
type LocalNLP struct{}

var stopwords = map[string]bool{
	"في": true, "من": true, "على": true, "إلى": true, "الى": true, "عن": true, "مع": true,
	"أو": true, "او": true, "و": true, "ثم": true, "أن": true, "ان": true, "إن": true,
	"هذا": true, "هذه": true, "ذلك": true, "التي": true, "الذي": true, "كل": true,
	"بعد": true, "قبل": true, "حتى": true, "خلال": true, "فيما": true, "به": true, "ما": true,
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', '؟', '\n':
			return true
		}
		return false
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Summarize picks the highest scoring sentences and returns them in document order.
func (LocalNLP) Summarize(ctx context.Context, text string, n int) SummaryResult {
	if ctx.Err() != nil {
		return SummaryResult{Degraded: true}
	}
	if n < 1 {
		n = 1
	}
	sentences := splitSentences(text)

	freq := map[string]int{}
	for _, s := range sentences {
		for _, tok := range tokens(s) {
			if !stopwords[tok] {
				freq[tok]++
			}
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	var candidates []scored
	for i, s := range sentences {
		toks := tokens(s)
		if len(toks) < 3 {
			continue
		}
		total := 0
		for _, tok := range toks {
			total += freq[tok]
		}
		candidates = append(candidates, scored{idx: i, score: float64(total) / float64(len(toks))})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].idx < candidates[j].idx })

	picked := make([]string, 0, len(candidates))
	for _, c := range candidates {
		picked = append(picked, sentences[c.idx]+".")
	}
	return SummaryResult{Text: strings.Join(picked, " ")}
}

var locations = []string{
	"الرياض", "جدة", "الدمام", "مكة المكرمة", "المدينة المنورة", "الخبر", "الطائف", "أبها",
	"تبوك", "القصيم", "حائل", "جازان", "نجران", "الأحساء", "ينبع", "دبي", "أبوظبي", "الدوحة",
	"الكويت", "القاهرة", "المنامة", "مسقط",
}

var entityPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{EntityOrganization, regexp.MustCompile(`(?:وزارة|أمانة|هيئة|بلدية|شركة|مؤسسة|جامعة)(?:[ \t]+[^\s،,.:؛]+){1,3}`)},
	{EntityLocation, regexp.MustCompile(strings.Join(locations, "|"))},
	{EntityMoney, regexp.MustCompile(`\d[\d,]*(?:\.\d+)?\s*(?:ريال|درهم|دولار|جنيه|دينار|SAR|AED|USD)`)},
	{EntityDate, regexp.MustCompile(`\b(?:\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})`)},
	{EntityPercent, regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)},
}

// ExtractEntities finds organisations, locations, amounts, dates and percentages.
// Overlaps keep the earliest, then the longest, match.
func (LocalNLP) ExtractEntities(ctx context.Context, text string) EntitiesResult {
	if ctx.Err() != nil {
		return EntitiesResult{Entities: []domain.NamedEntity{}, Degraded: true}
	}

	var found []domain.NamedEntity
	for _, p := range entityPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			found = append(found, domain.NamedEntity{
				Text:  text[loc[0]:loc[1]],
				Label: p.label,
				Start: loc[0],
				End:   loc[1],
			})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Start != found[j].Start {
			return found[i].Start < found[j].Start
		}
		return found[i].End > found[j].End
	})

	out := []domain.NamedEntity{}
	end := -1
	for _, e := range found {
		if e.Start < end {
			continue
		}
		out = append(out, e)
		end = e.End
	}
	return EntitiesResult{Entities: out}
}
