package fields

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Result is a recognized slot value with its provenance.
type Result struct {
	Value      any
	Span       domain.Span
	Confidence float64
}

// Recognizer is a pure function from normalised text to an optional slot value.
type Recognizer struct {
	Slot domain.Slot
	// Role distinguishes the per-role recognizers of the parties slot.
	Role     domain.PartyRole
	Name     string
	Kinds    []domain.DocumentKind
	Priority int
	Recognize func(text string) (Result, bool)
}

// key is the unit of "first success wins".
func (r Recognizer) key() string {
	if r.Role != "" {
		return string(r.Slot) + "." + string(r.Role)
	}
	return string(r.Slot)
}

// Applies reports whether the recognizer runs for documents of kind k.
// Recognizers restricted to specific kinds never run on unknown documents.
func (r Recognizer) Applies(k domain.DocumentKind) bool {
	if len(r.Kinds) == 0 {
		return true
	}
	for _, kind := range r.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Registry keeps recognizers ordered by priority, then registration order.
type Registry struct {
	recognizers []Recognizer
}

// NewRegistry creates a registry holding the given recognizers.
func NewRegistry(rs ...Recognizer) *Registry {
	r := &Registry{}
	for _, rec := range rs {
		r.Register(rec)
	}
	return r
}

// Register adds a recognizer.
func (r *Registry) Register(rec Recognizer) {
	r.recognizers = append(r.recognizers, rec)
	sort.SliceStable(r.recognizers, func(i, j int) bool {
		return r.recognizers[i].Priority < r.recognizers[j].Priority
	})
}

// All returns the recognizers in evaluation order.
func (r *Registry) All() []Recognizer {
	return r.recognizers
}

// Slots returns the slots with at least one recognizer applicable to kind, in
// presentation order.
func (r *Registry) Slots(k domain.DocumentKind) []domain.Slot {
	applies := map[domain.Slot]bool{}
	for _, rec := range r.recognizers {
		if rec.Applies(k) {
			applies[rec.Slot] = true
		}
	}
	slots := []domain.Slot{}
	for _, s := range domain.AllSlots {
		if applies[s] {
			slots = append(slots, s)
		}
	}
	return slots
}

// Priorities by evidence basis.
const (
	PriorityAnchor  = 10
	PriorityList    = 15
	PriorityPattern = 20
)

var tenderOnly = []domain.DocumentKind{domain.KindTender}

// DefaultRegistry returns the built-in Arabic recognizer set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		partyRecognizer(domain.PartyFirst, `الطرف ال[أا]ول\s*(?:[:：\-]|هو|وهو|وهي)`),
		partyRecognizer(domain.PartySecond, `الطرف الثاني\s*(?:[:：\-]|هو|وهو|وهي)`),
		partyRecognizer(domain.PartyOwner, `(?m)^\s*(?:المالك|صاحب العمل)\s*[:：]`),

		anchor(domain.SlotProjectName, "project-name", `(?m)^\s*(?:اسم المشروع|عنوان المشروع|المشروع)\s*[:：]`, nil, textValue(150)),
		anchor(domain.SlotContractValue, "contract-value",
			`قيمة العقد|القيمة الإجمالية للعقد|إجمالي قيمة العقد|القيمة التقديرية|قيمة المشروع|التكلفة التقديرية|قيمة الأعمال`,
			nil, moneyValue),
		pattern(domain.SlotContractValue, "largest-amount", nil, largestAmount),

		anchor(domain.SlotDuration, "duration",
			`مدة التنفيذ|مدة تنفيذ|فترة التنفيذ|مدة المشروع|مدة العقد|مدة الأعمال|مدة الإنجاز`, nil, durationValue),
		pattern(domain.SlotDuration, "execution-within", nil, executionWithin),

		anchor(domain.SlotInitialGuarantee, "initial-guarantee",
			`الضمان البنكي الابتدائي|الضمان الابتدائي|ضمان ابتدائي|ضمان العطاء`, nil, percentValue),
		anchor(domain.SlotFinalGuarantee, "final-guarantee",
			`الضمان البنكي النهائي|الضمان النهائي|ضمان نهائي|ضمان حسن التنفيذ`, nil, percentValue),

		Recognizer{Slot: domain.SlotDelayPenalty, Name: "delay-penalty", Priority: PriorityAnchor, Recognize: recognizeDelayPenalty},
		Recognizer{Slot: domain.SlotPaymentTerms, Name: "payment-terms", Priority: PriorityAnchor, Recognize: recognizePaymentTerms},

		anchor(domain.SlotWarranty, "warranty",
			`فترة الضمان|مدة الضمان|فترة الصيانة|مدة الصيانة|ضمان الأعمال|الضمان والصيانة`, nil, warrantyValue),
		anchor(domain.SlotTermination, "termination", `فسخ العقد|إنهاء العقد|انهاء العقد|سحب العمل`, nil, clauseValue),
		anchor(domain.SlotDisputeResolution, "dispute",
			`تسوية النزاعات|تسوية الخلافات|حل النزاعات|فض النزاعات|النزاعات|التحكيم`, nil, clauseValue),
		pattern(domain.SlotDisputeResolution, "dispute-forum", nil, disputeForum),

		anchor(domain.SlotProjectArea, "project-area",
			`مساحة المشروع|مساحة البناء|مساحة الأرض|مساحة الموقع|المساحة الإجمالية|المساحة`, nil, areaValue),
		pattern(domain.SlotProjectArea, "area-unit", nil, areaAnywhere),

		anchor(domain.SlotTenderNumber, "tender-number",
			`رقم المناقصة|رقم المنافسة|مناقصة رقم|منافسة رقم`, tenderOnly, referenceValue),
		anchor(domain.SlotOwner, "owner",
			`(?m)^\s*(?:الجهة المالكة|الجهة صاحبة المشروع|الجهة المستفيدة|صاحب العمل|المالك)\s*[:：]`, nil, nameValue),
		anchor(domain.SlotLocation, "location",
			`(?m)^\s*(?:موقع المشروع|موقع العمل|مكان التنفيذ|الموقع)\s*[:：]`, nil, textValue(120)),
		anchor(domain.SlotIssueDate, "issue-date",
			`تاريخ الطرح|تاريخ طرح|تاريخ الإصدار|تاريخ الاصدار|تاريخ الإعلان`, tenderOnly, dateValue),
		anchor(domain.SlotClosingDate, "closing-date",
			`تاريخ الإقفال|تاريخ الاقفال|تاريخ الإغلاق|آخر موعد لتقديم العروض|موعد تقديم العروض|تاريخ فتح المظاريف`,
			tenderOnly, dateValue),

		listRecognizer(domain.SlotQualification, "qualification",
			`شروط التأهيل|الشروط المؤهلة|متطلبات التأهيل|شروط الأهلية`, simpleList),
		listRecognizer(domain.SlotRequiredGuarantees, "required-guarantees",
			`الضمانات المطلوبة|الضمانات البنكية المطلوبة`, simpleList),
		listRecognizer(domain.SlotTechnicalSpecifications, "technical-specifications",
			`المواصفات الفنية|المواصفات التقنية|نطاق الأعمال الفنية`, specList),
		listRecognizer(domain.SlotEvaluationCriteria, "evaluation-criteria",
			`معايير التقييم|معايير التقويم|أسس التقييم|معايير الترسية`, criteriaList),
	)
}

// valueParser extracts a value from an anchored run; start and end are offsets into run.
type valueParser func(run string) (value any, start, end int, ok bool)

// anchor builds a recognizer that captures the run after each match of pattern and
// returns the first run the parser accepts.
func anchor(slot domain.Slot, name, pattern string, kinds []domain.DocumentKind, parse valueParser) Recognizer {
	re := regexp.MustCompile(pattern)
	return Recognizer{
		Slot:     slot,
		Name:     name,
		Kinds:    kinds,
		Priority: PriorityAnchor,
		Recognize: func(text string) (Result, bool) {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				run, span := captureRun(text, loc[1])
				if v, s, e, ok := parse(run); ok {
					return Result{
						Value:      v,
						Span:       domain.Span{Start: span.Start + s, End: span.Start + e},
						Confidence: domain.ConfidenceAnchor,
					}, true
				}
			}
			return Result{}, false
		},
	}
}

// pattern builds a whole-text recognizer scored at pattern confidence.
func pattern(slot domain.Slot, name string, kinds []domain.DocumentKind, find func(text string) (any, domain.Span, bool)) Recognizer {
	return Recognizer{
		Slot:     slot,
		Name:     name,
		Kinds:    kinds,
		Priority: PriorityPattern,
		Recognize: func(text string) (Result, bool) {
			v, span, ok := find(text)
			if !ok {
				return Result{}, false
			}
			return Result{Value: v, Span: span, Confidence: domain.ConfidencePattern}, true
		},
	}
}

type partyValue struct {
	role domain.PartyRole
	name string
}

func partyRecognizer(role domain.PartyRole, pattern string) Recognizer {
	rec := anchor(domain.SlotParties, "party-"+string(role), pattern, nil, func(run string) (any, int, int, bool) {
		v, s, e, ok := nameValue(run)
		if !ok {
			return nil, 0, 0, false
		}
		return partyValue{role: role, name: v.(string)}, s, e, true
	})
	rec.Role = role
	return rec
}

var nameStops = []string{"ويشار", "ويمثله", "ويمثلها", "ومقره", "ومقرها", "ومركزه", "وعنوانه", "(", "،", ","}

// nameValue keeps the leading legal name of a party, dropping descriptive tails.
func nameValue(run string) (any, int, int, bool) {
	end := len(run)
	for _, stop := range nameStops {
		if i := strings.Index(run, stop); i >= 0 && i < end {
			end = i
		}
	}
	name := strings.TrimSpace(run[:end])
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 120 {
		return nil, 0, 0, false
	}
	return name, 0, len(name), true
}

func textValue(max int) valueParser {
	return func(run string) (any, int, int, bool) {
		v := clip(strings.TrimSpace(run), max)
		if utf8.RuneCountInString(v) < 2 {
			return nil, 0, 0, false
		}
		return v, 0, len(v), true
	}
}

// clauseValue accepts runs of at least two words, as clause headers alone carry no terms.
func clauseValue(run string) (any, int, int, bool) {
	v := clip(strings.TrimSpace(run), 200)
	if len(strings.Fields(v)) < 2 {
		return nil, 0, 0, false
	}
	return v, 0, len(v), true
}

func moneyValue(run string) (any, int, int, bool) {
	m, ok := pickAmount(run)
	if !ok {
		return nil, 0, 0, false
	}
	return domain.Money{Amount: m.amount, Currency: m.currency}, m.start, m.end, true
}

func durationValue(run string) (any, int, int, bool) {
	p, ok := parsePeriod(run)
	if !ok {
		return nil, 0, 0, false
	}
	months := wholeMonths(p.months)
	if months <= 0 {
		return nil, 0, 0, false
	}
	return domain.Duration{Months: months, Unit: p.unit, Literal: run[p.start:p.end]}, p.start, p.end, true
}

func warrantyValue(run string) (any, int, int, bool) {
	p, ok := parsePeriod(run)
	if !ok {
		return nil, 0, 0, false
	}
	return wholeMonths(p.months), p.start, p.end, true
}

func percentValue(run string) (any, int, int, bool) {
	p, ok := firstPercent(run)
	if !ok {
		return nil, 0, 0, false
	}
	return p.value, p.start, p.end, true
}

func dateValue(run string) (any, int, int, bool) {
	d, ok := parseDate(run)
	if !ok {
		return nil, 0, 0, false
	}
	return d.iso, d.start, d.end, true
}

var referenceToken = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9/\-_.]*[A-Za-z0-9]|[0-9]`)

func referenceValue(run string) (any, int, int, bool) {
	loc := referenceToken.FindStringIndex(run)
	if loc == nil {
		return nil, 0, 0, false
	}
	return run[loc[0]:loc[1]], loc[0], loc[1], true
}

var areaPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)\s*(م2|م²|متر مربع|مترا مربعا|متراً مربعاً|m2|m²)`)

func areaValue(run string) (any, int, int, bool) {
	if m := areaPattern.FindStringSubmatchIndex(run); m != nil {
		v, err := strconv.ParseFloat(strings.ReplaceAll(run[m[2]:m[3]], ",", ""), 64)
		if err == nil && v > 0 {
			return v, m[0], m[1], true
		}
	}
	return nil, 0, 0, false
}

func areaAnywhere(text string) (any, domain.Span, bool) {
	v, s, e, ok := areaValue(text)
	return v, domain.Span{Start: s, End: e}, ok
}

// largestAmount picks the largest currency-marked amount in the document.
func largestAmount(text string) (any, domain.Span, bool) {
	var best *moneyMatch
	for _, m := range findMoney(text) {
		if m.currency == "" {
			continue
		}
		if best == nil || m.amount > best.amount {
			mm := m
			best = &mm
		}
	}
	if best == nil {
		return nil, domain.Span{}, false
	}
	return domain.Money{Amount: best.amount, Currency: best.currency}, domain.Span{Start: best.start, End: best.end}, true
}

var executionPhrase = regexp.MustCompile(`(?:ينفذ|تنفيذ|إنجاز|انجاز|تسليم)[^\n.؛]{0,40}?(?:خلال|في مدة|لمدة)\s*`)

func executionWithin(text string) (any, domain.Span, bool) {
	for _, loc := range executionPhrase.FindAllStringIndex(text, -1) {
		run, span := captureRun(text, loc[1])
		if v, s, e, ok := durationValue(run); ok && s == 0 {
			return v, domain.Span{Start: span.Start + s, End: span.Start + e}, true
		}
	}
	return nil, domain.Span{}, false
}

var disputeForumPattern = regexp.MustCompile(`ديوان المظالم|المحكمة الإدارية|المحاكم المختصة|هيئة التحكيم|مركز التحكيم`)

func disputeForum(text string) (any, domain.Span, bool) {
	loc := disputeForumPattern.FindStringIndex(text)
	if loc == nil {
		return nil, domain.Span{}, false
	}
	start, end := lineBounds(text, loc[0])
	sentence := clip(strings.TrimSpace(text[start:end]), 200)
	return sentence, domain.Span{Start: start, End: start + len(sentence)}, true
}

var (
	delayAnchor   = regexp.MustCompile(`غرامة التأخير|غرامة تأخير|غرامات التأخير|غرامة التأخر`)
	capPattern    = regexp.MustCompile(`(?:بحد أقصى|بحد اقصى|وبحد أقصى|حدها الأقصى|حد أقصى|بما لا يتجاوز|لا تتجاوز|لا يتجاوز)[^%\d\n]{0,25}?(\d+(?:\.\d+)?)\s*(?:%|في المائة|بالمائة)`)
	periodPattern = regexp.MustCompile(`(?:عن|لكل|في)\s*(?:كل\s+)?(يوم|أسبوع|اسبوع|شهر)|(يومي|أسبوعي|اسبوعي|شهري)`)
)

// recognizeDelayPenalty reads the per-period rate and unit from the anchored clause.
// A cap stated in the same clause keeps anchor confidence; a cap only found in the next
// sentence of the paragraph is inferred and lowers the field confidence.
func recognizeDelayPenalty(text string) (Result, bool) {
	for _, loc := range delayAnchor.FindAllStringIndex(text, -1) {
		run, span := captureRun(text, loc[1])

		capLoc := capPattern.FindStringSubmatchIndex(run)
		var per *percentMatch
		for _, p := range findPercents(run) {
			if capLoc != nil && p.start >= capLoc[0] && p.start < capLoc[1] {
				continue
			}
			pp := p
			per = &pp
			break
		}
		if per == nil {
			continue
		}

		dp := domain.DelayPenalty{PerPeriodPct: per.value, PeriodUnit: "day"}
		if m := periodPattern.FindStringSubmatch(run); m != nil {
			word := m[1]
			if word == "" {
				word = m[2]
			}
			dp.PeriodUnit = canonicalUnit(word)
		}

		confidence := domain.ConfidenceAnchor
		end := span.End
		if capLoc != nil {
			v, _ := parsePct(run[capLoc[2]:capLoc[3]])
			dp.CapPct = &v
			end = span.Start + capLoc[1]
		} else if next, nspan, ok := nextSentence(text, span.End); ok {
			if m := capPattern.FindStringSubmatchIndex(next); m != nil {
				v, _ := parsePct(next[m[2]:m[3]])
				dp.CapPct = &v
				confidence = domain.ConfidenceInferred
				end = nspan.Start + m[1]
			}
		}

		return Result{
			Value:      dp,
			Span:       domain.Span{Start: span.Start, End: end},
			Confidence: confidence,
		}, true
	}
	return Result{}, false
}

// nextSentence returns the sentence following the terminator at pos, within the same paragraph.
func nextSentence(text string, pos int) (string, domain.Span, bool) {
	if pos >= len(text) {
		return "", domain.Span{}, false
	}
	if strings.HasPrefix(text[pos:], "\n\n") {
		return "", domain.Span{}, false
	}
	_, size := utf8.DecodeRuneInString(text[pos:])
	next := pos + size
	if next < len(text) && isHeaderLine(text[next:min(len(text), next+80)]) {
		return "", domain.Span{}, false
	}
	run, span := captureRun(text, next)
	if run == "" {
		return "", domain.Span{}, false
	}
	return run, span, true
}

var (
	paymentAnchor    = regexp.MustCompile(`شروط الدفع|طريقة الدفع|آلية الدفع|آلية الصرف|شروط السداد|الدفعات|المستخلصات`)
	retentionPattern = regexp.MustCompile(`(?:يحتجز|تحتجز|يتم حجز|حجز|احتجاز|محتجزات|استقطاع|يستقطع|تستقطع)[^%\n]{0,40}?(\d+(?:\.\d+)?)\s*%`)
	advancePattern   = regexp.MustCompile(`(?:دفعة مقدمة|دفعة مقدّمة|الدفعة المقدمة|دفعة أولى مقدمة)[^%\n]{0,30}?(\d+(?:\.\d+)?)\s*%|(\d+(?:\.\d+)?)\s*%\s*(?:كدفعة مقدمة|دفعة مقدمة)`)
	lagPattern       = regexp.MustCompile(`خلال\s*(\d+)\s*(يوم|يوما|أيام|ايام|شهر|أشهر|اشهر)`)
)

func recognizePaymentTerms(text string) (Result, bool) {
	for _, loc := range paymentAnchor.FindAllStringIndex(text, -1) {
		run, rspan := captureRun(text, loc[1])
		if len(strings.Fields(run)) < 2 {
			continue
		}
		para, pspan := captureParagraph(text, rspan.Start)
		if para == "" {
			para, pspan = run, rspan
		}

		pt := domain.PaymentTerms{Text: clip(run, 200), Cadence: cadence(para)}
		if m := retentionPattern.FindStringSubmatch(para); m != nil {
			v, _ := parsePct(m[1])
			pt.RetentionPct = &v
		}
		if m := advancePattern.FindStringSubmatch(para); m != nil {
			raw := m[1]
			if raw == "" {
				raw = m[2]
			}
			v, _ := parsePct(raw)
			pt.AdvancePct = &v
		}
		if m := lagPattern.FindStringSubmatch(para); m != nil {
			n, _ := strconv.Atoi(m[1])
			if canonicalUnit(m[2]) == "day" {
				pt.LagMonths = (n + 29) / 30
			} else {
				pt.LagMonths = n
			}
		}

		return Result{Value: pt, Span: pspan, Confidence: domain.ConfidenceAnchor}, true
	}
	return Result{}, false
}

func cadence(s string) string {
	switch {
	case strings.Contains(s, "ربع سنوي") || strings.Contains(s, "كل ثلاثة أشهر"):
		return "quarterly"
	case strings.Contains(s, "دفعة واحدة"):
		return "lump_sum"
	case strings.Contains(s, "شهري") || strings.Contains(s, "شهرياً") || strings.Contains(s, "شهريا") || strings.Contains(s, "كل شهر"):
		return "monthly"
	case strings.Contains(s, "مراحل") || strings.Contains(s, "نسبة الإنجاز") || strings.Contains(s, "نسب الإنجاز"):
		return "milestone"
	}
	return "monthly"
}
