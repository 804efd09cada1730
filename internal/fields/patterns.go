package fields

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// diacritics tolerates optional harakat and tanween inside unit words.
const diacritics = `[\x{064B}-\x{0652}]*`

var (
	moneyPattern = regexp.MustCompile(
		`(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)\s*(مليار|مليون|ألف|الف)?\s*` +
			`(ريال سعودي|ريال قطري|ريال|ر\.س|دولار أمريكي|دولار|يورو|درهم إماراتي|درهم|جنيه مصري|جنيه|دينار كويتي|دينار|SAR|USD|EUR|AED|EGP|QAR|KWD)?`)

	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:%|في المائة|في المئة|بالمائة|بالمئة)`)

	numericPeriod = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(` +
		`شهر` + diacritics + `(?:ا` + diacritics + `)?|أشهر|اشهر|شهور|` +
		`سنوات|سنة|سنه|أعوام|اعوام|عاما` + diacritics + `|عام|` +
		`أسابيع|اسابيع|أسبوعا` + diacritics + `|أسبوع|اسبوع|` +
		`أيام|ايام|يوما` + diacritics + `|يوم|` +
		`months?|years?|weeks?|days?)`)

	wordNumber = `(واحدة|واحد|اثنتين|اثنين|اثنان|ثلاثة|ثلاث|أربعة|اربعة|أربع|خمسة|خمس|ستة|ست|سبعة|سبع|ثمانية|ثماني|ثمان|تسعة|تسع|عشرة|عشر)`

	wordNumbers = map[string]float64{
		"واحد": 1, "واحدة": 1,
		"اثنان": 2, "اثنين": 2, "اثنتين": 2,
		"ثلاث": 3, "ثلاثة": 3,
		"أربع": 4, "أربعة": 4, "اربعة": 4,
		"خمس": 5, "خمسة": 5,
		"ست": 6, "ستة": 6,
		"سبع": 7, "سبعة": 7,
		"ثمان": 8, "ثماني": 8, "ثمانية": 8,
		"تسع": 9, "تسعة": 9,
		"عشر": 10, "عشرة": 10,
	}

	wordPeriods = []struct {
		re     *regexp.Regexp
		months func(m []string) float64
		unit   func(m []string) string
	}{
		{regexp.MustCompile(`(?:سنة|عام)\s+ونصف`), constMonths(18), constUnit("year")},
		{regexp.MustCompile(`(?:سنة|عام)\s+واحد[ةه]?`), constMonths(12), constUnit("year")},
		{regexp.MustCompile(`سنتين|سنتان|عامين|عامان`), constMonths(24), constUnit("year")},
		{regexp.MustCompile(`نصف\s+(?:سنة|عام)`), constMonths(6), constUnit("year")},
		{regexp.MustCompile(`شهرين|شهران`), constMonths(2), constUnit("month")},
		{
			regexp.MustCompile(wordNumber + `\s+(أشهر|اشهر|شهور|سنوات|أعوام|اعوام|أسابيع|اسابيع|أيام|ايام)`),
			func(m []string) float64 { return wordNumbers[m[1]] * unitFactor(m[2]) },
			func(m []string) string { return canonicalUnit(m[2]) },
		},
		{
			regexp.MustCompile(`(?:^|\s)(شهر|سنة|عام)(?:\s|$)`),
			func(m []string) float64 { return unitFactor(m[1]) },
			func(m []string) string { return canonicalUnit(m[1]) },
		},
	}

	numericDate = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`)
	isoDate     = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

func constMonths(n float64) func([]string) float64 { return func([]string) float64 { return n } }
func constUnit(u string) func([]string) string    { return func([]string) string { return u } }

var currencyCodes = map[string]string{
	"ريال سعودي":   "SAR",
	"ريال":         "SAR",
	"ر.س":          "SAR",
	"ريال قطري":    "QAR",
	"دولار أمريكي": "USD",
	"دولار":        "USD",
	"يورو":         "EUR",
	"درهم إماراتي": "AED",
	"درهم":         "AED",
	"جنيه مصري":    "EGP",
	"جنيه":         "EGP",
	"دينار كويتي":  "KWD",
	"دينار":        "KWD",
}

var multipliers = map[string]float64{
	"ألف":   1e3,
	"الف":   1e3,
	"مليون": 1e6,
	"مليار": 1e9,
}

type moneyMatch struct {
	amount   float64
	currency string
	explicit bool
	start    int
	end      int
}

// findMoney returns every amount in s that is not a percentage.
func findMoney(s string) []moneyMatch {
	var out []moneyMatch
	for _, m := range moneyPattern.FindAllStringSubmatchIndex(s, -1) {
		if followedByPercent(s, m[3]) || precededByWordChar(s, m[2]) {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(s[m[2]:m[3]], ",", ""), 64)
		if err != nil || amount < 0 {
			continue
		}
		mm := moneyMatch{
			amount: amount,
			start:  m[0],
			end:    m[0] + len(strings.TrimRightFunc(s[m[0]:m[1]], unicode.IsSpace)),
		}
		if m[4] >= 0 {
			mm.amount *= multipliers[s[m[4]:m[5]]]
			mm.explicit = true
		}
		if m[6] >= 0 {
			word := s[m[6]:m[7]]
			if code, ok := currencyCodes[word]; ok {
				mm.currency = code
			} else {
				mm.currency = word
			}
			mm.explicit = true
		}
		out = append(out, mm)
	}
	return out
}

// pickAmount chooses the amount an anchored run refers to: the first one carrying a
// currency or multiplier, otherwise the first bare number of at least 1000.
func pickAmount(s string) (moneyMatch, bool) {
	matches := findMoney(s)
	for _, m := range matches {
		if m.explicit {
			return m, true
		}
	}
	for _, m := range matches {
		if m.amount >= 1000 {
			return m, true
		}
	}
	return moneyMatch{}, false
}

func followedByPercent(s string, end int) bool {
	rest := strings.TrimLeft(s[end:], " ")
	for _, p := range []string{"%", "في المائة", "في المئة", "بالمائة", "بالمئة"} {
		if strings.HasPrefix(rest, p) {
			return true
		}
	}
	return false
}

func precededByWordChar(s string, start int) bool {
	if start == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:start])
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '/' || r == '-' || r == '.'
}

type percentMatch struct {
	value      float64
	start, end int
}

func findPercents(s string) []percentMatch {
	var out []percentMatch
	for _, m := range percentPattern.FindAllStringSubmatchIndex(s, -1) {
		v, err := parsePct(s[m[2]:m[3]])
		if err != nil || v < 0 || v > 100 {
			continue
		}
		out = append(out, percentMatch{value: v, start: m[0], end: m[1]})
	}
	return out
}

// parsePct parses a captured percentage, rounded to two decimals.
func parsePct(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	return math.Round(v*100) / 100, err
}

// firstPercent returns the first percentage in s.
func firstPercent(s string) (percentMatch, bool) {
	p := findPercents(s)
	if len(p) == 0 {
		return percentMatch{}, false
	}
	return p[0], true
}

type periodMatch struct {
	months     float64
	unit       string
	start, end int
}

// parsePeriod finds the earliest period expression in s and converts it to months.
// Ties on position prefer the longer literal, so "سنة ونصف" wins over "سنة".
func parsePeriod(s string) (periodMatch, bool) {
	var cands []periodMatch

	for _, m := range numericPeriod.FindAllStringSubmatchIndex(s, -1) {
		if precededByWordChar(s, m[2]) {
			continue
		}
		n, err := strconv.ParseFloat(s[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		unitWord := s[m[4]:m[5]]
		cands = append(cands, periodMatch{
			months: n * unitFactor(unitWord),
			unit:   canonicalUnit(unitWord),
			start:  m[0],
			end:    m[1],
		})
	}

	for _, wp := range wordPeriods {
		for _, idx := range wp.re.FindAllStringSubmatchIndex(s, -1) {
			groups := make([]string, len(idx)/2)
			for g := range groups {
				if idx[2*g] >= 0 {
					groups[g] = s[idx[2*g]:idx[2*g+1]]
				}
			}
			start, end := idx[0], idx[1]
			if wp.re.NumSubexp() == 1 {
				// the bare-unit pattern consumes surrounding spaces
				start, end = idx[2], idx[3]
			}
			cands = append(cands, periodMatch{
				months: wp.months(groups),
				unit:   wp.unit(groups),
				start:  start,
				end:    end,
			})
		}
	}

	if len(cands) == 0 {
		return periodMatch{}, false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].end-cands[i].start > cands[j].end-cands[j].start
	})
	return cands[0], true
}

// unitFactor converts one unit of the given word to months.
func unitFactor(word string) float64 {
	switch canonicalUnit(word) {
	case "year":
		return 12
	case "week":
		return 0.25
	case "day":
		return 1.0 / 30
	default:
		return 1
	}
}

func canonicalUnit(word string) string {
	w := strings.ToLower(word)
	switch {
	case strings.Contains(w, "شهر") || strings.Contains(w, "شهور") || strings.HasPrefix(w, "month"):
		return "month"
	case strings.Contains(w, "سن") || strings.Contains(w, "عام") || strings.Contains(w, "أعوام") ||
		strings.Contains(w, "اعوام") || strings.HasPrefix(w, "year"):
		return "year"
	case strings.Contains(w, "سبوع") || strings.Contains(w, "سابيع") || strings.HasPrefix(w, "week"):
		return "week"
	case strings.Contains(w, "يوم") || strings.Contains(w, "يام") || strings.HasPrefix(w, "day"):
		return "day"
	}
	return "month"
}

// wholeMonths rounds a period to whole months; sub-month periods round up to one.
func wholeMonths(m float64) int {
	if m <= 0 {
		return 0
	}
	if m < 1 {
		return 1
	}
	return int(math.Round(m))
}

type dateMatch struct {
	iso        string
	start, end int
}

// parseDate finds the first Gregorian date in s and returns it as YYYY-MM-DD.
// Dates marked Hijri ("هـ", which normalises to "ه") are skipped.
func parseDate(s string) (dateMatch, bool) {
	type cand struct {
		y, mo, d   string
		start, end int
	}
	var cands []cand
	for _, m := range numericDate.FindAllStringSubmatchIndex(s, -1) {
		cands = append(cands, cand{s[m[6]:m[7]], s[m[4]:m[5]], s[m[2]:m[3]], m[0], m[1]})
	}
	for _, m := range isoDate.FindAllStringSubmatchIndex(s, -1) {
		cands = append(cands, cand{s[m[2]:m[3]], s[m[4]:m[5]], s[m[6]:m[7]], m[0], m[1]})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].start < cands[j].start })

	for _, c := range cands {
		end := c.end
		rest := strings.TrimLeft(s[end:], " ")
		if strings.HasPrefix(rest, "ه") && markerEnds(rest, "ه") {
			continue
		}
		if strings.HasPrefix(rest, "م") && markerEnds(rest, "م") {
			end = len(s) - len(rest) + len("م")
		}
		y, _ := strconv.Atoi(c.y)
		mo, _ := strconv.Atoi(c.mo)
		d, _ := strconv.Atoi(c.d)
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
			continue
		}
		return dateMatch{iso: fmt.Sprintf("%04d-%02d-%02d", y, mo, d), start: c.start, end: end}, true
	}
	return dateMatch{}, false
}

// markerEnds reports whether the one-letter marker at the start of rest stands alone.
func markerEnds(rest, marker string) bool {
	after := rest[len(marker):]
	if after == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(after)
	return !unicode.IsLetter(r)
}
