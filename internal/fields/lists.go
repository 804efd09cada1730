package fields

import (
	"regexp"
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// listLine is one line of a list section with its byte offset in the document.
type listLine struct {
	text  string
	start int
}

// listParser turns the inline remainder of the header line and the following lines
// into a value, reporting how many lines it consumed.
type listParser func(inline string, lines []listLine) (value any, consumed int, ok bool)

// listRecognizer finds a section header and parses the lines below it, stopping at
// the first blank line or article header.
func listRecognizer(slot domain.Slot, name, header string, parse listParser) Recognizer {
	re := regexp.MustCompile(header)
	return Recognizer{
		Slot:     slot,
		Name:     name,
		Kinds:    tenderOnly,
		Priority: PriorityList,
		Recognize: func(text string) (Result, bool) {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				_, lineEnd := lineBounds(text, loc[0])
				inline := strings.TrimSpace(strings.TrimLeft(text[loc[1]:lineEnd], " :：-–"))
				lines := sectionLines(text, lineEnd)

				v, consumed, ok := parse(inline, lines)
				if !ok {
					continue
				}
				end := lineEnd
				if consumed > 0 {
					last := lines[consumed-1]
					end = last.start + len(last.text)
				}
				return Result{
					Value:      v,
					Span:       domain.Span{Start: loc[0], End: end},
					Confidence: domain.ConfidenceAnchor,
				}, true
			}
			return Result{}, false
		},
	}
}

// sectionLines returns the lines following offset up to a blank line or header line.
func sectionLines(text string, offset int) []listLine {
	var lines []listLine
	pos := offset
	for pos < len(text) && text[pos] == '\n' {
		pos++
		end := strings.IndexByte(text[pos:], '\n')
		if end < 0 {
			end = len(text) - pos
		}
		line := text[pos : pos+end]
		if strings.TrimSpace(line) == "" || isHeaderLine(line) {
			break
		}
		lines = append(lines, listLine{text: line, start: pos})
		pos += end
	}
	return lines
}

var inlineSeparators = regexp.MustCompile(`\s*[،؛,]\s*`)

// simpleList collects bullet items; without bullets it splits the inline remainder.
func simpleList(inline string, lines []listLine) (any, int, bool) {
	var items []string
	consumed := 0
	for _, l := range lines {
		item, ok := bulletItem(l.text)
		if !ok {
			break
		}
		items = append(items, item)
		consumed++
	}
	if len(items) == 0 && inline != "" {
		for _, part := range inlineSeparators.Split(inline, -1) {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	}
	if len(items) == 0 {
		return nil, 0, false
	}
	return items, consumed, true
}

// specList groups bullet items under trade headers, i.e. lines ending with a colon.
func specList(_ string, lines []listLine) (any, int, bool) {
	specs := map[string][]string{}
	current := ""
	consumed := 0
	for _, l := range lines {
		line := strings.TrimSpace(l.text)
		item, isBullet := bulletItem(line)
		switch {
		case strings.HasSuffix(line, ":") || strings.HasSuffix(line, "："):
			trade := strings.TrimSpace(strings.TrimRight(line, ":："))
			if isBullet {
				trade = strings.TrimSpace(strings.TrimRight(item, ":："))
			}
			current = trade
			if _, ok := specs[current]; !ok {
				specs[current] = []string{}
			}
		case isBullet:
			if current == "" {
				current = "عام"
			}
			specs[current] = append(specs[current], item)
		default:
			return finishSpecs(specs, consumed)
		}
		consumed++
	}
	return finishSpecs(specs, consumed)
}

func finishSpecs(specs map[string][]string, consumed int) (any, int, bool) {
	for trade, items := range specs {
		if len(items) == 0 {
			delete(specs, trade)
		}
	}
	if len(specs) == 0 {
		return nil, 0, false
	}
	return specs, consumed, true
}

// criteriaList reads "name: weight%" lines.
func criteriaList(_ string, lines []listLine) (any, int, bool) {
	criteria := map[string]float64{}
	consumed := 0
	for _, l := range lines {
		line := strings.TrimSpace(l.text)
		if item, ok := bulletItem(line); ok {
			line = item
		}
		p, ok := firstPercent(line)
		if !ok {
			break
		}
		name := strings.TrimSpace(line[:p.start])
		name = strings.TrimSuffix(name, "بنسبة")
		name = strings.TrimSuffix(name, "بوزن")
		name = strings.TrimSpace(strings.TrimRight(name, " :：-–="))
		if name == "" {
			break
		}
		criteria[name] += p.value
		consumed++
	}
	if len(criteria) == 0 {
		return nil, 0, false
	}
	return criteria, consumed, true
}
