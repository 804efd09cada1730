package fields

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

var (
	articleHeader  = regexp.MustCompile(`^(?:ال)?مادة\s+\S+`)
	enumerator     = regexp.MustCompile(`^(?:أولا|ثانيا|ثالثا|رابعا|خامسا|سادسا|سابعا|ثامنا|تاسعا|عاشرا)[\x{064B}]?\s*[:\-–)]?`)
	numberedBullet = regexp.MustCompile(`^\(?\d{1,3}\s*[-.)/]\s*`)
	symbolBullet   = regexp.MustCompile(`^[-–•*▪●]\s*`)
	letterBullet   = regexp.MustCompile(`^[أابجدهوز]\s*[-)]\s+`)
)

// isHeaderLine reports whether line opens a new article or enumerated section.
func isHeaderLine(line string) bool {
	line = strings.TrimSpace(line)
	return articleHeader.MatchString(line) || enumerator.MatchString(line)
}

// bulletItem strips a list marker from line; ok is false when line is not a list item.
func bulletItem(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, re := range []*regexp.Regexp{numberedBullet, symbolBullet, letterBullet} {
		if loc := re.FindStringIndex(line); loc != nil {
			item := strings.TrimSpace(line[loc[1]:])
			return item, item != ""
		}
	}
	return "", false
}

// runTerminator reports whether the rune at byte offset i of text ends a sentence.
func runTerminator(text string, i int) bool {
	r, _ := utf8.DecodeRuneInString(text[i:])
	switch r {
	case '\n', '؛', '؟', '!', ';':
		return true
	case '.':
		// decimal point and dotted dates are not terminators
		prev, _ := utf8.DecodeLastRuneInString(text[:i])
		next, _ := utf8.DecodeRuneInString(text[i+1:])
		return !(unicode.IsDigit(prev) && unicode.IsDigit(next))
	}
	return false
}

// captureRun returns the text after pos up to the next sentence terminator, skipping
// leading separators. When that run is empty the following non-header line is used,
// so "المادة الثالثة: قيمة العقد" followed by the value line still captures the value.
func captureRun(text string, pos int) (string, domain.Span) {
	start := skipSeparators(text, pos)
	end := start
	for end < len(text) && !runTerminator(text, end) {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}

	if strings.TrimSpace(text[start:end]) == "" && end < len(text) && text[end] == '\n' {
		lineEnd := strings.IndexByte(text[end+1:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text) - end - 1
		}
		next := text[end+1 : end+1+lineEnd]
		if strings.TrimSpace(next) != "" && !isHeaderLine(next) {
			return captureRun(text, end+1)
		}
	}

	run := strings.TrimRight(text[start:end], " ،,:")
	return run, domain.Span{Start: start, End: start + len(run)}
}

// captureParagraph returns the text after pos up to the next blank line or header line.
func captureParagraph(text string, pos int) (string, domain.Span) {
	start := skipSeparators(text, pos)
	end := start
	for end < len(text) {
		nl := strings.IndexByte(text[end:], '\n')
		if nl < 0 {
			end = len(text)
			break
		}
		end += nl
		rest := text[end+1:]
		if strings.HasPrefix(rest, "\n") {
			break
		}
		lineEnd := strings.IndexByte(rest, '\n')
		if lineEnd < 0 {
			lineEnd = len(rest)
		}
		if isHeaderLine(rest[:lineEnd]) {
			break
		}
		end++
	}
	para := strings.TrimSpace(text[start:end])
	return para, domain.Span{Start: start, End: start + len(para)}
}

func skipSeparators(text string, pos int) int {
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if r == ' ' || r == ':' || r == '-' || r == '–' || r == '=' || r == '：' {
			pos += size
			continue
		}
		break
	}
	return pos
}

// lineBounds returns the start and end byte offsets of the line containing pos.
func lineBounds(text string, pos int) (int, int) {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := strings.IndexByte(text[pos:], '\n')
	if end < 0 {
		return start, len(text)
	}
	return start, pos + end
}

// clip shortens s to at most n runes on a word boundary.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)[:n]
	cut := strings.LastIndex(string(runes), " ")
	if cut > 0 {
		return string(runes)[:cut]
	}
	return string(runes)
}
