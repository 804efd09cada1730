// Package fields extracts DocumentFacts from Arabic contract and tender text.
package fields

import (
	"strings"
	"unicode"
)

const tatweel = '\u0640'

// Normalize maps Eastern-Arabic and Persian digits and Arabic number punctuation to
// ASCII, strips tatweel and bidi marks, and collapses horizontal whitespace. Newlines
// are kept and runs of blank lines collapse to one. Normalize is idempotent; all spans
// produced by this package are byte offsets into its output.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	newlines := 0
	lineStart := true

	for _, r := range strings.ReplaceAll(text, "\r\n", "\n") {
		switch {
		case r >= '٠' && r <= '٩':
			r = '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			r = '0' + (r - '۰')
		case r == '٫':
			r = '.'
		case r == '٬':
			r = ','
		case r == '٪':
			r = '%'
		case r == tatweel, r == '\u200e', r == '\u200f', r == '\ufeff', r >= '\u202a' && r <= '\u202e':
			continue
		case r == '\r':
			r = '\n'
		}

		if r == '\n' {
			pendingSpace = false
			newlines++
			lineStart = true
			continue
		}
		if r == '\t' || r == ' ' || (unicode.IsSpace(r) && r != '\n') {
			if !lineStart {
				pendingSpace = true
			}
			continue
		}

		if newlines > 0 {
			if b.Len() > 0 {
				if newlines > 2 {
					newlines = 2
				}
				b.WriteString(strings.Repeat("\n", newlines))
			}
			newlines = 0
		} else if pendingSpace {
			b.WriteByte(' ')
		}
		pendingSpace = false
		lineStart = false
		b.WriteRune(r)
	}

	return b.String()
}
