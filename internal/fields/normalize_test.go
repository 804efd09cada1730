package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"eastern digits", "١٨ شهراً", "18 شهراً"},
		{"persian digits", "۲۵ ريال", "25 ريال"},
		{"arabic separators", "٢٥٬٠٠٠٫٥٠", "25,000.50"},
		{"arabic percent", "٥٪", "5%"},
		{"tatweel", "ريـــال", "ريال"},
		{"collapse spaces", "قيمة   العقد\t:  100", "قيمة العقد : 100"},
		{"crlf", "سطر\r\nسطر", "سطر\nسطر"},
		{"blank lines collapse", "أ\n\n\n\nب", "أ\n\nب"},
		{"trailing and leading spaces", "  أ  \n  ب  ", "أ\nب"},
		{"bidi marks", "‏قيمة‎", "قيمة"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"١٨ شهراً\r\n\r\n\r\nالضمان   النهائي ٥٪",
		"عقد\tمقاولة  \n\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}
