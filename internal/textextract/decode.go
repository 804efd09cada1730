package textextract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// decodeText turns raw bytes into UTF-8. Byte-order marks select UTF-8 or UTF-16;
// input without a BOM that is not valid UTF-8 is read as Windows-1256, the legacy
// Arabic code page.
func decodeText(data []byte) (string, error) {
	var dec transform.Transformer = charmap.Windows1256.NewDecoder()
	if hasUTF16BOM(data) || utf8.Valid(data) {
		dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", domain.CorruptInput("decode text", err)
	}
	return string(out), nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// canonicalText applies NFC, unifies line endings and drops byte-order marks.
func canonicalText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\ufeff", "")
	return norm.NFC.String(s)
}
