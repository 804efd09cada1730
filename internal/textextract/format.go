package textextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Format is the detected container format of an artifact.
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDXF  Format = "dxf"
)

var (
	magicPDF       = []byte("%PDF")
	magicZIP       = []byte("PK\x03\x04")
	magicDWG       = []byte("AC10")
	magicBinaryDXF = []byte("AutoCAD Binary DXF")
)

var extFormats = map[string]Format{
	".txt":  FormatText,
	".text": FormatText,
	".md":   FormatText,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".dxf":  FormatDXF,
	".dwg":  FormatDXF,
}

// detectFormat resolves the format from the extension, falling back to magic bytes.
// An extension that contradicts the content is reported as corrupt input; binary
// DWG is rejected as unsupported since only the DXF exchange format is parsed.
func detectFormat(ext string, data []byte) (Format, error) {
	if bytes.HasPrefix(data, magicDWG) {
		return "", domain.UnsupportedFormat("binary DWG is not supported, export the drawing as DXF", nil)
	}
	if bytes.HasPrefix(data, magicBinaryDXF) {
		return "", domain.UnsupportedFormat("binary DXF is not supported, export the drawing as ASCII DXF", nil)
	}

	if f, ok := extFormats[ext]; ok {
		if err := checkMagic(f, ext, data); err != nil {
			return "", err
		}
		return f, nil
	}

	switch {
	case bytes.HasPrefix(data, magicPDF):
		return FormatPDF, nil
	case bytes.HasPrefix(data, magicZIP):
		return FormatDOCX, nil
	case looksLikeDXF(data):
		return FormatDXF, nil
	case looksLikeText(data):
		return FormatText, nil
	}

	if ext == "" {
		return "", domain.UnsupportedFormat("unrecognised binary content", nil)
	}
	return "", domain.UnsupportedFormat(fmt.Sprintf("unsupported file type %s", ext), nil)
}

func checkMagic(f Format, ext string, data []byte) error {
	switch f {
	case FormatPDF:
		if !bytes.HasPrefix(data, magicPDF) {
			return domain.CorruptInput(fmt.Sprintf("%s file lacks a PDF header", ext), nil)
		}
	case FormatDOCX:
		if !bytes.HasPrefix(data, magicZIP) {
			return domain.CorruptInput(fmt.Sprintf("%s file is not a zip container", ext), nil)
		}
	case FormatDXF:
		if !looksLikeDXF(data) {
			return domain.CorruptInput(fmt.Sprintf("%s file is neither DWG nor ASCII DXF", ext), nil)
		}
	case FormatText:
		if !looksLikeText(data) {
			return domain.CorruptInput(fmt.Sprintf("%s file contains binary data", ext), nil)
		}
	}
	return nil
}

// looksLikeDXF reports whether data opens with a "0 / SECTION" group pair, after
// any 999 comment pairs.
func looksLikeDXF(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	lines := strings.Split(strings.ReplaceAll(string(head), "\r\n", "\n"), "\n")
	for i := 0; i+1 < len(lines); i += 2 {
		code := strings.TrimSpace(lines[i])
		value := strings.TrimSpace(lines[i+1])
		if code == "999" {
			continue
		}
		return code == "0" && value == "SECTION"
	}
	return false
}

// looksLikeText accepts UTF-16 with a byte-order mark, or anything free of NUL bytes.
func looksLikeText(data []byte) bool {
	if hasUTF16BOM(data) {
		return true
	}
	head := data
	if len(head) > 8192 {
		head = head[:8192]
	}
	return bytes.IndexByte(head, 0) < 0
}
