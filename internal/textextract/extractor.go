// Package textextract converts input artifacts into normalised text or, for
// drawings, a structural payload.
package textextract

import (
	"context"
	"strings"
	"time"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/artifact"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// Extracted is the outcome of text extraction. Drawings carry a payload and no text.
type Extracted struct {
	Kind     domain.DocumentKind
	Text     string
	BytesLen int
	Filename string
	Format   Format
	Pages    int
	Drawing  *domain.DrawingPayload
}

// Extractor dispatches artifacts to the format readers.
type Extractor struct {
	logger *observability.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(logger *observability.Logger) *Extractor {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Extractor{logger: logger.WithComponent("textextract")}
}

// Extract reads the artifact. It fails with UNSUPPORTED_FORMAT, CORRUPT_INPUT or CANCELLED.
func (e *Extractor) Extract(ctx context.Context, a *artifact.Artifact) (*Extracted, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Cancelled(err)
	}
	if len(a.Data) == 0 {
		return nil, domain.CorruptInput("artifact is empty", nil)
	}

	start := time.Now()
	format, err := detectFormat(a.Ext(), a.Data)
	if err != nil {
		return nil, err
	}

	out := &Extracted{
		BytesLen: len(a.Data),
		Filename: a.Name,
		Format:   format,
	}

	var raw string
	switch format {
	case FormatDXF:
		payload, err := parseDXF(a.Data)
		if err != nil {
			return nil, err
		}
		out.Kind = domain.KindDrawing
		out.Drawing = payload
		e.logger.Debug().Str("file", a.Name).Int("entities", payload.Elements.Total).
			Dur("duration", time.Since(start)).Msg("drawing extracted")
		return out, nil
	case FormatPDF:
		raw, out.Pages, err = pdfText(ctx, a.Data)
	case FormatDOCX:
		raw, err = docxText(a.Data)
	default:
		raw, err = decodeText(a.Data)
	}
	if err != nil {
		return nil, err
	}

	out.Text = canonicalText(raw)
	if strings.TrimSpace(out.Text) == "" {
		return nil, domain.CorruptInput("document contains no extractable text", nil)
	}
	out.Kind = InferKind(a.Name, out.Text)

	e.logger.Debug().
		Str("file", a.Name).
		Str("format", string(format)).
		Str("kind", string(out.Kind)).
		Int("bytes", out.BytesLen).
		Dur("duration", time.Since(start)).
		Msg("text extracted")

	return out, nil
}
