package textextract

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// pdfText extracts the text layer of every page, separating pages with a blank line.
func pdfText(ctx context.Context, data []byte) (string, int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", 0, domain.CorruptInput("failed to open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return "", 0, domain.CorruptInput("PDF has no pages", nil)
	}

	pages := make([]string, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return "", 0, domain.Cancelled(ctx.Err())
		default:
		}

		text, err := doc.Text(pageNum)
		if err != nil {
			return "", 0, domain.CorruptInput(fmt.Sprintf("failed to read page %d", pageNum+1), err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), pageCount, nil
}
