package textextract

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// docxText reads the main document part of a DOCX package, one line per
// paragraph and one tab-separated line per table row.
func docxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.CorruptInput("failed to open DOCX container", err)
	}
	if doc.Document.XMLName.Local != "document" {
		return "", domain.UnsupportedFormat("zip container is not a Word document", nil)
	}

	var out strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			out.WriteString(paragraphText(it))
			out.WriteByte('\n')
		case *docx.Table:
			writeTable(&out, it)
		}
	}
	return out.String(), nil
}

func writeTable(out *strings.Builder, t *docx.Table) {
	for _, row := range t.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			cells = append(cells, cellText(cell))
		}
		out.WriteString(strings.Join(cells, "\t"))
		out.WriteByte('\n')
	}
}

// cellText flattens a cell to one line so row columns stay aligned.
func cellText(c *docx.WTableCell) string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		if s := strings.TrimSpace(paragraphText(p)); s != "" {
			parts = append(parts, s)
		}
	}
	for _, nested := range c.Tables {
		var b strings.Builder
		writeTable(&b, nested)
		if s := strings.TrimSpace(b.String()); s != "" {
			parts = append(parts, strings.ReplaceAll(s, "\n", " "))
		}
	}
	return strings.Join(parts, " ")
}

// paragraphText keeps visible text only. Hyperlinks contribute their label.
func paragraphText(p *docx.Paragraph) string {
	var b strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			runText(&b, c)
		case *docx.Hyperlink:
			runText(&b, &c.Run)
		}
	}
	return b.String()
}

func runText(b *strings.Builder, r *docx.Run) {
	for _, child := range r.Children {
		switch c := child.(type) {
		case *docx.Text:
			b.WriteString(c.Text)
		case *docx.Tab:
			b.WriteByte('\t')
		case *docx.BarterRabbet:
			b.WriteByte('\n')
		}
	}
}
