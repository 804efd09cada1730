package textextract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/artifact"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/testfixtures"
)

func extract(t *testing.T, name string, data []byte) (*Extracted, error) {
	t.Helper()
	return NewExtractor(nil).Extract(context.Background(), &artifact.Artifact{Name: name, Origin: name, Data: data})
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_PlainText(t *testing.T) {
	out, err := extract(t, "contract.txt", []byte("\ufeffعقد مقاولة\r\nقيمة العقد 100\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "عقد مقاولة\nقيمة العقد 100\n", out.Text)
	assert.Equal(t, FormatText, out.Format)
	assert.Equal(t, domain.KindContract, out.Kind)
	assert.Nil(t, out.Drawing)
}

func TestExtract_TextEncodings(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("كراسة الشروط والمواصفات"))
	require.NoError(t, err)
	cp1256, err := charmap.Windows1256.NewEncoder().Bytes([]byte("كراسة الشروط والمواصفات"))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"utf-16 with bom", utf16},
		{"windows-1256", cp1256},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := extract(t, "booklet.txt", tc.data)
			require.NoError(t, err)
			assert.Equal(t, "كراسة الشروط والمواصفات", out.Text)
			assert.Equal(t, domain.KindTender, out.Kind)
		})
	}
}

func TestExtract_NFC(t *testing.T) {
	// alef followed by combining hamza above composes to U+0623
	out, err := extract(t, "a.txt", []byte("\u0627\u0654مانة"))
	require.NoError(t, err)
	assert.Equal(t, "\u0623مانة", out.Text)
}

func TestExtract_DOCX(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>عقد تنفيذ</w:t></w:r><w:r><w:t xml:space="preserve"> مشروع</w:t></w:r></w:p>
<w:p><w:r><w:t>البند</w:t><w:tab/><w:t>القيمة</w:t></w:r></w:p>
</w:body></w:document>`

	out, err := extract(t, "contract.docx", buildDOCX(t, doc))
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, out.Format)
	assert.Equal(t, "عقد تنفيذ مشروع\nالبند\tالقيمة\n", out.Text)
	assert.Equal(t, domain.KindContract, out.Kind)
}

func TestExtract_DOCXTablesAndLinks(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>
<w:p><w:r><w:t>جدول الكميات</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>البند</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>الكمية</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>خرسانة</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>30</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:p><w:r><w:t xml:space="preserve">انظر </w:t></w:r><w:hyperlink r:id="rId9"><w:r><w:t>الملحق</w:t></w:r></w:hyperlink></w:p>
</w:body></w:document>`

	out, err := extract(t, "boq.docx", buildDOCX(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "جدول الكميات\nالبند\tالكمية\nخرسانة\t30\nانظر الملحق\n", out.Text)
}

func TestExtract_DrawingDXF(t *testing.T) {
	for _, name := range []string{"plan.dxf", "plan.dwg", "plan"} {
		t.Run(name, func(t *testing.T) {
			out, err := extract(t, name, []byte(testfixtures.Drawing))
			require.NoError(t, err)
			require.NotNil(t, out.Drawing)

			assert.Equal(t, domain.KindDrawing, out.Kind)
			assert.Empty(t, out.Text)

			el := out.Drawing.Elements
			assert.Equal(t, map[string]int{"LINE": 2, "LWPOLYLINE": 1, "CIRCLE": 1, "TEXT": 1}, el.Counts)
			assert.Equal(t, 5, el.Total)
			assert.Equal(t, []string{"ANNOTATION", "BLOCK-WALLS", "CONCRETE", "STEEL-COLUMNS"}, el.Layers)
			assert.Equal(t, "m", el.Units)
			require.NotNil(t, el.BoundingBox)
			assert.Equal(t, domain.BoundingBox{MinX: 0, MinY: 0, MaxX: 20, MaxY: 10}, *el.BoundingBox)

			assert.Equal(t, []domain.MaterialQuantity{
				{Material: "blocks", Quantity: 180, Unit: "m2"},
				{Material: "concrete", Quantity: 30, Unit: "m"},
				{Material: "steel", Quantity: 1, Unit: "pcs"},
			}, out.Drawing.Materials)
		})
	}
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		code domain.ErrorCode
	}{
		{"binary dwg", "plan.dwg", []byte("AC1032\x00\x00\x01"), domain.CodeUnsupportedFormat},
		{"pdf without header", "tender.pdf", []byte("not a pdf"), domain.CodeCorruptInput},
		{"broken pdf", "tender.pdf", []byte("%PDF-1.4\nbroken"), domain.CodeCorruptInput},
		{"docx without zip", "contract.docx", []byte("plain"), domain.CodeCorruptInput},
		{"zip without document part", "archive.zip", buildZip(t, "readme.txt"), domain.CodeUnsupportedFormat},
		{"unknown binary", "image.png", []byte("\x89PNG\r\n\x1a\n\x00\x00"), domain.CodeUnsupportedFormat},
		{"txt with binary", "notes.txt", []byte("abc\x00def"), domain.CodeCorruptInput},
		{"whitespace only", "blank.txt", []byte(" \n\t\n"), domain.CodeCorruptInput},
		{"empty", "empty.txt", nil, domain.CodeCorruptInput},
		{"dxf without entities", "plan.dxf", []byte("0\nSECTION\n2\nHEADER\n0\nENDSEC\n0\nEOF\n"), domain.CodeCorruptInput},
		{"dxf bad coordinate", "plan.dxf", []byte("0\nSECTION\n2\nENTITIES\n0\nLINE\n10\nabc\n0\nENDSEC\n"), domain.CodeCorruptInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := extract(t, tc.file, tc.data)
			require.Error(t, err)
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}
}

func buildZip(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(nil).Extract(ctx, &artifact.Artifact{Name: "a.txt", Data: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrCancelled)
}

const tenderBooklet = `كراسة الشروط والمواصفات
مناقصة رقم: 77/2024
اسم المشروع: صيانة الطرق الداخلية

الشروط العامة
يلتزم المقاول بأحكام العقد ويعتبر العقد نافذاً من تاريخ توقيع العقد.
لا يجوز التنازل عن العقد، ويحق للجهة فسخ العقد عند الإخلال.
تعتبر هذه الكراسة جزءاً لا يتجزأ من العقد.`

const contractWithTenderRef = `عقد تنفيذ أعمال صيانة
بناءً على نتيجة المناقصة رقم 77/2024
الطرف الأول: أمانة منطقة الرياض
الطرف الثاني: شركة الطرق المتحدة`

func TestInferKind(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		text     string
		expected domain.DocumentKind
	}{
		{"contract text", "doc.txt", testfixtures.Contract, domain.KindContract},
		{"tender text", "doc.txt", testfixtures.FinancialTender, domain.KindTender},
		{"technical tender", "doc.txt", testfixtures.TechnicalTender, domain.KindTender},
		{"text overrides name", "contract.txt", "كراسة الشروط للمناقصة", domain.KindTender},
		{"name hint without signals", "tender-15.pdf", "وثيقة", domain.KindTender},
		{"name hint contract", "عقد-صيانة.txt", "وثيقة", domain.KindContract},
		{"tie uses name hint", "contract.txt", "تمهيد\nعقد عقد مناقصة", domain.KindContract},
		{"tie without hint prefers tender", "doc.txt", "تمهيد\nعقد عقد مناقصة", domain.KindTender},
		{"no signals", "doc.txt", "تقرير", domain.KindUnknown},
		{"booklet quoting the contract", "booklet.pdf", tenderBooklet, domain.KindTender},
		{"contract referencing its tender", "doc.txt", contractWithTenderRef, domain.KindContract},
		{"competition heading", "doc.txt", "منافسة عامة لتنفيذ أعمال الصيانة\nيلتزم المتعاقد بأحكام العقد", domain.KindTender},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, InferKind(tc.file, tc.text))
		})
	}
}
