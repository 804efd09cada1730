package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/pkg/dac"
)

// UI renders reports for a terminal.
type UI struct {
	out      io.Writer
	errOut   io.Writer
	noColor  bool
	jsonMode bool
}

// NewUI creates a new UI instance.
func NewUI(out, errOut io.Writer, jsonMode, noColor bool) *UI {
	return &UI{out: out, errOut: errOut, noColor: noColor || color.NoColor, jsonMode: jsonMode}
}

func (ui *UI) paint(attrs []color.Attribute, w io.Writer, format string, args ...interface{}) {
	if ui.noColor {
		fmt.Fprintf(w, format, args...)
		return
	}
	c := color.New(attrs...)
	c.EnableColor()
	c.Fprintf(w, format, args...)
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	ui.paint([]color.Attribute{color.FgGreen}, ui.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message. It is shown in JSON mode too.
func (ui *UI) Error(format string, args ...interface{}) {
	ui.paint([]color.Attribute{color.FgRed}, ui.errOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	ui.paint([]color.Attribute{color.FgYellow}, ui.out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	ui.paint([]color.Attribute{color.FgCyan}, ui.out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Section prints a section header.
func (ui *UI) Section(title string) {
	if ui.jsonMode {
		return
	}
	fmt.Fprintln(ui.out)
	ui.paint([]color.Attribute{color.FgCyan, color.Bold}, ui.out, "━━━ %s ━━━\n", title)
}

// Bullet prints one list item.
func (ui *UI) Bullet(text string) {
	fmt.Fprintf(ui.out, "  • %s\n", text)
}

// WithSpinner runs fn behind a spinner on stderr when attached to a terminal.
func (ui *UI) WithSpinner(message string, fn func() error) error {
	if ui.jsonMode || !IsTerminal() {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = ui.errOut
	s.Start()
	defer s.Stop()
	return fn()
}

// Table prints a formatted table. Widths count runes so Arabic cells align.
func (ui *UI) Table(headers []string, rows [][]string) {
	if ui.jsonMode || len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	border := func(left, mid, right string) {
		var b strings.Builder
		b.WriteString(left)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < len(widths)-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		ui.paint([]color.Attribute{color.FgCyan}, ui.out, "%s\n", b.String())
	}
	line := func(cells []string) {
		var b strings.Builder
		b.WriteString("│")
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" " + cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell)) + " │")
		}
		fmt.Fprintln(ui.out, b.String())
	}

	border("┌", "┬", "┐")
	line(headers)
	border("├", "┼", "┤")
	for _, row := range rows {
		line(row)
	}
	border("└", "┴", "┘")
}

// Report prints an analysis report.
func (ui *UI) Report(r *dac.AnalysisReport) {
	if ui.jsonMode {
		return
	}
	ui.paint([]color.Attribute{color.Bold}, ui.out, "%s\n", r.Title)
	fmt.Fprintf(ui.out, "%s | %s\n", r.GeneratedAt, r.Source)
	if r.Degraded {
		ui.Warning("تقرير منقوص: %s", strings.Join(r.DegradedComponents, ", "))
	}

	ui.Section("الملخص")
	fmt.Fprintln(ui.out, r.Summary)

	if len(r.KeyPoints) > 0 {
		ui.Section("النقاط الرئيسية")
		for _, p := range r.KeyPoints {
			ui.Bullet(p)
		}
	}

	if len(r.Risks) > 0 {
		ui.Section("المخاطر")
		rows := make([][]string, 0, len(r.Risks))
		for _, risk := range r.Risks {
			rows = append(rows, []string{risk.Risk, string(risk.Probability), string(risk.Impact), risk.Mitigation})
		}
		ui.Table([]string{"الخطر", "الاحتمال", "الأثر", "المعالجة"}, rows)
	}

	if len(r.Opportunities) > 0 {
		ui.Section("الفرص")
		for _, o := range r.Opportunities {
			ui.Bullet(fmt.Sprintf("%s (%s): %s", o.Title, o.Potential, o.Description))
		}
	}

	if c := r.Attachments.CostEstimate; c != nil {
		ui.Section("تقدير التكلفة")
		fmt.Fprintf(ui.out, "الإجمالي: %s\n", domain.FormatMoney(domain.Money{Amount: c.Total, Currency: c.Currency}))
		if len(c.Breakdown) > 0 {
			rows := make([][]string, 0, len(c.Breakdown))
			for _, b := range c.Breakdown {
				rows = append(rows, []string{b.Category, domain.FormatNumber(b.Amount), domain.FormatPct(b.Percentage)})
			}
			ui.Table([]string{"البند", "المبلغ", "النسبة"}, rows)
		}
	}

	if len(r.Attachments.CashFlow) > 0 {
		ui.Section("التدفق النقدي")
		rows := make([][]string, 0, len(r.Attachments.CashFlow))
		for _, row := range r.Attachments.CashFlow {
			rows = append(rows, []string{
				strconv.Itoa(row.Month),
				domain.FormatNumber(row.Income),
				domain.FormatNumber(row.Expense),
				domain.FormatNumber(row.Net),
				domain.FormatNumber(row.Cumulative),
			})
		}
		ui.Table([]string{"الشهر", "الإيرادات", "المصروفات", "الصافي", "التراكمي"}, rows)
	}

	if t := r.Attachments.Technical; t != nil {
		ui.Section("التحليل الفني")
		fmt.Fprintf(ui.out, "التخصصات: %s\nعدد المتطلبات: %d\nدرجة التعقيد: %s\n",
			strings.Join(t.Trades, "، "), t.RequirementCount, t.Complexity)
	}

	if len(r.Recommendations) > 0 {
		ui.Section("التوصيات")
		for _, rec := range r.Recommendations {
			ui.Bullet(rec)
		}
	}

	if len(r.MissingFields) > 0 {
		labels := make([]string, 0, len(r.MissingFields))
		for _, s := range r.MissingFields {
			labels = append(labels, domain.SlotLabels[s])
		}
		fmt.Fprintln(ui.out)
		ui.Info("بيانات غير مذكورة: %s", strings.Join(labels, "، "))
	}
}

// Drawing prints a drawing report.
func (ui *UI) Drawing(r *dac.DrawingReport) {
	if ui.jsonMode {
		return
	}
	ui.paint([]color.Attribute{color.Bold}, ui.out, "%s\n", r.Title)
	fmt.Fprintln(ui.out, r.Summary)

	ui.Section("العناصر")
	rows := make([][]string, 0, len(r.Elements.Counts))
	for _, name := range domain.SortedKeys(r.Elements.Counts) {
		rows = append(rows, []string{name, strconv.Itoa(r.Elements.Counts[name])})
	}
	ui.Table([]string{"النوع", "العدد"}, rows)

	c := r.CostEstimate
	if len(c.Lines) > 0 {
		ui.Section("تقدير التكلفة")
		lines := make([][]string, 0, len(c.Lines))
		for _, l := range c.Lines {
			lines = append(lines, []string{l.Material, domain.FormatNumber(l.Quantity) + " " + l.Unit,
				domain.FormatNumber(l.UnitRate), domain.FormatNumber(l.Amount)})
		}
		ui.Table([]string{"المادة", "الكمية", "سعر الوحدة", "المبلغ"}, lines)
		fmt.Fprintf(ui.out, "المواد %s | العمالة %s | المعدات %s | الإجمالي %s\n",
			domain.FormatNumber(c.Materials), domain.FormatNumber(c.Labor), domain.FormatNumber(c.Equipment),
			domain.FormatMoney(domain.Money{Amount: c.Total, Currency: c.Currency}))
	}

	if len(r.Recommendations) > 0 {
		ui.Section("التوصيات")
		for _, rec := range r.Recommendations {
			ui.Bullet(rec)
		}
	}
}

// Comparison prints a comparison report.
func (ui *UI) Comparison(r *dac.ComparisonReport) {
	if ui.jsonMode {
		return
	}
	ui.paint([]color.Attribute{color.Bold}, ui.out, "%s ⟷ %s\n", r.LeftMeta.Title, r.RightMeta.Title)

	if len(r.Similarities) > 0 {
		ui.Section("أوجه التشابه")
		rows := make([][]string, 0, len(r.Similarities))
		for _, s := range r.Similarities {
			rows = append(rows, []string{s.Label, s.Value})
		}
		ui.Table([]string{"البند", "القيمة"}, rows)
	}

	if len(r.Differences) > 0 {
		ui.Section("أوجه الاختلاف")
		rows := make([][]string, 0, len(r.Differences))
		for _, d := range r.Differences {
			rows = append(rows, []string{d.Label, d.Left, d.Right})
		}
		ui.Table([]string{"البند", r.LeftMeta.Source, r.RightMeta.Source}, rows)
	}

	if len(r.Recommendations) > 0 {
		ui.Section("التوصيات")
		for _, rec := range r.Recommendations {
			ui.Bullet(rec)
		}
	}
}

// Facts prints every present slot with its confidence.
func (ui *UI) Facts(f *dac.DocumentFacts) {
	if ui.jsonMode {
		return
	}
	fmt.Fprintf(ui.out, "نوع المستند: %s\n", f.Kind.ArabicLabel())
	rows := [][]string{}
	for _, s := range domain.AllSlots {
		if v, ok := f.Display(s); ok {
			rows = append(rows, []string{domain.SlotLabels[s], v, strconv.FormatFloat(f.Confidence(s), 'f', 2, 64)})
		}
	}
	if len(rows) == 0 {
		ui.Warning("لم يتم العثور على أي بيانات")
		return
	}
	ui.Table([]string{"البند", "القيمة", "الثقة"}, rows)
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
