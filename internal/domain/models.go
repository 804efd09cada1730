package domain

import (
	"fmt"
	"strings"
)

// DocumentKind is inferred by the text extractor and gates which facts apply.
type DocumentKind string

const (
	KindContract DocumentKind = "contract"
	KindTender   DocumentKind = "tender"
	KindDrawing  DocumentKind = "drawing"
	KindUnknown  DocumentKind = "unknown"
)

// ArabicLabel returns the presentation name of the kind.
func (k DocumentKind) ArabicLabel() string {
	switch k {
	case KindContract:
		return "عقد"
	case KindTender:
		return "مناقصة"
	case KindDrawing:
		return "مخطط"
	default:
		return "مستند"
	}
}

// Mode selects which facts, engines and model calls an analysis runs.
type Mode string

const (
	ModeComprehensive Mode = "comprehensive"
	ModeQuick         Mode = "quick"
	ModeLegal         Mode = "legal"
	ModeFinancial     Mode = "financial"
	ModeTechnical     Mode = "technical"
)

// Modes lists every supported mode in declaration order.
var Modes = []Mode{ModeComprehensive, ModeQuick, ModeLegal, ModeFinancial, ModeTechnical}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", InvalidMode(fmt.Sprintf("unknown analysis mode %q", s))
}

// ArabicLabel returns the report title prefix for the mode.
func (m Mode) ArabicLabel() string {
	switch m {
	case ModeComprehensive:
		return "تحليل شامل"
	case ModeQuick:
		return "تحليل سريع"
	case ModeLegal:
		return "تحليل قانوني"
	case ModeFinancial:
		return "تحليل مالي"
	case ModeTechnical:
		return "تحليل فني"
	default:
		return "تحليل"
	}
}

// Level is shared by risks, opportunities, competitor threat and complexity.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// RiskCategory groups catalogue rules so modes can filter them.
type RiskCategory string

const (
	RiskLegal     RiskCategory = "legal"
	RiskFinancial RiskCategory = "financial"
	RiskTechnical RiskCategory = "technical"
	RiskGeneral   RiskCategory = "general"
)

type RiskEntry struct {
	Category    RiskCategory `json:"category"`
	Risk        string       `json:"risk"`
	Probability Level        `json:"probability"`
	Impact      Level        `json:"impact"`
	Mitigation  string       `json:"mitigation"`
}

type OpportunityEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Potential   Level  `json:"potential"`
}

type CompetitorEntry struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	ThreatLevel Level    `json:"threat_level"`
}

// CashFlowRow is one month of the projected cash flow, month numbering starts at 1.
type CashFlowRow struct {
	Month      int     `json:"month"`
	Income     float64 `json:"income"`
	Expense    float64 `json:"expense"`
	Net        float64 `json:"net"`
	Cumulative float64 `json:"cumulative"`
}

type CostBreakdown struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type CostEstimate struct {
	Total          float64         `json:"total"`
	Currency       string          `json:"currency"`
	AreaM2         *float64        `json:"area_m2,omitempty"`
	PerSquareMeter *float64        `json:"per_square_meter,omitempty"`
	Breakdown      []CostBreakdown `json:"breakdown,omitempty"`
}

type TechnicalAnalysis struct {
	Trades           []string `json:"trades"`
	TradeCount       int      `json:"trade_count"`
	RequirementCount int      `json:"requirement_count"`
	FlaggedKeywords  []string `json:"flagged_keywords"`
	Complexity       Level    `json:"complexity"`
}

// NamedEntity is produced by the NLP adapter; offsets are byte offsets into the normalised text.
type NamedEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type ModelUsage struct {
	Provider   string `json:"provider"`
	TokensUsed int    `json:"tokens_used"`
}

// Attachments carries engine outputs that are not part of the canonical top-level keys.
type Attachments struct {
	CostEstimate  *CostEstimate      `json:"cost_estimate,omitempty"`
	CashFlow      []CashFlowRow      `json:"cash_flow,omitempty"`
	Competitors   []CompetitorEntry  `json:"competitors,omitempty"`
	Technical     *TechnicalAnalysis `json:"technical,omitempty"`
	NamedEntities []NamedEntity      `json:"named_entities,omitempty"`
	Drawing       *DrawingPayload    `json:"drawing,omitempty"`
	Model         *ModelUsage        `json:"model,omitempty"`
}

// AnalysisReport is immutable once rendered.
type AnalysisReport struct {
	Title              string             `json:"title"`
	GeneratedAt        string             `json:"date"`
	Mode               Mode               `json:"mode"`
	Summary            string             `json:"summary"`
	KeyPoints          []string           `json:"key_points"`
	Entities           map[string]string  `json:"entities"`
	Risks              []RiskEntry        `json:"risks"`
	Opportunities      []OpportunityEntry `json:"opportunities"`
	Recommendations    []string           `json:"recommendations"`
	Degraded           bool               `json:"degraded"`
	DegradedComponents []string           `json:"degraded_components"`
	MissingFields      []Slot             `json:"missing_fields"`
	Kind               DocumentKind       `json:"kind"`
	Source             string             `json:"source"`
	Facts              *DocumentFacts     `json:"facts"`
	Attachments        Attachments        `json:"attachments"`
}

// ReportMeta identifies one side of a comparison.
type ReportMeta struct {
	Title  string       `json:"title"`
	Date   string       `json:"date"`
	Mode   Mode         `json:"mode"`
	Kind   DocumentKind `json:"kind"`
	Source string       `json:"source"`
}

type Similarity struct {
	Slot  string `json:"slot"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Difference struct {
	Slot  string `json:"slot"`
	Label string `json:"label"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

type ComparisonReport struct {
	LeftMeta        ReportMeta   `json:"left_meta"`
	RightMeta       ReportMeta   `json:"right_meta"`
	Similarities    []Similarity `json:"similarities"`
	Differences     []Difference `json:"differences"`
	Recommendations []string     `json:"recommendations"`
}

type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width and Height are in drawing units.
func (b BoundingBox) Width() float64  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

type DrawingElements struct {
	Counts      map[string]int `json:"counts"`
	Total       int            `json:"total"`
	Layers      []string       `json:"layers"`
	BoundingBox *BoundingBox   `json:"bounding_box"`
	Units       string         `json:"units"`
}

type MaterialQuantity struct {
	Material string  `json:"material"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// DrawingPayload is the structural content of a drawing as parsed by the extractor.
type DrawingPayload struct {
	Elements  DrawingElements    `json:"elements"`
	Materials []MaterialQuantity `json:"materials"`
}

type MaterialCost struct {
	Material string  `json:"material"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	UnitRate float64 `json:"unit_rate"`
	Amount   float64 `json:"amount"`
}

// DrawingCost satisfies Materials + Labor + Equipment == Total.
type DrawingCost struct {
	Materials float64        `json:"materials"`
	Labor     float64        `json:"labor"`
	Equipment float64        `json:"equipment"`
	Total     float64        `json:"total"`
	Currency  string         `json:"currency"`
	Lines     []MaterialCost `json:"lines"`
}

type DrawingReport struct {
	Title           string             `json:"title"`
	GeneratedAt     string             `json:"date"`
	Source          string             `json:"source"`
	Summary         string             `json:"summary"`
	Elements        DrawingElements    `json:"elements"`
	Materials       []MaterialQuantity `json:"materials"`
	CostEstimate    DrawingCost        `json:"cost_estimate"`
	Recommendations []string           `json:"recommendations"`
}
