package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Span is a half-open byte range into the normalised document text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Field carries an extracted value with its provenance span and confidence in [0,1].
type Field[T any] struct {
	Value      T       `json:"value"`
	Span       Span    `json:"span"`
	Confidence float64 `json:"confidence"`
}

// NewField builds a field, clamping confidence to [0,1].
func NewField[T any](v T, span Span, confidence float64) *Field[T] {
	return &Field[T]{Value: v, Span: span, Confidence: math.Max(0, math.Min(1, confidence))}
}

// Extraction confidences by evidence basis.
const (
	ConfidenceAnchor   = 1.0
	ConfidencePattern  = 0.8
	ConfidenceInferred = 0.5
)

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Duration is a project period rounded to whole months; Unit is the canonical unit of the literal.
type Duration struct {
	Months  int    `json:"months"`
	Unit    string `json:"unit"`
	Literal string `json:"literal"`
}

type DelayPenalty struct {
	PerPeriodPct float64  `json:"per_period_pct"`
	PeriodUnit   string   `json:"period_unit"`
	CapPct       *float64 `json:"cap_pct"`
}

type PaymentTerms struct {
	Text         string   `json:"text"`
	Cadence      string   `json:"cadence"`
	RetentionPct *float64 `json:"retention_pct"`
	AdvancePct   *float64 `json:"advance_pct"`
	LagMonths    int      `json:"payment_lag_months"`
}

// PartyRole keys the parties map.
type PartyRole string

const (
	PartyFirst  PartyRole = "first_party"
	PartySecond PartyRole = "second_party"
	PartyOwner  PartyRole = "owner"
)

// Slot names a fact in DocumentFacts.
type Slot string

const (
	SlotParties                 Slot = "parties"
	SlotProjectName             Slot = "project_name"
	SlotContractValue           Slot = "contract_value"
	SlotDuration                Slot = "duration"
	SlotInitialGuarantee        Slot = "initial_guarantee_pct"
	SlotFinalGuarantee          Slot = "final_guarantee_pct"
	SlotDelayPenalty            Slot = "delay_penalty"
	SlotPaymentTerms            Slot = "payment_terms"
	SlotWarranty                Slot = "warranty_months"
	SlotTermination             Slot = "termination_clause"
	SlotDisputeResolution       Slot = "dispute_resolution"
	SlotProjectArea             Slot = "project_area_m2"
	SlotTenderNumber            Slot = "tender_number"
	SlotOwner                   Slot = "owner"
	SlotLocation                Slot = "location"
	SlotIssueDate               Slot = "issue_date"
	SlotClosingDate             Slot = "closing_date"
	SlotQualification           Slot = "qualification_conditions"
	SlotRequiredGuarantees      Slot = "required_guarantees"
	SlotTechnicalSpecifications Slot = "technical_specifications"
	SlotEvaluationCriteria      Slot = "evaluation_criteria"
)

// AllSlots is the fixed presentation and comparison order.
var AllSlots = []Slot{
	SlotParties,
	SlotProjectName,
	SlotContractValue,
	SlotDuration,
	SlotInitialGuarantee,
	SlotFinalGuarantee,
	SlotDelayPenalty,
	SlotPaymentTerms,
	SlotWarranty,
	SlotTermination,
	SlotDisputeResolution,
	SlotProjectArea,
	SlotTenderNumber,
	SlotOwner,
	SlotLocation,
	SlotIssueDate,
	SlotClosingDate,
	SlotQualification,
	SlotRequiredGuarantees,
	SlotTechnicalSpecifications,
	SlotEvaluationCriteria,
}

// SlotLabels are the Arabic entity names used in reports.
var SlotLabels = map[Slot]string{
	SlotParties:                 "الأطراف",
	SlotProjectName:             "اسم المشروع",
	SlotContractValue:           "قيمة العقد",
	SlotDuration:                "مدة التنفيذ",
	SlotInitialGuarantee:        "الضمان الابتدائي",
	SlotFinalGuarantee:          "الضمان النهائي",
	SlotDelayPenalty:            "غرامة التأخير",
	SlotPaymentTerms:            "شروط الدفع",
	SlotWarranty:                "فترة الضمان",
	SlotTermination:             "فسخ العقد",
	SlotDisputeResolution:       "تسوية النزاعات",
	SlotProjectArea:             "مساحة المشروع",
	SlotTenderNumber:            "رقم المناقصة",
	SlotOwner:                   "الجهة المالكة",
	SlotLocation:                "موقع المشروع",
	SlotIssueDate:               "تاريخ الطرح",
	SlotClosingDate:             "تاريخ الإقفال",
	SlotQualification:           "شروط التأهيل",
	SlotRequiredGuarantees:      "الضمانات المطلوبة",
	SlotTechnicalSpecifications: "المواصفات الفنية",
	SlotEvaluationCriteria:      "معايير التقييم",
}

// PartyLabels name the party roles in Arabic.
var PartyLabels = map[PartyRole]string{
	PartyFirst:  "الطرف الأول",
	PartySecond: "الطرف الثاني",
	PartyOwner:  "المالك",
}

// DocumentFacts is the fixed fact schema. Absent slots are nil and serialise as null.
type DocumentFacts struct {
	Kind                    DocumentKind                 `json:"kind"`
	Parties                 map[PartyRole]*Field[string] `json:"parties"`
	ProjectName             *Field[string]               `json:"project_name"`
	ContractValue           *Field[Money]                `json:"contract_value"`
	Duration                *Field[Duration]             `json:"duration"`
	InitialGuaranteePct     *Field[float64]              `json:"initial_guarantee_pct"`
	FinalGuaranteePct       *Field[float64]              `json:"final_guarantee_pct"`
	DelayPenalty            *Field[DelayPenalty]         `json:"delay_penalty"`
	PaymentTerms            *Field[PaymentTerms]         `json:"payment_terms"`
	WarrantyMonths          *Field[int]                  `json:"warranty_months"`
	TerminationClause       *Field[string]               `json:"termination_clause"`
	DisputeResolution       *Field[string]               `json:"dispute_resolution"`
	ProjectAreaM2           *Field[float64]              `json:"project_area_m2"`
	TenderNumber            *Field[string]               `json:"tender_number"`
	Owner                   *Field[string]               `json:"owner"`
	Location                *Field[string]               `json:"location"`
	IssueDate               *Field[string]               `json:"issue_date"`
	ClosingDate             *Field[string]               `json:"closing_date"`
	QualificationConditions *Field[[]string]             `json:"qualification_conditions"`
	RequiredGuarantees      *Field[[]string]             `json:"required_guarantees"`
	TechnicalSpecifications *Field[map[string][]string]  `json:"technical_specifications"`
	EvaluationCriteria      *Field[map[string]float64]   `json:"evaluation_criteria"`
}

// Has reports whether the slot holds a value.
func (f *DocumentFacts) Has(s Slot) bool {
	return f.Confidence(s) > 0
}

// Confidence returns the slot confidence, 0 when absent. Parties report their lowest confidence.
func (f *DocumentFacts) Confidence(s Slot) float64 {
	if f == nil {
		return 0
	}
	switch s {
	case SlotParties:
		if len(f.Parties) == 0 {
			return 0
		}
		lowest := 1.0
		for _, p := range f.Parties {
			lowest = math.Min(lowest, p.Confidence)
		}
		return lowest
	case SlotProjectName:
		return conf(f.ProjectName)
	case SlotContractValue:
		return conf(f.ContractValue)
	case SlotDuration:
		return conf(f.Duration)
	case SlotInitialGuarantee:
		return conf(f.InitialGuaranteePct)
	case SlotFinalGuarantee:
		return conf(f.FinalGuaranteePct)
	case SlotDelayPenalty:
		return conf(f.DelayPenalty)
	case SlotPaymentTerms:
		return conf(f.PaymentTerms)
	case SlotWarranty:
		return conf(f.WarrantyMonths)
	case SlotTermination:
		return conf(f.TerminationClause)
	case SlotDisputeResolution:
		return conf(f.DisputeResolution)
	case SlotProjectArea:
		return conf(f.ProjectAreaM2)
	case SlotTenderNumber:
		return conf(f.TenderNumber)
	case SlotOwner:
		return conf(f.Owner)
	case SlotLocation:
		return conf(f.Location)
	case SlotIssueDate:
		return conf(f.IssueDate)
	case SlotClosingDate:
		return conf(f.ClosingDate)
	case SlotQualification:
		return conf(f.QualificationConditions)
	case SlotRequiredGuarantees:
		return conf(f.RequiredGuarantees)
	case SlotTechnicalSpecifications:
		return conf(f.TechnicalSpecifications)
	case SlotEvaluationCriteria:
		return conf(f.EvaluationCriteria)
	}
	return 0
}

func conf[T any](f *Field[T]) float64 {
	if f == nil {
		return 0
	}
	return f.Confidence
}

// Clear removes the slot value.
func (f *DocumentFacts) Clear(s Slot) {
	switch s {
	case SlotParties:
		f.Parties = nil
	case SlotProjectName:
		f.ProjectName = nil
	case SlotContractValue:
		f.ContractValue = nil
	case SlotDuration:
		f.Duration = nil
	case SlotInitialGuarantee:
		f.InitialGuaranteePct = nil
	case SlotFinalGuarantee:
		f.FinalGuaranteePct = nil
	case SlotDelayPenalty:
		f.DelayPenalty = nil
	case SlotPaymentTerms:
		f.PaymentTerms = nil
	case SlotWarranty:
		f.WarrantyMonths = nil
	case SlotTermination:
		f.TerminationClause = nil
	case SlotDisputeResolution:
		f.DisputeResolution = nil
	case SlotProjectArea:
		f.ProjectAreaM2 = nil
	case SlotTenderNumber:
		f.TenderNumber = nil
	case SlotOwner:
		f.Owner = nil
	case SlotLocation:
		f.Location = nil
	case SlotIssueDate:
		f.IssueDate = nil
	case SlotClosingDate:
		f.ClosingDate = nil
	case SlotQualification:
		f.QualificationConditions = nil
	case SlotRequiredGuarantees:
		f.RequiredGuarantees = nil
	case SlotTechnicalSpecifications:
		f.TechnicalSpecifications = nil
	case SlotEvaluationCriteria:
		f.EvaluationCriteria = nil
	}
}

// Missing returns the slots of the given list that hold no value, in list order.
func (f *DocumentFacts) Missing(slots []Slot) []Slot {
	missing := []Slot{}
	for _, s := range slots {
		if !f.Has(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// Project returns a shallow copy holding only the given slots.
func (f *DocumentFacts) Project(slots []Slot) *DocumentFacts {
	keep := make(map[Slot]bool, len(slots))
	for _, s := range slots {
		keep[s] = true
	}
	out := *f
	for _, s := range AllSlots {
		if !keep[s] {
			out.Clear(s)
		}
	}
	return &out
}

// Display renders the slot value for presentation; ok is false when the slot is absent.
func (f *DocumentFacts) Display(s Slot) (string, bool) {
	if !f.Has(s) {
		return "", false
	}
	switch s {
	case SlotParties:
		parts := make([]string, 0, len(f.Parties))
		for _, role := range []PartyRole{PartyFirst, PartySecond, PartyOwner} {
			if p, ok := f.Parties[role]; ok {
				parts = append(parts, PartyLabels[role]+": "+p.Value)
			}
		}
		return strings.Join(parts, "؛ "), true
	case SlotProjectName:
		return f.ProjectName.Value, true
	case SlotContractValue:
		return FormatMoney(f.ContractValue.Value), true
	case SlotDuration:
		return f.Duration.Value.Literal, true
	case SlotInitialGuarantee:
		return FormatPct(f.InitialGuaranteePct.Value), true
	case SlotFinalGuarantee:
		return FormatPct(f.FinalGuaranteePct.Value), true
	case SlotDelayPenalty:
		return FormatDelayPenalty(f.DelayPenalty.Value), true
	case SlotPaymentTerms:
		return f.PaymentTerms.Value.Text, true
	case SlotWarranty:
		return strconv.Itoa(f.WarrantyMonths.Value) + " شهراً", true
	case SlotTermination:
		return f.TerminationClause.Value, true
	case SlotDisputeResolution:
		return f.DisputeResolution.Value, true
	case SlotProjectArea:
		return FormatNumber(f.ProjectAreaM2.Value) + " م²", true
	case SlotTenderNumber:
		return f.TenderNumber.Value, true
	case SlotOwner:
		return f.Owner.Value, true
	case SlotLocation:
		return f.Location.Value, true
	case SlotIssueDate:
		return f.IssueDate.Value, true
	case SlotClosingDate:
		return f.ClosingDate.Value, true
	case SlotQualification:
		return strings.Join(f.QualificationConditions.Value, "؛ "), true
	case SlotRequiredGuarantees:
		return strings.Join(f.RequiredGuarantees.Value, "؛ "), true
	case SlotTechnicalSpecifications:
		return strings.Join(SortedKeys(f.TechnicalSpecifications.Value), "؛ "), true
	case SlotEvaluationCriteria:
		keys := SortedKeys(f.EvaluationCriteria.Value)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+" "+FormatPct(f.EvaluationCriteria.Value[k]))
		}
		return strings.Join(parts, "؛ "), true
	}
	return "", false
}

// SortedKeys returns map keys in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var currencyNames = map[string]string{
	"SAR": "ريال",
	"USD": "دولار",
	"EUR": "يورو",
	"AED": "درهم",
	"EGP": "جنيه",
	"QAR": "ريال قطري",
	"KWD": "دينار كويتي",
}

// CurrencyName returns the Arabic currency word, or the code itself when unknown.
func CurrencyName(code string) string {
	if n, ok := currencyNames[code]; ok {
		return n
	}
	return code
}

// FormatMoney renders 25000000 SAR as "25,000,000 ريال".
func FormatMoney(m Money) string {
	return FormatNumber(m.Amount) + " " + CurrencyName(m.Currency)
}

// FormatNumber groups thousands and keeps two decimals only when the value has a fraction.
func FormatNumber(v float64) string {
	neg := v < 0
	v = math.Abs(v)
	whole := math.Floor(v)
	frac := math.Round((v-whole)*100) / 100
	if frac >= 1 {
		whole++
		frac = 0
	}
	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac > 0 {
		b.WriteString(strings.TrimPrefix(strconv.FormatFloat(frac, 'f', 2, 64), "0"))
	}
	return b.String()
}

// FormatPct renders 2 as "2%" and 2.5 as "2.5%".
func FormatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

var periodUnitNames = map[string]string{
	"day":   "يوم",
	"week":  "أسبوع",
	"month": "شهر",
}

// FormatDelayPenalty renders "1% عن كل أسبوع بحد أقصى 10%".
func FormatDelayPenalty(p DelayPenalty) string {
	unit := periodUnitNames[p.PeriodUnit]
	if unit == "" {
		unit = p.PeriodUnit
	}
	s := FormatPct(p.PerPeriodPct) + " عن كل " + unit
	if p.CapPct != nil {
		s += " بحد أقصى " + FormatPct(*p.CapPct)
	}
	return s
}
