// Package comparison diffs two analysis reports slot by slot.
package comparison

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/fields"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// Tolerance is the largest numeric gap still treated as equal.
const Tolerance = 0.01

// Topic presence values.
const (
	presentBoth = "مذكور في المستندين"
	present     = "مذكور"
	absent      = "غير مذكور"
)

// topic groups slots that speak to the same contractual subject.
type topic struct {
	key   string
	label string
	slots []domain.Slot
}

var topics = []topic{
	{"topic:guarantees", "الضمانات", []domain.Slot{domain.SlotInitialGuarantee, domain.SlotFinalGuarantee, domain.SlotRequiredGuarantees}},
	{"topic:penalties", "الغرامات", []domain.Slot{domain.SlotDelayPenalty}},
	{"topic:payments", "الدفعات", []domain.Slot{domain.SlotPaymentTerms}},
	{"topic:disputes", "النزاعات", []domain.Slot{domain.SlotDisputeResolution}},
	{"topic:warranty", "الصيانة والضمان", []domain.Slot{domain.SlotWarranty}},
}

// Comparator produces comparison reports.
type Comparator struct {
	logger *observability.Logger
}

// NewComparator creates a comparator.
func NewComparator(logger *observability.Logger) *Comparator {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Comparator{logger: logger.WithComponent("comparison")}
}

// Compare diffs a against b. Swapping the arguments yields the same similarities and
// the same differences with left and right exchanged.
func (c *Comparator) Compare(a, b *domain.AnalysisReport) *domain.ComparisonReport {
	out := &domain.ComparisonReport{
		LeftMeta:        a.Meta(),
		RightMeta:       b.Meta(),
		Similarities:    []domain.Similarity{},
		Differences:     []domain.Difference{},
		Recommendations: mergeRecommendations(a.Recommendations, b.Recommendations),
	}

	left, right := a.Facts, b.Facts
	for _, s := range domain.AllSlots {
		if !left.Has(s) || !right.Has(s) {
			continue
		}
		lv, _ := left.Display(s)
		rv, _ := right.Display(s)
		if equalSlot(left, right, s) {
			out.Similarities = append(out.Similarities, domain.Similarity{Slot: string(s), Label: domain.SlotLabels[s], Value: lv})
			continue
		}
		out.Differences = append(out.Differences, domain.Difference{Slot: string(s), Label: domain.SlotLabels[s], Left: lv, Right: rv})
	}

	for _, t := range topics {
		inLeft, inRight := mentions(left, t.slots), mentions(right, t.slots)
		switch {
		case inLeft && inRight:
			out.Similarities = append(out.Similarities, domain.Similarity{Slot: t.key, Label: t.label, Value: presentBoth})
		case inLeft || inRight:
			out.Differences = append(out.Differences, domain.Difference{Slot: t.key, Label: t.label, Left: presence(inLeft), Right: presence(inRight)})
		}
	}

	c.logger.Debug().
		Str("left", a.Source).
		Str("right", b.Source).
		Int("similarities", len(out.Similarities)).
		Int("differences", len(out.Differences)).
		Msg("reports compared")

	return out
}

func mentions(f *domain.DocumentFacts, slots []domain.Slot) bool {
	for _, s := range slots {
		if f.Has(s) {
			return true
		}
	}
	return false
}

func presence(ok bool) string {
	if ok {
		return present
	}
	return absent
}

// equalSlot compares one slot present on both sides.
func equalSlot(a, b *domain.DocumentFacts, s domain.Slot) bool {
	switch s {
	case domain.SlotParties:
		if len(a.Parties) != len(b.Parties) {
			return false
		}
		for role, p := range a.Parties {
			q, ok := b.Parties[role]
			if !ok || norm(p.Value) != norm(q.Value) {
				return false
			}
		}
		return true
	case domain.SlotProjectName:
		return norm(a.ProjectName.Value) == norm(b.ProjectName.Value)
	case domain.SlotContractValue:
		return a.ContractValue.Value.Currency == b.ContractValue.Value.Currency &&
			near(a.ContractValue.Value.Amount, b.ContractValue.Value.Amount)
	case domain.SlotDuration:
		return a.Duration.Value.Months == b.Duration.Value.Months && a.Duration.Value.Unit == b.Duration.Value.Unit
	case domain.SlotInitialGuarantee:
		return near(a.InitialGuaranteePct.Value, b.InitialGuaranteePct.Value)
	case domain.SlotFinalGuarantee:
		return near(a.FinalGuaranteePct.Value, b.FinalGuaranteePct.Value)
	case domain.SlotDelayPenalty:
		p, q := a.DelayPenalty.Value, b.DelayPenalty.Value
		return near(p.PerPeriodPct, q.PerPeriodPct) && p.PeriodUnit == q.PeriodUnit && nearPtr(p.CapPct, q.CapPct)
	case domain.SlotPaymentTerms:
		p, q := a.PaymentTerms.Value, b.PaymentTerms.Value
		return p.Cadence == q.Cadence && p.LagMonths == q.LagMonths &&
			nearPtr(p.RetentionPct, q.RetentionPct) && nearPtr(p.AdvancePct, q.AdvancePct)
	case domain.SlotWarranty:
		return a.WarrantyMonths.Value == b.WarrantyMonths.Value
	case domain.SlotTermination:
		return norm(a.TerminationClause.Value) == norm(b.TerminationClause.Value)
	case domain.SlotDisputeResolution:
		return norm(a.DisputeResolution.Value) == norm(b.DisputeResolution.Value)
	case domain.SlotProjectArea:
		return near(a.ProjectAreaM2.Value, b.ProjectAreaM2.Value)
	case domain.SlotTenderNumber:
		return norm(a.TenderNumber.Value) == norm(b.TenderNumber.Value)
	case domain.SlotOwner:
		return norm(a.Owner.Value) == norm(b.Owner.Value)
	case domain.SlotLocation:
		return norm(a.Location.Value) == norm(b.Location.Value)
	case domain.SlotIssueDate:
		return sameDate(a.IssueDate.Value, b.IssueDate.Value)
	case domain.SlotClosingDate:
		return sameDate(a.ClosingDate.Value, b.ClosingDate.Value)
	case domain.SlotQualification:
		return sameSet(a.QualificationConditions.Value, b.QualificationConditions.Value)
	case domain.SlotRequiredGuarantees:
		return sameSet(a.RequiredGuarantees.Value, b.RequiredGuarantees.Value)
	case domain.SlotTechnicalSpecifications:
		p, q := a.TechnicalSpecifications.Value, b.TechnicalSpecifications.Value
		if len(p) != len(q) {
			return false
		}
		for trade, items := range p {
			other, ok := q[trade]
			if !ok || !sameSet(items, other) {
				return false
			}
		}
		return true
	case domain.SlotEvaluationCriteria:
		p, q := a.EvaluationCriteria.Value, b.EvaluationCriteria.Value
		if len(p) != len(q) {
			return false
		}
		for k, v := range p {
			w, ok := q[k]
			if !ok || !near(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

func near(x, y float64) bool {
	return math.Abs(x-y) <= Tolerance
}

func nearPtr(x, y *float64) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	return near(*x, *y)
}

// norm applies the extraction normalisation and collapses whitespace.
func norm(s string) string {
	return strings.Join(strings.Fields(fields.Normalize(s)), " ")
}

func sameDate(x, y string) bool {
	tx, errX := time.Parse(time.DateOnly, strings.TrimSpace(x))
	ty, errY := time.Parse(time.DateOnly, strings.TrimSpace(y))
	if errX != nil || errY != nil {
		return norm(x) == norm(y)
	}
	return tx.Equal(ty)
}

func sameSet(x, y []string) bool {
	if len(x) != len(y) {
		return false
	}
	nx, ny := normSorted(x), normSorted(y)
	for i := range nx {
		if nx[i] != ny[i] {
			return false
		}
	}
	return true
}

func normSorted(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = norm(s)
	}
	sort.Strings(out)
	return out
}

// mergeRecommendations keeps the first spelling of each normalised recommendation.
func mergeRecommendations(lists ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, list := range lists {
		for _, r := range list {
			key := norm(r)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	return out
}
