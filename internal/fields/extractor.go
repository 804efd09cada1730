package fields

import (
	"fmt"
	"math"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// Rejection records a recognized value dropped for violating a fact invariant.
type Rejection struct {
	Slot   domain.Slot
	Reason string
}

// Extraction is the outcome of running the registry over one document.
type Extraction struct {
	Facts *domain.DocumentFacts
	// Text is the normalised text all spans refer to.
	Text     string
	Rejected []Rejection
}

// Extractor assembles DocumentFacts from text using a recognizer registry.
type Extractor struct {
	registry *Registry
	currency string
	logger   *observability.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry replaces the default recognizer set.
func WithRegistry(r *Registry) Option {
	return func(e *Extractor) { e.registry = r }
}

// WithDefaultCurrency sets the currency assumed for amounts that name none.
func WithDefaultCurrency(code string) Option {
	return func(e *Extractor) { e.currency = code }
}

// NewExtractor creates an extractor with the built-in Arabic recognizers.
func NewExtractor(logger *observability.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = observability.Nop()
	}
	e := &Extractor{
		registry: DefaultRegistry(),
		currency: "SAR",
		logger:   logger.WithComponent("fields"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Slots returns the slots the extractor can fill for documents of kind k.
func (e *Extractor) Slots(k domain.DocumentKind) []domain.Slot {
	return e.registry.Slots(k)
}

// Extract normalises text and fills every slot applicable to kind. For each slot the
// first recognizer to succeed, in priority order, wins.
func (e *Extractor) Extract(text string, kind domain.DocumentKind) *Extraction {
	norm := Normalize(text)
	facts := &domain.DocumentFacts{Kind: kind}
	filled := map[string]bool{}

	for _, rec := range e.registry.All() {
		if !rec.Applies(kind) || filled[rec.key()] {
			continue
		}
		res, ok := rec.Recognize(norm)
		if !ok {
			continue
		}
		if assign(facts, rec, res) {
			filled[rec.key()] = true
			e.logger.Debug().Str("slot", rec.key()).Str("recognizer", rec.Name).
				Float64("confidence", res.Confidence).Msg("slot recognized")
		}
	}

	if facts.ContractValue != nil && facts.ContractValue.Value.Currency == "" {
		facts.ContractValue.Value.Currency = e.currency
	}

	rejected := enforceInvariants(facts)
	for _, r := range rejected {
		e.logger.Warn().Str("slot", string(r.Slot)).Str("reason", r.Reason).Msg("fact rejected")
	}

	return &Extraction{Facts: facts, Text: norm, Rejected: rejected}
}

func assign(f *domain.DocumentFacts, rec Recognizer, r Result) bool {
	switch rec.Slot {
	case domain.SlotParties:
		p, ok := r.Value.(partyValue)
		if !ok {
			return false
		}
		if f.Parties == nil {
			f.Parties = map[domain.PartyRole]*domain.Field[string]{}
		}
		f.Parties[p.role] = domain.NewField(p.name, r.Span, r.Confidence)
		return true
	case domain.SlotProjectName:
		return set(&f.ProjectName, r)
	case domain.SlotContractValue:
		return set(&f.ContractValue, r)
	case domain.SlotDuration:
		return set(&f.Duration, r)
	case domain.SlotInitialGuarantee:
		return set(&f.InitialGuaranteePct, r)
	case domain.SlotFinalGuarantee:
		return set(&f.FinalGuaranteePct, r)
	case domain.SlotDelayPenalty:
		return set(&f.DelayPenalty, r)
	case domain.SlotPaymentTerms:
		return set(&f.PaymentTerms, r)
	case domain.SlotWarranty:
		return set(&f.WarrantyMonths, r)
	case domain.SlotTermination:
		return set(&f.TerminationClause, r)
	case domain.SlotDisputeResolution:
		return set(&f.DisputeResolution, r)
	case domain.SlotProjectArea:
		return set(&f.ProjectAreaM2, r)
	case domain.SlotTenderNumber:
		return set(&f.TenderNumber, r)
	case domain.SlotOwner:
		return set(&f.Owner, r)
	case domain.SlotLocation:
		return set(&f.Location, r)
	case domain.SlotIssueDate:
		return set(&f.IssueDate, r)
	case domain.SlotClosingDate:
		return set(&f.ClosingDate, r)
	case domain.SlotQualification:
		return set(&f.QualificationConditions, r)
	case domain.SlotRequiredGuarantees:
		return set(&f.RequiredGuarantees, r)
	case domain.SlotTechnicalSpecifications:
		return set(&f.TechnicalSpecifications, r)
	case domain.SlotEvaluationCriteria:
		return set(&f.EvaluationCriteria, r)
	}
	return false
}

func set[T any](dst **domain.Field[T], r Result) bool {
	v, ok := r.Value.(T)
	if !ok {
		return false
	}
	*dst = domain.NewField(v, r.Span, r.Confidence)
	return true
}

// enforceInvariants drops values that contradict each other or their own constraints.
func enforceInvariants(f *domain.DocumentFacts) []Rejection {
	var rejected []Rejection

	if f.DelayPenalty != nil {
		dp := f.DelayPenalty.Value
		if dp.CapPct != nil && *dp.CapPct < dp.PerPeriodPct {
			rejected = append(rejected, Rejection{domain.SlotDelayPenalty,
				fmt.Sprintf("cap %.2f%% below per-period rate %.2f%%, cap dropped", *dp.CapPct, dp.PerPeriodPct)})
			dp.CapPct = nil
			f.DelayPenalty.Value = dp
		}
	}

	if f.InitialGuaranteePct != nil && f.FinalGuaranteePct != nil &&
		f.InitialGuaranteePct.Value+f.FinalGuaranteePct.Value > 100 {
		rejected = append(rejected, Rejection{domain.SlotFinalGuarantee, "initial and final guarantees exceed 100%"})
		f.FinalGuaranteePct = nil
	}

	if f.IssueDate != nil && f.ClosingDate != nil && f.ClosingDate.Value < f.IssueDate.Value {
		rejected = append(rejected, Rejection{domain.SlotClosingDate,
			fmt.Sprintf("closing date %s precedes issue date %s", f.ClosingDate.Value, f.IssueDate.Value)})
		f.ClosingDate = nil
	}

	if f.EvaluationCriteria != nil {
		sum := 0.0
		for _, w := range f.EvaluationCriteria.Value {
			sum += w
		}
		if math.Abs(sum-100) > 1 {
			rejected = append(rejected, Rejection{domain.SlotEvaluationCriteria,
				fmt.Sprintf("weights sum to %.2f, expected 100", sum)})
			f.EvaluationCriteria = nil
		}
	}

	if f.Duration != nil && f.Duration.Value.Months <= 0 {
		rejected = append(rejected, Rejection{domain.SlotDuration, "duration must be positive"})
		f.Duration = nil
	}

	return rejected
}
