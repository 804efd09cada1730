package engines

import (
	"math"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

type tradeShare struct {
	category string
	pct      float64
}

// costShares is the fixed building breakdown; it sums to 100.
var costShares = []tradeShare{
	{"الأعمال الإنشائية", 40},
	{"الأعمال المعمارية", 25},
	{"الأعمال الكهربائية", 15},
	{"الأعمال الميكانيكية", 15},
	{"أعمال الموقع", 5},
}

// EstimateCost derives totals from the contract value. The per-square-meter cost and
// trade breakdown are only produced when the project area is known.
func EstimateCost(f *domain.DocumentFacts) *domain.CostEstimate {
	if f == nil || f.ContractValue == nil {
		return nil
	}
	total := f.ContractValue.Value.Amount
	est := &domain.CostEstimate{
		Total:    total,
		Currency: f.ContractValue.Value.Currency,
	}
	if f.ProjectAreaM2 == nil || f.ProjectAreaM2.Value <= 0 {
		return est
	}

	area := f.ProjectAreaM2.Value
	perM2 := round2(total / area)
	est.AreaM2 = &area
	est.PerSquareMeter = &perM2

	remaining := total
	for i, share := range costShares {
		amount := round2(total * share.pct / 100)
		if i == len(costShares)-1 {
			amount = round2(remaining)
		}
		remaining -= amount
		est.Breakdown = append(est.Breakdown, domain.CostBreakdown{
			Category:   share.category,
			Amount:     amount,
			Percentage: share.pct,
		})
	}
	return est
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
