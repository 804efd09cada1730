package engines

import "github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"

// expenseRatio is the share of the contract value spent on direct costs.
const expenseRatio = 0.9

// sCurve weights expenses by sextile of the project duration.
var sCurve = [6]float64{10, 20, 20, 20, 20, 10}

// PlanCashFlow projects monthly income and expense over the project duration.
// Payments start after the payment lag and are spread evenly over the remaining
// months, each net of retention and advance recovery. The advance is received in
// month 1. Retention is not released within the schedule.
func PlanCashFlow(f *domain.DocumentFacts) []domain.CashFlowRow {
	if f == nil || f.ContractValue == nil || f.Duration == nil || f.Duration.Value.Months <= 0 {
		return nil
	}
	months := f.Duration.Value.Months
	value := f.ContractValue.Value.Amount

	var retention, advance float64
	lag := 0
	if f.PaymentTerms != nil {
		terms := f.PaymentTerms.Value
		if terms.RetentionPct != nil {
			retention = *terms.RetentionPct
		}
		if terms.AdvancePct != nil {
			advance = value * *terms.AdvancePct / 100
		}
		lag = terms.LagMonths
	}

	income := incomeSchedule(months, lag, value, retention, advance)
	expense := expenseSchedule(months, value*expenseRatio)

	rows := make([]domain.CashFlowRow, months)
	cumulative := 0.0
	for i := range rows {
		net := round2(income[i] - expense[i])
		cumulative = round2(cumulative + net)
		rows[i] = domain.CashFlowRow{
			Month:      i + 1,
			Income:     income[i],
			Expense:    expense[i],
			Net:        net,
			Cumulative: cumulative,
		}
	}
	return rows
}

func incomeSchedule(months, lag int, value, retentionPct, advance float64) []float64 {
	first := lag
	if first >= months {
		first = months - 1
	}
	payments := months - first

	gross := value / float64(payments)
	recovery := advance / float64(payments)
	payment := round2(gross*(1-retentionPct/100) - recovery)
	target := round2(value*(1-retentionPct/100) - advance)

	income := make([]float64, months)
	paid := 0.0
	for m := first; m < months; m++ {
		amount := payment
		if m == months-1 {
			amount = round2(target - paid)
		}
		income[m] = amount
		paid += amount
	}
	income[0] = round2(income[0] + advance)
	return income
}

func expenseSchedule(months int, total float64) []float64 {
	weights := make([]float64, months)
	var perSextile [6]int
	for m := 0; m < months; m++ {
		perSextile[m*6/months]++
	}
	sum := 0.0
	for m := 0; m < months; m++ {
		s := m * 6 / months
		weights[m] = sCurve[s] / float64(perSextile[s])
		sum += weights[m]
	}

	expense := make([]float64, months)
	spent := 0.0
	for m := range weights {
		amount := round2(total * weights[m] / sum)
		if m == months-1 {
			amount = round2(total - spent)
		}
		expense[m] = amount
		spent += amount
	}
	return expense
}
