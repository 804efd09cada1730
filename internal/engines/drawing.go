package engines

import (
	"sort"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// DrawingCurrency is the currency of the material unit rates.
const DrawingCurrency = "SAR"

const (
	laborRatio     = 0.40
	equipmentRatio = 0.15
)

// unitRates are per material and measurement unit.
var unitRates = map[string]map[string]float64{
	"concrete": {"m": 450, "m2": 350, "m3": 900},
	"blocks":   {"m2": 85, "m": 255},
	"steel":    {"pcs": 2500, "m": 180, "t": 3800},
}

// UnitRate returns the rate for a material quantity; ok is false when no rate is known.
func UnitRate(material, unit string) (float64, bool) {
	rate, ok := unitRates[material][unit]
	return rate, ok
}

// EstimateDrawingCost prices the material quantities of a drawing and adds labour
// and equipment as fixed ratios of materials.
func EstimateDrawingCost(payload *domain.DrawingPayload) domain.DrawingCost {
	cost := domain.DrawingCost{Currency: DrawingCurrency, Lines: []domain.MaterialCost{}}
	if payload == nil {
		return cost
	}

	quantities := append([]domain.MaterialQuantity(nil), payload.Materials...)
	sort.SliceStable(quantities, func(i, j int) bool {
		if quantities[i].Material != quantities[j].Material {
			return quantities[i].Material < quantities[j].Material
		}
		return quantities[i].Unit < quantities[j].Unit
	})

	for _, q := range quantities {
		rate, ok := UnitRate(q.Material, q.Unit)
		if !ok {
			continue
		}
		amount := round2(q.Quantity * rate)
		cost.Lines = append(cost.Lines, domain.MaterialCost{
			Material: q.Material,
			Quantity: q.Quantity,
			Unit:     q.Unit,
			UnitRate: rate,
			Amount:   amount,
		})
		cost.Materials = round2(cost.Materials + amount)
	}

	cost.Labor = round2(cost.Materials * laborRatio)
	cost.Equipment = round2(cost.Materials * equipmentRatio)
	cost.Total = cost.Materials + cost.Labor + cost.Equipment
	return cost
}

// DrawingRecommendations lists review points for a parsed drawing.
func DrawingRecommendations(payload *domain.DrawingPayload) []string {
	out := []string{}
	if payload == nil {
		return out
	}
	if len(payload.Materials) == 0 {
		out = append(out, "تسمية طبقات المخطط حسب المادة (خرسانة، بلوك، حديد) لتمكين حصر الكميات")
	}
	for _, q := range payload.Materials {
		if _, ok := UnitRate(q.Material, q.Unit); !ok {
			out = append(out, "تسعير بند "+q.Material+" يدوياً لعدم توفر سعر وحدة للقياس "+q.Unit)
		}
	}
	if payload.Elements.Units == "" || payload.Elements.Units == "unitless" {
		out = append(out, "تحديد وحدات القياس في إعدادات المخطط للتحقق من الكميات")
	}
	out = append(out,
		"مطابقة الكميات المحصورة آلياً مع جداول الكميات المعتمدة",
		"تحديث أسعار الوحدات وفق عروض الموردين الحالية قبل التسعير النهائي",
	)
	return out
}
