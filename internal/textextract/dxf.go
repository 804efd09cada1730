package textextract

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// storeyHeight converts wall lengths on block layers to wall face area.
const storeyHeight = 3.0

// insUnits maps $INSUNITS codes to a unit label and its length in metres.
var insUnits = map[int]struct {
	label string
	scale float64
}{
	0: {"unitless", 1},
	1: {"in", 0.0254},
	2: {"ft", 0.3048},
	4: {"mm", 0.001},
	5: {"cm", 0.01},
	6: {"m", 1},
}

// layerMaterials classifies layers by name. Order matters: the first match wins.
var layerMaterials = []struct {
	material string
	keywords []string
}{
	{"steel", []string{"STEEL", "REBAR", "METAL", "حديد"}},
	{"blocks", []string{"BLOCK", "WALL", "MASON", "بلوك", "طوب", "جدار"}},
	{"concrete", []string{"CONC", "SLAB", "FOUND", "FOOTING", "خرسان", "قواعد"}},
}

type dxfPair struct {
	code  int
	value string
}

type point struct{ x, y float64 }

type dxfEntity struct {
	kind   string
	layer  string
	points []point
	radius float64
	// arc start and end angles in degrees
	start, end float64
	flags      int
}

func (e *dxfEntity) closed() bool {
	return e.flags&1 == 1
}

// parseDXF reads an ASCII DXF group-code stream into a drawing payload.
func parseDXF(data []byte) (*domain.DrawingPayload, error) {
	pairs, err := dxfPairs(string(data))
	if err != nil {
		return nil, err
	}

	var (
		entities   []*dxfEntity
		unitsCode  = 0
		section    string
		current    *dxfEntity
		polyline   *dxfEntity
		sawEntSect bool
	)

	flush := func() {
		if current == nil {
			return
		}
		switch current.kind {
		case "VERTEX":
			if polyline != nil && len(current.points) > 0 {
				polyline.points = append(polyline.points, current.points[0])
			}
		case "SEQEND":
			polyline = nil
		default:
			if current.kind == "POLYLINE" {
				// vertices follow as separate entities; the header point is a placeholder
				current.points = nil
				polyline = current
			}
			entities = append(entities, current)
		}
		current = nil
	}

	for i := 0; i < len(pairs); i++ {
		p := pairs[i]
		if p.code == 0 {
			flush()
			switch p.value {
			case "SECTION":
				if i+1 < len(pairs) && pairs[i+1].code == 2 {
					section = pairs[i+1].value
					i++
					if section == "ENTITIES" {
						sawEntSect = true
					}
				}
				continue
			case "ENDSEC":
				section = ""
				continue
			case "EOF":
				i = len(pairs)
				continue
			}
			if section == "ENTITIES" {
				current = &dxfEntity{kind: p.value}
			}
			continue
		}

		switch section {
		case "HEADER":
			if p.code == 9 && p.value == "$INSUNITS" && i+1 < len(pairs) {
				if n, err := strconv.Atoi(pairs[i+1].value); err == nil {
					unitsCode = n
				}
				i++
			}
		case "ENTITIES":
			if current == nil {
				continue
			}
			if err := current.apply(p); err != nil {
				return nil, err
			}
		}
	}
	flush()

	if !sawEntSect {
		return nil, domain.CorruptInput("DXF has no ENTITIES section", nil)
	}

	units, ok := insUnits[unitsCode]
	if !ok {
		units = insUnits[0]
	}
	return buildPayload(entities, units.label, units.scale), nil
}

func (e *dxfEntity) apply(p dxfPair) error {
	switch p.code {
	case 8:
		e.layer = p.value
	case 10, 11:
		x, err := parseCoord(p)
		if err != nil {
			return err
		}
		e.points = append(e.points, point{x: x})
	case 20, 21:
		y, err := parseCoord(p)
		if err != nil {
			return err
		}
		if n := len(e.points); n > 0 {
			e.points[n-1].y = y
		}
	case 40:
		r, err := parseCoord(p)
		if err != nil {
			return err
		}
		e.radius = r
	case 50, 51:
		a, err := parseCoord(p)
		if err != nil {
			return err
		}
		if p.code == 50 {
			e.start = a
		} else {
			e.end = a
		}
	case 70:
		if n, err := strconv.Atoi(p.value); err == nil {
			e.flags = n
		}
	}
	return nil
}

func parseCoord(p dxfPair) (float64, error) {
	v, err := strconv.ParseFloat(p.value, 64)
	if err != nil {
		return 0, domain.CorruptInput(fmt.Sprintf("DXF group %d has non-numeric value %q", p.code, p.value), err)
	}
	return v, nil
}

func dxfPairs(s string) ([]dxfPair, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines)%2 != 0 {
		return nil, domain.CorruptInput("DXF stream has an odd number of lines", nil)
	}
	pairs := make([]dxfPair, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		code, err := strconv.Atoi(strings.TrimSpace(lines[i]))
		if err != nil {
			return nil, domain.CorruptInput(fmt.Sprintf("invalid DXF group code on line %d", i+1), err)
		}
		pairs = append(pairs, dxfPair{code: code, value: strings.TrimSpace(lines[i+1])})
	}
	return pairs, nil
}

type quantityKey struct{ material, unit string }

func buildPayload(entities []*dxfEntity, unitLabel string, scale float64) *domain.DrawingPayload {
	counts := map[string]int{}
	layers := map[string]bool{}
	quantities := map[quantityKey]float64{}
	var box *domain.BoundingBox

	extend := func(x, y float64) {
		x, y = x*scale, y*scale
		if box == nil {
			box = &domain.BoundingBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
			return
		}
		box.MinX = math.Min(box.MinX, x)
		box.MinY = math.Min(box.MinY, y)
		box.MaxX = math.Max(box.MaxX, x)
		box.MaxY = math.Max(box.MaxY, y)
	}

	for _, e := range entities {
		counts[e.kind]++
		if e.layer != "" {
			layers[e.layer] = true
		}
		for _, p := range e.points {
			if e.radius > 0 && (e.kind == "CIRCLE" || e.kind == "ARC") {
				extend(p.x-e.radius, p.y-e.radius)
				extend(p.x+e.radius, p.y+e.radius)
				continue
			}
			extend(p.x, p.y)
		}

		material := classifyLayer(e.layer)
		if material == "" {
			continue
		}
		for k, v := range measure(e, material, scale) {
			quantities[k] += v
		}
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	layerNames := make([]string, 0, len(layers))
	for l := range layers {
		layerNames = append(layerNames, l)
	}
	sort.Strings(layerNames)

	keys := make([]quantityKey, 0, len(quantities))
	for k := range quantities {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].material != keys[j].material {
			return keys[i].material < keys[j].material
		}
		return keys[i].unit < keys[j].unit
	})
	materials := make([]domain.MaterialQuantity, 0, len(keys))
	for _, k := range keys {
		materials = append(materials, domain.MaterialQuantity{
			Material: k.material,
			Quantity: round2(quantities[k]),
			Unit:     k.unit,
		})
	}

	return &domain.DrawingPayload{
		Elements: domain.DrawingElements{
			Counts:      counts,
			Total:       total,
			Layers:      layerNames,
			BoundingBox: box,
			Units:       unitLabel,
		},
		Materials: materials,
	}
}

func classifyLayer(layer string) string {
	upper := strings.ToUpper(layer)
	for _, lm := range layerMaterials {
		for _, kw := range lm.keywords {
			if strings.Contains(upper, kw) {
				return lm.material
			}
		}
	}
	return ""
}

// measure returns the quantity one entity contributes to its layer material.
// Closed outlines count as area, open geometry as length, and point-like
// entities on steel layers as pieces.
func measure(e *dxfEntity, material string, scale float64) map[quantityKey]float64 {
	var length, area float64
	pointLike := false

	switch e.kind {
	case "LINE":
		if len(e.points) >= 2 {
			length = dist(e.points[0], e.points[1])
		}
	case "LWPOLYLINE", "POLYLINE":
		length = perimeter(e.points, e.closed())
		if e.closed() {
			area = shoelace(e.points)
		}
	case "CIRCLE":
		length = 2 * math.Pi * e.radius
		area = math.Pi * e.radius * e.radius
		pointLike = true
	case "ARC":
		sweep := math.Mod(e.end-e.start+360, 360)
		length = e.radius * sweep * math.Pi / 180
	case "INSERT", "POINT":
		pointLike = true
	default:
		return nil
	}
	length *= scale
	area *= scale * scale

	switch material {
	case "steel":
		if pointLike {
			return map[quantityKey]float64{{material, "pcs"}: 1}
		}
		return map[quantityKey]float64{{material, "m"}: length}
	case "blocks":
		if length == 0 {
			return nil
		}
		return map[quantityKey]float64{{material, "m2"}: length * storeyHeight}
	default:
		if area > 0 {
			return map[quantityKey]float64{{material, "m2"}: area}
		}
		if length > 0 {
			return map[quantityKey]float64{{material, "m"}: length}
		}
	}
	return nil
}

func dist(a, b point) float64 {
	return math.Hypot(b.x-a.x, b.y-a.y)
}

func perimeter(pts []point, closed bool) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += dist(pts[i-1], pts[i])
	}
	if closed && len(pts) > 2 {
		total += dist(pts[len(pts)-1], pts[0])
	}
	return total
}

func shoelace(pts []point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].x*pts[j].y - pts[j].x*pts[i].y
	}
	return math.Abs(sum) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
