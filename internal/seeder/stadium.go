package seeder

import (
	"fmt"
	"math"

	"github.com/Sh00ty/stadium-map/internal/models"
)

// Estádio do Dragão layout, in canvas pixels.
const (
	centerX = 500.0
	centerY = 400.0

	outerPerimeterX = 420.0
	outerPerimeterY = 340.0

	corridorOuterX = 400.0
	corridorOuterY = 320.0
	corridorMidX   = 360.0
	corridorMidY   = 280.0
	corridorInnerX = 320.0
	corridorInnerY = 240.0

	corridorPoints = 72
	levels         = 2
	seatsPerRow    = 40
)

type stand struct {
	name        string
	angleStart  float64
	angleEnd    float64
	rowsPerTier []int
	gates       []int
}

// Norte/Sul are single tier, Este/Oeste have a lower and an upper tier.
var stands = []stand{
	{name: "Norte", angleStart: 45, angleEnd: 135, rowsPerTier: []int{35}, gates: []int{21, 22, 23}},
	{name: "Sul", angleStart: 225, angleEnd: 315, rowsPerTier: []int{35}, gates: []int{7, 8, 9}},
	{name: "Este", angleStart: 315, angleEnd: 405, rowsPerTier: []int{20, 15}, gates: []int{10, 11, 12, 13, 17, 18}},
	{name: "Oeste", angleStart: 135, angleEnd: 225, rowsPerTier: []int{20, 15}, gates: []int{3, 4, 5, 6, 24, 25, 26, 27}},
}

var aislePositions = []int{0, seatsPerRow / 3, 2 * seatsPerRow / 3, seatsPerRow - 1}

type ring int8

const (
	ringOuter ring = iota
	ringMid
	ringInner
)

func (r ring) String() string {
	switch r {
	case ringOuter:
		return "outer"
	case ringMid:
		return "mid"
	}
	return "inner"
}

type corridorKey struct {
	level int
	ring  ring
	pos   int
}

type aisleKey struct {
	tier  int
	row   int
	index int
}

type builder struct {
	navigation []models.Node
	gates      []models.Node
	pois       []models.Node
	aisles     []models.Node
	seats      []models.Node
	edges      []models.Edge
	routes     []models.EmergencyRoute

	corridors map[corridorKey]models.NodeID
	nextNode  int
}

// GenerateStadium builds the full seed graph. The result is deterministic:
// node and edge ids (E1..En) are stable between runs.
func GenerateStadium() models.Dataset {
	b := &builder{
		corridors: make(map[corridorKey]models.NodeID, levels*3*corridorPoints),
		nextNode:  1,
	}
	b.corridorRings()
	b.corridorLinks()
	b.stairsAndRamps()
	b.gateNodes()
	b.seating()
	b.pointsOfInterest()
	b.emergencyRoutes()

	nodes := make([]models.Node, 0,
		len(b.navigation)+len(b.gates)+len(b.pois)+len(b.aisles)+len(b.seats))
	nodes = append(nodes, b.navigation...)
	nodes = append(nodes, b.gates...)
	nodes = append(nodes, b.pois...)
	nodes = append(nodes, b.aisles...)
	nodes = append(nodes, b.seats...)

	return models.Dataset{
		Nodes:  nodes,
		Edges:  b.edges,
		Routes: b.routes,
	}
}

func ellipsePos(angleDeg, radiusX, radiusY float64) (float64, float64) {
	angle := angleDeg * math.Pi / 180
	return centerX + radiusX*math.Cos(angle), centerY + radiusY*math.Sin(angle)
}

// corridorPos is the ring point closest to angle. Halves round to even.
func corridorPos(angleDeg float64) int {
	return int(math.RoundToEven(angleDeg*corridorPoints/360)) % corridorPoints
}

func normalizeAngle(angle float64) float64 {
	if angle >= 360 {
		angle -= 360
	}
	return angle
}

// standAngle maps progress in [0, 1] onto the arc of a stand, handling
// stands that wrap past 0 degrees.
func standAngle(start, end, progress float64) float64 {
	if end < start {
		return normalizeAngle(start + progress*(360-start+end))
	}
	return start + progress*(end-start)
}

func (b *builder) link(from, to models.NodeID, weight float64, accessible bool) {
	b.edges = append(b.edges, models.Edge{
		ID:         models.EdgeID(fmt.Sprintf("E%d", len(b.edges)+1)),
		FromID:     from,
		ToID:       to,
		Weight:     weight,
		Accessible: accessible,
	})
}

func (b *builder) linkBoth(a, c models.NodeID, weight float64, accessible bool) {
	b.link(a, c, weight, accessible)
	b.link(c, a, weight, accessible)
}

func (b *builder) corridorRings() {
	radii := []struct {
		ring   ring
		rx, ry float64
		label  string
	}{
		{ringOuter, corridorOuterX, corridorOuterY, "Concourse"},
		{ringMid, corridorMidX, corridorMidY, "Mid"},
		{ringInner, corridorInnerX, corridorInnerY, "Inner"},
	}
	for level := range levels {
		for _, r := range radii {
			for i := range corridorPoints {
				angle := float64(i) * 360 / corridorPoints
				x, y := ellipsePos(angle, r.rx, r.ry)
				id := models.NodeID(fmt.Sprintf("N%d", b.nextNode))
				b.nextNode++
				b.navigation = append(b.navigation, models.Node{
					ID:    id,
					Name:  ptr(fmt.Sprintf("%s L%d P%d", r.label, level, i)),
					X:     x,
					Y:     y,
					Level: level,
					Type:  models.NodeTypeCorridor,
				})
				b.corridors[corridorKey{level: level, ring: r.ring, pos: i}] = id
			}
		}
	}
}

func (b *builder) corridor(level int, r ring, pos int) models.NodeID {
	return b.corridors[corridorKey{level: level, ring: r, pos: pos}]
}

func (b *builder) corridorLinks() {
	for level := range levels {
		for _, r := range []ring{ringOuter, ringMid, ringInner} {
			for i := range corridorPoints {
				next := (i + 1) % corridorPoints
				b.linkBoth(b.corridor(level, r, i), b.corridor(level, r, next), 5, true)
			}
		}

		// radial links on every second point
		for i := 0; i < corridorPoints; i += 2 {
			outer := b.corridor(level, ringOuter, i)
			mid := b.corridor(level, ringMid, i)
			inner := b.corridor(level, ringInner, i)
			b.linkBoth(outer, mid, 8, true)
			b.linkBoth(mid, inner, 8, true)
		}

		// diagonal shortcuts
		for i := 0; i < corridorPoints; i += 6 {
			next := (i + 1) % corridorPoints
			b.linkBoth(b.corridor(level, ringOuter, i), b.corridor(level, ringMid, next), 9, true)
		}
	}
}

func (b *builder) stairsAndRamps() {
	for idx, pos := range []int{9, 18, 27, 36, 45, 54, 63, 72} {
		pos %= corridorPoints
		x, y := ellipsePos(float64(pos)*360/corridorPoints, corridorOuterX+15, corridorOuterY+15)
		id := models.NodeID(fmt.Sprintf("Stairs-%d", idx+1))
		b.navigation = append(b.navigation, models.Node{
			ID:          id,
			Name:        ptr(fmt.Sprintf("Escadas %d", idx+1)),
			Description: ptr("Stairs connecting Level 0 to Level 1"),
			X:           x,
			Y:           y,
			Type:        models.NodeTypeStairs,
		})
		ground := b.corridor(0, ringOuter, pos)
		upper := b.corridor(1, ringOuter, pos)
		b.link(ground, id, 2, false)
		b.link(id, ground, 2, false)
		b.link(id, upper, 15, false)
		b.link(upper, id, 10, false)
	}

	for idx, pos := range []int{12, 30, 48, 66} {
		x, y := ellipsePos(float64(pos)*360/corridorPoints, corridorOuterX+20, corridorOuterY+20)
		id := models.NodeID(fmt.Sprintf("Ramp-%d", idx+1))
		b.navigation = append(b.navigation, models.Node{
			ID:          id,
			Name:        ptr(fmt.Sprintf("Rampa %d", idx+1)),
			Description: ptr("Accessible ramp for wheelchair users"),
			X:           x,
			Y:           y,
			Type:        models.NodeTypeRamp,
		})
		ground := b.corridor(0, ringOuter, pos)
		upper := b.corridor(1, ringOuter, pos)
		b.link(ground, id, 2, true)
		b.link(id, ground, 2, true)
		b.link(id, upper, 20, true)
		b.link(upper, id, 15, true)
	}
}

func (b *builder) gateNodes() {
	for _, s := range stands {
		angleRange := s.angleEnd - s.angleStart
		for i, num := range s.gates {
			angle := normalizeAngle(s.angleStart + (float64(i)+0.5)*angleRange/float64(len(s.gates)))
			x, y := ellipsePos(angle, outerPerimeterX, outerPerimeterY)
			id := models.NodeID(fmt.Sprintf("Gate-%d", num))
			b.gates = append(b.gates, models.Node{
				ID:          id,
				Name:        ptr(fmt.Sprintf("Porta %d", num)),
				Description: ptr("Entrada " + s.name),
				X:           x,
				Y:           y,
				Type:        models.NodeTypeGate,
				NumServers:  ptr(4),
				ServiceRate: ptr(0.8),
			})
			b.linkBoth(id, b.corridor(0, ringOuter, corridorPos(angle)), 3, true)
		}
	}
}

// seating lays out row aisles and seats. Seats are endpoints: every route
// to a seat goes through the aisle closest to it.
func (b *builder) seating() {
	for _, s := range stands {
		start, end := s.angleStart, s.angleEnd
		if end > 360 {
			end -= 360
		}
		aisles := make(map[aisleKey]models.NodeID, len(aislePositions)*50)

		for tier, rows := range s.rowsPerTier {
			level := tier
			baseRX := corridorInnerX - 20 - float64(tier)*40
			baseRY := corridorInnerY - 20 - float64(tier)*40

			for row := 1; row <= rows; row++ {
				progress := float64(row-1) / float64(max(rows-1, 1))
				rowRX := baseRX - progress*100
				rowRY := baseRY - progress*80

				for idx, apos := range aislePositions {
					angle := standAngle(start, end, float64(apos+1)/float64(seatsPerRow+1))
					x, y := ellipsePos(angle, rowRX, rowRY)
					id := models.NodeID(fmt.Sprintf("Aisle-%s-T%d-R%02d-%d", s.name, tier, row, idx))
					b.aisles = append(b.aisles, models.Node{
						ID:    id,
						Name:  ptr(fmt.Sprintf("Corredor %s T%d Fila %d", s.name, tier, row)),
						X:     x,
						Y:     y,
						Level: level,
						Type:  models.NodeTypeRowAisle,
					})
					aisles[aisleKey{tier: tier, row: row, index: idx}] = id
				}

				// along the row: flat, so accessible
				for i := 0; i < len(aislePositions)-1; i++ {
					b.linkBoth(
						aisles[aisleKey{tier: tier, row: row, index: i}],
						aisles[aisleKey{tier: tier, row: row, index: i + 1}],
						3, true,
					)
				}

				// between rows there are steps
				if row > 1 {
					for idx := range aislePositions {
						b.linkBoth(
							aisles[aisleKey{tier: tier, row: row - 1, index: idx}],
							aisles[aisleKey{tier: tier, row: row, index: idx}],
							1.5, false,
						)
					}
				}

				if row == 1 {
					for idx, apos := range aislePositions {
						angle := standAngle(start, end, float64(apos+1)/float64(seatsPerRow+1))
						corridor := b.corridor(level, ringInner, corridorPos(angle))
						b.linkBoth(corridor, aisles[aisleKey{tier: tier, row: 1, index: idx}], 2, true)
					}
				}

				for num := 1; num <= seatsPerRow; num++ {
					angle := standAngle(start, end, float64(num)/float64(seatsPerRow+1))
					x, y := ellipsePos(angle, rowRX, rowRY)
					id := models.NodeID(fmt.Sprintf("Seat-%s-T%d-R%02d-%02d", s.name, tier, row, num))
					b.seats = append(b.seats, models.Node{
						ID:     id,
						X:      x,
						Y:      y,
						Level:  level,
						Type:   models.NodeTypeSeat,
						Block:  ptr(fmt.Sprintf("%s-T%d", s.name, tier)),
						Row:    ptr(row),
						Number: ptr(num),
					})

					nearest, gap := nearestAisle(num - 1)
					b.linkBoth(
						aisles[aisleKey{tier: tier, row: row, index: nearest}],
						id,
						float64(gap)*0.5+0.5,
						true,
					)
				}
			}
		}
	}
}

// nearestAisle returns the index of the closest aisle to a seat position and
// the distance in seats. Ties go to the lower index.
func nearestAisle(seatPos int) (int, int) {
	best, bestGap := 0, math.MaxInt
	for i, apos := range aislePositions {
		gap := apos - seatPos
		if gap < 0 {
			gap = -gap
		}
		if gap < bestGap {
			best, bestGap = i, gap
		}
	}
	return best, bestGap
}

func (b *builder) addPOI(node models.Node, corridor models.NodeID) {
	b.pois = append(b.pois, node)
	b.linkBoth(node.ID, corridor, 2, true)
}

func (b *builder) pointsOfInterest() {
	// restrooms: two per stand on each level
	for level := range levels {
		for _, s := range stands {
			for wc := range 2 {
				angle := normalizeAngle(s.angleStart + float64(wc+1)*(s.angleEnd-s.angleStart)/3)
				x, y := ellipsePos(angle, corridorMidX, corridorMidY)
				b.addPOI(models.Node{
					ID:          models.NodeID(fmt.Sprintf("WC-%s-L%d-%d", s.name, level, wc+1)),
					Name:        ptr(fmt.Sprintf("WC %s %d", s.name, wc+1)),
					X:           x,
					Y:           y,
					Level:       level,
					Type:        models.NodeTypeRestroom,
					NumServers:  ptr(8),
					ServiceRate: ptr(0.5),
				}, b.corridor(level, ringMid, corridorPos(angle)))
			}
		}
	}

	for _, s := range stands {
		for f := range 3 {
			angle := normalizeAngle(s.angleStart + (float64(f)+0.5)*(s.angleEnd-s.angleStart)/3)
			x, y := ellipsePos(angle, corridorMidX+10, corridorMidY+10)
			kind := models.NodeTypeFood
			if f%2 != 0 {
				kind = models.NodeTypeBar
			}
			b.addPOI(models.Node{
				ID:          models.NodeID(fmt.Sprintf("Food-%s-%d", s.name, f+1)),
				Name:        ptr(fmt.Sprintf("Bar/Restaurante %s %d", s.name, f+1)),
				X:           x,
				Y:           y,
				Type:        kind,
				NumServers:  ptr(6),
				ServiceRate: ptr(0.4),
			}, b.corridor(0, ringMid, corridorPos(angle)))
		}
	}

	for _, s := range stands {
		for e := range 2 {
			angle := normalizeAngle(s.angleStart + (float64(e)+0.5)*(s.angleEnd-s.angleStart)/2)
			x, y := ellipsePos(angle, outerPerimeterX-10, outerPerimeterY-10)
			b.addPOI(models.Node{
				ID:   exitID(s, e),
				Name: ptr(exitName(s, e)),
				X:    x,
				Y:    y,
				Type: models.NodeTypeEmergencyExit,
			}, b.corridor(0, ringOuter, corridorPos(angle)))
		}
	}

	medical := []struct {
		stand string
		angle float64
	}{
		{"Norte", 90},
		{"Sul", 270},
		{"Este", 0},
		{"Oeste", 180},
	}
	for _, m := range medical {
		x, y := ellipsePos(m.angle, corridorMidX-15, corridorMidY-15)
		b.addPOI(models.Node{
			ID:          models.NodeID("Medical-" + m.stand),
			Name:        ptr("Posto Médico " + m.stand),
			X:           x,
			Y:           y,
			Type:        models.NodeTypeFirstAid,
			NumServers:  ptr(3),
			ServiceRate: ptr(0.2),
		}, b.corridor(0, ringMid, corridorPos(m.angle)))
	}

	for idx, angle := range []float64{60, 240} {
		x, y := ellipsePos(angle, corridorMidX, corridorMidY)
		b.addPOI(models.Node{
			ID:          models.NodeID(fmt.Sprintf("Store-%d", idx+1)),
			Name:        ptr(fmt.Sprintf("Loja FC Porto %d", idx+1)),
			X:           x,
			Y:           y,
			Type:        models.NodeTypeMerchandise,
			NumServers:  ptr(4),
			ServiceRate: ptr(0.5),
		}, b.corridor(0, ringMid, corridorPos(angle)))
	}

	for idx, angle := range []float64{90, 180, 270} {
		x, y := ellipsePos(angle, corridorOuterX-20, corridorOuterY-20)
		b.addPOI(models.Node{
			ID:          models.NodeID(fmt.Sprintf("Info-%d", idx+1)),
			Name:        ptr(fmt.Sprintf("Informações %d", idx+1)),
			X:           x,
			Y:           y,
			Type:        models.NodeTypeInformation,
			NumServers:  ptr(2),
			ServiceRate: ptr(0.6),
		}, b.corridor(0, ringOuter, corridorPos(angle)))
	}
}

func exitID(s stand, e int) models.NodeID {
	return models.NodeID(fmt.Sprintf("Exit-%s-%d", s.name, e+1))
}

func exitName(s stand, e int) string {
	return fmt.Sprintf("Saída Emergência %s %d", s.name, e+1)
}

// emergencyRoutes gives every exit a ground level path that starts on the
// inner ring at the middle of its stand and walks outwards.
func (b *builder) emergencyRoutes() {
	for _, s := range stands {
		pos := corridorPos(normalizeAngle(s.angleStart + (s.angleEnd-s.angleStart)/2))
		for e := range 2 {
			exit := exitID(s, e)
			b.routes = append(b.routes, models.EmergencyRoute{
				ID:          models.RouteID("ER-" + string(exit)),
				Name:        "Rota de Evacuação " + exitName(s, e),
				Description: ptr("Evacuação para " + s.name),
				ExitID:      exit,
				NodeIDs: []models.NodeID{
					b.corridor(0, ringInner, pos),
					b.corridor(0, ringMid, pos),
					b.corridor(0, ringOuter, pos),
					exit,
				},
			})
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
