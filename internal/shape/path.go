// Package shape turns vector path data into point sequences that can be
// compared with freehand strokes.
package shape

import (
	"math"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/paulmach/orb"
)

// Flatness is the maximum distance between a curve and the polyline that
// replaces it when measuring or sampling.
const Flatness = 0.05

const maxSubdivision = 16

type segment struct {
	cubic          bool
	p0, p1, p2, p3 models.Point // lines use p0 and p3 only
}

type contour struct {
	start  models.Point
	segs   []segment
	closed bool
}

// Path is an ordered list of contours. Each contour begins at a moveto and
// holds line and cubic segments; quadratics and arcs are stored as cubics.
type Path struct {
	contours []contour
	flat     [][]models.Point
}

func (p *Path) current() models.Point {
	if len(p.contours) == 0 {
		return models.Point{}
	}
	c := &p.contours[len(p.contours)-1]
	if c.closed || len(c.segs) == 0 {
		return c.start
	}
	return c.segs[len(c.segs)-1].p3
}

func (p *Path) empty() bool {
	for _, c := range p.contours {
		if len(c.segs) > 0 {
			return false
		}
	}
	return true
}

func (p *Path) moveTo(pt models.Point) {
	p.flat = nil
	if n := len(p.contours); n > 0 && len(p.contours[n-1].segs) == 0 {
		p.contours[n-1].start = pt
		p.contours[n-1].closed = false
		return
	}
	p.contours = append(p.contours, contour{start: pt})
}

// open returns the contour new segments go into. Drawing after a closepath
// starts a new contour at the closed contour's start point.
func (p *Path) open() *contour {
	p.flat = nil
	if len(p.contours) == 0 {
		p.contours = append(p.contours, contour{})
	}
	c := &p.contours[len(p.contours)-1]
	if c.closed {
		p.contours = append(p.contours, contour{start: c.start})
		c = &p.contours[len(p.contours)-1]
	}
	return c
}

func (p *Path) lineTo(pt models.Point) {
	from := p.current()
	c := p.open()
	c.segs = append(c.segs, segment{p0: from, p3: pt})
}

func (p *Path) cubicTo(c1, c2, end models.Point) {
	from := p.current()
	c := p.open()
	c.segs = append(c.segs, segment{cubic: true, p0: from, p1: c1, p2: c2, p3: end})
}

// quadTo stores a quadratic as the equivalent cubic.
func (p *Path) quadTo(ctrl, end models.Point) {
	from := p.current()
	c1 := models.Point{X: from.X + 2.0/3.0*(ctrl.X-from.X), Y: from.Y + 2.0/3.0*(ctrl.Y-from.Y)}
	c2 := models.Point{X: end.X + 2.0/3.0*(ctrl.X-end.X), Y: end.Y + 2.0/3.0*(ctrl.Y-end.Y)}
	p.cubicTo(c1, c2, end)
}

func (p *Path) close() {
	if len(p.contours) == 0 {
		return
	}
	c := &p.contours[len(p.contours)-1]
	if c.closed || len(c.segs) == 0 {
		return
	}
	if end := c.segs[len(c.segs)-1].p3; end != c.start {
		c.segs = append(c.segs, segment{p0: end, p3: c.start})
	}
	c.closed = true
	p.flat = nil
}

// Contours returns the number of drawable contours.
func (p *Path) Contours() int {
	return len(p.polylines())
}

// polylines flattens every drawable contour. The result is cached until the
// path is modified.
func (p *Path) polylines() [][]models.Point {
	if p.flat != nil {
		return p.flat
	}
	out := make([][]models.Point, 0, len(p.contours))
	for _, c := range p.contours {
		if len(c.segs) == 0 {
			continue
		}
		line := []models.Point{c.start}
		for _, s := range c.segs {
			if s.cubic {
				line = flattenCubic(line, s.p0, s.p1, s.p2, s.p3, 0)
			} else {
				line = append(line, s.p3)
			}
		}
		out = append(out, line)
	}
	p.flat = out
	return out
}

// Polylines returns a copy of the flattened contours.
func (p *Path) Polylines() [][]models.Point {
	flat := p.polylines()
	out := make([][]models.Point, len(flat))
	for i, line := range flat {
		out[i] = append([]models.Point(nil), line...)
	}
	return out
}

// Length is the total arc length of all contours.
func (p *Path) Length() float64 {
	total := 0.0
	for _, line := range p.polylines() {
		total += polylineLength(line)
	}
	return total
}

// Sample walks the whole path and emits a point every step units of arc
// length, starting at distance 0 and stopping before Length. Jumps between
// contours do not count towards the distance.
func (p *Path) Sample(step float64) []models.Point {
	var out []models.Point
	for _, c := range p.SampleContours(step) {
		out = append(out, c...)
	}
	return out
}

// SampleContours is Sample with the points grouped by the contour they fall
// on. Contours that receive no sample are omitted.
func (p *Path) SampleContours(step float64) [][]models.Point {
	if step <= 0 || math.IsNaN(step) {
		return nil
	}
	total := p.Length()

	var out [][]models.Point
	k := 0
	offset := 0.0 // arc length before the current segment
	for _, line := range p.polylines() {
		var samples []models.Point
		for i := 1; i < len(line); i++ {
			a, b := line[i-1], line[i]
			segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
			for {
				d := float64(k) * step
				if d >= total || d > offset+segLen {
					break
				}
				t := 0.0
				if segLen > 0 {
					t = (d - offset) / segLen
				}
				samples = append(samples, models.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)})
				k++
			}
			offset += segLen
		}
		if len(samples) > 0 {
			out = append(out, samples)
		}
	}
	return out
}

// Bounds is the bounding box of the flattened path.
func (p *Path) Bounds() orb.Bound {
	var b orb.Bound
	first := true
	for _, line := range p.polylines() {
		for _, pt := range line {
			op := orb.Point{pt.X, pt.Y}
			if first {
				b = orb.Bound{Min: op, Max: op}
				first = false
				continue
			}
			b = b.Extend(op)
		}
	}
	return b
}

func polylineLength(line []models.Point) float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += math.Hypot(line[i].X-line[i-1].X, line[i].Y-line[i-1].Y)
	}
	return total
}

// flattenCubic appends the end points of a polyline approximating the curve
// to dst. The start point is assumed to be in dst already.
func flattenCubic(dst []models.Point, p0, p1, p2, p3 models.Point, depth int) []models.Point {
	if depth >= maxSubdivision || isFlat(p0, p1, p2, p3) {
		return append(dst, p3)
	}
	// de Casteljau split at t=0.5
	mid := func(a, b models.Point) models.Point { return models.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2} }
	p01, p12, p23 := mid(p0, p1), mid(p1, p2), mid(p2, p3)
	p012, p123 := mid(p01, p12), mid(p12, p23)
	m := mid(p012, p123)
	dst = flattenCubic(dst, p0, p01, p012, m, depth+1)
	return flattenCubic(dst, m, p123, p23, p3, depth+1)
}

// isFlat bounds the distance between the curve and its chord by comparing
// the control points with the chord's trisection points.
func isFlat(p0, p1, p2, p3 models.Point) bool {
	ux := 3*p1.X - 2*p0.X - p3.X
	uy := 3*p1.Y - 2*p0.Y - p3.Y
	vx := 3*p2.X - 2*p3.X - p0.X
	vy := 3*p2.Y - 2*p3.Y - p0.Y
	return math.Max(ux*ux, vx*vx)+math.Max(uy*uy, vy*vy) <= 16*Flatness*Flatness
}
