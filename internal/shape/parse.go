package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/tdewolff/parse/v2/strconv"
)

var (
	ErrEmptyPath = errors.New("empty path data")
	ErrBadPath   = errors.New("bad path data")
)

var argCount = map[byte]int{
	'M': 2,
	'Z': 0,
	'L': 2,
	'H': 1,
	'V': 1,
	'C': 6,
	'S': 4,
	'Q': 4,
	'T': 2,
	'A': 7,
}

func skipCommaWhitespace(b []byte) int {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == ',' || b[i] == '\n' || b[i] == '\r' || b[i] == '\t') {
		i++
	}
	return i
}

func isCommand(c byte) bool {
	if c == 'e' || c == 'E' {
		return false
	}
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Parse reads a path in the SVG path-data mini-language, which is also the
// format of Android vector drawable pathData attributes.
func Parse(data string) (*Path, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrEmptyPath
	}

	b := []byte(data)
	i := skipCommaWhitespace(b)
	if i >= len(b) {
		return nil, ErrEmptyPath
	}
	if !isCommand(b[i]) {
		return nil, fmt.Errorf("%w: path should start with a command at position %d", ErrBadPath, i+1)
	}

	p := &Path{}
	var f [7]float64
	var lastCubic, lastQuad models.Point
	prevCmd := byte(0)
	for {
		i += skipCommaWhitespace(b[i:])
		if len(b) <= i {
			break
		}

		cmd := prevCmd
		if isCommand(b[i]) {
			cmd = b[i]
			i++
			i += skipCommaWhitespace(b[i:])
		} else if cmd == 0 || cmd == 'z' || cmd == 'Z' {
			return nil, fmt.Errorf("%w: unexpected '%c' at position %d", ErrBadPath, b[i], i+1)
		}

		CMD := cmd
		if 'a' <= cmd && cmd <= 'z' {
			CMD -= 'a' - 'A'
		}
		n, ok := argCount[CMD]
		if !ok {
			return nil, fmt.Errorf("%w: unknown command '%c' at position %d", ErrBadPath, cmd, i)
		}
		for j := 0; j < n; j++ {
			if CMD == 'A' && (j == 3 || j == 4) {
				if i < len(b) && (b[i] == '0' || b[i] == '1') {
					f[j] = float64(b[i] - '0')
					i++
				} else {
					return nil, fmt.Errorf("%w: arc flags should be 0 or 1 in command '%c' at position %d", ErrBadPath, cmd, i+1)
				}
			} else {
				num, k := strconv.ParseFloat(b[i:])
				if k == 0 {
					return nil, fmt.Errorf("%w: %d numbers should follow command '%c' at position %d", ErrBadPath, n, cmd, i+1)
				}
				f[j] = num
				i += k
			}
			i += skipCommaWhitespace(b[i:])
		}

		rel := cmd != CMD
		cur := p.current()
		at := func(x, y float64) models.Point {
			if rel {
				return models.Point{X: cur.X + x, Y: cur.Y + y}
			}
			return models.Point{X: x, Y: y}
		}

		switch CMD {
		case 'M':
			p.moveTo(at(f[0], f[1]))
		case 'Z':
			p.close()
		case 'L':
			p.lineTo(at(f[0], f[1]))
		case 'H':
			x := f[0]
			if rel {
				x += cur.X
			}
			p.lineTo(models.Point{X: x, Y: cur.Y})
		case 'V':
			y := f[0]
			if rel {
				y += cur.Y
			}
			p.lineTo(models.Point{X: cur.X, Y: y})
		case 'C':
			c1, c2, end := at(f[0], f[1]), at(f[2], f[3]), at(f[4], f[5])
			p.cubicTo(c1, c2, end)
			lastCubic = c2
		case 'S':
			c1 := cur
			if prevCmd == 'C' || prevCmd == 'c' || prevCmd == 'S' || prevCmd == 's' {
				c1 = reflect(lastCubic, cur)
			}
			c2, end := at(f[0], f[1]), at(f[2], f[3])
			p.cubicTo(c1, c2, end)
			lastCubic = c2
		case 'Q':
			c, end := at(f[0], f[1]), at(f[2], f[3])
			p.quadTo(c, end)
			lastQuad = c
		case 'T':
			c := cur
			if prevCmd == 'Q' || prevCmd == 'q' || prevCmd == 'T' || prevCmd == 't' {
				c = reflect(lastQuad, cur)
			}
			p.quadTo(c, at(f[0], f[1]))
			lastQuad = c
		case 'A':
			p.arcTo(f[0], f[1], f[2], f[3] == 1, f[4] == 1, at(f[5], f[6]))
		}

		// extra coordinate pairs after a moveto are implicit linetos
		switch cmd {
		case 'M':
			cmd = 'L'
		case 'm':
			cmd = 'l'
		}
		prevCmd = cmd
	}

	if p.empty() {
		return nil, fmt.Errorf("%w: no drawable segments", ErrBadPath)
	}
	return p, nil
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(data string) *Path {
	p, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return p
}

func reflect(ctrl, about models.Point) models.Point {
	return models.Point{X: 2*about.X - ctrl.X, Y: 2*about.Y - ctrl.Y}
}

// arcTo appends an elliptical arc as a series of cubic segments, each
// spanning at most a quarter turn.
func (p *Path) arcTo(rx, ry, xRot float64, largeArc, sweep bool, end models.Point) {
	start := p.current()
	if start == end {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.lineTo(end)
		return
	}

	phi := xRot * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx := (start.X - end.X) / 2
	dy := (start.Y - end.Y) / 2
	x1p := cosPhi*dx + sinPhi*dy
	y1p := -sinPhi*dx + cosPhi*dy

	if lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	num := math.Max(0, rx*rx*ry*ry-den)
	sq := math.Sqrt(num / den)
	if largeArc == sweep {
		sq = -sq
	}
	cxp := sq * rx * y1p / ry
	cyp := -sq * ry * x1p / rx
	cx := cosPhi*cxp - sinPhi*cyp + (start.X+end.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (start.Y+end.Y)/2

	theta1 := vectorAngle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	dTheta := vectorAngle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && dTheta > 0 {
		dTheta -= 2 * math.Pi
	} else if sweep && dTheta < 0 {
		dTheta += 2 * math.Pi
	}

	point := func(a float64) models.Point {
		return models.Point{
			X: cx + rx*math.Cos(a)*cosPhi - ry*math.Sin(a)*sinPhi,
			Y: cy + rx*math.Cos(a)*sinPhi + ry*math.Sin(a)*cosPhi,
		}
	}
	deriv := func(a float64) models.Point {
		return models.Point{
			X: -rx*math.Sin(a)*cosPhi - ry*math.Cos(a)*sinPhi,
			Y: -rx*math.Sin(a)*sinPhi + ry*math.Cos(a)*cosPhi,
		}
	}

	segments := int(math.Ceil(math.Abs(dTheta) / (math.Pi / 2)))
	if segments < 1 {
		segments = 1
	}
	delta := dTheta / float64(segments)
	k := 4.0 / 3.0 * math.Tan(delta/4)
	a := theta1
	for s := 0; s < segments; s++ {
		p0, p3 := point(a), point(a+delta)
		d0, d3 := deriv(a), deriv(a+delta)
		if s == segments-1 {
			p3 = end
		}
		c1 := models.Point{X: p0.X + k*d0.X, Y: p0.Y + k*d0.Y}
		c2 := models.Point{X: p3.X - k*d3.X, Y: p3.Y - k*d3.Y}
		p.cubicTo(c1, c2, p3)
		a += delta
	}
}

func vectorAngle(ux, uy, vx, vy float64) float64 {
	lenU := math.Hypot(ux, uy)
	lenV := math.Hypot(vx, vy)
	if lenU == 0 || lenV == 0 {
		return 0
	}
	cos := math.Max(-1, math.Min(1, (ux*vx+uy*vy)/(lenU*lenV)))
	angle := math.Acos(cos)
	if ux*vy-uy*vx < 0 {
		angle = -angle
	}
	return angle
}
