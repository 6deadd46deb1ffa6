package assets

import (
	"math"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
)

// DefaultPadding is the fraction of the canvas left empty around a fitted
// shape.
const DefaultPadding = 0.1

// FitToCanvas scales the drawing uniformly so it fills the canvas less
// padding, and centres it. A drawing with zero width or height, or an empty
// canvas, is returned unchanged. The input is not modified.
func FitToCanvas(d models.Drawing, width, height, padding float64) models.Drawing {
	if len(d) == 0 || width <= 0 || height <= 0 {
		return d
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range d {
		for _, p := range s.Points {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	w, h := maxX-minX, maxY-minY
	if !(w > 0) || !(h > 0) {
		return d
	}

	scale := math.Min((width-width*padding)/w, (height-height*padding)/h)
	tx := width/2 - w*scale/2
	ty := height/2 - h*scale/2

	out := make(models.Drawing, len(d))
	for i, s := range d {
		pts := make([]models.Point, len(s.Points))
		for j, p := range s.Points {
			pts[j] = models.Point{X: (p.X-minX)*scale + tx, Y: (p.Y-minY)*scale + ty}
		}
		out[i] = models.Stroke{ID: s.ID, Color: s.Color, Points: pts}
	}
	return out
}
