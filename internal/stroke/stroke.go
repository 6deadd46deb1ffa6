// Package stroke holds the point-set geometry used to compare drawings:
// arc-length resampling, similarity normalization and Procrustes distance.
package stroke

import (
	"math"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
)

// Resample returns n points spaced at equal arc length along the polyline.
// Inputs with at most one point, or n <= 1, are returned unchanged.
func Resample(points []models.Point, n int) []models.Point {
	if len(points) <= 1 || n <= 1 {
		return points
	}

	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cum[i] = cum[i-1] + distance(points[i-1], points[i])
	}
	total := cum[len(cum)-1]

	newPoints := make([]models.Point, 0, n)
	newPoints = append(newPoints, points[0])
	if total == 0 {
		for len(newPoints) < n {
			newPoints = append(newPoints, points[0])
		}
		return newPoints
	}

	I := total / float64(n-1)
	seg := 1
	for len(newPoints) < n {
		D := I * float64(len(newPoints))
		for seg < len(points) && cum[seg] < D {
			seg++
		}
		if seg == len(points) {
			// accumulated spacing overshot the total length
			break
		}
		a, b := points[seg-1], points[seg]
		t := (D - cum[seg-1]) / (cum[seg] - cum[seg-1])
		newPoints = append(newPoints, models.Point{
			X: a.X + t*(b.X-a.X),
			Y: a.Y + t*(b.Y-a.Y),
		})
	}
	for len(newPoints) < n {
		newPoints = append(newPoints, points[len(points)-1])
	}
	return newPoints
}

// PathLength is the Euclidean length of the polyline.
func PathLength(points []models.Point) float64 {
	d := 0.0
	for i := 1; i < len(points); i++ {
		d += distance(points[i-1], points[i])
	}
	return d
}

func distance(a, b models.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Centroid is the arithmetic mean of the points. Empty input yields the
// origin.
func Centroid(points []models.Point) models.Point {
	if len(points) == 0 {
		return models.Point{}
	}
	var x, y float64
	for _, p := range points {
		x += p.X
		y += p.Y
	}
	n := float64(len(points))
	return models.Point{X: x / n, Y: y / n}
}

// Rotate applies a rotation about the origin.
func Rotate(points []models.Point, angle float64) []models.Point {
	cos, sin := math.Cos(angle), math.Sin(angle)
	out := make([]models.Point, len(points))
	for i, p := range points {
		out[i] = models.Point{
			X: p.X*cos - p.Y*sin,
			Y: p.X*sin + p.Y*cos,
		}
	}
	return out
}
