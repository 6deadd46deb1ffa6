package stroke

import (
	"math"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
)

// Below this RMS radius a point set is treated as a single point and is not
// rescaled.
const degenerateScale = 1e-9

// ScaleFactor is the root-mean-square distance of the points from their
// centroid.
func ScaleFactor(points []models.Point) float64 {
	if len(points) == 0 {
		return 0
	}
	c := Centroid(points)
	sum := 0.0
	for _, p := range points {
		dx, dy := p.X-c.X, p.Y-c.Y
		sum += dx*dx + dy*dy
	}
	return math.Sqrt(sum / float64(len(points)))
}

// Normalize moves the centroid to the origin and scales to unit RMS radius.
func Normalize(points []models.Point) []models.Point {
	c := Centroid(points)
	s := ScaleFactor(points)
	out := make([]models.Point, len(points))
	for i, p := range points {
		out[i] = models.Point{X: p.X - c.X, Y: p.Y - c.Y}
		if s >= degenerateScale {
			out[i].X /= s
			out[i].Y /= s
		}
	}
	return out
}

// OptimalRotationAngle returns the angle that, applied to target with
// Rotate, best aligns it onto ref in the least-squares sense. Both sets must
// be normalized and of equal length; points are paired by index.
func OptimalRotationAngle(ref, target []models.Point) float64 {
	var num, den float64
	for i := range ref {
		r, t := ref[i], target[i]
		num += t.X*r.Y - t.Y*r.X
		den += t.X*r.X + t.Y*r.Y
	}
	return math.Atan2(num, den)
}

// ProcrustesDistance is the RMS distance between a and b after removing
// translation, uniform scale and rotation. Reflections are not considered.
// Empty or differently sized inputs are infinitely far apart.
func ProcrustesDistance(a, b []models.Point) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return math.Inf(1)
	}

	normA := Normalize(a)
	normB := Normalize(b)
	rotB := Rotate(normB, OptimalRotationAngle(normA, normB))

	sum := 0.0
	for i := range normA {
		dx := normA[i].X - rotB[i].X
		dy := normA[i].Y - rotB[i].Y
		sum += dx*dx + dy*dy
	}
	return math.Sqrt(sum / float64(len(normA)))
}

// AccuracyFromDistance maps a distance onto a 0-100 score: 0 scores 100,
// dMax or more scores 0.
func AccuracyFromDistance(distance, dMax float64) float64 {
	if dMax <= 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, (1-distance/dMax)*100))
}
