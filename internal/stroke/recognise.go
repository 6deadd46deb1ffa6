package stroke

import (
	"math"
	"sort"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
)

// Recognise finds the template closest to points. Both sides are resampled
// to n points first so sampling density does not matter. An empty candidate
// or template set yields ("", +Inf).
func Recognise(points []models.Point, templates map[string][]models.Point, n int) (bestMatch string, bestDistance float64) {
	bestDistance = math.Inf(1)
	if len(points) == 0 || len(templates) == 0 {
		return "", bestDistance
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	candidate := Resample(points, n)
	for _, name := range names {
		T := templates[name]
		if len(T) == 0 {
			continue
		}
		d := ProcrustesDistance(candidate, Resample(T, n))
		if d < bestDistance {
			bestDistance = d
			bestMatch = name
		}
	}
	return bestMatch, bestDistance
}
