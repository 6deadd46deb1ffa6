package score

import (
	"context"
	"math"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/stroke"
)

// ProcrustesStrategy compares the shapes of both drawings regardless of
// where, how large and at which angle they were drawn.
type ProcrustesStrategy struct {
	// TargetCount is the number of points both sides are resampled to when
	// their point counts differ.
	TargetCount int
	// DMax is the distance that scores 0.
	DMax float64
}

func (s *ProcrustesStrategy) Name() string {
	return StrategyProcrustes
}

func (s *ProcrustesStrategy) Score(ctx context.Context, in Input) (Result, error) {
	res := Result{
		Strategy:        s.Name(),
		UserLength:      drawingLength(in.User),
		ReferenceLength: drawingLength(in.Reference),
		Distance:        math.Inf(1),
	}
	if res.ReferenceLength > 0 {
		res.Ratio = res.UserLength / res.ReferenceLength
	}

	ref, user := in.Reference.Points(), in.User.Points()
	if len(ref) == 0 || len(user) == 0 {
		return res, nil
	}
	if len(ref) != len(user) {
		ref = stroke.Resample(ref, s.TargetCount)
		user = stroke.Resample(user, s.TargetCount)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Distance = stroke.ProcrustesDistance(ref, user)
	res.Score = stroke.AccuracyFromDistance(res.Distance, s.DMax)
	logger.Get().Debug("procrustes comparison", "points", len(ref), "distance", res.Distance, "score", res.Score)
	return res, nil
}

func drawingLength(d models.Drawing) float64 {
	total := 0.0
	for _, s := range d {
		total += stroke.PathLength(s.Points)
	}
	return total
}
