package score

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/raster"
	"golang.org/x/sync/errgroup"
)

// CoverageStrategy draws the user's strokes with a thin pen and the
// reference with a thick one, then measures how much ink overlaps. Drawing
// too little is penalised through the ratio of stroke lengths.
type CoverageStrategy struct {
	UserStrokeWidth      float64
	ReferenceStrokeWidth float64
	// Length ratios above this threshold are not penalised.
	PenaltyThreshold float64
	AlphaThreshold   int
	Denominator      raster.Denominator
	Artifacts        raster.ArtifactWriter
}

func (s *CoverageStrategy) Name() string {
	if s.Denominator == raster.DenominatorReference {
		return StrategyCoverageReference
	}
	return StrategyCoverage
}

// Rendering is a pair of rasterized drawings with their stroke lengths.
type Rendering struct {
	Reference, User             *image.NRGBA
	ReferenceLength, UserLength float64
}

// Render rasterizes both drawings of in at their pen widths.
func (s *CoverageStrategy) Render(in Input) (Rendering, error) {
	var r Rendering
	var g errgroup.Group
	g.Go(func() error {
		var err error
		r.User, r.UserLength, err = raster.Rasterize(in.User.Polylines(), raster.Options{
			Width:       in.Width,
			Height:      in.Height,
			StrokeWidth: s.UserStrokeWidth,
			// keeps the thin drawing registered with the thick one
			Inset: (s.ReferenceStrokeWidth - s.UserStrokeWidth) / 2,
		})
		return err
	})
	g.Go(func() error {
		var err error
		r.Reference, r.ReferenceLength, err = raster.Rasterize(in.Reference.Polylines(), raster.Options{
			Width:       in.Width,
			Height:      in.Height,
			StrokeWidth: s.ReferenceStrokeWidth,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return r, fmt.Errorf("failed to rasterize drawings: %w", err)
	}
	return r, nil
}

func (s *CoverageStrategy) Score(ctx context.Context, in Input) (Result, error) {
	res := Result{Strategy: s.Name()}

	r, err := s.Render(in)
	if err != nil {
		return res, err
	}
	refImg, userImg := r.Reference, r.User
	refLen, userLen := r.ReferenceLength, r.UserLength

	coverage, err := raster.OverlapCoverage(ctx, refImg, userImg, s.AlphaThreshold, s.Denominator)
	if err != nil {
		return res, err
	}

	ratio := 0.0
	if refLen > 0 {
		ratio = userLen / refLen
	}

	res.Coverage = coverage
	res.Ratio = ratio
	res.UserLength = userLen
	res.ReferenceLength = refLen
	// whole percentages, matching what the user is shown
	res.Score = math.Round(LengthPenalized(coverage, ratio, s.PenaltyThreshold) * 100)
	logger.Get().Debug("coverage comparison",
		"strategy", res.Strategy,
		"coverage", coverage,
		"user_length", userLen,
		"reference_length", refLen,
		"ratio", ratio)

	if s.Artifacts.Enabled() {
		paths, err := s.Artifacts.Write(refImg, userImg, raster.Overlay(refImg, userImg, raster.Highlight))
		if err != nil {
			// artifacts are for debugging only and never fail a comparison
			logger.Get().Warn("failed to write comparison artifacts", "err", err)
		}
		res.Artifacts = paths
	}
	return res, nil
}

// LengthPenalized returns coverage unchanged when ratio exceeds threshold.
// Otherwise the length shortfall 1-ratio is subtracted, never going below 0.
func LengthPenalized(coverage, ratio, threshold float64) float64 {
	if ratio > threshold {
		return coverage
	}
	return math.Max(0, coverage-(1-ratio))
}
