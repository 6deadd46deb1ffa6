package score

import (
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/raster"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/stroke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) models.Point { return models.Point{X: x, Y: y} }

func drawing(strokes ...[]models.Point) models.Drawing {
	d := make(models.Drawing, len(strokes))
	for i, s := range strokes {
		d[i] = models.Stroke{ID: "s" + string(rune('0'+i)), Color: models.Black, Points: s}
	}
	return d
}

func TestLengthPenalized(t *testing.T) {
	// half the reference length with 90% coverage scores 40
	assert.Equal(t, 40, Result{Score: LengthPenalized(0.9, 0.5, 0.7) * 100}.Percent())

	assert.Equal(t, 0.9, LengthPenalized(0.9, 0.71, 0.7))
	assert.Equal(t, 0.9, LengthPenalized(0.9, 3, 0.7))
	assert.InDelta(t, 0.6, LengthPenalized(0.9, 0.7, 0.7), 1e-12)
	assert.Zero(t, LengthPenalized(0.2, 0.1, 0.7))
	assert.Zero(t, LengthPenalized(0, 0, 0.7))
}

func TestDisjointStrokesScoreZero(t *testing.T) {
	// both drawings share a bounding box so they map onto the same pixels
	a := drawing([]models.Point{pt(0, 0), pt(40, 0)}, []models.Point{pt(100, 100)})
	b := drawing([]models.Point{pt(60, 0), pt(100, 0)}, []models.Point{pt(0, 100)})

	opts := raster.Options{Width: 120, Height: 120, StrokeWidth: 4}
	imgA, lenA, err := raster.Rasterize(a.Polylines(), opts)
	require.NoError(t, err)
	imgB, _, err := raster.Rasterize(b.Polylines(), opts)
	require.NoError(t, err)
	c, err := raster.OverlapCoverage(context.Background(), imgA, imgB, raster.DefaultAlphaThreshold, raster.DenominatorUser)
	require.NoError(t, err)
	assert.Zero(t, c)
	assert.Greater(t, lenA, 0.0)

	s := &CoverageStrategy{UserStrokeWidth: 4, ReferenceStrokeWidth: 4, PenaltyThreshold: 0.7, AlphaThreshold: raster.DefaultAlphaThreshold}
	res, err := s.Score(context.Background(), Input{Reference: a, User: b, Width: 120, Height: 120})
	require.NoError(t, err)
	assert.Zero(t, res.Coverage)
	assert.Zero(t, res.Score)
	assert.Zero(t, res.Percent())
}

func TestCoverageIdenticalDrawings(t *testing.T) {
	d := drawing(
		[]models.Point{pt(10, 10), pt(200, 40), pt(120, 180)},
		[]models.Point{pt(30, 150), pt(60, 160)},
	)
	s, err := New(StrategyCoverage, DefaultSettings())
	require.NoError(t, err)
	res, err := s.Score(context.Background(), Input{Reference: d, User: d, Width: 400, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, StrategyCoverage, res.Strategy)
	assert.Equal(t, 1.0, res.Coverage)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, 100, res.Percent())

	// same user length on both sides, within the thin pen's inset
	assert.InDelta(t, 1, res.Ratio, 0.01)

	// the thin user pen covers only part of the thick reference
	s, err = New(StrategyCoverageReference, DefaultSettings())
	require.NoError(t, err)
	res, err = s.Score(context.Background(), Input{Reference: d, User: d, Width: 400, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, StrategyCoverageReference, res.Strategy)
	assert.Less(t, res.Coverage, 0.5)
	assert.Greater(t, res.Coverage, 0.0)
}

func TestCoverageShortDrawingIsPenalised(t *testing.T) {
	ref := drawing([]models.Point{pt(0, 0), pt(100, 0), pt(100, 100)})
	user := drawing([]models.Point{pt(0, 0), pt(100, 0)})
	s, err := New(StrategyCoverage, DefaultSettings())
	require.NoError(t, err)
	res, err := s.Score(context.Background(), Input{Reference: ref, User: user, Width: 300, Height: 300})
	require.NoError(t, err)
	assert.Less(t, res.Ratio, 0.7)
	assert.Equal(t, math.Round(LengthPenalized(res.Coverage, res.Ratio, 0.7)*100), res.Score)
	assert.Equal(t, math.Trunc(res.Score), res.Score)
	assert.Less(t, res.Score, res.Coverage*100)
}

func TestCoverageInvalidCanvas(t *testing.T) {
	s, err := New(StrategyCoverage, DefaultSettings())
	require.NoError(t, err)
	_, err = s.Score(context.Background(), Input{Width: 0, Height: 10})
	assert.ErrorIs(t, err, raster.ErrInvalidSize)
}

func TestCoverageWritesArtifacts(t *testing.T) {
	settings := DefaultSettings()
	settings.Artifacts = raster.ArtifactWriter{Dir: filepath.Join(t.TempDir(), "out")}
	s, err := New(StrategyCoverage, settings)
	require.NoError(t, err)

	d := drawing([]models.Point{pt(0, 0), pt(50, 50)})
	res, err := s.Score(context.Background(), Input{Reference: d, User: d, Width: 64, Height: 64})
	require.NoError(t, err)
	assert.Len(t, res.Artifacts, 3)
}

func TestProcrustesSegmentRotated(t *testing.T) {
	ref := stroke.Resample([]models.Point{pt(0, 0), pt(100, 0)}, 500)
	user := make([]models.Point, len(ref))
	for i, p := range ref {
		user[i] = pt(-p.Y+50, p.X+50)
	}

	s, err := New(StrategyProcrustes, DefaultSettings())
	require.NoError(t, err)
	res, err := s.Score(context.Background(), Input{Reference: drawing(ref), User: drawing(user)})
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Distance, 1e-9)
	assert.InDelta(t, 100, res.Score, 1e-6)
	assert.Equal(t, 100, res.Percent())
	assert.InDelta(t, 1, res.Ratio, 1e-9)
}

func TestProcrustesResamplesUnequalCounts(t *testing.T) {
	ref := drawing([]models.Point{pt(0, 0), pt(10, 0), pt(10, 10)})
	user := drawing([]models.Point{pt(0, 0), pt(5, 0), pt(20, 0), pt(20, 5), pt(20, 20)})

	s := &ProcrustesStrategy{TargetCount: 64, DMax: 1}
	res, err := s.Score(context.Background(), Input{Reference: ref, User: user})
	require.NoError(t, err)
	assert.Less(t, res.Distance, 1e-6)
	assert.Greater(t, res.Score, 99.0)
}

func TestProcrustesEmptySide(t *testing.T) {
	s := &ProcrustesStrategy{TargetCount: 500, DMax: 1}
	res, err := s.Score(context.Background(), Input{Reference: drawing([]models.Point{pt(0, 0), pt(1, 1)})})
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.True(t, math.IsInf(res.Distance, 1))

	b, err := json.Marshal(res)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.NotContains(t, decoded, "distance")
	assert.Equal(t, float64(0), decoded["percent"])
	assert.Equal(t, StrategyProcrustes, decoded["strategy"])
}

func TestProcrustesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &ProcrustesStrategy{TargetCount: 10, DMax: 1}
	d := drawing([]models.Point{pt(0, 0), pt(1, 1)})
	_, err := s.Score(ctx, Input{Reference: d, User: d})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{StrategyCoverage, StrategyCoverageReference, StrategyProcrustes}, Names())

	_, err := New("mystery", DefaultSettings())
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	settings := DefaultSettings()
	settings.DMax = 6
	s, err := New(StrategyProcrustes, settings)
	require.NoError(t, err)
	assert.Equal(t, 6.0, s.(*ProcrustesStrategy).DMax)
	assert.Equal(t, 500, s.(*ProcrustesStrategy).TargetCount)
}

func TestResultJSON(t *testing.T) {
	b, err := json.Marshal(Result{Strategy: StrategyProcrustes, Score: 72.6, Distance: 0.274})
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy":"procrustes","score":72.6,"percent":73,"distance":0.274}`, string(b))
}
