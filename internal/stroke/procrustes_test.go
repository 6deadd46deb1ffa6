package stroke

import (
	"math"
	"testing"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize(zigzag())
	twice := Normalize(once)
	require.Len(t, twice, len(once))
	for i := range once {
		assert.InDelta(t, once[i].X, twice[i].X, 1e-9)
		assert.InDelta(t, once[i].Y, twice[i].Y, 1e-9)
	}
	assert.InDelta(t, 1.0, ScaleFactor(once), 1e-9)
	c := Centroid(once)
	assert.InDelta(t, 0, c.X, 1e-9)
	assert.InDelta(t, 0, c.Y, 1e-9)
}

func TestNormalizeDegenerate(t *testing.T) {
	out := Normalize([]models.Point{pt(5, 5), pt(5, 5), pt(5, 5)})
	for _, p := range out {
		assert.Equal(t, models.Point{}, p)
		assert.False(t, math.IsNaN(p.X))
	}
	assert.Zero(t, ScaleFactor([]models.Point{pt(5, 5)}))
}

func TestProcrustesSelfDistanceZero(t *testing.T) {
	for _, p := range [][]models.Point{zigzag(), {pt(1, 1)}, {pt(0, 0), pt(1, 0)}} {
		assert.InDelta(t, 0, ProcrustesDistance(p, p), 1e-9)
	}
}

func TestProcrustesSymmetric(t *testing.T) {
	a := zigzag()
	b := []models.Point{pt(1, 1), pt(8, 2), pt(15, 15), pt(20, 5), pt(33, 22), pt(25, 30), pt(44, 38)}
	assert.InDelta(t, ProcrustesDistance(a, b), ProcrustesDistance(b, a), 1e-9)
	assert.Greater(t, ProcrustesDistance(a, b), 0.01)
}

func TestProcrustesSimilarityInvariant(t *testing.T) {
	a := zigzag()
	b := []models.Point{pt(1, 1), pt(8, 2), pt(15, 15), pt(20, 5), pt(33, 22), pt(25, 30), pt(44, 38)}
	base := ProcrustesDistance(a, b)

	cases := []struct {
		name                  string
		angle, scale, tx, ty float64
	}{
		{"translate", 0, 1, 120, -45},
		{"scale up", 0, 3.5, 0, 0},
		{"scale down", 0, 0.01, 0, 0},
		{"rotate", 2.1, 1, 0, 0},
		{"all", -0.7, 7, 13, 99},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			moved := transform(b, tc.angle, tc.scale, tc.tx, tc.ty)
			assert.InDelta(t, base, ProcrustesDistance(a, moved), 1e-9)
			assert.InDelta(t, base, ProcrustesDistance(transform(a, tc.angle, tc.scale, tc.tx, tc.ty), b), 1e-9)
			assert.InDelta(t, 0, ProcrustesDistance(b, moved), 1e-9)
		})
	}
}

func TestProcrustesRejectsReflection(t *testing.T) {
	a := zigzag()
	mirrored := make([]models.Point, len(a))
	for i, p := range a {
		mirrored[i] = pt(-p.X, p.Y)
	}
	assert.Greater(t, ProcrustesDistance(a, mirrored), 0.05)
}

func TestProcrustesDegenerateInputs(t *testing.T) {
	assert.True(t, math.IsInf(ProcrustesDistance(nil, zigzag()), 1))
	assert.True(t, math.IsInf(ProcrustesDistance(zigzag(), nil), 1))
	assert.True(t, math.IsInf(ProcrustesDistance(zigzag(), zigzag()[:3]), 1))
}

func TestOptimalRotationAngle(t *testing.T) {
	ref := Normalize(zigzag())
	target := Rotate(ref, 0.8)
	assert.InDelta(t, -0.8, OptimalRotationAngle(ref, target), 1e-9)
}

func TestAccuracyFromDistance(t *testing.T) {
	for _, dMax := range []float64{0.5, 1, 6} {
		assert.Equal(t, 100.0, AccuracyFromDistance(0, dMax))
		assert.InDelta(t, 0.0, AccuracyFromDistance(dMax, dMax), 1e-12)
		assert.Equal(t, 0.0, AccuracyFromDistance(dMax*3, dMax))

		prev := math.Inf(1)
		for d := 0.0; d <= dMax*1.5; d += dMax / 20 {
			got := AccuracyFromDistance(d, dMax)
			assert.LessOrEqual(t, got, prev)
			assert.GreaterOrEqual(t, got, 0.0)
			prev = got
		}
	}
	assert.Equal(t, 50.0, AccuracyFromDistance(0.5, 1))
	assert.Zero(t, AccuracyFromDistance(math.Inf(1), 1))
	assert.Zero(t, AccuracyFromDistance(0.1, 0))
}

// A horizontal segment compared against a translated, rotated copy.
func TestSegmentTranslatedAndRotated(t *testing.T) {
	ref := Resample([]models.Point{pt(0, 0), pt(100, 0)}, 500)
	user := transform(ref, math.Pi/2, 1, 50, 50)

	d := ProcrustesDistance(ref, user)
	assert.InDelta(t, 0, d, 1e-9)
	assert.InDelta(t, 100, AccuracyFromDistance(d, 1), 1e-6)
}

func TestRecognise(t *testing.T) {
	square := []models.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10), pt(0, 0)}
	zig := zigzag()
	templates := map[string][]models.Point{"square": square, "zigzag": zig, "empty": nil}

	drawn := transform(square, 0.3, 4, 10, 10)
	name, d := Recognise(drawn, templates, 64)
	assert.Equal(t, "square", name)
	assert.Less(t, d, 1e-6)

	name, d = Recognise(nil, templates, 64)
	assert.Empty(t, name)
	assert.True(t, math.IsInf(d, 1))
}
