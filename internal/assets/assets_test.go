package assets

import (
	"errors"
	"math"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const square = `<?xml version="1.0" encoding="utf-8"?>
<vector xmlns:android="http://schemas.android.com/apk/res/android"
    android:viewportWidth="20" android:viewportHeight="20">
    <path android:pathData="M0,0 L10,0 L10,10 L0,10 Z" />
</vector>`

func TestLoadBuiltin(t *testing.T) {
	table, err := LoadBuiltin()
	require.NoError(t, err)
	assert.Equal(t, []string{"butterfly", "fish", "house", "rocket"}, table.Names())

	for _, name := range table.Names() {
		d, ok := table.Get(name)
		require.True(t, ok)
		require.NotEmpty(t, d, name)
		for _, s := range d {
			assert.NotEmpty(t, s.Points, "%s/%s", name, s.ID)
			assert.Equal(t, models.Black, s.Color)
		}
	}

	again, err := LoadBuiltin()
	require.NoError(t, err)
	assert.Same(t, table, again)
}

func TestParseDrawableSamplesContours(t *testing.T) {
	d, err := ParseDrawable([]byte(square), 1)
	require.NoError(t, err)
	require.Len(t, d, 1)
	assert.Equal(t, "path_0", d[0].ID)
	assert.Len(t, d[0].Points, 40)
	assert.Equal(t, models.Point{}, d[0].Points[0])
	assert.Equal(t, models.Point{X: 10, Y: 5}, d[0].Points[15])
}

func TestParseDrawableSVG(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg"><g><path d="M0 0 h4 M10 10 h4"/></g></svg>`
	d, err := ParseDrawable([]byte(svg), 1)
	require.NoError(t, err)
	require.Len(t, d, 2)
	assert.Equal(t, "path_1", d[1].ID)
}

func TestParseDrawableMissingPathData(t *testing.T) {
	xml := `<vector xmlns:android="http://schemas.android.com/apk/res/android">
    <path android:strokeColor="#000" />
</vector>`
	_, err := ParseDrawable([]byte(xml), 1)
	assert.ErrorIs(t, err, ErrMissingPathData)
}

func TestParseDrawableBadPathData(t *testing.T) {
	xml := `<vector xmlns:android="http://schemas.android.com/apk/res/android">
    <path android:pathData="M0,0 L10,0" />
    <path android:pathData="," />
</vector>`
	_, err := ParseDrawable([]byte(xml), 1)
	assert.ErrorIs(t, err, shape.ErrEmptyPath)
	assert.ErrorContains(t, err, "line 3:")

	_, err = ParseDrawable([]byte(strings.Replace(xml, `","`, `"10 10"`, 1)), 1)
	assert.ErrorIs(t, err, shape.ErrBadPath)
	assert.ErrorContains(t, err, "line 3:")
}

func TestLoadFailsLoudly(t *testing.T) {
	fsys := fstest.MapFS{
		"square.xml": {Data: []byte(square)},
		"broken.xml": {Data: []byte(`<vector xmlns:android="http://schemas.android.com/apk/res/android"><path android:pathData="M0 0 Q"/></vector>`)},
	}
	table, err := Load(fsys, 1)
	assert.Nil(t, table)
	assert.True(t, errors.Is(err, shape.ErrBadPath), "%v", err)

	delete(fsys, "broken.xml")
	fsys["notes.txt"] = &fstest.MapFile{Data: []byte("ignored")}
	table, err = Load(fsys, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"square"}, table.Names())
}

func TestTableWith(t *testing.T) {
	base := NewTable(map[string]models.Drawing{"a": {{ID: "1"}}, "b": {{ID: "2"}}})
	merged := base.With(map[string]models.Drawing{"b": {{ID: "3"}}, "c": {{ID: "4"}}})

	assert.Equal(t, []string{"a", "b"}, base.Names())
	assert.Equal(t, []string{"a", "b", "c"}, merged.Names())
	b, _ := merged.Get("b")
	assert.Equal(t, "3", b[0].ID)
	old, _ := base.Get("b")
	assert.Equal(t, "2", old[0].ID)

	_, ok := merged.Get("missing")
	assert.False(t, ok)

	var empty *Table
	assert.Empty(t, empty.Names())
	assert.Equal(t, []string{"x"}, empty.With(map[string]models.Drawing{"x": nil}).Names())
	assert.Nil(t, empty.Drawings())

	all := merged.Drawings()
	assert.Len(t, all, 3)
	delete(all, "a")
	_, ok = merged.Get("a")
	assert.True(t, ok)
}

func TestTemplates(t *testing.T) {
	table := NewTable(map[string]models.Drawing{
		"two": {{Points: []models.Point{{X: 1}}}, {Points: []models.Point{{X: 2}, {X: 3}}}},
	})
	assert.Equal(t, []models.Point{{X: 1}, {X: 2}, {X: 3}}, table.Templates()["two"])
}

func TestFitToCanvas(t *testing.T) {
	d := models.Drawing{{ID: "s", Points: []models.Point{{X: 10, Y: 10}, {X: 30, Y: 20}}}}
	out := FitToCanvas(d, 200, 100, DefaultPadding)

	// height limits: (100-10)/10 = 9, width would allow (200-20)/20 = 9 too
	require.Len(t, out, 1)
	p0, p1 := out[0].Points[0], out[0].Points[1]
	assert.InDelta(t, 180, p1.X-p0.X, 1e-9)
	assert.InDelta(t, 90, p1.Y-p0.Y, 1e-9)
	assert.InDelta(t, 100, (p0.X+p1.X)/2, 1e-9)
	assert.InDelta(t, 50, (p0.Y+p1.Y)/2, 1e-9)
	assert.Equal(t, "s", out[0].ID)

	// aspect ratio is preserved
	assert.InDelta(t, 2, (p1.X-p0.X)/(p1.Y-p0.Y), 1e-9)
	// input untouched
	assert.Equal(t, models.Point{X: 10, Y: 10}, d[0].Points[0])
}

func TestFitToCanvasDegenerate(t *testing.T) {
	line := models.Drawing{{Points: []models.Point{{X: 0, Y: 5}, {X: 10, Y: 5}}}}
	assert.Equal(t, line, FitToCanvas(line, 100, 100, DefaultPadding))

	d := models.Drawing{{Points: []models.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}}}
	assert.Equal(t, d, FitToCanvas(d, 0, 100, DefaultPadding))
	assert.Nil(t, FitToCanvas(nil, 100, 100, DefaultPadding))

	tall := FitToCanvas(d, 100, 300, 0)
	assert.False(t, math.IsNaN(tall[0].Points[0].X))
	assert.InDelta(t, 100, tall[0].Points[1].X-tall[0].Points[0].X, 1e-9)
}
