package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDrawingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"strokes":[[{"x":1,"y":2},{"x":3,"y":4}],[]]}`), 0644))

	f, err := readDrawingFile(path)
	require.NoError(t, err)
	assert.Equal(t, defaultCanvasWidth, f.Width)
	assert.Equal(t, defaultCanvasHeight, f.Height)
	d := f.Drawing()
	require.Len(t, d, 1)
	assert.Equal(t, []models.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, d[0].Points)
}

func TestReadDrawingFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := readDrawingFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"strokes": 5}`), 0644))
	_, err = readDrawingFile(bad)
	assert.ErrorContains(t, err, "invalid drawing file")
}
