package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"golang.org/x/image/draw"
)

// Highlight is the tint used for the user's ink in overlays.
var Highlight = color.NRGBA{R: 0xff, A: 0xff}

// Overlay copies reference and paints the user's ink over it in a single
// highlight colour. Only the user image's alpha is used.
func Overlay(reference, user *image.NRGBA, highlight color.Color) *image.NRGBA {
	b := reference.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, reference, b.Min, draw.Src)
	draw.DrawMask(out, b, image.NewUniform(highlight), image.Point{}, user, user.Bounds().Min, draw.Over)
	return out
}

// ArtifactWriter saves the images of a comparison for inspection. The zero
// value writes nothing.
type ArtifactWriter struct {
	Dir string
}

func (w ArtifactWriter) Enabled() bool {
	return w.Dir != ""
}

// Write stores reference.png, user.png and overlay.png in Dir and returns
// their paths.
func (w ArtifactWriter) Write(reference, user, overlay image.Image) ([]string, error) {
	if !w.Enabled() {
		return nil, nil
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	files := []struct {
		name string
		img  image.Image
	}{
		{"reference.png", reference},
		{"user.png", user},
		{"overlay.png", overlay},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(w.Dir, f.name)
		if err := writePNG(path, f.img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	logger.Get().Debug("wrote comparison artifacts", "dir", w.Dir)
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}
