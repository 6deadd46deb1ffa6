// Package raster renders strokes to bitmaps and compares the results pixel by
// pixel.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var ErrInvalidSize = errors.New("raster size must be positive")

// Pixels with coverage above this alpha are kept opaque, everything else is
// cleared, so no partially covered pixels remain.
const binarizeAlpha = 127

type Options struct {
	Width, Height int
	StrokeWidth   float64
	// Inset is extra room added around the strokes' bounding box before
	// scaling, on top of half the stroke width.
	Inset float64
}

// Rasterize draws strokes onto a transparent Width×Height image. The strokes'
// bounding box, grown by Inset plus half the stroke width, is moved to the
// origin and scaled uniformly to fit. The stroke width itself is not scaled.
// Besides the image it returns the total length of the strokes after
// scaling.
func Rasterize(strokes [][]models.Point, opts Options) (*image.NRGBA, float64, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, 0, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}
	out := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))

	var lines orb.MultiLineString
	for _, s := range strokes {
		if len(s) == 0 {
			continue
		}
		ls := make(orb.LineString, len(s))
		for i, p := range s {
			ls[i] = orb.Point{p.X, p.Y}
		}
		lines = append(lines, ls)
	}
	if len(lines) == 0 {
		return out, 0, nil
	}

	bound := lines.Bound().Pad(opts.Inset + opts.StrokeWidth/2)
	bw, bh := bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]
	scale := 1.0
	if bw > 0 && bh > 0 {
		scale = math.Min(float64(opts.Width)/bw, float64(opts.Height)/bh)
	}

	length := 0.0
	for _, ls := range lines {
		for i, p := range ls {
			ls[i] = orb.Point{(p[0] - bound.Min[0]) * scale, (p[1] - bound.Min[1]) * scale}
		}
		length += planar.Length(ls)
	}

	img := image.NewRGBA(out.Bounds())
	scanner := rasterx.NewScannerGV(opts.Width, opts.Height, img, img.Bounds())
	scanner.SetWinding(true)
	dasher := rasterx.NewDasher(opts.Width, opts.Height, scanner)
	dasher.SetStroke(fixed.Int26_6(opts.StrokeWidth*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)
	dasher.SetColor(color.Black)
	filler := rasterx.NewFiller(opts.Width, opts.Height, scanner)
	filler.SetColor(color.Black)

	for _, ls := range lines {
		pts := dedupe(ls)
		if len(pts) == 1 {
			// a tap leaves a round dot the size of the pen
			rasterx.AddCircle(ls[0][0], ls[0][1], opts.StrokeWidth/2, filler)
			filler.Draw()
			filler.Clear()
			continue
		}
		dasher.Start(pts[0])
		for _, p := range pts[1:] {
			dasher.Line(p)
		}
		dasher.Stop(false)
		dasher.Draw()
		dasher.Clear()
	}

	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] > binarizeAlpha {
			out.Pix[i+3] = 0xff
		}
	}
	return out, length, nil
}

// dedupe converts to fixed point and drops consecutive duplicates, which the
// stroker cannot orient.
func dedupe(ls orb.LineString) []fixed.Point26_6 {
	pts := make([]fixed.Point26_6, 0, len(ls))
	for _, p := range ls {
		fp := rasterx.ToFixedP(p[0], p[1])
		if len(pts) > 0 && pts[len(pts)-1] == fp {
			continue
		}
		pts = append(pts, fp)
	}
	return pts
}

// Visible reports whether the pixel at (x, y) has alpha above threshold.
func Visible(img *image.NRGBA, x, y int, threshold int) bool {
	return int(img.Pix[img.PixOffset(x, y)+3]) > threshold
}
