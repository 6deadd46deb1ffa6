// Package export writes comparison reports.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/score"
	"github.com/jung-kurt/gofpdf"
)

// Report is everything a PDF report shows.
type Report struct {
	Shape     string
	Result    score.Result
	Reference models.Drawing
	User      models.Drawing
	// Overlay is embedded when set.
	Overlay image.Image
}

const (
	pageMargin = 15.0
	panelSize  = 85.0
)

// WritePDF renders r as a single A4 page at path.
func WritePDF(path string, r Report) error {
	p, err := build(r)
	if err != nil {
		return err
	}
	return p.OutputFileAndClose(path)
}

func build(r Report) (*gofpdf.Fpdf, error) {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle("Sketchmatch report", true)
	p.AddPage()

	p.SetFont("Helvetica", "B", 18)
	title := "Drawing comparison"
	if r.Shape != "" {
		title += ": " + r.Shape
	}
	p.CellFormat(0, 10, title, "", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Strategy: %s", r.Result.Strategy),
		fmt.Sprintf("Score: %d%%", r.Result.Percent()),
		fmt.Sprintf("Coverage: %.3f", r.Result.Coverage),
		fmt.Sprintf("Length ratio: %.3f (user %.1f / reference %.1f)",
			r.Result.Ratio, r.Result.UserLength, r.Result.ReferenceLength),
	}
	if r.Result.Strategy == score.StrategyProcrustes {
		lines = append(lines, fmt.Sprintf("Procrustes distance: %.4f", r.Result.Distance))
	}
	for _, l := range lines {
		p.CellFormat(0, 6, l, "", 1, "L", false, 0, "")
	}

	top := p.GetY() + 6
	drawPanel(p, "Reference", r.Reference, pageMargin, top)
	drawPanel(p, "Your drawing", r.User, pageMargin+panelSize+10, top)

	if r.Overlay != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, r.Overlay); err != nil {
			return nil, fmt.Errorf("encode overlay: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		p.RegisterImageOptionsReader("overlay", opts, &buf)
		y := top + panelSize + 14
		p.SetXY(pageMargin, y-6)
		p.CellFormat(0, 6, "Overlay", "", 1, "L", false, 0, "")
		b := r.Overlay.Bounds()
		w, h := fitBox(float64(b.Dx()), float64(b.Dy()), 2*panelSize+10, panelSize)
		p.ImageOptions("overlay", pageMargin, y, w, h, false, opts, 0, "")
	}

	return p, p.Error()
}

// drawPanel strokes d scaled into a square box with its top left at x, y.
func drawPanel(p *gofpdf.Fpdf, label string, d models.Drawing, x, y float64) {
	p.SetXY(x, y-6)
	p.CellFormat(panelSize, 6, label, "", 0, "L", false, 0, "")
	p.SetDrawColor(200, 200, 200)
	p.SetLineWidth(0.2)
	p.Rect(x, y, panelSize, panelSize, "D")

	minX, minY, maxX, maxY, ok := extent(d)
	if !ok {
		return
	}
	scale := 1.0
	if w, h := maxX-minX, maxY-minY; w > 0 || h > 0 {
		sw, sh := fitBox(w, h, panelSize-8, panelSize-8)
		if w > 0 {
			scale = sw / w
		} else {
			scale = sh / h
		}
	}
	ox := x + (panelSize-(maxX-minX)*scale)/2
	oy := y + (panelSize-(maxY-minY)*scale)/2

	p.SetLineWidth(0.5)
	p.SetLineCapStyle("round")
	for _, st := range d {
		c := st.Color.RGBA()
		p.SetDrawColor(int(c.R), int(c.G), int(c.B))
		for i := 1; i < len(st.Points); i++ {
			p.Line(
				ox+(st.Points[i-1].X-minX)*scale, oy+(st.Points[i-1].Y-minY)*scale,
				ox+(st.Points[i].X-minX)*scale, oy+(st.Points[i].Y-minY)*scale,
			)
		}
	}
}

func extent(d models.Drawing) (minX, minY, maxX, maxY float64, ok bool) {
	for _, st := range d {
		for _, pt := range st.Points {
			if !ok {
				minX, minY, maxX, maxY, ok = pt.X, pt.Y, pt.X, pt.Y, true
				continue
			}
			minX, maxX = min(minX, pt.X), max(maxX, pt.X)
			minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
		}
	}
	return
}

// fitBox scales w x h to fit inside bw x bh keeping the aspect ratio.
func fitBox(w, h, bw, bh float64) (float64, float64) {
	if w <= 0 && h <= 0 {
		return 0, 0
	}
	s := bw / w
	if h > 0 && (w <= 0 || bh/h < s) {
		s = bh / h
	}
	return w * s, h * s
}
