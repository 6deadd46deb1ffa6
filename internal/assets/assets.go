// Package assets loads the reference shapes a user can trace.
package assets

import (
	"bytes"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/shape"
)

const androidNS = "http://schemas.android.com/apk/res/android"

// DefaultStep is the arc-length spacing used when sampling built-in shapes.
const DefaultStep = 1.0

var ErrMissingPathData = errors.New("<path> has no path data")

//go:embed drawables/*.xml
var drawables embed.FS

var builtin = sync.OnceValues(func() (*Table, error) {
	sub, err := fs.Sub(drawables, "drawables")
	if err != nil {
		return nil, err
	}
	return Load(sub, DefaultStep)
})

// LoadBuiltin returns the shapes shipped with the binary. The table is built
// on first use and shared afterwards.
func LoadBuiltin() (*Table, error) {
	return builtin()
}

// Load parses every .xml (Android vector drawable) and .svg file at the root
// of fsys. The file name without extension becomes the shape name. Any
// unreadable file fails the whole load.
func Load(fsys fs.FS, step float64) (*Table, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list shapes: %w", err)
	}

	shapes := make(map[string]models.Drawing)
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || (ext != ".xml" && ext != ".svg") {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read shape %s: %w", e.Name(), err)
		}
		drawing, err := ParseDrawable(data, step)
		if err != nil {
			return nil, fmt.Errorf("failed to load shape %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ext)
		shapes[name] = drawing
		logger.Get().Debug("loaded shape", "name", name, "strokes", len(drawing))
	}
	return NewTable(shapes), nil
}

// ParseDrawable extracts the strokes of a vector drawable. Every <path>
// element must carry path data. Each contour becomes its own stroke,
// sampled every step units.
func ParseDrawable(data []byte, step float64) (models.Drawing, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var drawing models.Drawing
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		t, ok := tok.(xml.StartElement)
		if !ok || t.Name.Local != "path" {
			continue
		}

		var pathData string
		found := false
		for _, a := range t.Attr {
			if (a.Name.Space == androidNS && a.Name.Local == "pathData") || (a.Name.Space == "" && a.Name.Local == "d") {
				pathData = a.Value
				found = true
				break
			}
		}
		if !found {
			line, _ := dec.InputPos()
			return nil, fmt.Errorf("line %d: %w", line, ErrMissingPathData)
		}

		p, err := shape.Parse(pathData)
		if err != nil {
			line, _ := dec.InputPos()
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for _, contour := range p.SampleContours(step) {
			drawing = append(drawing, models.Stroke{
				ID:     "path_" + strconv.Itoa(len(drawing)),
				Color:  models.Black,
				Points: contour,
			})
		}
	}
	return drawing, nil
}

// Table maps shape names to drawings. It is never modified after
// construction, so it can be shared between goroutines.
type Table struct {
	shapes map[string]models.Drawing
	names  []string
}

func NewTable(shapes map[string]models.Drawing) *Table {
	t := &Table{shapes: make(map[string]models.Drawing, len(shapes))}
	for name, d := range shapes {
		t.shapes[name] = d
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t
}

// Names lists the shapes in alphabetical order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

func (t *Table) Get(name string) (models.Drawing, bool) {
	if t == nil {
		return nil, false
	}
	d, ok := t.shapes[name]
	return d, ok
}

// Templates returns each shape flattened to one point sequence, the form
// shape recognition works on.
func (t *Table) Templates() map[string][]models.Point {
	if t == nil {
		return nil
	}
	out := make(map[string][]models.Point, len(t.shapes))
	for name, d := range t.shapes {
		out[name] = d.Points()
	}
	return out
}

// With returns a new table holding t's shapes plus extra. Entries in extra
// replace shapes of the same name.
func (t *Table) With(extra map[string]models.Drawing) *Table {
	merged := make(map[string]models.Drawing, len(extra))
	if t != nil {
		for name, d := range t.shapes {
			merged[name] = d
		}
	}
	for name, d := range extra {
		merged[name] = d
	}
	return NewTable(merged)
}

// Drawings returns a copy of the name to drawing map.
func (t *Table) Drawings() map[string]models.Drawing {
	if t == nil {
		return nil
	}
	out := make(map[string]models.Drawing, len(t.shapes))
	for name, d := range t.shapes {
		out[name] = d
	}
	return out
}
