package models

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous drag gesture. Points are appended while the
// gesture is active and never change once it has ended.
type Stroke struct {
	ID     string  `json:"id"`
	Color  Color   `json:"color"`
	Points []Point `json:"points"`
}

// Drawing is the ordered list of finished strokes on one canvas.
type Drawing []Stroke

// Points flattens every stroke into a single point sequence.
func (d Drawing) Points() []Point {
	n := 0
	for _, s := range d {
		n += len(s.Points)
	}
	points := make([]Point, 0, n)
	for _, s := range d {
		points = append(points, s.Points...)
	}
	return points
}

// Polylines returns the raw point lists of every stroke.
func (d Drawing) Polylines() [][]Point {
	lines := make([][]Point, 0, len(d))
	for _, s := range d {
		lines = append(lines, s.Points)
	}
	return lines
}

// Slot identifies one of the two drawing surfaces.
type Slot int

const (
	SlotReference Slot = iota
	SlotUser
)

func (s Slot) Other() Slot {
	if s == SlotReference {
		return SlotUser
	}
	return SlotReference
}

func (s Slot) Valid() bool {
	return s == SlotReference || s == SlotUser
}

func (s Slot) String() string {
	switch s {
	case SlotReference:
		return "reference"
	case SlotUser:
		return "user"
	default:
		return "slot(" + strconv.Itoa(int(s)) + ")"
	}
}

func ParseSlot(s string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reference", "top":
		return SlotReference, nil
	case "user", "bottom":
		return SlotUser, nil
	}
	return 0, fmt.Errorf("unknown canvas slot %q", s)
}

func (s Slot) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid canvas slot %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(b []byte) error {
	v, err := ParseSlot(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Color is a hex colour tag ("#rrggbb" or "#rrggbbaa").
type Color string

const Black Color = "#000000"

// RGBA decodes the tag. Malformed tags decode as opaque black.
func (c Color) RGBA() color.NRGBA {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{A: 0xff}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

func (c Color) Valid() bool {
	s := strings.TrimPrefix(string(c), "#")
	if !strings.HasPrefix(string(c), "#") || (len(s) != 6 && len(s) != 8) {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}

// DrawingFile is the on-disk exchange format used by the CLI.
type DrawingFile struct {
	Width   int       `json:"width,omitempty"`
	Height  int       `json:"height,omitempty"`
	Strokes [][]Point `json:"strokes"`
}

// Drawing converts the file strokes into a Drawing with generated ids.
func (f DrawingFile) Drawing() Drawing {
	d := make(Drawing, 0, len(f.Strokes))
	for i, pts := range f.Strokes {
		if len(pts) == 0 {
			continue
		}
		d = append(d, Stroke{ID: "path_" + strconv.Itoa(i), Color: Black, Points: pts})
	}
	return d
}

// ReferenceConfig is a custom reference shape saved by the user.
type ReferenceConfig struct {
	Name    string    `json:"name"`
	Strokes [][]Point `json:"strokes"`
}
