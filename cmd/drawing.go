package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
)

const (
	defaultCanvasWidth  = 500
	defaultCanvasHeight = 500
)

// readDrawingFile reads a drawing in the JSON exchange format. "-" reads
// standard input.
func readDrawingFile(path string) (models.DrawingFile, error) {
	var f models.DrawingFile
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("invalid drawing file %s: %w", path, err)
	}
	if f.Width <= 0 {
		f.Width = defaultCanvasWidth
	}
	if f.Height <= 0 {
		f.Height = defaultCanvasHeight
	}
	return f, nil
}
