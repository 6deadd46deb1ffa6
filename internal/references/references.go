// Package references stores reference shapes the user taught the program.
package references

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/config"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
)

var ErrNotFound = errors.New("reference not found")

func LoadReferences() ([]models.ReferenceConfig, error) {
	configFile, err := config.GetPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ReferenceConfig{}, nil
		}
		return nil, err
	}

	var references []models.ReferenceConfig
	if err := json.Unmarshal(data, &references); err != nil {
		return nil, err
	}

	return references, nil
}

// SaveReference stores strokes under name, replacing a reference of the same
// name.
func SaveReference(name string, strokes [][]models.Point) error {
	references, err := LoadReferences()
	if err != nil {
		return err
	}

	newReference := models.ReferenceConfig{
		Name:    name,
		Strokes: strokes,
	}

	found := false
	for i, r := range references {
		if r.Name == name {
			references[i] = newReference
			found = true
			break
		}
	}
	if !found {
		references = append(references, newReference)
	}

	return write(references)
}

func RemoveReference(name string) error {
	references, err := LoadReferences()
	if err != nil {
		return err
	}

	found := false
	for i, r := range references {
		if r.Name == name {
			references = append(references[:i], references[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return write(references)
}

func write(references []models.ReferenceConfig) error {
	configFile, err := config.GetPath()
	if err != nil {
		return err
	}

	data, err := json.Marshal(references)
	if err != nil {
		return err
	}

	return os.WriteFile(configFile, data, 0644)
}

// Drawings converts stored references into drawings keyed by name, ready to
// merge into a shape table.
func Drawings(references []models.ReferenceConfig) map[string]models.Drawing {
	out := make(map[string]models.Drawing, len(references))
	for _, r := range references {
		d := make(models.Drawing, 0, len(r.Strokes))
		for _, pts := range r.Strokes {
			if len(pts) == 0 {
				continue
			}
			d = append(d, models.Stroke{ID: "path_" + strconv.Itoa(len(d)), Color: models.Black, Points: pts})
		}
		out[r.Name] = d
	}
	return out
}
