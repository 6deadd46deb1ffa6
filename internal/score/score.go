// Package score turns a reference drawing and a user drawing into a 0-100
// similarity score.
package score

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/raster"
)

var ErrUnknownStrategy = errors.New("unknown scoring strategy")

const (
	StrategyCoverage          = "coverage"
	StrategyCoverageReference = "coverage-reference"
	StrategyProcrustes        = "procrustes"
)

// Input is one comparison request. Width and Height are the canvas size the
// raster strategies draw at; geometric strategies ignore them.
type Input struct {
	Reference models.Drawing
	User      models.Drawing
	Width     int
	Height    int
}

type Result struct {
	Strategy string  `json:"strategy"`
	Score    float64 `json:"score"`
	// Coverage is the raw pixel overlap before any length penalty.
	Coverage        float64  `json:"coverage,omitempty"`
	Ratio           float64  `json:"ratio,omitempty"`
	UserLength      float64  `json:"user_length,omitempty"`
	ReferenceLength float64  `json:"reference_length,omitempty"`
	Distance        float64  `json:"distance,omitempty"`
	Artifacts       []string `json:"artifacts,omitempty"`
}

// Percent is the score rounded to a whole percentage.
func (r Result) Percent() int {
	return int(math.Round(r.Score))
}

// MarshalJSON adds the rounded percentage and leaves out an infinite
// distance, which JSON cannot represent.
func (r Result) MarshalJSON() ([]byte, error) {
	type result Result
	out := struct {
		result
		Percent  int      `json:"percent"`
		Distance *float64 `json:"distance,omitempty"`
	}{result: result(r), Percent: r.Percent()}
	if r.Distance != 0 && !math.IsInf(r.Distance, 0) && !math.IsNaN(r.Distance) {
		out.Distance = &r.Distance
	}
	return json.Marshal(out)
}

type Strategy interface {
	Name() string
	Score(ctx context.Context, in Input) (Result, error)
}

// Settings are the tunables shared by all strategies.
type Settings struct {
	DMax                 float64
	ResampleCount        int
	UserStrokeWidth      float64
	ReferenceStrokeWidth float64
	PenaltyThreshold     float64
	AlphaThreshold       int
	Artifacts            raster.ArtifactWriter
}

func DefaultSettings() Settings {
	return Settings{
		DMax:                 1.0,
		ResampleCount:        500,
		UserStrokeWidth:      10,
		ReferenceStrokeWidth: 100,
		PenaltyThreshold:     0.7,
		AlphaThreshold:       raster.DefaultAlphaThreshold,
	}
}

var constructors = map[string]func(Settings) Strategy{
	StrategyCoverage: func(s Settings) Strategy {
		return newCoverage(s, raster.DenominatorUser)
	},
	StrategyCoverageReference: func(s Settings) Strategy {
		return newCoverage(s, raster.DenominatorReference)
	},
	StrategyProcrustes: func(s Settings) Strategy {
		return &ProcrustesStrategy{TargetCount: s.ResampleCount, DMax: s.DMax}
	},
}

// Names lists the registered strategies.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func New(name string, s Settings) (Strategy, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownStrategy, name, Names())
	}
	return ctor(s), nil
}

func newCoverage(s Settings, denom raster.Denominator) *CoverageStrategy {
	return &CoverageStrategy{
		UserStrokeWidth:      s.UserStrokeWidth,
		ReferenceStrokeWidth: s.ReferenceStrokeWidth,
		PenaltyThreshold:     s.PenaltyThreshold,
		AlphaThreshold:       s.AlphaThreshold,
		Denominator:          denom,
		Artifacts:            s.Artifacts,
	}
}
