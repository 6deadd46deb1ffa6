package config

import (
	"encoding/json"
	"log"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/assets"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/raster"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/score"
)

type Settings struct {
	Strategy               string  `json:"strategy"`
	DMax                   float64 `json:"dmax"`
	ResampleCount          int     `json:"resample_count"`
	UserStrokeWidth        float64 `json:"user_stroke_width"`
	ReferenceStrokeWidth   float64 `json:"reference_stroke_width"`
	LengthPenaltyThreshold float64 `json:"length_penalty_threshold"`
	AlphaThreshold         int     `json:"alpha_threshold"`
	CanvasPadding          float64 `json:"canvas_padding"`
	SampleStep             float64 `json:"sample_step"`
	DebugDir               string  `json:"debug_dir"`
	ListenAddr             string  `json:"listen_addr"`
	Advertise              bool    `json:"advertise"`
}

func Default() *Settings {
	s := score.DefaultSettings()
	return &Settings{
		Strategy:               score.StrategyCoverage,
		DMax:                   s.DMax,
		ResampleCount:          s.ResampleCount,
		UserStrokeWidth:        s.UserStrokeWidth,
		ReferenceStrokeWidth:   s.ReferenceStrokeWidth,
		LengthPenaltyThreshold: s.PenaltyThreshold,
		AlphaThreshold:         s.AlphaThreshold,
		CanvasPadding:          assets.DefaultPadding,
		SampleStep:             assets.DefaultStep,
		DebugDir:               "",
		ListenAddr:             ":8787",
		Advertise:              false,
	}
}

// Scoring converts the settings into strategy tunables.
func (s *Settings) Scoring() score.Settings {
	return score.Settings{
		DMax:                 s.DMax,
		ResampleCount:        s.ResampleCount,
		UserStrokeWidth:      s.UserStrokeWidth,
		ReferenceStrokeWidth: s.ReferenceStrokeWidth,
		PenaltyThreshold:     s.LengthPenaltyThreshold,
		AlphaThreshold:       s.AlphaThreshold,
		Artifacts:            raster.ArtifactWriter{Dir: s.DebugDir},
	}
}

func GetDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, ".config", "sketchmatch")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}

// GetPath returns the file custom reference shapes are stored in.
func GetPath() (string, error) {
	configDir, err := GetDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "references.json"), nil
}

func GetSettingsPath() (string, error) {
	configDir, err := GetDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "settings.json"), nil
}

func LoadSettings() (*Settings, error) {
	settingsPath, err := GetSettingsPath()
	if err != nil {
		return nil, err
	}

	defaultSettings := Default()

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Creating default settings file at %s", settingsPath)
			if err := createDefaultSettings(settingsPath, defaultSettings); err != nil {
				log.Printf("Failed to create default settings file: %v", err)
			}
			return defaultSettings, nil
		}
		return nil, err
	}

	// Check for unrecognised keys
	var rawSettings map[string]interface{}
	if err := json.Unmarshal(data, &rawSettings); err != nil {
		log.Printf("Invalid settings file, using defaults: %v", err)
		return defaultSettings, nil
	}

	knownKeys := getKnownKeys(Settings{})
	for key := range rawSettings {
		if !knownKeys[key] {
			log.Printf("Warning: unrecognised setting key '%s' in settings file", key)
		}
	}

	// Missing keys keep their defaults
	settings := Default()
	if err := json.Unmarshal(data, settings); err != nil {
		log.Printf("Invalid settings file, using defaults: %v", err)
		return defaultSettings, nil
	}

	settings.validate(defaultSettings)
	return settings, nil
}

func (s *Settings) validate(d *Settings) {
	if _, err := score.New(s.Strategy, s.Scoring()); err != nil {
		log.Printf("Invalid strategy %q, must be one of %v, using default %q",
			s.Strategy, score.Names(), d.Strategy)
		s.Strategy = d.Strategy
	}
	if !(s.DMax > 0) || math.IsInf(s.DMax, 0) {
		log.Printf("Invalid dmax value %.2f, must be positive, using default %.2f", s.DMax, d.DMax)
		s.DMax = d.DMax
	}
	if s.ResampleCount < 2 {
		log.Printf("Invalid resample_count value %d, must be at least 2, using default %d",
			s.ResampleCount, d.ResampleCount)
		s.ResampleCount = d.ResampleCount
	}
	if !(s.UserStrokeWidth > 0) {
		log.Printf("Invalid user_stroke_width value %.2f, must be positive, using default %.2f",
			s.UserStrokeWidth, d.UserStrokeWidth)
		s.UserStrokeWidth = d.UserStrokeWidth
	}
	if !(s.ReferenceStrokeWidth > 0) {
		log.Printf("Invalid reference_stroke_width value %.2f, must be positive, using default %.2f",
			s.ReferenceStrokeWidth, d.ReferenceStrokeWidth)
		s.ReferenceStrokeWidth = d.ReferenceStrokeWidth
	}
	// Validate and clamp fractions to [0, 1]
	if s.LengthPenaltyThreshold < 0.0 || s.LengthPenaltyThreshold > 1.0 {
		log.Printf("Invalid length_penalty_threshold value %.2f, must be between 0.0 and 1.0, using default %.2f",
			s.LengthPenaltyThreshold, d.LengthPenaltyThreshold)
		s.LengthPenaltyThreshold = d.LengthPenaltyThreshold
	}
	if s.CanvasPadding < 0.0 || s.CanvasPadding >= 1.0 {
		log.Printf("Invalid canvas_padding value %.2f, must be between 0.0 and 1.0, using default %.2f",
			s.CanvasPadding, d.CanvasPadding)
		s.CanvasPadding = d.CanvasPadding
	}
	if s.AlphaThreshold < 0 || s.AlphaThreshold > 254 {
		log.Printf("Invalid alpha_threshold value %d, must be between 0 and 254, using default %d",
			s.AlphaThreshold, d.AlphaThreshold)
		s.AlphaThreshold = d.AlphaThreshold
	}
	if !(s.SampleStep > 0) {
		log.Printf("Invalid sample_step value %.2f, must be positive, using default %.2f", s.SampleStep, d.SampleStep)
		s.SampleStep = d.SampleStep
	}
}

func createDefaultSettings(path string, settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func getKnownKeys(v interface{}) map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			// Handle json tags like "field,omitempty"
			tagName := strings.Split(jsonTag, ",")[0]
			if tagName != "-" {
				keys[tagName] = true
			}
		}
	}
	return keys
}
