package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) {
	t.Helper()
	path, err := GetSettingsPath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadSettingsCreatesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, Default(), settings)

	data, err := os.ReadFile(filepath.Join(home, ".config", "sketchmatch", "settings.json"))
	require.NoError(t, err)
	var onDisk Settings
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, *Default(), onDisk)
}

func TestLoadSettingsPartialFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	writeSettings(t, `{"strategy": "procrustes", "dmax": 6, "mystery_key": true}`)

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, score.StrategyProcrustes, settings.Strategy)
	assert.Equal(t, 6.0, settings.DMax)
	assert.Equal(t, 500, settings.ResampleCount)
	assert.Equal(t, 0.1, settings.CanvasPadding)
}

func TestLoadSettingsReplacesInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	writeSettings(t, `{
		"strategy": "guesswork",
		"dmax": -1,
		"resample_count": 1,
		"user_stroke_width": 0,
		"reference_stroke_width": -4,
		"length_penalty_threshold": 1.5,
		"alpha_threshold": 300,
		"canvas_padding": 1,
		"sample_step": 0
	}`)

	settings, err := LoadSettings()
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, d.Strategy, settings.Strategy)
	assert.Equal(t, d.DMax, settings.DMax)
	assert.Equal(t, d.ResampleCount, settings.ResampleCount)
	assert.Equal(t, d.UserStrokeWidth, settings.UserStrokeWidth)
	assert.Equal(t, d.ReferenceStrokeWidth, settings.ReferenceStrokeWidth)
	assert.Equal(t, d.LengthPenaltyThreshold, settings.LengthPenaltyThreshold)
	assert.Equal(t, d.AlphaThreshold, settings.AlphaThreshold)
	assert.Equal(t, d.CanvasPadding, settings.CanvasPadding)
	assert.Equal(t, d.SampleStep, settings.SampleStep)
}

func TestLoadSettingsMalformed(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	writeSettings(t, `{not json`)
	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, Default(), settings)
}

func TestScoring(t *testing.T) {
	s := Default()
	s.DebugDir = "/tmp/out"
	s.DMax = 6
	sc := s.Scoring()
	assert.Equal(t, 6.0, sc.DMax)
	assert.Equal(t, "/tmp/out", sc.Artifacts.Dir)
	assert.Equal(t, 0.7, sc.PenaltyThreshold)
}

func TestGetKnownKeys(t *testing.T) {
	keys := getKnownKeys(&Settings{})
	assert.True(t, keys["strategy"])
	assert.True(t, keys["listen_addr"])
	assert.False(t, keys["overlay_alpha"])
	assert.Len(t, keys, 12)
}
