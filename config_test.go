package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultBeamConfigValid(t *testing.T) {
	cfg := DefaultBeamConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	want := BeamConfig{
		BeamWidth: 1.7, BeamHeight: 25, BeamNumber: 20, LightColor: "#ffffff",
		Speed: 1.9, NoiseIntensity: 1.75, Scale: 0.2, Rotation: 60,
	}
	if cfg != want {
		t.Errorf("DefaultBeamConfig() = %+v, want %+v", cfg, want)
	}
}

func TestBeamConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BeamConfig)
		field  string
	}{
		{"negative width", func(c *BeamConfig) { c.BeamWidth = -1 }, "beam_width"},
		{"zero height", func(c *BeamConfig) { c.BeamHeight = 0 }, "beam_height"},
		{"NaN speed", func(c *BeamConfig) { c.Speed = math.NaN() }, "speed"},
		{"infinite scale", func(c *BeamConfig) { c.Scale = math.Inf(1) }, "scale"},
		{"negative beams", func(c *BeamConfig) { c.BeamNumber = -2 }, "beam_number"},
		{"too many beams", func(c *BeamConfig) { c.BeamNumber = MaxBeams + 1 }, "beam_number"},
		{"negative noise", func(c *BeamConfig) { c.NoiseIntensity = -0.1 }, "noise_intensity"},
		{"NaN rotation", func(c *BeamConfig) { c.Rotation = math.NaN() }, "rotation"},
		{"bad color", func(c *BeamConfig) { c.LightColor = "white" }, "light_color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBeamConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() error = %v, want *ConfigurationError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}

func TestBeamConfigValidateAccepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BeamConfig)
	}{
		{"zero beams", func(c *BeamConfig) { c.BeamNumber = 0 }},
		{"no noise", func(c *BeamConfig) { c.NoiseIntensity = 0 }},
		{"negative rotation", func(c *BeamConfig) { c.Rotation = -450 }},
		{"short hex", func(c *BeamConfig) { c.LightColor = "#0f8" }},
		{"max beams", func(c *BeamConfig) { c.BeamNumber = MaxBeams }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBeamConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestParseBeamConfigOverlay(t *testing.T) {
	cfg, err := ParseBeamConfig([]byte("beam_number: 8\nlight_color: \"#ff0000\"\nrotation: -30\n"))
	if err != nil {
		t.Fatalf("ParseBeamConfig() error = %v", err)
	}
	want := DefaultBeamConfig()
	want.BeamNumber = 8
	want.LightColor = "#ff0000"
	want.Rotation = -30
	if cfg != want {
		t.Errorf("ParseBeamConfig() = %+v, want %+v", cfg, want)
	}
	if l := cfg.Light(); l.R != 1 || l.G != 0 || l.B != 0 {
		t.Errorf("Light() = %+v, want pure red", l)
	}
}

func TestParseBeamConfigErrors(t *testing.T) {
	if _, err := ParseBeamConfig([]byte("beam_width: [1, 2]")); err == nil {
		t.Error("malformed YAML accepted")
	}
	var cerr *ConfigurationError
	if _, err := ParseBeamConfig([]byte("scale: 0")); !errors.As(err, &cerr) {
		t.Errorf("ParseBeamConfig(scale: 0) error = %v, want *ConfigurationError", err)
	}
}

func TestLoadBeamConfig(t *testing.T) {
	cfg, err := LoadBeamConfig("")
	if err != nil || cfg != DefaultBeamConfig() {
		t.Errorf("LoadBeamConfig(\"\") = %+v, %v; want defaults", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "beams.yaml")
	if err := os.WriteFile(path, []byte("speed: 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadBeamConfig(path)
	if err != nil {
		t.Fatalf("LoadBeamConfig() error = %v", err)
	}
	if cfg.Speed != 0.5 || cfg.BeamNumber != 20 {
		t.Errorf("LoadBeamConfig() = %+v", cfg)
	}

	if _, err := LoadBeamConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}

func TestParseAppConfig(t *testing.T) {
	env := map[string]string{
		"BEAMS_CONFIG": "from-env.yaml",
		"BEAMS_FPS":    "30",
	}
	getenv := func(k string) string { return env[k] }

	app, err := parseAppConfig(nil, getenv)
	if err != nil {
		t.Fatalf("parseAppConfig() error = %v", err)
	}
	if app.ConfigPath != "from-env.yaml" || app.FPS != 30 || app.LogPath != "beamfield.log" {
		t.Errorf("env defaults not applied: %+v", app)
	}
	if got := app.FrameInterval(); got != time.Second/30 {
		t.Errorf("FrameInterval() = %v, want %v", got, time.Second/30)
	}

	app, err = parseAppConfig([]string{"-config", "flag.yaml", "-fps", "120", "-snapshot", "out.png", "-time", "2.5"}, getenv)
	if err != nil {
		t.Fatalf("parseAppConfig() error = %v", err)
	}
	if app.ConfigPath != "flag.yaml" || app.FPS != 120 || app.SnapshotPath != "out.png" || app.SnapshotTime != 2.5 {
		t.Errorf("flags did not override env: %+v", app)
	}
}

func TestParseAppConfigRejects(t *testing.T) {
	none := func(string) string { return "" }
	for _, args := range [][]string{
		{"-fps", "0"},
		{"-opacity", "1.5"},
		{"-time", "-1"},
		{"-time", "1e12"},
		{"-time", "NaN"},
		{"-time", "+Inf"},
		{"-unknown"},
	} {
		if _, err := parseAppConfig(args, none); err == nil {
			t.Errorf("parseAppConfig(%v) succeeded, want error", args)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BEAMS_TEST_ONLY=42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BEAMS_TEST_ONLY", "")
	os.Unsetenv("BEAMS_TEST_ONLY")

	loadEnvFile(path)
	if got := os.Getenv("BEAMS_TEST_ONLY"); got != "42" {
		t.Errorf("BEAMS_TEST_ONLY = %q, want 42", got)
	}

	loadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}
