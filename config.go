package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// MaxBeams bounds beam_number so a typo cannot stall the render loop.
const MaxBeams = 512

// maxSnapshotTime keeps snapshot noise coordinates inside the range where
// OpenSimplex lattice indices stay exact.
const maxSnapshotTime = 1e6

// BeamConfig is the immutable configuration of one beam field.
// Changing any value means building a new field.
type BeamConfig struct {
	BeamWidth      float64 `yaml:"beam_width"`
	BeamHeight     float64 `yaml:"beam_height"`
	BeamNumber     int     `yaml:"beam_number"`
	LightColor     string  `yaml:"light_color"`
	Speed          float64 `yaml:"speed"`
	NoiseIntensity float64 `yaml:"noise_intensity"`
	Scale          float64 `yaml:"scale"`
	Rotation       float64 `yaml:"rotation"` // degrees
}

// DefaultBeamConfig returns the landing page background settings.
func DefaultBeamConfig() BeamConfig {
	return BeamConfig{
		BeamWidth:      1.7,
		BeamHeight:     25,
		BeamNumber:     20,
		LightColor:     "#ffffff",
		Speed:          1.9,
		NoiseIntensity: 1.75,
		Scale:          0.2,
		Rotation:       60,
	}
}

// Validate rejects values the renderer cannot work with. Nothing is clamped.
func (c BeamConfig) Validate() error {
	positive := []struct {
		field string
		value float64
	}{
		{"beam_width", c.BeamWidth},
		{"beam_height", c.BeamHeight},
		{"speed", c.Speed},
		{"scale", c.Scale},
	}
	for _, p := range positive {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return &ConfigurationError{Field: p.field, Value: p.value, Reason: "must be finite"}
		}
		if p.value <= 0 {
			return &ConfigurationError{Field: p.field, Value: p.value, Reason: "must be > 0"}
		}
	}

	if c.BeamNumber < 0 || c.BeamNumber > MaxBeams {
		return &ConfigurationError{
			Field:  "beam_number",
			Value:  c.BeamNumber,
			Reason: fmt.Sprintf("must be between 0 and %d", MaxBeams),
		}
	}

	if math.IsNaN(c.NoiseIntensity) || math.IsInf(c.NoiseIntensity, 0) || c.NoiseIntensity < 0 {
		return &ConfigurationError{Field: "noise_intensity", Value: c.NoiseIntensity, Reason: "must be finite and >= 0"}
	}
	if math.IsNaN(c.Rotation) || math.IsInf(c.Rotation, 0) {
		return &ConfigurationError{Field: "rotation", Value: c.Rotation, Reason: "must be finite"}
	}

	if _, err := colorful.Hex(c.LightColor); err != nil {
		return &ConfigurationError{Field: "light_color", Value: c.LightColor, Reason: "expected #rgb or #rrggbb"}
	}
	return nil
}

// Light returns the parsed light color. Call Validate first.
func (c BeamConfig) Light() colorful.Color {
	col, err := colorful.Hex(c.LightColor)
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return col
}

// ParseBeamConfig overlays YAML data on the defaults.
func ParseBeamConfig(data []byte) (BeamConfig, error) {
	cfg := DefaultBeamConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BeamConfig{}, fmt.Errorf("parse beam config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return BeamConfig{}, err
	}
	return cfg, nil
}

// LoadBeamConfig reads a YAML config file. An empty path yields the defaults.
func LoadBeamConfig(path string) (BeamConfig, error) {
	if path == "" {
		return DefaultBeamConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return BeamConfig{}, fmt.Errorf("read beam config: %w", err)
	}
	return ParseBeamConfig(data)
}

// AppConfig holds the host program settings.
type AppConfig struct {
	ConfigPath string
	LogPath    string
	FPS        int
	Opacity    float64
	ForceColor bool
	Pointer    bool

	SnapshotPath   string
	SnapshotWidth  int
	SnapshotHeight int
	SnapshotTime   float64
}

// FrameInterval is the delay between scheduled frames.
func (a AppConfig) FrameInterval() time.Duration {
	if a.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(a.FPS)
}

// loadEnvFile pulls .env into the process environment if it exists.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		LogError("Failed to load %s: %v", path, err)
	}
}

// parseAppConfig reads flags, falling back to BEAMS_* environment values.
func parseAppConfig(args []string, getenv func(string) string) (AppConfig, error) {
	envInt := func(key string, def int) int {
		if v, err := strconv.Atoi(getenv(key)); err == nil {
			return v
		}
		return def
	}
	envStr := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	var cfg AppConfig
	fs := flag.NewFlagSet("beamfield", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigPath, "config", envStr("BEAMS_CONFIG", ""), "YAML beam config file")
	fs.StringVar(&cfg.LogPath, "log", envStr("BEAMS_LOG", "beamfield.log"), "log file path")
	fs.IntVar(&cfg.FPS, "fps", envInt("BEAMS_FPS", 60), "frames per second")
	fs.Float64Var(&cfg.Opacity, "opacity", 0.6, "background opacity (0-1)")
	fs.BoolVar(&cfg.ForceColor, "force-color", false, "render even when no color support is detected")
	fs.BoolVar(&cfg.Pointer, "pointer", false, "start with pointer distortion enabled")
	fs.StringVar(&cfg.SnapshotPath, "snapshot", "", "render one frame to this PNG file and exit")
	fs.IntVar(&cfg.SnapshotWidth, "width", 640, "snapshot width in pixels")
	fs.IntVar(&cfg.SnapshotHeight, "height", 360, "snapshot height in pixels")
	fs.Float64Var(&cfg.SnapshotTime, "time", 0, "snapshot elapsed field time in seconds")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if cfg.FPS <= 0 || cfg.FPS > 240 {
		return AppConfig{}, fmt.Errorf("fps must be between 1 and 240, got %d", cfg.FPS)
	}
	if cfg.Opacity < 0 || cfg.Opacity > 1 {
		return AppConfig{}, fmt.Errorf("opacity must be between 0 and 1, got %v", cfg.Opacity)
	}
	if math.IsNaN(cfg.SnapshotTime) || cfg.SnapshotTime < 0 || cfg.SnapshotTime > maxSnapshotTime {
		return AppConfig{}, fmt.Errorf("time must be between 0 and %g, got %v", maxSnapshotTime, cfg.SnapshotTime)
	}
	return cfg, nil
}
