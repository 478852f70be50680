package main

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"time"
)

// RenderImage mounts a headless field, jumps it to the given elapsed field
// time and returns the final frame.
func RenderImage(cfg BeamConfig, width, height int, elapsed float64) (*image.NRGBA, error) {
	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) || elapsed < 0 {
		return nil, fmt.Errorf("elapsed time must be finite and >= 0, got %v", elapsed)
	}
	provider := &ImageSurfaceProvider{}
	sched := &manualScheduler{}

	field, err := NewBeamField(cfg, WithSurfaceProvider(provider), WithScheduler(sched))
	if err != nil {
		return nil, err
	}
	if err := field.Start(width, height); err != nil {
		return nil, err
	}
	defer field.Stop()

	// The first frame has a zero delta, so it is drawn at exactly elapsed.
	if err := field.seek(elapsed); err != nil {
		return nil, err
	}
	sched.Step(time.Unix(0, 0))

	if st := field.Stats(); st.State != StateRunning {
		return nil, fmt.Errorf("beam field stopped while rendering")
	}
	return provider.Last.Image(), nil
}

func writeSnapshot(cfg BeamConfig, outputPath string, width, height int, elapsed float64) error {
	img, err := RenderImage(cfg, width, height, elapsed)
	if err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	LogInfo("Snapshot written to %s (%dx%d, t=%.2f)", outputPath, width, height, elapsed)
	return nil
}
