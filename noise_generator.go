package main

import (
	"github.com/ojrac/opensimplex-go"
)

// noiseSeed is the fixed OpenSimplex seed. The library builds its permutation
// table from the seed with a 64-bit LCG, so the same seed always gives the same field.
const noiseSeed int64 = 1337

// NoiseGenerator wraps OpenSimplex noise. It holds no mutable state and is
// safe to share between goroutines.
type NoiseGenerator struct {
	noise opensimplex.Noise
}

func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		noise: opensimplex.New(seed),
	}
}

// Displacement samples the 3D field used to push beam vertices along their normal.
// Output is roughly in [-1, 1] and continuous in all inputs.
func (ng *NoiseGenerator) Displacement(x, y, t float64) float64 {
	return ng.noise.Eval3(x, y, t)
}

// Grain returns static per-pixel film grain in [0, 1].
func (ng *NoiseGenerator) Grain(px, py float64) float64 {
	v := (ng.GenerateFBM(px*0.93, py*0.93, 2, 0.5) + 1) / 2
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// GenerateFBM sums octaves of 2D noise, normalized back into [-1, 1].
func (ng *NoiseGenerator) GenerateFBM(x, y float64, octaves int, persistence float64) float64 {
	var total, frequency, amplitude, maxValue float64 = 0, 1, 1, 0

	for i := 0; i < octaves; i++ {
		total += ng.noise.Eval2(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}
