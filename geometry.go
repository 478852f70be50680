package main

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// beamSegments is the number of vertex rows per beam minus one.
	beamSegments = 100
	// maxPhase bounds the per-beam noise phase offset.
	maxPhase = 300.0
)

// Beam is one elongated light plane in field space (before rotation).
type Beam struct {
	Index    int
	X        float64 // left edge
	Width    float64
	Height   float64
	Rotation float64 // degrees, shared by the whole field
	Phase    float64 // noise phase offset, fixed per index
}

// Vertex is one entry of the static vertex buffer.
type Vertex struct {
	Pos r3.Vec
	UV  r2.Vec
}

// Geometry is the static data uploaded to a surface once per mount.
type Geometry struct {
	Beams    []Beam
	Vertices []Vertex // len(Beams) * (Segments+1) * 2, row-major, left vertex first
	Segments int
}

// RowVertices returns the left and right vertex of row j of beam i.
func (g *Geometry) RowVertices(i, j int) (Vertex, Vertex) {
	base := (i*(g.Segments+1) + j) * 2
	return g.Vertices[base], g.Vertices[base+1]
}

// FieldWidth is the total width covered by all beams.
func (g *Geometry) FieldWidth() float64 {
	if len(g.Beams) == 0 {
		return 0
	}
	return float64(len(g.Beams)) * g.Beams[0].Width
}

// GenerateBeams lays out cfg.BeamNumber beams side by side, centered on the origin.
func GenerateBeams(cfg BeamConfig) []Beam {
	n := cfg.BeamNumber
	if n <= 0 {
		return []Beam{}
	}

	totalWidth := float64(n) * cfg.BeamWidth
	xBase := -totalWidth / 2

	beams := make([]Beam, n)
	for i := range beams {
		beams[i] = Beam{
			Index:    i,
			X:        xBase + float64(i)*cfg.BeamWidth,
			Width:    cfg.BeamWidth,
			Height:   cfg.BeamHeight,
			Rotation: cfg.Rotation,
			Phase:    beamPhase(i),
		}
	}
	return beams
}

// BuildGeometry generates the beams and their vertex strips.
func BuildGeometry(cfg BeamConfig) *Geometry {
	beams := GenerateBeams(cfg)
	geom := &Geometry{
		Beams:    beams,
		Vertices: make([]Vertex, 0, len(beams)*(beamSegments+1)*2),
		Segments: beamSegments,
	}

	for _, b := range beams {
		for j := 0; j <= beamSegments; j++ {
			t := float64(j) / beamSegments
			y := b.Height * (t - 0.5)
			uvY := t + b.Phase
			geom.Vertices = append(geom.Vertices,
				Vertex{Pos: r3.Vec{X: b.X, Y: y}, UV: r2.Vec{X: 0, Y: uvY}},
				Vertex{Pos: r3.Vec{X: b.X + b.Width, Y: y}, UV: r2.Vec{X: 1, Y: uvY}},
			)
		}
	}
	return geom
}

// beamPhase maps a beam index to [0, maxPhase) with splitmix64.
func beamPhase(i int) float64 {
	z := uint64(i) + 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return float64(z>>11) / float64(1<<53) * maxPhase
}
