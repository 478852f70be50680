package main

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	cameraFOV      = 30.0 // degrees, vertical
	cameraDistance = 20.0

	normalStep      = 0.01
	timeFactor      = 3.0
	pointerStrength = 0.8
	pointerRadius   = 2.5

	specularStrength = 0.9
	shininess        = 24.0
	diffuseStrength  = 0.12
	grainDivisor     = 15.0
)

var (
	lightDir = r3.Unit(r3.Vec{X: 0, Y: 3, Z: 10})
	viewDir  = r3.Vec{X: 0, Y: 0, Z: 1}
	halfway  = r3.Unit(r3.Add(lightDir, viewDir))
)

// Uniforms are the per-frame inputs of the shading model.
type Uniforms struct {
	Time           float64 // elapsed field time, already scaled by speed
	Width, Height  int     // viewport in pixels
	Pointer        r2.Vec  // normalized device coordinates, y up
	HasPointer     bool
	Light          colorful.Color
	NoiseIntensity float64
	Scale          float64
	Rotation       float64 // degrees
}

// ShadedVertex is the vertex stage output.
type ShadedVertex struct {
	Pos    r3.Vec
	Normal r3.Vec
}

// camera maps viewport pixels to field space.
type camera struct {
	width, height int
	halfW, halfH  float64
	toField       r2.Rotation
}

func newCamera(u Uniforms) camera {
	halfH := cameraDistance * math.Tan(cameraFOV*math.Pi/360)
	halfW := halfH
	if u.Height > 0 {
		halfW = halfH * float64(u.Width) / float64(u.Height)
	}
	return camera{
		width:   u.Width,
		height:  u.Height,
		halfW:   halfW,
		halfH:   halfH,
		toField: r2.NewRotation(-u.Rotation*math.Pi/180, r2.Vec{}),
	}
}

// ndcToField converts normalized device coordinates to unrotated field space.
func (c camera) ndcToField(p r2.Vec) r2.Vec {
	return c.toField.Rotate(r2.Vec{X: p.X * c.halfW, Y: p.Y * c.halfH})
}

// pixelToField converts the center of pixel (px, py) to field space.
func (c camera) pixelToField(px, py int) r2.Vec {
	ndc := r2.Vec{
		X: (float64(px)+0.5)/float64(c.width)*2 - 1,
		Y: 1 - (float64(py)+0.5)/float64(c.height)*2,
	}
	return c.ndcToField(ndc)
}

// shadingFrame holds the uniforms resolved once per frame.
type shadingFrame struct {
	cam            camera
	time           float64
	scale          float64
	noiseIntensity float64
	light          colorful.Color
	pointer        r2.Vec // field space
	hasPointer     bool
}

// ShadingModel is the procedural beam shader. It is stateless apart from
// the noise tables, so equal uniforms always produce equal output.
type ShadingModel struct {
	noise *NoiseGenerator
}

func NewShadingModel(noise *NoiseGenerator) *ShadingModel {
	return &ShadingModel{noise: noise}
}

func (sm *ShadingModel) prepare(u Uniforms) shadingFrame {
	f := shadingFrame{
		cam:            newCamera(u),
		time:           u.Time,
		scale:          u.Scale,
		noiseIntensity: u.NoiseIntensity,
		light:          u.Light,
		hasPointer:     u.HasPointer,
	}
	if u.HasPointer {
		f.pointer = f.cam.ndcToField(u.Pointer)
	}
	return f
}

func (sm *ShadingModel) offset(pos r3.Vec, uv r2.Vec, f *shadingFrame) float64 {
	d := sm.noise.Displacement(0, (pos.Y-uv.Y)*f.scale, f.time*timeFactor*f.scale)
	if f.hasPointer {
		dx := pos.X - f.pointer.X
		dy := pos.Y - f.pointer.Y
		d += pointerStrength * math.Exp(-(dx*dx+dy*dy)/(pointerRadius*pointerRadius))
	}
	return d
}

func (sm *ShadingModel) currentPos(pos r3.Vec, uv r2.Vec, f *shadingFrame) r3.Vec {
	pos.Z += sm.offset(pos, uv, f)
	return pos
}

// shadeVertex displaces a vertex along +z and derives its normal from
// finite differences along +x and -y.
func (sm *ShadingModel) shadeVertex(v Vertex, f *shadingFrame) ShadedVertex {
	cur := sm.currentPos(v.Pos, v.UV, f)
	nextX := sm.currentPos(r3.Add(v.Pos, r3.Vec{X: normalStep}), v.UV, f)
	nextZ := sm.currentPos(r3.Add(v.Pos, r3.Vec{Y: -normalStep}), v.UV, f)

	tangentX := r3.Unit(r3.Sub(nextX, cur))
	tangentZ := r3.Unit(r3.Sub(nextZ, cur))
	return ShadedVertex{
		Pos:    cur,
		Normal: r3.Unit(r3.Cross(tangentZ, tangentX)),
	}
}

// ShadeVertex runs the vertex stage for a single vertex.
func (sm *ShadingModel) ShadeVertex(v Vertex, u Uniforms) ShadedVertex {
	f := sm.prepare(u)
	return sm.shadeVertex(v, &f)
}

// shadeFragment lights an interpolated normal and applies film grain.
func (sm *ShadingModel) shadeFragment(normal r3.Vec, px, py int, f *shadingFrame) colorful.Color {
	n := r3.Unit(normal)

	brightness := specularStrength*math.Pow(math.Max(r3.Dot(n, halfway), 0), shininess) +
		diffuseStrength*math.Max(r3.Dot(n, lightDir), 0)
	brightness -= sm.noise.Grain(float64(px), float64(py)) / grainDivisor * f.noiseIntensity
	brightness = clamp01(brightness)

	return colorful.Color{
		R: clamp01(f.light.R * brightness),
		G: clamp01(f.light.G * brightness),
		B: clamp01(f.light.B * brightness),
	}
}

// ShadeFragment runs the fragment stage for one pixel with the given normal.
func (sm *ShadingModel) ShadeFragment(normal r3.Vec, px, py int, u Uniforms) colorful.Color {
	f := sm.prepare(u)
	return sm.shadeFragment(normal, px, py, &f)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
