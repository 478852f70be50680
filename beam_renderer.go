package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BeamRenderer rasterizes the uploaded beam geometry: a vertex pass over the
// static vertex buffer, then a fragment pass over every covered pixel.
type BeamRenderer struct {
	shader *ShadingModel
	geom   *Geometry
	shaded []ShadedVertex // vertex pass output, reused between frames
}

func NewBeamRenderer(shader *ShadingModel) *BeamRenderer {
	return &BeamRenderer{shader: shader}
}

// SetGeometry replaces the static geometry. nil drops it.
func (br *BeamRenderer) SetGeometry(geom *Geometry) {
	br.geom = geom
	if geom == nil {
		br.shaded = nil
		return
	}
	br.shaded = make([]ShadedVertex, len(geom.Vertices))
}

// Render draws one frame into fb. The buffer is cleared first.
func (br *BeamRenderer) Render(fb *frameBuffer, u Uniforms) {
	fb.clear()
	if br.geom == nil || len(br.geom.Beams) == 0 || fb.width == 0 || fb.height == 0 {
		return
	}

	frame := br.shader.prepare(u)

	for i, v := range br.geom.Vertices {
		br.shaded[i] = br.shader.shadeVertex(v, &frame)
	}

	geom := br.geom
	beamWidth := geom.Beams[0].Width
	beamHeight := geom.Beams[0].Height
	xBase := geom.Beams[0].X
	n := len(geom.Beams)

	for py := 0; py < fb.height; py++ {
		for px := 0; px < fb.width; px++ {
			p := frame.cam.pixelToField(px, py)

			col := (p.X - xBase) / beamWidth
			if col < 0 {
				continue
			}
			beam := int(col)
			if beam >= n {
				continue
			}

			v := p.Y/beamHeight + 0.5
			if v < 0 || v > 1 {
				continue
			}

			normal := br.interpolateNormal(beam, col-float64(beam), v)
			fb.set(px, py, br.shader.shadeFragment(normal, px, py, &frame), 1)
		}
	}
}

// interpolateNormal blends the four vertex normals around (u, v) of a beam quad strip.
func (br *BeamRenderer) interpolateNormal(beam int, u, v float64) r3.Vec {
	seg := br.geom.Segments
	row := v * float64(seg)
	j := int(math.Floor(row))
	if j >= seg {
		j = seg - 1
	}
	t := row - float64(j)

	base := (beam*(seg+1) + j) * 2
	bl, br0 := br.shaded[base], br.shaded[base+1]
	tl, tr := br.shaded[base+2], br.shaded[base+3]

	bottom := lerpVec(bl.Normal, br0.Normal, u)
	top := lerpVec(tl.Normal, tr.Normal, u)
	return lerpVec(bottom, top, t)
}

func lerpVec(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(r3.Scale(1-t, a), r3.Scale(t, b))
}
