package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Surface is a rendering context owned by exactly one running beam field.
type Surface interface {
	Size() (width, height int)
	// Resize changes the drawable size. On error the old size is kept.
	Resize(width, height int) error
	// Upload stores the static geometry. Called once per mount.
	Upload(geom *Geometry) error
	// Draw renders one frame with the given uniforms.
	Draw(u Uniforms) error
	// Release frees the surface. Calling it more than once is safe.
	Release() error
}

// SurfaceProvider acquires rendering surfaces.
type SurfaceProvider interface {
	Acquire(width, height int) (Surface, error)
}

// frameBuffer is a pixel grid of colors plus coverage (0 = empty).
type frameBuffer struct {
	cache    *PerformanceCache
	width    int
	height   int
	color    [][]colorful.Color
	coverage [][]float64
}

func newFrameBuffer(cache *PerformanceCache, width, height int) *frameBuffer {
	fb := &frameBuffer{cache: cache}
	fb.allocate(width, height)
	return fb
}

func (fb *frameBuffer) allocate(width, height int) {
	fb.color, fb.coverage = fb.cache.GetGrids(height, width)
	fb.width, fb.height = width, height
}

func (fb *frameBuffer) resize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("negative size %dx%d", width, height)
	}
	oldColor, oldCoverage := fb.color, fb.coverage
	fb.allocate(width, height)
	fb.cache.ReturnGrids(oldColor, oldCoverage)
	return nil
}

func (fb *frameBuffer) clear() {
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			fb.color[y][x] = colorful.Color{}
			fb.coverage[y][x] = 0
		}
	}
}

func (fb *frameBuffer) set(x, y int, c colorful.Color, coverage float64) {
	fb.color[y][x] = c
	fb.coverage[y][x] = coverage
}

func (fb *frameBuffer) free() {
	fb.cache.ReturnGrids(fb.color, fb.coverage)
	fb.color, fb.coverage = nil, nil
	fb.width, fb.height = 0, 0
}

// rasterSurface implements Surface on a frameBuffer. Embedded by the
// terminal and image surfaces.
type rasterSurface struct {
	fb       *frameBuffer
	renderer *BeamRenderer
	released bool
}

func newRasterSurface(noise *NoiseGenerator, width, height int) (*rasterSurface, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("negative surface size %dx%d", width, height)
	}
	return &rasterSurface{
		fb:       newFrameBuffer(NewPerformanceCache(), width, height),
		renderer: NewBeamRenderer(NewShadingModel(noise)),
	}, nil
}

func (s *rasterSurface) Size() (int, int) {
	return s.fb.width, s.fb.height
}

func (s *rasterSurface) Resize(width, height int) error {
	if s.released {
		return ErrSurfaceReleased
	}
	return s.fb.resize(width, height)
}

func (s *rasterSurface) Upload(geom *Geometry) error {
	if s.released {
		return ErrSurfaceReleased
	}
	if geom == nil {
		return fmt.Errorf("upload: nil geometry")
	}
	s.renderer.SetGeometry(geom)
	return nil
}

func (s *rasterSurface) Draw(u Uniforms) error {
	if s.released {
		return ErrSurfaceReleased
	}
	u.Width, u.Height = s.fb.width, s.fb.height
	s.renderer.Render(s.fb, u)
	return nil
}

func (s *rasterSurface) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.fb.free()
	s.renderer.SetGeometry(nil)
	return nil
}

// ImageSurface renders into memory for PNG export.
type ImageSurface struct {
	*rasterSurface
}

// Image copies the current frame. Pixels without coverage are transparent.
func (s *ImageSurface) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.fb.width, s.fb.height))
	for y := 0; y < s.fb.height; y++ {
		for x := 0; x < s.fb.width; x++ {
			r, g, b := s.fb.color[y][x].Clamped().RGB255()
			a := uint8(clamp01(s.fb.coverage[y][x]) * 255)
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}
	return img
}

// ImageSurfaceProvider hands out ImageSurfaces and remembers the last one.
type ImageSurfaceProvider struct {
	Noise *NoiseGenerator
	Last  *ImageSurface
}

func (p *ImageSurfaceProvider) Acquire(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image surface needs a positive size, got %dx%d", width, height)
	}
	noise := p.Noise
	if noise == nil {
		noise = NewNoiseGenerator(noiseSeed)
	}
	rs, err := newRasterSurface(noise, width, height)
	if err != nil {
		return nil, err
	}
	p.Last = &ImageSurface{rasterSurface: rs}
	return p.Last, nil
}
