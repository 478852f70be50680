package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// coverageCutoff is the minimum visible coverage after opacity.
const coverageCutoff = 0.05

// TerminalSurface renders beams as half-block cells: each terminal row holds
// two pixel rows, foreground = top pixel, background = bottom pixel.
type TerminalSurface struct {
	*rasterSurface
	opacity    float64
	background colorful.Color
}

// Columns and rows are terminal cells; the pixel grid is rows*2 high.
func (s *TerminalSurface) Resize(columns, rows int) error {
	return s.rasterSurface.Resize(columns, rows*2)
}

// Size reports the surface size in terminal cells.
func (s *TerminalSurface) Size() (int, int) {
	return s.fb.width, s.fb.height / 2
}

// View converts the last drawn frame into a styled string.
func (s *TerminalSurface) View() string {
	if s.released {
		return ""
	}
	fb := s.fb
	cache := fb.cache
	sb := cache.GetBuilder()
	defer cache.ReturnBuilder(sb)

	rows := fb.height / 2
	for row := 0; row < rows; row++ {
		y := row * 2
		x := 0
		for x < fb.width {
			if s.alpha(x, y) < coverageCutoff && s.alpha(x, y+1) < coverageCutoff {
				sb.WriteString(" ")
				x++
				continue
			}

			// Group horizontal runs with same FG/BG
			start := x
			fg, bg := s.cellColor(x, y), s.cellColor(x, y+1)
			x++
			for x < fb.width {
				if s.cellColor(x, y) != fg || s.cellColor(x, y+1) != bg {
					break
				}
				x++
			}

			style := cache.GetStyleFGBG(fg, bg)
			sb.WriteString(style.Render(strings.Repeat("▀", x-start)))
		}
		if row < rows-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (s *TerminalSurface) alpha(x, y int) float64 {
	return s.fb.coverage[y][x] * s.opacity
}

func (s *TerminalSurface) cellColor(x, y int) lipgloss.Color {
	return s.fb.cache.BlendColors(s.background, s.fb.color[y][x], s.alpha(x, y))
}

// TerminalSurfaceProvider creates terminal surfaces. Acquire fails when the
// output cannot display colors, unless ForceColor is set.
type TerminalSurfaceProvider struct {
	Noise      *NoiseGenerator
	Opacity    float64
	Background colorful.Color
	ForceColor bool
	// Profile reports the terminal color profile; nil uses lipgloss detection.
	Profile func() termenv.Profile
	// Last is the most recently acquired surface.
	Last *TerminalSurface
}

// Acquire takes a size in terminal cells.
func (p *TerminalSurfaceProvider) Acquire(columns, rows int) (Surface, error) {
	profile := p.Profile
	if profile == nil {
		profile = lipgloss.ColorProfile
	}
	if profile() == termenv.Ascii && !p.ForceColor {
		return nil, ErrNoColorSupport
	}

	noise := p.Noise
	if noise == nil {
		noise = NewNoiseGenerator(noiseSeed)
	}
	rs, err := newRasterSurface(noise, columns, rows*2)
	if err != nil {
		return nil, err
	}

	// zero value means fully opaque
	opacity := p.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	p.Last = &TerminalSurface{
		rasterSurface: rs,
		opacity:       opacity,
		background:    p.Background,
	}
	return p.Last, nil
}
