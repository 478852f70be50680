package main

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// colorLevels quantizes terminal colors so the style cache stays bounded.
const colorLevels = 32

// PerformanceCache pools frame grids and string builders and caches lipgloss styles.
type PerformanceCache struct {
	colorPool    sync.Pool
	coveragePool sync.Pool
	styleCache   map[string]lipgloss.Style
	styleMu      sync.RWMutex
	builderPool  sync.Pool
}

func NewPerformanceCache() *PerformanceCache {
	return &PerformanceCache{
		styleCache: make(map[string]lipgloss.Style, 3000),
		colorPool: sync.Pool{
			New: func() interface{} {
				return make([][]colorful.Color, 0)
			},
		},
		coveragePool: sync.Pool{
			New: func() interface{} {
				return make([][]float64, 0)
			},
		},
		builderPool: sync.Pool{
			New: func() interface{} {
				return new(strings.Builder)
			},
		},
	}
}

// GetGrids returns cleared color and coverage grids of the given size.
func (pc *PerformanceCache) GetGrids(height, width int) ([][]colorful.Color, [][]float64) {
	colorGrid := pc.colorPool.Get().([][]colorful.Color)
	coverageGrid := pc.coveragePool.Get().([][]float64)

	if len(colorGrid) < height || len(coverageGrid) < height {
		colorGrid = make([][]colorful.Color, height)
		coverageGrid = make([][]float64, height)
	}

	for y := 0; y < height; y++ {
		if len(colorGrid[y]) < width || len(coverageGrid[y]) < width {
			colorGrid[y] = make([]colorful.Color, width)
			coverageGrid[y] = make([]float64, width)
		}
		colorGrid[y] = colorGrid[y][:width]
		coverageGrid[y] = coverageGrid[y][:width]
		for x := 0; x < width; x++ {
			colorGrid[y][x] = colorful.Color{}
			coverageGrid[y][x] = 0
		}
	}
	return colorGrid[:height], coverageGrid[:height]
}

func (pc *PerformanceCache) ReturnGrids(colorGrid [][]colorful.Color, coverageGrid [][]float64) {
	if colorGrid == nil || coverageGrid == nil {
		return
	}
	pc.colorPool.Put(colorGrid)
	pc.coveragePool.Put(coverageGrid)
}

func (pc *PerformanceCache) GetStyleFGBG(fg, bg lipgloss.Color) lipgloss.Style {
	key := string(fg) + "," + string(bg)
	pc.styleMu.RLock()
	style, ok := pc.styleCache[key]
	pc.styleMu.RUnlock()
	if ok {
		return style
	}

	pc.styleMu.Lock()
	defer pc.styleMu.Unlock()
	if style, ok = pc.styleCache[key]; ok {
		return style
	}
	style = lipgloss.NewStyle().Foreground(fg).Background(bg)
	pc.styleCache[key] = style
	return style
}

func (pc *PerformanceCache) GetBuilder() *strings.Builder {
	sb := pc.builderPool.Get().(*strings.Builder)
	sb.Reset()
	return sb
}

func (pc *PerformanceCache) ReturnBuilder(sb *strings.Builder) {
	pc.builderPool.Put(sb)
}

// BlendColors mixes fg over bg by ratio and quantizes the result to a terminal color.
func (pc *PerformanceCache) BlendColors(bg, fg colorful.Color, ratio float64) lipgloss.Color {
	ratio = clamp01(ratio)
	return quantize(bg.BlendRgb(fg, ratio))
}

func quantize(c colorful.Color) lipgloss.Color {
	step := func(v float64) float64 {
		return math.Round(clamp01(v)*(colorLevels-1)) / (colorLevels - 1)
	}
	return lipgloss.Color(colorful.Color{R: step(c.R), G: step(c.G), B: step(c.B)}.Hex())
}
