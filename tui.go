package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"
)

// lightPresets are cycled with the space bar.
var lightPresets = []string{
	"#ffffff",
	"#00E5FF", // Cyan
	"#FF00C8", // Magenta
	"#FFD400", // Yellow
	"#3DFF4E", // Green
}

const footerHeight = 1

// pointerTracker remembers the last mouse cell and reports it in device coordinates.
type pointerTracker struct {
	enabled       bool
	present       bool
	col, row      int
	width, height int
}

func (p *pointerTracker) Sample() (r2.Vec, bool) {
	if !p.enabled || !p.present || p.width <= 0 || p.height <= 0 {
		return r2.Vec{}, false
	}
	return r2.Vec{
		X: (float64(p.col)+0.5)/float64(p.width)*2 - 1,
		Y: 1 - (float64(p.row)+0.5)/float64(p.height)*2,
	}, true
}

type model struct {
	cfg       BeamConfig
	presetIdx int
	sched     *teaScheduler
	pointer   *pointerTracker
	provider  *TerminalSurfaceProvider
	field     *BeamField
	width     int
	height    int
	mounted   bool
}

func initialModel(app AppConfig, cfg BeamConfig) model {
	LogInfo("Creating initial TUI model")

	return model{
		cfg:     cfg,
		sched:   newTeaScheduler(app.FrameInterval()),
		pointer: &pointerTracker{enabled: app.Pointer},
		provider: &TerminalSurfaceProvider{
			Noise:      NewNoiseGenerator(noiseSeed),
			Opacity:    app.Opacity,
			ForceColor: app.ForceColor,
		},
	}
}

func (m model) Init() tea.Cmd {
	LogInfo("TUI Init() called")
	return nil
}

func (m model) fieldRows() int {
	return max(m.height-footerHeight, 1)
}

// mount builds a field for the current config and starts it at the current size.
// A failed start leaves m.field stopped; the rest of the UI keeps working.
func (m *model) mount() {
	field, err := NewBeamField(m.cfg,
		WithSurfaceProvider(m.provider),
		WithScheduler(m.sched),
		WithPointer(m.pointer),
	)
	if err != nil {
		LogError("Beam field rejected config: %v", err)
		m.field = nil
		return
	}
	m.field = field
	// failures are logged once by the field itself
	_ = field.Start(m.width, m.fieldRows())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			LogInfo("User requested quit via key: %s", msg.String())
			if m.field != nil {
				m.field.Stop()
			}
			return m, tea.Quit
		case " ": // spacebar
			m.presetIdx = (m.presetIdx + 1) % len(lightPresets)
			m.cfg.LightColor = lightPresets[m.presetIdx]
			LogDebug("Light color changed to: %s", m.cfg.LightColor)
			if m.mounted {
				if m.field != nil {
					m.field.Stop()
				}
				m.mount()
			}
		case "p":
			m.pointer.enabled = !m.pointer.enabled
			LogDebug("Pointer distortion enabled: %v", m.pointer.enabled)
		}

	case tea.MouseMsg:
		m.pointer.col = msg.X
		m.pointer.row = msg.Y
		m.pointer.present = msg.Y < m.fieldRows()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pointer.width = m.width
		m.pointer.height = m.fieldRows()
		LogInfo("Window resized: %dx%d", m.width, m.height)

		if !m.mounted {
			m.mounted = true
			m.mount()
		} else if m.field != nil {
			// errors are logged by the field; the old size stays
			_ = m.field.Resize(m.width, m.fieldRows())
		}

	case frameMsg:
		m.sched.Fire(msg)
	}

	return m, m.sched.Cmd()
}

func (m model) View() string {
	if !m.mounted || m.width == 0 {
		return "Initializing beams..."
	}

	background := ""
	if m.field != nil {
		background = m.field.View()
	}
	if background == "" {
		background = strings.Repeat("\n", m.fieldRows()-1)
	}

	return background + "\n" + m.footer()
}

func (m model) footer() string {
	status := "background unavailable"
	if m.field != nil {
		st := m.field.Stats()
		if st.State == StateRunning {
			status = fmt.Sprintf("%d beams | t=%.1f", st.Beams, st.Elapsed)
		}
	}

	pointer := "off"
	if m.pointer.enabled {
		pointer = "on"
	}

	text := fmt.Sprintf("%s | q quit | SPACE color (%s) | p pointer (%s)",
		status, m.cfg.LightColor, pointer)

	return lipgloss.NewStyle().
		Faint(true).
		Foreground(lipgloss.Color("#888888")).
		MaxWidth(m.width).
		Render(text)
}
