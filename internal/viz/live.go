package viz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/arfall/internal/frames"
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/sim"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 40
	historyCapacity = 300
	// canvas origin inside the view, matching canvasStyle padding
	canvasLeft = 2
	canvasTop  = 1
)

type TickMsg time.Time

// BuildFunc creates a fresh world and the frame source that drives it.
type BuildFunc func() (*sim.World, frames.Source, error)

// Model is the live view: it steps the world once per tick and routes the
// left mouse button to the world's screen ray source.
type Model struct {
	build    BuildFunc
	world    *sim.World
	source   frames.Source
	renderer Renderer
	canvas   *Canvas
	running  bool
	done     bool
	err      error
	pending  []frames.Input
	last     sim.FrameStats
	heights  []float64
	title    string
}

func NewModel(title string, build BuildFunc) (Model, error) {
	m := Model{
		build:   build,
		canvas:  NewCanvas(width, height),
		running: true,
		title:   title,
		heights: make([]float64, 0, historyCapacity),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	w, src, err := m.build()
	if err != nil {
		return err
	}
	m.world, m.source = w, src
	m.renderer = Renderer{Camera: w.Screen().Camera()}
	m.pending = m.pending[:0]
	m.heights = m.heights[:0]
	m.last = sim.FrameStats{}
	m.err, m.done = nil, false
	m.fit()
	return nil
}

// fit keeps the pointer viewport equal to the canvas in dots.
func (m *Model) fit() {
	w, h := m.canvas.Dots()
	m.world.Screen().Resize(w, h)
}

func (m Model) World() *sim.World { return m.world }

func (m Model) Canvas() *Canvas { return m.canvas }

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.world.EndSession()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "g":
			m.world.ToggleGround()
		case "+", "=":
			m.world.AdjustGravity(1)
		case "-", "_":
			m.world.AdjustGravity(-1)
		}
	case tea.WindowSizeMsg:
		m.canvas.Resize(max(msg.Width-statsWidth-2*canvasLeft-2, 20), max(msg.Height-2*canvasTop, 8))
		m.fit()
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	col, row := msg.X-canvasLeft, msg.Y-canvasTop
	in := frames.Input{X: float64(col*2 + 1), Y: float64(row*4 + 2)}
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		in.Kind = frames.PointerDown
	case msg.Action == tea.MouseActionMotion:
		in.Kind = frames.PointerMove
	case msg.Action == tea.MouseActionRelease:
		in.Kind = frames.PointerUp
	default:
		return
	}
	m.pending = append(m.pending, in)
}

func (m *Model) step() {
	f, err := m.source.Next(context.Background())
	if errors.Is(err, io.EOF) {
		m.done = true
		m.world.EndSession()
		return
	}
	if err != nil {
		m.err = err
		return
	}
	f.Input = append(m.pending, f.Input...)
	m.pending = nil

	stats, err := m.world.Frame(f)
	if err != nil {
		m.err = err
		return
	}
	m.last = stats
	m.heights = append(m.heights, meanHeight(m.world.Field()))
	if len(m.heights) > historyCapacity {
		m.heights = m.heights[1:]
	}
}

func meanHeight(f *physics.Field) float64 {
	if f.Len() == 0 {
		return 0
	}
	var sum float64
	for _, y := range f.Heights() {
		sum += y
	}
	return sum / float64(f.Len())
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR: " + m.err.Error())
	case m.done:
		return StatusPaused.Render("ENDED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func row(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value) + "\n"
}

func (m Model) View() string {
	m.renderer.DrawWorld(m.canvas, m.world)
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")
	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights, asciigraph.Height(4), asciigraph.Width(statsWidth-12), asciigraph.Caption("mean height"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(row("Time", fmt.Sprintf("%.2fs", m.world.Time())))
	s.WriteString(row("Ground", m.world.Mode().String()))
	s.WriteString(row("Gravity", fmt.Sprintf("%.1f", m.world.GravityMagnitude())))
	s.WriteString(row("Planes", fmt.Sprintf("%d/%d", m.last.Qualifying, m.last.Planes)))
	s.WriteString(row("Contacts", fmt.Sprintf("%d", m.last.Contacts)))
	s.WriteString(row("Dragging", fmt.Sprintf("%d", m.world.Manipulator().Active())))
	if p := m.world.Panel(); p != nil {
		s.WriteString(row("Panel", p.Text()))
	} else if err := m.world.PanelError(); err != nil {
		s.WriteString(row("Panel", "unavailable"))
	}
	s.WriteString(KeyHint.Render("drag:Grab  G:Ground  +/-:Gravity\nSP:Pause  R:Reset  Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Run starts the live view full screen with mouse motion reporting.
func Run(title string, build BuildFunc) error {
	m, err := NewModel(title, build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
