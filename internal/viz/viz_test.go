package viz

import (
	"math"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/frames"
	"github.com/san-kum/arfall/internal/ground"
	"github.com/san-kum/arfall/internal/scene"
	"github.com/san-kum/arfall/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(1, 3)
	c.Set(-1, 0)
	c.Set(4, 0)
	if got := c.Grid[0][0]; got != blank|0x1|0x80 {
		t.Errorf("cell = %U", got)
	}
	if c.Grid[0][1] != blank {
		t.Error("out of range dot was drawn")
	}
	if w, h := c.Dots(); w != 4 || h != 4 {
		t.Errorf("dots = %dx%d", w, h)
	}
}

func TestCanvasTint(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Disc(2, 2, 1, dynamo.ColorGreen)
	if c.Tint[0][1] != dynamo.ColorGreen {
		t.Errorf("disc did not tint its cell: %v", c.Tint[0][1])
	}
	c.Clear()
	if c.Tint[0][1] != 0 || c.Grid[0][1] != blank {
		t.Error("clear left state behind")
	}
	if got := len([]rune(c.String())); got != 2*(4+1) {
		t.Errorf("plain render length %d", got)
	}
}

func TestRendererCenter(t *testing.T) {
	c := NewCanvas(40, 20)
	cam := sim.DefaultWorldConfig().Camera
	r := Renderer{Camera: cam}

	ahead := r3.Add(cam.Pose.Position, r3.Vec{Z: -3})
	x, y, depth, ok := r.ToCanvas(c, ahead)
	if !ok || x != 40 || y != 40 || depth != 3 {
		t.Errorf("ahead projects to (%d, %d) depth %v ok %v", x, y, depth, ok)
	}
	if _, _, _, ok := r.ToCanvas(c, r3.Add(cam.Pose.Position, r3.Vec{Z: 3})); ok {
		t.Error("point behind the camera was projected")
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m, err := NewModel("test", func() (*sim.World, frames.Source, error) {
		cfg := sim.DefaultWorldConfig()
		cfg.PickRadius = 0.3
		w, err := sim.NewWorld(cfg)
		if err != nil {
			return nil, nil, err
		}
		return w, frames.NewStatic(-1, cfg.Dt), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelKeys(t *testing.T) {
	m := newTestModel(t)

	m = send(m, key("g"))
	if m.World().Mode() != ground.ModeDetected {
		t.Errorf("g did not toggle ground, mode %v", m.World().Mode())
	}
	m = send(m, key("+"))
	if got := m.World().GravityMagnitude(); math.Abs(got-10.81) > 1e-12 {
		t.Errorf("gravity after + = %v", got)
	}

	m = send(m, key(" "))
	before := m.World().Frames()
	m = send(m, TickMsg{})
	if m.World().Frames() != before {
		t.Error("paused model stepped")
	}
	m = send(m, key(" "))
	m = send(m, TickMsg{})
	if m.World().Frames() != before+1 {
		t.Error("resumed model did not step")
	}

	m = send(m, key("r"))
	if m.World().Frames() != 0 || m.World().Mode() != ground.ModeFixed {
		t.Error("reset did not rebuild the world")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q did not quit")
	}
}

func particleCell(t *testing.T, m Model, e *scene.Entity) (int, int) {
	t.Helper()
	x, y, _, ok := m.renderer.ToCanvas(m.Canvas(), e.Position())
	if !ok {
		t.Fatal("particle not on screen")
	}
	return x/2 + canvasLeft, y/4 + canvasTop
}

func TestModelMouseDrag(t *testing.T) {
	m := newTestModel(t)
	e, ok := m.World().Scene().Lookup("particle-60")
	if !ok {
		t.Fatal("particle-60 missing")
	}
	col, row := particleCell(t, m, e)

	m = send(m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = send(m, TickMsg{})
	p, _ := e.AsParticle()
	if m.World().Manipulator().Active() != 1 || !p.Body.Grabbed {
		t.Fatalf("press did not grab particle-60 (active %d)", m.World().Manipulator().Active())
	}

	m = send(m, tea.MouseMsg{X: col, Y: row - 4, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = send(m, TickMsg{})
	if p.Body.Position.Y <= 1 {
		t.Errorf("drag up left particle at y=%v", p.Body.Position.Y)
	}

	m = send(m, tea.MouseMsg{X: col, Y: row - 4, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = send(m, TickMsg{})
	if m.World().Manipulator().Active() != 0 || p.Body.Grabbed {
		t.Error("release did not end the drag")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m = send(m, TickMsg{})
	if v := m.View(); v == "" {
		t.Error("empty view")
	}
}
