package ui

import (
	"fmt"
	"math"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

const TutorialText = "• WASD to move camera\n• Use mouse or controller\n   to drag and drop\n• Squeeze to switch AR/VR"

// GravityControl is the part of the world the panel adjusts. Magnitudes are
// positive; the world keeps the sign.
type GravityControl interface {
	GravityMagnitude() float64
	SetGravityMagnitude(m float64)
}

// Panel is the gravity board with its two buttons plus the tutorial board.
type Panel struct {
	Root     *scene.Entity
	Board    *scene.Entity
	Plus     *scene.Entity
	Minus    *scene.Entity
	Tutorial *scene.Entity

	control GravityControl
	font    *Font
}

// GravityText formats a gravity magnitude the way the board shows it.
func GravityText(m float64) string {
	return fmt.Sprintf("g = %.1f", m)
}

func control(name string, parent *scene.Entity, pos r3.Vec, u *scene.UIControl) *scene.Entity {
	return &scene.Entity{
		Name:      name,
		Parent:    parent,
		Transform: dynamo.Pose{Position: pos, Orientation: dynamo.Identity},
		Payload:   u,
	}
}

// fit widens a board so its text fits with a margin.
func (p *Panel) fit(u *scene.UIControl, size float64) {
	if p.font == nil {
		return
	}
	u.Size.X = math.Max(u.Size.X, p.font.Measure(u.Text, size)+0.2)
}

// Build adds the panel to s at pose and wires the buttons to gc.
func Build(s *scene.Scene, gc GravityControl, font *Font, pose dynamo.Pose) *Panel {
	p := &Panel{control: gc, font: font}

	p.Root = s.Add(&scene.Entity{Name: "panel", Transform: pose, Payload: &scene.StaticProp{}})

	board := &scene.UIControl{Role: scene.RoleBoard, Size: r3.Vec{X: 2, Y: 0.8, Z: 0.05}, Text: GravityText(gc.GravityMagnitude())}
	p.fit(board, 0.2)
	p.Board = s.Add(control("board", p.Root, r3.Vec{}, board))

	tutorial := &scene.UIControl{Role: scene.RoleBoard, Size: r3.Vec{X: 3, Y: 1.5, Z: 0.05}, Text: TutorialText}
	p.fit(tutorial, 0.15)
	p.Tutorial = control("tutorial", p.Root, r3.Vec{X: -4, Z: -1}, tutorial)
	p.Tutorial.Transform.Orientation = dynamo.AxisAngle(dynamo.Up, math.Pi/8)
	s.Add(p.Tutorial)

	p.Plus = s.Add(control("addButton", p.Root, r3.Vec{X: 1.4}, &scene.UIControl{
		Role:    scene.RoleButton,
		Size:    r3.Vec{X: 0.5, Y: 0.5, Z: 0.05},
		Text:    "+",
		OnClick: func(scene.ClickContext) { p.Increase() },
	}))
	p.Minus = s.Add(control("minusButton", p.Root, r3.Vec{X: -1.4}, &scene.UIControl{
		Role:    scene.RoleButton,
		Size:    r3.Vec{X: 0.5, Y: 0.5, Z: 0.05},
		Text:    "-",
		OnClick: func(scene.ClickContext) { p.Decrease() },
	}))
	return p
}

// Increase adds one to the gravity magnitude.
func (p *Panel) Increase() {
	m := p.control.GravityMagnitude() + 1
	p.control.SetGravityMagnitude(m)
	p.SetText(GravityText(m))
}

// Decrease subtracts one while the magnitude is above one.
func (p *Panel) Decrease() bool {
	m := p.control.GravityMagnitude()
	if m <= 1 {
		return false
	}
	m--
	p.control.SetGravityMagnitude(m)
	p.SetText(GravityText(m))
	return true
}

// SetText updates the gravity board.
func (p *Panel) SetText(s string) {
	if u, ok := p.Board.AsUIControl(); ok {
		u.SetText(s)
	}
}

// Text returns the gravity board text.
func (p *Panel) Text() string {
	if u, ok := p.Board.AsUIControl(); ok {
		return u.Text
	}
	return ""
}

// Refresh re-reads the gravity magnitude after an outside change.
func (p *Panel) Refresh() {
	p.SetText(GravityText(p.control.GravityMagnitude()))
}

// Remove takes every panel entity out of s.
func (p *Panel) Remove(s *scene.Scene) {
	for _, e := range []*scene.Entity{p.Minus, p.Plus, p.Tutorial, p.Board, p.Root} {
		s.Remove(e.ID)
	}
}
