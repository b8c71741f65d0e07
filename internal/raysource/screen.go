package raysource

import (
	"github.com/san-kum/arfall/internal/dynamo"
)

// Screen turns pixel pointer input into camera rays.
type Screen struct {
	camera        *Camera
	width, height float64

	pressed bool
	hasRay  bool
	ray     dynamo.Ray
	q       queue
}

func NewScreen(camera *Camera, width, height int) *Screen {
	s := &Screen{camera: camera}
	s.Resize(width, height)
	return s
}

func (s *Screen) ID() SourceID { return Pointer }

func (s *Screen) Camera() *Camera { return s.camera }

// Resize updates the viewport. Non-positive sizes are clamped to one pixel.
func (s *Screen) Resize(width, height int) {
	s.width, s.height = float64(max(width, 1)), float64(max(height, 1))
}

// Aspect is the viewport width over height.
func (s *Screen) Aspect() float64 { return s.width / s.height }

// NDC maps a pixel position to normalized device coordinates.
func (s *Screen) NDC(px, py float64) (x, y float64) {
	return px/s.width*2 - 1, -(py/s.height)*2 + 1
}

func (s *Screen) rayAt(px, py float64) dynamo.Ray {
	x, y := s.NDC(px, py)
	s.ray = s.camera.Ray(x, y, s.width/s.height)
	s.hasRay = true
	return s.ray
}

func (s *Screen) PointerDown(px, py float64) {
	s.pressed = true
	s.q.push(Event{Source: Pointer, Phase: Begin, Ray: s.rayAt(px, py)})
}

// PointerMove only updates the current ray unless a button is held.
func (s *Screen) PointerMove(px, py float64) {
	r := s.rayAt(px, py)
	if s.pressed {
		s.q.push(Event{Source: Pointer, Phase: Move, Ray: r})
	}
}

func (s *Screen) PointerUp(px, py float64) {
	r := s.rayAt(px, py)
	if !s.pressed {
		return
	}
	s.pressed = false
	s.q.push(Event{Source: Pointer, Phase: End, Ray: r})
}

// Cancel ends a press that will never see its release.
func (s *Screen) Cancel() {
	if !s.pressed {
		return
	}
	s.pressed = false
	s.q.push(Event{Source: Pointer, Phase: End, Ray: s.ray})
}

func (s *Screen) Pressed() bool { return s.pressed }

func (s *Screen) CurrentRay() (dynamo.Ray, bool) { return s.ray, s.hasRay }

func (s *Screen) Drain() []Event { return s.q.drain() }
