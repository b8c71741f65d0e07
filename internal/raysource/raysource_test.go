package raysource

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func phases(events []Event) []Phase {
	out := make([]Phase, len(events))
	for i, e := range events {
		out[i] = e.Phase
	}
	return out
}

func TestScreenNDC(t *testing.T) {
	s := NewScreen(NewCamera(r3.Vec{}), 800, 600)
	tests := []struct {
		px, py float64
		want   [2]float64
	}{
		{400, 300, [2]float64{0, 0}},
		{0, 0, [2]float64{-1, 1}},
		{800, 600, [2]float64{1, -1}},
		{600, 150, [2]float64{0.5, 0.5}},
	}
	for _, tt := range tests {
		x, y := s.NDC(tt.px, tt.py)
		if diff := cmp.Diff(tt.want, [2]float64{x, y}, approx); diff != "" {
			t.Errorf("NDC(%v, %v) mismatch (-want +got):\n%s", tt.px, tt.py, diff)
		}
	}
}

func TestCameraRayCenter(t *testing.T) {
	cam := NewCamera(r3.Vec{Y: 1.6, Z: 2})
	r := cam.Ray(0, 0, 4.0/3)
	want := dynamo.Ray{Origin: r3.Vec{Y: 1.6, Z: 2}, Direction: r3.Vec{Z: -1}}
	if diff := cmp.Diff(want, r, approx); diff != "" {
		t.Errorf("center ray mismatch (-want +got):\n%s", diff)
	}
}

func TestCameraProjectInvertsRay(t *testing.T) {
	cam := NewCamera(r3.Vec{X: 0.5, Y: 1.6, Z: 2})
	cam.Pose.Orientation = dynamo.AxisAngle(dynamo.Up, 0.3)
	const aspect = 1.5

	for _, ndc := range [][2]float64{{0, 0}, {0.4, -0.2}, {-0.9, 0.7}} {
		p := cam.Ray(ndc[0], ndc[1], aspect).At(3)
		x, y, _, visible := cam.Project(p, aspect)
		if !visible {
			t.Fatalf("point for ndc %v not visible", ndc)
		}
		if diff := cmp.Diff(ndc, [2]float64{x, y}, approx); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}

	if _, _, _, visible := cam.Project(r3.Vec{X: 0.5, Y: 1.6, Z: 5}, aspect); visible {
		t.Error("point behind camera reported visible")
	}
}

func TestScreenEventSequence(t *testing.T) {
	s := NewScreen(NewCamera(r3.Vec{}), 100, 100)

	s.PointerMove(10, 10)
	s.PointerUp(10, 10)
	if got := s.Drain(); len(got) != 0 {
		t.Fatalf("hover produced events: %v", phases(got))
	}
	if _, ok := s.CurrentRay(); !ok {
		t.Error("hover should still update the current ray")
	}

	s.PointerDown(50, 50)
	s.PointerMove(60, 50)
	s.PointerMove(70, 50)
	s.PointerUp(70, 50)
	got := s.Drain()
	if diff := cmp.Diff([]Phase{Begin, Move, Move, End}, phases(got)); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
	for _, e := range got {
		if e.Source != Pointer {
			t.Errorf("event from %v", e.Source)
		}
	}
	if len(s.Drain()) != 0 {
		t.Error("drain did not clear the queue")
	}
}

func TestScreenCancel(t *testing.T) {
	s := NewScreen(NewCamera(r3.Vec{}), 100, 100)
	s.Cancel()
	if len(s.Drain()) != 0 {
		t.Error("cancel without press produced an event")
	}
	s.PointerDown(1, 1)
	s.Cancel()
	if diff := cmp.Diff([]Phase{Begin, End}, phases(s.Drain())); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
	if s.Pressed() {
		t.Error("still pressed after cancel")
	}
}

func TestSpatialRayFollowsPose(t *testing.T) {
	s := NewSpatial()
	if _, ok := s.CurrentRay(); ok {
		t.Error("untracked controller reported a ray")
	}

	s.UpdatePose(dynamo.Pose{Position: r3.Vec{X: 1, Y: 1.2}, Orientation: dynamo.AxisAngle(dynamo.Up, math.Pi/2)})
	r, ok := s.CurrentRay()
	if !ok {
		t.Fatal("tracked controller has no ray")
	}
	want := dynamo.Ray{Origin: r3.Vec{X: 1, Y: 1.2}, Direction: r3.Vec{X: -1}}
	if diff := cmp.Diff(want, r, approx); diff != "" {
		t.Errorf("controller ray mismatch (-want +got):\n%s", diff)
	}
}

func TestSpatialEventSequence(t *testing.T) {
	s := NewSpatial()
	s.SelectStart()
	if len(s.Drain()) != 0 {
		t.Fatal("select before tracking produced an event")
	}

	s.UpdatePose(dynamo.IdentityPose())
	s.SelectStart()
	s.UpdatePose(dynamo.Pose{Position: r3.Vec{Y: 0.1}, Orientation: dynamo.Identity})
	s.Squeeze()
	s.EndSession()
	s.SelectEnd()

	got := s.Drain()
	if diff := cmp.Diff([]Phase{Begin, Move, Command, End}, phases(got)); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
	if got[2].Command != ToggleGround {
		t.Errorf("squeeze command = %v", got[2].Command)
	}
	if _, ok := s.CurrentRay(); ok {
		t.Error("ray survives end of session")
	}
}
