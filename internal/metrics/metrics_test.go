package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/arfall/internal/frames"
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/sim"
)

func newWorld(t *testing.T, mutate func(*sim.WorldConfig)) *sim.World {
	t.Helper()
	cfg := sim.DefaultWorldConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := sim.NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestEnergyInitial(t *testing.T) {
	w := newWorld(t, nil)
	m := NewEnergy()
	m.Observe(w, sim.FrameStats{})
	if math.Abs(m.Value()-9.81) > 1e-12 {
		t.Errorf("expected energy 9.81 at rest at y=1, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("reset did not clear energy")
	}
}

func TestEnergyDecaysWithBounce(t *testing.T) {
	w := newWorld(t, nil)
	s := sim.New(w)
	s.AddMetric(NewEnergy())
	first, err := s.Run(context.Background(), frames.NewStatic(10, 0.016), sim.RunConfig{})
	if err != nil {
		t.Fatal(err)
	}
	later, err := s.Run(context.Background(), frames.NewStatic(300, 0.016), sim.RunConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if later.Metrics["energy"] >= first.Metrics["energy"] {
		t.Errorf("energy did not decay: %v then %v", first.Metrics["energy"], later.Metrics["energy"])
	}
}

func TestSettleMetrics(t *testing.T) {
	tests := []struct {
		name        string
		restitution physics.Restitution
	}{
		{"stick", physics.Stick()},
		{"bounce", physics.Bounce()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t, func(c *sim.WorldConfig) { c.Restitution = tt.restitution })
			settled, at, contacts := NewSettled(), NewSettleTime(), NewContacts()
			s := sim.New(w)
			s.AddMetric(settled)
			s.AddMetric(at)
			s.AddMetric(contacts)

			res, err := s.Run(context.Background(), frames.NewStatic(400, 0.016), sim.RunConfig{})
			if err != nil {
				t.Fatal(err)
			}
			if res.Metrics["settled"] != 1 {
				t.Errorf("settled = %v", res.Metrics["settled"])
			}
			if st := res.Metrics["settle_time"]; st <= 0 || st > 400*0.016 {
				t.Errorf("settle time = %v", st)
			}
			if res.Metrics["contacts"] < 64 {
				t.Errorf("contacts = %v", res.Metrics["contacts"])
			}
		})
	}
}

func TestSettleTimeNever(t *testing.T) {
	w := newWorld(t, nil)
	m := NewSettleTime()
	m.Observe(w, sim.FrameStats{Time: 1})
	if m.Value() != -1 {
		t.Errorf("expected -1 before any contact, got %v", m.Value())
	}
}

func TestGrabs(t *testing.T) {
	g := NewGrabs()
	g.Observe(nil, sim.FrameStats{Grabs: 1})
	g.Observe(nil, sim.FrameStats{Grabs: 2})
	if g.Value() != 3 {
		t.Errorf("grabs = %v", g.Value())
	}
	g.Reset()
	if g.Value() != 0 {
		t.Error("reset did not clear grabs")
	}
}

func settleTime(t *testing.T, r physics.Restitution, frameCount int) (float64, float64) {
	t.Helper()
	w := newWorld(t, func(c *sim.WorldConfig) { c.Restitution = r })
	s := sim.New(w)
	s.AddMetric(NewSettleTime())
	s.AddMetric(NewSettled())
	res, err := s.Run(context.Background(), frames.NewStatic(frameCount, 0.016), sim.RunConfig{})
	if err != nil {
		t.Fatal(err)
	}
	return res.Metrics["settle_time"], res.Metrics["settled"]
}

func TestBounceSettlesAfterStick(t *testing.T) {
	stick, _ := settleTime(t, physics.Stick(), 200)
	bounce, _ := settleTime(t, physics.Bounce(), 200)
	if stick <= 0 || bounce <= stick {
		t.Errorf("settle_time stick=%v bounce=%v, want 0 < stick < bounce", stick, bounce)
	}
	if math.Abs(stick-27*0.016) > 1e-9 {
		t.Errorf("stick settle_time = %v, want the first landing at %v", stick, 27*0.016)
	}

	lively, err := physics.NewRestitution(-0.9)
	if err != nil {
		t.Fatal(err)
	}
	at, settled := settleTime(t, lively, 200)
	if at != -1 || settled != 0 {
		t.Errorf("restitution -0.9 after 200 frames: settle_time=%v settled=%v, want -1 and 0", at, settled)
	}
}
