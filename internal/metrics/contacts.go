package metrics

import (
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/sim"
)

// Contacts counts floor contact events over the run.
type Contacts struct {
	total int
}

func NewContacts() *Contacts { return &Contacts{} }

func (c *Contacts) Name() string { return "contacts" }

func (c *Contacts) Observe(w *sim.World, s sim.FrameStats) { c.total += s.Contacts }

func (c *Contacts) Value() float64 { return float64(c.total) }

func (c *Contacts) Reset() { c.total = 0 }

func restingFraction(f *physics.Field) float64 {
	if f.Len() == 0 {
		return 0
	}
	n := 0
	f.Each(func(_ physics.ID, p *physics.Particle) {
		if p.Resting {
			n++
		}
	})
	return float64(n) / float64(f.Len())
}

// Settled is the fraction of particles resting on the floor on the last
// observed frame. A particle still bouncing does not count.
type Settled struct {
	last float64
}

func NewSettled() *Settled { return &Settled{} }

func (s *Settled) Name() string { return "settled" }

func (s *Settled) Observe(w *sim.World, _ sim.FrameStats) {
	s.last = restingFraction(w.Field())
}

func (s *Settled) Value() float64 { return s.last }

func (s *Settled) Reset() { s.last = 0 }

// SettleTime is the time of the first frame on which every particle rests,
// or -1 if that never happened.
type SettleTime struct {
	at    float64
	found bool
}

func NewSettleTime() *SettleTime { return &SettleTime{} }

func (s *SettleTime) Name() string { return "settle_time" }

func (s *SettleTime) Observe(w *sim.World, st sim.FrameStats) {
	if s.found {
		return
	}
	if restingFraction(w.Field()) == 1 {
		s.at, s.found = st.Time, true
	}
}

func (s *SettleTime) Value() float64 {
	if !s.found {
		return -1
	}
	return s.at
}

func (s *SettleTime) Reset() { s.at, s.found = 0, false }

// Grabs counts drags started during the run.
type Grabs struct {
	total int
}

func NewGrabs() *Grabs { return &Grabs{} }

func (g *Grabs) Name() string { return "grabs" }

func (g *Grabs) Observe(w *sim.World, s sim.FrameStats) { g.total += s.Grabs }

func (g *Grabs) Value() float64 { return float64(g.total) }

func (g *Grabs) Reset() { g.total = 0 }
