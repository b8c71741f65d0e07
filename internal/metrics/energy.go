package metrics

import (
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/sim"
)

// Energy is the mean mechanical energy per unit-mass particle, averaged
// over all observed frames. Potential energy is measured from y = 0.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *sim.World, s sim.FrameStats) {
	f := w.Field()
	if f.Len() == 0 {
		return
	}
	g := w.GravityMagnitude()
	var sum float64
	f.Each(func(_ physics.ID, p *physics.Particle) {
		sum += 0.5*p.Velocity*p.Velocity + g*p.Position.Y
	})
	e.totalEnergy += sum / float64(f.Len())
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}
