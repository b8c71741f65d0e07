package integrators

// State is the vertical state of one point mass.
type State struct {
	Y float64
	V float64
}

// Integrator advances a vertical state under constant acceleration a.
type Integrator interface {
	Step(x State, a, dt float64) State
}

// SemiImplicit is symplectic Euler: velocity first, then position with the
// updated velocity. This is the default integrator for particle fields.
type SemiImplicit struct{}

func NewSemiImplicit() *SemiImplicit {
	return &SemiImplicit{}
}

func (s *SemiImplicit) Step(x State, a, dt float64) State {
	v := x.V + a*dt
	return State{Y: x.Y + v*dt, V: v}
}

// Euler is explicit forward Euler: position moves with the old velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(x State, a, dt float64) State {
	return State{Y: x.Y + x.V*dt, V: x.V + a*dt}
}
