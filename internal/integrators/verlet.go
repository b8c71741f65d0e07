package integrators

// Verlet is velocity Verlet. Under constant acceleration the two half kicks
// collapse and the update is exact: y += v*dt + a*dt²/2, v += a*dt.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(x State, a, dt float64) State {
	return State{
		Y: x.Y + x.V*dt + 0.5*a*dt*dt,
		V: x.V + a*dt,
	}
}
