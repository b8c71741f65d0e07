package integrators

import (
	"math"
	"testing"
)

const g = -9.81

func TestSemiImplicitStep(t *testing.T) {
	integ := NewSemiImplicit()
	x := integ.Step(State{Y: 1, V: 0}, g, 0.016)

	if math.Abs(x.V-(-0.15696)) > 1e-12 {
		t.Errorf("velocity = %.8f, want -0.15696", x.V)
	}
	if math.Abs(x.Y-0.99748864) > 1e-12 {
		t.Errorf("position = %.8f, want 0.99748864", x.Y)
	}
}

func TestSemiImplicitRecurrence(t *testing.T) {
	integ := NewSemiImplicit()
	dt := 0.016
	x := State{Y: 3, V: 0.4}

	for i := 0; i < 200; i++ {
		next := integ.Step(x, g, dt)
		wantV := x.V + g*dt
		wantY := x.Y + wantV*dt
		if next.V != wantV || next.Y != wantY {
			t.Fatalf("step %d: got (%v, %v), want (%v, %v)", i, next.Y, next.V, wantY, wantV)
		}
		x = next
	}
}

func TestEulerUsesOldVelocity(t *testing.T) {
	x := NewEuler().Step(State{Y: 1, V: 2}, g, 0.1)
	if math.Abs(x.Y-1.2) > 1e-15 {
		t.Errorf("position = %v, want 1.2", x.Y)
	}
	if math.Abs(x.V-(2+g*0.1)) > 1e-15 {
		t.Errorf("velocity = %v", x.V)
	}
}

func TestVerletExactForConstantAcceleration(t *testing.T) {
	integ := NewVerlet()
	dt := 0.01
	x := State{Y: 10, V: 0}
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(x, g, dt)
	}

	tt := float64(steps) * dt
	wantY := 10 + 0.5*g*tt*tt
	if math.Abs(x.Y-wantY) > 1e-9 {
		t.Errorf("position error too large: got %.9f, expected %.9f", x.Y, wantY)
	}
	if math.Abs(x.V-g*tt) > 1e-9 {
		t.Errorf("velocity error too large: got %.9f, expected %.9f", x.V, g*tt)
	}
}

func TestIntegratorsAgreeOnVelocity(t *testing.T) {
	integs := map[string]Integrator{
		"semi_implicit": NewSemiImplicit(),
		"euler":         NewEuler(),
		"verlet":        NewVerlet(),
	}
	for name, integ := range integs {
		x := integ.Step(State{Y: 0, V: 1}, g, 0.02)
		if math.Abs(x.V-(1+g*0.02)) > 1e-15 {
			t.Errorf("%s: velocity = %v", name, x.V)
		}
	}
}
