package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/integrators"
	"gonum.org/v1/gonum/spatial/r3"
)

// HeightFunc reports the floor height at (x, z). ok is false where there is
// no floor.
type HeightFunc func(x, z float64) (h float64, ok bool)

// StepStats summarizes one field step.
type StepStats struct {
	Integrated int
	Skipped    int
	Contacts   int
	Resting    int
}

// Field owns the particle grid. The particle slice never grows after
// Create, so pointers returned by Particle stay valid for the field's life.
type Field struct {
	particles   []Particle
	rows, cols  int
	spacing     float64
	centerX     float64
	centerZ     float64
	radius      float64
	color       dynamo.Color
	integrator  integrators.Integrator
	restitution Restitution
}

type Option func(*Field)

func WithIntegrator(i integrators.Integrator) Option {
	return func(f *Field) { f.integrator = i }
}

func WithRestitution(r Restitution) Option {
	return func(f *Field) { f.restitution = r }
}

// WithCenter places the grid center at (x, z).
func WithCenter(x, z float64) Option {
	return func(f *Field) { f.centerX, f.centerZ = x, z }
}

func WithRadius(r float64) Option {
	return func(f *Field) { f.radius = r }
}

func WithColor(c dynamo.Color) Option {
	return func(f *Field) { f.color = c }
}

// Create lays out rows*cols particles on a grid centered on the field center,
// all at initialHeight with zero velocity.
func Create(rows, cols int, spacing, initialHeight float64, opts ...Option) (*Field, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", dynamo.ErrParameterBounds, rows, cols)
	}
	if !dynamo.FiniteScalar(spacing) || spacing < 0 {
		return nil, fmt.Errorf("%w: spacing %v", dynamo.ErrParameterBounds, spacing)
	}
	if !dynamo.FiniteScalar(initialHeight) {
		return nil, fmt.Errorf("%w: initial height %v", dynamo.ErrParameterBounds, initialHeight)
	}

	f := &Field{
		rows:        rows,
		cols:        cols,
		spacing:     spacing,
		radius:      DefaultRadius,
		color:       DefaultColor,
		integrator:  integrators.NewSemiImplicit(),
		restitution: Bounce(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if !dynamo.FiniteScalar(f.radius) || f.radius < 0 {
		return nil, fmt.Errorf("%w: radius %v", dynamo.ErrParameterBounds, f.radius)
	}

	halfX := float64(cols-1) * spacing / 2
	halfZ := float64(rows-1) * spacing / 2
	f.particles = make([]Particle, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			f.particles = append(f.particles, Particle{
				Position: r3.Vec{
					X: f.centerX + float64(c)*spacing - halfX,
					Y: initialHeight,
					Z: f.centerZ + float64(r)*spacing - halfZ,
				},
				Offset:    f.radius,
				BaseColor: f.color,
				Color:     f.color,
			})
		}
	}
	return f, nil
}

func (f *Field) Len() int { return len(f.particles) }

func (f *Field) Rows() int { return f.rows }

func (f *Field) Cols() int { return f.cols }

func (f *Field) Restitution() Restitution { return f.restitution }

// Particle returns the particle with the given id, or nil when out of range.
func (f *Field) Particle(id ID) *Particle {
	if id < 0 || int(id) >= len(f.particles) {
		return nil
	}
	return &f.particles[id]
}

// Each calls fn for every particle in id order.
func (f *Field) Each(fn func(id ID, p *Particle)) {
	for i := range f.particles {
		fn(ID(i), &f.particles[i])
	}
}

// Heights returns the current height of every particle in id order.
func (f *Field) Heights() []float64 {
	out := make([]float64, len(f.particles))
	for i := range f.particles {
		out[i] = f.particles[i].Position.Y
	}
	return out
}

// Step integrates every particle not in excluded and resolves floor contact.
// A nil height function means there is no floor anywhere. A contacting
// particle rests when its rebound speed is at most one step of gravity,
// |gravity|*dt.
func (f *Field) Step(dt, gravity float64, height HeightFunc, excluded IDSet) (StepStats, error) {
	var stats StepStats
	if !dynamo.FiniteScalar(dt) || dt <= 0 {
		return stats, fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrParameterBounds, dt)
	}
	if !dynamo.FiniteScalar(gravity) {
		return stats, fmt.Errorf("%w: gravity %v", dynamo.ErrParameterBounds, gravity)
	}

	restSpeed := math.Abs(gravity) * dt
	for i := range f.particles {
		p := &f.particles[i]
		if excluded.Has(ID(i)) {
			p.Resting = false
			stats.Skipped++
			continue
		}

		next := f.integrator.Step(integrators.State{Y: p.Position.Y, V: p.Velocity}, gravity, dt)
		if !dynamo.FiniteScalar(next.Y) || !dynamo.FiniteScalar(next.V) {
			return stats, &dynamo.SimulationError{Wrapped: fmt.Errorf("particle %d: %w", i, dynamo.ErrInvalidState)}
		}
		p.Position.Y, p.Velocity = next.Y, next.V
		p.Resting = false
		stats.Integrated++

		if height == nil {
			continue
		}
		h, ok := height(p.Position.X, p.Position.Z)
		if !ok || !dynamo.FiniteScalar(h) {
			continue
		}
		floor := h + p.Offset
		if p.Position.Y <= floor {
			p.Position.Y = floor
			p.Velocity = f.restitution.Apply(p.Velocity)
			p.Resting = math.Abs(p.Velocity) <= restSpeed
			stats.Contacts++
			if p.Resting {
				stats.Resting++
			}
		}
	}
	return stats, nil
}

// ResetHeight puts every particle at height h with zero velocity.
func (f *Field) ResetHeight(h float64) {
	for i := range f.particles {
		f.particles[i].Position.Y = h
		f.particles[i].Velocity = 0
		f.particles[i].Resting = false
	}
}
