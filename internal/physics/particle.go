package physics

import (
	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultRadius = 0.05
	DefaultColor  = dynamo.ColorRed
)

// ID addresses a particle inside its field. IDs are grid indices, row major.
type ID int

// Particle is a point mass with vertical-only velocity.
type Particle struct {
	Position  r3.Vec
	Velocity  float64
	Offset    float64 // collision radius above the floor
	BaseColor dynamo.Color
	Color     dynamo.Color
	Grabbed   bool
	Resting   bool // on the floor after the last step with a rebound of at most one gravity step
}

// Highlight sets the display color without touching the base color.
func (p *Particle) Highlight(c dynamo.Color) {
	p.Color = c
}

// ResetColor restores the base color.
func (p *Particle) ResetColor() {
	p.Color = p.BaseColor
}

// IDSet is the set of particles excluded from integration.
// The zero value is ready to read but not to write.
type IDSet map[ID]struct{}

func NewIDSet() IDSet {
	return make(IDSet)
}

func (s IDSet) Add(id ID)    { s[id] = struct{}{} }
func (s IDSet) Remove(id ID) { delete(s, id) }

func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int { return len(s) }
