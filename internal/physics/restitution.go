package physics

import (
	"fmt"

	"github.com/san-kum/arfall/internal/dynamo"
)

// DefaultBounce matches the damped bounce of the reference scene.
const DefaultBounce = -0.4

// Restitution is the floor contact policy. A negative coefficient reverses
// and damps the vertical velocity; zero sticks the particle to the floor.
type Restitution struct {
	coeff float64
}

// NewRestitution accepts coefficients in [-1, 0].
func NewRestitution(coeff float64) (Restitution, error) {
	if !dynamo.FiniteScalar(coeff) || coeff > 0 || coeff < -1 {
		return Restitution{}, fmt.Errorf("%w: restitution %v not in [-1, 0]", dynamo.ErrParameterBounds, coeff)
	}
	return Restitution{coeff: coeff}, nil
}

// Bounce returns the default damped bounce policy.
func Bounce() Restitution {
	return Restitution{coeff: DefaultBounce}
}

// Stick returns the policy that zeroes velocity on contact.
func Stick() Restitution {
	return Restitution{}
}

func (r Restitution) Coefficient() float64 { return r.coeff }

func (r Restitution) Sticks() bool { return r.coeff == 0 }

// Apply returns the post-contact velocity.
func (r Restitution) Apply(v float64) float64 {
	if r.coeff == 0 {
		return 0
	}
	return v * r.coeff
}

func (r Restitution) String() string {
	if r.Sticks() {
		return "stick"
	}
	return fmt.Sprintf("bounce(%.2f)", r.coeff)
}
