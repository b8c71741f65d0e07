package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Canonical axes.
var (
	Up      = r3.Vec{Y: 1}
	Forward = r3.Vec{Z: -1}
)

// Identity is the rotation that leaves every vector unchanged.
var Identity = r3.Rotation{Real: 1}

// quaternions within this distance of unit length are used as given
const unitTolerance = 1e-9

func FiniteScalar(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func Finite(v r3.Vec) bool {
	return FiniteScalar(v.X) && FiniteScalar(v.Y) && FiniteScalar(v.Z)
}

// Ray is a half-line in world space. Direction is unit length unless the ray
// was built from a zero vector.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// NewRay normalizes direction. A zero direction is kept as is and the ray
// reports itself invalid.
func NewRay(origin, direction r3.Vec) Ray {
	n := r3.Norm(direction)
	if n == 0 || n == 1 {
		return Ray{Origin: origin, Direction: direction}
	}
	return Ray{Origin: origin, Direction: r3.Scale(1/n, direction)}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

func (r Ray) Valid() bool {
	return Finite(r.Origin) && Finite(r.Direction) && r3.Norm2(r.Direction) > 0
}

// Pose is a rigid transform: rotate by Orientation, then translate by Position.
type Pose struct {
	Position    r3.Vec
	Orientation r3.Rotation
}

// NewPose builds a pose from a position and an (x, y, z, w) quaternion. The
// quaternion is normalized; an all-zero quaternion means identity.
func NewPose(position r3.Vec, x, y, z, w float64) Pose {
	return Pose{Position: position, Orientation: NormalizeRotation(quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z})}
}

// IdentityPose is the pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: Identity}
}

// NormalizeRotation scales q to unit length.
func NormalizeRotation(q quat.Number) r3.Rotation {
	n := quat.Abs(q)
	if n == 0 || !FiniteScalar(n) {
		return Identity
	}
	if math.Abs(n-1) <= unitTolerance {
		return r3.Rotation(q)
	}
	return r3.Rotation(quat.Scale(1/n, q))
}

// AxisAngle returns the rotation of angle radians about axis.
func AxisAngle(axis r3.Vec, angle float64) r3.Rotation {
	return r3.NewRotation(angle, axis)
}

// rotation is the unit form of Orientation, so poses built from literal
// quaternions still rotate rigidly.
func (p Pose) rotation() r3.Rotation {
	return NormalizeRotation(quat.Number(p.Orientation))
}

// Rotate applies only the orientation to v.
func (p Pose) Rotate(v r3.Vec) r3.Vec {
	return p.rotation().Rotate(v)
}

// RotateInverse undoes the orientation on v.
func (p Pose) RotateInverse(v r3.Vec) r3.Vec {
	return Conj(p.rotation()).Rotate(v)
}

// Apply maps a point from the pose's local frame into world space.
func (p Pose) Apply(v r3.Vec) r3.Vec {
	return r3.Add(p.Rotate(v), p.Position)
}

// ApplyInverse maps a world-space point into the pose's local frame.
func (p Pose) ApplyInverse(v r3.Vec) r3.Vec {
	return Conj(p.rotation()).Rotate(r3.Sub(v, p.Position))
}

// Inverse returns the pose that undoes p.
func (p Pose) Inverse() Pose {
	inv := Conj(p.rotation())
	return Pose{Position: r3.Scale(-1, inv.Rotate(p.Position)), Orientation: inv}
}

// Compose returns the pose that applies q first and then p.
func (p Pose) Compose(q Pose) Pose {
	return Pose{
		Position:    p.Apply(q.Position),
		Orientation: r3.Rotation(quat.Mul(quat.Number(p.rotation()), quat.Number(q.rotation()))),
	}
}

// Conj returns the conjugate rotation, which is the inverse for unit quaternions.
func Conj(r r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Conj(quat.Number(r)))
}

// Color is a 24-bit 0xRRGGBB value.
type Color uint32

const (
	ColorRed   Color = 0xff0000
	ColorGreen Color = 0x00ff00
	ColorWhite Color = 0xffffff
)

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// RGB splits the color into channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}
