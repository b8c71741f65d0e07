package raysource

import (
	"math"

	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective camera looking down its local -Z axis.
type Camera struct {
	Pose dynamo.Pose
	FOV  float64 // vertical field of view in degrees
	Near float64
	Far  float64
}

func NewCamera(position r3.Vec) *Camera {
	return &Camera{
		Pose: dynamo.Pose{Position: position, Orientation: dynamo.Identity},
		FOV:  75,
		Near: 0.1,
		Far:  1000,
	}
}

func (c *Camera) halfHeight() float64 {
	return math.Tan(c.FOV * math.Pi / 360)
}

// Ray returns the world-space ray through normalized device coordinates
// (ndcX, ndcY), both in [-1, 1] with +Y up.
func (c *Camera) Ray(ndcX, ndcY, aspect float64) dynamo.Ray {
	h := c.halfHeight()
	local := r3.Vec{X: ndcX * h * aspect, Y: ndcY * h, Z: -1}
	return dynamo.NewRay(c.Pose.Position, c.Pose.Rotate(local))
}

// Project maps a world point to NDC. visible is false behind the near plane
// or beyond the far plane.
func (c *Camera) Project(p r3.Vec, aspect float64) (ndcX, ndcY, depth float64, visible bool) {
	local := c.Pose.ApplyInverse(p)
	depth = -local.Z
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	h := c.halfHeight()
	ndcX = local.X / (depth * h * aspect)
	ndcY = local.Y / (depth * h)
	return ndcX, ndcY, depth, ndcX >= -1 && ndcX <= 1 && ndcY >= -1 && ndcY <= 1
}

// Move translates the camera in its own frame.
func (c *Camera) Move(delta r3.Vec) {
	c.Pose.Position = r3.Add(c.Pose.Position, c.Pose.Rotate(delta))
}
