package scene

import (
	"math"

	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Hit is the nearest intersection of a ray with an interactive entity.
type Hit struct {
	Entity *Entity
	Point  r3.Vec
	T      float64
}

// hitSphere returns the smallest t in [tMin, tMax] where the ray meets the
// sphere. The ray direction must be unit length.
func hitSphere(ray dynamo.Ray, center r3.Vec, radius, tMin, tMax float64) (float64, bool) {
	oc := r3.Sub(ray.Origin, center)
	b := r3.Dot(oc, ray.Direction)
	c := r3.Norm2(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < tMin {
		t = -b + sq
	}
	if t < tMin || t > tMax {
		return 0, false
	}
	return t, true
}

// hitBox intersects the ray with a box of the given full size centered on
// pose. Slab test in the box's local frame.
func hitBox(ray dynamo.Ray, pose dynamo.Pose, size r3.Vec, tMin, tMax float64) (float64, bool) {
	o := pose.ApplyInverse(ray.Origin)
	d := pose.RotateInverse(ray.Direction)

	lo, hi := tMin, tMax
	axes := [3][3]float64{
		{o.X, d.X, size.X / 2},
		{o.Y, d.Y, size.Y / 2},
		{o.Z, d.Z, size.Z / 2},
	}
	for _, a := range axes {
		origin, dir, half := a[0], a[1], a[2]
		if math.Abs(dir) < 1e-12 {
			if origin < -half || origin > half {
				return 0, false
			}
			continue
		}
		t1 := (-half - origin) / dir
		t2 := (half - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		lo = math.Max(lo, t1)
		hi = math.Min(hi, t2)
		if lo > hi {
			return 0, false
		}
	}
	return lo, true
}
