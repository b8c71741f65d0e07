package ground

import (
	"log/slog"
	"math"

	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinVertical is the smallest |normal.y| a plane may have and still act as
// a floor.
const MinVertical = 0.001

// Plane is one detected surface for the current frame. Polygon vertices are
// in the plane's local frame; only their X and Z are used.
type Plane struct {
	Handle  string
	Pose    dynamo.Pose
	Polygon []r3.Vec
}

// Normal returns the world-space plane normal.
func (p Plane) Normal() r3.Vec {
	return p.Pose.Rotate(dynamo.Up)
}

type qualified struct {
	plane  Plane
	normal r3.Vec
	d      float64
}

// Detected answers height queries from the current frame's plane list.
type Detected struct {
	query   QueryMode
	overlap Overlap
	logger  *slog.Logger

	planes    []Plane
	qualified []qualified
}

type DetectedOption func(*Detected)

func WithQueryMode(q QueryMode) DetectedOption {
	return func(d *Detected) { d.query = q }
}

func WithOverlap(o Overlap) DetectedOption {
	return func(d *Detected) { d.overlap = o }
}

func WithLogger(l *slog.Logger) DetectedOption {
	return func(d *Detected) { d.logger = l }
}

func NewDetected(planes []Plane, opts ...DetectedOption) *Detected {
	d := &Detected{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	d.SetPlanes(planes)
	return d
}

func (d *Detected) QueryMode() QueryMode { return d.query }

func (d *Detected) Overlap() Overlap { return d.overlap }

// SetPlanes replaces the whole plane list. Each frame's list is complete;
// nothing carries over from earlier frames.
func (d *Detected) SetPlanes(planes []Plane) {
	d.planes = planes
	d.qualified = d.qualified[:0]
	for _, p := range planes {
		if len(p.Polygon) < 3 {
			d.logger.Debug("plane_skipped", "handle", p.Handle, "reason", "degenerate polygon", "vertices", len(p.Polygon))
			continue
		}
		if !dynamo.Finite(p.Pose.Position) {
			d.logger.Debug("plane_skipped", "handle", p.Handle, "reason", "non-finite pose")
			continue
		}
		n := p.Normal()
		if math.Abs(n.Y) < MinVertical {
			d.logger.Debug("plane_skipped", "handle", p.Handle, "reason", "too vertical", "normal_y", n.Y)
			continue
		}
		d.qualified = append(d.qualified, qualified{
			plane:  p,
			normal: n,
			d:      -r3.Dot(n, p.Pose.Position),
		})
	}
}

// Planes returns the list given to the last SetPlanes.
func (d *Detected) Planes() []Plane { return d.planes }

// Qualifying reports how many planes of the current list can yield a height.
func (d *Detected) Qualifying() int { return len(d.qualified) }

func (d *Detected) Height(x, z float64) (float64, bool) {
	if d.query == Lowest {
		return d.lowest()
	}
	return d.contained(x, z)
}

func (d *Detected) lowest() (float64, bool) {
	if len(d.qualified) == 0 {
		return 0, false
	}
	h := math.Inf(1)
	for _, q := range d.qualified {
		h = math.Min(h, q.plane.Pose.Position.Y)
	}
	return h, true
}

func (d *Detected) contained(x, z float64) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, q := range d.qualified {
		local := q.plane.Pose.ApplyInverse(r3.Vec{X: x, Z: z})
		if !Contains(q.plane.Polygon, local.X, local.Z) {
			continue
		}
		h := -(q.normal.X*x + q.normal.Z*z + q.d) / q.normal.Y
		if d.overlap == First {
			return h, true
		}
		if !found || h < best {
			best, found = h, true
		}
	}
	return best, found
}

// Contains runs the even-odd crossing test of (x, z) against the XZ
// projection of polygon. Polygons with fewer than 3 vertices contain nothing.
func Contains(polygon []r3.Vec, x, z float64) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := polygon[i], polygon[j]
		if (a.Z > z) != (b.Z > z) && x < (b.X-a.X)*(z-a.Z)/(b.Z-a.Z)+a.X {
			inside = !inside
		}
	}
	return inside
}
