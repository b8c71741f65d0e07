package frames

import (
	"context"
	"io"

	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// StaticPlane is a plane that reappears unchanged on every frame.
type StaticPlane struct {
	Handle  string
	Pose    dynamo.Pose
	Polygon []r3.Vec
}

// Static repeats the same planes for a fixed number of frames. A negative
// count never ends.
type Static struct {
	frames int
	dt     float64
	planes []StaticPlane
	n      int
}

func NewStatic(frames int, dt float64, planes ...StaticPlane) *Static {
	return &Static{frames: frames, dt: dt, planes: planes}
}

func (s *Static) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.frames >= 0 && s.n >= s.frames {
		return Frame{}, io.EOF
	}
	f := Frame{Index: s.n, Time: float64(s.n) * s.dt}
	for _, p := range s.planes {
		pose := p.Pose
		if err := f.AddPlane(p.Handle, p.Polygon, &pose); err != nil {
			return Frame{}, err
		}
	}
	s.n++
	return f, nil
}
