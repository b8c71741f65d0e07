package frames

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// RoomConfig parameterizes the synthetic room.
type RoomConfig struct {
	Seed    int64
	Frames  int // negative runs forever
	Dt      float64
	Jitter  float64 // max per-frame position noise in meters
	Dropout float64 // probability a plane has no pose in a frame
	Center  r3.Vec  // floor center
}

// Synthetic emulates plane detection in a small room: a floor, a table and
// one wall. Handles are fresh every frame.
type Synthetic struct {
	cfg RoomConfig
	rng *rand.Rand
	n   int
}

func NewSynthetic(cfg RoomConfig) *Synthetic {
	return &Synthetic{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

func rect(w, d float64) []r3.Vec {
	return []r3.Vec{
		{X: -w / 2, Z: -d / 2},
		{X: w / 2, Z: -d / 2},
		{X: w / 2, Z: d / 2},
		{X: -w / 2, Z: d / 2},
	}
}

type roomPlane struct {
	name    string
	offset  r3.Vec
	tilt    float64 // rotation about X
	polygon []r3.Vec
}

var room = []roomPlane{
	{name: "floor", offset: r3.Vec{}, polygon: rect(6, 6)},
	{name: "table", offset: r3.Vec{X: 1, Y: 0.7, Z: 0.5}, polygon: rect(1.2, 0.8)},
	{name: "wall", offset: r3.Vec{Y: 1.2, Z: -3}, tilt: math.Pi / 2, polygon: rect(6, 2.4)},
}

func (s *Synthetic) noise() float64 {
	return (s.rng.Float64()*2 - 1) * s.cfg.Jitter
}

func (s *Synthetic) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.cfg.Frames >= 0 && s.n >= s.cfg.Frames {
		return Frame{}, io.EOF
	}
	f := Frame{Index: s.n, Time: float64(s.n) * s.cfg.Dt}
	for _, rp := range room {
		handle := fmt.Sprintf("%s-%d", rp.name, s.n)
		pos := r3.Add(s.cfg.Center, rp.offset)
		pos = r3.Add(pos, r3.Vec{X: s.noise(), Y: s.noise(), Z: s.noise()})
		p := dynamo.Pose{Position: pos, Orientation: dynamo.Identity}
		if rp.tilt != 0 {
			p.Orientation = dynamo.AxisAngle(r3.Vec{X: 1}, rp.tilt)
		}
		var err error
		if s.cfg.Dropout > 0 && s.rng.Float64() < s.cfg.Dropout {
			err = f.AddPlane(handle, rp.polygon, nil)
		} else {
			err = f.AddPlane(handle, rp.polygon, &p)
		}
		if err != nil {
			return Frame{}, err
		}
	}
	s.n++
	return f, nil
}
