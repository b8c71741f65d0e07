package frames

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/arfall/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// ScriptPlane is a plane entry of a scenario file. Orientation is an
// (x, y, z, w) quaternion; polygon points are local (x, z) pairs.
type ScriptPlane struct {
	Handle      string       `yaml:"handle"`
	Position    [3]float64   `yaml:"position"`
	Orientation []float64    `yaml:"orientation,omitempty"`
	Polygon     [][2]float64 `yaml:"polygon"`
	MissingPose bool         `yaml:"missing_pose,omitempty"`
}

// ScriptInput is a raw input entry. Controller poses use Position and
// Orientation.
type ScriptInput struct {
	Kind        string     `yaml:"kind"`
	X           float64    `yaml:"x,omitempty"`
	Y           float64    `yaml:"y,omitempty"`
	Position    [3]float64 `yaml:"position,omitempty"`
	Orientation []float64  `yaml:"orientation,omitempty"`
}

// ScriptFrame describes Repeat identical frames. Input fires on the first
// of them only.
type ScriptFrame struct {
	Repeat int           `yaml:"repeat,omitempty"`
	Planes []ScriptPlane `yaml:"planes,omitempty"`
	Input  []ScriptInput `yaml:"input,omitempty"`
}

// DefaultScriptDt is the frame spacing of a script that names no dt and is
// played without binding it to a world.
const DefaultScriptDt = 0.016

// Script is a scenario file. A zero Dt follows the world it is bound to.
type Script struct {
	Name   string        `yaml:"name"`
	Dt     float64       `yaml:"dt,omitempty"`
	Frames []ScriptFrame `yaml:"frames"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if !dynamo.FiniteScalar(s.Dt) || s.Dt < 0 {
		return nil, fmt.Errorf("%w: scenario dt %v", dynamo.ErrParameterBounds, s.Dt)
	}
	for i, f := range s.Frames {
		if f.Repeat < 0 {
			return nil, fmt.Errorf("%w: frame %d repeat %d", dynamo.ErrParameterBounds, i, f.Repeat)
		}
		seen := make(map[string]bool, len(f.Planes))
		for _, sp := range f.Planes {
			if seen[sp.Handle] {
				return nil, fmt.Errorf("%w: frame %d repeats plane handle %q", dynamo.ErrParameterBounds, i, sp.Handle)
			}
			seen[sp.Handle] = true
		}
		for _, in := range f.Input {
			if _, err := ParseInputKind(in.Kind); err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
		}
	}
	return s, nil
}

// Bind ties the script's frame times to a world stepping at dt. A script
// that names a different dt is rejected, since its times would drift from
// the simulated clock.
func (s *Script) Bind(dt float64) error {
	if !dynamo.FiniteScalar(dt) || dt <= 0 {
		return fmt.Errorf("%w: world dt %v", dynamo.ErrParameterBounds, dt)
	}
	if s.Dt != 0 && s.Dt != dt {
		return fmt.Errorf("%w: scenario dt %v differs from world dt %v", dynamo.ErrParameterBounds, s.Dt, dt)
	}
	s.Dt = dt
	return nil
}

// Len is the total number of frames the script yields.
func (s *Script) Len() int {
	n := 0
	for _, f := range s.Frames {
		n += max(f.Repeat, 1)
	}
	return n
}

func pose(pos [3]float64, q []float64) dynamo.Pose {
	p := r3.Vec{X: pos[0], Y: pos[1], Z: pos[2]}
	if len(q) != 4 {
		return dynamo.Pose{Position: p, Orientation: dynamo.Identity}
	}
	return dynamo.NewPose(p, q[0], q[1], q[2], q[3])
}

// Player walks a Script as a Source.
type Player struct {
	script *Script
	entry  int
	rep    int
	n      int
}

func (s *Script) Play() *Player {
	return &Player{script: s}
}

func (p *Player) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if p.entry >= len(p.script.Frames) {
		return Frame{}, io.EOF
	}
	sf := p.script.Frames[p.entry]
	dt := p.script.Dt
	if dt == 0 {
		dt = DefaultScriptDt
	}
	f := Frame{Index: p.n, Time: float64(p.n) * dt}

	for _, sp := range sf.Planes {
		polygon := make([]r3.Vec, len(sp.Polygon))
		for i, v := range sp.Polygon {
			polygon[i] = r3.Vec{X: v[0], Z: v[1]}
		}
		var err error
		if sp.MissingPose {
			err = f.AddPlane(sp.Handle, polygon, nil)
		} else {
			pp := pose(sp.Position, sp.Orientation)
			err = f.AddPlane(sp.Handle, polygon, &pp)
		}
		if err != nil {
			return Frame{}, err
		}
	}
	if p.rep == 0 {
		for _, in := range sf.Input {
			kind, _ := ParseInputKind(in.Kind)
			f.Input = append(f.Input, Input{Kind: kind, X: in.X, Y: in.Y, Pose: pose(in.Position, in.Orientation)})
		}
	}

	p.n++
	p.rep++
	if p.rep >= max(sf.Repeat, 1) {
		p.entry++
		p.rep = 0
	}
	return f, nil
}
