package manip

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/raysource"
	"github.com/san-kum/arfall/internal/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultHighlight is the color of a grabbed particle.
const DefaultHighlight = dynamo.ColorGreen

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Outcome describes what a Begin did.
type Outcome int

const (
	Missed Outcome = iota
	Grabbed
	Clicked
	// Occluded means the ray hit a control with no action.
	Occluded
	// Busy means the particle is already held by another source.
	Busy
)

func (o Outcome) String() string {
	switch o {
	case Missed:
		return "missed"
	case Grabbed:
		return "grabbed"
	case Clicked:
		return "clicked"
	case Occluded:
		return "occluded"
	case Busy:
		return "busy"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// GrabState is the drag held by one ray source. Entity is not owned.
type GrabState struct {
	Entity   *scene.Entity
	Kind     scene.Kind
	Particle physics.ID
	Depth    float64 // distance from ray origin to the entity at grab time
	Offset   r3.Vec  // hit point minus entity position
}

// Controller runs one Idle/Dragging machine per ray source. Grabbed
// particles are added to the shared exclusion set for the life of the drag.
type Controller struct {
	scene       *scene.Scene
	excluded    physics.IDSet
	grabs       map[raysource.SourceID]*GrabState
	highlight   dynamo.Color
	maxDistance float64
	logger      *slog.Logger
	started     int
}

type Option func(*Controller)

func WithHighlight(c dynamo.Color) Option {
	return func(m *Controller) { m.highlight = c }
}

// WithMaxDistance limits how far along the ray a grab may reach.
func WithMaxDistance(d float64) Option {
	return func(m *Controller) { m.maxDistance = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Controller) { m.logger = l }
}

func New(s *scene.Scene, excluded physics.IDSet, opts ...Option) *Controller {
	m := &Controller{
		scene:       s,
		excluded:    excluded,
		grabs:       make(map[raysource.SourceID]*GrabState),
		highlight:   DefaultHighlight,
		maxDistance: math.Inf(1),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle dispatches a drag event and reports the Begin outcome. Command
// events are not drag phases and are ignored here.
func (m *Controller) Handle(e raysource.Event) Outcome {
	switch e.Phase {
	case raysource.Begin:
		return m.Begin(e.Source, e.Ray)
	case raysource.Move:
		m.Move(e.Source, e.Ray)
	case raysource.End:
		m.End(e.Source)
	}
	return Missed
}

// Begin casts ray into the scene. A particle hit starts a drag; a button hit
// runs its action and leaves the source idle.
func (m *Controller) Begin(src raysource.SourceID, ray dynamo.Ray) Outcome {
	if _, ok := m.grabs[src]; ok {
		m.End(src)
	}

	hit, ok := m.scene.Raycast(ray, 0, m.maxDistance)
	if !ok {
		return Missed
	}

	switch p := hit.Entity.Payload.(type) {
	case *scene.Particle:
		if p.Body.Grabbed {
			return Busy
		}
		pos := p.Body.Position
		m.grabs[src] = &GrabState{
			Entity:   hit.Entity,
			Kind:     scene.KindParticle,
			Particle: p.ID,
			Depth:    r3.Norm(r3.Sub(ray.Origin, pos)),
			Offset:   r3.Sub(hit.Point, pos),
		}
		m.excluded.Add(p.ID)
		p.Body.Grabbed = true
		p.Body.Highlight(m.highlight)
		m.started++
		m.logger.Debug("grab_begin", "source", src, "particle", int(p.ID), "depth", m.grabs[src].Depth)
		return Grabbed

	case *scene.UIControl:
		if !p.Actionable() {
			return Occluded
		}
		p.OnClick(scene.ClickContext{Source: src, Point: hit.Point, Entity: hit.Entity})
		m.logger.Debug("ui_click", "source", src, "target", hit.Entity.Name)
		return Clicked
	}
	return Missed
}

// Move places the dragged entity at ray.Origin + ray.Direction*depth - offset.
func (m *Controller) Move(src raysource.SourceID, ray dynamo.Ray) bool {
	g, ok := m.grabs[src]
	if !ok {
		return false
	}
	g.Entity.SetPosition(r3.Sub(r3.Add(ray.Origin, r3.Scale(g.Depth, ray.Direction)), g.Offset))
	return true
}

// End releases the drag held by src and resumes integration.
func (m *Controller) End(src raysource.SourceID) bool {
	g, ok := m.grabs[src]
	if !ok {
		return false
	}
	delete(m.grabs, src)
	if p, ok := g.Entity.AsParticle(); ok {
		p.Body.Grabbed = false
		p.Body.ResetColor()
		m.excluded.Remove(p.ID)
		m.logger.Debug("grab_end", "source", src, "particle", int(p.ID))
	}
	return true
}

// Cancel is End for a source whose input went away.
func (m *Controller) Cancel(src raysource.SourceID) bool {
	return m.End(src)
}

// CancelAll releases every drag.
func (m *Controller) CancelAll() int {
	srcs := make([]raysource.SourceID, 0, len(m.grabs))
	for src := range m.grabs {
		srcs = append(srcs, src)
	}
	sort.Slice(srcs, func(i, j int) bool { return srcs[i] < srcs[j] })
	for _, src := range srcs {
		m.End(src)
	}
	return len(srcs)
}

func (m *Controller) State(src raysource.SourceID) State {
	if _, ok := m.grabs[src]; ok {
		return Dragging
	}
	return Idle
}

// Grab returns a copy of the drag held by src.
func (m *Controller) Grab(src raysource.SourceID) (GrabState, bool) {
	g, ok := m.grabs[src]
	if !ok {
		return GrabState{}, false
	}
	return *g, true
}

// Active reports how many sources are dragging.
func (m *Controller) Active() int { return len(m.grabs) }

// GrabsStarted counts successful grabs since creation.
func (m *Controller) GrabsStarted() int { return m.started }
