package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/frames"
	"github.com/san-kum/arfall/internal/ground"
	"github.com/san-kum/arfall/internal/integrators"
	"github.com/san-kum/arfall/internal/manip"
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/raysource"
	"github.com/san-kum/arfall/internal/scene"
	"github.com/san-kum/arfall/internal/ui"
	"gonum.org/v1/gonum/spatial/r3"
)

type WorldConfig struct {
	Rows, Cols    int
	Spacing       float64
	InitialHeight float64
	CenterX       float64
	CenterZ       float64
	Radius        float64

	Gravity     float64
	Dt          float64
	Restitution physics.Restitution
	Integrator  integrators.Integrator

	Mode        ground.Mode
	FixedHeight float64
	Query       ground.QueryMode
	Overlap     ground.Overlap
	ResetHeight float64 // height every particle returns to on a mode toggle
	Space       frames.ReferenceSpace

	Camera        *raysource.Camera
	Width, Height int
	PickRadius    float64
	MaxReach      float64
	PanelPose     dynamo.Pose
}

func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Rows:          8,
		Cols:          8,
		Spacing:       0.7,
		InitialHeight: 1,
		CenterZ:       -2.55,
		Radius:        physics.DefaultRadius,
		Gravity:       -9.81,
		Dt:            0.016,
		Restitution:   physics.Bounce(),
		Integrator:    integrators.NewSemiImplicit(),
		Mode:          ground.ModeFixed,
		ResetHeight:   1,
		Space:         frames.Local,
		Camera:        raysource.NewCamera(r3.Vec{Y: 1.6, Z: 2}),
		Width:         800,
		Height:        600,
		MaxReach:      math.Inf(1),
		PanelPose:     dynamo.Pose{Position: r3.Vec{Y: 2.5, Z: -6}, Orientation: dynamo.Identity},
	}
}

// World is one simulation: the particle field, its scene entities, both
// ground strategies, both ray sources and the drag controller. A World is
// driven from a single goroutine.
type World struct {
	cfg    WorldConfig
	logger *slog.Logger

	field    *physics.Field
	excluded physics.IDSet
	scene    *scene.Scene

	mode     ground.Mode
	fixed    ground.Fixed
	detected *ground.Detected

	screen  *raysource.Screen
	spatial *raysource.Spatial
	manip   *manip.Controller

	gravity float64

	preload     *ui.Preloader
	panel       *ui.Panel
	panelFailed error

	frames int
	time   float64
}

type Option func(*World)

func WithLogger(l *slog.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithPreloader lets the world build the UI panel once p finishes.
func WithPreloader(p *ui.Preloader) Option {
	return func(w *World) { w.preload = p }
}

func NewWorld(cfg WorldConfig, opts ...Option) (*World, error) {
	if !dynamo.FiniteScalar(cfg.Dt) || cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if !dynamo.FiniteScalar(cfg.Gravity) {
		return nil, fmt.Errorf("%w: gravity %v", dynamo.ErrParameterBounds, cfg.Gravity)
	}
	if cfg.Integrator == nil {
		cfg.Integrator = integrators.NewSemiImplicit()
	}
	if cfg.Camera == nil {
		cfg.Camera = raysource.NewCamera(r3.Vec{Y: 1.6, Z: 2})
	}
	if cfg.MaxReach <= 0 {
		cfg.MaxReach = math.Inf(1)
	}
	if cfg.Space.Origin.Orientation == (r3.Rotation{}) {
		cfg.Space.Origin.Orientation = dynamo.Identity
	}

	w := &World{
		cfg:      cfg,
		logger:   slog.Default(),
		excluded: physics.NewIDSet(),
		scene:    scene.New(),
		mode:     cfg.Mode,
		fixed:    ground.Fixed{Value: cfg.FixedHeight},
		gravity:  cfg.Gravity,
	}
	for _, opt := range opts {
		opt(w)
	}

	field, err := physics.Create(cfg.Rows, cfg.Cols, cfg.Spacing, cfg.InitialHeight,
		physics.WithCenter(cfg.CenterX, cfg.CenterZ),
		physics.WithRadius(cfg.Radius),
		physics.WithRestitution(cfg.Restitution),
		physics.WithIntegrator(cfg.Integrator),
	)
	if err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	w.field = field
	field.Each(func(id physics.ID, p *physics.Particle) {
		w.scene.Add(&scene.Entity{
			Name:    fmt.Sprintf("particle-%d", id),
			Payload: &scene.Particle{ID: id, Body: p},
		})
	})
	w.scene.PickRadius = cfg.PickRadius

	w.detected = ground.NewDetected(nil,
		ground.WithQueryMode(cfg.Query),
		ground.WithOverlap(cfg.Overlap),
		ground.WithLogger(w.logger),
	)
	w.screen = raysource.NewScreen(cfg.Camera, cfg.Width, cfg.Height)
	w.spatial = raysource.NewSpatial()
	w.manip = manip.New(w.scene, w.excluded,
		manip.WithLogger(w.logger),
		manip.WithMaxDistance(cfg.MaxReach),
	)
	return w, nil
}

func (w *World) Config() WorldConfig            { return w.cfg }
func (w *World) Field() *physics.Field          { return w.field }
func (w *World) Scene() *scene.Scene            { return w.scene }
func (w *World) Excluded() physics.IDSet        { return w.excluded }
func (w *World) Screen() *raysource.Screen      { return w.screen }
func (w *World) Spatial() *raysource.Spatial    { return w.spatial }
func (w *World) Manipulator() *manip.Controller { return w.manip }
func (w *World) Detected() *ground.Detected     { return w.detected }
func (w *World) Mode() ground.Mode              { return w.mode }
func (w *World) Panel() *ui.Panel               { return w.panel }
func (w *World) Time() float64                  { return w.time }
func (w *World) Frames() int                    { return w.frames }

// PanelError reports why the panel could not be built, if it failed.
func (w *World) PanelError() error { return w.panelFailed }

// Provider returns the ground strategy for the current mode.
func (w *World) Provider() ground.Provider {
	if w.mode == ground.ModeDetected {
		return w.detected
	}
	return w.fixed
}

func (w *World) Gravity() float64 { return w.gravity }

func (w *World) SetGravity(g float64) {
	if !dynamo.FiniteScalar(g) {
		return
	}
	w.gravity = g
	if w.panel != nil {
		w.panel.Refresh()
	}
}

func (w *World) GravityMagnitude() float64 { return math.Abs(w.gravity) }

// SetGravityMagnitude keeps the current direction of gravity.
func (w *World) SetGravityMagnitude(m float64) {
	if !dynamo.FiniteScalar(m) {
		return
	}
	m = math.Abs(m)
	if w.gravity > 0 {
		w.gravity = m
	} else {
		w.gravity = -m
	}
}

// AdjustGravity changes the gravity magnitude by delta. A decrease only
// applies while the magnitude stays above -delta.
func (w *World) AdjustGravity(delta float64) bool {
	m := w.GravityMagnitude()
	if delta < 0 && m <= -delta {
		return false
	}
	w.SetGravityMagnitude(m + delta)
	if w.panel != nil {
		w.panel.Refresh()
	}
	return true
}

// SetMode switches the ground strategy and resets particle heights. Setting
// the current mode is a no-op.
func (w *World) SetMode(m ground.Mode) {
	if m == w.mode {
		return
	}
	w.mode = m
	w.field.ResetHeight(w.cfg.ResetHeight)
	w.logger.Info("ground_mode", "mode", m.String(), "reset_height", w.cfg.ResetHeight)
}

func (w *World) ToggleGround() {
	w.SetMode(w.mode.Toggle())
}

// CancelDrags releases every drag and returns how many were active.
func (w *World) CancelDrags() int {
	return w.manip.CancelAll()
}

// EndSession ends controller input and any pointer press, releasing every
// drag they held.
func (w *World) EndSession() {
	w.spatial.EndSession()
	w.screen.Cancel()
	w.processEvents(&FrameStats{})
	w.manip.CancelAll()
}

func (w *World) pollPanel() {
	if w.preload == nil || w.panel != nil || w.panelFailed != nil {
		return
	}
	if !w.preload.Ready() {
		return
	}
	font, err := w.preload.Result()
	if err != nil {
		w.panelFailed = err
		w.logger.Warn("panel_skipped", "error", err)
		return
	}
	w.panel = ui.Build(w.scene, w, font, w.cfg.PanelPose)
	w.logger.Debug("panel_built", "entities", w.scene.Len())
}

func (w *World) applyInput(in []frames.Input) {
	for _, e := range in {
		switch e.Kind {
		case frames.PointerDown:
			w.screen.PointerDown(e.X, e.Y)
		case frames.PointerMove:
			w.screen.PointerMove(e.X, e.Y)
		case frames.PointerUp:
			w.screen.PointerUp(e.X, e.Y)
		case frames.PointerCancel:
			w.screen.Cancel()
		case frames.ControllerPose:
			w.spatial.UpdatePose(e.Pose)
		case frames.SelectStart:
			w.spatial.SelectStart()
		case frames.SelectEnd:
			w.spatial.SelectEnd()
		case frames.Squeeze:
			w.spatial.Squeeze()
		case frames.SessionEnd:
			w.spatial.EndSession()
		}
	}
}

func (w *World) processEvents(stats *FrameStats) {
	for _, src := range []raysource.Source{w.screen, w.spatial} {
		for _, e := range src.Drain() {
			stats.Events++
			if e.Phase == raysource.Command {
				if e.Command == raysource.ToggleGround {
					w.ToggleGround()
				}
				continue
			}
			switch w.manip.Handle(e) {
			case manip.Grabbed:
				stats.Grabs++
			case manip.Clicked:
				stats.Clicks++
			}
		}
	}
}

func (w *World) rebuildPlanes(f frames.Frame, stats *FrameStats) {
	planes := make([]ground.Plane, 0, len(f.Planes))
	for _, dp := range f.Planes {
		pose, ok := f.Pose(dp.Handle, w.cfg.Space)
		if !ok {
			stats.PlanesSkipped++
			w.logger.Debug("plane_without_pose", "handle", dp.Handle, "frame", f.Index)
			continue
		}
		planes = append(planes, ground.Plane{Handle: dp.Handle, Pose: pose, Polygon: dp.Polygon})
	}
	w.detected.SetPlanes(planes)
	stats.Planes = len(f.Planes)
	stats.Qualifying = w.detected.Qualifying()
}

// Frame runs one turn: panel readiness, raw input, gesture events, the
// frame's plane list, then one field step with the active ground.
func (w *World) Frame(f frames.Frame) (FrameStats, error) {
	stats := FrameStats{Index: f.Index, Time: f.Time}

	w.pollPanel()
	w.applyInput(f.Input)
	w.processEvents(&stats)
	w.rebuildPlanes(f, &stats)

	step, err := w.field.Step(w.cfg.Dt, w.gravity, w.Provider().Height, w.excluded)
	if err != nil {
		var se *dynamo.SimulationError
		if errors.As(err, &se) {
			se.Frame, se.Time = f.Index, f.Time
			return stats, se
		}
		return stats, &dynamo.SimulationError{Frame: f.Index, Time: f.Time, Wrapped: err}
	}
	stats.Integrated = step.Integrated
	stats.Skipped = step.Skipped
	stats.Contacts = step.Contacts
	stats.Mode = w.mode
	stats.Dragging = w.manip.Active()

	w.frames++
	w.time = f.Time
	return stats, nil
}
