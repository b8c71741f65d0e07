package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/san-kum/arfall/internal/config"
	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/frames"
	"github.com/san-kum/arfall/internal/ground"
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/raysource"
	"github.com/san-kum/arfall/internal/sim"
	"github.com/san-kum/arfall/internal/ui"
	"gonum.org/v1/gonum/spatial/r3"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	world     *sim.World
	simulator *sim.Simulator
	source    frames.Source
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WorldConfig converts a validated config into world parameters, resolving
// names through r.
func WorldConfig(cfg *config.Config, r *Registry) (sim.WorldConfig, error) {
	wc := sim.DefaultWorldConfig()
	if err := cfg.Validate(); err != nil {
		return wc, err
	}

	integ, err := r.GetIntegrator(cfg.Physics.Integrator)
	if err != nil {
		return wc, err
	}
	restitution, _ := physics.NewRestitution(cfg.Physics.Restitution)
	mode, _ := ground.ParseMode(cfg.Ground.Mode)
	query, _ := ground.ParseQueryMode(cfg.Ground.Query)
	overlap, _ := ground.ParseOverlap(cfg.Ground.Overlap)

	cam := raysource.NewCamera(vec(cfg.Camera.Position))
	cam.FOV = cfg.Camera.FOV

	wc.Rows, wc.Cols = cfg.Grid.Rows, cfg.Grid.Cols
	wc.Spacing = cfg.Grid.Spacing
	wc.InitialHeight = cfg.Grid.Height
	wc.CenterX, wc.CenterZ = cfg.Grid.CenterX, cfg.Grid.CenterZ
	wc.Radius = cfg.Grid.Radius
	wc.Gravity = cfg.Physics.Gravity
	wc.Dt = cfg.Physics.Dt
	wc.Restitution = restitution
	wc.Integrator = integ
	wc.Mode = mode
	wc.FixedHeight = cfg.Ground.FixedHeight
	wc.Query = query
	wc.Overlap = overlap
	wc.ResetHeight = cfg.Ground.ResetHeight
	wc.Camera = cam
	wc.Width, wc.Height = cfg.Camera.Width, cfg.Camera.Height
	wc.PickRadius = cfg.Camera.PickRadius
	wc.MaxReach = cfg.Camera.MaxReach
	wc.PanelPose = dynamo.Pose{Position: vec(cfg.UI.PanelPosition), Orientation: dynamo.Identity}
	return wc, nil
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// Setup builds the world, its frame source and every registered metric, and
// starts the font preload when the UI is enabled. The preload outlives
// Setup and stops when ctx is done.
func (e *Experiment) Setup(ctx context.Context) error {
	wc, err := WorldConfig(e.cfg, e.registry)
	if err != nil {
		return err
	}

	opts := []sim.Option{sim.WithLogger(e.logger)}
	if e.cfg.UI.Enabled {
		p := ui.NewPreloader(e.logger)
		loader, path := fontLoader(e.cfg.UI.Font)
		p.Preload(ctx, loader, path)
		opts = append(opts, sim.WithPreloader(p))
	}

	world, err := sim.NewWorld(wc, opts...)
	if err != nil {
		return err
	}
	src, err := e.registry.GetSource(e.cfg.Frames.Source, e.cfg)
	if err != nil {
		return err
	}

	e.world = world
	e.source = src
	e.simulator = sim.New(world)
	for _, m := range e.registry.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func fontLoader(path string) (ui.FontLoader, string) {
	if path == "" {
		return ui.EmbeddedLoader(), ui.DefaultFontPath
	}
	return ui.FileLoader{FS: os.DirFS(filepath.Dir(path))}, filepath.Base(path)
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.source, sim.RunConfig{
		MaxFrames:     e.cfg.Run.Frames,
		RecordHeights: e.cfg.Run.RecordHeights,
	})
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

func (e *Experiment) World() *sim.World { return e.world }

func (e *Experiment) Source() frames.Source { return e.source }
