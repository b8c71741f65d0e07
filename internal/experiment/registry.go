package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/arfall/internal/config"
	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/frames"
	"github.com/san-kum/arfall/internal/integrators"
	"github.com/san-kum/arfall/internal/metrics"
	"github.com/san-kum/arfall/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// SourceFactory builds a frame source from a config.
type SourceFactory func(cfg *config.Config) (frames.Source, error)

type Registry struct {
	integrators map[string]func() integrators.Integrator
	sources     map[string]SourceFactory
	metrics     map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() integrators.Integrator),
		sources:     make(map[string]SourceFactory),
		metrics:     make(map[string]func() sim.Metric),
	}

	r.integrators["semi_implicit"] = func() integrators.Integrator { return integrators.NewSemiImplicit() }
	r.integrators["euler"] = func() integrators.Integrator { return integrators.NewEuler() }
	r.integrators["verlet"] = func() integrators.Integrator { return integrators.NewVerlet() }

	r.sources["static"] = func(cfg *config.Config) (frames.Source, error) {
		return frames.NewStatic(frameCount(cfg), cfg.Physics.Dt), nil
	}
	r.sources["synthetic"] = func(cfg *config.Config) (frames.Source, error) {
		return frames.NewSynthetic(frames.RoomConfig{
			Seed:    cfg.Frames.Seed,
			Frames:  frameCount(cfg),
			Dt:      cfg.Physics.Dt,
			Jitter:  cfg.Frames.Jitter,
			Dropout: cfg.Frames.Dropout,
			Center:  r3.Vec{X: cfg.Grid.CenterX, Z: cfg.Grid.CenterZ},
		}), nil
	}
	r.sources["script"] = func(cfg *config.Config) (frames.Source, error) {
		if cfg.Frames.Script == "" {
			return nil, fmt.Errorf("%w: script source needs frames.script", dynamo.ErrParameterBounds)
		}
		s, err := frames.LoadScript(cfg.Frames.Script)
		if err != nil {
			return nil, err
		}
		if err := s.Bind(cfg.Physics.Dt); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Frames.Script, err)
		}
		return s.Play(), nil
	}

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["contacts"] = func() sim.Metric { return metrics.NewContacts() }
	r.metrics["settled"] = func() sim.Metric { return metrics.NewSettled() }
	r.metrics["settle_time"] = func() sim.Metric { return metrics.NewSettleTime() }
	r.metrics["grabs"] = func() sim.Metric { return metrics.NewGrabs() }

	return r
}

// frameCount maps run.frames to a source length; zero means unbounded.
func frameCount(cfg *config.Config) int {
	if cfg.Run.Frames == 0 {
		return -1
	}
	return cfg.Run.Frames
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: integrator %q", dynamo.ErrUnknownName, name)
	}
	return fn(), nil
}

func (r *Registry) GetSource(name string, cfg *config.Config) (frames.Source, error) {
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: frame source %q", dynamo.ErrUnknownName, name)
	}
	return fn(cfg)
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: metric %q", dynamo.ErrUnknownName, name)
	}
	return fn(), nil
}

// RegisterSource adds or replaces a frame source.
func (r *Registry) RegisterSource(name string, fn SourceFactory) {
	r.sources[name] = fn
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListSources() []string     { return sortedKeys(r.sources) }
func (r *Registry) ListMetrics() []string     { return sortedKeys(r.metrics) }

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	names := r.ListMetrics()
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name]())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
