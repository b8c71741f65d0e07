package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/arfall/internal/config"
	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/experiment"
	"golang.org/x/sync/errgroup"
)

// Builder makes a ready-to-run experiment for one parameter point.
type Builder func(ctx context.Context, params map[string]float64) (*experiment.Experiment, error)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Valid  bool
}

// Outcome holds every trial in grid order and the best valid one.
type Outcome struct {
	Best   map[string]float64
	Value  float64
	Trials []Trial
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
	accept     func(float64) bool
}

type Option func(*GridSearch)

// WithWorkers bounds the number of concurrent experiments.
func WithWorkers(n int) Option {
	return func(g *GridSearch) { g.workers = n }
}

// WithAccept decides which metric values may win. The default accepts any
// finite value.
func WithAccept(fn func(float64) bool) Option {
	return func(g *GridSearch) { g.accept = fn }
}

// NonNegative accepts finite values >= 0, for metrics that report -1 when
// a goal was never reached.
func NonNegative(v float64) bool { return dynamo.FiniteScalar(v) && v >= 0 }

func NewGridSearch(params []string, ranges [][]float64, opts ...Option) *GridSearch {
	g := &GridSearch{
		paramNames: params,
		ranges:     ranges,
		workers:    runtime.GOMAXPROCS(0),
		accept:     dynamo.FiniteScalar,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GridSearch) points() [][]float64 {
	total := 1
	for _, r := range g.ranges {
		total *= len(r)
	}
	out := make([][]float64, 0, total)
	var walk func(depth int, cur []float64)
	walk = func(depth int, cur []float64) {
		if depth == len(g.ranges) {
			out = append(out, append([]float64(nil), cur...))
			return
		}
		for _, v := range g.ranges[depth] {
			walk(depth+1, append(cur, v))
		}
	}
	walk(0, make([]float64, 0, len(g.ranges)))
	return out
}

// Search runs every grid point and minimizes metricName. Trials run
// concurrently but the outcome does not depend on scheduling: ties go to the
// earliest point in grid order.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (*Outcome, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("%w: %d names for %d ranges", dynamo.ErrParameterBounds, len(g.paramNames), len(g.ranges))
	}
	points := g.points()
	trials := make([]Trial, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.workers, 1))
	for i, pt := range points {
		params := make(map[string]float64, len(pt))
		for j, name := range g.paramNames {
			params[name] = pt[j]
		}
		eg.Go(func() error {
			exp, err := build(ctx, params)
			if err != nil {
				return fmt.Errorf("build %v: %w", params, err)
			}
			result, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("run %v: %w", params, err)
			}
			val, ok := result.Metrics[metricName]
			if !ok {
				return fmt.Errorf("%w: metric %q", dynamo.ErrUnknownName, metricName)
			}
			trials[i] = Trial{Params: params, Value: val, Valid: g.accept(val)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{Value: math.Inf(1), Trials: trials}
	for _, t := range trials {
		if t.Valid && t.Value < out.Value {
			out.Value, out.Best = t.Value, t.Params
		}
	}
	return out, nil
}

// Apply sets the named parameters on cfg.
func Apply(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "restitution":
			cfg.Physics.Restitution = v
		case "gravity":
			cfg.Physics.Gravity = v
		case "dt":
			cfg.Physics.Dt = v
		case "height":
			cfg.Grid.Height = v
		case "spacing":
			cfg.Grid.Spacing = v
		default:
			return fmt.Errorf("%w: sweep parameter %q", dynamo.ErrUnknownName, name)
		}
	}
	return nil
}

// ConfigBuilder returns a Builder that applies each point to a copy of base.
// The UI panel is never built for sweep trials.
func ConfigBuilder(base *config.Config, opts ...experiment.Option) Builder {
	return func(ctx context.Context, params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		cfg.UI.Enabled = false
		if err := Apply(cfg, params); err != nil {
			return nil, err
		}
		exp := experiment.New(cfg, opts...)
		if err := exp.Setup(ctx); err != nil {
			return nil, err
		}
		return exp, nil
	}
}
