package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Simulator drives a World from a frame source.
type Simulator struct {
	world     *World
	metrics   []Metric
	observers []Observer
}

func New(w *World) *Simulator {
	return &Simulator{
		world:     w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) World() *World { return s.world }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run consumes frames until the source ends, MaxFrames is reached or ctx is
// done. Every drag is released before Run returns.
func (s *Simulator) Run(ctx context.Context, src Source, cfg RunConfig) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	defer s.world.CancelDrags()

	capHint := max(cfg.MaxFrames, 0)
	result := &Result{
		Times:   make([]float64, 0, capHint),
		Frames:  make([]FrameStats, 0, capHint),
		Metrics: make(map[string]float64),
	}
	if cfg.RecordHeights {
		result.Heights = make([][]float64, 0, capHint)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for cfg.MaxFrames == 0 || result.FramesRun < cfg.MaxFrames {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.finish(result)
			return result, fmt.Errorf("frame source: %w", err)
		}

		stats, err := s.world.Frame(f)
		if err != nil {
			s.finish(result)
			return result, err
		}

		for _, m := range s.metrics {
			m.Observe(s.world, stats)
		}
		for _, obs := range s.observers {
			obs.OnFrame(s.world, stats)
		}

		result.FramesRun++
		result.Times = append(result.Times, f.Time)
		result.Frames = append(result.Frames, stats)
		if cfg.RecordHeights {
			result.Heights = append(result.Heights, s.world.Field().Heights())
		}
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.FinalMode = s.world.Mode()
	result.GrabsTotal = s.world.Manipulator().GrabsStarted()
}

func (s *Simulator) validateConfig(cfg RunConfig) error {
	if cfg.MaxFrames < 0 {
		return fmt.Errorf("max frames must not be negative, got %d", cfg.MaxFrames)
	}
	return nil
}

// RunWithCallback steps the world until callback returns false or the
// source ends.
func (s *Simulator) RunWithCallback(ctx context.Context, src Source, callback func(*World, FrameStats) bool) error {
	defer s.world.CancelDrags()
	for {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		stats, err := s.world.Frame(f)
		if err != nil {
			return err
		}
		if !callback(s.world, stats) {
			return nil
		}
	}
}
