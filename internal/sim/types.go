package sim

import (
	"github.com/san-kum/arfall/internal/frames"
	"github.com/san-kum/arfall/internal/ground"
)

// Source is the frame supplier a Simulator reads from.
type Source = frames.Source

// FrameStats summarizes one world turn.
type FrameStats struct {
	Index         int
	Time          float64
	Mode          ground.Mode
	Events        int
	Grabs         int
	Clicks        int
	Dragging      int
	Planes        int
	PlanesSkipped int // planes without a pose this frame
	Qualifying    int // planes able to yield a height
	Integrated    int
	Skipped       int
	Contacts      int
}

type Metric interface {
	Name() string
	Observe(w *World, s FrameStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(w *World, s FrameStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(w *World, s FrameStats)

func (f ObserverFunc) OnFrame(w *World, s FrameStats) { f(w, s) }

// RunConfig bounds a run. MaxFrames of zero runs until the source ends.
type RunConfig struct {
	MaxFrames     int
	RecordHeights bool
}

type Result struct {
	Times      []float64
	Heights    [][]float64
	Frames     []FrameStats
	Metrics    map[string]float64
	FramesRun  int
	FinalMode  ground.Mode
	GrabsTotal int
}
