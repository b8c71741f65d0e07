package viz

import (
	"math"
	"sort"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/ground"
	"github.com/san-kum/arfall/internal/raysource"
	"github.com/san-kum/arfall/internal/scene"
	"github.com/san-kum/arfall/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	groundTint  dynamo.Color = 0x444466
	controlTint dynamo.Color = 0x8888cc
	edgeSamples              = 24
	// projected points further than this from the viewport, in NDC units,
	// are dropped rather than rasterized
	ndcLimit = 4
)

// Edge is a world-space segment.
type Edge struct {
	Start, End r3.Vec
	Tint       dynamo.Color
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(s, e r3.Vec, tint dynamo.Color) {
	w.Edges = append(w.Edges, Edge{s, e, tint})
}

// AddLoop closes the polygon pts.
func (w *Wireframe) AddLoop(pts []r3.Vec, tint dynamo.Color) {
	for i := range pts {
		w.AddEdge(pts[i], pts[(i+1)%len(pts)], tint)
	}
}

func (w *Wireframe) Clear() { w.Edges = w.Edges[:0] }

// Renderer draws world geometry through the same camera the pointer rays
// are cast from, so what is drawn under the mouse is what a press picks.
type Renderer struct {
	Camera *raysource.Camera
}

// ToCanvas maps a world point to canvas dots. ok is false behind the camera
// or far outside the viewport.
func (r Renderer) ToCanvas(c *Canvas, p r3.Vec) (x, y int, depth float64, ok bool) {
	w, h := c.Dots()
	nx, ny, depth, _ := r.Camera.Project(p, float64(w)/float64(h))
	if depth < r.Camera.Near || depth > r.Camera.Far {
		return 0, 0, depth, false
	}
	if math.Abs(nx) > ndcLimit || math.Abs(ny) > ndcLimit {
		return 0, 0, depth, false
	}
	x = int(math.Floor((nx + 1) / 2 * float64(w)))
	y = int(math.Floor((1 - ny) / 2 * float64(h)))
	return x, y, depth, true
}

// drawEdge samples the segment so a part behind the camera does not wrap
// around the projection.
func (r Renderer) drawEdge(c *Canvas, e Edge) {
	px, py, _, prev := r.ToCanvas(c, e.Start)
	for i := 1; i <= edgeSamples; i++ {
		p := r3.Add(e.Start, r3.Scale(float64(i)/edgeSamples, r3.Sub(e.End, e.Start)))
		x, y, _, ok := r.ToCanvas(c, p)
		if ok && prev {
			r.line(c, px, py, x, y, e.Tint)
		}
		px, py, prev = x, y, ok
	}
}

func (r Renderer) line(c *Canvas, x0, y0, x1, y1 int, tint dynamo.Color) {
	if tint == 0 {
		c.DrawLine(x0, y0, x1, y1)
		return
	}
	n := max(absInt(x1-x0), absInt(y1-y0), 1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		c.SetTinted(x0+int(math.Round(t*float64(x1-x0))), y0+int(math.Round(t*float64(y1-y0))), tint)
	}
}

// Wire draws every edge, nearest last.
func (r Renderer) Wire(c *Canvas, w *Wireframe) {
	edges := append([]Edge(nil), w.Edges...)
	depth := func(e Edge) float64 {
		mid := r3.Scale(0.5, r3.Add(e.Start, e.End))
		return -r.Camera.Pose.ApplyInverse(mid).Z
	}
	sort.SliceStable(edges, func(i, j int) bool { return depth(edges[i]) > depth(edges[j]) })
	for _, e := range edges {
		r.drawEdge(c, e)
	}
}

// groundWire outlines the active ground: a grid at the fixed height, or
// every detected plane polygon.
func groundWire(w *sim.World) *Wireframe {
	wf := NewWireframe()
	if w.Mode() == ground.ModeDetected {
		for _, p := range w.Detected().Planes() {
			pts := make([]r3.Vec, len(p.Polygon))
			for i, v := range p.Polygon {
				pts[i] = p.Pose.Apply(r3.Vec{X: v.X, Z: v.Z})
			}
			if len(pts) >= 2 {
				wf.AddLoop(pts, groundTint)
			}
		}
		return wf
	}
	cfg := w.Config()
	h := cfg.FixedHeight
	half := float64(max(cfg.Rows, cfg.Cols)) * cfg.Spacing / 2
	x0, x1 := cfg.CenterX-half-1, cfg.CenterX+half+1
	z0, z1 := cfg.CenterZ-half-1, cfg.CenterZ+half+1
	for i := 0; i <= 4; i++ {
		t := float64(i) / 4
		x := x0 + t*(x1-x0)
		z := z0 + t*(z1-z0)
		wf.AddEdge(r3.Vec{X: x, Y: h, Z: z0}, r3.Vec{X: x, Y: h, Z: z1}, groundTint)
		wf.AddEdge(r3.Vec{X: x0, Y: h, Z: z}, r3.Vec{X: x1, Y: h, Z: z}, groundTint)
	}
	return wf
}

func controlWire(s *scene.Scene) *Wireframe {
	wf := NewWireframe()
	for _, e := range s.Entities() {
		ctl, ok := e.AsUIControl()
		if !ok {
			continue
		}
		pose := e.WorldPose()
		hx, hy := ctl.Size.X/2, ctl.Size.Y/2
		wf.AddLoop([]r3.Vec{
			pose.Apply(r3.Vec{X: -hx, Y: -hy}),
			pose.Apply(r3.Vec{X: hx, Y: -hy}),
			pose.Apply(r3.Vec{X: hx, Y: hy}),
			pose.Apply(r3.Vec{X: -hx, Y: hy}),
		}, controlTint)
	}
	return wf
}

// DrawWorld renders ground, UI controls and particles, far to near.
func (r Renderer) DrawWorld(c *Canvas, w *sim.World) {
	c.Clear()
	r.Wire(c, groundWire(w))
	r.Wire(c, controlWire(w.Scene()))

	type dot struct {
		x, y  int
		depth float64
		tint  dynamo.Color
	}
	dots := make([]dot, 0, w.Field().Len())
	for _, e := range w.Scene().Entities() {
		p, ok := e.AsParticle()
		if !ok {
			continue
		}
		x, y, d, ok := r.ToCanvas(c, p.Body.Position)
		if !ok {
			continue
		}
		dots = append(dots, dot{x, y, d, p.Body.Color})
	}
	sort.SliceStable(dots, func(i, j int) bool { return dots[i].depth > dots[j].depth })
	for _, d := range dots {
		c.Disc(d.x, d.y, dotRadius(d.depth), d.tint)
	}
}

func dotRadius(depth float64) int {
	switch {
	case depth < 3:
		return 2
	case depth < 6:
		return 1
	default:
		return 0
	}
}
