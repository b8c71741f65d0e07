package manip_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/arfall/internal/dynamo"
	"github.com/san-kum/arfall/internal/manip"
	"github.com/san-kum/arfall/internal/physics"
	"github.com/san-kum/arfall/internal/raysource"
	"github.com/san-kum/arfall/internal/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ = Describe("Controller", func() {
	var (
		field    *physics.Field
		sc       *scene.Scene
		excluded physics.IDSet
		ctrl     *manip.Controller
		body     *physics.Particle
	)

	down := func(origin r3.Vec) dynamo.Ray {
		return dynamo.NewRay(origin, r3.Vec{Y: -1})
	}

	BeforeEach(func() {
		var err error
		field, err = physics.Create(1, 1, 0, 0.95, physics.WithCenter(1, 1))
		Expect(err).NotTo(HaveOccurred())
		sc = scene.New()
		field.Each(func(id physics.ID, p *physics.Particle) {
			sc.Add(&scene.Entity{Name: "particle", Payload: &scene.Particle{ID: id, Body: p}})
		})
		body = field.Particle(0)
		excluded = physics.NewIDSet()
		ctrl = manip.New(sc, excluded)
	})

	Context("grabbing a particle", func() {
		It("records the hit offset and depth", func() {
			Expect(body.Position).To(Equal(r3.Vec{X: 1, Y: 0.95, Z: 1}))

			Expect(ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))).To(Equal(manip.Grabbed))

			g, ok := ctrl.Grab(raysource.Pointer)
			Expect(ok).To(BeTrue())
			Expect(g.Kind).To(Equal(scene.KindParticle))
			Expect(g.Offset.X).To(BeNumerically("~", 0, 1e-12))
			Expect(g.Offset.Y).To(BeNumerically("~", 0.05, 1e-12))
			Expect(g.Offset.Z).To(BeNumerically("~", 0, 1e-12))
			Expect(g.Depth).To(BeNumerically("~", 2.05, 1e-12))

			Expect(excluded.Has(0)).To(BeTrue())
			Expect(body.Grabbed).To(BeTrue())
			Expect(body.Color).To(Equal(dynamo.ColorGreen))
			Expect(ctrl.State(raysource.Pointer)).To(Equal(manip.Dragging))
			Expect(ctrl.GrabsStarted()).To(Equal(1))
		})

		It("places the particle exactly along the new ray at the fixed depth", func() {
			ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))
			g, _ := ctrl.Grab(raysource.Pointer)

			rays := []dynamo.Ray{
				dynamo.NewRay(r3.Vec{X: 2, Y: 3, Z: 1}, r3.Vec{Y: -1}),
				dynamo.NewRay(r3.Vec{X: 0, Y: 1, Z: 4}, r3.Vec{X: 0.3, Y: -0.2, Z: -1}),
				dynamo.NewRay(r3.Vec{X: -1, Y: 0.5, Z: 0.5}, r3.Vec{X: 1}),
			}
			for _, r := range rays {
				Expect(ctrl.Move(raysource.Pointer, r)).To(BeTrue())
				want := r3.Sub(r3.Add(r.Origin, r3.Scale(g.Depth, r.Direction)), g.Offset)
				Expect(body.Position).To(Equal(want))
			}

			after, _ := ctrl.Grab(raysource.Pointer)
			Expect(after.Depth).To(Equal(g.Depth))
		})

		It("keeps the grabbed particle out of integration", func() {
			ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))
			stats, err := field.Step(0.016, -9.81, nil, excluded)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Skipped).To(Equal(1))
			Expect(body.Velocity).To(BeZero())
			Expect(body.Position.Y).To(Equal(0.95))
		})

		It("resumes gravity exactly after release", func() {
			ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))
			ctrl.Move(raysource.Pointer, down(r3.Vec{X: 0, Y: 4, Z: 0}))
			Expect(ctrl.End(raysource.Pointer)).To(BeTrue())

			Expect(excluded.Has(0)).To(BeFalse())
			Expect(body.Grabbed).To(BeFalse())
			Expect(body.Color).To(Equal(physics.DefaultColor))

			g, dt := -9.81, 0.016
			before := body.Velocity
			_, err := field.Step(dt, g, nil, excluded)
			Expect(err).NotTo(HaveOccurred())
			Expect(body.Velocity).To(Equal(before + g*dt))
		})
	})

	Context("with two sources", func() {
		It("does not let the second source steal a held particle", func() {
			Expect(ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))).To(Equal(manip.Grabbed))
			Expect(ctrl.Begin(raysource.Controller, down(r3.Vec{X: 1, Y: 2, Z: 1}))).To(Equal(manip.Busy))
			Expect(ctrl.State(raysource.Controller)).To(Equal(manip.Idle))
			Expect(ctrl.Active()).To(Equal(1))
		})

		It("runs independent drags on separate particles", func() {
			second, err := physics.Create(1, 1, 0, 0.95, physics.WithCenter(-1, 1))
			Expect(err).NotTo(HaveOccurred())
			other := second.Particle(0)
			sc.Add(&scene.Entity{Name: "other", Payload: &scene.Particle{ID: 1, Body: other}})

			Expect(ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))).To(Equal(manip.Grabbed))
			Expect(ctrl.Begin(raysource.Controller, down(r3.Vec{X: -1, Y: 3, Z: 1}))).To(Equal(manip.Grabbed))
			Expect(excluded.Len()).To(Equal(2))

			ctrl.End(raysource.Pointer)
			Expect(excluded.Has(0)).To(BeFalse())
			Expect(excluded.Has(1)).To(BeTrue())
		})
	})

	Context("cancellation", func() {
		It("never leaves a particle excluded", func() {
			ctrl.Begin(raysource.Controller, down(r3.Vec{X: 1, Y: 3, Z: 1}))
			Expect(ctrl.CancelAll()).To(Equal(1))
			Expect(excluded.Len()).To(BeZero())
			Expect(ctrl.State(raysource.Controller)).To(Equal(manip.Idle))
			Expect(ctrl.Cancel(raysource.Controller)).To(BeFalse())
		})

		It("ends a stale drag before a new begin", func() {
			ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))
			Expect(ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 5, Y: 3, Z: 5}))).To(Equal(manip.Missed))
			Expect(excluded.Len()).To(BeZero())
			Expect(body.Grabbed).To(BeFalse())
		})
	})

	Context("misses and controls", func() {
		It("treats a miss as a no-op", func() {
			Expect(ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 9, Y: 3, Z: 9}))).To(Equal(manip.Missed))
			Expect(ctrl.Move(raysource.Pointer, down(r3.Vec{}))).To(BeFalse())
			Expect(ctrl.End(raysource.Pointer)).To(BeFalse())
		})

		It("runs a button action and stays idle", func() {
			clicks := 0
			sc.Add(&scene.Entity{
				Name:      "plus",
				Transform: dynamo.Pose{Position: r3.Vec{Z: -3}, Orientation: dynamo.Identity},
				Payload: &scene.UIControl{
					Role:    scene.RoleButton,
					Size:    r3.Vec{X: 0.5, Y: 0.5, Z: 0.05},
					OnClick: func(scene.ClickContext) { clicks++ },
				},
			})
			Expect(ctrl.Begin(raysource.Pointer, dynamo.NewRay(r3.Vec{}, r3.Vec{Z: -1}))).To(Equal(manip.Clicked))
			Expect(clicks).To(Equal(1))
			Expect(ctrl.State(raysource.Pointer)).To(Equal(manip.Idle))
		})

		It("lets a board occlude particles behind it", func() {
			sc.Add(&scene.Entity{
				Name:      "board",
				Transform: dynamo.Pose{Position: r3.Vec{X: 1, Y: 2, Z: 1}, Orientation: dynamo.Identity},
				Payload:   &scene.UIControl{Role: scene.RoleBoard, Size: r3.Vec{X: 2, Y: 0.1, Z: 2}},
			})
			Expect(ctrl.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))).To(Equal(manip.Occluded))
			Expect(excluded.Len()).To(BeZero())
		})

		It("ignores hits beyond the reach limit", func() {
			short := manip.New(sc, excluded, manip.WithMaxDistance(1))
			Expect(short.Begin(raysource.Pointer, down(r3.Vec{X: 1, Y: 3, Z: 1}))).To(Equal(manip.Missed))
		})
	})

	It("dispatches normalized events", func() {
		ray := down(r3.Vec{X: 1, Y: 3, Z: 1})
		ctrl.Handle(raysource.Event{Source: raysource.Pointer, Phase: raysource.Begin, Ray: ray})
		Expect(ctrl.State(raysource.Pointer)).To(Equal(manip.Dragging))
		ctrl.Handle(raysource.Event{Source: raysource.Pointer, Phase: raysource.Command, Command: raysource.ToggleGround})
		Expect(ctrl.State(raysource.Pointer)).To(Equal(manip.Dragging))
		ctrl.Handle(raysource.Event{Source: raysource.Pointer, Phase: raysource.End, Ray: ray})
		Expect(ctrl.State(raysource.Pointer)).To(Equal(manip.Idle))
	})
})
