// Package physics owns the particle field: a grid of point masses that fall
// under gravity and come to rest on a ground height.
//
// Each particle carries only a vertical velocity. A [Field] steps every
// particle that is not in the supplied exclusion set:
//
//   - integrate velocity and height with the field's [integrators.Integrator]
//   - ask a [HeightFunc] for the floor height under the particle
//   - clamp to floor + offset and apply the [Restitution] policy on contact
//
// A missing floor height is not an error; the particle keeps falling.
//
// # Example
//
//	field, _ := physics.Create(8, 8, 0.7, 1.0)
//	stats, err := field.Step(0.016, -9.81, ground.Fixed{}.Height, nil)
//
// # Determinism
//
// Particles never interact, so a step depends only on each particle's own
// state, dt and the floor height. Identical inputs give identical fields.
package physics
