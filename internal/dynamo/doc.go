// Package dynamo provides the core primitives shared by the simulation.
//
// The package defines the small value types every other package speaks:
//
//   - [Ray]: world-space origin and unit direction
//   - [Pose]: world position plus orientation quaternion
//   - [Color]: 24-bit RGB color used for particle highlighting
//   - [SimulationError]: error wrapper carrying frame context
//
// Vectors and rotations are gonum's [r3.Vec] and [r3.Rotation]. A pose
// built with [NewPose] always carries a unit quaternion, so rotating by it
// preserves lengths.
//
// # Example
//
//	pose := dynamo.NewPose(r3.Vec{Y: 1.6}, 0, 0, 0, 1)
//	ray := dynamo.NewRay(pose.Position, pose.Rotate(dynamo.Forward))
//	hit := ray.At(2.0)
//
// # Thread Safety
//
// All types are plain values and safe to copy between goroutines.
package dynamo
