// Package ground answers "what is the floor height at (x, z), if any".
//
// Two [Provider] strategies exist. [Fixed] is a constant virtual floor.
// [Detected] derives the height from the posed polygons reported for the
// current frame, either by polygon containment and the plane equation or by
// the lowest qualifying plane position.
//
// A missing height is reported through the second return value and is never
// an error.
package ground
