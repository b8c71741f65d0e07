// Package raysource normalizes pointer and controller input into world-space
// rays and Begin/Move/End gesture events.
//
// [Screen] maps pixel positions through a perspective [Camera]. [Spatial]
// casts along the forward axis of a tracked controller pose. Both report in
// the same world frame, so the manipulation layer never knows which device
// produced an event.
package raysource
