// Package manip implements ray-based dragging. Each ray source owns one
// [GrabState]; while a particle is held it sits in the field's exclusion set
// and its position follows the source's ray at the depth fixed at grab time.
package manip
