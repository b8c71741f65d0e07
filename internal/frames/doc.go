// Package frames supplies the per-frame inputs of a run: a timestamp, the
// detected planes with their poses, and raw device input.
//
// Sources return io.EOF when exhausted. [Static] repeats fixed planes,
// [Script] replays a YAML scenario and [Synthetic] emulates plane detection
// in a room with per-frame jitter and pose dropouts.
package frames
