// Package sim owns the per-frame turn of a simulation.
//
// A [World] holds every piece of mutable state: the particle field and its
// exclusion set, the scene, both ground strategies with the active mode, the
// screen and controller ray sources, the drag controller and gravity. One
// call to [World.Frame] runs, in order:
//
//  1. build the UI panel if its font preload has finished
//  2. feed raw input to the ray sources
//  3. apply every queued gesture event (grabs, drags, clicks, mode toggles)
//  4. replace the detected plane list with this frame's planes
//  5. step the field against the active ground
//
// [Simulator] loops a World over a frame source and collects metrics.
package sim
