// Package viz is the terminal live view.
//
// Particles, UI controls and the active ground are projected through the
// world's screen camera onto a braille [Canvas]. The left mouse button is
// fed to the world as pointer input, so a press on a particle grabs it and
// dragging moves it at its grab depth.
//
// # Key Bindings
//
//	G     - Toggle fixed and detected ground
//	+ / - - Change gravity by 1
//	Space - Pause/Resume
//	R     - Rebuild the world
//	Q     - Quit
package viz
