// Package ui builds the control panel: a board showing the gravity
// magnitude, +/- buttons that adjust it and a tutorial board. Panel text
// needs a typeface, which a [Preloader] fetches in the background; the panel
// is only built once the load succeeds.
package ui
