// Package viz draws the cloth in the terminal.
//
// A braille [Canvas] gives 2x4 dots per character cell. [Camera] projects
// world points onto it and [Render3D] draws a [Wireframe] of the cloth's
// structural edges and sphere outlines. [Model] is the Bubble Tea program
// that steps a simulator per tick; [NewPicker] wraps it in a preset menu.
//
// # Key Bindings
//
//	Space     - Pause/Resume
//	.         - Single step while paused
//	R         - Reset cloth and scene
//	w/W e/E   - Wind along x and z
//	Arrows    - Move the selected sphere
//	x/X y/Y   - Orbit the camera
//	+/-       - Zoom
//	G         - Toggle GIF recording
//	?         - Help overlay
package viz
