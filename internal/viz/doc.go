// Package viz renders culture runs in the terminal and to files.
//
// Terminal output uses Bubble Tea for the live view:
//
//   - [Live]: steps a culture model on a timer and redraws it
//   - [Canvas]: Braille-based pixel canvas for agent positions
//   - [Graph]: approximate vs analytical population as an ASCII chart
//
// File output covers a population chart ([RenderChart]), a log-log
// convergence plot ([SaveConvergencePlot]) and an MJPEG recording of
// the culture ([VideoRecorder]).
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the seeded culture
//	Q     - Quit
package viz
