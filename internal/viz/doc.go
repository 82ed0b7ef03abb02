// Package viz provides terminal views of a running coagulation experiment.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one experiment, plotting the size distribution
//     on a log-log braille [Canvas] next to number and mass readouts
//   - [NewInteractiveApp]: preset browser that tunes a preset and opens the
//     live view
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial distribution
//	T     - Cycle color themes
//	+/-   - Double or halve the output interval
//	?     - Show help overlay
//	[]    - Replay recorded intervals
package viz
