// Package viz provides the terminal front end for a blockfall session.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: grid view with a cell cursor and a stats panel
//   - [Chart]: asciigraph plot of falling and settled counts
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Start/Stop the simulation
//	N     - Single step while stopped
//	X     - Toggle the cell under the cursor
//	P     - Load the next pattern
//	+/-   - Change the tick interval
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Edits are refused while the simulation runs; the refusal is shown in
// the panel until the next key press.
package viz
