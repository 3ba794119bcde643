// Package viz renders tuning sessions in the terminal.
//
//   - [Model]: a Bubble Tea program that runs twiddle a few passes per tick
//     and redraws the best trajectory so far
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [ProgressBar] and [Sparkline]: small lipgloss widgets
//
// # Key Bindings
//
//	Space - Pause/Resume the search
//	N     - One pass while paused
//	+/-   - Passes per tick
//	R     - Restart from the initial gains
//	?     - Show help overlay
package viz
