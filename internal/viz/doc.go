// Package viz draws the arm in the terminal with Bubble Tea.
//
//   - [Model]: steps an environment under a policy and draws the rod, the
//     target and any obstacles on a [Canvas]
//   - [Menu]: picks a preset and a policy before handing over to [Model]
//   - [Camera]: orthographic view that can be rotated for 3D cases
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single control step while paused
//	R     - New episode
//	Tab   - Cycle policy parameters (manual: u0..uN)
//	↑/↓   - Nudge the selected parameter
//	[ ]   - Replay recent steps
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
