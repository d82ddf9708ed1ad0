// Package playback simulates sprite-sheet animation playback for preview.
//
// A Simulator is a two-state machine (Stopped, Playing) over a frame index.
// Transitions are plain method calls (Play, Pause, Stop, Seek, SetFPS,
// SetLooping) so that any event source can drive it: a terminal loop, an HTTP
// handler, a test. While playing, the simulator owns exactly one repeating
// timer obtained from a Scheduler; every transition that changes timing
// cancels it first, and Close cancels it for good.
package playback
