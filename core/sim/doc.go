// Package sim implements the fleet simulation clock. TickRobot is the pure
// per-robot state transition; Engine owns the periodic tick loop, the delayed
// Task Completed reverts, task intake, event routing and write-through
// persistence of the registry snapshot.
package sim
