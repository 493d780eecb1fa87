// Package events defines the fleet related events emitted on the event bus.
//
// Available event types:
//   - TickEvent: fleet snapshot after a simulation tick
//   - AssignmentEvent: task request bound to a robot
//   - NotificationEvent: notice raised for the dashboard
package events
