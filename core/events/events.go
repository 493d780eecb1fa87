package events

import (
	"time"

	"github.com/hospigo/fleetd/core/model"
)

// TickEvent is published after each simulation tick with the full fleet
// snapshot that resulted from it.
type TickEvent struct {
	Seq    int64
	Robots []model.Robot
	Time   time.Time
}

// AssignmentEvent is published when a task request is bound to a robot.
type AssignmentEvent struct {
	Task  model.Task
	Robot model.Robot
}

// NotificationEvent wraps a notification raised by the simulation or the
// assignment path.
type NotificationEvent struct {
	Notification model.Notification
}
