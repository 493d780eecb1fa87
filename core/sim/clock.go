package sim

import "github.com/hospigo/fleetd/core/model"

// Simulation rates, expressed per tick.
const (
	ProgressPerTick     = 4   // task progress percentage points
	BatteryPerTick      = 0.5 // battery percent drained or charged
	AutoChargeThreshold = 20.0
	// RevertDelayTicks is how long a robot displays Task Completed before
	// dropping back to Idle.
	RevertDelayTicks = 10
)

// EventKind classifies a state change raised by a tick.
type EventKind int

const (
	// EventTaskCompleted fires when task progress reaches 100.
	EventTaskCompleted EventKind = iota
	// EventAutoCharge fires when an eligible robot is forced onto a charger.
	EventAutoCharge
)

// Event is a state change of one robot within a tick.
type Event struct {
	Kind    EventKind
	RobotID string
	Battery float64
}

// TickRobot advances one robot by one tick and reports the state changes it
// caused. It is a pure function: callers own routing events and storing the
// updated record.
//
// The update order is fixed: progress advance, completed-state clamp, battery
// update, auto-charge trigger. Temperature is never touched here; it is fixed
// at assignment time.
func TickRobot(robot model.Robot) (model.Robot, []Event) {
	var evs []Event

	// Progress advance.
	if robot.Status == model.StatusActive && robot.TaskActive {
		robot.TaskProgress += ProgressPerTick
		if robot.TaskProgress >= 100 {
			robot.TaskProgress = 100
			robot.Status = model.StatusTaskCompleted
			robot.TaskActive = false
			// Task detail fields are kept for display; the delayed revert to
			// Idle is scheduled by the engine.
			evs = append(evs, Event{Kind: EventTaskCompleted, RobotID: robot.ID})
		}
	}

	// Completed-state clamp: progress must never drift below 100 here.
	if robot.Status == model.StatusTaskCompleted && robot.TaskProgress != 100 {
		robot.TaskProgress = 100
	}

	// Battery update. Idle robots hold their charge.
	switch robot.Status {
	case model.StatusCharging:
		robot.Battery += BatteryPerTick
		if robot.Battery >= 100 {
			robot.Battery = 100
			robot.Status = model.StatusIdle
		}
	case model.StatusActive:
		robot.Battery -= BatteryPerTick
		if robot.Battery < 0 {
			robot.Battery = 0
		}
	}

	// Auto-charge trigger. An actively working robot is never interrupted
	// mid-task, even at critical battery.
	if robot.Battery <= AutoChargeThreshold &&
		(robot.Status == model.StatusTaskCompleted ||
			(robot.Status == model.StatusIdle && robot.TaskProgress == 100)) {
		robot.Status = model.StatusCharging
		robot.TaskActive = false
		evs = append(evs, Event{Kind: EventAutoCharge, RobotID: robot.ID, Battery: robot.Battery})
	}

	return robot, evs
}
