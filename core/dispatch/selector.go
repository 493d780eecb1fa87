package dispatch

import (
	"github.com/hospigo/fleetd/core/layout"
	"github.com/hospigo/fleetd/core/model"
)

// batteryBonusDivisor converts battery percent into a small distance credit so
// that a better-charged robot wins when distances are close.
const batteryBonusDivisor = 1000.0

// defaultRobotID is returned when the roster itself is empty.
const defaultRobotID = "Robot-A1"

// Reason records which branch of the fallback chain produced a decision.
type Reason string

const (
	// ReasonNearest: an available robot won on adjusted distance.
	ReasonNearest Reason = "nearest_available"
	// ReasonSoonestFree: no robot was available, the active robot with the
	// highest progress was chosen.
	ReasonSoonestFree Reason = "soonest_free"
	// ReasonDefault: the roster had no usable candidate at all.
	ReasonDefault Reason = "default"
)

// Decision is the outcome of a selection over one fleet snapshot.
type Decision struct {
	RobotID string
	Reason  Reason
	// Score is the winning adjusted distance for ReasonNearest decisions.
	Score float64
}

// SelectRobot picks the robot to execute a task starting at the pickup
// location. It is a pure query over the snapshot and never fails: the
// fallback chain guarantees an id even for an empty or fully busy fleet.
//
// Among available robots (Idle or Task Completed) the minimum of
// distance(pickup, position) - battery/1000 wins; ties keep the earlier
// robot. With no available robot, the Active robot with the highest task
// progress is chosen. Failing that, the first robot of the roster.
func SelectRobot(pickup string, robots []model.Robot) Decision {
	pickupPos, err := layout.PositionOf(pickup)
	if err != nil {
		// Unknown pickup: callers validate locations up front, so this is a
		// safety net rather than a reachable branch.
		return firstRobotDecision(robots)
	}

	best := Decision{Reason: ReasonNearest}
	found := false
	for _, robot := range robots {
		if !robot.Available() {
			continue
		}
		adjusted := pickupPos.DistanceTo(currentPosition(robot)) - robot.Battery/batteryBonusDivisor
		if !found || adjusted < best.Score {
			best.RobotID = robot.ID
			best.Score = adjusted
			found = true
		}
	}
	if found {
		return best
	}

	// Everyone is busy: pick the active robot that frees up soonest.
	maxProgress := -1
	var soonest string
	for _, robot := range robots {
		if robot.Status != model.StatusActive {
			continue
		}
		if robot.TaskProgress > maxProgress {
			maxProgress = robot.TaskProgress
			soonest = robot.ID
		}
	}
	if soonest != "" {
		return Decision{RobotID: soonest, Reason: ReasonSoonestFree}
	}

	return firstRobotDecision(robots)
}

func firstRobotDecision(robots []model.Robot) Decision {
	if len(robots) > 0 {
		return Decision{RobotID: robots[0].ID, Reason: ReasonDefault}
	}
	return Decision{RobotID: defaultRobotID, Reason: ReasonDefault}
}

// currentPosition derives where a robot presently is from its task state:
// charging robots sit at their station, active robots are en route to their
// pickup, idle and completed robots rest at their last drop location.
func currentPosition(robot model.Robot) layout.Point {
	switch robot.Status {
	case model.StatusCharging:
		return layout.PositionOrDefault(layout.DefaultChargingStation)
	case model.StatusActive:
		return layout.PositionOrDefault(robot.PickupLocation)
	case model.StatusTaskCompleted, model.StatusIdle:
		return layout.PositionOrDefault(robot.DropLocation)
	default:
		return layout.PositionOrDefault(layout.DefaultLocation)
	}
}
