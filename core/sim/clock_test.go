package sim

import (
	"testing"

	"github.com/hospigo/fleetd/core/model"
)

func activeRobot(progress int, battery float64) model.Robot {
	return model.Robot{
		ID:           "Robot-A1",
		Status:       model.StatusActive,
		Battery:      battery,
		TaskProgress: progress,
		TaskActive:   true,
	}
}

func TestProgressAdvance(t *testing.T) {
	r, evs := TickRobot(activeRobot(0, 80))
	if r.TaskProgress != ProgressPerTick {
		t.Fatalf("expected progress %d, got %d", ProgressPerTick, r.TaskProgress)
	}
	if len(evs) != 0 {
		t.Fatalf("expected no events mid-task, got %v", evs)
	}
	if r.Battery != 80-BatteryPerTick {
		t.Fatalf("expected active drain, battery %v", r.Battery)
	}
}

func TestTaskCompletesAfter25Ticks(t *testing.T) {
	r := activeRobot(0, 90)
	var completedAt int
	for tick := 1; tick <= 30; tick++ {
		var evs []Event
		r, evs = TickRobot(r)
		if r.TaskProgress > 100 {
			t.Fatalf("progress overshot 100 at tick %d", tick)
		}
		for _, ev := range evs {
			if ev.Kind == EventTaskCompleted {
				if completedAt != 0 {
					t.Fatalf("completed twice, ticks %d and %d", completedAt, tick)
				}
				completedAt = tick
			}
		}
	}
	if completedAt != 25 {
		t.Fatalf("expected completion on tick 25, got %d", completedAt)
	}
	if r.Status != model.StatusTaskCompleted && r.Status != model.StatusCharging {
		t.Fatalf("unexpected status after completion: %s", r.Status)
	}
	if r.TaskActive {
		t.Fatal("task must be inactive after completion")
	}
	if r.TaskProgress != 100 {
		t.Fatalf("expected progress held at 100, got %d", r.TaskProgress)
	}
}

func TestCompletionKeepsTaskDetails(t *testing.T) {
	r := activeRobot(96, 70)
	r.PickupLocation = "Kitchen"
	r.DropLocation = "ICU"
	r.ServiceType = "Food Delivery"
	r.CurrentTaskID = "task-1"
	r, evs := TickRobot(r)
	if r.Status != model.StatusTaskCompleted {
		t.Fatalf("expected completion, got %s", r.Status)
	}
	if len(evs) != 1 || evs[0].Kind != EventTaskCompleted {
		t.Fatalf("expected one completion event, got %v", evs)
	}
	if r.PickupLocation != "Kitchen" || r.DropLocation != "ICU" || r.CurrentTaskID != "task-1" {
		t.Fatalf("task details must be preserved for display: %+v", r)
	}
}

func TestCompletedStateClamp(t *testing.T) {
	r := model.Robot{ID: "x", Status: model.StatusTaskCompleted, TaskProgress: 97, Battery: 50}
	r, _ = TickRobot(r)
	if r.TaskProgress != 100 {
		t.Fatalf("expected clamp to 100, got %d", r.TaskProgress)
	}
}

func TestChargingGainsAndStopsAtFull(t *testing.T) {
	r := model.Robot{ID: "x", Status: model.StatusCharging, Battery: 99.8, TaskProgress: 100}
	r, _ = TickRobot(r)
	if r.Battery != 100 {
		t.Fatalf("expected battery clamped at 100, got %v", r.Battery)
	}
	if r.Status != model.StatusIdle {
		t.Fatalf("expected Idle once full, got %s", r.Status)
	}
}

func TestIdleRobotHoldsCharge(t *testing.T) {
	r := model.Robot{ID: "x", Status: model.StatusIdle, Battery: 42, TaskProgress: 100}
	// progress 100 plus healthy battery: nothing changes
	next, evs := TickRobot(r)
	if next.Battery != 42 || next.Status != model.StatusIdle || len(evs) != 0 {
		t.Fatalf("idle robot must be untouched, got %+v %v", next, evs)
	}
}

func TestActiveDrainClampsAtZero(t *testing.T) {
	r := activeRobot(8, 0.2)
	r, _ = TickRobot(r)
	if r.Battery != 0 {
		t.Fatalf("expected battery floor 0, got %v", r.Battery)
	}
}

func TestAutoChargeIdleAtThreshold(t *testing.T) {
	r := model.Robot{ID: "x", Status: model.StatusIdle, Battery: 20, TaskProgress: 100}
	r, evs := TickRobot(r)
	if r.Status != model.StatusCharging {
		t.Fatalf("expected auto-charge, got %s", r.Status)
	}
	if len(evs) != 1 || evs[0].Kind != EventAutoCharge {
		t.Fatalf("expected exactly one auto-charge event, got %v", evs)
	}
	if evs[0].Battery != 20 {
		t.Fatalf("event must carry the battery value, got %v", evs[0].Battery)
	}
	// The following tick the robot is already Charging; no second warning.
	_, evs = TickRobot(r)
	if len(evs) != 0 {
		t.Fatalf("auto-charge must fire once, got %v", evs)
	}
}

func TestActiveRobotNeverAutoCharges(t *testing.T) {
	r := activeRobot(40, 5)
	r, evs := TickRobot(r)
	if r.Status != model.StatusActive {
		t.Fatalf("active robot must not be interrupted, got %s", r.Status)
	}
	for _, ev := range evs {
		if ev.Kind == EventAutoCharge {
			t.Fatal("active robot must not auto-charge")
		}
	}
}

func TestIdleWithPartialProgressDoesNotAutoCharge(t *testing.T) {
	r := model.Robot{ID: "x", Status: model.StatusIdle, Battery: 10, TaskProgress: 40}
	r, evs := TickRobot(r)
	if r.Status != model.StatusIdle || len(evs) != 0 {
		t.Fatalf("idle robot without completed work must stay put, got %+v %v", r, evs)
	}
}

func TestBatteryBoundsInvariant(t *testing.T) {
	robots := []model.Robot{
		activeRobot(0, 0.1),
		{ID: "c", Status: model.StatusCharging, Battery: 99.9, TaskProgress: 100},
		{ID: "i", Status: model.StatusIdle, Battery: 50, TaskProgress: 100},
	}
	for tick := 0; tick < 300; tick++ {
		for i := range robots {
			robots[i], _ = TickRobot(robots[i])
			if err := robots[i].Validate(); err != nil {
				t.Fatalf("invariant violated at tick %d: %v", tick, err)
			}
		}
	}
}
