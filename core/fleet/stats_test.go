package fleet

import (
	"testing"

	"github.com/hospigo/fleetd/core/model"
)

func TestComputeStats(t *testing.T) {
	robots := []model.Robot{
		{ID: "a", Status: model.StatusActive, Battery: 50},
		{ID: "b", Status: model.StatusIdle, Battery: 100},
		{ID: "c", Status: model.StatusCharging, Battery: 10},
		{ID: "d", Status: model.StatusTaskCompleted, Battery: 80},
		{ID: "e", Status: model.StatusMaintenance, Battery: 60},
	}
	s := ComputeStats(robots)
	if s.Total != 5 || s.Active != 1 || s.Idle != 1 || s.Charging != 1 || s.Maintenance != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.Available != 2 {
		t.Fatalf("expected 2 available (idle + completed), got %d", s.Available)
	}
	if s.AvgBattery != 60 {
		t.Fatalf("expected avg battery 60, got %v", s.AvgBattery)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil)
	if s.Total != 0 || s.AvgBattery != 0 {
		t.Fatalf("unexpected stats for empty fleet: %+v", s)
	}
}
