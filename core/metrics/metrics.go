// Package metrics defines the observability interfaces the fleet engine
// records into. Implementations live under infra/metrics.
package metrics

import (
	"time"

	"github.com/hospigo/fleetd/core/fleet"
	"github.com/hospigo/fleetd/core/model"
)

// TickRecord is the per-tick observation of the whole fleet.
type TickRecord struct {
	Seq    int64
	Robots []model.Robot
	Stats  fleet.Stats
	Time   time.Time
}

// AssignmentRecord captures one task-to-robot binding.
type AssignmentRecord struct {
	Task    model.Task
	RobotID string
	Reason  string
	Time    time.Time
}

// FleetSink records simulation and assignment observations.
type FleetSink interface {
	RecordTick(rec TickRecord) error
	RecordAssignment(rec AssignmentRecord) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordTick implements FleetSink.
func (NopSink) RecordTick(TickRecord) error { return nil }

// RecordAssignment implements FleetSink.
func (NopSink) RecordAssignment(AssignmentRecord) error { return nil }
