package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/hospigo/fleetd/core/metrics"
	"github.com/hospigo/fleetd/core/fleet"
	"github.com/hospigo/fleetd/core/model"
)

func TestPromSinkRecordTick(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	robots := []model.Robot{
		{ID: "Robot-A1", Status: model.StatusActive, Battery: 80, TaskProgress: 40},
		{ID: "Robot-B2", Status: model.StatusIdle, Battery: 60},
	}
	rec := coremetrics.TickRecord{
		Seq:    1,
		Robots: robots,
		Stats:  fleet.ComputeStats(robots),
		Time:   time.Now(),
	}
	require.NoError(t, sink.RecordTick(rec))
	require.NoError(t, sink.RecordTick(rec))

	require.Equal(t, float64(2), testutil.ToFloat64(sink.ticks))
	require.Equal(t, float64(80), testutil.ToFloat64(sink.battery.WithLabelValues("Robot-A1")))
	require.Equal(t, float64(40), testutil.ToFloat64(sink.progress.WithLabelValues("Robot-A1")))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.statuses.WithLabelValues("Idle")))
	require.Equal(t, float64(70), testutil.ToFloat64(sink.batteryMean))
}

func TestPromSinkRecordAssignment(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	rec := coremetrics.AssignmentRecord{
		Task: model.Task{
			TaskRequest: model.TaskRequest{ServiceType: "Medication Delivery", PriorityLevel: "High"},
		},
		RobotID: "Robot-A1",
		Reason:  "nearest",
	}
	require.NoError(t, sink.RecordAssignment(rec))
	require.NoError(t, sink.RecordAssignment(rec))

	got := testutil.ToFloat64(sink.assignments.WithLabelValues("Medication Delivery", "High", "nearest"))
	require.Equal(t, float64(2), got)
}

func TestPromSinkReRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	// Registering twice on the same registry must reuse existing collectors.
	_, err = NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
}
