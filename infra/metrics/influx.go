package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/hospigo/fleetd/core/metrics"
	"github.com/hospigo/fleetd/infra/logger"
)

// InfluxSink writes tick and assignment observations to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.FleetSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTick writes one point per robot plus a fleet summary point.
func (s *InfluxSink) RecordTick(rec coremetrics.TickRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range rec.Robots {
		p := write.NewPointWithMeasurement("robot_state").
			AddTag("robot_id", r.ID).
			AddTag("status", string(r.Status)).
			AddField("battery", r.Battery).
			AddField("temperature", r.Temperature).
			AddField("task_progress", r.TaskProgress).
			SetTime(rec.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	summary := write.NewPointWithMeasurement("fleet_tick").
		AddField("seq", rec.Seq).
		AddField("total", rec.Stats.Total).
		AddField("active", rec.Stats.Active).
		AddField("charging", rec.Stats.Charging).
		AddField("idle", rec.Stats.Idle).
		AddField("maintenance", rec.Stats.Maintenance).
		AddField("available", rec.Stats.Available).
		AddField("avg_battery", rec.Stats.AvgBattery).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, summary)
}

// RecordAssignment writes the assignment as a single point.
func (s *InfluxSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("task_assignment").
		AddTag("robot_id", rec.RobotID).
		AddTag("service_type", rec.Task.ServiceType).
		AddTag("priority", rec.Task.PriorityLevel).
		AddTag("reason", rec.Reason).
		AddField("task_id", rec.Task.TaskID).
		AddField("pickup", rec.Task.PickupLocation).
		AddField("drop", rec.Task.DropLocation).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying InfluxDB client resources.
func (s *InfluxSink) Close() {
	s.client.Close()
}
