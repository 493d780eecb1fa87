// Package metrics implements the FleetSink interfaces on Prometheus and
// InfluxDB, with a fan-out MultiSink when both are enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/stat"

	coremetrics "github.com/hospigo/fleetd/core/metrics"
	"github.com/hospigo/fleetd/core/model"
)

// PromSink records fleet simulation metrics in Prometheus.
type PromSink struct {
	ticks       prometheus.Counter
	assignments *prometheus.CounterVec
	battery     *prometheus.GaugeVec
	progress    *prometheus.GaugeVec
	statuses    *prometheus.GaugeVec
	batteryMean prometheus.Gauge
	batteryStd  prometheus.Gauge
}

// NewPromSink registers fleet metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_ticks_total",
			Help: "Total number of simulation ticks applied",
		}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_assignments_total",
			Help: "Total number of task assignments",
		}, []string{"service_type", "priority", "reason"}),
		battery: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "robot_battery_percent",
			Help: "Current battery level per robot",
		}, []string{"robot_id"}),
		progress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "robot_task_progress_percent",
			Help: "Current task progress per robot",
		}, []string{"robot_id"}),
		statuses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleet_status_robots",
			Help: "Number of robots per status",
		}, []string{"status"}),
		batteryMean: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_battery_mean_percent",
			Help: "Mean battery level across the fleet",
		}),
		batteryStd: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_battery_stddev_percent",
			Help: "Battery level standard deviation across the fleet",
		}),
	}

	collectors := []prometheus.Collector{
		s.ticks, s.assignments, s.battery, s.progress, s.statuses, s.batteryMean, s.batteryStd,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				collectors[i] = are.ExistingCollector
				continue
			}
			return nil, err
		}
	}
	s.ticks = collectors[0].(prometheus.Counter)
	s.assignments = collectors[1].(*prometheus.CounterVec)
	s.battery = collectors[2].(*prometheus.GaugeVec)
	s.progress = collectors[3].(*prometheus.GaugeVec)
	s.statuses = collectors[4].(*prometheus.GaugeVec)
	s.batteryMean = collectors[5].(prometheus.Gauge)
	s.batteryStd = collectors[6].(prometheus.Gauge)
	return s, nil
}

// RecordTick updates the per-robot gauges and fleet aggregates.
func (s *PromSink) RecordTick(rec coremetrics.TickRecord) error {
	s.ticks.Inc()

	batteries := make([]float64, 0, len(rec.Robots))
	for _, r := range rec.Robots {
		s.battery.WithLabelValues(r.ID).Set(r.Battery)
		s.progress.WithLabelValues(r.ID).Set(float64(r.TaskProgress))
		batteries = append(batteries, r.Battery)
	}
	if len(batteries) > 0 {
		mean, std := stat.MeanStdDev(batteries, nil)
		s.batteryMean.Set(mean)
		if len(batteries) > 1 {
			s.batteryStd.Set(std)
		} else {
			s.batteryStd.Set(0)
		}
	}

	for status, count := range map[model.Status]int{
		model.StatusIdle:          rec.Stats.Idle,
		model.StatusActive:        rec.Stats.Active,
		model.StatusCharging:      rec.Stats.Charging,
		model.StatusMaintenance:   rec.Stats.Maintenance,
		model.StatusTaskCompleted: rec.Stats.Total - rec.Stats.Idle - rec.Stats.Active - rec.Stats.Charging - rec.Stats.Maintenance,
	} {
		s.statuses.WithLabelValues(string(status)).Set(float64(count))
	}
	return nil
}

// RecordAssignment increments the assignment counter.
func (s *PromSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	s.assignments.WithLabelValues(rec.Task.ServiceType, rec.Task.PriorityLevel, rec.Reason).Inc()
	return nil
}
