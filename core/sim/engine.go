package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hospigo/fleetd/core/dispatch"
	"github.com/hospigo/fleetd/core/events"
	"github.com/hospigo/fleetd/core/fleet"
	"github.com/hospigo/fleetd/core/logger"
	"github.com/hospigo/fleetd/core/metrics"
	"github.com/hospigo/fleetd/core/model"
	"github.com/hospigo/fleetd/core/notify"
	"github.com/hospigo/fleetd/internal/eventbus"
)

// Config holds the engine timing parameters.
type Config struct {
	// TickInterval is the wall-clock period of one simulation tick.
	TickInterval time.Duration `json:"tick_interval"`
	// RevertDelayTicks overrides the Task Completed display window.
	RevertDelayTicks int `json:"revert_delay_ticks"`
}

// SetDefaults applies the standard simulation timing.
func (c *Config) SetDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.RevertDelayTicks <= 0 {
		c.RevertDelayTicks = RevertDelayTicks
	}
}

// Engine drives the fleet simulation: it ticks every robot on a fixed period,
// schedules the delayed Task Completed -> Idle reverts, accepts task intake,
// and persists the registry snapshot after every mutation.
type Engine struct {
	reg   *fleet.Registry
	bus   eventbus.EventBus
	sink  metrics.FleetSink
	notes *notify.Log
	log   logger.Logger
	cfg   Config

	// stateMu serializes Step and Assign: a tick's copy-and-replace of the
	// registry must not interleave with an assignment upsert.
	stateMu sync.Mutex

	mu      sync.Mutex
	seq     int64
	reverts map[string]int64 // robot id -> tick seq at which the revert fires
}

// NewEngine wires an engine over the registry. bus, sink and notes may be nil
// when the caller does not consume events, metrics or the notification log.
func NewEngine(reg *fleet.Registry, bus eventbus.EventBus, sink metrics.FleetSink, notes *notify.Log, log logger.Logger, cfg Config) *Engine {
	cfg.SetDefaults()
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{
		reg:     reg,
		bus:     bus,
		sink:    sink,
		notes:   notes,
		log:     log,
		cfg:     cfg,
		reverts: make(map[string]int64),
	}
}

// Run ticks the simulation until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Step(ctx)
		}
	}
}

// Step advances the whole fleet by one tick. It is exported so that tests and
// tools can drive the simulation without wall-clock time.
func (e *Engine) Step(ctx context.Context) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	e.mu.Lock()
	e.seq++
	seq := e.seq
	due := make(map[string]bool)
	for id, at := range e.reverts {
		if at <= seq {
			due[id] = true
			delete(e.reverts, id)
		}
	}
	e.mu.Unlock()

	robots := e.reg.Snapshot()
	var notices []model.Notification
	for i, robot := range robots {
		if due[robot.ID] && robot.Status == model.StatusTaskCompleted {
			// Delayed revert: back to Idle with progress and task details
			// preserved for display.
			robot.Status = model.StatusIdle
			robot.TaskActive = false
		}
		next, evs := TickRobot(robot)
		robots[i] = next
		for _, ev := range evs {
			switch ev.Kind {
			case EventTaskCompleted:
				e.scheduleRevert(ev.RobotID, seq)
				notices = append(notices, notify.Success("Task completed successfully", ev.RobotID))
			case EventAutoCharge:
				notices = append(notices, notify.Warning(
					fmt.Sprintf("Auto-charging due to low battery (%.1f%%)", ev.Battery), ev.RobotID))
			}
		}
	}

	e.reg.Replace(robots)
	if err := e.reg.Persist(ctx); err != nil {
		e.log.Errorf("snapshot persist failed: %v", err)
	}

	for _, n := range notices {
		e.emit(n)
	}
	now := time.Now().UTC()
	if e.bus != nil {
		e.bus.Publish(events.TickEvent{Seq: seq, Robots: robots, Time: now})
	}
	if err := e.sink.RecordTick(metrics.TickRecord{Seq: seq, Robots: robots, Stats: fleet.ComputeStats(robots), Time: now}); err != nil {
		e.log.Errorf("tick metrics: %v", err)
	}
}

// Assign is the task intake path: it selects a robot over a fresh snapshot,
// binds the request to it and starts execution on the next tick. A pending
// delayed revert for the chosen robot is cancelled so it cannot clobber the
// new task state.
func (e *Engine) Assign(ctx context.Context, req model.TaskRequest) (model.Task, model.Robot, error) {
	if err := req.Validate(); err != nil {
		return model.Task{}, model.Robot{}, err
	}

	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	// The snapshot is read under the same lock that guards the upsert, so two
	// concurrent requests cannot both observe the same robot as available.
	decision := dispatch.SelectRobot(req.PickupLocation, e.reg.Snapshot())
	task := model.Task{
		TaskRequest: req,
		TaskID:      uuid.NewString(),
		AssignedTo:  decision.RobotID,
		CreatedAt:   time.Now().UTC(),
	}

	robot, err := e.reg.UpsertAfterAssignment(decision.RobotID, task)
	if err != nil {
		return model.Task{}, model.Robot{}, fmt.Errorf("assign task %s: %w", task.TaskID, err)
	}
	e.cancelRevert(decision.RobotID)

	if err := e.reg.Persist(ctx); err != nil {
		e.log.Errorf("snapshot persist failed: %v", err)
	}

	e.emit(notify.Info(fmt.Sprintf("New %s task assigned to %s", task.ServiceType, robot.ID), robot.ID))
	if e.bus != nil {
		e.bus.Publish(events.AssignmentEvent{Task: task, Robot: robot})
	}
	if err := e.sink.RecordAssignment(metrics.AssignmentRecord{
		Task: task, RobotID: robot.ID, Reason: string(decision.Reason), Time: task.CreatedAt,
	}); err != nil {
		e.log.Errorf("assignment metrics: %v", err)
	}
	return task, robot, nil
}

// Seq returns the number of ticks applied so far.
func (e *Engine) Seq() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

func (e *Engine) scheduleRevert(robotID string, seq int64) {
	e.mu.Lock()
	e.reverts[robotID] = seq + int64(e.cfg.RevertDelayTicks)
	e.mu.Unlock()
}

func (e *Engine) cancelRevert(robotID string) {
	e.mu.Lock()
	delete(e.reverts, robotID)
	e.mu.Unlock()
}

func (e *Engine) emit(n model.Notification) {
	if e.notes != nil {
		e.notes.Append(n)
	}
	if e.bus != nil {
		e.bus.Publish(events.NotificationEvent{Notification: n})
	}
}
