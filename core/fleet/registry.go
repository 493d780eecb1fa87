// Package fleet holds the authoritative in-memory robot registry and its
// persistence round-trip. The registry is the single mutable owner of robot
// state: the simulation clock and the task intake path mutate robots through
// it, everything else reads immutable snapshots.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/hospigo/fleetd/core/logger"
	"github.com/hospigo/fleetd/core/model"
)

// ErrRobotNotFound indicates an assignment targeted a robot id that is not in
// the registry. The fleet is fixed for the session, so this is a logic error.
var ErrRobotNotFound = errors.New("robot not found")

// Registry is the authoritative collection of robot records.
type Registry struct {
	mu     sync.RWMutex
	robots []model.Robot
	index  map[string]int

	store SnapshotStore
	rng   *rand.Rand
	log   logger.Logger
}

// NewRegistry creates an empty registry. The rng drives battery and
// temperature randomisation and must be seeded by the caller so that
// initialisation stays reproducible in tests.
func NewRegistry(store SnapshotStore, rng *rand.Rand, log logger.Logger) *Registry {
	return &Registry{
		index: make(map[string]int),
		store: store,
		rng:   rng,
		log:   log,
	}
}

// Initialize populates the registry from the remote roster merged with the
// persisted snapshot. Persisted battery/temperature/status/progress/active
// take precedence over generated defaults; roster task fields take precedence
// over the per-id default task profile. An empty roster means the remote
// fetch degraded; the built-in fleet is used instead.
func (r *Registry) Initialize(ctx context.Context, roster []model.Robot) ([]model.Robot, error) {
	if len(roster) == 0 {
		roster = FallbackRoster()
		r.log.Warnf("empty roster, using built-in fleet of %d robots", len(roster))
	}

	persisted := map[string]PersistedState{}
	if r.store != nil {
		loaded, err := r.store.Load(ctx)
		if err != nil {
			r.log.Errorf("snapshot load failed, starting fresh: %v", err)
		} else {
			persisted = loaded
		}
	}

	robots := make([]model.Robot, 0, len(roster))
	for _, remote := range roster {
		robots = append(robots, r.merge(remote, persisted))
	}

	r.mu.Lock()
	r.robots = robots
	r.reindexLocked()
	r.mu.Unlock()
	return r.Snapshot(), nil
}

// merge builds one robot record from generated defaults, the persisted
// snapshot and the remote roster entry, in increasing precedence for the
// fields each source owns.
func (r *Registry) merge(remote model.Robot, persisted map[string]PersistedState) model.Robot {
	profile := profileFor(remote.ID)

	robot := model.Robot{
		ID:           remote.ID,
		Status:       model.StatusIdle,
		Battery:      remote.Battery,
		Temperature:  remote.Temperature,
		TaskProgress: 100,
	}
	if robot.Battery == 0 {
		robot.Battery = float64(40 + r.rng.Intn(61)) // [40,100]
	}
	if robot.Temperature == 0 {
		robot.Temperature = float64(2 + r.rng.Intn(5)) // [2,6]
	}
	if p, ok := persisted[remote.ID]; ok {
		robot.Battery = p.Battery
		robot.Temperature = p.Temperature
		if p.Status != "" {
			robot.Status = model.Status(p.Status)
		}
		robot.TaskProgress = p.TaskProgress
		robot.TaskActive = p.TaskActive
	}

	robot.PickupLocation = orDefault(remote.PickupLocation, profile.Pickup)
	robot.DropLocation = orDefault(remote.DropLocation, profile.Drop)
	robot.ServiceType = orDefault(remote.ServiceType, profile.ServiceType)
	robot.PriorityLevel = orDefault(remote.PriorityLevel, profile.Priority)
	robot.PatientID = orDefault(remote.PatientID, profile.PatientID)
	robot.RequestedBy = orDefault(remote.RequestedBy, profile.RequestedBy)
	robot.SpecialInstructions = remote.SpecialInstructions
	robot.CurrentTaskID = remote.CurrentTaskID
	return robot
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// Snapshot returns a copy of all robot records.
func (r *Registry) Snapshot() []model.Robot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Robot, len(r.robots))
	copy(out, r.robots)
	return out
}

// Get returns the robot with the given id.
func (r *Registry) Get(id string) (model.Robot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return model.Robot{}, fmt.Errorf("%w: %s", ErrRobotNotFound, id)
	}
	return r.robots[i], nil
}

// UpsertAfterAssignment binds a created task to the robot: task fields are
// overwritten, the robot goes Active with zero progress and the temperature
// is re-randomised for the new run.
func (r *Registry) UpsertAfterAssignment(id string, task model.Task) (model.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return model.Robot{}, fmt.Errorf("%w: %s", ErrRobotNotFound, id)
	}
	robot := r.robots[i]
	robot.Status = model.StatusActive
	robot.TaskActive = true
	robot.TaskProgress = 0
	robot.Temperature = float64(2 + r.rng.Intn(5))
	robot.PickupLocation = task.PickupLocation
	robot.DropLocation = task.DropLocation
	robot.ServiceType = task.ServiceType
	robot.PriorityLevel = task.PriorityLevel
	robot.PatientID = task.PatientID
	robot.RequestedBy = task.RequestedBy
	robot.SpecialInstructions = task.SpecialInstructions
	robot.CurrentTaskID = task.TaskID
	r.robots[i] = robot
	return robot, nil
}

// Replace swaps the whole collection in one step so readers never observe a
// partially applied tick.
func (r *Registry) Replace(robots []model.Robot) {
	next := make([]model.Robot, len(robots))
	copy(next, robots)
	r.mu.Lock()
	r.robots = next
	r.reindexLocked()
	r.mu.Unlock()
}

// Update applies fn to the robot with the given id.
func (r *Registry) Update(id string, fn func(model.Robot) model.Robot) (model.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return model.Robot{}, fmt.Errorf("%w: %s", ErrRobotNotFound, id)
	}
	r.robots[i] = fn(r.robots[i])
	return r.robots[i], nil
}

// Persist writes the current snapshot to the durable store. Failures are
// returned for the caller to log; the next write carries the full state
// again, so a lost write heals itself.
func (r *Registry) Persist(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	snapshot := r.Snapshot()
	data := make(map[string]PersistedState, len(snapshot))
	for _, robot := range snapshot {
		data[robot.ID] = PersistedState{
			Battery:      robot.Battery,
			Temperature:  robot.Temperature,
			Status:       string(robot.Status),
			TaskProgress: robot.TaskProgress,
			TaskActive:   robot.TaskActive,
		}
	}
	return r.store.Save(ctx, data)
}

func (r *Registry) reindexLocked() {
	r.index = make(map[string]int, len(r.robots))
	for i, robot := range r.robots {
		r.index[robot.ID] = i
	}
}
