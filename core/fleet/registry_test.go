package fleet

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospigo/fleetd/core/model"
)

type stubStore struct {
	data    map[string]PersistedState
	loadErr error
	saveErr error
	saves   int
}

func (s *stubStore) Load(context.Context) (map[string]PersistedState, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]PersistedState, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

func (s *stubStore) Save(_ context.Context, snap map[string]PersistedState) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.data = make(map[string]PersistedState, len(snap))
	for k, v := range snap {
		s.data[k] = v
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

func newTestRegistry(store SnapshotStore) *Registry {
	return NewRegistry(store, rand.New(rand.NewSource(1)), nopLogger{})
}

func TestInitializeFallbackFleet(t *testing.T) {
	reg := newTestRegistry(&stubStore{})
	robots, err := reg.Initialize(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, robots, 7)

	byID := map[string]model.Robot{}
	for _, r := range robots {
		byID[r.ID] = r
		assert.Equal(t, model.StatusIdle, r.Status)
		assert.Equal(t, 100, r.TaskProgress)
		assert.False(t, r.TaskActive)
		assert.GreaterOrEqual(t, r.Battery, 0.0)
		assert.LessOrEqual(t, r.Battery, 100.0)
	}
	a1 := byID["Robot-A1"]
	assert.Equal(t, "Ward B", a1.PickupLocation)
	assert.Equal(t, "Kitchen", a1.DropLocation)
	assert.Equal(t, "Medication Delivery", a1.ServiceType)
}

func TestInitializeGeneratedDefaultsInRange(t *testing.T) {
	reg := newTestRegistry(&stubStore{})
	roster := []model.Robot{{ID: "Robot-A1"}, {ID: "Robot-B2"}}
	robots, err := reg.Initialize(context.Background(), roster)
	require.NoError(t, err)
	for _, r := range robots {
		assert.GreaterOrEqual(t, r.Battery, 40.0, "battery low bound")
		assert.LessOrEqual(t, r.Battery, 100.0, "battery high bound")
		assert.GreaterOrEqual(t, r.Temperature, 2.0, "temperature low bound")
		assert.LessOrEqual(t, r.Temperature, 6.0, "temperature high bound")
	}
}

func TestInitializeMergesPersistedState(t *testing.T) {
	store := &stubStore{data: map[string]PersistedState{
		"Robot-A1": {Battery: 12.5, Temperature: 3, Status: "Charging", TaskProgress: 100},
	}}
	reg := newTestRegistry(store)
	robots, err := reg.Initialize(context.Background(), []model.Robot{{ID: "Robot-A1"}, {ID: "Robot-B2"}})
	require.NoError(t, err)

	a1, err := reg.Get("Robot-A1")
	require.NoError(t, err)
	assert.Equal(t, 12.5, a1.Battery)
	assert.Equal(t, model.StatusCharging, a1.Status)
	assert.Equal(t, 100, a1.TaskProgress)
	// B2 has no persisted state and keeps its generated defaults.
	b2, err := reg.Get("Robot-B2")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, b2.Battery, 40.0)
	assert.Len(t, robots, 2)
}

func TestInitializeRosterFieldsOverrideProfile(t *testing.T) {
	reg := newTestRegistry(&stubStore{})
	roster := []model.Robot{{ID: "Robot-A1", PickupLocation: "ICU", RequestedBy: "Dr. Ahmed"}}
	_, err := reg.Initialize(context.Background(), roster)
	require.NoError(t, err)
	a1, err := reg.Get("Robot-A1")
	require.NoError(t, err)
	assert.Equal(t, "ICU", a1.PickupLocation)
	assert.Equal(t, "Dr. Ahmed", a1.RequestedBy)
	// Fields the roster left empty fall back to the per-id profile.
	assert.Equal(t, "Kitchen", a1.DropLocation)
}

func TestInitializeSurvivesStoreLoadError(t *testing.T) {
	reg := newTestRegistry(&stubStore{loadErr: errors.New("redis down")})
	robots, err := reg.Initialize(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, robots, 7)
}

func TestUpsertAfterAssignment(t *testing.T) {
	reg := newTestRegistry(&stubStore{})
	_, err := reg.Initialize(context.Background(), nil)
	require.NoError(t, err)

	task := model.Task{
		TaskRequest: model.TaskRequest{
			PickupLocation: "Kitchen",
			DropLocation:   "ICU",
			ServiceType:    "Food Delivery",
			PriorityLevel:  "High",
			RequestedBy:    "Nurse Lee",
		},
		TaskID:     "task-123",
		AssignedTo: "Robot-C3",
	}
	robot, err := reg.UpsertAfterAssignment("Robot-C3", task)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, robot.Status)
	assert.True(t, robot.TaskActive)
	assert.Equal(t, 0, robot.TaskProgress)
	assert.Equal(t, "Kitchen", robot.PickupLocation)
	assert.Equal(t, "ICU", robot.DropLocation)
	assert.Equal(t, "task-123", robot.CurrentTaskID)
	assert.GreaterOrEqual(t, robot.Temperature, 2.0)
	assert.LessOrEqual(t, robot.Temperature, 6.0)
	require.NoError(t, robot.Validate())
}

func TestUpsertUnknownRobot(t *testing.T) {
	reg := newTestRegistry(&stubStore{})
	_, err := reg.Initialize(context.Background(), nil)
	require.NoError(t, err)
	_, err = reg.UpsertAfterAssignment("Robot-Z9", model.Task{})
	assert.ErrorIs(t, err, ErrRobotNotFound)
}

func TestPersistRoundTrip(t *testing.T) {
	store := &stubStore{}
	reg := newTestRegistry(store)
	_, err := reg.Initialize(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, reg.Persist(context.Background()))

	before := reg.Snapshot()
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	for _, r := range before {
		p, ok := loaded[r.ID]
		require.True(t, ok, "robot %s missing from snapshot", r.ID)
		assert.Equal(t, r.Battery, p.Battery)
		assert.Equal(t, string(r.Status), p.Status)
		assert.Equal(t, r.TaskProgress, p.TaskProgress)
	}

	// Persisting the same state again must leave the stored data equal.
	require.NoError(t, reg.Persist(context.Background()))
	again, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loaded, again)
}

func TestSnapshotIsACopy(t *testing.T) {
	reg := newTestRegistry(&stubStore{})
	_, err := reg.Initialize(context.Background(), nil)
	require.NoError(t, err)
	snap := reg.Snapshot()
	snap[0].Battery = -1
	fresh, err := reg.Get(snap[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, fresh.Battery)
}

func TestReplaceSwapsWholeCollection(t *testing.T) {
	reg := newTestRegistry(&stubStore{})
	_, err := reg.Initialize(context.Background(), nil)
	require.NoError(t, err)
	next := reg.Snapshot()
	for i := range next {
		next[i].Battery = 55
	}
	reg.Replace(next)
	for _, r := range reg.Snapshot() {
		assert.Equal(t, 55.0, r.Battery)
	}
}
