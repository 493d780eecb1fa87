package fleet

import "context"

// PersistedState is the per-robot slice of state that survives restarts.
// Task descriptive fields are deliberately excluded: they are refreshed from
// the live assignment, never from the stored snapshot.
type PersistedState struct {
	Battery      float64 `json:"battery"`
	Temperature  float64 `json:"temperature"`
	Status       string  `json:"status"`
	TaskProgress int     `json:"taskProgress"`
	TaskActive   bool    `json:"taskActive"`
}

// SnapshotStore is the durable key-value surface for fleet snapshots, keyed
// by robot id under a fixed session key. Load must be side-effect free and
// Save idempotent for equal input.
type SnapshotStore interface {
	Load(ctx context.Context) (map[string]PersistedState, error)
	Save(ctx context.Context, snapshot map[string]PersistedState) error
}
