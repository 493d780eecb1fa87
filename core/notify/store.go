package notify

import (
	"sync"

	"github.com/hospigo/fleetd/core/model"
)

// DefaultMaxEntries bounds the in-memory log; the UI owns display and pruning
// policy, the log only caps worst-case growth.
const DefaultMaxEntries = 200

// Log is a bounded, insertion-ordered collection of notifications.
type Log struct {
	mu      sync.RWMutex
	entries []model.Notification
	max     int
}

// NewLog creates a log holding at most max entries; max <= 0 selects the
// default bound.
func NewLog(max int) *Log {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Log{max: max}
}

// Append adds a notification, evicting the oldest entries past the bound.
func (l *Log) Append(n model.Notification) {
	l.mu.Lock()
	l.entries = append(l.entries, n)
	if over := len(l.entries) - l.max; over > 0 {
		l.entries = append([]model.Notification(nil), l.entries[over:]...)
	}
	l.mu.Unlock()
}

// List returns the notifications in insertion order.
func (l *Log) List() []model.Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Notification, len(l.entries))
	copy(out, l.entries)
	return out
}

// MarkRead flips the read flag of the notification with the given id and
// reports whether it was found.
func (l *Log) MarkRead(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Read = true
			return true
		}
	}
	return false
}

// Clear removes all notifications.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
