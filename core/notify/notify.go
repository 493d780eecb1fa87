// Package notify builds and collects the timestamped notices surfaced on the
// dashboard notification panel.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/hospigo/fleetd/core/model"
)

// New creates a notification with a fresh id and the current timestamp.
// robotID may be empty for fleet-wide notices.
func New(kind model.NotificationType, message, robotID string) model.Notification {
	return model.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		RobotID:   robotID,
		Timestamp: time.Now().UTC(),
	}
}

// Info builds an informational notification.
func Info(message, robotID string) model.Notification {
	return New(model.NotifyInfo, message, robotID)
}

// Success builds a success notification.
func Success(message, robotID string) model.Notification {
	return New(model.NotifySuccess, message, robotID)
}

// Warning builds a warning notification.
func Warning(message, robotID string) model.Notification {
	return New(model.NotifyWarning, message, robotID)
}

// Error builds an error notification.
func Error(message, robotID string) model.Notification {
	return New(model.NotifyError, message, robotID)
}
