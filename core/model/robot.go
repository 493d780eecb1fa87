package model

import "fmt"

// Status enumerates the lifecycle states of a service robot.
type Status string

const (
	StatusIdle          Status = "Idle"
	StatusActive        Status = "Active"
	StatusTaskCompleted Status = "Task Completed"
	StatusCharging      Status = "Charging"
	// StatusMaintenance is display-only: the clock and the selector never
	// produce or consume it, but fleet statistics count it.
	StatusMaintenance Status = "Maintenance"
)

// Robot represents one service robot of the hospital fleet. The JSON field
// names mirror the wire format consumed by the dashboard UI.
type Robot struct {
	ID           string  `json:"Robot_Id"`
	Status       Status  `json:"Status"`
	Battery      float64 `json:"Battery"`      // percent, 0-100
	Temperature  float64 `json:"Temperature"`  // deg C, fixed at assignment time
	TaskProgress int     `json:"taskProgress"` // percent, 0-100
	TaskActive   bool    `json:"taskActive"`

	PickupLocation      string `json:"PickupLocation"`
	DropLocation        string `json:"DropLocation"`
	ServiceType         string `json:"serviceType"`
	PriorityLevel       string `json:"priorityLevel"`
	PatientID           string `json:"patientId"`
	RequestedBy         string `json:"requestedBy"`
	SpecialInstructions string `json:"specialInstructions"`
	CurrentTaskID       string `json:"CurrentTaskId"`
}

// Available reports whether the robot can accept a new task.
func (r Robot) Available() bool {
	return r.Status == StatusIdle || r.Status == StatusTaskCompleted
}

// Validate checks the robot invariants: battery and progress bounds, and the
// active-flag coupling to the Active status.
func (r Robot) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("robot id is required")
	}
	if r.Battery < 0 || r.Battery > 100 {
		return fmt.Errorf("robot %s: battery %.1f out of range [0,100]", r.ID, r.Battery)
	}
	if r.TaskProgress < 0 || r.TaskProgress > 100 {
		return fmt.Errorf("robot %s: task progress %d out of range [0,100]", r.ID, r.TaskProgress)
	}
	if r.TaskActive && r.Status != StatusActive {
		return fmt.Errorf("robot %s: task active while status is %q", r.ID, r.Status)
	}
	return nil
}
