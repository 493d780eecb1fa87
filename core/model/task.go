package model

import (
	"fmt"
	"time"
)

// Service types offered by the fleet.
var ServiceTypes = []string{
	"Medication Delivery",
	"Lab Sample Transport",
	"Medical Equipment",
	"Food Delivery",
	"Textile Service",
	"Waste Disposal",
	"Blood Transport",
	"Oxygen Delivery",
}

// Priority levels accepted on a task request.
var PriorityLevels = []string{"Low", "Medium", "High", "Emergency"}

// TaskRequest is a staff request for a robot service. It is immutable once
// accepted; its sole effect is to transition one robot to Active.
type TaskRequest struct {
	PickupLocation      string `json:"PickupLocation"`
	DropLocation        string `json:"DropLocation"`
	ServiceType         string `json:"serviceType"`
	PriorityLevel       string `json:"priorityLevel"`
	PatientID           string `json:"patientId"`
	RequestedBy         string `json:"requestedBy"`
	SpecialInstructions string `json:"specialInstructions"`
}

// Task is a created task: the request plus the generated identity and the
// robot it was bound to.
type Task struct {
	TaskRequest
	TaskID     string    `json:"TaskID"`
	AssignedTo string    `json:"AssignedTo"`
	CreatedAt  time.Time `json:"CreatedAt"`
}

// Validate checks the request fields that do not require the location graph.
func (t TaskRequest) Validate() error {
	if t.PickupLocation == "" || t.DropLocation == "" {
		return fmt.Errorf("pickup and drop locations are required")
	}
	if t.PickupLocation == t.DropLocation {
		return fmt.Errorf("pickup and drop locations cannot be the same")
	}
	if t.RequestedBy == "" {
		return fmt.Errorf("requestedBy is required")
	}
	if t.ServiceType == "" {
		return fmt.Errorf("service type is required")
	}
	if !contains(ServiceTypes, t.ServiceType) {
		return fmt.Errorf("unknown service type %q", t.ServiceType)
	}
	if t.PriorityLevel != "" && !contains(PriorityLevels, t.PriorityLevel) {
		return fmt.Errorf("unknown priority level %q", t.PriorityLevel)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
