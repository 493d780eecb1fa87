package fleet

import "github.com/hospigo/fleetd/core/model"

// taskProfile is the default completed task shown for a robot that has no
// live assignment yet.
type taskProfile struct {
	Pickup      string
	Drop        string
	ServiceType string
	Priority    string
	PatientID   string
	RequestedBy string
}

// defaultTaskProfiles maps each fleet robot to its sample completed task.
var defaultTaskProfiles = map[string]taskProfile{
	"Robot-A1": {"Ward B", "Kitchen", "Medication Delivery", "Medium", "P001", "Dr. Smith"},
	"Robot-B2": {"Pharmacy", "ICU", "Lab Sample Transport", "High", "P002", "Nurse Johnson"},
	"Robot-C3": {"Laboratory", "Ward A", "Medical Equipment", "Low", "P003", "Dr. Wilson"},
	"Robot-D4": {"Kitchen", "Surgery 1", "Food Delivery", "Medium", "", "Staff Kitchen"},
	"Robot-E5": {"Laundry", "Ward B", "Textile Service", "Low", "", "Housekeeping"},
	"Robot-F6": {"Storage", "Emergency", "Waste Disposal", "Medium", "", "Maintenance"},
	"Robot-G7": {"Reception", "Surgery 2", "Blood Transport", "Emergency", "P007", "Dr. Brown"},
}

var genericTaskProfile = taskProfile{
	Pickup:      "Reception",
	Drop:        "Storage",
	ServiceType: "General Transport",
	Priority:    "Medium",
	RequestedBy: "System",
}

// profileFor returns the default task profile for the given robot id.
func profileFor(id string) taskProfile {
	if p, ok := defaultTaskProfiles[id]; ok {
		return p
	}
	return genericTaskProfile
}

// fallbackState is the fixed battery/temperature pair used when neither the
// persisted snapshot nor the roster supplies values in degraded mode.
var fallbackState = map[string]struct {
	Battery     float64
	Temperature float64
}{
	"Robot-A1": {85, 4},
	"Robot-B2": {92, 3},
	"Robot-C3": {78, 5},
	"Robot-D4": {67, 2},
	"Robot-E5": {91, 6},
	"Robot-F6": {73, 4},
	"Robot-G7": {88, 3},
}

// FallbackRoster is the built-in 7 robot fleet used when the remote roster is
// unreachable. Degraded mode, not an error.
func FallbackRoster() []model.Robot {
	ids := []string{"Robot-A1", "Robot-B2", "Robot-C3", "Robot-D4", "Robot-E5", "Robot-F6", "Robot-G7"}
	robots := make([]model.Robot, 0, len(ids))
	for _, id := range ids {
		fs := fallbackState[id]
		p := profileFor(id)
		robots = append(robots, model.Robot{
			ID:             id,
			Status:         model.StatusIdle,
			Battery:        fs.Battery,
			Temperature:    fs.Temperature,
			TaskProgress:   100,
			PickupLocation: p.Pickup,
			DropLocation:   p.Drop,
			ServiceType:    p.ServiceType,
			PriorityLevel:  p.Priority,
			PatientID:      p.PatientID,
			RequestedBy:    p.RequestedBy,
		})
	}
	return robots
}
