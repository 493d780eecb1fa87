package fleet

import "github.com/hospigo/fleetd/core/model"

// Stats summarises the fleet for the dashboard header cards.
type Stats struct {
	Total       int     `json:"total"`
	Active      int     `json:"active"`
	Charging    int     `json:"charging"`
	Idle        int     `json:"idle"`
	Maintenance int     `json:"maintenance"`
	Available   int     `json:"available"`
	AvgBattery  float64 `json:"avgBattery"`
}

// ComputeStats derives per-status counts and the average battery level from a
// fleet snapshot.
func ComputeStats(robots []model.Robot) Stats {
	s := Stats{Total: len(robots)}
	var batterySum float64
	for _, r := range robots {
		batterySum += r.Battery
		switch r.Status {
		case model.StatusActive:
			s.Active++
		case model.StatusCharging:
			s.Charging++
		case model.StatusIdle:
			s.Idle++
		case model.StatusMaintenance:
			s.Maintenance++
		}
		if r.Available() {
			s.Available++
		}
	}
	if s.Total > 0 {
		s.AvgBattery = batterySum / float64(s.Total)
	}
	return s
}
