// Package layout holds the static hospital floor plan: named locations mapped
// to 2-D coordinates, with Euclidean distance queries used by robot selection.
package layout

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownLocation is returned when a location name is not on the floor plan.
var ErrUnknownLocation = errors.New("unknown location")

// DefaultLocation is the central fallback position for robots whose current
// location cannot be derived from their task state. It always exists.
const DefaultLocation = "Main Corridor"

// DefaultChargingStation is the station assumed for charging robots without an
// explicit assignment.
const DefaultChargingStation = "Charging 1"

// Point is a 2-D coordinate on the floor plan.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// roomPositions is the static floor plan. Loaded once, never mutated.
var roomPositions = map[string]Point{
	"Reception":     {X: 100, Y: 80},
	"Radiology":     {X: 220, Y: 80},
	"Pharmacy":      {X: 340, Y: 80},
	"Laboratory":    {X: 460, Y: 80},
	"Emergency":     {X: 100, Y: 160},
	"Main Corridor": {X: 340, Y: 160},
	"Ward A":        {X: 100, Y: 240},
	"Ward B":        {X: 220, Y: 240},
	"Surgery 1":     {X: 340, Y: 240},
	"Surgery 2":     {X: 460, Y: 240},
	"ICU":           {X: 580, Y: 240},
	"Kitchen":       {X: 100, Y: 320},
	"Laundry":       {X: 220, Y: 320},
	"Waste Mgmt":    {X: 340, Y: 320},
	"Storage":       {X: 460, Y: 320},
	"Charging 1":    {X: 70, Y: 290},
	"Charging 2":    {X: 540, Y: 210},
}

// Locations returns the names of all known locations.
func Locations() []string {
	names := make([]string, 0, len(roomPositions))
	for name := range roomPositions {
		names = append(names, name)
	}
	return names
}

// Known reports whether the named location exists on the floor plan.
func Known(name string) bool {
	_, ok := roomPositions[name]
	return ok
}

// PositionOf returns the coordinate of the named location.
func PositionOf(name string) (Point, error) {
	p, ok := roomPositions[name]
	if !ok {
		return Point{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return p, nil
}

// PositionOrDefault returns the coordinate of the named location, falling back
// to the default central location when the name is absent.
func PositionOrDefault(name string) Point {
	if p, ok := roomPositions[name]; ok {
		return p
	}
	return roomPositions[DefaultLocation]
}

// Distance returns the Euclidean distance between two named locations.
func Distance(a, b string) (float64, error) {
	pa, err := PositionOf(a)
	if err != nil {
		return 0, err
	}
	pb, err := PositionOf(b)
	if err != nil {
		return 0, err
	}
	return pa.DistanceTo(pb), nil
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}
