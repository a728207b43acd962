package main

import (
	"errors"
	"fmt"
	"math"
)

// DefaultStep is the progress added per frame; a leg takes 200 frames.
const DefaultStep = 0.005

var (
	ErrInvalidStep   = errors.New("step must be in (0, 1]")
	ErrUnknownStatus = errors.New("unknown waypoint status")
)

// TrackedEntity is the simulation state of one truck on its route. Position,
// ETA and Destination are derived from (CurrentIndex, Progress, route) and are
// refreshed by every Tick.
type TrackedEntity struct {
	ID           string  `json:"id"`
	CurrentIndex int     `json:"currentIndex"` // waypoint most recently departed from
	Progress     float64 `json:"progress"`     // fraction of the current leg, [0, 1)
	Position     LatLng  `json:"position"`
	ETA          int     `json:"eta"` // minutes left on the current leg
	Destination  string  `json:"destination"`
}

// NewTrackedEntity places a truck at the first waypoint of route.
func NewTrackedEntity(route *Route) (TrackedEntity, error) {
	if route == nil || route.Len() == 0 {
		return TrackedEntity{}, ErrEmptyRoute
	}
	e := TrackedEntity{ID: route.ID}
	return e.derive(route), nil
}

func ValidateStep(step float64) error {
	if !(step > 0 && step <= 1) {
		return fmt.Errorf("%v: %w", step, ErrInvalidStep)
	}
	return nil
}

// Tick advances e by one frame of step along route and returns the new state.
// It does not modify e.
func Tick(e TrackedEntity, route *Route, step float64) TrackedEntity {
	e.Progress += step
	if e.Progress >= 1 {
		e.CurrentIndex = route.next(e.CurrentIndex)
		e.Progress = 0
	}
	return e.derive(route)
}

func (e TrackedEntity) derive(route *Route) TrackedEntity {
	e.Position = route.Interpolate(e.CurrentIndex, e.Progress)
	e.ETA = int(math.Round(float64(route.SegmentDuration) * (1 - e.Progress)))
	e.Destination = route.Waypoints[route.next(e.CurrentIndex)].Label
	return e
}

type Status int

const (
	StatusPending Status = iota
	StatusInTransit
	StatusArrived
)

func (s Status) String() string {
	switch s {
	case StatusArrived:
		return "Arrived"
	case StatusInTransit:
		return "In Transit"
	default:
		return "Pending"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Arrived":
		*s = StatusArrived
	case "In Transit":
		*s = StatusInTransit
	case "Pending":
		*s = StatusPending
	default:
		return fmt.Errorf("%q: %w", b, ErrUnknownStatus)
	}
	return nil
}

// StatusOf reports how far e has got relative to waypoint i of its route.
func StatusOf(e TrackedEntity, i int) Status {
	switch {
	case i < e.CurrentIndex:
		return StatusArrived
	case i == e.CurrentIndex:
		return StatusInTransit
	default:
		return StatusPending
	}
}

type WaypointStatus struct {
	Waypoint
	Status Status `json:"status"`
}

func Statuses(e TrackedEntity, route *Route) []WaypointStatus {
	out := make([]WaypointStatus, route.Len())
	for i, wp := range route.Waypoints {
		out[i] = WaypointStatus{Waypoint: wp, Status: StatusOf(e, i)}
	}
	return out
}

// TraveledPath is the polyline from the first waypoint through every waypoint
// already passed, ending at the truck's current position.
func TraveledPath(e TrackedEntity, route *Route) []LatLng {
	path := make([]LatLng, 0, e.CurrentIndex+2)
	for _, wp := range route.Waypoints[:e.CurrentIndex+1] {
		path = append(path, wp.LatLng)
	}
	return append(path, e.Position)
}
