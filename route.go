package main

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyRoute      = errors.New("route has no waypoints")
	ErrInvalidDuration = errors.New("segment duration must be positive")
	ErrNoRoutes        = errors.New("no routes configured")
)

// LatLng is a geographic position in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Waypoint struct {
	LatLng
	Label string `json:"label"`
}

// Route is a cyclic sequence of waypoints: the last waypoint connects back to
// the first. Routes are built once at startup and never mutated.
type Route struct {
	ID              string     `json:"id"`
	Color           string     `json:"color"`
	SegmentDuration int        `json:"segmentDuration"` // minutes per leg
	Waypoints       []Waypoint `json:"waypoints"`
}

func NewRoute(id, color string, segmentDuration int, waypoints []Waypoint) (*Route, error) {
	if len(waypoints) == 0 {
		return nil, fmt.Errorf("route %q: %w", id, ErrEmptyRoute)
	}
	if segmentDuration <= 0 {
		return nil, fmt.Errorf("route %q: %w", id, ErrInvalidDuration)
	}
	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	return &Route{
		ID:              id,
		Color:           color,
		SegmentDuration: segmentDuration,
		Waypoints:       wps,
	}, nil
}

// Clone returns a copy of r that shares no waypoint storage with it.
func (r *Route) Clone() *Route {
	c := *r
	c.Waypoints = append([]Waypoint(nil), r.Waypoints...)
	return &c
}

func cloneRoutes(routes []*Route) []*Route {
	out := make([]*Route, len(routes))
	for i, r := range routes {
		out[i] = r.Clone()
	}
	return out
}

func (r *Route) Len() int {
	return len(r.Waypoints)
}

// next returns the index of the waypoint following i, wrapping at the end.
func (r *Route) next(i int) int {
	return (i + 1) % len(r.Waypoints)
}

// Interpolate returns the point a fraction progress of the way along the leg
// starting at waypoint index.
func (r *Route) Interpolate(index int, progress float64) LatLng {
	start := r.Waypoints[index].LatLng
	end := r.Waypoints[r.next(index)].LatLng
	return LatLng{
		Lat: start.Lat + (end.Lat-start.Lat)*progress,
		Lng: start.Lng + (end.Lng-start.Lng)*progress,
	}
}
