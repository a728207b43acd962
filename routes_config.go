package main

import (
	"fmt"

	"github.com/spf13/viper"
)

type WaypointConfig struct {
	Lat   float64 `mapstructure:"lat"`
	Lng   float64 `mapstructure:"lng"`
	Label string  `mapstructure:"label"`
}

type RouteConfig struct {
	ID              string           `mapstructure:"id"`
	Color           string           `mapstructure:"color"`
	SegmentDuration int              `mapstructure:"segment_duration"` // minutes
	Waypoints       []WaypointConfig `mapstructure:"waypoints"`
}

type RoutesFile struct {
	Routes []RouteConfig `mapstructure:"routes"`
}

// defaultRoutes are the two trucks shown on the logistics hub map.
var defaultRoutes = []RouteConfig{
	{
		ID:              "Truck 1",
		Color:           "blue",
		SegmentDuration: 120,
		Waypoints: []WaypointConfig{
			{Lat: 35.6762, Lng: 139.6503, Label: "Tokyo Warehouse"},
			{Lat: 34.6937, Lng: 135.5023, Label: "Osaka Transit"},
			{Lat: 36.2048, Lng: 138.2529, Label: "Nagano Distribution"},
			{Lat: 35.6895, Lng: 139.6917, Label: "Tokyo Delivery"},
		},
	},
	{
		ID:              "Truck 2",
		Color:           "green",
		SegmentDuration: 150,
		Waypoints: []WaypointConfig{
			{Lat: 35.0116, Lng: 135.7681, Label: "Kyoto Warehouse"},
			{Lat: 34.3853, Lng: 132.4553, Label: "Hiroshima Transit"},
			{Lat: 33.5902, Lng: 130.4017, Label: "Fukuoka Distribution"},
			{Lat: 34.6937, Lng: 135.5023, Label: "Osaka Delivery"},
		},
	},
}

// LoadRoutes reads a YAML routes file. An empty path yields the built-in
// routes.
func LoadRoutes(path string) ([]*Route, error) {
	if path == "" {
		return BuildRoutes(defaultRoutes)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	var f RoutesFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode routes file: %w", err)
	}
	return BuildRoutes(f.Routes)
}

func BuildRoutes(cfgs []RouteConfig) ([]*Route, error) {
	if len(cfgs) == 0 {
		return nil, ErrNoRoutes
	}
	seen := make(map[string]bool, len(cfgs))
	routes := make([]*Route, 0, len(cfgs))
	for i, rc := range cfgs {
		id := rc.ID
		if id == "" {
			id = fmt.Sprintf("Truck %d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate route id %q", id)
		}
		seen[id] = true
		wps := make([]Waypoint, len(rc.Waypoints))
		for j, w := range rc.Waypoints {
			wps[j] = Waypoint{LatLng: LatLng{Lat: w.Lat, Lng: w.Lng}, Label: w.Label}
		}
		r, err := NewRoute(id, rc.Color, rc.SegmentDuration, wps)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}
