package main

import (
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

func toOrbPoint(p LatLng) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// buildGeoJSON lays out the map: one closed line per route, one line for the
// distance each truck has covered and one point per truck.
func buildGeoJSON(routes []*Route, vehicles []Vehicle) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range routes {
		line := make(orb.LineString, 0, r.Len()+1)
		for _, wp := range r.Waypoints {
			line = append(line, toOrbPoint(wp.LatLng))
		}
		line = append(line, toOrbPoint(r.Waypoints[0].LatLng))
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["id"] = r.ID
		f.Properties["color"] = r.Color
		fc.Append(f)

		for i, wp := range r.Waypoints {
			stop := geojson.NewFeature(toOrbPoint(wp.LatLng))
			stop.Properties["kind"] = "waypoint"
			stop.Properties["route"] = r.ID
			stop.Properties["index"] = i
			stop.Properties["label"] = wp.Label
			fc.Append(stop)
		}
	}

	for _, v := range vehicles {
		trail := make(orb.LineString, 0, len(v.Trail))
		for _, p := range v.Trail {
			trail = append(trail, orb.Point{p[1], p[0]})
		}
		progress := geojson.NewFeature(trail)
		progress.Properties["kind"] = "progress"
		progress.Properties["id"] = v.ID
		progress.Properties["color"] = v.Color
		fc.Append(progress)

		truck := geojson.NewFeature(orb.Point{v.Lon, v.Lat})
		truck.Properties["kind"] = "truck"
		truck.Properties["id"] = v.ID
		truck.Properties["eta"] = v.ETA
		truck.Properties["destination"] = v.Destination
		fc.Append(truck)
	}
	return fc
}

func (s *server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	body, err := buildGeoJSON(s.sim.Routes(), s.currentVehicles()).MarshalJSON()
	if err != nil {
		s.log.Error("geojson encode failed", zap.Error(err))
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(body)
}
