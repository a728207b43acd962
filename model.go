package main

// Vehicle is the normalized truck snapshot expected by the frontend: the map
// places a marker at Lat/Lon and draws Trail, the tracking panel lists Stops.
type Vehicle struct {
	ID           string           `json:"id"`
	Lat          float64          `json:"lat"`
	Lon          float64          `json:"lon"`
	LastUpdate   int64            `json:"lastUpdate"`
	Color        string           `json:"color"`
	CurrentIndex int              `json:"currentIndex"`
	Progress     float64          `json:"progress"`
	ETA          int              `json:"eta"`
	Destination  string           `json:"destination"`
	Stops        []WaypointStatus `json:"stops"`
	Trail        [][2]float64     `json:"trail"`
}

func newVehicle(e TrackedEntity, r *Route) Vehicle {
	path := TraveledPath(e, r)
	trail := make([][2]float64, len(path))
	for i, p := range path {
		trail[i] = [2]float64{p.Lat, p.Lng}
	}
	return Vehicle{
		ID:           e.ID,
		Lat:          e.Position.Lat,
		Lon:          e.Position.Lng,
		Color:        r.Color,
		CurrentIndex: e.CurrentIndex,
		Progress:     e.Progress,
		ETA:          e.ETA,
		Destination:  e.Destination,
		Stops:        Statuses(e, r),
		Trail:        trail,
	}
}

// vehiclesOf pairs each entity with its route; both slices are in route order.
func vehiclesOf(entities []TrackedEntity, routes []*Route) []Vehicle {
	out := make([]Vehicle, 0, len(entities))
	for i, e := range entities {
		if i >= len(routes) {
			break
		}
		out = append(out, newVehicle(e, routes[i]))
	}
	return out
}
