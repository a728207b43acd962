package main

import (
	"net/http"
	"time"
)

// SIRI VehicleMonitoring, JSON flavour: Siri.ServiceDelivery
// .VehicleMonitoringDelivery[].VehicleActivity[].MonitoredVehicleJourney

type siriJSONDocument struct {
	Siri siriJSONRoot `json:"Siri"`
}

type siriJSONRoot struct {
	ServiceDelivery siriJSONServiceDelivery `json:"ServiceDelivery"`
}

type siriJSONServiceDelivery struct {
	ResponseTimestamp         string                       `json:"ResponseTimestamp"`
	VehicleMonitoringDelivery []siriJSONMonitoringDelivery `json:"VehicleMonitoringDelivery"`
}

type siriJSONMonitoringDelivery struct {
	ResponseTimestamp string                    `json:"ResponseTimestamp"`
	VehicleActivity   []siriJSONVehicleActivity `json:"VehicleActivity"`
}

type siriJSONVehicleActivity struct {
	RecordedAtTime          string                 `json:"RecordedAtTime"`
	MonitoredVehicleJourney siriJSONVehicleJourney `json:"MonitoredVehicleJourney"`
}

type siriJSONVehicleJourney struct {
	LineRef         string                `json:"LineRef"`
	VehicleRef      string                `json:"VehicleRef"`
	VehicleLocation siriJSONLocation      `json:"VehicleLocation"`
	MonitoredCall   siriJSONMonitoredCall `json:"MonitoredCall"`
}

type siriJSONLocation struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

type siriJSONMonitoredCall struct {
	StopPointName       string `json:"StopPointName"`
	ExpectedArrivalTime string `json:"ExpectedArrivalTime"`
}

func buildSiriJSON(vehicles []Vehicle, now time.Time) siriJSONDocument {
	stamp := now.UTC().Format(time.RFC3339)
	activities := make([]siriJSONVehicleActivity, 0, len(vehicles))
	for _, v := range vehicles {
		activities = append(activities, siriJSONVehicleActivity{
			RecordedAtTime: recordedAt(v, now),
			MonitoredVehicleJourney: siriJSONVehicleJourney{
				LineRef:         v.ID,
				VehicleRef:      v.ID,
				VehicleLocation: siriJSONLocation{Latitude: v.Lat, Longitude: v.Lon},
				MonitoredCall: siriJSONMonitoredCall{
					StopPointName:       v.Destination,
					ExpectedArrivalTime: expectedArrival(v, now),
				},
			},
		})
	}
	return siriJSONDocument{Siri: siriJSONRoot{ServiceDelivery: siriJSONServiceDelivery{
		ResponseTimestamp: stamp,
		VehicleMonitoringDelivery: []siriJSONMonitoringDelivery{{
			ResponseTimestamp: stamp,
			VehicleActivity:   activities,
		}},
	}}}
}

func recordedAt(v Vehicle, now time.Time) string {
	if v.LastUpdate > 0 {
		return time.UnixMilli(v.LastUpdate).UTC().Format(time.RFC3339)
	}
	return now.UTC().Format(time.RFC3339)
}

// expectedArrival converts the ETA in simulated minutes to a timestamp.
func expectedArrival(v Vehicle, now time.Time) string {
	return now.Add(time.Duration(v.ETA) * time.Minute).UTC().Format(time.RFC3339)
}

func (s *server) handleSiriJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, buildSiriJSON(s.currentVehicles(), time.Now()))
}
