package main

import (
	"encoding/xml"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const siriNamespace = "http://www.siri.org.uk/siri"

type siriXMLDocument struct {
	XMLName         xml.Name               `xml:"Siri"`
	Xmlns           string                 `xml:"xmlns,attr"`
	Version         string                 `xml:"version,attr"`
	ServiceDelivery siriXMLServiceDelivery `xml:"ServiceDelivery"`
}

type siriXMLServiceDelivery struct {
	ResponseTimestamp         string                    `xml:"ResponseTimestamp"`
	VehicleMonitoringDelivery siriXMLMonitoringDelivery `xml:"VehicleMonitoringDelivery"`
}

type siriXMLMonitoringDelivery struct {
	Version           string                   `xml:"version,attr"`
	ResponseTimestamp string                   `xml:"ResponseTimestamp"`
	VehicleActivity   []siriXMLVehicleActivity `xml:"VehicleActivity"`
}

type siriXMLVehicleActivity struct {
	RecordedAtTime          string                `xml:"RecordedAtTime"`
	MonitoredVehicleJourney siriXMLVehicleJourney `xml:"MonitoredVehicleJourney"`
}

type siriXMLVehicleJourney struct {
	LineRef         string               `xml:"LineRef"`
	VehicleLocation siriXMLLocation      `xml:"VehicleLocation"`
	VehicleRef      string               `xml:"VehicleRef"`
	MonitoredCall   siriXMLMonitoredCall `xml:"MonitoredCall"`
}

type siriXMLLocation struct {
	Longitude float64 `xml:"Longitude"`
	Latitude  float64 `xml:"Latitude"`
}

type siriXMLMonitoredCall struct {
	StopPointName       string `xml:"StopPointName"`
	ExpectedArrivalTime string `xml:"ExpectedArrivalTime"`
}

func buildSiriXML(vehicles []Vehicle, now time.Time) siriXMLDocument {
	stamp := now.UTC().Format(time.RFC3339)
	activities := make([]siriXMLVehicleActivity, 0, len(vehicles))
	for _, v := range vehicles {
		activities = append(activities, siriXMLVehicleActivity{
			RecordedAtTime: recordedAt(v, now),
			MonitoredVehicleJourney: siriXMLVehicleJourney{
				LineRef:         v.ID,
				VehicleLocation: siriXMLLocation{Longitude: v.Lon, Latitude: v.Lat},
				VehicleRef:      v.ID,
				MonitoredCall: siriXMLMonitoredCall{
					StopPointName:       v.Destination,
					ExpectedArrivalTime: expectedArrival(v, now),
				},
			},
		})
	}
	return siriXMLDocument{
		Xmlns:   siriNamespace,
		Version: "2.0",
		ServiceDelivery: siriXMLServiceDelivery{
			ResponseTimestamp: stamp,
			VehicleMonitoringDelivery: siriXMLMonitoringDelivery{
				Version:           "2.0",
				ResponseTimestamp: stamp,
				VehicleActivity:   activities,
			},
		},
	}
}

func (s *server) handleSiriXML(w http.ResponseWriter, r *http.Request) {
	body, err := xml.MarshalIndent(buildSiriXML(s.currentVehicles(), time.Now()), "", "  ")
	if err != nil {
		s.log.Error("siri xml encode failed", zap.Error(err))
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}
