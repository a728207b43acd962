package main

import (
	"net/http"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

// buildGtfsRtFeed renders trucks as a GTFS-realtime VehiclePositions feed.
// Waypoint labels stand in for stop ids; the stop sequence is 1-based.
func buildGtfsRtFeed(vehicles []Vehicle, now time.Time) *gtfs.FeedMessage {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
		Entity: make([]*gtfs.FeedEntity, 0, len(vehicles)),
	}
	for _, v := range vehicles {
		status := gtfs.VehiclePosition_IN_TRANSIT_TO
		if v.Progress == 0 {
			status = gtfs.VehiclePosition_STOPPED_AT
		}
		seq, stop := uint32(1), v.Destination
		if n := len(v.Stops); n > 0 {
			seq = uint32((v.CurrentIndex+1)%n + 1)
			if status == gtfs.VehiclePosition_STOPPED_AT {
				seq = uint32(v.CurrentIndex + 1)
				stop = v.Stops[v.CurrentIndex].Label
			}
		}
		ts := uint64(now.Unix())
		if v.LastUpdate > 0 {
			ts = uint64(v.LastUpdate / 1000)
		}
		feed.Entity = append(feed.Entity, &gtfs.FeedEntity{
			Id: proto.String(v.ID),
			Vehicle: &gtfs.VehiclePosition{
				Vehicle: &gtfs.VehicleDescriptor{
					Id:    proto.String(v.ID),
					Label: proto.String(v.ID),
				},
				Position: &gtfs.Position{
					Latitude:  proto.Float32(float32(v.Lat)),
					Longitude: proto.Float32(float32(v.Lon)),
				},
				CurrentStopSequence: proto.Uint32(seq),
				StopId:              proto.String(stop),
				CurrentStatus:       status.Enum(),
				Timestamp:           proto.Uint64(ts),
			},
		})
	}
	return feed
}

func (s *server) handleGtfsRt(w http.ResponseWriter, r *http.Request) {
	body, err := proto.Marshal(buildGtfsRtFeed(s.currentVehicles(), time.Now()))
	if err != nil {
		s.log.Error("gtfs-rt encode failed", zap.Error(err))
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(body)
}
