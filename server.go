package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type server struct {
	sim       *Simulation
	hub       *wsHub
	poll      *poller
	staticDir string
	log       *zap.Logger
}

func newServer(sim *Simulation, hub *wsHub, poll *poller, staticDir string, log *zap.Logger) *server {
	return &server{sim: sim, hub: hub, poll: poll, staticDir: staticDir, log: log}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/data.json", s.handleWebSocket)
	mux.HandleFunc("GET /api/trucks", s.handleTrucks)
	mux.HandleFunc("GET /api/routes", s.handleRoutes)
	mux.HandleFunc("GET /api/trucks.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /gtfs-rt", s.handleGtfsRt)
	mux.HandleFunc("GET /siri.json", s.handleSiriJSON)
	mux.HandleFunc("GET /siri.xml", s.handleSiriXML)
	mux.HandleFunc("POST /api/simulation/stop", s.handleStop)
	mux.HandleFunc("POST /api/simulation/reset", s.handleReset)

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return s.withLogging(mux)
}

func (s *server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

// currentVehicles prefers the poller's last sample so that every client sees
// the same LastUpdate stamps; before the first sample it reads the
// simulation directly.
func (s *server) currentVehicles() []Vehicle {
	if s.poll != nil {
		if v := s.poll.lastSnapshot(); len(v) > 0 {
			return v
		}
	}
	return vehiclesOf(s.sim.Snapshot(), s.sim.Routes())
}

func (s *server) handleTrucks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.currentVehicles())
}

func (s *server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sim.Routes())
}

func (s *server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.sim.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.sim.Reset(); err != nil {
		s.log.Error("simulation reset failed", zap.Error(err))
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}
	// resample so readers of the poller's snapshot see the reset positions
	if s.poll != nil {
		s.poll.tick(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
