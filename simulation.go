package main

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Simulation owns one AnimationLoop per route. It is the only holder of
// truck state; readers get copies through Snapshot.
type Simulation struct {
	routes []*Route
	step   float64
	frames FrameScheduler
	log    *zap.Logger

	mu      sync.RWMutex
	loops   []*AnimationLoop
	running bool
	stopped bool
}

func NewSimulation(routes []*Route, step float64, frames FrameScheduler, log *zap.Logger) (*Simulation, error) {
	if len(routes) == 0 {
		return nil, ErrNoRoutes
	}
	if err := ValidateStep(step); err != nil {
		return nil, err
	}
	s := &Simulation{
		routes: cloneRoutes(routes),
		step:   step,
		frames: frames,
		log:    log,
	}
	loops, err := s.buildLoops()
	if err != nil {
		return nil, err
	}
	s.loops = loops
	return s, nil
}

func (s *Simulation) buildLoops() ([]*AnimationLoop, error) {
	loops := make([]*AnimationLoop, 0, len(s.routes))
	for _, r := range s.routes {
		loop, err := NewAnimationLoop(r, s.step, s.frames, s.legObserver(r))
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", r.ID, err)
		}
		loops = append(loops, loop)
	}
	return loops, nil
}

// legObserver logs each time a truck departs a waypoint.
func (s *Simulation) legObserver(r *Route) func(TrackedEntity) {
	last := 0
	return func(e TrackedEntity) {
		if e.CurrentIndex == last {
			return
		}
		last = e.CurrentIndex
		s.log.Debug("truck departed waypoint",
			zap.String("truck", e.ID),
			zap.String("from", r.Waypoints[e.CurrentIndex].Label),
			zap.String("to", e.Destination),
			zap.Int("eta", e.ETA))
	}
}

func (s *Simulation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	if s.stopped {
		s.log.Warn("simulation was stopped; reset it to run again")
		return
	}
	for _, l := range s.loops {
		l.Start()
	}
	s.running = true
	s.log.Info("simulation started", zap.Int("trucks", len(s.loops)), zap.Float64("step", s.step))
}

// Stop cancels every loop. Truck state stays readable but no longer changes.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Simulation) stopLocked() {
	for _, l := range s.loops {
		l.Cancel()
	}
	if s.running {
		s.log.Info("simulation stopped")
	}
	s.running = false
	s.stopped = true
}

// Reset discards all truck state, puts every truck back at its first
// waypoint and starts new loops.
func (s *Simulation) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	loops, err := s.buildLoops()
	if err != nil {
		return err
	}
	s.loops = loops
	for _, l := range s.loops {
		l.Start()
	}
	s.running = true
	s.stopped = false
	s.log.Info("simulation reset", zap.Int("trucks", len(s.loops)))
	return nil
}

func (s *Simulation) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Snapshot returns the current state of every truck in route order.
func (s *Simulation) Snapshot() []TrackedEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TrackedEntity, len(s.loops))
	for i, l := range s.loops {
		out[i] = l.State()
	}
	return out
}

// Routes returns copies of the simulated routes; changing them does not
// affect running loops.
func (s *Simulation) Routes() []*Route {
	return cloneRoutes(s.routes)
}
