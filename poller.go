package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SnapshotSink receives every published snapshot in addition to websocket
// clients.
type SnapshotSink interface {
	Publish(ctx context.Context, vehicles []Vehicle) error
}

// poller samples the simulation periodically and broadcasts when any truck
// moved since the previous sample.

type poller struct {
	sim      *Simulation
	hub      *wsHub
	sinks    []SnapshotSink
	interval time.Duration
	log      *zap.Logger

	mu           sync.Mutex
	lastVehicles []Vehicle
}

func newPoller(sim *Simulation, hub *wsHub, interval time.Duration, log *zap.Logger, sinks ...SnapshotSink) *poller {
	return &poller{
		sim:      sim,
		hub:      hub,
		sinks:    sinks,
		interval: interval,
		log:      log,
	}
}

func (p *poller) run(ctx context.Context) {
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.tick(ctx)
			t.Reset(p.interval)
		}
	}
}

func (p *poller) tick(ctx context.Context) {
	changed, snapshot := p.detectChanges(vehiclesOf(p.sim.Snapshot(), p.sim.Routes()))
	if !changed {
		return
	}
	p.hub.broadcast(snapshot)
	for _, sink := range p.sinks {
		cctx, cancel := context.WithTimeout(ctx, p.interval)
		if err := sink.Publish(cctx, snapshot); err != nil {
			p.log.Warn("sink publish failed", zap.Error(err))
		}
		cancel()
	}
}

// detectChanges stamps LastUpdate on trucks whose position moved and keeps
// the previous stamp for the rest.
func (p *poller) detectChanges(in []Vehicle) (bool, []Vehicle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := make(map[string]Vehicle, len(p.lastVehicles))
	for _, v := range p.lastVehicles {
		prev[v.ID] = v
	}
	now := time.Now().UnixMilli()
	changed := len(in) != len(p.lastVehicles)
	out := make([]Vehicle, 0, len(in))
	for _, v := range in {
		old, ok := prev[v.ID]
		if !ok || old.Lat != v.Lat || old.Lon != v.Lon || old.CurrentIndex != v.CurrentIndex {
			v.LastUpdate = now
			changed = true
		} else {
			v.LastUpdate = old.LastUpdate
		}
		out = append(out, v)
	}
	p.lastVehicles = out
	return changed, out
}

// lastSnapshot returns a copy of the most recent sample.
func (p *poller) lastSnapshot() []Vehicle {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Vehicle, len(p.lastVehicles))
	copy(out, p.lastVehicles)
	return out
}
