package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingSink struct {
	mu    sync.Mutex
	calls [][]Vehicle
	err   error
}

func (s *recordingSink) Publish(ctx context.Context, vehicles []Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, vehicles)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestPoller_DetectChanges(t *testing.T) {
	sim, _ := newTestSimulation(t, DefaultStep)
	p := newPoller(sim, newHub(zaptest.NewLogger(t)), time.Second, zaptest.NewLogger(t))

	in := []Vehicle{{ID: "a", Lat: 1, Lon: 1}, {ID: "b", Lat: 2, Lon: 2}}
	changed, out := p.detectChanges(in)
	require.True(t, changed)
	stamp := out[0].LastUpdate
	assert.NotZero(t, stamp)

	changed, out = p.detectChanges(in)
	assert.False(t, changed)
	assert.Equal(t, stamp, out[0].LastUpdate)

	time.Sleep(2 * time.Millisecond)
	moved := []Vehicle{{ID: "a", Lat: 1.5, Lon: 1}, {ID: "b", Lat: 2, Lon: 2}}
	changed, out = p.detectChanges(moved)
	assert.True(t, changed)
	assert.Greater(t, out[0].LastUpdate, stamp)
	assert.Equal(t, stamp, out[1].LastUpdate)
}

func TestPoller_TickPublishesOnlyOnChange(t *testing.T) {
	sim, clock := newTestSimulation(t, DefaultStep)
	sink := &recordingSink{}
	failing := &recordingSink{err: errors.New("down")}
	p := newPoller(sim, newHub(zaptest.NewLogger(t)), time.Second, zaptest.NewLogger(t), failing, sink)
	ctx := context.Background()

	p.tick(ctx)
	assert.Equal(t, 1, sink.count(), "first sample is always published")
	assert.Equal(t, 1, failing.count())

	p.tick(ctx)
	assert.Equal(t, 1, sink.count(), "nothing moved")

	sim.Start()
	clock.Frame()
	p.tick(ctx)
	assert.Equal(t, 2, sink.count())

	sim.Stop()
	clock.Frame()
	p.tick(ctx)
	assert.Equal(t, 2, sink.count(), "a stopped simulation publishes nothing")

	last := p.lastSnapshot()
	require.Len(t, last, 2)
	assert.Equal(t, "Truck 1", last[0].ID)
	assert.Equal(t, DefaultStep, last[0].Progress)
}

func TestPoller_Run(t *testing.T) {
	sim, _ := newTestSimulation(t, DefaultStep)
	sink := &recordingSink{}
	p := newPoller(sim, newHub(zaptest.NewLogger(t)), 10*time.Millisecond, zaptest.NewLogger(t), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sink.count() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
