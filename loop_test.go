package main

import (
	"sync"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAnimationLoop_TicksOncePerFrame(t *testing.T) {
	clock := NewFrameClock(60, zaptest.NewLogger(t))
	r := abcRoute(t)

	var seen []TrackedEntity
	loop, err := NewAnimationLoop(r, 0.5, clock, func(e TrackedEntity) { seen = append(seen, e) })
	require.NoError(t, err)

	clock.Frame()
	assert.Equal(t, uint64(0), loop.Ticks(), "not started")

	loop.Start()
	loop.Start() // second Start is a no-op
	assert.Equal(t, 1, clock.Pending())

	clock.Frame()
	assert.Equal(t, 0, loop.State().CurrentIndex)
	assert.Equal(t, 0.5, loop.State().Progress)

	clock.Frame()
	assert.Equal(t, 1, loop.State().CurrentIndex)
	assert.Equal(t, r.Waypoints[1].LatLng, loop.State().Position)

	assert.Equal(t, uint64(2), loop.Ticks())
	require.Len(t, seen, 2)
	assert.Equal(t, loop.State(), seen[1])
}

func TestAnimationLoop_CancelStopsMutation(t *testing.T) {
	clock := NewFrameClock(60, zaptest.NewLogger(t))
	r := abcRoute(t)
	loop, err := NewAnimationLoop(r, 0.1, clock, nil)
	require.NoError(t, err)

	loop.Start()
	for i := 0; i < 7; i++ {
		clock.Frame()
	}
	loop.Cancel()
	before := loop.State()
	assert.Equal(t, 0, clock.Pending(), "pending frame is dropped")

	for i := 0; i < 50; i++ {
		clock.Frame()
	}
	assert.Empty(t, pretty.Diff(before, loop.State()))
	assert.Equal(t, uint64(7), loop.Ticks())
	assert.True(t, loop.Cancelled())

	loop.Start()
	clock.Frame()
	assert.Equal(t, before, loop.State(), "a cancelled loop does not restart")
}

// A frame callback that was already dequeued when Cancel ran must not mutate.
func TestAnimationLoop_CancelRacesDequeuedFrame(t *testing.T) {
	frames := &capturingScheduler{}
	r := abcRoute(t)
	loop, err := NewAnimationLoop(r, 0.25, frames, nil)
	require.NoError(t, err)

	loop.Start()
	cb := frames.take()
	require.NotNil(t, cb)

	loop.Cancel()
	before := loop.State()
	cb()

	assert.Equal(t, before, loop.State())
	assert.Nil(t, frames.take(), "no reschedule after cancel")
}

func TestAnimationLoop_CancelBeforeStart(t *testing.T) {
	clock := NewFrameClock(60, zaptest.NewLogger(t))
	loop, err := NewAnimationLoop(abcRoute(t), DefaultStep, clock, nil)
	require.NoError(t, err)

	loop.Cancel()
	loop.Start()
	assert.Equal(t, 0, clock.Pending())
}

func TestAnimationLoop_ConcurrentCancel(t *testing.T) {
	clock := NewFrameClock(60, zaptest.NewLogger(t))
	loop, err := NewAnimationLoop(abcRoute(t), DefaultStep, clock, nil)
	require.NoError(t, err)
	loop.Start()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				clock.Frame()
			}
		}
	}()

	for loop.Ticks() < 10 {
		_ = loop.State()
	}
	loop.Cancel()
	after := loop.State()
	ticks := loop.Ticks()
	for i := 0; i < 1000; i++ {
		require.Equal(t, after, loop.State())
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, ticks, loop.Ticks())
}

func TestNewAnimationLoop_Errors(t *testing.T) {
	clock := NewFrameClock(60, zaptest.NewLogger(t))

	_, err := NewAnimationLoop(abcRoute(t), 0, clock, nil)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = NewAnimationLoop(&Route{ID: "empty", SegmentDuration: 1}, DefaultStep, clock, nil)
	assert.ErrorIs(t, err, ErrEmptyRoute)
}

// capturingScheduler hands frame callbacks to the test instead of running
// them, so a test can interleave Cancel with an already dequeued frame.
type capturingScheduler struct {
	mu     sync.Mutex
	lastID FrameID
	fn     func()
}

func (s *capturingScheduler) RequestFrame(fn func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	s.fn = fn
	return s.lastID
}

// CancelFrame is a no-op, leaving the loop's cancelled flag as the only guard.
func (s *capturingScheduler) CancelFrame(FrameID) {}

func (s *capturingScheduler) take() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn := s.fn
	s.fn = nil
	return fn
}
