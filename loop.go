package main

import (
	"sync"
)

// AnimationLoop advances one TrackedEntity once per frame until cancelled.
// The entity is only ever written by the loop's own frame callback, and never
// after Cancel has returned.
type AnimationLoop struct {
	route    *Route
	step     float64
	frames   FrameScheduler
	observer func(TrackedEntity)

	mu        sync.Mutex
	state     TrackedEntity
	pending   FrameID
	started   bool
	cancelled bool
	ticks     uint64
}

// NewAnimationLoop builds a loop for a fresh entity on route. observer, if
// non-nil, receives a copy of the state after every tick.
func NewAnimationLoop(route *Route, step float64, frames FrameScheduler, observer func(TrackedEntity)) (*AnimationLoop, error) {
	if err := ValidateStep(step); err != nil {
		return nil, err
	}
	e, err := NewTrackedEntity(route)
	if err != nil {
		return nil, err
	}
	return &AnimationLoop{
		route:    route,
		step:     step,
		frames:   frames,
		observer: observer,
		state:    e,
	}, nil
}

// Start schedules the first frame. Starting a running or cancelled loop does
// nothing; a cancelled loop is replaced, not restarted.
func (l *AnimationLoop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.cancelled {
		return
	}
	l.started = true
	l.pending = l.frames.RequestFrame(l.frame)
}

func (l *AnimationLoop) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancelled {
		return
	}
	l.cancelled = true
	if l.started {
		l.frames.CancelFrame(l.pending)
	}
}

func (l *AnimationLoop) Cancelled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancelled
}

func (l *AnimationLoop) State() TrackedEntity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *AnimationLoop) Ticks() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

func (l *AnimationLoop) Route() *Route {
	return l.route
}

func (l *AnimationLoop) frame() {
	l.mu.Lock()
	// the callback may have been dequeued before Cancel dropped it
	if l.cancelled {
		l.mu.Unlock()
		return
	}
	l.state = Tick(l.state, l.route, l.step)
	l.ticks++
	snapshot := l.state
	l.pending = l.frames.RequestFrame(l.frame)
	l.mu.Unlock()

	if l.observer != nil {
		l.observer(snapshot)
	}
}
