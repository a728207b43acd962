package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type FrameID uint64

// FrameScheduler is the per-frame callback primitive of the host, in the
// spirit of requestAnimationFrame: a requested callback fires once, on the
// next frame, unless cancelled first.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

type frameRequest struct {
	id FrameID
	fn func()
}

// FrameClock runs queued frame callbacks on a single goroutine at a fixed
// frame rate. Callbacks requested while a frame is running are deferred to
// the following frame.
type FrameClock struct {
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	lastID FrameID
	queue  []frameRequest
	frames uint64
}

func NewFrameClock(fps int, log *zap.Logger) *FrameClock {
	if fps <= 0 {
		fps = 60
	}
	return &FrameClock{
		interval: time.Second / time.Duration(fps),
		log:      log,
	}
}

func (c *FrameClock) RequestFrame(fn func()) FrameID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastID++
	c.queue = append(c.queue, frameRequest{id: c.lastID, fn: fn})
	return c.lastID
}

func (c *FrameClock) CancelFrame(id FrameID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, req := range c.queue {
		if req.id == id {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

// Pending reports how many callbacks wait for the next frame.
func (c *FrameClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Frame runs one frame synchronously on the calling goroutine.
func (c *FrameClock) Frame() {
	c.mu.Lock()
	batch := c.queue
	c.queue = nil
	c.frames++
	c.mu.Unlock()

	for _, req := range batch {
		req.fn()
	}
}

// Run drives frames until ctx is done.
func (c *FrameClock) Run(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	c.log.Info("frame clock started", zap.Duration("interval", c.interval))
	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			frames := c.frames
			c.mu.Unlock()
			c.log.Info("frame clock stopped", zap.Uint64("frames", frames))
			return
		case <-t.C:
			c.Frame()
		}
	}
}
