package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFrameClock_RunsRequestsInOrder(t *testing.T) {
	c := NewFrameClock(60, zaptest.NewLogger(t))

	var got []int
	c.RequestFrame(func() { got = append(got, 1) })
	c.RequestFrame(func() { got = append(got, 2) })
	c.RequestFrame(func() { got = append(got, 3) })
	assert.Equal(t, 3, c.Pending())

	c.Frame()
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 0, c.Pending())

	c.Frame()
	assert.Equal(t, []int{1, 2, 3}, got, "callbacks fire once")
}

func TestFrameClock_CancelFrame(t *testing.T) {
	c := NewFrameClock(60, zaptest.NewLogger(t))

	fired := map[string]bool{}
	c.RequestFrame(func() { fired["a"] = true })
	id := c.RequestFrame(func() { fired["b"] = true })
	c.RequestFrame(func() { fired["c"] = true })

	c.CancelFrame(id)
	c.CancelFrame(id + 100) // unknown ids are ignored
	c.Frame()

	assert.Equal(t, map[string]bool{"a": true, "c": true}, fired)
}

func TestFrameClock_RequestDuringFrameDefers(t *testing.T) {
	c := NewFrameClock(60, zaptest.NewLogger(t))

	calls := 0
	var again func()
	again = func() {
		calls++
		c.RequestFrame(again)
	}
	c.RequestFrame(again)

	c.Frame()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Pending())

	c.Frame()
	assert.Equal(t, 2, calls)
}

func TestFrameClock_Run(t *testing.T) {
	c := NewFrameClock(500, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int64
	var again func()
	again = func() {
		calls.Add(1)
		c.RequestFrame(again)
	}
	c.RequestFrame(again)

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewFrameClock_DefaultRate(t *testing.T) {
	c := NewFrameClock(0, zaptest.NewLogger(t))
	assert.Equal(t, time.Second/60, c.interval)
}
