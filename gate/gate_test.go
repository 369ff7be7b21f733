package gate

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGate_IdleDoesNotBlock verifies a fresh gate lets waiters through
func TestGate_IdleDoesNotBlock(t *testing.T) {
	g := New()
	assert.False(t, g.Busy())
	assert.True(t, g.WaitIdle())
}

// TestGate_WaitsForIdle verifies a waiter is held until MarkIdle
func TestGate_WaitsForIdle(t *testing.T) {
	g := New()
	g.MarkBusy()

	var passed atomic.Bool
	done := make(chan bool, 1)
	go func() {
		ok := g.WaitIdle()
		passed.Store(true)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, passed.Load(), "waiter passed a busy gate")

	g.MarkIdle()
	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by MarkIdle")
	}
}

// TestGate_CloseReleasesWaiters verifies shutdown does not strand the line reader
func TestGate_CloseReleasesWaiters(t *testing.T) {
	g := New()
	g.MarkBusy()

	done := make(chan bool, 1)
	go func() { done <- g.WaitIdle() }()

	g.Close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by Close")
	}
	require.False(t, g.WaitIdle())
}
