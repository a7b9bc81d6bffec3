package event

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuffer is the event buffer used when NewChannel is given a
// non-positive size.
const DefaultBuffer = 256

// Channel is a one-way, single-consumer event sink. Emit never blocks: when
// the consumer falls behind, events are dropped and counted. Close is the
// terminal signal; it is always delivered because it closes the underlying
// channel rather than sending on it.
//
// A recorder set with SetRecorder sees every emitted event, including those
// the consumer never receives.
//
// A nil *Channel is valid and discards everything.
type Channel struct {
	ch       chan Event
	dropped  atomic.Int64
	mu       sync.RWMutex
	closed   bool
	recorder func(Event)
}

// NewChannel creates a Channel with the given buffer size.
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Channel{ch: make(chan Event, buffer)}
}

// Events returns the receive side for the consumer.
func (c *Channel) Events() <-chan Event {
	if c == nil {
		return nil
	}
	return c.ch
}

// SetRecorder installs fn to be called synchronously for every event emitted
// before Close, whether or not the consumer has room for it. It replaces any
// previous recorder.
func (c *Channel) SetRecorder(fn func(Event)) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorder = fn
}

// Emit offers ev to the consumer without blocking. It reports whether the
// event was buffered. Emitting after Close is a no-op.
func (c *Channel) Emit(ev Event) bool {
	if c == nil {
		return false
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	if c.recorder != nil {
		c.recorder(ev)
	}
	select {
	case c.ch <- ev:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Close delivers the terminal signal. Safe to call more than once.
func (c *Channel) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Dropped returns how many events were discarded because the buffer was full.
func (c *Channel) Dropped() int64 {
	if c == nil {
		return 0
	}
	return c.dropped.Load()
}
