package tuner

import (
	"sync"
	"time"
)

// TickHandle identifies a scheduled tick request so it can be
// cancelled before it fires.
type TickHandle uint64

// Pacer is the frame-pacing primitive: it invokes the callback once at
// the next pacing boundary, unless the request is cancelled first.
type Pacer interface {
	RequestTick(fn func()) TickHandle
	CancelTick(h TickHandle)
}

// DefaultTickInterval approximates one display refresh at 60 Hz.
const DefaultTickInterval = 16 * time.Millisecond

// FramePacer delivers ticks on a fixed refresh cadence, one timer per
// outstanding request.
type FramePacer struct {
	interval time.Duration

	mu     sync.Mutex
	seq    TickHandle
	timers map[TickHandle]*time.Timer
}

// NewFramePacer creates a pacer firing after the given interval. A
// non-positive interval selects DefaultTickInterval.
func NewFramePacer(interval time.Duration) *FramePacer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &FramePacer{
		interval: interval,
		timers:   make(map[TickHandle]*time.Timer),
	}
}

// RequestTick schedules fn to run once after the pacing interval.
func (p *FramePacer) RequestTick(fn func()) TickHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	h := p.seq
	p.timers[h] = time.AfterFunc(p.interval, func() {
		p.mu.Lock()
		_, live := p.timers[h]
		delete(p.timers, h)
		p.mu.Unlock()
		// A handle cancelled after the timer fired but before this
		// check is suppressed here.
		if live {
			fn()
		}
	})
	return h
}

// CancelTick drops a scheduled request. Cancelling a handle that has
// already fired is a no-op.
func (p *FramePacer) CancelTick(h TickHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.timers[h]; ok {
		t.Stop()
		delete(p.timers, h)
	}
}
