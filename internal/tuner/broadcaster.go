package tuner

import "sync"

// DetectionState is the externally published detection triple plus the
// running flag.
type DetectionState struct {
	Pitch    string // frequency formatted to 2 decimal places
	Note     string // e.g. "Eb4"
	Syllable string // e.g. "me"
	Active   bool
}

// Event is one publication from the scheduler: a new detection state,
// or a capture failure in Err.
type Event struct {
	State DetectionState
	Err   error
}

// Broadcaster fans out scheduler events to N listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
}

// Listener receives scheduler events.
type Listener struct {
	C    chan Event
	done chan struct{}
}

// Done is closed when the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		C:    make(chan Event, 16),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	if _, ok := b.listeners[l]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.listeners, l)
	b.mu.Unlock()
	close(l.done)
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// publish fans out one event. Slow listeners have events dropped
// rather than blocking the detection loop.
func (b *Broadcaster) publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for l := range b.listeners {
		select {
		case l.C <- ev:
		default:
		}
	}
}
