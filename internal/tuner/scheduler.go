package tuner

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/EternalUpdate/solfege-tuner/internal/audio"
	"github.com/EternalUpdate/solfege-tuner/internal/pitch"
	"github.com/EternalUpdate/solfege-tuner/internal/scale"
)

// State is the scheduler's lifecycle state.
type State int

const (
	// Idle: no capture active. The resting state.
	Idle State = iota
	// Armed: capture connect requested, no tick scheduled yet.
	Armed
	// TickPending: exactly one tick request outstanding.
	TickPending
	// Running: tick pending and at least one state published.
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case TickPending:
		return "tick-pending"
	case Running:
		return "running"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// DefaultMaxFrequency is the plausible vocal/instrumental ceiling;
// estimates above it are discarded as artifacts.
const DefaultMaxFrequency = 7000.0

// Config holds scheduler parameters.
type Config struct {
	Root   string  // starting root pitch class; empty means C
	MaxHz  float64 // detection ceiling; non-positive means default
	Logger *slog.Logger
}

// Scheduler drives the detect-name-map-publish loop. It keeps at most
// one tick in flight: the pending marker is cleared when a tick fires
// and the next request is only issued while none is outstanding.
type Scheduler struct {
	capturer  audio.Capturer
	estimator pitch.Estimator
	pacer     Pacer
	bcast     *Broadcaster
	log       *slog.Logger
	maxHz     float64

	mu         sync.Mutex
	state      State
	root       string
	pending    TickHandle
	hasPending bool
	gen        uint64
	last       DetectionState
}

// NewScheduler wires a capture source, an estimator and a pacer into a
// detection scheduler. The root must be one of the 12 chromatic pitch
// classes in flat or sharp spelling.
func NewScheduler(capturer audio.Capturer, estimator pitch.Estimator, pacer Pacer, cfg Config) (*Scheduler, error) {
	root := cfg.Root
	if root == "" {
		root = "C"
	}
	if _, err := scale.Rotate(root); err != nil {
		return nil, err
	}
	maxHz := cfg.MaxHz
	if maxHz <= 0 {
		maxHz = DefaultMaxFrequency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		capturer:  capturer,
		estimator: estimator,
		pacer:     pacer,
		bcast:     NewBroadcaster(),
		log:       logger,
		maxHz:     maxHz,
		state:     Idle,
		root:      scale.Normalize(root),
	}, nil
}

// Subscribe registers a listener for published detection states.
func (s *Scheduler) Subscribe() *Listener {
	return s.bcast.Subscribe()
}

// Unsubscribe removes a listener.
func (s *Scheduler) Unsubscribe(l *Listener) {
	s.bcast.Unsubscribe(l)
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Root returns the current root pitch class.
func (s *Scheduler) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Last returns the most recently published detection state. It is not
// cleared on stop; last known values remain visible.
func (s *Scheduler) Last() DetectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Start requests a capture connection and, once connected, begins the
// tick cadence. The connect completes asynchronously; a failure is
// published as an Event with Err set and leaves the scheduler Idle.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return fmt.Errorf("start: scheduler is %s, want idle", s.state)
	}
	s.state = Armed
	s.mu.Unlock()

	go func() {
		err := s.capturer.Start()

		s.mu.Lock()
		if s.state != Armed {
			// Stopped while the connect was in flight.
			s.mu.Unlock()
			if err == nil {
				s.capturer.Stop()
			}
			return
		}
		if err != nil {
			s.state = Idle
			s.mu.Unlock()
			s.log.Error("capture connect failed", "err", err)
			s.bcast.publish(Event{Err: fmt.Errorf("capture unavailable: %w", err)})
			return
		}
		s.state = TickPending
		s.requestTickLocked()
		s.mu.Unlock()
	}()
	return nil
}

// Stop cancels any scheduled tick and disconnects the capture stream.
// If anything was ever detected, the last detection state is
// re-published with Active false; otherwise listeners get no event.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.state == Idle {
		s.mu.Unlock()
		return nil
	}
	connected := s.state == TickPending || s.state == Running
	if s.hasPending {
		s.pacer.CancelTick(s.pending)
		s.hasPending = false
	}
	s.state = Idle
	s.mu.Unlock()

	if connected {
		if err := s.capturer.Stop(); err != nil {
			s.log.Warn("capture stop failed", "err", err)
		}
	}

	s.mu.Lock()
	if s.last.Note != "" {
		s.last.Active = false
		s.bcast.publish(Event{State: s.last})
	}
	s.mu.Unlock()
	return nil
}

// SetRoot changes the root pitch class. A scheduled-but-unfired tick
// is cancelled and replaced immediately so a stale root never produces
// one more publication; a tick already in flight completes with the
// root it read.
func (s *Scheduler) SetRoot(root string) error {
	if _, err := scale.Rotate(root); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = scale.Normalize(root)
	if s.hasPending {
		s.pacer.CancelTick(s.pending)
		s.hasPending = false
		s.requestTickLocked()
	}
	return nil
}

// requestTickLocked issues exactly one tick request if and only if
// none is outstanding. Each request carries its own generation so a
// callback whose request was superseded can recognize itself as stale.
// Callers hold s.mu.
func (s *Scheduler) requestTickLocked() {
	if s.hasPending {
		return
	}
	s.hasPending = true
	s.gen++
	gen := s.gen
	s.pending = s.pacer.RequestTick(func() { s.tick(gen) })
}

// tick is one full detection cycle: clear the pending marker, read a
// frame snapshot, estimate, name, map, publish, request the next tick.
// A tick can only cancel before its timer fires; if a cancel-and-reissue
// lands in the window between the timer firing and the callback running,
// the stale callback must bow out or two tick chains would run at once.
func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if !s.hasPending || gen != s.gen {
		// Superseded while firing; the replacement owns the marker.
		s.mu.Unlock()
		return
	}
	s.hasPending = false
	if s.state == Idle {
		s.mu.Unlock()
		return
	}
	root := s.root
	s.mu.Unlock()

	s.detect(root)

	s.mu.Lock()
	if s.state != Idle {
		s.requestTickLocked()
	}
	s.mu.Unlock()
}

// detect runs the estimate -> name -> solfège pipeline for one frame
// and publishes the result. Undetected or out-of-range frames skip
// publication; the cadence continues either way.
func (s *Scheduler) detect(root string) {
	frame, err := s.capturer.Frame()
	if err != nil {
		s.log.Warn("frame read failed", "err", err)
		return
	}

	freq, err := s.estimator.Estimate(frame)
	if err != nil {
		if !pitch.Undetected(err) {
			s.log.Warn("estimate failed", "err", err)
		}
		return
	}
	if freq <= 0 || freq > s.maxHz {
		return
	}

	note, err := pitch.NameOf(freq)
	if err != nil {
		s.log.Warn("note naming failed", "freq", freq, "err", err)
		return
	}

	syllable, err := scale.SolfegeOf(note.Name, root)
	if err != nil {
		// Table defect, not a detection miss. Never publish a wrong
		// syllable.
		s.log.Error("solfège mapping defect", "note", note.String(), "root", root, "err", err)
		return
	}

	state := DetectionState{
		Pitch:    fmt.Sprintf("%.2f", freq),
		Note:     note.String(),
		Syllable: syllable,
		Active:   true,
	}

	s.mu.Lock()
	if s.state == Idle {
		// Stopped while this tick was in flight; let the stop event
		// stand.
		s.mu.Unlock()
		return
	}
	s.last = state
	s.state = Running
	s.bcast.publish(Event{State: state})
	s.mu.Unlock()
}
