package tuner

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestFramePacerFiresOnce(t *testing.T) {
	p := NewFramePacer(time.Millisecond)

	var fired atomic.Int32
	p.RequestTick(func() { fired.Add(1) })

	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want exactly 1", got)
	}
}

func TestFramePacerCancel(t *testing.T) {
	p := NewFramePacer(20 * time.Millisecond)

	var fired atomic.Int32
	h := p.RequestTick(func() { fired.Add(1) })
	p.CancelTick(h)

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("cancelled tick fired %d times", got)
	}
}

func TestFramePacerCancelAfterFire(t *testing.T) {
	p := NewFramePacer(time.Millisecond)

	done := make(chan struct{})
	h := p.RequestTick(func() { close(done) })
	<-done

	// Must be a no-op, not a panic or a double fire.
	p.CancelTick(h)
}

func TestFramePacerIndependentRequests(t *testing.T) {
	p := NewFramePacer(time.Millisecond)

	var fired atomic.Int32
	keep := p.RequestTick(func() { fired.Add(1) })
	drop := p.RequestTick(func() { fired.Add(100) })
	p.CancelTick(drop)

	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired total = %d, want 1 (kept handle %d only)", got, keep)
	}
}

func TestFramePacerDefaultInterval(t *testing.T) {
	p := NewFramePacer(0)
	if p.interval != DefaultTickInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultTickInterval)
	}
}
