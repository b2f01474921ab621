package tuner

import "testing"

func TestBroadcasterSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	if b.ListenerCount() != 0 {
		t.Fatalf("initial ListenerCount = %d, want 0", b.ListenerCount())
	}

	l1 := b.Subscribe()
	l2 := b.Subscribe()
	if b.ListenerCount() != 2 {
		t.Errorf("ListenerCount = %d, want 2", b.ListenerCount())
	}

	b.Unsubscribe(l1)
	if b.ListenerCount() != 1 {
		t.Errorf("ListenerCount = %d, want 1", b.ListenerCount())
	}
	select {
	case <-l1.Done():
	default:
		t.Error("unsubscribed listener not signalled done")
	}

	// Double unsubscribe must not close done twice.
	b.Unsubscribe(l1)
	b.Unsubscribe(l2)
	if b.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", b.ListenerCount())
	}
}

func TestBroadcasterDelivers(t *testing.T) {
	b := NewBroadcaster()
	l := b.Subscribe()

	want := Event{State: DetectionState{Pitch: "440.00", Note: "A4", Syllable: "la", Active: true}}
	b.publish(want)

	select {
	case got := <-l.C:
		if got.State != want.State {
			t.Errorf("received %+v, want %+v", got.State, want.State)
		}
	default:
		t.Fatal("no event delivered")
	}
}

func TestBroadcasterDropsWhenSlow(t *testing.T) {
	b := NewBroadcaster()
	l := b.Subscribe()

	// Fill the listener buffer and keep publishing; the publisher must
	// never block.
	for i := 0; i < cap(l.C)+10; i++ {
		b.publish(Event{State: DetectionState{Pitch: "100.00"}})
	}
	if len(l.C) != cap(l.C) {
		t.Errorf("buffered = %d, want full buffer %d", len(l.C), cap(l.C))
	}
}
