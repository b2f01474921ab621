package audio

import (
	"sync"
	"testing"
)

// The scheduler stops capture from one goroutine while a detection
// cycle on another still reads frames, so Stop, Frame and IsCapturing
// must be safe to race. Runs only where a real input device exists.
func TestPortAudioCapturerConcurrentStop(t *testing.T) {
	c, err := NewPortAudioCapturer(256, 44100, 1)
	if err != nil {
		t.Skipf("portaudio unavailable: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Skipf("no input device: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.Frame()
			c.IsCapturing()
		}
	}()
	go func() {
		defer wg.Done()
		c.Stop()
	}()
	wg.Wait()

	if c.IsCapturing() {
		t.Error("still capturing after stop")
	}
	if err := c.Stop(); err != ErrNotCapturing {
		t.Errorf("second Stop = %v, want ErrNotCapturing", err)
	}
}
