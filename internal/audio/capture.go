package audio

import (
	"errors"
	"sync"
)

var (
	ErrNotCapturing     = errors.New("audio capture not started")
	ErrAlreadyCapturing = errors.New("audio capture already started")
)

// Frame is a fixed-length window of normalized mono samples together
// with the rate they were captured at. Sample values are roughly in
// [-1, 1]; length is the configured analysis window.
type Frame struct {
	Samples    []float32
	SampleRate int
}

// Capturer defines the interface for audio capture. Frame must return
// a snapshot: the returned slice is never mutated after the call.
type Capturer interface {
	// Start begins audio capture.
	Start() error

	// Stop ends audio capture.
	Stop() error

	// Frame returns a copy of the most recent analysis window.
	Frame() (Frame, error)

	// IsCapturing returns true if currently capturing audio.
	IsCapturing() bool

	// SetAmplification sets the input gain applied to raw samples.
	SetAmplification(factor float32)
}

// StaticCapturer serves a fixed frame, for tests and offline analysis.
// Safe for use from multiple goroutines.
type StaticCapturer struct {
	mu          sync.Mutex
	frame       Frame
	amplify     float32
	isCapturing bool
}

// NewStaticCapturer creates a capturer that always serves the given
// samples at the given rate.
func NewStaticCapturer(samples []float32, sampleRate int) *StaticCapturer {
	return &StaticCapturer{
		frame: Frame{
			Samples:    samples,
			SampleRate: sampleRate,
		},
		amplify: 1.0,
	}
}

// SetSamples replaces the served frame contents.
func (c *StaticCapturer) SetSamples(samples []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.Samples = samples
}

// Start begins audio capture.
func (c *StaticCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isCapturing {
		return ErrAlreadyCapturing
	}
	c.isCapturing = true
	return nil
}

// Stop ends audio capture.
func (c *StaticCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCapturing {
		return ErrNotCapturing
	}
	c.isCapturing = false
	return nil
}

// Frame returns a copy of the stored frame with gain applied.
func (c *StaticCapturer) Frame() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCapturing {
		return Frame{}, ErrNotCapturing
	}
	out := Frame{
		Samples:    make([]float32, len(c.frame.Samples)),
		SampleRate: c.frame.SampleRate,
	}
	for i, s := range c.frame.Samples {
		out.Samples[i] = s * c.amplify
	}
	return out, nil
}

// IsCapturing returns true if currently capturing audio.
func (c *StaticCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}

// SetAmplification sets the input gain applied to served samples.
func (c *StaticCapturer) SetAmplification(factor float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if factor < 0.1 {
		factor = 0.1
	}
	c.amplify = factor
}
