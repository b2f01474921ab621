package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// PortAudioCapturer implements Capturer on top of the default
// PortAudio input stream. One shared analysis buffer is reused every
// callback; Frame hands out copies. The capturing flag is atomic so
// Stop and Frame can race from different goroutines.
type PortAudioCapturer struct {
	isCapturing   atomic.Bool
	stream        *portaudio.Stream
	frame         Frame
	windowSize    int
	sampleRate    int
	channels      int
	frameMutex    sync.Mutex
	amplification float32
}

// NewPortAudioCapturer initializes PortAudio and prepares a capturer
// with the given analysis window, sample rate and channel count.
func NewPortAudioCapturer(windowSize, sampleRate, channels int) (*PortAudioCapturer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	return &PortAudioCapturer{
		frame: Frame{
			Samples:    make([]float32, windowSize),
			SampleRate: sampleRate,
		},
		windowSize:    windowSize,
		sampleRate:    sampleRate,
		channels:      channels,
		amplification: 1.0,
	}, nil
}

// Start opens the default input stream and begins capture.
func (c *PortAudioCapturer) Start() error {
	if c.isCapturing.Load() {
		return ErrAlreadyCapturing
	}

	var err error
	c.stream, err = portaudio.OpenDefaultStream(
		c.channels,
		0, // no output
		float64(c.sampleRate),
		c.windowSize,
		c.processAudio,
	)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}

	c.isCapturing.Store(true)
	return nil
}

// Stop ends capture and tears down PortAudio.
func (c *PortAudioCapturer) Stop() error {
	if !c.isCapturing.CompareAndSwap(true, false) {
		return ErrNotCapturing
	}

	if err := c.stream.Stop(); err != nil {
		return err
	}
	if err := c.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}

// processAudio is the stream callback. Multi-channel input is averaged
// down to mono; amplification is applied before the samples land in
// the shared frame.
func (c *PortAudioCapturer) processAudio(in, _ []float32) {
	c.frameMutex.Lock()
	defer c.frameMutex.Unlock()

	if c.channels > 1 {
		mono := make([]float32, len(in)/c.channels)
		for i := 0; i < len(mono); i++ {
			sum := float32(0)
			for ch := 0; ch < c.channels; ch++ {
				sum += in[i*c.channels+ch]
			}
			mono[i] = (sum / float32(c.channels)) * c.amplification
		}
		c.frame.Samples = mono
		return
	}

	c.frame.Samples = make([]float32, len(in))
	for i, sample := range in {
		c.frame.Samples[i] = sample * c.amplification
	}
}

// Frame returns a snapshot copy of the most recent analysis window.
// The stream callback never touches the returned slice.
func (c *PortAudioCapturer) Frame() (Frame, error) {
	if !c.isCapturing.Load() {
		return Frame{}, ErrNotCapturing
	}

	c.frameMutex.Lock()
	defer c.frameMutex.Unlock()

	out := Frame{
		Samples:    make([]float32, len(c.frame.Samples)),
		SampleRate: c.frame.SampleRate,
	}
	copy(out.Samples, c.frame.Samples)
	return out, nil
}

// IsCapturing returns true if currently capturing audio.
func (c *PortAudioCapturer) IsCapturing() bool {
	return c.isCapturing.Load()
}

// SetAmplification sets the input gain applied in the stream callback.
func (c *PortAudioCapturer) SetAmplification(factor float32) {
	c.frameMutex.Lock()
	defer c.frameMutex.Unlock()

	if factor < 0.1 {
		factor = 0.1
	}
	c.amplification = factor
}

// DeviceInfo describes a capture-capable device for the CLI listing.
type DeviceInfo struct {
	Name       string
	Channels   int
	SampleRate float64
	Default    bool
}

// ListInputDevices enumerates devices with at least one input channel.
// It owns its own PortAudio init/terminate pair so it can run without
// an open capturer.
func ListInputDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	defaultDev, _ := portaudio.DefaultInputDevice()

	var out []DeviceInfo
	for _, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		out = append(out, DeviceInfo{
			Name:       d.Name,
			Channels:   d.MaxInputChannels,
			SampleRate: d.DefaultSampleRate,
			Default:    defaultDev != nil && d.Name == defaultDev.Name,
		})
	}
	return out, nil
}
