package pitch

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/EternalUpdate/solfege-tuner/internal/audio"
	"github.com/mjibson/go-dsp/fft"
)

// SpectralEstimator is an alternative frequency estimator that picks
// the strongest interpolated peak of the magnitude spectrum. It trades
// the autocorrelation estimator's low-frequency robustness for speed
// on large windows.
type SpectralEstimator struct {
	minFrequency  float64 // lowest frequency searched (Hz)
	maxFrequency  float64 // highest frequency searched (Hz)
	noiseFloor    float64 // minimum usable peak magnitude
	peakThreshold float64 // minimum peak height as fraction of highest peak
	silenceRMS    float64 // minimum RMS for detection
}

// NewSpectralEstimator creates an FFT-based estimator. A non-positive
// silenceRMS selects the default threshold.
func NewSpectralEstimator(silenceRMS float64) *SpectralEstimator {
	if silenceRMS <= 0 {
		silenceRMS = defaultSilenceRMS
	}
	return &SpectralEstimator{
		minFrequency:  60.0,
		maxFrequency:  1500.0,
		noiseFloor:    0.01,
		peakThreshold: 0.2,
		silenceRMS:    silenceRMS,
	}
}

// Estimate returns the frequency of the strongest spectral peak, or a
// sentinel error for silent or peakless frames.
func (e *SpectralEstimator) Estimate(frame audio.Frame) (float64, error) {
	if len(frame.Samples) == 0 {
		return 0, ErrEmptyFrame
	}
	if frame.SampleRate <= 0 {
		return 0, ErrInvalidRate
	}

	var sumSquares float64
	for _, sample := range frame.Samples {
		v := float64(sample)
		sumSquares += v * v
	}
	rms := math.Sqrt(sumSquares / float64(len(frame.Samples)))
	if rms < e.silenceRMS {
		return 0, ErrBelowThreshold
	}

	windowed := applyHannWindow(frame.Samples)
	complexSamples := make([]complex128, len(windowed))
	for i, sample := range windowed {
		complexSamples[i] = complex(float64(sample), 0)
	}
	spectrum := fft.FFT(complexSamples)

	freq, ok := e.findPeakFrequency(spectrum, frame.SampleRate)
	if !ok {
		return 0, ErrNoPitch
	}
	return freq, nil
}

// applyHannWindow applies a Hann window to the audio samples.
func applyHannWindow(samples []float32) []float32 {
	windowed := make([]float32, len(samples))
	for i, sample := range samples {
		coeff := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(len(samples)-1)))
		windowed[i] = sample * float32(coeff)
	}
	return windowed
}

// peak is a local maximum in the magnitude spectrum.
type peak struct {
	bin       int
	magnitude float64
	frequency float64
}

// findPeakFrequency locates the strongest spectral peak within the
// search band, refined by quadratic interpolation across the peak bin.
func (e *SpectralEstimator) findPeakFrequency(spectrum []complex128, sampleRate int) (float64, bool) {
	half := spectrum[:len(spectrum)/2]
	binSizeHz := float64(sampleRate) / float64(len(spectrum))

	minBin := int(e.minFrequency / binSizeHz)
	if minBin < 1 {
		minBin = 1 // skip the DC component
	}
	maxBin := int(e.maxFrequency / binSizeHz)
	if maxBin >= len(half) {
		maxBin = len(half) - 1
	}

	maxMagnitude := 0.0
	for i := minBin; i <= maxBin; i++ {
		if m := cmplx.Abs(half[i]); m > maxMagnitude {
			maxMagnitude = m
		}
	}
	if maxMagnitude < e.noiseFloor {
		return 0, false
	}

	var peaks []peak
	for i := minBin + 1; i < maxBin; i++ {
		magnitude := cmplx.Abs(half[i])
		prev := cmplx.Abs(half[i-1])
		next := cmplx.Abs(half[i+1])
		if magnitude <= prev || magnitude <= next || magnitude <= maxMagnitude*e.peakThreshold {
			continue
		}

		freq := float64(i) * binSizeHz
		if denom := prev - 2*magnitude + next; denom != 0 {
			delta := 0.5 * (prev - next) / denom
			freq = (float64(i) + delta) * binSizeHz
		}
		peaks = append(peaks, peak{bin: i, magnitude: magnitude, frequency: freq})
	}
	if len(peaks) == 0 {
		return 0, false
	}

	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].magnitude > peaks[j].magnitude
	})
	return peaks[0].frequency, true
}
