package pitch

import (
	"math"

	"github.com/EternalUpdate/solfege-tuner/internal/audio"
)

// Tuning constants for the autocorrelation search.
const (
	// defaultSilenceRMS is the RMS below which a frame is treated as
	// silence and skipped outright.
	defaultSilenceRMS = 0.01

	// trimFloor is the amplitude below which leading/trailing samples
	// are considered silence padding and trimmed from the analysis
	// span.
	trimFloor = 0.2

	// minClarity is the minimum normalized correlation a peak must
	// reach to count as a confident pitch.
	minClarity = 0.5

	// minAnalysisSpan is the shortest trimmed span worth correlating.
	// Anything shorter cannot hold two periods of a detectable pitch.
	minAnalysisSpan = 64

	// octaveGuard: energy normalization leaves repeat peaks at period
	// multiples nearly as tall as the fundamental's, so the earliest
	// peak within this fraction of the best wins.
	octaveGuard = 0.95
)

// ACFEstimator estimates the fundamental frequency of a frame using a
// normalized autocorrelation search with parabolic peak refinement.
type ACFEstimator struct {
	silenceRMS float64
}

// NewACFEstimator creates the autocorrelation estimator. A
// non-positive silenceRMS selects the default threshold.
func NewACFEstimator(silenceRMS float64) *ACFEstimator {
	if silenceRMS <= 0 {
		silenceRMS = defaultSilenceRMS
	}
	return &ACFEstimator{silenceRMS: silenceRMS}
}

// Estimate returns the most likely fundamental frequency in Hz, or a
// sentinel error when the frame is silent, too short, or aperiodic.
func (e *ACFEstimator) Estimate(frame audio.Frame) (float64, error) {
	n := len(frame.Samples)
	if n == 0 {
		return 0, ErrEmptyFrame
	}
	if frame.SampleRate <= 0 {
		return 0, ErrInvalidRate
	}

	// Silence gate on raw RMS.
	var mean, energy float64
	for _, s := range frame.Samples {
		v := float64(s)
		mean += v
		energy += v * v
	}
	mean /= float64(n)
	rms := math.Sqrt(energy / float64(n))
	if rms < e.silenceRMS {
		return 0, ErrBelowThreshold
	}

	// Mean-removed working copy; a DC offset would otherwise dominate
	// the correlation at every lag.
	buf := make([]float64, n)
	for i, s := range frame.Samples {
		buf[i] = float64(s) - mean
	}

	// Trim silence padding from both ends. If nothing exceeds the
	// floor the whole frame stays in play.
	r1, r2 := 0, n-1
	for i := 0; i < n/2; i++ {
		if math.Abs(buf[i]) > trimFloor {
			r1 = i
			break
		}
	}
	for i := 0; i < n/2; i++ {
		if math.Abs(buf[n-1-i]) > trimFloor {
			r2 = n - 1 - i
			break
		}
	}
	buf = buf[r1 : r2+1]
	m := len(buf)
	if m < minAnalysisSpan {
		return 0, ErrNoPitch
	}

	// Normalized correlation curve over candidate lags. Each lag is
	// normalized by the energy of the two overlapping windows so the
	// curve stays comparable as the overlap shrinks.
	half := m / 2
	corr := make([]float64, half)
	for lag := 0; lag < half; lag++ {
		var ac, e0, e1 float64
		for j := 0; j+lag < m; j++ {
			ac += buf[j] * buf[j+lag]
			e0 += buf[j] * buf[j]
			e1 += buf[j+lag] * buf[j+lag]
		}
		if norm := math.Sqrt(e0 * e1); norm > 0 {
			corr[lag] = ac / norm
		}
	}

	// Walk down off the zero-lag peak, then take the strongest peak
	// past the first upturn.
	d := 0
	for d+1 < half && corr[d] > corr[d+1] {
		d++
	}
	if d+1 >= half {
		return 0, ErrNoPitch
	}
	bestLag, best := -1, -1.0
	for i := d; i < half; i++ {
		if corr[i] > best {
			best = corr[i]
			bestLag = i
		}
	}
	if bestLag <= 0 || best < minClarity {
		return 0, ErrNoPitch
	}

	// The fundamental is the earliest peak competitive with the best,
	// not necessarily the tallest one.
	for i := d + 1; i+1 < half; i++ {
		if corr[i] > corr[i-1] && corr[i] >= corr[i+1] && corr[i] >= best*octaveGuard {
			bestLag = i
			break
		}
	}

	// Parabolic refinement across the peak and its neighbors for
	// sub-sample lag precision.
	lag := float64(bestLag)
	if bestLag+1 < half {
		x1 := corr[bestLag-1]
		x2 := corr[bestLag]
		x3 := corr[bestLag+1]
		a := (x1 + x3 - 2*x2) / 2
		b := (x3 - x1) / 2
		if a != 0 {
			lag -= b / (2 * a)
		}
	}
	if lag <= 0 {
		return 0, ErrNoPitch
	}

	return float64(frame.SampleRate) / lag, nil
}
