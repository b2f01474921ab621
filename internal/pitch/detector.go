package pitch

import (
	"errors"
	"fmt"
	"math"

	"github.com/EternalUpdate/solfege-tuner/internal/audio"
)

// Errors
var (
	ErrEmptyFrame     = errors.New("empty audio frame")
	ErrInvalidRate    = errors.New("invalid sample rate")
	ErrBelowThreshold = errors.New("signal below silence threshold")
	ErrNoPitch        = errors.New("no confident pitch")
	ErrBadFrequency   = errors.New("frequency must be positive")
)

// Undetected reports whether an estimator error means "no pitch in
// this frame" rather than a caller mistake. Undetected frames are a
// normal outcome, not a failure.
func Undetected(err error) bool {
	return errors.Is(err, ErrBelowThreshold) || errors.Is(err, ErrNoPitch)
}

// Estimator is the interface for fundamental-frequency estimation.
// Implementations must be deterministic and side-effect-free: the same
// frame always yields the same estimate or the same sentinel error.
type Estimator interface {
	// Estimate returns the most likely fundamental frequency in Hz.
	Estimate(frame audio.Frame) (float64, error)
}

// Flat chromatic spellings indexed by pitch class (C = 0).
var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// Note represents a musical note in equal-tempered tuning.
type Note struct {
	Name      string  // flat spelling, e.g. "A", "Bb"
	Octave    int     // 4 for middle C (C4)
	Frequency float64 // detected frequency in Hz
	Cents     float64 // deviation from the perfect pitch (-50 to +50)
}

// String renders the note as letter+accidental+octave, e.g. "Eb4".
func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// NameOf converts a frequency to the nearest equal-tempered note,
// referenced to A4 = 440 Hz. A frequency exactly between two semitones
// rounds to the higher pitch.
func NameOf(frequency float64) (Note, error) {
	if frequency <= 0 {
		return Note{}, ErrBadFrequency
	}

	semitones := 12 * math.Log2(frequency/440.0)
	rounded := math.Floor(semitones + 0.5)
	cents := 100 * (semitones - rounded)

	// A4 is MIDI 69; octaves change at C.
	midi := int(rounded) + 69
	if midi < 0 {
		return Note{}, fmt.Errorf("%w: %.4f Hz below nameable range", ErrBadFrequency, frequency)
	}

	return Note{
		Name:      flatNames[midi%12],
		Octave:    midi/12 - 1,
		Frequency: frequency,
		Cents:     cents,
	}, nil
}
