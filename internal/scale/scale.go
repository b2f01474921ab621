// Package scale maps equal-tempered pitch classes into movable-doh
// solfège syllables, with "do" anchored to a user-chosen root.
package scale

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRoot = errors.New("unknown root note")
	// ErrUnmappedClass means the chromatic and syllable tables are out
	// of sync. It indicates a defect, not a valid "no syllable" state.
	ErrUnmappedClass = errors.New("pitch class not in chromatic sequence")
)

// Chromatic is the canonical flat-spelled chromatic sequence starting
// at C. Rotations of this list are the only sequences this package
// produces.
var Chromatic = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// Syllables is the chromatic solfège table, positionally aligned with
// a root rotation of Chromatic: every semitone offset from the root
// gets a distinct syllable.
var Syllables = [12]string{"do", "ra", "re", "me", "mi", "fa", "se", "sol", "le", "la", "te", "ti"}

// sharpToFlat translates sharp spellings to the flat spelling at the
// same chromatic position.
var sharpToFlat = map[string]string{
	"C#": "Db",
	"D#": "Eb",
	"E#": "F",
	"F#": "Gb",
	"G#": "Ab",
	"A#": "Bb",
	"B#": "C",
}

// Normalize canonicalizes a pitch-class spelling: case-folded letter,
// sharps translated to flats. The empty string stays empty.
func Normalize(class string) string {
	if class == "" {
		return ""
	}
	c := strings.ToUpper(class[:1]) + class[1:]
	if flat := sharpToFlat[c]; flat != "" {
		return flat
	}
	return c
}

// indexOf returns the chromatic position of a normalized pitch class,
// or -1 when the spelling is not one of the 12 classes.
func indexOf(class string) int {
	for i, c := range Chromatic {
		if c == class {
			return i
		}
	}
	return -1
}

// Rotate produces the 12-tone chromatic sequence starting at root.
// Sharp-spelled roots are accepted and normalized to flats; the output
// is always flat-spelled.
func Rotate(root string) ([12]string, error) {
	start := indexOf(Normalize(root))
	if start < 0 {
		return [12]string{}, fmt.Errorf("%w: %q", ErrUnknownRoot, root)
	}

	var seq [12]string
	for i := range seq {
		seq[i] = Chromatic[(start+i)%12]
	}
	return seq, nil
}

// StripOctave removes the octave suffix from a note name, leaving the
// pitch class: "Eb4" -> "Eb", "C-1" -> "C".
func StripOctave(note string) string {
	return strings.TrimRight(note, "-0123456789")
}

// SolfegeOf returns the movable-doh syllable for a note relative to
// the given root. The note's octave is ignored.
func SolfegeOf(note, root string) (string, error) {
	seq, err := Rotate(root)
	if err != nil {
		return "", err
	}

	class := Normalize(StripOctave(note))
	for i, c := range seq {
		if c == class {
			return Syllables[i], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnmappedClass, note)
}
