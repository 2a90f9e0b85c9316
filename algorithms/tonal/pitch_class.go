package tonal

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidPitch is returned when a label is not a note name
var ErrInvalidPitch = errors.New("invalid pitch label")

// PitchClassNames are the sharp spellings indexed by pitch class (0=C)
var PitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// stepClasses maps natural note letters onto pitch classes
var stepClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Spelling is a pitch class written as a letter plus an alteration
type Spelling struct {
	Step  string `json:"step"`
	Alter int    `json:"alter"`
}

var sharpSpellings = [12]Spelling{
	{"C", 0}, {"C", 1}, {"D", 0}, {"D", 1}, {"E", 0}, {"F", 0},
	{"F", 1}, {"G", 0}, {"G", 1}, {"A", 0}, {"A", 1}, {"B", 0},
}

var flatSpellings = [12]Spelling{
	{"C", 0}, {"D", -1}, {"D", 0}, {"E", -1}, {"E", 0}, {"F", 0},
	{"G", -1}, {"G", 0}, {"A", -1}, {"A", 0}, {"B", -1}, {"B", 0},
}

// ParsePitch splits a label such as "A4", "C#5" or "Bb3" into a pitch class
// and an octave. Alterations that cross the C boundary move the octave, so
// "Cb4" parses as B3.
func ParsePitch(label string) (pitchClass, octave int, err error) {
	if len(label) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPitch, label)
	}

	base, ok := stepClasses[label[0]]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPitch, label)
	}

	rest := label[1:]
	switch rest[0] {
	case '#':
		base++
		rest = rest[1:]
	case 'b':
		base--
		rest = rest[1:]
	}

	octave, err = strconv.Atoi(rest)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPitch, label)
	}

	shift := floorDiv(base, 12)
	return base - shift*12, octave + shift, nil
}

// StepClass returns the pitch class of a natural note letter
func StepClass(step string) (int, bool) {
	if len(step) != 1 {
		return 0, false
	}
	pc, ok := stepClasses[step[0]]
	return pc, ok
}

// MIDINumber returns the MIDI note number of a pitch class in an octave
// (A4 = 69)
func MIDINumber(pitchClass, octave int) int {
	return (octave+1)*12 + pitchClass
}

// Spell writes a pitch class for a key signature: flat keys (fifths < 0)
// use flats for the black keys, every other key uses sharps
func Spell(pitchClass, fifths int) Spelling {
	pc := ((pitchClass % 12) + 12) % 12
	if fifths < 0 {
		return flatSpellings[pc]
	}
	return sharpSpellings[pc]
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
