package rhythm

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonPositiveBPM is returned when a tempo of zero or less reaches the
// quantizer
var ErrNonPositiveBPM = errors.New("bpm must be positive")

// NoteType is a rhythmic value from the fixed quantization table
type NoteType int

const (
	Sixteenth NoteType = iota
	Eighth
	Quarter
	DottedQuarter
	Half
	DottedHalf
	Whole
)

// noteTypes lists every type ordered from shortest to longest
var noteTypes = []NoteType{Sixteenth, Eighth, Quarter, DottedQuarter, Half, DottedHalf, Whole}

var noteTypeInfo = map[NoteType]struct {
	name  string
	xml   string
	beats float64
	dots  int
}{
	Sixteenth:     {"sixteenth", "16th", 0.25, 0},
	Eighth:        {"eighth", "eighth", 0.5, 0},
	Quarter:       {"quarter", "quarter", 1.0, 0},
	DottedQuarter: {"dotted quarter", "quarter", 1.5, 1},
	Half:          {"half", "half", 2.0, 0},
	DottedHalf:    {"dotted half", "half", 3.0, 1},
	Whole:         {"whole", "whole", 4.0, 0},
}

// NoteTypes returns the quantization table, shortest first
func NoteTypes() []NoteType {
	return append([]NoteType(nil), noteTypes...)
}

func (t NoteType) String() string {
	if info, ok := noteTypeInfo[t]; ok {
		return info.name
	}
	return fmt.Sprintf("NoteType(%d)", int(t))
}

// MarshalText lets note types appear by name in JSON and log fields
func (t NoteType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Beats returns the length of the type in quarter-note beats
func (t NoteType) Beats() float64 {
	return noteTypeInfo[t].beats
}

// XMLType returns the notation type name without dots ("16th", "half")
func (t NoteType) XMLType() string {
	return noteTypeInfo[t].xml
}

// Dots returns the number of augmentation dots
func (t NoteType) Dots() int {
	return noteTypeInfo[t].dots
}

// Divisions returns the length of the type in divisions
func (t NoteType) Divisions(divisionsPerBeat int) int {
	return int(math.Round(t.Beats() * float64(divisionsPerBeat)))
}

// Quantize maps a duration in seconds at the given tempo to the nearest
// type in the table
func Quantize(durationSeconds, bpm float64) (NoteType, error) {
	if !(bpm > 0) {
		return Quarter, fmt.Errorf("%w: %v", ErrNonPositiveBPM, bpm)
	}
	return QuantizeBeats(durationSeconds * bpm / 60.0), nil
}

// QuantizeBeats maps a length in beats to the nearest type. Equal distances
// resolve to the shorter value.
func QuantizeBeats(beats float64) NoteType {
	best := noteTypes[0]
	bestDist := math.Abs(beats - best.Beats())

	for _, t := range noteTypes[1:] {
		if d := math.Abs(beats - t.Beats()); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// FromDivisions maps a duration in divisions to the nearest type. A
// non-positive divisionsPerBeat yields the shortest type.
func FromDivisions(duration, divisionsPerBeat int) NoteType {
	if divisionsPerBeat <= 0 {
		return noteTypes[0]
	}
	return QuantizeBeats(float64(duration) / float64(divisionsPerBeat))
}
