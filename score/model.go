package score

import (
	"github.com/RyanBlaney/sonido-score/algorithms/rhythm"
	"github.com/RyanBlaney/sonido-score/algorithms/tonal"
)

// Staff numbers a staff of a two-staff system
type Staff int

const (
	StaffTreble Staff = 1
	StaffBass   Staff = 2
)

func (s Staff) String() string {
	if s == StaffBass {
		return "bass"
	}
	return "treble"
}

// Note is a pitched or rest segment in seconds
type Note struct {
	Start float64         `json:"start"`
	End   float64         `json:"end"`
	Pitch string          `json:"pitch"` // "A4", "C#5" or tonal.RestLabel
	Type  rhythm.NoteType `json:"type"`
}

// Duration returns the note length in seconds
func (n Note) Duration() float64 {
	return n.End - n.Start
}

// IsRest reports whether the segment had no pitched content
func (n Note) IsRest() bool {
	return n.Pitch == tonal.RestLabel
}

// SymbolicNote is a note or rest in notation units. Duration is in
// divisions of a quarter note.
type SymbolicNote struct {
	Step     string          `json:"step,omitempty"`
	Alter    int             `json:"alter,omitempty"`
	Octave   int             `json:"octave,omitempty"`
	Duration int             `json:"duration"`
	Type     rhythm.NoteType `json:"type"`
	Rest     bool            `json:"rest,omitempty"`
	Chord    bool            `json:"chord,omitempty"`
	Staff    Staff           `json:"staff"`
	TieStart bool            `json:"tie_start,omitempty"`
	TieStop  bool            `json:"tie_stop,omitempty"`
}

// PitchClass returns the sounding pitch class, or -1 for rests
func (n SymbolicNote) PitchClass() int {
	if n.Rest {
		return -1
	}
	pc, ok := tonal.StepClass(n.Step)
	if !ok {
		return -1
	}
	return ((pc+n.Alter)%12 + 12) % 12
}

// MIDI returns the MIDI note number, or -1 for rests
func (n SymbolicNote) MIDI() int {
	if n.Rest {
		return -1
	}
	pc, ok := tonal.StepClass(n.Step)
	if !ok {
		return -1
	}
	return tonal.MIDINumber(pc+n.Alter, n.Octave)
}

// Measure is a numbered bar of notes
type Measure struct {
	Number int            `json:"number"`
	Notes  []SymbolicNote `json:"notes"`
}

// Duration returns the summed divisions of the notes in the measure
func (m Measure) Duration() int {
	total := 0
	for _, n := range m.Notes {
		total += n.Duration
	}
	return total
}

// Score is the output of a transcription run. TempoAssumed is set when
// there were too few beats to measure the tempo and BPM is the configured
// fallback.
type Score struct {
	ID              string    `json:"id"`
	BPM             float64   `json:"bpm"`
	TempoAssumed    bool      `json:"tempo_assumed"`
	Key             tonal.Key `json:"key"`
	Fifths          int       `json:"fifths"`
	Divisions       int       `json:"divisions"`
	BeatsPerMeasure int       `json:"beats_per_measure"`
	BeatType        int       `json:"beat_type"`
	Notes           []Note    `json:"notes"`
	Measures        []Measure `json:"measures"`
}

// TotalDivisions returns the length of the score in divisions
func (s *Score) TotalDivisions() int {
	total := 0
	for _, m := range s.Measures {
		total += m.Duration()
	}
	return total
}

// PitchedNotes counts sounding notes, counting tied parts once
func (s *Score) PitchedNotes() int {
	count := 0
	for _, m := range s.Measures {
		for _, n := range m.Notes {
			if !n.Rest && !n.TieStop {
				count++
			}
		}
	}
	return count
}

// PitchClassHistogram accumulates sounding duration per pitch class
type PitchClassHistogram [12]float64

// Histogram sums the durations of pitched notes by pitch class. Rests are
// excluded.
func Histogram(notes []SymbolicNote) PitchClassHistogram {
	var hist PitchClassHistogram
	for _, n := range notes {
		if pc := n.PitchClass(); pc >= 0 {
			hist[pc] += float64(n.Duration)
		}
	}
	return hist
}
