package score

import (
	"fmt"
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-score/algorithms/rhythm"
	"github.com/RyanBlaney/sonido-score/algorithms/tonal"
)

// NotationOptions controls the seconds to divisions conversion
type NotationOptions struct {
	Divisions int // per quarter note
	Grid      int // smallest duration in divisions
	Fifths    int // key signature used for spelling
	TwoStaff  bool
	SplitMIDI int // pitched notes below this go to the bass staff
}

// DropShort removes notes shorter than minDuration seconds
func DropShort(notes []Note, minDuration float64) []Note {
	kept := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.Duration() >= minDuration {
			kept = append(kept, n)
		}
	}
	return kept
}

// MergeAdjacent joins neighbouring notes with the same pitch label when the
// gap between them is below maxGap seconds. Merged notes get their type
// recomputed at bpm. The input is not modified.
func MergeAdjacent(notes []Note, maxGap, bpm float64) ([]Note, error) {
	merged := make([]Note, 0, len(notes))
	for _, n := range notes {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Pitch == n.Pitch && n.Start-last.End < maxGap {
				last.End = max(last.End, n.End)
				t, err := rhythm.Quantize(last.Duration(), bpm)
				if err != nil {
					return nil, err
				}
				last.Type = t
				continue
			}
		}
		merged = append(merged, n)
	}
	return merged, nil
}

// SecondsToDivisions converts seconds at bpm to divisions of a quarter
// note, rounded to the nearest multiple of grid
func SecondsToDivisions(seconds, bpm float64, divisions, grid int) int {
	grid = max(grid, 1)
	beats := seconds * bpm / 60.0
	steps := math.Round(beats * float64(divisions) / float64(grid))
	return int(steps) * grid
}

// ToSymbolic converts timed notes to notation units. Notes that round to
// zero divisions are dropped. Rests take the staff of the previous pitched
// note.
func ToSymbolic(notes []Note, bpm float64, opts NotationOptions) ([]SymbolicNote, error) {
	if !(bpm > 0) {
		return nil, fmt.Errorf("%w: %v", rhythm.ErrNonPositiveBPM, bpm)
	}

	out := make([]SymbolicNote, 0, len(notes))
	staff := StaffTreble
	for _, n := range notes {
		duration := SecondsToDivisions(n.Duration(), bpm, opts.Divisions, opts.Grid)
		if duration <= 0 {
			continue
		}

		sn := SymbolicNote{
			Duration: duration,
			Type:     rhythm.FromDivisions(duration, opts.Divisions),
		}

		if n.IsRest() {
			sn.Rest = true
			sn.Staff = staff
			out = append(out, sn)
			continue
		}

		pc, octave, err := tonal.ParsePitch(n.Pitch)
		if err != nil {
			return nil, fmt.Errorf("failed to convert note at %.3fs: %w", n.Start, err)
		}

		spelling := tonal.Spell(pc, opts.Fifths)
		sn.Step = spelling.Step
		sn.Alter = spelling.Alter
		sn.Octave = octave

		staff = StaffTreble
		if opts.TwoStaff && tonal.MIDINumber(pc, octave) < opts.SplitMIDI {
			staff = StaffBass
		}
		sn.Staff = staff

		out = append(out, sn)
	}

	return out, nil
}

// Respell rewrites the accidentals of pitched notes for a key signature.
// Sounding pitch and octave are unchanged.
func Respell(notes []SymbolicNote, fifths int) []SymbolicNote {
	out := slices.Clone(notes)
	for i, n := range out {
		pc := n.PitchClass()
		if pc < 0 {
			continue
		}
		spelling := tonal.Spell(pc, fifths)
		out[i].Step = spelling.Step
		out[i].Alter = spelling.Alter
	}
	return out
}
