// Package midi exports a transcribed score as a Standard MIDI File
package midi

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-score/algorithms/tonal"
	"github.com/RyanBlaney/sonido-score/score"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	Channel  uint8 = 0
	Velocity uint8 = 100
)

var ErrEmptyScore = errors.New("score has no divisions")

// Encode builds a format 1 SMF with a conductor track (tempo, meter, key)
// and one note track. Ticks per quarter equal the score's divisions and tied
// parts sound as one note.
func Encode(s *score.Score) (*smf.SMF, error) {
	if s == nil || s.Divisions <= 0 || s.Divisions > 0x7FFF {
		return nil, ErrEmptyScore
	}

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(s.Divisions)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(s.BPM))
	conductor.Add(0, smf.MetaMeter(uint8(s.BeatsPerMeasure), uint8(s.BeatType)))
	conductor.Add(0, keySignature(s))
	conductor.Close(0)

	notes, err := noteTrack(s)
	if err != nil {
		return nil, err
	}

	if err := file.Add(conductor); err != nil {
		return nil, fmt.Errorf("failed to add conductor track: %w", err)
	}
	if err := file.Add(notes); err != nil {
		return nil, fmt.Errorf("failed to add note track: %w", err)
	}

	return file, nil
}

// Write encodes the score and writes it to w
func Write(w io.Writer, s *score.Score) error {
	file, err := Encode(s)
	if err != nil {
		return err
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write midi: %w", err)
	}
	return nil
}

// WriteFile encodes the score into a .mid file
func WriteFile(path string, s *score.Score) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create midi file: %w", err)
	}

	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func keySignature(s *score.Score) smf.Message {
	fifths := s.Fifths
	num := uint8(fifths)
	if fifths < 0 {
		num = uint8(-fifths)
	}
	return smf.MetaKey(uint8(s.Key.Root), s.Key.Mode == tonal.KeyModeMajor, num, fifths < 0)
}

func noteTrack(s *score.Score) (smf.Track, error) {
	var track smf.Track
	var delta uint32

	for _, m := range s.Measures {
		for _, n := range m.Notes {
			if n.Rest {
				delta += uint32(n.Duration)
				continue
			}

			key := n.MIDI()
			if key < 0 || key > 127 {
				return nil, fmt.Errorf("measure %d: note %s%d is outside the MIDI range", m.Number, n.Step, n.Octave)
			}

			if !n.TieStop {
				track.Add(delta, gomidi.NoteOn(Channel, uint8(key), Velocity))
				delta = 0
			}
			delta += uint32(n.Duration)
			if !n.TieStart {
				track.Add(delta, gomidi.NoteOff(Channel, uint8(key)))
				delta = 0
			}
		}
	}

	track.Close(delta)
	return track, nil
}
