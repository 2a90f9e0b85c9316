package midi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-score/algorithms/rhythm"
	"github.com/RyanBlaney/sonido-score/algorithms/tonal"
	"github.com/RyanBlaney/sonido-score/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func testScore() *score.Score {
	return &score.Score{
		ID:              "test",
		BPM:             120,
		Key:             tonal.Key{Root: 9, Mode: tonal.KeyModeMajor},
		Fifths:          3,
		Divisions:       480,
		BeatsPerMeasure: 4,
		BeatType:        4,
		Measures: []score.Measure{
			{Number: 1, Notes: []score.SymbolicNote{
				{Step: "A", Octave: 4, Duration: 480, Type: rhythm.Quarter},
				{Rest: true, Duration: 480, Type: rhythm.Quarter},
				{Step: "C", Alter: 1, Octave: 5, Duration: 960, Type: rhythm.Half, TieStart: true},
			}},
			{Number: 2, Notes: []score.SymbolicNote{
				{Step: "C", Alter: 1, Octave: 5, Duration: 480, Type: rhythm.Quarter, TieStop: true},
				{Step: "E", Octave: 4, Duration: 480, Type: rhythm.Quarter},
			}},
		},
	}
}

type sounded struct {
	key        uint8
	start, end int64
}

// readNotes decodes a written file and pairs note on/off events
func readNotes(t *testing.T, data []byte) (*smf.SMF, []sounded, int64) {
	t.Helper()

	file, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, file.Tracks, 2)

	var notes []sounded
	open := map[uint8]int64{}
	var abs int64
	for _, ev := range file.Tracks[1] {
		abs += int64(ev.Delta)

		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteOn(&ch, &key, &vel):
			open[key] = abs
		case ev.Message.GetNoteOff(&ch, &key, &vel):
			notes = append(notes, sounded{key: key, start: open[key], end: abs})
			delete(open, key)
		}
	}
	assert.Empty(t, open)

	return file, notes, abs
}

func TestWriteRoundTrip(t *testing.T) {
	s := testScore()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s))

	file, notes, total := readNotes(t, buf.Bytes())

	ticks, ok := file.TimeFormat.(smf.MetricTicks)
	require.True(t, ok)
	assert.Equal(t, uint16(480), ticks.Resolution())

	assert.Equal(t, []sounded{
		{key: 69, start: 0, end: 480},
		{key: 73, start: 960, end: 2400},
		{key: 64, start: 2400, end: 2880},
	}, notes)
	assert.Equal(t, int64(s.TotalDivisions()), total)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.mid")
	require.NoError(t, WriteFile(path, testScore()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	_, notes, _ := readNotes(t, data)
	assert.Len(t, notes, 3)
}

func TestEncodeRejectsBadScores(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, ErrEmptyScore)

	_, err = Encode(&score.Score{BPM: 120})
	assert.ErrorIs(t, err, ErrEmptyScore)

	s := testScore()
	s.Measures[0].Notes[0].Octave = 12
	_, err = Encode(s)
	assert.Error(t, err)
}

func TestEncodeTrailingRest(t *testing.T) {
	s := testScore()
	s.Measures = append(s.Measures, score.Measure{Number: 3, Notes: []score.SymbolicNote{
		{Rest: true, Duration: 1920, Type: rhythm.Whole},
	}})

	file, err := Encode(s)
	require.NoError(t, err)
	require.Len(t, file.Tracks, 2)

	var total int64
	for _, ev := range file.Tracks[1] {
		total += int64(ev.Delta)
	}
	assert.Equal(t, int64(s.TotalDivisions()), total)
	assert.Equal(t, int64(2880+1920), total)
}
