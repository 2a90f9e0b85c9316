package score

import (
	"math/rand/v2"
	"testing"

	"github.com/RyanBlaney/sonido-score/algorithms/rhythm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pitched(step string, octave, duration int) SymbolicNote {
	return SymbolicNote{Step: step, Octave: octave, Duration: duration, Staff: StaffTreble}
}

func rest(duration int) SymbolicNote {
	return SymbolicNote{Rest: true, Duration: duration, Staff: StaffTreble}
}

func TestAssembleTiesAcrossBarline(t *testing.T) {
	measures, err := NewAssembler(4, 480).Assemble([]SymbolicNote{
		pitched("C", 4, 480),
		pitched("D", 4, 1920),
		rest(960),
	})
	require.NoError(t, err)
	require.Len(t, measures, 2)

	first := measures[0]
	assert.Equal(t, 1, first.Number)
	require.Len(t, first.Notes, 2)
	assert.Equal(t, 1440, first.Notes[1].Duration)
	assert.Equal(t, rhythm.DottedHalf, first.Notes[1].Type)
	assert.True(t, first.Notes[1].TieStart)
	assert.False(t, first.Notes[1].TieStop)

	second := measures[1]
	assert.Equal(t, 2, second.Number)
	require.Len(t, second.Notes, 2)
	assert.Equal(t, "D", second.Notes[0].Step)
	assert.Equal(t, 480, second.Notes[0].Duration)
	assert.True(t, second.Notes[0].TieStop)
	assert.False(t, second.Notes[0].TieStart)
	assert.Equal(t, rhythm.Half, second.Notes[1].Type)
	assert.Equal(t, 1440, second.Duration())
}

func TestAssembleSplitsLongNoteIntoEveryMeasure(t *testing.T) {
	measures, err := NewAssembler(4, 480).Assemble([]SymbolicNote{pitched("E", 4, 2*1920+480)})
	require.NoError(t, err)
	require.Len(t, measures, 3)

	parts := []SymbolicNote{measures[0].Notes[0], measures[1].Notes[0], measures[2].Notes[0]}
	assert.Equal(t, []int{1920, 1920, 480}, []int{parts[0].Duration, parts[1].Duration, parts[2].Duration})
	assert.Equal(t, []rhythm.NoteType{rhythm.Whole, rhythm.Whole, rhythm.Quarter},
		[]rhythm.NoteType{parts[0].Type, parts[1].Type, parts[2].Type})

	assert.True(t, parts[0].TieStart)
	assert.False(t, parts[0].TieStop)
	assert.True(t, parts[1].TieStart)
	assert.True(t, parts[1].TieStop)
	assert.False(t, parts[2].TieStart)
	assert.True(t, parts[2].TieStop)
}

func TestAssembleSplitsRestsWithoutTies(t *testing.T) {
	measures, err := NewAssembler(4, 480).Assemble([]SymbolicNote{rest(2400)})
	require.NoError(t, err)
	require.Len(t, measures, 2)

	for _, m := range measures {
		for _, n := range m.Notes {
			assert.True(t, n.Rest)
			assert.False(t, n.TieStart)
			assert.False(t, n.TieStop)
		}
	}
	assert.Equal(t, 1920, measures[0].Duration())
	assert.Equal(t, 480, measures[1].Duration())
}

func TestAssembleConservesDuration(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	assembler := NewAssembler(3, 480)
	capacity := assembler.Capacity()

	for range 50 {
		notes := make([]SymbolicNote, rng.IntN(20))
		want := 0
		for i := range notes {
			d := (rng.IntN(24) + 1) * 120
			if rng.IntN(4) == 0 {
				notes[i] = rest(d)
			} else {
				notes[i] = pitched("G", 4, d)
			}
			want += d
		}

		measures, err := assembler.Assemble(notes)
		require.NoError(t, err)

		got := 0
		for i, m := range measures {
			assert.Equal(t, i+1, m.Number)
			if i < len(measures)-1 {
				assert.Equal(t, capacity, m.Duration())
			} else {
				assert.LessOrEqual(t, m.Duration(), capacity)
			}
			for _, n := range m.Notes {
				assert.Positive(t, n.Duration)
			}
			got += m.Duration()
		}
		assert.Equal(t, want, got)
	}
}

func TestAssembleSkipsEmptyNotesAndIsReusable(t *testing.T) {
	assembler := NewAssembler(4, 480)
	notes := []SymbolicNote{pitched("A", 4, 0), pitched("A", 4, 960), pitched("B", 4, -5)}

	first, err := assembler.Assemble(notes)
	require.NoError(t, err)
	second, err := assembler.Assemble(notes)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Len(t, first[0].Notes, 1)
	assert.Equal(t, first, second)

	none, err := assembler.Assemble(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAssembleRejectsInvalidCapacity(t *testing.T) {
	_, err := NewAssembler(0, 480).Assemble([]SymbolicNote{pitched("C", 4, 480)})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = NewAssembler(4, 0).Assemble(nil)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestAssembleCompoundMeter(t *testing.T) {
	// 6/8 with 480 divisions per quarter
	assembler := NewAssembler(6, 240, WithQuarterDivisions(480))
	assert.Equal(t, 1440, assembler.Capacity())

	measures, err := assembler.Assemble([]SymbolicNote{pitched("F", 4, 720), pitched("F", 4, 1440)})
	require.NoError(t, err)
	require.Len(t, measures, 2)
	assert.Equal(t, rhythm.DottedQuarter, measures[0].Notes[0].Type)
	assert.Equal(t, rhythm.DottedQuarter, measures[0].Notes[1].Type)
	assert.True(t, measures[0].Notes[1].TieStart)
	assert.True(t, measures[1].Notes[0].TieStop)
}
