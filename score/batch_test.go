package score

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribeBatchKeepsInputOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 2
	tr := newTestTranscriber(t, cfg)

	jobs := []Job{
		{Name: "tone", Signal: toneSignal(0.5, 1.0, 0.5, 440), Beats: steadyBeats},
		{Name: "broken", Signal: Signal{Samples: []float64{0}}, Beats: steadyBeats},
		{Name: "empty", Signal: Signal{SampleRate: testSampleRate}, Beats: steadyBeats},
		{Name: "higher", Signal: toneSignal(0.5, 1.0, 0.5, 880), Beats: steadyBeats},
	}

	results, err := tr.TranscribeBatch(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i].Name, r.Name)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, "A4", results[0].Score.Notes[0].Pitch)

	assert.ErrorIs(t, results[1].Err, ErrInvalidSignal)
	assert.Nil(t, results[1].Score)

	require.NoError(t, results[2].Err)
	assert.Empty(t, results[2].Score.Measures)

	require.NoError(t, results[3].Err)
	assert.Equal(t, "A5", results[3].Score.Notes[0].Pitch)
	assert.NotEqual(t, results[0].Score.ID, results[3].Score.ID)
}

func TestTranscribeBatchCancelled(t *testing.T) {
	tr := newTestTranscriber(t, testConfig())

	jobs := make([]Job, 3)
	for i := range jobs {
		jobs[i] = Job{Name: fmt.Sprintf("job-%d", i), Signal: toneSignal(0.1, 0.2, 0.1, 440)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := tr.TranscribeBatch(ctx, jobs)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Score)
	}
}
