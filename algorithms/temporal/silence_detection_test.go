package temporal

import (
	"testing"

	"github.com/RyanBlaney/sonido-score/algorithms/spectral"
	"github.com/stretchr/testify/assert"
)

func TestSilenceRuns(t *testing.T) {
	energies := []float64{0, 0, 0, 0, 0, 0, 20, 0, 0, 20, 0, 0, 0, 0, 0}

	runs := silenceRuns(energies, SilenceParams{Threshold: 10, MinFrames: 5})
	assert.Equal(t, []SilenceRun{{0, 6}, {10, 15}}, runs)
}

func TestSilenceRunsTreatsNonPositiveMinFramesAsOne(t *testing.T) {
	runs := silenceRuns([]float64{20, 0, 20}, SilenceParams{Threshold: 10})
	assert.Equal(t, []SilenceRun{{1, 2}}, runs)
}

func TestFrameEnergiesAndRatio(t *testing.T) {
	spec := &spectral.Spectrogram{
		Frames:     [][]float64{{1, 2, 3}, {0, 0, 0}, {10, 10, 10}, {0, 1, 0}},
		WindowSize: 4,
		HopSize:    2,
		SampleRate: 8,
	}

	assert.Equal(t, []float64{6, 0, 30, 1}, FrameEnergies(spec))
	assert.Equal(t, 0.75, SilenceRatio(spec, 10))
	assert.Equal(t, 0.0, SilenceRatio(&spectral.Spectrogram{}, 10))
}

func TestDetectSilenceOnSpectrogram(t *testing.T) {
	spec := syntheticSpectrogram(40, [4]int{5, 20, 10, 50})

	runs := DetectSilence(spec, DefaultSilenceParams())
	assert.Equal(t, []SilenceRun{{0, 5}, {20, 40}}, runs)
}
