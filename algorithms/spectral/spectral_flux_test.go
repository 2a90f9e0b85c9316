package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositiveFluxRectifies(t *testing.T) {
	frames := [][]float64{
		{0, 0, 0},
		{1, 2, 0},
		{0.5, 3, 1},
		{0, 0, 0},
	}

	flux := PositiveFlux(frames)
	assert.Equal(t, []float64{0, 3, 2, 0}, flux)
}

func TestPositiveFluxEmpty(t *testing.T) {
	assert.Empty(t, PositiveFlux(nil))
	assert.Equal(t, []float64{0}, PositiveFlux([][]float64{{5}}))
}

func TestSpectralFluxRisesAtToneOnset(t *testing.T) {
	const sampleRate = 44100
	signal := make([]float64, sampleRate)
	copy(signal[sampleRate/2:], sine(440, sampleRate, sampleRate/2, 0.5))

	spec, err := ComputeSpectrogram(signal, sampleRate, 2048, 441)
	require.NoError(t, err)

	fb, err := NewFilterBank(1024, sampleRate, 12, 27.5, 16000, false)
	require.NoError(t, err)

	sf := NewSpectralFlux(fb, 0)
	processed := sf.Preprocess(spec)
	require.Len(t, processed, spec.NumFrames())
	for _, band := range processed[10] {
		assert.Equal(t, 0.0, band, "silence compresses to log10(1)")
	}

	flux := sf.Compute(spec)
	require.Len(t, flux, spec.NumFrames())
	assert.Equal(t, 0.0, flux[0])

	// the tone enters the analysis window at frame 46
	onsetRegion := 0.0
	for _, v := range flux[28:52] {
		onsetRegion = math.Max(onsetRegion, v)
	}
	assert.Greater(t, onsetRegion, 0.5)
	for _, v := range flux[1:25] {
		assert.Equal(t, 0.0, v)
	}
}
