package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateBPMConstantSpacing(t *testing.T) {
	bpm, ok := AggregateBPM([]float64{0.5, 1.0, 1.5, 2.0})
	assert.True(t, ok)
	assert.Equal(t, 120.0, bpm)
}

func TestAggregateBPMIgnoresOutlierInterval(t *testing.T) {
	// one doubled beat at 1.1s
	bpm, ok := AggregateBPM([]float64{0, 0.5, 1.0, 1.1, 1.6, 2.1})
	assert.True(t, ok)
	assert.InDelta(t, 120.0, bpm, 1e-9)
}

func TestAggregateBPMEvenCountAveragesMiddlePair(t *testing.T) {
	// tempi 60 and 120
	bpm, ok := AggregateBPM([]float64{0, 1.0, 1.5})
	assert.True(t, ok)
	assert.Equal(t, 90.0, bpm)
}

func TestAggregateBPMInsufficientData(t *testing.T) {
	for _, beats := range [][]float64{nil, {1.0}, {1.0, 1.0}} {
		bpm, ok := AggregateBPM(beats)
		assert.False(t, ok)
		assert.Equal(t, 0.0, bpm)
	}
}

func TestClassifyTempoCategory(t *testing.T) {
	assert.Equal(t, "unknown", ClassifyTempoCategory(0))
	assert.Equal(t, "very_slow", ClassifyTempoCategory(50))
	assert.Equal(t, "moderate", ClassifyTempoCategory(100))
	assert.Equal(t, "fast", ClassifyTempoCategory(120))
	assert.Equal(t, "very_fast", ClassifyTempoCategory(180))
}
