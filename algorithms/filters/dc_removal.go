package filters

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidCutoff = errors.New("cutoff must be between 0 and the Nyquist frequency")

// DCRemoval is a one-pole DC blocking high-pass filter:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// See https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	pole float64 // R, 0 < R < 1

	x1 float64
	y1 float64
}

// NewDCRemoval creates a filter whose -3 dB point sits near cutoffFreq.
// R = 1 - 2*pi*fc/fs, valid while fc is far below fs/2.
func NewDCRemoval(sampleRate int, cutoffFreq float64) (*DCRemoval, error) {
	if sampleRate <= 0 || !(cutoffFreq > 0) || cutoffFreq >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("%w: %v Hz at %d Hz", ErrInvalidCutoff, cutoffFreq, sampleRate)
	}

	pole := 1.0 - 2.0*math.Pi*cutoffFreq/float64(sampleRate)
	pole = math.Min(math.Max(pole, 0.001), 0.999)

	return &DCRemoval{pole: pole}, nil
}

// Process filters one sample
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.pole*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessBuffer filters a buffer, continuing from the current state
func (dc *DCRemoval) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = dc.Process(sample)
	}
	return output
}

// CutoffFrequency returns the approximate -3 dB frequency, (1-R)*fs/(2*pi)
func (dc *DCRemoval) CutoffFrequency(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0.0
	}
	return (1.0 - dc.pole) * float64(sampleRate) / (2.0 * math.Pi)
}
