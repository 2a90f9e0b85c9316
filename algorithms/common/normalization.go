package common

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// PeakAmplitude returns the largest absolute sample value
func PeakAmplitude(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}
	return math.Max(math.Abs(floats.Max(signal)), math.Abs(floats.Min(signal)))
}

// RMS returns the root mean square level of a signal
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}
	return floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
}

// PeakNormalize scales a copy of the signal so its largest absolute sample
// is 1. A silent signal is returned unchanged.
func PeakNormalize(signal []float64) []float64 {
	out := slices.Clone(signal)

	peak := PeakAmplitude(signal)
	if peak == 0 {
		return out
	}

	floats.Scale(1/peak, out)
	return out
}
