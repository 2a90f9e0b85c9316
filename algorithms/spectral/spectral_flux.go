package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultCompression is the lambda of the log(lambda*x + 1) magnitude compression
const DefaultCompression = 10.0

// SpectralFlux computes an onset strength curve from a spectrogram filtered
// through a constant-Q filterbank and log compressed
type SpectralFlux struct {
	bank   *FilterBank
	lambda float64
}

// NewSpectralFlux creates a flux calculator over a shared filterbank.
// A non-positive lambda selects DefaultCompression.
func NewSpectralFlux(bank *FilterBank, lambda float64) *SpectralFlux {
	if lambda <= 0 {
		lambda = DefaultCompression
	}
	return &SpectralFlux{
		bank:   bank,
		lambda: lambda,
	}
}

// Preprocess filters every frame through the filterbank and applies
// log10(lambda*x + 1) per band
func (sf *SpectralFlux) Preprocess(spec *Spectrogram) [][]float64 {
	if spec.IsEmpty() {
		return [][]float64{}
	}

	filtered := sf.bank.ApplyAll(spec.Frames)
	for _, frame := range filtered {
		for b, x := range frame {
			frame[b] = math.Log10(sf.lambda*x + 1)
		}
	}
	return filtered
}

// Compute returns one flux value per frame; the first frame has flux 0
func (sf *SpectralFlux) Compute(spec *Spectrogram) []float64 {
	return PositiveFlux(sf.Preprocess(spec))
}

// PositiveFlux sums the half-wave rectified frame-to-frame increase of each
// band. flux[0] is 0.
func PositiveFlux(frames [][]float64) []float64 {
	flux := make([]float64, len(frames))
	if len(frames) == 0 {
		return flux
	}

	diff := make([]float64, len(frames[0]))
	for t := 1; t < len(frames); t++ {
		floats.SubTo(diff, frames[t], frames[t-1])
		for _, d := range diff {
			if d > 0 {
				flux[t] += d
			}
		}
	}

	return flux
}
