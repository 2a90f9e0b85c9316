package tonal

import (
	"math"
	"strconv"

	"github.com/RyanBlaney/sonido-score/algorithms/common"
	"github.com/RyanBlaney/sonido-score/algorithms/spectral"
	"gonum.org/v1/gonum/floats"
)

const (
	// RestLabel is the pitch label of a segment without a usable fundamental
	RestLabel = "Rest"

	// MinPitchedFrequency is the lowest dominant frequency (Hz) treated as a
	// note. Anything below is rumble or leakage and becomes a rest.
	MinPitchedFrequency = 125.0

	// ReferenceA4 is the concert pitch the note names are tuned to
	ReferenceA4 = 440.0
)

// C0 is the frequency of the lowest C in scientific pitch notation
var C0 = ReferenceA4 * math.Pow(2, -4.75)

// EstimateFrequency returns the dominant frequency of the frames [start, end)
// using the spectrogram's own sample rate and window size. Dominant
// frequencies below MinPitchedFrequency and empty ranges return 0.
func EstimateFrequency(spec *spectral.Spectrogram, start, end int) float64 {
	if spec.IsEmpty() {
		return 0.0
	}
	return estimateFrequency(spec, start, end, float64(spec.SampleRate), spec.WindowSize)
}

// EstimatePitch labels the frames [start, end) with a note name such as "A4",
// or RestLabel when no pitched content is found. sampleRate and fftSize set
// the bin spacing.
func EstimatePitch(spec *spectral.Spectrogram, start, end, sampleRate, fftSize int) string {
	if spec.IsEmpty() {
		return RestLabel
	}
	return NoteName(estimateFrequency(spec, start, end, float64(sampleRate), fftSize))
}

func estimateFrequency(spec *spectral.Spectrogram, start, end int, sampleRate float64, fftSize int) float64 {
	if sampleRate <= 0 || fftSize <= 0 {
		return 0.0
	}

	avg := AverageSpectrum(spec, start, end)
	peak := common.ArgMax(avg)
	if peak < 0 {
		return 0.0
	}

	freq := parabolicInterpolation(avg, peak) * sampleRate / float64(fftSize)
	if freq < MinPitchedFrequency {
		return 0.0
	}
	return freq
}

// AverageSpectrum averages the magnitude frames [start, end). The range is
// clamped to the spectrogram; an empty range yields nil.
func AverageSpectrum(spec *spectral.Spectrogram, start, end int) []float64 {
	start = max(start, 0)
	end = min(end, spec.NumFrames())
	if end <= start {
		return nil
	}

	avg := make([]float64, len(spec.Frames[start]))
	for _, frame := range spec.Frames[start:end] {
		floats.Add(avg, frame[:len(avg)])
	}
	floats.Scale(1/float64(end-start), avg)
	return avg
}

// parabolicInterpolation refines a peak bin using its two neighbours. Edge
// bins and flat neighbourhoods are returned unrefined.
func parabolicInterpolation(data []float64, peakIdx int) float64 {
	if peakIdx <= 0 || peakIdx >= len(data)-1 {
		return float64(peakIdx)
	}

	alpha := data[peakIdx-1]
	beta := data[peakIdx]
	gamma := data[peakIdx+1]

	den := alpha - 2*beta + gamma
	if den == 0 {
		return float64(peakIdx)
	}

	return float64(peakIdx) + 0.5*(alpha-gamma)/den
}

// NoteName converts a frequency to the nearest equal-tempered note name in
// scientific pitch notation with sharps ("A4", "C#5"). Non-positive input
// returns RestLabel.
func NoteName(freq float64) string {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return RestLabel
	}

	h := int(math.Round(12 * math.Log2(freq/C0)))
	octave := floorDiv(h, 12)
	return PitchClassNames[h-octave*12] + strconv.Itoa(octave)
}

// Frequency returns the equal-tempered frequency of a MIDI note number
func Frequency(midi int) float64 {
	return ReferenceA4 * math.Pow(2, float64(midi-69)/12)
}
