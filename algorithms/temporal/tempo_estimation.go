package temporal

import (
	"github.com/RyanBlaney/sonido-score/algorithms/common"
)

// AggregateBPM reduces beat timestamps (seconds, ascending) from an external
// beat tracker to one tempo: the median of the instantaneous tempi 60/interval.
// The median keeps a single missed or doubled beat from skewing the result.
// Fewer than two usable beats returns (0, false).
func AggregateBPM(beats []float64) (float64, bool) {
	tempi := InstantaneousBPM(beats)
	if len(tempi) == 0 {
		return 0.0, false
	}
	return common.Median(tempi), true
}

// InstantaneousBPM converts consecutive beat intervals to tempi. Non-positive
// intervals are skipped.
func InstantaneousBPM(beats []float64) []float64 {
	if len(beats) < 2 {
		return []float64{}
	}

	tempi := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		interval := beats[i] - beats[i-1]
		if interval <= 0 {
			continue
		}
		tempi = append(tempi, 60.0/interval)
	}
	return tempi
}

// ClassifyTempoCategory maps a tempo onto a coarse category
func ClassifyTempoCategory(tempo float64) string {
	switch {
	case tempo <= 0:
		return "unknown"
	case tempo < 60:
		return "very_slow"
	case tempo < 90:
		return "slow"
	case tempo < 120:
		return "moderate"
	case tempo < 150:
		return "fast"
	default:
		return "very_fast"
	}
}
