package temporal

import (
	"github.com/RyanBlaney/sonido-score/algorithms/common"
	"github.com/RyanBlaney/sonido-score/algorithms/spectral"
)

// SilenceParams configures energy-based silence detection on raw
// (unfiltered) spectrogram frames
type SilenceParams struct {
	Threshold float64 `json:"threshold"`  // frame energy (sum of magnitudes) below this is silent
	MinFrames int     `json:"min_frames"` // consecutive silent frames before a boundary is emitted
}

// DefaultSilenceParams returns the calibrated defaults
func DefaultSilenceParams() SilenceParams {
	return SilenceParams{
		Threshold: 10,
		MinFrames: 5,
	}
}

// SilenceRun is a half-open range of frames whose energy stayed below the
// threshold for at least MinFrames frames
type SilenceRun struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FrameEnergies returns the sum of magnitudes of every frame
func FrameEnergies(spec *spectral.Spectrogram) []float64 {
	if spec.IsEmpty() {
		return []float64{}
	}

	energies := make([]float64, spec.NumFrames())
	for i, frame := range spec.Frames {
		energies[i] = common.Sum(frame)
	}
	return energies
}

// DetectSilence finds runs of quiet frames. The flux detector is tuned for
// attacks, so these runs are what places rests after a note decays.
func DetectSilence(spec *spectral.Spectrogram, params SilenceParams) []SilenceRun {
	return silenceRuns(FrameEnergies(spec), params)
}

func silenceRuns(energies []float64, params SilenceParams) []SilenceRun {
	minFrames := max(params.MinFrames, 1)

	var runs []SilenceRun
	start := -1
	for i, e := range energies {
		if e < params.Threshold {
			if start < 0 {
				start = i
			}
			continue
		}

		if start >= 0 && i-start >= minFrames {
			runs = append(runs, SilenceRun{Start: start, End: i})
		}
		start = -1
	}

	// Handle a run that extends to the end
	if start >= 0 && len(energies)-start >= minFrames {
		runs = append(runs, SilenceRun{Start: start, End: len(energies)})
	}

	return runs
}

// SilenceRatio returns the fraction of frames below the threshold
func SilenceRatio(spec *spectral.Spectrogram, threshold float64) float64 {
	energies := FrameEnergies(spec)
	if len(energies) == 0 {
		return 0.0
	}

	silent := 0
	for _, e := range energies {
		if e < threshold {
			silent++
		}
	}
	return float64(silent) / float64(len(energies))
}
