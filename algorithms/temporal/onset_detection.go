package temporal

import (
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-score/algorithms/spectral"
	"github.com/RyanBlaney/sonido-score/logging"
	"gonum.org/v1/gonum/floats"
)

// PeakParams calibrates the adaptive-threshold peak picker. Window widths
// are in frames.
type PeakParams struct {
	Delta       float64 `json:"delta"`        // threshold above the moving mean
	PreMax      int     `json:"pre_max"`      // w1: frames before i in the moving max
	PostMax     int     `json:"post_max"`     // w2: frames after i in the moving max
	PreAvg      int     `json:"pre_avg"`      // w3: frames before i in the moving mean
	PostAvg     int     `json:"post_avg"`     // w4: frames after i in the moving mean
	MinDistance int     `json:"min_distance"` // w5: refractory period between peaks
}

// DefaultPeakParams returns the calibrated defaults for a frame rate (frames
// per second). The refractory period is 30 ms.
func DefaultPeakParams(frameRate float64) PeakParams {
	return PeakParams{
		Delta:       20,
		PreMax:      3,
		PostMax:     3,
		PreAvg:      8,
		PostAvg:     1,
		MinDistance: int(math.Round(0.030 * frameRate)),
	}
}

// OnsetParams configures the onset segmentation engine
type OnsetParams struct {
	Peak           PeakParams    `json:"peak"`
	Silence        SilenceParams `json:"silence"`
	Compression    float64       `json:"compression"`     // lambda in log10(lambda*x + 1)
	MergeTolerance int           `json:"merge_tolerance"` // boundaries this close collapse into one

	// SuppressTrailingSilence drops a silence boundary whose run lasts until
	// the end of the buffer, so a recording that fades out does not end on a rest
	SuppressTrailingSilence bool `json:"suppress_trailing_silence"`
}

// DefaultOnsetParams returns defaults for the given frame rate
func DefaultOnsetParams(frameRate float64) OnsetParams {
	return OnsetParams{
		Peak:           DefaultPeakParams(frameRate),
		Silence:        DefaultSilenceParams(),
		Compression:    spectral.DefaultCompression,
		MergeTolerance: 1,
	}
}

// OnsetResult keeps the intermediate curves next to the final boundaries
type OnsetResult struct {
	Flux       []float64    `json:"flux"`
	Peaks      []int        `json:"peaks"`
	Silences   []SilenceRun `json:"silences"`
	Boundaries []int        `json:"boundaries"`
}

// Segment is a half-open frame range [Start, End)
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of frames in the segment
func (s Segment) Len() int {
	return s.End - s.Start
}

// OnsetDetection turns a spectrogram into note/rest boundaries
type OnsetDetection struct {
	params OnsetParams
	flux   *spectral.SpectralFlux
	logger logging.Logger
}

// NewOnsetDetection creates an onset detector over a shared filterbank
func NewOnsetDetection(params OnsetParams, bank *spectral.FilterBank, logger logging.Logger) *OnsetDetection {
	return &OnsetDetection{
		params: params,
		flux:   spectral.NewSpectralFlux(bank, params.Compression),
		logger: logging.OrGlobal(logger, logging.Fields{"component": "onset_detection"}),
	}
}

// DetectBoundaries returns the sorted frame indices where notes or rests
// begin. No flux peaks means no notes and yields an empty list.
func (od *OnsetDetection) DetectBoundaries(spec *spectral.Spectrogram) []int {
	return od.Detect(spec).Boundaries
}

// Detect runs flux, peak picking and silence detection and merges the results
func (od *OnsetDetection) Detect(spec *spectral.Spectrogram) OnsetResult {
	if spec.IsEmpty() {
		return OnsetResult{Boundaries: []int{}}
	}

	flux := od.flux.Compute(spec)
	peaks := PickPeaks(flux, od.params.Peak)
	silences := DetectSilence(spec, od.params.Silence)

	if len(peaks) == 0 {
		od.logger.Warn("no onsets detected", logging.Fields{"frames": spec.NumFrames()})
		return OnsetResult{Flux: flux, Peaks: peaks, Silences: silences, Boundaries: []int{}}
	}

	var silenceStarts []int
	for _, run := range silences {
		if od.params.SuppressTrailingSilence && run.End >= spec.NumFrames() {
			continue
		}
		silenceStarts = append(silenceStarts, run.Start)
	}

	boundaries := MergeBoundaries(peaks, silenceStarts, od.params.MergeTolerance)

	od.logger.Debug("detected boundaries", logging.Fields{
		"peaks":      len(peaks),
		"silences":   len(silenceStarts),
		"boundaries": len(boundaries),
	})

	return OnsetResult{
		Flux:       flux,
		Peaks:      peaks,
		Silences:   silences,
		Boundaries: boundaries,
	}
}

// PickPeaks returns the frames whose flux reaches the moving mean plus delta,
// equals the moving max, and lies at least MinDistance frames after the
// previously accepted peak
func PickPeaks(flux []float64, p PeakParams) []int {
	if len(flux) == 0 {
		return []int{}
	}

	means := MovingMean(flux, p.PreAvg, p.PostAvg)
	maxima := MovingMax(flux, p.PreMax, p.PostMax)

	peaks := []int{}
	last := -1
	for i, v := range flux {
		if v >= means[i]+p.Delta &&
			v == maxima[i] &&
			(last < 0 || i-last >= p.MinDistance) {
			peaks = append(peaks, i)
			last = i
		}
	}

	return peaks
}

// MovingMean averages data over [i-back, i+forward], clamped to the slice
func MovingMean(data []float64, back, forward int) []float64 {
	out := make([]float64, len(data))

	prefix := make([]float64, len(data)+1)
	floats.CumSum(prefix[1:], data)

	for i := range data {
		lo := max(0, i-back)
		hi := min(len(data)-1, i+forward)
		out[i] = (prefix[hi+1] - prefix[lo]) / float64(hi-lo+1)
	}

	return out
}

// MovingMax takes the maximum of data over [i-back, i+forward], clamped to the slice
func MovingMax(data []float64, back, forward int) []float64 {
	out := make([]float64, len(data))

	for i := range data {
		lo := max(0, i-back)
		hi := min(len(data)-1, i+forward)
		out[i] = floats.Max(data[lo : hi+1])
	}

	return out
}

// MergeBoundaries combines flux peaks with silence boundaries. Silence
// boundaries before the first peak are dropped. The result is sorted and
// any index within tolerance frames of the previously kept one is removed.
func MergeBoundaries(peaks, silences []int, tolerance int) []int {
	if len(peaks) == 0 {
		return []int{}
	}

	first := slices.Min(peaks)
	merged := slices.Clone(peaks)
	for _, s := range silences {
		if s >= first {
			merged = append(merged, s)
		}
	}
	slices.Sort(merged)

	out := merged[:1]
	for _, b := range merged[1:] {
		if b-out[len(out)-1] > tolerance {
			out = append(out, b)
		}
	}

	return out
}

// Segments pairs consecutive boundaries into frame ranges. The last segment
// runs to numFrames.
func Segments(boundaries []int, numFrames int) []Segment {
	segments := make([]Segment, 0, len(boundaries))
	for i, start := range boundaries {
		end := numFrames
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		if end > start {
			segments = append(segments, Segment{Start: start, End: end})
		}
	}
	return segments
}
