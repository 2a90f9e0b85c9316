package score

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-score/algorithms/common"
	"github.com/RyanBlaney/sonido-score/algorithms/filters"
	"github.com/RyanBlaney/sonido-score/algorithms/rhythm"
	"github.com/RyanBlaney/sonido-score/algorithms/spectral"
	"github.com/RyanBlaney/sonido-score/algorithms/temporal"
	"github.com/RyanBlaney/sonido-score/algorithms/tonal"
	"github.com/RyanBlaney/sonido-score/algorithms/windowing"
	"github.com/RyanBlaney/sonido-score/logging"
	"github.com/RyanBlaney/sonido-score/score/config"
	"github.com/google/uuid"
)

// ErrInvalidSignal is returned for a signal without a usable sample rate
var ErrInvalidSignal = errors.New("invalid signal")

// Signal is normalized mono audio
type Signal struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Duration returns the signal length in seconds
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Transcriber turns a recording plus beat timestamps into a Score. It holds
// no per-run state and is safe for concurrent use.
type Transcriber struct {
	config *config.Config
	window windowing.Window
	stft   *spectral.STFT
	logger logging.Logger
}

// NewTranscriber creates a transcriber. A nil config uses config.Default().
// Entries below the config's LogLevel are dropped before they reach logger.
func NewTranscriber(cfg *config.Config, logger logging.Logger) (*Transcriber, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	window, err := windowing.New(cfg.Analysis.WindowType, cfg.Analysis.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis window: %w", err)
	}

	logger = logging.AtLeast(logging.OrGlobal(logger, logging.Fields{"component": "transcriber"}), cfg.Level())

	return &Transcriber{
		config: cfg,
		window: window,
		stft:   spectral.NewSTFT(logger),
		logger: logger,
	}, nil
}

// Config returns the configuration the transcriber runs with
func (t *Transcriber) Config() *config.Config {
	return t.config
}

// Transcribe runs the full pipeline: spectrogram, onset segmentation, pitch
// labelling, tempo aggregation, quantization, key estimation and measure
// layout. Silence or an empty signal gives a score without measures in C
// major. With fewer than two usable beats the configured fallback tempo is
// used.
func (t *Transcriber) Transcribe(sig Signal, beats []float64) (*Score, error) {
	if sig.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidSignal, sig.SampleRate)
	}

	runID := uuid.New()
	logger := t.logger.WithFields(logging.Fields{
		"run_id":      runID.String(),
		"sample_rate": sig.SampleRate,
		"samples":     len(sig.Samples),
	})

	logger.Debug("Starting transcription", logging.Fields{
		"peak": common.PeakAmplitude(sig.Samples),
		"rms":  common.RMS(sig.Samples),
	})

	samples, err := t.condition(sig)
	if err != nil {
		logger.Error(err, "Failed to condition signal")
		return nil, err
	}

	a := t.config.Analysis
	spec, err := t.stft.Compute(samples, sig.SampleRate, a.WindowSize, a.HopSize, t.window)
	if err != nil {
		logger.Error(err, "Failed to compute STFT")
		return nil, fmt.Errorf("failed to compute spectrogram: %w", err)
	}

	boundaries, err := t.detectBoundaries(spec, logger)
	if err != nil {
		return nil, err
	}

	tempoAssumed := false
	bpm, ok := temporal.AggregateBPM(beats)
	if !ok {
		bpm = t.config.Tempo.FallbackBPM
		tempoAssumed = true
		logger.Warn("Not enough beats to estimate tempo, using fallback", logging.Fields{
			"beats":        len(beats),
			"fallback_bpm": bpm,
		})
	}

	notes, err := SegmentNotes(spec, boundaries, bpm)
	if err != nil {
		return nil, err
	}

	n := t.config.Notation
	notes = DropShort(notes, n.MinNoteDuration)
	notes, err = MergeAdjacent(notes, n.MergeGap, bpm)
	if err != nil {
		return nil, err
	}

	symbolic, err := ToSymbolic(notes, bpm, NotationOptions{
		Divisions: n.Divisions,
		Grid:      t.config.Grid(),
		TwoStaff:  n.TwoStaff,
		SplitMIDI: n.StaffSplitMIDI,
	})
	if err != nil {
		return nil, err
	}

	key, correlation := tonal.EstimateKeyWithScore(Histogram(symbolic))
	fifths := key.Fifths()
	symbolic = Respell(symbolic, fifths)

	assembler := NewAssembler(n.BeatsPerMeasure, t.config.DivisionsPerBeat(), WithQuarterDivisions(n.Divisions))
	measures, err := assembler.Assemble(symbolic)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out measures: %w", err)
	}

	result := &Score{
		ID:              runID.String(),
		BPM:             bpm,
		TempoAssumed:    tempoAssumed,
		Key:             key,
		Fifths:          fifths,
		Divisions:       n.Divisions,
		BeatsPerMeasure: n.BeatsPerMeasure,
		BeatType:        n.BeatType,
		Notes:           notes,
		Measures:        measures,
	}

	logger.Info("Transcription completed", logging.Fields{
		"bpm":             bpm,
		"tempo_category":  temporal.ClassifyTempoCategory(bpm),
		"key":             key.Name(),
		"key_correlation": correlation,
		"notes":           len(notes),
		"measures":        len(measures),
	})

	return result, nil
}

// condition applies the optional DC blocker and peak normalization
func (t *Transcriber) condition(sig Signal) ([]float64, error) {
	a := t.config.Analysis
	samples := sig.Samples

	if a.DCCutoff > 0 {
		dc, err := filters.NewDCRemoval(sig.SampleRate, a.DCCutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to create dc filter: %w", err)
		}
		samples = dc.ProcessBuffer(samples)
		t.logger.Debug("Removed DC offset", logging.Fields{"cutoff_hz": dc.CutoffFrequency(sig.SampleRate)})
	}

	if a.Normalize {
		samples = common.PeakNormalize(samples)
	}

	return samples, nil
}

func (t *Transcriber) detectBoundaries(spec *spectral.Spectrogram, logger logging.Logger) ([]int, error) {
	if spec.IsEmpty() {
		return []int{}, nil
	}

	a := t.config.Analysis
	bank, err := spectral.NewFilterBank(a.WindowSize/2, float64(spec.SampleRate), a.FilterBands, a.FreqRange[0], a.FreqRange[1], a.EqualAreaBank)
	if err != nil {
		logger.Error(err, "Failed to build filterbank")
		return nil, fmt.Errorf("failed to build filterbank: %w", err)
	}

	detector := temporal.NewOnsetDetection(t.config.OnsetParams(spec.FrameRate()), bank, logger)
	return detector.DetectBoundaries(spec), nil
}

// SegmentNotes labels the frames between consecutive boundaries with a
// pitch and a rhythmic type. The last segment ends at the final frame.
func SegmentNotes(spec *spectral.Spectrogram, boundaries []int, bpm float64) ([]Note, error) {
	if spec.IsEmpty() {
		return []Note{}, nil
	}

	segments := temporal.Segments(boundaries, spec.NumFrames())
	notes := make([]Note, 0, len(segments))
	for i, seg := range segments {
		endFrame := seg.End
		if i == len(segments)-1 {
			endFrame = spec.NumFrames() - 1
		}

		start, end := spec.FrameTime(seg.Start), spec.FrameTime(endFrame)
		if end <= start {
			continue
		}

		noteType, err := rhythm.Quantize(end-start, bpm)
		if err != nil {
			return nil, err
		}

		notes = append(notes, Note{
			Start: start,
			End:   end,
			Pitch: tonal.EstimatePitch(spec, seg.Start, seg.End, spec.SampleRate, spec.WindowSize),
			Type:  noteType,
		})
	}

	return notes, nil
}
