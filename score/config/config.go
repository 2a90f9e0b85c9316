package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/RyanBlaney/sonido-score/algorithms/temporal"
	"github.com/RyanBlaney/sonido-score/algorithms/windowing"
	"github.com/RyanBlaney/sonido-score/logging"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// MinWindowSize is the smallest analysis window whose WindowSize/2
// filterbank rows can hold the three bins of one triangular filter
const MinWindowSize = 6

// AnalysisConfig controls signal conditioning, the STFT and the
// constant-Q filterbank
type AnalysisConfig struct {
	Normalize bool    `json:"normalize"` // scale the input to a peak of 1
	DCCutoff  float64 `json:"dc_cutoff"` // high-pass corner in Hz, 0 disables

	WindowSize int            `json:"window_size"`
	HopSize    int            `json:"hop_size"`
	WindowType windowing.Type `json:"window_type"`

	FilterBands   int        `json:"filter_bands"` // bands per octave
	FreqRange     [2]float64 `json:"freq_range"`   // [min, max] Hz
	EqualAreaBank bool       `json:"equal_area_bank"`
}

// OnsetConfig calibrates flux peak picking. Window widths are in frames;
// the refractory period is in seconds so it follows the hop size.
type OnsetConfig struct {
	Delta                   float64 `json:"delta"`
	PreMax                  int     `json:"pre_max"`
	PostMax                 int     `json:"post_max"`
	PreAvg                  int     `json:"pre_avg"`
	PostAvg                 int     `json:"post_avg"`
	MinDistanceSeconds      float64 `json:"min_distance_seconds"`
	Compression             float64 `json:"compression"`
	MergeTolerance          int     `json:"merge_tolerance"`
	SuppressTrailingSilence bool    `json:"suppress_trailing_silence"`
}

// SilenceConfig controls rest detection
type SilenceConfig struct {
	Threshold float64 `json:"threshold"`
	MinFrames int     `json:"min_frames"`
}

// NotationConfig controls the symbolic score
type NotationConfig struct {
	Divisions       int `json:"divisions"` // per quarter note
	BeatsPerMeasure int `json:"beats_per_measure"`
	BeatType        int `json:"beat_type"`

	// GridDivisions is the smallest representable duration. 0 means a
	// sixteenth (Divisions/4).
	GridDivisions int `json:"grid_divisions,omitempty"`

	MinNoteDuration float64 `json:"min_note_duration"` // seconds
	MergeGap        float64 `json:"merge_gap"`         // seconds

	TwoStaff       bool `json:"two_staff"`
	StaffSplitMIDI int  `json:"staff_split_midi"`
}

// TempoConfig controls tempo aggregation
type TempoConfig struct {
	// FallbackBPM is used when fewer than two usable beats are supplied
	FallbackBPM float64 `json:"fallback_bpm"`
}

// Config holds everything a transcription run needs
type Config struct {
	Analysis AnalysisConfig `json:"analysis"`
	Onset    OnsetConfig    `json:"onset"`
	Silence  SilenceConfig  `json:"silence"`
	Notation NotationConfig `json:"notation"`
	Tempo    TempoConfig    `json:"tempo"`

	// Workers bounds concurrent jobs in batch transcription. 0 means one
	// worker per job.
	Workers  int    `json:"workers"`
	LogLevel string `json:"log_level"`
}

// Default returns the calibrated defaults
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			WindowSize:    2048,
			HopSize:       441, // 100 frames per second at 44.1 kHz
			WindowType:    windowing.TypeHamming,
			FilterBands:   12,
			FreqRange:     [2]float64{27.5, 16000},
			EqualAreaBank: false,
		},
		Onset: OnsetConfig{
			Delta:              20,
			PreMax:             3,
			PostMax:            3,
			PreAvg:             8,
			PostAvg:            1,
			MinDistanceSeconds: 0.030,
			Compression:        10,
			MergeTolerance:     1,
		},
		Silence: SilenceConfig{
			Threshold: 10,
			MinFrames: 5,
		},
		Notation: NotationConfig{
			Divisions:       480,
			BeatsPerMeasure: 4,
			BeatType:        4,
			MinNoteDuration: 0.03,
			MergeGap:        0.05,
			TwoStaff:        true,
			StaffSplitMIDI:  60,
		},
		Tempo: TempoConfig{
			FallbackBPM: 120,
		},
		LogLevel: "info",
	}
}

// Load decodes a JSON config on top of the defaults. Unknown fields are
// rejected so a typo does not silently fall back to a default.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a JSON config file
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Validate checks every parameter the pipeline relies on
func (c *Config) Validate() error {
	a := c.Analysis
	switch {
	case a.WindowSize < MinWindowSize:
		return invalid("analysis.window_size must be at least %d, got %d", MinWindowSize, a.WindowSize)
	case a.HopSize < 1:
		return invalid("analysis.hop_size must be positive, got %d", a.HopSize)
	case a.FilterBands < 1:
		return invalid("analysis.filter_bands must be positive, got %d", a.FilterBands)
	case !(a.FreqRange[0] > 0) || a.FreqRange[1] <= a.FreqRange[0]:
		return invalid("analysis.freq_range must satisfy 0 < min < max, got %v", a.FreqRange)
	case a.DCCutoff < 0:
		return invalid("analysis.dc_cutoff must not be negative, got %v", a.DCCutoff)
	}
	if _, err := windowing.New(a.WindowType, a.WindowSize); err != nil {
		return fmt.Errorf("%w: analysis.window_type: %w", ErrInvalidConfig, err)
	}

	o := c.Onset
	switch {
	case o.PreMax < 0 || o.PostMax < 0 || o.PreAvg < 0 || o.PostAvg < 0:
		return invalid("onset window widths must not be negative")
	case o.MinDistanceSeconds < 0:
		return invalid("onset.min_distance_seconds must not be negative, got %v", o.MinDistanceSeconds)
	case !(o.Compression > 0):
		return invalid("onset.compression must be positive, got %v", o.Compression)
	case o.MergeTolerance < 0:
		return invalid("onset.merge_tolerance must not be negative, got %d", o.MergeTolerance)
	}

	if c.Silence.MinFrames < 1 {
		return invalid("silence.min_frames must be positive, got %d", c.Silence.MinFrames)
	}

	n := c.Notation
	switch {
	case n.Divisions < 4:
		return invalid("notation.divisions must be at least 4, got %d", n.Divisions)
	case n.BeatsPerMeasure < 1:
		return invalid("notation.beats_per_measure must be positive, got %d", n.BeatsPerMeasure)
	case n.BeatType < 1 || n.BeatType&(n.BeatType-1) != 0:
		return invalid("notation.beat_type must be a power of two, got %d", n.BeatType)
	case n.Divisions*4%n.BeatType != 0:
		return invalid("notation.divisions %d cannot express a 1/%d beat", n.Divisions, n.BeatType)
	case n.GridDivisions < 0:
		return invalid("notation.grid_divisions must not be negative, got %d", n.GridDivisions)
	case n.MinNoteDuration < 0 || n.MergeGap < 0:
		return invalid("notation durations must not be negative")
	case n.StaffSplitMIDI < 0 || n.StaffSplitMIDI > 127:
		return invalid("notation.staff_split_midi must be a MIDI note, got %d", n.StaffSplitMIDI)
	}

	if !(c.Tempo.FallbackBPM > 0) {
		return invalid("tempo.fallback_bpm must be positive, got %v", c.Tempo.FallbackBPM)
	}
	if c.Workers < 0 {
		return invalid("workers must not be negative, got %d", c.Workers)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Grid returns the quantization grid in divisions
func (c *Config) Grid() int {
	if c.Notation.GridDivisions > 0 {
		return c.Notation.GridDivisions
	}
	return max(c.Notation.Divisions/4, 1)
}

// DivisionsPerBeat converts the per-quarter divisions to the meter's beat
// unit (a 6/8 beat is an eighth)
func (c *Config) DivisionsPerBeat() int {
	return c.Notation.Divisions * 4 / c.Notation.BeatType
}

// Level returns the configured log level, Info when unset or invalid
func (c *Config) Level() logging.Level {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return logging.InfoLevel
	}
	return level
}

// OnsetParams builds the onset detector parameters for a frame rate
func (c *Config) OnsetParams(frameRate float64) temporal.OnsetParams {
	o := c.Onset
	return temporal.OnsetParams{
		Peak: temporal.PeakParams{
			Delta:       o.Delta,
			PreMax:      o.PreMax,
			PostMax:     o.PostMax,
			PreAvg:      o.PreAvg,
			PostAvg:     o.PostAvg,
			MinDistance: int(math.Round(o.MinDistanceSeconds * frameRate)),
		},
		Silence: temporal.SilenceParams{
			Threshold: c.Silence.Threshold,
			MinFrames: c.Silence.MinFrames,
		},
		Compression:             o.Compression,
		MergeTolerance:          o.MergeTolerance,
		SuppressTrailingSilence: o.SuppressTrailingSilence,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
