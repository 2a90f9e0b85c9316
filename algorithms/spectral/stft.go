package spectral

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-score/algorithms/windowing"
	"github.com/RyanBlaney/sonido-score/logging"
)

var (
	ErrInvalidWindowSize = errors.New("window size must be at least 2")
	ErrInvalidHopSize    = errors.New("hop size must be positive")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// Spectrogram is a sequence of magnitude frames. Every frame holds
// WindowSize/2+1 bins and frame i starts at sample i*HopSize.
type Spectrogram struct {
	Frames     [][]float64 `json:"frames"`
	WindowSize int         `json:"window_size"`
	HopSize    int         `json:"hop_size"`
	SampleRate int         `json:"sample_rate"`
}

// NumFrames returns the number of time frames
func (s *Spectrogram) NumFrames() int {
	return len(s.Frames)
}

// NumBins returns the number of frequency bins per frame
func (s *Spectrogram) NumBins() int {
	return s.WindowSize/2 + 1
}

// IsEmpty reports whether the spectrogram has no frames
func (s *Spectrogram) IsEmpty() bool {
	return s == nil || len(s.Frames) == 0
}

// FrameRate returns frames per second
func (s *Spectrogram) FrameRate() float64 {
	if s.HopSize <= 0 {
		return 0
	}
	return float64(s.SampleRate) / float64(s.HopSize)
}

// FrameTime converts a frame index to seconds
func (s *Spectrogram) FrameTime(frame int) float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(frame*s.HopSize) / float64(s.SampleRate)
}

// BinFrequency returns the centre frequency of bin k in Hz
func (s *Spectrogram) BinFrequency(k int) float64 {
	return float64(k) * float64(s.SampleRate) / float64(s.WindowSize)
}

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft    *FFT
	logger logging.Logger
}

// NewSTFT creates a new STFT calculator
func NewSTFT(logger logging.Logger) *STFT {
	return &STFT{
		fft:    NewFFT(),
		logger: logging.OrGlobal(logger, logging.Fields{"component": "stft"}),
	}
}

// ComputeSpectrogram computes a Hamming-windowed magnitude spectrogram
func ComputeSpectrogram(signal []float64, sampleRate, windowSize, hopSize int) (*Spectrogram, error) {
	return NewSTFT(&logging.NoOpLogger{}).Compute(signal, sampleRate, windowSize, hopSize, nil)
}

// Compute slides a window of windowSize samples across signal in steps of
// hopSize. The first frame that runs past the end of the signal is zero
// padded and ends the analysis. A nil window means Hamming.
func (s *STFT) Compute(signal []float64, sampleRate, windowSize, hopSize int, window windowing.Window) (*Spectrogram, error) {
	if windowSize < windowing.MinSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindowSize, windowSize)
	}

	if hopSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHopSize, hopSize)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}

	if window == nil {
		hamming, err := windowing.NewHamming(windowSize)
		if err != nil {
			return nil, err
		}
		window = hamming
	}

	if window.GetSize() != windowSize {
		return nil, fmt.Errorf("window has %d coefficients, frames have %d samples", window.GetSize(), windowSize)
	}

	result := &Spectrogram{
		Frames:     make([][]float64, 0, len(signal)/hopSize+1),
		WindowSize: windowSize,
		HopSize:    hopSize,
		SampleRate: sampleRate,
	}

	frame := make([]float64, windowSize)
	for start := 0; start < len(signal); start += hopSize {
		end := start + windowSize

		clear(frame)
		copy(frame, signal[start:min(end, len(signal))])

		if err := window.ApplyInPlace(frame); err != nil {
			return nil, err
		}

		result.Frames = append(result.Frames, s.fft.Magnitudes(frame))

		if end > len(signal) {
			break
		}
	}

	s.logger.Debug("computed spectrogram", logging.Fields{
		"frames":      result.NumFrames(),
		"bins":        result.NumBins(),
		"window_size": windowSize,
		"hop_size":    hopSize,
		"window":      window.GetType(),
	})

	return result, nil
}
