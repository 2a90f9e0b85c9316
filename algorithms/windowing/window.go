package windowing

import (
	"errors"
	"fmt"
)

// MinSize is the smallest window the symmetric formulas are defined for
const MinSize = 2

var (
	ErrWindowTooSmall = errors.New("window size must be at least 2")
	ErrUnknownWindow  = errors.New("unknown window type")
	ErrLengthMismatch = errors.New("signal length doesn't match window size")
)

// Type names an analysis window
type Type string

const (
	TypeHamming Type = "hamming"
	TypeHann    Type = "hann"
)

// Window is an analysis window applied to each STFT frame
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() Type
}

// New builds a symmetric window of the given type
func New(t Type, size int) (Window, error) {
	switch t {
	case TypeHamming, "":
		return NewHamming(size)
	case TypeHann:
		return NewHann(size)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, t)
	}
}

// coefficients holds precomputed window weights shared by the window types
type coefficients []float64

// Apply applies the window to a signal (creates new array)
func (c coefficients) Apply(signal []float64) []float64 {
	if len(signal) != len(c) {
		return nil
	}

	windowed := make([]float64, len(c))
	for i, w := range c {
		windowed[i] = signal[i] * w
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (c coefficients) ApplyInPlace(signal []float64) error {
	if len(signal) != len(c) {
		return fmt.Errorf("%w: signal %d, window %d", ErrLengthMismatch, len(signal), len(c))
	}

	for i, w := range c {
		signal[i] *= w
	}

	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (c coefficients) GetCoefficients() []float64 {
	coeffs := make([]float64, len(c))
	copy(coeffs, c)
	return coeffs
}

// GetSize returns the window size
func (c coefficients) GetSize() int {
	return len(c)
}

func checkSize(size int) error {
	if size < MinSize {
		return fmt.Errorf("%w: got %d", ErrWindowTooSmall, size)
	}
	return nil
}
