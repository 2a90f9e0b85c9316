package windowing

import (
	"math"
)

// Hann is the symmetric Hann window
type Hann struct {
	coefficients
}

// NewHann creates a new Hann window. Size must be at least 2.
func NewHann(size int) (*Hann, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}

	c := make(coefficients, size)
	denominator := float64(size - 1)
	for i := range size {
		c[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}

	return &Hann{coefficients: c}, nil
}

// GetType returns the window type
func (h *Hann) GetType() Type {
	return TypeHann
}
