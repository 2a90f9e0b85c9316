package windowing

import (
	"math"
)

// Hamming is the symmetric Hamming window
// w[i] = 0.54 - 0.46*cos(2*pi*i/(N-1))
type Hamming struct {
	coefficients
}

// NewHamming creates a new Hamming window. Size must be at least 2.
func NewHamming(size int) (*Hamming, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}

	c := make(coefficients, size)
	denominator := float64(size - 1)
	for i := range size {
		c[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}

	return &Hamming{coefficients: c}, nil
}

// GetType returns the window type
func (h *Hamming) GetType() Type {
	return TypeHamming
}
