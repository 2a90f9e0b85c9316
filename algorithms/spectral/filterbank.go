package spectral

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// referenceFrequency is the pitch the band centres are stepped from (A4)
const referenceFrequency = 440.0

var (
	ErrTooFewBands   = errors.New("filterbank needs at least three distinct centre bins")
	ErrInvalidFilter = errors.New("invalid filterbank parameters")
)

// FilterBank is a fixed bin x band matrix of triangular filters whose centres
// are spaced logarithmically, bands-per-octave apart. It is immutable once
// built and safe to share between goroutines.
type FilterBank struct {
	weights    *mat.Dense
	bins       []int
	fftBins    int
	sampleRate float64
	equalArea  bool
}

// NewFilterBank builds the constant-Q filterbank.
//
// fftBins is the number of linear FFT bins spanning 0..sampleRate/2, bands the
// number of bands per octave (12 gives semitone spacing), and fMin/fMax bound
// the centre frequencies. fMax is clamped to the Nyquist frequency. With
// equalArea every triangle has unit area instead of unit height.
func NewFilterBank(fftBins int, sampleRate float64, bands int, fMin, fMax float64, equalArea bool) (*FilterBank, error) {
	if fftBins < 3 || sampleRate <= 0 || bands < 1 || fMin <= 0 || fMax <= fMin {
		return nil, fmt.Errorf("%w: fftBins=%d sampleRate=%g bands=%d fMin=%g fMax=%g",
			ErrInvalidFilter, fftBins, sampleRate, bands, fMin, fMax)
	}

	fMax = min(fMax, sampleRate/2)

	factor := (sampleRate / 2.0) / float64(fftBins)
	var bins []int
	for _, f := range CenterFrequencies(bands, fMin, fMax) {
		bin := int(math.Round(f / factor))
		if bin < fftBins {
			bins = append(bins, bin)
		}
	}
	slices.Sort(bins)
	bins = slices.Compact(bins)

	if len(bins) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewBands, len(bins))
	}

	numBands := len(bins) - 2
	weights := mat.NewDense(fftBins, numBands, nil)
	for b := range numBands {
		start, mid, stop := bins[b], bins[b+1], bins[b+2]
		for j, w := range triangle(start, mid, stop, equalArea) {
			weights.Set(start+j, b, w)
		}
	}

	return &FilterBank{
		weights:    weights,
		bins:       bins,
		fftBins:    fftBins,
		sampleRate: sampleRate,
		equalArea:  equalArea,
	}, nil
}

// CenterFrequencies steps geometrically by 2^(1/bands) from 440 Hz up past
// fMax and down past fMin, returning the sorted, deduplicated frequencies.
// The first step beyond either bound is kept.
func CenterFrequencies(bands int, fMin, fMax float64) []float64 {
	factor := math.Pow(2.0, 1.0/float64(bands))

	freqs := []float64{referenceFrequency}
	for f := referenceFrequency; f <= fMax; {
		f *= factor
		freqs = append(freqs, f)
	}
	for f := referenceFrequency; f >= fMin; {
		f /= factor
		freqs = append(freqs, f)
	}

	slices.Sort(freqs)
	return slices.Compact(freqs)
}

// triangle returns the weights for bins [start, stop), rising linearly from 0
// at start to the peak height at mid and falling towards 0 at stop
func triangle(start, mid, stop int, equalArea bool) []float64 {
	height := 1.0
	if equalArea {
		height = 2.0 / float64(stop-start)
	}

	tri := make([]float64, stop-start)
	rise := mid - start
	fall := stop - mid
	for i := range rise {
		tri[i] = float64(i) * height / float64(rise)
	}
	for i := rise; i < len(tri); i++ {
		tri[i] = height - float64(i-rise)*height/float64(fall)
	}

	return tri
}

// NumBands returns the number of filters
func (fb *FilterBank) NumBands() int {
	_, c := fb.weights.Dims()
	return c
}

// FFTBins returns the number of rows (linear bins) of the matrix
func (fb *FilterBank) FFTBins() int {
	return fb.fftBins
}

// CenterBins returns a copy of the deduplicated bins the triangles are built on
func (fb *FilterBank) CenterBins() []int {
	return slices.Clone(fb.bins)
}

// Weight returns the weight of a linear bin in a band
func (fb *FilterBank) Weight(bin, band int) float64 {
	return fb.weights.At(bin, band)
}

// Apply projects one magnitude frame onto the bands. Bins beyond the
// filterbank's rows are ignored, as are matrix rows beyond the frame.
func (fb *FilterBank) Apply(frame []float64) []float64 {
	out := make([]float64, fb.NumBands())
	rows := min(len(frame), fb.fftBins)
	if rows == 0 {
		return out
	}

	x := mat.NewVecDense(rows, slices.Clone(frame[:rows]))
	w := fb.weights.Slice(0, rows, 0, fb.NumBands())

	var y mat.VecDense
	y.MulVec(w.T(), x)
	for b := range out {
		out[b] = y.AtVec(b)
	}
	return out
}

// ApplyAll projects every frame of a spectrogram (frames x bins) in a single
// matrix product
func (fb *FilterBank) ApplyAll(frames [][]float64) [][]float64 {
	if len(frames) == 0 {
		return [][]float64{}
	}

	rows := min(len(frames[0]), fb.fftBins)
	if rows == 0 {
		out := make([][]float64, len(frames))
		for i := range out {
			out[i] = make([]float64, fb.NumBands())
		}
		return out
	}

	s := mat.NewDense(len(frames), rows, nil)
	for i, frame := range frames {
		s.SetRow(i, frame[:rows])
	}

	var p mat.Dense
	p.Mul(s, fb.weights.Slice(0, rows, 0, fb.NumBands()))

	out := make([][]float64, len(frames))
	for i := range out {
		out[i] = mat.Row(nil, i, &p)
	}
	return out
}
