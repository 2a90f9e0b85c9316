package score

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-score/algorithms/rhythm"
)

// ErrInvalidCapacity is returned when a measure would hold no divisions
var ErrInvalidCapacity = errors.New("measure capacity must be positive")

type assemblerState int

const (
	stateIdle    assemblerState = iota // no open measure
	stateFilling                       // open measure with room left
	stateClosing                       // open measure is full
)

// AssemblerOption customises an Assembler
type AssemblerOption func(*Assembler)

// WithQuarterDivisions sets the divisions per quarter note used to type the
// parts when the beat unit is not a quarter (6/8, 2/2)
func WithQuarterDivisions(divisions int) AssemblerOption {
	return func(a *Assembler) {
		a.quarterDivisions = divisions
	}
}

// Assembler packs symbolic notes into fixed-capacity measures, splitting
// notes that cross a barline into tied parts
type Assembler struct {
	beatsPerMeasure  int
	divisionsPerBeat int
	quarterDivisions int

	state    assemblerState
	current  Measure
	filled   int
	measures []Measure
}

// NewAssembler creates an assembler for measures of beatsPerMeasure beats
func NewAssembler(beatsPerMeasure, divisionsPerBeat int, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		beatsPerMeasure:  beatsPerMeasure,
		divisionsPerBeat: divisionsPerBeat,
		quarterDivisions: divisionsPerBeat,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Capacity returns the number of divisions a measure holds
func (a *Assembler) Capacity() int {
	return a.beatsPerMeasure * a.divisionsPerBeat
}

// Assemble lays notes out in measures numbered from 1. A note longer than
// the room left in the current measure is split as often as needed; pitched
// parts are tied, rests are not. The final measure may be partial. Notes
// with a non-positive duration are skipped. The assembler can be reused.
func (a *Assembler) Assemble(notes []SymbolicNote) ([]Measure, error) {
	capacity := a.Capacity()
	if a.beatsPerMeasure <= 0 || a.divisionsPerBeat <= 0 {
		return nil, fmt.Errorf("%w: %d beats of %d divisions", ErrInvalidCapacity, a.beatsPerMeasure, a.divisionsPerBeat)
	}

	a.reset()
	for _, n := range notes {
		if n.Duration <= 0 {
			continue
		}
		a.place(n, capacity)
	}

	if a.state == stateFilling {
		a.close()
	}

	measures := a.measures
	a.reset()
	return measures, nil
}

func (a *Assembler) reset() {
	a.state = stateIdle
	a.current = Measure{}
	a.filled = 0
	a.measures = nil
}

func (a *Assembler) place(n SymbolicNote, capacity int) {
	remaining := n.Duration
	first := true

	for remaining > 0 {
		if a.state == stateIdle {
			a.open()
		}

		part := min(remaining, capacity-a.filled)
		remaining -= part

		p := n
		p.Duration = part
		p.Type = rhythm.FromDivisions(part, a.quarterDivisions)
		if !n.Rest {
			p.TieStop = n.TieStop || !first
			p.TieStart = remaining > 0 || n.TieStart
		} else {
			p.TieStart, p.TieStop = false, false
		}

		a.current.Notes = append(a.current.Notes, p)
		a.filled += part
		first = false

		if a.filled == capacity {
			a.state = stateClosing
			a.close()
		}
	}
}

func (a *Assembler) open() {
	a.current = Measure{Number: len(a.measures) + 1}
	a.filled = 0
	a.state = stateFilling
}

// close hands the open measure to the output. Closed measures are never
// touched again.
func (a *Assembler) close() {
	a.measures = append(a.measures, a.current)
	a.current = Measure{}
	a.filled = 0
	a.state = stateIdle
}
