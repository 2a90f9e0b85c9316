package tonal

import (
	"strings"

	"github.com/RyanBlaney/sonido-score/algorithms/common"
)

// KeyMode represents major or minor mode
type KeyMode int

const (
	KeyModeMajor KeyMode = iota
	KeyModeMinor
)

func (m KeyMode) String() string {
	if m == KeyModeMinor {
		return "minor"
	}
	return "major"
}

// Krumhansl-Kessler probe-tone profiles, tonic first
var (
	MajorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	MinorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// circle-of-fifths positions indexed by tonic pitch class. Sharp-named roots
// that have no practical signature use their enharmonic (A# major -> Bb).
var (
	majorFifths = [12]int{0, 7, 2, -3, 4, -1, 6, 1, -4, 3, -2, 5}
	minorFifths = [12]int{-3, 4, -1, 6, 1, -4, 3, -2, 5, 0, 7, 2}
)

// Key is a tonic pitch class (0=C) and a mode
type Key struct {
	Root int     `json:"root"`
	Mode KeyMode `json:"mode"`
}

// String names the key the way the score writer expects it: an uppercase
// tonic for major ("A", "F#") and a lowercase tonic for minor ("c#")
func (k Key) String() string {
	name := PitchClassNames[k.root()]
	if k.Mode == KeyModeMinor {
		return strings.ToLower(name)
	}
	return name
}

// Name returns a human-readable key name such as "F# minor"
func (k Key) Name() string {
	return PitchClassNames[k.root()] + " " + k.Mode.String()
}

// Fifths returns the key signature as a count of sharps (positive) or
// flats (negative), in the range -7..7
func (k Key) Fifths() int {
	if k.Mode == KeyModeMinor {
		return minorFifths[k.root()]
	}
	return majorFifths[k.root()]
}

func (k Key) root() int {
	return ((k.Root % 12) + 12) % 12
}

// EstimateKey runs Krumhansl-Schmuckler key finding over a pitch-class
// duration histogram
func EstimateKey(hist [12]float64) Key {
	key, _ := EstimateKeyWithScore(hist)
	return key
}

// EstimateKeyWithScore also returns the winning correlation. All 24 keys are
// scored; rotation i aligns hist[i] with the profile tonic. Minor is tested
// before major for each root and a candidate only replaces the current best
// when strictly greater, starting from C major with score 0. A histogram with
// no variance (all rests, or perfectly uniform) therefore stays in C major.
func EstimateKeyWithScore(hist [12]float64) (Key, float64) {
	best := Key{Root: 0, Mode: KeyModeMajor}
	bestScore := 0.0

	rotated := make([]float64, 12)
	for i := range 12 {
		for j := range 12 {
			rotated[j] = hist[(j+i)%12]
		}

		if c := common.Correlation(MinorProfile[:], rotated); c > bestScore {
			best, bestScore = Key{Root: i, Mode: KeyModeMinor}, c
		}
		if c := common.Correlation(MajorProfile[:], rotated); c > bestScore {
			best, bestScore = Key{Root: i, Mode: KeyModeMajor}, c
		}
	}

	return best, bestScore
}
