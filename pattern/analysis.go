package pattern

import (
	"math"
	"math/cmplx"
)

// Rating grades how close a pattern's onsets sit to perfect balance
type Rating uint8

const (
	RatingUnknown Rating = iota
	RatingPerfect
	RatingExcellent
	RatingGood
	RatingFair
	RatingPoor
)

var ratingNames = [...]string{"unknown", "perfect", "excellent", "good", "fair", "poor"}

func (r Rating) String() string {
	if int(r) < len(ratingNames) {
		return ratingNames[r]
	}
	return "unknown"
}

// PerfectBalanceEpsilon is the largest onset vector sum still treated as zero
const PerfectBalanceEpsilon = 0.001

// Balance summarises the onset vector sum on the unit circle
type Balance struct {
	Magnitude  float64 // length of the summed onset vectors
	Normalized float64 // Magnitude per onset, 0 when there are none
	Perfect    bool
	Rating     Rating
}

// onsetSum places each onset at its angle around the cycle and adds the unit vectors
func (p Pattern) onsetSum() (complex128, int) {
	n := len(p.steps)
	var sum complex128
	count := 0
	for i, on := range p.steps {
		if on {
			sum += cmplx.Rect(1, 2*math.Pi*float64(i)/float64(n))
			count++
		}
	}
	return sum, count
}

// Balance measures perfect balance: onsets whose vectors cancel are perfectly balanced
// An empty pattern reports RatingUnknown
func (p Pattern) Balance() Balance {
	if len(p.steps) == 0 {
		return Balance{}
	}
	sum, count := p.onsetSum()
	b := Balance{Magnitude: cmplx.Abs(sum)}
	if count > 0 {
		b.Normalized = b.Magnitude / float64(count)
	}
	b.Perfect = b.Magnitude < PerfectBalanceEpsilon

	switch {
	case b.Perfect:
		b.Rating = RatingPerfect
	case b.Normalized < 0.1:
		b.Rating = RatingExcellent
	case b.Normalized < 0.3:
		b.Rating = RatingGood
	case b.Normalized < 0.6:
		b.Rating = RatingFair
	default:
		b.Rating = RatingPoor
	}
	return b
}

// CenterOfGravity returns the angle in degrees [0, 360) of the mean onset vector
// Returns 0 for patterns without onsets
func (p Pattern) CenterOfGravity() float64 {
	sum, count := p.onsetSum()
	if count == 0 {
		return 0
	}
	deg := cmplx.Phase(sum/complex(float64(count), 0)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}
