package generator

import (
	"math"

	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/vmath"
)

// Polygon places sides evenly spaced vertices around steps (0 means steps = sides),
// rotated by offset
func Polygon(sides, offset, steps int) pattern.Pattern {
	if steps <= 0 {
		steps = sides
	}
	if steps < 1 || sides < 1 {
		return pattern.Empty(max(steps, 0))
	}

	positions := make([]int, 0, sides)
	for i := 0; i < sides; i++ {
		exact := float64(i*steps) / float64(sides)
		positions = append(positions, vmath.Mod(int(math.Round(exact))+offset, steps))
	}
	return pattern.FromPositions(steps, positions)
}

// PolygonSpec describes a polygon before its step count is fixed
type PolygonSpec struct {
	Sides  int
	Offset int
	Steps  int // 0 means Sides
}

// Generate renders the polygon at its own step count
func (s PolygonSpec) Generate() pattern.Pattern {
	return Polygon(s.Sides, s.Offset, s.Steps)
}

// CombinedSteps returns the LCM of every polygon's natural step count
func CombinedSteps(specs []PolygonSpec) int {
	counts := make([]int, 0, len(specs))
	for _, s := range specs {
		n := s.Steps
		if n <= 0 {
			n = s.Sides
		}
		counts = append(counts, n)
	}
	return vmath.LCMAll(counts...)
}

// Project re-renders the polygon onto a shared step count so vertex positions stay exact
func (s PolygonSpec) Project(steps int) pattern.Pattern {
	return Polygon(s.Sides, s.Offset, steps)
}
