package generator

import (
	"fmt"
	"math"

	"github.com/lixenwraith/upi-engine/pattern"
)

// MaxQuantizeSteps bounds the target step count of Quantize
const MaxQuantizeSteps = 128

// QuantizeInfo describes the mapping performed by Quantize
type QuantizeInfo struct {
	OriginalSteps   int
	QuantizedSteps  int
	OriginalOnsets  int
	QuantizedOnsets int
	Clockwise       bool
}

// Quantize maps every onset angle of p onto a circle of steps positions
// Counterclockwise mirrors the angle; onsets landing on the same position merge
func Quantize(p pattern.Pattern, steps int, clockwise bool) (pattern.Pattern, QuantizeInfo, error) {
	info := QuantizeInfo{
		OriginalSteps:  p.StepCount(),
		QuantizedSteps: steps,
		OriginalOnsets: p.OnsetCount(),
		Clockwise:      clockwise,
	}
	if steps < 1 || steps > MaxQuantizeSteps {
		return pattern.Pattern{}, info, fmt.Errorf("quantize to %d steps (1..%d): %w", steps, MaxQuantizeSteps, ErrValueRange)
	}
	if p.StepCount() == 0 {
		return pattern.Pattern{}, info, fmt.Errorf("quantize: %w", ErrEmptyInput)
	}

	orig := float64(p.StepCount())
	positions := make([]int, 0, p.OnsetCount())
	for _, pos := range p.Onsets() {
		angle := float64(pos) / orig * 2 * math.Pi
		if !clockwise {
			angle = 2*math.Pi - angle
		}
		q := int(math.Round(angle / (2 * math.Pi) * float64(steps)))
		if q >= steps {
			q = 0
		}
		positions = append(positions, q)
	}

	out := pattern.FromPositions(steps, positions)
	info.QuantizedOnsets = out.OnsetCount()
	return out, info, nil
}
