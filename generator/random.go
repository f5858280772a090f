package generator

import (
	"math"

	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/vmath"
)

// Random picks onsets distinct positions out of steps; identical seeds give identical patterns
func Random(onsets, steps int, seed uint64) pattern.Pattern {
	if steps < 1 {
		return pattern.Empty(0)
	}
	onsets = vmath.Clamp(onsets, 0, steps)

	positions := make([]int, steps)
	for i := range positions {
		positions[i] = i
	}
	rng := vmath.NewFastRand(seed)
	rng.Shuffle(steps, func(i, j int) { positions[i], positions[j] = positions[j], positions[i] })

	return pattern.FromPositions(steps, positions[:onsets])
}

// BellOnsets draws an onset count from N(steps/2, (steps-2)/6) clamped to [1, steps-1]
func BellOnsets(steps int, rng *vmath.FastRand) int {
	if steps < 2 {
		return max(steps, 0)
	}
	mean := float64(steps) / 2
	stddev := float64(steps-2) / 6
	n := int(math.Round(rng.Normal(mean, stddev)))
	return vmath.Clamp(n, 1, steps-1)
}

// BellRandom chooses a bell-curve onset count, then places it like Random
func BellRandom(steps int, seed uint64) pattern.Pattern {
	rng := vmath.NewFastRand(seed)
	onsets := BellOnsets(steps, rng)
	return Random(onsets, steps, rng.Next())
}

// BellSteps returns count steps with about count/3 onsets clustered around the middle
// Draws landing outside the range or on an existing onset are dropped
func BellSteps(count int, rng *vmath.FastRand) pattern.Pattern {
	if count <= 0 {
		return pattern.Empty(0)
	}
	positions := make([]int, 0, count/3)
	mean := float64(count) / 2
	stddev := float64(count) / 6
	for i := 0; i < count/3; i++ {
		pos := int(math.Round(rng.Normal(mean, stddev)))
		if pos >= 0 && pos < count {
			positions = append(positions, pos)
		}
	}
	return pattern.FromPositions(count, positions)
}
