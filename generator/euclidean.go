package generator

import (
	"github.com/lixenwraith/upi-engine/pattern"
)

// Euclidean distributes onsets as evenly as possible over steps, first onset at step 0,
// then rotates by offset (positive moves onsets later)
// onsets is clamped to [0, steps]; steps < 1 yields an empty pattern
func Euclidean(onsets, steps, offset int) pattern.Pattern {
	if steps < 1 {
		return pattern.Empty(0)
	}
	return pattern.New(bjorklund(onsets, steps)).Rotate(offset)
}

// bjorklund builds the maximally even sequence through the recursive count/remainder tree
func bjorklund(onsets, steps int) []bool {
	out := make([]bool, 0, steps)
	if onsets <= 0 {
		return append(out, make([]bool, steps)...)
	}
	if onsets >= steps {
		for i := 0; i < steps; i++ {
			out = append(out, true)
		}
		return out
	}

	counts := make([]int, 0, steps)
	remainders := []int{onsets}
	divisor := steps - onsets
	level := 0
	for {
		counts = append(counts, divisor/remainders[level])
		remainders = append(remainders, divisor%remainders[level])
		divisor = remainders[level]
		level++
		if remainders[level] <= 1 {
			break
		}
	}
	counts = append(counts, divisor)

	var build func(l int)
	build = func(l int) {
		switch l {
		case -1:
			out = append(out, false)
		case -2:
			out = append(out, true)
		default:
			for i := 0; i < counts[l]; i++ {
				build(l - 1)
			}
			if remainders[l] != 0 {
				build(l - 2)
			}
		}
	}
	build(level)

	if len(out) > steps {
		out = out[:steps]
	}
	for len(out) < steps {
		out = append(out, false)
	}

	// Anchor the first onset on the downbeat
	first := 0
	for first < len(out) && !out[first] {
		first++
	}
	if first == 0 || first == len(out) {
		return out
	}
	rotated := make([]bool, 0, steps)
	rotated = append(rotated, out[first:]...)
	return append(rotated, out[:first]...)
}
