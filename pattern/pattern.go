package pattern

import (
	"strings"
)

// Pattern is an immutable fixed-length sequence of onset flags
// The zero value has no steps; every generator returns StepCount() >= 1
type Pattern struct {
	steps []bool
}

// New copies steps into a new Pattern
func New(steps []bool) Pattern {
	cp := make([]bool, len(steps))
	copy(cp, steps)
	return Pattern{steps: cp}
}

// Empty returns a pattern of n rests
func Empty(n int) Pattern {
	if n < 0 {
		n = 0
	}
	return Pattern{steps: make([]bool, n)}
}

// Full returns a pattern of n onsets
func Full(n int) Pattern {
	p := Empty(n)
	for i := range p.steps {
		p.steps[i] = true
	}
	return p
}

// FromPositions sets the given positions (mod n) in an n-step pattern
func FromPositions(n int, positions []int) Pattern {
	p := Empty(n)
	if n == 0 {
		return p
	}
	for _, pos := range positions {
		pos %= n
		if pos < 0 {
			pos += n
		}
		p.steps[pos] = true
	}
	return p
}

// FromString decodes a '1'/'0' string, any other rune counts as a rest
func FromString(bits string) Pattern {
	p := Empty(len(bits))
	for i := 0; i < len(bits); i++ {
		p.steps[i] = bits[i] == '1'
	}
	return p
}

// wrap adopts steps without copying; callers must not retain the slice
func wrap(steps []bool) Pattern {
	return Pattern{steps: steps}
}

// StepCount returns the pattern length
func (p Pattern) StepCount() int {
	return len(p.steps)
}

// OnsetCount returns the number of active steps
func (p Pattern) OnsetCount() int {
	n := 0
	for _, s := range p.steps {
		if s {
			n++
		}
	}
	return n
}

// At reports whether step i is an onset, out-of-range steps are rests
func (p Pattern) At(i int) bool {
	if i < 0 || i >= len(p.steps) {
		return false
	}
	return p.steps[i]
}

// Steps returns a copy of the flags
func (p Pattern) Steps() []bool {
	cp := make([]bool, len(p.steps))
	copy(cp, p.steps)
	return cp
}

// Onsets returns active step positions in ascending order
func (p Pattern) Onsets() []int {
	out := make([]int, 0, len(p.steps))
	for i, s := range p.steps {
		if s {
			out = append(out, i)
		}
	}
	return out
}

// Rests returns inactive step positions in ascending order
func (p Pattern) Rests() []int {
	out := make([]int, 0, len(p.steps))
	for i, s := range p.steps {
		if !s {
			out = append(out, i)
		}
	}
	return out
}

// Density returns onsets per step, 0 for an empty pattern
func (p Pattern) Density() float64 {
	if len(p.steps) == 0 {
		return 0
	}
	return float64(p.OnsetCount()) / float64(len(p.steps))
}

// IsEmpty reports whether the pattern has no steps
func (p Pattern) IsEmpty() bool {
	return len(p.steps) == 0
}

// Equal compares length and every flag
func (p Pattern) Equal(q Pattern) bool {
	if len(p.steps) != len(q.steps) {
		return false
	}
	for i := range p.steps {
		if p.steps[i] != q.steps[i] {
			return false
		}
	}
	return true
}

// String renders the pattern as '1'/'0' from step 0
func (p Pattern) String() string {
	var b strings.Builder
	b.Grow(len(p.steps))
	for _, s := range p.steps {
		if s {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Visual renders onsets and rests with the given runes
func (p Pattern) Visual(on, off rune) string {
	var b strings.Builder
	for _, s := range p.steps {
		if s {
			b.WriteRune(on)
		} else {
			b.WriteRune(off)
		}
	}
	return b.String()
}
