// Package accent assigns accent flags to rhythm onsets by occurrence index
package accent

import (
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/vmath"
)

// Align returns one flag per onset of rhythm for its first cycle
// The i-th onset occurrence takes accent[i mod L], independent of step positions
func Align(rhythm, accent pattern.Pattern) []bool {
	return alignFrom(rhythm.OnsetCount(), accent, 0)
}

func alignFrom(onsets int, accent pattern.Pattern, start int) []bool {
	out := make([]bool, onsets)
	size := accent.StepCount()
	if size == 0 {
		return out
	}
	for i := range out {
		out[i] = accent.At((start + i) % size)
	}
	return out
}

// StepFlags returns the per-step accent map for the given repetition of rhythm
// The occurrence counter carries across cycles so accents drift when L does not divide the onset count
func StepFlags(rhythm, accent pattern.Pattern, cycle int) []bool {
	steps := make([]bool, rhythm.StepCount())
	onsets := rhythm.Onsets()
	if len(onsets) == 0 || accent.StepCount() == 0 {
		return steps
	}
	start := vmath.Mod(cycle*len(onsets), accent.StepCount())
	flags := alignFrom(len(onsets), accent, start)
	for i, pos := range onsets {
		steps[pos] = flags[i]
	}
	return steps
}

// Sequence is the full polyrhythmic alignment of an accent pattern over repeated rhythm cycles
type Sequence struct {
	rhythm pattern.Pattern
	accent pattern.Pattern
	cycles int
	maps   [][]bool
}

// NewSequence precomputes every per-cycle accent map until the alignment repeats
func NewSequence(rhythm, accent pattern.Pattern) *Sequence {
	s := &Sequence{rhythm: rhythm, accent: accent, cycles: cycleLength(rhythm.OnsetCount(), accent.StepCount())}
	s.maps = make([][]bool, s.cycles)
	for c := range s.maps {
		s.maps[c] = StepFlags(rhythm, accent, c)
	}
	return s
}

// cycleLength is lcm(n, L)/n, or 1 when either side is empty
func cycleLength(onsets, size int) int {
	if onsets == 0 || size == 0 {
		return 1
	}
	return vmath.LCM(onsets, size) / onsets
}

// Rhythm returns the rhythm the sequence was built for
func (s *Sequence) Rhythm() pattern.Pattern {
	return s.rhythm
}

// Accent returns the accent pattern
func (s *Sequence) Accent() pattern.Pattern {
	return s.accent
}

// CycleLength is the number of rhythm cycles before the accent alignment repeats
func (s *Sequence) CycleLength() int {
	return s.cycles
}

// Map returns the per-step accent flags for cycle, wrapping modulo CycleLength
func (s *Sequence) Map(cycle int) []bool {
	m := s.maps[vmath.Mod(cycle, s.cycles)]
	out := make([]bool, len(m))
	copy(out, m)
	return out
}

// IsAccented reports whether step carries an accent in cycle
// Rests are never accented
func (s *Sequence) IsAccented(cycle, step int) bool {
	m := s.maps[vmath.Mod(cycle, s.cycles)]
	if step < 0 || step >= len(m) {
		return false
	}
	return m[step]
}

// AccentCount returns the number of accented onsets across one full alignment period
func (s *Sequence) AccentCount() int {
	n := 0
	for _, m := range s.maps {
		for _, v := range m {
			if v {
				n++
			}
		}
	}
	return n
}
