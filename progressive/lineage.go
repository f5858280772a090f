package progressive

import (
	"fmt"

	"github.com/lixenwraith/upi-engine/generator"
	"github.com/lixenwraith/upi-engine/parameter"
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/vmath"
)

// OffsetSnapshot is the state of a progressive rotation after one evaluation
type OffsetSnapshot struct {
	ID       string
	Pattern  pattern.Pattern
	StepSize int
	Offset   int // cumulative rotation applied to the base
	Trigger  int // advances since creation
	Created  bool
}

type offsetSession struct {
	base     pattern.Pattern
	stepSize int
	trigger  int
}

func (s *offsetSession) snapshot(id string, created bool) OffsetSnapshot {
	offset := s.trigger * s.stepSize
	return OffsetSnapshot{
		ID:       id,
		Pattern:  s.base.Rotate(offset),
		StepSize: s.stepSize,
		Offset:   offset,
		Trigger:  s.trigger,
		Created:  created,
	}
}

// StepOffset rotates base by one more stepSize on every evaluation after the first
// id names the lineage, typically the full expression text
func (e *Engine) StepOffset(id string, base pattern.Pattern, stepSize int) (OffsetSnapshot, error) {
	if base.StepCount() == 0 {
		return OffsetSnapshot{}, ErrEmptyBase
	}
	key := prefixOffset + id

	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.sessions.Get(key); ok {
		if s, ok := v.(*offsetSession); ok && s.base.Equal(base) && s.stepSize == stepSize {
			s.trigger++
			e.steps.Add(1)
			return s.snapshot(id, false), nil
		}
	}

	s := &offsetSession{base: base, stepSize: stepSize}
	e.store(key, s)
	e.created.Add(1)
	return s.snapshot(id, true), nil
}

// LengthenSnapshot is the state of a progressive lengthening after one evaluation
type LengthenSnapshot struct {
	ID      string
	Pattern pattern.Pattern
	Grow    int
	Added   int // steps appended to the base so far
	Trigger int
	Created bool
}

type lengthenSession struct {
	base    pattern.Pattern
	current pattern.Pattern
	grow    int
	trigger int
	rng     *vmath.FastRand
}

func (s *lengthenSession) snapshot(id string, created bool) LengthenSnapshot {
	return LengthenSnapshot{
		ID:      id,
		Pattern: s.current,
		Grow:    s.grow,
		Added:   s.current.StepCount() - s.base.StepCount(),
		Trigger: s.trigger,
		Created: created,
	}
}

// StepLengthen appends grow bell-curve random steps on every evaluation after the first
// Growth stops once the pattern reaches MaxLengthenedSteps
func (e *Engine) StepLengthen(id string, base pattern.Pattern, grow int) (LengthenSnapshot, error) {
	if base.StepCount() == 0 {
		return LengthenSnapshot{}, ErrEmptyBase
	}
	if grow < 1 {
		return LengthenSnapshot{}, fmt.Errorf("lengthen by %d: %w", grow, ErrInvalidGrowth)
	}
	key := prefixLengthen + id

	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.sessions.Get(key); ok {
		if s, ok := v.(*lengthenSession); ok && s.base.Equal(base) && s.grow == grow {
			s.trigger++
			if s.current.StepCount()+grow <= parameter.MaxLengthenedSteps {
				s.current = s.current.Append(generator.BellSteps(grow, s.rng))
			}
			e.steps.Add(1)
			return s.snapshot(id, false), nil
		}
	}

	s := &lengthenSession{
		base:    base,
		current: base,
		grow:    grow,
		rng:     vmath.NewFastRand(vmath.HashSeed(e.seed, id)),
	}
	e.store(key, s)
	e.created.Add(1)
	return s.snapshot(id, true), nil
}
