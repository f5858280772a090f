package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lixenwraith/upi-engine/hierarchy"
	"github.com/lixenwraith/upi-engine/pattern"
)

var ErrUnknownTransformer = errors.New("unknown transformer")

// Transformer selects the hierarchy used to add or remove onsets
type Transformer int

const (
	TransformBarlow Transformer = iota
	TransformWolrab
	TransformEuclidean
	TransformDilcue
)

var transformerNames = [...]string{"barlow", "wolrab", "euclidean", "dilcue"}

func (t Transformer) String() string {
	if t < 0 || int(t) >= len(transformerNames) {
		return "unknown"
	}
	return transformerNames[t]
}

// Letter returns the single-letter UPI code
func (t Transformer) Letter() byte {
	if t < 0 || int(t) >= len(transformerNames) {
		return '?'
	}
	return "bwed"[t]
}

// TransformerFromLetter maps b/w/e/d in either case
func TransformerFromLetter(c byte) (Transformer, bool) {
	switch c | 0x20 {
	case 'b':
		return TransformBarlow, true
	case 'w':
		return TransformWolrab, true
	case 'e':
		return TransformEuclidean, true
	case 'd':
		return TransformDilcue, true
	}
	return 0, false
}

// ParseTransformer accepts a full name or letter
func ParseTransformer(s string) (Transformer, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range transformerNames {
		if s == name {
			return Transformer(i), nil
		}
	}
	if len(s) == 1 {
		if t, ok := TransformerFromLetter(s[0]); ok {
			return t, nil
		}
	}
	return 0, fmt.Errorf("transformer %q: %w", s, ErrUnknownTransformer)
}

// UsesHierarchy reports whether the transformer needs an indispensability table
func (t Transformer) UsesHierarchy() bool {
	return t == TransformBarlow || t == TransformWolrab
}

// StepToward moves the onset count of current one step toward target
// table may be nil for Euclidean and Dilcue, and is built on demand otherwise
func StepToward(t Transformer, current pattern.Pattern, table *hierarchy.Table, target int) pattern.Pattern {
	steps := current.StepCount()
	onsets := current.OnsetCount()
	if steps == 0 || onsets == target {
		return current
	}
	next := onsets + 1
	if target < onsets {
		next = onsets - 1
	}

	switch t {
	case TransformEuclidean:
		return Euclidean(next, steps, 0)
	case TransformDilcue:
		return Dilcue(next, steps)
	}

	if table == nil || table.Steps() != steps {
		table = hierarchy.NewTable(steps)
	}
	if next > onsets {
		return current.With(pickEmpty(t, current, table), true)
	}
	return current.With(pickActive(t, current, table), false)
}

// pickActive selects the onset to remove
// Barlow keeps the downbeat until it is the only onset left
func pickActive(t Transformer, p pattern.Pattern, table *hierarchy.Table) int {
	active := p.Onsets()
	best := -1
	for _, pos := range active {
		if t == TransformBarlow && pos == 0 && len(active) > 1 {
			continue
		}
		if best < 0 {
			best = pos
			continue
		}
		if t == TransformBarlow && table.Less(pos, best) {
			best = pos
		}
		if t == TransformWolrab && table.Less(best, pos) {
			best = pos
		}
	}
	return best
}

// pickEmpty selects the rest to fill
func pickEmpty(t Transformer, p pattern.Pattern, table *hierarchy.Table) int {
	best := -1
	for _, pos := range p.Rests() {
		if best < 0 {
			best = pos
			continue
		}
		if t == TransformBarlow && table.Less(best, pos) {
			best = pos
		}
		if t == TransformWolrab && table.Less(pos, best) {
			best = pos
		}
	}
	return best
}

// TransformTo applies StepToward until current has target onsets
// target is clamped to [0, steps]
func TransformTo(t Transformer, current pattern.Pattern, target int) pattern.Pattern {
	steps := current.StepCount()
	target = max(0, min(target, steps))
	var table *hierarchy.Table
	if t.UsesHierarchy() {
		table = hierarchy.NewTable(steps)
	}
	for current.OnsetCount() != target {
		current = StepToward(t, current, table, target)
	}
	return current
}

// downbeat returns a pattern with only step 0 active
func downbeat(steps int) pattern.Pattern {
	return pattern.Empty(steps).With(0, true)
}

// Barlow fills onsets into steps by descending indispensability, starting at the downbeat
func Barlow(onsets, steps int) pattern.Pattern {
	return hierarchyPattern(TransformBarlow, onsets, steps)
}

// Wolrab fills onsets by ascending indispensability after the downbeat
func Wolrab(onsets, steps int) pattern.Pattern {
	return hierarchyPattern(TransformWolrab, onsets, steps)
}

func hierarchyPattern(t Transformer, onsets, steps int) pattern.Pattern {
	if steps < 1 {
		return pattern.Empty(0)
	}
	if onsets <= 0 {
		return pattern.Empty(steps)
	}
	return TransformTo(t, downbeat(steps), onsets)
}

// Dilcue is the complement of the Euclidean distribution of steps-onsets
func Dilcue(onsets, steps int) pattern.Pattern {
	if steps < 1 {
		return pattern.Empty(0)
	}
	onsets = max(0, min(onsets, steps))
	return Euclidean(steps-onsets, steps, 0).Invert()
}
