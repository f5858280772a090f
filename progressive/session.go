package progressive

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lixenwraith/upi-engine/generator"
	"github.com/lixenwraith/upi-engine/hierarchy"
	"github.com/lixenwraith/upi-engine/pattern"
)

var (
	ErrEmptyBase     = errors.New("progressive base has no steps")
	ErrInvalidTarget = errors.New("progressive target out of range")
	ErrInvalidGrowth = errors.New("progressive step size must be positive")
)

// Key identifies a transformation lineage
type Key struct {
	Base   string // binary form of the base pattern
	Kind   generator.Transformer
	Target int
}

// String renders the key as base + transformer letter + target, e.g. 10000000b8
func (k Key) String() string {
	return k.Base + string(k.Kind.Letter()) + strconv.Itoa(k.Target)
}

// Request asks the engine to advance the lineage of Base toward Target
type Request struct {
	Base   pattern.Pattern
	Kind   generator.Transformer
	Target int
}

// Key derives the lineage key
func (r Request) Key() Key {
	return Key{Base: r.Base.String(), Kind: r.Kind, Target: r.Target}
}

// Validate reports requests no session could satisfy
func (r Request) Validate() error {
	steps := r.Base.StepCount()
	if steps == 0 {
		return ErrEmptyBase
	}
	if r.Target < 0 || r.Target > steps {
		return fmt.Errorf("target %d for %d steps: %w", r.Target, steps, ErrInvalidTarget)
	}
	if r.Kind < generator.TransformBarlow || r.Kind > generator.TransformDilcue {
		return fmt.Errorf("transformer %d: %w", r.Kind, generator.ErrUnknownTransformer)
	}
	return nil
}

// Snapshot is an immutable view of a session after a Step
type Snapshot struct {
	Key           Key
	Pattern       pattern.Pattern
	Base          pattern.Pattern
	CurrentOnsets int
	BaseOnsets    int
	Target        int
	Direction     Direction
	Step          int  // advances since creation
	Created       bool // this call created the session
}

// session walks a precomputed outbound trail forward and back
// trail[0] is the base, trail[len-1] has the target onset count
type session struct {
	key       Key
	trail     []pattern.Pattern
	pos       int
	outbound  Direction
	direction Direction
	step      int
	table     *hierarchy.Table
}

func newSession(req Request) *session {
	var table *hierarchy.Table
	if req.Kind.UsesHierarchy() {
		table = hierarchy.NewTable(req.Base.StepCount())
	}

	trail := []pattern.Pattern{req.Base}
	cur := req.Base
	for cur.OnsetCount() != req.Target {
		next := generator.StepToward(req.Kind, cur, table, req.Target)
		if next.OnsetCount() == cur.OnsetCount() {
			break
		}
		trail = append(trail, next)
		cur = next
	}

	dir := initialDirection(req.Base.OnsetCount(), req.Target)
	return &session{
		key:       req.Key(),
		trail:     trail,
		outbound:  dir,
		direction: dir,
		table:     table,
	}
}

// advance moves one onset; at either end of the trail the direction flips first
func (s *session) advance() {
	s.step++
	last := len(s.trail) - 1
	if last == 0 {
		return
	}

	returning := s.direction != s.outbound
	if (!returning && s.pos == last) || (returning && s.pos == 0) {
		s.direction = s.direction.next(eventBoundary)
	} else {
		s.direction = s.direction.next(eventAdvance)
	}

	if s.direction == s.outbound {
		s.pos++
	} else {
		s.pos--
	}
}

func (s *session) snapshot(created bool) Snapshot {
	cur := s.trail[s.pos]
	base := s.trail[0]
	return Snapshot{
		Key:           s.key,
		Pattern:       cur,
		Base:          base,
		CurrentOnsets: cur.OnsetCount(),
		BaseOnsets:    base.OnsetCount(),
		Target:        s.key.Target,
		Direction:     s.direction,
		Step:          s.step,
		Created:       created,
	}
}
