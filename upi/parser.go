// Package upi parses Universal Pattern Input expressions into rhythm patterns
package upi

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/lixenwraith/upi-engine/accent"
	"github.com/lixenwraith/upi-engine/parameter"
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/progressive"
	"github.com/lixenwraith/upi-engine/status"
)

// Parser evaluates UPI expressions against an injected progressive engine
// Safe for concurrent use; all session state lives in the engine
type Parser struct {
	engine   *progressive.Engine
	seed     uint64
	maxSteps int

	parses      *atomic.Int64
	failures    *atomic.Int64
	lastExpr    *status.AtomicString
	lastErr     *status.AtomicString
	lastDensity *status.AtomicFloat
}

// Option configures a Parser
type Option func(*Parser)

// WithMetrics publishes parse counters and last-expression labels into reg
func WithMetrics(reg *status.Registry) Option {
	return func(p *Parser) {
		p.parses = reg.Counter(status.KeyParses)
		p.failures = reg.Counter(status.KeyParseErrors)
		p.lastExpr = reg.Label(status.KeyLastExpression)
		p.lastErr = reg.Label(status.KeyLastError)
		p.lastDensity = reg.Gauge(status.KeyLastDensity)
	}
}

// WithSeed sets the base seed for unseeded random forms
func WithSeed(seed uint64) Option {
	return func(p *Parser) {
		p.seed = seed
	}
}

// WithMaxSteps lowers the per-pattern step bound; values outside 1..MaxSteps are ignored
func WithMaxSteps(n int) Option {
	return func(p *Parser) {
		if n >= parameter.MinSteps && n <= parameter.MaxSteps {
			p.maxSteps = n
		}
	}
}

// NewParser creates a parser; a nil engine gets a private one with default capacity
func NewParser(engine *progressive.Engine, opts ...Option) *Parser {
	if engine == nil {
		engine = progressive.New(parameter.ProgressiveCapacity)
	}
	p := &Parser{
		engine:      engine,
		seed:        parameter.DefaultSeed,
		maxSteps:    parameter.MaxSteps,
		parses:      new(atomic.Int64),
		failures:    new(atomic.Int64),
		lastExpr:    new(status.AtomicString),
		lastErr:     new(status.AtomicString),
		lastDensity: new(status.AtomicFloat),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Engine returns the progressive engine the parser commits to
func (p *Parser) Engine() *progressive.Engine {
	return p.engine
}

func (p *Parser) evaluator() *evaluator {
	return &evaluator{seed: p.seed, maxSteps: p.maxSteps}
}

// Parse evaluates input; it never panics and always returns a Result
// Progressive sessions advance only when the whole input evaluated cleanly
func (p *Parser) Parse(input string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = errorResult(input, syntaxErrorf("internal failure: %v", r))
		}
		p.record(res)
	}()

	plans, acc, perr := p.plan(input)
	if perr != nil {
		return errorResult(input, perr)
	}

	parts := make([]Result, len(plans))
	done := make(map[commitKey]committed)
	for i, pl := range plans {
		part, perr := p.commit(pl, done)
		if perr != nil {
			return errorResult(input, perr)
		}
		if acc != nil {
			part.Accent = &AccentInfo{
				Source:  acc.Source,
				Pattern: acc.Pattern,
				Flags:   accent.Align(part.Pattern, acc.Pattern),
			}
		}
		parts[i] = part
	}

	if len(parts) == 1 {
		res = parts[0]
		res.Input = input
		return res
	}

	scenes := make([]pattern.Pattern, len(parts))
	for i := range parts {
		scenes[i] = parts[i].Pattern
	}
	return Result{
		Kind:    KindStringed,
		Input:   input,
		Pattern: scenes[0],
		Scenes:  scenes,
		Parts:   parts,
		Accent:  parts[0].Accent,
	}
}

// plan runs the pure evaluation of every scene and the accent clause
func (p *Parser) plan(input string) ([]plan, *AccentInfo, *Error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, nil, syntaxErrorf("empty input")
	}

	main, clause, hasAccent, perr := extractAccent(text)
	if perr != nil {
		return nil, nil, perr
	}
	main = strings.TrimSpace(main)
	if main == "" {
		return nil, nil, syntaxErrorf("accent clause without a pattern")
	}

	ev := p.evaluator()
	var acc *AccentInfo
	if hasAccent {
		ap, perr := ev.evalAccent(clause)
		if perr != nil {
			return nil, nil, perr
		}
		acc = &AccentInfo{Source: clause, Pattern: ap}
	}

	l, perr := scanLayout(main)
	if perr != nil {
		return nil, nil, perr
	}
	scenes := l.split('|')
	plans := make([]plan, 0, len(scenes))
	for _, s := range scenes {
		pl, perr := ev.evalScene(s)
		if perr != nil {
			return nil, nil, perr
		}
		plans = append(plans, pl)
	}
	return plans, acc, nil
}

// commitKey names the session a plan advances
type commitKey struct {
	typ Progression
	id  string
}

func (pl plan) commitKey() commitKey {
	if pl.prog.typ == ProgressionTransform {
		return commitKey{typ: pl.prog.typ, id: pl.prog.req.Key().String()}
	}
	return commitKey{typ: pl.prog.typ, id: pl.prog.id}
}

// committed is the session state one Parse already produced
type committed struct {
	pattern pattern.Pattern
	info    ProgressiveInfo
}

// commit applies a plan's progressive request, if any, and builds the scene result
// A session shared by several scenes of one input advances once; later scenes reuse its state
func (p *Parser) commit(pl plan, done map[commitKey]committed) (Result, *Error) {
	res := Result{Kind: KindSingle, Input: pl.source, Pattern: pl.expr.pattern}
	if len(pl.expr.operands) > 0 {
		res.Kind = KindCombination
		res.Operands = pl.expr.operands
	}
	if q := pl.expr.quantize; q != nil {
		res.Quantization = quantizationFrom(*q)
	}
	if pl.prog == nil {
		return res, nil
	}

	ck := pl.commitKey()
	if c, ok := done[ck]; ok {
		info := c.info
		res.Pattern = c.pattern
		res.Progressive = &info
		return res, nil
	}
	defer func() {
		if res.Progressive != nil {
			done[ck] = committed{pattern: res.Pattern, info: *res.Progressive}
		}
	}()

	switch pl.prog.typ {
	case ProgressionTransform:
		snap, err := p.engine.Step(pl.prog.req)
		if err != nil {
			return Result{}, classify(err)
		}
		res.Pattern = snap.Pattern
		res.Progressive = &ProgressiveInfo{
			Type:          ProgressionTransform,
			Key:           snap.Key.String(),
			Step:          snap.Step,
			Created:       snap.Created,
			Kind:          snap.Key.Kind,
			Direction:     snap.Direction,
			BaseOnsets:    snap.BaseOnsets,
			CurrentOnsets: snap.CurrentOnsets,
			TargetOnsets:  snap.Target,
		}

	case ProgressionOffset:
		snap, err := p.engine.StepOffset(pl.prog.id, pl.expr.pattern, pl.prog.amount)
		if err != nil {
			return Result{}, classify(err)
		}
		res.Pattern = snap.Pattern
		res.Progressive = &ProgressiveInfo{
			Type:          ProgressionOffset,
			Key:           snap.ID,
			Step:          snap.Trigger,
			Created:       snap.Created,
			BaseOnsets:    pl.expr.pattern.OnsetCount(),
			CurrentOnsets: snap.Pattern.OnsetCount(),
			HasOffset:     true,
			InitialOffset: pl.expr.offset,
			OffsetStep:    snap.StepSize,
			CurrentOffset: snap.Offset,
		}

	case ProgressionLengthen:
		snap, err := p.engine.StepLengthen(pl.prog.id, pl.expr.pattern, pl.prog.amount)
		if err != nil {
			return Result{}, classify(err)
		}
		res.Pattern = snap.Pattern
		res.Progressive = &ProgressiveInfo{
			Type:          ProgressionLengthen,
			Key:           snap.ID,
			Step:          snap.Trigger,
			Created:       snap.Created,
			BaseOnsets:    pl.expr.pattern.OnsetCount(),
			CurrentOnsets: snap.Pattern.OnsetCount(),
			Grow:          snap.Grow,
			AddedSteps:    snap.Added,
		}
	}
	return res, nil
}

// Reset discards every progressive session input would advance, returning how many existed
func (p *Parser) Reset(input string) (int, error) {
	plans, _, perr := p.plan(input)
	if perr != nil {
		perr.Input = input
		return 0, perr
	}
	n := 0
	for _, pl := range plans {
		if pl.prog == nil {
			continue
		}
		var found bool
		switch pl.prog.typ {
		case ProgressionTransform:
			found = p.engine.Reset(pl.prog.req.Key())
		case ProgressionOffset:
			found = p.engine.ResetOffset(pl.prog.id)
		case ProgressionLengthen:
			found = p.engine.ResetLengthen(pl.prog.id)
		}
		if found {
			n++
		}
	}
	return n, nil
}

// ResetAll discards every session in the engine
func (p *Parser) ResetAll() int {
	return p.engine.ResetAll()
}

// Validate reports whether input parses, without advancing any session
func (p *Parser) Validate(input string) error {
	if _, _, perr := p.plan(input); perr != nil {
		perr.Input = input
		return perr
	}
	return nil
}

func (p *Parser) record(res Result) {
	p.parses.Add(1)
	p.lastExpr.Store(res.Input)
	if res.Kind == KindError {
		p.failures.Add(1)
		p.lastErr.Store(res.Err.Error())
		return
	}
	p.lastDensity.Set(res.Pattern.Density())
}

// Describe renders a one-line summary of a result for logs and the CLI
func Describe(res Result) string {
	switch res.Kind {
	case KindError:
		return fmt.Sprintf("error: %v", res.Err)
	case KindStringed:
		parts := make([]string, len(res.Scenes))
		for i, s := range res.Scenes {
			parts[i] = s.String()
		}
		return fmt.Sprintf("stringed[%d]: %s", len(parts), strings.Join(parts, " | "))
	}
	s := fmt.Sprintf("%s: %s (%d/%d) balance %s", res.Kind, res.Pattern, res.Pattern.OnsetCount(), res.Pattern.StepCount(), res.Pattern.Balance().Rating)
	if pi := res.Progressive; pi != nil {
		s += fmt.Sprintf(" %s step %d", pi.Type, pi.Step)
	}
	return s
}
