package upi

import (
	"strconv"
	"strings"

	"github.com/lixenwraith/upi-engine/generator"
	"github.com/lixenwraith/upi-engine/parameter"
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/progressive"
	"github.com/lixenwraith/upi-engine/vmath"
)

// evaluator is the pure half of parsing; it never touches progressive sessions
type evaluator struct {
	seed     uint64
	maxSteps int
}

// expr is an evaluated expression before any progressive suffix
type expr struct {
	pattern  pattern.Pattern
	operands []Operand
	quantize *generator.QuantizeInfo
	offset   int
}

// progression is a deferred session request, applied only after the whole input evaluated
type progression struct {
	typ    Progression
	req    progressive.Request
	id     string
	amount int
}

// plan is one evaluated scene awaiting commit
type plan struct {
	source string
	expr   expr
	prog   *progression
}

// lineageID normalises scene text into a session id
func lineageID(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), ""))
}

// evalScene splits off a progressive suffix and evaluates the base
func (e *evaluator) evalScene(text string) (plan, *Error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return plan{}, syntaxErrorf("empty scene")
	}
	l, perr := scanLayout(text)
	if perr != nil {
		return plan{}, perr
	}

	if gt := l.last(">"); gt >= 0 {
		return e.transformScene(text, gt)
	}

	if plus := l.last("+"); plus > 0 {
		lhs, rhs := strings.TrimSpace(text[:plus]), strings.TrimSpace(text[plus+1:])
		if isInteger(rhs, true) && !isBinaryLiteral(lhs) {
			return e.offsetScene(text, lhs, rhs)
		}
	}

	if star := l.last("*"); star > 0 {
		lhs, rhs := strings.TrimSpace(text[:star]), strings.TrimSpace(text[star+1:])
		if isInteger(rhs, false) && !isBinaryLiteral(lhs) {
			return e.lengthenScene(text, lhs, rhs)
		}
	}

	ex, perr := e.evalExpr(text)
	if perr != nil {
		return plan{}, perr
	}
	return plan{source: text, expr: ex}, nil
}

// transformScene handles <base>[bwed]>N
// The letter is taken only when the character before it is not a letter and it is not morse text
func (e *evaluator) transformScene(text string, gt int) (plan, *Error) {
	targetText := strings.TrimSpace(text[gt+1:])
	if !isInteger(targetText, false) {
		return plan{}, syntaxErrorf("progressive target %q is not a number", targetText)
	}
	target, err := strconv.Atoi(targetText)
	if err != nil {
		return plan{}, rangeErrorf("progressive target %q out of range", targetText)
	}

	base := strings.TrimSpace(text[:gt])
	bl, perr := scanLayout(base)
	if perr != nil {
		return plan{}, perr
	}
	kind := generator.TransformBarlow
	if n := len(base); n > 0 && bl.top[n-1] && isAlpha(base[n-1]) && (n == 1 || !isAlpha(base[n-2])) {
		if t, ok := generator.TransformerFromLetter(base[n-1]); ok {
			kind = t
			base = strings.TrimSpace(base[:n-1])
		}
	}

	ex, perr := e.evalExpr(base)
	if perr != nil {
		return plan{}, perr
	}
	req := progressive.Request{Base: ex.pattern, Kind: kind, Target: target}
	if err := req.Validate(); err != nil {
		return plan{}, stateErrorf("%s: %v", text, err)
	}
	return plan{source: text, expr: ex, prog: &progression{typ: ProgressionTransform, req: req, id: lineageID(text)}}, nil
}

func (e *evaluator) offsetScene(text, lhs, rhs string) (plan, *Error) {
	step, err := strconv.Atoi(rhs)
	if err != nil {
		return plan{}, rangeErrorf("offset %q out of range", rhs)
	}
	ex, perr := e.evalExpr(lhs)
	if perr != nil {
		return plan{}, perr
	}
	return plan{source: text, expr: ex, prog: &progression{typ: ProgressionOffset, id: lineageID(text), amount: step}}, nil
}

func (e *evaluator) lengthenScene(text, lhs, rhs string) (plan, *Error) {
	grow, err := strconv.Atoi(rhs)
	if err != nil || grow < 1 || grow > e.maxSteps {
		return plan{}, rangeErrorf("lengthen step %q outside 1..%d", rhs, e.maxSteps)
	}
	ex, perr := e.evalExpr(lhs)
	if perr != nil {
		return plan{}, perr
	}
	return plan{source: text, expr: ex, prog: &progression{typ: ProgressionLengthen, id: lineageID(text), amount: grow}}, nil
}

// evalExpr reduces a left-associative combination of operands
func (e *evaluator) evalExpr(text string) (expr, *Error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return expr{}, syntaxErrorf("missing expression")
	}
	l, perr := scanLayout(text)
	if perr != nil {
		return expr{}, perr
	}

	cuts := l.operators()
	if len(cuts) == 0 {
		n, perr := e.evalOperand(text)
		if perr != nil {
			return expr{}, perr
		}
		return expr{pattern: n.pattern, quantize: n.quantize, offset: n.offset}, nil
	}

	operands := make([]Operand, 0, len(cuts)+1)
	nodes := make([]node, 0, len(cuts)+1)
	start := 0
	op := pattern.OpUnion
	for k := 0; k <= len(cuts); k++ {
		end := len(text)
		if k < len(cuts) {
			end = cuts[k]
		}
		src := strings.TrimSpace(text[start:end])
		if src == "" {
			return expr{}, syntaxErrorf("missing operand at %d in %q", start, text)
		}
		n, perr := e.evalOperand(src)
		if perr != nil {
			return expr{}, perr
		}
		nodes = append(nodes, n)
		operands = append(operands, Operand{Source: src, Op: op, Pattern: n.pattern})
		if k < len(cuts) {
			op, _ = pattern.OperatorFromByte(text[cuts[k]])
			start = cuts[k] + 1
		}
	}

	polygons := make([]generator.PolygonSpec, 0, len(nodes))
	counts := make([]int, 0, len(nodes))
	for _, n := range nodes {
		if n.polygon != nil {
			polygons = append(polygons, *n.polygon)
		}
		counts = append(counts, n.pattern.StepCount())
	}

	// Pure polygon combinations share one circle instead of repeating each polygon
	steps := vmath.LCMAll(counts...)
	if len(polygons) == len(nodes) {
		steps = generator.CombinedSteps(polygons)
	}
	if steps > parameter.MaxCombinedSteps {
		return expr{}, rangeErrorf("combined length %d exceeds %d", steps, parameter.MaxCombinedSteps)
	}

	patterns := make([]pattern.Pattern, len(nodes))
	ops := make([]pattern.Operator, 0, len(nodes)-1)
	for i := range nodes {
		patterns[i] = nodes[i].pattern
		if len(polygons) == len(nodes) {
			patterns[i] = polygons[i].Project(steps)
			operands[i].Pattern = patterns[i]
		}
		if i > 0 {
			ops = append(ops, operands[i].Op)
		}
	}
	return expr{pattern: pattern.Reduce(patterns, ops), operands: operands}, nil
}

// prefix words applied to the rest of an operand
var prefixWords = []struct {
	word  string
	apply func(pattern.Pattern) pattern.Pattern
}{
	{"inv", pattern.Pattern.Invert},
	{"rev", pattern.Pattern.Reverse},
	{"comp", pattern.Pattern.Complement},
}

// evalOperand applies postfix @N and ;N, prefix ~/inv/rev/comp, grouping, then the atom
// Postfix operators bind looser than prefix ones
func (e *evaluator) evalOperand(text string) (node, *Error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return node{}, syntaxErrorf("missing operand")
	}
	l, perr := scanLayout(text)
	if perr != nil {
		return node{}, perr
	}

	if at := l.last("@;"); at >= 0 {
		return e.postfix(text, at)
	}

	if text[0] == '~' {
		n, perr := e.evalOperand(text[1:])
		if perr != nil {
			return node{}, perr
		}
		return node{pattern: n.pattern.Invert()}, nil
	}

	lower := strings.ToLower(text)
	for _, w := range prefixWords {
		if !strings.HasPrefix(lower, w.word) || len(text) == len(w.word) {
			continue
		}
		if next := text[len(w.word)]; next != ' ' && next != '(' && next != '~' && next != '[' {
			continue
		}
		n, perr := e.evalOperand(text[len(w.word):])
		if perr != nil {
			return node{}, perr
		}
		return node{pattern: w.apply(n.pattern)}, nil
	}

	if text[0] == '(' && closesAtEnd(text) {
		ex, perr := e.evalExpr(text[1 : len(text)-1])
		if perr != nil {
			return node{}, perr
		}
		return node{pattern: ex.pattern, quantize: ex.quantize, offset: ex.offset}, nil
	}

	return e.evalAtom(text)
}

func (e *evaluator) postfix(text string, at int) (node, *Error) {
	lhs, rhs := strings.TrimSpace(text[:at]), strings.TrimSpace(text[at+1:])
	if lhs == "" {
		return node{}, syntaxErrorf("missing pattern before %q", text[at])
	}
	if !isInteger(rhs, true) {
		return node{}, syntaxErrorf("%q must be followed by a number, got %q", text[at], rhs)
	}
	n, err := strconv.Atoi(rhs)
	if err != nil {
		return node{}, rangeErrorf("%q argument %q out of range", text[at], rhs)
	}

	base, perr := e.evalOperand(lhs)
	if perr != nil {
		return node{}, perr
	}

	if text[at] == '@' {
		return node{pattern: base.pattern.Rotate(n)}, nil
	}

	clockwise := n > 0
	if n < 0 {
		n = -n
	}
	if n < 1 || n > min(e.maxSteps, generator.MaxQuantizeSteps) {
		return node{}, rangeErrorf("quantize step count %d outside 1..%d", n, min(e.maxSteps, generator.MaxQuantizeSteps))
	}
	q, info, qerr := generator.Quantize(base.pattern, n, clockwise)
	if qerr != nil {
		return node{}, classify(qerr)
	}
	return node{pattern: q, quantize: &info}, nil
}

// closesAtEnd reports whether the opening parenthesis at 0 is matched by the final byte
func closesAtEnd(text string) bool {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(text)-1
			}
		}
	}
	return false
}

// evalAccent evaluates an accent clause statelessly
func (e *evaluator) evalAccent(clause string) (pattern.Pattern, *Error) {
	l, perr := scanLayout(clause)
	if perr != nil {
		return pattern.Pattern{}, perr
	}
	if len(l.split('|')) > 1 {
		return pattern.Pattern{}, syntaxErrorf("accent clause cannot hold scenes")
	}
	pl, perr := e.evalScene(clause)
	if perr != nil {
		return pattern.Pattern{}, perr
	}
	if pl.prog != nil {
		return pattern.Pattern{}, stateErrorf("accent clause %q cannot be progressive", clause)
	}
	return pl.expr.pattern, nil
}
