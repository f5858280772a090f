package upi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lixenwraith/upi-engine/generator"
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/vmath"
)

// shorthands maps named rhythms to the expression they stand for
var shorthands = map[string]string{
	"tri":       "P(3,0)",
	"pent":      "P(5,0)",
	"hex":       "P(6,0)",
	"hept":      "P(7,0)",
	"oct":       "P(8,0)",
	"tresillo":  "E(3,8)",
	"cinquillo": "E(5,8)",
}

// Shorthands lists the recognised rhythm names in sorted order
func Shorthands() []string {
	names := make([]string, 0, len(shorthands))
	for name := range shorthands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Expand returns the expression a shorthand name stands for
func Expand(name string) (string, bool) {
	expr, ok := shorthands[strings.ToLower(strings.TrimSpace(name))]
	return expr, ok
}

// node is an evaluated operand
type node struct {
	pattern  pattern.Pattern
	polygon  *generator.PolygonSpec // set for an unmodified polygon atom
	quantize *generator.QuantizeInfo
	offset   int // rotation from an E or P offset argument
}

// callArg is one argument of a function atom
type callArg struct {
	ident string
	value int
}

type call struct {
	name string
	args []callArg
}

// evalAtom classifies the innermost expression by pattern family
func (e *evaluator) evalAtom(text string) (node, *Error) {
	lower := strings.ToLower(text)

	if expr, ok := shorthands[lower]; ok {
		return e.evalAtom(expr)
	}

	switch {
	case strings.HasPrefix(lower, "m:"):
		return e.morse(text[2:])
	case lower[0] == '.':
		return e.morse(text)
	case lower[0] == '[':
		return e.array(text)
	case strings.HasPrefix(lower, "0x"):
		return e.numeric(generator.BaseHex, text[2:])
	case len(lower) > 1 && lower[0] == 'o' && isDigit(lower[1]):
		return e.numeric(generator.BaseOctal, text[1:])
	case len(lower) > 1 && lower[0] == 'd' && isDigit(lower[1]):
		return e.numeric(generator.BaseDecimal, text[1:])
	case len(lower) > 1 && lower[0] == 'b' && (lower[1] == '0' || lower[1] == '1'):
		return e.numeric(generator.BaseBinary, text[1:])
	case isAlpha(lower[0]) && strings.Contains(lower, "("):
		return e.function(text)
	case isDigit(lower[0]):
		digits, _, _ := strings.Cut(text, ":")
		if isBinaryLiteral(digits) {
			return e.numeric(generator.BaseBinary, text)
		}
		return e.numeric(generator.BaseDecimal, text)
	}
	return node{}, syntaxErrorf("unknown pattern %q", text)
}

func (e *evaluator) morse(text string) (node, *Error) {
	p, err := generator.Morse(strings.TrimSpace(text))
	if err != nil {
		return node{}, classify(err)
	}
	if p.StepCount() > e.maxSteps {
		return node{}, rangeErrorf("morse %q needs %d steps, maximum is %d", text, p.StepCount(), e.maxSteps)
	}
	return node{pattern: p}, nil
}

// numeric decodes digits with an optional :steps suffix
func (e *evaluator) numeric(base generator.Base, text string) (node, *Error) {
	digits, stepsText, hasSteps := strings.Cut(text, ":")
	steps := 0
	if hasSteps {
		n, perr := e.stepsArg(strings.TrimSpace(stepsText))
		if perr != nil {
			return node{}, perr
		}
		steps = n
	}
	p, err := generator.Numeric(base, strings.TrimSpace(digits), steps)
	if err != nil {
		return node{}, classify(err)
	}
	if p.StepCount() > e.maxSteps {
		return node{}, rangeErrorf("%s pattern of %d steps exceeds %d", base, p.StepCount(), e.maxSteps)
	}
	return node{pattern: p}, nil
}

func (e *evaluator) stepsArg(text string) (int, *Error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, syntaxErrorf("step count %q is not a number", text)
	}
	if n < 1 || n > e.maxSteps {
		return 0, rangeErrorf("step count %d outside 1..%d", n, e.maxSteps)
	}
	return n, nil
}

// array parses [p0,p1,...] with an optional :steps suffix
func (e *evaluator) array(text string) (node, *Error) {
	toks := NewLexer([]byte(text)).All()
	i := 0
	expect := func(typ TokenType) (Token, *Error) {
		tok := toks[i]
		if tok.Type != typ {
			if tok.Type == TokenError {
				return tok, syntaxErrorf("%s in %q", tok.Literal, text)
			}
			return tok, syntaxErrorf("expected %s at %d in %q, got %s", typ, tok.Pos, text, tok)
		}
		i++
		return tok, nil
	}

	if _, perr := expect(TokenLBracket); perr != nil {
		return node{}, perr
	}
	var positions []int
	for toks[i].Type != TokenRBracket {
		if len(positions) > 0 {
			if _, perr := expect(TokenComma); perr != nil {
				return node{}, perr
			}
		}
		tok, perr := expect(TokenNumber)
		if perr != nil {
			return node{}, perr
		}
		v, err := strconv.Atoi(tok.Literal)
		if err != nil {
			return node{}, rangeErrorf("array position %q out of range", tok.Literal)
		}
		positions = append(positions, v)
	}
	i++

	steps := 0
	if toks[i].Type == TokenColon {
		i++
		tok, perr := expect(TokenNumber)
		if perr != nil {
			return node{}, perr
		}
		n, perr := e.stepsArg(tok.Literal)
		if perr != nil {
			return node{}, perr
		}
		steps = n
	}
	if _, perr := expect(TokenEOF); perr != nil {
		return node{}, perr
	}

	p, err := generator.Array(positions, steps)
	if err != nil {
		return node{}, classify(err)
	}
	if p.StepCount() > e.maxSteps {
		return node{}, rangeErrorf("array of %d steps exceeds %d", p.StepCount(), e.maxSteps)
	}
	return node{pattern: p}, nil
}

// parseCall reads NAME ( arg {, arg} )
func parseCall(text string) (call, *Error) {
	toks := NewLexer([]byte(text)).All()
	if last := toks[len(toks)-1]; last.Type == TokenError {
		return call{}, syntaxErrorf("%s in %q", last.Literal, text)
	}
	if len(toks) < 4 || toks[0].Type != TokenIdent || toks[1].Type != TokenLParen {
		return call{}, syntaxErrorf("malformed pattern function %q", text)
	}

	c := call{name: strings.ToLower(toks[0].Literal)}
	i := 2
	for {
		tok := toks[i]
		switch tok.Type {
		case TokenNumber:
			v, err := strconv.Atoi(tok.Literal)
			if err != nil {
				return call{}, rangeErrorf("argument %q out of range", tok.Literal)
			}
			c.args = append(c.args, callArg{value: v})
		case TokenIdent:
			c.args = append(c.args, callArg{ident: strings.ToLower(tok.Literal)})
		default:
			return call{}, syntaxErrorf("expected argument at %d in %q, got %s", tok.Pos, text, tok)
		}
		i++

		switch toks[i].Type {
		case TokenComma:
			i++
			continue
		case TokenRParen:
			if toks[i+1].Type != TokenEOF {
				return call{}, syntaxErrorf("unexpected %s after %q", toks[i+1], text[:toks[i].Pos+1])
			}
			return c, nil
		default:
			return call{}, syntaxErrorf("expected ',' or ')' at %d in %q, got %s", toks[i].Pos, text, toks[i])
		}
	}
}

// arity bounds per function name
var arity = map[string][2]int{
	"e": {2, 3},
	"p": {2, 3},
	"r": {2, 3},
	"b": {2, 2},
	"w": {2, 2},
	"d": {2, 2},
}

// function dispatches E/P/R/B/W/D atoms
func (e *evaluator) function(text string) (node, *Error) {
	c, perr := parseCall(text)
	if perr != nil {
		return node{}, perr
	}
	bounds, ok := arity[c.name]
	if !ok {
		return node{}, syntaxErrorf("unknown pattern function %q", c.name)
	}
	if len(c.args) < bounds[0] || len(c.args) > bounds[1] {
		return node{}, syntaxErrorf("%s takes %d to %d arguments, got %d", strings.ToUpper(c.name), bounds[0], bounds[1], len(c.args))
	}
	for i, a := range c.args {
		if a.ident != "" && !(c.name == "r" && i == 0 && a.ident == "r") {
			return node{}, syntaxErrorf("argument %q of %s must be a number", a.ident, strings.ToUpper(c.name))
		}
	}

	switch c.name {
	case "p":
		return e.polygon(c)
	case "r":
		return e.random(c, text)
	}

	steps, perr := e.stepCount(c.args[1].value)
	if perr != nil {
		return node{}, perr
	}
	onsets, perr := clampOnsets(c.args[0].value, steps)
	if perr != nil {
		return node{}, perr
	}

	var p pattern.Pattern
	offset := 0
	switch c.name {
	case "e":
		if len(c.args) == 3 {
			offset = c.args[2].value
		}
		p = generator.Euclidean(onsets, steps, offset)
	case "b":
		p = generator.Barlow(onsets, steps)
	case "w":
		p = generator.Wolrab(onsets, steps)
	case "d":
		p = generator.Dilcue(onsets, steps)
	}
	return node{pattern: p, offset: offset}, nil
}

func (e *evaluator) stepCount(steps int) (int, *Error) {
	if steps < 1 || steps > e.maxSteps {
		return 0, rangeErrorf("step count %d outside 1..%d", steps, e.maxSteps)
	}
	return steps, nil
}

// clampOnsets rejects negative counts and clamps counts above steps
func clampOnsets(onsets, steps int) (int, *Error) {
	if onsets < 0 {
		return 0, rangeErrorf("onset count %d is negative", onsets)
	}
	return min(onsets, steps), nil
}

func (e *evaluator) polygon(c call) (node, *Error) {
	sides := c.args[0].value
	if sides < 1 || sides > e.maxSteps {
		return node{}, rangeErrorf("polygon sides %d outside 1..%d", sides, e.maxSteps)
	}
	spec := generator.PolygonSpec{Sides: sides, Offset: c.args[1].value}
	if len(c.args) == 3 {
		steps, perr := e.stepCount(c.args[2].value)
		if perr != nil {
			return node{}, perr
		}
		spec.Sides = min(sides, steps)
		spec.Steps = steps
	}
	return node{pattern: spec.Generate(), polygon: &spec, offset: spec.Offset}, nil
}

// random handles R(o,s[,seed]) and the bell-curve form R(r,s[,seed])
// Unseeded forms derive their seed from the expression so repeated parses agree
func (e *evaluator) random(c call, text string) (node, *Error) {
	steps, perr := e.stepCount(c.args[1].value)
	if perr != nil {
		return node{}, perr
	}
	seed := vmath.HashSeed(e.seed, strings.ToLower(text))
	if len(c.args) == 3 {
		seed = uint64(c.args[2].value)
	}

	if c.args[0].ident == "r" {
		return node{pattern: generator.BellRandom(steps, seed)}, nil
	}
	onsets, perr := clampOnsets(c.args[0].value, steps)
	if perr != nil {
		return node{}, perr
	}
	return node{pattern: generator.Random(onsets, steps, seed)}, nil
}
