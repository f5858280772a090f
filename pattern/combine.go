package pattern

import (
	"github.com/lixenwraith/upi-engine/vmath"
)

// Operator is a binary set operation over onset positions
type Operator int

const (
	OpUnion        Operator = iota // +
	OpDifference                   // -
	OpIntersection                 // *
)

func (op Operator) String() string {
	switch op {
	case OpUnion:
		return "+"
	case OpDifference:
		return "-"
	case OpIntersection:
		return "*"
	}
	return "?"
}

// OperatorFromByte maps an operator symbol, ok is false for unknown symbols
func OperatorFromByte(c byte) (Operator, bool) {
	switch c {
	case '+':
		return OpUnion, true
	case '-':
		return OpDifference, true
	case '*':
		return OpIntersection, true
	}
	return 0, false
}

// Combine applies op after expanding both operands to the LCM of their lengths
func Combine(op Operator, a, b Pattern) Pattern {
	steps := vmath.LCM(a.StepCount(), b.StepCount())
	if steps == 0 {
		if a.StepCount() == 0 {
			return b
		}
		return a
	}
	ea := a.Expand(steps)
	eb := b.Expand(steps)

	out := make([]bool, steps)
	for i := range out {
		x, y := ea.steps[i], eb.steps[i]
		switch op {
		case OpUnion:
			out[i] = x || y
		case OpDifference:
			out[i] = x && !y
		case OpIntersection:
			out[i] = x && y
		}
	}
	return wrap(out)
}

// Union is Combine(OpUnion, a, b)
func Union(a, b Pattern) Pattern { return Combine(OpUnion, a, b) }

// Difference is Combine(OpDifference, a, b)
func Difference(a, b Pattern) Pattern { return Combine(OpDifference, a, b) }

// Intersection is Combine(OpIntersection, a, b)
func Intersection(a, b Pattern) Pattern { return Combine(OpIntersection, a, b) }

// Reduce folds operands left to right; ops[i] joins the running result with operands[i+1]
func Reduce(operands []Pattern, ops []Operator) Pattern {
	if len(operands) == 0 {
		return Empty(0)
	}
	acc := operands[0]
	for i, op := range ops {
		if i+1 >= len(operands) {
			break
		}
		acc = Combine(op, acc, operands[i+1])
	}
	return acc
}
