package upi

import (
	"github.com/lixenwraith/upi-engine/accent"
	"github.com/lixenwraith/upi-engine/generator"
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/progressive"
)

// Kind tags the Result variant
type Kind int

const (
	KindError Kind = iota
	KindSingle
	KindCombination
	KindStringed
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindCombination:
		return "combination"
	case KindStringed:
		return "stringed"
	}
	return "error"
}

// Operand is one term of a combination; Op joins it to the running result and is ignored on the first
type Operand struct {
	Source  string
	Op      pattern.Operator
	Pattern pattern.Pattern
}

// Progression selects the kind of stateful evolution behind a progressive suffix
type Progression int

const (
	ProgressionTransform Progression = iota // base>N
	ProgressionOffset                       // base+N
	ProgressionLengthen                     // base*N
)

func (p Progression) String() string {
	switch p {
	case ProgressionTransform:
		return "transform"
	case ProgressionOffset:
		return "offset"
	case ProgressionLengthen:
		return "lengthen"
	}
	return "unknown"
}

// ProgressiveInfo reports the session state after this evaluation
type ProgressiveInfo struct {
	Type    Progression
	Key     string
	Step    int
	Created bool

	// transform
	Kind          generator.Transformer
	Direction     progressive.Direction
	BaseOnsets    int
	CurrentOnsets int
	TargetOnsets  int

	// offset
	HasOffset     bool
	InitialOffset int
	OffsetStep    int
	CurrentOffset int

	// lengthen
	Grow       int
	AddedSteps int
}

// AccentInfo carries the accent clause and its alignment to the result's first cycle
type AccentInfo struct {
	Source  string
	Pattern pattern.Pattern
	Flags   []bool // one flag per onset occurrence
}

// QuantizationInfo describes a ;N or ;-N postfix applied to the outermost expression
type QuantizationInfo struct {
	OriginalSteps   int
	QuantizedSteps  int
	OriginalOnsets  int
	QuantizedOnsets int
	Clockwise       bool
}

func quantizationFrom(q generator.QuantizeInfo) *QuantizationInfo {
	return &QuantizationInfo{
		OriginalSteps:   q.OriginalSteps,
		QuantizedSteps:  q.QuantizedSteps,
		OriginalOnsets:  q.OriginalOnsets,
		QuantizedOnsets: q.QuantizedOnsets,
		Clockwise:       q.Clockwise,
	}
}

// Result is the outcome of one Parse; it holds no reference into engine state
type Result struct {
	Kind  Kind
	Input string

	// Pattern is the active pattern; for Stringed it is the first scene
	Pattern  pattern.Pattern
	Operands []Operand

	// Scenes and Parts are set for Stringed only
	Scenes []pattern.Pattern
	Parts  []Result

	Progressive  *ProgressiveInfo
	Accent       *AccentInfo
	Quantization *QuantizationInfo

	Err *Error
}

// OK reports whether the result is not an error
func (r Result) OK() bool {
	return r.Kind != KindError
}

// StepCount returns the step count of the active pattern
func (r Result) StepCount() int {
	return r.Pattern.StepCount()
}

// Onsets returns the onset flags of the active pattern
func (r Result) Onsets() []bool {
	return r.Pattern.Steps()
}

// AccentSequence returns the accent alignment over repeated cycles of the active pattern, or nil
func (r Result) AccentSequence() *accent.Sequence {
	if r.Accent == nil {
		return nil
	}
	return accent.NewSequence(r.Pattern, r.Accent.Pattern)
}

func errorResult(input string, err *Error) Result {
	err.Input = input
	return Result{Kind: KindError, Input: input, Err: err}
}
