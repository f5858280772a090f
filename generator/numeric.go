package generator

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/lixenwraith/upi-engine/pattern"
)

var (
	ErrInvalidDigit = errors.New("invalid digit")
	ErrEmptyInput   = errors.New("empty input")
	ErrValueRange   = errors.New("value out of range")
)

// Base selects a numeric notation
type Base int

const (
	BaseBinary Base = iota
	BaseOctal
	BaseDecimal
	BaseHex
)

func (b Base) String() string {
	switch b {
	case BaseBinary:
		return "binary"
	case BaseOctal:
		return "octal"
	case BaseDecimal:
		return "decimal"
	case BaseHex:
		return "hex"
	}
	return "unknown"
}

// minNumericSteps is the default length floor for numeric notations
const minNumericSteps = 8

// Binary decodes '1'/'0' left to right; steps > 0 pads with rests or truncates
func Binary(digits string, steps int) (pattern.Pattern, error) {
	if digits == "" {
		return pattern.Pattern{}, fmt.Errorf("binary: %w", ErrEmptyInput)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] != '0' && digits[i] != '1' {
			return pattern.Pattern{}, fmt.Errorf("binary %q at %d: %w", digits, i, ErrInvalidDigit)
		}
	}
	p := pattern.FromString(digits)
	if steps > 0 {
		p = p.Resize(steps)
	}
	return p, nil
}

// Array sets the listed positions; steps <= 0 defaults to max(highest position + 1, 8)
func Array(positions []int, steps int) (pattern.Pattern, error) {
	highest := -1
	for _, pos := range positions {
		if pos < 0 {
			return pattern.Pattern{}, fmt.Errorf("array position %d: %w", pos, ErrValueRange)
		}
		highest = max(highest, pos)
	}
	if steps <= 0 {
		steps = max(highest+1, minNumericSteps)
	}
	if highest >= steps {
		return pattern.Pattern{}, fmt.Errorf("array position %d exceeds %d steps: %w", highest, steps, ErrValueRange)
	}
	return pattern.FromPositions(steps, positions), nil
}

// Numeric decodes hex, octal or decimal digits into a pattern
// Hex and octal digits map left to right, least significant bit first within each digit
// Decimal sets step i from bit i of the value
// steps <= 0 defaults to max(ceil(log2(v+1)), 8)
func Numeric(base Base, digits string, steps int) (pattern.Pattern, error) {
	if base == BaseBinary {
		return Binary(digits, steps)
	}
	if digits == "" {
		return pattern.Pattern{}, fmt.Errorf("%s: %w", base, ErrEmptyInput)
	}

	value, err := numericValue(base, digits)
	if err != nil {
		return pattern.Pattern{}, err
	}

	if steps <= 0 {
		need := 1
		if value > 0 {
			need = bits.Len64(value)
		}
		steps = max(need, minNumericSteps)
	}

	p := pattern.Empty(steps)
	out := p.Steps()
	for i := 0; i < steps && i < 64; i++ {
		out[i] = value&(1<<uint(i)) != 0
	}
	return pattern.New(out), nil
}

// numericValue folds digits into the value whose bit i is step i
func numericValue(base Base, digits string) (uint64, error) {
	switch base {
	case BaseDecimal:
		var v uint64
		for i := 0; i < len(digits); i++ {
			c := digits[i]
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("decimal %q at %d: %w", digits, i, ErrInvalidDigit)
			}
			if v > (math.MaxUint64-uint64(c-'0'))/10 {
				return 0, fmt.Errorf("decimal %q: %w", digits, ErrValueRange)
			}
			v = v*10 + uint64(c-'0')
		}
		return v, nil

	case BaseHex, BaseOctal:
		width := uint(4)
		if base == BaseOctal {
			width = 3
		}
		if uint(len(digits))*width > 64 {
			return 0, fmt.Errorf("%s %q: %w", base, digits, ErrValueRange)
		}
		var v uint64
		for i := 0; i < len(digits); i++ {
			d, ok := digitValue(digits[i], base)
			if !ok {
				return 0, fmt.Errorf("%s %q at %d: %w", base, digits, i, ErrInvalidDigit)
			}
			v |= d << (uint(i) * width)
		}
		return v, nil
	}
	return 0, fmt.Errorf("base %d: %w", base, ErrInvalidDigit)
}

func digitValue(c byte, base Base) (uint64, bool) {
	switch {
	case c >= '0' && c <= '7':
		return uint64(c - '0'), true
	case base == BaseHex && (c == '8' || c == '9'):
		return uint64(c - '0'), true
	case base == BaseHex:
		idx := strings.IndexByte("abcdef", c|0x20)
		if idx < 0 {
			return 0, false
		}
		return uint64(10 + idx), true
	}
	return 0, false
}
