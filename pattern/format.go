package pattern

import (
	"strconv"
	"strings"
)

const digitChars = "0123456789ABCDEF"

// Hex renders 4-step groups as digits, first step is the least significant bit of each digit
// A trailing partial group is zero-padded: 1000 -> 0x1, 0001 -> 0x8
func (p Pattern) Hex() string {
	return "0x" + p.groupDigits(4)
}

// Octal renders 3-step groups the same way as Hex
func (p Pattern) Octal() string {
	return "o" + p.groupDigits(3)
}

// Decimal renders the value where step i carries bit i
// Patterns longer than 63 steps return the binary form instead
func (p Pattern) Decimal() string {
	if len(p.steps) > 63 {
		return p.String()
	}
	var v uint64
	for i, s := range p.steps {
		if s {
			v |= 1 << uint(i)
		}
	}
	return strconv.FormatUint(v, 10)
}

func (p Pattern) groupDigits(width int) string {
	if len(p.steps) == 0 {
		return "0"
	}
	var b strings.Builder
	for start := 0; start < len(p.steps); start += width {
		d := 0
		for bit := 0; bit < width; bit++ {
			if p.At(start + bit) {
				d |= 1 << bit
			}
		}
		b.WriteByte(digitChars[d])
	}
	return b.String()
}
