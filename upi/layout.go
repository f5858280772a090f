package upi

import (
	"strings"
)

// layout marks which bytes of an expression are structural at nesting depth zero
// Bracket contents, the brackets themselves and morse text are never structural
type layout struct {
	text string
	top  []bool
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

func scanLayout(s string) (layout, *Error) {
	l := layout{text: s, top: make([]bool, len(s))}
	var stack []byte
	morse := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if morse {
			if isMorseText(c) {
				continue
			}
			morse = false
		}

		switch c {
		case '(', '[', '{':
			stack = append(stack, c)
			continue
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != closers[c] {
				return l, syntaxErrorf("unbalanced %q at %d", c, i)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		if len(stack) > 0 {
			continue
		}

		if segmentStart(s, i) {
			if i+1 < len(s) && (c == 'm' || c == 'M') && s[i+1] == ':' {
				morse = true
				i++
				continue
			}
			if c == '.' {
				morse = true
				continue
			}
		}
		l.top[i] = true
	}

	if len(stack) > 0 {
		return l, syntaxErrorf("unclosed %q", stack[len(stack)-1])
	}
	return l, nil
}

func isMorseText(c byte) bool {
	return c == '.' || c == '-' || c == ' ' || isAlpha(c)
}

// segmentStart reports whether i begins a new word
func segmentStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	p := s[i-1]
	return !isAlpha(p) && !isDigit(p) && p != ':'
}

// last returns the final structural index holding a byte from chars, or -1
func (l layout) last(chars string) int {
	for i := len(l.text) - 1; i >= 0; i-- {
		if l.top[i] && strings.IndexByte(chars, l.text[i]) >= 0 {
			return i
		}
	}
	return -1
}

// split cuts the text at every structural sep
func (l layout) split(sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(l.text); i++ {
		if l.top[i] && l.text[i] == sep {
			parts = append(parts, l.text[start:i])
			start = i + 1
		}
	}
	return append(parts, l.text[start:])
}

// operators returns structural indices of binary + - *
// A sign directly after another operator, a postfix marker or the start is not binary
func (l layout) operators() []int {
	var out []int
	for i := 0; i < len(l.text); i++ {
		c := l.text[i]
		if !l.top[i] || (c != '+' && c != '-' && c != '*') {
			continue
		}
		prev := prevNonSpace(l.text, i)
		if prev < 0 || strings.IndexByte("+-*@;:~,", l.text[prev]) >= 0 {
			continue
		}
		out = append(out, i)
	}
	return out
}

func prevNonSpace(s string, i int) int {
	for j := i - 1; j >= 0; j-- {
		if s[j] != ' ' && s[j] != '\t' {
			return j
		}
	}
	return -1
}

// extractAccent removes the single leading or trailing {accent} clause
func extractAccent(s string) (main, clause string, found bool, err *Error) {
	depth := 0
	open, close := -1, -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if depth == 0 {
				if open >= 0 {
					return s, "", false, syntaxErrorf("more than one accent clause")
				}
				open = i
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return s, "", false, syntaxErrorf("unbalanced '}' at %d", i)
			}
			if depth == 0 {
				close = i
			}
		}
	}
	if depth > 0 {
		return s, "", false, syntaxErrorf("unclosed accent clause")
	}
	if open < 0 {
		return s, "", false, nil
	}

	before := strings.TrimSpace(s[:open])
	after := strings.TrimSpace(s[close+1:])
	if before != "" && after != "" {
		return s, "", false, syntaxErrorf("accent clause must lead or trail the expression")
	}
	clause = strings.TrimSpace(s[open+1 : close])
	if clause == "" {
		return s, "", false, syntaxErrorf("empty accent clause")
	}
	return before + after, clause, true, nil
}

// isBinaryLiteral reports bare 0/1 digits with an optional b prefix
func isBinaryLiteral(s string) bool {
	if len(s) > 1 && (s[0] == 'b' || s[0] == 'B') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// isInteger reports an optionally negative run of decimal digits
func isInteger(s string, signed bool) bool {
	if signed && strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
