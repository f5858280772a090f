package upi

import (
	"testing"
)

// TestLexerCall verifies tokenization of a function atom with a negative argument
func TestLexerCall(t *testing.T) {
	toks := NewLexer([]byte("E(3, 8,-1)")).All()
	want := []struct {
		typ TokenType
		lit string
	}{
		{TokenIdent, "E"},
		{TokenLParen, "("},
		{TokenNumber, "3"},
		{TokenComma, ","},
		{TokenNumber, "8"},
		{TokenComma, ","},
		{TokenNumber, "-1"},
		{TokenRParen, ")"},
		{TokenEOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Literal != w.lit {
			t.Errorf("token %d: expected %s %q, got %s %q", i, w.typ, w.lit, toks[i].Type, toks[i].Literal)
		}
	}
}

// TestLexerStopsOnError verifies All ends at the first bad character
func TestLexerStopsOnError(t *testing.T) {
	toks := NewLexer([]byte("[0,#,3]")).All()
	last := toks[len(toks)-1]
	if last.Type != TokenError || last.Pos != 3 {
		t.Errorf("Expected error at 3, got %s at %d", last.Type, last.Pos)
	}
}

// TestLexerBareMinus verifies a minus without digits is not a number
func TestLexerBareMinus(t *testing.T) {
	toks := NewLexer([]byte("-x")).All()
	if toks[0].Type != TokenError {
		t.Errorf("Expected error token, got %s", toks[0].Type)
	}
}

// TestLayoutDepth verifies bracket contents are not structural
func TestLayoutDepth(t *testing.T) {
	l, err := scanLayout("E(3,8,-1)+[0,2]-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	ops := l.operators()
	if len(ops) != 2 || l.text[ops[0]] != '+' || l.text[ops[1]] != '-' {
		t.Errorf("Expected top-level + and -, got %v", ops)
	}
}

// TestLayoutMorseIsOpaque verifies dashes inside morse text are not operators
func TestLayoutMorseIsOpaque(t *testing.T) {
	for _, input := range []string{"m:.-.", ".-..-", "m:sos-.."} {
		l, err := scanLayout(input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if ops := l.operators(); len(ops) != 0 {
			t.Errorf("%q: expected no operators, got %v", input, ops)
		}
	}

	l, _ := scanLayout("m:sos+E(3,8)")
	if ops := l.operators(); len(ops) != 1 {
		t.Errorf("Expected + to end morse text, got %v", ops)
	}
}

// TestLayoutSplitScenes verifies | inside brackets is kept
func TestLayoutSplitScenes(t *testing.T) {
	l, err := scanLayout("E(3,8)|(B(2,7))|W(3,11)")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	parts := l.split('|')
	if len(parts) != 3 || parts[1] != "(B(2,7))" {
		t.Errorf("Unexpected split %q", parts)
	}
}

// TestExtractAccent verifies leading and trailing clause extraction
func TestExtractAccent(t *testing.T) {
	tests := []struct {
		input  string
		main   string
		clause string
		found  bool
		fails  bool
	}{
		{"E(3,8){101}", "E(3,8)", "101", true, false},
		{"{ E(2,5) } E(3,8)", "E(3,8)", "E(2,5)", true, false},
		{"E(3,8)", "E(3,8)", "", false, false},
		{"E(3,8){1}+E(2,8)", "", "", false, true},
		{"{1}{0}E(3,8)", "", "", false, true},
		{"E(3,8)}", "", "", false, true},
	}
	for _, tt := range tests {
		main, clause, found, err := extractAccent(tt.input)
		if tt.fails {
			if err == nil {
				t.Errorf("%q: expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.input, err)
			continue
		}
		if main != tt.main || clause != tt.clause || found != tt.found {
			t.Errorf("%q: expected (%q, %q, %v), got (%q, %q, %v)", tt.input, tt.main, tt.clause, tt.found, main, clause, found)
		}
	}
}
