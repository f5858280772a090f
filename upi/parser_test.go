package upi

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/lixenwraith/upi-engine/generator"
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/progressive"
	"github.com/lixenwraith/upi-engine/status"
)

func newTestParser() *Parser {
	return NewParser(progressive.New(16))
}

// TestParseSingle verifies every pattern family decodes to the expected steps
func TestParseSingle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"E(3,8)", "10010010"},
		{"e(3,8)", "10010010"},
		{" E(5,8) ", "10110110"},
		{"E(3,4)", "1110"},
		{"E(3,8,1)", "01001001"},
		{"E(9,8)", "11111111"},
		{"B(3,8)", "10001001"},
		{"W(3,8)", "10010100"},
		{"D(3,8)", "01001001"},
		{"b(3,8)", "10001001"},
		{"P(3,0,12)", "100010001000"},
		{"P(4,1,8)", "01010101"},
		{"0x94:8", "10010010"},
		{"0X94", "10010010"},
		{"d146", "01001001"},
		{"146", "01001001"},
		{"10010010", "10010010"},
		{"b1001", "1001"},
		{"1001:8", "10010000"},
		{"[0,3,6]:8", "10010010"},
		{"[0, 3, 6]", "10010010"},
		{"tresillo", "10010010"},
		{"cinquillo", "10110110"},
		{"tri", "111"},
		{"m:sos", "111101010111"},
		{"M:AL", "11011011"},
		{"~E(3,8)", "01101101"},
		{"inv E(3,8)", "01101101"},
		{"rev E(3,8)", "01001001"},
		{"comp E(3,8)", "01101101"},
		{"E(3,8)@1", "01001001"},
		{"E(3,8)@-1", "00100101"},
		{"(E(3,8))", "10010010"},
	}
	p := newTestParser()
	for _, tt := range tests {
		res := p.Parse(tt.input)
		if res.Kind != KindSingle {
			t.Errorf("%q: expected single, got %s (%v)", tt.input, res.Kind, res.Err)
			continue
		}
		if res.Pattern.String() != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.want, res.Pattern)
		}
	}
}

// TestParseCombination verifies left-associative set operations with LCM expansion
func TestParseCombination(t *testing.T) {
	tests := []struct {
		input    string
		want     string
		operands int
	}{
		{"E(3,8)+E(2,8)", "10011010", 2},
		{"E(3,8)-10000000", "00010010", 2},
		{"E(3,8)*E(2,8)", "10000000", 2},
		{"1010+1", "1111", 2},
		{"100+1000", "100110101100", 2},
		{"E(3,8)+E(2,8)-10000000", "00011010", 3},
		{"tri+pent", "100101100110100", 2},
		{"P(3,0)+P(5,0)", "100101100110100", 2},
	}
	p := newTestParser()
	for _, tt := range tests {
		res := p.Parse(tt.input)
		if res.Kind != KindCombination {
			t.Errorf("%q: expected combination, got %s (%v)", tt.input, res.Kind, res.Err)
			continue
		}
		if res.Pattern.String() != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.want, res.Pattern)
		}
		if len(res.Operands) != tt.operands {
			t.Errorf("%q: expected %d operands, got %d", tt.input, tt.operands, len(res.Operands))
		}
	}
}

// TestCombinationOperators verifies operand operators are recorded in order
func TestCombinationOperators(t *testing.T) {
	res := newTestParser().Parse("E(3,8) + E(2,8) * 0xF0")
	if res.Kind != KindCombination {
		t.Fatalf("Expected combination, got %s", res.Kind)
	}
	if res.Operands[1].Op != pattern.OpUnion || res.Operands[2].Op != pattern.OpIntersection {
		t.Errorf("Unexpected operators: %v %v", res.Operands[1].Op, res.Operands[2].Op)
	}
	if res.Operands[0].Source != "E(3,8)" {
		t.Errorf("Expected first source E(3,8), got %q", res.Operands[0].Source)
	}
	if res.Pattern.String() != "10010000" {
		t.Errorf("Expected 10010000, got %s", res.Pattern)
	}
}

// TestQuantization verifies ;N and ;-N with metadata
func TestQuantization(t *testing.T) {
	p := newTestParser()

	res := p.Parse("E(3,8);12")
	if res.Pattern.String() != "100001000100" {
		t.Errorf("Expected 100001000100, got %s", res.Pattern)
	}
	q := res.Quantization
	if q == nil {
		t.Fatal("Expected quantization metadata")
	}
	if q.OriginalSteps != 8 || q.QuantizedSteps != 12 || q.OriginalOnsets != 3 || q.QuantizedOnsets != 3 || !q.Clockwise {
		t.Errorf("Unexpected metadata: %+v", *q)
	}

	res = p.Parse("E(3,8);-12")
	if res.Pattern.String() != "100100001000" {
		t.Errorf("Expected 100100001000, got %s", res.Pattern)
	}
	if res.Quantization == nil || res.Quantization.Clockwise {
		t.Error("Expected counterclockwise metadata")
	}

	for _, input := range []string{"E(3,8);0", "E(3,8);129", "E(3,8);-0"} {
		if res := p.Parse(input); !errors.Is(res.Err, ErrRange) {
			t.Errorf("%q: expected range error, got %v", input, res.Err)
		}
	}
}

// TestStringedScenes verifies top-level | yields one pattern per scene
func TestStringedScenes(t *testing.T) {
	res := newTestParser().Parse("B(2,7)|W(3,11)")
	if res.Kind != KindStringed {
		t.Fatalf("Expected stringed, got %s (%v)", res.Kind, res.Err)
	}
	if len(res.Scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d", len(res.Scenes))
	}
	if res.Scenes[0].StepCount() != 7 || res.Scenes[1].StepCount() != 11 {
		t.Errorf("Expected 7 and 11 steps, got %d and %d", res.Scenes[0].StepCount(), res.Scenes[1].StepCount())
	}
	if res.Scenes[0].String() != "1000001" || res.Scenes[1].String() != "10100000010" {
		t.Errorf("Unexpected scenes: %s %s", res.Scenes[0], res.Scenes[1])
	}
	if !res.Pattern.Equal(res.Scenes[0]) {
		t.Error("Expected active pattern to be the first scene")
	}
	if res.Parts[1].Input != "W(3,11)" {
		t.Errorf("Expected scene source W(3,11), got %q", res.Parts[1].Input)
	}
}

// TestAccentClause verifies leading and trailing accents align by occurrence
func TestAccentClause(t *testing.T) {
	p := newTestParser()
	for _, input := range []string{"E(5,8){100}", "{100}E(5,8)", "{100} E(5,8)"} {
		res := p.Parse(input)
		if res.Kind != KindSingle {
			t.Fatalf("%q: expected single, got %s (%v)", input, res.Kind, res.Err)
		}
		if res.Accent == nil {
			t.Fatalf("%q: expected accent metadata", input)
		}
		want := []bool{true, false, false, true, false}
		for i, v := range want {
			if res.Accent.Flags[i] != v {
				t.Errorf("%q occurrence %d: expected %v, got %v", input, i, v, res.Accent.Flags[i])
			}
		}
		if res.Pattern.String() != "10110110" {
			t.Errorf("%q: expected accent removed from pattern, got %s", input, res.Pattern)
		}
	}

	res := p.Parse("E(3,8){E(2,5)}")
	if res.Accent == nil || res.Accent.Pattern.String() != "10100" {
		t.Errorf("Expected accent pattern E(2,5), got %+v", res.Accent)
	}
	seq := res.AccentSequence()
	if seq == nil || seq.CycleLength() != 5 {
		t.Errorf("Expected accent cycle length 5")
	}
}

// TestAccentErrors verifies accent clause failures
func TestAccentErrors(t *testing.T) {
	p := newTestParser()
	tests := []struct {
		input string
		want  error
	}{
		{"{E(1,4)>3}E(3,8)", ErrState},
		{"{1}E(3,8){1}", ErrSyntax},
		{"E(3,{1}8)", ErrSyntax},
		{"E(3,8){", ErrSyntax},
		{"{}E(3,8)", ErrSyntax},
		{"{101}", ErrSyntax},
		{"{1|0}E(3,8)", ErrSyntax},
	}
	for _, tt := range tests {
		res := p.Parse(tt.input)
		if res.Kind != KindError || !errors.Is(res.Err, tt.want) {
			t.Errorf("%q: expected %v, got %s %v", tt.input, tt.want, res.Kind, res.Err)
		}
	}
	if p.Engine().Len() != 0 {
		t.Errorf("Expected no sessions from accent errors, got %d", p.Engine().Len())
	}
}

// TestProgressiveTransform verifies the suffix drives one session step per parse
func TestProgressiveTransform(t *testing.T) {
	p := newTestParser()

	res := p.Parse("E(1,8)>8")
	if res.Progressive == nil || !res.Progressive.Created {
		t.Fatalf("Expected created progressive session, got %+v", res.Progressive)
	}
	if res.Pattern.String() != "10000000" || res.Progressive.Step != 0 {
		t.Errorf("Expected base on first parse, got %s", res.Pattern)
	}
	if res.Progressive.Key != "10000000b8" || res.Progressive.Kind != generator.TransformBarlow {
		t.Errorf("Unexpected key %q kind %s", res.Progressive.Key, res.Progressive.Kind)
	}

	res = p.Parse("E(1,8)>8")
	if res.Pattern.String() != "10000001" || res.Progressive.CurrentOnsets != 2 {
		t.Errorf("Expected 10000001, got %s", res.Pattern)
	}

	// Same base via a different notation shares the lineage
	res = p.Parse("10000000b>8")
	if res.Progressive.Step != 2 || res.Pattern.String() != "10001001" {
		t.Errorf("Expected shared lineage at step 2, got %d %s", res.Progressive.Step, res.Pattern)
	}

	res = p.Parse("E(1,8)w>8")
	if res.Progressive.Kind != generator.TransformWolrab || !res.Progressive.Created {
		t.Errorf("Expected new Wolrab lineage, got %+v", res.Progressive)
	}
	res = p.Parse("E(1,8)W>8")
	if res.Pattern.String() != "10000100" {
		t.Errorf("Expected Wolrab to add the weakest step, got %s", res.Pattern)
	}
}

// TestProgressiveLetterNeedsBoundary verifies a letter glued to a word is not a transformer
func TestProgressiveLetterNeedsBoundary(t *testing.T) {
	p := newTestParser()
	res := p.Parse("m:sob>5")
	if res.Kind == KindError {
		t.Fatalf("Unexpected error: %v", res.Err)
	}
	if res.Progressive.Kind != generator.TransformBarlow {
		t.Errorf("Expected default Barlow, got %s", res.Progressive.Kind)
	}
	if res.Pattern.StepCount() != 14 {
		t.Errorf("Expected morse for sob with 14 steps, got %d", res.Pattern.StepCount())
	}
}

// TestProgressiveMorseLetter verifies a trailing morse letter stays part of the morse text
func TestProgressiveMorseLetter(t *testing.T) {
	p := newTestParser()
	res := p.Parse("M:t e>3")
	if res.Kind == KindError {
		t.Fatalf("Unexpected error: %v", res.Err)
	}
	if res.Progressive.Kind != generator.TransformBarlow {
		t.Errorf("Expected default Barlow, got %s", res.Progressive.Kind)
	}
	if res.Pattern.String() != "1001" {
		t.Errorf("Expected morse for 't e', got %s", res.Pattern)
	}

	// "e" is a single dot, too short for the target
	if res := p.Parse("M:e>3"); !errors.Is(res.Err, ErrState) {
		t.Errorf("Expected state error for one-step morse base, got %v", res.Err)
	}
}

// TestProgressiveStateErrors verifies incompatible targets never create sessions
func TestProgressiveStateErrors(t *testing.T) {
	p := newTestParser()
	for _, input := range []string{"1010>5", "E(3,8)>9", "tri>4"} {
		res := p.Parse(input)
		if !errors.Is(res.Err, ErrState) {
			t.Errorf("%q: expected state error, got %v", input, res.Err)
		}
	}
	if res := p.Parse("E(3,8)>x"); !errors.Is(res.Err, ErrSyntax) {
		t.Errorf("Expected syntax error for non-numeric target, got %v", res.Err)
	}
	if p.Engine().Len() != 0 {
		t.Errorf("Expected no sessions, got %d", p.Engine().Len())
	}
}

// TestFailedParseLeavesSessions verifies all-or-nothing evaluation
func TestFailedParseLeavesSessions(t *testing.T) {
	p := newTestParser()
	p.Parse("E(1,8)>8")
	p.Parse("E(1,8)>8")
	key := progressive.Key{Base: "10000000", Kind: generator.TransformBarlow, Target: 8}

	for _, input := range []string{"E(3,", "E(1,8)>8|E(3,", "E(1,8)>8|E(3,8)>9", "E(1,8)>8+E(2,"} {
		res := p.Parse(input)
		if res.Kind != KindError {
			t.Errorf("%q: expected error, got %s", input, res.Kind)
		}
		snap, ok := p.Engine().Peek(key)
		if !ok || snap.Step != 1 {
			t.Errorf("%q: expected session untouched at step 1, got %d", input, snap.Step)
		}
	}
}

// TestProgressiveOffset verifies +N rotation per parse
func TestProgressiveOffset(t *testing.T) {
	p := newTestParser()
	want := []string{"10010010", "01001001", "10100100"}
	for i, w := range want {
		res := p.Parse("E(3,8)+1")
		if res.Kind != KindSingle {
			t.Fatalf("Expected single, got %s (%v)", res.Kind, res.Err)
		}
		if res.Pattern.String() != w {
			t.Errorf("parse %d: expected %s, got %s", i, w, res.Pattern)
		}
		pi := res.Progressive
		if pi == nil || !pi.HasOffset || pi.CurrentOffset != i || pi.OffsetStep != 1 {
			t.Errorf("parse %d: unexpected offset info %+v", i, pi)
		}
	}

	p.Parse("E(3,8)+-1")
	res := p.Parse("E(3,8)+-1")
	if res.Pattern.String() != "00100101" {
		t.Errorf("Expected negative offset rotation, got %s", res.Pattern)
	}
}

// TestSharedSessionAdvancesOnce verifies scenes sharing a session advance it once per parse
func TestSharedSessionAdvancesOnce(t *testing.T) {
	tests := []string{
		"E(1,4)>4|E(1,4)>4",
		"E(1,8)>8|B(1,8)>8",
		"E(3,8)+1|E(3,8)+1",
	}
	for _, input := range tests {
		p, ref := newTestParser(), newTestParser()
		single, _, _ := strings.Cut(input, "|")
		for i := 0; i < 4; i++ {
			res := p.Parse(input)
			if res.Kind != KindStringed {
				t.Fatalf("%s: expected stringed, got %s (%v)", input, res.Kind, res.Err)
			}
			want := ref.Parse(single)
			for j, scene := range res.Scenes {
				if !scene.Equal(want.Pattern) {
					t.Errorf("%s parse %d scene %d: expected %s, got %s", input, i, j, want.Pattern, scene)
				}
			}
			if res.Parts[1].Progressive.Step != want.Progressive.Step {
				t.Errorf("%s parse %d: expected step %d, got %d", input, i, want.Progressive.Step, res.Parts[1].Progressive.Step)
			}
		}
		if p.Engine().Len() != 1 {
			t.Errorf("%s: expected one shared session, got %d", input, p.Engine().Len())
		}
	}
}

// TestProgressiveOffsetInitial verifies the E/P offset argument is reported as the initial offset
func TestProgressiveOffsetInitial(t *testing.T) {
	p := newTestParser()
	tests := []struct {
		input string
		want  int
	}{
		{"E(3,8,2)+1", 2},
		{"P(4,1)+1", 1},
		{"E(3,8)+1", 0},
	}
	for _, tt := range tests {
		res := p.Parse(tt.input)
		pi := res.Progressive
		if pi == nil || pi.InitialOffset != tt.want {
			t.Errorf("%s: expected initial offset %d, got %+v", tt.input, tt.want, pi)
		}
	}
}

// TestProgressiveLengthen verifies *N growth per parse
func TestProgressiveLengthen(t *testing.T) {
	p := newTestParser()
	res := p.Parse("E(3,8)*2")
	if res.Pattern.StepCount() != 8 {
		t.Errorf("Expected base length on first parse, got %d", res.Pattern.StepCount())
	}
	res = p.Parse("E(3,8)*2")
	if res.Pattern.StepCount() != 10 || res.Progressive.AddedSteps != 2 {
		t.Errorf("Expected 10 steps, got %d", res.Pattern.StepCount())
	}
	if res := p.Parse("E(3,8)*0"); !errors.Is(res.Err, ErrRange) {
		t.Errorf("Expected range error for zero growth, got %v", res.Err)
	}
}

// TestResetThroughParser verifies single and bulk resets
func TestResetThroughParser(t *testing.T) {
	p := newTestParser()
	p.Parse("E(1,8)>8")
	p.Parse("E(1,8)>8")
	p.Parse("E(3,8)+1")

	n, err := p.Reset("E(1,8)>8")
	if err != nil || n != 1 {
		t.Errorf("Expected one session reset, got %d %v", n, err)
	}
	if res := p.Parse("E(1,8)>8"); !res.Progressive.Created {
		t.Error("Expected session recreated after reset")
	}
	if _, err := p.Reset("E(3,"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Expected syntax error from reset, got %v", err)
	}
	if n := p.ResetAll(); n != 2 {
		t.Errorf("Expected 2 sessions reset, got %d", n)
	}
}

// TestParseErrors verifies malformed input becomes error data
func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", ErrSyntax},
		{"   ", ErrSyntax},
		{"E(3,", ErrSyntax},
		{"E(3,8", ErrSyntax},
		{"E3,8)", ErrSyntax},
		{"X(3,8)", ErrSyntax},
		{"E(3,8,1,2)", ErrSyntax},
		{"E(a,8)", ErrSyntax},
		{"E(3,0)", ErrRange},
		{"E(-1,8)", ErrRange},
		{"E(3,200)", ErrRange},
		{"P(0,0)", ErrRange},
		{"[1,-2]", ErrRange},
		{"[9]:8", ErrRange},
		{"0x", ErrSyntax},
		{"0xZZ", ErrSyntax},
		{"m:", ErrSyntax},
		{"m:123", ErrSyntax},
		{"E(3,8)@x", ErrSyntax},
		{"@3", ErrSyntax},
		{"E(3,8)+", ErrSyntax},
		{"+", ErrSyntax},
		{"E(3,8)|", ErrSyntax},
		{"|", ErrSyntax},
		{"(((", ErrSyntax},
		{")", ErrSyntax},
		{"(]", ErrSyntax},
		{"[1,2", ErrSyntax},
		{">3", ErrSyntax},
		{"E(3,8)>", ErrSyntax},
		{"hello", ErrSyntax},
		{"E(7,127)+E(5,128)", ErrRange},
	}
	p := newTestParser()
	for _, tt := range tests {
		res := p.Parse(tt.input)
		if res.Kind != KindError {
			t.Errorf("%q: expected error, got %s %s", tt.input, res.Kind, res.Pattern)
			continue
		}
		if !errors.Is(res.Err, tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, res.Err)
		}
		if res.Err.Input != tt.input {
			t.Errorf("%q: expected error input recorded, got %q", tt.input, res.Err.Input)
		}
	}
}

// TestRandomDeterminism verifies unseeded random forms repeat per expression
func TestRandomDeterminism(t *testing.T) {
	p := newTestParser()
	a := p.Parse("R(3,8)")
	b := p.Parse("R(3,8)")
	if !a.Pattern.Equal(b.Pattern) || a.Pattern.OnsetCount() != 3 {
		t.Errorf("Expected repeatable R(3,8), got %s and %s", a.Pattern, b.Pattern)
	}

	seeded := p.Parse("R(3,8,42)")
	if !seeded.Pattern.Equal(generator.Random(3, 8, 42)) {
		t.Errorf("Expected explicit seed honoured, got %s", seeded.Pattern)
	}

	bell := p.Parse("R(r,16)")
	if bell.Kind != KindSingle || bell.Pattern.OnsetCount() < 1 || bell.Pattern.OnsetCount() > 15 {
		t.Errorf("Expected bell random within 1..15 onsets, got %s", bell.Pattern)
	}

	other := NewParser(progressive.New(1), WithSeed(99)).Parse("R(3,8)")
	if other.Pattern.OnsetCount() != 3 {
		t.Errorf("Expected 3 onsets with custom seed, got %d", other.Pattern.OnsetCount())
	}
}

// TestMaxStepsOption verifies a lowered step bound
func TestMaxStepsOption(t *testing.T) {
	p := NewParser(nil, WithMaxSteps(16))
	if res := p.Parse("E(3,17)"); !errors.Is(res.Err, ErrRange) {
		t.Errorf("Expected range error above 16 steps, got %v", res.Err)
	}
	if res := p.Parse("E(3,16)"); res.Kind != KindSingle {
		t.Errorf("Expected 16 steps accepted, got %v", res.Err)
	}
}

// TestMetrics verifies parse counters and labels
func TestMetrics(t *testing.T) {
	reg := status.NewRegistry()
	p := NewParser(progressive.New(4), WithMetrics(reg))
	p.Parse("E(3,8)")
	p.Parse("E(3,")

	if got := reg.Counter(status.KeyParses).Load(); got != 2 {
		t.Errorf("Expected 2 parses, got %d", got)
	}
	if got := reg.Counter(status.KeyParseErrors).Load(); got != 1 {
		t.Errorf("Expected 1 error, got %d", got)
	}
	if got := reg.Label(status.KeyLastExpression).Load(); got != "E(3," {
		t.Errorf("Expected last expression E(3,, got %q", got)
	}
	if got := reg.Gauge(status.KeyLastDensity).Get(); got != 3.0/8 {
		t.Errorf("Expected density 0.375, got %f", got)
	}
}

// TestConcurrentParse verifies parallel parses on one lineage lose no steps
func TestConcurrentParse(t *testing.T) {
	p := newTestParser()
	p.Parse("E(1,16)>16")

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if res := p.Parse("E(1,16)>16"); res.Kind == KindError {
					t.Errorf("Unexpected error: %v", res.Err)
					return
				}
			}
		}()
	}
	wg.Wait()

	snap, ok := p.Engine().Peek(progressive.Key{Base: "1000000000000000", Kind: generator.TransformBarlow, Target: 16})
	if !ok || snap.Step != 100 {
		t.Errorf("Expected 100 steps, got %d", snap.Step)
	}
}

// TestValidateDoesNotAdvance verifies Validate is pure
func TestValidateDoesNotAdvance(t *testing.T) {
	p := newTestParser()
	if err := p.Validate("E(1,8)>8"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Engine().Len() != 0 {
		t.Error("Expected Validate to leave no sessions")
	}
	if err := p.Validate("E(3,"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Expected syntax error, got %v", err)
	}
}

// TestShorthands verifies the name table
func TestShorthands(t *testing.T) {
	names := Shorthands()
	if len(names) != 7 || names[0] != "cinquillo" {
		t.Errorf("Unexpected shorthand list %v", names)
	}
	if expr, ok := Expand("Tresillo"); !ok || expr != "E(3,8)" {
		t.Errorf("Expected tresillo to expand to E(3,8), got %q", expr)
	}
}

// TestDescribeBalance verifies summaries carry the balance rating
func TestDescribeBalance(t *testing.T) {
	p := newTestParser()
	tests := []struct {
		input string
		want  string
	}{
		{"E(3,8)", "single: 10010010 (3/8) balance good"},
		{"P(3,0,6)", "single: 101010 (3/6) balance perfect"},
		{"1000", "single: 1000 (1/4) balance poor"},
	}
	for _, tt := range tests {
		if got := Describe(p.Parse(tt.input)); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.want, got)
		}
	}
}
