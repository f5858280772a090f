package audio

import (
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/upi"
)

// Bar is one cycle of a pattern with its per-step accent map
type Bar struct {
	Pattern pattern.Pattern
	Accents []bool // nil for no accents
}

// accented reports whether step carries an accent
func (b Bar) accented(step int) bool {
	return step >= 0 && step < len(b.Accents) && b.Accents[step]
}

// BarsFromResult expands a parse result into playable bars
// Accented results unroll every cycle until the alignment repeats; stringed results concatenate their scenes
func BarsFromResult(res upi.Result) []Bar {
	switch res.Kind {
	case upi.KindError:
		return nil
	case upi.KindStringed:
		var bars []Bar
		for _, part := range res.Parts {
			bars = append(bars, BarsFromResult(part)...)
		}
		return bars
	}

	seq := res.AccentSequence()
	if seq == nil {
		return []Bar{{Pattern: res.Pattern}}
	}
	bars := make([]Bar, seq.CycleLength())
	for c := range bars {
		bars[c] = Bar{Pattern: res.Pattern, Accents: seq.Map(c)}
	}
	return bars
}
