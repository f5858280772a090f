package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/upi-engine/parameter"
)

// floatBuffer is mono float64 samples at unity gain
type floatBuffer []float64

// sine generates a sine wave with a phase accumulator
func sine(freq float64, samples int, rate beep.SampleRate) floatBuffer {
	buf := make(floatBuffer, samples)
	phase := 0.0
	phaseInc := freq / float64(rate)

	for i := range buf {
		buf[i] = math.Sin(2 * math.Pi * phase)
		phase += phaseInc
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	return buf
}

// applyEnvelope applies a linear attack/release envelope in place
func applyEnvelope(buf floatBuffer, attack, release time.Duration, rate beep.SampleRate) {
	total := len(buf)
	attackSamples := rate.N(attack)
	releaseSamples := rate.N(release)

	releaseStart := total - releaseSamples
	if releaseStart < attackSamples {
		releaseStart = attackSamples
	}

	for i := 0; i < total; i++ {
		vol := 1.0
		if i < attackSamples && attackSamples > 0 {
			vol = float64(i) / float64(attackSamples)
		} else if i >= releaseStart && releaseSamples > 0 {
			vol = float64(total-i) / float64(releaseSamples)
		}
		buf[i] *= vol
	}
}

// mixFloatBuffers adds b into a in place, extending a if needed
func mixFloatBuffers(a, b floatBuffer, bScale float64) floatBuffer {
	if len(b) > len(a) {
		extended := make(floatBuffer, len(b))
		copy(extended, a)
		a = extended
	}
	for i := range b {
		a[i] += b[i] * bScale
	}
	return a
}

// scale multiplies buf by gain in place
func (buf floatBuffer) scale(gain float64) floatBuffer {
	for i := range buf {
		buf[i] *= gain
	}
	return buf
}

// click renders one pitched click for a MIDI note, peak-limited to velocity
// At most maxSamples long so consecutive steps never overlap
func click(midi int, velocity float64, rate beep.SampleRate, maxSamples int) floatBuffer {
	samples := rate.N(parameter.ClickDuration)
	if samples > maxSamples {
		samples = maxSamples
	}
	if samples < 1 {
		return nil
	}
	freq := parameter.NoteFrequency(midi)

	// 70% fundamental + 30% octave overtone
	fund := sine(freq, samples, rate).scale(0.7)
	over := sine(freq*2, samples, rate)
	buf := mixFloatBuffers(fund, over, 0.3)
	applyEnvelope(buf, parameter.ClickAttack, parameter.ClickRelease, rate)
	return buf.scale(velocity)
}
