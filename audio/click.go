package audio

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/upi-engine/config"
	"github.com/lixenwraith/upi-engine/parameter"
)

var ErrSeekRange = errors.New("seek position out of range")

// Settings controls click timing and loudness
type Settings struct {
	SampleRate     beep.SampleRate
	BPM            int
	NormalVelocity float64
	AccentVelocity float64
}

// DefaultSettings returns settings from the parameter defaults
func DefaultSettings() Settings {
	return Settings{
		SampleRate:     beep.SampleRate(parameter.AudioSampleRate),
		BPM:            parameter.DefaultBPM,
		NormalVelocity: parameter.NormalVelocity,
		AccentVelocity: parameter.AccentVelocity,
	}
}

// SettingsFrom converts the audio section of the application config
func SettingsFrom(cfg config.AudioConfig) Settings {
	return Settings{
		SampleRate:     beep.SampleRate(cfg.SampleRate),
		BPM:            cfg.BPM,
		NormalVelocity: cfg.NormalVelocity,
		AccentVelocity: cfg.AccentVelocity,
	}
}

// ClickTrack streams bars as clicks: onsets sound BaseNote, accents BaseNote+AccentSemitones
// It implements beep.StreamSeeker so it can be looped
type ClickTrack struct {
	bars    []Bar
	starts  []int // first sample of each bar
	stepLen int
	total   int
	pos     int
	rate    beep.SampleRate

	normal floatBuffer
	accent floatBuffer

	clicks  int
	accents int
}

// NewClickTrack prepares a track for bars at the given settings
func NewClickTrack(bars []Bar, s Settings) *ClickTrack {
	if s.SampleRate <= 0 {
		s.SampleRate = beep.SampleRate(parameter.AudioSampleRate)
	}
	stepLen := parameter.SamplesPerStep(s.BPM, int(s.SampleRate))
	maxClick := stepLen - s.SampleRate.N(parameter.MinClickGap)
	if maxClick < 1 {
		maxClick = stepLen
	}

	t := &ClickTrack{
		bars:    bars,
		starts:  make([]int, len(bars)),
		stepLen: stepLen,
		rate:    s.SampleRate,
		normal:  click(parameter.BaseNote, s.NormalVelocity, s.SampleRate, maxClick),
		accent:  click(parameter.BaseNote+parameter.AccentSemitones, s.AccentVelocity, s.SampleRate, maxClick),
	}
	for i, b := range bars {
		t.starts[i] = t.total
		t.total += b.Pattern.StepCount() * stepLen
		for _, step := range b.Pattern.Onsets() {
			t.clicks++
			if b.accented(step) {
				t.accents++
			}
		}
	}
	return t
}

// Stream fills samples until the last bar ends
func (t *ClickTrack) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for n < len(samples) && t.pos < t.total {
		v := t.sampleAt(t.pos)
		samples[n][0] = v
		samples[n][1] = v
		n++
		t.pos++
	}
	return n, true
}

func (t *ClickTrack) sampleAt(pos int) float64 {
	bar, step, offset := t.locate(pos)
	b := t.bars[bar]
	if !b.Pattern.At(step) {
		return 0
	}
	buf := t.normal
	if b.accented(step) {
		buf = t.accent
	}
	if offset < len(buf) {
		return buf[offset]
	}
	return 0
}

// locate maps an absolute sample to bar, step and offset within the step
func (t *ClickTrack) locate(pos int) (bar, step, offset int) {
	bar = sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > pos }) - 1
	local := pos - t.starts[bar]
	return bar, local / t.stepLen, local % t.stepLen
}

// Err always returns nil
func (t *ClickTrack) Err() error {
	return nil
}

// Len returns the total number of samples
func (t *ClickTrack) Len() int {
	return t.total
}

// Position returns the current sample position
func (t *ClickTrack) Position() int {
	return t.pos
}

// Seek moves to sample p
func (t *ClickTrack) Seek(p int) error {
	if p < 0 || p > t.total {
		return fmt.Errorf("seek %d of %d: %w", p, t.total, ErrSeekRange)
	}
	t.pos = p
	return nil
}

// Playhead returns the bar and step at the current position
func (t *ClickTrack) Playhead() (bar, step int, ok bool) {
	if t.total == 0 || t.pos >= t.total {
		return 0, 0, false
	}
	bar, step, _ = t.locate(t.pos)
	return bar, step, true
}

// StepSamples returns the length of one step in samples
func (t *ClickTrack) StepSamples() int {
	return t.stepLen
}

// Duration returns the playing time of one pass
func (t *ClickTrack) Duration() time.Duration {
	return t.rate.D(t.total)
}

// Clicks returns the number of onsets in one pass
func (t *ClickTrack) Clicks() int {
	return t.clicks
}

// Accents returns the number of accented onsets in one pass
func (t *ClickTrack) Accents() int {
	return t.accents
}
