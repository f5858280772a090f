// Package audio previews patterns as click tracks through beep
package audio

import (
	"log"
	"math"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/upi-engine/parameter"
	"github.com/lixenwraith/upi-engine/status"
)

// Player loops one click track at a time on the speaker
// Every method is a no-op until Init succeeds
type Player struct {
	mu          sync.Mutex
	settings    Settings
	volume      float64
	mixer       *beep.Mixer
	ctrl        *beep.Ctrl
	gain        *effects.Volume
	track       *ClickTrack
	metrics     *status.Registry
	initialized bool
}

// NewPlayer creates a player at master volume (0.0-1.0); reg may be nil
func NewPlayer(s Settings, volume float64, reg *status.Registry) *Player {
	return &Player{
		settings: s,
		volume:   clampVolume(volume),
		mixer:    &beep.Mixer{},
		metrics:  reg,
	}
}

// Init opens the speaker
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	rate := p.settings.SampleRate
	if err := speaker.Init(rate, rate.N(parameter.AudioBufferDuration)); err != nil {
		return err
	}

	speaker.Play(p.mixer)
	p.initialized = true
	log.Printf("audio: speaker at %d Hz", rate)
	return nil
}

// Play replaces the current loop with bars
func (p *Player) Play(bars []Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	track := NewClickTrack(bars, p.settings)
	if track.Len() == 0 {
		p.stopLocked()
		return
	}

	ctrl, gain := p.chain(track)

	speaker.Lock()
	if p.ctrl != nil {
		p.ctrl.Paused = true
	}
	p.mixer.Clear()
	p.mixer.Add(gain)
	speaker.Unlock()

	p.ctrl = ctrl
	p.gain = gain
	p.track = track
	p.metrics.Counter(status.KeyClicksRendered).Add(int64(track.Clicks()))
	p.metrics.Counter(status.KeyAccentsRendered).Add(int64(track.Accents()))
}

// chain wraps track in an endless loop, a pause control and the master volume
func (p *Player) chain(track *ClickTrack) (*beep.Ctrl, *effects.Volume) {
	ctrl := &beep.Ctrl{Streamer: beep.Loop(-1, track), Paused: false}
	gain := &effects.Volume{Streamer: ctrl, Base: 2}
	setGain(gain, p.volume)
	return ctrl, gain
}

// Pause toggles the current loop
func (p *Player) Pause(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

// Stop silences the current loop
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if !p.initialized {
		return
	}
	speaker.Lock()
	if p.ctrl != nil {
		p.ctrl.Paused = true
	}
	p.mixer.Clear()
	speaker.Unlock()
	p.ctrl = nil
	p.gain = nil
	p.track = nil
}

// SetVolume changes master volume (0.0-1.0)
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = clampVolume(v)
	if !p.initialized || p.gain == nil {
		return
	}
	speaker.Lock()
	setGain(p.gain, p.volume)
	speaker.Unlock()
}

// Volume returns the master volume
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Playhead returns the bar and step currently sounding
func (p *Player) Playhead() (bar, step int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.track == nil {
		return 0, 0, false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.track.Playhead()
}

// Close stops playback and releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	p.stopLocked()
	speaker.Close()
	p.initialized = false
}

func clampVolume(v float64) float64 {
	return math.Max(parameter.MinVolume, math.Min(parameter.MaxVolume, v))
}

// setGain maps linear volume onto the exponential effects.Volume scale
func setGain(g *effects.Volume, v float64) {
	if v <= 0 {
		g.Silent = true
		return
	}
	g.Silent = false
	g.Volume = math.Log2(v)
}
