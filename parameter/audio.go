package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100
	AudioChannels   = 2
	AudioBitDepth   = 16
	AudioPrecision  = AudioBitDepth / 8 // bytes per sample, beep.Format precision
)

// Audio Engine Timing
const (
	// AudioBufferDuration determines speaker latency
	AudioBufferDuration = 50 * time.Millisecond

	// MinClickGap keeps consecutive clicks audible at high tempo
	MinClickGap = 5 * time.Millisecond
)

// Click Sound
const (
	ClickDuration = 40 * time.Millisecond
	ClickAttack   = 1 * time.Millisecond
	ClickRelease  = 30 * time.Millisecond
)

// Master volume defaults (0.0-1.0)
const (
	DefaultMasterVolume = 0.8
	MinVolume           = 0.0
	MaxVolume           = 1.0
)
