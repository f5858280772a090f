package audio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/upi-engine/parameter"
	"github.com/lixenwraith/upi-engine/status"
)

var ErrNothingToRender = errors.New("nothing to render")

// Format returns the WAV format for a sample rate
func Format(rate beep.SampleRate) beep.Format {
	return beep.Format{
		SampleRate:  rate,
		NumChannels: parameter.AudioChannels,
		Precision:   parameter.AudioPrecision,
	}
}

// RenderWAV encodes passes repetitions of bars into w
func RenderWAV(w io.WriteSeeker, bars []Bar, s Settings, passes int, reg *status.Registry) error {
	if passes < 1 {
		passes = 1
	}
	track := NewClickTrack(bars, s)
	if track.Len() == 0 {
		return ErrNothingToRender
	}

	var streamer beep.Streamer = track
	if passes > 1 {
		streamer = beep.Loop(passes, track)
	}
	if err := wav.Encode(w, streamer, Format(track.rate)); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	reg.Counter(status.KeyClicksRendered).Add(int64(track.Clicks() * passes))
	reg.Counter(status.KeyAccentsRendered).Add(int64(track.Accents() * passes))
	return nil
}

// RenderWAVFile renders into a new file at path
func RenderWAVFile(path string, bars []Bar, s Settings, passes int, reg *status.Registry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := RenderWAV(f, bars, s, passes, reg); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	log.Printf("audio: wrote %s", path)
	return nil
}
