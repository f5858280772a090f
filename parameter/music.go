package parameter

import "math"

// Tempo and Timing
const (
	DefaultBPM   = 120
	MinBPM       = 30
	MaxBPM       = 300
	StepsPerBeat = 4 // 16th notes
)

// SamplesPerStep converts tempo to step length at the given sample rate
func SamplesPerStep(bpm, sampleRate int) int {
	if bpm < MinBPM {
		bpm = MinBPM
	} else if bpm > MaxBPM {
		bpm = MaxBPM
	}
	return sampleRate * 60 / (bpm * StepsPerBeat)
}

// Note names (semitone offset within octave)
const (
	NoteC  = 0
	NoteCs = 1
	NoteD  = 2
	NoteDs = 3
	NoteE  = 4
	NoteF  = 5
	NoteFs = 6
	NoteG  = 7
	NoteGs = 8
	NoteA  = 9
	NoteAs = 10
	NoteB  = 11
)

// Octave constants (MIDI octave numbering)
const (
	OctaveLow  = 3 // C3 = 48
	OctaveMid  = 4 // C4 = 60 (Middle C)
	OctaveHigh = 5 // C5 = 72
)

// MIDINote computes MIDI note number from note + octave
func MIDINote(note, octave int) int {
	return (octave+1)*12 + note // C-1 = 0, C4 = 60
}

// NoteFrequency returns the equal-tempered frequency of a MIDI note (A4 = 440Hz)
func NoteFrequency(midi int) float64 {
	return 440.0 * math.Pow(2, float64(midi-69)/12)
}

// Onset-to-note policy for the click collaborator
// Accented onsets sound AccentSemitones above BaseNote at AccentVelocity
var BaseNote = MIDINote(NoteC, OctaveMid)

const (
	AccentSemitones = 5
	NormalVelocity  = 0.6
	AccentVelocity  = 1.0
)
