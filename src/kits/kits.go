// Package kits is the voice bank: a fixed table of synthesis recipes, one
// per (kit, instrument) pair. Recipes are resolved through enums so a bad
// kit name fails at selection time, never during playback.
package kits

import (
	"time"

	"github.com/faiface/beep"
	"github.com/pkg/errors"

	"tjweldon/stepbox/src/pattern"
	"tjweldon/stepbox/src/synth"
)

// Kit names a voice bank.
type Kit int

const (
	Classic Kit = iota
	Punchy
	LoFi

	numKits int = iota
)

var kitNames = [...]string{"classic", "punchy", "lofi"}

func (k Kit) String() string {
	if k < 0 || int(k) >= numKits {
		return "unknown"
	}
	return kitNames[k]
}

// KitNames lists the selectable kits.
func KitNames() []string { return kitNames[:] }

// ParseKit resolves a kit by name.
func ParseKit(name string) (Kit, error) {
	for i, n := range kitNames {
		if n == name {
			return Kit(i), nil
		}
	}
	return 0, errors.Errorf("kits: unknown kit %q", name)
}

// VoiceSpec is one recipe: an optional tonal component and an optional noise
// component fired together at the same instant.
type VoiceSpec struct {
	Tone  *synth.Sweep
	Noise *synth.NoiseBurst
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func decay(from float64) synth.Envelope {
	return synth.Envelope{From: from, To: 0, Curve: synth.Exponential}
}

// table is the full voice bank, kit enum x instrument enum. These constants
// define the audible character of each kit.
var table = [numKits][pattern.NumInstruments]VoiceSpec{
	Classic: {
		pattern.Kick: {
			Tone: &synth.Sweep{
				Wave:     synth.Sine,
				Freq:     synth.Envelope{From: 150, To: 40, Curve: synth.Exponential},
				Gain:     decay(1),
				Duration: ms(500),
			},
		},
		pattern.Snare: {
			Tone: &synth.Sweep{
				Wave:     synth.Triangle,
				Freq:     synth.Envelope{From: 185, To: 120, Curve: synth.Exponential},
				Gain:     decay(0.4),
				Duration: ms(180),
			},
			Noise: &synth.NoiseBurst{
				Filter:   synth.Highpass,
				Cutoff:   1000,
				Gain:     decay(0.6),
				Duration: ms(200),
			},
		},
		pattern.Hat: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Highpass,
				Cutoff:   7000,
				Gain:     decay(0.4),
				Duration: ms(50),
			},
		},
		pattern.Clap: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Bandpass,
				Cutoff:   1200,
				Gain:     decay(0.7),
				Duration: ms(250),
			},
		},
		pattern.Tom: {
			Tone: &synth.Sweep{
				Wave:     synth.Sine,
				Freq:     synth.Envelope{From: 130, To: 60, Curve: synth.Exponential},
				Gain:     decay(0.8),
				Duration: ms(300),
			},
		},
		pattern.Cymbal: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Highpass,
				Cutoff:   8000,
				Gain:     decay(0.35),
				Duration: ms(1200),
			},
		},
	},
	Punchy: {
		pattern.Kick: {
			Tone: &synth.Sweep{
				Wave:     synth.Sine,
				Freq:     synth.Envelope{From: 160, To: 50, Curve: synth.Exponential},
				Gain:     decay(1),
				Duration: ms(350),
			},
		},
		pattern.Snare: {
			Tone: &synth.Sweep{
				Wave:     synth.Triangle,
				Freq:     synth.Envelope{From: 200, To: 150, Curve: synth.Linear},
				Gain:     decay(0.35),
				Duration: ms(120),
			},
			Noise: &synth.NoiseBurst{
				Filter:   synth.Highpass,
				Cutoff:   1500,
				Gain:     decay(0.7),
				Duration: ms(150),
			},
		},
		pattern.Hat: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Highpass,
				Cutoff:   9000,
				Gain:     decay(0.45),
				Duration: ms(40),
			},
		},
		pattern.Clap: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Bandpass,
				Cutoff:   1500,
				Gain:     decay(0.8),
				Duration: ms(200),
			},
		},
		pattern.Tom: {
			Tone: &synth.Sweep{
				Wave:     synth.Sine,
				Freq:     synth.Envelope{From: 150, To: 70, Curve: synth.Exponential},
				Gain:     decay(0.9),
				Duration: ms(250),
			},
		},
		pattern.Cymbal: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Highpass,
				Cutoff:   6500,
				Gain:     decay(0.4),
				Duration: ms(900),
			},
		},
	},
	LoFi: {
		pattern.Kick: {
			Tone: &synth.Sweep{
				Wave:     synth.Triangle,
				Freq:     synth.Envelope{From: 120, To: 45, Curve: synth.Exponential},
				Gain:     synth.Envelope{From: 1, To: 0, Curve: synth.Linear},
				Duration: ms(400),
			},
		},
		pattern.Snare: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Lowpass,
				Cutoff:   4000,
				Gain:     decay(0.7),
				Duration: ms(220),
			},
		},
		pattern.Hat: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Highpass,
				Cutoff:   5000,
				Gain:     decay(0.3),
				Duration: ms(80),
			},
		},
		pattern.Clap: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Bandpass,
				Cutoff:   900,
				Gain:     decay(0.6),
				Duration: ms(300),
			},
		},
		pattern.Tom: {
			Tone: &synth.Sweep{
				Wave:     synth.Square,
				Freq:     synth.Envelope{From: 100, To: 55, Curve: synth.Exponential},
				Gain:     decay(0.4),
				Duration: ms(350),
			},
		},
		pattern.Cymbal: {
			Noise: &synth.NoiseBurst{
				Filter:   synth.Highpass,
				Cutoff:   5000,
				Gain:     synth.Envelope{From: 0.3, To: 0, Curve: synth.Linear},
				Duration: ms(1500),
			},
		},
	},
}

// Spec returns the recipe for a (kit, instrument) pair.
func Spec(k Kit, inst pattern.Instrument) VoiceSpec {
	return table[k][inst]
}

// Output receives voices at absolute frame positions on the audio clock.
type Output interface {
	ScheduleAt(frame int, s beep.Streamer)
}

// Bank binds the recipe table to an output. Selecting a kit swaps the table
// row; it never touches pattern data.
type Bank struct {
	kit Kit
	sr  beep.SampleRate
	out Output
}

// NewBank returns a bank playing the Classic kit.
func NewBank(sr beep.SampleRate, out Output) *Bank {
	return &Bank{kit: Classic, sr: sr, out: out}
}

// Kit returns the active kit.
func (b *Bank) Kit() Kit { return b.kit }

// Select activates a kit.
func (b *Bank) Select(k Kit) { b.kit = k }

// SelectName activates a kit by name, rejecting unknown names and leaving
// the active kit untouched on failure.
func (b *Bank) SelectName(name string) error {
	k, err := ParseKit(name)
	if err != nil {
		return err
	}
	b.kit = k
	return nil
}

// Trigger schedules one invocation of an instrument's recipe at the given
// fire time in seconds on the audio clock. Each invocation allocates fresh
// voices and retains nothing; concurrent triggers for the same fire time are
// independent.
func (b *Bank) Trigger(inst pattern.Instrument, at float64) {
	spec := table[b.kit][inst]
	frame := int(at * float64(b.sr))
	if spec.Tone != nil {
		b.out.ScheduleAt(frame, spec.Tone.Voice(b.sr))
	}
	if spec.Noise != nil {
		b.out.ScheduleAt(frame, spec.Noise.Voice(b.sr))
	}
}
