package clock

import (
	"time"

	"github.com/faiface/beep"
)

// Tempo is a tempo in beats per minute.
type Tempo float64

const (
	MinTempo Tempo = 60
	MaxTempo Tempo = 180
)

// Clamp pins the tempo into the playable range.
func (t Tempo) Clamp() Tempo {
	switch {
	case t < MinTempo:
		return MinTempo
	case t > MaxTempo:
		return MaxTempo
	}
	return t
}

// Beat returns the duration of a single beat
func (t Tempo) Beat() time.Duration {
	return time.Duration(float64(time.Minute) / float64(t))
}

// Step returns the duration of one sixteenth note, the atomic scheduling unit
func (t Tempo) Step() time.Duration {
	return t.Beat() / 4
}

// StepSeconds is Step as seconds on the audio clock.
func (t Tempo) StepSeconds() float64 {
	return 60 / float64(t) * 0.25
}

// StepFrames returns the number of frames in a single step for a given sample rate.
func (t Tempo) StepFrames(sr beep.SampleRate) (frames int) {
	return sr.N(t.Step())
}

// Clock is a monotonic audio clock measured in seconds.
type Clock interface {
	Now() float64
}

// Scheduling constants. The poll interval is deliberately coarse: events are
// scheduled ahead of real time against the audio clock, so correctness does
// not depend on timer jitter.
const (
	PollInterval = 25 * time.Millisecond
	LookAhead    = 0.1 // seconds
)
