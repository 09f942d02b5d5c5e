// Package synth renders single-shot percussion voices as finite
// beep.Streamers. A voice is built from value types, holds no shared state,
// and drains itself after its configured duration.
package synth

import (
	"math"
	"math/rand"
	"time"

	"github.com/faiface/beep"
)

// Curve selects how a parameter moves between its endpoints.
type Curve int

const (
	Linear Curve = iota
	Exponential
)

// expFloor keeps exponential ramps off zero, the same way audio-rate
// parameter ramps bottom out rather than reaching silence exactly.
const expFloor = 1e-4

// Envelope interpolates a parameter from From to To over the life of a voice.
type Envelope struct {
	From, To float64
	Curve    Curve
}

// At returns the envelope value at normalised time t in [0,1].
func (e Envelope) At(t float64) float64 {
	switch {
	case t <= 0:
		return e.From
	case t >= 1:
		return e.To
	}
	if e.Curve == Exponential {
		from := math.Max(math.Abs(e.From), expFloor)
		to := math.Max(math.Abs(e.To), expFloor)
		return from * math.Pow(to/from, t)
	}
	return e.From + (e.To-e.From)*t
}

// Waveform is the oscillator shape of a tonal voice.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
)

func (w Waveform) sample(phase float64) float64 {
	switch w {
	case Triangle:
		return 2 / math.Pi * math.Asin(math.Sin(phase))
	case Square:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}

// Sweep is a tonal voice: an oscillator whose frequency and gain each follow
// an envelope for Duration.
type Sweep struct {
	Wave     Waveform
	Freq     Envelope // Hz
	Gain     Envelope
	Duration time.Duration
}

// Voice allocates a fresh streamer for one invocation of the sweep.
func (s Sweep) Voice(sr beep.SampleRate) beep.Streamer {
	return &sweepVoice{spec: s, n: sr.N(s.Duration), sr: float64(sr)}
}

type sweepVoice struct {
	spec  Sweep
	pos   int
	n     int
	phase float64
	sr    float64
}

func (v *sweepVoice) Stream(samples [][2]float64) (int, bool) {
	if v.pos >= v.n {
		return 0, false
	}
	n := len(samples)
	if rem := v.n - v.pos; rem < n {
		n = rem
	}
	for i := 0; i < n; i++ {
		t := float64(v.pos) / float64(v.n)
		// phase accumulation keeps the sweep continuous
		v.phase += 2 * math.Pi * v.spec.Freq.At(t) / v.sr
		s := v.spec.Wave.sample(v.phase) * v.spec.Gain.At(t)
		samples[i][0] = s
		samples[i][1] = s
		v.pos++
	}
	return n, true
}

func (v *sweepVoice) Err() error { return nil }

// Filter is the shape of a noise voice's filter.
type Filter int

const (
	Lowpass Filter = iota
	Highpass
	Bandpass
)

// NoiseBurst is a noise voice: uniform random samples through a one-pole
// filter with a gain envelope. The noise is regenerated on every invocation;
// buffer identity is not audible.
type NoiseBurst struct {
	Filter   Filter
	Cutoff   float64 // Hz; center frequency for Bandpass
	Gain     Envelope
	Duration time.Duration
}

// Voice allocates a fresh streamer for one invocation of the burst.
func (nb NoiseBurst) Voice(sr beep.SampleRate) beep.Streamer {
	v := &noiseVoice{spec: nb, n: sr.N(nb.Duration), sr: float64(sr)}
	switch nb.Filter {
	case Bandpass:
		// a bandpass as the difference of two lowpasses around the center
		v.k1 = onePoleCoeff(nb.Cutoff*1.5, v.sr)
		v.k2 = onePoleCoeff(nb.Cutoff/1.5, v.sr)
	default:
		v.k1 = onePoleCoeff(nb.Cutoff, v.sr)
	}
	return v
}

func onePoleCoeff(cutoff, sr float64) float64 {
	if cutoff <= 0 {
		return 0
	}
	k := 1 - math.Exp(-2*math.Pi*cutoff/sr)
	if k > 1 {
		k = 1
	}
	return k
}

type noiseVoice struct {
	spec     NoiseBurst
	pos, n   int
	sr       float64
	k1, k2   float64
	lp1, lp2 float64
}

func (v *noiseVoice) Stream(samples [][2]float64) (int, bool) {
	if v.pos >= v.n {
		return 0, false
	}
	n := len(samples)
	if rem := v.n - v.pos; rem < n {
		n = rem
	}
	for i := 0; i < n; i++ {
		t := float64(v.pos) / float64(v.n)
		raw := rand.Float64()*2 - 1
		v.lp1 += v.k1 * (raw - v.lp1)
		var s float64
		switch v.spec.Filter {
		case Lowpass:
			s = v.lp1
		case Highpass:
			s = raw - v.lp1
		case Bandpass:
			v.lp2 += v.k2 * (raw - v.lp2)
			s = v.lp1 - v.lp2
		}
		s *= v.spec.Gain.At(t)
		samples[i][0] = s
		samples[i][1] = s
		v.pos++
	}
	return n, true
}

func (v *noiseVoice) Err() error { return nil }
