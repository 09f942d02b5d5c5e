// Package meter provides a purely observational level tap on the output
// chain: a ring buffer of recent samples and a periodic loop that reduces
// their frequency spectrum to one normalised scalar.
package meter

import (
	"math"
	"math/cmplx"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/maddyblue/go-dsp/fft"
)

// Tap is a streamer wrapper that copies a mono mix of everything passing
// through it into a ring buffer. It sits between the volume stage and the
// speaker and does not alter the audio.
type Tap struct {
	s    beep.Streamer
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

// NewTap wraps a streamer with a ring buffer of the given size.
func NewTap(s beep.Streamer, size int) *Tap {
	return &Tap{s: s, buf: make([]float64, size), size: size}
}

// Stream passes audio through while capturing the mono mix.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := 0; i < n; i++ {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
	return n, ok
}

// Err returns the underlying streamer's error.
func (t *Tap) Err() error { return t.s.Err() }

// Samples returns the last n captured samples in chronological order.
func (t *Tap) Samples(n int) []float64 {
	if n > t.size {
		n = t.size
	}
	out := make([]float64, n)
	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()
	return out
}

// dB window the per-bin magnitudes are mapped through before averaging.
const (
	minDB = -100.0
	maxDB = -30.0
)

// Level reduces a sample window to a single scalar in [0,1]: FFT, per-bin
// amplitude in dB mapped onto the window above, averaged across bins.
func Level(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	spectrum := fft.FFTReal(samples)
	half := len(spectrum)/2 + 1
	var sum float64
	for _, c := range spectrum[:half] {
		amp := 2 * cmplx.Abs(c) / float64(len(samples))
		if amp <= 0 {
			continue
		}
		db := 20 * math.Log10(amp)
		v := (db - minDB) / (maxDB - minDB)
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		sum += v
	}
	return sum / float64(half)
}

// DefaultWindow is the FFT window size the meter analyses per publication.
const DefaultWindow = 1024

// DefaultInterval approximates a per-frame rendering cadence.
const DefaultInterval = time.Second / 60

// Meter periodically reduces the tap's recent samples to a level scalar and
// publishes it. The cadence is independent of the transport scheduler.
type Meter struct {
	tap      *Tap
	window   int
	interval time.Duration

	mu      sync.Mutex
	running bool
	done    chan struct{}
	stopped chan struct{}
}

func New(tap *Tap) *Meter {
	return &Meter{tap: tap, window: DefaultWindow, interval: DefaultInterval}
}

// Start begins publishing levels to onLevel. Starting a running meter is a
// no-op. The callback runs on the meter goroutine.
func (m *Meter) Start(onLevel func(float64)) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})
	done, stopped := m.done, m.stopped
	m.mu.Unlock()

	go func() {
		defer close(stopped)
		tick := time.NewTicker(m.interval)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				onLevel(Level(m.tap.Samples(m.window)))
			}
		}
	}()
}

// Stop halts publication. It is synchronous: once Stop returns, no further
// callback fires. Stopping a stopped meter is a no-op.
func (m *Meter) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.done)
	stopped := m.stopped
	m.mu.Unlock()
	<-stopped
}
