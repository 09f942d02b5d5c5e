// Package timeline is the root of the audio graph: a persistent streamer
// that mixes voices scheduled at absolute frame positions. The frame counter
// doubles as the audio clock the scheduler reads.
package timeline

import (
	"sync"

	"github.com/faiface/beep"
)

type event struct {
	start int // absolute frame at which the voice begins
	voice beep.Streamer
}

// Timeline mixes scheduled voices sample-accurately. Scheduling is
// append-only under a mutex, so control-thread ScheduleAt calls are safe
// against the speaker goroutine streaming concurrently.
type Timeline struct {
	mu      sync.Mutex
	sr      beep.SampleRate
	frame   int
	events  []*event
	scratch [][2]float64
}

func New(sr beep.SampleRate) *Timeline {
	return &Timeline{sr: sr}
}

// SampleRate returns the rate the timeline renders at.
func (t *Timeline) SampleRate() beep.SampleRate { return t.sr }

// Now is the audio clock: seconds of audio rendered so far.
func (t *Timeline) Now() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.frame) / float64(t.sr)
}

// ScheduleAt queues a voice to begin at an absolute frame. Frames already
// rendered are clamped to the present, so a late event plays immediately
// rather than being dropped.
func (t *Timeline) ScheduleAt(frame int, voice beep.Streamer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frame < t.frame {
		frame = t.frame
	}
	t.events = append(t.events, &event{start: frame, voice: voice})
}

// Pending returns the number of scheduled voices not yet drained.
func (t *Timeline) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

// Flush drops every scheduled and sounding voice.
func (t *Timeline) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// Stream renders the next window: silence plus every voice whose start frame
// intersects it, each mixed in at its exact offset. The timeline never
// drains; it streams silence while idle.
func (t *Timeline) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	n := len(samples)

	t.mu.Lock()
	defer t.mu.Unlock()

	live := t.events[:0]
	for _, ev := range t.events {
		if ev.start >= t.frame+n {
			live = append(live, ev)
			continue
		}
		offset := 0
		if ev.start > t.frame {
			offset = ev.start - t.frame
		}
		dst := samples[offset:]
		if len(t.scratch) < len(dst) {
			t.scratch = make([][2]float64, len(dst))
		}
		got, ok := ev.voice.Stream(t.scratch[:len(dst)])
		for i := 0; i < got; i++ {
			dst[i][0] += t.scratch[i][0]
			dst[i][1] += t.scratch[i][1]
		}
		if ok {
			// still sounding next window; from here on it streams from
			// the window start
			ev.start = t.frame + n
			live = append(live, ev)
		}
	}
	t.events = live
	t.frame += n
	return n, true
}

func (t *Timeline) Err() error { return nil }
