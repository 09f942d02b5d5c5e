package meter

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/faiface/beep"
)

// tone streams a fixed sine wave forever.
type tone struct {
	phase float64
	freq  float64
	amp   float64
}

func (s *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		s.phase += 2 * math.Pi * s.freq / 44100
		v := s.amp * math.Sin(s.phase)
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (s *tone) Err() error { return nil }

func TestLevelOfSilenceIsZero(t *testing.T) {
	if got := Level(make([]float64, DefaultWindow)); got != 0 {
		t.Errorf("silence level = %v, want 0", got)
	}
	if got := Level(nil); got != 0 {
		t.Errorf("empty window level = %v, want 0", got)
	}
}

func TestLevelStaysNormalised(t *testing.T) {
	window := make([]float64, DefaultWindow)
	for i := range window {
		window[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
	}
	level := Level(window)
	if level <= 0 || level > 1 {
		t.Errorf("sine level = %v, want within (0,1]", level)
	}

	// even a clipping square wave must stay in range
	for i := range window {
		if i%2 == 0 {
			window[i] = 10
		} else {
			window[i] = -10
		}
	}
	if level := Level(window); level < 0 || level > 1 {
		t.Errorf("hot signal level = %v, out of [0,1]", level)
	}
}

func TestLouderSignalMetersHigher(t *testing.T) {
	quiet := make([]float64, DefaultWindow)
	loud := make([]float64, DefaultWindow)
	for i := range quiet {
		s := math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
		quiet[i] = 0.01 * s
		loud[i] = 0.8 * s
	}
	if Level(loud) <= Level(quiet) {
		t.Errorf("loud %v not above quiet %v", Level(loud), Level(quiet))
	}
}

func TestTapPassesAudioThrough(t *testing.T) {
	tap := NewTap(&tone{freq: 440, amp: 0.5}, 4096)
	buf := make([][2]float64, 1024)
	n, ok := tap.Stream(buf)
	if n != len(buf) || !ok {
		t.Fatalf("Stream = (%d, %v)", n, ok)
	}
	var peak float64
	for _, s := range buf {
		if a := math.Abs(s[0]); a > peak {
			peak = a
		}
	}
	if peak < 0.4 {
		t.Errorf("tap attenuated the signal: peak %v", peak)
	}
}

func TestTapSamplesChronological(t *testing.T) {
	// a ramp makes ordering observable
	ramp := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i][0] = float64(i)
			samples[i][1] = float64(i)
		}
		return len(samples), true
	})
	tap := NewTap(ramp, 256)
	buf := make([][2]float64, 64)
	tap.Stream(buf)
	got := tap.Samples(64)
	for i, v := range got {
		if v != float64(i) {
			t.Fatalf("Samples[%d] = %v, want %v", i, v, float64(i))
		}
	}
}

func TestMeterStopIsSynchronous(t *testing.T) {
	tap := NewTap(&tone{freq: 440, amp: 0.5}, 4096)
	buf := make([][2]float64, 4096)
	tap.Stream(buf)

	m := New(tap)
	m.interval = time.Millisecond
	var calls int64
	m.Start(func(level float64) {
		if level < 0 || level > 1 {
			t.Errorf("published level %v out of range", level)
		}
		atomic.AddInt64(&calls, 1)
	})
	time.Sleep(20 * time.Millisecond)
	m.Stop()
	if atomic.LoadInt64(&calls) == 0 {
		t.Fatal("meter never published")
	}

	after := atomic.LoadInt64(&calls)
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt64(&calls); got != after {
		t.Errorf("callback fired after Stop returned: %d -> %d", after, got)
	}

	m.Stop() // stopped: no-op
	m.Start(func(float64) {})
	m.Start(func(float64) {}) // running: no-op
	m.Stop()
}
