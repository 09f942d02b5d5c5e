// Package machine ties the pattern grid, the voice bank and the timeline
// together behind the control surface the UI layer drives. Its heart is a
// look-ahead scheduler: a coarse wall-clock ticker polls the machine, and
// each poll schedules every step that falls inside the look-ahead window at
// its exact audio-clock fire time. Timer jitter therefore never reaches the
// audio; it only moves work between polls.
package machine

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"

	"tjweldon/stepbox/src/clock"
	"tjweldon/stepbox/src/kits"
	"tjweldon/stepbox/src/meter"
	"tjweldon/stepbox/src/pattern"
	"tjweldon/stepbox/src/timeline"
	"tjweldon/stepbox/src/util"
)

var logger = util.Logger{}.Ctx("machine")

// bank is the slice of kits.Bank the scheduler needs.
type bank interface {
	Trigger(inst pattern.Instrument, at float64)
	Select(k kits.Kit)
	Kit() kits.Kit
}

// DefaultSampleRate is used when the config leaves the rate zero.
const DefaultSampleRate = beep.SampleRate(44100)

// Config carries construction parameters for a Machine.
type Config struct {
	SampleRate beep.SampleRate
}

// Machine is the drum machine engine. All state mutation happens under one
// mutex, so UI calls interleaving with scheduler polls always see whole
// rows, never a half-written grid.
type Machine struct {
	mu sync.Mutex

	sr   beep.SampleRate
	pat  *pattern.Pattern
	tl   *timeline.Timeline
	bank bank
	clk  clock.Clock

	volume *effects.Volume
	tap    *meter.Tap
	meter  *meter.Meter

	tempo    clock.Tempo
	nextFire float64
	step     int
	running  bool
	resumed  bool
	onStep   func(int)
	done     chan struct{}

	log util.Logger
}

// New builds a stopped machine playing the classic kit at 120 BPM with an
// empty 16-step pattern.
func New(cfg Config) *Machine {
	sr := cfg.SampleRate
	if sr == 0 {
		sr = DefaultSampleRate
	}
	tl := timeline.New(sr)
	vol := &effects.Volume{Streamer: tl, Base: 2, Volume: 0}
	tap := meter.NewTap(vol, 4*meter.DefaultWindow)
	return &Machine{
		sr:     sr,
		pat:    pattern.New(),
		tl:     tl,
		bank:   kits.NewBank(sr, tl),
		clk:    tl,
		volume: vol,
		tap:    tap,
		meter:  meter.New(tap),
		tempo:  120,
		log:    logger.Vol(util.Normal),
	}
}

// Resume initialises the audio output device and hangs the output chain off
// it. It must be called before Start for anything to be audible; without it
// the machine still sequences and notifies, it just renders nowhere.
// Calling it again is a no-op.
func (m *Machine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resumed {
		return nil
	}
	if err := speaker.Init(m.sr, m.sr.N(time.Second/10)); err != nil {
		return errors.Wrap(err, "machine: audio device unavailable")
	}
	speaker.Play(m.tap)
	m.resumed = true
	return nil
}

// SetTempo sets the tempo, clamped to [60,180] BPM. A change during
// playback takes effect on the next computed step interval, never
// retroactively.
func (m *Machine) SetTempo(bpm float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tempo = clock.Tempo(bpm).Clamp()
}

// Tempo returns the clamped tempo.
func (m *Machine) Tempo() clock.Tempo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo
}

// SetVolume sets the output gain. The gain applies uniformly at the output
// stage, independent of kit and pattern; zero or less is silence.
func (m *Machine) SetVolume(gain float64) {
	speaker.Lock()
	if gain <= 0 {
		m.volume.Silent = true
	} else {
		m.volume.Silent = false
		m.volume.Volume = math.Log2(gain)
	}
	speaker.Unlock()
}

// SetKit swaps the active voice bank. Unknown names are rejected and the
// active kit is left alone.
func (m *Machine) SetKit(name string) error {
	k, err := kits.ParseKit(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bank.Select(k)
	return nil
}

// Kit returns the active kit name.
func (m *Machine) Kit() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank.Kit().String()
}

// SetLoopLength resizes the grid to 4, 8 or 16 steps. If the playhead is
// past the new end it wraps so the step invariant holds mid-playback.
func (m *Machine) SetLoopLength(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.pat.SetLength(n); err != nil {
		return err
	}
	m.step %= n
	return nil
}

// LoopLength returns the current loop length.
func (m *Machine) LoopLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pat.Length()
}

// UpdatePattern bulk-replaces one instrument's row.
func (m *Machine) UpdatePattern(inst pattern.Instrument, steps []bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pat.SetRow(inst, steps)
}

// SetStep flips one flag in the grid.
func (m *Machine) SetStep(inst pattern.Instrument, index int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pat.SetStep(inst, index, active)
}

// Steps returns a copy of an instrument's row.
func (m *Machine) Steps(inst pattern.Instrument) []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pat.Steps(inst)
}

// ClearPattern deactivates the whole grid.
func (m *Machine) ClearPattern() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pat.Clear()
}

// LoadPreset overwrites the grid from a template.
func (m *Machine) LoadPreset(p pattern.Preset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pat.LoadPreset(p)
}

// LoadPresetName overwrites the grid from a built-in beat.
func (m *Machine) LoadPresetName(name string) error {
	p, err := pattern.PresetByName(name)
	if err != nil {
		return err
	}
	m.LoadPreset(p)
	return nil
}

// OnStep registers the step-changed observer. The callback fires exactly
// once per scheduled step, after that step's voices have been handed to the
// timeline, carrying the step's own index. It runs on the scheduler
// goroutine and must not call back into the Machine.
func (m *Machine) OnStep(fn func(step int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStep = fn
}

// Meter exposes the output level meter.
func (m *Machine) Meter() *meter.Meter { return m.meter }

// Running reports whether the transport is running.
func (m *Machine) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// StepIndex returns the playhead position. Stop preserves it; Start resets
// it to zero.
func (m *Machine) StepIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Start begins playback from step zero: stale voices are flushed, the
// fire-time cursor is seeded to the present audio clock and the poll ticker
// starts. Starting a running machine is a no-op.
func (m *Machine) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.step = 0
	m.tl.Flush()
	m.nextFire = m.clk.Now()
	m.running = true
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.log.Log("transport started")
	m.poll()
	go m.run(done)
}

// Stop halts scheduling. Voices already inside the look-ahead window still
// sound; that latency is bounded by the window, not a bug. The step index
// is preserved until the next Start. Stopping a stopped machine is a no-op.
func (m *Machine) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.done)
	m.mu.Unlock()
	m.log.Log("transport stopped")
}

func (m *Machine) run(done chan struct{}) {
	tick := time.NewTicker(clock.PollInterval)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			m.poll()
		}
	}
}

// poll schedules every step whose fire time falls before now+lookahead.
// Tempo is latched per advance, so a change lands on the next interval.
func (m *Machine) poll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	horizon := m.clk.Now() + clock.LookAhead
	for m.nextFire < horizon {
		step := m.step
		for _, inst := range pattern.Instruments {
			if m.pat.Step(inst, step) {
				m.trigger(inst, m.nextFire)
			}
		}
		if m.onStep != nil {
			m.onStep(step)
		}
		m.nextFire += m.tempo.StepSeconds()
		m.step = (m.step + 1) % m.pat.Length()
	}
}

// trigger fires one recipe; a panicking recipe is contained here so the
// remaining instruments of the step and the step notification are
// unaffected.
func (m *Machine) trigger(inst pattern.Instrument, at float64) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Log("recipe failed:", inst, r)
		}
	}()
	m.bank.Trigger(inst, at)
}
