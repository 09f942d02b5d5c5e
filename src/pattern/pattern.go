package pattern

import (
	"github.com/pkg/errors"
)

// Instrument is a drum slot in the grid.
type Instrument int

const (
	Kick Instrument = iota
	Snare
	Hat
	Clap
	Tom
	Cymbal

	NumInstruments int = iota
)

// Instruments lists every slot in grid order.
var Instruments = [...]Instrument{Kick, Snare, Hat, Clap, Tom, Cymbal}

var instrumentNames = [...]string{"kick", "snare", "hat", "clap", "tom", "cymbal"}

func (i Instrument) String() string {
	if i < 0 || int(i) >= NumInstruments {
		return "unknown"
	}
	return instrumentNames[i]
}

// ParseInstrument resolves an instrument by name.
func ParseInstrument(name string) (Instrument, error) {
	for _, inst := range Instruments {
		if inst.String() == name {
			return inst, nil
		}
	}
	return 0, errors.Errorf("pattern: unknown instrument %q", name)
}

// DefaultLength is the loop length a fresh pattern starts with.
const DefaultLength = 16

// ValidLength reports whether n is a supported loop length.
func ValidLength(n int) bool {
	return n == 4 || n == 8 || n == 16
}

// Pattern is the per-instrument boolean step grid. Every row always has the
// same length. It is plain in-memory state; the caller (the machine)
// serialises access between polls.
type Pattern struct {
	rows   [NumInstruments][]bool
	length int
}

// New returns an empty 16-step pattern.
func New() *Pattern {
	p := &Pattern{length: DefaultLength}
	for i := range p.rows {
		p.rows[i] = make([]bool, DefaultLength)
	}
	return p
}

// Length returns the current loop length.
func (p *Pattern) Length() int { return p.length }

// SetLength resizes every row to n steps. Growing zero-fills the new slots,
// shrinking discards the tail. Discarded flags do not come back on re-grow.
func (p *Pattern) SetLength(n int) error {
	if !ValidLength(n) {
		return errors.Errorf("pattern: invalid loop length %d (want 4, 8 or 16)", n)
	}
	for i, row := range p.rows {
		next := make([]bool, n)
		copy(next, row)
		p.rows[i] = next
	}
	p.length = n
	return nil
}

// SetStep flips a single flag. Out-of-range indices fail fast rather than
// corrupt the grid.
func (p *Pattern) SetStep(inst Instrument, index int, active bool) error {
	if err := p.check(inst); err != nil {
		return err
	}
	if index < 0 || index >= p.length {
		return errors.Errorf("pattern: step %d out of range for loop length %d", index, p.length)
	}
	p.rows[inst][index] = active
	return nil
}

// Step reads a single flag. Reads outside the loop are simply inactive.
func (p *Pattern) Step(inst Instrument, index int) bool {
	if inst < 0 || int(inst) >= NumInstruments || index < 0 || index >= p.length {
		return false
	}
	return p.rows[inst][index]
}

// Steps returns a copy of an instrument's row.
func (p *Pattern) Steps(inst Instrument) []bool {
	if inst < 0 || int(inst) >= NumInstruments {
		return nil
	}
	out := make([]bool, p.length)
	copy(out, p.rows[inst])
	return out
}

// SetRow bulk-replaces an instrument's row. The input is truncated or
// zero-padded to the current loop length.
func (p *Pattern) SetRow(inst Instrument, steps []bool) error {
	if err := p.check(inst); err != nil {
		return err
	}
	next := make([]bool, p.length)
	copy(next, steps)
	p.rows[inst] = next
	return nil
}

// Clear deactivates every step of every instrument.
func (p *Pattern) Clear() {
	for i := range p.rows {
		p.rows[i] = make([]bool, p.length)
	}
}

// LoadPreset overwrites the whole grid from a template. Instruments absent
// from the template are cleared; rows are padded or truncated to the current
// loop length.
func (p *Pattern) LoadPreset(preset Preset) {
	for _, inst := range Instruments {
		next := make([]bool, p.length)
		copy(next, preset[inst])
		p.rows[inst] = next
	}
}

func (p *Pattern) check(inst Instrument) error {
	if inst < 0 || int(inst) >= NumInstruments {
		return errors.Errorf("pattern: unknown instrument %d", int(inst))
	}
	return nil
}
