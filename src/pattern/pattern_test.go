package pattern

import "testing"

func TestNewPatternShape(t *testing.T) {
	p := New()
	if p.Length() != DefaultLength {
		t.Fatalf("fresh pattern length = %d, want %d", p.Length(), DefaultLength)
	}
	for _, inst := range Instruments {
		row := p.Steps(inst)
		if len(row) != DefaultLength {
			t.Fatalf("%s row length = %d, want %d", inst, len(row), DefaultLength)
		}
		for i, on := range row {
			if on {
				t.Fatalf("%s[%d] active in a fresh pattern", inst, i)
			}
		}
	}
}

func TestSetLengthResizesEveryRow(t *testing.T) {
	for _, n := range []int{4, 8, 16} {
		p := New()
		if err := p.SetLength(n); err != nil {
			t.Fatalf("SetLength(%d): %v", n, err)
		}
		for _, inst := range Instruments {
			if got := len(p.Steps(inst)); got != n {
				t.Errorf("after SetLength(%d), %s row length = %d", n, inst, got)
			}
		}
	}
}

func TestSetLengthRejectsOddSizes(t *testing.T) {
	p := New()
	for _, n := range []int{0, 1, 3, 5, 12, 32, -4} {
		if err := p.SetLength(n); err == nil {
			t.Errorf("SetLength(%d) accepted", n)
		}
	}
	if p.Length() != DefaultLength {
		t.Errorf("rejected resize mutated length to %d", p.Length())
	}
}

func TestGrowZeroFillsAndPreserves(t *testing.T) {
	p := New()
	if err := p.SetLength(8); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i += 2 {
		if err := p.SetStep(Kick, i, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.SetLength(16); err != nil {
		t.Fatal(err)
	}
	row := p.Steps(Kick)
	for i := 0; i < 8; i++ {
		if row[i] != (i%2 == 0) {
			t.Errorf("kick[%d] = %v after grow", i, row[i])
		}
	}
	for i := 8; i < 16; i++ {
		if row[i] {
			t.Errorf("kick[%d] not zero-filled", i)
		}
	}
}

func TestShrinkDiscardsForGood(t *testing.T) {
	p := New()
	if err := p.SetStep(Snare, 12, true); err != nil {
		t.Fatal(err)
	}
	if err := p.SetStep(Snare, 2, true); err != nil {
		t.Fatal(err)
	}
	if err := p.SetLength(4); err != nil {
		t.Fatal(err)
	}
	if !p.Step(Snare, 2) {
		t.Error("snare[2] lost on shrink")
	}
	if err := p.SetLength(16); err != nil {
		t.Fatal(err)
	}
	if p.Step(Snare, 12) {
		t.Error("discarded snare[12] resurrected on re-grow")
	}
	if !p.Step(Snare, 2) {
		t.Error("snare[2] lost across shrink and grow")
	}
}

func TestSetStepValidation(t *testing.T) {
	p := New()
	if err := p.SetStep(Hat, 16, true); err == nil {
		t.Error("index at loop length accepted")
	}
	if err := p.SetStep(Hat, -1, true); err == nil {
		t.Error("negative index accepted")
	}
	if err := p.SetStep(Instrument(99), 0, true); err == nil {
		t.Error("bogus instrument accepted")
	}
	if err := p.SetLength(4); err != nil {
		t.Fatal(err)
	}
	if err := p.SetStep(Hat, 4, true); err == nil {
		t.Error("index beyond shrunk loop accepted")
	}
}

func TestSetRowPadsAndTruncates(t *testing.T) {
	p := New()
	if err := p.SetRow(Tom, []bool{true, true}); err != nil {
		t.Fatal(err)
	}
	row := p.Steps(Tom)
	if !row[0] || !row[1] {
		t.Error("short row not copied")
	}
	for i := 2; i < 16; i++ {
		if row[i] {
			t.Errorf("tom[%d] not zero-padded", i)
		}
	}

	if err := p.SetLength(4); err != nil {
		t.Fatal(err)
	}
	long := make([]bool, 16)
	long[0], long[8] = true, true
	if err := p.SetRow(Tom, long); err != nil {
		t.Fatal(err)
	}
	if got := len(p.Steps(Tom)); got != 4 {
		t.Fatalf("row length %d after oversized SetRow", got)
	}
	if !p.Step(Tom, 0) {
		t.Error("tom[0] dropped by truncating SetRow")
	}
}

func TestClearThenLoadPreset(t *testing.T) {
	p := New()
	preset := Presets["four-on-the-floor"]
	for _, inst := range Instruments {
		for i := 0; i < 16; i += 3 {
			if err := p.SetStep(inst, i, true); err != nil {
				t.Fatal(err)
			}
		}
	}
	p.Clear()
	p.LoadPreset(preset)
	for _, inst := range Instruments {
		want := make([]bool, p.Length())
		copy(want, preset[inst])
		got := p.Steps(inst)
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s[%d] = %v, want %v", inst, i, got[i], want[i])
			}
		}
	}
}

func TestLoadPresetClearsAbsentInstruments(t *testing.T) {
	p := New()
	if err := p.SetStep(Cymbal, 3, true); err != nil {
		t.Fatal(err)
	}
	p.LoadPreset(Preset{Kick: []bool{true}})
	if p.Step(Cymbal, 3) {
		t.Error("instrument absent from preset kept its flags")
	}
	if !p.Step(Kick, 0) {
		t.Error("preset row not loaded")
	}
}

func TestLoadPresetTruncatesToLoopLength(t *testing.T) {
	p := New()
	if err := p.SetLength(4); err != nil {
		t.Fatal(err)
	}
	p.LoadPreset(Presets["boombap"])
	for _, inst := range Instruments {
		if got := len(p.Steps(inst)); got != 4 {
			t.Errorf("%s row length %d after preset load at loop 4", inst, got)
		}
	}
}

func TestParseInstrument(t *testing.T) {
	for _, inst := range Instruments {
		got, err := ParseInstrument(inst.String())
		if err != nil || got != inst {
			t.Errorf("ParseInstrument(%q) = %v, %v", inst.String(), got, err)
		}
	}
	if _, err := ParseInstrument("theremin"); err == nil {
		t.Error("unknown instrument parsed")
	}
}

func TestPresetByName(t *testing.T) {
	for _, name := range PresetNames() {
		if _, err := PresetByName(name); err != nil {
			t.Errorf("PresetByName(%q): %v", name, err)
		}
	}
	if _, err := PresetByName("freeform-jazz"); err == nil {
		t.Error("unknown preset resolved")
	}
}
