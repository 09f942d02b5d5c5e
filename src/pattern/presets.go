package pattern

import "github.com/pkg/errors"

// Preset is a literal 16-step (or shorter) beat template.
type Preset map[Instrument][]bool

// helper for readable literals below
func steps(s string) []bool {
	out := make([]bool, 0, len(s))
	for _, c := range s {
		out = append(out, c == 'x' || c == 'X')
	}
	return out
}

// Presets are the built-in beats, keyed by the names the CLI accepts.
var Presets = map[string]Preset{
	"four-on-the-floor": {
		Kick: steps("x...x...x...x..."),
		Hat:  steps("..x...x...x...x."),
		Clap: steps("....x.......x..."),
	},
	"boombap": {
		Kick:  steps("x.....x...x....."),
		Snare: steps("....x.......x..."),
		Hat:   steps("x.x.x.x.x.x.x.xx"),
	},
	"house-party": {
		Kick:   steps("x...x...x...x..."),
		Clap:   steps("....x.......x..."),
		Hat:    steps("..x...x...x...x."),
		Cymbal: steps("x..............."),
	},
	"halftime": {
		Kick:  steps("x.........x....."),
		Snare: steps("........x......."),
		Hat:   steps("x.x.x.x.x.x.x.x."),
		Tom:   steps("..............x."),
	},
}

// PresetNames lists the built-in beats in a stable order.
func PresetNames() []string {
	return []string{"four-on-the-floor", "boombap", "house-party", "halftime"}
}

// PresetByName resolves a built-in beat.
func PresetByName(name string) (Preset, error) {
	if p, ok := Presets[name]; ok {
		return p, nil
	}
	return nil, errors.Errorf("pattern: unknown preset %q", name)
}
