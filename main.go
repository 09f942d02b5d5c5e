package main

import (
	"fmt"
	"log"
	"strings"
	"sync"

	arg "github.com/alexflint/go-arg"

	"tjweldon/stepbox/src/machine"
)

var args struct {
	Tempo  float64 `arg:"-t,--tempo" default:"120" help:"beats per minute (60-180)"`
	Kit    string  `arg:"-k,--kit" default:"classic" help:"voice bank: classic, punchy or lofi"`
	Preset string  `arg:"-p,--preset" default:"four-on-the-floor" help:"built-in beat to load"`
	Steps  int     `arg:"-s,--steps" default:"16" help:"loop length: 4, 8 or 16"`
	Volume float64 `default:"1" help:"output gain"`
	Bars   int     `arg:"-b,--bars" default:"8" help:"bars to play before exiting"`
	Meter  bool    `help:"show the output level next to the step cursor"`
}

func cursor(length, step int, level float64) string {
	cells := make([]string, length)
	for i := range cells {
		cells[i] = "."
		if i == step {
			cells[i] = "#"
		}
	}
	line := fmt.Sprintf("\r[%s] step %2d", strings.Join(cells, ""), step)
	if args.Meter {
		bar := int(level * 20)
		line += fmt.Sprintf("  |%-20s|", strings.Repeat("=", bar))
	}
	return line
}

func main() {
	arg.MustParse(&args)

	m := machine.New(machine.Config{})
	if err := m.Resume(); err != nil {
		log.Fatal(err)
	}
	if err := m.SetKit(args.Kit); err != nil {
		log.Fatal(err)
	}
	if err := m.SetLoopLength(args.Steps); err != nil {
		log.Fatal(err)
	}
	if err := m.LoadPresetName(args.Preset); err != nil {
		log.Fatal(err)
	}
	m.SetTempo(args.Tempo)
	m.SetVolume(args.Volume)

	var (
		mu    sync.Mutex
		level float64
	)
	if args.Meter {
		m.Meter().Start(func(l float64) {
			mu.Lock()
			level = l
			mu.Unlock()
		})
	}

	total := args.Bars * args.Steps
	played := 0
	done := make(chan struct{})
	m.OnStep(func(step int) {
		mu.Lock()
		l := level
		mu.Unlock()
		fmt.Print(cursor(args.Steps, step, l))
		played++
		if played == total {
			close(done)
		}
	})

	fmt.Printf("%s @ %g bpm on the %s kit\n", args.Preset, args.Tempo, args.Kit)
	m.Start()
	<-done
	m.Stop()
	if args.Meter {
		m.Meter().Stop()
	}
	fmt.Println()
}
