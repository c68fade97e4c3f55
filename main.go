package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-pianoroll/config"
	"go-pianoroll/editor"
	"go-pianoroll/midiout"
	"go-pianoroll/theme"
	"go-pianoroll/tui"
)

// auditionLength is how long a note sounds when grabbed or created.
const auditionLength = 200 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	palette := theme.DefaultPalette()
	if cfg.Palette != "" {
		p, err := theme.LoadGPL(cfg.Palette)
		if err != nil {
			fmt.Printf("palette %s: %v\n", cfg.Palette, err)
			os.Exit(1)
		}
		palette = p
	}
	th := theme.New(palette)

	store := editor.NewStore()
	store.SetGridSnap(cfg.GridSnap)

	out := midiout.New(cfg.MIDIPort, cfg.MIDIChannel)
	transport := editor.NewTransport(store, out)
	transport.SetTempo(cfg.Tempo)

	view := cfg.Viewport
	machine := editor.NewMachine(store, &view)
	machine.Audition = func(n editor.Note) {
		out.Tap(n.Pitch, n.Velocity, auditionLength)
	}

	m := tui.NewModel(store, machine, transport, &view, th, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	transport.Stop()
}
