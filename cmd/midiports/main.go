package main

import (
	"fmt"
	"os"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Lists MIDI output ports so the user can pick one for the midiPort
// config field, and optionally sends a test note to a port.
func main() {
	defer midi.CloseDriver()

	if len(os.Args) > 1 {
		testPort(os.Args[1])
		return
	}
	listPorts()
}

func listPorts() {
	type result struct{ outs []drivers.Out }
	ch := make(chan result, 1)
	go func() {
		ch <- result{outs: midi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		if len(r.outs) == 0 {
			fmt.Println("No MIDI output ports found")
			return
		}
		fmt.Println("MIDI output ports:")
		for i, out := range r.outs {
			fmt.Printf("  %d: %s\n", i, out.String())
		}
		fmt.Println("")
		fmt.Println("Set \"midiPort\" in the config to one of these names.")
		fmt.Println("Run with a port name to send a test note:")
		fmt.Println("  midiports <port-name>")
	case <-time.After(3 * time.Second):
		fmt.Println("Timed out waiting for MIDI driver")
	}
}

func testPort(name string) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		fmt.Printf("Port %q not found: %v\n", name, err)
		os.Exit(1)
	}

	send, err := midi.SendTo(out)
	if err != nil {
		fmt.Printf("Open %q: %v\n", name, err)
		os.Exit(1)
	}

	fmt.Printf("Sending middle C to %s\n", out.String())
	send(midi.NoteOn(0, 60, 100))
	time.Sleep(500 * time.Millisecond)
	send(midi.NoteOff(0, 60))
}
