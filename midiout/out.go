// Package midiout sends note events to a named MIDI output port. Ports are
// opened lazily on first use; a missing or unnamed port degrades to a
// silent no-op so the editor works without MIDI hardware.
package midiout

import (
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver
)

type Out struct {
	portName string
	channel  uint8

	mu   sync.Mutex
	send func(gomidi.Message) error
}

// New creates an output for the given port name and MIDI channel (1-16).
func New(portName string, channel int) *Out {
	if channel < 1 {
		channel = 1
	}
	if channel > 16 {
		channel = 16
	}
	return &Out{portName: portName, channel: uint8(channel - 1)}
}

// sender lazily opens the configured port. Returns nil when the port is
// unset or unavailable.
func (o *Out) sender() func(gomidi.Message) error {
	if o.portName == "" {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send != nil {
		return o.send
	}

	for _, port := range gomidi.GetOutPorts() {
		if port.String() == o.portName {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil
			}
			o.send = send
			return send
		}
	}
	return nil
}

func (o *Out) NoteOn(pitch, velocity int) {
	send := o.sender()
	if send == nil {
		return
	}
	send(gomidi.NoteOn(o.channel, clamp7(pitch), clamp7(velocity)))
}

func (o *Out) NoteOff(pitch int) {
	send := o.sender()
	if send == nil {
		return
	}
	send(gomidi.NoteOff(o.channel, clamp7(pitch)))
}

// Tap echoes a short preview note, releasing it after d.
func (o *Out) Tap(pitch, velocity int, d time.Duration) {
	send := o.sender()
	if send == nil {
		return
	}
	send(gomidi.NoteOn(o.channel, clamp7(pitch), clamp7(velocity)))
	go func() {
		time.Sleep(d)
		o.NoteOff(pitch)
	}()
}

func clamp7(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
