package editor

import (
	"sync"
	"time"
)

// Sender receives note events from the transport during playback. A nil
// sender silently drops everything.
type Sender interface {
	NoteOn(pitch, velocity int)
	NoteOff(pitch int)
}

// Transport owns the playhead and tempo and, while playing, emits note
// on/off events for notes the playhead crosses. The playhead is the paste
// anchor and the sync point for the UI.
type Transport struct {
	mu       sync.Mutex
	tempo    int
	playing  bool
	playhead float64   // beats; position while stopped, start point while playing
	t0       time.Time // wall time the playhead was at `playhead`

	store *Store
	out   Sender
	held  map[string]int // note id -> sounding pitch
	stop  chan struct{}

	// Updates signals the UI to repaint while playing. Coalesced.
	Updates chan struct{}
}

const transportTickInterval = 15 * time.Millisecond

func NewTransport(store *Store, out Sender) *Transport {
	return &Transport{
		tempo:   120,
		store:   store,
		out:     out,
		Updates: make(chan struct{}, 1),
	}
}

func (t *Transport) Tempo() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tempo
}

// SetTempo clamps to a playable range and keeps the playhead continuous
// when the tempo changes mid-playback.
func (t *Transport) SetTempo(bpm int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bpm < 20 {
		bpm = 20
	}
	if bpm > 300 {
		bpm = 300
	}
	if t.playing {
		t.playhead = t.playheadLocked()
		t.t0 = time.Now()
	}
	t.tempo = bpm
}

func (t *Transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// Playhead returns the current transport position in beats.
func (t *Transport) Playhead() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playheadLocked()
}

func (t *Transport) playheadLocked() float64 {
	if !t.playing {
		return t.playhead
	}
	elapsed := time.Since(t.t0)
	return t.playhead + elapsed.Seconds()*float64(t.tempo)/60.0
}

// SetPlayhead moves the transport position. Negative positions clamp to 0.
func (t *Transport) SetPlayhead(beat float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if beat < 0 {
		beat = 0
	}
	t.playhead = beat
	t.t0 = time.Now()
	t.notify()
}

// Play starts playback from the current playhead.
func (t *Transport) Play() {
	t.mu.Lock()
	if t.playing {
		t.mu.Unlock()
		return
	}
	t.playing = true
	t.t0 = time.Now()
	t.held = make(map[string]int)
	t.stop = make(chan struct{})
	stop := t.stop
	t.mu.Unlock()

	go t.run(stop)
}

// Stop halts playback, silences held notes and parks the playhead where it
// stopped.
func (t *Transport) Stop() {
	t.mu.Lock()
	if !t.playing {
		t.mu.Unlock()
		return
	}
	t.playhead = t.playheadLocked()
	t.playing = false
	close(t.stop)
	held := t.held
	t.held = nil
	t.mu.Unlock()

	if t.out != nil {
		for _, pitch := range held {
			t.out.NoteOff(pitch)
		}
	}
	t.notify()
}

func (t *Transport) run(stop chan struct{}) {
	ticker := time.NewTicker(transportTickInterval)
	defer ticker.Stop()

	last := t.Playhead()
	first := true
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := t.Playhead()
			t.emit(last, now, first)
			first = false
			last = now
			t.notify()
		}
	}
}

// emit sends note-offs for notes ending in (last, now] and note-ons for
// notes starting in that window. The first window of a playback run is
// closed on the left so a note sitting exactly on the playhead sounds.
func (t *Transport) emit(last, now float64, first bool) {
	if t.out == nil {
		return
	}
	notes := t.store.Notes()

	type noteOn struct{ pitch, velocity int }
	var ons []noteOn
	var offs []int

	t.mu.Lock()
	if t.held == nil {
		t.mu.Unlock()
		return
	}
	for _, n := range notes {
		pitch, sounding := t.held[n.ID]
		if sounding && n.End() > last && n.End() <= now {
			offs = append(offs, pitch)
			delete(t.held, n.ID)
		}
		starts := n.Start > last && n.Start <= now
		if first {
			starts = n.Start >= last && n.Start <= now
		}
		if !sounding && starts {
			ons = append(ons, noteOn{n.Pitch, n.Velocity})
			t.held[n.ID] = n.Pitch
		}
	}
	t.mu.Unlock()

	for _, pitch := range offs {
		t.out.NoteOff(pitch)
	}
	for _, on := range ons {
		t.out.NoteOn(on.pitch, on.velocity)
	}
}

func (t *Transport) notify() {
	select {
	case t.Updates <- struct{}{}:
	default:
	}
}
