package synth

import (
	"math"
	"sort"
	"sync"
)

// DefaultGain attenuates the mix so a few overlapping notes don't clip
const DefaultGain = 0.2

// Default channel numbers bound by NewDefaultEngine
const (
	ChannelHarmonica = 1
	ChannelBell      = 2
	ChannelBell8     = 3
)

type channel struct {
	renderer Renderer
	gain     float64
}

// Engine owns the note registry and the channel table.
//
// Input handlers call NoteEvent and the audio callback calls RenderSample;
// both serialize on a single mutex held for the whole registry pass.
type Engine struct {
	mu       sync.Mutex
	notes    []Note
	channels map[int]channel
	gain     float64
}

// Option configures an Engine
type Option func(*Engine)

// WithGain sets the global gain applied to the mixed output.
func WithGain(gain float64) Option {
	return func(e *Engine) {
		e.gain = gain
	}
}

// WithChannel binds a renderer to a channel number with a per-channel gain.
func WithChannel(ch int, r Renderer, gain float64) Option {
	return func(e *Engine) {
		e.channels[ch] = channel{renderer: r, gain: gain}
	}
}

// NewEngine creates an engine with no channels bound unless options add them.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		channels: make(map[int]channel),
		gain:     DefaultGain,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefaultEngine binds the fixed instruments: harmonica on channel 1 at
// half gain, bell on 2 and bell8 on 3.
func NewDefaultEngine(opts ...Option) *Engine {
	defaults := []Option{
		WithChannel(ChannelHarmonica, Harmonica(), 0.5),
		WithChannel(ChannelBell, Bell(), 1.0),
		WithChannel(ChannelBell8, Bell8(), 1.0),
	}
	return NewEngine(append(defaults, opts...)...)
}

// NoteEvent records a key press or release for note id at time now.
//
// A press of an untracked id starts a new note on ch. A press of a releasing
// note re-arms it; a press of a held note does nothing. A release only
// affects a held note. Re-armed notes keep their original channel, and a
// re-press stamped at or before the release moves On just past Off so the
// note reads as held.
func (e *Engine) NoteEvent(id int, pressed bool, now float64, ch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.find(id)
	if n == nil {
		if pressed {
			e.notes = append(e.notes, Note{
				ID:      id,
				On:      now,
				Off:     NeverReleased,
				Active:  true,
				Channel: ch,
			})
		}
		return
	}

	switch {
	case pressed && n.Releasing():
		if now <= n.Off {
			now = math.Nextafter(n.Off, math.Inf(1))
		}
		n.On = now
		n.Active = true
	case !pressed && n.Sounding():
		n.Off = now
	}
}

// AllNotesOff releases every held note at time now.
func (e *Engine) AllNotesOff(now float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.notes {
		if e.notes[i].Sounding() {
			e.notes[i].Off = now
		}
	}
}

// RenderSample mixes every tracked note at time now and drops notes that
// have been released and decayed to silence.
func (e *Engine) RenderSample(now float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var mixed float64
	for i := range e.notes {
		n := &e.notes[i]

		sound, finished := 0.0, true
		if c, ok := e.channels[n.Channel]; ok {
			sound, finished = c.renderer.Render(now, *n)
			sound *= c.gain
		}
		mixed += sound

		if finished && n.Releasing() {
			n.Active = false
		}
	}

	kept := e.notes[:0]
	for _, n := range e.notes {
		if n.Active {
			kept = append(kept, n)
		}
	}
	clear(e.notes[len(kept):])
	e.notes = kept

	return mixed * e.gain
}

// ActiveNoteCount returns the number of tracked notes.
func (e *Engine) ActiveNoteCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.notes)
}

// Notes returns a snapshot of the registry.
func (e *Engine) Notes() []Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Note(nil), e.notes...)
}

// Bound reports whether a renderer is bound to ch.
func (e *Engine) Bound(ch int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.channels[ch]
	return ok
}

// Channels lists bound channel numbers in ascending order.
func (e *Engine) Channels() []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	chs := make([]int, 0, len(e.channels))
	for ch := range e.channels {
		chs = append(chs, ch)
	}
	sort.Ints(chs)
	return chs
}

// Renderer returns the renderer bound to ch, or nil.
func (e *Engine) Renderer(ch int) Renderer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channels[ch].renderer
}

// ChannelGain returns the gain of channel ch, or 0 if it is unbound.
func (e *Engine) ChannelGain(ch int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channels[ch].gain
}

func (e *Engine) find(id int) *Note {
	for i := range e.notes {
		if e.notes[i].ID == id {
			return &e.notes[i]
		}
	}
	return nil
}
