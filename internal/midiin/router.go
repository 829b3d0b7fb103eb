// Package midiin feeds MIDI note messages into the synth engine
package midiin

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"
)

// MiddleC is the MIDI key that maps to note id 0
const MiddleC = 60

const ccAllNotesOff = 123

// Sink is the part of synth.Engine the router drives
type Sink interface {
	NoteEvent(id int, pressed bool, now float64, channel int)
	AllNotesOff(now float64)
	Bound(channel int) bool
}

// Clock reports the synthesis time in seconds
type Clock interface {
	Time() float64
}

// Kind of a routed message
type Kind int

const (
	NoteOn Kind = iota
	NoteOff
	AllOff
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note on"
	case NoteOff:
		return "note off"
	case AllOff:
		return "all notes off"
	default:
		return "unknown"
	}
}

// Event describes a message the router acted on
type Event struct {
	Kind     Kind
	MIDIChan uint8
	Key      uint8
	Velocity uint8
	Channel  int // synth channel the note was sent to
	Time     float64
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOn:
		return fmt.Sprintf("Note On:  Ch%d %-4s vel:%d", e.MIDIChan+1, KeyName(e.Key), e.Velocity)
	case NoteOff:
		return fmt.Sprintf("Note Off: Ch%d %-4s", e.MIDIChan+1, KeyName(e.Key))
	default:
		return fmt.Sprintf("All Off:  Ch%d", e.MIDIChan+1)
	}
}

// Router maps MIDI channel c to synth channel c+1 when that channel is
// bound, and to the fallback channel otherwise.
type Router struct {
	sink     Sink
	clock    Clock
	fallback int
	logger   *log.Logger
}

// NewRouter creates a router.
func NewRouter(sink Sink, clock Clock, fallback int, logger *log.Logger) *Router {
	return &Router{
		sink:     sink,
		clock:    clock,
		fallback: fallback,
		logger:   logger,
	}
}

// Handle applies msg to the sink. It reports false for messages it ignores.
func (r *Router) Handle(msg midi.Message) (Event, bool) {
	var ch, key, vel, ctrl, val uint8
	now := r.clock.Time()

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		ev := Event{Kind: NoteOn, MIDIChan: ch, Key: key, Velocity: vel, Channel: r.channel(ch), Time: now}
		r.sink.NoteEvent(int(key)-MiddleC, true, now, ev.Channel)
		return ev, true

	case msg.GetNoteEnd(&ch, &key):
		ev := Event{Kind: NoteOff, MIDIChan: ch, Key: key, Channel: r.channel(ch), Time: now}
		r.sink.NoteEvent(int(key)-MiddleC, false, now, ev.Channel)
		return ev, true

	case msg.GetControlChange(&ch, &ctrl, &val) && ctrl == ccAllNotesOff:
		r.sink.AllNotesOff(now)
		return Event{Kind: AllOff, MIDIChan: ch, Time: now}, true
	}

	r.logger.Debug("ignored midi message", "msg", msg.String())
	return Event{}, false
}

func (r *Router) channel(midiChan uint8) int {
	ch := int(midiChan) + 1
	if r.sink.Bound(ch) {
		return ch
	}
	return r.fallback
}

// KeyName returns the scientific pitch name of a MIDI key.
func KeyName(key uint8) string {
	notes := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(key/12) - 1
	return fmt.Sprintf("%s%d", notes[key%12], octave)
}
