// Package render plays note events through an engine offline and writes the
// result to disk.
package render

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/icco/noisemaker/internal/midiin"
)

const ticksPerQuarterNote = 960

// Event is a timed key press or release
type Event struct {
	Time    float64 // seconds
	ID      int
	Pressed bool
	Channel int
}

// LoadSMF reads note on/off messages from every track of a Standard MIDI File.
// MIDI channel c becomes synth channel c+1.
func LoadSMF(path string) ([]Event, error) {
	var events []Event

	rd := smf.ReadTracks(path).Do(func(te smf.TrackEvent) {
		var ch, key, vel uint8
		msg := midi.Message(te.Message)
		t := float64(te.AbsMicroSeconds) / 1e6

		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			events = append(events, Event{Time: t, ID: int(key) - midiin.MiddleC, Pressed: true, Channel: int(ch) + 1})
		case msg.GetNoteEnd(&ch, &key):
			events = append(events, Event{Time: t, ID: int(key) - midiin.MiddleC, Pressed: false, Channel: int(ch) + 1})
		}
	})
	if err := rd.Error(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	Sort(events)
	return events, nil
}

// WriteSMF writes events as a single-track Standard MIDI File at bpm.
func WriteSMF(path string, events []Event, bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("invalid tempo %g", bpm)
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)
	ticksPerSecond := ticksPerQuarterNote * bpm / 60

	var track smf.Track
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(bpm))

	var lastTick uint32
	for _, ev := range events {
		key := ev.ID + midiin.MiddleC
		if key < 0 || key > 127 || ev.Channel < 1 || ev.Channel > 16 {
			return fmt.Errorf("event %+v does not fit in MIDI", ev)
		}
		tick := uint32(ev.Time*ticksPerSecond + 0.5)
		if tick < lastTick {
			return fmt.Errorf("events out of order at %fs", ev.Time)
		}
		ch, k := uint8(ev.Channel-1), uint8(key) //nolint:gosec // range checked above
		if ev.Pressed {
			track.Add(tick-lastTick, midi.NoteOn(ch, k, 100))
		} else {
			track.Add(tick-lastTick, midi.NoteOff(ch, k))
		}
		lastTick = tick
	}
	track.Close(0)

	if err := sm.Add(track); err != nil {
		return fmt.Errorf("error adding track: %w", err)
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// Sort orders events by time, releases before presses at the same instant.
func Sort(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return !events[i].Pressed && events[j].Pressed
	})
}

// OnChannel returns a copy of events moved to channel ch.
func OnChannel(events []Event, ch int) []Event {
	out := make([]Event, len(events))
	for i, ev := range events {
		ev.Channel = ch
		out[i] = ev
	}
	return out
}

// WithFallback returns a copy of events where every channel that bound
// rejects is moved to fallback.
func WithFallback(events []Event, bound func(ch int) bool, fallback int) []Event {
	out := make([]Event, len(events))
	for i, ev := range events {
		if !bound(ev.Channel) {
			ev.Channel = fallback
		}
		out[i] = ev
	}
	return out
}

// Demo plays the sixteen keyboard notes up and back down.
func Demo(channel int, step float64) []Event {
	var events []Event
	ids := make([]int, 0, 31)
	for id := 0; id < 16; id++ {
		ids = append(ids, id)
	}
	for id := 14; id >= 0; id-- {
		ids = append(ids, id)
	}
	for i, id := range ids {
		on := float64(i) * step
		events = append(events,
			Event{Time: on, ID: id, Pressed: true, Channel: channel},
			Event{Time: on + step*0.8, ID: id, Pressed: false, Channel: channel},
		)
	}
	Sort(events)
	return events
}
