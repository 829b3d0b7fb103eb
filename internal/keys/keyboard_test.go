package keys

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/icco/noisemaker/internal/synth"
)

type fixedClock float64

func (c fixedClock) Time() float64 { return float64(c) }

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func newTestKeyboard(sink NoteSink, clock Clock) (*Keyboard, *fakeTime) {
	ft := &fakeTime{t: time.Unix(1000, 0)}
	k := New(sink, clock, synth.ChannelHarmonica, 500*time.Millisecond)
	k.now = ft.now
	return k, ft
}

func TestLayout(t *testing.T) {
	tests := []struct {
		r  rune
		id int
		ok bool
	}{
		{'z', 0, true},
		{'s', 1, true},
		{',', 12, true},
		{'/', 15, true},
		{'q', 0, false},
	}
	for _, tt := range tests {
		id, ok := ID(tt.r)
		if ok != tt.ok || (ok && id != tt.id) {
			t.Errorf("ID(%q) = %d, %v; want %d, %v", tt.r, id, ok, tt.id, tt.ok)
		}
	}
}

func TestHoldExpires(t *testing.T) {
	k, ft := newTestKeyboard(synth.NewDefaultEngine(), fixedClock(0))

	if k.Press('q') {
		t.Fatalf("unmapped key accepted")
	}
	k.Press('x')
	if held := k.Held(); len(held) != 1 || held[0] != 2 {
		t.Fatalf("Held() = %v, want [2]", held)
	}

	ft.t = ft.t.Add(400 * time.Millisecond)
	k.Press('x') // autorepeat
	ft.t = ft.t.Add(400 * time.Millisecond)
	if held := k.Held(); len(held) != 1 {
		t.Fatalf("autorepeat did not extend hold: %v", held)
	}

	ft.t = ft.t.Add(200 * time.Millisecond)
	if held := k.Held(); len(held) != 0 {
		t.Fatalf("key still held after hold window: %v", held)
	}
}

func TestPollDrivesEngine(t *testing.T) {
	e := synth.NewDefaultEngine()
	clock := fixedClock(1.5)
	k, ft := newTestKeyboard(e, clock)

	k.Press('z')
	k.Press('m')
	k.Poll()

	notes := e.Notes()
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	for _, n := range notes {
		if n.On != 1.5 || n.Channel != synth.ChannelHarmonica || !n.Sounding() {
			t.Fatalf("unexpected note %+v", n)
		}
	}

	// polling again while held leaves the notes alone
	k.clock = fixedClock(1.6)
	k.Poll()
	if got := e.Notes()[0].On; got != 1.5 {
		t.Fatalf("held key re-triggered, On = %f", got)
	}

	ft.t = ft.t.Add(time.Second)
	k.clock = fixedClock(2.0)
	k.Poll()
	for _, n := range e.Notes() {
		if n.Off != 2.0 {
			t.Fatalf("note %d not released: %+v", n.ID, n)
		}
	}
}

func TestSetChannel(t *testing.T) {
	e := synth.NewDefaultEngine()
	k, _ := newTestKeyboard(e, fixedClock(0))

	k.SetChannel(synth.ChannelBell)
	if k.Channel() != synth.ChannelBell {
		t.Fatalf("Channel() = %d", k.Channel())
	}
	k.Press('v')
	k.Poll()
	if n := e.Notes()[0]; n.Channel != synth.ChannelBell || n.ID != 5 {
		t.Fatalf("unexpected note %+v", n)
	}
}

type countingSink struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSink) NoteEvent(int, bool, float64, int) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func TestRunStopsWithContext(t *testing.T) {
	sink := &countingSink{}
	k := New(sink, fixedClock(0), 1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.calls == 0 || sink.calls%len(Layout) != 0 {
		t.Fatalf("expected whole polling passes, got %d events", sink.calls)
	}
}
