// Package keys turns terminal key presses into note events.
//
// Terminals report key presses and autorepeats but never releases, so a key
// counts as held until Hold passes without another press.
package keys

import (
	"context"
	"sync"
	"time"
)

// Layout maps two rows of a QWERTY keyboard onto note ids 0-15
const Layout = "zsxcfvgbnjmk,l./"

const (
	DefaultHold         = 600 * time.Millisecond
	DefaultPollInterval = 20 * time.Millisecond
)

// NoteSink receives the polled state of every mapped key
type NoteSink interface {
	NoteEvent(id int, pressed bool, now float64, channel int)
}

// Clock reports the synthesis time in seconds
type Clock interface {
	Time() float64
}

// Keyboard tracks which mapped keys are held and reports them to a NoteSink.
type Keyboard struct {
	mu       sync.Mutex
	sink     NoteSink
	clock    Clock
	hold     time.Duration
	now      func() time.Time
	lastSeen [len(Layout)]time.Time
	channel  int
}

// New creates a keyboard that plays on channel.
func New(sink NoteSink, clock Clock, channel int, hold time.Duration) *Keyboard {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Keyboard{
		sink:    sink,
		clock:   clock,
		hold:    hold,
		now:     time.Now,
		channel: channel,
	}
}

// ID returns the note id mapped to r.
func ID(r rune) (int, bool) {
	for i, k := range Layout {
		if k == r {
			return i, true
		}
	}
	return 0, false
}

// Press stamps a key as held. It reports whether r is a mapped key.
func (k *Keyboard) Press(r rune) bool {
	id, ok := ID(r)
	if !ok {
		return false
	}
	k.mu.Lock()
	k.lastSeen[id] = k.now()
	k.mu.Unlock()
	return true
}

// SetChannel selects the channel that new notes play on.
func (k *Keyboard) SetChannel(ch int) {
	k.mu.Lock()
	k.channel = ch
	k.mu.Unlock()
}

// Channel returns the selected channel.
func (k *Keyboard) Channel() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.channel
}

// Held returns the ids of keys currently considered down.
func (k *Keyboard) Held() []int {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	var held []int
	for id := range k.lastSeen {
		if k.isHeld(id, now) {
			held = append(held, id)
		}
	}
	return held
}

// Poll reports the state of every mapped key once.
func (k *Keyboard) Poll() {
	k.mu.Lock()
	now := k.now()
	var state [len(Layout)]bool
	for id := range state {
		state[id] = k.isHeld(id, now)
	}
	ch := k.channel
	k.mu.Unlock()

	t := k.clock.Time()
	for id, pressed := range state {
		k.sink.NoteEvent(id, pressed, t, ch)
	}
}

// Run polls at interval until ctx is done.
func (k *Keyboard) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.Poll()
		}
	}
}

func (k *Keyboard) isHeld(id int, now time.Time) bool {
	seen := k.lastSeen[id]
	return !seen.IsZero() && now.Sub(seen) < k.hold
}
