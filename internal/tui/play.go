// Package tui provides the terminal interface for playing the synth
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"

	"github.com/icco/noisemaker/internal/keys"
	"github.com/icco/noisemaker/internal/synth"
)

const fps = 30

// frameMsg redraws the screen
type frameMsg time.Time

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// PlayModel is the keyboard synth screen
type PlayModel struct {
	engine   *synth.Engine
	keyboard *keys.Keyboard
	clock    keys.Clock

	meter Meter
	graph string
	width int
}

// NewPlayModel creates the play screen. Notes are played on the keyboard's
// selected channel; digit keys switch between bound channels.
func NewPlayModel(engine *synth.Engine, kb *keys.Keyboard, clock keys.Clock) *PlayModel {
	m := &PlayModel{
		engine:   engine,
		keyboard: kb,
		clock:    clock,
		meter:    NewMeter(),
	}
	m.redrawGraph()
	return m
}

func (m *PlayModel) Init() tea.Cmd {
	return frame()
}

func (m *PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.redrawGraph()
		return m, nil

	case frameMsg:
		m.meter.Update(EnvelopeLevel(m.engine, m.clock.Time()))
		return m, frame()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
			return m, nil
		}
		r := msg.Runes[0]
		if ch, err := strconv.Atoi(string(r)); err == nil && m.engine.Bound(ch) {
			m.keyboard.SetChannel(ch)
			m.redrawGraph()
			return m, nil
		}
		m.keyboard.Press(r)
	}

	return m, nil
}

func (m *PlayModel) redrawGraph() {
	width := graphWidth
	if m.width > 0 && m.width-2 < width {
		width = m.width - 2
	}
	inst, _ := m.engine.Renderer(m.keyboard.Channel()).(*synth.Instrument)
	m.graph = RenderGraph(inst, width, graphHeight/2)
}

func (m *PlayModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("NOISEMAKER") + "\n\n")

	// Channel list
	b.WriteString(subtitleStyle.Render("Instrument: "))
	selected := m.keyboard.Channel()
	for _, ch := range m.engine.Channels() {
		name := fmt.Sprintf("%d:%s", ch, channelName(m.engine, ch))
		if ch == selected {
			b.WriteString(selectedStyle.Render("["+name+"]") + " ")
		} else {
			b.WriteString(" " + name + "  ")
		}
	}
	b.WriteString("\n\n")

	// Waveform
	b.WriteString(m.graph + "\n\n")

	// Active notes
	notes := m.engine.Notes()
	active := make(map[int]bool, len(notes))
	names := make([]string, 0, len(notes))
	for _, n := range notes {
		if n.Sounding() {
			active[n.ID] = true
		}
		names = append(names, synth.NoteName(n.ID))
	}
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Notes: %d ", m.engine.ActiveNoteCount())))
	if len(names) > 0 {
		b.WriteString(noteStyle.Render(strings.Join(names, " ")))
	}
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Level: ") + m.meter.View(40) + "\n\n")

	b.WriteString(RenderKeyboard(0, active) + "\n")
	b.WriteString(helpStyle.Render(spacedLayout()) + "\n")
	b.WriteString(subtitleStyle.Render("Held: ") + heldKeys(m.keyboard.Held()) + "\n\n")

	b.WriteString(helpStyle.Render("z..m, ,l./: play • 1-9: instrument • ctrl+c/esc: quit"))
	return b.String()
}

// spacedLayout spells out the playable keys
func spacedLayout() string {
	return strings.Join(strings.Split(keys.Layout, ""), " ")
}

// heldKeys names the keys for ids, or a dash when none are down
func heldKeys(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(keys.Layout[id])
	}
	return noteStyle.Render(strings.Join(names, " "))
}

func channelName(e *synth.Engine, ch int) string {
	if inst, ok := e.Renderer(ch).(*synth.Instrument); ok {
		return inst.Name
	}
	return "?"
}

// EnvelopeLevel sums the envelope amplitude of every tracked note at now,
// capped at 1.
func EnvelopeLevel(e *synth.Engine, now float64) float64 {
	var level float64
	for _, n := range e.Notes() {
		if inst, ok := e.Renderer(n.Channel).(*synth.Instrument); ok {
			level += inst.Envelope.Amplitude(now, n.On, n.Off)
		}
	}
	if level > 1 {
		level = 1
	}
	return level
}

// Meter is a level bar that eases towards its target with a damped spring
type Meter struct {
	spring   harmonica.Spring
	pos, vel float64
}

// NewMeter creates a meter tuned for the frame rate.
func NewMeter() Meter {
	return Meter{spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.7)}
}

// Update advances the spring one frame towards target.
func (m *Meter) Update(target float64) {
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, target)
}

// Level is the current meter position.
func (m *Meter) Level() float64 {
	return m.pos
}

// View draws the meter width cells wide.
func (m *Meter) View(width int) string {
	filled := int(m.Level()*float64(width) + 0.5)
	if filled < 0 {
		filled = 0
	} else if filled > width {
		filled = width
	}
	return statusStyle.Render(strings.Repeat("█", filled)) + axisStyle.Render(strings.Repeat("·", width-filled))
}
