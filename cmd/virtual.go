package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/icco/noisemaker/internal/audio"
	"github.com/icco/noisemaker/internal/midiin"
	"github.com/icco/noisemaker/internal/synth"
	"github.com/icco/noisemaker/internal/tui"
)

var (
	deviceName        string
	virtualInstrument string
)

var virtualCmd = &cobra.Command{
	Use:   "virtual",
	Short: "Create a virtual MIDI device with audio output",
	Long: `Create a virtual MIDI input device that can receive MIDI commands from other applications.

The virtual device will show up as a MIDI output destination in other music software.
MIDI channels 1-3 play the harmonica, bell and bell8; every other channel plays
--instrument. Middle C (key 60) sounds at 256 Hz.

Example:
  noisemaker virtual --name "My Synth"
`,
	Annotations: map[string]string{"interactive": "true"},
	RunE:        runVirtual,
}

func init() {
	virtualCmd.Flags().StringVarP(&deviceName, "name", "n", "Noisemaker Virtual Synth", "Name for the virtual MIDI device")
	virtualCmd.Flags().StringVarP(&virtualInstrument, "instrument", "i", "bell", "Instrument for MIDI channels without one")
	rootCmd.AddCommand(virtualCmd)
}

func runVirtual(cmd *cobra.Command, args []string) error {
	engine := newEngine()
	fallback, err := channelFor(engine, virtualInstrument)
	if err != nil {
		return err
	}

	m := newVirtualModel(deviceName, engine, fallback)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p // Store reference so MIDI callback can send messages

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		<-c
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return m.err
}

const maxMessageHistory = 20

// virtualModel represents the TUI state for the virtual MIDI device
type virtualModel struct {
	deviceName     string
	engine         *synth.Engine
	fallback       int
	player         *audio.Player
	port           *midiin.Port
	messageHistory []string // Historical log of MIDI messages
	messageCount   int
	err            error
	program        *tea.Program // Reference to send messages from MIDI callback
}

// midiEventMsg is sent when the router acts on a MIDI message
type midiEventMsg midiin.Event

type initResultMsg struct {
	player *audio.Player
	port   *midiin.Port
	err    error
}

func newVirtualModel(name string, engine *synth.Engine, fallback int) *virtualModel {
	return &virtualModel{
		deviceName:     name,
		engine:         engine,
		fallback:       fallback,
		messageHistory: make([]string, 0, maxMessageHistory),
	}
}

func (m *virtualModel) Init() tea.Cmd {
	return m.initMIDI
}

func (m *virtualModel) initMIDI() tea.Msg {
	player, err := audio.NewPlayer(m.engine, sampleRate, logger)
	if err != nil {
		return initResultMsg{err: fmt.Errorf("failed to initialize audio: %w", err)}
	}

	router := midiin.NewRouter(m.engine, player, m.fallback, logger)
	port, err := midiin.OpenVirtual(m.deviceName, router, func(ev midiin.Event) {
		if m.program != nil {
			m.program.Send(midiEventMsg(ev))
		}
	}, logger)
	if err != nil {
		_ = player.Close()
		return initResultMsg{err: err}
	}

	return initResultMsg{player: player, port: port}
}

func (m *virtualModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case initResultMsg:
		if msg.err != nil {
			m.err = msg.err
			logger.Error("virtual device failed", "err", msg.err)
			return m, nil
		}
		m.player = msg.player
		m.port = msg.port
		return m, nil

	case midiEventMsg:
		m.handleMIDIEvent(midiin.Event(msg))
		m.messageCount++
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, m.cleanup
		}
	}

	return m, nil
}

func (m *virtualModel) handleMIDIEvent(ev midiin.Event) {
	message := ev.String()

	// Add to history (keep most recent at top)
	m.messageHistory = append([]string{message}, m.messageHistory...)
	if len(m.messageHistory) > maxMessageHistory {
		m.messageHistory = m.messageHistory[:maxMessageHistory]
	}
}

func (m *virtualModel) cleanup() tea.Msg {
	if m.port != nil {
		if err := m.port.Close(); err != nil {
			logger.Error("closing MIDI port", "err", err)
		}
	}
	if m.player != nil {
		m.engine.AllNotesOff(m.player.Time())
		if err := m.player.Close(); err != nil {
			logger.Error("closing audio", "err", err)
		}
	}
	return tea.Quit()
}

func (m *virtualModel) View() string {
	var b strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888"))

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00FF00")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF0000")).
		Bold(true)

	noteStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFD700"))

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#626262"))

	// Title
	b.WriteString(titleStyle.Render("NOISEMAKER Virtual MIDI Synth") + "\n\n")

	// Error display
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
		b.WriteString(helpStyle.Render("Press q to quit"))
		return b.String()
	}

	// Device info
	b.WriteString(subtitleStyle.Render("Device Name: ") + m.deviceName + "\n")
	if m.port != nil {
		b.WriteString(subtitleStyle.Render("MIDI Port: ") + statusStyle.Render(m.port.String()) + "\n")
	} else {
		b.WriteString(subtitleStyle.Render("MIDI Port: ") + "Initializing...\n")
	}
	b.WriteString(subtitleStyle.Render("Fallback: ") + fmt.Sprintf("channel %d\n\n", m.fallback))

	// Active notes display
	notes := m.engine.Notes()
	active := make(map[int]bool, len(notes))
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Active Notes: %d", m.engine.ActiveNoteCount())) + "\n")
	if len(notes) == 0 {
		b.WriteString("  (no notes playing)\n")
	} else {
		notesList := make([]string, 0, len(notes))
		for _, n := range notes {
			if n.Sounding() {
				active[n.ID] = true
			}
			notesList = append(notesList, fmt.Sprintf("Ch%d:%s", n.Channel, synth.NoteName(n.ID)))
		}
		b.WriteString("  " + noteStyle.Render(strings.Join(notesList, " ")) + "\n")
	}

	// Message history log
	b.WriteString("\n" + subtitleStyle.Render(fmt.Sprintf("Message Log: [%d total]", m.messageCount)) + "\n")

	logStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	logHighlightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))

	if len(m.messageHistory) == 0 {
		b.WriteString("  " + logStyle.Render("(waiting for input)") + "\n")
	} else {
		// Show up to 10 most recent messages
		displayCount := min(len(m.messageHistory), 10)
		for i := 0; i < displayCount; i++ {
			msg := m.messageHistory[i]
			if i == 0 {
				// Most recent message highlighted
				b.WriteString("  " + logHighlightStyle.Render("▶ "+msg) + "\n")
			} else {
				b.WriteString("  " + logStyle.Render("  "+msg) + "\n")
			}
		}
	}

	// Keyboard visualization, C3 to B4
	b.WriteString("\n" + tui.RenderKeyboard(-12, active) + "\n")

	// Help
	b.WriteString("\n" + helpStyle.Render("q/ctrl+c: quit"))

	return b.String()
}
