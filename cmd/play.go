package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/icco/noisemaker/internal/audio"
	"github.com/icco/noisemaker/internal/keys"
	"github.com/icco/noisemaker/internal/tui"
)

var (
	playInstrument string
	holdTime       time.Duration
	pollRate       int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the synth from the computer keyboard",
	Long: `Play the synth from the computer keyboard.

The bottom two letter rows are a piano: z s x c f v g b n j m k , l . /
Number keys switch between instruments.

Terminals don't report key releases, so a key is held until --hold passes without
an autorepeat from it.`,
	Annotations: map[string]string{"interactive": "true"},
	RunE:        runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playInstrument, "instrument", "i", "harmonica", "Instrument to start with")
	playCmd.Flags().DurationVar(&holdTime, "hold", keys.DefaultHold, "How long a key counts as held after its last press")
	playCmd.Flags().IntVar(&pollRate, "poll-rate", 50, "Keyboard polling rate in Hz")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if pollRate <= 0 || pollRate > 1000 {
		return fmt.Errorf("--poll-rate %d outside 1-1000", pollRate)
	}

	engine := newEngine()
	channel, err := channelFor(engine, playInstrument)
	if err != nil {
		return err
	}

	player, err := audio.NewPlayer(engine, sampleRate, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}
	defer func() {
		if err := player.Close(); err != nil {
			logger.Error("closing audio", "err", err)
		}
	}()

	kb := keys.New(engine, player, channel, holdTime)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go kb.Run(ctx, time.Second/time.Duration(pollRate))

	p := tea.NewProgram(tui.NewPlayModel(engine, kb, player), tea.WithAltScreen())

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			p.Send(tea.Quit())
		case <-ctx.Done():
		}
	}()

	logger.Info("playing", "instrument", playInstrument, "channel", channel, "hold", holdTime)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	engine.AllNotesOff(player.Time())
	return nil
}
