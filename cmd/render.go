package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/icco/noisemaker/internal/render"
)

var (
	outFile          string
	renderInstrument string
	renderFallback   string
	tailTime         time.Duration
	exportMIDI       string
	demoStep         time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render [file.mid]",
	Short: "Render a MIDI file to WAV",
	Long: `Render a Standard MIDI File to a mono 16-bit WAV file without an audio device.

MIDI channel c plays the instrument bound to channel c+1, or --fallback when
nothing is bound there. Use --instrument to play every note on one instrument.
Without a file a short demo scale is rendered.

Example:
  noisemaker render song.mid --out song.wav --instrument bell
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "output.wav", "WAV file to write")
	renderCmd.Flags().StringVarP(&renderInstrument, "instrument", "i", "", "Play every note on this instrument")
	renderCmd.Flags().StringVar(&renderFallback, "fallback", "bell", "Instrument for MIDI channels without one")
	renderCmd.Flags().DurationVar(&tailTime, "tail", 3*time.Second, "Longest time to render after the last event")
	renderCmd.Flags().StringVar(&exportMIDI, "export-midi", "", "Also write the rendered events to this MIDI file")
	renderCmd.Flags().DurationVar(&demoStep, "step", 250*time.Millisecond, "Note length of the demo scale")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	engine := newEngine()

	var events []render.Event
	source := "demo"
	if len(args) == 1 {
		source = args[0]
		var err error
		if events, err = render.LoadSMF(source); err != nil {
			return err
		}
	} else {
		if demoStep <= 0 {
			return fmt.Errorf("--step must be positive")
		}
		channel, err := channelFor(engine, "harmonica")
		if err != nil {
			return err
		}
		events = render.Demo(channel, demoStep.Seconds())
	}

	if renderInstrument != "" {
		channel, err := channelFor(engine, renderInstrument)
		if err != nil {
			return err
		}
		events = render.OnChannel(events, channel)
	} else {
		fallback, err := channelFor(engine, renderFallback)
		if err != nil {
			return err
		}
		events = render.WithFallback(events, engine.Bound, fallback)
	}

	if exportMIDI != "" {
		if err := render.WriteSMF(exportMIDI, events, 120); err != nil {
			return err
		}
		logger.Info("wrote MIDI", "path", exportMIDI, "events", len(events))
	}

	start := time.Now()
	samples := render.Render(engine, events, sampleRate, tailTime.Seconds())
	if err := render.WriteWAV(outFile, samples, sampleRate); err != nil {
		return err
	}

	logger.Info("rendered",
		"source", source,
		"out", outFile,
		"events", len(events),
		"seconds", fmt.Sprintf("%.2f", float64(len(samples))/float64(sampleRate)),
		"peak", fmt.Sprintf("%.3f", render.Peak(samples)),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
