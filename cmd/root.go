package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/icco/noisemaker/internal/audio"
	"github.com/icco/noisemaker/internal/synth"
)

var (
	logLevel   string
	logFile    string
	sampleRate int
	gain       float64

	logger  = log.New(io.Discard)
	logSink io.Closer // open --log-file, if any
)

var rootCmd = &cobra.Command{
	Use:   "noisemaker",
	Short: "A small polyphonic synthesizer for the terminal",
	Long: `noisemaker is a real-time synthesizer with a handful of fixed instruments.

Play it from the computer keyboard, drive it from other software through a virtual
MIDI port, or render MIDI files to WAV offline.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "Write logs to this file (interactive commands discard logs otherwise)")
	flags.IntVar(&sampleRate, "sample-rate", audio.DefaultSampleRate, "Output sample rate in Hz")
	flags.Float64Var(&gain, "gain", synth.DefaultGain, "Global output gain applied to the mix")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if sampleRate < 8000 || sampleRate > 192000 {
		return fmt.Errorf("--sample-rate %d outside 8000-192000", sampleRate)
	}
	if gain <= 0 || gain > 1 {
		return fmt.Errorf("--gain %g outside (0, 1]", gain)
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}

	var w io.Writer = os.Stderr
	if cmd.Annotations["interactive"] == "true" {
		w = io.Discard
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		w = f
		logSink = f
	}

	logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          cmd.Name(),
	})
	return nil
}

// teardown closes the log file opened by setup.
func teardown(cmd *cobra.Command, args []string) error {
	if logSink == nil {
		return nil
	}
	err := logSink.Close()
	logSink = nil
	logger = log.New(io.Discard)
	if err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}

func newEngine() *synth.Engine {
	return synth.NewDefaultEngine(synth.WithGain(gain))
}

// channelFor finds the channel the named instrument is bound to.
func channelFor(e *synth.Engine, name string) (int, error) {
	for _, ch := range e.Channels() {
		if inst, ok := e.Renderer(ch).(*synth.Instrument); ok && inst.Name == name {
			return ch, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (have %v)", synth.ErrUnknownInstrument, name, synth.Names())
}
