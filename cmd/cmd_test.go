package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/icco/noisemaker/internal/synth"
)

func TestChannelFor(t *testing.T) {
	e := synth.NewDefaultEngine()

	tests := []struct {
		name string
		want int
	}{
		{"harmonica", synth.ChannelHarmonica},
		{"bell", synth.ChannelBell},
		{"bell8", synth.ChannelBell8},
	}
	for _, tt := range tests {
		got, err := channelFor(e, tt.name)
		if err != nil {
			t.Fatalf("channelFor(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("channelFor(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	if _, err := channelFor(e, "kazoo"); !errors.Is(err, synth.ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestSetupValidatesFlags(t *testing.T) {
	defer func(sr int, g float64, lvl string) {
		sampleRate, gain, logLevel = sr, g, lvl
	}(sampleRate, gain, logLevel)

	cmd := &cobra.Command{Use: "test"}
	tests := []struct {
		sampleRate int
		gain       float64
		level      string
		ok         bool
	}{
		{44100, 0.2, "info", true},
		{44100, 0.2, "debug", true},
		{100, 0.2, "info", false},
		{44100, 0, "info", false},
		{44100, 1.5, "info", false},
		{44100, 0.2, "loud", false},
	}
	for _, tt := range tests {
		sampleRate, gain, logLevel = tt.sampleRate, tt.gain, tt.level
		err := setup(cmd, nil)
		if (err == nil) != tt.ok {
			t.Errorf("setup(sr=%d gain=%g level=%s) error = %v, want ok=%v", tt.sampleRate, tt.gain, tt.level, err, tt.ok)
		}
	}
}

func TestInstrumentTable(t *testing.T) {
	all := func(*synth.Instrument) bool { return true }
	out := instrumentTable(synth.NewDefaultEngine(), all)
	for _, want := range []string{"harmonica", "bell8", "0.5", "square+0×1", "noise+24×0.05"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	noise := func(inst *synth.Instrument) bool { return usesWaveform(inst, synth.Noise) }
	out = instrumentTable(synth.NewDefaultEngine(), noise)
	if !strings.Contains(out, "harmonica") || strings.Contains(out, "bell") {
		t.Errorf("noise filter kept the wrong rows:\n%s", out)
	}
}

func TestInstrumentsWaveformFlag(t *testing.T) {
	defer func() { waveformFilter = "" }()

	var out strings.Builder
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"instruments", "--waveform", "SQUARE"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("instruments: %v", err)
	}
	if !strings.Contains(out.String(), "harmonica") || !strings.Contains(out.String(), "bell8") {
		t.Fatalf("square instruments missing:\n%s", out.String())
	}
	if strings.Contains(out.String(), "│ bell ") {
		t.Fatalf("sine-only bell listed:\n%s", out.String())
	}

	rootCmd.SetArgs([]string{"instruments", "--waveform", "kazoo"})
	if err := rootCmd.Execute(); !errors.Is(err, synth.ErrUnknownWaveform) {
		t.Fatalf("expected ErrUnknownWaveform, got %v", err)
	}
}

func TestRenderCommandWritesWAV(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "demo.wav")
	mid := filepath.Join(dir, "demo.mid")
	defer func() { exportMIDI = "" }()

	rootCmd.SetArgs([]string{"render", "--out", out, "--export-midi", mid, "--step", "50ms", "--tail", "1s", "--sample-rate", "8000"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, path := range []string{out, mid} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}

func TestLogFileClosedAfterRun(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "noisemaker.log")
	defer func() { logFile = "" }()

	rootCmd.SetArgs([]string{"render", "--out", filepath.Join(dir, "demo.wav"), "--step", "20ms", "--tail", "0.5s",
		"--sample-rate", "8000", "--log-file", logPath, "--export-midi="})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if logSink != nil {
		t.Fatal("log file left open after the command finished")
	}

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(b), "rendered") {
		t.Fatalf("log missing render summary:\n%s", b)
	}
}
