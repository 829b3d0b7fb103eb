package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/icco/noisemaker/internal/synth"
	"github.com/icco/noisemaker/internal/tui"
)

var (
	showGraph      bool
	waveformFilter string
)

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List the built-in instruments and their channels",
	RunE:  runInstruments,
}

func init() {
	instrumentsCmd.Flags().BoolVarP(&showGraph, "graph", "g", false, "Draw each instrument's waveform")
	instrumentsCmd.Flags().StringVarP(&waveformFilter, "waveform", "w", "", "Only list instruments with a layer of this waveform")
	rootCmd.AddCommand(instrumentsCmd)
}

func runInstruments(cmd *cobra.Command, args []string) error {
	match := func(*synth.Instrument) bool { return true }
	if waveformFilter != "" {
		w, err := synth.ParseWaveform(waveformFilter)
		if err != nil {
			return err
		}
		match = func(inst *synth.Instrument) bool { return usesWaveform(inst, w) }
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, instrumentTable(newEngine(), match))

	if !showGraph {
		return nil
	}
	for _, name := range synth.Names() {
		inst, err := synth.Lookup(name)
		if err != nil {
			return err
		}
		if !match(inst) {
			continue
		}
		fmt.Fprintf(out, "\n%s\n%s\n", name, tui.RenderGraph(inst, 80, 15))
	}
	return nil
}

func usesWaveform(inst *synth.Instrument, w synth.Waveform) bool {
	for _, l := range inst.Layers {
		if l.Waveform == w {
			return true
		}
	}
	return false
}

// instrumentTable renders one row per bound channel whose instrument match
// accepts.
func instrumentTable(e *synth.Engine, match func(*synth.Instrument) bool) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CH", "INSTRUMENT", "GAIN", "ADSR", "LAYERS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, ch := range e.Channels() {
		inst, ok := e.Renderer(ch).(*synth.Instrument)
		if !ok || !match(inst) {
			continue
		}
		env := inst.Envelope
		t.Row(
			strconv.Itoa(ch),
			inst.Name,
			strconv.FormatFloat(e.ChannelGain(ch), 'g', -1, 64),
			fmt.Sprintf("%g/%g/%g/%g", env.Attack, env.Decay, env.Sustain, env.Release),
			describeLayers(inst.Layers),
		)
	}
	return t.Render()
}

func describeLayers(layers []synth.Layer) string {
	parts := make([]string, 0, len(layers))
	for _, l := range layers {
		parts = append(parts, fmt.Sprintf("%s%+d×%g", l.Waveform, l.Offset, l.Weight))
	}
	return strings.Join(parts, " ")
}
