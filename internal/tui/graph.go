package tui

import (
	"math"
	"strings"

	"github.com/icco/noisemaker/internal/synth"
)

const (
	graphWidth  = 100
	graphHeight = 30
	graphCycles = 4
)

// RenderGraph plots a few cycles of an instrument's raw timbre as an ASCII
// chart. The middle row is the zero line.
func RenderGraph(inst *synth.Instrument, width, height int) string {
	if inst == nil || width <= 0 || height <= 0 {
		return ""
	}

	chart := make([][]rune, height)
	for y := range chart {
		fill := ' '
		if y == height/2 {
			fill = '-'
		}
		chart[y] = []rune(strings.Repeat(string(fill), width))
	}

	var limit float64
	for _, l := range inst.Layers {
		limit += math.Abs(l.Weight)
	}
	if limit == 0 {
		limit = 1
	}

	span := graphCycles / synth.Frequency(0)
	for x, v := range inst.Waveform(width, span) {
		v = math.Max(-1, math.Min(1, v/limit))
		y := int(math.Round((1 - v) / 2 * float64(height-1)))
		chart[y][x] = 'x'
	}

	lines := make([]string, height)
	for y, row := range chart {
		line := string(row)
		if y == height/2 {
			lines[y] = axisStyle.Render(line)
			continue
		}
		lines[y] = graphStyle.Render(line)
	}
	return strings.Join(lines, "\n")
}
