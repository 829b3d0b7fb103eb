package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderKeyboard draws two octaves of piano keys starting at note id first,
// which must be a C. Ids in active are highlighted.
func RenderKeyboard(first int, active map[int]bool) string {
	whiteStyle := lipgloss.NewStyle().Background(lipgloss.Color("#FFFFFF")).Foreground(lipgloss.Color("#000000"))
	blackStyle := lipgloss.NewStyle().Background(lipgloss.Color("#000000")).Foreground(lipgloss.Color("#FFFFFF"))
	activeWhite := lipgloss.NewStyle().Background(lipgloss.Color("#00FF00")).Foreground(lipgloss.Color("#000000"))
	activeBlack := lipgloss.NewStyle().Background(lipgloss.Color("#00AA00")).Foreground(lipgloss.Color("#FFFFFF"))

	whiteKeys := []int{0, 2, 4, 5, 7, 9, 11}                       // C D E F G A B
	blackKeys := []int{1, 3, -1, 6, 8, 10}                         // C# D# _ F# G# A#
	blackPos := []bool{true, true, false, true, true, true, false} // which white keys have black keys after

	var top, bottom strings.Builder
	for octave := 0; octave < 2; octave++ {
		base := first + octave*12

		// Top row (black keys)
		for i, hasBlack := range blackPos {
			if hasBlack && blackKeys[i] >= 0 {
				if active[base+blackKeys[i]] {
					top.WriteString(activeBlack.Render("█"))
				} else {
					top.WriteString(blackStyle.Render("█"))
				}
			} else {
				top.WriteString(" ")
			}
			top.WriteString(" ")
		}

		// Bottom row (white keys)
		for _, offset := range whiteKeys {
			if active[base+offset] {
				bottom.WriteString(activeWhite.Render("█"))
			} else {
				bottom.WriteString(whiteStyle.Render("█"))
			}
			bottom.WriteString(" ")
		}
	}

	return top.String() + "\n" + bottom.String()
}
