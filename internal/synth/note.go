package synth

import "math"

// NeverReleased is the Off time of a note that has not been let go yet.
var NeverReleased = math.Inf(-1)

// Note is one tracked key press. Times are seconds on the synthesis clock.
type Note struct {
	ID      int
	On      float64
	Off     float64
	Active  bool
	Channel int
}

// Sounding reports whether the note is in its attack, decay or sustain stage.
func (n Note) Sounding() bool {
	return n.On > n.Off
}

// Releasing reports whether the note has been let go since its last press.
func (n Note) Releasing() bool {
	return !n.Sounding()
}
