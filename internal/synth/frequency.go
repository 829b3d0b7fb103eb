// Package synth is the signal-generation core: oscillators, envelopes,
// instruments and the note registry the audio callback mixes from.
package synth

import (
	"fmt"
	"math"
)

const (
	// BaseFrequency is the pitch of note id 0 in Hz
	BaseFrequency  = 256.0
	notesPerOctave = 12
)

// semitone is the twelfth root of two
var semitone = math.Pow(2.0, 1.0/notesPerOctave)

// Frequency converts a note id to Hz using equal temperament around BaseFrequency.
func Frequency(id int) float64 {
	return BaseFrequency * math.Pow(semitone, float64(id))
}

// NoteName returns a human readable name for a note id. Id 0 is treated as
// middle C, which is the closest tempered pitch to BaseFrequency.
func NoteName(id int) string {
	names := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	pc := ((id % notesPerOctave) + notesPerOctave) % notesPerOctave
	octave := 4 + int(math.Floor(float64(id)/notesPerOctave))
	return fmt.Sprintf("%s%d", names[pc], octave)
}
