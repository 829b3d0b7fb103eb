package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Waveform selects the shape produced by Oscillate
type Waveform int

const (
	Sine Waveform = iota
	Square
	Triangle
	SawAnalogue
	SawDigital
	Noise
)

const (
	// DefaultHarmonics is the partial count used by SawAnalogue when a layer doesn't set one
	DefaultHarmonics = 50
	// MaxHarmonics bounds the additive saw so a single sample stays cheap
	MaxHarmonics = 256
)

var waveformNames = map[Waveform]string{
	Sine:        "sine",
	Square:      "square",
	Triangle:    "triangle",
	SawAnalogue: "saw-analogue",
	SawDigital:  "saw-digital",
	Noise:       "noise",
}

func (w Waveform) String() string {
	if name, ok := waveformNames[w]; ok {
		return name
	}
	return fmt.Sprintf("waveform(%d)", int(w))
}

// ParseWaveform looks a waveform up by the name String returns.
func ParseWaveform(name string) (Waveform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for w, n := range waveformNames {
		if n == name {
			return w, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWaveform, name)
}

// LFO frequency-modulates a carrier. Amplitude is scaled by the carrier
// frequency, so 0.001 is a shallow vibrato at any pitch.
type LFO struct {
	Hz        float64
	Amplitude float64
}

// angular converts Hz to radians per second
func angular(hz float64) float64 {
	return hz * 2.0 * math.Pi
}

// Oscillate returns the instantaneous value of waveform w at time t.
//
// harmonics only applies to SawAnalogue; values <= 0 select DefaultHarmonics
// and values above MaxHarmonics are clamped. Unknown waveforms yield 0.
func Oscillate(t, hz float64, w Waveform, lfo LFO, harmonics int) float64 {
	phase := angular(hz)*t + lfo.Amplitude*hz*math.Sin(angular(lfo.Hz)*t)

	switch w {
	case Sine:
		return math.Sin(phase)

	case Square:
		if math.Sin(phase) > 0 {
			return 1.0
		}
		return -1.0

	case Triangle:
		return math.Asin(math.Sin(phase)) * (2.0 / math.Pi)

	case SawAnalogue:
		if harmonics <= 0 {
			harmonics = DefaultHarmonics
		} else if harmonics > MaxHarmonics {
			harmonics = MaxHarmonics
		}
		var out float64
		for n := 1; n < harmonics; n++ {
			fn := float64(n)
			out += math.Sin(fn*phase) / fn
		}
		return out * (2.0 / math.Pi)

	case SawDigital:
		if hz <= 0 {
			return 0
		}
		return (2.0 / math.Pi) * (hz*math.Pi*math.Mod(t, 1.0/hz) - math.Pi/2.0)

	case Noise:
		return 2.0*rand.Float64() - 1.0

	default:
		return 0.0
	}
}
