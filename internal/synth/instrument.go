package synth

import (
	"fmt"
	"sort"
	"strings"
)

// maxLayers is the number of oscillators an Instrument can stack
const maxLayers = 3

// Renderer turns a tracked note into an amplitude at a point in time.
// finished reports that the note's envelope has decayed to silence.
type Renderer interface {
	Render(now float64, n Note) (amp float64, finished bool)
}

// Layer is one oscillator in an instrument's stack
type Layer struct {
	Offset    int // semitones added to the note id
	Waveform  Waveform
	LFO       LFO
	Weight    float64 // mix weight relative to the other layers
	Harmonics int     // SawAnalogue partials, 0 for the default
}

// Instrument mixes up to three layered oscillators under a shared envelope.
// Every fixed instrument is the same type with different data.
type Instrument struct {
	Name     string
	Layers   []Layer
	Envelope ADSR
	Volume   float64
}

// NewInstrument validates and builds an instrument. A zero envelope is
// replaced by DefaultADSR.
func NewInstrument(name string, env ADSR, volume float64, layers ...Layer) (*Instrument, error) {
	if env == (ADSR{}) {
		env = DefaultADSR()
	}
	if len(layers) == 0 || len(layers) > maxLayers {
		return nil, fmt.Errorf("%w: %s has %d layers, want 1-%d", ErrInvalidInstrument, name, len(layers), maxLayers)
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInstrument, name, err)
	}
	if volume < 0 {
		return nil, fmt.Errorf("%w: %s: negative volume %g", ErrInvalidInstrument, name, volume)
	}
	for i, l := range layers {
		if l.Harmonics < 0 || l.Harmonics > MaxHarmonics {
			return nil, fmt.Errorf("%w: %s layer %d: harmonics %d outside [0, %d]",
				ErrInvalidInstrument, name, i, l.Harmonics, MaxHarmonics)
		}
		if _, ok := waveformNames[l.Waveform]; !ok {
			return nil, fmt.Errorf("%w: %s layer %d: %w", ErrInvalidInstrument, name, i, ErrUnknownWaveform)
		}
	}

	return &Instrument{
		Name:     name,
		Layers:   append([]Layer(nil), layers...),
		Envelope: env,
		Volume:   volume,
	}, nil
}

// Render implements Renderer.
func (inst *Instrument) Render(now float64, n Note) (float64, bool) {
	amp := inst.Envelope.Amplitude(now, n.On, n.Off)
	finished := amp <= 0

	// Phase time runs from the note-on backwards so each press starts
	// every layer at the same phase.
	t := n.On - now

	var sound float64
	for _, l := range inst.Layers {
		sound += l.Weight * Oscillate(t, Frequency(n.ID+l.Offset), l.Waveform, l.LFO, l.Harmonics)
	}

	return amp * sound * inst.Volume, finished
}

// Waveform samples the instrument's raw timbre for note id 0 at width evenly
// spaced points across span seconds. The envelope is not applied.
func (inst *Instrument) Waveform(width int, span float64) []float64 {
	if width <= 0 {
		return nil
	}
	out := make([]float64, width)
	for i := range out {
		t := span * float64(i) / float64(width)
		var v float64
		for _, l := range inst.Layers {
			v += l.Weight * Oscillate(t, Frequency(l.Offset), l.Waveform, l.LFO, l.Harmonics)
		}
		out[i] = v
	}
	return out
}

var vibrato = LFO{Hz: 5.0, Amplitude: 0.001}

// Bell is a decaying stack of sine octaves with a slight vibrato on the root.
func Bell() *Instrument {
	return mustInstrument("bell",
		ADSR{Attack: 0.01, Decay: 1.0, Sustain: 0.0, Release: 1.0, Start: 1.0},
		1.0,
		Layer{Offset: 0, Waveform: Sine, LFO: vibrato, Weight: 1.0},
		Layer{Offset: 12, Waveform: Sine, Weight: 0.5},
		Layer{Offset: 24, Waveform: Sine, Weight: 0.25},
	)
}

// Bell8 is a brighter bell with a square root and a high sustain.
func Bell8() *Instrument {
	return mustInstrument("bell8",
		ADSR{Attack: 0.01, Decay: 0.5, Sustain: 0.8, Release: 1.0, Start: 1.0},
		1.0,
		Layer{Offset: 0, Waveform: Square, LFO: vibrato, Weight: 1.0},
		Layer{Offset: 12, Waveform: Sine, Weight: 0.5},
		Layer{Offset: 24, Waveform: Sine, Weight: 0.25},
	)
}

// Harmonica layers two squares an octave apart over a little breath noise.
func Harmonica() *Instrument {
	return mustInstrument("harmonica",
		ADSR{Attack: 0.05, Decay: 1.0, Sustain: 0.95, Release: 0.1, Start: 1.0},
		1.0,
		Layer{Offset: 0, Waveform: Square, LFO: vibrato, Weight: 1.0},
		Layer{Offset: 12, Waveform: Square, Weight: 0.5},
		Layer{Offset: 24, Waveform: Noise, Weight: 0.05},
	)
}

func mustInstrument(name string, env ADSR, volume float64, layers ...Layer) *Instrument {
	inst, err := NewInstrument(name, env, volume, layers...)
	if err != nil {
		panic(err)
	}
	return inst
}

var builtin = map[string]func() *Instrument{
	"bell":      Bell,
	"bell8":     Bell8,
	"harmonica": Harmonica,
}

// Lookup returns a fresh copy of a fixed instrument by name.
func Lookup(name string) (*Instrument, error) {
	build, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownInstrument, name, strings.Join(Names(), ", "))
	}
	return build(), nil
}

// Names lists the fixed instruments in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
