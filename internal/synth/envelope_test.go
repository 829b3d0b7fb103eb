package synth

import (
	"errors"
	"math"
	"testing"
)

func TestEnvelopeAttackDecaySustain(t *testing.T) {
	env := ADSR{Attack: 0.1, Decay: 0.2, Sustain: 0.6, Release: 0.5, Start: 1.0}
	on, off := 1.0, NeverReleased

	tests := []struct {
		name string
		now  float64
		want float64
	}{
		{"before on", 0.5, 0},
		{"at on", 1.0, 0},
		{"mid attack", 1.05, 0.5},
		{"peak", 1.1, 1.0},
		{"mid decay", 1.2, 0.8},
		{"sustain", 5.0, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := env.Amplitude(tt.now, on, off); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Amplitude(%f) = %f, want %f", tt.now, got, tt.want)
			}
		})
	}
}

func TestEnvelopeContinuousAtStageBoundaries(t *testing.T) {
	env := ADSR{Attack: 0.05, Decay: 1.0, Sustain: 0.3, Release: 0.1, Start: 1.0}
	const eps = 1e-9

	for _, edge := range []float64{env.Attack, env.Attack + env.Decay} {
		before := env.Amplitude(edge, 0, NeverReleased)
		after := env.Amplitude(edge+eps, 0, NeverReleased)
		if math.Abs(before-after) > 1e-6 {
			t.Errorf("jump at %f: %f -> %f", edge, before, after)
		}
		if after > before+1e-12 {
			t.Errorf("amplitude increased across %f: %f -> %f", edge, before, after)
		}
	}
}

func TestEnvelopeReleaseMonotonic(t *testing.T) {
	env := ADSR{Attack: 0.01, Decay: 0.5, Sustain: 0.8, Release: 1.0, Start: 1.0}
	on, off := 0.0, 2.0

	prev := env.Amplitude(off, on, off)
	if math.Abs(prev-0.8) > 1e-9 {
		t.Fatalf("release baseline = %f, want 0.8", prev)
	}
	for i := 1; i <= 1200; i++ {
		now := off + float64(i)*0.001
		amp := env.Amplitude(now, on, off)
		if amp > prev {
			t.Fatalf("release rose at %f: %f -> %f", now, prev, amp)
		}
		prev = amp
	}
	if got := env.Amplitude(off+env.Release, on, off); got != 0 {
		t.Fatalf("amplitude at end of release = %f, want 0", got)
	}
}

func TestEnvelopeReleaseDuringAttack(t *testing.T) {
	env := ADSR{Attack: 1.0, Decay: 1.0, Sustain: 0.5, Release: 1.0, Start: 1.0}
	// let go half way up the attack ramp
	if got := env.Amplitude(0.5, 0, 0.5); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("baseline = %f, want 0.5", got)
	}
	if got := env.Amplitude(1.0, 0, 0.5); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("half way through release = %f, want 0.25", got)
	}
}

func TestEnvelopeZeroLengthStages(t *testing.T) {
	env := ADSR{Start: 1.0, Sustain: 0.5}
	if got := env.Amplitude(0, 0, NeverReleased); got != 1.0 {
		t.Fatalf("instant attack = %f, want 1", got)
	}
	if got := env.Amplitude(0.1, 0, NeverReleased); got != 0.5 {
		t.Fatalf("instant decay = %f, want 0.5", got)
	}
	if got := env.Amplitude(1.0, 0, 1.0); got != 0 {
		t.Fatalf("instant release = %f, want 0", got)
	}
}

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name string
		env  ADSR
		ok   bool
	}{
		{"default", DefaultADSR(), true},
		{"zero sustain", ADSR{Attack: 0.1, Decay: 0.1, Release: 0.1, Start: 1}, true},
		{"negative attack", ADSR{Attack: -1, Start: 1}, false},
		{"negative release", ADSR{Release: -0.1, Start: 1}, false},
		{"sustain above start", ADSR{Sustain: 1.2, Start: 1}, false},
		{"negative start", ADSR{Start: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidEnvelope) {
				t.Fatalf("expected ErrInvalidEnvelope, got %v", err)
			}
		})
	}
}
