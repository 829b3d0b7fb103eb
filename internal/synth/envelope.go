package synth

import "fmt"

// ADSR is an attack/decay/sustain/release amplitude envelope.
//
// It holds no playback state: the amplitude is recomputed from a note's on
// and off timestamps every time it is asked for. Durations are in seconds.
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64 // level held after decay
	Release float64
	Start   float64 // peak level reached at the end of the attack
}

// DefaultADSR returns a short, full-level envelope.
func DefaultADSR() ADSR {
	return ADSR{
		Attack:  0.1,
		Decay:   0.1,
		Sustain: 1.0,
		Release: 0.2,
		Start:   1.0,
	}
}

// Validate reports parameters that break the envelope's monotonic decay.
func (e ADSR) Validate() error {
	switch {
	case e.Attack < 0, e.Decay < 0, e.Release < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidEnvelope)
	case e.Start < 0:
		return fmt.Errorf("%w: negative start amplitude %g", ErrInvalidEnvelope, e.Start)
	case e.Sustain < 0 || e.Sustain > e.Start:
		return fmt.Errorf("%w: sustain %g outside [0, %g]", ErrInvalidEnvelope, e.Sustain, e.Start)
	}
	return nil
}

// Amplitude returns the envelope level at now for a note switched on at on
// and off at off. The note is held while on > off and releasing otherwise.
// The result is never negative; exactly 0 means the note has died away.
func (e ADSR) Amplitude(now, on, off float64) float64 {
	var amp float64

	if on > off {
		amp = e.held(now - on)
	} else {
		base := e.held(off - on)
		if e.Release > 0 {
			amp = base * (1.0 - (now-off)/e.Release)
		}
	}

	if amp <= 0 {
		return 0
	}
	return amp
}

// held is the attack/decay/sustain curve after life seconds of being held.
func (e ADSR) held(life float64) float64 {
	switch {
	case life <= e.Attack:
		if e.Attack <= 0 {
			return e.Start
		}
		return (life / e.Attack) * e.Start
	case life <= e.Attack+e.Decay:
		return ((life-e.Attack)/e.Decay)*(e.Sustain-e.Start) + e.Start
	default:
		return e.Sustain
	}
}
