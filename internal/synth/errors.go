package synth

import "errors"

var (
	ErrInvalidInstrument = errors.New("invalid instrument")
	ErrInvalidEnvelope   = errors.New("invalid envelope")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrUnknownWaveform   = errors.New("unknown waveform")
)
