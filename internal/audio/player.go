// Package audio streams a sample source to the system audio output
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

const (
	DefaultSampleRate = 44100
	channelCount      = 2 // stereo
	bitDepth          = 2 // 16-bit
	bufferSize        = 40 * time.Millisecond
)

// SampleSource produces one mono sample for a point on the synthesis clock
type SampleSource interface {
	RenderSample(now float64) float64
}

// stream implements io.Reader for continuous audio generation. It owns the
// synthesis clock: time advances by one sample period per frame read, and
// between reads it follows the wall clock up to the end of the last chunk.
type stream struct {
	src        SampleSource
	sampleRate int
	now        func() time.Time

	mu     sync.Mutex
	frames int64     // frames rendered so far
	chunk  int64     // frames in the last read
	readAt time.Time // when the last read finished
	last   float64   // last time handed out
}

func newStream(src SampleSource, sampleRate int) *stream {
	return &stream{src: src, sampleRate: sampleRate, now: time.Now}
}

func (s *stream) Read(buf []byte) (int, error) {
	frameSize := channelCount * bitDepth
	numFrames := len(buf) / frameSize

	s.mu.Lock()
	start := s.frames
	s.mu.Unlock()

	for i := 0; i < numFrames; i++ {
		now := float64(start+int64(i)) / float64(s.sampleRate)
		sample := s.src.RenderSample(now)

		// Clip
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}

		// Convert to 16-bit signed integer
		sampleInt := int16(sample * 32767)

		// Write stereo samples (same for L and R)
		idx := i * frameSize
		buf[idx] = byte(sampleInt)
		buf[idx+1] = byte(sampleInt >> 8)
		buf[idx+2] = byte(sampleInt)
		buf[idx+3] = byte(sampleInt >> 8)
	}

	s.mu.Lock()
	s.frames = start + int64(numFrames)
	s.chunk = int64(numFrames)
	s.readAt = s.now()
	s.mu.Unlock()

	return numFrames * frameSize, nil
}

// Time returns the clock position in seconds. Every call returns a later
// time than the call before it, so a note-on and note-off stamped during the
// same buffer never coincide.
func (s *stream) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := float64(s.frames) / float64(s.sampleRate)
	if !s.readAt.IsZero() {
		elapsed := s.now().Sub(s.readAt).Seconds()
		span := float64(s.chunk) / float64(s.sampleRate)
		t += math.Min(math.Max(elapsed, 0), span)
	}
	if t <= s.last {
		t = math.Nextafter(s.last, math.Inf(1))
	}
	s.last = t
	return t
}

// Player plays a SampleSource through the default output device
type Player struct {
	otoCtx *oto.Context
	player *oto.Player
	stream *stream
	logger *log.Logger
}

// NewPlayer opens the audio device and starts pulling samples from src.
func NewPlayer(src SampleSource, sampleRate int, logger *log.Logger) (*Player, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-readyChan

	p := &Player{
		otoCtx: otoCtx,
		stream: newStream(src, sampleRate),
		logger: logger,
	}

	// Start the audio stream
	p.player = otoCtx.NewPlayer(p.stream)
	p.player.Play()
	logger.Info("audio started", "sample_rate", sampleRate, "buffer", bufferSize)

	return p, nil
}

// Time returns seconds of audio rendered so far. Input handlers stamp note
// events with it so they line up with the samples being produced.
func (p *Player) Time() float64 {
	return p.stream.Time()
}

// Close stops playback.
func (p *Player) Close() error {
	p.player.Pause()
	if err := p.player.Err(); err != nil {
		return fmt.Errorf("audio player: %w", err)
	}
	p.logger.Info("audio stopped", "seconds", p.Time())
	return nil
}
