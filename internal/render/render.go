package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// NoteSink is the part of synth.Engine the renderer drives
type NoteSink interface {
	NoteEvent(id int, pressed bool, now float64, channel int)
	RenderSample(now float64) float64
	ActiveNoteCount() int
}

// Render plays sorted events through e and returns mono samples. Rendering
// continues for tail seconds after the last event, or stops earlier once
// every note has died away.
func Render(e NoteSink, events []Event, sampleRate int, tail float64) []float32 {
	if sampleRate <= 0 {
		return nil
	}

	var end float64
	if len(events) > 0 {
		end = events[len(events)-1].Time
	}
	total := int(math.Ceil((end + tail) * float64(sampleRate)))
	samples := make([]float32, 0, total)

	next := 0
	for i := 0; i < total; i++ {
		now := float64(i) / float64(sampleRate)
		for next < len(events) && events[next].Time <= now {
			ev := events[next]
			e.NoteEvent(ev.ID, ev.Pressed, ev.Time, ev.Channel)
			next++
		}

		samples = append(samples, float32(clip(e.RenderSample(now))))

		if next == len(events) && now >= end && e.ActiveNoteCount() == 0 {
			break
		}
	}
	return samples
}

func clip(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// WriteWAV writes mono samples as 16-bit PCM.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	return peak
}
