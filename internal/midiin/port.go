package midiin

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Port is a virtual MIDI input that other applications can play into
type Port struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
	logger *log.Logger
}

// OpenVirtual creates a virtual input called name and routes every message
// through r. onEvent, if set, is called from the driver's goroutine.
func OpenVirtual(name string, r *Router, onEvent func(Event), logger *log.Logger) (*Port, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}

	in, err := driver.OpenVirtualIn(name)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create virtual MIDI port: %w", err)
	}

	stop, err := in.Listen(func(data []byte, _ int32) {
		if len(data) < 1 {
			return
		}
		ev, ok := r.Handle(midi.Message(data))
		if ok && onEvent != nil {
			onEvent(ev)
		}
	}, drivers.ListenConfig{})
	if err != nil {
		in.Close()
		driver.Close()
		return nil, fmt.Errorf("failed to listen to MIDI port: %w", err)
	}

	logger.Info("virtual MIDI port open", "port", in.String())
	return &Port{driver: driver, in: in, stop: stop, logger: logger}, nil
}

// String returns the port name as the driver reports it.
func (p *Port) String() string {
	return p.in.String()
}

// Close stops listening and releases the driver.
func (p *Port) Close() error {
	p.stop()
	err := p.in.Close()
	if derr := p.driver.Close(); err == nil {
		err = derr
	}
	if err != nil {
		return fmt.Errorf("closing MIDI port: %w", err)
	}
	p.logger.Info("virtual MIDI port closed")
	return nil
}
