package leds

import (
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIOSink drives real LED pins through periph.io. Pins are resolved and
// set to output-low once, at construction.
type GPIOSink struct {
	mu   sync.Mutex
	pins map[int]gpio.PinIO
}

func NewGPIOSink(pins []int) (*GPIOSink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio host init: %w", err)
	}
	m := make(map[int]gpio.PinIO, len(pins))
	for _, n := range pins {
		p := gpioreg.ByName(strconv.Itoa(n))
		if p == nil {
			return nil, fmt.Errorf("gpio pin %d not found", n)
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("gpio pin %d: %w", n, err)
		}
		m[n] = p
	}
	return &GPIOSink{pins: m}, nil
}

func (s *GPIOSink) Set(pin int, on bool) error {
	s.mu.Lock()
	p, ok := s.pins[pin]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("gpio pin %d not registered", pin)
	}
	return p.Out(gpio.Level(on))
}

// Close lights everything down.
func (s *GPIOSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for n, p := range s.pins {
		if err := p.Out(gpio.Low); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("gpio pin %d: %w", n, err)
		}
	}
	return firstErr
}
