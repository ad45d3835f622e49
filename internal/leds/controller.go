package leds

import (
	"log"
	"math"
	"time"
)

// Signal selects one of the two indicators wired per vote value.
type Signal int

const (
	Valid Signal = iota
	Invalid
)

func (s Signal) String() string {
	if s == Valid {
		return "valid"
	}
	return "invalid"
}

// Sink is the pin-toggle capability behind the controller.
// Implementations must be safe for concurrent use: during the vote phase
// every reader's callback may drive its own value's LEDs at the same time.
type Sink interface {
	Set(pin int, on bool) error
}

// Pins holds the LED pins wired for one vote value. Either may be absent;
// partial wiring is legal and turns the matching operations into no-ops.
type Pins struct {
	Valid   *int `yaml:"valid"`
	Invalid *int `yaml:"invalid"`
}

// Controller maps vote values to their valid/invalid indicators.
type Controller struct {
	sink Sink
	pins map[string]Pins
}

func NewController(sink Sink, pins map[string]Pins) *Controller {
	m := make(map[string]Pins, len(pins))
	for v, p := range pins {
		m[v] = p
	}
	return &Controller{sink: sink, pins: m}
}

func (c *Controller) pin(value string, sig Signal) (int, bool) {
	p, ok := c.pins[value]
	if !ok {
		return 0, false
	}
	switch sig {
	case Valid:
		if p.Valid == nil {
			return 0, false
		}
		return *p.Valid, true
	default:
		if p.Invalid == nil {
			return 0, false
		}
		return *p.Invalid, true
	}
}

func (c *Controller) set(pin int, on bool) {
	if err := c.sink.Set(pin, on); err != nil {
		log.Printf("[leds] pin %d: %v", pin, err)
	}
}

// Set drives one signal of one value to a steady state. No-op when the
// signal is not wired for that value.
func (c *Controller) Set(value string, sig Signal, on bool) {
	if pin, ok := c.pin(value, sig); ok {
		c.set(pin, on)
	}
}

func (c *Controller) Valid(value string, on bool)   { c.Set(value, Valid, on) }
func (c *Controller) Invalid(value string, on bool) { c.Set(value, Invalid, on) }

// Blink toggles a signal for roughly duration, one flip per period, and
// always leaves it off. Callers wanting a steady end state re-assert it
// right after. Blocking, like the rest of the controller.
func (c *Controller) Blink(value string, sig Signal, duration, period time.Duration) {
	pin, ok := c.pin(value, sig)
	if !ok {
		return
	}
	if period <= 0 {
		period = 300 * time.Millisecond
	}
	iterations := int(math.Ceil(float64(duration) / float64(period)))

	state := true
	c.set(pin, state)
	for i := 0; i < iterations; i++ {
		time.Sleep(period)
		state = !state
		c.set(pin, state)
	}
	c.set(pin, false)
}

// Clear turns every wired indicator off.
func (c *Controller) Clear() {
	for value := range c.pins {
		c.Set(value, Valid, false)
		c.Set(value, Invalid, false)
	}
}
