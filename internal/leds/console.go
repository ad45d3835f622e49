package leds

import "log"

// ConsoleSink logs pin changes instead of driving hardware, for running
// the kiosk on a dev machine.
type ConsoleSink struct{}

func (ConsoleSink) Set(pin int, on bool) error {
	state := "DOWN"
	if on {
		state = "UP"
	}
	log.Printf("[leds] [[ pin %d %s ]]", pin, state)
	return nil
}
