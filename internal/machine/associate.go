package machine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tcalmant/nfc-voting/internal/device"
	"github.com/tcalmant/nfc-voting/internal/leds"
	"github.com/tcalmant/nfc-voting/internal/once"
)

// ErrNotEnoughDevices aborts startup: no partial voting session is ever
// started.
var ErrNotEnoughDevices = errors.New("not enough readers for the configured vote values")

// Assignment is the bijection built by the association ritual: each vote
// value bound to exactly one reader for the whole session.
type Assignment map[string]*device.Reader

// IDs returns the value -> reader ID view used by state.json and the
// status API.
func (a Assignment) IDs() map[string]string {
	out := make(map[string]string, len(a))
	for v, r := range a {
		out[v] = r.ID()
	}
	return out
}

// AssocConfig tunes the association phase.
type AssocConfig struct {
	// Debounce is the pause between rounds, letting the operator pull the
	// tag off the reader before the next race starts.
	Debounce time.Duration
	// Timeout bounds one round. Zero means operator-paced: wait forever.
	Timeout time.Duration
	// MinRacers is the smallest number of listening readers a race may run
	// with after I/O exclusions.
	MinRacers int
}

// Associator binds vote values to readers, one "first tag wins" race per
// value. The remaining pool and the assignment are touched only by the
// single goroutine running Run.
type Associator struct {
	leds *leds.Controller
	cfg  AssocConfig
}

func NewAssociator(ctrl *leds.Controller, cfg AssocConfig) *Associator {
	if cfg.MinRacers < 1 {
		cfg.MinRacers = 1
	}
	return &Associator{leds: ctrl, cfg: cfg}
}

// Run walks the values in configured order and races the remaining readers
// for each one. On success every configured value is bound to a distinct
// reader and all readers are stopped; leftover readers stay idle.
func (a *Associator) Run(ctx context.Context, values []string, pool []*device.Reader) (Assignment, error) {
	if len(pool) < len(values) {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughDevices, len(pool), len(values))
	}

	remaining := make([]*device.Reader, len(pool))
	copy(remaining, pool)
	assignment := Assignment{}

	for i, value := range values {
		if i > 0 && a.cfg.Debounce > 0 {
			time.Sleep(a.cfg.Debounce)
		}

		// visual reset: invalid marks the value being associated, all
		// later values go dark
		a.leds.Valid(value, false)
		a.leds.Invalid(value, true)
		for _, v := range values[i+1:] {
			a.leds.Valid(v, false)
			a.leds.Invalid(v, false)
		}

		log.Printf("[assoc] associating value %q, show a tag...", value)
		winner, err := a.race(ctx, remaining)
		if err != nil {
			return nil, fmt.Errorf("associating value %q: %w", value, err)
		}

		assignment[value] = winner
		remaining = remove(remaining, winner)

		a.leds.Invalid(value, false)
		a.leds.Valid(value, true)
		log.Printf("[assoc] value %q -> reader %s", value, winner.ID())
	}

	log.Printf("[assoc] all %d values associated", len(values))
	return assignment, nil
}

// race resolves "first reader to see a tag" among the candidates. With a
// single candidate the race is skipped outright.
func (a *Associator) race(ctx context.Context, candidates []*device.Reader) (*device.Reader, error) {
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	ev := once.NewEvent[*device.Reader]()
	racers := make([]*device.Reader, 0, len(candidates))
	for _, r := range candidates {
		r := r
		if err := r.Listen(func(device.Tag) { ev.Set(r) }); err != nil {
			// I/O failure excludes the reader from this race only
			log.Printf("[assoc] reader %s excluded from race: %v", r.ID(), err)
			continue
		}
		racers = append(racers, r)
	}
	if len(racers) < a.cfg.MinRacers {
		a.stopAll(racers)
		return nil, fmt.Errorf("%w: only %d of %d readers could listen",
			ErrNotEnoughDevices, len(racers), len(candidates))
	}

	waitCtx := ctx
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}
	winner, err := ev.Wait(waitCtx)

	// stop everyone, winner included, before callbacks get rewired
	a.stopAll(racers)

	if err != nil {
		return nil, fmt.Errorf("waiting for a tag: %w", err)
	}
	return winner, nil
}

func (a *Associator) stopAll(readers []*device.Reader) {
	for _, r := range readers {
		if err := r.Stop(); err != nil {
			log.Printf("[assoc] stopping reader %s: %v", r.ID(), err)
		}
	}
}

func remove(pool []*device.Reader, r *device.Reader) []*device.Reader {
	out := pool[:0]
	for _, p := range pool {
		if p != r {
			out = append(out, p)
		}
	}
	return out
}
