package machine

import (
	"fmt"
	"log"
	"time"

	"github.com/tcalmant/nfc-voting/internal/device"
	"github.com/tcalmant/nfc-voting/internal/leds"
	"github.com/tcalmant/nfc-voting/internal/publish"
	"github.com/tcalmant/nfc-voting/internal/vote"
)

// EngineConfig tunes the per-vote feedback.
type EngineConfig struct {
	BlinkDuration time.Duration // default 3s
	BlinkPeriod   time.Duration // default 100ms
}

// Engine keeps every assigned reader listening for the whole session and
// turns tag presentations into published votes with LED feedback.
type Engine struct {
	leds       *leds.Controller
	hub        *publish.Hub
	session    string
	cfg        EngineConfig
	assignment Assignment
}

func NewEngine(ctrl *leds.Controller, hub *publish.Hub, session string, assignment Assignment, cfg EngineConfig) *Engine {
	if cfg.BlinkDuration <= 0 {
		cfg.BlinkDuration = 3 * time.Second
	}
	if cfg.BlinkPeriod <= 0 {
		cfg.BlinkPeriod = 100 * time.Millisecond
	}
	return &Engine{leds: ctrl, hub: hub, session: session, cfg: cfg, assignment: assignment}
}

func (e *Engine) Assignment() Assignment { return e.assignment }

// Start installs the persistent vote callback on every assigned reader.
// If any reader refuses to listen the whole start is rolled back.
func (e *Engine) Start() error {
	for value, r := range e.assignment {
		value := value
		if err := r.Listen(func(tag device.Tag) { e.handleTag(value, tag) }); err != nil {
			e.Stop()
			return fmt.Errorf("starting reader %s for value %q: %w", r.ID(), value, err)
		}
		log.Printf("[vote] reader %s listening for value %q", r.ID(), value)
	}
	return nil
}

// handleTag runs inside the reader's callback context. It never lets an
// error escape: a failed vote ends in red LEDs, not in a dead reader.
func (e *Engine) handleTag(value string, tag device.Tag) {
	// optimistic feedback the instant the tag is seen
	e.leds.Valid(value, true)

	rec, err := e.buildRecord(value, tag)
	if err == nil {
		err = e.hub.Notify(rec)
	}
	if err != nil {
		log.Printf("[vote] vote on %q failed: %v", value, err)
		e.leds.Valid(value, false)
		e.leds.Blink(value, leds.Invalid, e.cfg.BlinkDuration, e.cfg.BlinkPeriod)
		e.leds.Invalid(value, true)
		return
	}

	e.leds.Blink(value, leds.Valid, e.cfg.BlinkDuration, e.cfg.BlinkPeriod)
	e.leds.Valid(value, true)
	e.leds.Invalid(value, false)
}

func (e *Engine) buildRecord(value string, tag device.Tag) (vote.Record, error) {
	if len(tag.UID) == 0 {
		return vote.Record{}, fmt.Errorf("building vote for %q: %w", value, device.ErrNoUID)
	}
	uid := make([]byte, len(tag.UID))
	copy(uid, tag.UID)
	return vote.Record{
		Timestamp: time.Now().Unix(),
		UID:       uid,
		Value:     value,
		Session:   e.session,
	}, nil
}

// Stop ends the session: readers stopped, indicators cleared.
func (e *Engine) Stop() {
	for value, r := range e.assignment {
		if err := r.Stop(); err != nil {
			log.Printf("[vote] stopping reader for %q: %v", value, err)
		}
	}
	e.leds.Clear()
}
