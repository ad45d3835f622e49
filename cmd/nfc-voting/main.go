package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/tcalmant/nfc-voting/internal/config"
	"github.com/tcalmant/nfc-voting/internal/device"
	"github.com/tcalmant/nfc-voting/internal/events"
	"github.com/tcalmant/nfc-voting/internal/leds"
	"github.com/tcalmant/nfc-voting/internal/machine"
	"github.com/tcalmant/nfc-voting/internal/publish"
	"github.com/tcalmant/nfc-voting/internal/registry"
	"github.com/tcalmant/nfc-voting/internal/state"
	"github.com/tcalmant/nfc-voting/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := state.LoadOrInit(cfg.StatePath)
	if err != nil {
		log.Fatalf("state: %v", err)
	}

	// LED wiring
	var sink leds.Sink
	switch cfg.Feedback.Sink {
	case "gpio":
		gp, err := leds.NewGPIOSink(cfg.AllPins())
		if err != nil {
			log.Fatalf("gpio: %v", err)
		}
		defer gp.Close()
		sink = gp
	default:
		sink = leds.ConsoleSink{}
	}
	ctrl := leds.NewController(sink, cfg.Leds)

	// publishers
	hub := publish.NewHub(cfg.Publish.FeedbackOnError)
	hub.Register(publish.LogPublisher{})
	hub.Register(st)
	evbuf := events.NewRing(1024)
	hub.Register(events.RingPublisher{Buf: evbuf})
	feed := web.NewFeed()
	hub.Register(feed)
	if cfg.MQTT.Enabled {
		mp, err := publish.NewMQTT(cfg.MQTT)
		if err != nil {
			// kiosk still works without a broker, votes go to the other
			// publishers
			log.Printf("[main] mqtt disabled: %v", err)
		} else {
			defer mp.Close()
			hub.Register(mp)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// readers
	reg := registry.New(cfg.Readers, cfg.Association.StopTimeout.Std())
	pool := reg.Enumerate()
	defer closeAll(pool)

	// association ritual: one race per vote value
	assoc := machine.NewAssociator(ctrl, machine.AssocConfig{
		Debounce:  cfg.Association.Debounce.Std(),
		Timeout:   cfg.Association.Timeout.Std(),
		MinRacers: cfg.Association.MinRacers,
	})
	assignment, err := assoc.Run(ctx, cfg.Vote.Values, pool)
	if err != nil {
		log.Fatalf("association: %v", err)
	}
	st.SetAssignment(assignment.IDs())

	// vote capture
	engine := machine.NewEngine(ctrl, hub, st.Session(), assignment, machine.EngineConfig{
		BlinkDuration: cfg.Feedback.BlinkDuration.Std(),
		BlinkPeriod:   cfg.Feedback.BlinkPeriod.Std(),
	})
	if err := engine.Start(); err != nil {
		log.Fatalf("vote engine: %v", err)
	}

	errCh := make(chan error, 1)
	if cfg.Web.Enabled {
		status := func() web.Status {
			readers := make(map[string]string, len(pool))
			for _, r := range pool {
				readers[r.ID()] = stateName(r.State())
			}
			return web.Status{
				Session:    st.Session(),
				Values:     cfg.Vote.Values,
				Assignment: assignment.IDs(),
				Readers:    readers,
			}
		}
		srv := web.New(cfg.Web, evbuf, st, feed, status)
		go func() {
			if err := srv.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	go st.AutoSave(ctx, 10*time.Second)

	log.Printf("[main] kiosk ready, session %s", st.Session())

	select {
	case err := <-errCh:
		log.Printf("fatal: %v", err)
	case <-ctx.Done():
		log.Printf("[main] shutting down")
	}

	engine.Stop()
	if err := st.Save(); err != nil {
		log.Printf("[main] saving state: %v", err)
	}
}

func closeAll(pool []*device.Reader) {
	for _, r := range pool {
		if err := r.Close(); err != nil {
			log.Printf("[main] closing reader %s: %v", r.ID(), err)
		}
	}
}

func stateName(s device.State) string {
	switch s {
	case device.Listening:
		return "listening"
	case device.Stopped:
		return "stopped"
	default:
		return "idle"
	}
}
